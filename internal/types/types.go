// =============================================================================
// Invoice Form Gate - Shared Types
// =============================================================================
//
// This package contains the data model shared by the parser, the validator,
// the extractor and the payload writer. Types defined here are used by:
//   - form          (validation and extraction)
//   - formparser    (decoding raw form documents)
//   - payloadwriter (encoding the extracted payload)
//   - processor     (batch pipeline)
//
// Two shapes live here:
//   1. FormState      : the raw, UI-shaped form state as the UI produced it.
//   2. InvoicePayload : the minimal payload handed on to persistence.
//
// =============================================================================

package types

import "encoding/xml"

// =============================================================================
// SECTIONS
// =============================================================================

// Section names one logical group of invoice data.
type Section string

const (
	SectionRecipient Section = "recipient"
	SectionRows      Section = "rows"
	SectionDueDate   Section = "dueDate"
	SectionCurrency  Section = "currency"
	SectionDiscount  Section = "discount"
	SectionTax       Section = "tax"
	SectionNote      Section = "note"
)

// OptionalSections lists the sections gated by the required-fields map, in
// validation order.
var OptionalSections = []Section{
	SectionDueDate,
	SectionCurrency,
	SectionDiscount,
	SectionTax,
	SectionNote,
}

// RequiredFields declares which optional sections are mandatory for an
// invoice. It is the one lookup table consulted by both the extractor and
// the validator. A nil map or a missing key means "not required".
type RequiredFields map[Section]bool

// IsRequired reports whether the section must be present.
// Recipient and rows are always required and are never looked up.
func (r RequiredFields) IsRequired(s Section) bool {
	switch s {
	case SectionRecipient, SectionRows:
		return true
	}
	return r[s]
}

// =============================================================================
// FORM STATE
// =============================================================================

// FormState is the raw structure produced by the invoice form UI.
// Neither the validator nor the extractor ever modifies it.
type FormState struct {
	Recipient     RecipientForm  `json:"recipient"`
	Rows          []Row          `json:"rows"`
	DueDate       DueDate        `json:"dueDate"`
	Currency      *Currency      `json:"currency"`
	Discount      Discount       `json:"discount"`
	Tax           Tax            `json:"tax"`
	Note          Note           `json:"note"`
	Settings      Settings       `json:"settings"`
	SavedSettings *SavedSettings `json:"savedSettings,omitempty"`
}

// Settings holds the per-invoice settings panel state.
type Settings struct {
	// Open is UI-only: whether the settings panel is expanded.
	Open bool `json:"open"`

	RequiredFields RequiredFields `json:"required_fields"`
}

// SavedSettings is a previously persisted defaults snapshot. It is a
// fallback source only; nothing validates it.
type SavedSettings struct {
	Tax            Tax            `json:"tax"`
	Currency       string         `json:"currency"`
	RequiredFields RequiredFields `json:"required_fields"`
}

// WithSavedDefaults returns a copy of the form whose required-fields map
// falls back to the saved settings when the form carries none.
// The receiver is left untouched.
func (f *FormState) WithSavedDefaults() *FormState {
	out := *f
	if out.Settings.RequiredFields == nil && out.SavedSettings != nil {
		out.Settings.RequiredFields = out.SavedSettings.RequiredFields
	}
	return &out
}

// -----------------------------------------------------------------------------
// Recipient
// -----------------------------------------------------------------------------

// RecipientForm is the recipient section as the UI holds it: both the
// "select an existing contact" and the "enter a new contact" sub-forms are
// present, and NewRecipient says which one is authoritative.
type RecipientForm struct {
	NewRecipient bool            `json:"newRecipient"`
	Select       SelectedContact `json:"select"`
	New          NewContact      `json:"new"`
}

// Contact is the authoritative recipient, either a NewContact or a
// SelectedContact.
type Contact interface {
	isContact()
}

// NewContact is a contact typed in by the user for this invoice.
type NewContact struct {
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// SelectedContact is a previously saved contact picked from the address book.
type SelectedContact struct {
	ID       string `json:"id,omitempty"`
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (NewContact) isContact()      {}
func (SelectedContact) isContact() {}

// Contact returns the authoritative variant.
func (r RecipientForm) Contact() Contact {
	if r.NewRecipient {
		return r.New
	}
	return r.Select
}

// IsEmpty reports whether no field of the new contact was filled in.
func (c NewContact) IsEmpty() bool {
	return c.Fullname == "" && c.Email == "" && c.Company == "" && c.Phone == ""
}

// -----------------------------------------------------------------------------
// Line items and optional sections
// -----------------------------------------------------------------------------

// Row is a single invoice line item.
type Row struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty" xml:"id,attr,omitempty"`
	Description string `json:"description" yaml:"description" xml:"description"`
	Price       Amount `json:"price" yaml:"price" xml:"price"`
	Quantity    Amount `json:"quantity" yaml:"quantity" xml:"quantity"`
}

// DueDate is the due-date picker state.
type DueDate struct {
	SelectedDate *CalendarDate `json:"selectedDate"`
}

// Currency is the selected invoice currency.
type Currency struct {
	Code   string `json:"code" yaml:"code" xml:"code"`
	Symbol string `json:"symbol" yaml:"symbol" xml:"symbol"`
}

// Discount is either a flat amount or a percentage.
type Discount struct {
	Type   string `json:"type" yaml:"type" xml:"type"`
	Amount Amount `json:"amount" yaml:"amount" xml:"amount"`
}

// Discount types.
const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

// Tax is the tax section. Method and TIN are free text.
type Tax struct {
	Amount Amount `json:"amount" yaml:"amount" xml:"amount"`
	Method string `json:"method,omitempty" yaml:"method,omitempty" xml:"method,omitempty"`
	TIN    string `json:"tin,omitempty" yaml:"tin,omitempty" xml:"tin,omitempty"`
}

// Note is the free-text note editor state.
type Note struct {
	Content string `json:"content"`
}

// =============================================================================
// INVOICE PAYLOAD
// =============================================================================

// InvoicePayload is the minimal invoice handed to persistence and rendering.
// Optional sections are nil unless the form marked them required, so they
// are absent from every encoding.
type InvoicePayload struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"invoice"`

	Recipient PayloadRecipient `json:"recipient" yaml:"recipient" xml:"recipient"`
	Rows      []Row            `json:"rows" yaml:"rows" xml:"rows>row"`

	DueDate  *CalendarDate `json:"dueDate,omitempty" yaml:"dueDate,omitempty" xml:"dueDate,omitempty"`
	Currency *Currency     `json:"currency,omitempty" yaml:"currency,omitempty" xml:"currency,omitempty"`
	Discount *Discount     `json:"discount,omitempty" yaml:"discount,omitempty" xml:"discount,omitempty"`
	Tax      *Tax          `json:"tax,omitempty" yaml:"tax,omitempty" xml:"tax,omitempty"`
	Note     *string       `json:"note,omitempty" yaml:"note,omitempty" xml:"note,omitempty"`
}

// PayloadRecipient is the flattened recipient. ID, Company and Phone are
// set only for a selected contact; they are then present even when empty.
type PayloadRecipient struct {
	ID       *string `json:"id,omitempty" yaml:"id,omitempty" xml:"id,omitempty"`
	Fullname string  `json:"fullname" yaml:"fullname" xml:"fullname"`
	Email    string  `json:"email" yaml:"email" xml:"email"`
	Company  *string `json:"company,omitempty" yaml:"company,omitempty" xml:"company,omitempty"`
	Phone    *string `json:"phone,omitempty" yaml:"phone,omitempty" xml:"phone,omitempty"`
}
