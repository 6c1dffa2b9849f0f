package form

import (
	"fmt"

	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

// Reason identifies the rule a section violated. Together with the section
// it forms the stable diagnostic key, e.g. "rows:priceZero".
type Reason string

const (
	// recipient
	ReasonEmptyRecipient       Reason = "empty"
	ReasonMissingRequiredField Reason = "requiredFields"
	ReasonInvalidEmailFormat   Reason = "email"

	// rows
	ReasonNoRows           Reason = "empty"
	ReasonEmptyDescription Reason = "emptyDescription"
	ReasonZeroPrice        Reason = "priceZero"
	ReasonZeroQuantity     Reason = "qtyZero"

	// gated sections
	ReasonMissingDueDate  Reason = "selectedDate"
	ReasonMissingCurrency Reason = "missing"
	ReasonZeroAmount      Reason = "amount"
	ReasonEmptyContent    Reason = "content"
)

// dialogPrefix is the catalog namespace of validation dialogs.
const dialogPrefix = "dialog:validation:"

// ValidationError describes the first rule a form violated.
type ValidationError struct {
	Section types.Section
	Reason  Reason

	// Row is the zero-based index of the offending line item, or -1 when
	// the failure is not about a single row.
	Row int
}

func newError(section types.Section, reason Reason) *ValidationError {
	return &ValidationError{Section: section, Reason: reason, Row: -1}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s validation failed at row %d: %s", e.Section, e.Row+1, e.Reason)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Section, e.Reason)
}

// Key returns the diagnostic key "<section>:<reason>".
func (e *ValidationError) Key() string {
	return string(e.Section) + ":" + string(e.Reason)
}

// TitleKey is the string-lookup key of the dialog title.
func (e *ValidationError) TitleKey() string {
	return dialogPrefix + e.Key() + ":title"
}

// MessageKey is the string-lookup key of the dialog message.
func (e *ValidationError) MessageKey() string {
	return dialogPrefix + e.Key() + ":message"
}
