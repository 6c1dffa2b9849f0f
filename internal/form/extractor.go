package form

import (
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

// GetInvoiceData reduces raw form state to the minimal invoice payload.
//
// The form must already have passed ValidateFormData; nothing is
// re-checked here. Optional sections are copied only when the form's
// required-fields map marks them required, so a section that is not
// required never appears in the payload, whatever data the form holds
// for it. The result shares no memory with f.
func GetInvoiceData(f *types.FormState) types.InvoicePayload {
	rf := f.Settings.RequiredFields

	rows := make([]types.Row, len(f.Rows))
	copy(rows, f.Rows)

	payload := types.InvoicePayload{
		Recipient: extractRecipient(f.Recipient),
		Rows:      rows,
	}

	if rf.IsRequired(types.SectionDueDate) && f.DueDate.SelectedDate != nil {
		d := *f.DueDate.SelectedDate
		payload.DueDate = &d
	}
	if rf.IsRequired(types.SectionCurrency) && f.Currency != nil {
		c := *f.Currency
		payload.Currency = &c
	}
	if rf.IsRequired(types.SectionDiscount) {
		payload.Discount = &types.Discount{Type: f.Discount.Type, Amount: f.Discount.Amount}
	}
	if rf.IsRequired(types.SectionTax) {
		t := f.Tax
		payload.Tax = &t
	}
	if rf.IsRequired(types.SectionNote) {
		content := f.Note.Content
		payload.Note = &content
	}

	return payload
}

// extractRecipient flattens the authoritative contact. A new contact only
// contributes its name and email; company and phone are not asked for when
// a contact is entered inline.
func extractRecipient(r types.RecipientForm) types.PayloadRecipient {
	switch c := r.Contact().(type) {
	case types.NewContact:
		return types.PayloadRecipient{Fullname: c.Fullname, Email: c.Email}
	case types.SelectedContact:
		id, company, phone := c.ID, c.Company, c.Phone
		return types.PayloadRecipient{
			ID:       &id,
			Fullname: c.Fullname,
			Email:    c.Email,
			Company:  &company,
			Phone:    &phone,
		}
	}
	return types.PayloadRecipient{}
}
