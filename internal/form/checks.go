// =============================================================================
// Invoice Form Gate - Section Checks
// =============================================================================
//
// Pure checks, one per section. Each returns nil or a *ValidationError
// naming the first violated rule. They never notify; the Validator turns
// the returned error into a notification.
//
// SECTION ORDER (fixed, short-circuit):
//   recipient -> rows -> dueDate -> currency -> discount -> tax -> note
//
// The last five are gated: they pass immediately unless the form's
// required-fields map marks them required.
//
// =============================================================================

package form

import (
	"regexp"

	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

var emailRx = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Check runs every section check in order and returns the first failure.
func Check(f *types.FormState) error {
	rf := f.Settings.RequiredFields
	return firstError(
		func() error { return CheckRecipient(f.Recipient) },
		func() error { return CheckRows(f.Rows) },
		func() error { return CheckDueDate(rf.IsRequired(types.SectionDueDate), f.DueDate) },
		func() error { return CheckCurrency(rf.IsRequired(types.SectionCurrency), f.Currency) },
		func() error { return CheckDiscount(rf.IsRequired(types.SectionDiscount), f.Discount) },
		func() error { return CheckTax(rf.IsRequired(types.SectionTax), f.Tax) },
		func() error { return CheckNote(rf.IsRequired(types.SectionNote), f.Note) },
	)
}

// firstError evaluates checks in order and stops at the first error.
func firstError(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// ALWAYS-REQUIRED SECTIONS
// =============================================================================

// CheckRecipient validates a newly entered contact. A contact picked from
// the address book was validated when it was saved and always passes.
//
// Rules, most general first:
//  1. at least one field filled in
//  2. fullname and email present
//  3. email well-formed
func CheckRecipient(r types.RecipientForm) error {
	c, ok := r.Contact().(types.NewContact)
	if !ok {
		return nil
	}
	if c.IsEmpty() {
		return newError(types.SectionRecipient, ReasonEmptyRecipient)
	}
	if c.Fullname == "" || c.Email == "" {
		return newError(types.SectionRecipient, ReasonMissingRequiredField)
	}
	if !emailRx.MatchString(c.Email) {
		return newError(types.SectionRecipient, ReasonInvalidEmailFormat)
	}
	return nil
}

// CheckRows validates line items in order. Per row: description, then
// price, then quantity.
func CheckRows(rows []types.Row) error {
	if len(rows) == 0 {
		return newError(types.SectionRows, ReasonNoRows)
	}
	for i, row := range rows {
		var reason Reason
		switch {
		case row.Description == "":
			reason = ReasonEmptyDescription
		case !row.Price.IsPositive():
			reason = ReasonZeroPrice
		case !row.Quantity.IsPositive():
			reason = ReasonZeroQuantity
		default:
			continue
		}
		err := newError(types.SectionRows, reason)
		err.Row = i
		return err
	}
	return nil
}

// =============================================================================
// GATED SECTIONS
// =============================================================================

// CheckDueDate requires a selected date.
func CheckDueDate(required bool, d types.DueDate) error {
	if required && d.SelectedDate == nil {
		return newError(types.SectionDueDate, ReasonMissingDueDate)
	}
	return nil
}

// CheckCurrency requires a currency to be present. Code and symbol are not
// checked individually.
func CheckCurrency(required bool, c *types.Currency) error {
	if required && c == nil {
		return newError(types.SectionCurrency, ReasonMissingCurrency)
	}
	return nil
}

// CheckDiscount requires a non-zero amount. The type is not checked.
func CheckDiscount(required bool, d types.Discount) error {
	if required && !d.Amount.IsSet() {
		return newError(types.SectionDiscount, ReasonZeroAmount)
	}
	return nil
}

// CheckTax requires a non-zero amount.
func CheckTax(required bool, t types.Tax) error {
	if required && !t.Amount.IsSet() {
		return newError(types.SectionTax, ReasonZeroAmount)
	}
	return nil
}

// CheckNote requires non-empty content.
func CheckNote(required bool, n types.Note) error {
	if required && n.Content == "" {
		return newError(types.SectionNote, ReasonEmptyContent)
	}
	return nil
}
