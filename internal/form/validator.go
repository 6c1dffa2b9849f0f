// =============================================================================
// Invoice Form Gate - Validator
// =============================================================================
//
// The Validator is the correctness gate a form must pass before it is
// extracted and persisted. Every method returns a plain pass/fail boolean;
// on failure exactly one warning notification describing the violated rule
// is sent to the Notifier. Success is silent.
//
// NOTIFICATION CONTENT:
//   Title and message are never formatted here. The validator only selects
//   the keys
//     dialog:validation:<section>:<reason>:title
//     dialog:validation:<section>:<reason>:message
//   and resolves them through the Translator.
//
// CONCURRENCY:
//   A Validator holds only its collaborators and no per-call state, so one
//   instance can serve concurrent calls. Notification ordering across calls
//   is the caller's concern.
//
// =============================================================================

package form

import (
	"errors"

	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/i18n"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

// Validator checks raw form state section by section.
type Validator struct {
	notifier   notify.Notifier
	translator i18n.Translator
	logger     *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug tracing of failures.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewValidator creates a Validator. A nil notifier discards notifications;
// a nil translator uses the embedded default-locale catalog.
func NewValidator(notifier notify.Notifier, translator i18n.Translator, opts ...Option) *Validator {
	if notifier == nil {
		notifier = notify.Discard
	}
	if translator == nil {
		translator = i18n.MustNew(i18n.DefaultLocale)
	}
	v := &Validator{
		notifier:   notifier,
		translator: translator,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// =============================================================================
// FORM-LEVEL VALIDATION
// =============================================================================

// ValidateFormData validates every section in order and stops at the first
// failing one. It returns true only if all sections pass.
func (v *Validator) ValidateFormData(f *types.FormState) bool {
	return v.report(Check(f))
}

// Gate validates the form and, when it passes, extracts its payload.
// The payload is only meaningful when ok is true.
func (v *Validator) Gate(f *types.FormState) (payload types.InvoicePayload, ok bool) {
	if !v.ValidateFormData(f) {
		return types.InvoicePayload{}, false
	}
	return GetInvoiceData(f), true
}

// =============================================================================
// SECTION VALIDATORS
// =============================================================================

// ValidateRecipient validates the recipient section.
func (v *Validator) ValidateRecipient(r types.RecipientForm) bool {
	return v.report(CheckRecipient(r))
}

// ValidateRows validates the line items.
func (v *Validator) ValidateRows(rows []types.Row) bool {
	return v.report(CheckRows(rows))
}

// ValidateDueDate validates the due date when required.
func (v *Validator) ValidateDueDate(required bool, d types.DueDate) bool {
	return v.report(CheckDueDate(required, d))
}

// ValidateCurrency validates the currency when required.
func (v *Validator) ValidateCurrency(required bool, c *types.Currency) bool {
	return v.report(CheckCurrency(required, c))
}

// ValidateDiscount validates the discount when required.
func (v *Validator) ValidateDiscount(required bool, d types.Discount) bool {
	return v.report(CheckDiscount(required, d))
}

// ValidateTax validates the tax when required.
func (v *Validator) ValidateTax(required bool, t types.Tax) bool {
	return v.report(CheckTax(required, t))
}

// ValidateNote validates the note when required.
func (v *Validator) ValidateNote(required bool, n types.Note) bool {
	return v.report(CheckNote(required, n))
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notification builds the dialog for a validation error.
func (v *Validator) Notification(e *ValidationError) notify.Notification {
	return notify.Notification{
		Type:    notify.TypeWarning,
		Title:   v.translator.T(e.TitleKey()),
		Message: v.translator.T(e.MessageKey()),
		Key:     e.Key(),
	}
}

// report notifies about err, if any, and converts it to pass/fail.
func (v *Validator) report(err error) bool {
	if err == nil {
		return true
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		v.logger.Error("form.validate.unexpected", zap.Error(err))
		return false
	}

	v.logger.Debug("form.validate.failed",
		zap.String("section", string(ve.Section)),
		zap.String("key", ve.Key()),
		zap.Int("row", ve.Row),
	)
	v.notifier.Notify(v.Notification(ve))
	return false
}
