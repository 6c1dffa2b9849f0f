package form

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/invoice-form-gate/internal/i18n"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

func validForm() *types.FormState {
	date := types.CalendarDate{Date: 14, Months: 2, Years: 2024}
	return &types.FormState{
		Recipient: types.RecipientForm{
			NewRecipient: true,
			New: types.NewContact{
				Fullname: "Ada Lovelace",
				Email:    "ada@example.com",
				Company:  "Analytical Engines",
				Phone:    "+44 20 0000 0000",
			},
		},
		Rows: []types.Row{
			{ID: "1", Description: "Consulting", Price: types.MustParseAmount("120.50"), Quantity: types.NewAmount(2)},
			{ID: "2", Description: "Travel", Price: types.MustParseAmount("40"), Quantity: types.NewAmount(1)},
		},
		DueDate:  types.DueDate{SelectedDate: &date},
		Currency: &types.Currency{Code: "EUR", Symbol: "€"},
		Discount: types.Discount{Type: types.DiscountPercentage, Amount: types.NewAmount(10)},
		Tax:      types.Tax{Amount: types.NewAmount(20), Method: "percentage", TIN: "FR123"},
		Note:     types.Note{Content: "Thanks for your business"},
		Settings: types.Settings{RequiredFields: types.RequiredFields{
			types.SectionDueDate:  true,
			types.SectionCurrency: true,
			types.SectionDiscount: true,
			types.SectionTax:      true,
			types.SectionNote:     true,
		}},
	}
}

func newTestValidator() (*Validator, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewValidator(rec, i18n.MustNew("en")), rec
}

func payloadKeys(t *testing.T, p types.InvoicePayload) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

func TestValidateFormDataPassesSilently(t *testing.T) {
	v, rec := newTestValidator()
	if !v.ValidateFormData(validForm()) {
		t.Fatalf("expected valid form to pass, got %+v", rec.All())
	}
	if rec.Len() != 0 {
		t.Fatalf("expected no notifications on success, got %d", rec.Len())
	}
}

func TestValidateFormDataFailureKeys(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *types.FormState)
		key    string
	}{
		{"empty recipient", func(f *types.FormState) { f.Recipient.New = types.NewContact{} }, "recipient:empty"},
		{"missing fullname", func(f *types.FormState) { f.Recipient.New.Fullname = "" }, "recipient:requiredFields"},
		{"missing email", func(f *types.FormState) { f.Recipient.New.Email = "" }, "recipient:requiredFields"},
		{"bad email", func(f *types.FormState) { f.Recipient.New.Email = "ada@" }, "recipient:email"},
		{"no rows", func(f *types.FormState) { f.Rows = nil }, "rows:empty"},
		{"empty description", func(f *types.FormState) { f.Rows[1].Description = "" }, "rows:emptyDescription"},
		{"zero price", func(f *types.FormState) { f.Rows[0].Price = types.Amount{} }, "rows:priceZero"},
		{"negative price", func(f *types.FormState) { f.Rows[0].Price = types.MustParseAmount("-1") }, "rows:priceZero"},
		{"zero quantity", func(f *types.FormState) { f.Rows[0].Quantity = types.Amount{} }, "rows:qtyZero"},
		{"missing due date", func(f *types.FormState) { f.DueDate.SelectedDate = nil }, "dueDate:selectedDate"},
		{"missing currency", func(f *types.FormState) { f.Currency = nil }, "currency:missing"},
		{"zero discount", func(f *types.FormState) { f.Discount.Amount = types.Amount{} }, "discount:amount"},
		{"zero tax", func(f *types.FormState) { f.Tax.Amount = types.Amount{} }, "tax:amount"},
		{"empty note", func(f *types.FormState) { f.Note.Content = "" }, "note:content"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, rec := newTestValidator()
			f := validForm()
			tc.mutate(f)

			if v.ValidateFormData(f) {
				t.Fatalf("expected failure")
			}
			if rec.Len() != 1 {
				t.Fatalf("expected exactly one notification, got %d", rec.Len())
			}
			n, _ := rec.Last()
			if n.Key != tc.key {
				t.Fatalf("expected key %s, got %s", tc.key, n.Key)
			}
			if n.Type != notify.TypeWarning {
				t.Fatalf("expected warning, got %s", n.Type)
			}
		})
	}
}

func TestWhitespaceIsContent(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *types.FormState)
		key    string
	}{
		{"blank description", func(f *types.FormState) { f.Rows[0].Description = " " }, ""},
		{"blank fullname", func(f *types.FormState) { f.Recipient.New.Fullname = " " }, ""},
		{"blank note", func(f *types.FormState) { f.Note.Content = "  " }, ""},
		{"blank email", func(f *types.FormState) { f.Recipient.New.Email = " " }, "recipient:email"},
		{"padded email", func(f *types.FormState) { f.Recipient.New.Email = " ada@example.com" }, "recipient:email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, rec := newTestValidator()
			f := validForm()
			tc.mutate(f)

			ok := v.ValidateFormData(f)
			n, _ := rec.Last()
			if tc.key == "" && !ok {
				t.Fatalf("expected pass, got %s", n.Key)
			}
			if tc.key != "" && (ok || n.Key != tc.key) {
				t.Fatalf("expected %s, got ok=%v key=%s", tc.key, ok, n.Key)
			}
		})
	}
}

func TestRecipientEmailFormat(t *testing.T) {
	for email, want := range map[string]bool{
		"ada@example.com":         true,
		"user@localhost":          true,
		"a.b+tag@mail.example.io": true,
		"ada@":                    false,
		"@example.com":            false,
		"ada@-example.com":        false,
		"ada example@x.com":       false,
	} {
		r := types.RecipientForm{NewRecipient: true, New: types.NewContact{Fullname: "Ada", Email: email}}
		if got := CheckRecipient(r) == nil; got != want {
			t.Fatalf("%q: expected valid=%v, got %v", email, want, got)
		}
	}
}

func TestValidateFormDataSkipsSectionsNotRequired(t *testing.T) {
	v, rec := newTestValidator()
	f := validForm()
	f.Settings.RequiredFields = nil
	f.DueDate.SelectedDate = nil
	f.Currency = nil
	f.Discount = types.Discount{}
	f.Tax = types.Tax{}
	f.Note = types.Note{}

	if !v.ValidateFormData(f) {
		t.Fatalf("expected pass with no optional sections required, got %+v", rec.All())
	}
}

func TestValidateFormDataShortCircuits(t *testing.T) {
	v, rec := newTestValidator()
	f := validForm()
	f.Recipient.New.Email = "not-an-email"
	f.Rows[0].Price = types.Amount{}
	f.Tax.Amount = types.Amount{}

	if v.ValidateFormData(f) {
		t.Fatalf("expected failure")
	}
	all := rec.All()
	if len(all) != 1 || all[0].Key != "recipient:email" {
		t.Fatalf("expected only recipient:email, got %+v", all)
	}
}

func TestValidateFormDataPriceZeroExample(t *testing.T) {
	v, rec := newTestValidator()
	f := validForm()
	f.Rows[0].Price = types.NewAmount(0)

	if v.ValidateFormData(f) {
		t.Fatalf("expected failure")
	}
	n, _ := rec.Last()
	if n.Key != "rows:priceZero" {
		t.Fatalf("expected rows:priceZero, got %s", n.Key)
	}
	if n.Title != "Invalid item price" {
		t.Fatalf("unexpected title %q", n.Title)
	}
}

func TestValidateRecipientSelectedContactAlwaysPasses(t *testing.T) {
	v, rec := newTestValidator()
	r := types.RecipientForm{NewRecipient: false}

	if !v.ValidateRecipient(r) {
		t.Fatalf("expected selected recipient to pass even with empty new contact")
	}
	if rec.Len() != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestValidateRecipientOptionalFields(t *testing.T) {
	v, _ := newTestValidator()
	r := types.RecipientForm{
		NewRecipient: true,
		New:          types.NewContact{Fullname: "Grace Hopper", Email: "grace@navy.mil"},
	}
	if !v.ValidateRecipient(r) {
		t.Fatalf("company and phone should be optional")
	}
}

func TestValidateRecipientCompanyOnlyIsIncomplete(t *testing.T) {
	v, rec := newTestValidator()
	r := types.RecipientForm{NewRecipient: true, New: types.NewContact{Company: "ACME"}}
	if v.ValidateRecipient(r) {
		t.Fatalf("expected failure")
	}
	if n, _ := rec.Last(); n.Key != "recipient:requiredFields" {
		t.Fatalf("expected recipient:requiredFields, got %s", n.Key)
	}
}

func TestValidateRowsStrictPriority(t *testing.T) {
	cases := []struct {
		name string
		row  types.Row
		key  string
	}{
		{"all bad", types.Row{}, "rows:emptyDescription"},
		{"description ok", types.Row{Description: "x"}, "rows:priceZero"},
		{"description and price ok", types.Row{Description: "x", Price: types.NewAmount(1)}, "rows:qtyZero"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, rec := newTestValidator()
			if v.ValidateRows([]types.Row{tc.row}) {
				t.Fatalf("expected failure")
			}
			if n, _ := rec.Last(); n.Key != tc.key {
				t.Fatalf("expected %s, got %s", tc.key, n.Key)
			}
		})
	}
}

func TestCheckRowsReportsFirstOffendingRow(t *testing.T) {
	rows := []types.Row{
		{Description: "ok", Price: types.NewAmount(1), Quantity: types.NewAmount(1)},
		{Description: "ok", Price: types.NewAmount(1), Quantity: types.Amount{}},
		{Description: ""},
	}
	err := CheckRows(rows)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Row != 1 || ve.Reason != ReasonZeroQuantity {
		t.Fatalf("expected row 1 qtyZero, got row %d %s", ve.Row, ve.Reason)
	}
	if ve.Error() != "rows validation failed at row 2: qtyZero" {
		t.Fatalf("unexpected message %q", ve.Error())
	}
}

func TestGatedValidatorsPassWhenNotRequired(t *testing.T) {
	v, rec := newTestValidator()
	if !v.ValidateDueDate(false, types.DueDate{}) ||
		!v.ValidateCurrency(false, nil) ||
		!v.ValidateDiscount(false, types.Discount{}) ||
		!v.ValidateTax(false, types.Tax{}) ||
		!v.ValidateNote(false, types.Note{}) {
		t.Fatalf("expected every gated validator to pass when not required")
	}
	if rec.Len() != 0 {
		t.Fatalf("expected no notifications")
	}
}

func TestValidateTaxZeroAmountExample(t *testing.T) {
	v, rec := newTestValidator()
	if v.ValidateTax(true, types.Tax{Amount: types.NewAmount(0)}) {
		t.Fatalf("expected failure")
	}
	n, _ := rec.Last()
	if n.Key != "tax:amount" {
		t.Fatalf("expected tax:amount, got %s", n.Key)
	}
	if n.Title != "Tax required" || n.Message != "The tax amount must not be zero." {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestValidateCurrencyOnlyChecksPresence(t *testing.T) {
	v, _ := newTestValidator()
	if !v.ValidateCurrency(true, &types.Currency{}) {
		t.Fatalf("an empty but present currency should pass")
	}
}

func TestValidatorIsIdempotent(t *testing.T) {
	v, rec := newTestValidator()
	f := validForm()
	f.Note.Content = ""

	first := v.ValidateFormData(f)
	second := v.ValidateFormData(f)
	if first || second {
		t.Fatalf("expected both calls to fail")
	}
	all := rec.All()
	if len(all) != 2 || all[0] != all[1] {
		t.Fatalf("expected two identical notifications, got %+v", all)
	}
}

func TestValidatorDoesNotMutateForm(t *testing.T) {
	v, _ := newTestValidator()
	f := validForm()
	before := *f
	v.ValidateFormData(f)
	if !reflect.DeepEqual(before, *f) {
		t.Fatalf("form was mutated")
	}
}

func TestValidatorTranslatesWithLocaleFallback(t *testing.T) {
	rec := &notify.Recorder{}
	v := NewValidator(rec, i18n.MustNew("fr"))

	v.ValidateTax(true, types.Tax{})
	v.ValidateNote(true, types.Note{})

	all := rec.All()
	if all[0].Title != "Taxe obligatoire" {
		t.Fatalf("expected french title, got %q", all[0].Title)
	}
	if all[1].Title != "Note required" {
		t.Fatalf("expected english fallback for note, got %q", all[1].Title)
	}
}

func TestValidatorDefaultsCollaborators(t *testing.T) {
	v := NewValidator(nil, nil)
	if v.ValidateRows(nil) {
		t.Fatalf("expected failure")
	}
	n := v.Notification(newError(types.SectionRows, ReasonNoRows))
	if n.Title != "No items" {
		t.Fatalf("expected default catalog, got %q", n.Title)
	}
}

func TestValidatorLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	v := NewValidator(nil, nil, WithLogger(zap.New(core)))

	v.ValidateDiscount(true, types.Discount{})

	entries := logs.FilterMessage("form.validate.failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["key"]; got != "discount:amount" {
		t.Fatalf("expected key field discount:amount, got %v", got)
	}
}

func TestGate(t *testing.T) {
	v, _ := newTestValidator()

	payload, ok := v.Gate(validForm())
	if !ok {
		t.Fatalf("expected valid form to pass the gate")
	}
	if payload.Recipient.Fullname != "Ada Lovelace" {
		t.Fatalf("unexpected payload recipient %+v", payload.Recipient)
	}

	f := validForm()
	f.Rows = nil
	if _, ok := v.Gate(f); ok {
		t.Fatalf("expected invalid form to be rejected")
	}
}

// =============================================================================
// EXTRACTOR
// =============================================================================

func TestGetInvoiceDataAllSectionsRequired(t *testing.T) {
	f := validForm()
	payload := GetInvoiceData(f)

	keys := sortedKeys(payloadKeys(t, payload))
	want := []string{"currency", "discount", "dueDate", "note", "recipient", "rows", "tax"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}

	if payload.Note == nil || *payload.Note != "Thanks for your business" {
		t.Fatalf("note should be flattened to its content, got %v", payload.Note)
	}
	if *payload.Tax != f.Tax {
		t.Fatalf("tax should pass through, got %+v", payload.Tax)
	}
	if payload.Discount.Type != types.DiscountPercentage || payload.Discount.Amount.String() != "10" {
		t.Fatalf("unexpected discount %+v", payload.Discount)
	}
	if *payload.Currency != *f.Currency || *payload.DueDate != *f.DueDate.SelectedDate {
		t.Fatalf("currency and due date should pass through")
	}
	if !reflect.DeepEqual(payload.Rows, f.Rows) {
		t.Fatalf("rows should pass through")
	}
}

func TestGetInvoiceDataOmitsSectionsNotRequired(t *testing.T) {
	for _, section := range types.OptionalSections {
		t.Run(string(section), func(t *testing.T) {
			f := validForm()
			f.Settings.RequiredFields[section] = false

			keys := payloadKeys(t, GetInvoiceData(f))
			if _, ok := keys[string(section)]; ok {
				t.Fatalf("payload must not contain %s", section)
			}
			if len(keys) != 6 {
				t.Fatalf("expected six keys, got %v", sortedKeys(keys))
			}
		})
	}
}

func TestGetInvoiceDataNothingOptionalRequired(t *testing.T) {
	f := validForm()
	f.Settings.RequiredFields = types.RequiredFields{}

	keys := sortedKeys(payloadKeys(t, GetInvoiceData(f)))
	if !reflect.DeepEqual(keys, []string{"recipient", "rows"}) {
		t.Fatalf("expected only recipient and rows, got %v", keys)
	}
}

func TestGetInvoiceDataNewRecipient(t *testing.T) {
	keys := payloadKeys(t, GetInvoiceData(validForm()))

	var recipient map[string]any
	if err := json.Unmarshal(keys["recipient"], &recipient); err != nil {
		t.Fatalf("unmarshal recipient: %v", err)
	}
	if !reflect.DeepEqual(sortedKeys(recipient), []string{"email", "fullname"}) {
		t.Fatalf("new recipient should only carry fullname and email, got %v", recipient)
	}
}

func TestGetInvoiceDataSelectedRecipient(t *testing.T) {
	f := validForm()
	f.Recipient = types.RecipientForm{
		NewRecipient: false,
		Select: types.SelectedContact{
			ID:       "c-42",
			Fullname: "Linus Torvalds",
			Email:    "linus@example.org",
			Company:  "",
			Phone:    "555-0100",
		},
		New: types.NewContact{Fullname: "ignored", Email: "ignored@example.com"},
	}

	keys := payloadKeys(t, GetInvoiceData(f))
	var recipient map[string]any
	if err := json.Unmarshal(keys["recipient"], &recipient); err != nil {
		t.Fatalf("unmarshal recipient: %v", err)
	}
	want := []string{"company", "email", "fullname", "id", "phone"}
	if !reflect.DeepEqual(sortedKeys(recipient), want) {
		t.Fatalf("expected %v, got %v", want, sortedKeys(recipient))
	}
	if recipient["id"] != "c-42" || recipient["fullname"] != "Linus Torvalds" {
		t.Fatalf("selected contact should be authoritative, got %v", recipient)
	}
}

func TestGetInvoiceDataDoesNotShareMemory(t *testing.T) {
	f := validForm()
	payload := GetInvoiceData(f)

	payload.Rows[0].Description = "changed"
	payload.Currency.Code = "USD"
	*payload.Note = "changed"

	if f.Rows[0].Description != "Consulting" || f.Currency.Code != "EUR" || f.Note.Content == "changed" {
		t.Fatalf("payload shares memory with the form")
	}
}

func TestGetInvoiceDataIsIdempotent(t *testing.T) {
	f := validForm()
	if !reflect.DeepEqual(GetInvoiceData(f), GetInvoiceData(f)) {
		t.Fatalf("expected identical payloads")
	}
}
