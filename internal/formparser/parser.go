// =============================================================================
// Invoice Form Gate - Form Parser
// =============================================================================
//
// This module turns a saved form (JSON, YAML or XLSX) into types.FormState.
// Every format is first read into a generic document, optionally checked
// against the form schema, and then decoded through the same JSON path, so
// all formats accept exactly the same values.
//
// XLSX LAYOUT:
//   Sheet "Invoice": one setting per row, dot path and value.
//
//   | Column A                       | Column B           |
//   |--------------------------------|--------------------|
//   | path                           | value              |
//   | recipient.newRecipient         | true               |
//   | recipient.new.fullname         | Ada Lovelace       |
//   | recipient.new.email            | ada@example.com    |
//   | dueDate.selectedDate           | 2025-01-31         |
//   | currency.code                  | EUR                |
//   | settings.required_fields.tax   | yes                |
//
//   Sheet "Rows": one line item per row, header in row 1.
//
//   | id | description | price | quantity |
//   |----|-------------|-------|----------|
//   | 1  | Consulting  | 120.5 | 2        |
//
// =============================================================================

package formparser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/invoice-form-gate/internal/schema"
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

// Supported input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// Extensions lists the file extensions the parser understands.
var Extensions = []string{".json", ".yaml", ".yml", ".xlsx"}

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported form format")

	// ErrMalformed wraps every error caused by the shape of the input, as
	// opposed to I/O failures.
	ErrMalformed = errors.New("malformed form")
)

// Options controls parsing.
type Options struct {
	// SchemaCheck runs the JSON Schema shape check before decoding.
	SchemaCheck bool

	// Sheets describes the XLSX layout.
	Sheets SheetLayout
}

// DefaultOptions returns options with the schema check on and the default
// sheet layout.
func DefaultOptions() Options {
	return Options{SchemaCheck: true, Sheets: DefaultSheetLayout()}
}

// =============================================================================
// SHEET LAYOUT
// =============================================================================

// SheetLayout defines where form data lives in an XLSX workbook.
// Column indices are 0-based (A=0, B=1, ...).
type SheetLayout struct {
	// InvoiceSheet holds "path | value" rows.
	// Default: "Invoice"
	InvoiceSheet string

	// PathColumn is the column containing the dot path.
	// Default: 0 (Column A)
	PathColumn int

	// ValueColumn is the column containing the value.
	// Default: 1 (Column B)
	ValueColumn int

	// DataStartRow is the first settings row (0-based), after the header.
	// Default: 1 (Row 2)
	DataStartRow int

	// RowsSheet holds the line items with a header row.
	// Default: "Rows"
	RowsSheet string
}

// DefaultSheetLayout returns the standard workbook layout.
func DefaultSheetLayout() SheetLayout {
	return SheetLayout{
		InvoiceSheet: "Invoice",
		PathColumn:   0,
		ValueColumn:  1,
		DataStartRow: 1,
		RowsSheet:    "Rows",
	}
}

// =============================================================================
// PARSING
// =============================================================================

// FormatFromPath returns the input format implied by the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse reads and decodes the form stored at path.
func Parse(path string, opts Options) (*types.FormState, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file: %w", err)
	}
	return ParseBytes(data, format, opts)
}

// ParseBytes decodes a form held in memory.
func ParseBytes(data []byte, format string, opts Options) (*types.FormState, error) {
	doc, err := ReadDocument(data, format, opts.Sheets)
	if err != nil {
		return nil, err
	}
	return Decode(doc, opts.SchemaCheck)
}

// ReadDocument reads data into a generic document tree.
func ReadDocument(data []byte, format string, layout SheetLayout) (map[string]any, error) {
	var doc map[string]any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrMalformed, err)
		}
	case FormatXLSX:
		var err error
		if doc, err = readWorkbook(data, layout); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Decode converts a generic document into form state.
func Decode(doc any, schemaCheck bool) (*types.FormState, error) {
	if schemaCheck {
		if err := schema.Validate(doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeJSON(data, false)
}

// DecodeJSON decodes a JSON form body.
func DecodeJSON(data []byte, schemaCheck bool) (*types.FormState, error) {
	if schemaCheck {
		if err := schema.ValidateBytes(data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	var form types.FormState
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("%w: failed to decode form: %v", ErrMalformed, err)
	}
	return &form, nil
}

// =============================================================================
// XLSX
// =============================================================================

func readWorkbook(data []byte, layout SheetLayout) (map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrMalformed, err)
	}
	defer f.Close()

	doc := map[string]any{}

	rows, err := f.GetRows(layout.InvoiceSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrMalformed, layout.InvoiceSheet, err)
	}
	for i := layout.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		path := cell(row, layout.PathColumn)
		if path == "" {
			continue
		}
		if err := setPath(doc, path, coerceValue(path, cell(row, layout.ValueColumn))); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i+1, err)
		}
	}

	items, err := readRowsSheet(f, layout.RowsSheet)
	if err != nil {
		return nil, err
	}
	if items != nil {
		doc["rows"] = items
	}
	return doc, nil
}

// readRowsSheet returns nil when the workbook has no rows sheet.
func readRowsSheet(f *excelize.File, sheet string) ([]any, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrMalformed, sheet, err)
	}
	if len(rows) == 0 {
		return []any{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeHeader(h)
	}

	items := []any{}
	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		item := map[string]any{}
		for i, key := range header {
			if key == "" {
				continue
			}
			if v := cell(row, i); v != "" {
				item[key] = v
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// normalizeHeader maps spreadsheet headers to row keys, tolerating case and
// a few common spellings.
func normalizeHeader(h string) string {
	switch strings.ToLower(strings.TrimSpace(h)) {
	case "id":
		return "id"
	case "description", "desc", "item":
		return "description"
	case "price", "unit price", "unit_price":
		return "price"
	case "quantity", "qty":
		return "quantity"
	default:
		return ""
	}
}

// setPath assigns value at a dot path, creating intermediate maps.
func setPath(doc map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	node := doc
	for i, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid path %q", path)
		}
		if i == len(parts)-1 {
			node[part] = value
			return nil
		}
		next, ok := node[part]
		if !ok || next == nil {
			child := map[string]any{}
			node[part] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("path %q conflicts with a value at %q", path, strings.Join(parts[:i+1], "."))
		}
		node = child
	}
	return nil
}

// coerceValue turns spreadsheet text into the JSON type the form expects at
// path. Everything not listed stays a string; amounts accept strings.
func coerceValue(path, raw string) any {
	if strings.EqualFold(raw, "null") {
		return nil
	}
	if isFlagPath(path) {
		return normalizeFlag(raw)
	}
	if strings.HasPrefix(path, "dueDate.selectedDate.") {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return raw
}

func isFlagPath(path string) bool {
	return path == "recipient.newRecipient" ||
		path == "settings.open" ||
		strings.HasPrefix(path, "settings.required_fields.") ||
		strings.HasPrefix(path, "savedSettings.required_fields.")
}

func normalizeFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "required", "req", "r", "yes", "y", "true", "1", "mandatory", "x":
		return true
	default:
		return false
	}
}

func cell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
