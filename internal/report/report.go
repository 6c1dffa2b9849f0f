// Package report renders the outcome of a batch run as an XLSX workbook.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding one line per processed form.
const SheetName = "Forms"

// Entry is one processed form.
type Entry struct {
	File   string
	Status string
	Key    string
	Title  string
	Rows   int
	Output string
}

var headers = []string{
	"File",
	"Status",
	"Notification Key",
	"Notification Title",
	"Rows",
	"Output",
}

// BuildXLSX returns the workbook bytes for entries, in order.
func BuildXLSX(entries []Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, bold)
	}

	for i, e := range entries {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, e.File)
		write(2, e.Status)
		write(3, e.Key)
		write(4, e.Title)
		write(5, e.Rows)
		write(6, e.Output)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 36) // file
	_ = f.SetColWidth(SheetName, "B", "B", 12) // status
	_ = f.SetColWidth(SheetName, "C", "C", 26) // key
	_ = f.SetColWidth(SheetName, "D", "D", 32) // title
	_ = f.SetColWidth(SheetName, "E", "E", 8)  // rows
	_ = f.SetColWidth(SheetName, "F", "F", 60) // output

	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:F%d", len(entries)+1), nil); err != nil {
		return nil, fmt.Errorf("xlsx filter: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
