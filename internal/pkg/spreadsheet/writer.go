package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

// WriteTable renders header and rows into a single sheet workbook with a
// bold header, an autofilter on the header row and content sized columns.
func WriteTable(w io.Writer, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]float64, len(header))
	for i, title := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
		widths[i] = max(10, float64(len([]rune(title)))+2)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if c < len(widths) {
				if l := float64(len([]rune(fmt.Sprint(v)))) * 1.1; l > widths[c] {
					widths[c] = min(l, maxColumnWidth)
				}
			}
		}
	}

	if len(header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(header))
		if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			_ = f.SetCellStyle(sheet, "A1", last+"1", style)
		}
		_ = f.AutoFilter(sheet, fmt.Sprintf("A1:%s1", last), nil)
		for i, wd := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColWidth(sheet, col, col, wd)
		}
	}

	return f.Write(w)
}
