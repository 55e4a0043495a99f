package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/xuri/excelize/v2"
)

// byteOrderMark prefixes CSV files exported as UTF-8 by spreadsheet tools
const byteOrderMark = "\ufeff"

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX
var ErrUnsupportedFormat = apperrors.NewCustomError(apperrors.ErrValidationFailed, "file must be .csv or .xlsx")

// ReadRows returns every row of a CSV file or of the first sheet of an XLSX
// workbook, chosen by the file name extension. Cells are trimmed.
func ReadRows(filename string, r io.Reader) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", "":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "unreadable file").
			WithDetails(map[string]interface{}{"reason": err.Error()})
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], byteOrderMark)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// Header maps lower-cased column names to their index
type Header map[string]int

// NewHeader indexes a header row; names are matched case-insensitively
func NewHeader(row []string) Header {
	h := make(Header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := h[key]; !dup && key != "" {
			h[key] = i
		}
	}
	return h
}

// Missing returns the required columns absent from the header
func (h Header) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := h[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Get returns the cell of row under column name, or "" when absent
func (h Header) Get(row []string, name string) string {
	i, ok := h[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
