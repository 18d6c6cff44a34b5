package importer

import (
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
)

// Column headers expected on the first row of the input file.
const (
	colActivationKey = "ACTIVATION CODE"
	colName          = "NAME"
	colReference     = "REFERENCE"
	colInstructions  = "INSTRUCTIONS"
	colAmount        = "AMOUNT"
	colSellerContact = "SELLER CONTACT"
)

var requiredColumns = []string{
	colActivationKey,
	colName,
	colReference,
	colInstructions,
	colAmount,
	colSellerContact,
}

// XLSXSource reads candidate rows from an xlsx workbook in file order.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource points at a workbook. An empty sheet name selects the first
// sheet in the file.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

func (s *XLSXSource) Rows() ([]Row, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "opening spreadsheet").
			WithDetails(map[string]any{"path": s.path})
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading sheet").
			WithDetails(map[string]any{"sheet": sheet})
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spreadsheet has no header row")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		out = append(out, Row{
			Position:         i + 2, // header occupies row 1
			ActivationKey:    cell(cells, cols[colActivationKey]),
			Name:             cell(cells, cols[colName]),
			ProductReference: cell(cells, cols[colReference]),
			Instructions:     cell(cells, cols[colInstructions]),
			Price:            cell(cells, cols[colAmount]),
			SellerContact:    cell(cells, cols[colSellerContact]),
		})
	}
	return out, nil
}

// mapColumns resolves header titles to column indexes, case-insensitively.
func mapColumns(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	missing := []string{}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spreadsheet is missing required columns").
			WithDetails(map[string]any{"columns": missing})
	}
	return cols, nil
}

// cell tolerates short rows: excelize drops trailing empty cells.
func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return cells[idx]
	}
	return ""
}
