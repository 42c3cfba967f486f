package dataset

import (
	"github.com/xuri/excelize/v2"

	"github.com/ezoic/hermes/pkg/errors"
)

// LoadXLSX loads a dataset from one sheet of an Excel workbook. The first row
// is the header. An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string, schema Schema) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewModelError("dataset.LoadXLSX", "workbook has no sheets", errors.ErrEmptyData)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("dataset.LoadXLSX", "missing header", errors.ErrEmptyData)
	}

	// GetRows trims trailing empty cells; pad so every record spans the header.
	width := len(rows[0])
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}
	return FromRecords(rows[0], records, schema)
}
