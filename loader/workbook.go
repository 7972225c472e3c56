package loader

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// readWorkbook reads the first sheet of an xlsx container. Row 1 is the
// header; excelize drops trailing empty cells, FitRow pads them back.
func readWorkbook(name string, data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newLoadError(ParseFailure, name, errors.Wrap(err, "open workbook"))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newLoadError(ParseFailure, name, errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, newLoadError(ParseFailure, name, errors.Wrapf(err, "read sheet %q", sheets[0]))
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, newLoadError(ParseFailure, name, errors.New("missing header"))
	}

	header := rows[0]
	table := &RawTable{Name: name, Columns: header}
	for i, record := range rows[1:] {
		row, err := FitRow(record, len(header))
		if err != nil {
			return nil, newLoadError(ParseFailure, name, errors.Wrapf(err, "sheet %q row %d", sheets[0], i+2))
		}
		if row == nil {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
