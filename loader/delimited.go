package loader

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ============================================================================
// DELIMITED TEXT: CSV / TSV / sniffed text
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffDelimiter picks the most frequent of ',', ';' and '\t' on the header
// line. Ties and lines with none of them fall back to ','.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readDelimited(name string, data []byte, delimiter rune) (*RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = false

	header, err := r.Read()
	if err == io.EOF {
		return nil, newLoadError(ParseFailure, name, errors.New("missing header"))
	}
	if err != nil {
		return nil, newLoadError(ParseFailure, name, errors.Wrap(err, "read header"))
	}
	for _, h := range header {
		if !utf8.ValidString(h) {
			return nil, newLoadError(ParseFailure, name, errors.New("invalid header encoding"))
		}
	}

	table := &RawTable{Name: name, Columns: header}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newLoadError(ParseFailure, name, errors.Wrap(err, "read row"))
		}
		line, _ := r.FieldPos(0)
		row, err := FitRow(record, len(header))
		if err != nil {
			return nil, newLoadError(ParseFailure, name, errors.Wrapf(err, "line %d", line))
		}
		if row == nil {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FitRow pads a record to the header width. Extra trailing cells are
// tolerated only when blank. A record with no content at all returns nil.
func FitRow(record []string, width int) ([]string, error) {
	blank := true
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, nil
	}

	if len(record) > width {
		for _, extra := range record[width:] {
			if strings.TrimSpace(extra) != "" {
				return nil, errors.Errorf("row has %d fields, header has %d", len(record), width)
			}
		}
		record = record[:width]
	}

	row := make([]string, width)
	copy(row, record)
	return row, nil
}
