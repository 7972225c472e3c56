package schema

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spektr-org/yearbook/loader"
)

// Normalize trims column labels and classifies each column.
//
// The entity column is the first of cfg.EntityKeys present in the header.
// A time column has a digit-only label or equals one of cfg.TimeKeys.
// Every other column is a measurement.
//
// Rows are copied and fitted to the header width: missing trailing cells
// become empty, blank extra cells are dropped and all-blank rows skipped.
func Normalize(raw *loader.RawTable, cfg Config) (*Table, error) {
	if raw == nil {
		return nil, errors.New("schema: nil table")
	}

	t := &Table{
		Name:    raw.Name,
		columns: make([]Column, len(raw.Columns)),
		index:   make(map[string]int, len(raw.Columns)),
		entity:  -1,
		timeKey: -1,
	}

	for i, label := range raw.Columns {
		name := strings.TrimSpace(label)
		if prev, dup := t.index[name]; dup {
			return nil, &SchemaError{
				Kind:   DuplicateColumn,
				Table:  raw.Name,
				Column: name,
				Labels: []string{raw.Columns[prev], label},
			}
		}
		t.index[name] = i
		t.columns[i] = Column{Name: name, Raw: label}
	}

	rows, err := fitRows(raw)
	if err != nil {
		return nil, err
	}
	t.rows = rows

	for _, key := range cfg.EntityKeys {
		if i, ok := t.index[strings.TrimSpace(key)]; ok {
			t.entity = i
			t.columns[i].Role = RoleEntity
			break
		}
	}
	if t.entity < 0 {
		return nil, &SchemaError{
			Kind:   NoEntityColumn,
			Table:  raw.Name,
			Labels: cfg.EntityKeys,
		}
	}

	timeKeys := make(map[string]bool, len(cfg.TimeKeys))
	for _, key := range cfg.TimeKeys {
		timeKeys[strings.TrimSpace(key)] = true
	}

	for i := range t.columns {
		c := &t.columns[i]
		if c.Role == RoleEntity {
			continue
		}
		if year, ok := parseYearLabel(c.Name); ok {
			c.Role = RoleTime
			c.Year = year
			continue
		}
		if timeKeys[c.Name] {
			c.Role = RoleTime
			if t.timeKey < 0 {
				t.timeKey = i
			}
		}
	}

	return t, nil
}

func fitRows(raw *loader.RawTable) ([][]string, error) {
	rows := make([][]string, 0, len(raw.Rows))
	for i, record := range raw.Rows {
		row, err := loader.FitRow(record, len(raw.Columns))
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", raw.Name, i+1)
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseYearLabel accepts labels made only of ASCII digits.
func parseYearLabel(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}
