package schema

import (
	"fmt"
	"strings"

	"github.com/spektr-org/yearbook/loader"
)

// ============================================================================
// SCHEMA: Normalized column identifiers and roles for one dataset
// ============================================================================
// Labels are trimmed, never case-folded. Each column gets a role:
//   entity     : the row-grouping key (e.g. "Country")
//   time       : a digit-only label ("1990") or a configured time key ("Year")
//   measurement: everything else
// ============================================================================

// Role classifies a normalized column.
type Role int

const (
	RoleMeasurement Role = iota
	RoleEntity
	RoleTime
)

func (r Role) String() string {
	switch r {
	case RoleEntity:
		return "entity"
	case RoleTime:
		return "time"
	default:
		return "measurement"
	}
}

// MarshalText renders the role name in JSON/YAML output.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "entity":
		*r = RoleEntity
	case "time":
		*r = RoleTime
	case "measurement", "":
		*r = RoleMeasurement
	default:
		return fmt.Errorf("unknown column role %q", b)
	}
	return nil
}

// Column describes one normalized column.
type Column struct {
	Name string `json:"name"`
	Raw  string `json:"raw"`
	Role Role   `json:"role"`
	Year int    `json:"year,omitempty"` // set for digit-only labels
}

// IsYear reports whether the column is a wide-layout year column.
func (c Column) IsYear() bool { return c.Role == RoleTime && c.Year != 0 }

// Config names the key columns a dataset is expected to carry.
// Matching is exact after trimming.
type Config struct {
	EntityKeys []string `json:"entityKeys" yaml:"entityKeys"`
	TimeKeys   []string `json:"timeKeys" yaml:"timeKeys"`
}

// DefaultConfig matches the country/year datasets the engine was built for,
// including population exports keyed by "country_name".
func DefaultConfig() Config {
	return Config{
		EntityKeys: []string{"Country", "country_name"},
		TimeKeys:   []string{"Year"},
	}
}

// Layout is the row shape of a table.
type Layout int

const (
	LayoutNone Layout = iota
	LayoutWide        // one column per year
	LayoutLong        // one row per entity+year, with a time key column
)

func (l Layout) String() string {
	switch l {
	case LayoutWide:
		return "wide"
	case LayoutLong:
		return "long"
	default:
		return "none"
	}
}

// MarshalText renders the layout name in JSON output.
func (l Layout) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Table is a normalized dataset: classified columns over the loaded rows.
// It is immutable after Normalize returns.
type Table struct {
	Name string

	columns []Column
	index   map[string]int
	entity  int
	timeKey int // -1 when absent
	rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the normalized identifiers in header order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns a copy of the classified columns.
func (t *Table) Schema() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Entity returns the entity column identifier.
func (t *Table) Entity() string { return t.columns[t.entity].Name }

// TimeKey returns the name-matched time column, if any.
func (t *Table) TimeKey() (string, bool) {
	if t.timeKey < 0 {
		return "", false
	}
	return t.columns[t.timeKey].Name, true
}

// YearColumns returns the digit-labelled columns in header order.
func (t *Table) YearColumns() []Column {
	var out []Column
	for _, c := range t.columns {
		if c.IsYear() {
			out = append(out, c)
		}
	}
	return out
}

// Measurements returns the measurement column identifiers in header order.
func (t *Table) Measurements() []string {
	var out []string
	for _, c := range t.columns {
		if c.Role == RoleMeasurement {
			out = append(out, c.Name)
		}
	}
	return out
}

// MatchColumns returns measurement columns whose identifier contains sub.
func (t *Table) MatchColumns(sub string) []string {
	var out []string
	for _, name := range t.Measurements() {
		if strings.Contains(name, sub) {
			out = append(out, name)
		}
	}
	return out
}

// Layout reports how time is laid out. A name-matched time key wins over
// digit-labelled columns.
func (t *Table) Layout() Layout {
	if t.timeKey >= 0 {
		return LayoutLong
	}
	for _, c := range t.columns {
		if c.IsYear() {
			return LayoutWide
		}
	}
	return LayoutNone
}

// ColumnIndex returns the position of a normalized identifier.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the identifier exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the raw cell for (row, column identifier), or "".
func (t *Table) Cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][i]
}

// Raw converts the table back into a RawTable with normalized labels.
// Normalizing the result yields an identical Table. Rows are copied.
func (t *Table) Raw() *loader.RawTable {
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = append([]string(nil), r...)
	}
	return &loader.RawTable{
		Name:    t.Name,
		Columns: t.Columns(),
		Rows:    rows,
	}
}
