package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ============================================================================
// YEARBOOK ENGINE TYPES: Entity × Year values, queries and render payloads
// ============================================================================

// ============================================================================
// ROWS: Query Engine values
// ============================================================================

// Row is one entity's value for the selected year.
type Row struct {
	Entity string  `json:"entity"`
	Value  float64 `json:"value"`
}

// Point is one year of an entity's series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Direction orders rows by value.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// ParseDirection accepts short names and the labels the dashboards offered
// ("Highest to Lowest", "Lowest to Highest"). Matching ignores case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "unsorted", "original":
		return Unsorted, true
	case "asc", "ascending", "lowest to highest", "low-high", "value_asc":
		return Ascending, true
	case "desc", "descending", "highest to lowest", "high-low", "value_desc":
		return Descending, true
	default:
		return Unsorted, false
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, ok := ParseDirection(string(b))
	if !ok {
		return &QueryError{Kind: InvalidSpec, Detail: "unknown sort direction " + strconv.Quote(string(b))}
	}
	*d = parsed
	return nil
}

// ============================================================================
// QUERYSPEC: Contract between the UI layer and the Query Engine
// ============================================================================

// QuerySpec selects, filters and orders one year of an index.
type QuerySpec struct {
	Year   int       `json:"year"`             // 0 = latest year in the index
	Search string    `json:"search"`           // case-insensitive entity substring
	Sort   Direction `json:"sort"`             // Unsorted keeps entity order
	Subset []string  `json:"subset,omitempty"` // nil = no restriction
	Limit  int       `json:"limit"`            // 0 = all
}

// Result is the Query Engine's output.
type Result struct {
	Dataset string `json:"dataset"`
	Year    int    `json:"year"`
	Rows    []Row  `json:"rows"`
	Matched int    `json:"matched"` // rows before Limit
	Reply   string `json:"reply"`
}

// ============================================================================
// FILTERS: Column-value restrictions for aggregation
// ============================================================================

// Filters restrict rows by cell value.
// Keys are column identifiers. OR within a column, AND across columns. Empty = all.
type Filters struct {
	Columns map[string][]string `json:"columns" yaml:"columns"`
}

// HasFilter returns true if a specific column filter is set.
func (f Filters) HasFilter(column string) bool {
	if f.Columns == nil {
		return false
	}
	vals, ok := f.Columns[column]
	return ok && len(vals) > 0
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Columns {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// AGGREGATION TYPES
// ============================================================================

// Score is a composite value or the explicit absence of one.
// A missing score is never treated as zero.
type Score struct {
	Value float64
	Valid bool
}

// ScoreOf wraps a present value.
func ScoreOf(v float64) Score { return Score{Value: v, Valid: true} }

// NoValue is the "no value" sentinel.
func NoValue() Score { return Score{} }

func (s Score) String() string {
	if !s.Valid {
		return "n/a"
	}
	return FormatNumber(s.Value)
}

// MarshalJSON renders a missing score as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = NoValue()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = ScoreOf(v)
	return nil
}

// AggregateRecord is one group's averaged composite score.
type AggregateRecord struct {
	Key          string `json:"key"`
	Score        Score  `json:"score"`
	Rank         int    `json:"rank,omitempty"` // 1-based, 0 when Score is missing
	Rows         int    `json:"rows"`
	Contributing int    `json:"contributing"` // rows with a composite
}

// AggregateSpec selects the measurement columns and grouping of Aggregate.
type AggregateSpec struct {
	Columns           []string `json:"columns,omitempty"`           // explicit measurement columns
	ColumnsContaining string   `json:"columnsContaining,omitempty"` // else: every measurement containing this
	GroupBy           string   `json:"groupBy,omitempty"`           // default: the entity column
	Where             Filters  `json:"where"`
	Limit             int      `json:"limit"`
}

// Ranking is the Aggregation Engine's ranked table.
type Ranking struct {
	Dataset string            `json:"dataset"`
	GroupBy string            `json:"groupBy"`
	Columns []string          `json:"columns"`
	Records []AggregateRecord `json:"records"`
	Groups  int               `json:"groups"` // groups before Limit
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is the one-line answer for an entity's series.
type TextData struct {
	Value    string      `json:"value"`
	RawValue float64     `json:"rawValue"`
	Period   string      `json:"period"`
	Count    int         `json:"count"`
	Growth   *GrowthData `json:"growth,omitempty"`
}

// GrowthData contains change-over-time metrics.
type GrowthData struct {
	EarliestValue  float64 `json:"earliestValue"`
	LatestValue    float64 `json:"latestValue"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangeAmount   float64 `json:"changeAmount"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"` // "increased", "decreased", "unchanged", "insufficient data"
}
