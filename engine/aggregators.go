package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// AGGREGATORS: Composite scoring, grouping and ranking via RowView
// ============================================================================
// Pipeline for Aggregate(table, spec):
//   1. Resolve measurement columns and the group key
//   2. Apply Where filters → SubView
//   3. Per row: mean of numeric cells among the columns (ComputeRowComposite)
//   4. Per group: mean of present composites (GroupAverage)
//   5. Rank ascending, missing scores last (RankAscending)
//   6. Limit
// ============================================================================

// Aggregate ranks groups of t by their averaged composite score.
func Aggregate(t *schema.Table, spec AggregateSpec) (*Ranking, error) {
	columns, err := resolveColumns(t, spec)
	if err != nil {
		return nil, err
	}

	groupBy := spec.GroupBy
	if groupBy == "" {
		groupBy = t.Entity()
	}
	if !t.HasColumn(groupBy) {
		return nil, &schema.SchemaError{Kind: schema.NoEntityColumn, Table: t.Name, Column: groupBy}
	}

	filtered := ApplyFilters(t, spec.Where)
	records := RankAscending(GroupAverage(filtered, groupBy, columns))

	ranking := &Ranking{
		Dataset: t.Name,
		GroupBy: groupBy,
		Columns: columns,
		Groups:  len(records),
	}
	if spec.Limit > 0 && len(records) > spec.Limit {
		records = records[:spec.Limit]
	}
	ranking.Records = records
	return ranking, nil
}

// resolveColumns returns the explicit columns, the measurements containing a
// substring, or every measurement column, in that order of preference.
func resolveColumns(t *schema.Table, spec AggregateSpec) ([]string, error) {
	var columns []string
	switch {
	case len(spec.Columns) > 0:
		for _, c := range spec.Columns {
			if !t.HasColumn(c) {
				return nil, &schema.SchemaError{Kind: schema.NoMeasurementColumn, Table: t.Name, Column: c}
			}
		}
		columns = spec.Columns
	case spec.ColumnsContaining != "":
		columns = t.MatchColumns(spec.ColumnsContaining)
	default:
		columns = t.Measurements()
	}

	if len(columns) == 0 {
		return nil, &schema.SchemaError{Kind: schema.NoMeasurementColumn, Table: t.Name, Column: spec.ColumnsContaining}
	}
	return columns, nil
}

// ============================================================================
// COMPOSITES
// ============================================================================

// ComputeRowComposite is the mean of the numeric cells among columns in one
// row. Blank and malformed cells are ignored; if none parse the result is
// NoValue, never zero.
func ComputeRowComposite(view RowView, row int, columns []string) Score {
	var sum float64
	n := 0
	for _, c := range columns {
		if v, ok := parseValue(view.Cell(row, c)); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return NoValue()
	}
	return ScoreOf(sum / float64(n))
}

// GroupAverage groups rows by the trimmed groupKey cell and averages each
// group's composites, ignoring missing ones. Groups appear in first-seen
// order; rows with a blank key are skipped.
func GroupAverage(view RowView, groupKey string, columns []string) []AggregateRecord {
	order, grouped := groupBySingle(view, groupKey)

	records := make([]AggregateRecord, 0, len(order))
	for _, key := range order {
		sub := newSubView(view, grouped[key])
		rec := AggregateRecord{Key: key, Rows: sub.Len()}

		var sum float64
		for i := 0; i < sub.Len(); i++ {
			if s := ComputeRowComposite(sub, i, columns); s.Valid {
				sum += s.Value
				rec.Contributing++
			}
		}
		if rec.Contributing > 0 {
			rec.Score = ScoreOf(sum / float64(rec.Contributing))
		}
		records = append(records, rec)
	}
	return records
}

func groupBySingle(view RowView, column string) ([]string, map[string][]int) {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := strings.TrimSpace(view.Cell(i, column))
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}
	return order, grouped
}

// ============================================================================
// RANKING
// ============================================================================

// RankAscending returns records ordered lowest score first. The sort is
// stable; records without a score go last in their original order. Rank is
// set 1-based on scored records.
func RankAscending(records []AggregateRecord) []AggregateRecord {
	out := make([]AggregateRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value < b.Value
	})
	for i := range out {
		out[i].Rank = 0
		if out[i].Score.Valid {
			out[i].Rank = i + 1
		}
	}
	return out
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatNumber formats v with comma separators. Whole numbers print without
// decimals, others with two.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatInt(int(v))
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")
	n, err := strconv.Atoi(intPart)
	if err != nil {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	out := FormatInt(n) + "." + decPart
	if v < 0 {
		out = "-" + out
	}
	return out
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForColumn returns a capitalized label for a column identifier.
func LabelForColumn(column string) string {
	if len(column) == 0 {
		return ""
	}
	return strings.ToUpper(column[:1]) + column[1:]
}
