package schema

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// PROFILE: Per-column statistics for dataset inspection
// ============================================================================
// Inspects sampled cells of each column:
//   1. Count filled / empty cells
//   2. Detect type (numeric, text, empty) with an 80% threshold
//   3. Collect sorted sample values and a cardinality hint
// ============================================================================

// ValueType is the detected content type of a column.
type ValueType string

const (
	TypeNumeric ValueType = "numeric"
	TypeText    ValueType = "text"
	TypeEmpty   ValueType = "empty"
)

// ColumnProfile summarizes one column's content.
type ColumnProfile struct {
	Column          string    `json:"column"`
	DisplayName     string    `json:"displayName"`
	Role            Role      `json:"role"`
	Type            ValueType `json:"type"`
	Filled          int       `json:"filled"`
	Empty           int       `json:"empty"`
	Unique          int       `json:"unique"`
	CardinalityHint string    `json:"cardinalityHint"` // "low", "medium", "high"
	Samples         []string  `json:"samples,omitempty"`
}

// ProfileOptions controls profiling.
type ProfileOptions struct {
	SampleSize int // max rows to inspect (0 = all)
	MaxSamples int // sample values kept per column
}

// DefaultProfileOptions returns sensible defaults.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{SampleSize: 1000, MaxSamples: 5}
}

// Describe profiles every column of t in header order.
func Describe(t *Table, opts ...ProfileOptions) []ColumnProfile {
	opt := DefaultProfileOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	limit := t.Len()
	if opt.SampleSize > 0 && opt.SampleSize < limit {
		limit = opt.SampleSize
	}

	profiles := make([]ColumnProfile, len(t.columns))
	for i, col := range t.columns {
		profiles[i] = profileColumn(col, i, t.rows[:limit], opt.MaxSamples)
	}
	return profiles
}

func profileColumn(col Column, index int, rows [][]string, maxSamples int) ColumnProfile {
	p := ColumnProfile{
		Column:      col.Name,
		DisplayName: toDisplayName(col.Name),
		Role:        col.Role,
	}

	values := make([]string, 0, len(rows))
	unique := make(map[string]bool)
	for _, row := range rows {
		val := strings.TrimSpace(row[index])
		if val == "" {
			p.Empty++
			continue
		}
		values = append(values, val)
		unique[val] = true
	}

	p.Filled = len(values)
	p.Unique = len(unique)
	p.Type = detectType(values)
	p.Samples = collectSamples(unique, maxSamples)

	switch {
	case p.Unique <= 10:
		p.CardinalityHint = "low"
	case p.Unique <= 100:
		p.CardinalityHint = "medium"
	default:
		p.CardinalityHint = "high"
	}
	return p
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType requires 80%+ of non-empty values to parse as numbers.
func detectType(values []string) ValueType {
	if len(values) == 0 {
		return TypeEmpty
	}

	numCount := 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
	}

	if numCount*5 >= len(values)*4 {
		return TypeNumeric
	}
	return TypeText
}

// isNumeric matches the index's coercion rule: finite numbers only.
func isNumeric(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName cleans a header for human display.
// "life_expectancy" → "Life Expectancy", "PM2.5 AQI" stays as is.
func toDisplayName(s string) string {
	if strings.Contains(s, " ") || !strings.ContainsAny(s, "_-") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if maxSamples > 0 && len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
