package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxCoercionSamples bounds how many offending cells a warning keeps.
const maxCoercionSamples = 5

// CellRef locates a cell that failed numeric coercion.
type CellRef struct {
	Row    int    `json:"row"` // 0-based data row
	Column string `json:"column"`
	Value  string `json:"value"`
}

// ValueCoercionWarning counts cells dropped during numeric coercion.
// It is recorded on the index and never returned as an error.
type ValueCoercionWarning struct {
	Dropped int       `json:"dropped"` // non-empty cells that did not parse
	Empty   int       `json:"empty"`   // blank cells
	Samples []CellRef `json:"samples,omitempty"`
}

// Any reports whether any non-empty cell was dropped.
func (w ValueCoercionWarning) Any() bool { return w.Dropped > 0 }

func (w ValueCoercionWarning) String() string {
	if w.Dropped == 0 {
		return fmt.Sprintf("no malformed cells (%d empty)", w.Empty)
	}
	parts := make([]string, len(w.Samples))
	for i, s := range w.Samples {
		parts[i] = fmt.Sprintf("row %d %s=%q", s.Row+1, s.Column, s.Value)
	}
	return fmt.Sprintf("%d malformed cells dropped (%d empty): %s", w.Dropped, w.Empty, strings.Join(parts, "; "))
}

func (w *ValueCoercionWarning) record(row int, column, value string) {
	if strings.TrimSpace(value) == "" {
		w.Empty++
		return
	}
	w.Dropped++
	if len(w.Samples) < maxCoercionSamples {
		w.Samples = append(w.Samples, CellRef{Row: row, Column: column, Value: value})
	}
}

// parseValue parses plain decimal text. Empty, NaN and infinite cells fail.
func parseValue(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear accepts integer text, or a float with no fractional part
// ("2015.0" from spreadsheet exports).
func parseYear(cell string) (int, bool) {
	s := strings.TrimSpace(cell)
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	v, ok := parseValue(s)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
