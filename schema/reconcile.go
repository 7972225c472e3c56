package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// RECONCILER: Column-set compatibility across datasets
// ============================================================================
// Intersection starts from the first table's identifiers and narrows with
// each subsequent table. Set intersection is commutative and associative,
// so the result does not depend on input order. Output is sorted.
// ============================================================================

// Verdict is the outcome of a comparison.
type Verdict string

const (
	Compatible       Verdict = "compatible"
	Incompatible     Verdict = "incompatible"
	InsufficientData Verdict = "insufficient data"
)

// DatasetResult is one dataset's load/normalize outcome fed to Reconcile.
type DatasetResult struct {
	Source string
	Table  *Table
	Err    error
}

// Failure records a dataset that could not take part in a comparison.
type Failure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// CompatibilityReport is a derived, stateless view over compared datasets.
type CompatibilityReport struct {
	Datasets  []string            `json:"datasets"`
	Common    []string            `json:"common"`
	Verdict   Verdict             `json:"verdict"`
	Exclusive map[string][]string `json:"exclusive,omitempty"` // per dataset, columns outside Common
	Failures  []Failure           `json:"failures,omitempty"`
}

// Compatible reports whether the datasets share at least one column.
func (r CompatibilityReport) Compatible() bool { return r.Verdict == Compatible }

// Compare intersects the column sets of the given tables.
// Fewer than two tables yields InsufficientData.
func Compare(tables ...*Table) CompatibilityReport {
	report := CompatibilityReport{
		Datasets: make([]string, 0, len(tables)),
		Common:   []string{},
	}
	for _, t := range tables {
		report.Datasets = append(report.Datasets, t.Name)
	}
	if len(tables) < 2 {
		report.Verdict = InsufficientData
		return report
	}

	common := toSet(tables[0].Columns())
	for _, t := range tables[1:] {
		common = intersect(common, toSet(t.Columns()))
	}

	report.Common = sortedKeys(common)
	if len(report.Common) > 0 {
		report.Verdict = Compatible
	} else {
		report.Verdict = Incompatible
	}

	report.Exclusive = make(map[string][]string, len(tables))
	for _, t := range tables {
		var rest []string
		for _, c := range t.Columns() {
			if !common[c] {
				rest = append(rest, c)
			}
		}
		sort.Strings(rest)
		if len(rest) > 0 {
			report.Exclusive[t.Name] = rest
		}
	}
	return report
}

// Reconcile compares the datasets that loaded successfully and lists the
// ones that did not. A failure never aborts the comparison.
func Reconcile(results []DatasetResult) CompatibilityReport {
	var (
		tables   []*Table
		failures []Failure
	)
	for _, r := range results {
		if r.Err != nil || r.Table == nil {
			msg := "no table"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			failures = append(failures, Failure{Source: r.Source, Error: msg})
			continue
		}
		tables = append(tables, r.Table)
	}

	report := Compare(tables...)
	report.Failures = failures
	return report
}

// Summary renders the report as human-readable lines.
func (r CompatibilityReport) Summary() []string {
	lines := []string{
		fmt.Sprintf("Datasets compared: %d", len(r.Datasets)),
	}
	for _, d := range r.Datasets {
		lines = append(lines, "  - "+d)
	}
	for _, f := range r.Failures {
		lines = append(lines, fmt.Sprintf("Skipped %s: %s", f.Source, f.Error))
	}

	switch r.Verdict {
	case InsufficientData:
		lines = append(lines, "Insufficient data: at least two datasets are required for a comparison.")
	case Compatible:
		lines = append(lines,
			fmt.Sprintf("Common columns (%d): %s", len(r.Common), strings.Join(r.Common, ", ")),
			"The datasets are compatible.")
	default:
		lines = append(lines,
			"Common columns: none",
			"The datasets are not compatible: they share no columns.")
	}
	return lines
}

func toSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
