package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// QUERY ENGINE: Pure functions over an immutable Index
// ============================================================================
// Pipeline for Query(idx, spec):
//   1. Resolve the year (0 → latest)
//   2. SelectYear      : entities lacking the year are excluded
//   3. FilterRows      : case-insensitive entity substring
//   4. SelectSubset    : restrict to chosen entities
//   5. SortByValue     : stable
//   6. Limit
//
// Every call recomputes from the index; nothing is cached between queries.
// ============================================================================

// SelectYear returns one row per entity holding a value for year, in entity
// order. Missing values are never zero-filled.
func SelectYear(idx *Index, year int) []Row {
	rows := make([]Row, 0, len(idx.entities))
	for _, e := range idx.entities {
		if v, ok := idx.series[e][year]; ok {
			rows = append(rows, Row{Entity: e, Value: v})
		}
	}
	return rows
}

// EntitiesForYear lists entities holding a value for year that match needle,
// in sorted order.
func EntitiesForYear(idx *Index, year int, needle string) []string {
	rows := SelectYear(idx, year)
	entities := make([]string, len(rows))
	for i, r := range rows {
		entities[i] = r.Entity
	}
	return FilterBySubstring(entities, needle)
}

// SortByValue returns rows ordered by value. The sort is stable: rows with
// equal values keep their relative order. Unsorted returns rows unchanged.
func SortByValue(rows []Row, dir Direction) []Row {
	if dir == Unsorted {
		return rows
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return out[i].Value > out[j].Value
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// SelectSubset keeps rows whose entity is in chosen, preserving row order.
func SelectSubset(rows []Row, chosen []string) []Row {
	set := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		set[c] = true
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if set[r.Entity] {
			out = append(out, r)
		}
	}
	return out
}

// ValidateYear reports NoData for an index without years and UnknownYear for
// a year the index does not hold. Query itself treats an unknown year as an
// empty result.
func ValidateYear(idx *Index, year int) error {
	if len(idx.years) == 0 {
		return &QueryError{Kind: NoData, Dataset: idx.Dataset}
	}
	if !idx.HasYear(year) {
		return &QueryError{Kind: UnknownYear, Dataset: idx.Dataset, Year: year}
	}
	return nil
}

// Query runs the full selection pipeline.
func Query(idx *Index, spec QuerySpec) (*Result, error) {
	latest, ok := idx.LatestYear()
	if !ok {
		return nil, &QueryError{Kind: NoData, Dataset: idx.Dataset}
	}
	if spec.Subset != nil && len(spec.Subset) == 0 {
		return nil, &QueryError{Kind: EmptySelection, Dataset: idx.Dataset}
	}

	year := spec.Year
	if year == 0 {
		year = latest
	}

	res := &Result{Dataset: idx.Dataset, Year: year}
	if !idx.HasYear(year) {
		res.Rows = []Row{}
		res.Reply = fmt.Sprintf("No values for %d. Available years: %s.", year, describeYears(idx.years))
		return res, nil
	}

	rows := FilterRows(SelectYear(idx, year), spec.Search)
	if spec.Subset != nil {
		rows = SelectSubset(rows, spec.Subset)
	}
	rows = SortByValue(rows, spec.Sort)

	res.Matched = len(rows)
	if spec.Limit > 0 && len(rows) > spec.Limit {
		rows = rows[:spec.Limit]
	}
	res.Rows = rows
	res.Reply = buildReply(res, spec)
	return res, nil
}

// ============================================================================
// QUERYSPEC NORMALIZATION
// ============================================================================

// NormalizeQuerySpec applies deterministic fix-ups to user input: trims the
// search text, clamps a negative limit, and trims and de-duplicates the
// subset. A subset that was given but held only blanks stays non-nil and
// empty, so Query reports EmptySelection.
func NormalizeQuerySpec(spec QuerySpec) QuerySpec {
	spec.Search = strings.TrimSpace(spec.Search)
	if spec.Limit < 0 {
		spec.Limit = 0
	}
	if spec.Year < 0 {
		spec.Year = 0
	}
	if spec.Subset != nil {
		seen := make(map[string]bool, len(spec.Subset))
		subset := make([]string, 0, len(spec.Subset))
		for _, e := range spec.Subset {
			e = strings.TrimSpace(e)
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			subset = append(subset, e)
		}
		spec.Subset = subset
	}
	return spec
}

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func buildReply(res *Result, spec QuerySpec) string {
	if res.Matched == 0 {
		if spec.Search != "" {
			return fmt.Sprintf("No entities match %q in %d.", spec.Search, res.Year)
		}
		return fmt.Sprintf("No entities selected for %d.", res.Year)
	}
	reply := fmt.Sprintf("%d entities with values for %d", res.Matched, res.Year)
	if len(res.Rows) < res.Matched {
		reply += fmt.Sprintf(", showing %d", len(res.Rows))
	}
	return reply + "."
}

func describeYears(years []int) string {
	switch len(years) {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("%d", years[0])
	default:
		return fmt.Sprintf("%d–%d", years[0], years[len(years)-1])
	}
}
