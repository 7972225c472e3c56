package engine

import (
	"strings"

	"golang.org/x/text/cases"
)

// ============================================================================
// FILTERS: Substring and column-value filtering
// ============================================================================
// Entity search folds case with Unicode rules, so "cote" does not match
// "Côte" but "ÉCOLE" matches "école". Column filters compare trimmed,
// folded cells against a pre-built lookup set in a single pass.
// ============================================================================

// FilterBySubstring keeps entities containing needle, ignoring case.
// An empty needle returns entities unchanged. Input order is preserved.
func FilterBySubstring(entities []string, needle string) []string {
	if needle == "" {
		return entities
	}
	fold := cases.Fold()
	n := fold.String(needle)

	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if strings.Contains(fold.String(e), n) {
			out = append(out, e)
		}
	}
	return out
}

// FilterRows is FilterBySubstring over rows, matching on the entity.
func FilterRows(rows []Row, needle string) []Row {
	if needle == "" {
		return rows
	}
	fold := cases.Fold()
	n := fold.String(needle)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(fold.String(r.Entity), n) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyFilters returns a view of rows matching all column filters.
// Columns are AND-combined; values within a column are OR-combined.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RowView, filters Filters) RowView {
	if filters.IsEmpty() {
		return view
	}

	fold := cases.Fold()
	sets := make(map[string]map[string]bool)
	for col, allowed := range filters.Columns {
		if len(allowed) > 0 {
			sets[col] = foldSet(fold, allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for col, set := range sets {
			val := fold.String(strings.TrimSpace(view.Cell(i, col)))
			if !set[val] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func foldSet(fold cases.Caser, items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[fold.String(strings.TrimSpace(item))] = true
	}
	return set
}
