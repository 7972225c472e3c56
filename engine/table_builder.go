package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER: Produces TableData from query, series and ranking results
// ============================================================================

// BuildYearTable renders a query result as entity/value rows.
func BuildYearTable(idx *Index, res *Result) *TableData {
	title := fmt.Sprintf("%s (%d)", valueLabel(idx), res.Year)
	if len(res.Rows) == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	columns := []Column{
		{Key: "entity", Label: LabelForColumn(idx.Entity), Type: "text", Align: "left"},
		{Key: "value", Label: valueLabel(idx), Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(res.Rows))
	var total float64
	for _, r := range res.Rows {
		rows = append(rows, []string{r.Entity, FormatNumber(r.Value)})
		total += r.Value
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Average (%d of %d entities)", len(res.Rows), res.Matched),
			Values: map[string]string{
				"value": FormatNumber(RoundTo2(total / float64(len(res.Rows)))),
			},
		},
	}
}

// BuildSeriesTable renders an entity's series with year-over-year change.
func BuildSeriesTable(idx *Index, entity string, points []Point) *TableData {
	title := fmt.Sprintf("%s: %s", entity, valueLabel(idx))
	if len(points) == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	columns := []Column{
		{Key: "year", Label: "Year", Type: "text", Align: "left"},
		{Key: "value", Label: valueLabel(idx), Type: "number", Align: "right"},
		{Key: "change", Label: "Change", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(points))
	for i, p := range points {
		change := ""
		if i > 0 {
			change = FormatNumber(RoundTo2(p.Value - points[i-1].Value))
		}
		rows = append(rows, []string{strconv.Itoa(p.Year), FormatNumber(p.Value), change})
	}

	growth := BuildSeriesText(points).Growth
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("%s to %s", growth.EarliestPeriod, growth.LatestPeriod),
			Values: map[string]string{
				"value":  growth.Direction,
				"change": FormatNumber(RoundTo2(growth.ChangeAmount)),
			},
		},
	}
}

// BuildMeasuresTable lays one entity's values from several indexes side by
// side, one row per year of the merged axis. Missing values stay blank.
func BuildMeasuresTable(entity string, indexes ...*Index) *TableData {
	columns := []Column{{Key: "year", Label: "Year", Type: "text", Align: "left"}}
	var shown []*Index
	for _, idx := range indexes {
		if !idx.HasEntity(entity) {
			continue
		}
		shown = append(shown, idx)
		columns = append(columns, Column{
			Key:   fmt.Sprintf("m%d", len(shown)),
			Label: measureLabel(idx),
			Type:  "number",
			Align: "right",
		})
	}

	years := mergedYears(entity, shown)
	rows := make([][]string, 0, len(years))
	for _, y := range years {
		row := []string{strconv.Itoa(y)}
		for _, idx := range shown {
			cell := ""
			if v, ok := idx.Value(entity, y); ok {
				cell = FormatNumber(v)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   entity,
		Columns: columns,
		Rows:    rows,
	}
}

// BuildRankingTable renders an aggregation ranking.
func BuildRankingTable(r *Ranking) *TableData {
	title := "Ranking by average composite"
	if len(r.Records) == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	columns := []Column{
		{Key: "rank", Label: "Rank", Type: "number", Align: "center"},
		{Key: "group", Label: LabelForColumn(r.GroupBy), Type: "text", Align: "left"},
		{Key: "score", Label: "Score", Type: "number", Align: "right"},
		{Key: "rows", Label: "Rows", Type: "number", Align: "center"},
	}

	rows := make([][]string, 0, len(r.Records))
	scored := 0
	for _, rec := range r.Records {
		rank := "-"
		if rec.Rank > 0 {
			rank = strconv.Itoa(rec.Rank)
			scored++
		}
		rows = append(rows, []string{
			rank,
			rec.Key,
			rec.Score.String(),
			fmt.Sprintf("%d/%d", rec.Contributing, rec.Rows),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("%d of %d groups scored", scored, r.Groups),
			Values: map[string]string{
				"score": fmt.Sprintf("%d columns", len(r.Columns)),
			},
		},
	}
}

func valueLabel(idx *Index) string {
	if idx.ValueColumn != "" {
		return idx.ValueColumn
	}
	return "Value"
}
