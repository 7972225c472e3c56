package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// ============================================================================
// CHART BUILDER: Produces ChartConfig payloads for the UI to draw
// ============================================================================
// Builders return nil when there is nothing to plot.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildYearChart plots one year of a query as horizontal bars.
func BuildYearChart(idx *Index, res *Result) *ChartConfig {
	if len(res.Rows) == 0 {
		return nil
	}

	points := make([]ChartPoint, 0, len(res.Rows))
	for _, r := range res.Rows {
		points = append(points, ChartPoint{Label: r.Entity, Value: RoundTo2(r.Value)})
	}

	config := &ChartConfig{
		ChartType:  "horizontal_bar",
		Title:      fmt.Sprintf("%s in %d", valueLabel(idx), res.Year),
		XAxis:      valueLabel(idx),
		YAxis:      LabelForColumn(idx.Entity),
		Series:     []ChartSeries{{Name: strconv.Itoa(res.Year), Data: points}},
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(config.Series))
	return config
}

// BuildSeriesChart plots one line per entity across years. Entities
// without a value in a year have no point there.
func BuildSeriesChart(idx *Index, entities []string) *ChartConfig {
	series := make([]ChartSeries, 0, len(entities))
	for i, e := range entities {
		points, err := idx.Series(e)
		if err != nil || len(points) == 0 {
			continue
		}
		data := make([]ChartPoint, 0, len(points))
		for _, p := range points {
			data = append(data, ChartPoint{Label: strconv.Itoa(p.Year), Value: RoundTo2(p.Value)})
		}
		series = append(series, ChartSeries{
			Name:  e,
			Data:  data,
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	if len(series) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "line",
		Title:      fmt.Sprintf("%s over time", valueLabel(idx)),
		XAxis:      "Year",
		YAxis:      valueLabel(idx),
		Series:     series,
		ShowLegend: len(series) > 1,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(series))
	return config
}

// BuildMeasuresChart plots one entity from several indexes, one line per
// index, on the merged year axis. Indexes without the entity are skipped.
func BuildMeasuresChart(entity string, indexes ...*Index) *ChartConfig {
	years := mergedYears(entity, indexes)
	if len(years) == 0 {
		return nil
	}

	series := make([]ChartSeries, 0, len(indexes))
	for _, idx := range indexes {
		if !idx.HasEntity(entity) {
			continue
		}
		data := make([]ChartPoint, 0, len(years))
		for _, y := range years {
			if v, ok := idx.Value(entity, y); ok {
				data = append(data, ChartPoint{Label: strconv.Itoa(y), Value: RoundTo2(v)})
			}
		}
		series = append(series, ChartSeries{
			Name:  measureLabel(idx),
			Data:  data,
			Color: defaultColors[len(series)%len(defaultColors)],
		})
	}

	config := &ChartConfig{
		ChartType:  "line",
		Title:      fmt.Sprintf("%s over time", entity),
		XAxis:      "Year",
		Series:     series,
		ShowLegend: len(series) > 1,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(series))
	return config
}

// mergedYears is the sorted union of years in which entity has a value.
func mergedYears(entity string, indexes []*Index) []int {
	seen := make(map[int]bool)
	var years []int
	for _, idx := range indexes {
		points, err := idx.Series(entity)
		if err != nil {
			continue
		}
		for _, p := range points {
			if !seen[p.Year] {
				seen[p.Year] = true
				years = append(years, p.Year)
			}
		}
	}
	sort.Ints(years)
	return years
}

// measureLabel names an index's values: the value column, else the
// dataset's file name.
func measureLabel(idx *Index) string {
	if idx.ValueColumn != "" {
		return idx.ValueColumn
	}
	return filepath.Base(idx.Dataset)
}

// BuildRankingChart plots scored groups as bars, lowest first.
func BuildRankingChart(r *Ranking) *ChartConfig {
	points := make([]ChartPoint, 0, len(r.Records))
	for _, rec := range r.Records {
		if !rec.Score.Valid {
			continue
		}
		points = append(points, ChartPoint{Label: rec.Key, Value: RoundTo2(rec.Score.Value)})
	}
	if len(points) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "bar",
		Title:      fmt.Sprintf("Average score by %s", r.GroupBy),
		XAxis:      LabelForColumn(r.GroupBy),
		YAxis:      "Score",
		Series:     []ChartSeries{{Name: "Score", Data: points}},
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(config.Series))
	return config
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
