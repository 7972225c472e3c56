package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildYearTableAndChart(t *testing.T) {
	idx := populationIndex(t)
	res, err := Query(idx, QuerySpec{Year: 1990, Sort: Descending, Limit: 2})
	require.NoError(t, err)

	table := BuildYearTable(idx, res)
	assert.Equal(t, "Value (1990)", table.Title)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "Country", table.Columns[0].Label)
	assert.Equal(t, [][]string{{"Peru", "21.80"}, {"Chad", "5.90"}}, table.Rows)
	require.NotNil(t, table.Summary)
	assert.Equal(t, "13.85", table.Summary.Values["value"])
	assert.Equal(t, "Average (2 of 4 entities)", table.Summary.Label)

	chart := BuildYearChart(idx, res)
	require.NotNil(t, chart)
	assert.Equal(t, "horizontal_bar", chart.ChartType)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{{Label: "Peru", Value: 21.8}, {Label: "Chad", Value: 5.9}}, chart.Series[0].Data)
	assert.Equal(t, []string{defaultColors[0]}, chart.Colors)

	empty, err := Query(idx, QuerySpec{Year: 1800})
	require.NoError(t, err)
	assert.Nil(t, BuildYearChart(idx, empty))
	assert.Empty(t, BuildYearTable(idx, empty).Rows)
}

func TestBuildSeriesTableAndText(t *testing.T) {
	idx := populationIndex(t)
	points, err := idx.Series("Chad")
	require.NoError(t, err)

	table := BuildSeriesTable(idx, "Chad", points)
	assert.Equal(t, [][]string{
		{"1990", "5.90", ""},
		{"1991", "6.10", "0.20"},
		{"1992", "6.30", "0.20"},
	}, table.Rows)
	assert.Equal(t, "1990 to 1992", table.Summary.Label)
	assert.Equal(t, "increased", table.Summary.Values["value"])

	text := BuildSeriesText(points)
	require.NotNil(t, text.Growth)
	assert.Equal(t, "1990 – 1992", text.Period)
	assert.Equal(t, "increased", text.Growth.Direction)
	assert.InDelta(t, 6.78, text.Growth.ChangePercent, 0.01)
	assert.Equal(t, "↑ 6.8%", text.Value)

	single := BuildSeriesText([]Point{{Year: 2000, Value: 5}})
	assert.Equal(t, "insufficient data", single.Growth.Direction)
	assert.Equal(t, "2000", single.Period)

	flat := BuildSeriesText([]Point{{Year: 2000, Value: 100}, {Year: 2001, Value: 100.2}})
	assert.Equal(t, "unchanged", flat.Growth.Direction)
	assert.Equal(t, "No data", BuildSeriesText(nil).Value)
}

func TestBuildSeriesChart(t *testing.T) {
	idx := populationIndex(t)

	chart := BuildSeriesChart(idx, []string{"Aruba", "Atlantis", "Peru"})
	require.NotNil(t, chart)
	assert.Equal(t, "line", chart.ChartType)
	require.Len(t, chart.Series, 2, "unknown entities are skipped")
	assert.Equal(t, "Aruba", chart.Series[0].Name)
	assert.Len(t, chart.Series[0].Data, 2, "missing years have no point")
	assert.True(t, chart.ShowLegend)

	assert.Nil(t, BuildSeriesChart(idx, []string{"Atlantis"}))
}

func TestBuildRankingTableAndChart(t *testing.T) {
	ranking, err := Aggregate(aqiTable(t), AggregateSpec{ColumnsContaining: "AQI Value"})
	require.NoError(t, err)

	table := BuildRankingTable(ranking)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"1", "Norway", "5", "1/1"}, table.Rows[0])
	assert.Equal(t, []string{"-", "Peru", "n/a", "0/1"}, table.Rows[3])
	assert.Equal(t, "3 of 4 groups scored", table.Summary.Label)

	chart := BuildRankingChart(ranking)
	require.NotNil(t, chart)
	assert.Len(t, chart.Series[0].Data, 3, "groups without a score are not plotted")
	assert.Equal(t, "Norway", chart.Series[0].Data[0].Label)
}

func TestBuildSeriesText_FromZero(t *testing.T) {
	up := BuildSeriesText([]Point{{Year: 2000, Value: 0}, {Year: 2010, Value: 500}})
	require.NotNil(t, up.Growth)
	assert.Equal(t, "increased", up.Growth.Direction)
	assert.Equal(t, "↑ 500", up.Value)
	assert.Equal(t, 500.0, up.RawValue)

	down := BuildSeriesText([]Point{{Year: 2000, Value: 0}, {Year: 2010, Value: -2.5}})
	assert.Equal(t, "decreased", down.Growth.Direction)
	assert.Equal(t, "↓ 2.50", down.Value)

	flat := BuildSeriesText([]Point{{Year: 2000, Value: 0}, {Year: 2010, Value: 0}})
	assert.Equal(t, "unchanged", flat.Growth.Direction)

	idx := buildIndex(t, newTable(t, "arrivals.csv",
		[]string{"Country", "2000", "2010"},
		[]string{"Chad", "0", "500"},
	))
	points, err := idx.Series("Chad")
	require.NoError(t, err)
	assert.Equal(t, "increased", BuildSeriesTable(idx, "Chad", points).Summary.Values["value"])
}

func measureIndexes(t *testing.T) (*Index, *Index) {
	gdp := buildIndex(t, newTable(t, "gdp.csv",
		[]string{"Country", "Year", "GDP"},
		[]string{"Peru", "1990", "100"},
		[]string{"Peru", "1991", "110"},
	))
	population := buildIndex(t, newTable(t, "population.csv",
		[]string{"Country", "1991", "1992"},
		[]string{"Peru", "22.2", "22.6"},
		[]string{"Chad", "6.1", "6.3"},
	))
	return gdp, population
}

func TestBuildMeasuresTable(t *testing.T) {
	gdp, population := measureIndexes(t)

	table := BuildMeasuresTable("Peru", gdp, population)
	assert.Equal(t, "Peru", table.Title)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "GDP", table.Columns[1].Label)
	assert.Equal(t, "population.csv", table.Columns[2].Label)
	assert.Equal(t, [][]string{
		{"1990", "100", ""},
		{"1991", "110", "22.20"},
		{"1992", "", "22.60"},
	}, table.Rows)

	chad := BuildMeasuresTable("Chad", gdp, population)
	require.Len(t, chad.Columns, 2, "indexes without the entity get no column")
	assert.Equal(t, [][]string{{"1991", "6.10"}, {"1992", "6.30"}}, chad.Rows)
}

func TestBuildMeasuresChart(t *testing.T) {
	gdp, population := measureIndexes(t)

	chart := BuildMeasuresChart("Peru", gdp, population)
	require.NotNil(t, chart)
	assert.Equal(t, "line", chart.ChartType)
	assert.Equal(t, "Peru over time", chart.Title)
	assert.True(t, chart.ShowLegend)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, []ChartPoint{{Label: "1990", Value: 100}, {Label: "1991", Value: 110}}, chart.Series[0].Data)
	assert.Equal(t, []ChartPoint{{Label: "1991", Value: 22.2}, {Label: "1992", Value: 22.6}}, chart.Series[1].Data)

	single := BuildMeasuresChart("Chad", gdp, population)
	require.NotNil(t, single)
	assert.False(t, single.ShowLegend)

	assert.Nil(t, BuildMeasuresChart("Atlantis", gdp, population))
}
