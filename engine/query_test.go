package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectYear_ExcludesMissing(t *testing.T) {
	idx := populationIndex(t)

	rows := SelectYear(idx, 1991)
	assert.Equal(t, []Row{
		{Entity: "Chad", Value: 6.1},
		{Entity: "Norway", Value: 4.3},
		{Entity: "Peru", Value: 22.2},
	}, rows)

	assert.Empty(t, SelectYear(idx, 1950))
}

func TestFilterBySubstring(t *testing.T) {
	entities := []string{"Peru", "Chad", "Perú", "Niger", "Nigeria", "ÉCOLE land"}

	assert.Equal(t, entities, FilterBySubstring(entities, ""), "empty needle returns input unchanged")
	assert.Equal(t, []string{"Niger", "Nigeria"}, FilterBySubstring(entities, "NIG"))
	assert.Equal(t, []string{"Peru", "Perú"}, FilterBySubstring(entities, "pe"))
	assert.Equal(t, []string{"ÉCOLE land"}, FilterBySubstring(entities, "école"))
	assert.Empty(t, FilterBySubstring(entities, "zz"))
}

func TestSortByValue_Stable(t *testing.T) {
	rows := []Row{
		{Entity: "A", Value: 2},
		{Entity: "B", Value: 1},
		{Entity: "C", Value: 2},
		{Entity: "D", Value: 1},
		{Entity: "E", Value: 3},
	}

	asc := SortByValue(rows, Ascending)
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, entitiesOf(asc))

	desc := SortByValue(rows, Descending)
	assert.Equal(t, []string{"E", "A", "C", "B", "D"}, entitiesOf(desc))

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, entitiesOf(SortByValue(rows, Unsorted)))
	assert.Equal(t, "A", rows[0].Entity, "input is not reordered")
}

func TestSelectSubset_PreservesOrder(t *testing.T) {
	rows := []Row{{Entity: "C"}, {Entity: "A"}, {Entity: "B"}}

	got := SelectSubset(rows, []string{"B", "C", "Z"})
	assert.Equal(t, []string{"C", "B"}, entitiesOf(got))
}

func TestEntitiesForYear(t *testing.T) {
	idx := populationIndex(t)

	assert.Equal(t, []string{"Chad", "Norway", "Peru"}, EntitiesForYear(idx, 1991, ""))
	assert.Equal(t, []string{"Norway"}, EntitiesForYear(idx, 1991, "or"))
}

func TestQuery_Pipeline(t *testing.T) {
	idx := populationIndex(t)

	res, err := Query(idx, QuerySpec{Sort: Descending})
	require.NoError(t, err)
	assert.Equal(t, 1992, res.Year, "year 0 selects the latest year")
	assert.Equal(t, []string{"Peru", "Chad", "Aruba"}, entitiesOf(res.Rows))

	res, err = Query(idx, QuerySpec{Year: 1990, Search: "a", Sort: Ascending, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aruba", "Norway"}, entitiesOf(res.Rows))
	assert.Equal(t, 3, res.Matched)
	assert.Contains(t, res.Reply, "showing 2")

	res, err = Query(idx, QuerySpec{Year: 1990, Subset: []string{"Peru", "Chad"}, Sort: Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chad", "Peru"}, entitiesOf(res.Rows))
}

func TestQuery_UnknownYearIsEmpty(t *testing.T) {
	idx := populationIndex(t)

	res, err := Query(idx, QuerySpec{Year: 2050})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Contains(t, res.Reply, "1990–1992")

	err = ValidateYear(idx, 2050)
	assert.True(t, errors.Is(err, ErrUnknownYear))
	assert.NoError(t, ValidateYear(idx, 1990))
}

func TestQuery_Errors(t *testing.T) {
	idx := populationIndex(t)

	_, err := Query(idx, QuerySpec{Subset: []string{}})
	assert.True(t, errors.Is(err, ErrEmptySelection))

	empty := buildIndex(t, newTable(t, "empty.csv", []string{"Country", "1990"}, []string{"Chad", "x"}))
	_, err = Query(empty, QuerySpec{Year: 1990})
	assert.True(t, errors.Is(err, ErrNoData))
	assert.True(t, errors.Is(ValidateYear(empty, 1990), ErrNoData))
}

func TestNormalizeQuerySpec(t *testing.T) {
	spec := NormalizeQuerySpec(QuerySpec{
		Year:   -1,
		Search: "  chad ",
		Limit:  -5,
		Subset: []string{" Chad", "Chad", "", "Peru"},
	})
	assert.Equal(t, 0, spec.Year)
	assert.Equal(t, "chad", spec.Search)
	assert.Equal(t, 0, spec.Limit)
	assert.Equal(t, []string{"Chad", "Peru"}, spec.Subset)

	blank := NormalizeQuerySpec(QuerySpec{Subset: []string{" ", ""}})
	assert.NotNil(t, blank.Subset)
	assert.Empty(t, blank.Subset)

	assert.Nil(t, NormalizeQuerySpec(QuerySpec{}).Subset)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
		ok    bool
	}{
		{"Highest to Lowest", Descending, true},
		{"lowest to highest", Ascending, true},
		{"asc", Ascending, true},
		{"DESC", Descending, true},
		{"", Unsorted, true},
		{"sideways", Unsorted, false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.input)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("Highest to Lowest")))
	assert.Equal(t, Descending, d)
	assert.True(t, errors.Is(d.UnmarshalText([]byte("up")), ErrInvalidSpec))
}

func entitiesOf(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Entity
	}
	return out
}
