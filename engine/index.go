package engine

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// ENTITY-TIME INDEX: entity → year → value
// ============================================================================
// Layouts, auto-detected from the normalized schema:
//   long: a name-matched time key column; one row per entity+year, the
//          value read from one measurement column
//   wide: one digit-labelled column per year
//
// Cells that do not parse as finite numbers are dropped and counted, never
// stored as zero. A repeated (entity, year) pair keeps the last row read.
// The index is immutable once BuildIndex returns.
// ============================================================================

// maxSuggestions bounds the entity names offered for an unknown entity.
const maxSuggestions = 3

// Index is a sparse entity → {year → value} store.
type Index struct {
	Dataset     string
	Entity      string        // entity column identifier
	Layout      schema.Layout // layout the index was built from
	ValueColumn string        // long layout only

	Coercion    ValueCoercionWarning
	Overwrites  int // duplicate (entity, year) pairs replaced
	SkippedRows int // rows with a blank entity cell

	series   map[string]map[int]float64
	entities []string
	years    []int
}

// BuildIndex reshapes a normalized table into an Index.
func BuildIndex(t *schema.Table, opts ...Option) (*Index, error) {
	cfg := applyOptions(opts)

	idx := &Index{
		Dataset: t.Name,
		Entity:  t.Entity(),
		Layout:  t.Layout(),
		series:  make(map[string]map[int]float64),
	}

	switch idx.Layout {
	case schema.LayoutLong:
		valueCol, err := resolveValueColumn(t, cfg.ValueColumn)
		if err != nil {
			return nil, err
		}
		idx.ValueColumn = valueCol
		idx.ingestLong(t)
	case schema.LayoutWide:
		idx.ingestWide(t)
	default:
		return nil, &schema.SchemaError{Kind: schema.NoTimeColumn, Table: t.Name}
	}

	idx.finish()

	log := cfg.Logger.WithFields(logrus.Fields{
		"dataset":  idx.Dataset,
		"layout":   idx.Layout.String(),
		"entities": len(idx.entities),
		"years":    len(idx.years),
	})
	if idx.Coercion.Any() {
		log.WithField("dropped", idx.Coercion.Dropped).Warn("⚠️ malformed cells dropped: " + idx.Coercion.String())
	}
	if idx.Overwrites > 0 {
		log.WithField("overwrites", idx.Overwrites).Info("duplicate entity/year rows, last row kept")
	}
	log.Debug("🗂️ index built")

	return idx, nil
}

// resolveValueColumn picks the long-layout value column: the requested one,
// or the only measurement column.
func resolveValueColumn(t *schema.Table, requested string) (string, error) {
	measurements := t.Measurements()
	if requested != "" {
		for _, m := range measurements {
			if m == requested {
				return m, nil
			}
		}
		return "", &schema.SchemaError{
			Kind:   schema.NoMeasurementColumn,
			Table:  t.Name,
			Column: requested,
			Labels: measurements,
		}
	}

	switch len(measurements) {
	case 0:
		return "", &schema.SchemaError{Kind: schema.NoMeasurementColumn, Table: t.Name}
	case 1:
		return measurements[0], nil
	default:
		return "", &schema.SchemaError{
			Kind:   schema.AmbiguousValueColumn,
			Table:  t.Name,
			Labels: measurements,
		}
	}
}

func (idx *Index) ingestLong(t *schema.Table) {
	timeKey, _ := t.TimeKey()
	for row := 0; row < t.Len(); row++ {
		entity, ok := idx.entityAt(t, row)
		if !ok {
			continue
		}
		yearCell := t.Cell(row, timeKey)
		year, ok := parseYear(yearCell)
		if !ok {
			idx.Coercion.record(row, timeKey, yearCell)
			continue
		}
		cell := t.Cell(row, idx.ValueColumn)
		v, ok := parseValue(cell)
		if !ok {
			idx.Coercion.record(row, idx.ValueColumn, cell)
			continue
		}
		idx.put(entity, year, v)
	}
}

func (idx *Index) ingestWide(t *schema.Table) {
	years := t.YearColumns()
	for row := 0; row < t.Len(); row++ {
		entity, ok := idx.entityAt(t, row)
		if !ok {
			continue
		}
		for _, col := range years {
			cell := t.Cell(row, col.Name)
			v, ok := parseValue(cell)
			if !ok {
				idx.Coercion.record(row, col.Name, cell)
				continue
			}
			idx.put(entity, col.Year, v)
		}
	}
}

func (idx *Index) entityAt(t *schema.Table, row int) (string, bool) {
	entity := strings.TrimSpace(t.Cell(row, idx.Entity))
	if entity == "" {
		idx.SkippedRows++
		return "", false
	}
	return entity, true
}

func (idx *Index) put(entity string, year int, v float64) {
	byYear, ok := idx.series[entity]
	if !ok {
		byYear = make(map[int]float64)
		idx.series[entity] = byYear
	}
	if _, dup := byYear[year]; dup {
		idx.Overwrites++
	}
	byYear[year] = v
}

// finish computes the sorted entity and year lists.
func (idx *Index) finish() {
	seenYears := make(map[int]bool)
	idx.entities = make([]string, 0, len(idx.series))
	for entity, byYear := range idx.series {
		idx.entities = append(idx.entities, entity)
		for y := range byYear {
			seenYears[y] = true
		}
	}
	sort.Strings(idx.entities)

	idx.years = make([]int, 0, len(seenYears))
	for y := range seenYears {
		idx.years = append(idx.years, y)
	}
	sort.Ints(idx.years)
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Entities returns entity identifiers in sorted order.
func (idx *Index) Entities() []string {
	out := make([]string, len(idx.entities))
	copy(out, idx.entities)
	return out
}

// Years returns the years holding at least one value, ascending.
func (idx *Index) Years() []int {
	out := make([]int, len(idx.years))
	copy(out, idx.years)
	return out
}

// LatestYear returns the most recent year, if any.
func (idx *Index) LatestYear() (int, bool) {
	if len(idx.years) == 0 {
		return 0, false
	}
	return idx.years[len(idx.years)-1], true
}

// HasYear reports whether any entity has a value for year.
func (idx *Index) HasYear(year int) bool {
	i := sort.SearchInts(idx.years, year)
	return i < len(idx.years) && idx.years[i] == year
}

// HasEntity reports whether the entity has at least one value.
func (idx *Index) HasEntity(entity string) bool {
	_, ok := idx.series[entity]
	return ok
}

// Value returns the value stored for (entity, year).
func (idx *Index) Value(entity string, year int) (float64, bool) {
	v, ok := idx.series[entity][year]
	return v, ok
}

// Len returns the number of stored (entity, year) values.
func (idx *Index) Len() int {
	n := 0
	for _, byYear := range idx.series {
		n += len(byYear)
	}
	return n
}

// Series returns an entity's values ordered by year.
func (idx *Index) Series(entity string) ([]Point, error) {
	byYear, ok := idx.series[entity]
	if !ok {
		return nil, &QueryError{
			Kind:        UnknownEntity,
			Dataset:     idx.Dataset,
			Entity:      entity,
			Suggestions: idx.Suggest(entity),
		}
	}

	points := make([]Point, 0, len(byYear))
	for y, v := range byYear {
		points = append(points, Point{Year: y, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points, nil
}

// Suggest returns up to three entity names that fuzzily match name,
// closest first.
func (idx *Index) Suggest(name string) []string {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(name, idx.entities)
	sort.Stable(ranks)

	out := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
