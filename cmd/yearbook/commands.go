package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spektr-org/yearbook/engine"
	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// INSPECT: header, column profiles and a rows preview
// ============================================================================

type inspectOutput struct {
	Source  string                 `json:"source"`
	Layout  string                 `json:"layout,omitempty"`
	Entity  string                 `json:"entity,omitempty"`
	TimeKey string                 `json:"timeKey,omitempty"`
	Rows    int                    `json:"rows"`
	Columns []schema.ColumnProfile `json:"columns,omitempty"`
	Preview [][]string             `json:"preview,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Show each dataset's columns, roles and first rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets := a.session.Load(args...)

			var firstErr error
			outputs := make([]inspectOutput, 0, len(datasets))
			for _, ds := range datasets {
				if !ds.OK() {
					if firstErr == nil {
						firstErr = ds.Err
					}
					outputs = append(outputs, inspectOutput{Source: ds.Source, Error: ds.Err.Error()})
					continue
				}
				outputs = append(outputs, describeDataset(ds.Table, preview))
			}

			if a.out.structured() {
				if err := a.out.json(outputs); err != nil {
					return err
				}
				return firstErr
			}

			for i, o := range outputs {
				if i > 0 {
					a.out.note("")
				}
				if o.Error != "" {
					a.out.heading("%s", o.Source)
					a.out.note("%s %s", color.RedString("unavailable:"), o.Error)
					continue
				}
				if err := writeInspect(a.out, o); err != nil {
					return err
				}
			}
			return firstErr
		},
	}
	cmd.Flags().IntVarP(&preview, "rows", "n", 5, "Rows to preview")
	return cmd
}

func describeDataset(t *schema.Table, preview int) inspectOutput {
	o := inspectOutput{
		Source:  t.Name,
		Layout:  t.Layout().String(),
		Entity:  t.Entity(),
		Rows:    t.Len(),
		Columns: schema.Describe(t),
	}
	if key, ok := t.TimeKey(); ok {
		o.TimeKey = key
	}

	if preview > t.Len() {
		preview = t.Len()
	}
	cols := t.Columns()
	for r := 0; r < preview; r++ {
		row := make([]string, len(cols))
		for c, name := range cols {
			row[c] = t.Cell(r, name)
		}
		o.Preview = append(o.Preview, row)
	}
	return o
}

func writeInspect(out renderer, o inspectOutput) error {
	headers := []string{"Column", "Role", "Type", "Filled", "Empty", "Unique", "Samples"}
	rows := make([][]string, len(o.Columns))
	for i, c := range o.Columns {
		rows[i] = []string{
			c.Column, c.Role.String(), string(c.Type),
			strconv.Itoa(c.Filled), strconv.Itoa(c.Empty), strconv.Itoa(c.Unique),
			strings.Join(c.Samples, ", "),
		}
	}

	if out.format == formatCSV {
		return out.csv(append([]string{"Source"}, headers...), prefixRows(o.Source, rows))
	}

	out.heading("%s", o.Source)
	line := fmt.Sprintf("%s layout, entity column %q, %d rows", o.Layout, o.Entity, o.Rows)
	if o.TimeKey != "" {
		line += fmt.Sprintf(", time column %q", o.TimeKey)
	}
	out.note("%s", line)
	if err := out.plain(headers, rows); err != nil {
		return err
	}

	if len(o.Preview) > 0 {
		out.note("First %d rows:", len(o.Preview))
		names := make([]string, len(o.Columns))
		for i, c := range o.Columns {
			names[i] = c.Column
		}
		return out.plain(names, o.Preview)
	}
	return nil
}

func prefixRows(prefix string, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string{prefix}, r...)
	}
	return out
}

// ============================================================================
// COMPARE: column-set reconciliation
// ============================================================================

func newCompareCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "compare FILE...",
		Short: "Check whether datasets share any columns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := a.session.CompareSchemas(a.session.Load(args...))

			switch {
			case a.out.structured():
				if err := a.out.json(report); err != nil {
					return err
				}
			case a.out.format == formatCSV:
				rows := make([][]string, len(report.Common))
				for i, c := range report.Common {
					rows[i] = []string{c}
				}
				if err := a.out.csv([]string{"Common column"}, rows); err != nil {
					return err
				}
			default:
				writeCompare(a.out, report)
			}

			if strict && !report.Compatible() {
				return &cliError{code: exitValidation, err: fmt.Errorf("datasets are not compatible (%s)", report.Verdict)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 2 unless the datasets are compatible")
	return cmd
}

func writeCompare(out renderer, report schema.CompatibilityReport) {
	paint := color.New(color.FgYellow)
	switch report.Verdict {
	case schema.Compatible:
		paint = color.New(color.FgGreen, color.Bold)
	case schema.Incompatible:
		paint = color.New(color.FgRed, color.Bold)
	}

	lines := report.Summary()
	for i, line := range lines {
		if i == len(lines)-1 {
			paint.Fprintln(out.w, line)
			continue
		}
		fmt.Fprintln(out.w, line)
	}

	if len(report.Exclusive) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Exclusive))
	for _, source := range report.Datasets {
		if cols := report.Exclusive[source]; len(cols) > 0 {
			rows = append(rows, []string{source, strings.Join(cols, ", ")})
		}
	}
	_ = out.plain([]string{"Dataset", "Columns not shared"}, rows)
}

// ============================================================================
// QUERY: one year's values
// ============================================================================

type queryOutput struct {
	Result   *engine.Result              `json:"result"`
	Chart    *engine.ChartConfig         `json:"chart,omitempty"`
	Coercion engine.ValueCoercionWarning `json:"coercion"`
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		spec        engine.QuerySpec
		sortBy      string
		subset      []string
		valueColumn string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "query FILE",
		Short: "List entity values for one year",
		Example: `  yearbook query population.csv --year 1990 --sort "Highest to Lowest" --limit 10
  yearbook query life.csv --search per --value-column "Life expectancy"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok := engine.ParseDirection(sortBy)
			if !ok {
				return usageErrorf("unknown sort %q (expected asc, desc or none)", sortBy)
			}
			spec.Sort = dir
			if cmd.Flags().Changed("subset") {
				spec.Subset = subset
				if spec.Subset == nil {
					spec.Subset = []string{}
				}
			}

			idx, err := a.index(args[0], valueColumn)
			if err != nil {
				return err
			}
			if strict && spec.Year != 0 {
				if err := engine.ValidateYear(idx, spec.Year); err != nil {
					return err
				}
			}

			res, err := a.session.Query(idx, spec)
			if err != nil {
				return err
			}

			if a.out.structured() {
				return a.out.json(queryOutput{
					Result:   res,
					Chart:    engine.BuildYearChart(idx, res),
					Coercion: idx.Coercion,
				})
			}
			if err := a.out.tableData(engine.BuildYearTable(idx, res)); err != nil {
				return err
			}
			a.out.note("%s", res.Reply)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&spec.Year, "year", "y", 0, "Year to select (default: latest)")
	f.StringVarP(&spec.Search, "search", "s", "", "Keep entities whose name contains this text")
	f.StringVar(&sortBy, "sort", "", `Sort by value: asc, desc, "Highest to Lowest", "Lowest to Highest"`)
	f.StringSliceVar(&subset, "subset", nil, "Keep only these entities")
	f.IntVarP(&spec.Limit, "limit", "l", 0, "Maximum rows (0 = all)")
	f.StringVar(&valueColumn, "value-column", "", "Value column for long-layout datasets")
	f.BoolVar(&strict, "strict", false, "Fail when the year has no values")
	return cmd
}

// ============================================================================
// ENTITIES: names present in a year
// ============================================================================

type entitiesOutput struct {
	Dataset  string   `json:"dataset"`
	Year     int      `json:"year"`
	Entities []string `json:"entities"`
}

func newEntitiesCmd(a *app) *cobra.Command {
	var (
		year        int
		search      string
		valueColumn string
	)

	cmd := &cobra.Command{
		Use:   "entities FILE",
		Short: "List the entities that have a value in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(args[0], valueColumn)
			if err != nil {
				return err
			}
			if year == 0 {
				latest, ok := idx.LatestYear()
				if !ok {
					return &engine.QueryError{Kind: engine.NoData, Dataset: idx.Dataset}
				}
				year = latest
			}
			if err := engine.ValidateYear(idx, year); err != nil {
				return err
			}

			out := entitiesOutput{
				Dataset:  idx.Dataset,
				Year:     year,
				Entities: engine.EntitiesForYear(idx, year, strings.TrimSpace(search)),
			}
			if a.out.structured() {
				return a.out.json(out)
			}

			rows := make([][]string, len(out.Entities))
			for i, e := range out.Entities {
				rows[i] = []string{e}
			}
			a.out.heading("%s (%d)", idx.Entity, year)
			if err := a.out.plain([]string{idx.Entity}, rows); err != nil {
				return err
			}
			a.out.note("%d entities", len(out.Entities))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&year, "year", "y", 0, "Year (default: latest)")
	f.StringVarP(&search, "search", "s", "", "Keep entities whose name contains this text")
	f.StringVar(&valueColumn, "value-column", "", "Value column for long-layout datasets")
	return cmd
}

// ============================================================================
// SERIES: one entity across years
// ============================================================================

type seriesOutput struct {
	Entity string           `json:"entity"`
	Points []engine.Point   `json:"points"`
	Text   *engine.TextData `json:"text"`
}

type seriesSet struct {
	Dataset string              `json:"dataset"`
	Series  []seriesOutput      `json:"series"`
	Chart   *engine.ChartConfig `json:"chart,omitempty"`
}

func newSeriesCmd(a *app) *cobra.Command {
	var valueColumn string

	cmd := &cobra.Command{
		Use:   "series FILE ENTITY...",
		Short: "Show entities' values across all years",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(args[0], valueColumn)
			if err != nil {
				return err
			}

			set := seriesSet{Dataset: idx.Dataset}
			for _, entity := range args[1:] {
				points, err := a.session.Series(idx, entity)
				if err != nil {
					return err
				}
				set.Series = append(set.Series, seriesOutput{
					Entity: entity,
					Points: points,
					Text:   engine.BuildSeriesText(points),
				})
			}

			if a.out.structured() {
				set.Chart = engine.BuildSeriesChart(idx, args[1:])
				return a.out.json(set)
			}
			if a.out.format == formatCSV {
				var rows [][]string
				for _, s := range set.Series {
					for _, p := range s.Points {
						rows = append(rows, []string{s.Entity, strconv.Itoa(p.Year), strconv.FormatFloat(p.Value, 'f', -1, 64)})
					}
				}
				return a.out.csv([]string{idx.Entity, "Year", "Value"}, rows)
			}

			for i, s := range set.Series {
				if i > 0 {
					a.out.note("")
				}
				if err := a.out.tableData(engine.BuildSeriesTable(idx, s.Entity, s.Points)); err != nil {
					return err
				}
				a.out.note("Trend: %s (%s)", s.Text.Value, s.Text.Period)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&valueColumn, "value-column", "", "Value column for long-layout datasets")
	return cmd
}

// ============================================================================
// MEASURES: one entity from several datasets on a shared year axis
// ============================================================================

type measuresOutput struct {
	Entity string              `json:"entity"`
	Table  *engine.TableData   `json:"table"`
	Chart  *engine.ChartConfig `json:"chart,omitempty"`
}

func newMeasuresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "measures ENTITY FILE...",
		Short:   "Show one entity's values from several datasets side by side",
		Example: `  yearbook measures Peru gdp.csv population.csv`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := args[0]
			indexes, err := a.indexes(args[1:])
			if err != nil {
				return err
			}
			// Datasets without the entity are left out; none having it is an error.
			var missing error
			found := false
			for _, idx := range indexes {
				if _, err := a.session.Series(idx, entity); err != nil {
					if missing == nil {
						missing = err
					}
					continue
				}
				found = true
			}
			if !found {
				return missing
			}

			table := engine.BuildMeasuresTable(entity, indexes...)
			if a.out.structured() {
				return a.out.json(measuresOutput{
					Entity: entity,
					Table:  table,
					Chart:  engine.BuildMeasuresChart(entity, indexes...),
				})
			}
			return a.out.tableData(table)
		},
	}
}

// ============================================================================
// AGGREGATE: grouped composite ranking
// ============================================================================

type aggregateOutput struct {
	Ranking *engine.Ranking     `json:"ranking"`
	Chart   *engine.ChartConfig `json:"chart,omitempty"`
}

func newAggregateCmd(a *app) *cobra.Command {
	var (
		spec  engine.AggregateSpec
		where []string
	)

	cmd := &cobra.Command{
		Use:   "aggregate FILE",
		Short: "Rank groups by the average of their rows' composite scores",
		Example: `  yearbook aggregate aqi.csv --contains "AQI Value"
  yearbook aggregate aqi.csv --columns "AQI Value" --group-by City --where Country=India`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseWhere(where)
			if err != nil {
				return err
			}
			spec.Where = filters

			ds, err := a.loadOne(args[0])
			if err != nil {
				return err
			}
			ranking, err := a.session.Aggregate(ds, spec)
			if err != nil {
				return err
			}

			if a.out.structured() {
				return a.out.json(aggregateOutput{Ranking: ranking, Chart: engine.BuildRankingChart(ranking)})
			}
			return a.out.tableData(engine.BuildRankingTable(ranking))
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&spec.Columns, "columns", nil, "Measurement columns to combine")
	f.StringVar(&spec.ColumnsContaining, "contains", "", "Combine every measurement column containing this text")
	f.StringVar(&spec.GroupBy, "group-by", "", "Grouping column (default: the entity column)")
	f.StringArrayVar(&where, "where", nil, "Row filter COLUMN=VALUE (repeatable)")
	f.IntVarP(&spec.Limit, "limit", "l", 0, "Maximum groups (0 = all)")
	return cmd
}

// parseWhere turns COLUMN=VALUE pairs into filters. Repeating a column
// allows any of its values.
func parseWhere(pairs []string) (engine.Filters, error) {
	f := engine.Filters{Columns: map[string][]string{}}
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return f, usageErrorf("invalid --where %q (expected COLUMN=VALUE)", p)
		}
		f.Columns[col] = append(f.Columns[col], strings.TrimSpace(val))
	}
	return f, nil
}
