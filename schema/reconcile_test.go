package schema

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// RECONCILER TESTS
// ============================================================================

func mustNormalize(t *testing.T, name string, cfg Config, columns ...string) *Table {
	t.Helper()
	table, err := Normalize(rawTable(name, columns), cfg)
	if err != nil {
		t.Fatalf("Normalize(%s) failed: %v", name, err)
	}
	return table
}

func TestCompareDisjointSchemas(t *testing.T) {
	cfgA := Config{EntityKeys: []string{"Country"}}
	cfgB := Config{EntityKeys: []string{"Nation"}}
	a := mustNormalize(t, "a.csv", cfgA, "Country", "GDP")
	b := mustNormalize(t, "b.csv", cfgB, "Nation", "Population")

	report := Compare(a, b)
	if len(report.Common) != 0 {
		t.Errorf("common = %v, want empty", report.Common)
	}
	if report.Verdict != Incompatible || report.Compatible() {
		t.Errorf("verdict = %s, want incompatible", report.Verdict)
	}
	assertStrings(t, report.Exclusive["a.csv"], []string{"Country", "GDP"}, "exclusive a")
}

func TestCompareCaseSensitive(t *testing.T) {
	d1 := mustNormalize(t, "d1.csv", DefaultConfig(), "Year", "Country", "GDP")
	d2 := mustNormalize(t, "d2.csv", Config{EntityKeys: []string{"country"}, TimeKeys: []string{"year"}},
		"year", "country", "population")

	report := Compare(d1, d2)
	if len(report.Common) != 0 {
		t.Errorf("common = %v, want empty", report.Common)
	}
	if report.Verdict != Incompatible {
		t.Errorf("verdict = %s, want incompatible", report.Verdict)
	}
}

func TestCompareIntersectionIsExactAndOrderInvariant(t *testing.T) {
	cfg := DefaultConfig()
	a := mustNormalize(t, "a.csv", cfg, "Country", "Year", "GDP", "Population")
	b := mustNormalize(t, "b.csv", cfg, "Population", "Country", "Year", "Life expectancy")
	c := mustNormalize(t, "c.csv", cfg, "Year", "Country", "Population", "Status")

	want := []string{"Country", "Population", "Year"}
	orders := [][]*Table{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, order := range orders {
		report := Compare(order...)
		assertStrings(t, report.Common, want, "common columns")
		if report.Verdict != Compatible {
			t.Errorf("verdict = %s, want compatible", report.Verdict)
		}
	}

	report := Compare(a, b, c)
	assertStrings(t, report.Datasets, []string{"a.csv", "b.csv", "c.csv"}, "datasets")
	assertStrings(t, report.Exclusive["b.csv"], []string{"Life expectancy"}, "exclusive b")
}

func TestCompareInsufficientData(t *testing.T) {
	a := mustNormalize(t, "a.csv", DefaultConfig(), "Country", "GDP")

	for _, tables := range [][]*Table{nil, {a}} {
		report := Compare(tables...)
		if report.Verdict != InsufficientData {
			t.Errorf("Compare(%d tables) verdict = %s, want insufficient data", len(tables), report.Verdict)
		}
		if report.Common == nil {
			t.Error("common should be an empty slice, not nil")
		}
	}
}

func TestReconcileSkipsFailures(t *testing.T) {
	cfg := DefaultConfig()
	a := mustNormalize(t, "a.csv", cfg, "Country", "GDP")
	c := mustNormalize(t, "c.csv", cfg, "Country", "GDP", "Region")

	report := Reconcile([]DatasetResult{
		{Source: "a.csv", Table: a},
		{Source: "b.csv", Err: errors.New("open b.csv: no such file")},
		{Source: "c.csv", Table: c},
	})

	assertStrings(t, report.Datasets, []string{"a.csv", "c.csv"}, "datasets")
	assertStrings(t, report.Common, []string{"Country", "GDP"}, "common")
	if len(report.Failures) != 1 || report.Failures[0].Source != "b.csv" {
		t.Errorf("failures = %+v", report.Failures)
	}

	degraded := Reconcile([]DatasetResult{
		{Source: "a.csv", Table: a},
		{Source: "b.csv", Err: errors.New("boom")},
	})
	if degraded.Verdict != InsufficientData {
		t.Errorf("verdict = %s, want insufficient data", degraded.Verdict)
	}
}

func TestReportSummary(t *testing.T) {
	cfg := DefaultConfig()
	a := mustNormalize(t, "a.csv", cfg, "Country", "GDP")
	b := mustNormalize(t, "b.csv", cfg, "Country", "GDP")

	lines := Compare(a, b).Summary()
	text := strings.Join(lines, "\n")
	for _, want := range []string{"Datasets compared: 2", "Common columns (2): Country, GDP", "compatible"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	single := strings.Join(Compare(a).Summary(), "\n")
	if !strings.Contains(single, "Insufficient data") {
		t.Errorf("summary should explain insufficient data:\n%s", single)
	}
}
