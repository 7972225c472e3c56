package schema

import (
	"testing"
)

// ============================================================================
// PROFILE TESTS
// ============================================================================

var lifeRows = [][]string{
	{"Chad", "2015", "53.7", "Developing"},
	{"Chad", "2014", "53.1", "Developing"},
	{"Peru", "2015", "75.5", "Developing"},
	{"Norway", "2015", "", "Developed"},
	{"Japan", "2015", "n/a", "Developed"},
}

func TestDescribe(t *testing.T) {
	table, err := Normalize(rawTable("life.csv",
		[]string{"Country", "Year", "life_expectancy", "Status"}, lifeRows...), DefaultConfig())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	profiles := Describe(table)
	if len(profiles) != 4 {
		t.Fatalf("got %d profiles, want 4", len(profiles))
	}

	country := profiles[0]
	if country.Role != RoleEntity || country.Type != TypeText || country.Unique != 4 {
		t.Errorf("country profile = %+v", country)
	}
	assertContains(t, country.Samples, "Chad", "country samples")

	year := profiles[1]
	if year.Role != RoleTime || year.Type != TypeNumeric {
		t.Errorf("year profile = %+v", year)
	}

	life := profiles[2]
	if life.DisplayName != "Life Expectancy" {
		t.Errorf("display name = %q", life.DisplayName)
	}
	if life.Filled != 4 || life.Empty != 1 {
		t.Errorf("filled/empty = %d/%d, want 4/1", life.Filled, life.Empty)
	}
	if life.Type != TypeText {
		t.Errorf("3 of 4 numeric is below threshold, got %s", life.Type)
	}

	status := profiles[3]
	if status.CardinalityHint != "low" || status.Unique != 2 {
		t.Errorf("status profile = %+v", status)
	}
}

func TestDescribeSampleLimits(t *testing.T) {
	table, err := Normalize(rawTable("life.csv",
		[]string{"Country", "Year"}, lifeRows...), DefaultConfig())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	profiles := Describe(table, ProfileOptions{SampleSize: 2, MaxSamples: 1})
	if profiles[0].Filled != 2 {
		t.Errorf("SampleSize should limit rows, filled = %d", profiles[0].Filled)
	}
	assertStrings(t, profiles[0].Samples, []string{"Chad"}, "samples")
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		values   []string
		expected ValueType
	}{
		{[]string{"1", "2.5", "-3"}, TypeNumeric},
		{[]string{"1", "2", "3", "4", "x"}, TypeNumeric},
		{[]string{"1", "x"}, TypeText},
		{[]string{"Chad", "Peru"}, TypeText},
		{[]string{"NaN", "Inf", "-Infinity", "nan"}, TypeText},
		{[]string{"1", "2", "NaN"}, TypeText},
		{nil, TypeEmpty},
	}

	for _, tt := range tests {
		got := detectType(tt.values)
		if got != tt.expected {
			t.Errorf("detectType(%v) = %s, want %s", tt.values, got, tt.expected)
		}
	}
}

func TestIsNumericRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "Infinity", "1e400"} {
		if isNumeric(s) {
			t.Errorf("isNumeric(%q) = true, want false", s)
		}
	}
	for _, s := range []string{"0", " 2.5 ", "-3", "1e10"} {
		if !isNumeric(s) {
			t.Errorf("isNumeric(%q) = false, want true", s)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"life_expectancy", "Life Expectancy"},
		{"Country", "Country"},
		{"PM2.5 AQI Value", "PM2.5 AQI Value"},
		{"co-aqi", "Co Aqi"},
		{"1990", "1990"},
	}

	for _, tt := range tests {
		got := toDisplayName(tt.input)
		if got != tt.expected {
			t.Errorf("toDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
