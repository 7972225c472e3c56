package engine

import (
	"fmt"
	"math"
	"strconv"
)

// ============================================================================
// TEXT BUILDER: Change-over-time summary for an entity's series
// ============================================================================

// BuildSeriesText computes growth from the earliest to the latest year.
// Points must be ordered by year, as Index.Series returns them.
func BuildSeriesText(points []Point) *TextData {
	if len(points) == 0 {
		return &TextData{
			Value:  "No data",
			Period: "No data",
		}
	}

	earliest := points[0]
	latest := points[len(points)-1]
	period := DerivePeriod(points)

	if len(points) < 2 {
		return &TextData{
			Value:    FormatNumber(latest.Value),
			RawValue: latest.Value,
			Period:   period,
			Count:    1,
			Growth: &GrowthData{
				EarliestValue:  latest.Value,
				LatestValue:    latest.Value,
				EarliestPeriod: period,
				LatestPeriod:   period,
				Direction:      "insufficient data",
			},
		}
	}

	changeAmount := latest.Value - earliest.Value
	var changePercent float64
	if earliest.Value != 0 {
		changePercent = (changeAmount / earliest.Value) * 100
	}

	direction := "unchanged"
	if changePercent > 0.5 {
		direction = "increased"
	} else if changePercent < -0.5 {
		direction = "decreased"
	}

	// No percentage exists from a zero baseline; report the absolute change.
	fromZero := earliest.Value == 0 && changeAmount != 0
	rawValue := changePercent
	magnitude := fmt.Sprintf("%.1f%%", math.Abs(changePercent))
	if fromZero {
		direction = "increased"
		if changeAmount < 0 {
			direction = "decreased"
		}
		rawValue = changeAmount
		magnitude = FormatNumber(math.Abs(changeAmount))
	}

	var displayValue string
	switch direction {
	case "increased":
		displayValue = "↑ " + magnitude
	case "decreased":
		displayValue = "↓ " + magnitude
	default:
		displayValue = "→ No change"
	}

	return &TextData{
		Value:    displayValue,
		RawValue: rawValue,
		Period:   period,
		Count:    len(points),
		Growth: &GrowthData{
			EarliestValue:  earliest.Value,
			LatestValue:    latest.Value,
			EarliestPeriod: strconv.Itoa(earliest.Year),
			LatestPeriod:   strconv.Itoa(latest.Year),
			ChangeAmount:   changeAmount,
			ChangePercent:  changePercent,
			Direction:      direction,
		},
	}
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable period string from ordered points.
func DerivePeriod(points []Point) string {
	switch len(points) {
	case 0:
		return "No data"
	case 1:
		return strconv.Itoa(points[0].Year)
	default:
		return fmt.Sprintf("%d – %d", points[0].Year, points[len(points)-1].Year)
	}
}
