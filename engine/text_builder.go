package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — Produces TextData for headline summaries
// ============================================================================
// Adaptation reports the leading strategy, economic the total impact, and
// emissions the change between the first and last year on record.
// ============================================================================

// BuildText summarises an already-ordered series. Returns nil when empty.
func BuildText(view View, points []ChartPoint) *TextData {
	if len(points) == 0 {
		return nil
	}

	var total float64
	for _, p := range points {
		total += p.Value
	}

	text := &TextData{
		RawValue: total,
		Unit:     view.Unit(),
		Count:    len(points),
		Period:   DerivePeriod(view, points),
	}

	switch view {
	case ViewAdaptation:
		top := points[0]
		for _, p := range points[1:] {
			if p.Value > top.Value {
				top = p
			}
		}
		text.Value = fmt.Sprintf("%s (%s of %s)", top.Label, FormatNumber(top.Value), FormatNumber(total))
		text.RawValue = top.Value
	case ViewEmissions:
		text.Growth = BuildGrowth(points)
		text.Value = fmt.Sprintf("%s %s", FormatNumber(total), text.Unit)
		if text.Growth.Direction != DirectionInsufficient {
			text.Value = growthDisplay(text.Growth)
		}
	default:
		text.Value = fmt.Sprintf("%s %s", FormatNumber(total), text.Unit)
	}
	return text
}

// ============================================================================
// GROWTH BUILDER
// ============================================================================

const (
	DirectionIncreased    = "increased"
	DirectionDecreased    = "decreased"
	DirectionUnchanged    = "unchanged"
	DirectionInsufficient = "insufficient data"
)

// BuildGrowth compares the earliest and latest year of an emissions series.
// points must already be in year order.
func BuildGrowth(points []ChartPoint) *GrowthData {
	if len(points) < 2 {
		g := &GrowthData{Direction: DirectionInsufficient}
		if len(points) == 1 {
			g.EarliestValue, g.LatestValue = points[0].Value, points[0].Value
			g.EarliestPeriod, g.LatestPeriod = points[0].Label, points[0].Label
		}
		return g
	}

	earliest := points[0]
	latest := points[len(points)-1]

	change := latest.Value - earliest.Value
	var percent float64
	if earliest.Value != 0 {
		percent = (change / earliest.Value) * 100
	}

	direction := DirectionUnchanged
	if percent > 0.5 {
		direction = DirectionIncreased
	} else if percent < -0.5 {
		direction = DirectionDecreased
	}

	return &GrowthData{
		EarliestValue:  earliest.Value,
		LatestValue:    latest.Value,
		EarliestPeriod: earliest.Label,
		LatestPeriod:   latest.Label,
		ChangeAmount:   change,
		ChangePercent:  percent,
		Direction:      direction,
	}
}

func growthDisplay(g *GrowthData) string {
	abs := g.ChangePercent
	if abs < 0 {
		abs = -abs
	}
	switch g.Direction {
	case DirectionIncreased:
		return fmt.Sprintf("↑ %.1f%%", abs)
	case DirectionDecreased:
		return fmt.Sprintf("↓ %.1f%%", abs)
	}
	return "→ No change"
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod describes the span covered by a series. Only emissions carry
// years; the other views cover the whole file.
func DerivePeriod(view View, points []ChartPoint) string {
	if len(points) == 0 {
		return "No data"
	}
	if view != ViewEmissions {
		return "All years"
	}

	first, last := 0, 0
	found := false
	for _, p := range points {
		y, ok := ParseYear(p.Label)
		if !ok {
			continue
		}
		if !found || y < first {
			first = y
		}
		if !found || y > last {
			last = y
		}
		found = true
	}
	switch {
	case !found:
		return "All years"
	case first == last:
		return yearKey(first)
	}
	return fmt.Sprintf("%d – %d", first, last)
}
