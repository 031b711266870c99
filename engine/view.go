package engine

import (
	"cmp"
	"slices"
	"strconv"
)

// ============================================================================
// VIEW SELECTOR — Country slice → ordered series
// ============================================================================
// Selection is a pure read of an immutable Aggregate. Ordering rules:
//   adaptation  label ascending (display order is free; fixed for stability)
//   economic    value descending, ties by label
//   emissions   numeric year ascending
// ============================================================================

// Select looks up one country's slice of view in ds.
func Select(ds *Dataset, view View, country string) (map[string]float64, bool, error) {
	agg, err := ds.Aggregate(view)
	if err != nil {
		return nil, false, err
	}
	values, ok := agg.Select(country)
	return values, ok, nil
}

// SeriesFor orders a selected slice into presentation order for view.
func SeriesFor(view View, values map[string]float64) []ChartPoint {
	points := make([]ChartPoint, 0, len(values))
	for k, v := range values {
		points = append(points, ChartPoint{Label: k, Value: v})
	}
	SortPoints(view, points)
	return points
}

// SortPoints sorts points in place using view's ordering rule.
func SortPoints(view View, points []ChartPoint) {
	switch view {
	case ViewEconomic:
		slices.SortFunc(points, func(a, b ChartPoint) int {
			if c := cmp.Compare(b.Value, a.Value); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	case ViewEmissions:
		slices.SortFunc(points, func(a, b ChartPoint) int {
			ya, okA := ParseYear(a.Label)
			yb, okB := ParseYear(b.Label)
			switch {
			case okA && okB:
				if c := cmp.Compare(ya, yb); c != 0 {
					return c
				}
			case okA:
				return -1
			case okB:
				return 1
			}
			return cmp.Compare(a.Label, b.Label)
		})
	default:
		slices.SortFunc(points, func(a, b ChartPoint) int {
			return cmp.Compare(a.Label, b.Label)
		})
	}
}

// YearValues splits an emissions series into numeric x and y slices.
// Points whose label is not a year are skipped.
func YearValues(points []ChartPoint) (xs, ys []float64) {
	xs = make([]float64, 0, len(points))
	ys = make([]float64, 0, len(points))
	for _, p := range points {
		y, err := strconv.Atoi(p.Label)
		if err != nil {
			continue
		}
		xs = append(xs, float64(y))
		ys = append(ys, p.Value)
	}
	return xs, ys
}
