package engine

import "fmt"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from an ordered series
// ============================================================================
// Titles and layout follow the dashboard: pie for adaptation strategies,
// bar for economic impact, line+markers for emissions.
// ============================================================================

const (
	defaultWidth    = 800
	defaultHeight   = 500
	defaultFontSize = 16
)

// Default color palette for bar charts (one colour per bar).
var defaultColors = []string{
	"#2ca02c", // green
	"#1f77b4", // blue
	"#ff7f0e", // orange
	"#d62728", // red
	"#9467bd", // purple
	"#8c564b", // brown
	"#e377c2", // pink
	"#7f7f7f", // gray
	"#bcbd22", // yellow-green
	"#17becf", // light blue
}

// DefaultPalette returns a copy of the default palette.
func DefaultPalette() []string {
	out := make([]string, len(defaultColors))
	copy(out, defaultColors)
	return out
}

// ChartTitle is the chart title for view and country.
func ChartTitle(view View, country string) string {
	switch view {
	case ViewAdaptation:
		return fmt.Sprintf("Distribusi Strategi Adaptasi (%s)", country)
	case ViewEconomic:
		return fmt.Sprintf("Dampak Ekonomi Berdasarkan Jenis Tanaman (%s)", country)
	case ViewEmissions:
		return fmt.Sprintf("CO₂ Emissions Over Time (%s)", country)
	}
	return country
}

// BuildChart produces a ChartConfig for an already-ordered series.
// Returns nil for an empty series: there is nothing to draw.
func BuildChart(view View, country string, points []ChartPoint, opts ...Option) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	cfg := applyOptions(opts)

	data := make([]ChartPoint, len(points))
	for i, p := range points {
		data[i] = ChartPoint{Label: p.Label, Value: RoundTo2(p.Value)}
	}

	chart := &ChartConfig{
		Title: ChartTitle(view, country),
		Layout: Layout{
			Width:    cfg.Width,
			Height:   cfg.Height,
			FontSize: defaultFontSize,
		},
		Options: RenderOptions{Responsive: true, DisplayModeBar: false},
	}

	switch view {
	case ViewAdaptation:
		chart.ChartType = "pie"
		chart.TextInfo = "label+percent"
		chart.HoverInfo = "label+value"
		chart.Layout.Margin = Margin{Left: 50, Right: 50, Top: 50, Bottom: 50}
		chart.Series = []ChartSeries{{Name: country, Data: data}}
		chart.Colors = assignColors(cfg.Palette, len(data))

	case ViewEconomic:
		chart.ChartType = "bar"
		chart.XAxis = "Jenis Tanaman"
		chart.YAxis = "Dampak Ekonomi (Juta USD)"
		chart.ShowGrid = true
		chart.Layout.XTickAngle = -45
		chart.Layout.YAutoMargin = true
		chart.Layout.Margin = Margin{Left: 80, Right: 50, Top: 50, Bottom: 120}
		chart.Series = []ChartSeries{{Name: country, Data: data}}
		chart.Colors = assignColors(cfg.Palette, len(data))

	case ViewEmissions:
		chart.ChartType = "line"
		chart.Mode = "lines+markers"
		chart.XAxis = "Year"
		chart.YAxis = "Emissions (MT)"
		chart.ShowGrid = true
		chart.ShowLegend = true
		chart.Layout.XTickMode = "linear"
		chart.Layout.XDTick = 5
		chart.Layout.YRangeMode = "tozero"
		chart.Layout.Margin = Margin{Left: 80, Right: 50, Top: 50, Bottom: 50}
		chart.Series = []ChartSeries{{
			Name:       country,
			Data:       data,
			Color:      cfg.Palette[1%len(cfg.Palette)],
			LineWidth:  2,
			MarkerSize: 6,
		}}

	default:
		return nil
	}

	return chart
}

// assignColors takes the first count colours, cycling when the palette is short.
func assignColors(palette []string, count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}
