package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/agriclimate/engine"
)

// ============================================================================
// RENDER — Draws a ChartConfig to SVG or PNG
// ============================================================================
// The engine describes a chart; this package hands that description to
// go-chart. Pie → chart.PieChart, bar → chart.BarChart,
// line → chart.Chart with one ContinuousSeries over the years.
// ============================================================================

var (
	// ErrNothingToRender reports a nil config or an empty series.
	ErrNothingToRender = errors.New("nothing to render")

	// ErrUnsupported reports a chart type or format this package cannot draw.
	ErrUnsupported = errors.New("unsupported")
)

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("%w: format %q", ErrUnsupported, s)
}

// ContentType is the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case PNG:
		return "image/png"
	}
	return "application/octet-stream"
}

func (f Format) provider() (chart.RendererProvider, error) {
	switch f {
	case SVG:
		return chart.SVG, nil
	case PNG:
		return chart.PNG, nil
	}
	return nil, fmt.Errorf("%w: format %q", ErrUnsupported, f)
}

// Render draws cfg to w in format.
func Render(w io.Writer, cfg *engine.ChartConfig, format Format) error {
	if cfg == nil || len(cfg.Series) == 0 || len(cfg.Series[0].Data) == 0 {
		return ErrNothingToRender
	}
	rp, err := format.provider()
	if err != nil {
		return err
	}

	switch cfg.ChartType {
	case "pie":
		err = pie(cfg).Render(rp, w)
	case "bar":
		err = bar(cfg).Render(rp, w)
	case "line":
		var ch chart.Chart
		ch, err = line(cfg)
		if err == nil {
			err = ch.Render(rp, w)
		}
	default:
		return fmt.Errorf("%w: chart type %q", ErrUnsupported, cfg.ChartType)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", cfg.ChartType, err)
	}
	return nil
}

// ============================================================================
// PIE
// ============================================================================

func pie(cfg *engine.ChartConfig) chart.PieChart {
	data := cfg.Series[0].Data

	var total float64
	for _, p := range data {
		total += p.Value
	}

	values := make([]chart.Value, 0, len(data))
	for i, p := range data {
		values = append(values, chart.Value{
			Label: pieLabel(cfg.TextInfo, p, total),
			Value: p.Value,
			Style: chart.Style{
				FillColor:   colorAt(cfg.Colors, i),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}

	return chart.PieChart{
		Title:      cfg.Title,
		TitleStyle: chart.Style{FontSize: float64(cfg.Layout.FontSize)},
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: chart.Style{Padding: padding(cfg.Layout.Margin)},
		Values:     values,
	}
}

// pieLabel honours "label+percent": the slice label carries its share.
func pieLabel(textInfo string, p engine.ChartPoint, total float64) string {
	if !strings.Contains(textInfo, "percent") || total == 0 {
		return p.Label
	}
	return fmt.Sprintf("%s (%.1f%%)", p.Label, p.Value/total*100)
}

// ============================================================================
// BAR
// ============================================================================

func bar(cfg *engine.ChartConfig) chart.BarChart {
	data := cfg.Series[0].Data

	bars := make([]chart.Value, 0, len(data))
	lo, hi := 0.0, 0.0
	for i, p := range data {
		col := colorAt(cfg.Colors, i)
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	yAxis := chart.YAxis{
		Name:           cfg.YAxis,
		Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		ValueFormatter: numberFormatter,
	}
	if cfg.ShowGrid {
		yAxis.GridMajorStyle = gridStyle()
	}

	barWidth := 0
	if n := len(bars); n > 0 {
		inner := cfg.Layout.Width - cfg.Layout.Margin.Left - cfg.Layout.Margin.Right
		barWidth = max(8, min(60, inner/(2*n)))
	}

	return chart.BarChart{
		Title:        cfg.Title,
		TitleStyle:   chart.Style{FontSize: float64(cfg.Layout.FontSize)},
		Width:        cfg.Layout.Width,
		Height:       cfg.Layout.Height,
		Background:   chart.Style{Padding: padding(cfg.Layout.Margin)},
		BarWidth:     barWidth,
		YAxis:        yAxis,
		UseBaseValue: lo < 0,
		BaseValue:    0,
		Bars:         bars,
	}
}

// ============================================================================
// LINE
// ============================================================================

func line(cfg *engine.ChartConfig) (chart.Chart, error) {
	s := cfg.Series[0]
	xs, ys := engine.YearValues(s.Data)
	if len(xs) == 0 {
		return chart.Chart{}, ErrNothingToRender
	}

	xMin, xMax := xs[0], xs[len(xs)-1]
	if len(xs) == 1 {
		// A lone point still needs a non-degenerate x range.
		xs = append(xs, xs[0])
		ys = append(ys, ys[0])
		xMin, xMax = xMin-1, xMax+1
	}

	yMin, yMax := 0.0, 0.0
	for _, y := range ys {
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}
	if yMax == yMin {
		yMax = yMin + 1
	}

	col := drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))
	series := chart.ContinuousSeries{
		Name:    s.Name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: col,
			StrokeWidth: float64(s.LineWidth),
			DotColor:    col,
			DotWidth:    float64(s.MarkerSize) / 2,
		},
	}

	xAxis := chart.XAxis{
		Name:           cfg.XAxis,
		Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
		Ticks:          yearTicks(xMin, xMax, cfg.Layout.XDTick),
		ValueFormatter: yearFormatter,
	}
	yAxis := chart.YAxis{
		Name:           cfg.YAxis,
		Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
		ValueFormatter: numberFormatter,
	}
	if cfg.ShowGrid {
		xAxis.GridMajorStyle = gridStyle()
		yAxis.GridMajorStyle = gridStyle()
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		TitleStyle: chart.Style{FontSize: float64(cfg.Layout.FontSize)},
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Background: chart.Style{Padding: padding(cfg.Layout.Margin)},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     []chart.Series{series},
	}
	if cfg.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch, nil
}

// yearTicks places a tick on every year for short spans and every dtick
// years otherwise.
func yearTicks(lo, hi, dtick float64) []chart.Tick {
	step := 1.0
	if hi-lo > 10 && dtick > 0 {
		step = dtick
	}
	start := math.Ceil(lo/step) * step
	ticks := make([]chart.Tick, 0, int((hi-start)/step)+1)
	for v := start; v <= hi; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}

// ============================================================================
// STYLE HELPERS
// ============================================================================

func padding(m engine.Margin) chart.Box {
	return chart.Box{Top: m.Top, Left: m.Left, Right: m.Right, Bottom: m.Bottom}
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: drawing.ColorFromHex("e5e5e5"), StrokeWidth: 1}
}

func colorAt(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(colors[i%len(colors)], "#"))
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return fmt.Sprint(v)
}

func numberFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return engine.FormatNumber(engine.RoundTo2(f))
	}
	return fmt.Sprint(v)
}
