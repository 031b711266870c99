package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// AGRICLIMATE ENGINE TYPES
// ============================================================================
// Record → Aggregate (per view) → Dataset → selected slice → ChartConfig.
//
// The engine never performs I/O. Loading and parsing live in helpers;
// rendering lives in render and export.
// ============================================================================

var (
	// ErrUnknownView reports a view name outside the three supported views.
	ErrUnknownView = errors.New("unknown view")

	// ErrUnknownIntent reports an output intent other than chart or table.
	ErrUnknownIntent = errors.New("unknown intent")
)

// GlobalKey is the synthetic country holding the sum over all countries.
const GlobalKey = "Global"

// ============================================================================
// RECORD — One parsed CSV row
// ============================================================================

// Record is one data row with its fields already picked out by position.
// A field absent from a short row is the empty string.
type Record struct {
	Country        string `json:"country"`
	Year           string `json:"year"`
	CropType       string `json:"cropType"`
	Strategy       string `json:"strategy"`
	Emissions      string `json:"emissions"`
	EconomicImpact string `json:"economicImpact"`
}

// ============================================================================
// VIEWS
// ============================================================================

// View names one of the derived dashboard views.
type View string

const (
	ViewAdaptation View = "adaptation"
	ViewEconomic   View = "economic"
	ViewEmissions  View = "emissions"
)

// Views returns every view in dashboard tab order.
func Views() []View {
	return []View{ViewAdaptation, ViewEconomic, ViewEmissions}
}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return v, nil
}

// Valid reports whether v is one of the supported views.
func (v View) Valid() bool {
	switch v {
	case ViewAdaptation, ViewEconomic, ViewEmissions:
		return true
	}
	return false
}

// Heading is the card heading shown above the chart.
func (v View) Heading() string {
	switch v {
	case ViewAdaptation:
		return "Adaptation Strategies Distribution"
	case ViewEconomic:
		return "Economic Impact by Crop Type"
	case ViewEmissions:
		return "CO₂ Emissions Over Time"
	}
	return ""
}

// KeyLabel names the inner key of the view's aggregate.
func (v View) KeyLabel() string {
	switch v {
	case ViewAdaptation:
		return "Adaptation Strategy"
	case ViewEconomic:
		return "Crop Type"
	case ViewEmissions:
		return "Year"
	}
	return "Key"
}

// ValueLabel names the aggregated value of the view.
func (v View) ValueLabel() string {
	switch v {
	case ViewAdaptation:
		return "Count"
	case ViewEconomic:
		return "Economic Impact (Million USD)"
	case ViewEmissions:
		return "CO2 Emissions (MT)"
	}
	return "Value"
}

// Unit is the unit of the view's aggregated value.
func (v View) Unit() string {
	switch v {
	case ViewAdaptation:
		return "records"
	case ViewEconomic:
		return "million USD"
	case ViewEmissions:
		return "MT"
	}
	return ""
}

// Countries is the fixed set offered by the country selector.
// Any other value simply selects nothing.
var Countries = []string{
	GlobalKey, "India", "China", "France", "Canada", "USA",
	"Argentina", "Australia", "Nigeria", "Russia", "Brazil",
}

// ============================================================================
// STATS
// ============================================================================

// Stats counts how a view's fold treated the parsed rows.
type Stats struct {
	Rows     int `json:"rows"`
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// ============================================================================
// QUERY + RESULT
// ============================================================================

// Intent values accepted by Execute.
const (
	IntentChart = "chart"
	IntentTable = "table"
	IntentText  = "text"
)

// ParseIntent validates an intent; empty means chart.
func ParseIntent(s string) (string, error) {
	switch s {
	case "":
		return IntentChart, nil
	case IntentChart, IntentTable, IntentText:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

// Query selects one view for one country.
type Query struct {
	View    View   `json:"view"`
	Country string `json:"country"` // empty → Global
	Intent  string `json:"intent"`  // "chart" (default), "table" or "text"
}

// Result is the render-ready output of Execute.
type Result struct {
	Success   bool         `json:"success"`
	Type      string       `json:"type"` // "chart", "table", "text"
	View      View         `json:"view"`
	Country   string       `json:"country"`
	Title     string       `json:"title"`
	DatasetID string       `json:"datasetId,omitempty"`
	Series    []ChartPoint `json:"series"`

	// Exactly one of these is populated based on Type:
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	TextData    *TextData    `json:"textData,omitempty"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig is the declarative chart description handed to a renderer.
// Series order is part of the contract and must be preserved.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "pie", "bar", "line"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`

	TextInfo  string `json:"textInfo,omitempty"`  // pie: "label+percent"
	HoverInfo string `json:"hoverInfo,omitempty"` // pie: "label+value"
	Mode      string `json:"mode,omitempty"`      // line: "lines+markers"

	Layout  Layout        `json:"layout"`
	Options RenderOptions `json:"config"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name       string       `json:"name"`
	Data       []ChartPoint `json:"data"`
	Color      string       `json:"color,omitempty"`
	LineWidth  int          `json:"lineWidth,omitempty"`
	MarkerSize int          `json:"markerSize,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Layout carries the static presentation metadata.
type Layout struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FontSize    int     `json:"fontSize"`
	Margin      Margin  `json:"margin"`
	XTickAngle  int     `json:"xTickAngle,omitempty"`
	XDTick      float64 `json:"xDTick,omitempty"`
	XTickMode   string  `json:"xTickMode,omitempty"`
	YRangeMode  string  `json:"yRangeMode,omitempty"`
	YAutoMargin bool    `json:"yAutoMargin,omitempty"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	Left   int `json:"l"`
	Right  int `json:"r"`
	Top    int `json:"t"`
	Bottom int `json:"b"`
}

// RenderOptions are surface hints for interactive renderers.
type RenderOptions struct {
	Responsive     bool `json:"responsive"`
	DisplayModeBar bool `json:"displayModeBar"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a one-line headline for a selection.
type TextData struct {
	Value    string      `json:"value"`
	RawValue float64     `json:"rawValue"`
	Unit     string      `json:"unit"`
	Period   string      `json:"period"`
	Count    int         `json:"count"`
	Growth   *GrowthData `json:"growth,omitempty"`
}

// GrowthData compares the first and last year of an emissions series.
type GrowthData struct {
	EarliestValue  float64 `json:"earliestValue"`
	LatestValue    float64 `json:"latestValue"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangeAmount   float64 `json:"changeAmount"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"`
}
