package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for Build() and Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	DatasetID string
	Source    string
	Width     int
	Height    int
	Palette   []string
	Logger    *zap.Logger
}

// WithDatasetID fixes the dataset ID instead of generating one.
func WithDatasetID(id string) Option {
	return func(c *config) {
		c.DatasetID = id
	}
}

// WithSource records where the dataset was loaded from.
func WithSource(source string) Option {
	return func(c *config) {
		c.Source = source
	}
}

// WithChartSize overrides the chart layout size in pixels.
// Non-positive values keep the default.
func WithChartSize(width, height int) Option {
	return func(c *config) {
		if width > 0 {
			c.Width = width
		}
		if height > 0 {
			c.Height = height
		}
	}
}

// WithPalette replaces the bar colour palette.
func WithPalette(colors []string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithLogger routes engine debug logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Width:   defaultWidth,
		Height:  defaultHeight,
		Palette: defaultColors,
		Logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
