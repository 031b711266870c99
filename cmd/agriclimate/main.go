package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spektr-org/agriclimate/config"
	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/helpers"
	"github.com/spektr-org/agriclimate/schema"
	"github.com/spektr-org/agriclimate/store"
)

// ============================================================================
// AGRICLIMATE CLI — Climate impact on agriculture, by country
// ============================================================================

var version = "0.1.0"

// app carries state shared by every subcommand.
type app struct {
	// Global flags
	configPath string
	verbose    bool
	dataPath   string
	schemaName string

	cfg    *config.Config
	schema schema.Schema
	logger *zap.Logger
	// ownLogger is false when a test injected the logger.
	ownLogger bool
}

func main() {
	if err := newRootCmd(&app{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "agriclimate",
		Short: "Climate impact on agriculture: adaptation, economic and emissions views",
		Long: `agriclimate aggregates the climate-change-impact-on-agriculture dataset
into three views, each selectable by country or Global:

  adaptation  count of records per adaptation strategy (pie)
  economic    economic impact per crop type, largest first (bar)
  emissions   CO2 emissions per year, oldest first (line)

Serve them over HTTP, or print a single view as JSON, CSV, SVG or PNG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil && a.ownLogger {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "agriclimate.yaml", "Path to YAML config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&a.dataPath, "data", "", "Dataset file or URL (overrides config)")
	root.PersistentFlags().StringVar(&a.schemaName, "schema", "", "Column schema preset (overrides config)")

	root.AddCommand(
		newServeCmd(a),
		newViewCmd(a),
		newExportCmd(a),
		newCountriesCmd(a),
		newSchemaCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.Data.Source = a.dataPath
	}
	if a.schemaName != "" {
		cfg.Data.Schema = a.schemaName
		cfg.Data.Columns = nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	sch, err := cfg.ResolveSchema()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.schema = sch

	if a.logger != nil {
		return nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.GetLogLevel())
	zc.Encoding = cfg.Logging.Encoding
	if cfg.Logging.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.ownLogger = true
	return nil
}

// engineOptions maps render config onto chart options.
func (a *app) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithChartSize(a.cfg.Render.Width, a.cfg.Render.Height),
		engine.WithPalette(a.cfg.Render.Palette),
		engine.WithLogger(a.logger),
	}
}

// newStore builds a Store wired to the configured source and schema.
func (a *app) newStore() *store.Store {
	loader := helpers.NewLoader(
		helpers.WithTimeout(a.cfg.GetLoadTimeout()),
		helpers.WithLoaderLogger(a.logger),
	)
	return store.New(a.cfg.Data.Source, a.schema,
		store.WithFetcher(loader.Load),
		store.WithLogger(a.logger),
		store.WithEngineOptions(a.engineOptions()...),
	)
}

// loadOnce builds a Store and performs the initial load.
func (a *app) loadOnce(ctx context.Context) (*engine.Dataset, error) {
	ds, err := a.newStore().Reload(ctx)
	if err != nil {
		return nil, err
	}
	return ds, nil
}
