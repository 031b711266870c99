package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/export"
	"github.com/spektr-org/agriclimate/helpers"
	"github.com/spektr-org/agriclimate/render"
	"github.com/spektr-org/agriclimate/schema"
	"github.com/spektr-org/agriclimate/server"
	"github.com/spektr-org/agriclimate/watch"
)

// ============================================================================
// SERVE
// ============================================================================

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the views over HTTP",
		Long: `Loads the dataset, then serves JSON chart specs, rendered charts and
exports. A local dataset file is watched and reloaded when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if noWatch {
				a.cfg.Data.Watch = false
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when the dataset file changes")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := a.newStore()
	if _, err := st.Reload(ctx); err != nil {
		// Keep serving; data endpoints answer 503 until a reload succeeds.
		a.logger.Warn("initial dataset load failed", zap.String("source", st.Source()), zap.Error(err))
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           server.NewServer(st, server.WithLogger(a.logger), server.WithEngineOptions(a.engineOptions()...)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.GetReadTimeout(),
		WriteTimeout:      a.cfg.GetWriteTimeout(),
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Data.Watch && !helpers.IsURL(st.Source()) {
		w, err := watch.New(st.Source(), func(ctx context.Context) error {
			_, err := st.Reload(ctx)
			return err
		}, watch.WithDebounce(a.cfg.GetDebounce()), watch.WithLogger(a.logger))
		if err != nil {
			return err
		}
		if err := w.Start(gctx); err != nil {
			a.logger.Warn("dataset watch disabled", zap.String("path", w.Path()), zap.Error(err))
		} else {
			a.logger.Info("watching dataset", zap.String("path", w.Path()))
		}
		defer w.Stop()
	}

	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GetShutdownTimeout())
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ============================================================================
// VIEW
// ============================================================================

func newViewCmd(a *app) *cobra.Command {
	var country, intent, format, outFile string

	cmd := &cobra.Command{
		Use:   "view <adaptation|economic|emissions>",
		Short: "Print one view for one country",
		Example: `  agriclimate view emissions --country India
  agriclimate view economic --format csv --out economic.csv
  agriclimate view adaptation --country Global --format svg --out adaptation.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := engine.ParseView(args[0])
			if err != nil {
				return err
			}

			if _, err := render.ParseFormat(format); err == nil {
				intent = engine.IntentChart
			}
			switch format {
			case "svg", "png":
			case "text":
				intent = engine.IntentText
			case "csv":
				if intent == "" {
					intent = engine.IntentTable
				}
			case "json", "pretty":
			default:
				return fmt.Errorf("unknown format %q (json, pretty, csv, text, svg, png)", format)
			}

			ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			result, err := engine.Execute(engine.Query{View: view, Country: country, Intent: intent}, ds, a.engineOptions()...)
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "No data for %s in the %s view.\n", displayCountry(country), view)
				return nil
			}

			return withOutput(cmd.OutOrStdout(), outFile, func(w io.Writer) error {
				return writeResult(w, result, format)
			})
		},
	}
	cmd.Flags().StringVar(&country, "country", engine.GlobalKey, "Country to select")
	cmd.Flags().StringVar(&intent, "intent", "", "Output intent: chart, table or text")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, pretty, csv, text, svg, png")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write output to file instead of stdout")
	return cmd
}

func displayCountry(c string) string {
	if c == "" {
		return engine.GlobalKey
	}
	return c
}

// ============================================================================
// EXPORT
// ============================================================================

func newExportCmd(a *app) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every view for every country to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			if err := export.SaveWorkbook(outFile, ds); err != nil {
				return err
			}
			a.logger.Info("workbook written", zap.String("path", outFile), zap.String("dataset", ds.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "agriclimate.xlsx", "Output .xlsx path")
	return cmd
}

// ============================================================================
// COUNTRIES
// ============================================================================

func newCountriesCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List selectable countries and whether the dataset has rows for each",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			entries := make([]server.CountryEntry, 0, len(engine.Countries))
			for _, c := range engine.Countries {
				entries = append(entries, server.CountryEntry{Name: c, HasData: ds.HasCountry(c)})
			}

			out := cmd.OutOrStdout()
			if format == "json" || format == "pretty" {
				return writeJSON(out, entries, format)
			}
			for _, e := range entries {
				mark := " "
				if e.HasData {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\n", mark, e.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, pretty")
	return cmd
}

// ============================================================================
// SCHEMA
// ============================================================================

func newSchemaCmd(a *app) *cobra.Command {
	var check, discover bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the active column schema, check it, or derive one from the dataset header",
		Example: `  agriclimate schema
  agriclimate schema --check --data my.csv
  agriclimate schema --discover --data my.csv >> agriclimate.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !check && !discover {
				return writeJSON(out, struct {
					Active  schema.Schema `json:"active"`
					Presets []string      `json:"presets"`
				}{a.schema, schema.PresetNames()}, "pretty")
			}

			loader := helpers.NewLoader(helpers.WithTimeout(a.cfg.GetLoadTimeout()), helpers.WithLoaderLogger(a.logger))
			data, err := loader.Load(cmd.Context(), a.cfg.Data.Source)
			if err != nil {
				return err
			}
			header, err := helpers.ParseHeader(data)
			if err != nil {
				return err
			}

			if discover {
				found, err := schema.Discover(header)
				if err != nil {
					return err
				}
				return writeSchemaYAML(out, found)
			}

			if err := a.schema.CheckHeader(header); err != nil {
				if found, derr := schema.Discover(header); derr == nil {
					return fmt.Errorf("%w (header matches schema %q; try --schema %s or --discover)", err, found.Name, found.Name)
				}
				return err
			}
			fmt.Fprintf(out, "Header matches schema %q.\n", a.schema.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Validate the dataset header against the schema")
	cmd.Flags().BoolVar(&discover, "discover", false, "Derive a schema from the dataset header and print it as config YAML")
	return cmd
}

// ============================================================================
// INIT
// ============================================================================

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the --config path",
		Long: `Writes the defaults, merged with any existing file, environment overrides
and --data/--schema flags, to the config path as YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// ============================================================================
// VERSION
// ============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// No config or logger needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agriclimate %s\n", version)
		},
	}
}
