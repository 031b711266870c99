package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/export"
	"github.com/spektr-org/agriclimate/render"
	"github.com/spektr-org/agriclimate/schema"
)

// ============================================================================
// OUTPUT
// ============================================================================

// withOutput runs fn against outFile when set, else against stdout.
func withOutput(stdout io.Writer, outFile string, fn func(io.Writer) error) error {
	if outFile == "" {
		return fn(stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeResult(w io.Writer, result *engine.Result, format string) error {
	if image, err := render.ParseFormat(format); err == nil {
		return render.Render(w, result.ChartConfig, image)
	}
	switch format {
	case "csv":
		return export.WriteResultCSV(w, result)
	case "text":
		if result.TextData == nil {
			_, err := fmt.Fprintln(w, "No result.")
			return err
		}
		_, err := fmt.Fprintf(w, "%s\n%s (%s)\n", result.Title, result.TextData.Value, result.TextData.Period)
		return err
	}
	return writeJSON(w, result, format)
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeSchemaYAML prints sch as a config fragment. Presets print by name;
// anything else prints its columns.
func writeSchemaYAML(w io.Writer, sch schema.Schema) error {
	var data map[string]any
	if _, err := schema.Preset(sch.Name); err == nil {
		data = map[string]any{"schema": sch.Name}
	} else {
		data = map[string]any{"columns": sch}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"data": data}); err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return enc.Close()
}
