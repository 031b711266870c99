package export

import (
	"encoding/csv"
	"io"

	"github.com/spektr-org/agriclimate/engine"
)

// ============================================================================
// CSV EXPORT
// ============================================================================

// WriteCSV writes a table as CSV: one header row, the data rows, then the
// summary row when present.
func WriteCSV(w io.Writer, table *engine.TableData) error {
	cw := csv.NewWriter(w)

	if table == nil {
		if err := cw.Write([]string{"Result", "No data"}); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	if s := table.Summary; s != nil {
		row := make([]string, len(table.Columns))
		if len(row) > 0 {
			row[0] = s.Label
		}
		for i, c := range table.Columns {
			if v, ok := s.Values[c.Key]; ok && i > 0 {
				row[i] = v
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultCSV writes whichever payload a Result carries.
// Chart results become a two-column label/value table.
func WriteResultCSV(w io.Writer, result *engine.Result) error {
	if result == nil {
		return WriteCSV(w, nil)
	}
	switch {
	case result.TableData != nil:
		return WriteCSV(w, result.TableData)
	case result.ChartConfig != nil:
		return writeChartCSV(w, result.ChartConfig)
	case result.TextData != nil:
		return writeTextCSV(w, result.TextData)
	}
	return WriteCSV(w, nil)
}

func writeTextCSV(w io.Writer, text *engine.TextData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Summary", "Unit", "Period"}); err != nil {
		return err
	}
	if err := cw.Write([]string{text.Value, text.Unit, text.Period}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	cw := csv.NewWriter(w)

	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	if err := cw.Write([]string{xLabel, yLabel}); err != nil {
		return err
	}
	if len(chart.Series) > 0 {
		for _, d := range chart.Series[0].Data {
			if err := cw.Write([]string{d.Label, engine.FormatNumber(d.Value)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
