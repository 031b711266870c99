package engine

import "fmt"

// ============================================================================
// TABLE BUILDER — Produces TableData from an ordered series
// ============================================================================

// BuildTable lays a series out as a two-column table with a total row.
func BuildTable(view View, country string, points []ChartPoint) *TableData {
	table := &TableData{
		Title: fmt.Sprintf("%s (%s)", view.Heading(), country),
		Columns: []Column{
			{Key: "key", Label: view.KeyLabel(), Type: "text", Align: "left"},
			{Key: "value", Label: view.ValueLabel(), Type: "number", Align: "right"},
		},
		Rows: make([][]string, 0, len(points)),
	}

	var total float64
	for _, p := range points {
		table.Rows = append(table.Rows, []string{p.Label, FormatNumber(p.Value)})
		total += p.Value
	}

	table.Summary = &Summary{
		Label: fmt.Sprintf("Total (%d rows)", len(points)),
		Values: map[string]string{
			"value": FormatNumber(total),
		},
	}
	return table
}
