// Package agriclimate turns the climate-change-impact-on-agriculture dataset
// into three per-country views.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/agriclimate/engine"
//	    "github.com/spektr-org/agriclimate/helpers"
//	    "github.com/spektr-org/agriclimate/schema"
//	)
//
//	data, _ := helpers.Load(ctx, "data/climate_change_impact_on_agriculture_2024.csv")
//	records, _ := helpers.ParseCSV(data, schema.Kaggle2024())
//	ds := engine.Build(records)
//	result, err := engine.Execute(engine.Query{View: engine.ViewEmissions, Country: "India"}, ds)
//
// The aggregates are computed once per load and are read-only afterwards.
// The store package sequences reloads, the server package exposes the views
// over HTTP, and the render and export packages produce SVG, PNG, CSV and
// XLSX output.
package agriclimate
