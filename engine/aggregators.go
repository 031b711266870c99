package engine

import (
	"maps"
	"sort"
)

// ============================================================================
// AGGREGATORS — Fold records into country → key → value mappings
// ============================================================================
// The three views share one fold. Each supplies an extractor that picks
// (country, key, value) out of a Record or rejects it. Every accepted
// update is mirrored into GlobalKey, so Global is always the element-wise
// sum over real countries.
// ============================================================================

// Aggregate is the nested mapping for one view. Immutable once built.
type Aggregate struct {
	view   View
	values map[string]map[string]float64
	stats  Stats
}

// extractor returns ok=false to drop a record from the view.
type extractor func(r Record) (country, key string, value float64, ok bool)

// AggregateAdaptation tallies adaptation strategies per country.
func AggregateAdaptation(records []Record) *Aggregate {
	return fold(ViewAdaptation, records, func(r Record) (string, string, float64, bool) {
		if r.Country == "" || r.Strategy == "" {
			return "", "", 0, false
		}
		return r.Country, r.Strategy, 1, true
	})
}

// AggregateEconomic sums economic impact per crop type per country.
func AggregateEconomic(records []Record) *Aggregate {
	return fold(ViewEconomic, records, func(r Record) (string, string, float64, bool) {
		if r.Country == "" || r.CropType == "" {
			return "", "", 0, false
		}
		impact, ok := ParseMeasure(r.EconomicImpact)
		if !ok {
			return "", "", 0, false
		}
		return r.Country, r.CropType, impact, true
	})
}

// AggregateEmissions sums CO₂ emissions per year per country.
func AggregateEmissions(records []Record) *Aggregate {
	return fold(ViewEmissions, records, func(r Record) (string, string, float64, bool) {
		if r.Country == "" {
			return "", "", 0, false
		}
		year, ok := ParseYear(r.Year)
		if !ok {
			return "", "", 0, false
		}
		emissions, ok := ParseMeasure(r.Emissions)
		if !ok {
			return "", "", 0, false
		}
		return r.Country, yearKey(year), emissions, true
	})
}

// AggregateView dispatches to the aggregator for view.
func AggregateView(view View, records []Record) (*Aggregate, error) {
	switch view {
	case ViewAdaptation:
		return AggregateAdaptation(records), nil
	case ViewEconomic:
		return AggregateEconomic(records), nil
	case ViewEmissions:
		return AggregateEmissions(records), nil
	}
	return nil, ErrUnknownView
}

func fold(view View, records []Record, extract extractor) *Aggregate {
	agg := &Aggregate{
		view:   view,
		values: make(map[string]map[string]float64),
	}
	agg.stats.Rows = len(records)

	for _, r := range records {
		country, key, value, ok := extract(r)
		// A row claiming to be Global would be counted twice.
		if !ok || country == GlobalKey {
			agg.stats.Dropped++
			continue
		}
		agg.add(country, key, value)
		agg.add(GlobalKey, key, value)
		agg.stats.Accepted++
	}
	return agg
}

func (a *Aggregate) add(country, key string, value float64) {
	inner, ok := a.values[country]
	if !ok {
		inner = make(map[string]float64)
		a.values[country] = inner
	}
	inner[key] += value
}

// ============================================================================
// READ ACCESS
// ============================================================================

// View reports which view the aggregate was built for.
func (a *Aggregate) View() View {
	if a == nil {
		return ""
	}
	return a.view
}

// Stats reports how many rows were accepted and dropped.
func (a *Aggregate) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return a.stats
}

// IsEmpty reports whether no record survived the fold.
func (a *Aggregate) IsEmpty() bool {
	return a == nil || len(a.values) == 0
}

// Select returns a copy of one country's slice.
// ok is false when the country never appeared, including Global for an
// empty dataset; callers must not render in that case.
func (a *Aggregate) Select(country string) (map[string]float64, bool) {
	if a == nil {
		return nil, false
	}
	inner, ok := a.values[country]
	if !ok {
		return nil, false
	}
	return maps.Clone(inner), true
}

// Has reports whether country has any data in this view.
func (a *Aggregate) Has(country string) bool {
	if a == nil {
		return false
	}
	_, ok := a.values[country]
	return ok
}

// Countries lists every country key, Global first, the rest alphabetical.
func (a *Aggregate) Countries() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.values))
	for c := range a.values {
		if c != GlobalKey {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	if _, ok := a.values[GlobalKey]; ok {
		out = append([]string{GlobalKey}, out...)
	}
	return out
}
