package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dataset holds the three aggregates derived from one load.
// It is never mutated after Build; a reload produces a new Dataset.
type Dataset struct {
	ID       string    `json:"id"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`

	adaptation *Aggregate
	economic   *Aggregate
	emissions  *Aggregate
}

// Build folds records into every view.
func Build(records []Record, opts ...Option) *Dataset {
	cfg := applyOptions(opts)

	id := cfg.DatasetID
	if id == "" {
		id = uuid.NewString()
	}

	ds := &Dataset{
		ID:         id,
		Source:     cfg.Source,
		LoadedAt:   time.Now().UTC(),
		adaptation: AggregateAdaptation(records),
		economic:   AggregateEconomic(records),
		emissions:  AggregateEmissions(records),
	}

	for _, view := range Views() {
		agg, _ := ds.Aggregate(view)
		st := agg.Stats()
		cfg.Logger.Debug("aggregated view",
			zap.String("dataset", ds.ID),
			zap.String("view", string(view)),
			zap.Int("rows", st.Rows),
			zap.Int("accepted", st.Accepted),
			zap.Int("dropped", st.Dropped),
		)
	}
	return ds
}

// Aggregate returns the aggregate backing view.
func (d *Dataset) Aggregate(view View) (*Aggregate, error) {
	if d == nil {
		return nil, nil
	}
	switch view {
	case ViewAdaptation:
		return d.adaptation, nil
	case ViewEconomic:
		return d.economic, nil
	case ViewEmissions:
		return d.emissions, nil
	}
	return nil, ErrUnknownView
}

// HasCountry reports whether any view has data for country.
func (d *Dataset) HasCountry(country string) bool {
	if d == nil {
		return false
	}
	return d.adaptation.Has(country) || d.economic.Has(country) || d.emissions.Has(country)
}

// Stats returns per-view fold statistics keyed by view name.
func (d *Dataset) Stats() map[View]Stats {
	out := make(map[View]Stats, 3)
	if d == nil {
		return out
	}
	out[ViewAdaptation] = d.adaptation.Stats()
	out[ViewEconomic] = d.economic.Stats()
	out[ViewEmissions] = d.emissions.Stats()
	return out
}
