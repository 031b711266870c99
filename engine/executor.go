package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — Query → Result dispatcher
// ============================================================================
// Entry point: Execute(query, dataset, opts...)
//
// Pipeline:
//   1. Validate view and intent
//   2. Select the country slice (pure read)
//   3. Order the series for the view
//   4. Dispatch to builder (chart / table / text)
//
// A country with no data yields (nil, nil): nothing to render, not an error.
// ============================================================================

// Execute runs a Query against a Dataset and returns a render-ready Result.
func Execute(q Query, ds *Dataset, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	if !q.View.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, q.View)
	}
	intent, err := ParseIntent(q.Intent)
	if err != nil {
		return nil, err
	}
	country := q.Country
	if country == "" {
		country = GlobalKey
	}

	values, ok, err := Select(ds, q.View, country)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg.Logger.Debug("no data for selection",
			zap.String("view", string(q.View)),
			zap.String("country", country),
		)
		return nil, nil
	}

	points := SeriesFor(q.View, values)
	result := &Result{
		Success:   true,
		Type:      intent,
		View:      q.View,
		Country:   country,
		Title:     ChartTitle(q.View, country),
		DatasetID: ds.ID,
		Series:    points,
	}

	switch intent {
	case IntentTable:
		result.TableData = BuildTable(q.View, country, points)
		result.Title = result.TableData.Title
	case IntentText:
		result.TextData = BuildText(q.View, points)
	default:
		result.ChartConfig = BuildChart(q.View, country, points, opts...)
		if result.ChartConfig == nil {
			return nil, nil
		}
	}

	cfg.Logger.Debug("executed query",
		zap.String("dataset", ds.ID),
		zap.String("view", string(q.View)),
		zap.String("country", country),
		zap.String("intent", intent),
		zap.Int("points", len(points)),
	)
	return result, nil
}
