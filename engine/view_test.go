package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEconomicOrderDescending(t *testing.T) {
	points := SeriesFor(ViewEconomic, map[string]float64{
		"Wheat":  340,
		"Rice":   290,
		"Corn":   410,
		"Barley": 290,
	})
	assert.Equal(t, []ChartPoint{
		{"Corn", 410},
		{"Wheat", 340},
		{"Barley", 290},
		{"Rice", 290},
	}, points)
}

func TestEmissionsOrderIndependentOfFileOrder(t *testing.T) {
	rows := []Record{
		rec("Canada", "2024", "", "", "1", ""),
		rec("Canada", "1999", "", "", "2", ""),
		rec("Canada", "2005", "", "", "3", ""),
		rec("Canada", "2010", "", "", "4", ""),
	}
	ds := Build(rows, WithDatasetID("fixed"))

	values, ok, err := Select(ds, ViewEmissions, "Canada")
	require.NoError(t, err)
	require.True(t, ok)

	points := SeriesFor(ViewEmissions, values)
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"1999", "2005", "2010", "2024"}, labels)
}

func TestEmissionsSortIsNumericNotLexical(t *testing.T) {
	points := []ChartPoint{{"10000", 1}, {"999", 2}, {"2020", 3}}
	SortPoints(ViewEmissions, points)
	assert.Equal(t, []ChartPoint{{"999", 2}, {"2020", 3}, {"10000", 1}}, points)
}

func TestAdaptationOrderAlphabetical(t *testing.T) {
	points := SeriesFor(ViewAdaptation, map[string]float64{"Irrigation": 3, "Crop Rotation": 1, "Organic Farming": 2})
	assert.Equal(t, "Crop Rotation", points[0].Label)
	assert.Equal(t, "Irrigation", points[1].Label)
	assert.Equal(t, "Organic Farming", points[2].Label)
}

func TestSelectIsIdempotent(t *testing.T) {
	ds := Build(mixedRows)
	for _, view := range Views() {
		first, ok1, err := Select(ds, view, GlobalKey)
		require.NoError(t, err)
		second, ok2, err := Select(ds, view, GlobalKey)
		require.NoError(t, err)
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, first, second)
		assert.Equal(t, SeriesFor(view, first), SeriesFor(view, second))
	}
}

func TestSelectUnknownCountry(t *testing.T) {
	ds := Build(indiaRows)
	_, ok, err := Select(ds, ViewAdaptation, "Atlantis")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectUnknownView(t *testing.T) {
	ds := Build(indiaRows)
	_, _, err := Select(ds, View("yield"), GlobalKey)
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestSelectNilDataset(t *testing.T) {
	_, ok, err := Select(nil, ViewEmissions, GlobalKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYearValuesSkipsNonYears(t *testing.T) {
	xs, ys := YearValues([]ChartPoint{{"2020", 1.5}, {"n/a", 9}, {"2021", 2}})
	assert.Equal(t, []float64{2020, 2021}, xs)
	assert.Equal(t, []float64{1.5, 2}, ys)
}

func TestDatasetBuild(t *testing.T) {
	ds := Build(mixedRows, WithDatasetID("abc"), WithSource("test.csv"))
	assert.Equal(t, "abc", ds.ID)
	assert.Equal(t, "test.csv", ds.Source)
	assert.False(t, ds.LoadedAt.IsZero())
	assert.True(t, ds.HasCountry("France"))
	assert.False(t, ds.HasCountry("Brazil"))

	stats := ds.Stats()
	require.Len(t, stats, 3)
	assert.Equal(t, len(mixedRows), stats[ViewEconomic].Rows)
}

func TestDatasetGeneratesID(t *testing.T) {
	a := Build(nil)
	b := Build(nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDatasetAggregateByView(t *testing.T) {
	ds := Build(indiaRows)

	for _, view := range Views() {
		agg, err := ds.Aggregate(view)
		require.NoError(t, err)
		want, err := AggregateView(view, indiaRows)
		require.NoError(t, err)

		got, ok := agg.Select("India")
		require.True(t, ok, view)
		wantVals, _ := want.Select("India")
		assert.Equal(t, wantVals, got, view)
	}

	// Callers only ever get copies of the stored values.
	values, ok, err := Select(ds, ViewEconomic, "India")
	require.NoError(t, err)
	require.True(t, ok)
	values["Wheat"] = -1
	again, _, _ := Select(ds, ViewEconomic, "India")
	assert.Equal(t, 340.0, again["Wheat"])
}
