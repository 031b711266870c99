package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPrefersPresets(t *testing.T) {
	kaggle := strings.Split("Year,Country,Region,Crop_Type,Average_Temperature_C,Total_Precipitation_mm,CO2_Emissions_MT,Crop_Yield_MT_per_HA,Extreme_Weather_Events,Irrigation_Access_%,Pesticide_Use_KG_per_HA,Fertilizer_Use_KG_per_HA,Soil_Health_Index,Adaptation_Strategies,Economic_Impact_Million_USD", ",")

	s, err := Discover(kaggle)
	require.NoError(t, err)
	if diff := cmp.Diff(Kaggle2024(), s); diff != "" {
		t.Errorf("Discover(kaggle header) mismatch (-want +got):\n%s", diff)
	}

	s, err = Discover([]string{"country", "year", "crop_type", "adaptation_strategy", "emissions", "economic_impact"})
	require.NoError(t, err)
	assert.Equal(t, Compact(), s)
}

func TestDiscoverByAlias(t *testing.T) {
	header := []string{"\ufeffYear", "Crop", "Nation", "Notes", "Strategy", "CO2 Emissions", "Economic Impact"}

	s, err := Discover(header)
	require.NoError(t, err)
	assert.Equal(t, DiscoveredName, s.Name)
	assert.Equal(t, Column{Index: 0, Header: "Year"}, s.Year)
	assert.Equal(t, Column{Index: 1, Header: "Crop"}, s.CropType)
	assert.Equal(t, Column{Index: 2, Header: "Nation"}, s.Country)
	assert.Equal(t, Column{Index: 4, Header: "Strategy"}, s.Strategy)
	assert.Equal(t, Column{Index: 5, Header: "CO2 Emissions"}, s.Emissions)
	assert.Equal(t, Column{Index: 6, Header: "Economic Impact"}, s.EconomicImpact)
	assert.NoError(t, s.CheckHeader(header))
}

func TestDiscoverFirstDuplicateWins(t *testing.T) {
	s, err := Discover([]string{"country", "year", "crop", "strategy", "emissions", "impact", "Country"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Country.Index)
}

func TestDiscoverMissingFields(t *testing.T) {
	_, err := Discover([]string{"Country", "Year", "Region"})
	require.ErrorIs(t, err, ErrUndiscoverable)
	assert.Contains(t, err.Error(), "crop_type, adaptation_strategy, emissions, economic_impact")

	_, err = Discover(nil)
	assert.ErrorIs(t, err, ErrUndiscoverable)
}
