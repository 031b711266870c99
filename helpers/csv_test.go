package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/schema"
)

const compactCSV = `country,year,crop_type,adaptation_strategy,emissions,economic_impact
India,2020,Wheat,Crop Rotation,12.5,340
India, 2021 ,Rice,Irrigation,8.0,290
`

const kaggleHeader = "Year,Country,Region,Crop_Type,Average_Temperature_C,Total_Precipitation_mm,CO2_Emissions_MT,Crop_Yield_MT_per_HA,Extreme_Weather_Events,Irrigation_Access_%,Pesticide_Use_KG_per_HA,Fertilizer_Use_KG_per_HA,Soil_Health_Index,Adaptation_Strategies,Economic_Impact_Million_USD\n"

// ============================================================================
// PARSE
// ============================================================================

func TestParseCSVCompact(t *testing.T) {
	records, err := ParseCSV([]byte(compactCSV), schema.Compact())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, engine.Record{
		Country: "India", Year: "2020", CropType: "Wheat",
		Strategy: "Crop Rotation", Emissions: "12.5", EconomicImpact: "340",
	}, records[0])
	assert.Equal(t, "2021", records[1].Year, "fields are trimmed")
}

func TestParseCSVKaggle(t *testing.T) {
	data := kaggleHeader +
		"2001,India,West Bengal,Corn,1.55,447.06,15.22,1.737,8,14.54,10.08,14.78,83.25,Water Management,808.13\n" +
		"2024,China,North,Rice,3.23,2913.57,29.82,1.737,8,11.05,33.06,23.25,54.02,Crop Rotation,616.22\n"

	records, err := ParseCSV([]byte(data), schema.Kaggle2024())
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "India", r.Country)
	assert.Equal(t, "2001", r.Year)
	assert.Equal(t, "Corn", r.CropType)
	assert.Equal(t, "15.22", r.Emissions)
	assert.Equal(t, "Water Management", r.Strategy)
	assert.Equal(t, "808.13", r.EconomicImpact)
}

func TestParseCSVShortRowsGetEmptyFields(t *testing.T) {
	data := "country,year,crop_type,adaptation_strategy,emissions,economic_impact\nIndia,2020,Wheat\n"
	records, err := ParseCSV([]byte(data), schema.Compact())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Wheat", records[0].CropType)
	assert.Equal(t, "", records[0].Strategy)
	assert.Equal(t, "", records[0].EconomicImpact)
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	data := compactCSV + "\n,,,,,\n\n"
	records, err := ParseCSV([]byte(data), schema.Compact())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseStrayQuoteLosesOnlyItsLine(t *testing.T) {
	data := "country,year,crop_type,adaptation_strategy,emissions,economic_impact\n" +
		"India,2020,\"Wheat,Crop Rotation,12.5,340\n" +
		"China,2020,Rice,Irrigation,20,410.5\n" +
		"USA,2019,Corn,Irrigation,30.25,-15\n"

	p, err := Parse([]byte(data), schema.Compact())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Malformed)
	require.Len(t, p.Records, 2)
	assert.Equal(t, "China", p.Records[0].Country)
	assert.Equal(t, "Rice", p.Records[0].CropType)
	assert.Equal(t, "USA", p.Records[1].Country)

	ds := engine.Build(p.Records)
	for _, c := range []string{"China", "USA"} {
		assert.True(t, ds.HasCountry(c), c)
	}
	assert.False(t, ds.HasCountry("India"))
}

func TestParseKeepsBareQuotesInsideFields(t *testing.T) {
	data := "country,year,crop_type,adaptation_strategy,emissions,economic_impact\n" +
		"India,2020,Wheat 5\" seed,Crop Rotation,12.5,340\n" +
		"China,2020,\"Rice, paddy\",Irrigation,20,410.5\r\n"

	p, err := Parse([]byte(data), schema.Compact())
	require.NoError(t, err)
	assert.Zero(t, p.Malformed)
	require.Len(t, p.Records, 2)
	assert.Equal(t, "Wheat 5\" seed", p.Records[0].CropType)
	assert.Equal(t, "Rice, paddy", p.Records[1].CropType)
	assert.Equal(t, "410.5", p.Records[1].EconomicImpact)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	records, err := ParseCSV([]byte("country,year,crop_type,adaptation_strategy,emissions,economic_impact\n"), schema.Compact())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseCSVEmptyInput(t *testing.T) {
	records, err := ParseCSV(nil, schema.Compact())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestParseCSVStripsBOM(t *testing.T) {
	records, err := ParseCSV(append([]byte("\xef\xbb\xbf"), compactCSV...), schema.Compact())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseCSVIsPure(t *testing.T) {
	a, err := ParseCSV([]byte(compactCSV), schema.Compact())
	require.NoError(t, err)
	b, err := ParseCSV([]byte(compactCSV), schema.Compact())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// ============================================================================
// HEADER VALIDATION
// ============================================================================

func TestParseCSVRejectsReorderedHeader(t *testing.T) {
	data := "year,country,crop_type,adaptation_strategy,emissions,economic_impact\n2020,India,Wheat,Crop Rotation,12.5,340\n"
	_, err := ParseCSV([]byte(data), schema.Compact())
	require.ErrorIs(t, err, schema.ErrHeaderMismatch)
	assert.Contains(t, err.Error(), "country")
}

func TestParseCSVRejectsWrongPreset(t *testing.T) {
	_, err := ParseCSV([]byte(compactCSV), schema.Kaggle2024())
	assert.ErrorIs(t, err, schema.ErrHeaderMismatch)
}

func TestParseCSVRejectsInvalidSchema(t *testing.T) {
	sch := schema.Compact()
	sch.Year.Index = sch.Country.Index
	_, err := ParseCSV([]byte(compactCSV), sch)
	assert.ErrorIs(t, err, schema.ErrInvalid)
}

func TestParseHeader(t *testing.T) {
	headers, err := ParseHeader([]byte(" country , year\nIndia,2020\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "year"}, headers)
}

// ============================================================================
// END TO END
// ============================================================================

func TestParseAndAggregate(t *testing.T) {
	records, err := ParseCSV([]byte(compactCSV), schema.Compact())
	require.NoError(t, err)

	ds := engine.Build(records)
	values, ok, err := engine.Select(ds, engine.ViewAdaptation, "India")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"Crop Rotation": 1, "Irrigation": 1}, values)

	values, ok, err = engine.Select(ds, engine.ViewEmissions, engine.GlobalKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []engine.ChartPoint{{Label: "2020", Value: 12.5}, {Label: "2021", Value: 8}},
		engine.SeriesFor(engine.ViewEmissions, values))
}
