package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// SCHEMA — Named column positions for the agriculture dataset
// ============================================================================
// The pipeline reads fields by fixed position. The schema names those
// positions and the header expected at each one, so a reordered or foreign
// file is rejected once at the header instead of silently misaligning rows.
// ============================================================================

var (
	// ErrInvalid reports a schema that cannot be applied to any file.
	ErrInvalid = errors.New("invalid schema")

	// ErrHeaderMismatch reports a header row that does not match the schema.
	ErrHeaderMismatch = errors.New("header does not match schema")
)

// Field identifies a logical column the aggregators read.
type Field string

const (
	FieldCountry        Field = "country"
	FieldYear           Field = "year"
	FieldCropType       Field = "crop_type"
	FieldStrategy       Field = "adaptation_strategy"
	FieldEmissions      Field = "emissions"
	FieldEconomicImpact Field = "economic_impact"
)

// Column pins a field to a position and the header name found there.
type Column struct {
	Index  int    `json:"index" yaml:"index"`
	Header string `json:"header" yaml:"header"`
}

// Schema describes where each required field lives in a CSV row.
type Schema struct {
	Name           string `json:"name" yaml:"name"`
	Country        Column `json:"country" yaml:"country"`
	Year           Column `json:"year" yaml:"year"`
	CropType       Column `json:"cropType" yaml:"crop_type"`
	Strategy       Column `json:"strategy" yaml:"strategy"`
	Emissions      Column `json:"emissions" yaml:"emissions"`
	EconomicImpact Column `json:"economicImpact" yaml:"economic_impact"`
}

// NamedColumn pairs a Field with its Column.
type NamedColumn struct {
	Field Field
	Column
}

// Columns returns every field in a stable order.
func (s Schema) Columns() []NamedColumn {
	return []NamedColumn{
		{FieldCountry, s.Country},
		{FieldYear, s.Year},
		{FieldCropType, s.CropType},
		{FieldStrategy, s.Strategy},
		{FieldEmissions, s.Emissions},
		{FieldEconomicImpact, s.EconomicImpact},
	}
}

// Width is the minimum number of fields a row needs to carry every column.
func (s Schema) Width() int {
	w := 0
	for _, c := range s.Columns() {
		if c.Index+1 > w {
			w = c.Index + 1
		}
	}
	return w
}

// Validate checks that indices are non-negative and distinct and that
// every column names the header it expects.
func (s Schema) Validate() error {
	seen := make(map[int]Field)
	for _, c := range s.Columns() {
		if c.Index < 0 {
			return fmt.Errorf("%w: %s has negative index %d", ErrInvalid, c.Field, c.Index)
		}
		if strings.TrimSpace(c.Header) == "" {
			return fmt.Errorf("%w: %s has no header name", ErrInvalid, c.Field)
		}
		if other, dup := seen[c.Index]; dup {
			return fmt.Errorf("%w: %s and %s share index %d", ErrInvalid, other, c.Field, c.Index)
		}
		seen[c.Index] = c.Field
	}
	return nil
}

// CheckHeader compares a header row against the schema.
// Names are compared after normalisation, so "Crop Type" matches "crop_type".
func (s Schema) CheckHeader(header []string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if w := s.Width(); len(header) < w {
		return fmt.Errorf("%w: header has %d columns, schema %q needs at least %d",
			ErrHeaderMismatch, len(header), s.Name, w)
	}
	for _, c := range s.Columns() {
		got := strings.TrimSpace(header[c.Index])
		if NormalizeHeader(got) != NormalizeHeader(c.Header) {
			return fmt.Errorf("%w: %s expected %q at column %d, found %q",
				ErrHeaderMismatch, c.Field, c.Header, c.Index, got)
		}
	}
	return nil
}

// NormalizeHeader lowercases a header and drops separators and unit marks.
// "CO2_Emissions_MT" and "co2 emissions mt" normalise identically.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '%', '.':
			return -1
		}
		return r
	}, h)
}

// ============================================================================
// PRESETS
// ============================================================================

const (
	PresetKaggle2024 = "kaggle2024"
	PresetCompact    = "compact"
)

// Kaggle2024 matches climate_change_impact_on_agriculture_2024.csv as published:
//
//	Year,Country,Region,Crop_Type,Average_Temperature_C,Total_Precipitation_mm,
//	CO2_Emissions_MT,Crop_Yield_MT_per_HA,Extreme_Weather_Events,Irrigation_Access_%,
//	Pesticide_Use_KG_per_HA,Fertilizer_Use_KG_per_HA,Soil_Health_Index,
//	Adaptation_Strategies,Economic_Impact_Million_USD
func Kaggle2024() Schema {
	return Schema{
		Name:           PresetKaggle2024,
		Year:           Column{Index: 0, Header: "Year"},
		Country:        Column{Index: 1, Header: "Country"},
		CropType:       Column{Index: 3, Header: "Crop_Type"},
		Emissions:      Column{Index: 6, Header: "CO2_Emissions_MT"},
		Strategy:       Column{Index: 13, Header: "Adaptation_Strategies"},
		EconomicImpact: Column{Index: 14, Header: "Economic_Impact_Million_USD"},
	}
}

// Compact is the six-column layout: country, year, crop type,
// adaptation strategy, emissions, economic impact.
func Compact() Schema {
	return Schema{
		Name:           PresetCompact,
		Country:        Column{Index: 0, Header: "country"},
		Year:           Column{Index: 1, Header: "year"},
		CropType:       Column{Index: 2, Header: "crop_type"},
		Strategy:       Column{Index: 3, Header: "adaptation_strategy"},
		Emissions:      Column{Index: 4, Header: "emissions"},
		EconomicImpact: Column{Index: 5, Header: "economic_impact"},
	}
}

var presets = map[string]func() Schema{
	PresetKaggle2024: Kaggle2024,
	PresetCompact:    Compact,
}

// Preset returns a named built-in schema.
func Preset(name string) (Schema, error) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, fmt.Errorf("%w: unknown preset %q (known: %s)",
			ErrInvalid, name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}

// PresetNames lists the built-in schema names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
