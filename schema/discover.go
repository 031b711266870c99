package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// DISCOVERY — Derive a schema from a header row
// ============================================================================
// Pipeline:
//   1. Try every preset in name order; the first whose CheckHeader passes wins
//   2. Otherwise locate each field by its known aliases, anywhere in the header
//   3. Fail listing the fields that could not be placed
// ============================================================================

// DiscoveredName is the Name given to a schema built from aliases.
const DiscoveredName = "discovered"

// ErrUndiscoverable reports a header missing one or more required fields.
var ErrUndiscoverable = errors.New("cannot derive schema from header")

// aliases lists normalised header names accepted for each field,
// most specific first.
var aliases = map[Field][]string{
	FieldCountry:        {"country", "nation", "countryname"},
	FieldYear:           {"year", "yr"},
	FieldCropType:       {"croptype", "crop"},
	FieldStrategy:       {"adaptationstrategies", "adaptationstrategy", "strategy", "adaptation"},
	FieldEmissions:      {"co2emissionsmt", "co2emissions", "emissions", "co2"},
	FieldEconomicImpact: {"economicimpactmillionusd", "economicimpact", "impact"},
}

// Discover returns the preset matching header, or a schema assembled by
// finding each field's column through its aliases.
func Discover(header []string) (Schema, error) {
	for _, name := range PresetNames() {
		s, _ := Preset(name)
		if s.CheckHeader(header) == nil {
			return s, nil
		}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		if _, seen := index[n]; !seen && n != "" {
			index[n] = i
		}
	}

	s := Schema{Name: DiscoveredName}
	var missing []string
	for _, f := range fieldOrder {
		col, ok := locate(header, index, aliases[f])
		if !ok {
			missing = append(missing, string(f))
			continue
		}
		*s.column(f) = col
	}
	if len(missing) > 0 {
		return Schema{}, fmt.Errorf("%w: no column for %s", ErrUndiscoverable, strings.Join(missing, ", "))
	}
	if err := s.Validate(); err != nil {
		// Two fields resolved to one column.
		return Schema{}, fmt.Errorf("%w: %w", ErrUndiscoverable, err)
	}
	return s, nil
}

func locate(header []string, index map[string]int, names []string) (Column, bool) {
	for _, n := range names {
		if i, ok := index[n]; ok {
			return Column{Index: i, Header: strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))}, true
		}
	}
	return Column{}, false
}

var fieldOrder = []Field{
	FieldCountry, FieldYear, FieldCropType, FieldStrategy, FieldEmissions, FieldEconomicImpact,
}

func (s *Schema) column(f Field) *Column {
	switch f {
	case FieldCountry:
		return &s.Country
	case FieldYear:
		return &s.Year
	case FieldCropType:
		return &s.CropType
	case FieldStrategy:
		return &s.Strategy
	case FieldEmissions:
		return &s.Emissions
	}
	return &s.EconomicImpact
}
