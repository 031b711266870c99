package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{" 8.0 ", 8, true},
		{"-15", -15, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"Inf", 0, false},
		{"-Infinity", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMeasure(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseYear(t *testing.T) {
	y, ok := ParseYear("2020")
	assert.True(t, ok)
	assert.Equal(t, 2020, y)

	y, ok = ParseYear("02021")
	assert.True(t, ok)
	assert.Equal(t, 2021, y)

	for _, bad := range []string{"", "2020.5", "twenty", "20x0"} {
		_, ok := ParseYear(bad)
		assert.False(t, ok, bad)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "340", FormatNumber(340))
	assert.Equal(t, "-15", FormatNumber(-15))
	assert.Equal(t, "12.50", FormatNumber(12.5))
	assert.Equal(t, "0.33", FormatNumber(1.0/3))
}

func TestRoundTo2(t *testing.T) {
	assert.Equal(t, 1.23, RoundTo2(1.2345))
	assert.Equal(t, 12.5, RoundTo2(12.5))
}
