package engine

import (
	"math"
	"strconv"
	"strings"
)

// ParseMeasure parses a numeric CSV field.
// Empty, non-numeric, NaN and infinite inputs all report ok=false;
// callers drop the record rather than substituting zero.
func ParseMeasure(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseYear parses a year field as a base-10 integer.
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// yearKey is the canonical inner key for a year, so "2020" and "02020"
// land in the same bucket.
func yearKey(y int) string {
	return strconv.Itoa(y)
}

// FormatNumber prints whole numbers without decimals and everything else
// with two.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
