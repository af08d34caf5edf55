package utils

import (
	"math"
	"strconv"
	"strings"
)

// MinInt returns the smaller of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// ParseFloatOrZero parses a report numeric field, tolerating currency commas
// and surrounding whitespace. Missing or unparseable values become 0 rather
// than an error, matching how report columns are consumed.
func ParseFloatOrZero(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseIntOrDefault parses an integer field, returning def when the value is
// missing or malformed.
func ParseIntOrDefault(s string, def int) int {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return def
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		if f, ferr := strconv.ParseFloat(cleaned, 64); ferr == nil {
			return int(f)
		}
		return def
	}
	return v
}
