package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// INR multipliers used by the listing sites
const (
	Crore    = 10000000
	Lakh     = 100000
	Thousand = 1000

	SqmtToSqft = 10.764
)

var numberPattern = regexp.MustCompile(`[\d]+(?:[.,]\d+)*`)

// NormalizeKey lowercases and trims a value for comparison
func NormalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsUnknownKey reports whether a normalized key carries no information
func IsUnknownKey(key string) bool {
	return key == "" || key == "unknown"
}

// ParseINRPrice converts a display price such as "₹ 1.25 Cr", "45 L",
// "800 k" or "2 acs" into an absolute rupee amount. The unit rules match the
// ones the source templates apply in SQL.
func ParseINRPrice(text string) (float64, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, fmt.Errorf("empty price")
	}

	raw := numberPattern.FindString(lower)
	if raw == "" {
		return 0, fmt.Errorf("no number in price %q", text)
	}
	number, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", text, err)
	}

	unit := strings.TrimSpace(lower[strings.Index(lower, raw)+len(raw):])
	switch {
	case strings.HasPrefix(unit, "cr"):
		return number * Crore, nil
	case strings.HasPrefix(unit, "lac"), strings.HasPrefix(unit, "lakh"), strings.HasPrefix(unit, "l"):
		return number * Lakh, nil
	case strings.HasPrefix(unit, "acs"):
		return number * Lakh, nil
	case strings.HasPrefix(unit, "k"):
		return number * Thousand, nil
	}
	return number, nil
}

// ParseAreaSqft converts "1200 sqft" or "110 sqmt" into square feet
func ParseAreaSqft(text string) (float64, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	raw := numberPattern.FindString(lower)
	if raw == "" {
		return 0, fmt.Errorf("no number in area %q", text)
	}
	number, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid area %q: %w", text, err)
	}
	if strings.Contains(lower, "sqm") || strings.Contains(lower, "sq.mt") {
		return number * SqmtToSqft, nil
	}
	return number, nil
}
