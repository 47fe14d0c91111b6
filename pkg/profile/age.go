package profile

import (
	"regexp"
	"strconv"
	"strings"
)

var ageNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseAge converts a registry age bound ("18 Years", "6 Months", "N/A") to
// years. Values without a unit are read as years.
func ParseAge(value string) *float64 {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" || lower == "n/a" || lower == "none" {
		return nil
	}
	match := ageNumber.FindString(lower)
	if match == "" {
		return nil
	}
	years, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	switch {
	case strings.Contains(lower, "month"):
		years /= 12
	case strings.Contains(lower, "week"):
		years /= 52
	case strings.Contains(lower, "day"):
		years /= 365
	}
	return &years
}
