package criteria

import (
	"regexp"
	"strconv"
)

var (
	priorLinesRules = []numberRule{
		{regexp.MustCompile(`no more than (\d+) prior`), 1},
		{regexp.MustCompile(`maximum (?:of )?(\d+) prior`), 1},
		// an at-most operator only; the "=" of ">=2 prior" is a minimum
		{regexp.MustCompile(`(?:^|[^>≥=])(?:≤|<=?)\s*(\d+) prior`), 1},
		{regexp.MustCompile(`up to (\d+) prior`), 1},
		// ranges such as "1-2 prior therapies" cap at the upper bound
		{regexp.MustCompile(`\d+\s*[-–]\s*(\d+)\s+prior`), 1},
		{regexp.MustCompile(`after\s+\d+\s*[-–]\s*(\d+)\s+prior`), 1},
	}
	priorLinesExclusionRules = []numberRule{
		{regexp.MustCompile(`>\s*(\d+) prior`), 1},
		{regexp.MustCompile(`more than (\d+) prior`), 1},
		{regexp.MustCompile(`greater than (\d+) prior`), 1},
	}

	washoutWeekRules = []numberRule{
		{regexp.MustCompile(`(\d+)\s*weeks?\s+(?:since|from|after).*?(?:prior|last|previous)\s+(?:therapy|treatment|chemotherapy)`), 1},
		{regexp.MustCompile(`washout.*?(\d+)\s*weeks?`), 1},
		{regexp.MustCompile(`(\d+)\s*weeks?\s+washout`), 1},
		{regexp.MustCompile(`completed.*?therapy.*?(\d+)\s*weeks?\s+(?:prior|before)`), 1},
	}
	washoutDayRules = []numberRule{
		{regexp.MustCompile(`(\d+)\s*days?\s+(?:since|from|after).*?(?:prior|last|previous)`), 1},
		{regexp.MustCompile(`washout.*?(\d+)\s*days?`), 1},
		{regexp.MustCompile(`(\d+)\s*days?\s+washout`), 1},
	}

	ecogRules = []numberRule{
		{regexp.MustCompile(`ecog\s+(?:performance\s+)?status\s+(?:of\s+)?[≤<=]+\s*(\d)`), 1},
		{regexp.MustCompile(`ecog\s+(?:ps\s+)?[≤<=]+\s*(\d)`), 1},
		{regexp.MustCompile(`ecog\s+0\s*[-–]\s*(\d)`), 1},
		{regexp.MustCompile(`ecog\s+(?:ps\s+)?0\s*[-–]\s*(\d)`), 1},
		{regexp.MustCompile(`ecog\s+0\s+or\s+(\d)`), 1},
		{regexp.MustCompile(`ecog\s+(?:performance\s+)?status\s+(?:of\s+)?0\s+or\s+(\d)`), 1},
		{regexp.MustCompile(`ecog\s+0,\s*1(?:,\s*(\d))?`), 1},
		{regexp.MustCompile(`ecog\s+(?:performance\s+)?status\s+0\s*[-–]\s*(\d)`), 1},
	}
	ecogFallbacks = []struct {
		phrases []string
		max     int
	}{
		{[]string{"ecog 0-1", "ecog 0 or 1", "ecog ps 0-1", "ecog 0, 1", "ecog 0,1"}, 1},
		{[]string{"ecog 0-2", "ecog ps 0-2"}, 2},
	}
)

// ParsePriorLinesLimit returns the maximum number of prior therapy lines a
// trial accepts. Limits stated anywhere take precedence over "more than N
// prior" phrasings, which only count inside the exclusion section.
func ParsePriorLinesLimit(text string) *int {
	if text == "" {
		return nil
	}
	if n, ok := firstNumber(normalize(text), priorLinesRules); ok {
		return intPtr(n)
	}
	_, exclusion, _ := splitSections(text)
	if n, ok := firstNumber(normalize(exclusion), priorLinesExclusionRules); ok {
		return intPtr(n)
	}
	return nil
}

// ParseWashoutPeriod returns the washout as written, "4 weeks" or "14 days".
// Week phrasings win over day phrasings; units are not converted.
func ParseWashoutPeriod(text string) string {
	if text == "" {
		return ""
	}
	lower := normalize(text)
	if n, ok := firstNumber(lower, washoutWeekRules); ok {
		return strconv.Itoa(n) + " weeks"
	}
	if n, ok := firstNumber(lower, washoutDayRules); ok {
		return strconv.Itoa(n) + " days"
	}
	return ""
}

// ParseEcogRequirement returns the highest ECOG performance status allowed.
func ParseEcogRequirement(text string) *int {
	if text == "" {
		return nil
	}
	lower := normalize(text)
	if n, ok := firstNumber(lower, ecogRules); ok {
		return intPtr(n)
	}
	for _, fallback := range ecogFallbacks {
		for _, phrase := range fallback.phrases {
			if containsPhrase(lower, phrase) {
				return intPtr(fallback.max)
			}
		}
	}
	return nil
}
