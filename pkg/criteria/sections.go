package criteria

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxListItems     = 20
	MinListItemRunes = 11
	MaxStageTerms    = 10
)

var (
	inclusionHeader = regexp.MustCompile(`(?i)inclusion\s+criteria:?`)
	exclusionHeader = regexp.MustCompile(`(?i)exclusion\s+criteria:?`)

	// a bullet (-, •, *) or a numbered marker (1. / 2)) at the start of a line
	listMarker = regexp.MustCompile(`\n[ \t]*(?:[-•*]+|\d+[.)])[ \t]*`)

	stagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`stage\s+[iv1-4]+[abc]?\b`),
		regexp.MustCompile(`metastatic`),
		regexp.MustCompile(`locally\s+advanced`),
		regexp.MustCompile(`early\s+stage`),
		regexp.MustCompile(`advanced`),
		regexp.MustCompile(`recurrent`),
		regexp.MustCompile(`refractory`),
	}
)

// SplitSections returns the text following the "Inclusion Criteria" header up to
// the "Exclusion Criteria" header, and the text following the exclusion header.
// When neither header is present the whole text is treated as inclusion text.
func SplitSections(text string) (inclusion, exclusion string) {
	inclusion, exclusion, found := splitSections(text)
	if !found {
		return text, ""
	}
	return inclusion, exclusion
}

func splitSections(text string) (inclusion, exclusion string, found bool) {
	if text == "" {
		return "", "", false
	}
	if loc := inclusionHeader.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if end := exclusionHeader.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		inclusion = strings.TrimSpace(rest)
		found = true
	}
	if loc := exclusionHeader.FindStringIndex(text); loc != nil {
		exclusion = strings.TrimSpace(text[loc[1]:])
		found = true
	}
	return inclusion, exclusion, found
}

// ExtractListItems splits a section on bullet and numbered-list markers, drops
// items of ten characters or fewer and keeps at most MaxListItems in source order.
func ExtractListItems(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := listMarker.Split("\n"+text, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if utf8.RuneCountInString(item) < MinListItemRunes {
			continue
		}
		items = append(items, item)
		if len(items) == MaxListItems {
			break
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// DiseaseStageTerms collects stage mentions ("stage iiib", "metastatic",
// "locally advanced", ...) lower-cased and deduplicated in first-seen order.
func DiseaseStageTerms(text string) []string {
	if text == "" {
		return nil
	}
	lower := normalize(text)
	seen := make(map[string]struct{})
	var stages []string
	for _, pattern := range stagePatterns {
		for _, match := range pattern.FindAllString(lower, -1) {
			term := strings.Join(strings.Fields(match), " ")
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			stages = append(stages, term)
			if len(stages) == MaxStageTerms {
				return stages
			}
		}
	}
	return stages
}
