package criteria

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalize folds compatibility forms (full-width digits, ligatures) and case so
// that phrase and pattern rules see one canonical spelling.
func normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// containsPhrase reports whether phrase occurs in text as a whole term: an
// alphanumeric edge of the phrase may not continue into a letter or digit, so
// "hiv" does not fire inside "archived" and "ngs" not inside "findings".
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		if boundaryBefore(text, idx, phrase) && boundaryAfter(text, end, phrase) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[idx:])
		start = idx + size
	}
	return false
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsPhrase(text, phrase) {
			return true
		}
	}
	return false
}

func boundaryBefore(text string, idx int, phrase string) bool {
	first, _ := utf8.DecodeRuneInString(phrase)
	if !isWordRune(first) || idx == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(prev)
}

func boundaryAfter(text string, end int, phrase string) bool {
	last, _ := utf8.DecodeLastRuneInString(phrase)
	if !isWordRune(last) || end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// numberRule captures an integer from one submatch group of re.
type numberRule struct {
	re    *regexp.Regexp
	group int
}

// firstNumber evaluates rules top to bottom and returns the first captured
// integer. A rule that matches without capturing its group falls through.
func firstNumber(text string, rules []numberRule) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, rule := range rules {
		match := rule.re.FindStringSubmatch(text)
		if match == nil || rule.group >= len(match) || match[rule.group] == "" {
			continue
		}
		value, err := strconv.Atoi(match[rule.group])
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}

func intPtr(v int) *int {
	return &v
}
