package patient

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTag       = regexp.MustCompile(`<[^>]+>`)
	sqlKeywords   = regexp.MustCompile(`(?i)\b(?:DROP|DELETE|INSERT|UPDATE|SELECT|UNION)\b`)
	disallowedRun = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,;:()'"]`)
)

// Sanitize strips markup and SQL keywords from free text, truncates it to
// maxLength runes and removes characters outside the allow-list.
func Sanitize(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	text = htmlTag.ReplaceAllString(text, "")
	text = sqlKeywords.ReplaceAllString(text, "")
	if maxLength > 0 && utf8.RuneCountInString(text) > maxLength {
		text = string([]rune(text)[:maxLength])
	}
	text = disallowedRun.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
