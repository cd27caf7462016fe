package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	folder = cases.Fold()
	upper  = cases.Upper(language.English)
)

// NormalizeText prepares text for case-insensitive comparison:
//   - trims leading/trailing whitespace
//   - applies Unicode case folding
//   - compresses runs of whitespace into one space
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(folder.String(text)), " ")
}

// NormalizeSearch trims a search term and compresses runs of whitespace. Case
// is left alone: folding rewrites some runes (ß becomes ss) and the term would
// no longer be a substring of the stored text under ILIKE.
func NormalizeSearch(term string) string {
	return strings.Join(strings.Fields(term), " ")
}

// NormalizeCode trims and upper-cases short codes such as state, country
// and currency codes.
func NormalizeCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

// IsAlphaCode reports whether s consists of exactly n ASCII upper-case letters.
func IsAlphaCode(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
