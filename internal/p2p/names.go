package p2p

import (
	"strings"
	"unicode"

	"github.com/Veraticus/smart-categorizer/internal/common"
)

// upiName guesses a display name from the part of a UPI id before the '@'.
func upiName(prefix string) string {
	var parts []string
	for _, p := range strings.Fields(upiSeparators.ReplaceAllString(prefix, " ")) {
		if len(p) > 1 {
			parts = append(parts, common.TitleCase(p))
		}
	}
	if len(parts) == 0 {
		return common.TitleCase(prefix)
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}

// looksLikePerson accepts one to four words with at most one digit each
// and no business markers.
func looksLikePerson(text string) bool {
	text = strings.TrimSpace(text)
	words := strings.Fields(text)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		digits := 0
		for _, r := range w {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits > 1 {
			return false
		}
	}
	if _, business := businessSignals.find(strings.ToLower(text)); business {
		return false
	}
	return len(text) >= 3
}

// orgName extracts an employer name from a salary credit description.
func orgName(desc string) string {
	cleaned := strings.TrimSpace(orgPrefixPattern.ReplaceAllString(desc, ""))
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "Employer"
	}
	if len(words) > 4 {
		words = words[:4]
	}
	return common.TitleCase(strings.Join(words, " "))
}
