package common

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase capitalizes each word of s and lowercases the rest.
func TitleCase(s string) string {
	// Casers keep state and are not safe for concurrent use.
	return cases.Title(language.English).String(s)
}

// CollapseSpaces trims s and folds internal whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstContained returns the first keyword contained in text, if any.
func FirstContained(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	_, ok := FirstContained(text, keywords)
	return ok
}

// ContainsWord reports whether word appears in text as a whole word.
// Both are expected in lowercase.
func ContainsWord(text, word string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return slices.Contains(words, word)
}
