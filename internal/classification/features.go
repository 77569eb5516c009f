package classification

import (
	"regexp"
	"sort"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)

// noiseTokens carry no category signal in bank descriptions.
var noiseTokens = map[string]struct{}{
	"payment":     {},
	"purchase":    {},
	"txn":         {},
	"transaction": {},
	"ref":         {},
	"upi":         {},
	"pg":          {},
	"gateway":     {},
}

// Tokenize lowercases text, strips punctuation and drops noise tokens.
func Tokenize(text string) []string {
	cleaned := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)

	tokens := fields[:0]
	for _, f := range fields {
		if _, noise := noiseTokens[f]; !noise {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NGrams expands tokens into every n-gram of length 1 through maxN.
func NGrams(tokens []string, maxN int) []string {
	grams := make([]string, 0, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// buildVocabulary keeps the maxFeatures terms with the highest document
// frequency, breaking ties alphabetically.
func buildVocabulary(docs [][]string, maxFeatures int) map[string]struct{} {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	vocab := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		vocab[term] = struct{}{}
	}
	return vocab
}

func filterVocabulary(terms []string, vocab map[string]struct{}) []string {
	kept := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, ok := vocab[term]; ok {
			kept = append(kept, term)
		}
	}
	return kept
}
