package kb

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes text (NFKD) and removes combining marks, so
// "não" and "nao" normalize to the same byte sequence.
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

func stripAccents(text string) string {
	stripped, _, err := transform.String(accentStripper, text)
	if err != nil {
		return text
	}
	return stripped
}

// Tokenize converts raw text into the canonical token sequence shared by
// document bodies, metadata and queries: accent-stripped, lowercased,
// maximal runs of ASCII letters/digits. All other characters are separators.
// It is pure and deterministic; no stemming is applied.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	normalized := strings.ToLower(stripAccents(text))

	var tokens []string
	var current strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// termFrequency counts occurrences of each token.
func termFrequency(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs
}
