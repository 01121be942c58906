// Package token turns raw page text into normalized terms.
//
// The same normalization runs at index time and at query time; if the two
// ever diverge, term lookups silently miss. Query code must therefore always
// go through Normalize or Tokenize, never lowercase by hand.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Token is a normalized term with its ordinal position and the byte range it
// occupies in the original text. Offsets let the preview generator map a
// matched position back to the page.
type Token struct {
	Term     string
	Position int
	Start    int
	End      int
}

// foldDiacritics decomposes, strips combining marks, and recomposes, so
// "Narziße"≈"Narzisse"-style lookups behave predictably across renderings.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize applies the term normalization policy: lowercasing and diacritic
// folding. It does not split; use Tokenize for multi-word input.
func Normalize(word string) string {
	folded, _, err := transform.String(foldDiacritics, word)
	if err != nil {
		folded = word
	}
	return strings.ToLower(folded)
}

// Tokenize splits text on non-alphanumeric boundaries and normalizes each
// word. Positions are 0-based term ordinals within the text.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/6)
	pos := 0
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		term := Normalize(text[start:end])
		if term != "" {
			tokens = append(tokens, Token{
				Term:     term,
				Position: pos,
				Start:    start,
				End:      end,
			})
			pos++
		}
		start = -1
	}

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))

	return tokens
}

// Terms tokenizes and returns just the normalized terms, in order.
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
