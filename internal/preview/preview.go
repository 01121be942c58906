// Package preview renders the context window around a match on a page.
//
// Exact matches carry token positions from the index, so the window anchors
// directly on the stored offset. Fuzzy matches re-scan the page for the word
// nearest to the query term; when the page rendering holds no word within
// the match's edit budget, there is no preview and the caller shows the hit
// without one.
package preview

import (
	"strings"

	"github.com/tome-search/tome/internal/query"
	"github.com/tome-search/tome/internal/token"
)

// Options controls window size and match decoration.
type Options struct {
	// Radius is how many runes of context to keep on each side of the
	// matched word.
	Radius int
	// Highlight decorates the matched word. Nil leaves it undecorated.
	Highlight func(string) string
}

const DefaultRadius = 50

// Generate returns the preview snippet for a hit, or ok=false when no
// anchor for the match can be located on the page.
func Generate(pageText string, hit query.Hit, opts Options) (snippet string, ok bool) {
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	toks := token.Tokenize(pageText)

	anchor, ok := anchorToken(toks, hit)
	if !ok {
		return "", false
	}
	return window(pageText, anchor, opts), true
}

// anchorToken picks the page token the preview centers on.
func anchorToken(toks []token.Token, hit query.Hit) (token.Token, bool) {
	if len(hit.FuzzyTerms) > 0 {
		return nearestToken(toks, hit.FuzzyTerms, hit.MaxDistance)
	}
	if len(hit.Positions) > 0 {
		pos := int(hit.Positions[0])
		if pos < len(toks) {
			return toks[pos], true
		}
	}
	// Stored positions can miss when the page text was re-rendered; fall
	// back to the first occurrence of any matched term.
	matched := make(map[string]struct{}, len(hit.Terms))
	for _, t := range hit.Terms {
		matched[t] = struct{}{}
	}
	for _, tok := range toks {
		if _, ok := matched[tok.Term]; ok {
			return tok, true
		}
	}
	return token.Token{}, false
}

// nearestToken finds the page word closest by edit distance to any query
// term, within maxDistance.
func nearestToken(toks []token.Token, queryTerms []string, maxDistance int) (token.Token, bool) {
	best := token.Token{}
	bestDist := maxDistance + 1
	for _, tok := range toks {
		for _, q := range queryTerms {
			if d, ok := token.DistanceWithin(tok.Term, q, maxDistance); ok && d < bestDist {
				best, bestDist = tok, d
				if bestDist == 0 {
					return best, true
				}
			}
		}
	}
	return best, bestDist <= maxDistance
}

// window cuts Radius runes of context on each side of the anchor and
// collapses internal whitespace so the snippet stays on one line.
func window(text string, anchor token.Token, opts Options) string {
	before := lastRunes(text[:anchor.Start], opts.Radius)
	word := text[anchor.Start:anchor.End]
	after := firstRunes(text[anchor.End:], opts.Radius)

	if opts.Highlight != nil {
		word = opts.Highlight(word)
	}

	var b strings.Builder
	if trimmed := collapse(before); trimmed != "" {
		if len(before) < anchor.Start {
			b.WriteString("…")
		}
		b.WriteString(trimmed)
		b.WriteString(" ")
	}
	b.WriteString(word)
	if trimmed := collapse(after); trimmed != "" {
		b.WriteString(" ")
		b.WriteString(trimmed)
		if len(after) < len(text)-anchor.End {
			b.WriteString("…")
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lastRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
