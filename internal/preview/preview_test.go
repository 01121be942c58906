package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tome-search/tome/internal/query"
)

func TestGenerateAnchorsOnStoredPosition(t *testing.T) {
	text := "The castle gate opened at dawn and the guards let the travelers in."
	hit := query.Hit{Positions: []uint32{2}, Terms: []string{"gate"}}

	snippet, ok := Generate(text, hit, Options{Radius: 12})

	require.True(t, ok)
	assert.Contains(t, snippet, "gate")
	assert.Contains(t, snippet, "castle")
	assert.NotContains(t, snippet, "travelers")
}

func TestGenerateHighlight(t *testing.T) {
	text := "one two three"
	hit := query.Hit{Positions: []uint32{1}, Terms: []string{"two"}}

	snippet, ok := Generate(text, hit, Options{
		Radius:    20,
		Highlight: func(s string) string { return "[" + s + "]" },
	})

	require.True(t, ok)
	assert.Equal(t, "one [two] three", snippet)
}

func TestGenerateEllipsesMarkTruncation(t *testing.T) {
	text := strings.Repeat("padding ", 30) + "needle " + strings.Repeat("padding ", 30)
	hit := query.Hit{Positions: []uint32{30}, Terms: []string{"needle"}}

	snippet, ok := Generate(text, hit, Options{Radius: 20})

	require.True(t, ok)
	assert.True(t, strings.HasPrefix(snippet, "…"))
	assert.True(t, strings.HasSuffix(snippet, "…"))
	assert.Contains(t, snippet, "needle")
}

func TestGenerateCollapsesWhitespace(t *testing.T) {
	text := "first line\nsecond   line with\tmatch inside"
	hit := query.Hit{Positions: []uint32{5}, Terms: []string{"match"}}

	snippet, ok := Generate(text, hit, Options{Radius: 30})

	require.True(t, ok)
	assert.NotContains(t, snippet, "\n")
	assert.NotContains(t, snippet, "  ")
}

func TestGenerateFallsBackToTermScan(t *testing.T) {
	// A stale position beyond the page still produces a preview as long as
	// the matched term occurs in the text.
	text := "short page mentioning whales briefly"
	hit := query.Hit{Positions: []uint32{99}, Terms: []string{"whales"}}

	snippet, ok := Generate(text, hit, Options{Radius: 10})

	require.True(t, ok)
	assert.Contains(t, snippet, "whales")
}

func TestGenerateFuzzyNearestWord(t *testing.T) {
	text := "the archive holds maps and manuscripts"
	hit := query.Hit{
		Terms:       []string{"manuscripts"},
		FuzzyTerms:  []string{"manuscript"},
		MaxDistance: 2,
	}

	snippet, ok := Generate(text, hit, Options{Radius: 15})

	require.True(t, ok)
	assert.Contains(t, snippet, "manuscripts")
}

func TestGenerateFuzzyNoWordWithinDistance(t *testing.T) {
	// The hit came from another rendering of the page; this text holds
	// nothing close to the query term, so there is no preview.
	text := "completely unrelated words only"
	hit := query.Hit{
		Terms:       []string{"manuscripts"},
		FuzzyTerms:  []string{"manuscript"},
		MaxDistance: 2,
	}

	_, ok := Generate(text, hit, Options{Radius: 15})

	assert.False(t, ok)
}

func TestGenerateNoAnchor(t *testing.T) {
	_, ok := Generate("nothing relevant here", query.Hit{Terms: []string{"absent"}}, Options{})
	assert.False(t, ok)
}
