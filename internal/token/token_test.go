package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_SplitsAndLowercases(t *testing.T) {
	tokens := Tokenize("Tulpen, Rosen; und NARZISSEN!")

	require.Len(t, tokens, 4)
	assert.Equal(t, "tulpen", tokens[0].Term)
	assert.Equal(t, "rosen", tokens[1].Term)
	assert.Equal(t, "und", tokens[2].Term)
	assert.Equal(t, "narzissen", tokens[3].Term)
}

func TestTokenize_PositionsAreOrdinals(t *testing.T) {
	tokens := Tokenize("one two   three")

	require.Len(t, tokens, 3)
	for i, tok := range tokens {
		assert.Equal(t, i, tok.Position)
	}
}

func TestTokenize_OffsetsPointIntoSource(t *testing.T) {
	text := "The Salinas River drops in close."
	tokens := Tokenize(text)

	require.NotEmpty(t, tokens)
	for _, tok := range tokens {
		raw := text[tok.Start:tok.End]
		assert.Equal(t, Normalize(raw), tok.Term)
	}
	assert.Equal(t, "salinas", tokens[1].Term)
	assert.Equal(t, 4, tokens[1].Start)
}

func TestTokenize_KeepsDigitsAndMixedWords(t *testing.T) {
	assert.Equal(t, []string{"page", "42", "rev2"}, Terms("page 42 (rev2)"))
}

func TestTokenize_EmptyAndPunctuationOnly(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("... --- !!!"))
}

func TestNormalize_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, "uber", Normalize("Über"))
	assert.Equal(t, "narzisse", Normalize("Narzísse"))
	assert.Equal(t, "cafe", Normalize("Café"))
}

func TestNormalize_MatchesTokenizeIndexSide(t *testing.T) {
	// The query side normalizes single words; the index side tokenizes pages.
	// Both must agree on every word, or lookups silently fail.
	words := []string{"Tulpen", "CARRYING", "Über", "x86"}
	for _, w := range words {
		tokens := Tokenize(w)
		require.Len(t, tokens, 1, w)
		assert.Equal(t, Normalize(w), tokens[0].Term)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"nazis", "nacis", 1},
		{"flooding", "floding", 1},
		{"über", "uber", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.want, Distance(tt.b, tt.a), "%s vs %s reversed", tt.b, tt.a)
	}
}

func TestDistanceWithin_Bound(t *testing.T) {
	d, ok := DistanceWithin("nazis", "nacis", 2)
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	_, ok = DistanceWithin("short", "muchlongerword", 2)
	assert.False(t, ok, "length difference alone exceeds the bound")

	_, ok = DistanceWithin("abcdef", "uvwxyz", 2)
	assert.False(t, ok)
}
