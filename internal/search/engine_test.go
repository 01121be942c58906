package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tome-search/tome/internal/build"
	terrors "github.com/tome-search/tome/internal/errors"
	"github.com/tome-search/tome/internal/registry"
)

// newTestEngine registers one corpus named "books", builds its index, and
// returns an engine over it.
func newTestEngine(t *testing.T, docs map[string]string) *Engine {
	t.Helper()
	root := t.TempDir()
	for name, content := range docs {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	dataDir := t.TempDir()
	reg := registry.New(filepath.Join(dataDir, "indices.yaml"), filepath.Join(dataDir, "indices"))
	entry, err := reg.Create("books", root)
	require.NoError(t, err)

	_, err = build.New(build.Options{}).FullBuild(context.Background(), root, entry.IndexPath())
	require.NoError(t, err)

	e := NewEngine(reg)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestSearchRendersHits(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"moby.txt":  "Call me Ishmael. The whale surfaced at dawn.\fThe whale returned.",
		"other.txt": "Nothing about sea creatures here.",
	})

	res, err := e.Search(context.Background(), "books", "whale", Options{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, "books", res.Index)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Hits, 2)

	first := res.Hits[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "moby.txt", first.Path)
	assert.Equal(t, 1, first.Page)
	assert.True(t, first.HasPreview)
	assert.Contains(t, first.Preview, "whale")

	assert.Equal(t, 2, res.Hits[1].Number)
	assert.Equal(t, 2, res.Hits[1].Page)
}

func TestSearchHighlight(t *testing.T) {
	e := newTestEngine(t, map[string]string{"doc.txt": "a lonely match here"})

	res, err := e.Search(context.Background(), "books", "match", Options{
		Limit:     5,
		Highlight: func(s string) string { return ">" + s + "<" },
	})

	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Contains(t, res.Hits[0].Preview, ">match<")
}

func TestSearchOffsetsNumberingContinuously(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.txt": "shared", "b.txt": "shared", "c.txt": "shared",
	})

	page2, err := e.Search(context.Background(), "books", "shared", Options{Offset: 2, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, page2.Total)
	require.Len(t, page2.Hits, 1)
	assert.Equal(t, 3, page2.Hits[0].Number)
}

func TestSearchUnknownIndex(t *testing.T) {
	e := newTestEngine(t, map[string]string{"doc.txt": "text"})

	_, err := e.Search(context.Background(), "nope", "text", Options{})

	require.Error(t, err)
	assert.Equal(t, terrors.ErrCodeIndexNotFound, terrors.GetCode(err))
}

func TestSearchBadQueryFailsBeforeTouchingIndex(t *testing.T) {
	e := newTestEngine(t, map[string]string{"doc.txt": "text"})

	_, err := e.Search(context.Background(), "books", `"unterminated`, Options{})
	require.Error(t, err)
	assert.Equal(t, terrors.ErrCodeQueryParse, terrors.GetCode(err))

	_, err = e.Search(context.Background(), "books", `a AND b`, Options{Fuzzy: true, Distance: 2})
	require.Error(t, err)
	assert.Equal(t, terrors.ErrCodeQueryUnsupported, terrors.GetCode(err))
}

func TestSearchFuzzy(t *testing.T) {
	e := newTestEngine(t, map[string]string{"doc.txt": "the lighthouse keeper"})

	res, err := e.Search(context.Background(), "books", "lighthose", Options{Fuzzy: true, Distance: 2, Limit: 5})

	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].HasPreview)
	assert.Contains(t, res.Hits[0].Preview, "lighthouse")
}

func TestLookupResolvesPersistedHitNumbers(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"shelf/deep.txt": "buried treasure",
	})

	_, err := e.Search(context.Background(), "books", "treasure", Options{Limit: 5})
	require.NoError(t, err)

	path, page, err := e.Lookup("books", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join("shelf", "deep.txt"), mustRel(t, path))

	_, _, err = e.Lookup("books", 99)
	require.Error(t, err)
}

func mustRel(t *testing.T, path string) string {
	t.Helper()
	// The corpus root is the path's prefix up to the shelf directory.
	i := len(path) - len(filepath.Join("shelf", "deep.txt"))
	require.Greater(t, i, 0)
	return path[i:]
}

func TestLookupWithoutPriorSearch(t *testing.T) {
	e := newTestEngine(t, map[string]string{"doc.txt": "text"})

	_, _, err := e.Lookup("books", 1)

	require.Error(t, err)
}
