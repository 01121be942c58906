package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tome-search/tome/internal/query"
	"github.com/tome-search/tome/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func hitCount(t *testing.T, livePath, input string) int {
	t.Helper()
	s, err := store.Open(livePath)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	n, err := query.Parse(input)
	require.NoError(t, err)
	res, err := query.Evaluate(n, snap, 0, 0)
	require.NoError(t, err)
	return res.Total
}

func TestFullBuildIndexesTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "alpha.txt", "whales sing in the deep")
	writeFile(t, root, "nested/beta.md", "whales migrate north\fand sing on page two")
	writeFile(t, root, "ignored.bin", "not a supported format")
	writeFile(t, root, ".hidden/gamma.txt", "never indexed")
	livePath := filepath.Join(t.TempDir(), "index.db")

	sum, err := New(Options{Workers: 2}).FullBuild(context.Background(), root, livePath)

	require.NoError(t, err)
	assert.Equal(t, 2, sum.Indexed)
	assert.Equal(t, 3, sum.Pages)
	assert.Empty(t, sum.Skipped)
	assert.Equal(t, 2, hitCount(t, livePath, "whales"))
	assert.Equal(t, 0, hitCount(t, livePath, "never"))

	_, err = os.Stat(store.StagingPath(livePath))
	assert.True(t, os.IsNotExist(err), "staging file should be gone after swap")
}

func TestFullBuildStoresRelativeSlashPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "nested/doc.txt", "content")
	livePath := filepath.Join(t.TempDir(), "index.db")

	_, err := New(Options{}).FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)

	s, err := store.Open(livePath)
	require.NoError(t, err)
	defer s.Close()
	docs, err := s.Documents(context.Background())
	require.NoError(t, err)
	assert.Contains(t, docs, "nested/doc.txt")
}

func TestFullBuildMissingRoot(t *testing.T) {
	livePath := filepath.Join(t.TempDir(), "index.db")

	_, err := New(Options{}).FullBuild(context.Background(), filepath.Join(t.TempDir(), "nope"), livePath)

	require.Error(t, err)
	_, statErr := os.Stat(livePath)
	assert.True(t, os.IsNotExist(statErr), "no index should be created on a failed build")
}

func TestFullBuildSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.txt", "tiny")
	writeFile(t, root, "large.txt", "this file is well beyond the configured cap")
	livePath := filepath.Join(t.TempDir(), "index.db")

	sum, err := New(Options{MaxFileSize: 10}).FullBuild(context.Background(), root, livePath)

	require.NoError(t, err)
	assert.Equal(t, 1, sum.Indexed)
}

func TestFullBuildCanceledKeepsOldIndex(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, root, filepath.Join("docs", string(rune('a'+i))+".txt"), "some stable words here")
	}
	livePath := filepath.Join(t.TempDir(), "index.db")

	_, err := New(Options{}).FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)
	before := hitCount(t, livePath, "stable")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{}).FullBuild(ctx, root, livePath)

	require.Error(t, err)
	assert.Equal(t, before, hitCount(t, livePath, "stable"), "old index must survive a canceled rebuild")
}

func TestUpdatePicksUpNewAndChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "old.txt", "original words")
	livePath := filepath.Join(t.TempDir(), "index.db")
	b := New(Options{})

	_, err := b.FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)

	writeFile(t, root, "new.txt", "freshly added words")
	// Backdating keeps mtime-based change detection deterministic.
	past := time.Now().Add(-time.Hour)
	writeFile(t, root, "changed.txt", "will change")
	require.NoError(t, os.Chtimes(filepath.Join(root, "changed.txt"), past, past))
	_, err = b.Update(context.Background(), root, livePath)
	require.NoError(t, err)

	writeFile(t, root, "changed.txt", "rewritten words")
	sum, err := b.Update(context.Background(), root, livePath)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Indexed, "only the rewritten file should be re-indexed")
	assert.Equal(t, 3, hitCount(t, livePath, "words"))
	assert.Equal(t, 0, hitCount(t, livePath, "will"), "stale postings of a changed file are replaced")
}

func TestUpdateUnchangedTreeIsNoop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.txt", "quiet")
	livePath := filepath.Join(t.TempDir(), "index.db")
	b := New(Options{})

	_, err := b.FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)
	sum, err := b.Update(context.Background(), root, livePath)

	require.NoError(t, err)
	assert.Equal(t, 0, sum.Indexed)
}

func TestUpdateKeepsDeletedDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "kept words")
	gone := writeFile(t, root, "gone.txt", "doomed words")
	livePath := filepath.Join(t.TempDir(), "index.db")
	b := New(Options{})

	_, err := b.FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))

	_, err = b.Update(context.Background(), root, livePath)
	require.NoError(t, err)
	assert.Equal(t, 2, hitCount(t, livePath, "words"), "update never drops deleted documents")

	// A full rebuild reclaims them.
	_, err = b.FullBuild(context.Background(), root, livePath)
	require.NoError(t, err)
	assert.Equal(t, 1, hitCount(t, livePath, "words"))
}

func TestUpdateMissingIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.txt", "content")

	_, err := New(Options{}).Update(context.Background(), root, filepath.Join(t.TempDir(), "index.db"))

	require.Error(t, err)
}
