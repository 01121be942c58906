// Package build turns a document tree into an index store.
//
// Full builds write into a staging database and atomically swap it over the
// live one, so a crash or cancellation mid-build never damages the previous
// index. Incremental updates write into the live store in per-document
// transactions; they pick up new and changed files but deliberately never
// remove documents whose source files have disappeared. Reclaiming those
// requires a full rebuild.
package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	terrors "github.com/tome-search/tome/internal/errors"
	"github.com/tome-search/tome/internal/extract"
	"github.com/tome-search/tome/internal/store"
	"github.com/tome-search/tome/internal/token"
)

// Options tunes a Builder. Zero values fall back to sensible defaults.
type Options struct {
	// Workers caps concurrent extraction. Defaults to GOMAXPROCS.
	Workers int
	// MaxFileSize skips files larger than this many bytes. 0 means no cap.
	MaxFileSize int64
	// Extractors produce page text. Defaults to extract.Default().
	Extractors extract.Set
	Logger     *slog.Logger
}

// SkippedFile records one document that could not be indexed.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary reports what one build or update did.
type Summary struct {
	Indexed  int           `json:"indexed"`
	Pages    int           `json:"pages"`
	Skipped  []SkippedFile `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Builder indexes document trees.
type Builder struct {
	workers     int
	maxFileSize int64
	extractors  extract.Set
	log         *slog.Logger
}

func New(opts Options) *Builder {
	b := &Builder{
		workers:     opts.Workers,
		maxFileSize: opts.MaxFileSize,
		extractors:  opts.Extractors,
		log:         opts.Logger,
	}
	if b.workers <= 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	if b.extractors == nil {
		b.extractors = extract.Default()
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b
}

// candidate is one file selected for indexing, with its path relative to the
// corpus root. Relative paths are what the store and the registry see.
type candidate struct {
	relPath  string
	absPath  string
	modified time.Time
}

// FullBuild indexes every supported file under rootPath into a staging store
// and swaps it over livePath on success. On failure or cancellation the
// previous live store is left untouched.
func (b *Builder) FullBuild(ctx context.Context, rootPath, livePath string) (*Summary, error) {
	start := time.Now()

	files, err := b.discover(rootPath)
	if err != nil {
		return nil, err
	}

	staging := store.StagingPath(livePath)
	b.cleanStaging(staging)

	s, err := store.Create(staging)
	if err != nil {
		return nil, err
	}

	summary, err := b.indexFiles(ctx, s, files)
	closeErr := s.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		b.cleanStaging(staging)
		if ctx.Err() != nil {
			return nil, terrors.New(terrors.ErrCodeBuildAborted, "build canceled, previous index kept", err)
		}
		return nil, err
	}

	if err := store.Swap(staging, livePath); err != nil {
		b.cleanStaging(staging)
		return nil, err
	}

	summary.Duration = time.Since(start)
	b.log.Info("full build complete",
		"root", rootPath,
		"indexed", summary.Indexed,
		"pages", summary.Pages,
		"skipped", len(summary.Skipped),
		"duration", summary.Duration)
	return summary, nil
}

// Update indexes files that are new or modified since their stored
// timestamp, writing into the live store. Documents whose files are gone
// stay in the index; FullBuild is the way to drop them.
func (b *Builder) Update(ctx context.Context, rootPath, livePath string) (*Summary, error) {
	start := time.Now()

	files, err := b.discover(rootPath)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(livePath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	known, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	var changed []candidate
	for _, f := range files {
		if meta, ok := known[f.relPath]; ok && meta.Modified.Equal(f.modified) {
			continue
		}
		changed = append(changed, f)
	}

	summary, err := b.indexFiles(ctx, s, changed)
	if err != nil {
		if ctx.Err() != nil {
			return nil, terrors.New(terrors.ErrCodeBuildAborted, "update canceled", err)
		}
		return nil, err
	}

	summary.Duration = time.Since(start)
	b.log.Info("incremental update complete",
		"root", rootPath,
		"indexed", summary.Indexed,
		"skipped", len(summary.Skipped),
		"duration", summary.Duration)
	return summary, nil
}

// discover walks the corpus root and selects supported files. Hidden
// directories are not descended into; oversized files are dropped up front
// so workers never open them.
func (b *Builder) discover(rootPath string) ([]candidate, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, terrors.IOError(fmt.Sprintf("reading corpus root %s", rootPath), err)
	}
	if !info.IsDir() {
		return nil, terrors.IOError(fmt.Sprintf("corpus root %s is not a directory", rootPath), nil)
	}

	var files []candidate
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return terrors.IOError(fmt.Sprintf("walking %s", path), err)
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !b.extractors.Supports(path) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return terrors.IOError(fmt.Sprintf("reading file info for %s", path), err)
		}
		if b.maxFileSize > 0 && fi.Size() > b.maxFileSize {
			b.log.Warn("skipping oversized file", "path", path, "size", fi.Size())
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return terrors.IOError(fmt.Sprintf("relativizing %s", path), err)
		}
		files = append(files, candidate{
			relPath:  filepath.ToSlash(rel),
			absPath:  path,
			modified: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// indexFiles extracts and tokenizes candidates on a bounded worker pool and
// funnels the results through a single writer goroutine. Per-file extraction
// failures are recorded and the build carries on; store errors and context
// cancellation abort it.
func (b *Builder) indexFiles(ctx context.Context, s *store.Store, files []candidate) (*Summary, error) {
	summary := &Summary{}
	if len(files) == 0 {
		return summary, nil
	}

	inserts := make(chan store.DocumentInsert, b.workers)
	var mu sync.Mutex // guards summary.Skipped

	writerErr := make(chan error, 1)
	go func() {
		for doc := range inserts {
			if err := s.ReplaceDocument(ctx, doc); err != nil {
				writerErr <- err
				// Drain so producers do not block on a dead writer.
				for range inserts {
				}
				return
			}
			summary.Indexed++
			summary.Pages += len(doc.Pages)
		}
		writerErr <- nil
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, f := range files {
		g.Go(func() error {
			pages, err := b.extractors.Pages(gctx, f.absPath)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				b.log.Warn("extraction failed", "path", f.relPath, "error", err)
				mu.Lock()
				summary.Skipped = append(summary.Skipped, SkippedFile{Path: f.relPath, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			doc := store.DocumentInsert{Path: f.relPath, Modified: f.modified, Pages: tokenizePages(pages)}
			select {
			case inserts <- doc:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	close(inserts)
	if werr := <-writerErr; err == nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func tokenizePages(pages []string) []store.PageInsert {
	out := make([]store.PageInsert, 0, len(pages))
	for i, text := range pages {
		terms := make(store.PageTerms)
		for _, tok := range token.Tokenize(text) {
			terms[tok.Term] = append(terms[tok.Term], uint32(tok.Position))
		}
		out = append(out, store.PageInsert{Number: i + 1, Text: text, Terms: terms})
	}
	return out
}

func (b *Builder) cleanStaging(staging string) {
	for _, p := range []string{staging, staging + "-wal", staging + "-shm"} {
		_ = os.Remove(p)
	}
}
