// Package search runs queries against a named corpus and shapes the results
// for display: resolved document paths, previews, and stable hit numbers.
//
// Hit numbers are the handle the open command works with. Every search
// persists its numbered results next to the index, so "tome open <n>" after
// "tome search" resolves n against exactly the result list the user saw.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	terrors "github.com/tome-search/tome/internal/errors"
	"github.com/tome-search/tome/internal/preview"
	"github.com/tome-search/tome/internal/query"
	"github.com/tome-search/tome/internal/registry"
	"github.com/tome-search/tome/internal/store"
)

// Options selects the query mode and result window.
type Options struct {
	// Fuzzy switches to fuzzy matching with the given Distance budget.
	Fuzzy    bool
	Distance int
	Offset   int
	Limit    int
	// PreviewRadius is the context window in runes on each side of a match.
	PreviewRadius int
	// Highlight decorates the matched word in previews. Nil for plain text.
	Highlight func(string) string
}

// Hit is one result row, ready for display.
type Hit struct {
	Number     int     `json:"number"` // 1-based across the whole result set
	Path       string  `json:"path"`   // relative to the corpus root
	Page       int     `json:"page"`
	Score      float64 `json:"score"`
	Preview    string  `json:"preview,omitempty"`
	HasPreview bool    `json:"has_preview"`
}

// Result is one executed search.
type Result struct {
	Index    string `json:"index"`
	RootPath string `json:"root_path"`
	Query    string `json:"query"`
	Fuzzy    bool   `json:"fuzzy"`
	Offset   int    `json:"offset"`
	Hits     []Hit  `json:"hits"`
	Total    int    `json:"total"`
}

// Engine executes searches against registered corpora. It keeps one open
// session per index so an interactive search (one query per keystroke) does
// not reopen the store and reread page texts on every call. A session pins
// the index file it opened; an index rebuilt while a session is live becomes
// visible the next time the engine is constructed.
type Engine struct {
	reg *registry.Registry

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one open index with its page-text cache.
type session struct {
	store *store.Store
	pages *store.PageCache
}

func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg, sessions: make(map[string]*session)}
}

// Close releases all open index sessions.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for name, s := range e.sessions {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(e.sessions, name)
	}
	return firstErr
}

func (e *Engine) session(entry registry.Entry) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[entry.Name]; ok {
		return s, nil
	}
	st, err := store.Open(entry.IndexPath())
	if err != nil {
		return nil, err
	}
	pages, err := store.NewPageCache(st, 0)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	s := &session{store: st, pages: pages}
	e.sessions[entry.Name] = s
	return s, nil
}

// Search parses, evaluates, and renders one query against a named corpus,
// then persists the numbered results for a later open.
func (e *Engine) Search(ctx context.Context, indexName, input string, opts Options) (*Result, error) {
	node, err := parseQuery(input, opts)
	if err != nil {
		return nil, err
	}

	entry, err := e.reg.Resolve(indexName)
	if err != nil {
		return nil, err
	}

	sess, err := e.session(entry)
	if err != nil {
		return nil, err
	}

	snap, err := sess.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	evaluated, err := query.Evaluate(node, snap, opts.Offset, opts.Limit)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Index:    entry.Name,
		RootPath: entry.RootPath,
		Query:    input,
		Fuzzy:    opts.Fuzzy,
		Offset:   opts.Offset,
		Total:    evaluated.Total,
		Hits:     make([]Hit, 0, len(evaluated.Hits)),
	}
	for i, h := range evaluated.Hits {
		doc, ok := snap.Document(h.DocID)
		if !ok {
			return nil, terrors.InternalError(fmt.Sprintf("hit references unknown document %d", h.DocID), nil)
		}
		hit := Hit{
			Number: opts.Offset + i + 1,
			Path:   doc.Path,
			Page:   h.Page,
			Score:  h.Score,
		}
		text, err := sess.pages.Text(ctx, h.DocID, h.Page)
		if err == nil {
			hit.Preview, hit.HasPreview = preview.Generate(text, h, preview.Options{
				Radius:    opts.PreviewRadius,
				Highlight: opts.Highlight,
			})
		}
		result.Hits = append(result.Hits, hit)
	}

	if err := saveResults(entry.ResultsPath(), result); err != nil {
		return nil, err
	}
	return result, nil
}

func parseQuery(input string, opts Options) (query.Node, error) {
	if opts.Fuzzy {
		return query.ParseFuzzy(input, opts.Distance)
	}
	return query.Parse(input)
}

// Lookup resolves a hit number from the last persisted search on an index to
// the absolute document path and page.
func (e *Engine) Lookup(indexName string, number int) (docPath string, page int, err error) {
	entry, err := e.reg.Resolve(indexName)
	if err != nil {
		return "", 0, err
	}
	result, err := loadResults(entry.ResultsPath())
	if err != nil {
		return "", 0, err
	}
	for _, h := range result.Hits {
		if h.Number == number {
			return filepath.Join(entry.RootPath, filepath.FromSlash(h.Path)), h.Page, nil
		}
	}
	return "", 0, terrors.Newf(terrors.ErrCodeQueryParse,
		"no hit %d in the last search on %q; run a search first or pick a listed number", number, indexName)
}

func saveResults(path string, result *Result) error {
	buf, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return terrors.InternalError("encoding search results", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return terrors.IOError("persisting search results", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return terrors.IOError("persisting search results", err)
	}
	return nil
}

func loadResults(path string) (*Result, error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, terrors.Newf(terrors.ErrCodeQueryParse,
			"no previous search on this index; run a search before open")
	}
	if err != nil {
		return nil, terrors.IOError("reading persisted search results", err)
	}
	var result Result
	if err := json.Unmarshal(buf, &result); err != nil {
		return nil, terrors.IOError("decoding persisted search results", err)
	}
	return &result, nil
}
