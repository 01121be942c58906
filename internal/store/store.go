package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	terrors "github.com/tome-search/tome/internal/errors"
)

// schema holds the index store tables. positions is a packed uint32 list;
// the (term, doc_id, page) primary key enforces posting dedup per page.
const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id       INTEGER PRIMARY KEY,
	path     TEXT NOT NULL UNIQUE,
	modified INTEGER NOT NULL,
	pages    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
	doc_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	page   INTEGER NOT NULL,
	text   TEXT NOT NULL,
	PRIMARY KEY (doc_id, page)
);

CREATE TABLE IF NOT EXISTS postings (
	term      TEXT NOT NULL,
	doc_id    INTEGER NOT NULL,
	page      INTEGER NOT NULL,
	positions BLOB NOT NULL,
	PRIMARY KEY (term, doc_id, page)
);

CREATE INDEX IF NOT EXISTS idx_postings_doc ON postings(doc_id);
`

const schemaVersion = "1"

// Store is one corpus's persisted index. Reads go through Snapshot; writes go
// through ReplaceDocument and invalidate the cached snapshot.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	snap   *Snapshot
	closed bool
}

// Create opens (creating if necessary) the store at path and initializes the
// schema. Used for staging builds and first-time creation.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, terrors.IOError(fmt.Sprintf("creating index directory %s", filepath.Dir(path)), err)
	}
	return open(path)
}

// Open opens an existing store, validating its integrity first. A missing or
// unreadable database surfaces as an index-corrupt error so the caller can
// suggest a reload.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, terrors.New(terrors.ErrCodeIndexCorrupt, fmt.Sprintf("index store missing at %s", path), err)
	}
	if err := validateIntegrity(path); err != nil {
		return nil, terrors.New(terrors.ErrCodeIndexCorrupt, fmt.Sprintf("index store unreadable at %s", path), err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, terrors.IOError("opening index store", err)
	}

	// Single connection: SQLite locking is simplest with one writer, and the
	// snapshot model keeps queries off the database anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, terrors.IOError("configuring index store", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, terrors.IOError("initializing index schema", err)
	}
	if _, err := db.Exec(
		`INSERT INTO meta(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, schemaVersion); err != nil {
		_ = db.Close()
		return nil, terrors.IOError("writing schema version", err)
	}

	return &Store{db: db, path: path}, nil
}

// validateIntegrity runs a quick structural check before trusting the file.
func validateIntegrity(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name IN ('documents','pages','postings')`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count != 3 {
		return fmt.Errorf("index tables missing (%d of 3 present)", count)
	}
	return nil
}

// Path returns the on-disk location of this store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Documents returns metadata for all indexed documents keyed by path.
// The builder's incremental update diffs this against the filesystem.
func (s *Store) Documents(ctx context.Context) (map[string]DocumentMeta, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, modified, pages FROM documents`)
	if err != nil {
		return nil, terrors.IOError("listing documents", err)
	}
	defer rows.Close()

	docs := make(map[string]DocumentMeta)
	for rows.Next() {
		var d DocumentMeta
		var modified int64
		if err := rows.Scan(&d.ID, &d.Path, &modified, &d.Pages); err != nil {
			return nil, terrors.IOError("scanning document row", err)
		}
		d.Modified = time.Unix(0, modified)
		docs[d.Path] = d
	}
	return docs, rows.Err()
}

// ReplaceDocument inserts or replaces one document with its pages and
// postings inside a single transaction. This is the single-writer merge step:
// workers tokenize in parallel, but all index mutation funnels through here.
func (s *Store) ReplaceDocument(ctx context.Context, doc DocumentInsert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return terrors.InternalError("store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return terrors.IOError("beginning index transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var docID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE path = ?`, doc.Path).Scan(&docID)
	switch {
	case err == sql.ErrNoRows:
		res, insErr := tx.ExecContext(ctx,
			`INSERT INTO documents(path, modified, pages) VALUES(?, ?, ?)`,
			doc.Path, doc.Modified.UnixNano(), len(doc.Pages))
		if insErr != nil {
			return terrors.IOError(fmt.Sprintf("inserting document %s", doc.Path), insErr)
		}
		docID, insErr = res.LastInsertId()
		if insErr != nil {
			return terrors.IOError("reading document id", insErr)
		}
	case err != nil:
		return terrors.IOError(fmt.Sprintf("looking up document %s", doc.Path), err)
	default:
		// Re-index: drop the document's old pages and postings, keep its id.
		if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE doc_id = ?`, docID); err != nil {
			return terrors.IOError("clearing stale postings", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE doc_id = ?`, docID); err != nil {
			return terrors.IOError("clearing stale pages", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET modified = ?, pages = ? WHERE id = ?`,
			doc.Modified.UnixNano(), len(doc.Pages), docID); err != nil {
			return terrors.IOError("refreshing document metadata", err)
		}
	}

	pageStmt, err := tx.PrepareContext(ctx, `INSERT INTO pages(doc_id, page, text) VALUES(?, ?, ?)`)
	if err != nil {
		return terrors.IOError("preparing page insert", err)
	}
	defer pageStmt.Close()

	postStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO postings(term, doc_id, page, positions) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return terrors.IOError("preparing posting insert", err)
	}
	defer postStmt.Close()

	for _, page := range doc.Pages {
		if _, err := pageStmt.ExecContext(ctx, docID, page.Number, page.Text); err != nil {
			return terrors.IOError(fmt.Sprintf("writing page %d of %s", page.Number, doc.Path), err)
		}
		for term, positions := range page.Terms {
			if _, err := postStmt.ExecContext(ctx, term, docID, page.Number, encodePositions(positions)); err != nil {
				return terrors.IOError(fmt.Sprintf("writing postings for page %d of %s", page.Number, doc.Path), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return terrors.IOError("committing document", err)
	}

	s.snap = nil // invalidate cached snapshot
	return nil
}

// PageText returns the stored text of one page.
func (s *Store) PageText(ctx context.Context, docID int64, page int) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM pages WHERE doc_id = ? AND page = ?`, docID, page).Scan(&text)
	if err == sql.ErrNoRows {
		return "", terrors.IOError(fmt.Sprintf("page %d of document %d not stored", page, docID), err)
	}
	if err != nil {
		return "", terrors.IOError("reading page text", err)
	}
	return text, nil
}

// Snapshot returns an immutable view of the whole index. The snapshot is
// cached until the next write, so concurrent searches share one load.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	if s.snap != nil {
		snap := s.snap
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.snap = snap
	return snap, nil
}

func (s *Store) loadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		docs:     make(map[int64]DocumentMeta),
		postings: make(map[string][]Posting),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, path, modified, pages FROM documents`)
	if err != nil {
		return nil, terrors.IOError("loading documents", err)
	}
	for rows.Next() {
		var d DocumentMeta
		var modified int64
		if err := rows.Scan(&d.ID, &d.Path, &modified, &d.Pages); err != nil {
			rows.Close()
			return nil, terrors.IOError("scanning document row", err)
		}
		d.Modified = time.Unix(0, modified)
		snap.docs[d.ID] = d
		snap.totalPages += d.Pages
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, terrors.IOError("iterating documents", err)
	}
	rows.Close()

	// Ordered read keeps each term's posting list sorted by (doc, page),
	// which the evaluator's merge intersection relies on.
	prows, err := s.db.QueryContext(ctx,
		`SELECT term, doc_id, page, positions FROM postings ORDER BY term, doc_id, page`)
	if err != nil {
		return nil, terrors.IOError("loading postings", err)
	}
	defer prows.Close()

	for prows.Next() {
		var term string
		var p Posting
		var blob []byte
		if err := prows.Scan(&term, &p.DocID, &p.Page, &blob); err != nil {
			return nil, terrors.IOError("scanning posting row", err)
		}
		p.Positions = decodePositions(blob)
		if len(snap.vocab) == 0 || snap.vocab[len(snap.vocab)-1] != term {
			snap.vocab = append(snap.vocab, term)
		}
		snap.postings[term] = append(snap.postings[term], p)
	}
	if err := prows.Err(); err != nil {
		return nil, terrors.IOError("iterating postings", err)
	}

	return snap, nil
}

// StagingPath returns the staging location a full build writes into before
// the atomic swap.
func StagingPath(livePath string) string {
	return livePath + ".staging"
}

// Swap atomically replaces the live store with a completed staging build.
// The staging store must be closed first. On failure the live store is left
// untouched.
func Swap(stagingPath, livePath string) error {
	// Drop WAL droppings of both sides so the renamed file opens clean.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(stagingPath + suffix)
		_ = os.Remove(livePath + suffix)
	}
	if err := os.Rename(stagingPath, livePath); err != nil {
		return terrors.IOError("swapping in new index", err)
	}
	return nil
}
