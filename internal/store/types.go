// Package store persists one corpus's inverted index in a SQLite database
// and serves queries from immutable in-memory snapshots.
//
// Logical contents per corpus: document metadata (path, id, modification
// time), page text (kept for preview generation), and postings
// (term → ordered (document, page, positions)). The on-disk format is private
// to this package.
package store

import (
	"encoding/binary"
	"time"
)

// DocumentMeta describes one indexed document.
type DocumentMeta struct {
	ID       int64
	Path     string
	Modified time.Time
	Pages    int
}

// Posting is one term's occurrence list on a single (document, page).
// Positions are 0-based token ordinals within the page, sorted ascending.
type Posting struct {
	DocID     int64
	Page      int
	Positions []uint32
}

// PageTerms maps a term to its positions within one page.
type PageTerms map[string][]uint32

// PageInsert is one page of a document being written to the store.
type PageInsert struct {
	Number int
	Text   string
	Terms  PageTerms
}

// DocumentInsert is a fully tokenized document ready for the single-writer
// merge step.
type DocumentInsert struct {
	Path     string
	Modified time.Time
	Pages    []PageInsert
}

// encodePositions packs a position list as little-endian uint32s.
func encodePositions(positions []uint32) []byte {
	buf := make([]byte, 4*len(positions))
	for i, p := range positions {
		binary.LittleEndian.PutUint32(buf[4*i:], p)
	}
	return buf
}

// decodePositions unpacks a position list; trailing partial words are
// treated as corruption and dropped.
func decodePositions(buf []byte) []uint32 {
	n := len(buf) / 4
	positions := make([]uint32, n)
	for i := 0; i < n; i++ {
		positions[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return positions
}
