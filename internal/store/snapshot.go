package store

import (
	"sort"
	"strings"

	"github.com/tome-search/tome/internal/token"
)

// Snapshot is an immutable, queryable view of the index at a point in time.
// A search call resolves one snapshot up front and uses it throughout, so a
// concurrent rebuild can never change results mid-query.
type Snapshot struct {
	docs       map[int64]DocumentMeta
	vocab      []string // sorted
	postings   map[string][]Posting
	totalPages int
}

// FuzzyTerm is a vocabulary term matched by approximate lookup.
type FuzzyTerm struct {
	Term     string
	Distance int
}

// Postings returns the posting list for an exact (already normalized) term,
// sorted by (document id, page). Nil when the term is not in the vocabulary.
func (sn *Snapshot) Postings(term string) []Posting {
	return sn.postings[term]
}

// TermsWithPrefix returns all vocabulary terms sharing the given prefix.
func (sn *Snapshot) TermsWithPrefix(prefix string) []string {
	start := sort.SearchStrings(sn.vocab, prefix)
	var terms []string
	for i := start; i < len(sn.vocab); i++ {
		if !strings.HasPrefix(sn.vocab[i], prefix) {
			break
		}
		terms = append(terms, sn.vocab[i])
	}
	return terms
}

// TermsWithin returns vocabulary terms whose edit distance to word is at
// most max, with their distances.
func (sn *Snapshot) TermsWithin(word string, max int) []FuzzyTerm {
	var terms []FuzzyTerm
	for _, t := range sn.vocab {
		if d, ok := token.DistanceWithin(word, t, max); ok {
			terms = append(terms, FuzzyTerm{Term: t, Distance: d})
		}
	}
	return terms
}

// Document returns metadata for a document id.
func (sn *Snapshot) Document(id int64) (DocumentMeta, bool) {
	d, ok := sn.docs[id]
	return d, ok
}

// Documents returns all documents sorted by id.
func (sn *Snapshot) Documents() []DocumentMeta {
	docs := make([]DocumentMeta, 0, len(sn.docs))
	for _, d := range sn.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// DocumentCount returns the number of indexed documents.
func (sn *Snapshot) DocumentCount() int {
	return len(sn.docs)
}

// PageCount returns the number of indexed pages.
func (sn *Snapshot) PageCount() int {
	return sn.totalPages
}

// TermCount returns the vocabulary size.
func (sn *Snapshot) TermCount() int {
	return len(sn.vocab)
}
