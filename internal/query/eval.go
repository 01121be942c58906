package query

import (
	"sort"

	"github.com/tome-search/tome/internal/store"
)

// Hit is one matching page with its relevance score and the evidence behind
// the match, kept for preview generation.
type Hit struct {
	DocID     int64
	Page      int
	Score     float64
	Positions []uint32 // token ordinals on the page, sorted ascending
	Terms     []string // vocabulary terms that matched, sorted

	// Fuzzy evidence. FuzzyTerms holds the query words of the fuzzy atoms
	// that contributed to this hit; MaxDistance is the largest edit budget
	// among them. Both are zero for exact matches.
	FuzzyTerms  []string
	MaxDistance int
}

// Result is a scored, paginated page of hits. Total counts all matches
// before pagination.
type Result struct {
	Hits  []Hit
	Total int
}

type pageKey struct {
	doc  int64
	page int
}

type candidate struct {
	score       float64
	positions   map[uint32]struct{}
	terms       map[string]struct{}
	fuzzyTerms  map[string]struct{}
	maxDistance int
}

func newCandidate() *candidate {
	return &candidate{
		positions: make(map[uint32]struct{}),
		terms:     make(map[string]struct{}),
	}
}

func (c *candidate) absorb(other *candidate) {
	c.score += other.score
	for p := range other.positions {
		c.positions[p] = struct{}{}
	}
	for t := range other.terms {
		c.terms[t] = struct{}{}
	}
	for t := range other.fuzzyTerms {
		if c.fuzzyTerms == nil {
			c.fuzzyTerms = make(map[string]struct{})
		}
		c.fuzzyTerms[t] = struct{}{}
	}
	if other.maxDistance > c.maxDistance {
		c.maxDistance = other.maxDistance
	}
}

// Evaluate runs the query against a snapshot and returns hits sorted by
// score descending, ties broken by (document, page) ascending. Pagination is
// applied after the full sort; Total reports the pre-pagination count.
func Evaluate(n Node, snap *store.Snapshot, offset, limit int) (Result, error) {
	cands := eval(n, snap)

	hits := make([]Hit, 0, len(cands))
	for key, c := range cands {
		hits = append(hits, Hit{
			DocID:       key.doc,
			Page:        key.page,
			Score:       c.score,
			Positions:   sortedPositions(c.positions),
			Terms:       sortedTerms(c.terms),
			FuzzyTerms:  sortedTerms(c.fuzzyTerms),
			MaxDistance: c.maxDistance,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].DocID != hits[j].DocID {
			return hits[i].DocID < hits[j].DocID
		}
		return hits[i].Page < hits[j].Page
	})

	total := len(hits)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Result{Hits: nil, Total: total}, nil
	}
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	return Result{Hits: hits, Total: total}, nil
}

func eval(n Node, snap *store.Snapshot) map[pageKey]*candidate {
	switch q := n.(type) {
	case Term:
		return evalTerm(q.Text, snap)
	case Prefix:
		return evalPrefix(q, snap)
	case Fuzzy:
		return evalFuzzy(q, snap)
	case Phrase:
		return evalPhrase(q, snap)
	case And:
		return intersect(eval(q.Left, snap), eval(q.Right, snap))
	case Or:
		return union(eval(q.Left, snap), eval(q.Right, snap))
	default:
		return nil
	}
}

func evalTerm(term string, snap *store.Snapshot) map[pageKey]*candidate {
	out := make(map[pageKey]*candidate)
	for _, p := range snap.Postings(term) {
		c := newCandidate()
		c.score = float64(len(p.Positions))
		for _, pos := range p.Positions {
			c.positions[pos] = struct{}{}
		}
		c.terms[term] = struct{}{}
		out[pageKey{p.DocID, p.Page}] = c
	}
	return out
}

func evalPrefix(q Prefix, snap *store.Snapshot) map[pageKey]*candidate {
	out := make(map[pageKey]*candidate)
	for _, term := range snap.TermsWithPrefix(q.Text) {
		for key, c := range evalTerm(term, snap) {
			if have, ok := out[key]; ok {
				have.absorb(c)
			} else {
				out[key] = c
			}
		}
	}
	return out
}

func evalFuzzy(q Fuzzy, snap *store.Snapshot) map[pageKey]*candidate {
	out := make(map[pageKey]*candidate)
	for _, ft := range snap.TermsWithin(q.Text, q.MaxDistance) {
		// Closer terms count more; an exact vocabulary match keeps full
		// weight, each extra edit halves and thirds it down.
		weight := 1.0 / float64(1+ft.Distance)
		for _, p := range snap.Postings(ft.Term) {
			key := pageKey{p.DocID, p.Page}
			c, ok := out[key]
			if !ok {
				c = newCandidate()
				out[key] = c
			}
			c.score += weight * float64(len(p.Positions))
			for _, pos := range p.Positions {
				c.positions[pos] = struct{}{}
			}
			c.terms[ft.Term] = struct{}{}
			if c.fuzzyTerms == nil {
				c.fuzzyTerms = make(map[string]struct{})
			}
			c.fuzzyTerms[q.Text] = struct{}{}
			if q.MaxDistance > c.maxDistance {
				c.maxDistance = q.MaxDistance
			}
		}
	}
	return out
}

func evalPhrase(q Phrase, snap *store.Snapshot) map[pageKey]*candidate {
	// Per-page position lists for every phrase term. A page missing any
	// term cannot match.
	perTerm := make([]map[pageKey][]uint32, len(q.Terms))
	for i, term := range q.Terms {
		perTerm[i] = make(map[pageKey][]uint32)
		for _, p := range snap.Postings(term) {
			perTerm[i][pageKey{p.DocID, p.Page}] = p.Positions
		}
	}

	out := make(map[pageKey]*candidate)
	for key, first := range perTerm[0] {
		lists := make([][]uint32, len(q.Terms))
		lists[0] = first
		ok := true
		for i := 1; i < len(perTerm); i++ {
			lists[i], ok = perTerm[i][key]
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		starts := phraseStarts(lists, q.Slop)
		if len(starts) == 0 {
			continue
		}
		c := newCandidate()
		c.score = float64(len(starts))
		for _, s := range starts {
			c.positions[s] = struct{}{}
		}
		for _, t := range q.Terms {
			c.terms[t] = struct{}{}
		}
		out[key] = c
	}
	return out
}

// phraseStarts returns the positions of the first term where the remaining
// terms follow in order, spending at most slop total positions of slack
// across all the gaps.
func phraseStarts(lists [][]uint32, slop int) []uint32 {
	var starts []uint32
	var follow func(prev uint32, i, budget int) bool
	follow = func(prev uint32, i, budget int) bool {
		if i == len(lists) {
			return true
		}
		for _, pos := range lists[i] {
			if pos <= prev {
				continue
			}
			gap := int(pos-prev) - 1
			if gap > budget {
				break // positions are sorted, later ones only widen the gap
			}
			if follow(pos, i+1, budget-gap) {
				return true
			}
		}
		return false
	}
	for _, start := range lists[0] {
		if follow(start, 1, slop) {
			starts = append(starts, start)
		}
	}
	return starts
}

func intersect(a, b map[pageKey]*candidate) map[pageKey]*candidate {
	out := make(map[pageKey]*candidate)
	for key, ca := range a {
		cb, ok := b[key]
		if !ok {
			continue
		}
		ca.absorb(cb)
		out[key] = ca
	}
	return out
}

func union(a, b map[pageKey]*candidate) map[pageKey]*candidate {
	for key, cb := range b {
		if ca, ok := a[key]; ok {
			ca.absorb(cb)
		} else {
			a[key] = cb
		}
	}
	return a
}

func sortedPositions(set map[uint32]struct{}) []uint32 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedTerms(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
