// Package query parses the search grammar into an AST and evaluates it
// against an index snapshot.
//
// Grammar, loosely: a query is a boolean expression over atoms. A bare word
// is a term; adjacent atoms with no operator form an OR chain; AND binds
// tighter than OR; parentheses group. A quoted string is a phrase, with an
// optional trailing ~N slop; a trailing * on a word or quoted string makes a
// prefix match. Fuzzy matching is a separate mode (ParseFuzzy), not
// composable with the boolean grammar.
package query

import (
	"fmt"
	"strings"
)

// Node is one variant of the query AST. The set of variants is closed; the
// evaluator switches exhaustively over them.
type Node interface {
	fmt.Stringer
	node()
}

// Term matches one normalized term exactly.
type Term struct {
	Text string
}

// Phrase matches consecutive terms with at most Slop total positional drift.
type Phrase struct {
	Terms []string
	Slop  int
}

// Prefix matches every vocabulary term sharing the prefix.
type Prefix struct {
	Text string
}

// Fuzzy matches vocabulary terms within MaxDistance edits.
type Fuzzy struct {
	Text        string
	MaxDistance int
}

// And intersects its children on (document, page).
type And struct {
	Left, Right Node
}

// Or unions its children on (document, page).
type Or struct {
	Left, Right Node
}

func (Term) node()   {}
func (Phrase) node() {}
func (Prefix) node() {}
func (Fuzzy) node()  {}
func (And) node()    {}
func (Or) node()     {}

func (t Term) String() string { return t.Text }

func (p Phrase) String() string {
	s := fmt.Sprintf("%q", strings.Join(p.Terms, " "))
	if p.Slop > 0 {
		s += fmt.Sprintf("~%d", p.Slop)
	}
	return s
}

func (p Prefix) String() string { return p.Text + "*" }

func (f Fuzzy) String() string { return fmt.Sprintf("~%s(%d)", f.Text, f.MaxDistance) }

func (a And) String() string { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }

func (o Or) String() string { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }
