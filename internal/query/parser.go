package query

import (
	"strconv"
	"strings"
	"unicode"

	terrors "github.com/tome-search/tome/internal/errors"
	"github.com/tome-search/tome/internal/token"
)

type lexKind int

const (
	lexWord lexKind = iota
	lexQuoted
	lexAnd
	lexOr
	lexLParen
	lexRParen
)

type lexToken struct {
	kind   lexKind
	text   string // word or quoted content, without quotes
	raw    string // original fragment, for error messages
	prefix bool   // trailing *
	slop   int    // ~N on a quoted string
}

func lex(input string) ([]lexToken, error) {
	var toks []lexToken
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, lexToken{kind: lexLParen, raw: "("})
			i++
		case r == ')':
			toks = append(toks, lexToken{kind: lexRParen, raw: ")"})
			i++
		case r == '"':
			tok, next, err := lexQuotedAt(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case r == '*' || r == '~':
			return nil, terrors.QueryParse(string(r), "operator must follow a word or quoted string")
		default:
			tok, next, err := lexWordAt(runes, i)
			if err != nil {
				return nil, err
			}
			switch strings.ToUpper(tok.text) {
			case "AND":
				tok = lexToken{kind: lexAnd, raw: tok.raw}
			case "OR":
				tok = lexToken{kind: lexOr, raw: tok.raw}
			}
			toks = append(toks, tok)
			i = next
		}
	}
	return toks, nil
}

func lexQuotedAt(runes []rune, start int) (lexToken, int, error) {
	i := start + 1
	for i < len(runes) && runes[i] != '"' {
		i++
	}
	if i >= len(runes) {
		return lexToken{}, 0, terrors.QueryParse(string(runes[start:]), "unterminated quoted string")
	}
	tok := lexToken{kind: lexQuoted, text: string(runes[start+1 : i])}
	i++ // closing quote
	switch {
	case i < len(runes) && runes[i] == '*':
		tok.prefix = true
		i++
	case i < len(runes) && runes[i] == '~':
		i++
		j := i
		for j < len(runes) && unicode.IsDigit(runes[j]) {
			j++
		}
		if j == i {
			return lexToken{}, 0, terrors.QueryParse(string(runes[start:min(j+1, len(runes))]), "slop operator ~ requires a number")
		}
		n, err := strconv.Atoi(string(runes[i:j]))
		if err != nil {
			return lexToken{}, 0, terrors.QueryParse(string(runes[i:j]), "invalid slop value")
		}
		tok.slop = n
		i = j
	}
	tok.raw = string(runes[start:i])
	return tok, i, nil
}

func lexWordAt(runes []rune, start int) (lexToken, int, error) {
	i := start
	for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' && runes[i] != '"' && runes[i] != '*' && runes[i] != '~' {
		i++
	}
	tok := lexToken{kind: lexWord, text: string(runes[start:i])}
	if i < len(runes) && runes[i] == '~' {
		return lexToken{}, 0, terrors.QueryParse(string(runes[start:i+1]), "slop applies only to quoted phrases")
	}
	if i < len(runes) && runes[i] == '*' {
		tok.prefix = true
		i++
		if i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' {
			return lexToken{}, 0, terrors.QueryParse(string(runes[start:i+1]), "* is only valid at the end of a word")
		}
	}
	tok.raw = string(runes[start:i])
	return tok, i, nil
}

type parser struct {
	toks []lexToken
	pos  int
}

// Parse builds the AST for a boolean query. Adjacent atoms without an
// explicit operator are OR-ed; AND binds tighter than OR.
func Parse(input string) (Node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, terrors.QueryParse(input, "empty query")
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, terrors.QueryParse(p.toks[p.pos].raw, "unexpected token")
	}
	return n, nil
}

func (p *parser) peek() (lexToken, bool) {
	if p.pos >= len(p.toks) {
		return lexToken{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok {
			return left, nil
		}
		switch tok.kind {
		case lexOr:
			p.pos++
		case lexWord, lexQuoted, lexLParen:
			// implicit OR between adjacent atoms
		default:
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != lexAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
}

func (p *parser) parseAtom() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, terrors.QueryParse("", "expected a term, phrase, or group")
	}
	p.pos++
	switch tok.kind {
	case lexLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		next, ok := p.peek()
		if !ok || next.kind != lexRParen {
			return nil, terrors.QueryParse(tok.raw, "unclosed parenthesis")
		}
		p.pos++
		return n, nil
	case lexQuoted:
		if tok.prefix {
			text := token.Normalize(strings.TrimSpace(tok.text))
			if text == "" {
				return nil, terrors.QueryParse(tok.raw, "empty prefix")
			}
			return Prefix{Text: text}, nil
		}
		terms := token.Terms(tok.text)
		if len(terms) == 0 {
			return nil, terrors.QueryParse(tok.raw, "phrase contains no searchable terms")
		}
		return Phrase{Terms: terms, Slop: tok.slop}, nil
	case lexWord:
		terms := token.Terms(tok.text)
		if len(terms) == 0 {
			return nil, terrors.QueryParse(tok.raw, "word contains no searchable characters")
		}
		if tok.prefix {
			if len(terms) != 1 {
				return nil, terrors.QueryParse(tok.raw, "prefix must be a single word")
			}
			return Prefix{Text: terms[0]}, nil
		}
		if len(terms) > 1 {
			// "foo-bar" tokenizes to two terms; treat as an exact phrase.
			return Phrase{Terms: terms}, nil
		}
		return Term{Text: terms[0]}, nil
	default:
		return nil, terrors.QueryParse(tok.raw, "operator needs an operand")
	}
}

// ParseFuzzy builds the AST for fuzzy mode: whitespace-separated words, each
// matched within maxDistance edits, combined with OR. Boolean operators and
// phrase, prefix, or slop syntax are not available in this mode.
func ParseFuzzy(input string, maxDistance int) (Node, error) {
	if i := strings.IndexAny(input, `"()*~`); i >= 0 {
		return nil, terrors.QueryUnsupported("fuzzy queries cannot use phrase, prefix, or grouping syntax")
	}
	var n Node
	for _, field := range strings.Fields(input) {
		switch strings.ToUpper(field) {
		case "AND", "OR":
			return nil, terrors.QueryUnsupported("boolean operators are not available in fuzzy queries")
		}
		for _, term := range token.Terms(field) {
			f := Fuzzy{Text: term, MaxDistance: maxDistance}
			if n == nil {
				n = f
			} else {
				n = Or{Left: n, Right: f}
			}
		}
	}
	if n == nil {
		return nil, terrors.QueryParse(input, "empty query")
	}
	return n, nil
}
