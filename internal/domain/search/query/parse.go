package query

import (
	"strings"
	"unicode"

	"github.com/courtlens/docketdex/internal/domain"
)

// Parse parses a q string. Malformed syntax fails hard with a
// domain.ErrBadQuery wrapper; it is never relaxed to match-all.
func Parse(s string) (*Query, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return &Query{}, nil
	}

	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, domain.NewBadQuery("unexpected token", p.peek().val)
	}
	return &Query{Root: root}, nil
}

// --- lexer ---

type tokKind int

const (
	tokTerm tokKind = iota
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokField // "name:" prefix, val holds the name
	tokRange // val holds "lo TO hi" raw body
)

type token struct {
	kind tokKind
	val  string
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	n := len(s)

	for i < n {
		c := s[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++

		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++

		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++

		case c == '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, domain.NewBadQuery("unbalanced quote", s[i:])
			}
			toks = append(toks, token{tokPhrase, s[i+1 : i+1+end]})
			i += end + 2

		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, domain.NewBadQuery("unbalanced bracket", s[i:])
			}
			toks = append(toks, token{tokRange, s[i+1 : i+end]})
			i += end + 1

		case c == ']':
			return nil, domain.NewBadQuery("unbalanced bracket", s[i:])

		default:
			start := i
			for i < n && !strings.ContainsRune(` ()"[]`, rune(s[i])) {
				i++
			}
			word := s[start:i]
			switch word {
			case "AND":
				toks = append(toks, token{tokAnd, word})
			case "OR":
				toks = append(toks, token{tokOr, word})
			case "NOT":
				toks = append(toks, token{tokNot, word})
			default:
				if name, rest, ok := splitFielded(word); ok {
					toks = append(toks, token{tokField, name})
					if rest != "" {
						toks = append(toks, token{tokTerm, rest})
					}
					continue
				}
				toks = append(toks, token{tokTerm, word})
			}
		}
	}
	return toks, nil
}

// splitFielded splits "field:value" or "field:" into name and remainder.
func splitFielded(word string) (name, rest string, ok bool) {
	idx := strings.IndexByte(word, ':')
	if idx <= 0 {
		return "", "", false
	}
	name = word[:idx]
	for _, r := range name {
		if !unicode.IsLower(r) && r != '_' {
			return "", "", false
		}
	}
	return name, word[idx+1:], true
}

// --- parser ---

type parser struct {
	toks []token
	pos  int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }
func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// parseOr := parseAnd (OR parseAnd)*
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Node{left}
	for !p.atEnd() && p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &Bool{Op: OpOr, Children: children}, nil
}

// parseAnd := unary (AND? unary)*  -- adjacency is implicit AND
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []Node{left}
	for !p.atEnd() {
		k := p.peek().kind
		if k == tokOr || k == tokRParen {
			break
		}
		if k == tokAnd {
			p.advance()
			if p.atEnd() {
				return nil, domain.NewBadQuery("dangling operator", "AND")
			}
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &Bool{Op: OpAnd, Children: children}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.atEnd() {
		return nil, domain.NewBadQuery("unexpected end of query", "")
	}
	if p.peek().kind == tokNot {
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			if p.atEnd() {
				return nil, domain.NewBadQuery("dangling operator", "NOT")
			}
			return nil, err
		}
		return &Not{Child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	if p.atEnd() {
		return nil, domain.NewBadQuery("unexpected end of query", "")
	}

	t := p.advance()
	switch t.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.atEnd() || p.peek().kind != tokRParen {
			return nil, domain.NewBadQuery("unbalanced parenthesis", "(")
		}
		p.advance()
		return inner, nil

	case tokTerm:
		return &Term{Text: t.val}, nil

	case tokPhrase:
		return &Term{Text: t.val, Phrase: true}, nil

	case tokField:
		return p.parseFieldValue(t.val)

	case tokAnd, tokOr:
		return nil, domain.NewBadQuery("dangling operator", t.val)

	case tokRange:
		return nil, domain.NewBadQuery("range requires a field", "["+t.val+"]")

	default:
		return nil, domain.NewBadQuery("unexpected token", t.val)
	}
}

// parseFieldValue handles field:value, field:"phrase", field:(v v) and
// field:[a TO b].
func (p *parser) parseFieldValue(name string) (Node, error) {
	fi, ok := LookupField(name)
	if !ok {
		return nil, domain.NewBadQuery("unknown field", name)
	}
	if p.atEnd() {
		return nil, domain.NewBadQuery("field without value", name)
	}

	t := p.advance()
	switch t.kind {
	case tokTerm:
		return &Term{Text: t.val, Field: name}, nil

	case tokPhrase:
		return &Term{Text: t.val, Phrase: true, Field: name}, nil

	case tokRange:
		if fi.Kind != KindNumeric {
			return nil, domain.NewBadQuery("range not supported for field", name)
		}
		lo, hi, err := parseRangeBody(t.val)
		if err != nil {
			return nil, err
		}
		return &Range{Field: name, Lo: lo, Hi: hi}, nil

	case tokLParen:
		var children []Node
		for !p.atEnd() && p.peek().kind != tokRParen {
			v := p.advance()
			if v.kind != tokTerm && v.kind != tokPhrase {
				return nil, domain.NewBadQuery("unexpected token in field group", v.val)
			}
			children = append(children, &Term{Text: v.val, Phrase: v.kind == tokPhrase, Field: name})
		}
		if p.atEnd() {
			return nil, domain.NewBadQuery("unbalanced parenthesis", name+":(")
		}
		p.advance()
		if len(children) == 0 {
			return nil, domain.NewBadQuery("empty field group", name)
		}
		if len(children) == 1 {
			return children[0], nil
		}
		return &Bool{Op: OpAnd, Children: children}, nil

	default:
		return nil, domain.NewBadQuery("field without value", name)
	}
}

func parseRangeBody(body string) (lo, hi string, err error) {
	parts := strings.Fields(body)
	if len(parts) != 3 || parts[1] != "TO" {
		return "", "", domain.NewBadQuery("malformed range", body)
	}
	return parts[0], parts[2], nil
}
