package backend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// expr is a compiled grammar expression. Expressions form a tree built
// from a definition string; the parser evaluates them PEG-style (ordered
// choice, greedy repetition, backtracking).
type expr interface {
	exprNode()
}

// seqExpr matches its items in order.
type seqExpr struct {
	items []expr
}

// altExpr tries alternatives in declaration order, committing to the
// first that matches.
type altExpr struct {
	alts []expr
}

// repExpr matches its sub-expression between min and max times.
// max < 0 means unbounded. `x?` is {0,1}, `x*` {0,-}, `x+` {1,-}.
type repExpr struct {
	sub expr
	min int
	max int
}

// refExpr references a rule or terminal by name. Resolution happens at
// compile time; evaluation dispatches on which table the name landed in.
type refExpr struct {
	name string
}

// litExpr matches an anonymous inline literal (e.g. "(" inside a rule).
// Anonymous literals are filtered from the parse tree.
type litExpr struct {
	text string
}

// reExpr matches an anonymous inline regular expression.
type reExpr struct {
	pattern *regexp.Regexp
	source  string
}

func (*seqExpr) exprNode() {}
func (*altExpr) exprNode() {}
func (*repExpr) exprNode() {}
func (*refExpr) exprNode() {}
func (*litExpr) exprNode() {}
func (*reExpr) exprNode()  {}

// ---------------------------------------------------------------------------
// Definition-expression lexer
// ---------------------------------------------------------------------------

// defToken is one token of a definition expression.
type defToken struct {
	kind string
	text string
}

// Token kinds for the definition lexer.
const (
	tokName   = "NAME"
	tokString = "STRING"
	tokRegex  = "REGEX"
	tokLParen = "LPAREN"
	tokRParen = "RPAREN"
	tokPipe   = "PIPE"
	tokQMark  = "QMARK"
	tokStar   = "STAR"
	tokPlus   = "PLUS"
)

// defTokenSpecs is the ordered token table for the grammar notation.
// Comments are consumed here so expressions may carry trailing notes.
var defTokenSpecs = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"WS", regexp.MustCompile(`^[ \t]+`)},
	{"COMMENT", regexp.MustCompile(`^(//|#)[^\n]*`)},
	{tokString, regexp.MustCompile(`^"(?:[^"\\]|\\.)*"`)},
	{tokRegex, regexp.MustCompile(`^/(?:[^/\\]|\\.)*/`)},
	{tokName, regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*`)},
	{tokLParen, regexp.MustCompile(`^\(`)},
	{tokRParen, regexp.MustCompile(`^\)`)},
	{tokPipe, regexp.MustCompile(`^\|`)},
	{tokQMark, regexp.MustCompile(`^\?`)},
	{tokStar, regexp.MustCompile(`^\*`)},
	{tokPlus, regexp.MustCompile(`^\+`)},
}

// lexDefinition tokenizes one definition expression.
func lexDefinition(text string) ([]defToken, error) {
	var tokens []defToken

	for len(text) > 0 {
		matched := false
		for _, spec := range defTokenSpecs {
			loc := spec.pattern.FindStringIndex(text)
			if loc == nil {
				continue
			}
			matched = true
			if spec.kind != "WS" && spec.kind != "COMMENT" {
				tokens = append(tokens, defToken{kind: spec.kind, text: text[:loc[1]]})
			}
			text = text[loc[1]:]
			break
		}
		if !matched {
			return nil, fmt.Errorf("unexpected character %q", text[0])
		}
	}

	return tokens, nil
}

// ---------------------------------------------------------------------------
// Definition-expression parser
// ---------------------------------------------------------------------------

// defParser parses a token stream into an expr tree.
//
//	alternation: sequence ("|" sequence)*
//	sequence:    item+
//	item:        atom ("?" | "*" | "+")*
//	atom:        NAME | STRING | REGEX | "(" alternation ")"
type defParser struct {
	tokens []defToken
	pos    int
}

// parseDefinition compiles a definition string into an expression tree.
// The name parameter identifies the rule or terminal for error reporting.
func parseDefinition(name, definition string) (expr, error) {
	tokens, err := lexDefinition(definition)
	if err != nil {
		return nil, &GrammarError{
			Name:    name,
			Message: err.Error(),
			Code:    ErrBadDefinition,
		}
	}
	if len(tokens) == 0 {
		return nil, &GrammarError{
			Name:    name,
			Message: "empty definition",
			Code:    ErrBadDefinition,
		}
	}

	p := &defParser{tokens: tokens}
	e, err := p.alternation(name)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, &GrammarError{
			Name:    name,
			Message: fmt.Sprintf("unexpected %q after expression", p.tokens[p.pos].text),
			Code:    ErrBadDefinition,
		}
	}
	return e, nil
}

func (p *defParser) peek() (defToken, bool) {
	if p.pos >= len(p.tokens) {
		return defToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *defParser) alternation(name string) (expr, error) {
	first, err := p.sequence(name)
	if err != nil {
		return nil, err
	}

	alts := []expr{first}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokPipe {
			break
		}
		p.pos++
		next, err := p.sequence(name)
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}

	if len(alts) == 1 {
		return first, nil
	}
	return &altExpr{alts: alts}, nil
}

func (p *defParser) sequence(name string) (expr, error) {
	var items []expr
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokPipe || tok.kind == tokRParen {
			break
		}
		item, err := p.item(name)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, &GrammarError{
			Name:    name,
			Message: "empty alternative in definition",
			Code:    ErrBadDefinition,
		}
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &seqExpr{items: items}, nil
}

func (p *defParser) item(name string) (expr, error) {
	e, err := p.atom(name)
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}
		switch tok.kind {
		case tokQMark:
			p.pos++
			e = &repExpr{sub: e, min: 0, max: 1}
		case tokStar:
			p.pos++
			e = &repExpr{sub: e, min: 0, max: -1}
		case tokPlus:
			p.pos++
			e = &repExpr{sub: e, min: 1, max: -1}
		default:
			return e, nil
		}
	}
	return e, nil
}

func (p *defParser) atom(name string) (expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, &GrammarError{
			Name:    name,
			Message: "unexpected end of definition",
			Code:    ErrBadDefinition,
		}
	}

	switch tok.kind {
	case tokName:
		p.pos++
		return &refExpr{name: tok.text}, nil

	case tokString:
		p.pos++
		text, err := unquoteLiteral(tok.text)
		if err != nil {
			return nil, &GrammarError{
				Name:    name,
				Message: err.Error(),
				Code:    ErrBadDefinition,
			}
		}
		return &litExpr{text: text}, nil

	case tokRegex:
		p.pos++
		source := tok.text[1 : len(tok.text)-1]
		re, err := regexp.Compile("^(?:" + source + ")")
		if err != nil {
			return nil, &GrammarError{
				Name:    name,
				Message: fmt.Sprintf("invalid pattern %s", tok.text),
				Code:    ErrInvalidPattern,
				Err:     err,
			}
		}
		return &reExpr{pattern: re, source: source}, nil

	case tokLParen:
		p.pos++
		inner, err := p.alternation(name)
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, &GrammarError{
				Name:    name,
				Message: "unterminated group",
				Code:    ErrBadDefinition,
			}
		}
		p.pos++
		return inner, nil

	default:
		return nil, &GrammarError{
			Name:    name,
			Message: fmt.Sprintf("unexpected %q in definition", tok.text),
			Code:    ErrBadDefinition,
		}
	}
}

// unquoteLiteral decodes a double-quoted grammar literal.
func unquoteLiteral(quoted string) (string, error) {
	s, err := strconv.Unquote(quoted)
	if err != nil {
		// strconv.Unquote rejects some sequences the notation allows
		// (e.g. "\d"); fall back to dropping the backslash.
		body := quoted[1 : len(quoted)-1]
		var sb strings.Builder
		for i := 0; i < len(body); i++ {
			if body[i] == '\\' && i+1 < len(body) {
				i++
			}
			sb.WriteByte(body[i])
		}
		return sb.String(), nil
	}
	return s, nil
}
