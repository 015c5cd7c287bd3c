package backend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/verba/ast"
)

// Node is one element of a parse tree: either a Tree (matched rule) or a
// Token (matched terminal).
type Node interface {
	node()
}

// Token is a matched terminal.
type Token struct {
	Name  string // terminal name
	Value string // matched source text
	Pos   int    // byte offset within the statement
}

// Tree is a matched rule and its children in match order. Anonymous
// literals are filtered out, so children hold only named terminals and
// nested rules.
type Tree struct {
	Rule     string
	Children []Node
}

func (*Token) node() {}
func (*Tree) node()  {}

// String renders the tree in indented form, one node per line.
func (t *Tree) String() string {
	var sb strings.Builder
	writeTree(&sb, t, 0)
	return sb.String()
}

func writeTree(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case *Tree:
		fmt.Fprintf(sb, "%s%s\n", indent, n.Rule)
		for _, c := range n.Children {
			writeTree(sb, c, depth+1)
		}
	case *Token:
		fmt.Fprintf(sb, "%s%s %q\n", indent, n.Name, n.Value)
	}
}

// terminal is a compiled terminal: its whole definition reduced to one
// anchored regular expression.
type terminal struct {
	name    string
	pattern *regexp.Regexp
}

// Parser executes a compiled grammar against DSL source text. Parsers
// are immutable after construction and safe for concurrent use.
type Parser struct {
	start     string
	rules     map[string]expr
	terminals map[string]*terminal
	ignored   []*terminal
}

// newParser compiles collected definitions into an executable parser.
// The first rule becomes the start rule.
func newParser(rules, terminals []definition, ignored []string) (*Parser, error) {
	p := &Parser{
		start:     rules[0].name,
		rules:     make(map[string]expr, len(rules)),
		terminals: make(map[string]*terminal, len(terminals)),
	}

	termExprs := make(map[string]expr, len(terminals))
	for _, t := range terminals {
		e, err := parseDefinition(t.name, t.text)
		if err != nil {
			return nil, err
		}
		termExprs[t.name] = e
	}

	// Reduce each terminal to a single anchored regexp. Terminals may
	// reference other terminals; cycles are rejected.
	rc := &regexCompiler{exprs: termExprs, sources: map[string]string{}, visiting: map[string]bool{}}
	for _, t := range terminals {
		source, err := rc.terminalSource(t.name)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("^(?:" + source + ")")
		if err != nil {
			return nil, &GrammarError{
				Name:    t.name,
				Message: "pattern does not compile",
				Code:    ErrInvalidPattern,
				Err:     err,
			}
		}
		p.terminals[t.name] = &terminal{name: t.name, pattern: re}
	}

	for _, r := range rules {
		e, err := parseDefinition(r.name, r.text)
		if err != nil {
			return nil, err
		}
		p.rules[r.name] = e
	}
	for _, r := range rules {
		if err := p.checkRefs(r.name, p.rules[r.name]); err != nil {
			return nil, err
		}
	}

	for _, name := range ignored {
		t, ok := p.terminals[name]
		if !ok {
			return nil, &GrammarError{
				Name:    name,
				Message: "%ignore names an undefined terminal",
				Code:    ErrUnresolvedRef,
			}
		}
		p.ignored = append(p.ignored, t)
	}

	return p, nil
}

// checkRefs verifies every reference in a rule body resolves to a
// defined rule or terminal.
func (p *Parser) checkRefs(rule string, e expr) error {
	switch e := e.(type) {
	case *refExpr:
		if _, ok := p.terminals[e.name]; ok {
			return nil
		}
		if _, ok := p.rules[e.name]; !ok {
			return &GrammarError{
				Name:    rule,
				Message: fmt.Sprintf("references undefined name %q", e.name),
				Code:    ErrUnresolvedRef,
			}
		}
	case *seqExpr:
		for _, item := range e.items {
			if err := p.checkRefs(rule, item); err != nil {
				return err
			}
		}
	case *altExpr:
		for _, alt := range e.alts {
			if err := p.checkRefs(rule, alt); err != nil {
				return err
			}
		}
	case *repExpr:
		return p.checkRefs(rule, e.sub)
	}
	return nil
}

// regexCompiler reduces terminal expression trees to regexp source.
type regexCompiler struct {
	exprs    map[string]expr
	sources  map[string]string
	visiting map[string]bool
}

func (rc *regexCompiler) terminalSource(name string) (string, error) {
	if src, ok := rc.sources[name]; ok {
		return src, nil
	}
	if rc.visiting[name] {
		return "", &GrammarError{
			Name:    name,
			Message: "terminal definition is cyclic",
			Code:    ErrRefCycle,
		}
	}
	rc.visiting[name] = true
	defer delete(rc.visiting, name)

	src, err := rc.exprSource(name, rc.exprs[name])
	if err != nil {
		return "", err
	}
	rc.sources[name] = src
	return src, nil
}

func (rc *regexCompiler) exprSource(name string, e expr) (string, error) {
	switch e := e.(type) {
	case *litExpr:
		return regexp.QuoteMeta(e.text), nil
	case *reExpr:
		return "(?:" + e.source + ")", nil
	case *refExpr:
		if _, ok := rc.exprs[e.name]; !ok {
			return "", &GrammarError{
				Name:    name,
				Message: fmt.Sprintf("references undefined terminal %q", e.name),
				Code:    ErrUnresolvedRef,
			}
		}
		src, err := rc.terminalSource(e.name)
		if err != nil {
			return "", err
		}
		return "(?:" + src + ")", nil
	case *seqExpr:
		var sb strings.Builder
		for _, item := range e.items {
			src, err := rc.exprSource(name, item)
			if err != nil {
				return "", err
			}
			sb.WriteString(src)
		}
		return sb.String(), nil
	case *altExpr:
		parts := make([]string, len(e.alts))
		for i, alt := range e.alts {
			src, err := rc.exprSource(name, alt)
			if err != nil {
				return "", err
			}
			parts[i] = src
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil
	case *repExpr:
		src, err := rc.exprSource(name, e.sub)
		if err != nil {
			return "", err
		}
		switch {
		case e.min == 0 && e.max == 1:
			return "(?:" + src + ")?", nil
		case e.min == 0 && e.max < 0:
			return "(?:" + src + ")*", nil
		case e.min == 1 && e.max < 0:
			return "(?:" + src + ")+", nil
		default:
			return fmt.Sprintf("(?:%s){%d,%d}", src, e.min, e.max), nil
		}
	default:
		return "", &GrammarError{
			Name:    name,
			Message: "unsupported expression in terminal definition",
			Code:    ErrBadDefinition,
		}
	}
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

// parseState carries per-statement evaluation state, including the
// farthest failure position for error reporting.
type parseState struct {
	p        *Parser
	src      string
	farthest int
	expected map[string]bool
}

// fail records an expectation that was not met at pos. Only failures at
// or beyond the farthest position so far contribute to the error.
func (s *parseState) fail(pos int, expectation string) {
	if pos > s.farthest {
		s.farthest = pos
		s.expected = map[string]bool{}
	}
	if pos == s.farthest {
		s.expected[expectation] = true
	}
}

// skipIgnored advances past any run of ignored-terminal matches.
func (s *parseState) skipIgnored(pos int) int {
	for {
		advanced := false
		for _, t := range s.p.ignored {
			loc := t.pattern.FindStringIndex(s.src[pos:])
			if loc != nil && loc[1] > 0 {
				pos += loc[1]
				advanced = true
			}
		}
		if !advanced {
			return pos
		}
	}
}

// eval matches e at pos, returning the produced nodes and the position
// after the match. Alternatives commit to the first match; repetition is
// greedy without backtracking.
func (s *parseState) eval(e expr, pos int) ([]Node, int, bool) {
	switch e := e.(type) {
	case *litExpr:
		start := s.skipIgnored(pos)
		if strings.HasPrefix(s.src[start:], e.text) {
			return nil, start + len(e.text), true
		}
		s.fail(start, quoteLit(e.text))
		return nil, pos, false

	case *reExpr:
		start := s.skipIgnored(pos)
		loc := e.pattern.FindStringIndex(s.src[start:])
		if loc != nil {
			return nil, start + loc[1], true
		}
		s.fail(start, "/"+e.source+"/")
		return nil, pos, false

	case *refExpr:
		if t, ok := s.p.terminals[e.name]; ok {
			start := s.skipIgnored(pos)
			loc := t.pattern.FindStringIndex(s.src[start:])
			if loc == nil {
				s.fail(start, t.name)
				return nil, pos, false
			}
			tok := &Token{Name: t.name, Value: s.src[start : start+loc[1]], Pos: start}
			return []Node{tok}, start + loc[1], true
		}
		body := s.p.rules[e.name]
		children, next, ok := s.eval(body, pos)
		if !ok {
			return nil, pos, false
		}
		return []Node{&Tree{Rule: e.name, Children: children}}, next, true

	case *seqExpr:
		var nodes []Node
		cur := pos
		for _, item := range e.items {
			produced, next, ok := s.eval(item, cur)
			if !ok {
				return nil, pos, false
			}
			nodes = append(nodes, produced...)
			cur = next
		}
		return nodes, cur, true

	case *altExpr:
		for _, alt := range e.alts {
			nodes, next, ok := s.eval(alt, pos)
			if ok {
				return nodes, next, true
			}
		}
		return nil, pos, false

	case *repExpr:
		var nodes []Node
		cur := pos
		count := 0
		for e.max < 0 || count < e.max {
			produced, next, ok := s.eval(e.sub, cur)
			if !ok || next == cur {
				break
			}
			nodes = append(nodes, produced...)
			cur = next
			count++
		}
		if count < e.min {
			return nil, pos, false
		}
		return nodes, cur, true

	default:
		return nil, pos, false
	}
}

// quoteLit quotes a literal for an expected-set entry.
func quoteLit(lit string) string {
	return `"` + lit + `"`
}

// ParseStatement parses a single statement against the start rule. The
// whole statement must be consumed.
func (p *Parser) ParseStatement(statement string) (*Tree, error) {
	return p.parseLine(statement, 1, 0)
}

// parseLine parses one trimmed statement. colOffset is the rune count
// of leading whitespace removed from the original line, so reported
// columns stay relative to the untrimmed source.
func (p *Parser) parseLine(line string, lineNo, colOffset int) (*Tree, error) {
	s := &parseState{p: p, src: line, expected: map[string]bool{}}

	children, next, ok := s.eval(&refExpr{name: p.start}, 0)
	if ok {
		next = s.skipIgnored(next)
		if next == len(line) {
			return children[0].(*Tree), nil
		}
		s.fail(next, "end of statement")
	}

	expected := make([]string, 0, len(s.expected))
	for e := range s.expected {
		expected = append(expected, e)
	}
	sort.Strings(expected)

	return nil, &SyntaxError{
		Line:     lineNo,
		Column:   colOffset + utf8.RuneCountInString(line[:s.farthest]) + 1,
		Message:  fmt.Sprintf("cannot parse %q", line),
		Expected: expected,
	}
}

// statements splits source into parseable lines, skipping blanks and
// comment-only lines. Each entry carries the original line number and
// the rune count of trimmed leading whitespace.
type statement struct {
	text string
	line int
	col  int
}

func splitStatements(source string) []statement {
	var out []statement
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		lead := strings.IndexFunc(raw, func(r rune) bool { return !unicode.IsSpace(r) })
		out = append(out, statement{
			text: line,
			line: i + 1,
			col:  utf8.RuneCountInString(raw[:lead]),
		})
	}
	return out
}

// ParseTrees parses every statement in source, one statement per line,
// returning the raw parse trees.
func (p *Parser) ParseTrees(source string) ([]*Tree, error) {
	var trees []*Tree
	for _, st := range splitStatements(source) {
		tree, err := p.parseLine(st.text, st.line, st.col)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// Parse parses source into call chains, one per statement line. Blank
// lines and comment lines are skipped.
func (p *Parser) Parse(source string) ([]ast.CallChain, error) {
	trees, err := p.ParseTrees(source)
	if err != nil {
		return nil, err
	}
	chains := make([]ast.CallChain, 0, len(trees))
	for _, tree := range trees {
		chain, err := chainFromTree(tree)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}
