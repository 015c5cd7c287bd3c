package backend

import (
	"regexp"
	"strconv"

	"github.com/roach88/verba/ast"
)

// Conventional rule names the tree-to-AST mapping looks for. Custom
// grammars must keep these names for their call and argument rules; the
// rest of the grammar is free-form.
const (
	ruleCall = "call"
	ruleArgs = "args"
	ruleArg  = "arg"
)

// chainFromTree converts a statement parse tree into a call chain. The
// tree is searched depth-first for subtrees named "call"; each becomes
// one call in the chain.
func chainFromTree(t *Tree) (ast.CallChain, error) {
	var calls []*Tree
	collectCalls(t, &calls)
	if len(calls) == 0 {
		return ast.CallChain{}, &GrammarError{
			Name:    t.Rule,
			Message: `parse tree contains no "call" nodes`,
			Code:    ErrBadDefinition,
		}
	}

	chain := ast.CallChain{Calls: make([]ast.Call, 0, len(calls))}
	for _, c := range calls {
		call, err := callFromTree(c)
		if err != nil {
			return ast.CallChain{}, err
		}
		chain.Calls = append(chain.Calls, call)
	}
	return chain, nil
}

func collectCalls(n Node, out *[]*Tree) {
	t, ok := n.(*Tree)
	if !ok {
		return
	}
	if t.Rule == ruleCall {
		*out = append(*out, t)
		return
	}
	for _, c := range t.Children {
		collectCalls(c, out)
	}
}

// callFromTree maps one "call" subtree. The first token child is the
// call name; an "args" subtree (or direct "arg" children) supplies the
// arguments.
func callFromTree(t *Tree) (ast.Call, error) {
	var call ast.Call

	for _, child := range t.Children {
		switch child := child.(type) {
		case *Token:
			if call.Name == "" {
				call.Name = child.Value
			}
		case *Tree:
			switch child.Rule {
			case ruleArgs:
				for _, argNode := range child.Children {
					argTree, ok := argNode.(*Tree)
					if !ok || argTree.Rule != ruleArg {
						continue
					}
					arg, err := argFromTree(argTree)
					if err != nil {
						return ast.Call{}, err
					}
					call.Args = append(call.Args, arg)
				}
			case ruleArg:
				arg, err := argFromTree(child)
				if err != nil {
					return ast.Call{}, err
				}
				call.Args = append(call.Args, arg)
			}
		}
	}

	if call.Name == "" {
		return ast.Call{}, &GrammarError{
			Name:    ruleCall,
			Message: "call node has no name token",
			Code:    ErrBadDefinition,
		}
	}
	return call, nil
}

// argFromTree maps one "arg" subtree. Two shapes exist after anonymous
// literals are filtered: [IDENTIFIER, value] for keyword arguments and
// [value] for positional ones.
func argFromTree(t *Tree) (ast.Arg, error) {
	switch len(t.Children) {
	case 1:
		v, err := valueFromNode(t.Children[0])
		if err != nil {
			return ast.Arg{}, err
		}
		return ast.Arg{Value: v}, nil

	case 2:
		keyword, ok := t.Children[0].(*Token)
		if !ok {
			return ast.Arg{}, &GrammarError{
				Name:    ruleArg,
				Message: "keyword argument name is not a token",
				Code:    ErrBadDefinition,
			}
		}
		v, err := valueFromNode(t.Children[1])
		if err != nil {
			return ast.Arg{}, err
		}
		return ast.Arg{Keyword: keyword.Value, Value: v}, nil

	default:
		return ast.Arg{}, &GrammarError{
			Name:    ruleArg,
			Message: "argument node has unexpected shape",
			Code:    ErrBadDefinition,
		}
	}
}

// numberShape matches decimal number text only: digit-led, optional
// sign, fraction, and exponent. Stricter than strconv.ParseFloat, which
// also accepts "inf", "nan", and hex floats that must stay identifiers.
var numberShape = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

// valueFromNode converts a value node into a typed value. Tokens from
// the conventional terminal names classify by name; tokens from custom
// terminals classify by shape.
func valueFromNode(n Node) (ast.Value, error) {
	tok := firstToken(n)
	if tok == nil {
		return nil, &GrammarError{
			Name:    "value",
			Message: "value node contains no token",
			Code:    ErrBadDefinition,
		}
	}

	text := tok.Value
	switch tok.Name {
	case "NUMBER", "SIGNED_INT", "INT":
		return numberValue(text)
	case "STRING", "ESCAPED_STRING":
		return stringValue(text)
	case "IDENTIFIER", "CNAME", "NAME":
		return ast.Ident(text), nil
	}

	if numberShape.MatchString(text) {
		return numberValue(text)
	}
	if len(text) >= 2 && text[0] == '"' {
		return stringValue(text)
	}
	return ast.Ident(text), nil
}

func numberValue(text string) (ast.Value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &GrammarError{
			Name:    "value",
			Message: "not a representable number: " + text,
			Code:    ErrBadDefinition,
			Err:     err,
		}
	}
	return ast.Number(f), nil
}

func stringValue(text string) (ast.Value, error) {
	decoded, err := ast.DecodeString(text)
	if err != nil {
		return nil, &GrammarError{
			Name:    "value",
			Message: err.Error(),
			Code:    ErrBadDefinition,
		}
	}
	return ast.String(decoded), nil
}

func firstToken(n Node) *Token {
	switch n := n.(type) {
	case *Token:
		return n
	case *Tree:
		for _, c := range n.Children {
			if tok := firstToken(c); tok != nil {
				return tok
			}
		}
	}
	return nil
}
