// Package ast defines the abstract syntax tree produced by parsing verb-DSL
// source text: an ordered sequence of call chains, each an ordered sequence
// of calls with keyword or positional literal arguments.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface over the literal value types a DSL argument
// can carry. Only Number, String, and Ident implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Literal returns the value formatted as DSL source text.
	Literal() string
}

// Number is a numeric literal. The default grammar admits optionally
// signed decimals, so numbers are float64 throughout.
type Number float64

func (Number) value() {}

// Literal formats the number the way it would appear in source.
func (n Number) Literal() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String is a text literal with escape sequences already decoded.
type String string

func (String) value() {}

// Literal re-quotes and re-escapes the string.
func (s String) Literal() string {
	return strconv.Quote(string(s))
}

// Ident is a bare identifier reference, kept as its raw token text.
type Ident string

func (Ident) value() {}

// Literal returns the identifier text unchanged.
func (i Ident) Literal() string {
	return string(i)
}

// Arg is one argument of a call. Keyword is empty for positional
// arguments.
type Arg struct {
	Keyword string
	Value   Value
}

// Call is a single parsed verb call.
type Call struct {
	Name string
	Args []Arg
}

// String formats the call as DSL source text. Used in error messages.
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a.Keyword != "" {
			parts[i] = a.Keyword + "=" + a.Value.Literal()
		} else {
			parts[i] = a.Value.Literal()
		}
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// CallChain is the ordered sequence of calls parsed from one statement.
type CallChain struct {
	Calls []Call
}

// Program is an ordered sequence of statements, one call chain per
// statement.
type Program struct {
	Chains []CallChain
}

// DecodeString decodes a double-quoted DSL string literal, resolving
// backslash escapes. The input must include the surrounding quotes.
func DecodeString(literal string) (string, error) {
	if len(literal) < 2 || literal[0] != '"' || literal[len(literal)-1] != '"' {
		return "", fmt.Errorf("not a quoted string literal: %s", literal)
	}

	body := literal[1 : len(literal)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in string literal: %s", literal)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case '\'':
			sb.WriteByte('\'')
		default:
			// Unknown escapes keep the escaped character, matching the
			// permissive STRING terminal /"([^"\\]|\\.)*"/.
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}
