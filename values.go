package verba

import "github.com/roach88/verba/ast"

// StringValue extracts a decoded string, accepting both quoted strings
// and bare identifiers.
func StringValue(v ast.Value) (string, bool) {
	switch v := v.(type) {
	case ast.String:
		return string(v), true
	case ast.Ident:
		return string(v), true
	default:
		return "", false
	}
}

// NumberValue extracts a numeric value.
func NumberValue(v ast.Value) (float64, bool) {
	n, ok := v.(ast.Number)
	return float64(n), ok
}
