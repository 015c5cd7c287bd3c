package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verba/grammar"
)

// defaultDoc mirrors grammar.Default() as a structured document.
func defaultDoc() map[string]any {
	return map[string]any{
		"start": "start",
		"rules": []any{
			map[string]any{"name": "start", "definition": "call_chain", "description": "Entry point"},
			map[string]any{"name": "call_chain", "definition": "call (DOT call)*", "description": "Chain of calls"},
			map[string]any{"name": "call", "definition": `IDENTIFIER "(" args? ")"`, "description": "Function call"},
			map[string]any{"name": "args", "definition": "arg (COMMA arg)*", "description": "Arguments"},
			map[string]any{"name": "arg", "definition": `IDENTIFIER "=" value | value`, "description": "Argument"},
			map[string]any{"name": "value", "definition": "NUMBER | STRING | IDENTIFIER", "description": "Value"},
		},
		"terminals": []any{
			map[string]any{"name": "DOT", "pattern": ".", "description": "Dot separator"},
			map[string]any{"name": "COMMA", "pattern": ",", "description": "Comma separator"},
			map[string]any{"name": "NUMBER", "pattern": `/-?\d+(\.\d+)?/`, "description": "Number"},
			map[string]any{"name": "STRING", "pattern": `/"([^"\\]|\\.)*"/`, "description": "String"},
			map[string]any{"name": "IDENTIFIER", "pattern": `/[a-zA-Z_][a-zA-Z0-9_]*/`, "description": "Identifier"},
		},
		"directives": []any{"%import common.WS", "%ignore WS"},
	}
}

func TestFromMapMatchesBuilder(t *testing.T) {
	spec, err := FromMap(defaultDoc())
	require.NoError(t, err)

	assert.Equal(t, "start", spec.Start)
	require.Len(t, spec.Rules, 6)
	assert.Equal(t, "call_chain", spec.Rules[1].Name)
	assert.Equal(t, "call (DOT call)*", spec.Rules[1].Definition)
	require.Len(t, spec.Terminals, 5)
	assert.Equal(t, grammar.Terminal{Name: "DOT", Pattern: ".", Description: "Dot separator"}, spec.Terminals[0])
	assert.Equal(t,
		[]grammar.Directive{"%import common.WS", "%ignore WS"},
		spec.Directives)
	assert.Empty(t, spec.Validate())
}

func TestFromMapMissingStart(t *testing.T) {
	doc := defaultDoc()
	delete(doc, "start")

	_, err := FromMap(doc)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrMissingField, cfgErr.Code)
	assert.Equal(t, "start", cfgErr.Field)
}

func TestFromMapStartNotInRules(t *testing.T) {
	doc := defaultDoc()
	doc["start"] = "program"

	_, err := FromMap(doc)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrUnknownStart, cfgErr.Code)
	assert.Contains(t, cfgErr.Message, "program")
}

func TestFromMapMissingRuleField(t *testing.T) {
	doc := defaultDoc()
	doc["rules"] = []any{
		map[string]any{"name": "start"}, // definition missing
	}

	_, err := FromMap(doc)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrMissingField, cfgErr.Code)
	assert.Equal(t, "rules[0].start.definition", cfgErr.Field)
}

func TestFromMapMissingTerminalPattern(t *testing.T) {
	doc := defaultDoc()
	doc["terminals"] = []any{
		map[string]any{"name": "DOT"},
	}

	_, err := FromMap(doc)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrMissingField, cfgErr.Code)
	assert.Contains(t, cfgErr.Field, "DOT")
}

func TestFromMapWrongTypes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"rules not a list", func(d map[string]any) { d["rules"] = "nope" }},
		{"rule entry not a map", func(d map[string]any) { d["rules"] = []any{"nope"} }},
		{"directive not a string", func(d map[string]any) { d["directives"] = []any{42} }},
		{"start not a string", func(d map[string]any) { d["start"] = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := defaultDoc()
			tt.mutate(doc)
			_, err := FromMap(doc)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, ErrWrongType, cfgErr.Code)
		})
	}
}

func TestFromMapDuplicateRuleIsDefinitionError(t *testing.T) {
	doc := defaultDoc()
	doc["rules"] = []any{
		map[string]any{"name": "start", "definition": "call_chain"},
		map[string]any{"name": "start", "definition": "call_chain"},
	}

	_, err := FromMap(doc)
	var defErr *grammar.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, grammar.ErrDuplicateRule, defErr.Code)
}
