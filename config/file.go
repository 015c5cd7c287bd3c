package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/verba/grammar"
)

// FromFile loads a grammar document from disk, dispatching on the file
// extension: .yaml/.yml, .toml, or .cue.
func FromFile(path string) (*grammar.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{
			Field:   path,
			Message: "cannot read grammar document",
			Code:    ErrUnreadable,
			Err:     err,
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".toml":
		return FromTOML(data)
	case ".cue":
		return FromCUE(data)
	default:
		return nil, &ConfigError{
			Field:   path,
			Message: fmt.Sprintf("unrecognized grammar document extension %q (expected .yaml, .toml, or .cue)", filepath.Ext(path)),
			Code:    ErrUnknownFormat,
		}
	}
}
