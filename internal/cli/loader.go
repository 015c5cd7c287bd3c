package cli

import (
	"errors"
	"io"
	"os"

	"github.com/roach88/verba/config"
	"github.com/roach88/verba/grammar"
)

// loadSpec loads a grammar document, or the default call-chain grammar
// when path is empty.
func loadSpec(path string) (*grammar.Spec, error) {
	if path == "" {
		return grammar.Default(), nil
	}

	spec, err := config.FromFile(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Code == config.ErrUnreadable {
			return nil, WrapExitError(ExitCommandError, "cannot read grammar document", err)
		}
		return nil, WrapExitError(ExitFailure, "invalid grammar document", err)
	}
	return spec, nil
}

// loadSource reads DSL source from a file path, or from the reader
// (stdin) when path is "-".
func loadSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "cannot read program from stdin", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "cannot read program", err)
	}
	return string(data), nil
}
