package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verba/backend"
	"github.com/roach88/verba/grammar"
)

// ValidationIssue is one problem found in a grammar document.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation output.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <grammar-file>",
		Short: "Validate a grammar document",
		Long: `Validate a grammar document (.yaml, .toml, or .cue) without running anything.

Checks structural invariants (unique names, defined start rule) and
compiles the grammar, so definition-expression and pattern errors are
caught too.

Examples:
  verba validate grammar.yaml
  verba validate grammar.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := loadSpec(path)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
			_ = formatter.Error("C103", exitErr.Error(), nil)
			return err
		}
		_ = formatter.Error("C100", err.Error(), nil)
		return err
	}

	formatter.VerboseLog("Loaded grammar %q with %d rules, %d terminals", path, len(spec.Rules), len(spec.Terminals))

	var issues []ValidationIssue
	for _, defErr := range spec.Validate() {
		issues = append(issues, ValidationIssue{
			Field:   defErr.Field,
			Code:    defErr.Code,
			Message: defErr.Message,
		})
	}

	// Structural checks passed; compile to catch expression and pattern
	// errors the spec-level checks can't see.
	if len(issues) == 0 {
		if _, err := backend.NewLarkBackend().Compile(spec); err != nil {
			issues = append(issues, compileIssue(err))
		}
	}

	if len(issues) > 0 {
		if formatter.Format == "json" {
			_ = formatter.Error(issues[0].Code, issues[0].Message, ValidationResult{Valid: false, Issues: issues})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Grammar invalid")
			for _, issue := range issues {
				fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", issue.Code, issue.Field, issue.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Grammar valid")
	return nil
}

func compileIssue(err error) ValidationIssue {
	var gErr *backend.GrammarError
	if errors.As(err, &gErr) {
		return ValidationIssue{Field: gErr.Name, Code: gErr.Code, Message: gErr.Message}
	}
	var defErr *grammar.DefinitionError
	if errors.As(err, &defErr) {
		return ValidationIssue{Field: defErr.Field, Code: defErr.Code, Message: defErr.Message}
	}
	return ValidationIssue{Code: "G102", Message: err.Error()}
}
