package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verba/backend"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Grammar string
	Full    bool
	Out     string
}

// ExportResult holds the export payload for JSON output.
type ExportResult struct {
	Grammar string `json:"grammar"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the grammar as text for constrained decoding",
		Long: `Render the grammar as grammar-notation text with processing directives
stripped, ready to hand to a constrained-decoding system.

Without --grammar the default call-chain grammar is exported.

Examples:
  verba export
  verba export --grammar grammar.yaml
  verba export --full`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "grammar document (.yaml, .toml, or .cue); default grammar if omitted")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "keep directive lines instead of stripping them")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write to file instead of stdout")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := loadSpec(opts.Grammar)
	if err != nil {
		return err
	}

	b := backend.NewLarkBackend()

	// Compile before exporting, so an unusable grammar never ships.
	if _, err := b.Compile(spec); err != nil {
		issue := compileIssue(err)
		_ = formatter.Error(issue.Code, issue.Message, nil)
		return NewExitError(ExitFailure, "grammar does not compile")
	}

	text := b.Render(spec)
	if !opts.Full {
		text = b.CleanForExternal(text)
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(text), 0o644); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("write %s: %v", opts.Out, err))
		}
		if formatter.Format == "json" {
			return formatter.Success(ExportResult{Grammar: text})
		}
		fmt.Fprintf(formatter.Writer, "wrote %s\n", opts.Out)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(ExportResult{Grammar: text})
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}
