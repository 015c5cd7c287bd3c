package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verba"
	"github.com/roach88/verba/ast"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Grammar string
	Tree    bool
}

// ParsedCall is one call in the JSON parse output.
type ParsedCall struct {
	Name string      `json:"name"`
	Args []ParsedArg `json:"args,omitempty"`
}

// ParsedArg is one argument in the JSON parse output.
type ParsedArg struct {
	Keyword string `json:"keyword,omitempty"`
	Value   string `json:"value"`
}

// ParseResult holds the parse command's JSON payload.
type ParseResult struct {
	Statements [][]ParsedCall `json:"statements"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <program-file>",
		Short: "Parse a program without executing it",
		Long: `Parse a DSL program and print the resulting call chains, one per
statement. Use "-" to read the program from stdin.

Examples:
  verba parse program.vb
  echo 'list_tasks()' | verba parse -
  verba parse program.vb --tree`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "grammar document (.yaml, .toml, or .cue); default grammar if omitted")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "print raw parse trees instead of call chains")

	return cmd
}

func runParse(opts *ParseOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, source, err := buildGrammar(opts.Grammar, programPath, cmd)
	if err != nil {
		return err
	}

	if opts.Tree {
		trees, err := g.ParseTrees(source)
		if err != nil {
			return parseFailure(formatter, err)
		}
		for i, tree := range trees {
			if i > 0 {
				fmt.Fprintln(formatter.Writer)
			}
			fmt.Fprint(formatter.Writer, tree.String())
		}
		return nil
	}

	chains, err := g.Parse(source)
	if err != nil {
		return parseFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(parseResult(chains))
	}
	for _, chain := range chains {
		for i, call := range chain.Calls {
			if i > 0 {
				fmt.Fprint(formatter.Writer, ".")
			}
			fmt.Fprint(formatter.Writer, call.String())
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// buildGrammar assembles a verb-less Grammar for parse/export-style
// commands and loads the program source.
func buildGrammar(grammarPath, programPath string, cmd *cobra.Command) (*verba.Grammar, string, error) {
	spec, err := loadSpec(grammarPath)
	if err != nil {
		return nil, "", err
	}

	g, err := verba.New(verba.WithSpec(spec))
	if err != nil {
		return nil, "", WrapExitError(ExitFailure, "grammar does not compile", err)
	}

	source, err := loadSource(programPath, cmd.InOrStdin())
	if err != nil {
		return nil, "", err
	}
	return g, source, nil
}

func parseResult(chains []ast.CallChain) ParseResult {
	result := ParseResult{Statements: make([][]ParsedCall, len(chains))}
	for i, chain := range chains {
		calls := make([]ParsedCall, len(chain.Calls))
		for j, call := range chain.Calls {
			pc := ParsedCall{Name: call.Name}
			for _, arg := range call.Args {
				pc.Args = append(pc.Args, ParsedArg{Keyword: arg.Keyword, Value: arg.Value.Literal()})
			}
			calls[j] = pc
		}
		result.Statements[i] = calls
	}
	return result
}

func parseFailure(formatter *OutputFormatter, err error) error {
	_ = formatter.Error("SYNTAX", err.Error(), nil)
	return WrapExitError(ExitFailure, "parse failed", err)
}
