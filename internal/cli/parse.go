package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/internal/canonical"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Groups bool // keep parentheses as group nodes
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <filter>",
		Short: "Print the canonical AST of a filter",
		Long: `Parse a SCIM filter and print its canonical AST.

Comparisons print as {"op": {"path", "schema", "value"}}, logical
operators as {"and": [left, right]}, negation as {"not": inner} and
bracketed filters as {"path", "schema", "nested": inner}. With --groups,
parentheses print as {"group": inner} and bracketed filters use "sub".

Examples:
  scimfilter parse 'title pr and userType eq "Employee"'
  scimfilter parse --groups '(a pr or b pr) and c pr'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Groups, "groups", false, "preserve parenthesized groups")

	return cmd
}

func runParse(opts *ParseOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	builder := &filter.ASTBuilder{PreserveGroups: opts.Groups, Logger: formatter.Logger}
	node, err := filter.NewParser[filter.Node](builder).ParseWithValue(input, formatter.TraceID)
	if err != nil {
		return outputFilterError(formatter, input, err)
	}

	tagged := filter.Tagged(node, opts.Groups)
	if formatter.Format == "json" {
		return formatter.Success(tagged)
	}

	data, err := canonical.MarshalIndent(tagged, "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode AST", err)
	}
	return formatter.Success(string(data))
}
