package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/internal/mappingfile"
	"github.com/roach88/scimfilter/predicate"
	"github.com/roach88/scimfilter/predsql"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Mapping string // mapping file path (.yaml, .yml or .cue)
	Params  bool   // print parameterized SQL and its parameters
	Select  bool   // print a full SELECT over the mapping's table
}

// TranslateResult is the JSON payload of the translate command.
type TranslateResult struct {
	Filter string `json:"filter"`
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <filter>",
		Short: "Translate a filter to SQL through a mapping",
		Long: `Translate a SCIM filter to an SQLite WHERE clause.

Attributes are resolved through the mapping file given with --mapping.
By default values are inlined for reading; --params prints ? placeholders
and the parameter list instead, and --select wraps the clause in a SELECT
over the mapping's table.

Exit codes:
  0 - Filter translated
  1 - Filter invalid or not translatable with this mapping
  2 - Command error (mapping file missing or malformed)

Examples:
  scimfilter translate --mapping users.yaml 'userName eq "bjensen"'
  scimfilter translate --mapping users.cue --params 'emails[type eq "work"]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mapping, "mapping", "m", "", "attribute mapping file (required)")
	cmd.Flags().BoolVar(&opts.Params, "params", false, "print parameterized SQL and parameters")
	cmd.Flags().BoolVar(&opts.Select, "select", false, "print a full SELECT statement (implies --params)")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}

func runTranslate(opts *TranslateOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Mapping); os.IsNotExist(err) {
		msg := fmt.Sprintf("mapping file not found: %s", opts.Mapping)
		if outErr := formatter.Error(ErrCodeNotFound, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}

	loaded, err := mappingfile.Load(opts.Mapping)
	if err != nil {
		if outErr := formatter.Error(ErrCodeMapping, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to load mapping", err)
	}
	formatter.VerboseLog("Loaded mapping %s (%d top-level attributes)", opts.Mapping, len(loaded.Mapping))

	translator := predicate.NewTranslator(loaded.Mapping, predicate.WithLogger(formatter.Logger))
	pred, err := filter.NewParser[predicate.Predicate](translator).ParseWithValue(input, formatter.TraceID)
	if err != nil {
		return outputFilterError(formatter, input, err)
	}

	result := TranslateResult{Filter: input}
	switch {
	case opts.Select:
		if loaded.Table == "" {
			msg := "--select needs a mapping with a table"
			if outErr := formatter.Error(ErrCodeMapping, msg, nil); outErr != nil {
				return outErr
			}
			return NewExitError(ExitCommandError, msg)
		}
		result.SQL, result.Params, err = predsql.Select(loaded.Table, pred)
	case opts.Params:
		result.SQL, result.Params, err = predsql.Compile(pred)
	default:
		result.SQL, err = predsql.Render(pred)
	}
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to render SQL", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if !opts.Params && !opts.Select {
		return formatter.Success(result.SQL)
	}
	params := make([]string, len(result.Params))
	for i, p := range result.Params {
		lit, err := predsql.Literal(p)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to render parameter", err)
		}
		params[i] = lit
	}
	return formatter.Success(fmt.Sprintf("%s\nparams: [%s]", result.SQL, strings.Join(params, ", ")))
}
