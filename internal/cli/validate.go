package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Filter   string `json:"filter"`
	Valid    bool   `json:"valid"`
	Position *int   `json:"position,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <filter>",
		Short: "Check that a filter is well-formed",
		Long: `Check a SCIM filter against the grammar without translating it.

Exit codes:
  0 - Filter is valid
  1 - Filter is invalid (the offending position is reported)

Examples:
  scimfilter validate 'userName eq "bjensen"'
  scimfilter validate --format json 'emails[type eq "work"'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Validating filter %q", input)

	if err := filter.Validate(input); err != nil {
		return outputFilterError(formatter, input, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Filter: input, Valid: true})
	}
	return formatter.Success("✓ Filter is valid")
}

// outputFilterError reports a parse or translation error and returns the
// matching ExitError.
func outputFilterError(f *OutputFormatter, input string, err error) error {
	code := harness.ErrorCode(err)
	if code == "" {
		code = ErrCodeGeneric
	}

	if f.Format == "json" {
		result := ValidationResult{Filter: input, Valid: !filter.IsLexError(err) && !filter.IsSyntaxError(err)}
		if pos, ok := filter.ErrorPos(err); ok {
			result.Position = &pos
		}
		if outErr := f.Error(code, err.Error(), result); outErr != nil {
			return outErr
		}
	} else {
		if outErr := f.Error(code, err.Error(), nil); outErr != nil {
			return outErr
		}
		if pos, ok := filter.ErrorPos(err); ok {
			fmt.Fprintln(f.Writer, "  "+input)
			fmt.Fprintln(f.Writer, "  "+caret(input, pos))
		}
	}

	return WrapExitError(ExitFailure, code, err)
}

// caret returns a line that points at byte offset pos of input.
func caret(input string, pos int) string {
	if pos > len(input) {
		pos = len(input)
	}
	var sb strings.Builder
	for i := 0; i < pos; i++ {
		if input[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')
	return sb.String()
}
