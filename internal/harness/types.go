package harness

import (
	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/predicate"
)

// Error codes used in scenario files and CLI JSON output.
const (
	CodeLex                     = "lex"
	CodeSyntax                  = "syntax"
	CodeUnmappedAttribute       = "unmapped_attribute"
	CodeInvalidMappingShape     = "invalid_mapping_shape"
	CodeNestedFilterUnsupported = "nested_filter_unsupported"
)

// ErrorCode maps a parse or translation error to its code. Errors of other
// types map to the empty string.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case filter.IsLexError(err):
		return CodeLex
	case filter.IsSyntaxError(err):
		return CodeSyntax
	case predicate.IsConfigurationError(err, predicate.ErrUnmappedAttribute):
		return CodeUnmappedAttribute
	case predicate.IsConfigurationError(err, predicate.ErrInvalidMappingShape):
		return CodeInvalidMappingShape
	case predicate.IsCapabilityError(err, predicate.ErrNestedFilterUnsupported):
		return CodeNestedFilterUnsupported
	default:
		return ""
	}
}

func isKnownCode(code string) bool {
	switch code {
	case CodeLex, CodeSyntax, CodeUnmappedAttribute, CodeInvalidMappingShape, CodeNestedFilterUnsupported:
		return true
	}
	return false
}

// isTranslationCode reports codes only a translation can produce.
func isTranslationCode(code string) bool {
	return code != CodeLex && code != CodeSyntax
}

// CaseResult records what one case actually produced.
type CaseResult struct {
	Filter string `json:"filter"`
	Valid  bool   `json:"valid"`
	AST    any    `json:"ast,omitempty"`
	SQL    string `json:"sql,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case matched all its expectations.
	Pass bool `json:"pass"`

	// Cases holds the actual outcome of each case, in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
