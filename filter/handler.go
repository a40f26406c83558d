package filter

// Context is created once per parse and passed unchanged to every handler
// callback of that parse. The parser never reads Value; callers use it to
// correlate callbacks with a request (trace ids, tenants, loggers).
type Context struct {
	// Input is the complete filter string being parsed.
	Input string

	// Value is the caller-supplied value given to ParseWithValue.
	Value any
}

// Handler receives parse events bottom-up and folds them into a result.
//
// Each callback receives the results its children returned, so the value
// returned for the root node is the result of the whole parse. Returning an
// error aborts the parse; the parser hands the error back to the caller
// without wrapping it.
type Handler[R any] interface {
	// OnAttributeFilter handles a comparison such as `name.givenName sw "J"`.
	// value is Absent for pr, and schema is empty when no URN prefix was given.
	OnAttributeFilter(path AttributePath, op CompareOp, value Literal, schema string, ctx *Context) (R, error)

	// OnNotFilter handles `not (...)`.
	OnNotFilter(inner R, ctx *Context) (R, error)

	// OnLogicalFilter handles `left and right` and `left or right`.
	OnLogicalFilter(left, right R, op LogicalOp, ctx *Context) (R, error)

	// OnNestedFilter handles a bracketed filter such as `emails[type eq "work"]`.
	OnNestedFilter(path AttributePath, schema string, sub R, ctx *Context) (R, error)
}

// GroupedHandler is implemented by handlers that distinguish parenthesized
// filters. Handlers without it see the inner result passed through unchanged.
type GroupedHandler[R any] interface {
	OnGroupedFilter(inner R, ctx *Context) (R, error)
}

// NestedScopeHandler is implemented by handlers that need to know a
// bracketed filter has started before its contents are reported.
// EnterNestedFilter fires right after `attr[` is read; the matching
// OnNestedFilter fires once the closing bracket has been consumed.
type NestedScopeHandler interface {
	EnterNestedFilter(path AttributePath, schema string, ctx *Context) error
}

// Validator is a Handler that discards everything. A parse with a Validator
// succeeds exactly when the filter is well-formed.
type Validator struct{}

var _ Handler[struct{}] = Validator{}

func (Validator) OnAttributeFilter(AttributePath, CompareOp, Literal, string, *Context) (struct{}, error) {
	return struct{}{}, nil
}

func (Validator) OnNotFilter(struct{}, *Context) (struct{}, error) {
	return struct{}{}, nil
}

func (Validator) OnLogicalFilter(struct{}, struct{}, LogicalOp, *Context) (struct{}, error) {
	return struct{}{}, nil
}

func (Validator) OnNestedFilter(AttributePath, string, struct{}, *Context) (struct{}, error) {
	return struct{}{}, nil
}

// Validate reports whether input is a grammatically valid filter. It returns
// nil on success, otherwise the *LexError or *SyntaxError describing the
// first problem.
func Validate(input string) error {
	_, err := NewParser[struct{}](Validator{}).Parse(input)
	return err
}
