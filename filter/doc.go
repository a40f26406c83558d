// Package filter parses SCIM 2.0 filter expressions (RFC 7644 §3.4.2.2).
//
// Parsing is event driven. The Parser reads tokens from a Lexer on demand
// and reports every completed node to a Handler, bottom-up; each callback
// receives the results already returned for its children, and the result
// for the root node is what Parse returns. There is no intermediate tree
// unless the handler builds one.
//
// Three handlers ship with the package or its siblings:
//   - Validator discards everything; Validate(s) == nil means s is valid.
//   - ASTBuilder builds Nodes that mirror the grammar (the default for Parse).
//   - predicate.Translator builds boolean predicates for a relational store.
//
// Basic usage:
//
//	node, err := filter.Parse(`emails[type eq "work"] and title pr`)
//	if err != nil {
//	    return err // *filter.LexError or *filter.SyntaxError
//	}
//	fmt.Println(filter.Tagged(node, false))
//
// Custom handlers implement Handler[R] for their own result type R and may
// also implement GroupedHandler[R] and NestedScopeHandler.
//
// Operator precedence, tightest first: parentheses and brackets, not, and,
// or. Keywords and operators are case-insensitive; attribute names keep the
// case they were written in.
package filter
