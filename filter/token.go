package filter

import (
	"fmt"
	"strings"
)

// TokenKind identifies the lexical category of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenSchemaURN
	TokenString
	TokenNumber
	TokenBoolean
	TokenNull
	TokenOperator  // and, or, not
	TokenCompareOp // eq, ne, co, sw, ew, gt, ge, lt, le, pr
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenDot
)

var tokenKindNames = [...]string{
	TokenEOF:        "end of input",
	TokenIdentifier: "attribute name",
	TokenSchemaURN:  "schema URN",
	TokenString:     "string",
	TokenNumber:     "number",
	TokenBoolean:    "boolean",
	TokenNull:       "null",
	TokenOperator:   "logical operator",
	TokenCompareOp:  "comparison operator",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenLBracket:   "'['",
	TokenRBracket:   "']'",
	TokenDot:        "'.'",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical unit of a filter string.
//
// Literal holds the token text: the decoded contents for strings, the
// lower-cased keyword for operators, booleans and null, and the source text
// for everything else. Pos is the byte offset of the token in the input.
type Token struct {
	Kind    TokenKind
	Literal string
	Pos     int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", t.Literal)
	default:
		return fmt.Sprintf("%s %q", t.Kind, t.Literal)
	}
}

// CompareOp is one of the ten SCIM attribute operators.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpContains
	OpStartsWith
	OpEndsWith
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpPresent
)

var compareOpNames = [...]string{
	OpEqual:          "eq",
	OpNotEqual:       "ne",
	OpContains:       "co",
	OpStartsWith:     "sw",
	OpEndsWith:       "ew",
	OpGreaterThan:    "gt",
	OpGreaterOrEqual: "ge",
	OpLessThan:       "lt",
	OpLessOrEqual:    "le",
	OpPresent:        "pr",
}

// String returns the lower-case keyword for the operator.
func (op CompareOp) String() string {
	if op >= 0 && int(op) < len(compareOpNames) {
		return compareOpNames[op]
	}
	return fmt.Sprintf("CompareOp(%d)", int(op))
}

// ParseCompareOp maps a keyword (any case) to its operator.
func ParseCompareOp(s string) (CompareOp, bool) {
	s = strings.ToLower(s)
	for i, name := range compareOpNames {
		if name == s {
			return CompareOp(i), true
		}
	}
	return 0, false
}

// LogicalOp is a binary logical combinator.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return fmt.Sprintf("LogicalOp(%d)", int(op))
	}
}

// keywords maps lower-cased reserved words to their token kind.
var keywords = map[string]TokenKind{
	"and":   TokenOperator,
	"or":    TokenOperator,
	"not":   TokenOperator,
	"true":  TokenBoolean,
	"false": TokenBoolean,
	"null":  TokenNull,
}

func init() {
	for _, name := range compareOpNames {
		keywords[name] = TokenCompareOp
	}
}
