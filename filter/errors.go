package filter

import (
	"errors"
	"fmt"
	"strings"
)

// LexErrorKind categorizes lexical failures.
type LexErrorKind string

const (
	// ErrUnexpectedChar indicates a character outside the filter alphabet.
	ErrUnexpectedChar LexErrorKind = "UNEXPECTED_CHAR"

	// ErrUnterminatedString indicates a quoted string with no closing quote.
	ErrUnterminatedString LexErrorKind = "UNTERMINATED_STRING"
)

// LexError reports malformed input found by the lexer.
// Pos is the byte offset of the offending character (or of the opening quote
// for unterminated strings).
type LexError struct {
	Kind LexErrorKind
	Pos  int
	Char rune
}

func (e *LexError) Error() string {
	if e.Kind == ErrUnterminatedString {
		return fmt.Sprintf("%s: string starting at offset %d is not terminated", e.Kind, e.Pos)
	}
	return fmt.Sprintf("%s: unexpected character %q at offset %d", e.Kind, e.Char, e.Pos)
}

// SyntaxError reports a grammar violation.
type SyntaxError struct {
	// Pos is the byte offset of the token that could not be accepted.
	Pos int

	// Expected lists the token kinds the parser would have accepted.
	Expected []TokenKind

	// Found is the token that was read instead.
	Found Token
}

func (e *SyntaxError) Error() string {
	want := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		want[i] = k.String()
	}
	return fmt.Sprintf("SYNTAX_ERROR: expected %s but found %s at offset %d",
		strings.Join(want, " or "), e.Found, e.Pos)
}

// IsLexError returns true if err is (or wraps) a LexError.
func IsLexError(err error) bool {
	var le *LexError
	return errors.As(err, &le)
}

// IsSyntaxError returns true if err is (or wraps) a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// ErrorPos returns the input offset carried by a lexical or syntax error.
// The second result is false for any other error.
func ErrorPos(err error) (int, bool) {
	var le *LexError
	if errors.As(err, &le) {
		return le.Pos, true
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Pos, true
	}
	return 0, false
}
