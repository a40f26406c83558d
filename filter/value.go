package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// AttributePath is the dot-separated name of a (possibly nested) resource
// attribute, e.g. emails.value. Paths produced by the parser are never empty.
type AttributePath []string

// String joins the segments with dots.
func (p AttributePath) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether both paths have the same segments.
func (p AttributePath) Equal(other AttributePath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// LiteralKind identifies the type of a comparison value.
type LiteralKind int

const (
	// LiteralAbsent marks the missing value of a pr comparison.
	LiteralAbsent LiteralKind = iota
	LiteralNull
	LiteralString
	LiteralNumber
	LiteralBool
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralAbsent:
		return "absent"
	case LiteralNull:
		return "null"
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBool:
		return "boolean"
	default:
		return fmt.Sprintf("LiteralKind(%d)", int(k))
	}
}

// Literal is the value side of a comparison.
//
// Value holds a string, an int64 for integral numbers, a float64 for the
// rest, a bool, or nil for null and absent literals.
type Literal struct {
	Kind  LiteralKind
	Value any
}

// Absent is the value of every pr comparison.
var Absent = Literal{Kind: LiteralAbsent}

// Null is the JSON null literal.
var Null = Literal{Kind: LiteralNull}

// String returns a string literal.
func String(s string) Literal { return Literal{Kind: LiteralString, Value: s} }

// Int returns an integral number literal.
func Int(n int64) Literal { return Literal{Kind: LiteralNumber, Value: n} }

// Float returns a decimal number literal.
func Float(f float64) Literal { return Literal{Kind: LiteralNumber, Value: f} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{Kind: LiteralBool, Value: b} }

// IsAbsent reports whether the literal carries no value at all.
func (l Literal) IsAbsent() bool { return l.Kind == LiteralAbsent }

func (l Literal) String() string {
	switch l.Kind {
	case LiteralAbsent:
		return ""
	case LiteralNull:
		return "null"
	case LiteralString:
		return strconv.Quote(l.Value.(string))
	default:
		return fmt.Sprint(l.Value)
	}
}

// literalFromToken converts a value token into a Literal.
func literalFromToken(tok Token) (Literal, error) {
	switch tok.Kind {
	case TokenString:
		return String(tok.Literal), nil
	case TokenNull:
		return Null, nil
	case TokenBoolean:
		return Bool(tok.Literal == "true"), nil
	case TokenNumber:
		if n, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
			return Int(n), nil
		}
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return Literal{}, &SyntaxError{Pos: tok.Pos, Expected: []TokenKind{TokenNumber}, Found: tok}
		}
		return Float(f), nil
	default:
		return Literal{}, &SyntaxError{Pos: tok.Pos, Expected: literalKinds, Found: tok}
	}
}

// literalKinds lists the token kinds that may follow a comparison operator.
var literalKinds = []TokenKind{TokenString, TokenNumber, TokenBoolean, TokenNull}

func isLiteralKind(k TokenKind) bool {
	for _, lk := range literalKinds {
		if lk == k {
			return true
		}
	}
	return false
}
