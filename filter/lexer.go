package filter

import (
	"strings"
	"unicode/utf8"
)

// Lexer splits a filter string into tokens on demand.
//
// A Lexer is single-use: once it has returned EOF or an error it keeps
// returning the same result. Create a new Lexer for every input.
type Lexer struct {
	input string
	pos   int
	err   error
}

// NewLexer creates a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. At the end of the input it returns a
// TokenEOF token positioned at len(input).
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Pos: len(l.input)}, nil
	}

	c := l.input[l.pos]
	switch {
	case c == '(':
		return l.single(TokenLParen), nil
	case c == ')':
		return l.single(TokenRParen), nil
	case c == '[':
		return l.single(TokenLBracket), nil
	case c == ']':
		return l.single(TokenRBracket), nil
	case c == '.':
		return l.single(TokenDot), nil
	case c == '"':
		return l.lexString()
	case c == '-' || isDigit(c):
		return l.lexNumber()
	case isLetter(c):
		return l.lexWord()
	default:
		return Token{}, l.unexpected(l.pos)
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) single(kind TokenKind) Token {
	tok := Token{Kind: kind, Literal: l.input[l.pos : l.pos+1], Pos: l.pos}
	l.pos++
	return tok
}

// lexString reads a double-quoted string. A backslash takes the following
// character literally.
func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	var sb strings.Builder
	for i := start + 1; i < len(l.input); i++ {
		c := l.input[i]
		switch c {
		case '\\':
			if i+1 >= len(l.input) {
				return Token{}, l.fail(&LexError{Kind: ErrUnterminatedString, Pos: start, Char: '"'})
			}
			i++
			sb.WriteByte(l.input[i])
		case '"':
			l.pos = i + 1
			return Token{Kind: TokenString, Literal: sb.String(), Pos: start}, nil
		default:
			sb.WriteByte(c)
		}
	}
	return Token{}, l.fail(&LexError{Kind: ErrUnterminatedString, Pos: start, Char: '"'})
}

// lexNumber reads an optionally signed integer or decimal, with an optional
// exponent.
func (l *Lexer) lexNumber() (Token, error) {
	start := l.pos
	i := start
	if l.input[i] == '-' {
		i++
	}
	if i >= len(l.input) || !isDigit(l.input[i]) {
		return Token{}, l.unexpected(start)
	}
	i = l.digits(i)
	if i+1 < len(l.input) && l.input[i] == '.' && isDigit(l.input[i+1]) {
		i = l.digits(i + 1)
	}
	if i < len(l.input) && (l.input[i] == 'e' || l.input[i] == 'E') {
		j := i + 1
		if j < len(l.input) && (l.input[j] == '+' || l.input[j] == '-') {
			j++
		}
		if j < len(l.input) && isDigit(l.input[j]) {
			i = l.digits(j)
		}
	}
	l.pos = i
	return Token{Kind: TokenNumber, Literal: l.input[start:i], Pos: start}, nil
}

func (l *Lexer) digits(i int) int {
	for i < len(l.input) && isDigit(l.input[i]) {
		i++
	}
	return i
}

// lexWord reads an attribute name, a keyword, or a schema URN prefix.
//
// A run of name characters that contains a colon is a URN: everything up to
// the last colon becomes a TokenSchemaURN, the colon is consumed, and the
// attribute name that must follow is lexed on the next call.
func (l *Lexer) lexWord() (Token, error) {
	start := l.pos
	end := start
	for end < len(l.input) && isURNChar(l.input[end]) {
		end++
	}

	if colon := strings.LastIndexByte(l.input[start:end], ':'); colon >= 0 {
		colon += start
		if colon+1 >= len(l.input) || !isLetter(l.input[colon+1]) {
			return Token{}, l.unexpected(colon)
		}
		l.pos = colon + 1
		return Token{Kind: TokenSchemaURN, Literal: l.input[start:colon], Pos: start}, nil
	}

	end = start
	for end < len(l.input) && isNameChar(l.input[end]) {
		end++
	}
	l.pos = end

	text := l.input[start:end]
	lower := strings.ToLower(text)
	if kind, ok := keywords[lower]; ok {
		return Token{Kind: kind, Literal: lower, Pos: start}, nil
	}
	return Token{Kind: TokenIdentifier, Literal: text, Pos: start}, nil
}

func (l *Lexer) unexpected(pos int) error {
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return l.fail(&LexError{Kind: ErrUnexpectedChar, Pos: pos, Char: r})
}

func (l *Lexer) fail(err error) error {
	l.err = err
	return err
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '-'
}

func isURNChar(c byte) bool {
	return isNameChar(c) || c == '.' || c == ':'
}
