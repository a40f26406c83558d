package filter

// Parser drives a Handler over the grammar
//
//	filter  := andTerm ("or" andTerm)*
//	andTerm := notTerm ("and" notTerm)*
//	notTerm := ["not"] primary
//	primary := "(" filter ")"
//	         | [urn ":"] path "[" filter "]"
//	         | [urn ":"] path compareOp [value]
//	path    := name ("." name)*
//
// so that and binds tighter than or and both associate to the left. The
// value is required for every operator except pr, which must not have one.
//
// A Parser keeps no state between calls and may be shared if its handler
// can be.
type Parser[R any] struct {
	handler Handler[R]
}

// NewParser creates a parser that reports to handler.
func NewParser[R any](handler Handler[R]) *Parser[R] {
	return &Parser[R]{handler: handler}
}

// Parse parses input and returns the handler's result for the root node.
func (p *Parser[R]) Parse(input string) (R, error) {
	return p.ParseWithValue(input, nil)
}

// ParseWithValue is Parse with a caller value exposed to every callback
// through Context.Value.
func (p *Parser[R]) ParseWithValue(input string, value any) (R, error) {
	s := &parseState[R]{
		lexer:   NewLexer(input),
		handler: p.handler,
		ctx:     &Context{Input: input, Value: value},
	}
	s.grouped, _ = p.handler.(GroupedHandler[R])
	s.scope, _ = p.handler.(NestedScopeHandler)

	var zero R
	if err := s.advance(); err != nil {
		return zero, err
	}
	result, err := s.parseFilter()
	if err != nil {
		return zero, err
	}
	if s.tok.Kind != TokenEOF {
		return zero, s.unexpected(TokenEOF, TokenOperator)
	}
	return result, nil
}

// Parse parses input with a fresh default ASTBuilder and returns the root
// node.
func Parse(input string) (Node, error) {
	return NewParser[Node](&ASTBuilder{}).Parse(input)
}

// parseState is the per-call state of one parse: the lexer and the single
// token of lookahead.
type parseState[R any] struct {
	lexer   *Lexer
	tok     Token
	handler Handler[R]
	grouped GroupedHandler[R]
	scope   NestedScopeHandler
	ctx     *Context
}

func (s *parseState[R]) advance() error {
	tok, err := s.lexer.Next()
	if err != nil {
		return err
	}
	s.tok = tok
	return nil
}

func (s *parseState[R]) isOperator(word string) bool {
	return s.tok.Kind == TokenOperator && s.tok.Literal == word
}

func (s *parseState[R]) unexpected(expected ...TokenKind) error {
	return &SyntaxError{Pos: s.tok.Pos, Expected: expected, Found: s.tok}
}

// expect consumes a token of the given kind. The extra kinds are only
// reported in the error, for tokens that would also have been accepted at
// this point.
func (s *parseState[R]) expect(kind TokenKind, alsoAccepted ...TokenKind) (Token, error) {
	if s.tok.Kind != kind {
		return Token{}, s.unexpected(append([]TokenKind{kind}, alsoAccepted...)...)
	}
	tok := s.tok
	return tok, s.advance()
}

func (s *parseState[R]) parseFilter() (R, error) {
	left, err := s.parseAndTerm()
	if err != nil {
		return left, err
	}
	for s.isOperator("or") {
		if err := s.advance(); err != nil {
			return left, err
		}
		right, err := s.parseAndTerm()
		if err != nil {
			return right, err
		}
		if left, err = s.handler.OnLogicalFilter(left, right, OpOr, s.ctx); err != nil {
			return left, err
		}
	}
	return left, nil
}

func (s *parseState[R]) parseAndTerm() (R, error) {
	left, err := s.parseNotTerm()
	if err != nil {
		return left, err
	}
	for s.isOperator("and") {
		if err := s.advance(); err != nil {
			return left, err
		}
		right, err := s.parseNotTerm()
		if err != nil {
			return right, err
		}
		if left, err = s.handler.OnLogicalFilter(left, right, OpAnd, s.ctx); err != nil {
			return left, err
		}
	}
	return left, nil
}

func (s *parseState[R]) parseNotTerm() (R, error) {
	if !s.isOperator("not") {
		return s.parsePrimary()
	}
	if err := s.advance(); err != nil {
		var zero R
		return zero, err
	}
	inner, err := s.parsePrimary()
	if err != nil {
		return inner, err
	}
	return s.handler.OnNotFilter(inner, s.ctx)
}

func (s *parseState[R]) parsePrimary() (R, error) {
	var zero R
	switch s.tok.Kind {
	case TokenLParen:
		if err := s.advance(); err != nil {
			return zero, err
		}
		inner, err := s.parseFilter()
		if err != nil {
			return inner, err
		}
		if _, err := s.expect(TokenRParen, TokenOperator); err != nil {
			return zero, err
		}
		if s.grouped == nil {
			return inner, nil
		}
		return s.grouped.OnGroupedFilter(inner, s.ctx)
	case TokenSchemaURN, TokenIdentifier:
		return s.parseAttribute()
	default:
		return zero, s.unexpected(TokenLParen, TokenIdentifier, TokenSchemaURN)
	}
}

// parseAttribute reads `[urn:]path` followed by either a comparison or a
// bracketed sub-filter.
func (s *parseState[R]) parseAttribute() (R, error) {
	var zero R

	var schema string
	if s.tok.Kind == TokenSchemaURN {
		schema = s.tok.Literal
		if err := s.advance(); err != nil {
			return zero, err
		}
	}

	name, err := s.expect(TokenIdentifier)
	if err != nil {
		return zero, err
	}
	path := AttributePath{name.Literal}
	for s.tok.Kind == TokenDot {
		if err := s.advance(); err != nil {
			return zero, err
		}
		name, err := s.expect(TokenIdentifier)
		if err != nil {
			return zero, err
		}
		path = append(path, name.Literal)
	}

	switch s.tok.Kind {
	case TokenLBracket:
		if err := s.advance(); err != nil {
			return zero, err
		}
		if s.scope != nil {
			if err := s.scope.EnterNestedFilter(path, schema, s.ctx); err != nil {
				return zero, err
			}
		}
		sub, err := s.parseFilter()
		if err != nil {
			return sub, err
		}
		if _, err := s.expect(TokenRBracket, TokenOperator); err != nil {
			return zero, err
		}
		return s.handler.OnNestedFilter(path, schema, sub, s.ctx)

	case TokenCompareOp:
		op, _ := ParseCompareOp(s.tok.Literal)
		if err := s.advance(); err != nil {
			return zero, err
		}
		value := Absent
		if op == OpPresent {
			if isLiteralKind(s.tok.Kind) {
				return zero, s.unexpected(TokenOperator, TokenRParen, TokenRBracket, TokenEOF)
			}
		} else {
			if !isLiteralKind(s.tok.Kind) {
				return zero, s.unexpected(literalKinds...)
			}
			if value, err = literalFromToken(s.tok); err != nil {
				return zero, err
			}
			if err := s.advance(); err != nil {
				return zero, err
			}
		}
		return s.handler.OnAttributeFilter(path, op, value, schema, s.ctx)

	default:
		return zero, s.unexpected(TokenCompareOp, TokenLBracket, TokenDot)
	}
}
