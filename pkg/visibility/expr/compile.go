package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies predicate sources.
type Kind string

const (
	KindExpression Kind = "expression"
	KindFunction   Kind = "function"
)

// BoundVariable is the name expression-form predicates use to reach the form
// values. Function-form predicates name it through their single parameter.
const BoundVariable = "formValues"

var (
	// ErrForbidden marks sources rejected for using a dynamic-code or
	// host-object construct.
	ErrForbidden = errors.New("visibility/expr: forbidden construct")
	// ErrMissingReturn marks function-form sources without a return.
	ErrMissingReturn = errors.New("visibility/expr: function predicate must return a value")
)

var forbiddenIdentifiers = map[string]struct{}{
	"eval":         {},
	"Function":     {},
	"constructor":  {},
	"__proto__":    {},
	"prototype":    {},
	"globalThis":   {},
	"window":       {},
	"document":     {},
	"process":      {},
	"require":      {},
	"import":       {},
	"setTimeout":   {},
	"setInterval":  {},
	"setImmediate": {},
	"new":          {},
	"this":         {},
	"fetch":        {},
}

var (
	functionShape = regexp.MustCompile(`^function\b`)
	arrowShape    = regexp.MustCompile(`^(\(\s*[A-Za-z_$][\w$]*\s*\)|\(\s*\)|[A-Za-z_$][\w$]*)\s*=>`)
	returnWord    = regexp.MustCompile(`\breturn\b`)
)

// Classify detects the predicate form from its shape: a function declaration
// or an arrow function is Function, anything else is Expression.
func Classify(source string) Kind {
	trimmed := strings.TrimSpace(source)
	if functionShape.MatchString(trimmed) || arrowShape.MatchString(trimmed) {
		return KindFunction
	}
	return KindExpression
}

// Program is a compiled predicate.
type Program struct {
	kind   Kind
	source string
	param  string
	root   node
}

// Kind reports the predicate form.
func (p *Program) Kind() Kind { return p.kind }

// Source returns the trimmed predicate source.
func (p *Program) Source() string { return p.source }

// Check statically validates a predicate without evaluating it.
func Check(source string) error {
	_, err := Compile(source)
	return err
}

// Compile parses source into a Program. Blank sources compile to a program
// that is always true. Every identifier in the source is screened against the
// forbidden list, function-form sources must contain a return, and any
// construct outside the grammar is rejected.
func Compile(source string) (*Program, error) {
	trimmed := strings.TrimSpace(source)
	kind := Classify(trimmed)
	program := &Program{kind: kind, source: trimmed}
	if trimmed == "" {
		return program, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens {
		if tok.kind != tokenIdentifier {
			continue
		}
		if _, blocked := forbiddenIdentifiers[tok.raw]; blocked {
			return nil, fmt.Errorf("%w: %q is not allowed", ErrForbidden, tok.raw)
		}
	}

	stream := &tokenStream{tokens: tokens}
	if kind == KindFunction {
		if !returnWord.MatchString(trimmed) {
			return nil, ErrMissingReturn
		}
		param, err := parseFunctionHeader(stream)
		if err != nil {
			return nil, err
		}
		program.param = param
		stream.binding = param
		root, err := parseBlock(stream)
		if err != nil {
			return nil, err
		}
		program.root = root
	} else {
		stream.binding = BoundVariable
		root, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		program.root = root
	}

	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return program, nil
}

type tokenStream struct {
	tokens  []token
	pos     int
	binding string
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) match(kind tokenKind) bool {
	tok, ok := s.peek()
	if !ok || tok.kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	tok, ok := s.peek()
	if !ok || tok.kind != kind {
		return token{}, false
	}
	s.pos++
	return tok, true
}

func (s *tokenStream) expect(kind tokenKind, what string) error {
	if s.match(kind) {
		return nil
	}
	if tok, ok := s.peek(); ok {
		return fmt.Errorf("visibility/expr: expected %s, got %q", what, tok.raw)
	}
	return fmt.Errorf("visibility/expr: expected %s at end of input", what)
}

// parseFunctionHeader accepts `function [name](param)` and `(param) =>` or
// `param =>`, returning the parameter name (empty when there is none).
func parseFunctionHeader(s *tokenStream) (string, error) {
	if s.match(tokenFunction) {
		s.consume(tokenIdentifier)
		if err := s.expect(tokenLParen, "'('"); err != nil {
			return "", err
		}
		param, err := parseParams(s)
		if err != nil {
			return "", err
		}
		return param, nil
	}

	if ident, ok := s.consume(tokenIdentifier); ok {
		if err := s.expect(tokenArrow, "'=>'"); err != nil {
			return "", err
		}
		return ident.raw, nil
	}

	if err := s.expect(tokenLParen, "'('"); err != nil {
		return "", err
	}
	param, err := parseParams(s)
	if err != nil {
		return "", err
	}
	if err := s.expect(tokenArrow, "'=>'"); err != nil {
		return "", err
	}
	return param, nil
}

// parseParams consumes an optional single parameter and the closing paren.
func parseParams(s *tokenStream) (string, error) {
	param := ""
	if ident, ok := s.consume(tokenIdentifier); ok {
		param = ident.raw
	}
	if s.match(tokenComma) {
		return "", errors.New("visibility/expr: predicate functions take a single values parameter")
	}
	if err := s.expect(tokenRParen, "')'"); err != nil {
		return "", err
	}
	return param, nil
}

// parseBlock accepts `{ return <expr> [;] }`.
func parseBlock(s *tokenStream) (node, error) {
	if err := s.expect(tokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	if err := s.expect(tokenReturn, "'return'"); err != nil {
		return nil, errors.New("visibility/expr: function body must be a single return statement")
	}
	body, err := parseOr(s)
	if err != nil {
		return nil, err
	}
	s.match(tokenSemicolon)
	if err := s.expect(tokenRBrace, "'}'"); err != nil {
		return nil, errors.New("visibility/expr: function body must be a single return statement")
	}
	return body, nil
}

func parseOr(s *tokenStream) (node, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *tokenStream) (node, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(s *tokenStream) (node, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parseCompare(s)
}

func parseCompare(s *tokenStream) (node, error) {
	left, err := parseOperand(s)
	if err != nil {
		return nil, err
	}
	tok, ok := s.peek()
	if !ok {
		return left, nil
	}
	switch tok.kind {
	case tokenEq, tokenStrictEq, tokenNeq, tokenStrictNeq, tokenLt, tokenLte, tokenGt, tokenGte:
		s.pos++
		right, err := parseOperand(s)
		if err != nil {
			return nil, err
		}
		return compareNode{op: tok.kind, left: left, right: right}, nil
	default:
		return left, nil
	}
}

func parseOperand(s *tokenStream) (node, error) {
	tok, ok := s.peek()
	if !ok {
		return nil, errors.New("visibility/expr: unexpected end of expression")
	}
	switch tok.kind {
	case tokenLParen:
		s.pos++
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	case tokenString:
		s.pos++
		return literalNode{value: tok.raw}, nil
	case tokenNumber:
		s.pos++
		value, _ := parseNumber(tok.raw)
		return literalNode{value: value}, nil
	case tokenBool:
		s.pos++
		return literalNode{value: tok.raw == "true"}, nil
	case tokenNull, tokenUndefined:
		s.pos++
		return literalNode{value: nil}, nil
	case tokenIdentifier:
		return parsePath(s)
	default:
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", tok.raw)
	}
}

func parsePath(s *tokenStream) (node, error) {
	root, _ := s.consume(tokenIdentifier)
	if s.binding == "" || root.raw != s.binding {
		return nil, fmt.Errorf("visibility/expr: unknown identifier %q; values are reached through %q", root.raw, bindingName(s.binding))
	}

	var segments []string
	for {
		switch {
		case s.match(tokenDot):
			name, ok := s.consume(tokenIdentifier)
			if !ok {
				if next, has := s.peek(); has && isKeywordToken(next.kind) {
					s.pos++
					segments = append(segments, next.raw)
					continue
				}
				return nil, errors.New("visibility/expr: expected property name after '.'")
			}
			segments = append(segments, name.raw)
		case s.match(tokenLBracket):
			tok, ok := s.peek()
			if !ok || (tok.kind != tokenString && tok.kind != tokenNumber) {
				return nil, errors.New("visibility/expr: computed member access must use a string or number literal")
			}
			s.pos++
			if !s.match(tokenRBracket) {
				return nil, errors.New("visibility/expr: missing closing ']'")
			}
			segments = append(segments, tok.raw)
		case peekIs(s, tokenLParen):
			return nil, errors.New("visibility/expr: function calls are not supported")
		default:
			return pathNode{segments: segments}, nil
		}
	}
}

func peekIs(s *tokenStream, kind tokenKind) bool {
	tok, ok := s.peek()
	return ok && tok.kind == kind
}

func isKeywordToken(kind tokenKind) bool {
	switch kind {
	case tokenBool, tokenNull, tokenUndefined, tokenFunction, tokenReturn:
		return true
	default:
		return false
	}
}

func bindingName(binding string) string {
	if binding == "" {
		return "the function parameter"
	}
	return binding
}
