package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenUndefined
	tokenFunction
	tokenReturn
	tokenEq
	tokenStrictEq
	tokenNeq
	tokenStrictNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenDot
	tokenComma
	tokenSemicolon
	tokenArrow
)

type token struct {
	kind   tokenKind
	raw    string
	pos    int
	quoted string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string) {
		tokens = append(tokens, token{kind: kind, raw: raw, pos: i})
		i += len(raw)
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case ch == '(':
			emit(tokenLParen, "(")
		case ch == ')':
			emit(tokenRParen, ")")
		case ch == '{':
			emit(tokenLBrace, "{")
		case ch == '}':
			emit(tokenRBrace, "}")
		case ch == '[':
			emit(tokenLBracket, "[")
		case ch == ']':
			emit(tokenRBracket, "]")
		case ch == ',':
			emit(tokenComma, ",")
		case ch == ';':
			emit(tokenSemicolon, ";")
		case ch == '.' && !isDigit(peek(1)):
			emit(tokenDot, ".")
		case ch == '!':
			switch {
			case peek(1) == '=' && peek(2) == '=':
				emit(tokenStrictNeq, "!==")
			case peek(1) == '=':
				emit(tokenNeq, "!=")
			default:
				emit(tokenNot, "!")
			}
		case ch == '=':
			switch {
			case peek(1) == '=' && peek(2) == '=':
				emit(tokenStrictEq, "===")
			case peek(1) == '=':
				emit(tokenEq, "==")
			case peek(1) == '>':
				emit(tokenArrow, "=>")
			default:
				return nil, fmt.Errorf("visibility/expr: unexpected '=' at %d; assignment is not supported", i)
			}
		case ch == '<':
			if peek(1) == '=' {
				emit(tokenLte, "<=")
			} else {
				emit(tokenLt, "<")
			}
		case ch == '>':
			if peek(1) == '=' {
				emit(tokenGte, ">=")
			} else {
				emit(tokenGt, ">")
			}
		case ch == '&':
			if peek(1) != '&' {
				return nil, fmt.Errorf("visibility/expr: unexpected '&' at %d; use '&&'", i)
			}
			emit(tokenAnd, "&&")
		case ch == '|':
			if peek(1) != '|' {
				return nil, fmt.Errorf("visibility/expr: unexpected '|' at %d; use '||'", i)
			}
			emit(tokenOr, "||")
		case ch == '"' || ch == '\'':
			tok, err := scanString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = tok.pos + tok.length()
		case isDigit(ch) || (ch == '-' && (isDigit(peek(1)) || peek(1) == '.')) || (ch == '.' && isDigit(peek(1))):
			start := i
			i++
			for i < len(input) && (isDigit(input[i]) || input[i] == '.' || input[i] == 'e' || input[i] == 'E' ||
				((input[i] == '-' || input[i] == '+') && (input[i-1] == 'e' || input[i-1] == 'E'))) {
				i++
			}
			raw := input[start:i]
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid number literal %q", raw)
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: raw, pos: start})
		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			raw := input[start:i]
			tokens = append(tokens, token{kind: keywordKind(raw), raw: raw, pos: start})
		default:
			return nil, fmt.Errorf("visibility/expr: unsupported character %q at %d", ch, i)
		}
	}

	return tokens, nil
}

// length reports how many source bytes a string token spans. Only string
// tokens need it because their raw value is unquoted.
func (t token) length() int {
	return len(t.quoted)
}

func scanString(input string, start int) (token, error) {
	quote := input[start]
	var value strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		i++
		if c == quote {
			return token{kind: tokenString, raw: value.String(), pos: start, quoted: input[start:i]}, nil
		}
		if c != '\\' {
			value.WriteByte(c)
			continue
		}
		if i >= len(input) {
			break
		}
		esc := input[i]
		i++
		switch esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case '\\', '"', '\'':
			value.WriteByte(esc)
		default:
			return token{}, fmt.Errorf("visibility/expr: unsupported escape \\%c in string literal", esc)
		}
	}
	return token{}, errors.New("visibility/expr: unterminated string literal")
}

func keywordKind(raw string) tokenKind {
	switch raw {
	case "true", "false":
		return tokenBool
	case "null":
		return tokenNull
	case "undefined":
		return tokenUndefined
	case "function":
		return tokenFunction
	case "return":
		return tokenReturn
	default:
		return tokenIdentifier
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
