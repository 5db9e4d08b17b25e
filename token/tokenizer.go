package token

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mstgnz/filesql/fault"
)

const maxLiteralDigits = 6

// Tokenize converts raw SQL text into a slice of Tokens. It is a
// tokenize-then-parse design: the whole input is scanned up front rather
// than streamed, matching basic-sql's SqlTokenizer.
//
// Every place the original tokenizer aborts the process (a dangling
// trailing '.', an unterminated string literal, a bare '!' not followed
// by '='), Tokenize instead returns a Tokenizer-kind *fault.Error with
// the offending position (see DESIGN.md Open Question 4).
func Tokenize(input string) ([]Token, error) {
	runes := []rune(input)
	var tokens []Token
	i := 0
	n := len(runes)

	for i < n {
		c := runes[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isAlpha(c):
			start := i
			for i < n && isAlnumOrUnderscore(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			upper := strings.ToUpper(word)
			if kw, ok := keywordNames[upper]; ok {
				tokens = append(tokens, Token{Type: TKeyword, Keyword: kw, Pos: start})
			} else if ct, ok := typeNames[upper]; ok {
				// The bare type name is tokenized here; an optional "(N)"
				// size suffix for VARCHAR/CHAR is read by the parser as
				// ordinary LEFT_PARENTHESIS/INTEGER_LITERAL/RIGHT_PARENTHESIS
				// tokens, matching basic-sql's parser::read_type.
				tokens = append(tokens, Token{Type: TType, ColType: ct, Pos: start})
			} else {
				tokens = append(tokens, Token{Type: TIdentifier, Identifier: word, Pos: start})
			}

		case isDigit(c):
			start := i
			for i < n && isDigit(runes[i]) && i-start < maxLiteralDigits {
				i++
			}
			if i < n && isDigit(runes[i]) {
				return nil, fault.New(fault.Tokenizer, "integer literal too large").WithContext("pos", start)
			}

			if i < n && runes[i] == '.' {
				dotPos := i
				i++
				fracStart := i
				for i < n && isDigit(runes[i]) && i-fracStart < maxLiteralDigits {
					i++
				}
				if i == fracStart {
					return nil, fault.New(fault.Tokenizer, "expected digits after '.' in float literal").WithContext("pos", dotPos)
				}
				if i < n && isDigit(runes[i]) {
					return nil, fault.New(fault.Tokenizer, "float literal too large").WithContext("pos", start)
				}
				text := string(runes[start:i])
				f, err := strconv.ParseFloat(text, 32)
				if err != nil {
					return nil, fault.Wrap(fault.Tokenizer, "malformed float literal", err).WithContext("pos", start)
				}
				tokens = append(tokens, Token{Type: TFloatLiteral, FloatLit: float32(f), Pos: start})
			} else {
				text := string(runes[start:i])
				v, err := strconv.ParseInt(text, 10, 32)
				if err != nil {
					return nil, fault.Wrap(fault.Tokenizer, "malformed integer literal", err).WithContext("pos", start)
				}
				tokens = append(tokens, Token{Type: TIntegerLiteral, IntLit: int32(v), Pos: start})
			}

		case c == '\'':
			start := i
			i++
			strStart := i
			closed := false
			for i < n {
				if runes[i] == '\'' {
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, fault.New(fault.Tokenizer, "unterminated string literal").WithContext("pos", start)
			}
			lit := string(runes[strStart:i])
			i++ // consume closing quote
			if lit == "" {
				return nil, fault.New(fault.Tokenizer, "empty string literal").WithContext("pos", start)
			}
			tokens = append(tokens, Token{Type: TStringLiteral, StrLit: lit, Pos: start})

		case c == ';':
			tokens = append(tokens, Token{Type: TSemicolon, Pos: i})
			i++
		case c == '(':
			tokens = append(tokens, Token{Type: TLeftParen, Pos: i})
			i++
		case c == ')':
			tokens = append(tokens, Token{Type: TRightParen, Pos: i})
			i++
		case c == ',':
			tokens = append(tokens, Token{Type: TComma, Pos: i})
			i++
		case c == '*':
			tokens = append(tokens, Token{Type: TAsterisk, Pos: i})
			i++
		case c == '.':
			tokens = append(tokens, Token{Type: TPeriod, Pos: i})
			i++
		case c == '=':
			tokens = append(tokens, Token{Type: TOperator, Op: Equals, Pos: i})
			i++
		case c == '>':
			tokens = append(tokens, Token{Type: TOperator, Op: GreaterThan, Pos: i})
			i++
		case c == '!':
			if i+1 >= n || runes[i+1] != '=' {
				return nil, fault.New(fault.Tokenizer, "expected '=' after '!'").WithContext("pos", i)
			}
			tokens = append(tokens, Token{Type: TOperator, Op: NotEqual, Pos: i})
			i += 2

		default:
			return nil, fault.New(fault.Tokenizer, fmt.Sprintf("unexpected character %q", c)).WithContext("pos", i)
		}
	}

	return tokens, nil
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlnumOrUnderscore(c rune) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}
