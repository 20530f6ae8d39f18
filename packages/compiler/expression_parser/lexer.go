// Package expression_parser parses binding expressions, event actions,
// interpolations and `*directive` microsyntax found in templates.
package expression_parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"ngc-linker/packages/compiler/util"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeError
)

var keywords = map[string]bool{
	"var":       true,
	"let":       true,
	"as":        true,
	"null":      true,
	"undefined": true,
	"true":      true,
	"false":     true,
	"if":        true,
	"else":      true,
	"this":      true,
	"typeof":    true,
}

// Token is one lexed unit of an expression. Index and End are byte offsets.
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

func (t *Token) IsCharacter(ch rune) bool {
	return t.Type == TokenTypeCharacter && rune(t.NumValue) == ch
}

func (t *Token) IsNumber() bool     { return t.Type == TokenTypeNumber }
func (t *Token) IsString() bool     { return t.Type == TokenTypeString }
func (t *Token) IsIdentifier() bool { return t.Type == TokenTypeIdentifier }
func (t *Token) IsKeyword() bool    { return t.Type == TokenTypeKeyword }
func (t *Token) IsError() bool      { return t.Type == TokenTypeError }

func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

func (t *Token) IsKeywordNamed(name string) bool {
	return t.Type == TokenTypeKeyword && t.StrValue == name
}

func (t *Token) String() string {
	switch t.Type {
	case TokenTypeNumber:
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	case TokenTypeCharacter, TokenTypeIdentifier, TokenTypeKeyword, TokenTypeOperator, TokenTypeString, TokenTypeError:
		return t.StrValue
	}
	return ""
}

// EOF is returned when peeking past the last token
var EOF = &Token{Index: -1, End: -1, Type: TokenTypeCharacter}

// Lexer splits an expression into tokens
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize tokenizes the given text
func (l *Lexer) Tokenize(text string) []*Token {
	s := newScanner(text)
	var tokens []*Token
	for tok := s.scanToken(); tok != nil; tok = s.scanToken() {
		tokens = append(tokens, tok)
	}
	return tokens
}

const eofRune = rune(0)

type scanner struct {
	input string
	peek  rune
	index int
	width int
}

func newScanner(input string) *scanner {
	s := &scanner{input: input}
	s.decode()
	return s
}

func (s *scanner) decode() {
	if s.index >= len(s.input) {
		s.peek, s.width = eofRune, 0
		return
	}
	s.peek, s.width = utf8.DecodeRuneInString(s.input[s.index:])
}

func (s *scanner) advance() {
	s.index += s.width
	s.decode()
}

func (s *scanner) scanToken() *Token {
	for s.index < len(s.input) && util.IsWhitespace(s.peek) {
		s.advance()
	}
	if s.index >= len(s.input) {
		return nil
	}

	peek := s.peek
	start := s.index
	if isIdentifierStart(peek) {
		return s.scanIdentifier()
	}
	if util.IsDigit(peek) {
		return s.scanNumber(start)
	}

	switch peek {
	case '.':
		s.advance()
		if util.IsDigit(s.peek) {
			return s.scanNumber(start)
		}
		return newCharacterToken(start, s.index, '.')
	case '(', ')', '{', '}', '[', ']', ',', ':', ';':
		s.advance()
		return newCharacterToken(start, s.index, peek)
	case '\'', '"':
		return s.scanString()
	case '+', '-', '*', '/', '%', '^':
		s.advance()
		return newOperatorToken(start, s.index, string(peek))
	case '?':
		return s.scanQuestion(start)
	case '<', '>':
		return s.scanComplexOperator(start, string(peek), '=', "=", 0)
	case '!', '=':
		return s.scanComplexOperator(start, string(peek), '=', "=", '=')
	case '&':
		return s.scanComplexOperator(start, "&", '&', "&", 0)
	case '|':
		return s.scanComplexOperator(start, "|", '|', "|", 0)
	}

	s.advance()
	return s.error("Unexpected character ["+string(peek)+"]", 0)
}

func (s *scanner) scanComplexOperator(start int, one string, twoCode rune, two string, threeCode rune) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
	}
	if threeCode != 0 && s.peek == threeCode {
		s.advance()
		str += string(threeCode)
	}
	return newOperatorToken(start, s.index, str)
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	operator := "?"
	switch s.peek {
	case '?':
		operator += "?"
		s.advance()
	case '.':
		operator += "."
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	if keywords[str] {
		return &Token{Index: start, End: s.index, Type: TokenTypeKeyword, StrValue: str}
	}
	return &Token{Index: start, End: s.index, Type: TokenTypeIdentifier, StrValue: str}
}

func (s *scanner) scanNumber(start int) *Token {
	simple := s.index == start
	s.advance()
	for {
		if util.IsDigit(s.peek) {
			// digits continue the literal
		} else if s.peek == '.' {
			simple = false
		} else if s.peek == 'e' || s.peek == 'E' {
			s.advance()
			if s.peek == '-' || s.peek == '+' {
				s.advance()
			}
			if !util.IsDigit(s.peek) {
				return s.error("Invalid exponent", -1)
			}
			simple = false
		} else {
			break
		}
		s.advance()
	}

	str := s.input[start:s.index]
	var value float64
	if simple {
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return s.error("Invalid number ["+str+"]", 0)
		}
		value = float64(n)
	} else {
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return s.error("Invalid number ["+str+"]", 0)
		}
		value = f
	}
	return &Token{Index: start, End: s.index, Type: TokenTypeNumber, NumValue: value}
}

func (s *scanner) scanString() *Token {
	start := s.index
	quote := s.peek
	s.advance()

	var buffer strings.Builder
	marker := s.index
	for s.peek != quote {
		switch {
		case s.index >= len(s.input):
			return s.error("Unterminated quote", 0)
		case s.peek == '\\':
			buffer.WriteString(s.input[marker:s.index])
			s.advance()
			if s.peek == 'u' {
				if s.index+5 > len(s.input) {
					return s.error("Invalid unicode escape", 0)
				}
				hex := s.input[s.index+1 : s.index+5]
				code, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return s.error("Invalid unicode escape [\\u"+hex+"]", 0)
				}
				buffer.WriteRune(rune(code))
				for range 5 {
					s.advance()
				}
			} else {
				buffer.WriteRune(unescape(s.peek))
				s.advance()
			}
			marker = s.index
		default:
			s.advance()
		}
	}

	buffer.WriteString(s.input[marker:s.index])
	s.advance()
	return &Token{Index: start, End: s.index, Type: TokenTypeString, StrValue: buffer.String()}
}

func (s *scanner) error(message string, offset int) *Token {
	position := s.index + offset
	return &Token{
		Index:    position,
		End:      s.index,
		Type:     TokenTypeError,
		StrValue: "Lexer Error: " + message + " at column " + strconv.Itoa(position) + " in expression [" + s.input + "]",
	}
}

func isIdentifierStart(ch rune) bool {
	return util.IsAsciiLetter(ch) || ch == '_' || ch == '$'
}

func isIdentifierPart(ch rune) bool {
	return util.IsAsciiLetter(ch) || util.IsDigit(ch) || ch == '_' || ch == '$'
}

// IsIdentifier reports whether input is a valid identifier
func IsIdentifier(input string) bool {
	if input == "" {
		return false
	}
	for i, ch := range input {
		if i == 0 && !isIdentifierStart(ch) {
			return false
		}
		if !isIdentifierPart(ch) {
			return false
		}
	}
	return true
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	}
	return ch
}

func newCharacterToken(index, end int, ch rune) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeCharacter, NumValue: float64(ch), StrValue: string(ch)}
}

func newOperatorToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeOperator, StrValue: text}
}
