package ml_parser

import (
	"fmt"
	"html"
	"strings"

	"ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/util"
)

// TokenType is the kind of a lexer token
type TokenType int

const (
	TokenTagOpenStart TokenType = iota
	TokenAttrName
	TokenAttrQuote
	TokenAttrValue
	TokenTagOpenEnd
	TokenTagOpenEndVoid
	TokenIncompleteTagOpen
	TokenTagClose
	TokenText
	TokenRawText
	TokenComment
	TokenEOF
)

var tokenTypeNames = [...]string{
	"TAG_OPEN_START", "ATTR_NAME", "ATTR_QUOTE", "ATTR_VALUE", "TAG_OPEN_END",
	"TAG_OPEN_END_VOID", "INCOMPLETE_TAG_OPEN", "TAG_CLOSE", "TEXT", "RAW_TEXT",
	"COMMENT", "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexer token. Parts holds the decoded payload, e.g. the tag name
// or the attribute value.
type Token struct {
	Type       TokenType
	Parts      []string
	SourceSpan *util.ParseSourceSpan
}

// NGSPUnicode is what the `&ngsp;` pseudo-entity decodes to
const NGSPUnicode = "\uE500"

// TokenizeOptions configures the lexer
type TokenizeOptions struct {
	// Range restricts lexing to a part of the file, e.g. a template inside a
	// string literal of a JS file.
	Range *Range
	// EscapedString makes the lexer decode JS string escapes in the source.
	EscapedString       bool
	InterpolationConfig expression_parser.InterpolationConfig
}

// TokenizeResult is the output of Tokenize
type TokenizeResult struct {
	Tokens []*Token
	Errors []*util.ParseError
}

// lexError unwinds the tokenizer back to the main loop
type lexError struct {
	msg  string
	span *util.ParseSourceSpan
}

// Tokenize splits an HTML template into tokens
func Tokenize(source, url string, opts TokenizeOptions) *TokenizeResult {
	file := util.NewParseSourceFile(source, url)
	t := newTokenizer(file, opts)
	t.tokenize()
	return &TokenizeResult{Tokens: t.tokens, Errors: t.errors}
}

type tokenizer struct {
	cur        cursor
	interp     expression_parser.InterpolationConfig
	tokens     []*Token
	errors     []*util.ParseError
	tokenStart cursor
	tokenType  TokenType
}

func newTokenizer(file *util.ParseSourceFile, opts TokenizeOptions) *tokenizer {
	r := Range{EndPos: len(file.Content)}
	if opts.Range != nil {
		r = *opts.Range
	}
	var cur cursor
	if opts.EscapedString {
		cur = newEscapedCursor(file, r)
	} else {
		cur = newPlainCursor(file, r)
	}
	interp := opts.InterpolationConfig
	if interp.Start == "" {
		interp = expression_parser.DefaultInterpolationConfig
	}
	return &tokenizer{cur: cur, interp: interp}
}

func (t *tokenizer) tokenize() {
	if err := t.cur.init(); err != nil {
		t.errors = append(t.errors, util.NewParseError(t.cur.getSpan(t.cur), err.Error()))
	}
	for t.cur.peek() != eof {
		before := t.cur.clone()
		if !t.step() && t.cur.diff(before) == 0 {
			// no progress after an error; drop the offending character
			_ = t.cur.advance()
		}
	}
	t.beginToken(TokenEOF)
	t.endToken()
}

// step consumes one construct, reporting false when it failed
func (t *tokenizer) step() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			le, isLexErr := r.(*lexError)
			if !isLexErr {
				panic(r)
			}
			t.errors = append(t.errors, util.NewParseError(le.span, le.msg))
			ok = false
		}
	}()

	start := t.cur.clone()
	switch {
	case t.attemptStr("<!--"):
		t.consumeComment(start)
	case t.attemptStr("</"):
		t.consumeTagClose(start)
	case t.attemptStr("<!"):
		// doctype and CDATA have no meaning in templates
		t.requireUntil(func(ch rune) bool { return ch == '>' })
		t.advance()
	case t.isTagStart():
		t.consumeTagOpen(start)
	default:
		t.consumeText()
	}
	return true
}

func (t *tokenizer) errorf(span *util.ParseSourceSpan, format string, args ...interface{}) *lexError {
	return &lexError{msg: fmt.Sprintf(format, args...), span: span}
}

func unexpectedCharacterMsg(ch rune) string {
	if ch == eof {
		return `Unexpected character "EOF"`
	}
	return fmt.Sprintf("Unexpected character %q", string(ch))
}

func (t *tokenizer) beginToken(typ TokenType) {
	t.beginTokenAt(typ, t.cur.clone())
}

func (t *tokenizer) beginTokenAt(typ TokenType, start cursor) {
	t.tokenStart = start
	t.tokenType = typ
}

func (t *tokenizer) endToken(parts ...string) *Token {
	tok := &Token{Type: t.tokenType, Parts: parts, SourceSpan: t.cur.getSpan(t.tokenStart)}
	t.tokens = append(t.tokens, tok)
	t.tokenStart = nil
	return tok
}

func (t *tokenizer) advance() {
	if err := t.cur.advance(); err != nil {
		panic(t.errorf(t.cur.getSpan(t.cur), "%s", unexpectedCharacterMsg(eof)))
	}
}

func (t *tokenizer) attemptCharCode(ch rune) bool {
	if t.cur.peek() == ch {
		t.advance()
		return true
	}
	return false
}

func (t *tokenizer) requireCharCode(ch rune) {
	start := t.cur.clone()
	if !t.attemptCharCode(ch) {
		panic(t.errorf(t.cur.getSpan(start), "%s", unexpectedCharacterMsg(t.cur.peek())))
	}
}

func (t *tokenizer) attemptStr(s string) bool {
	if t.cur.charsLeft() < len(s) {
		return false
	}
	saved := t.cur.clone()
	for _, ch := range s {
		if t.cur.peek() != ch {
			t.cur = saved
			return false
		}
		if err := t.cur.advance(); err != nil {
			t.cur = saved
			return false
		}
	}
	return true
}

func (t *tokenizer) attemptUntil(end func(rune) bool) {
	for !end(t.cur.peek()) {
		t.advance()
	}
}

// requireUntil is attemptUntil that fails on end of input
func (t *tokenizer) requireUntil(end func(rune) bool) {
	for !end(t.cur.peek()) {
		if t.cur.peek() == eof {
			panic(t.errorf(t.cur.getSpan(t.cur), "%s", unexpectedCharacterMsg(eof)))
		}
		t.advance()
	}
}

func (t *tokenizer) skipWhitespace() {
	t.attemptUntil(func(ch rune) bool { return !util.IsWhitespace(ch) })
}

func (t *tokenizer) isTagStart() bool {
	if t.cur.peek() != '<' {
		return false
	}
	next := t.cur.clone()
	if err := next.advance(); err != nil {
		return false
	}
	return util.IsAsciiLetter(next.peek())
}

func isNameEnd(ch rune) bool {
	return util.IsWhitespace(ch) || ch == '>' || ch == '<' || ch == '/' ||
		ch == '\'' || ch == '"' || ch == '=' || ch == eof
}

func (t *tokenizer) consumeComment(start cursor) {
	t.beginTokenAt(TokenComment, start)
	contentStart := t.cur.clone()
	for !t.attemptStr("-->") {
		if t.cur.peek() == eof {
			panic(t.errorf(t.cur.getSpan(start), "%s", unexpectedCharacterMsg(eof)))
		}
		t.advance()
	}
	content := t.cur.getChars(contentStart)
	t.endToken(strings.TrimSuffix(content, "-->"))
}

func (t *tokenizer) consumeTagOpen(start cursor) {
	var openToken *Token
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*lexError); !ok || openToken == nil {
				panic(r)
			}
			// the tree builder reports the unterminated tag
			openToken.Type = TokenIncompleteTagOpen
		}
	}()

	t.beginTokenAt(TokenTagOpenStart, start)
	t.advance() // <
	nameStart := t.cur.clone()
	t.attemptUntil(isNameEnd)
	name := t.cur.getChars(nameStart)
	openToken = t.endToken(name)
	t.skipWhitespace()

	for p := t.cur.peek(); p != '/' && p != '>' && p != '<' && p != eof; p = t.cur.peek() {
		t.consumeAttributeName()
		t.skipWhitespace()
		if t.attemptCharCode('=') {
			t.skipWhitespace()
			t.consumeAttributeValue()
		}
		t.skipWhitespace()
	}

	t.consumeTagOpenEnd()
	if isRawTextElement(name) && t.tokens[len(t.tokens)-1].Type == TokenTagOpenEnd {
		t.consumeRawTextWithTagClose(name)
	}
}

func (t *tokenizer) consumeAttributeName() {
	if p := t.cur.peek(); p == '\'' || p == '"' {
		panic(t.errorf(t.cur.getSpan(t.cur), "%s", unexpectedCharacterMsg(p)))
	}
	t.beginToken(TokenAttrName)
	nameStart := t.cur.clone()
	t.attemptUntil(isNameEnd)
	t.endToken(t.cur.getChars(nameStart))
}

func (t *tokenizer) consumeAttributeValue() {
	if quote := t.cur.peek(); quote == '\'' || quote == '"' {
		t.beginToken(TokenAttrQuote)
		t.advance()
		t.endToken(string(quote))

		t.beginToken(TokenAttrValue)
		valueStart := t.cur.clone()
		t.requireUntil(func(ch rune) bool { return ch == quote })
		t.endToken(decodeEntities(t.cur.getChars(valueStart)))

		t.beginToken(TokenAttrQuote)
		t.advance()
		t.endToken(string(quote))
		return
	}
	t.beginToken(TokenAttrValue)
	valueStart := t.cur.clone()
	t.attemptUntil(isNameEnd)
	t.endToken(decodeEntities(t.cur.getChars(valueStart)))
}

func (t *tokenizer) consumeTagOpenEnd() {
	start := t.cur.clone()
	if t.attemptStr("/>") {
		t.beginTokenAt(TokenTagOpenEndVoid, start)
		t.endToken()
		return
	}
	t.beginToken(TokenTagOpenEnd)
	t.requireCharCode('>')
	t.endToken()
}

func (t *tokenizer) consumeTagClose(start cursor) {
	t.beginTokenAt(TokenTagClose, start)
	t.skipWhitespace()
	nameStart := t.cur.clone()
	t.attemptUntil(isNameEnd)
	name := t.cur.getChars(nameStart)
	t.skipWhitespace()
	t.requireCharCode('>')
	t.endToken(name)
}

func (t *tokenizer) consumeRawTextWithTagClose(tagName string) {
	t.beginToken(TokenRawText)
	textStart := t.cur.clone()
	for {
		tagCloseStart := t.cur.clone()
		if t.attemptStr("</") {
			nameStart := t.cur.clone()
			t.attemptUntil(isNameEnd)
			if strings.EqualFold(t.cur.getChars(nameStart), tagName) {
				t.cur = tagCloseStart
				break
			}
			continue
		}
		if t.cur.peek() == eof {
			panic(t.errorf(t.cur.getSpan(textStart), "%s", unexpectedCharacterMsg(eof)))
		}
		t.advance()
	}
	t.endToken(t.cur.getChars(textStart))

	start := t.cur.clone()
	t.attemptStr("</")
	t.consumeTagClose(start)
}

// consumeText reads text up to the next tag. A `<` inside an interpolation
// does not end the text.
func (t *tokenizer) consumeText() {
	t.beginToken(TokenText)
	textStart := t.cur.clone()
	inInterpolation := false
	for {
		switch {
		case !inInterpolation && t.attemptStr(t.interp.Start):
			inInterpolation = true
		case inInterpolation && t.attemptStr(t.interp.End):
			inInterpolation = false
		default:
			t.advance()
		}
		if t.isTextEnd(inInterpolation) {
			break
		}
	}
	t.endToken(decodeEntities(t.cur.getChars(textStart)))
}

func (t *tokenizer) isTextEnd(inInterpolation bool) bool {
	p := t.cur.peek()
	if p == eof {
		return true
	}
	if inInterpolation || p != '<' {
		return false
	}
	next := t.cur.clone()
	if err := next.advance(); err != nil {
		return true
	}
	n := next.peek()
	return util.IsAsciiLetter(n) || n == '/' || n == '!'
}

func decodeEntities(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return html.UnescapeString(strings.ReplaceAll(text, "&ngsp;", NGSPUnicode))
}
