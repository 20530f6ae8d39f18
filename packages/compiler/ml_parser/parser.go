package ml_parser

import (
	"fmt"
	"strings"

	"ngc-linker/packages/compiler/util"
)

// ParseTreeResult holds the root nodes of a template and every lexer and
// tree building error
type ParseTreeResult struct {
	RootNodes []Node
	Errors    []*util.ParseError
}

// Parse parses an HTML template. The source is the full file content; opts
// may restrict parsing to a range of it.
func Parse(source, url string, opts TokenizeOptions) *ParseTreeResult {
	tokenized := Tokenize(source, url, opts)
	tb := newTreeBuilder(tokenized.Tokens)
	tb.build()
	errs := append(tokenized.Errors, tb.errors...)
	return &ParseTreeResult{RootNodes: tb.rootNodes, Errors: errs}
}

type treeBuilder struct {
	tokens    []*Token
	index     int
	peek      *Token
	prev      *Token
	stack     []*Element
	rootNodes []Node
	errors    []*util.ParseError
}

func newTreeBuilder(tokens []*Token) *treeBuilder {
	tb := &treeBuilder{tokens: tokens, index: -1}
	tb.advance()
	return tb
}

func (tb *treeBuilder) build() {
	for tb.peek.Type != TokenEOF {
		switch tb.peek.Type {
		case TokenTagOpenStart, TokenIncompleteTagOpen:
			tb.consumeStartTag(tb.advance())
		case TokenTagClose:
			tb.consumeEndTag(tb.advance())
		case TokenText, TokenRawText:
			tb.consumeText(tb.advance())
		case TokenComment:
			tb.consumeComment(tb.advance())
		default:
			// stray tokens of a broken tag
			tb.advance()
		}
	}
}

// advance moves to the next token and returns the one it left
func (tb *treeBuilder) advance() *Token {
	tb.prev = tb.peek
	if tb.index < len(tb.tokens)-1 {
		tb.index++
	}
	tb.peek = tb.tokens[tb.index]
	return tb.prev
}

func (tb *treeBuilder) addError(span *util.ParseSourceSpan, format string, args ...interface{}) {
	tb.errors = append(tb.errors, util.NewParseError(span, fmt.Sprintf(format, args...)))
}

func (tb *treeBuilder) parent() *Element {
	if len(tb.stack) == 0 {
		return nil
	}
	return tb.stack[len(tb.stack)-1]
}

func (tb *treeBuilder) addToParent(node Node) {
	if parent := tb.parent(); parent != nil {
		parent.Children = append(parent.Children, node)
		return
	}
	tb.rootNodes = append(tb.rootNodes, node)
}

func (tb *treeBuilder) consumeText(token *Token) {
	text := token.Parts[0]
	if parent := tb.parent(); parent != nil && len(parent.Children) == 0 && ignoreFirstLf(parent.Name) {
		text = strings.TrimPrefix(text, "\n")
	}
	if text == "" {
		return
	}

	if parent := tb.parent(); parent != nil && len(parent.Children) > 0 {
		if last, ok := parent.Children[len(parent.Children)-1].(*Text); ok {
			last.Value += text
			last.sourceSpan = util.NewParseSourceSpan(last.sourceSpan.Start, token.SourceSpan.End, last.sourceSpan.FullStart, nil)
			return
		}
	}
	tb.addToParent(NewText(text, token.SourceSpan))
}

func ignoreFirstLf(name string) bool {
	switch strings.ToLower(name) {
	case "pre", "textarea", "listing":
		return true
	}
	return false
}

func (tb *treeBuilder) consumeComment(token *Token) {
	tb.addToParent(NewComment(strings.TrimSpace(token.Parts[0]), token.SourceSpan))
}

func (tb *treeBuilder) consumeStartTag(startTag *Token) {
	name := startTag.Parts[0]
	var attrs []*Attribute
	for tb.peek.Type == TokenAttrName {
		attrs = append(attrs, tb.consumeAttr(tb.advance()))
	}

	selfClosing := false
	switch tb.peek.Type {
	case TokenTagOpenEndVoid:
		tb.advance()
		selfClosing = true
		if !canSelfClose(name) {
			tb.addError(startTag.SourceSpan, "Only void, custom and foreign elements can be self closed %q", name)
		}
	case TokenTagOpenEnd:
		tb.advance()
	}

	start := startTag.SourceSpan
	startSpan := util.NewParseSourceSpan(start.Start, tb.prev.SourceSpan.End, start.FullStart, nil)
	span := util.NewParseSourceSpan(start.Start, tb.prev.SourceSpan.End, start.FullStart, nil)
	el := NewElement(name, attrs, nil, span, startSpan, nil)
	tb.addToParent(el)

	switch {
	case selfClosing:
		el.EndSourceSpan = startSpan
	case startTag.Type == TokenIncompleteTagOpen:
		tb.addError(span, "Opening tag %q not terminated.", name)
	case !IsVoidElement(name):
		tb.stack = append(tb.stack, el)
	}
}

func (tb *treeBuilder) consumeAttr(attrName *Token) *Attribute {
	name := attrName.Parts[0]
	end := attrName.SourceSpan.End
	value := ""
	var valueSpan *util.ParseSourceSpan

	quoted := tb.peek.Type == TokenAttrQuote
	if quoted {
		tb.advance()
	}
	if tb.peek.Type == TokenAttrValue {
		valueToken := tb.advance()
		value = valueToken.Parts[0]
		valueSpan = valueToken.SourceSpan
		end = valueToken.SourceSpan.End
	}
	if quoted && tb.peek.Type == TokenAttrQuote {
		end = tb.advance().SourceSpan.End
	}

	start := attrName.SourceSpan
	span := util.NewParseSourceSpan(start.Start, end, start.FullStart, nil)
	return NewAttribute(name, value, span, attrName.SourceSpan, valueSpan)
}

func (tb *treeBuilder) consumeEndTag(endTag *Token) {
	name := endTag.Parts[0]
	if IsVoidElement(name) {
		tb.addError(endTag.SourceSpan, "Void elements do not have end tags %q", name)
		return
	}
	if !tb.popElement(name, endTag.SourceSpan) {
		tb.addError(endTag.SourceSpan,
			"Unexpected closing tag %q. It may happen when the tag has already been closed by another tag.", name)
	}
}

func (tb *treeBuilder) popElement(name string, endSpan *util.ParseSourceSpan) bool {
	top := tb.parent()
	if top == nil || top.Name != name {
		return false
	}
	top.EndSourceSpan = endSpan
	top.sourceSpan = util.NewParseSourceSpan(top.sourceSpan.Start, endSpan.End, top.sourceSpan.FullStart, nil)
	tb.stack = tb.stack[:len(tb.stack)-1]
	return true
}
