package expression_parser

import (
	"errors"
	"fmt"
	"strings"

	"ngc-linker/packages/compiler/util"
)

// InterpolationConfig holds the delimiters of interpolations
type InterpolationConfig struct {
	Start string
	End   string
}

// DefaultInterpolationConfig is `{{ }}`
var DefaultInterpolationConfig = InterpolationConfig{Start: "{{", End: "}}"}

// InterpolationConfigFromArray validates and builds a config from a [start, end] pair
func InterpolationConfigFromArray(markers []string) (InterpolationConfig, error) {
	if markers == nil {
		return DefaultInterpolationConfig, nil
	}
	if err := util.AssertInterpolationSymbols("interpolation", markers); err != nil {
		return InterpolationConfig{}, err
	}
	return InterpolationConfig{Start: markers[0], End: markers[1]}, nil
}

var errNoInterpolation = errors.New("no interpolation found")

// InterpolationPiece is one raw string or expression section of an interpolation
type InterpolationPiece struct {
	Text  string
	Start int
	End   int
}

// SplitInterpolation is the result of splitting input at interpolation markers
type SplitInterpolation struct {
	Strings     []InterpolationPiece
	Expressions []InterpolationPiece
	Offsets     []int
}

// TemplateBindingParseResult is the result of parsing `*dir` microsyntax
type TemplateBindingParseResult struct {
	TemplateBindings []TemplateBinding
	Warnings         []string
	Errors           []*util.ParseError
}

type parseFlags int

const (
	parseFlagsNone parseFlags = iota
	parseFlagsAction
)

// Parser parses expressions found in templates
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

func getLocation(span *util.ParseSourceSpan) string {
	if span == nil || span.Start == nil {
		return "(unknown)"
	}
	return span.Start.String()
}

// ParseAction parses an event handler: chains and assignments are allowed,
// pipes are not.
func (p *Parser) ParseAction(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, config InterpolationConfig) *ASTWithSource {
	var errs []*util.ParseError
	p.checkNoInterpolation(&errs, input, sourceSpan, config)
	tokens := p.lexer.Tokenize(stripComments(input))
	ast := newParseAST(input, sourceSpan, absoluteOffset, tokens, parseFlagsAction, &errs, 0).parseChain()
	return NewASTWithSource(ast, input, getLocation(sourceSpan), absoluteOffset, errs)
}

// ParseBinding parses a property binding expression
func (p *Parser) ParseBinding(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, config InterpolationConfig) *ASTWithSource {
	var errs []*util.ParseError
	ast := p.parseBindingAST(input, sourceSpan, absoluteOffset, config, &errs)
	return NewASTWithSource(ast, input, getLocation(sourceSpan), absoluteOffset, errs)
}

// ParseSimpleBinding parses a host property binding, where pipes are rejected
func (p *Parser) ParseSimpleBinding(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, config InterpolationConfig) *ASTWithSource {
	var errs []*util.ParseError
	ast := p.parseBindingAST(input, sourceSpan, absoluteOffset, config, &errs)
	hasPipe := false
	Inspect(ast, func(node AST) bool {
		if _, ok := node.(*BindingPipe); ok {
			hasPipe = true
		}
		return !hasPipe
	})
	if hasPipe {
		errs = append(errs, getParseError("Host binding expression cannot contain pipes", input, "", sourceSpan))
	}
	return NewASTWithSource(ast, input, getLocation(sourceSpan), absoluteOffset, errs)
}

func (p *Parser) parseBindingAST(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, config InterpolationConfig, errs *[]*util.ParseError) AST {
	p.checkNoInterpolation(errs, input, sourceSpan, config)
	tokens := p.lexer.Tokenize(stripComments(input))
	return newParseAST(input, sourceSpan, absoluteOffset, tokens, parseFlagsNone, errs, 0).parseChain()
}

// ParseTemplateBindings parses the value of a `*key="value"` attribute.
//
//	*ngFor="let item of items; index as i; trackBy: func"
//
// yields ngFor (no value), item = $implicit, ngForOf = items, i = index and
// ngForTrackBy = func.
func (p *Parser) ParseTemplateBindings(templateKey, templateValue string, sourceSpan *util.ParseSourceSpan, absoluteKeyOffset, absoluteValueOffset int) *TemplateBindingParseResult {
	tokens := p.lexer.Tokenize(templateValue)
	var errs []*util.ParseError
	parser := newParseAST(templateValue, sourceSpan, absoluteValueOffset, tokens, parseFlagsNone, &errs, 0)
	return parser.parseTemplateBindings(&TemplateBindingIdentifier{
		Source: templateKey,
		Span:   AbsoluteSourceSpan{Start: absoluteKeyOffset, End: absoluteKeyOffset + len(templateKey)},
	})
}

// ParseInterpolation parses text containing interpolations. It returns nil
// when input has no interpolation at all.
func (p *Parser) ParseInterpolation(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, config InterpolationConfig) *ASTWithSource {
	var errs []*util.ParseError
	split, err := p.SplitInterpolation(input, sourceSpan, &errs, config)
	if err != nil {
		return nil
	}

	expressions := make([]AST, 0, len(split.Expressions))
	for i, piece := range split.Expressions {
		tokens := p.lexer.Tokenize(stripComments(piece.Text))
		ast := newParseAST(piece.Text, sourceSpan, absoluteOffset, tokens, parseFlagsNone, &errs, split.Offsets[i]).parseChain()
		expressions = append(expressions, ast)
	}

	strs := make([]string, len(split.Strings))
	for i, piece := range split.Strings {
		strs[i] = piece.Text
	}
	span := ParseSpan{Start: 0, End: len(input)}
	interpolation := NewInterpolation(span, span.ToAbsolute(absoluteOffset), strs, expressions)
	return NewASTWithSource(interpolation, input, getLocation(sourceSpan), absoluteOffset, errs)
}

// SplitInterpolation splits input into raw strings and expression sources.
// It fails with errNoInterpolation when no complete interpolation exists.
func (p *Parser) SplitInterpolation(input string, sourceSpan *util.ParseSourceSpan, errs *[]*util.ParseError, config InterpolationConfig) (*SplitInterpolation, error) {
	split := &SplitInterpolation{}
	i := 0
	atInterpolation := false
	extendLastString := false
	for i < len(input) {
		if !atInterpolation {
			start := i
			if idx := strings.Index(input[i:], config.Start); idx == -1 {
				i = len(input)
			} else {
				i += idx
			}
			split.Strings = append(split.Strings, InterpolationPiece{Text: input[start:i], Start: start, End: i})
			atInterpolation = true
			continue
		}

		fullStart := i
		exprStart := fullStart + len(config.Start)
		exprEnd := getInterpolationEndIndex(input, config.End, exprStart)
		if exprEnd == -1 {
			atInterpolation = false
			extendLastString = true
			break
		}
		fullEnd := exprEnd + len(config.End)
		text := input[exprStart:exprEnd]
		if strings.TrimSpace(text) == "" {
			*errs = append(*errs, getParseError(
				"Blank expressions are not allowed in interpolated strings",
				input, fmt.Sprintf("at column %d in", i), sourceSpan,
			))
		}
		split.Expressions = append(split.Expressions, InterpolationPiece{Text: text, Start: fullStart, End: fullEnd})
		split.Offsets = append(split.Offsets, exprStart)
		i = fullEnd
		atInterpolation = false
	}

	if !atInterpolation {
		if extendLastString {
			last := &split.Strings[len(split.Strings)-1]
			last.Text += input[i:]
			last.End = len(input)
		} else {
			split.Strings = append(split.Strings, InterpolationPiece{Text: input[i:], Start: i, End: len(input)})
		}
	}
	if len(split.Expressions) == 0 {
		return split, errNoInterpolation
	}
	return split, nil
}

func (p *Parser) checkNoInterpolation(errs *[]*util.ParseError, input string, sourceSpan *util.ParseSourceSpan, config InterpolationConfig) {
	startIndex := strings.Index(input, config.Start)
	if startIndex == -1 {
		return
	}
	endIndex := strings.Index(input[startIndex:], config.End)
	if endIndex == -1 {
		return
	}
	*errs = append(*errs, getParseError(
		fmt.Sprintf("Got interpolation (%s%s) where expression was expected", config.Start, config.End),
		input, fmt.Sprintf("at column %d in", startIndex), sourceSpan,
	))
}

// getInterpolationEndIndex finds end, skipping over quoted sections
func getInterpolationEndIndex(input, end string, start int) int {
	var quote byte
	escaped := false
	for i := start; i < len(input); i++ {
		ch := input[i]
		switch {
		case quote != 0:
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case strings.HasPrefix(input[i:], end):
			return i
		case strings.HasPrefix(input[i:], "//"):
			if idx := strings.Index(input[i:], end); idx != -1 {
				return i + idx
			}
			return -1
		}
	}
	return -1
}

// stripComments drops a trailing `//` comment that is not inside quotes
func stripComments(input string) string {
	var quote byte
	for i := 0; i < len(input)-1; i++ {
		ch := input[i]
		if quote != 0 {
			if ch == quote && (i == 0 || input[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		if ch == '\'' || ch == '"' || ch == '`' {
			quote = ch
			continue
		}
		if ch == '/' && input[i+1] == '/' {
			return input[:i]
		}
	}
	return input
}

func getParseError(message, input, locationText string, sourceSpan *util.ParseSourceSpan) *util.ParseError {
	if locationText != "" {
		locationText = " " + locationText + " "
	}
	msg := fmt.Sprintf("Parser Error: %s%s[%s] in %s", message, locationText, input, getLocation(sourceSpan))
	return util.NewParseError(sourceSpan, msg)
}

type parseAST struct {
	input             string
	location          *util.ParseSourceSpan
	absoluteOffset    int
	tokens            []*Token
	flags             parseFlags
	errors            *[]*util.ParseError
	offset            int
	index             int
	rparensExpected   int
	rbracketsExpected int
	rbracesExpected   int
}

func newParseAST(input string, sourceSpan *util.ParseSourceSpan, absoluteOffset int, tokens []*Token, flags parseFlags, errs *[]*util.ParseError, offset int) *parseAST {
	return &parseAST{
		input:          input,
		location:       sourceSpan,
		absoluteOffset: absoluteOffset,
		tokens:         tokens,
		flags:          flags,
		errors:         errs,
		offset:         offset,
	}
}

func (p *parseAST) peek(offset int) *Token {
	if i := p.index + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

func (p *parseAST) next() *Token { return p.peek(0) }

func (p *parseAST) atEOF() bool { return p.index >= len(p.tokens) }

func (p *parseAST) inputIndex() int {
	if p.atEOF() {
		return p.currentEndIndex()
	}
	return p.next().Index + p.offset
}

func (p *parseAST) currentEndIndex() int {
	if p.index > 0 {
		return p.peek(-1).End + p.offset
	}
	if len(p.tokens) == 0 {
		return len(p.input) + p.offset
	}
	return p.next().Index + p.offset
}

func (p *parseAST) currentAbsoluteOffset() int {
	return p.absoluteOffset + p.inputIndex()
}

func (p *parseAST) span(start int) ParseSpan {
	end := p.currentEndIndex()
	if start > end {
		start, end = end, start
	}
	return ParseSpan{Start: start, End: end}
}

func (p *parseAST) sourceSpan(start int) AbsoluteSourceSpan {
	return p.span(start).ToAbsolute(p.absoluteOffset)
}

func (p *parseAST) advance() { p.index++ }

func (p *parseAST) consumeOptionalCharacter(ch rune) bool {
	if p.next().IsCharacter(ch) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) expectCharacter(ch rune) {
	if !p.consumeOptionalCharacter(ch) {
		p.error(fmt.Sprintf("Missing expected %c", ch))
	}
}

func (p *parseAST) prettyPrintToken(tok *Token) string {
	if tok == EOF {
		return "end of input"
	}
	return "token " + tok.String()
}

func (p *parseAST) expectIdentifierOrKeyword() (string, bool) {
	n := p.next()
	if !n.IsIdentifier() && !n.IsKeyword() {
		p.error(fmt.Sprintf("Unexpected %s, expected identifier or keyword", p.prettyPrintToken(n)))
		return "", false
	}
	p.advance()
	return n.StrValue, true
}

func (p *parseAST) expectIdentifierOrKeywordOrString() string {
	n := p.next()
	if !n.IsIdentifier() && !n.IsKeyword() && !n.IsString() {
		p.error(fmt.Sprintf("Unexpected %s, expected identifier, keyword, or string", p.prettyPrintToken(n)))
		return ""
	}
	p.advance()
	return n.StrValue
}

func (p *parseAST) parseChain() AST {
	var exprs []AST
	start := p.inputIndex()
	for !p.atEOF() {
		exprs = append(exprs, p.parsePipe())

		if p.consumeOptionalCharacter(';') {
			if p.flags&parseFlagsAction == 0 {
				p.error("Binding expression cannot contain chained expression")
			}
			for p.consumeOptionalCharacter(';') {
			}
		} else if !p.atEOF() {
			errorIndex := p.index
			p.error(fmt.Sprintf("Unexpected token '%s'", p.next()))
			if p.index == errorIndex {
				break
			}
		}
	}
	switch len(exprs) {
	case 0:
		span := ParseSpan{Start: p.offset, End: p.offset + len(p.input)}
		return NewEmptyExpr(span, span.ToAbsolute(p.absoluteOffset))
	case 1:
		return exprs[0]
	}
	return NewChain(p.span(start), p.sourceSpan(start), exprs)
}

func (p *parseAST) parsePipe() AST {
	start := p.inputIndex()
	result := p.parseExpression()
	if !p.consumeOptionalOperator("|") {
		return result
	}
	if p.flags&parseFlagsAction != 0 {
		p.error("Cannot have a pipe in an action expression")
	}
	for {
		nameStart := p.inputIndex()
		name, _ := p.expectIdentifierOrKeyword()
		nameSpan := p.sourceSpan(nameStart)
		var args []AST
		for p.consumeOptionalCharacter(':') {
			args = append(args, p.parseExpression())
		}
		result = NewBindingPipe(p.span(start), p.sourceSpan(start), result, name, args, nameSpan)
		if !p.consumeOptionalOperator("|") {
			return result
		}
	}
}

func (p *parseAST) parseExpression() AST {
	return p.parseConditional()
}

func (p *parseAST) parseConditional() AST {
	start := p.inputIndex()
	result := p.parseLogicalOr()
	if !p.consumeOptionalOperator("?") {
		return result
	}
	yes := p.parsePipe()
	var no AST
	if !p.consumeOptionalCharacter(':') {
		end := p.inputIndex()
		expression := p.input[start-p.offset : end-p.offset]
		p.error(fmt.Sprintf("Conditional expression %s requires all 3 expressions", expression))
		no = NewEmptyExpr(p.span(start), p.sourceSpan(start))
	} else {
		no = p.parsePipe()
	}
	return NewConditional(p.span(start), p.sourceSpan(start), result, yes, no)
}

// parseBinaryLevel parses a left-associative chain of operators from ops,
// with operands parsed by next.
func (p *parseAST) parseBinaryLevel(next func() AST, ops ...string) AST {
	start := p.inputIndex()
	result := next()
	for {
		tok := p.next()
		if tok.Type != TokenTypeOperator {
			return result
		}
		matched := false
		for _, op := range ops {
			if tok.StrValue == op {
				matched = true
				break
			}
		}
		if !matched {
			return result
		}
		p.advance()
		right := next()
		result = NewBinary(p.span(start), p.sourceSpan(start), tok.StrValue, result, right)
	}
}

func (p *parseAST) parseLogicalOr() AST {
	return p.parseBinaryLevel(p.parseLogicalAnd, "||")
}

func (p *parseAST) parseLogicalAnd() AST {
	return p.parseBinaryLevel(p.parseNullishCoalescing, "&&")
}

func (p *parseAST) parseNullishCoalescing() AST {
	return p.parseBinaryLevel(p.parseEquality, "??")
}

func (p *parseAST) parseEquality() AST {
	return p.parseBinaryLevel(p.parseRelational, "==", "===", "!=", "!==")
}

func (p *parseAST) parseRelational() AST {
	return p.parseBinaryLevel(p.parseAdditive, "<", ">", "<=", ">=")
}

func (p *parseAST) parseAdditive() AST {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *parseAST) parseMultiplicative() AST {
	return p.parseBinaryLevel(p.parsePrefix, "*", "%", "/")
}

func (p *parseAST) parsePrefix() AST {
	tok := p.next()
	start := p.inputIndex()
	switch {
	case tok.IsOperator("+"), tok.IsOperator("-"):
		p.advance()
		result := p.parsePrefix()
		return NewUnary(p.span(start), p.sourceSpan(start), tok.StrValue, result)
	case tok.IsOperator("!"):
		p.advance()
		result := p.parsePrefix()
		return NewPrefixNot(p.span(start), p.sourceSpan(start), result)
	case tok.IsKeywordNamed("typeof"):
		p.advance()
		result := p.parsePrefix()
		return NewTypeofExpression(p.span(start), p.sourceSpan(start), result)
	}
	return p.parseCallChain()
}

func (p *parseAST) parseCallChain() AST {
	start := p.inputIndex()
	result := p.parsePrimary()
	for {
		switch {
		case p.consumeOptionalCharacter('.'):
			result = p.parseAccessMember(result, start, false)
		case p.consumeOptionalOperator("?."):
			if p.consumeOptionalCharacter('(') {
				result = p.parseCall(result, start, true)
			} else {
				result = p.parseAccessMember(result, start, true)
			}
		case p.consumeOptionalCharacter('['):
			result = p.parseKeyedReadOrWrite(result, start)
		case p.consumeOptionalCharacter('('):
			result = p.parseCall(result, start, false)
		case p.consumeOptionalOperator("!"):
			result = NewNonNullAssert(p.span(start), p.sourceSpan(start), result)
		default:
			return result
		}
	}
}

func (p *parseAST) parsePrimary() AST {
	start := p.inputIndex()
	tok := p.next()
	switch {
	case p.consumeOptionalCharacter('('):
		p.rparensExpected++
		result := p.parsePipe()
		p.rparensExpected--
		p.expectCharacter(')')
		return result
	case tok.IsKeywordNamed("null"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), nil)
	case tok.IsKeywordNamed("undefined"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), Undefined)
	case tok.IsKeywordNamed("true"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), true)
	case tok.IsKeywordNamed("false"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), false)
	case tok.IsKeywordNamed("this"):
		p.advance()
		return NewImplicitReceiver(p.span(start), p.sourceSpan(start), true)
	case p.consumeOptionalCharacter('['):
		p.rbracketsExpected++
		elements := p.parseExpressionList(']')
		p.rbracketsExpected--
		p.expectCharacter(']')
		return NewLiteralArray(p.span(start), p.sourceSpan(start), elements)
	case tok.IsCharacter('{'):
		return p.parseLiteralMap()
	case tok.IsIdentifier():
		receiver := NewImplicitReceiver(p.span(start), p.sourceSpan(start), false)
		return p.parseAccessMember(receiver, start, false)
	case tok.IsNumber():
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), tok.NumValue)
	case tok.IsString():
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), tok.StrValue)
	case p.atEOF():
		p.error("Unexpected end of expression: " + p.input)
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
	p.error(fmt.Sprintf("Unexpected token %s", tok))
	return NewEmptyExpr(p.span(start), p.sourceSpan(start))
}

func (p *parseAST) parseExpressionList(terminator rune) []AST {
	var result []AST
	for !p.next().IsCharacter(terminator) {
		result = append(result, p.parsePipe())
		if !p.consumeOptionalCharacter(',') {
			break
		}
	}
	return result
}

func (p *parseAST) parseLiteralMap() AST {
	var keys []LiteralMapKey
	var values []AST
	start := p.inputIndex()
	p.expectCharacter('{')
	if !p.consumeOptionalCharacter('}') {
		p.rbracesExpected++
		for {
			keyStart := p.inputIndex()
			quoted := p.next().IsString()
			key := p.expectIdentifierOrKeywordOrString()
			keys = append(keys, LiteralMapKey{Key: key, Quoted: quoted})
			switch {
			case quoted:
				p.expectCharacter(':')
				values = append(values, p.parsePipe())
			case p.consumeOptionalCharacter(':'):
				values = append(values, p.parsePipe())
			default:
				// shorthand `{foo}` reads foo from the context
				span := p.span(keyStart)
				sourceSpan := p.sourceSpan(keyStart)
				receiver := NewImplicitReceiver(span, sourceSpan, false)
				values = append(values, NewPropertyRead(span, sourceSpan, sourceSpan, receiver, key))
			}
			if !p.consumeOptionalCharacter(',') || p.next().IsCharacter('}') {
				break
			}
		}
		p.rbracesExpected--
		p.expectCharacter('}')
	}
	return NewLiteralMap(p.span(start), p.sourceSpan(start), keys, values)
}

func (p *parseAST) parseAccessMember(receiver AST, start int, isSafe bool) AST {
	nameStart := p.inputIndex()
	id, _ := p.expectIdentifierOrKeyword()
	nameSpan := p.sourceSpan(nameStart)

	if isSafe {
		if p.consumeOptionalOperator("=") {
			p.error("The '?.' operator cannot be used in the assignment")
			return NewEmptyExpr(p.span(start), p.sourceSpan(start))
		}
		return NewSafePropertyRead(p.span(start), p.sourceSpan(start), nameSpan, receiver, id)
	}
	if p.consumeOptionalOperator("=") {
		if p.flags&parseFlagsAction == 0 {
			p.error("Bindings cannot contain assignments")
			return NewEmptyExpr(p.span(start), p.sourceSpan(start))
		}
		value := p.parseConditional()
		return NewPropertyWrite(p.span(start), p.sourceSpan(start), nameSpan, receiver, id, value)
	}
	return NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, receiver, id)
}

func (p *parseAST) parseCall(receiver AST, start int, isSafe bool) AST {
	p.rparensExpected++
	var args []AST
	if !p.next().IsCharacter(')') {
		for {
			args = append(args, p.parsePipe())
			if !p.consumeOptionalCharacter(',') {
				break
			}
		}
	}
	p.expectCharacter(')')
	p.rparensExpected--
	if isSafe {
		return NewSafeCall(p.span(start), p.sourceSpan(start), receiver, args)
	}
	return NewCall(p.span(start), p.sourceSpan(start), receiver, args)
}

func (p *parseAST) parseKeyedReadOrWrite(receiver AST, start int) AST {
	p.rbracketsExpected++
	key := p.parsePipe()
	if _, ok := key.(*EmptyExpr); ok {
		p.error("Key access cannot be empty")
	}
	p.rbracketsExpected--
	p.expectCharacter(']')
	if p.consumeOptionalOperator("=") {
		if p.flags&parseFlagsAction == 0 {
			p.error("Bindings cannot contain assignments")
			return NewEmptyExpr(p.span(start), p.sourceSpan(start))
		}
		value := p.parseConditional()
		return NewKeyedWrite(p.span(start), p.sourceSpan(start), receiver, key, value)
	}
	return NewKeyedRead(p.span(start), p.sourceSpan(start), receiver, key)
}

func (p *parseAST) expectTemplateBindingKey() *TemplateBindingIdentifier {
	var sb strings.Builder
	start := p.currentAbsoluteOffset()
	for {
		sb.WriteString(p.expectIdentifierOrKeywordOrString())
		if !p.consumeOptionalOperator("-") {
			break
		}
		sb.WriteString("-")
	}
	key := sb.String()
	return &TemplateBindingIdentifier{Source: key, Span: AbsoluteSourceSpan{Start: start, End: start + len(key)}}
}

func (p *parseAST) parseTemplateBindings(templateKey *TemplateBindingIdentifier) *TemplateBindingParseResult {
	bindings := p.parseDirectiveKeywordBindings(templateKey)
	for !p.atEOF() {
		if letBinding := p.parseLetBinding(); letBinding != nil {
			bindings = append(bindings, letBinding)
		} else {
			// either `value as key` or `keyword expression`
			key := p.expectTemplateBindingKey()
			if asBinding := p.parseAsBinding(key); asBinding != nil {
				bindings = append(bindings, asBinding)
			} else {
				if key.Source != "" {
					key.Source = templateKey.Source + strings.ToUpper(key.Source[:1]) + key.Source[1:]
				}
				bindings = append(bindings, p.parseDirectiveKeywordBindings(key)...)
			}
		}
		p.consumeStatementTerminator()
	}
	return &TemplateBindingParseResult{TemplateBindings: bindings, Errors: *p.errors}
}

func (p *parseAST) parseDirectiveKeywordBindings(key *TemplateBindingIdentifier) []TemplateBinding {
	p.consumeOptionalCharacter(':') // trackBy: trackByFunction
	value := p.getDirectiveBoundTarget()
	spanEnd := p.currentAbsoluteOffset()
	// `*ngIf="cond as x"` binds x to the value of the ngIf key itself
	asBinding := p.parseAsBinding(key)
	if asBinding == nil {
		p.consumeStatementTerminator()
		spanEnd = p.currentAbsoluteOffset()
	}
	bindings := []TemplateBinding{&ExpressionBinding{
		SourceSpan: AbsoluteSourceSpan{Start: key.Span.Start, End: spanEnd},
		Key:        key,
		Value:      value,
	}}
	if asBinding != nil {
		bindings = append(bindings, asBinding)
	}
	return bindings
}

func (p *parseAST) getDirectiveBoundTarget() *ASTWithSource {
	if p.next() == EOF || p.next().IsKeywordNamed("as") || p.next().IsKeywordNamed("let") {
		return nil
	}
	ast := p.parsePipe()
	span := ast.Span()
	value := p.input[span.Start-p.offset : span.End-p.offset]
	return NewASTWithSource(ast, value, getLocation(p.location), p.absoluteOffset+span.Start, *p.errors)
}

func (p *parseAST) parseAsBinding(value *TemplateBindingIdentifier) TemplateBinding {
	if !p.next().IsKeywordNamed("as") {
		return nil
	}
	p.advance()
	key := p.expectTemplateBindingKey()
	p.consumeStatementTerminator()
	return &VariableBinding{
		SourceSpan: AbsoluteSourceSpan{Start: value.Span.Start, End: p.currentAbsoluteOffset()},
		Key:        key,
		Value:      value,
	}
}

func (p *parseAST) parseLetBinding() TemplateBinding {
	if !p.next().IsKeywordNamed("let") {
		return nil
	}
	spanStart := p.currentAbsoluteOffset()
	p.advance()
	key := p.expectTemplateBindingKey()
	var value *TemplateBindingIdentifier
	if p.consumeOptionalOperator("=") {
		value = p.expectTemplateBindingKey()
	}
	p.consumeStatementTerminator()
	return &VariableBinding{
		SourceSpan: AbsoluteSourceSpan{Start: spanStart, End: p.currentAbsoluteOffset()},
		Key:        key,
		Value:      value,
	}
}

func (p *parseAST) consumeStatementTerminator() {
	if !p.consumeOptionalCharacter(';') {
		p.consumeOptionalCharacter(',')
	}
}

func (p *parseAST) error(message string) {
	locationText := "at the end of the expression"
	if p.index < len(p.tokens) {
		locationText = fmt.Sprintf("at column %d in", p.tokens[p.index].Index+1)
	}
	*p.errors = append(*p.errors, getParseError(message, p.input, locationText, p.location))
	p.skip()
}

// skip drops tokens until a point where parsing can resume
func (p *parseAST) skip() {
	n := p.next()
	for !p.atEOF() &&
		!n.IsCharacter(';') &&
		!n.IsOperator("|") &&
		(p.rparensExpected <= 0 || !n.IsCharacter(')')) &&
		(p.rbracesExpected <= 0 || !n.IsCharacter('}')) &&
		(p.rbracketsExpected <= 0 || !n.IsCharacter(']')) {
		if n.IsError() {
			*p.errors = append(*p.errors, getParseError(n.StrValue, p.input, "", p.location))
		}
		p.advance()
		n = p.next()
	}
}
