package jsast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const indentUnit = "  "

// Mapping links a position in printed output to a source position. An empty
// URL refers to the file the borrowed node was parsed from.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	URL             string
	Content         string
	Line            int
	Column          int
}

// Printer writes jsast trees as JavaScript source, recording a Mapping for
// every node that carries a location
type Printer struct {
	sb       strings.Builder
	line     int
	col      int
	indent   int
	mappings []Mapping
}

// NewPrinter creates a printer whose first line starts at indent levels
func NewPrinter(indent int) *Printer {
	return &Printer{indent: indent}
}

// Print renders a single node
func Print(node Node) string {
	p := NewPrinter(0)
	p.Node(node)
	return p.String()
}

func (p *Printer) String() string {
	return p.sb.String()
}

// Mappings returns the recorded mappings in output order
func (p *Printer) Mappings() []Mapping {
	return p.mappings
}

// Node prints any statement, expression or program
func (p *Printer) Node(node Node) {
	switch n := node.(type) {
	case *Program:
		p.Program(n)
	case Statement:
		p.Statement(n)
	case Expression:
		p.Expression(n)
	default:
		panic(fmt.Sprintf("unknown node %T", node))
	}
}

func (p *Printer) Program(prog *Program) {
	for i, s := range prog.Body {
		if i > 0 {
			p.newline()
		}
		p.Statement(s)
	}
}

func (p *Printer) write(s string) {
	p.sb.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.line += strings.Count(s, "\n")
		p.col = utf16Len(s[i+1:])
	} else {
		p.col += utf16Len(s)
	}
}

func (p *Printer) newline() {
	p.write("\n" + strings.Repeat(indentUnit, p.indent))
}

func (p *Printer) mark(node Node) {
	loc := node.Location()
	switch {
	case loc.SourceMap != nil:
		p.mappings = append(p.mappings, Mapping{
			GeneratedLine:   p.line,
			GeneratedColumn: p.col,
			URL:             loc.SourceMap.URL,
			Content:         loc.SourceMap.Content,
			Line:            loc.SourceMap.Start.Line,
			Column:          loc.SourceMap.Start.Column,
		})
	case loc.Range != nil:
		p.mappings = append(p.mappings, Mapping{
			GeneratedLine:   p.line,
			GeneratedColumn: p.col,
			Line:            loc.Range.StartLine,
			Column:          loc.Range.StartCol,
		})
	}
}

func (p *Printer) Statement(s Statement) {
	p.mark(s)
	if src := s.Location().Source; src != "" {
		p.write(src)
		return
	}
	switch n := s.(type) {
	case *VariableDeclaration:
		p.write(string(n.Kind) + " " + n.Name)
		if n.Init != nil {
			p.write(" = ")
			p.expression(n.Init, precAssignment)
		}
		p.write(";")
	case *FunctionDeclaration:
		p.function(n.Name, n.Params, n.Body)
	case *ExpressionStatement:
		if needsStatementParens(n.Expression) {
			p.write("(")
			p.Expression(n.Expression)
			p.write(")")
		} else {
			p.expression(n.Expression, precSequence)
		}
		p.write(";")
	case *IfStatement:
		p.write("if (")
		p.Expression(n.Test)
		p.write(") ")
		p.Statement(n.Consequent)
		if n.Alternate != nil {
			p.write(" else ")
			p.Statement(n.Alternate)
		}
	case *ReturnStatement:
		p.write("return")
		if n.Argument != nil {
			p.write(" ")
			p.Expression(n.Argument)
		}
		p.write(";")
	case *ThrowStatement:
		p.write("throw ")
		p.Expression(n.Argument)
		p.write(";")
	case *BlockStatement:
		p.block(n)
	case *CommentStatement:
		if n.Multiline {
			p.write("/*" + n.Text + "*/")
		} else {
			p.write("// " + n.Text)
		}
	case *RawStatement:
		p.write(n.Text)
	default:
		panic(fmt.Sprintf("unknown statement %T", s))
	}
}

func (p *Printer) block(b *BlockStatement) {
	if len(b.Body) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, s := range b.Body {
		p.newline()
		p.Statement(s)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *Printer) function(name string, params []string, body *BlockStatement) {
	p.write("function ")
	if name != "" {
		p.write(name)
	}
	p.write("(" + strings.Join(params, ", ") + ") ")
	p.block(body)
}

// Operator precedence, loosest first
const (
	precRaw = iota
	precSequence
	precAssignment
	precConditional
	precOr
	precAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precPrimary
)

var binaryPrecedence = map[string]int{
	"||":  precOr,
	"&&":  precAnd,
	"|":   precBitwiseOr,
	"^":   precBitwiseXor,
	"&":   precBitwiseAnd,
	"==":  precEquality,
	"!=":  precEquality,
	"===": precEquality,
	"!==": precEquality,
	"<":   precRelational,
	">":   precRelational,
	"<=":  precRelational,
	">=":  precRelational,
	"<<":  precShift,
	">>":  precShift,
	">>>": precShift,
	"+":   precAdditive,
	"-":   precAdditive,
	"*":   precMultiplicative,
	"/":   precMultiplicative,
	"%":   precMultiplicative,
}

func precedence(e Expression) int {
	switch n := e.(type) {
	case *MemberExpression, *CallExpression, *NewExpression:
		return precCall
	case *UnaryExpression:
		return precUnary
	case *NumericLiteral:
		if n.Value < 0 || math.Signbit(n.Value) {
			return precUnary
		}
	case *BinaryExpression:
		if prec, ok := binaryPrecedence[n.Operator]; ok {
			return prec
		}
		return precRaw
	case *ConditionalExpression:
		return precConditional
	case *AssignmentExpression:
		return precAssignment
	case *SpreadElement:
		return precSequence
	case *Raw:
		if !n.Primary {
			return precRaw
		}
	}
	return precPrimary
}

// Expression prints e without surrounding parentheses
func (p *Printer) Expression(e Expression) {
	p.expression(e, precRaw)
}

func (p *Printer) expression(e Expression, minPrec int) {
	if precedence(e) < minPrec {
		p.write("(")
		p.expression(e, precRaw)
		p.write(")")
		return
	}
	p.mark(e)
	if src := e.Location().Source; src != "" {
		p.write(src)
		return
	}
	switch n := e.(type) {
	case *Identifier:
		p.write(n.Name)
	case *StringLiteral:
		p.write(quote(n.Value))
	case *NumericLiteral:
		p.write(formatNumber(n.Value))
	case *BooleanLiteral:
		p.write(strconv.FormatBool(n.Value))
	case *NullLiteral:
		p.write("null")
	case *ArrayExpression:
		p.write("[")
		for i, element := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			if element != nil {
				p.expression(element, precAssignment)
			} else if i == len(n.Elements)-1 {
				p.write(",")
			}
		}
		p.write("]")
	case *ObjectExpression:
		p.object(n)
	case *SpreadElement:
		p.write("...")
		p.expression(n.Argument, precAssignment)
	case *MemberExpression:
		if !n.Computed && bareInteger(n.Object) {
			p.write("(")
			p.Expression(n.Object)
			p.write(")")
		} else {
			p.callee(n.Object)
		}
		if n.Computed {
			p.write("[")
			p.Expression(n.Property)
			p.write("]")
		} else {
			p.write(".")
			p.Expression(n.Property)
		}
	case *AssignmentExpression:
		p.expression(n.Left, precCall)
		p.write(" = ")
		p.expression(n.Right, precAssignment)
	case *ConditionalExpression:
		p.expression(n.Test, precOr)
		p.write(" ? ")
		p.expression(n.Consequent, precAssignment)
		p.write(" : ")
		p.expression(n.Alternate, precAssignment)
	case *ParenthesizedExpression:
		p.write("(")
		p.Expression(n.Expression)
		p.write(")")
	case *UnaryExpression:
		p.write(n.Operator)
		if n.Operator == "typeof" || sameSign(n.Operator, n.Argument) {
			p.write(" ")
		}
		p.expression(n.Argument, precUnary)
	case *BinaryExpression:
		prec := precedence(n)
		p.expression(n.Left, prec)
		p.write(" " + n.Operator + " ")
		p.expression(n.Right, prec+1)
	case *CallExpression:
		if n.Pure {
			p.write("/*@__PURE__*/ ")
		}
		p.callee(n.Callee)
		p.arguments(n.Arguments)
	case *NewExpression:
		p.write("new ")
		if _, isCall := n.Callee.(*CallExpression); isCall {
			p.write("(")
			p.Expression(n.Callee)
			p.write(")")
		} else {
			p.callee(n.Callee)
		}
		p.arguments(n.Arguments)
	case *FunctionExpression:
		p.function(n.Name, n.Params, n.Body)
	case *Raw:
		p.write(n.Text)
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}

// callee prints the target of a call or member access. Function
// expressions are wrapped so the result is never read as a declaration.
func (p *Printer) callee(e Expression) {
	if _, ok := e.(*FunctionExpression); ok && e.Location().Source == "" {
		p.write("(")
		p.Expression(e)
		p.write(")")
		return
	}
	p.expression(e, precCall)
}

func (p *Printer) arguments(args []Expression) {
	p.write("(")
	for i, arg := range args {
		if i > 0 {
			p.write(", ")
		}
		p.expression(arg, precAssignment)
	}
	p.write(")")
}

func (p *Printer) object(obj *ObjectExpression) {
	if len(obj.Properties) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for i, prop := range obj.Properties {
		p.newline()
		switch key := prop.Key.(type) {
		case *Identifier:
			if prop.Computed {
				p.write("[" + key.Name + "]")
			} else if isIdentifierName(key.Name) {
				p.write(key.Name)
			} else {
				p.write(quote(key.Name))
			}
		default:
			if prop.Computed {
				p.write("[")
				p.Expression(key)
				p.write("]")
			} else {
				p.Expression(key)
			}
		}
		if prop.Value != nil {
			p.write(": ")
			p.expression(prop.Value, precAssignment)
		}
		if i < len(obj.Properties)-1 {
			p.write(",")
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}

// needsStatementParens reports whether an expression statement would start
// with `function` or `{`
func needsStatementParens(e Expression) bool {
	for {
		if e.Location().Source != "" {
			return false
		}
		switch n := e.(type) {
		case *FunctionExpression, *ObjectExpression:
			return true
		case *MemberExpression:
			e = n.Object
		case *CallExpression:
			if _, ok := n.Callee.(*FunctionExpression); ok {
				return false
			}
			e = n.Callee
		case *BinaryExpression:
			e = n.Left
		case *ConditionalExpression:
			e = n.Test
		case *AssignmentExpression:
			e = n.Left
		default:
			return false
		}
	}
}

// sameSign avoids printing `--x` or `++x` for nested sign operators
func sameSign(operator string, argument Expression) bool {
	if operator != "-" && operator != "+" {
		return false
	}
	switch a := argument.(type) {
	case *UnaryExpression:
		return a.Operator == operator
	case *NumericLiteral:
		return operator == "-" && math.Signbit(a.Value)
	}
	return false
}

// bareInteger reports whether e prints as digits only, which would make a
// following `.` part of the number
func bareInteger(e Expression) bool {
	n, ok := e.(*NumericLiteral)
	if !ok || precedence(n) != precPrimary {
		return false
	}
	text := n.Location().Source
	if text == "" {
		text = formatNumber(n.Value)
	}
	return !strings.ContainsAny(text, ".eExX")
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func isIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '$' || r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// utf16Len counts UTF-16 code units, the unit of source map columns
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	if !utf8.ValidString(s) {
		return len(s)
	}
	return n
}
