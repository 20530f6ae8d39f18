package treesitter

import (
	"strconv"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
)

// primaryTypes never need parentheses when printed in operand position
var primaryTypes = map[string]bool{
	"identifier":               true,
	"this":                     true,
	"super":                    true,
	"undefined":                true,
	"regex":                    true,
	"string":                   true,
	"template_string":          true,
	"number":                   true,
	"true":                     true,
	"false":                    true,
	"null":                     true,
	"array":                    true,
	"object":                   true,
	"call_expression":          true,
	"member_expression":        true,
	"subscript_expression":     true,
	"parenthesized_expression": true,
	"non_null_expression":      true,
}

// converter turns tree-sitter expressions into jsast. Shapes the linker reads
// become typed nodes; everything else becomes jsast.Raw. Every node keeps
// its source text and range.
type converter struct {
	src   []byte
	lines *lineIndex
}

func newConverter(src []byte) *converter {
	return &converter{src: src, lines: newLineIndex(string(src))}
}

func (c *converter) text(n sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func (c *converter) rangeOf(n sitter.Node) ast.Range {
	start := int(n.StartByte())
	line, col := c.lines.position(start)
	return ast.Range{StartPos: start, StartLine: line, StartCol: col, EndPos: int(n.EndByte())}
}

func located[N jsast.Node](c *converter, n sitter.Node, node N) N {
	return jsast.WithRange(node, c.rangeOf(n), c.text(n))
}

// namedChildren skips comments
func namedChildren(n sitter.Node) []sitter.Node {
	var children []sitter.Node
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

func (c *converter) expression(n sitter.Node) jsast.Expression {
	switch n.Type() {
	case "identifier", "undefined", "this", "super":
		return located(c, n, &jsast.Identifier{Name: c.text(n)})
	case "member_expression":
		property := n.ChildByFieldName("property")
		if !n.ChildByFieldName("optional_chain").IsNull() || property.IsNull() {
			break
		}
		return located(c, n, &jsast.MemberExpression{
			Object:   c.expression(n.ChildByFieldName("object")),
			Property: located(c, property, &jsast.Identifier{Name: c.text(property)}),
		})
	case "subscript_expression":
		if !n.ChildByFieldName("optional_chain").IsNull() {
			break
		}
		return located(c, n, &jsast.MemberExpression{
			Object:   c.expression(n.ChildByFieldName("object")),
			Property: c.expression(n.ChildByFieldName("index")),
			Computed: true,
		})
	case "string":
		raw := c.text(n)
		if value, ok := unescapeString(raw[1 : len(raw)-1]); ok {
			return located(c, n, &jsast.StringLiteral{Value: value})
		}
	case "template_string":
		if hasChildOfType(n, "template_substitution") {
			break
		}
		raw := c.text(n)
		if value, ok := unescapeString(raw[1 : len(raw)-1]); ok {
			return located(c, n, &jsast.StringLiteral{Value: value})
		}
	case "number":
		if value, ok := parseNumber(c.text(n)); ok {
			return located(c, n, &jsast.NumericLiteral{Value: value})
		}
	case "true", "false":
		return located(c, n, &jsast.BooleanLiteral{Value: n.Type() == "true"})
	case "null":
		return located(c, n, &jsast.NullLiteral{})
	case "array":
		return located(c, n, &jsast.ArrayExpression{Elements: c.arrayElements(n)})
	case "object":
		return located(c, n, &jsast.ObjectExpression{Properties: c.objectProperties(n)})
	case "spread_element":
		children := namedChildren(n)
		if len(children) == 1 {
			return located(c, n, &jsast.SpreadElement{Argument: c.expression(children[0])})
		}
	case "call_expression":
		args := n.ChildByFieldName("arguments")
		if args.IsNull() || args.Type() != "arguments" || !n.ChildByFieldName("optional_chain").IsNull() {
			break
		}
		return located(c, n, &jsast.CallExpression{
			Callee:    c.expression(n.ChildByFieldName("function")),
			Arguments: c.arguments(args),
		})
	case "new_expression":
		call := &jsast.NewExpression{Callee: c.expression(n.ChildByFieldName("constructor"))}
		if args := n.ChildByFieldName("arguments"); !args.IsNull() {
			call.Arguments = c.arguments(args)
		}
		return located(c, n, call)
	case "function_expression", "function":
		fn := &jsast.FunctionExpression{Body: &jsast.BlockStatement{}}
		if name := n.ChildByFieldName("name"); !name.IsNull() {
			fn.Name = c.text(name)
		}
		if params := n.ChildByFieldName("parameters"); !params.IsNull() {
			for _, param := range namedChildren(params) {
				fn.Params = append(fn.Params, c.text(param))
			}
		}
		return located(c, n, fn)
	case "parenthesized_expression":
		children := namedChildren(n)
		if len(children) == 1 {
			return located(c, n, &jsast.ParenthesizedExpression{Expression: c.expression(children[0])})
		}
	case "unary_expression":
		operator := c.text(n.ChildByFieldName("operator"))
		argument := c.expression(n.ChildByFieldName("argument"))
		if num, ok := argument.(*jsast.NumericLiteral); ok && operator == "-" {
			return located(c, n, &jsast.NumericLiteral{Value: -num.Value})
		}
		return located(c, n, &jsast.UnaryExpression{Operator: operator, Argument: argument})
	case "binary_expression":
		return located(c, n, &jsast.BinaryExpression{
			Left:     c.expression(n.ChildByFieldName("left")),
			Operator: c.text(n.ChildByFieldName("operator")),
			Right:    c.expression(n.ChildByFieldName("right")),
		})
	case "ternary_expression":
		return located(c, n, &jsast.ConditionalExpression{
			Test:       c.expression(n.ChildByFieldName("condition")),
			Consequent: c.expression(n.ChildByFieldName("consequence")),
			Alternate:  c.expression(n.ChildByFieldName("alternative")),
		})
	case "assignment_expression":
		return located(c, n, &jsast.AssignmentExpression{
			Left:  c.expression(n.ChildByFieldName("left")),
			Right: c.expression(n.ChildByFieldName("right")),
		})
	}
	return located(c, n, &jsast.Raw{Text: c.text(n), Primary: primaryTypes[n.Type()]})
}

func (c *converter) arguments(n sitter.Node) []jsast.Expression {
	children := namedChildren(n)
	args := make([]jsast.Expression, len(children))
	for i, child := range children {
		args[i] = c.expression(child)
	}
	return args
}

// arrayElements keeps holes as nil entries: `[, a]` has two elements
func (c *converter) arrayElements(n sitter.Node) []jsast.Expression {
	var elements []jsast.Expression
	expectValue := true
	for i := range n.ChildCount() {
		child := n.Child(i)
		switch {
		case child.Type() == ",":
			if expectValue {
				elements = append(elements, nil)
			}
			expectValue = true
		case child.IsNamed() && child.Type() != "comment":
			elements = append(elements, c.expression(child))
			expectValue = false
		}
	}
	return elements
}

func (c *converter) objectProperties(n sitter.Node) []*jsast.Property {
	var properties []*jsast.Property
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "pair":
			key := child.ChildByFieldName("key")
			properties = append(properties, &jsast.Property{
				Key:      c.propertyKey(key),
				Computed: key.Type() == "computed_property_name",
				Value:    c.expression(child.ChildByFieldName("value")),
			})
		case "shorthand_property_identifier":
			properties = append(properties, &jsast.Property{
				Key:   located(c, child, &jsast.Identifier{Name: c.text(child)}),
				Value: located(c, child, &jsast.Identifier{Name: c.text(child)}),
			})
		case "spread_element":
			properties = append(properties, &jsast.Property{
				Key:   located(c, child, &jsast.Raw{Text: c.text(child)}),
				Value: c.expression(child),
			})
		default:
			// methods, accessors and shorthand defaults
			properties = append(properties, &jsast.Property{
				Key:      located(c, child, &jsast.Raw{Text: c.text(child)}),
				Computed: true,
			})
		}
	}
	return properties
}

func (c *converter) propertyKey(key sitter.Node) jsast.Expression {
	switch key.Type() {
	case "property_identifier", "identifier":
		return located(c, key, &jsast.Identifier{Name: c.text(key)})
	}
	return c.expression(key)
}

func hasChildOfType(n sitter.Node, typ string) bool {
	for i := range n.NamedChildCount() {
		if n.NamedChild(i).Type() == typ {
			return true
		}
	}
	return false
}

func parseNumber(text string) (float64, bool) {
	text = strings.ReplaceAll(text, "_", "")
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(text[2:], base, 64)
			return float64(v), err == nil
		}
	}
	if strings.HasSuffix(text, "n") {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	return v, err == nil
}

// unescapeString decodes the escapes of a JavaScript string body
func unescapeString(body string) (string, bool) {
	if !strings.Contains(body, `\`) {
		return body, true
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\r':
			// line continuation
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 >= len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			sb.WriteRune(rune(v))
			i += 2
		case 'u':
			r, width, ok := parseUnicodeEscape(body[i+1:])
			if !ok {
				return "", false
			}
			sb.WriteRune(r)
			i += width
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), true
}

// parseUnicodeEscape reads `XXXX` or `{X...}` after `\u`
func parseUnicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		return rune(v), end + 1, err == nil
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	return rune(v), 4, err == nil
}
