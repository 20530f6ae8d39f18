package jsast_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
	"ngc-linker/packages/compiler-cli/translator"
	"ngc-linker/packages/compiler/output"
)

func id(name string) *jsast.Identifier { return &jsast.Identifier{Name: name} }

func str(value string) *jsast.StringLiteral { return &jsast.StringLiteral{Value: value} }

func num(value float64) *jsast.NumericLiteral { return &jsast.NumericLiteral{Value: value} }

func prop(key string, value jsast.Expression) *jsast.Property {
	return &jsast.Property{Key: id(key), Value: value}
}

func assertFatal(t *testing.T, err error, node jsast.Node, message string) {
	t.Helper()
	var fatal *ast.FatalLinkerError
	require.True(t, errors.As(err, &fatal), "expected a FatalLinkerError, got %v", err)
	assert.Equal(t, message, fatal.Message)
	if node != nil {
		assert.Same(t, node, fatal.Node)
	}
}

func TestHost(t *testing.T) {
	host := jsast.Host{}

	t.Run("should read the right most name of a symbol", func(t *testing.T) {
		name, ok := host.GetSymbolName(id("MyComponent"))
		assert.True(t, ok)
		assert.Equal(t, "MyComponent", name)

		member := &jsast.MemberExpression{Object: id("i0"), Property: id("ViewEncapsulation")}
		name, ok = host.GetSymbolName(&jsast.MemberExpression{Object: member, Property: id("None")})
		assert.True(t, ok)
		assert.Equal(t, "None", name)

		_, ok = host.GetSymbolName(&jsast.MemberExpression{Object: id("a"), Property: str("b"), Computed: true})
		assert.False(t, ok)
		_, ok = host.GetSymbolName(str("a"))
		assert.False(t, ok)
	})

	t.Run("should parse literals", func(t *testing.T) {
		s, err := host.ParseStringLiteral(str("a"))
		require.NoError(t, err)
		assert.Equal(t, "a", s)

		n, err := host.ParseNumericLiteral(num(42))
		require.NoError(t, err)
		assert.Equal(t, 42.0, n)

		b, err := host.ParseBooleanLiteral(&jsast.BooleanLiteral{Value: true})
		require.NoError(t, err)
		assert.True(t, b)

		assert.True(t, host.IsStringLiteral(str("")))
		assert.False(t, host.IsNumericLiteral(str("1")))
		assert.True(t, host.IsFunctionExpression(&jsast.FunctionExpression{}))
		assert.True(t, host.IsCallExpression(&jsast.CallExpression{Callee: id("f")}))
	})

	t.Run("should fail on the wrong literal kind", func(t *testing.T) {
		node := num(1)
		_, err := host.ParseStringLiteral(node)
		assertFatal(t, err, node, "Unsupported syntax, expected a string literal.")

		_, err = host.ParseNumericLiteral(str("1"))
		assertFatal(t, err, nil, "Unsupported syntax, expected a number literal.")

		_, err = host.ParseBooleanLiteral(num(0))
		assertFatal(t, err, nil, "Unsupported syntax, expected a boolean literal.")

		_, err = host.ParseArrayLiteral(str("[]"))
		assertFatal(t, err, nil, "Unsupported syntax, expected an array literal.")

		_, err = host.ParseObjectLiteral(str("{}"))
		assertFatal(t, err, nil, "Unsupported syntax, expected an object literal.")
	})

	t.Run("should skip holes and spreads in arrays", func(t *testing.T) {
		elements, err := host.ParseArrayLiteral(&jsast.ArrayExpression{Elements: []jsast.Expression{
			nil, num(1), &jsast.SpreadElement{Argument: id("rest")}, num(2),
		}})
		require.NoError(t, err)
		assert.Equal(t, []jsast.Expression{num(1), num(2)}, elements)
	})

	t.Run("should parse object literals in order", func(t *testing.T) {
		obj, err := host.ParseObjectLiteral(&jsast.ObjectExpression{Properties: []*jsast.Property{
			prop("b", num(1)),
			{Key: str("a-b"), Value: num(2)},
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a-b"}, obj.Keys())
		value, ok := obj.Get("a-b")
		require.True(t, ok)
		assert.Equal(t, 2.0, value.(*jsast.NumericLiteral).Value)
	})

	t.Run("should reject keys that are not property names", func(t *testing.T) {
		computed := id("key")
		_, err := host.ParseObjectLiteral(&jsast.ObjectExpression{Properties: []*jsast.Property{
			{Key: computed, Computed: true, Value: num(1)},
		}})
		assertFatal(t, err, computed, "Unsupported syntax, expected a property name.")

		numeric := num(1)
		_, err = host.ParseObjectLiteral(&jsast.ObjectExpression{Properties: []*jsast.Property{
			{Key: numeric, Value: num(1)},
		}})
		assertFatal(t, err, numeric, "Unsupported syntax, expected a property name.")
	})

	t.Run("should reject methods and spreads in objects", func(t *testing.T) {
		method := &jsast.Raw{Text: "f() {}"}
		_, err := host.ParseObjectLiteral(&jsast.ObjectExpression{Properties: []*jsast.Property{
			{Key: method, Computed: true},
		}})
		assertFatal(t, err, method, "Unsupported syntax, expected a property assignment.")

		spread := &jsast.SpreadElement{Argument: id("rest")}
		_, err = host.ParseObjectLiteral(&jsast.ObjectExpression{Properties: []*jsast.Property{
			{Key: id("rest"), Value: spread},
		}})
		assertFatal(t, err, spread, "Unsupported syntax, expected a property assignment.")
	})

	t.Run("should read ranges of parsed nodes only", func(t *testing.T) {
		r := ast.Range{StartPos: 10, StartLine: 1, StartCol: 2, EndPos: 15}
		got, err := host.GetRange(jsast.WithRange(id("a"), r, "a"))
		require.NoError(t, err)
		assert.Equal(t, r, got)

		_, err = host.GetRange(id("a"))
		assertFatal(t, err, nil, "Unable to read range for node - it is missing location information.")
	})
}

func TestFactory(t *testing.T) {
	f := jsast.Factory{}

	t.Run("should create literals", func(t *testing.T) {
		assert.Equal(t, `null`, jsast.Print(f.CreateLiteral(nil)))
		assert.Equal(t, `"a"`, jsast.Print(f.CreateLiteral("a")))
		assert.Equal(t, `true`, jsast.Print(f.CreateLiteral(true)))
		assert.Equal(t, `3`, jsast.Print(f.CreateLiteral(3)))
		assert.Equal(t, `1.5`, jsast.Print(f.CreateLiteral(1.5)))
		assert.Equal(t, `undefined`, jsast.Print(f.CreateLiteral(output.Undefined)))
		assert.Panics(t, func() { f.CreateLiteral(struct{}{}) })
	})

	t.Run("should quote object keys on request", func(t *testing.T) {
		obj := f.CreateObjectLiteral([]translator.ObjectLiteralProperty[jsast.Expression]{
			{PropertyName: "a", Value: f.CreateLiteral(1)},
			{PropertyName: "b", Value: f.CreateLiteral(2), Quoted: true},
		})
		assert.Equal(t, "{\n  a: 1,\n  \"b\": 2\n}", jsast.Print(obj))
	})

	t.Run("should wrap single statement bodies in a block", func(t *testing.T) {
		fn := f.CreateFunctionExpression("", nil, f.CreateReturnStatement(f.CreateIdentifier("x")))
		assert.Equal(t, "function () {\n  return x;\n}", jsast.Print(fn))

		decl := f.CreateFunctionDeclaration("named", []string{"a", "b"}, nil)
		assert.Equal(t, "function named(a, b) {}", jsast.Print(decl))
	})

	t.Run("should build statements", func(t *testing.T) {
		stmts := []jsast.Statement{
			f.CreateVariableDeclaration("_c0", f.CreateLiteral(1), translator.VariableDeclarationVar),
			f.CreateIfStatement(f.CreateIdentifier("a"), f.CreateBlock([]jsast.Statement{
				f.CreateExpressionStatement(f.CreateCallExpression(f.CreateIdentifier("f"), nil, false)),
			}), f.CreateThrowStatement(f.CreateIdentifier("e"))),
			f.CreateCommentStatement("note", false),
			f.CreateCommentStatement("* block ", true),
		}
		want := "var _c0 = 1;\n" +
			"if (a) {\n  f();\n} else throw e;\n" +
			"// note\n" +
			"/** block */"
		assert.Equal(t, want, jsast.Print(&jsast.Program{Body: stmts}))
	})

	t.Run("should attach source map ranges", func(t *testing.T) {
		node := f.CreateIdentifier("a")
		f.SetSourceMapRange(node, translator.SourceMapRange{URL: "tpl.html", Start: translator.SourceMapLocation{Line: 2, Column: 3}})

		p := jsast.NewPrinter(0)
		p.Expression(f.CreateBinaryExpression(f.CreateIdentifier("b"), translator.BinaryOperator("+"), node))
		assert.Equal(t, "b + a", p.String())
		require.Len(t, p.Mappings(), 1)
		assert.Equal(t, jsast.Mapping{GeneratedColumn: 4, URL: "tpl.html", Line: 2, Column: 3}, p.Mappings()[0])
	})
}

func TestPrinter(t *testing.T) {
	cond := func(test, consequent, alternate jsast.Expression) *jsast.ConditionalExpression {
		return &jsast.ConditionalExpression{Test: test, Consequent: consequent, Alternate: alternate}
	}
	bin := func(left jsast.Expression, operator string, right jsast.Expression) *jsast.BinaryExpression {
		return &jsast.BinaryExpression{Left: left, Operator: operator, Right: right}
	}

	tests := []struct {
		name string
		node jsast.Node
		want string
	}{
		{"should parenthesize a conditional test that is itself a conditional",
			cond(cond(id("a"), id("b"), id("c")), id("d"), id("e")), "(a ? b : c) ? d : e"},
		{"should not parenthesize a conditional alternate",
			cond(id("a"), id("b"), cond(id("c"), id("d"), id("e"))), "a ? b : c ? d : e"},
		{"should parenthesize looser binary operands",
			bin(bin(id("a"), "+", id("b")), "*", id("c")), "(a + b) * c"},
		{"should keep left associativity",
			bin(id("a"), "-", bin(id("b"), "-", id("c"))), "a - (b - c)"},
		{"should not parenthesize tighter operands",
			bin(id("a"), "||", bin(id("b"), "&&", id("c"))), "a || b && c"},
		{"should parenthesize conditionals inside binaries",
			bin(cond(id("a"), id("b"), id("c")), "+", id("d")), "(a ? b : c) + d"},
		{"should print assignments of conditionals bare",
			&jsast.AssignmentExpression{Left: id("a"), Right: cond(id("b"), id("c"), id("d"))}, "a = b ? c : d"},
		{"should parenthesize member access on binaries",
			&jsast.MemberExpression{Object: bin(id("a"), "+", id("b")), Property: id("c")}, "(a + b).c"},
		{"should parenthesize integers before a property access",
			&jsast.MemberExpression{Object: num(1), Property: id("toFixed")}, "(1).toFixed"},
		{"should not parenthesize decimals before a property access",
			&jsast.MemberExpression{Object: num(1.5), Property: id("toFixed")}, "1.5.toFixed"},
		{"should parenthesize negative numbers before a property access",
			&jsast.MemberExpression{Object: num(-1), Property: id("toFixed")}, "(-1).toFixed"},
		{"should print computed member access",
			&jsast.MemberExpression{Object: id("a"), Property: str("b"), Computed: true}, `a["b"]`},
		{"should wrap immediately invoked functions",
			&jsast.CallExpression{Callee: &jsast.FunctionExpression{Body: &jsast.BlockStatement{}}}, "(function () {})()"},
		{"should annotate pure calls",
			&jsast.CallExpression{Callee: id("f"), Arguments: []jsast.Expression{num(1)}, Pure: true}, "/*@__PURE__*/ f(1)"},
		{"should separate repeated signs",
			&jsast.UnaryExpression{Operator: "-", Argument: &jsast.UnaryExpression{Operator: "-", Argument: id("x")}}, "- -x"},
		{"should print typeof",
			&jsast.UnaryExpression{Operator: "typeof", Argument: id("x")}, "typeof x"},
		{"should print new expressions",
			&jsast.NewExpression{Callee: id("Foo"), Arguments: []jsast.Expression{num(1)}}, "new Foo(1)"},
		{"should keep array holes",
			&jsast.ArrayExpression{Elements: []jsast.Expression{nil, num(1), nil}}, "[, 1, ,]"},
		{"should quote keys that are not identifiers",
			&jsast.ObjectExpression{Properties: []*jsast.Property{prop("a", num(1)), prop("b-c", str("x"))}}, "{\n  a: 1,\n  \"b-c\": \"x\"\n}"},
		{"should parenthesize statements starting with an object",
			&jsast.ExpressionStatement{Expression: &jsast.ObjectExpression{}}, "({});"},
		{"should escape strings",
			str("a\"b\n "), `"a\"b\n "`},
		{"should print numbers like JavaScript",
			&jsast.ArrayExpression{Elements: []jsast.Expression{num(3), num(0.5), num(1e21)}}, "[3, 0.5, 1e+21]"},
		{"should print borrowed nodes verbatim",
			jsast.WithRange(&jsast.ObjectExpression{}, ast.Range{}, "{provide: 'a'}"), "{provide: 'a'}"},
		{"should indent nested blocks",
			&jsast.VariableDeclaration{Kind: translator.VariableDeclarationVar, Name: "_c0", Init: &jsast.FunctionExpression{
				Body: &jsast.BlockStatement{Body: []jsast.Statement{&jsast.ReturnStatement{Argument: &jsast.ArrayExpression{Elements: []jsast.Expression{num(1), num(2)}}}}},
			}}, "var _c0 = function () {\n  return [1, 2];\n};"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsast.Print(tt.node))
		})
	}

	t.Run("should start continuation lines at the given indent", func(t *testing.T) {
		p := jsast.NewPrinter(1)
		p.Expression(&jsast.ObjectExpression{Properties: []*jsast.Property{prop("a", num(1))}})
		assert.Equal(t, "{\n    a: 1\n  }", p.String())
	})

	t.Run("should map parsed nodes to their range", func(t *testing.T) {
		p := jsast.NewPrinter(0)
		x := jsast.WithRange(id("x"), ast.Range{StartPos: 20, StartLine: 3, StartCol: 4, EndPos: 21}, "x")
		p.Expression(&jsast.ArrayExpression{Elements: []jsast.Expression{num(1), x}})
		if diff := cmp.Diff([]jsast.Mapping{{GeneratedColumn: 4, Line: 3, Column: 4}}, p.Mappings()); diff != "" {
			t.Errorf("mappings mismatch (-want +got):\n%s", diff)
		}
	})
}
