package linker

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
	"ngc-linker/packages/compiler/output"
)

func id(name string) *jsast.Identifier { return &jsast.Identifier{Name: name} }

func str(value string) *jsast.StringLiteral { return &jsast.StringLiteral{Value: value} }

func num(value float64) *jsast.NumericLiteral { return &jsast.NumericLiteral{Value: value} }

func boolean(value bool) *jsast.BooleanLiteral { return &jsast.BooleanLiteral{Value: value} }

func arr(elements ...jsast.Expression) *jsast.ArrayExpression {
	return &jsast.ArrayExpression{Elements: elements}
}

func member(names ...string) jsast.Expression {
	var expr jsast.Expression = id(names[0])
	for _, name := range names[1:] {
		expr = &jsast.MemberExpression{Object: expr, Property: id(name)}
	}
	return expr
}

type field struct {
	key   string
	value jsast.Expression
}

func obj(fields ...field) *jsast.ObjectExpression {
	o := &jsast.ObjectExpression{}
	for _, f := range fields {
		o.Properties = append(o.Properties, &jsast.Property{Key: id(f.key), Value: f.value})
	}
	return o
}

// declaration builds a valid component declaration. Overrides replace fields
// by key; a nil override removes the field.
func declaration(overrides ...field) *jsast.ObjectExpression {
	fields := []field{
		{"version", num(1)},
		{"template", str("<div>{{ name }}</div>")},
		{"styles", arr()},
		{"type", id("TestCmp")},
		{"selector", str("test-cmp")},
		{"inputs", obj()},
		{"outputs", obj()},
		{"host", obj(field{"attributes", obj()}, field{"listeners", obj()}, field{"properties", obj()})},
		{"directives", arr()},
		{"pipes", obj()},
		{"queries", arr()},
		{"viewQueries", arr()},
		{"providers", arr()},
		{"viewProviders", arr()},
		{"animations", &jsast.NullLiteral{}},
		{"exportAs", arr()},
		{"encapsulation", member("i0", "ViewEncapsulation", "Emulated")},
		{"changeDetection", member("i0", "ChangeDetectionStrategy", "OnPush")},
		{"interpolation", arr(str("{{"), str("}}"))},
		{"usesInheritance", boolean(false)},
		{"fullInheritance", boolean(false)},
		{"usesOnChanges", boolean(false)},
		{"ngImport", id("i0")},
	}
	for _, override := range overrides {
		for i := range fields {
			if fields[i].key == override.key {
				fields[i].value = override.value
			}
		}
	}
	var kept []field
	for _, f := range fields {
		if f.value != nil {
			kept = append(kept, f)
		}
	}
	return obj(kept...)
}

var callee = member("i0", DeclareComponentSymbol)

func newLinker(options LinkerOptions) *FileLinker[jsast.Statement, jsast.Expression] {
	return CreateLinker("test.js", "", LinkerEnvironment[jsast.Statement, jsast.Expression]{
		Host:    jsast.Host{},
		Factory: jsast.Factory{},
	}, options)
}

func link(t *testing.T, l *FileLinker[jsast.Statement, jsast.Expression], decl jsast.Expression) string {
	t.Helper()
	result, ok, err := l.LinkCall(callee, []jsast.Expression{decl})
	require.NoError(t, err)
	require.True(t, ok)
	return jsast.Print(result)
}

func requireFatal(t *testing.T, err error, message string) *ast.FatalLinkerError {
	t.Helper()
	var fatal *ast.FatalLinkerError
	require.True(t, errors.As(err, &fatal), "expected a FatalLinkerError, got %v", err)
	assert.Equal(t, message, fatal.Message)
	return fatal
}

func TestLinkCall(t *testing.T) {
	t.Run("should ignore calls that are not declarations", func(t *testing.T) {
		l := newLinker(LinkerOptions{})
		result, ok, err := l.LinkCall(member("i0", "ɵɵdefineComponent"), []jsast.Expression{declaration()})
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, result)
	})

	t.Run("should recognize the declaration symbol", func(t *testing.T) {
		l := newLinker(LinkerOptions{})
		assert.True(t, l.IsPartialDeclaration(id(DeclareComponentSymbol)))
		assert.True(t, l.IsPartialDeclaration(callee))
		assert.False(t, l.IsPartialDeclaration(str(DeclareComponentSymbol)))
	})

	t.Run("should require exactly one argument", func(t *testing.T) {
		l := newLinker(LinkerOptions{})
		_, ok, err := l.LinkCall(callee, nil)
		assert.True(t, ok)
		fatal := requireFatal(t, err, "Expected $ngDeclareComponent to be called with exactly one argument.")
		assert.Same(t, callee, fatal.Node)
	})

	t.Run("should reject other metadata versions", func(t *testing.T) {
		version := num(2)
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{declaration(field{"version", version})})
		fatal := requireFatal(t, err, "Expected metadata version to be 1.")
		assert.Same(t, version, fatal.Node)
	})

	t.Run("should reject a declaration that is not an object", func(t *testing.T) {
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{arr()})
		requireFatal(t, err, "Unsupported syntax, expected an object literal.")
	})

	t.Run("should name missing properties", func(t *testing.T) {
		for _, key := range []string{"selector", "template", "type", "ngImport", "host"} {
			decl := declaration(field{key, nil})
			_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{decl})
			fatal := requireFatal(t, err, "Expected property '"+key+"' to be present.")
			assert.Same(t, decl, fatal.Node)
		}
	})

	t.Run("should reject the wrong literal kind", func(t *testing.T) {
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{declaration(field{"selector", num(1)})})
		requireFatal(t, err, "Unsupported syntax, expected a string literal.")
	})

	t.Run("should reject unknown enum members", func(t *testing.T) {
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{
			declaration(field{"encapsulation", member("i0", "ViewEncapsulation", "Native")}),
		})
		requireFatal(t, err, "Unsupported encapsulation")

		_, _, err = newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{
			declaration(field{"changeDetection", str("OnPush")}),
		})
		requireFatal(t, err, "Expected change detection strategy to have a symbol name.")
	})

	t.Run("should reject interpolation configs without two markers", func(t *testing.T) {
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{
			declaration(field{"interpolation", arr(str("{{"))}),
		})
		requireFatal(t, err, "Unsupported interpolation config, expected an array containing exactly two strings.")
	})

	t.Run("should reject malformed inputs", func(t *testing.T) {
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{
			declaration(field{"inputs", obj(field{"a", arr(str("a"))})}),
		})
		requireFatal(t, err, "Unsupported input, expected [publicName, propertyName].")
	})

	t.Run("should report template errors at the template", func(t *testing.T) {
		template := str("<div></span>")
		_, _, err := newLinker(LinkerOptions{}).LinkCall(callee, []jsast.Expression{declaration(field{"template", template})})
		var fatal *ast.FatalLinkerError
		require.ErrorAs(t, err, &fatal)
		assert.True(t, strings.HasPrefix(fatal.Message, "Errors found in the template of TestCmp: "), fatal.Message)
		assert.Same(t, template, fatal.Node)
	})

	t.Run("should compile a component", func(t *testing.T) {
		code := link(t, newLinker(LinkerOptions{}), declaration(
			field{"inputs", obj(field{"input", str("input")}, field{"aliasedIn", str("in")})},
		))
		assert.True(t, strings.HasPrefix(code, "i0.ɵɵdefineComponent({"), code)
		assert.Contains(t, code, "type: TestCmp,")
		assert.Contains(t, code, `selectors: [["test-cmp"]],`)
		assert.Contains(t, code, `aliasedIn: ["in", "aliasedIn"]`)
		assert.Contains(t, code, "template: function TestCmp_Template(rf, ctx) {")
		assert.Contains(t, code, "i0.ɵɵtextInterpolate(ctx.name)")
		assert.Contains(t, code, "changeDetection: 0")
	})

	t.Run("should keep opaque values unchanged", func(t *testing.T) {
		providers := jsast.WithRange(&jsast.ArrayExpression{}, ast.Range{}, "[{provide: 'a', useValue: 'A'}]")
		code := link(t, newLinker(LinkerOptions{}), declaration(field{"providers", providers}))
		assert.Contains(t, code, "i0.ɵɵProvidersFeature([{provide: 'a', useValue: 'A'}], [])")
	})

	t.Run("should log linked declarations", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		link(t, newLinker(LinkerOptions{Logger: logger}), declaration())
		assert.Contains(t, buf.String(), "linked declaration")
		assert.Contains(t, buf.String(), "component=TestCmp")
		assert.Contains(t, buf.String(), "file=test.js")
	})
}

const constantTemplate = `<child [constant]="[1,2,3]"></child>`

func TestScriptLinking(t *testing.T) {
	t.Run("should wrap declarations that need constants in an IIFE", func(t *testing.T) {
		l := newLinker(LinkerOptions{})
		result, ok, err := l.LinkCall(callee, []jsast.Expression{declaration(field{"template", str(constantTemplate)})})
		require.NoError(t, err)
		require.True(t, ok)

		call, isCall := result.(*jsast.CallExpression)
		require.True(t, isCall)
		assert.Empty(t, call.Arguments)
		fn, isFn := call.Callee.(*jsast.FunctionExpression)
		require.True(t, isFn)
		require.Len(t, fn.Body.Body, 2)
		assert.Equal(t, "_c0", fn.Body.Body[0].(*jsast.VariableDeclaration).Name)
		assert.IsType(t, &jsast.ReturnStatement{}, fn.Body.Body[1])

		code := jsast.Print(result)
		assert.True(t, strings.HasPrefix(code, "(function () {\n  var _c0 = function () {"), code)
		assert.Contains(t, code, "i0.ɵɵpureFunction0(1, _c0)")

		statements, err := l.GetGlobalStatements()
		assert.NoError(t, err)
		assert.Nil(t, statements)
	})

	t.Run("should not wrap declarations without constants", func(t *testing.T) {
		code := link(t, newLinker(LinkerOptions{}), declaration())
		assert.True(t, strings.HasPrefix(code, "i0.ɵɵdefineComponent({"), code)
	})

	t.Run("should not share constants between declarations", func(t *testing.T) {
		l := newLinker(LinkerOptions{})
		first := link(t, l, declaration(field{"template", str(constantTemplate)}))
		second := link(t, l, declaration(field{"type", id("OtherCmp")}, field{"template", str(constantTemplate)}))
		assert.Contains(t, first, "var _c0")
		assert.Contains(t, second, "var _c0")
	})
}

func TestModuleLinking(t *testing.T) {
	t.Run("should pool constants across declarations", func(t *testing.T) {
		l := newLinker(LinkerOptions{EnableGlobalStatements: true})
		first := link(t, l, declaration(field{"template", str(constantTemplate)}))
		second := link(t, l, declaration(field{"type", id("OtherCmp")}, field{"template", str(constantTemplate)}))
		for _, code := range []string{first, second} {
			assert.True(t, strings.HasPrefix(code, "i0.ɵɵdefineComponent({"), code)
			assert.Contains(t, code, "i0.ɵɵpureFunction0(1, _c0)")
		}

		statements, err := l.GetGlobalStatements()
		require.NoError(t, err)
		require.Len(t, statements, 1)
		assert.Equal(t, "var _c0 = function () {\n  return [1, 2, 3];\n};", jsast.Print(statements[0]))
	})

	t.Run("should hoist nested templates", func(t *testing.T) {
		l := newLinker(LinkerOptions{EnableGlobalStatements: true})
		link(t, l, declaration(field{"template", str(`<child *ngIf="show">{{ name }}</child>`)}))

		statements, err := l.GetGlobalStatements()
		require.NoError(t, err)
		require.Len(t, statements, 1)
		fn, ok := statements[0].(*jsast.FunctionDeclaration)
		require.True(t, ok)
		assert.Equal(t, "TestCmp_child_0_Template", fn.Name)
	})

	t.Run("should return no statements for an empty pool", func(t *testing.T) {
		l := newLinker(LinkerOptions{EnableGlobalStatements: true})
		statements, err := l.GetGlobalStatements()
		assert.NoError(t, err)
		assert.Nil(t, statements)
	})

	t.Run("should keep linking after a failed declaration", func(t *testing.T) {
		l := newLinker(LinkerOptions{EnableGlobalStatements: true})
		_, _, err := l.LinkCall(callee, []jsast.Expression{declaration(field{"version", num(3)})})
		require.Error(t, err)

		link(t, l, declaration(field{"template", str(constantTemplate)}))
		statements, err := l.GetGlobalStatements()
		require.NoError(t, err)
		assert.Len(t, statements, 1)
	})

	t.Run("should require ngImport for pooled constants", func(t *testing.T) {
		l := newLinker(LinkerOptions{EnableGlobalStatements: true})
		l.globalConstantPool.AddStatement(output.DeclareConst("_c0", output.Literal(1)))
		_, err := l.GetGlobalStatements()
		assert.ErrorIs(t, err, ErrMissingNgImport)
	})
}
