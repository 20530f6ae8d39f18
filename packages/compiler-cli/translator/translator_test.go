package translator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
	"ngc-linker/packages/compiler-cli/translator"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/util"
)

var ngImport jsast.Expression = &jsast.Identifier{Name: "i0"}

func translateExpression(t *testing.T, expr output.OutputExpression) string {
	t.Helper()
	translated, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](expr, jsast.Factory{}, ngImport)
	require.NoError(t, err)
	return jsast.Print(translated)
}

func translateStatements(t *testing.T, stmts ...output.OutputStatement) string {
	t.Helper()
	translated, err := translator.TranslateStatements[jsast.Statement, jsast.Expression](stmts, jsast.Factory{}, ngImport)
	require.NoError(t, err)
	return jsast.Print(&jsast.Program{Body: translated})
}

func TestTranslateExpression(t *testing.T) {
	a, b, c := output.Variable("a"), output.Variable("b"), output.Variable("c")

	tests := []struct {
		name string
		expr output.OutputExpression
		want string
	}{
		{"should parenthesize a conditional used as a condition",
			output.Conditional(output.Conditional(a, b, c), output.Literal(1), output.Literal(2)), "(a ? b : c) ? 1 : 2"},
		{"should default a missing false case to null",
			output.Conditional(a, b, nil), "a ? b : null"},
		{"should resolve core references against ngImport",
			output.ImportExpr(r3_identifiers.Element), "i0.ɵɵelement"},
		{"should resolve the core namespace to ngImport",
			output.ImportExpr(r3_identifiers.Core), "i0"},
		{"should annotate pure calls",
			output.NewInvokeFunctionExpr(output.Variable("f"), nil, nil, nil, true), "/*@__PURE__*/ f()"},
		{"should call methods",
			output.CallMethod(a, "m", output.Literal("x")), `a.m("x")`},
		{"should parenthesize integers before a property read",
			output.Prop(output.Literal(1), "toString"), "(1).toString"},
		{"should call methods on integers",
			output.CallMethod(output.Literal(1), "toFixed", output.Literal(2)), "(1).toFixed(2)"},
		{"should read properties and keys",
			output.Key(output.Prop(a, "b"), output.Literal(0)), "a.b[0]"},
		{"should parenthesize assignments in expression position",
			output.CallFn(output.Variable("f"), output.NewWriteVarExpr("a", output.Literal(1), nil, nil)), "f((a = 1))"},
		{"should map binary operators",
			output.Binary(output.BinaryOperatorAnd, a, output.Binary(output.BinaryOperatorIdentical, b, c)), "a && b === c"},
		{"should negate",
			output.Not(a), "!a"},
		{"should keep parenthesized unary operators",
			output.NewUnaryOperatorExpr(output.UnaryOperatorMinus, a, nil, nil, true), "(-a)"},
		{"should print undefined",
			output.Literal(output.Undefined), "undefined"},
		{"should print typeof",
			output.NewTypeofExpr(a, nil, nil), "typeof a"},
		{"should create instances",
			output.NewInstantiateExpr(output.Variable("Foo"), []output.OutputExpression{a}, nil, nil), "new Foo(a)"},
		{"should strip casts and non-null assertions",
			output.NewCastExpr(output.NewAssertNotNullExpr(a, nil), nil, nil), "a"},
		{"should print literal maps with quoted keys",
			output.LiteralMap(output.NewLiteralMapEntry("a", b, false), output.NewLiteralMapEntry("b-c", c, true)), "{\n  a: b,\n  \"b-c\": c\n}"},
		{"should pass wrapped host nodes through",
			output.NewWrappedNodeExpr(jsast.WithRange(&jsast.Raw{Text: "x"}, ast.Range{}, "{provide: 'a'}"), nil, nil), "{provide: 'a'}"},
		{"should name function expressions",
			output.Fn(output.Params("rf", "ctx"), []output.OutputStatement{output.Return(a)}, "Cmp_Template"), "function Cmp_Template(rf, ctx) {\n  return a;\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateExpression(t, tt.expr))
		})
	}

	t.Run("should give the same output for the same node", func(t *testing.T) {
		cp := pool.NewConstantPool()
		consts := cp.GetConstLiteral(output.LiteralArr(output.Literal("ngIf"), output.Literal(4)), true)
		template := output.Fn(output.Params("rf", "ctx"), []output.OutputStatement{
			output.If(output.Binary(output.BinaryOperatorBitwiseAnd, output.Variable("rf"), output.Literal(1)),
				output.Stmt(output.CallFn(output.ImportExpr(r3_identifiers.Element), output.Literal(0), output.Literal("div"), consts))),
		}, "Cmp_Template")

		first := translateExpression(t, template)
		second := translateExpression(t, template)
		assert.Equal(t, first, second)
		assert.Contains(t, first, `i0.ɵɵelement(0, "div", _c0);`)
		assert.Equal(t, translateStatements(t, cp.GetStatements()...), translateStatements(t, cp.GetStatements()...))
		assert.Len(t, cp.GetStatements(), 1)
	})

	t.Run("should reject references to other modules", func(t *testing.T) {
		module, name := "@angular/common", "NgIf"
		_, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.ImportExpr(output.NewExternalReference(&module, &name)), jsast.Factory{}, ngImport)
		require.ErrorIs(t, err, translator.ErrUnsupported)
		assert.EqualError(t, err, `translator error: unable to import from "@angular/common", only "@angular/core" is available`)
	})

	t.Run("should reject unmapped binary operators", func(t *testing.T) {
		_, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.Binary(output.BinaryOperatorNullishCoalesce, a, b), jsast.Factory{}, ngImport)
		assert.ErrorIs(t, err, translator.ErrUnsupported)
	})

	t.Run("should report kinds the linker never emits", func(t *testing.T) {
		_, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.NewCommaExpr([]output.OutputExpression{a, b}, nil), jsast.Factory{}, ngImport)
		require.ErrorIs(t, err, translator.ErrNotImplemented)
		assert.EqualError(t, err, "translator error: comma expression: not implemented")

		_, err = translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.NewLocalizedString([]string{"a"}, nil, nil), jsast.Factory{}, ngImport)
		assert.ErrorIs(t, err, translator.ErrNotImplemented)
	})

	t.Run("should reject wrapped nodes of another host", func(t *testing.T) {
		_, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.NewWrappedNodeExpr("not a node", nil, nil), jsast.Factory{}, ngImport)
		assert.ErrorIs(t, err, translator.ErrUnsupported)
	})

	t.Run("should attach source map ranges of template expressions", func(t *testing.T) {
		file := util.NewParseSourceFile("<div>{{ a }}</div>", "cmp.html")
		span := util.NewParseSourceSpan(util.NewParseLocation(file, 8, 0, 8), util.NewParseLocation(file, 9, 0, 9), nil, nil)
		translated, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.NewReadVarExpr("a", nil, span), jsast.Factory{}, ngImport)
		require.NoError(t, err)

		sourceMap := translated.Location().SourceMap
		require.NotNil(t, sourceMap)
		assert.Equal(t, "cmp.html", sourceMap.URL)
		assert.Equal(t, "<div>{{ a }}</div>", sourceMap.Content)
		assert.Equal(t, translator.SourceMapLocation{Offset: 8, Line: 0, Column: 8}, sourceMap.Start)
	})

	t.Run("should not map spans without a file url", func(t *testing.T) {
		translated, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](
			output.Variable("a"), jsast.Factory{}, ngImport)
		require.NoError(t, err)
		assert.Nil(t, translated.Location().SourceMap)
	})
}

func TestTranslateStatements(t *testing.T) {
	t.Run("should declare constants with var", func(t *testing.T) {
		got := translateStatements(t, output.DeclareConst("_c0", output.LiteralArr(output.Literal(1), output.Literal(2))))
		assert.Equal(t, "var _c0 = [1, 2];", got)
	})

	t.Run("should not parenthesize assignments in statement position", func(t *testing.T) {
		got := translateStatements(t,
			output.Stmt(output.NewWritePropExpr(output.Variable("ctx"), "a", output.Literal(1), nil, nil)),
			output.Stmt(output.NewWriteKeyExpr(output.Variable("ctx"), output.Literal("b"), output.Literal(2), nil, nil)),
		)
		assert.Equal(t, "ctx.a = 1;\nctx[\"b\"] = 2;", got)
	})

	t.Run("should translate control flow", func(t *testing.T) {
		rf := output.Variable("rf")
		got := translateStatements(t,
			output.NewDeclareFunctionStmt("Cmp_Template", output.Params("rf", "ctx"), []output.OutputStatement{
				output.If(output.Binary(output.BinaryOperatorBitwiseAnd, rf, output.Literal(1)),
					output.Stmt(output.CallFn(output.ImportExpr(r3_identifiers.Element), output.Literal(0), output.Literal("div")))),
				output.NewIfStmt(output.Variable("x"), []output.OutputStatement{output.Return(nil)},
					[]output.OutputStatement{output.NewThrowStmt(output.Variable("e"), nil)}, nil),
			}, nil, output.StmtModifierNone, nil),
		)
		want := "function Cmp_Template(rf, ctx) {\n" +
			"  if (rf & 1) {\n" +
			"    i0.ɵɵelement(0, \"div\");\n" +
			"  }\n" +
			"  if (x) {\n" +
			"    return;\n" +
			"  } else {\n" +
			"    throw e;\n" +
			"  }\n" +
			"}"
		assert.Equal(t, want, got)
	})

	t.Run("should translate comments", func(t *testing.T) {
		assert.Equal(t, "// note", translateStatements(t, output.NewCommentStmt("note", false, nil)))
	})

	t.Run("should stop at the first failing statement", func(t *testing.T) {
		_, err := translator.TranslateStatements[jsast.Statement, jsast.Expression]([]output.OutputStatement{
			output.DeclareConst("_c0", output.Literal(1)),
			output.NewClassStmt("A", nil, nil),
		}, jsast.Factory{}, ngImport)
		require.ErrorIs(t, err, translator.ErrNotImplemented)

		var translatorErr *translator.Error
		require.ErrorAs(t, err, &translatorErr)
		assert.Equal(t, "class declaration: not implemented", translatorErr.Message)
	})
}
