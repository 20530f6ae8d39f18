package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ngc-linker/packages/compiler/output"
)

func TestIsConstant(t *testing.T) {
	t.Run("should treat arrays of literals as constant", func(t *testing.T) {
		arr := output.LiteralArr(output.Literal(1.0), output.Literal("a"), output.NullExpr())
		assert.True(t, arr.IsConstant())
	})

	t.Run("should treat arrays with variable reads as non-constant", func(t *testing.T) {
		arr := output.LiteralArr(output.Literal(1.0), output.Prop(output.Variable("ctx"), "a"))
		assert.False(t, arr.IsConstant())
	})

	t.Run("should look into nested maps", func(t *testing.T) {
		m := output.LiteralMap(
			output.NewLiteralMapEntry("a", output.LiteralArr(output.Literal(true)), false),
		)
		assert.True(t, m.IsConstant())
	})
}

func TestIsEquivalent(t *testing.T) {
	a := output.CallFn(output.Variable("f"), output.Literal(1.0))
	b := output.CallFn(output.Variable("f"), output.Literal(1.0))
	c := output.CallFn(output.Variable("f"), output.Literal(2.0))

	assert.True(t, a.IsEquivalent(b))
	assert.False(t, a.IsEquivalent(c))

	fn1 := output.Fn(output.Params("a0"), []output.OutputStatement{output.Return(output.LiteralArr(output.Variable("a0")))}, "")
	fn2 := output.Fn(output.Params("a0"), []output.OutputStatement{output.Return(output.LiteralArr(output.Variable("a0")))}, "")
	assert.True(t, fn1.IsEquivalent(fn2))

	core := "@angular/core"
	name := "ɵɵtext"
	other := "ɵɵelement"
	assert.True(t, output.ImportExpr(output.NewExternalReference(&core, &name)).
		IsEquivalent(output.ImportExpr(output.NewExternalReference(&core, &name))))
	assert.False(t, output.ImportExpr(output.NewExternalReference(&core, &name)).
		IsEquivalent(output.ImportExpr(output.NewExternalReference(&core, &other))))
}

func TestJSDocCommentStmt(t *testing.T) {
	t.Run("should render a single untagged line inline", func(t *testing.T) {
		stmt := output.NewJSDocCommentStmt([]output.JSDocTag{{Text: "some text"}})
		assert.Equal(t, "* some text ", stmt.String())
	})

	t.Run("should render tags on separate lines and escape @", func(t *testing.T) {
		stmt := output.NewJSDocCommentStmt([]output.JSDocTag{
			{TagName: output.JSDocTagNameDesc, Text: "greeting@home"},
			{TagName: output.JSDocTagNameMeaning, Text: "hello"},
		})
		assert.Equal(t, "*\n * @desc greeting\\@home\n * @meaning hello\n ", stmt.String())
	})
}
