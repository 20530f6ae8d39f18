package pool_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

func declaredNames(cp *pool.ConstantPool) []string {
	var names []string
	for _, stmt := range cp.GetStatements() {
		switch s := stmt.(type) {
		case *output.DeclareVarStmt:
			names = append(names, s.Name)
		case *output.DeclareFunctionStmt:
			names = append(names, s.Name)
		}
	}
	return names
}

func TestGetConstLiteral(t *testing.T) {
	t.Run("should not pool short primitive literals", func(t *testing.T) {
		cp := pool.NewConstantPool()
		lit := output.Literal("short")
		assert.Same(t, lit, cp.GetConstLiteral(lit, true))
		assert.Empty(t, cp.GetStatements())
	})

	t.Run("should pool long strings", func(t *testing.T) {
		cp := pool.NewConstantPool()
		long := output.Literal(strings.Repeat("x", pool.PoolInclusionLengthThresholdForStrings))
		ref := cp.GetConstLiteral(long, true)
		fixup, ok := ref.(*pool.FixupExpression)
		require.True(t, ok)
		assert.Equal(t, "_c0", fixup.Resolved().(*output.ReadVarExpr).Name)
	})

	t.Run("should share a literal the second time it is requested", func(t *testing.T) {
		cp := pool.NewConstantPool()
		first := cp.GetConstLiteral(output.LiteralArr(output.Literal(1.0), output.Literal(2.0)), false)
		assert.Empty(t, cp.GetStatements())

		second := cp.GetConstLiteral(output.LiteralArr(output.Literal(1.0), output.Literal(2.0)), false)
		assert.Same(t, first, second)
		if diff := cmp.Diff([]string{"_c0"}, declaredNames(cp)); diff != "" {
			t.Errorf("declared names mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestGetLiteralFactory(t *testing.T) {
	t.Run("should hoist a function returning the literal", func(t *testing.T) {
		cp := pool.NewConstantPool()
		dynamic := output.Prop(output.Variable("ctx"), "foo")
		factory, args, err := cp.GetLiteralFactory(output.LiteralArr(output.Literal(1.0), dynamic))
		require.NoError(t, err)

		assert.Equal(t, "_c0", factory.(*output.ReadVarExpr).Name)
		require.Len(t, args, 1)
		assert.Same(t, dynamic, args[0])

		decl := cp.GetStatements()[0].(*output.DeclareVarStmt)
		fn := decl.Value.(*output.FunctionExpr)
		if diff := cmp.Diff([]string{"a1"}, []string{fn.Params[0].Name}); diff != "" {
			t.Errorf("params mismatch (-want +got):\n%s", diff)
		}
		_, isReturn := fn.Statements[0].(*output.ReturnStatement)
		assert.True(t, isReturn)
	})

	t.Run("should reuse factories for literals of the same shape", func(t *testing.T) {
		cp := pool.NewConstantPool()
		a, _, err := cp.GetLiteralFactory(output.LiteralMap(output.NewLiteralMapEntry("k", output.Variable("x"), false)))
		require.NoError(t, err)
		b, _, err := cp.GetLiteralFactory(output.LiteralMap(output.NewLiteralMapEntry("k", output.Variable("y"), false)))
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Len(t, cp.GetStatements(), 1)
	})

	t.Run("should reject other expressions", func(t *testing.T) {
		_, _, err := pool.NewConstantPool().GetLiteralFactory(output.Literal(1.0))
		assert.Error(t, err)
	})
}

func TestGetSharedFunctionReference(t *testing.T) {
	cp := pool.NewConstantPool()
	body := []output.OutputStatement{output.Return(output.Literal(true))}
	first := cp.GetSharedFunctionReference(output.Fn(nil, body, ""), "_handler")
	second := cp.GetSharedFunctionReference(output.Fn(nil, body, ""), "_handler")
	assert.Equal(t, "_handler", first.(*output.ReadVarExpr).Name)
	assert.Equal(t, "_handler", second.(*output.ReadVarExpr).Name)
	assert.Len(t, cp.GetStatements(), 1)
}

func TestUniqueName(t *testing.T) {
	cp := pool.NewConstantPool()
	got := []string{
		cp.UniqueName("Comp_Template", false),
		cp.UniqueName("Comp_Template", false),
		cp.UniqueName("_r", true),
	}
	if diff := cmp.Diff([]string{"Comp_Template", "Comp_Template1", "_r0"}, got); diff != "" {
		t.Errorf("UniqueName mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyOf(t *testing.T) {
	ref := "ɵɵtext"
	module := "@angular/core"
	tests := []struct {
		name string
		expr output.OutputExpression
		want string
	}{
		{"string", output.Literal("a"), `"a"`},
		{"null", output.NullExpr(), "null"},
		{"number", output.Literal(1.5), "1.5"},
		{"array", output.LiteralArr(output.Literal(true), output.Variable("x")), "[true,read(x)]"},
		{"map", output.LiteralMap(output.NewLiteralMapEntry("a-b", output.Literal(1.0), true)), `{"a-b":1}`},
		{"external", output.ImportExpr(output.NewExternalReference(&module, &ref)), `import("@angular/core", "ɵɵtext")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pool.KeyOf(tt.expr))
		})
	}
}
