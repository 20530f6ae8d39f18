package ast_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
)

func prop(key string, value jsast.Expression) *jsast.Property {
	return &jsast.Property{Key: &jsast.Identifier{Name: key}, Value: value}
}

func parse(t *testing.T, props ...*jsast.Property) (*ast.AstObject[jsast.Expression], *jsast.ObjectExpression) {
	t.Helper()
	expr := &jsast.ObjectExpression{Properties: props}
	obj, err := ast.ParseAstObject[jsast.Expression](expr, jsast.Host{})
	require.NoError(t, err)
	return obj, expr
}

func TestAstObject(t *testing.T) {
	t.Run("should read typed properties", func(t *testing.T) {
		obj, expr := parse(t,
			prop("str", &jsast.StringLiteral{Value: "a"}),
			prop("num", &jsast.NumericLiteral{Value: 2}),
			prop("bool", &jsast.BooleanLiteral{Value: true}),
			prop("nested", &jsast.ObjectExpression{Properties: []*jsast.Property{prop("x", &jsast.NullLiteral{})}}),
		)
		assert.Same(t, expr, obj.Expression())

		s, err := obj.GetString("str")
		require.NoError(t, err)
		assert.Equal(t, "a", s)

		n, err := obj.GetNumber("num")
		require.NoError(t, err)
		assert.Equal(t, 2.0, n)

		b, err := obj.GetBoolean("bool")
		require.NoError(t, err)
		assert.True(t, b)

		nested, err := obj.GetObject("nested")
		require.NoError(t, err)
		assert.True(t, nested.Has("x"))
		assert.False(t, obj.Has("x"))
	})

	t.Run("should fail on missing properties at the object", func(t *testing.T) {
		obj, expr := parse(t)
		_, err := obj.GetString("selector")
		var fatal *ast.FatalLinkerError
		require.True(t, errors.As(err, &fatal))
		assert.Equal(t, "Expected property 'selector' to be present.", fatal.Error())
		assert.Same(t, expr, fatal.Node)
	})

	t.Run("should fail on the wrong kind at the value", func(t *testing.T) {
		value := &jsast.StringLiteral{Value: "1"}
		obj, _ := parse(t, prop("version", value))
		_, err := obj.GetNumber("version")
		var fatal *ast.FatalLinkerError
		require.True(t, errors.As(err, &fatal))
		assert.Equal(t, "Unsupported syntax, expected a number literal.", fatal.Message)
		assert.Same(t, value, fatal.Node)
	})

	t.Run("should wrap opaque values without interpreting them", func(t *testing.T) {
		fn := &jsast.FunctionExpression{Body: &jsast.BlockStatement{}}
		obj, _ := parse(t, prop("type", fn))
		wrapped, err := obj.GetOpaque("type")
		require.NoError(t, err)
		assert.Same(t, fn, wrapped.Node)

		value, err := obj.GetValue("type")
		require.NoError(t, err)
		assert.True(t, value.IsFunction())
		assert.Same(t, fn, value.Node())
	})

	t.Run("should read array elements as values", func(t *testing.T) {
		obj, _ := parse(t, prop("list", &jsast.ArrayExpression{Elements: []jsast.Expression{
			&jsast.StringLiteral{Value: "a"}, &jsast.NumericLiteral{Value: 1},
		}}))
		values, err := obj.GetArray("list")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.True(t, values[0].IsString())
		assert.True(t, values[1].IsNumber())
		assert.False(t, values[1].IsString())
	})

	t.Run("should convert every property in source order", func(t *testing.T) {
		obj, _ := parse(t,
			prop("z", &jsast.StringLiteral{Value: "1"}),
			prop("a", &jsast.StringLiteral{Value: "2"}),
			&jsast.Property{Key: &jsast.StringLiteral{Value: "m-n"}, Value: &jsast.StringLiteral{Value: "3"}},
		)
		entries, err := ast.ToLiteral(obj, (*ast.AstValue[jsast.Expression]).GetString)
		require.NoError(t, err)
		want := []ast.Entry[string]{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}, {Key: "m-n", Value: "3"}}
		if diff := cmp.Diff(want, entries); diff != "" {
			t.Errorf("entries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should stop converting at the first error", func(t *testing.T) {
		obj, _ := parse(t, prop("a", &jsast.StringLiteral{Value: "1"}), prop("b", &jsast.NumericLiteral{Value: 2}))
		_, err := ast.ToLiteral(obj, (*ast.AstValue[jsast.Expression]).GetString)
		assert.EqualError(t, err, "Unsupported syntax, expected a string literal.")
	})
}

func TestAstValue(t *testing.T) {
	host := jsast.Host{}

	t.Run("should resolve symbol names", func(t *testing.T) {
		value := ast.NewAstValue[jsast.Expression](&jsast.MemberExpression{
			Object:   &jsast.Identifier{Name: "i0"},
			Property: &jsast.Identifier{Name: "OnPush"},
		}, host)
		name, ok := value.GetSymbolName()
		assert.True(t, ok)
		assert.Equal(t, "OnPush", name)
	})

	t.Run("should read nested objects and arrays", func(t *testing.T) {
		value := ast.NewAstValue[jsast.Expression](&jsast.ObjectExpression{Properties: []*jsast.Property{
			prop("first", &jsast.BooleanLiteral{Value: false}),
		}}, host)
		assert.True(t, value.IsObject())
		assert.False(t, value.IsArray())
		obj, err := value.GetObject()
		require.NoError(t, err)
		first, err := obj.GetBoolean("first")
		require.NoError(t, err)
		assert.False(t, first)

		_, err = value.GetArray()
		assert.EqualError(t, err, "Unsupported syntax, expected an array literal.")
	})

	t.Run("should report ranges of parsed values", func(t *testing.T) {
		r := ast.Range{StartPos: 4, StartLine: 0, StartCol: 4, EndPos: 9}
		value := ast.NewAstValue[jsast.Expression](jsast.WithRange(&jsast.StringLiteral{Value: "abc"}, r, `"abc"`), host)
		got, err := value.GetRange()
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})
}

func TestOrderedMap(t *testing.T) {
	m := ast.NewOrderedMap[int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.Equal(t, 2, m.Len())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.False(t, m.Has("c"))
}
