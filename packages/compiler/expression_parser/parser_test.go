package expression_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/util"
)

func newParser() *ep.Parser {
	return ep.NewParser(ep.NewLexer())
}

func testSpan() *util.ParseSourceSpan {
	file := util.NewParseSourceFile("", "test.html")
	loc := util.NewParseLocation(file, 0, 0, 0)
	return util.NewParseSourceSpan(loc, loc, loc, nil)
}

func parseBinding(t *testing.T, input string) ep.AST {
	t.Helper()
	res := newParser().ParseBinding(input, testSpan(), 0, ep.DefaultInterpolationConfig)
	require.Empty(t, res.Errors)
	return res.AST
}

func TestParseBinding(t *testing.T) {
	t.Run("should parse property reads off the implicit receiver", func(t *testing.T) {
		ast := parseBinding(t, "foo.bar")
		read, ok := ast.(*ep.PropertyRead)
		require.True(t, ok)
		assert.Equal(t, "bar", read.Name)
		inner, ok := read.Receiver.(*ep.PropertyRead)
		require.True(t, ok)
		assert.Equal(t, "foo", inner.Name)
		assert.IsType(t, &ep.ImplicitReceiver{}, inner.Receiver)
		assert.Equal(t, ep.ParseSpan{Start: 0, End: 7}, read.Span())
	})

	t.Run("should respect operator precedence", func(t *testing.T) {
		ast := parseBinding(t, "a + b * c")
		bin, ok := ast.(*ep.Binary)
		require.True(t, ok)
		assert.Equal(t, "+", bin.Operation)
		right, ok := bin.Right.(*ep.Binary)
		require.True(t, ok)
		assert.Equal(t, "*", right.Operation)
	})

	t.Run("should parse pipes with arguments", func(t *testing.T) {
		ast := parseBinding(t, "1 | multiply:2")
		pipe, ok := ast.(*ep.BindingPipe)
		require.True(t, ok)
		assert.Equal(t, "multiply", pipe.Name)
		require.Len(t, pipe.Args, 1)
		assert.Equal(t, 2.0, pipe.Args[0].(*ep.LiteralPrimitive).Value)
		assert.Equal(t, 1.0, pipe.Exp.(*ep.LiteralPrimitive).Value)
	})

	t.Run("should parse literals", func(t *testing.T) {
		arr, ok := parseBinding(t, "[1, 'a', true, null, undefined]").(*ep.LiteralArray)
		require.True(t, ok)
		var got []interface{}
		for _, e := range arr.Expressions {
			got = append(got, e.(*ep.LiteralPrimitive).Value)
		}
		if diff := cmp.Diff([]interface{}{1.0, "a", true, nil, ep.Undefined}, got); diff != "" {
			t.Errorf("literal mismatch (-want +got):\n%s", diff)
		}

		m, ok := parseBinding(t, `{a: 1, "b-c": 2, d}`).(*ep.LiteralMap)
		require.True(t, ok)
		want := []ep.LiteralMapKey{{Key: "a"}, {Key: "b-c", Quoted: true}, {Key: "d"}}
		if diff := cmp.Diff(want, m.Keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		assert.IsType(t, &ep.PropertyRead{}, m.Values[2])
	})

	t.Run("should parse calls and safe navigation", func(t *testing.T) {
		call, ok := parseBinding(t, "a?.b(1)").(*ep.Call)
		require.True(t, ok)
		assert.IsType(t, &ep.SafePropertyRead{}, call.Receiver)
		assert.Len(t, call.Args, 1)

		assert.IsType(t, &ep.SafeCall{}, parseBinding(t, "fn?.()"))
		assert.IsType(t, &ep.KeyedRead{}, parseBinding(t, "a[0]"))
		assert.IsType(t, &ep.NonNullAssert{}, parseBinding(t, "a!"))
		assert.IsType(t, &ep.PrefixNot{}, parseBinding(t, "!a"))
		assert.IsType(t, &ep.Conditional{}, parseBinding(t, "a ? b : c"))
	})

	t.Run("should report assignments", func(t *testing.T) {
		res := newParser().ParseBinding("a = 1", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Bindings cannot contain assignments")
	})

	t.Run("should report interpolation inside a binding", func(t *testing.T) {
		res := newParser().ParseBinding("{{a}}", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Got interpolation ({{}}) where expression was expected")
	})

	t.Run("should report chains", func(t *testing.T) {
		res := newParser().ParseBinding("a; b", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Binding expression cannot contain chained expression")
	})

	t.Run("should shift spans by the absolute offset", func(t *testing.T) {
		res := newParser().ParseBinding("foo", testSpan(), 10, ep.DefaultInterpolationConfig)
		assert.Equal(t, ep.AbsoluteSourceSpan{Start: 10, End: 13}, res.AST.SourceSpan())
	})
}

func TestParseSimpleBinding(t *testing.T) {
	t.Run("should reject pipes", func(t *testing.T) {
		res := newParser().ParseSimpleBinding("a | b", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Host binding expression cannot contain pipes")
	})

	t.Run("should accept plain expressions", func(t *testing.T) {
		res := newParser().ParseSimpleBinding("foo.bar", testSpan(), 0, ep.DefaultInterpolationConfig)
		assert.Empty(t, res.Errors)
	})
}

func TestParseAction(t *testing.T) {
	t.Run("should parse chains and writes", func(t *testing.T) {
		res := newParser().ParseAction("a = 1; b[0] = $event", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.Empty(t, res.Errors)
		chain, ok := res.AST.(*ep.Chain)
		require.True(t, ok)
		require.Len(t, chain.Expressions, 2)
		assert.IsType(t, &ep.PropertyWrite{}, chain.Expressions[0])
		assert.IsType(t, &ep.KeyedWrite{}, chain.Expressions[1])
	})

	t.Run("should reject pipes", func(t *testing.T) {
		res := newParser().ParseAction("a | b", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Cannot have a pipe in an action expression")
	})
}

func TestParseInterpolation(t *testing.T) {
	t.Run("should split strings and expressions", func(t *testing.T) {
		res := newParser().ParseInterpolation("a {{ b }} c {{d | e}}", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotNil(t, res)
		require.Empty(t, res.Errors)
		interp, ok := res.AST.(*ep.Interpolation)
		require.True(t, ok)
		if diff := cmp.Diff([]string{"a ", " c ", ""}, interp.Strings); diff != "" {
			t.Errorf("strings mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, interp.Expressions, 2)
		read := interp.Expressions[0].(*ep.PropertyRead)
		assert.Equal(t, ep.ParseSpan{Start: 5, End: 6}, read.Span())
		assert.IsType(t, &ep.BindingPipe{}, interp.Expressions[1])
	})

	t.Run("should return nil without interpolation", func(t *testing.T) {
		assert.Nil(t, newParser().ParseInterpolation("plain text", testSpan(), 0, ep.DefaultInterpolationConfig))
		assert.Nil(t, newParser().ParseInterpolation("{{ unterminated", testSpan(), 0, ep.DefaultInterpolationConfig))
	})

	t.Run("should honor custom delimiters", func(t *testing.T) {
		config, err := ep.InterpolationConfigFromArray([]string{"[[", "]]"})
		require.NoError(t, err)
		res := newParser().ParseInterpolation("[[ a ]]", testSpan(), 0, config)
		require.NotNil(t, res)
		assert.Len(t, res.AST.(*ep.Interpolation).Expressions, 1)
	})

	t.Run("should not end inside quotes", func(t *testing.T) {
		res := newParser().ParseInterpolation(`{{ "}}" }}`, testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotNil(t, res)
		lit := res.AST.(*ep.Interpolation).Expressions[0].(*ep.LiteralPrimitive)
		assert.Equal(t, "}}", lit.Value)
	})

	t.Run("should report blank expressions", func(t *testing.T) {
		res := newParser().ParseInterpolation("{{ }}", testSpan(), 0, ep.DefaultInterpolationConfig)
		require.NotNil(t, res)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Msg, "Blank expressions are not allowed")
	})
}

func TestParseTemplateBindings(t *testing.T) {
	keysOf := func(bindings []ep.TemplateBinding) []string {
		var keys []string
		for _, b := range bindings {
			switch b := b.(type) {
			case *ep.VariableBinding:
				value := ""
				if b.Value != nil {
					value = b.Value.Source
				}
				keys = append(keys, "let "+b.Key.Source+"="+value)
			case *ep.ExpressionBinding:
				value := ""
				if b.Value != nil {
					value = b.Value.Source
				}
				keys = append(keys, b.Key.Source+"="+value)
			}
		}
		return keys
	}

	t.Run("should parse ngFor microsyntax", func(t *testing.T) {
		res := newParser().ParseTemplateBindings("ngFor", "let item of items; index as i; trackBy: fn", testSpan(), 0, 0)
		require.Empty(t, res.Errors)
		want := []string{"ngFor=", "let item=", "ngForOf=items", "let i=index", "ngForTrackBy=fn"}
		if diff := cmp.Diff(want, keysOf(res.TemplateBindings)); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should bind the directive value with as", func(t *testing.T) {
		res := newParser().ParseTemplateBindings("ngIf", "cond as value", testSpan(), 0, 0)
		require.Empty(t, res.Errors)
		want := []string{"ngIf=cond", "let value=ngIf"}
		if diff := cmp.Diff(want, keysOf(res.TemplateBindings)); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse a plain expression", func(t *testing.T) {
		res := newParser().ParseTemplateBindings("ngIf", "true", testSpan(), 0, 5)
		require.Len(t, res.TemplateBindings, 1)
		binding := res.TemplateBindings[0].(*ep.ExpressionBinding)
		assert.Equal(t, "true", binding.Value.Source)
		assert.Equal(t, ep.AbsoluteSourceSpan{Start: 5, End: 9}, binding.Value.AST.SourceSpan())
	})
}

func TestLexer(t *testing.T) {
	t.Run("should tokenize operators and literals", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`a?.b ?? 'x' !== 1.5`)
		var got []string
		for _, tok := range tokens {
			got = append(got, tok.String())
		}
		if diff := cmp.Diff([]string{"a", "?.", "b", "??", "x", "!==", "1.5"}, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, tokens[4].IsString())
		assert.True(t, tokens[6].IsNumber())
	})

	t.Run("should report unterminated strings", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`'abc`)
		require.NotEmpty(t, tokens)
		assert.True(t, tokens[len(tokens)-1].IsError())
	})

	t.Run("should recognize identifiers", func(t *testing.T) {
		assert.True(t, ep.IsIdentifier("$implicit"))
		assert.False(t, ep.IsIdentifier("1a"))
	})
}
