package treesitter

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/jsast"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`\s*([^\w\s])\s*`)
)

// normalize drops formatting so emitted code can be compared by structure
func normalize(code string) string {
	code = whitespace.ReplaceAllString(code, " ")
	return strings.TrimSpace(punctuation.ReplaceAllString(code, "$1"))
}

// assertInOrder checks that every fragment appears in code after the
// previous one
func assertInOrder(t *testing.T, code string, fragments ...string) {
	t.Helper()
	normalized := normalize(code)
	pos := 0
	for _, fragment := range fragments {
		want := normalize(fragment)
		idx := strings.Index(normalized[pos:], want)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q after offset %d in:\n%s", fragment, pos, code) {
			return
		}
		pos += idx + len(want)
	}
}

func linkFixture(t *testing.T, name string, opts Options) *Result {
	t.Helper()
	path := filepath.Join("testdata", name)
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	result, err := LinkSource(context.Background(), path, src, opts)
	require.NoError(t, err)
	return result
}

func TestLinkSource(t *testing.T) {
	t.Run("should link a component inside a module", func(t *testing.T) {
		result := linkFixture(t, "module.js", Options{})
		assert.Empty(t, result.Diagnostics)
		assert.Equal(t, 1, result.Linked)
		assert.NotContains(t, result.Code, "$ngDeclareComponent")

		assertInOrder(t, result.Code,
			`import * as i0 from '@angular/core';`,
			`function MyComponent_child_0_Template(rf, ctx) {`,
			`i0.ɵɵpipe(2, "multiply");`,
			`class MyComponent {}`,
			`MyComponent.ɵcmp = i0.ɵɵdefineComponent({`,
			`type: MyComponent,`,
			`selectors: [["my-component"]],`,
			`hostVars: 2,`,
			`exportAs: [],`,
			`features: [i0.ɵɵProvidersFeature(`,
			`decls: 2,`,
			`vars: 1,`,
			`consts: [["some-directive", "", 4, "ngIf"], ["some-directive", ""]],`,
			`template: function MyComponent_Template(rf, ctx) {`,
			`encapsulation: 2,`,
			`changeDetection: 0`,
		)
		assertInOrder(t, result.Code, `aliasedIn: ["in", "aliasedIn"]`)
		assertInOrder(t, result.Code, `i0.ɵɵtemplate(0, MyComponent_child_0_Template, 3, 4, "child", 0);`)
		assertInOrder(t, result.Code,
			`i0.ɵɵlistener("click", function MyComponent_click_HostBindingHandler($event) {`,
			`return ctx.handleClick($event);`,
		)
		assertInOrder(t, result.Code, `i0.ɵɵhostProperty("a", ctx.foo.bar)("hostExpr", ctx.hostExpr);`)
		assertInOrder(t, result.Code, `pipes: [function () { return MultiplyPipe; }]`)
	})

	t.Run("should keep opaque expressions as written", func(t *testing.T) {
		result := linkFixture(t, "module.js", Options{})
		assert.Contains(t, normalize(result.Code), normalize(`provide: 'a'`))
	})

	t.Run("should hoist shared constants once after the last import", func(t *testing.T) {
		result := linkFixture(t, "shared-constants.js", Options{})
		assert.Empty(t, result.Diagnostics)
		assert.Equal(t, 2, result.Linked)
		assert.Equal(t, 1, strings.Count(result.Code, "var _c0"))

		assertInOrder(t, result.Code,
			`import * as i0 from '@angular/core';`,
			`var _c0 = function () { return [1, 2, 3, 4, 5, 6, 7, 8, 9]; };`,
			`class MyComponent {}`,
			`exportAs: [],`,
			`features: [i0.ɵɵProvidersFeature([], [])],`,
			`consts: [[3, "constant"]],`,
			`i0.ɵɵproperty("constant", i0.ɵɵpureFunction0(1, _c0));`,
			`class DuplicateComponent {}`,
			`exportAs: [],`,
			`template: function DuplicateComponent_Template(rf, ctx) {`,
			`i0.ɵɵproperty("constant", i0.ɵɵpureFunction0(1, _c0));`,
		)
	})

	t.Run("should wrap declarations in scripts in a function", func(t *testing.T) {
		result := linkFixture(t, "script.js", Options{})
		assert.Empty(t, result.Diagnostics)
		assert.Equal(t, 2, result.Linked)
		assert.Equal(t, 2, strings.Count(result.Code, "var _c0"))

		iife := `(function () { var _c0 = function () { return [1, 2, 3, 4, 5, 6, 7, 8, 9]; }; return i0.ɵɵdefineComponent({`
		assertInOrder(t, result.Code,
			`MyComponent.ɵcmp = `+iife,
			`i0.ɵɵpureFunction0(1, _c0)`,
			`})();`,
			`DuplicateComponent.ɵcmp = `+iife,
			`})();`,
		)
	})

	t.Run("should leave files without declarations untouched", func(t *testing.T) {
		src := []byte("import * as i0 from '@angular/core';\nconst a = 1;\n")
		result, err := LinkSource(context.Background(), "plain.js", src, Options{SourceMap: true})
		require.NoError(t, err)
		assert.Equal(t, string(src), result.Code)
		assert.Zero(t, result.Linked)
		assert.Nil(t, result.SourceMap)
	})

	t.Run("should report a failing declaration and keep linking the rest", func(t *testing.T) {
		src, err := os.ReadFile(filepath.Join("testdata", "shared-constants.js"))
		require.NoError(t, err)
		broken := strings.Replace(string(src), "version: 1", "version: 2", 1)

		result, err := LinkSource(context.Background(), "broken.js", []byte(broken), Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Linked)
		require.Len(t, result.Diagnostics, 1)

		d := result.Diagnostics[0]
		assert.Equal(t, "broken.js", d.File)
		assert.Equal(t, "Expected metadata version to be 1.", d.Message)
		assert.Equal(t, 5, d.Line)
		assert.Equal(t, 12, d.Column)
		assert.Contains(t, d.CodeFrame, "> 5 |   version: 2,")
		assert.Equal(t, "broken.js:5:12: Expected metadata version to be 1.", d.String())

		assert.Contains(t, result.Code, "i0.$ngDeclareComponent({\n  version: 2")
		assert.Equal(t, 1, strings.Count(result.Code, "ɵɵdefineComponent"))
	})

	t.Run("should report template errors at the template", func(t *testing.T) {
		src := "import * as i0 from '@angular/core';\n" +
			"class A {}\n" +
			"A.ɵcmp = i0.$ngDeclareComponent({version: 1, template: '<div></span>', interpolation: ['{{', '}}'], type: A, ngImport: i0});\n"
		result, err := LinkSource(context.Background(), "errors.js", []byte(src), Options{})
		require.NoError(t, err)
		require.Len(t, result.Diagnostics, 1)
		assert.Contains(t, result.Diagnostics[0].Message, "Errors found in the template of A:")
		assert.Equal(t, 3, result.Diagnostics[0].Line)
		assert.Equal(t, 56, result.Diagnostics[0].Column)
	})

	t.Run("should reject files that do not parse", func(t *testing.T) {
		_, err := LinkSource(context.Background(), "bad.js", []byte("const = ;"), Options{})
		assert.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("should reject files with missing tokens", func(t *testing.T) {
		for _, src := range []string{"f(1;\n", "const a = [1, 2;\n", "if (a) {\n"} {
			_, err := LinkSource(context.Background(), "missing.js", []byte(src), Options{})
			assert.ErrorIs(t, err, ErrSyntax, src)
		}
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		src, err := os.ReadFile(filepath.Join("testdata", "module.js"))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = LinkSource(ctx, "module.js", src, Options{})
		assert.Error(t, err)
	})

	t.Run("should build a source map for the linked file", func(t *testing.T) {
		result := linkFixture(t, "shared-constants.js", Options{SourceMap: true})
		require.NotNil(t, result.SourceMap)
		assert.Equal(t, 3, result.SourceMap.Version)
		assert.Equal(t, filepath.Join("testdata", "shared-constants.js"), result.SourceMap.Sources[0])
		assert.NotEmpty(t, result.SourceMap.Mappings)
		assert.Equal(t, strings.Count(result.Code, "\n")+1, strings.Count(result.SourceMap.Mappings, ";")+1)
	})
}

func TestLanguageForPath(t *testing.T) {
	tests := map[string]Language{
		"a.js":         LanguageJavaScript,
		"a.mjs":        LanguageJavaScript,
		"dir/a.ts":     LanguageTypeScript,
		"a.MTS":        LanguageTypeScript,
		"no-extension": LanguageJavaScript,
	}
	for path, want := range tests {
		assert.Equal(t, want, LanguageForPath(path), path)
	}
}

// parseExpression converts the single expression of src
func parseExpression(t *testing.T, src string) jsast.Expression {
	t.Helper()
	code := []byte("(" + src + ");")
	tree, root, err := parseTree(context.Background(), LanguageJavaScript, code)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	_, bad := firstError(root)
	require.False(t, bad, "syntax error in %q", src)

	paren := root.NamedChild(0).NamedChild(0)
	require.Equal(t, "parenthesized_expression", paren.Type())
	return newConverter(code).expression(namedChildren(paren)[0])
}

func TestConverter(t *testing.T) {
	t.Run("should convert literals", func(t *testing.T) {
		assert.Equal(t, "a\nb", parseExpression(t, `'a\nb'`).(*jsast.StringLiteral).Value)
		assert.Equal(t, "plain", parseExpression(t, "`plain`").(*jsast.StringLiteral).Value)
		assert.Equal(t, 255.0, parseExpression(t, `0xff`).(*jsast.NumericLiteral).Value)
		assert.Equal(t, -1.5, parseExpression(t, `-1.5`).(*jsast.NumericLiteral).Value)
		assert.True(t, parseExpression(t, `true`).(*jsast.BooleanLiteral).Value)
		assert.IsType(t, &jsast.NullLiteral{}, parseExpression(t, `null`))
	})

	t.Run("should keep array holes", func(t *testing.T) {
		arr := parseExpression(t, `[, 1, , 2]`).(*jsast.ArrayExpression)
		require.Len(t, arr.Elements, 4)
		assert.Nil(t, arr.Elements[0])
		assert.Nil(t, arr.Elements[2])
		assert.Equal(t, 2.0, arr.Elements[3].(*jsast.NumericLiteral).Value)
	})

	t.Run("should convert object properties", func(t *testing.T) {
		obj := parseExpression(t, `{a: 1, 'b': 2, c, [d]: 3, ...e, f() {}}`).(*jsast.ObjectExpression)
		require.Len(t, obj.Properties, 6)

		assert.Equal(t, "a", obj.Properties[0].Key.(*jsast.Identifier).Name)
		assert.Equal(t, "b", obj.Properties[1].Key.(*jsast.StringLiteral).Value)
		assert.Equal(t, "c", obj.Properties[2].Value.(*jsast.Identifier).Name)
		assert.True(t, obj.Properties[3].Computed)
		assert.IsType(t, &jsast.SpreadElement{}, obj.Properties[4].Value)
		assert.Nil(t, obj.Properties[5].Value)
	})

	t.Run("should keep source ranges", func(t *testing.T) {
		call := parseExpression(t, "foo(\n  bar)").(*jsast.CallExpression)
		r := call.Arguments[0].Location().Range
		require.NotNil(t, r)
		if diff := cmp.Diff(struct{ Line, Col, Start int }{1, 2, 8}, struct{ Line, Col, Start int }{r.StartLine, r.StartCol, r.StartPos}); diff != "" {
			t.Errorf("range mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "bar", call.Arguments[0].Location().Source)
	})

	t.Run("should fall back to raw text", func(t *testing.T) {
		raw, ok := parseExpression(t, "a?.b").(*jsast.Raw)
		require.True(t, ok)
		assert.Equal(t, "a?.b", raw.Text)
		assert.True(t, raw.Primary)

		tpl, ok := parseExpression(t, "`x${y}`").(*jsast.Raw)
		require.True(t, ok)
		assert.Equal(t, "`x${y}`", tpl.Text)
	})

	t.Run("should convert function expressions", func(t *testing.T) {
		fn := parseExpression(t, "function named(a, b) { return a; }").(*jsast.FunctionExpression)
		assert.Equal(t, "named", fn.Name)
		assert.Equal(t, []string{"a", "b"}, fn.Params)
	})
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`plain`, "plain", true},
		{`\"q\"`, `"q"`, true},
		{`\x41B\u{43}`, "ABC", true},
		{"line\\\ncontinued", "linecontinued", true},
		{`\u00`, "", false},
		{`trailing\`, "", false},
	}
	for _, tt := range tests {
		got, ok := unescapeString(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseNumber(t *testing.T) {
	for text, want := range map[string]float64{"1_000": 1000, "0b101": 5, "0o17": 15, "1e3": 1000, ".5": 0.5} {
		got, ok := parseNumber(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
	_, ok := parseNumber("10n")
	assert.False(t, ok)
}

func TestLineIndex(t *testing.T) {
	li := newLineIndex("ab\n\t  cd\n😀x\n")

	line, col := li.position(5)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)

	line, col = li.position(13)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col, "astral runes count as two UTF-16 units")

	assert.Equal(t, "\t  cd", li.lineText(1))
	assert.Equal(t, 4, li.lineCount())
	assert.Equal(t, 2, li.leadingIndent(6))
	assert.Zero(t, li.leadingIndent(0))
}

func TestCodeFrame(t *testing.T) {
	li := newLineIndex("a\nbb\nccc\n")
	want := "  1 | a\n" +
		"> 2 | bb\n" +
		"    |  ^\n" +
		"  3 | ccc"
	assert.Equal(t, want, codeFrame(li, 1, 1, 1))
}
