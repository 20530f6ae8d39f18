package view_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/jsast"
	"ngc-linker/packages/compiler-cli/translator"
	"ngc-linker/packages/compiler/core"
	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/view"
)

func printExpr(t *testing.T, expr output.OutputExpression) string {
	t.Helper()
	translated, err := translator.TranslateExpression[jsast.Statement, jsast.Expression](expr, jsast.Factory{}, &jsast.Identifier{Name: "i0"})
	require.NoError(t, err)
	return jsast.Print(translated)
}

func printStatements(t *testing.T, stmts []output.OutputStatement) string {
	t.Helper()
	translated, err := translator.TranslateStatements[jsast.Statement, jsast.Expression](stmts, jsast.Factory{}, &jsast.Identifier{Name: "i0"})
	require.NoError(t, err)
	return jsast.Print(&jsast.Program{Body: translated})
}

func metadata(t *testing.T, template string) *view.R3ComponentMetadata {
	t.Helper()
	parsed := view.ParseTemplate(template, "test.html", view.ParseTemplateOptions{})
	require.Empty(t, parsed.Errors)
	return &view.R3ComponentMetadata{
		Name:          "TestCmp",
		Type:          output.Variable("TestCmp"),
		Selector:      "test-cmp",
		Template:      view.R3ComponentTemplate{Nodes: parsed.Nodes},
		Encapsulation: core.ViewEncapsulationEmulated,
	}
}

func compile(t *testing.T, meta *view.R3ComponentMetadata) (map[string]string, *pool.ConstantPool) {
	t.Helper()
	constantPool := pool.NewConstantPool()
	def, err := view.CompileComponentFromMetadata(meta, constantPool, view.MakeBindingParser(ep.DefaultInterpolationConfig))
	require.NoError(t, err)

	call, ok := def.Expression.(*output.InvokeFunctionExpr)
	require.True(t, ok, "expected a call, got %T", def.Expression)
	assert.Equal(t, "i0.ɵɵdefineComponent", printExpr(t, call.Fn))
	require.Len(t, call.Args, 1)
	literal, ok := call.Args[0].(*output.LiteralMapExpr)
	require.True(t, ok, "expected an object literal, got %T", call.Args[0])

	fields := map[string]string{}
	for _, entry := range literal.Entries {
		fields[entry.Key] = printExpr(t, entry.Value)
	}
	return fields, constantPool
}

func keys(t *testing.T, meta *view.R3ComponentMetadata) []string {
	t.Helper()
	def, err := view.CompileComponentFromMetadata(meta, pool.NewConstantPool(), view.MakeBindingParser(ep.DefaultInterpolationConfig))
	require.NoError(t, err)
	var names []string
	for _, entry := range def.Expression.(*output.InvokeFunctionExpr).Args[0].(*output.LiteralMapExpr).Entries {
		names = append(names, entry.Key)
	}
	return names
}

func TestCompileComponentFromMetadata(t *testing.T) {
	t.Run("should count slots and bindings", func(t *testing.T) {
		fields, _ := compile(t, metadata(t, "<div>{{ a }}</div>"))
		assert.Equal(t, "TestCmp", fields["type"])
		assert.Equal(t, `[["test-cmp"]]`, fields["selectors"])
		assert.Equal(t, "2", fields["decls"])
		assert.Equal(t, "1", fields["vars"])

		template := fields["template"]
		for _, fragment := range []string{
			"function TestCmp_Template(rf, ctx) {",
			`i0.ɵɵelementStart(0, "div");`,
			"i0.ɵɵtext(1);",
			"i0.ɵɵelementEnd();",
			"i0.ɵɵadvance(1);",
			"i0.ɵɵtextInterpolate(ctx.a);",
		} {
			assert.Contains(t, template, fragment)
		}
		assert.Less(t, strings.Index(template, "if (rf & 1)"), strings.Index(template, "if (rf & 2)"))
	})

	t.Run("should keep fields in definition order", func(t *testing.T) {
		meta := metadata(t, "<span>{{ a }}</span>")
		meta.Inputs = []view.R3InputMetadata{{ClassPropertyName: "value", BindingPropertyName: "value"}}
		meta.ChangeDetection = core.ChangeDetectionStrategyOnPush
		assert.Equal(t, []string{"type", "selectors", "inputs", "decls", "vars", "template", "encapsulation", "changeDetection"}, keys(t, meta))
	})

	t.Run("should keep declared names of aliased inputs", func(t *testing.T) {
		meta := metadata(t, "")
		meta.Inputs = []view.R3InputMetadata{
			{ClassPropertyName: "input", BindingPropertyName: "input"},
			{ClassPropertyName: "aliasedIn", BindingPropertyName: "in"},
		}
		meta.Outputs = []view.R3OutputMetadata{{ClassPropertyName: "changed", BindingPropertyName: "change"}}
		fields, _ := compile(t, meta)
		assert.Equal(t, "{\n  input: \"input\",\n  aliasedIn: [\"in\", \"aliasedIn\"]\n}", fields["inputs"])
		assert.Equal(t, "{\n  changed: \"change\"\n}", fields["outputs"])
	})

	t.Run("should hoist nested templates into the pool", func(t *testing.T) {
		fields, constantPool := compile(t, metadata(t, `<div *ngIf="show">{{ a }}</div>`))
		assert.Equal(t, "1", fields["decls"])
		assert.Equal(t, "1", fields["vars"])
		assert.Equal(t, `[[4, "ngIf"]]`, fields["consts"])
		assert.Contains(t, fields["template"], `i0.ɵɵtemplate(0, TestCmp_div_0_Template, 2, 1, "div", 0);`)
		assert.Contains(t, fields["template"], `i0.ɵɵproperty("ngIf", ctx.show);`)

		statements := constantPool.GetStatements()
		require.Len(t, statements, 1)
		fn, ok := statements[0].(*output.DeclareFunctionStmt)
		require.True(t, ok, "expected a function declaration, got %T", statements[0])
		assert.Equal(t, "TestCmp_div_0_Template", fn.Name)

		nested := printStatements(t, statements)
		assert.Contains(t, nested, `i0.ɵɵelementStart(0, "div");`)
		assert.Contains(t, nested, "i0.ɵɵnextContext()")
	})

	t.Run("should match directives and pipes used by the template", func(t *testing.T) {
		meta := metadata(t, `<div some-directive>{{ a | upper }}</div><p></p>`)
		meta.Directives = []view.R3UsedDirectiveMetadata{
			{Selector: "[some-directive]", Expression: output.Variable("SomeDirective")},
			{Selector: "unused-dir", Expression: output.Variable("UnusedDirective")},
		}
		meta.Pipes = []view.R3UsedPipeMetadata{
			{Name: "upper", Expression: output.Variable("UpperPipe")},
			{Name: "lower", Expression: output.Variable("LowerPipe")},
		}
		fields, _ := compile(t, meta)
		assert.Equal(t, "[SomeDirective]", fields["directives"])
		assert.Equal(t, "[UpperPipe]", fields["pipes"])
		assert.Contains(t, fields["template"], `i0.ɵɵpipe(`)
		assert.Contains(t, fields["template"], `i0.ɵɵpipeBind1(`)
		assert.Equal(t, `[["some-directive", ""]]`, fields["consts"])
	})

	t.Run("should convert listeners into handler functions", func(t *testing.T) {
		fields, _ := compile(t, metadata(t, `<button (click)="onClick($event)">Go</button>`))
		assert.Contains(t, fields["template"], `i0.ɵɵlistener("click", function TestCmp_Template_button_click_0_listener($event) {`)
		assert.Contains(t, fields["template"], "ctx.onClick($event)")
		assert.Contains(t, fields["template"], `i0.ɵɵtext(1, "Go");`)
	})

	t.Run("should treat emulated encapsulation without styles as none", func(t *testing.T) {
		fields, _ := compile(t, metadata(t, ""))
		assert.Equal(t, "2", fields["encapsulation"])
		assert.NotContains(t, fields, "styles")
		assert.NotContains(t, fields, "changeDetection")
	})

	t.Run("should scope styles of emulated components", func(t *testing.T) {
		meta := metadata(t, "")
		meta.Styles = []string{"div { color: red; }"}
		fields, _ := compile(t, meta)
		assert.NotContains(t, fields, "encapsulation")
		assert.Contains(t, fields["styles"], "[_ngcontent-%COMP%]")
	})

	t.Run("should keep styles of unencapsulated components", func(t *testing.T) {
		meta := metadata(t, "")
		meta.Styles = []string{"div { color: red; }"}
		meta.Encapsulation = core.ViewEncapsulationShadowDom
		fields, _ := compile(t, meta)
		assert.Equal(t, "3", fields["encapsulation"])
		assert.Equal(t, `["div { color: red; }"]`, fields["styles"])
	})

	t.Run("should list features", func(t *testing.T) {
		meta := metadata(t, "")
		meta.ViewProviders = output.LiteralArr(output.Variable("Service"))
		meta.UsesInheritance = true
		meta.UsesOnChanges = true
		fields, _ := compile(t, meta)
		assert.Equal(t, "[i0.ɵɵProvidersFeature([], [Service]), i0.ɵɵInheritDefinitionFeature, i0.ɵɵNgOnChangesFeature]", fields["features"])
	})

	t.Run("should emit exportAs unless absent", func(t *testing.T) {
		meta := metadata(t, "")
		meta.ExportAs = []string{}
		fields, _ := compile(t, meta)
		assert.Equal(t, "[]", fields["exportAs"])

		meta.ExportAs = []string{"a", "b"}
		fields, _ = compile(t, meta)
		assert.Equal(t, `["a", "b"]`, fields["exportAs"])
	})

	t.Run("should bind host properties and attributes", func(t *testing.T) {
		meta := metadata(t, "")
		meta.Host.Attributes = []view.R3HostAttribute{{Name: "role", Value: output.Literal("button")}}
		fields, _ := compile(t, meta)
		assert.Equal(t, `["role", "button"]`, fields["hostAttrs"])
	})

	t.Run("should report every template error", func(t *testing.T) {
		parsed := view.ParseTemplate(`<div [class.a]="x"></div><p [class.b]="y"></p>`, "test.html", view.ParseTemplateOptions{})
		require.NotEmpty(t, parsed.Errors)
		meta := metadata(t, "")
		meta.Template.Nodes = parsed.Nodes

		_, err := view.CompileComponentFromMetadata(meta, pool.NewConstantPool(), view.MakeBindingParser(ep.DefaultInterpolationConfig))
		var templateErrors view.TemplateErrors
		require.True(t, errors.As(err, &templateErrors))
		assert.Len(t, templateErrors, 2)
		assert.EqualError(t, err, `unsupported binding to "a" on <div>, unsupported binding to "b" on <p>`)
	})

	t.Run("should reject invalid selectors", func(t *testing.T) {
		meta := metadata(t, "")
		meta.Selector = "a:not(:not(b))"
		_, err := view.CompileComponentFromMetadata(meta, pool.NewConstantPool(), view.MakeBindingParser(ep.DefaultInterpolationConfig))
		assert.ErrorContains(t, err, `invalid selector "a:not(:not(b))"`)
	})
}

func TestParseTemplate(t *testing.T) {
	t.Run("should parse elements and bound text", func(t *testing.T) {
		parsed := view.ParseTemplate("<div>{{ a }}</div>", "test.html", view.ParseTemplateOptions{})
		assert.Empty(t, parsed.Errors)
		assert.Len(t, parsed.Nodes, 1)
	})

	t.Run("should stop at markup errors", func(t *testing.T) {
		parsed := view.ParseTemplate("<div></span>", "test.html", view.ParseTemplateOptions{})
		require.NotEmpty(t, parsed.Errors)
		assert.Nil(t, parsed.Nodes)
		assert.Equal(t, "test.html", parsed.Errors[0].Span.Start.File.URL)
	})

	t.Run("should report unsupported bindings", func(t *testing.T) {
		parsed := view.ParseTemplate(`<div [style.color]="c"></div>`, "test.html", view.ParseTemplateOptions{})
		require.Len(t, parsed.Errors, 1)
		assert.Contains(t, parsed.Errors[0].Msg, "Class and style bindings are not supported (found [style.color])")
		assert.NotEmpty(t, parsed.Nodes)
	})

	t.Run("should report each binding error once", func(t *testing.T) {
		parsed := view.ParseTemplate(`<i [a]="b +"></i>`, "test.html", view.ParseTemplateOptions{})
		require.Len(t, parsed.Errors, 1)
		assert.Contains(t, parsed.Errors[0].Msg, "Unexpected end of expression: b +")
	})

	t.Run("should honor custom interpolation markers", func(t *testing.T) {
		parsed := view.ParseTemplate("<b>[[ a ]]</b>", "test.html", view.ParseTemplateOptions{
			InterpolationConfig: ep.InterpolationConfig{Start: "[[", End: "]]"},
		})
		require.Empty(t, parsed.Errors)
		meta := metadata(t, "")
		meta.Template.Nodes = parsed.Nodes
		fields, _ := compile(t, meta)
		assert.Contains(t, fields["template"], "i0.ɵɵtextInterpolate(ctx.a);")
	})

	t.Run("should drop whitespace-only text unless preserved", func(t *testing.T) {
		template := "<div>\n  <span></span>\n</div>"
		trimmed, _ := compile(t, metadata(t, template))
		assert.Equal(t, "2", trimmed["decls"])

		parsed := view.ParseTemplate(template, "test.html", view.ParseTemplateOptions{PreserveWhitespaces: true})
		require.Empty(t, parsed.Errors)
		meta := metadata(t, "")
		meta.Template.Nodes = parsed.Nodes
		preserved, _ := compile(t, meta)
		assert.Equal(t, "4", preserved["decls"])
	})
}

func TestDefinitionMap(t *testing.T) {
	dm := view.NewDefinitionMap()
	dm.Set("b", output.Literal(1))
	dm.Set("a", output.Literal(2))
	dm.Set("skipped", nil)
	dm.Set("b", output.Literal(3))

	literal := dm.ToLiteralMap()
	require.Len(t, literal.Entries, 2)
	assert.Equal(t, "b", literal.Entries[0].Key)
	assert.Equal(t, "a", literal.Entries[1].Key)
	assert.Equal(t, "{\n  b: 3,\n  a: 2\n}", printExpr(t, literal))
}
