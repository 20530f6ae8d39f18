package view

import (
	"fmt"
	"strings"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/css"
	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/template_parser"
)

const (
	// ContentAttr marks elements rendered by an emulated component
	ContentAttr = "_ngcontent-%COMP%"
	// HostAttr marks the host element of an emulated component
	HostAttr = "_nghost-%COMP%"
)

// CompileComponentFromMetadata compiles a component into a
// `ɵɵdefineComponent({...})` expression. Template functions and hoisted
// constants are added to constantPool.
func CompileComponentFromMetadata(meta *R3ComponentMetadata, constantPool *pool.ConstantPool, bindingParser *template_parser.BindingParser) (*R3ComponentDef, error) {
	definitionMap, err := baseDirectiveFields(meta, constantPool, bindingParser)
	if err != nil {
		return nil, err
	}
	addFeatures(definitionMap, meta)

	if meta.Selector != "" {
		selectors, err := css.Parse(meta.Selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", meta.Selector, err)
		}
		// attributes of the first selector are set on the host when the
		// component is created dynamically
		if attrs := selectors[0].GetAttrs(); len(attrs) > 0 {
			entries := make([]output.OutputExpression, len(attrs))
			for i, a := range attrs {
				entries[i] = output.Literal(a)
			}
			definitionMap.Set("attrs", constantPool.GetConstLiteral(output.LiteralArr(entries...), true))
		}
	}

	var directiveMatcher *css.SelectorMatcher[output.OutputExpression]
	if len(meta.Directives) > 0 {
		directiveMatcher = css.NewSelectorMatcher[output.OutputExpression]()
		for _, dir := range meta.Directives {
			selectors, err := css.Parse(dir.Selector)
			if err != nil {
				return nil, fmt.Errorf("invalid selector %q: %w", dir.Selector, err)
			}
			directiveMatcher.AddSelectables(selectors, dir.Expression)
		}
	}
	pipeTypeByName := map[string]output.OutputExpression{}
	for _, p := range meta.Pipes {
		pipeTypeByName[p.Name] = p.Expression
	}

	directivesUsed := &expressionSet{}
	pipesUsed := &expressionSet{}
	consts := &componentConsts{}
	var errs []error
	builder := newTemplateDefinitionBuilder(
		constantPool, NewRootBindingScope(), 0, meta.Name, meta.Name+"_Template",
		directiveMatcher, directivesUsed, pipeTypeByName, pipesUsed,
		r3_identifiers.NamespaceHTML, elementNamespace{}, consts, &errs,
	)
	templateFn := builder.buildTemplateFunction(meta.Template.Nodes, nil)
	if len(errs) > 0 {
		return nil, TemplateErrors(errs)
	}

	definitionMap.Set("decls", output.Literal(builder.constCount()))
	definitionMap.Set("vars", output.Literal(builder.varCount()))
	if len(consts.expressions) > 0 {
		definitionMap.Set("consts", output.LiteralArr(consts.expressions...))
	}
	definitionMap.Set("template", templateFn)

	if len(directivesUsed.items) > 0 {
		definitionMap.Set("directives", output.LiteralArr(directivesUsed.items...))
	}
	if len(pipesUsed.items) > 0 {
		definitionMap.Set("pipes", output.LiteralArr(pipesUsed.items...))
	}

	encapsulation := meta.Encapsulation
	if len(meta.Styles) > 0 {
		styles := meta.Styles
		if encapsulation == core.ViewEncapsulationEmulated {
			styles = compileStyles(styles, ContentAttr, HostAttr)
		}
		entries := make([]output.OutputExpression, len(styles))
		for i, style := range styles {
			entries[i] = constantPool.GetConstLiteral(output.Literal(style), false)
		}
		definitionMap.Set("styles", output.LiteralArr(entries...))
	} else if encapsulation == core.ViewEncapsulationEmulated {
		// without styles there is nothing to scope
		encapsulation = core.ViewEncapsulationNone
	}
	if encapsulation != core.ViewEncapsulationEmulated {
		definitionMap.Set("encapsulation", output.Literal(int(encapsulation)))
	}

	if meta.Animations != nil {
		definitionMap.Set("data", output.LiteralMap(output.NewLiteralMapEntry("animation", meta.Animations, false)))
	}
	if meta.ChangeDetection != core.ChangeDetectionStrategyDefault {
		definitionMap.Set("changeDetection", output.Literal(int(meta.ChangeDetection)))
	}

	return &R3ComponentDef{
		Expression: invokeInstruction(r3_identifiers.DefineComponent, definitionMap.ToLiteralMap()),
	}, nil
}

// TemplateErrors lists every problem found while generating a template
type TemplateErrors []error

func (e TemplateErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return strings.Join(messages, ", ")
}

func (e TemplateErrors) Unwrap() []error {
	return e
}

// compileStyles scopes every stylesheet to the component
func compileStyles(styles []string, selector, hostSelector string) []string {
	shadowCss := css.NewShadowCss()
	out := make([]string, len(styles))
	for i, style := range styles {
		out[i] = shadowCss.ShimCssText(style, selector, hostSelector)
	}
	return out
}

// baseDirectiveFields fills the fields shared by directives and components,
// in definition order
func baseDirectiveFields(meta *R3ComponentMetadata, constantPool *pool.ConstantPool, bindingParser *template_parser.BindingParser) (*DefinitionMap, error) {
	definitionMap := NewDefinitionMap()
	definitionMap.Set("type", meta.Type)

	if meta.Selector != "" {
		selectors, err := css.ParseSelectorToR3Selector(meta.Selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", meta.Selector, err)
		}
		if len(selectors) > 0 {
			definitionMap.Set("selectors", selectorsLiteral(selectors))
		}
	}
	if len(meta.Queries) > 0 {
		definitionMap.Set("contentQueries", createContentQueriesFunction(meta.Queries, constantPool, meta.Name))
	}
	if len(meta.ViewQueries) > 0 {
		definitionMap.Set("viewQuery", createViewQueriesFunction(meta.ViewQueries, constantPool, meta.Name))
	}

	hostBindings, err := createHostBindingsFunction(meta, constantPool, bindingParser, definitionMap)
	if err != nil {
		return nil, err
	}
	definitionMap.Set("hostBindings", hostBindings)

	definitionMap.Set("inputs", inputsLiteral(meta.Inputs))
	definitionMap.Set("outputs", outputsLiteral(meta.Outputs))
	if meta.ExportAs != nil {
		definitionMap.Set("exportAs", output.LiteralStrings(meta.ExportAs))
	}
	return definitionMap, nil
}

// addFeatures lists the runtime features the definition needs
func addFeatures(definitionMap *DefinitionMap, meta *R3ComponentMetadata) {
	var features []output.OutputExpression
	if meta.Providers != nil || meta.ViewProviders != nil {
		providers := meta.Providers
		if providers == nil {
			providers = output.LiteralArr()
		}
		args := []output.OutputExpression{providers}
		if meta.ViewProviders != nil {
			args = append(args, meta.ViewProviders)
		}
		features = append(features, invokeInstruction(r3_identifiers.ProvidersFeature, args...))
	}
	if meta.UsesInheritance {
		features = append(features, output.ImportExpr(r3_identifiers.InheritDefinitionFeature))
	}
	if meta.FullInheritance {
		features = append(features, output.ImportExpr(r3_identifiers.CopyDefinitionFeature))
	}
	if meta.UsesOnChanges {
		features = append(features, output.ImportExpr(r3_identifiers.NgOnChangesFeature))
	}
	if len(features) > 0 {
		definitionMap.Set("features", output.LiteralArr(features...))
	}
}

// createHostBindingsFunction builds `function Comp_HostBindings(rf, ctx)`
// and sets `hostAttrs` and `hostVars` on the definition. It returns nil when
// the component has no host bindings or listeners.
func createHostBindingsFunction(meta *R3ComponentMetadata, constantPool *pool.ConstantPool, bindingParser *template_parser.BindingParser, definitionMap *DefinitionMap) (output.OutputExpression, error) {
	host := meta.Host
	span := meta.TypeSourceSpan
	bindingContext := output.Variable(ContextName)

	var createStatements, updateStatements []output.OutputStatement

	if len(host.Listeners) > 0 {
		events := bindingParser.CreateDirectiveHostEventAsts(host.Listeners, span)
		var listeners [][]output.OutputExpression
		for _, event := range events {
			handlerName := ""
			if meta.Name != "" {
				handlerName = fmt.Sprintf("%s_%s_HostBindingHandler", meta.Name, sanitizeIdentifier(event.Name))
			}
			params, err := eventListenerParams(render3.BoundEventFromParsedEvent(event), handlerName, nil)
			if err != nil {
				return nil, err
			}
			listeners = append(listeners, params)
		}
		if len(listeners) > 0 {
			createStatements = append(createStatements, output.Stmt(chainedInstruction(r3_identifiers.Listener, listeners)))
		}
	}

	var properties []*ep.ParsedProperty
	if len(host.Properties) > 0 {
		properties = bindingParser.CreateBoundHostProperties(host.Properties, span)
	}
	if len(bindingParser.Errors) > 0 {
		messages := make([]string, len(bindingParser.Errors))
		for i, e := range bindingParser.Errors {
			messages[i] = e.Msg
		}
		return nil, fmt.Errorf("host bindings of %s: %s", meta.Name, strings.Join(messages, "; "))
	}

	// every binding takes one slot; pure functions are allocated after them
	totalHostVars := len(properties)
	vc := &valueConverter{
		constantPool: constantPool,
		allocateSlot: func() int { panic("host bindings cannot create nodes") },
		allocatePureFunctionSlots: func(numSlots int) int {
			original := totalHostVars
			totalHostVars += numSlots
			return original
		},
		definePipe: func(string, int) { panic("host bindings cannot use pipes") },
	}

	var propertyBindings, attributeBindings [][]output.OutputExpression
	for _, prop := range properties {
		if containsPipe(prop.Expression) {
			return nil, fmt.Errorf("host binding %q of %s cannot contain pipes", prop.Name, meta.Name)
		}
		value, err := convertPropertyBinding(nil, bindingContext, vc.visit(prop.Expression))
		if err != nil {
			return nil, err
		}
		name, isAttribute := strings.CutPrefix(prop.Name, "attr.")
		if !isAttribute && (strings.HasPrefix(name, "class.") || strings.HasPrefix(name, "style.") || name == "class" || name == "style") {
			return nil, fmt.Errorf("host styling binding %q of %s is not supported", prop.Name, meta.Name)
		}
		params := []output.OutputExpression{output.Literal(name), value}
		if isAttribute {
			attributeBindings = append(attributeBindings, params)
		} else {
			propertyBindings = append(propertyBindings, params)
		}
	}
	if len(propertyBindings) > 0 {
		updateStatements = append(updateStatements, output.Stmt(chainedInstruction(r3_identifiers.HostProperty, propertyBindings)))
	}
	if len(attributeBindings) > 0 {
		updateStatements = append(updateStatements, output.Stmt(chainedInstruction(r3_identifiers.Attribute, attributeBindings)))
	}

	// static host attributes, then the initial classes and styles
	var hostAttrs []output.OutputExpression
	for _, attr := range host.Attributes {
		hostAttrs = append(hostAttrs, output.Literal(attr.Name), attr.Value)
	}
	styling := &initialStyling{}
	if host.SpecialAttributes.ClassAttr != nil {
		styling.registerClassAttr(*host.SpecialAttributes.ClassAttr)
	}
	if host.SpecialAttributes.StyleAttr != nil {
		styling.registerStyleAttr(*host.SpecialAttributes.StyleAttr)
	}
	hostAttrs = styling.populate(hostAttrs)
	if len(hostAttrs) > 0 {
		definitionMap.Set("hostAttrs", output.LiteralArr(hostAttrs...))
	}
	if totalHostVars > 0 {
		definitionMap.Set("hostVars", output.Literal(totalHostVars))
	}

	if len(createStatements) == 0 && len(updateStatements) == 0 {
		return nil, nil
	}
	var body []output.OutputStatement
	if len(createStatements) > 0 {
		body = append(body, renderFlagCheckIfStmt(core.RenderFlagsCreate, createStatements))
	}
	if len(updateStatements) > 0 {
		body = append(body, renderFlagCheckIfStmt(core.RenderFlagsUpdate, updateStatements))
	}
	fnName := ""
	if meta.Name != "" {
		fnName = meta.Name + "_HostBindings"
	}
	return output.Fn(output.Params(RenderFlags, ContextName), body, fnName), nil
}

// chainedInstruction calls ref once per parameter list, chaining the calls
func chainedInstruction(ref *output.ExternalReference, calls [][]output.OutputExpression) output.OutputExpression {
	var expr output.OutputExpression = output.ImportExpr(ref)
	for _, params := range calls {
		expr = output.CallFn(expr, params...)
	}
	return expr
}

func containsPipe(ast ep.AST) bool {
	found := false
	ep.Inspect(ast, func(node ep.AST) bool {
		if _, ok := node.(*ep.BindingPipe); ok {
			found = true
		}
		return !found
	})
	return found
}
