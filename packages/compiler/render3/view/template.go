package view

import (
	"fmt"
	"regexp"
	"strings"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/css"
	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/ml_parser"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/template_parser"
	"ngc-linker/packages/compiler/util"
)

// ParseTemplateOptions controls how a component template is parsed
type ParseTemplateOptions struct {
	InterpolationConfig ep.InterpolationConfig
	PreserveWhitespaces bool
	// Range locates the template inside a larger file, such as a string
	// literal of a JavaScript source
	Range *ml_parser.Range
	// EscapedString decodes JavaScript string escapes while lexing
	EscapedString bool
}

// ParsedTemplate is a template ready for CompileComponentFromMetadata
type ParsedTemplate struct {
	Nodes  []render3.Node
	Errors []*util.ParseError
}

// ParseTemplate parses an inline or external component template
func ParseTemplate(source, url string, options ParseTemplateOptions) *ParsedTemplate {
	config := options.InterpolationConfig
	if config.Start == "" {
		config = ep.DefaultInterpolationConfig
	}
	result := ml_parser.Parse(source, url, ml_parser.TokenizeOptions{
		Range:               options.Range,
		EscapedString:       options.EscapedString,
		InterpolationConfig: config,
	})
	if len(result.Errors) > 0 {
		return &ParsedTemplate{Errors: result.Errors}
	}
	if !options.PreserveWhitespaces {
		result = ml_parser.RemoveWhitespaces(result)
	}

	bindingParser := MakeBindingParser(config)
	r3 := render3.HtmlAstToR3Ast(result.RootNodes, bindingParser)
	if len(r3.Errors) > 0 {
		return &ParsedTemplate{Nodes: r3.Nodes, Errors: r3.Errors}
	}
	return &ParsedTemplate{Nodes: r3.Nodes}
}

// MakeBindingParser creates the parser for template and host bindings
func MakeBindingParser(config ep.InterpolationConfig) *template_parser.BindingParser {
	return template_parser.NewBindingParser(ep.NewParser(ep.NewLexer()), config)
}

const maxChainLength = 256

var chainableInstructions = map[*output.ExternalReference]bool{
	r3_identifiers.Element:               true,
	r3_identifiers.ElementStart:          true,
	r3_identifiers.ElementEnd:            true,
	r3_identifiers.ElementContainer:      true,
	r3_identifiers.ElementContainerStart: true,
	r3_identifiers.ElementContainerEnd:   true,
	r3_identifiers.Listener:              true,
	r3_identifiers.Property:              true,
	r3_identifiers.Attribute:             true,
	r3_identifiers.HostProperty:          true,
}

var globalTargetResolvers = map[string]*output.ExternalReference{
	"window":   r3_identifiers.ResolveWindow,
	"document": r3_identifiers.ResolveDocument,
	"body":     r3_identifiers.ResolveBody,
}

var unsafeIdentifierChars = regexp.MustCompile(`\W`)

func sanitizeIdentifier(name string) string {
	return unsafeIdentifierChars.ReplaceAllString(name, "_")
}

// instruction is a runtime call whose parameters are resolved only when the
// template function is emitted
type instruction struct {
	reference *output.ExternalReference
	params    func() []output.OutputExpression
}

func staticParams(params ...output.OutputExpression) func() []output.OutputExpression {
	return func() []output.OutputExpression { return params }
}

// instructionStatements turns instructions into statements. Consecutive
// calls of a chainable instruction become one chained call:
// `ɵɵproperty("a", 1)("b", 2)`.
func instructionStatements(instructions []instruction) []output.OutputStatement {
	var statements []output.OutputStatement
	var pending output.OutputExpression
	var pendingRef *output.ExternalReference
	chainLength := 0
	for _, current := range instructions {
		params := current.params()
		if pending != nil && pendingRef == current.reference && chainableInstructions[pendingRef] && chainLength < maxChainLength {
			pending = output.CallFn(pending, params...)
			chainLength++
			continue
		}
		if pending != nil {
			statements = append(statements, output.Stmt(pending))
		}
		pending = invokeInstruction(current.reference, params...)
		pendingRef = current.reference
		chainLength = 1
	}
	if pending != nil {
		statements = append(statements, output.Stmt(pending))
	}
	return statements
}

// elementNamespace is the namespace of an open element
type elementNamespace struct {
	namespace *output.ExternalReference
	name      string
}

// namespaceFor derives the namespace of an element from its name and its
// parent. Elements inside `<foreignObject>` are HTML again.
func namespaceFor(name string, parent elementNamespace) *output.ExternalReference {
	switch strings.ToLower(name) {
	case "svg":
		return r3_identifiers.NamespaceSVG
	case "math":
		return r3_identifiers.NamespaceMathML
	}
	if parent.namespace == r3_identifiers.NamespaceSVG && parent.name == "foreignObject" {
		return r3_identifiers.NamespaceHTML
	}
	if parent.namespace == nil {
		return r3_identifiers.NamespaceHTML
	}
	return parent.namespace
}

// expressionSet keeps expressions in insertion order, by identity
type expressionSet struct {
	items []output.OutputExpression
}

func (s *expressionSet) add(expr output.OutputExpression) {
	for _, e := range s.items {
		if e == expr {
			return
		}
	}
	s.items = append(s.items, expr)
}

// componentConsts collects the attribute arrays of a component template,
// shared by all its embedded views
type componentConsts struct {
	expressions []output.OutputExpression
}

func (c *componentConsts) add(expr output.OutputExpression) int {
	for i, e := range c.expressions {
		if e.IsEquivalent(expr) {
			return i
		}
	}
	c.expressions = append(c.expressions, expr)
	return len(c.expressions) - 1
}

// templateDefinitionBuilder generates the template function of one view.
// Embedded views get their own builder, run after the parent's first pass.
type templateDefinitionBuilder struct {
	constantPool     *pool.ConstantPool
	bindingScope     *BindingScope
	level            int
	contextName      string
	templateName     string
	directiveMatcher *css.SelectorMatcher[output.OutputExpression]
	directives       *expressionSet
	pipeTypeByName   map[string]output.OutputExpression
	pipes            *expressionSet
	consts           *componentConsts
	errs             *[]error

	// namespace is the namespace last switched to by an instruction
	namespace *output.ExternalReference
	parents   []elementNamespace

	dataIndex         int
	bindingSlots      int
	pureFunctionSlots int
	currentIndex      int

	creationCode      []instruction
	updateCode        []instruction
	nestedTemplateFns []func()

	implicitReceiver output.OutputExpression
	valueConverter   *valueConverter
}

func newTemplateDefinitionBuilder(
	constantPool *pool.ConstantPool,
	parentScope *BindingScope,
	level int,
	contextName, templateName string,
	directiveMatcher *css.SelectorMatcher[output.OutputExpression],
	directives *expressionSet,
	pipeTypeByName map[string]output.OutputExpression,
	pipes *expressionSet,
	namespace *output.ExternalReference,
	parent elementNamespace,
	consts *componentConsts,
	errs *[]error,
) *templateDefinitionBuilder {
	b := &templateDefinitionBuilder{
		constantPool:     constantPool,
		bindingScope:     parentScope.nestedScope(level),
		level:            level,
		contextName:      contextName,
		templateName:     templateName,
		directiveMatcher: directiveMatcher,
		directives:       directives,
		pipeTypeByName:   pipeTypeByName,
		pipes:            pipes,
		consts:           consts,
		errs:             errs,
		namespace:        namespace,
		parents:          []elementNamespace{parent},
	}
	b.valueConverter = &valueConverter{
		constantPool:              constantPool,
		allocateSlot:              b.allocateDataSlot,
		allocatePureFunctionSlots: b.allocatePureFunctionSlots,
		definePipe: func(name string, slot int) {
			if pipeType, ok := pipeTypeByName[name]; ok {
				pipes.add(pipeType)
			}
			b.creationInstruction(r3_identifiers.Pipe, staticParams(output.Literal(slot), output.Literal(name)))
		},
	}
	return b
}

func (b *templateDefinitionBuilder) reportError(err error) {
	*b.errs = append(*b.errs, err)
}

// buildTemplateFunction visits nodes and returns the template function
// `function Name_Template(rf, ctx) { ... }`. variables are the context
// variables of an embedded view (`let-item`).
func (b *templateDefinitionBuilder) buildTemplateFunction(nodes []render3.Node, variables []*render3.Variable) *output.FunctionExpr {
	if b.namespace != r3_identifiers.NamespaceHTML {
		b.creationInstruction(b.namespace, staticParams())
	}
	for _, v := range variables {
		b.registerContextVariable(v)
	}

	render3.VisitAll(b, nodes)

	// pure functions and pipes use the slots after the bindings
	b.pureFunctionSlots += b.bindingSlots
	b.valueConverter.updatePipeSlotOffsets(b.bindingSlots)

	// nested templates are built after the first pass so that they can
	// refer to anything declared in this view
	for _, build := range b.nestedTemplateFns {
		build()
	}

	creationStatements := instructionStatements(b.creationCode)
	updateStatements := instructionStatements(b.updateCode)
	creationVariables := b.bindingScope.viewSnapshotStatements()
	updateVariables := b.bindingScope.variableDeclarations()

	var body []output.OutputStatement
	if len(creationStatements) > 0 {
		body = append(body, renderFlagCheckIfStmt(core.RenderFlagsCreate, append(creationVariables, creationStatements...)))
	}
	if len(updateStatements) > 0 {
		body = append(body, renderFlagCheckIfStmt(core.RenderFlagsUpdate, append(updateVariables, updateStatements...)))
	}
	return output.Fn(output.Params(RenderFlags, ContextName), body, b.templateName)
}

// registerContextVariable declares `let-name="value"`, read from the context
// of this view: `const item_r1 = ctx.$implicit;`
func (b *templateDefinitionBuilder) registerContextVariable(variable *render3.Variable) {
	retrievalLevel := b.level
	lhs := output.Variable(variable.Name + b.bindingScope.freshReferenceName())
	property := variable.Value
	if property == "" {
		property = ImplicitReference
	}
	b.bindingScope.set(retrievalLevel, variable.Name, lhs, declarationPriorityContext,
		func(scope *BindingScope, relativeLevel int) []output.OutputStatement {
			var rhs output.OutputExpression
			if scope.bindingLevel == retrievalLevel {
				rhs = output.Variable(ContextName)
			} else if shared := scope.getSharedContextName(retrievalLevel); shared != nil {
				rhs = shared
			} else {
				rhs = nextContextExpr(relativeLevel)
			}
			return []output.OutputStatement{output.DeclareConst(lhs.Name, output.Prop(rhs, property))}
		})
}

func (b *templateDefinitionBuilder) constCount() int { return b.dataIndex }

func (b *templateDefinitionBuilder) varCount() int { return b.pureFunctionSlots }

func (b *templateDefinitionBuilder) allocateDataSlot() int {
	slot := b.dataIndex
	b.dataIndex++
	return slot
}

func (b *templateDefinitionBuilder) allocatePureFunctionSlots(numSlots int) int {
	original := b.pureFunctionSlots
	b.pureFunctionSlots += numSlots
	return original
}

// allocateBindingSlots reserves one slot per interpolated expression, or one
// for a plain binding
func (b *templateDefinitionBuilder) allocateBindingSlots(value ep.AST) {
	if interpolation, ok := value.(*ep.Interpolation); ok {
		b.bindingSlots += len(interpolation.Expressions)
		return
	}
	b.bindingSlots++
}

func (b *templateDefinitionBuilder) creationInstruction(ref *output.ExternalReference, params func() []output.OutputExpression) {
	b.creationCode = append(b.creationCode, instruction{reference: ref, params: params})
}

func (b *templateDefinitionBuilder) updateInstruction(ref *output.ExternalReference, params func() []output.OutputExpression) {
	b.updateCode = append(b.updateCode, instruction{reference: ref, params: params})
}

func (b *templateDefinitionBuilder) updateInstructionWithAdvance(nodeIndex int, ref *output.ExternalReference, params func() []output.OutputExpression) {
	b.addAdvanceInstructionIfNecessary(nodeIndex)
	b.updateInstruction(ref, params)
}

// addAdvanceInstructionIfNecessary moves the selected node forward with
// `ɵɵadvance(delta)` before bindings of nodeIndex
func (b *templateDefinitionBuilder) addAdvanceInstructionIfNecessary(nodeIndex int) {
	if nodeIndex == b.currentIndex {
		return
	}
	delta := nodeIndex - b.currentIndex
	if delta < 1 {
		panic("advance instruction can only go forwards")
	}
	b.updateInstruction(r3_identifiers.Advance, staticParams(output.Literal(delta)))
	b.currentIndex = nodeIndex
}

func (b *templateDefinitionBuilder) getImplicitReceiverExpr() output.OutputExpression {
	if b.implicitReceiver == nil {
		if b.level == 0 {
			b.implicitReceiver = output.Variable(ContextName)
		} else {
			b.implicitReceiver = b.bindingScope.getOrCreateSharedContextVar(0)
		}
	}
	return b.implicitReceiver
}

func (b *templateDefinitionBuilder) convertPropertyBinding(value ep.AST) output.OutputExpression {
	expr, err := convertPropertyBinding(b.bindingScope, b.getImplicitReceiverExpr(), value)
	if err != nil {
		b.reportError(err)
		return output.NullExpr()
	}
	return expr
}

func (b *templateDefinitionBuilder) updateArguments(value *ep.Interpolation) []output.OutputExpression {
	args, err := convertUpdateArguments(b.bindingScope, b.getImplicitReceiverExpr(), value)
	if err != nil {
		b.reportError(err)
	}
	return args
}

func (b *templateDefinitionBuilder) matchDirectives(node render3.Node) {
	if b.directiveMatcher == nil {
		return
	}
	b.directiveMatcher.Match(CreateCssSelectorFromNode(node), func(_ *css.CssSelector, directive output.OutputExpression) {
		b.directives.add(directive)
	})
}

// addAttrsToConsts stores the attribute array in the component consts and
// returns its index, or null when there are no attributes
func (b *templateDefinitionBuilder) addAttrsToConsts(attrs []output.OutputExpression) output.OutputExpression {
	if len(attrs) == 0 {
		return output.NullExpr()
	}
	return output.Literal(b.consts.add(output.LiteralArr(attrs...)))
}

// attributeExpressions builds the flat attribute array of a node: static
// name/value pairs, then the initial classes and styles of an element, then
// the names of bindings and of microsyntax template attributes, each group
// after its marker.
func (b *templateDefinitionBuilder) attributeExpressions(
	attributes []*render3.TextAttribute,
	inputs []*render3.BoundAttribute,
	outputs []*render3.BoundEvent,
	styling *initialStyling,
	templateAttrs []render3.Node,
) []output.OutputExpression {
	var attrs []output.OutputExpression
	for _, attr := range attributes {
		attrs = append(attrs, output.Literal(attr.Name), output.Literal(attr.Value))
	}
	if styling != nil {
		attrs = styling.populate(attrs)
	}

	seen := map[string]bool{}
	addName := func(name string) {
		if !seen[name] {
			seen[name] = true
			attrs = append(attrs, output.Literal(name))
		}
	}

	if len(inputs) > 0 || len(outputs) > 0 {
		markerIndex := len(attrs)
		for _, input := range inputs {
			if input.Type != ep.BindingTypeAnimation && input.Type != ep.BindingTypeAttribute {
				addName(input.Name)
			}
		}
		for _, out := range outputs {
			if out.Type != ep.ParsedEventTypeAnimation {
				addName(out.Name)
			}
		}
		if len(attrs) != markerIndex {
			marker := AsLiteral(core.AttributeMarkerBindings)
			attrs = append(attrs[:markerIndex], append([]output.OutputExpression{marker}, attrs[markerIndex:]...)...)
		}
	}

	if len(templateAttrs) > 0 {
		attrs = append(attrs, AsLiteral(core.AttributeMarkerTemplate))
		for _, a := range templateAttrs {
			switch attr := a.(type) {
			case *render3.TextAttribute:
				addName(attr.Name)
			case *render3.BoundAttribute:
				addName(attr.Name)
			}
		}
	}
	return attrs
}

func (b *templateDefinitionBuilder) VisitElement(element *render3.Element) interface{} {
	elementIndex := b.allocateDataSlot()
	isNgContainer := element.Name == "ng-container"
	parent := b.parents[len(b.parents)-1]

	current := parent
	if !isNgContainer {
		current = elementNamespace{namespace: namespaceFor(element.Name, parent), name: element.Name}
		if current.namespace != b.namespace {
			b.namespace = current.namespace
			b.creationInstruction(current.namespace, staticParams())
		}
	}

	b.matchDirectives(element)

	styling := &initialStyling{}
	var renderAttributes []*render3.TextAttribute
	for _, attr := range element.Attributes {
		switch attr.Name {
		case NonBindableAttr:
		case "style":
			styling.registerStyleAttr(attr.Value)
		case "class":
			styling.registerClassAttr(attr.Value)
		default:
			renderAttributes = append(renderAttributes, attr)
		}
	}

	params := []output.OutputExpression{output.Literal(elementIndex)}
	if !isNgContainer {
		params = append(params, output.Literal(element.Name))
	}
	attrs := b.attributeExpressions(renderAttributes, element.Inputs, element.Outputs, styling, nil)
	params = trimTrailingNulls(append(params, b.addAttrsToConsts(attrs)))

	selfClosing := len(element.Children) == 0 && len(element.Outputs) == 0
	switch {
	case selfClosing && isNgContainer:
		b.creationInstruction(r3_identifiers.ElementContainer, staticParams(params...))
	case selfClosing:
		b.creationInstruction(r3_identifiers.Element, staticParams(params...))
	case isNgContainer:
		b.creationInstruction(r3_identifiers.ElementContainerStart, staticParams(params...))
	default:
		b.creationInstruction(r3_identifiers.ElementStart, staticParams(params...))
	}

	for _, out := range element.Outputs {
		b.creationInstruction(r3_identifiers.Listener, b.listenerParams(element.Name, out, elementIndex))
	}

	var propertyBindings, attributeBindings []func() []output.OutputExpression
	for _, input := range element.Inputs {
		value := b.valueConverter.visit(input.Value)
		b.allocateBindingSlots(value)
		name := input.Name
		interpolation, isInterpolation := value.(*ep.Interpolation)

		switch input.Type {
		case ep.BindingTypeProperty:
			if isInterpolation {
				b.interpolatedUpdateInstruction(r3_identifiers.PropertyInterpolateFor, elementIndex, name, interpolation)
				continue
			}
			propertyBindings = append(propertyBindings, func() []output.OutputExpression {
				return []output.OutputExpression{output.Literal(name), b.convertPropertyBinding(value)}
			})
		case ep.BindingTypeAttribute:
			if isInterpolation && interpolationArgsLength(interpolation) > 1 {
				b.interpolatedUpdateInstruction(r3_identifiers.AttributeInterpolateFor, elementIndex, name, interpolation)
				continue
			}
			bound := value
			if isInterpolation {
				bound = interpolation.Expressions[0]
			}
			attributeBindings = append(attributeBindings, func() []output.OutputExpression {
				return []output.OutputExpression{output.Literal(name), b.convertPropertyBinding(bound)}
			})
		default:
			b.reportError(fmt.Errorf("unsupported binding to %q on <%s>", name, element.Name))
		}
	}
	b.updateInstructionChainWithAdvance(elementIndex, r3_identifiers.Property, propertyBindings)
	b.updateInstructionChainWithAdvance(elementIndex, r3_identifiers.Attribute, attributeBindings)

	b.parents = append(b.parents, current)
	render3.VisitAll(b, element.Children)
	b.parents = b.parents[:len(b.parents)-1]

	if !selfClosing {
		if isNgContainer {
			b.creationInstruction(r3_identifiers.ElementContainerEnd, staticParams())
		} else {
			b.creationInstruction(r3_identifiers.ElementEnd, staticParams())
		}
	}
	return nil
}

// interpolatedUpdateInstruction binds `name="a{{b}}c"` with the interpolation
// instruction of the right arity
func (b *templateDefinitionBuilder) interpolatedUpdateInstruction(
	selectInstruction func(int) (*output.ExternalReference, bool),
	elementIndex int,
	name string,
	interpolation *ep.Interpolation,
) {
	ref, _ := selectInstruction(interpolationArity(interpolation))
	b.updateInstructionWithAdvance(elementIndex, ref, func() []output.OutputExpression {
		return append([]output.OutputExpression{output.Literal(name)}, b.updateArguments(interpolation)...)
	})
}

// interpolationArity is 0 for a lone expression without surrounding text,
// otherwise the number of expressions
func interpolationArity(interpolation *ep.Interpolation) int {
	if interpolationArgsLength(interpolation) == 1 {
		return 0
	}
	return len(interpolation.Expressions)
}

func (b *templateDefinitionBuilder) updateInstructionChainWithAdvance(nodeIndex int, ref *output.ExternalReference, bindings []func() []output.OutputExpression) {
	if len(bindings) == 0 {
		return
	}
	b.addAdvanceInstructionIfNecessary(nodeIndex)
	for _, binding := range bindings {
		b.updateInstruction(ref, binding)
	}
}

func (b *templateDefinitionBuilder) VisitTemplate(template *render3.Template) interface{} {
	templateIndex := b.allocateDataSlot()

	contextName := b.contextName
	if template.TagName != "" {
		contextName += "_" + sanitizeIdentifier(template.TagName)
	}
	contextName = fmt.Sprintf("%s_%d", contextName, templateIndex)
	templateName := contextName + "_Template"

	b.matchDirectives(template)

	attrs := b.attributeExpressions(template.Attributes, template.Inputs, template.Outputs, nil, template.TemplateAttrs)
	constIndex := b.addAttrsToConsts(attrs)

	nested := newTemplateDefinitionBuilder(
		b.constantPool, b.bindingScope, b.level+1, contextName, templateName,
		b.directiveMatcher, b.directives, b.pipeTypeByName, b.pipes,
		b.namespace, b.parents[len(b.parents)-1], b.consts, b.errs,
	)

	b.nestedTemplateFns = append(b.nestedTemplateFns, func() {
		fn := nested.buildTemplateFunction(template.Children, template.Variables)
		b.constantPool.AddStatement(output.NewDeclareFunctionStmt(templateName, fn.Params, fn.Statements, nil, output.StmtModifierNone, nil))
	})

	// ɵɵtemplate(index, Comp_div_0_Template, decls, vars, "div", attrs)
	b.creationInstruction(r3_identifiers.TemplateCreate, func() []output.OutputExpression {
		return trimTrailingNulls([]output.OutputExpression{
			output.Literal(templateIndex),
			output.Variable(templateName),
			output.Literal(nested.constCount()),
			output.Literal(nested.varCount()),
			output.Literal(template.TagName),
			constIndex,
		})
	})

	b.templatePropertyBindings(templateIndex, template.TemplateAttrs)

	// inputs and outputs of an explicit <ng-template> bind to the template
	// itself; those of an inline template belong to the wrapped element
	if template.TagName == render3.NgTemplateTagName {
		var inputs []render3.Node
		for _, input := range template.Inputs {
			inputs = append(inputs, input)
		}
		b.templatePropertyBindings(templateIndex, inputs)
		for _, out := range template.Outputs {
			b.creationInstruction(r3_identifiers.Listener, b.listenerParams("ng_template", out, templateIndex))
		}
	}
	return nil
}

// templatePropertyBindings binds the microsyntax inputs of a template, such
// as `ngIf` and `ngForOf`
func (b *templateDefinitionBuilder) templatePropertyBindings(templateIndex int, attrs []render3.Node) {
	var propertyBindings []func() []output.OutputExpression
	for _, a := range attrs {
		input, ok := a.(*render3.BoundAttribute)
		if !ok {
			continue
		}
		value := b.valueConverter.visit(input.Value)
		if value == nil {
			continue
		}
		b.allocateBindingSlots(value)
		name := input.Name
		if interpolation, isInterpolation := value.(*ep.Interpolation); isInterpolation {
			b.interpolatedUpdateInstruction(r3_identifiers.PropertyInterpolateFor, templateIndex, name, interpolation)
			continue
		}
		propertyBindings = append(propertyBindings, func() []output.OutputExpression {
			return []output.OutputExpression{output.Literal(name), b.convertPropertyBinding(value)}
		})
	}
	b.updateInstructionChainWithAdvance(templateIndex, r3_identifiers.Property, propertyBindings)
}

// listenerParams prepares `"click", function Comp_Template_button_click_0_listener($event) {...}`.
// The handler runs in a scope nested at this view's level, where `$event`
// is the listener argument.
func (b *templateDefinitionBuilder) listenerParams(tagName string, event *render3.BoundEvent, index int) func() []output.OutputExpression {
	return func() []output.OutputExpression {
		handlerName := fmt.Sprintf("%s_%s_%s_%d_listener", b.templateName, tagName, event.Name, index)
		scope := b.bindingScope.nestedScope(b.bindingScope.bindingLevel, EventParamName)
		params, err := eventListenerParams(event, handlerName, scope)
		if err != nil {
			b.reportError(err)
		}
		return params
	}
}

// eventListenerParams converts a listener into the `ɵɵlistener` arguments.
// A nil scope resolves only `$event`, reading everything else from `ctx`.
func eventListenerParams(event *render3.BoundEvent, handlerName string, scope *BindingScope) ([]output.OutputExpression, error) {
	var target *output.ExternalReference
	if event.Target != "" {
		var ok bool
		if target, ok = globalTargetResolvers[event.Target]; !ok {
			return nil, fmt.Errorf("unexpected global target '%s' defined for '%s' event, supported targets are window, document and body", event.Target, event.Name)
		}
	}

	var resolver localResolver
	var implicitReceiver output.OutputExpression = output.Variable(ContextName)
	if scope != nil {
		resolver = scope
		if scope.bindingLevel != 0 {
			implicitReceiver = scope.getOrCreateSharedContextVar(0)
		}
	}

	accesses := map[string]bool{}
	handler, err := convertActionBinding(resolver, implicitReceiver, event.Handler, accesses)
	if err != nil {
		return nil, err
	}

	var statements []output.OutputStatement
	if scope != nil {
		statements = append(statements, scope.restoreViewStatement()...)
		statements = append(statements, scope.variableDeclarations()...)
	}
	statements = append(statements, handler...)

	var fnParams []*output.FnParam
	if accesses[EventParamName] {
		fnParams = output.Params(EventParamName)
	}
	params := []output.OutputExpression{
		output.Literal(event.Name),
		output.Fn(fnParams, statements, sanitizeIdentifier(handlerName)),
	}
	if target != nil {
		params = append(params, output.Literal(false), output.ImportExpr(target))
	}
	return params, nil
}

func (b *templateDefinitionBuilder) VisitText(text *render3.Text) interface{} {
	b.creationInstruction(r3_identifiers.Text, staticParams(output.Literal(b.allocateDataSlot()), output.Literal(text.Value)))
	return nil
}

func (b *templateDefinitionBuilder) VisitBoundText(text *render3.BoundText) interface{} {
	nodeIndex := b.allocateDataSlot()
	b.creationInstruction(r3_identifiers.Text, staticParams(output.Literal(nodeIndex)))

	value, ok := b.valueConverter.visit(text.Value).(*ep.Interpolation)
	if !ok {
		b.reportError(fmt.Errorf("text nodes should be interpolated and never bound directly"))
		return nil
	}
	b.allocateBindingSlots(value)

	ref, _ := r3_identifiers.TextInterpolateFor(interpolationArity(value))
	b.updateInstructionWithAdvance(nodeIndex, ref, func() []output.OutputExpression {
		return b.updateArguments(value)
	})
	return nil
}

func (b *templateDefinitionBuilder) VisitTextAttribute(*render3.TextAttribute) interface{} { return nil }
func (b *templateDefinitionBuilder) VisitBoundAttribute(*render3.BoundAttribute) interface{} {
	return nil
}
func (b *templateDefinitionBuilder) VisitBoundEvent(*render3.BoundEvent) interface{} { return nil }
func (b *templateDefinitionBuilder) VisitVariable(*render3.Variable) interface{}     { return nil }

// initialStyling holds the static class and style attributes of an element,
// emitted after their own markers instead of as plain attributes
type initialStyling struct {
	classes []string
	styles  []string
}

func (s *initialStyling) registerClassAttr(value string) {
	s.classes = strings.Fields(value)
}

func (s *initialStyling) registerStyleAttr(value string) {
	s.styles = parseStyle(value)
}

func (s *initialStyling) populate(attrs []output.OutputExpression) []output.OutputExpression {
	if len(s.classes) > 0 {
		attrs = append(attrs, AsLiteral(core.AttributeMarkerClasses))
		for _, c := range s.classes {
			attrs = append(attrs, output.Literal(c))
		}
	}
	if len(s.styles) > 0 {
		attrs = append(attrs, AsLiteral(core.AttributeMarkerStyles))
		for _, v := range s.styles {
			attrs = append(attrs, output.Literal(v))
		}
	}
	return attrs
}

// parseStyle splits an inline style into flat name/value pairs, ignoring
// separators inside quotes and parentheses
func parseStyle(value string) []string {
	var styles []string
	var quote rune
	depth := 0
	start := 0
	prop := ""
	flush := func(end int) {
		v := strings.TrimSpace(value[start:end])
		if prop != "" && v != "" {
			styles = append(styles, hyphenate(prop), v)
		}
		prop = ""
	}
	for i, ch := range value {
		switch {
		case quote != 0:
			if ch == quote && (i == 0 || value[i-1] != '\\') {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == ':' && prop == "" && depth == 0:
			prop = strings.TrimSpace(value[start:i])
			start = i + 1
		case ch == ';' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(value))
	return styles
}

var upperCase = regexp.MustCompile(`[A-Z]`)

func hyphenate(name string) string {
	return strings.ToLower(upperCase.ReplaceAllString(name, "-$0"))
}
