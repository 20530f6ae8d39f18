package render3

import (
	"regexp"
	"strings"

	"ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/ml_parser"
	"ngc-linker/packages/compiler/template_parser"
	"ngc-linker/packages/compiler/util"
)

// Groups of bindNameRegexp
const (
	kwBindIdx = iota + 1
	kwLetIdx
	kwRefIdx
	kwOnIdx
	kwBindonIdx
	kwAtIdx
	identKwIdx
	identBananaBoxIdx
	identPropertyIdx
	identEventIdx
)

var bindNameRegexp = regexp.MustCompile(`^(?:(?:(?:(bind-)|(let-)|(ref-|#)|(on-)|(bindon-)|(@))(.*))|\[\(([^\)]+)\)\]|\[([^\]]+)\]|\(([^\)]+)\))$`)

var dataPrefixRegexp = regexp.MustCompile(`(?i)^data-`)

const (
	NgTemplateTagName = "ng-template"
	ngContentTagName  = "ng-content"
	i18nAttr          = "i18n"
	i18nAttrPrefix    = "i18n-"
)

// ParseResult is the template AST of one component plus every error found
// while building it
type ParseResult struct {
	Nodes  []Node
	Errors []*util.ParseError
}

// HtmlAstToR3Ast turns the HTML tree into the template AST, parsing every
// binding on the way
func HtmlAstToR3Ast(htmlNodes []ml_parser.Node, bindingParser *template_parser.BindingParser) *ParseResult {
	transformer := &htmlAstToR3Ast{bindingParser: bindingParser}
	nodes := transformer.visitAll(htmlNodes)
	errs := append(transformer.errors, bindingParser.Errors...)
	return &ParseResult{Nodes: nodes, Errors: errs}
}

type htmlAstToR3Ast struct {
	bindingParser *template_parser.BindingParser
	errors        []*util.ParseError
}

func (h *htmlAstToR3Ast) visitAll(nodes []ml_parser.Node) []Node {
	var result []Node
	for _, node := range nodes {
		if r, ok := node.Visit(h, nil).(Node); ok && r != nil {
			result = append(result, r)
		}
	}
	return result
}

func (h *htmlAstToR3Ast) reportError(message string, span *util.ParseSourceSpan) {
	h.errors = append(h.errors, util.NewParseError(span, message))
}

func (h *htmlAstToR3Ast) VisitElement(element *ml_parser.Element, _ interface{}) interface{} {
	switch strings.ToLower(element.Name) {
	case "script", "style":
		return nil
	case "link":
		for _, attr := range element.Attrs {
			if attr.Name == "rel" && strings.EqualFold(attr.Value, "stylesheet") {
				return nil
			}
		}
	}
	if element.Name == ngContentTagName {
		h.reportError("Content projection (<ng-content>) is not supported", element.SourceSpan())
		return nil
	}

	isTemplateElement := element.Name == NgTemplateTagName

	var (
		parsedProperties         []*expression_parser.ParsedProperty
		boundEvents              []*BoundEvent
		variables                []*Variable
		attributes               []*TextAttribute
		templateParsedProperties []*expression_parser.ParsedProperty
		templateVariables        []*Variable
		elementHasInlineTemplate bool
	)

	for _, attribute := range element.Attrs {
		hasBinding := false
		normalizedName := normalizeAttributeName(attribute.Name)

		if normalizedName == i18nAttr || strings.HasPrefix(normalizedName, i18nAttrPrefix) {
			h.reportError("Internationalization (i18n) is not supported", attribute.SourceSpan())
			continue
		}

		if strings.HasPrefix(normalizedName, template_parser.TEMPLATE_ATTR_PREFIX) {
			if elementHasInlineTemplate {
				h.reportError("Can't have multiple template bindings on one element. Use only one attribute prefixed with *", attribute.SourceSpan())
			}
			elementHasInlineTemplate = true
			templateKey := normalizedName[len(template_parser.TEMPLATE_ATTR_PREFIX):]
			absoluteValueOffset := attribute.SourceSpan().Start.Offset + len(attribute.Name)
			if attribute.ValueSpan != nil {
				absoluteValueOffset = attribute.ValueSpan.Start.Offset
			}
			var parsedVariables []*expression_parser.ParsedVariable
			var matchable [][2]string
			h.bindingParser.ParseInlineTemplateBinding(templateKey, attribute.Value, attribute.SourceSpan(), absoluteValueOffset, &matchable, &templateParsedProperties, &parsedVariables)
			for _, v := range parsedVariables {
				templateVariables = append(templateVariables, NewVariable(v.Name, v.Value, v.SourceSpan, v.KeySpan, v.ValueSpan))
			}
		} else {
			hasBinding = h.parseAttribute(isTemplateElement, attribute, &parsedProperties, &boundEvents, &variables)
		}

		if !hasBinding && !strings.HasPrefix(normalizedName, template_parser.TEMPLATE_ATTR_PREFIX) {
			attributes = append(attributes, NewTextAttribute(attribute.Name, attribute.Value, attribute.SourceSpan(), attribute.KeySpan, attribute.ValueSpan))
		}
	}

	children := h.visitAll(element.Children)

	var parsedElement Node
	if isTemplateElement {
		attrs := h.extractAttributes(parsedProperties)
		parsedElement = &Template{
			TagName:         element.Name,
			Attributes:      attributes,
			Inputs:          attrs.bound,
			Outputs:         boundEvents,
			Children:        children,
			Variables:       variables,
			sourceSpan:      element.SourceSpan(),
			StartSourceSpan: element.StartSourceSpan,
			EndSourceSpan:   element.EndSourceSpan,
		}
	} else {
		attrs := h.extractAttributes(parsedProperties)
		parsedElement = &Element{
			Name:            element.Name,
			Attributes:      attributes,
			Inputs:          attrs.bound,
			Outputs:         boundEvents,
			Children:        children,
			sourceSpan:      element.SourceSpan(),
			StartSourceSpan: element.StartSourceSpan,
			EndSourceSpan:   element.EndSourceSpan,
		}
	}

	if !elementHasInlineTemplate {
		return parsedElement
	}

	attrs := h.extractAttributes(templateParsedProperties)
	var templateAttrs []Node
	for _, attr := range attrs.literal {
		templateAttrs = append(templateAttrs, attr)
	}
	for _, attr := range attrs.bound {
		templateAttrs = append(templateAttrs, attr)
	}

	// The wrapper copies the static attributes, inputs and outputs of the
	// element so that directives on the element can be matched.
	wrapper := &Template{
		TagName:         element.Name,
		TemplateAttrs:   templateAttrs,
		Children:        []Node{parsedElement},
		Variables:       templateVariables,
		sourceSpan:      element.SourceSpan(),
		StartSourceSpan: element.StartSourceSpan,
		EndSourceSpan:   element.EndSourceSpan,
	}
	if el, ok := parsedElement.(*Element); ok {
		wrapper.Attributes = el.Attributes
		wrapper.Inputs = el.Inputs
		wrapper.Outputs = el.Outputs
	}
	return wrapper
}

func (h *htmlAstToR3Ast) VisitAttribute(attribute *ml_parser.Attribute, _ interface{}) interface{} {
	return NewTextAttribute(attribute.Name, attribute.Value, attribute.SourceSpan(), attribute.KeySpan, attribute.ValueSpan)
}

func (h *htmlAstToR3Ast) VisitText(text *ml_parser.Text, _ interface{}) interface{} {
	value := ml_parser.ReplaceNgsp(text.Value)
	if expr := h.bindingParser.ParseInterpolation(value, text.SourceSpan()); expr != nil {
		return NewBoundText(expr, text.SourceSpan())
	}
	return NewText(value, text.SourceSpan())
}

func (h *htmlAstToR3Ast) VisitComment(*ml_parser.Comment, interface{}) interface{} {
	return nil
}

type extractedAttributes struct {
	bound   []*BoundAttribute
	literal []*TextAttribute
}

func (h *htmlAstToR3Ast) extractAttributes(properties []*expression_parser.ParsedProperty) extractedAttributes {
	var result extractedAttributes
	for _, prop := range properties {
		if prop.IsLiteral() {
			result.literal = append(result.literal, NewTextAttribute(prop.Name, prop.Expression.Source, prop.SourceSpan, prop.KeySpan, prop.ValueSpan))
			continue
		}
		bep := h.bindingParser.CreateBoundElementProperty(prop)
		result.bound = append(result.bound, BoundAttributeFromProperty(bep))
	}
	return result
}

// parseAttribute handles one attribute of an element. It reports whether the
// attribute was a binding rather than a static attribute.
func (h *htmlAstToR3Ast) parseAttribute(
	isTemplateElement bool,
	attribute *ml_parser.Attribute,
	parsedProperties *[]*expression_parser.ParsedProperty,
	boundEvents *[]*BoundEvent,
	variables *[]*Variable,
) bool {
	name := normalizeAttributeName(attribute.Name)
	value := attribute.Value
	srcSpan := attribute.SourceSpan()
	absoluteOffset := srcSpan.Start.Offset
	if attribute.ValueSpan != nil {
		absoluteOffset = attribute.ValueSpan.Start.Offset
	}
	var matchable [][2]string

	bindParts := bindNameRegexp.FindStringSubmatch(name)
	if bindParts == nil {
		return h.bindingParser.ParsePropertyInterpolation(name, value, srcSpan, attribute.ValueSpan, &matchable, parsedProperties, attribute.KeySpan)
	}

	switch {
	case bindParts[kwBindIdx] != "":
		h.bindingParser.ParsePropertyBinding(bindParts[identKwIdx], value, false, srcSpan, absoluteOffset, attribute.ValueSpan, &matchable, parsedProperties, attribute.KeySpan)

	case bindParts[kwLetIdx] != "":
		if isTemplateElement {
			identifier := bindParts[identKwIdx]
			if strings.Contains(identifier, "-") {
				h.reportError(`"-" is not allowed in variable names`, srcSpan)
			} else if identifier == "" {
				h.reportError("Variable does not have a name", srcSpan)
			}
			varValue := value
			if varValue == "" {
				varValue = "$implicit"
			}
			*variables = append(*variables, NewVariable(identifier, varValue, srcSpan, attribute.KeySpan, attribute.ValueSpan))
		} else {
			h.reportError(`"let-" is only supported on ng-template elements.`, srcSpan)
		}

	case bindParts[kwRefIdx] != "":
		h.reportError("Local references are not supported", srcSpan)

	case bindParts[kwOnIdx] != "":
		h.parseEvent(bindParts[identKwIdx], value, srcSpan, attribute, boundEvents)

	case bindParts[kwBindonIdx] != "":
		h.parseTwoWay(bindParts[identKwIdx], value, srcSpan, absoluteOffset, attribute, parsedProperties, boundEvents)

	case bindParts[kwAtIdx] != "":
		h.bindingParser.ParseLiteralAttr("@"+bindParts[identKwIdx], value, srcSpan, absoluteOffset, attribute.ValueSpan, parsedProperties, attribute.KeySpan)

	case bindParts[identBananaBoxIdx] != "":
		h.parseTwoWay(bindParts[identBananaBoxIdx], value, srcSpan, absoluteOffset, attribute, parsedProperties, boundEvents)

	case bindParts[identPropertyIdx] != "":
		h.bindingParser.ParsePropertyBinding(bindParts[identPropertyIdx], value, false, srcSpan, absoluteOffset, attribute.ValueSpan, &matchable, parsedProperties, attribute.KeySpan)

	case bindParts[identEventIdx] != "":
		h.parseEvent(bindParts[identEventIdx], value, srcSpan, attribute, boundEvents)
	}
	return true
}

func (h *htmlAstToR3Ast) parseEvent(name, value string, srcSpan *util.ParseSourceSpan, attribute *ml_parser.Attribute, boundEvents *[]*BoundEvent) {
	var events []*expression_parser.ParsedEvent
	var matchable [][2]string
	handlerSpan := attribute.ValueSpan
	if handlerSpan == nil {
		handlerSpan = srcSpan
	}
	h.bindingParser.ParseEvent(name, value, srcSpan, handlerSpan, &matchable, &events, attribute.KeySpan)
	for _, e := range events {
		*boundEvents = append(*boundEvents, BoundEventFromParsedEvent(e))
	}
}

// parseTwoWay expands `[(prop)]="value"` into a property binding and a
// `propChange` listener assigning `$event` back to value.
func (h *htmlAstToR3Ast) parseTwoWay(
	name, value string,
	srcSpan *util.ParseSourceSpan,
	absoluteOffset int,
	attribute *ml_parser.Attribute,
	parsedProperties *[]*expression_parser.ParsedProperty,
	boundEvents *[]*BoundEvent,
) {
	var matchable [][2]string
	h.bindingParser.ParsePropertyBinding(name, value, false, srcSpan, absoluteOffset, attribute.ValueSpan, &matchable, parsedProperties, attribute.KeySpan)
	h.parseEvent(name+"Change", value+"=$event", srcSpan, attribute, boundEvents)
}

func normalizeAttributeName(attrName string) string {
	return dataPrefixRegexp.ReplaceAllString(attrName, "")
}
