// Package template_parser parses the bindings found on template elements and
// in the host section of a component.
package template_parser

import (
	"fmt"
	"strings"

	"ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/util"
)

const (
	PROPERTY_PARTS_SEPARATOR = "."
	ATTRIBUTE_PREFIX         = "attr"
	CLASS_PREFIX             = "class"
	STYLE_PREFIX             = "style"
	ANIMATE_PROP_PREFIX      = "animate-"
	TEMPLATE_ATTR_PREFIX     = "*"
)

// HostEntry is one `key: value` pair of a host binding map. Host maps are
// kept as slices so that instructions come out in declaration order.
type HostEntry struct {
	Key   string
	Value string
}

// BindingParser parses bindings in templates and in the component host area.
// Errors accumulate across calls; the caller decides when to report them.
type BindingParser struct {
	exprParser          *expression_parser.Parser
	interpolationConfig expression_parser.InterpolationConfig
	Errors              []*util.ParseError
}

// NewBindingParser creates a new BindingParser
func NewBindingParser(exprParser *expression_parser.Parser, interpolationConfig expression_parser.InterpolationConfig) *BindingParser {
	return &BindingParser{
		exprParser:          exprParser,
		interpolationConfig: interpolationConfig,
	}
}

// InterpolationConfig returns the delimiters the parser was created with
func (bp *BindingParser) InterpolationConfig() expression_parser.InterpolationConfig {
	return bp.interpolationConfig
}

// CreateBoundHostProperties parses the `[prop]` entries of a host map
func (bp *BindingParser) CreateBoundHostProperties(properties []HostEntry, sourceSpan *util.ParseSourceSpan) []*expression_parser.ParsedProperty {
	var boundProps []*expression_parser.ParsedProperty
	var matchable [][2]string
	for _, prop := range properties {
		bp.ParsePropertyBinding(prop.Key, prop.Value, true, sourceSpan, sourceSpan.Start.Offset, nil, &matchable, &boundProps, sourceSpan)
	}
	return boundProps
}

// CreateDirectiveHostEventAsts parses the `(event)` entries of a host map
func (bp *BindingParser) CreateDirectiveHostEventAsts(listeners []HostEntry, sourceSpan *util.ParseSourceSpan) []*expression_parser.ParsedEvent {
	var targetEvents []*expression_parser.ParsedEvent
	var matchable [][2]string
	for _, listener := range listeners {
		bp.ParseEvent(listener.Key, listener.Value, sourceSpan, sourceSpan, &matchable, &targetEvents, sourceSpan)
	}
	return targetEvents
}

// ParseInterpolation parses text or an attribute value containing
// interpolations. It returns nil when value has none.
func (bp *BindingParser) ParseInterpolation(value string, sourceSpan *util.ParseSourceSpan) *expression_parser.ASTWithSource {
	ast := bp.exprParser.ParseInterpolation(value, sourceSpan, sourceSpan.Start.Offset, bp.interpolationConfig)
	if ast != nil {
		bp.Errors = append(bp.Errors, ast.Errors...)
	}
	return ast
}

// ParseInlineTemplateBinding parses the microsyntax of a `*key="value"`
// attribute into properties of the generated template and its variables.
func (bp *BindingParser) ParseInlineTemplateBinding(
	tplKey string,
	tplValue string,
	sourceSpan *util.ParseSourceSpan,
	absoluteValueOffset int,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*expression_parser.ParsedProperty,
	targetVars *[]*expression_parser.ParsedVariable,
) {
	absoluteKeyOffset := sourceSpan.Start.Offset + len(TEMPLATE_ATTR_PREFIX)
	result := bp.exprParser.ParseTemplateBindings(tplKey, tplValue, sourceSpan, absoluteKeyOffset, absoluteValueOffset)
	bp.Errors = append(bp.Errors, result.Errors...)
	for _, warning := range result.Warnings {
		bp.reportError(warning, sourceSpan, util.ParseErrorLevelWarning)
	}

	for _, binding := range result.TemplateBindings {
		bindingSpan := moveParseSourceSpan(sourceSpan, binding.GetSourceSpan())
		key := binding.GetKey().Source
		keySpan := moveParseSourceSpan(sourceSpan, binding.GetKey().Span)

		switch b := binding.(type) {
		case *expression_parser.VariableBinding:
			value := "$implicit"
			var valueSpan *util.ParseSourceSpan
			if b.Value != nil {
				value = b.Value.Source
				valueSpan = moveParseSourceSpan(sourceSpan, b.Value.Span)
			}
			*targetVars = append(*targetVars, &expression_parser.ParsedVariable{
				Name:       key,
				Value:      value,
				SourceSpan: bindingSpan,
				KeySpan:    keySpan,
				ValueSpan:  valueSpan,
			})
		case *expression_parser.ExpressionBinding:
			if b.Value != nil {
				bp.Errors = append(bp.Errors, b.Value.Errors...)
				valueSpan := moveParseSourceSpan(sourceSpan, b.Value.SourceSpan())
				bp.parsePropertyAst(key, b.Value, bindingSpan, keySpan, valueSpan, targetMatchableAttrs, targetProps)
			} else {
				*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{key, ""})
				bp.ParseLiteralAttr(key, "", keySpan, absoluteValueOffset, nil, targetProps, keySpan)
			}
		}
	}
}

// ParseLiteralAttr records a static attribute as a literal property
func (bp *BindingParser) ParseLiteralAttr(
	name string,
	value string,
	sourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	valueSpan *util.ParseSourceSpan,
	targetProps *[]*expression_parser.ParsedProperty,
	keySpan *util.ParseSourceSpan,
) {
	if isAnimationLabel(name) {
		bp.reportError(animationsUnsupported(name[1:]), sourceSpan, util.ParseErrorLevelError)
		return
	}
	span := expression_parser.ParseSpan{Start: 0, End: len(value)}
	literal := expression_parser.NewLiteralPrimitive(span, span.ToAbsolute(absoluteOffset), value)
	*targetProps = append(*targetProps, &expression_parser.ParsedProperty{
		Name:       name,
		Expression: expression_parser.NewASTWithSource(literal, value, "", absoluteOffset, nil),
		Type:       expression_parser.ParsedPropertyTypeLiteralAttr,
		SourceSpan: sourceSpan,
		KeySpan:    keySpan,
		ValueSpan:  valueSpan,
	})
}

// ParsePropertyBinding parses `[name]="expression"`. Host bindings are parsed
// with pipes disallowed.
func (bp *BindingParser) ParsePropertyBinding(
	name string,
	expression string,
	isHost bool,
	sourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*expression_parser.ParsedProperty,
	keySpan *util.ParseSourceSpan,
) {
	if name == "" {
		bp.reportError("Property name is missing in binding", sourceSpan, util.ParseErrorLevelError)
	}
	if strings.HasPrefix(name, ANIMATE_PROP_PREFIX) {
		bp.reportError(animationsUnsupported(name[len(ANIMATE_PROP_PREFIX):]), sourceSpan, util.ParseErrorLevelError)
		return
	}
	if isAnimationLabel(name) {
		bp.reportError(animationsUnsupported(name[1:]), sourceSpan, util.ParseErrorLevelError)
		return
	}
	span := valueSpan
	if span == nil {
		span = sourceSpan
	}
	ast := bp.ParseBinding(expression, isHost, span, absoluteOffset)
	bp.parsePropertyAst(name, ast, sourceSpan, keySpan, valueSpan, targetMatchableAttrs, targetProps)
}

// ParsePropertyInterpolation parses an attribute whose value interpolates.
// It reports whether value contained an interpolation at all.
func (bp *BindingParser) ParsePropertyInterpolation(
	name string,
	value string,
	sourceSpan *util.ParseSourceSpan,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*expression_parser.ParsedProperty,
	keySpan *util.ParseSourceSpan,
) bool {
	span := valueSpan
	if span == nil {
		span = sourceSpan
	}
	expr := bp.ParseInterpolation(value, span)
	if expr == nil {
		return false
	}
	bp.parsePropertyAst(name, expr, sourceSpan, keySpan, valueSpan, targetMatchableAttrs, targetProps)
	return true
}

func (bp *BindingParser) parsePropertyAst(
	name string,
	ast *expression_parser.ASTWithSource,
	sourceSpan *util.ParseSourceSpan,
	keySpan *util.ParseSourceSpan,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*expression_parser.ParsedProperty,
) {
	*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{name, ast.Source})
	*targetProps = append(*targetProps, &expression_parser.ParsedProperty{
		Name:       name,
		Expression: ast,
		Type:       expression_parser.ParsedPropertyTypeDefault,
		SourceSpan: sourceSpan,
		KeySpan:    keySpan,
		ValueSpan:  valueSpan,
	})
}

// ParseBinding parses a binding expression and collects its errors
func (bp *BindingParser) ParseBinding(value string, isHostBinding bool, sourceSpan *util.ParseSourceSpan, absoluteOffset int) *expression_parser.ASTWithSource {
	var ast *expression_parser.ASTWithSource
	if isHostBinding {
		ast = bp.exprParser.ParseSimpleBinding(value, sourceSpan, absoluteOffset, bp.interpolationConfig)
	} else {
		ast = bp.exprParser.ParseBinding(value, sourceSpan, absoluteOffset, bp.interpolationConfig)
	}
	bp.Errors = append(bp.Errors, ast.Errors...)
	return ast
}

// CreateBoundElementProperty resolves what a parsed property binds to:
// `attr.x` is an attribute, everything else a property. Class, style and
// animation bindings are reported as unsupported and still returned so that
// the caller can keep going.
func (bp *BindingParser) CreateBoundElementProperty(boundProp *expression_parser.ParsedProperty) *expression_parser.BoundElementProperty {
	prop := &expression_parser.BoundElementProperty{
		Name:       boundProp.Name,
		Type:       expression_parser.BindingTypeProperty,
		Value:      boundProp.Expression,
		SourceSpan: boundProp.SourceSpan,
		KeySpan:    boundProp.KeySpan,
		ValueSpan:  boundProp.ValueSpan,
	}

	parts := strings.Split(boundProp.Name, PROPERTY_PARTS_SEPARATOR)
	if len(parts) > 1 {
		switch parts[0] {
		case ATTRIBUTE_PREFIX:
			prop.Name = strings.Join(parts[1:], PROPERTY_PARTS_SEPARATOR)
			prop.Type = expression_parser.BindingTypeAttribute
		case CLASS_PREFIX:
			prop.Name = parts[1]
			prop.Type = expression_parser.BindingTypeClass
		case STYLE_PREFIX:
			prop.Name = parts[1]
			if len(parts) > 2 {
				prop.Unit = parts[2]
			}
			prop.Type = expression_parser.BindingTypeStyle
		}
	} else if boundProp.Name == CLASS_PREFIX || boundProp.Name == "className" {
		prop.Type = expression_parser.BindingTypeClass
	} else if boundProp.Name == STYLE_PREFIX {
		prop.Type = expression_parser.BindingTypeStyle
	}

	switch prop.Type {
	case expression_parser.BindingTypeClass, expression_parser.BindingTypeStyle:
		bp.reportError(fmt.Sprintf("Class and style bindings are not supported (found [%s])", boundProp.Name), boundProp.SourceSpan, util.ParseErrorLevelError)
	}
	return prop
}

// ParseEvent parses `(name)="expression"`. A name of the form `target:event`
// listens on a global target.
func (bp *BindingParser) ParseEvent(
	name string,
	expression string,
	sourceSpan *util.ParseSourceSpan,
	handlerSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetEvents *[]*expression_parser.ParsedEvent,
	keySpan *util.ParseSourceSpan,
) {
	if name == "" {
		bp.reportError("Event name is missing in binding", sourceSpan, util.ParseErrorLevelError)
	}
	if isAnimationLabel(name) {
		bp.reportError(animationsUnsupported(name[1:]), sourceSpan, util.ParseErrorLevelError)
		return
	}

	eventName, target := ParseEventListenerName(name)
	ast := bp.parseAction(expression, handlerSpan)
	*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{name, ast.Source})
	*targetEvents = append(*targetEvents, &expression_parser.ParsedEvent{
		Name:          eventName,
		TargetOrPhase: target,
		Type:          expression_parser.ParsedEventTypeRegular,
		Handler:       ast,
		SourceSpan:    sourceSpan,
		HandlerSpan:   handlerSpan,
		KeySpan:       keySpan,
	})
}

// ParseEventListenerName splits `target:event` into its parts
func ParseEventListenerName(rawName string) (eventName, target string) {
	parts := util.SplitAtColon(rawName, []string{"", rawName})
	return parts[1], parts[0]
}

func (bp *BindingParser) parseAction(value string, sourceSpan *util.ParseSourceSpan) *expression_parser.ASTWithSource {
	absoluteOffset := 0
	if sourceSpan != nil && sourceSpan.Start != nil {
		absoluteOffset = sourceSpan.Start.Offset
	}
	ast := bp.exprParser.ParseAction(value, sourceSpan, absoluteOffset, bp.interpolationConfig)
	bp.Errors = append(bp.Errors, ast.Errors...)
	if _, empty := ast.AST.(*expression_parser.EmptyExpr); empty {
		bp.reportError("Empty expressions are not allowed", sourceSpan, util.ParseErrorLevelError)
	}
	return ast
}

func (bp *BindingParser) reportError(message string, sourceSpan *util.ParseSourceSpan, level util.ParseErrorLevel) {
	err := util.NewParseError(sourceSpan, message)
	err.Level = level
	bp.Errors = append(bp.Errors, err)
}

func isAnimationLabel(name string) bool {
	return strings.HasPrefix(name, "@")
}

func animationsUnsupported(trigger string) string {
	return fmt.Sprintf("Animation bindings are not supported (found @%s)", trigger)
}

// moveParseSourceSpan narrows sourceSpan to the absolute range of a
// sub-expression.
func moveParseSourceSpan(sourceSpan *util.ParseSourceSpan, absoluteSpan expression_parser.AbsoluteSourceSpan) *util.ParseSourceSpan {
	startDiff := absoluteSpan.Start - sourceSpan.Start.Offset
	endDiff := absoluteSpan.End - sourceSpan.End.Offset
	return util.NewParseSourceSpan(
		sourceSpan.Start.MoveBy(startDiff),
		sourceSpan.End.MoveBy(endDiff),
		sourceSpan.FullStart.MoveBy(startDiff),
		sourceSpan.Details,
	)
}
