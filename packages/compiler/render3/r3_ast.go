package render3

import (
	"ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/util"
)

// Node is a node of the template AST produced from the HTML tree
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	Visit(visitor Visitor) interface{}
}

// Visitor visits every template AST node kind
type Visitor interface {
	VisitElement(element *Element) interface{}
	VisitTemplate(template *Template) interface{}
	VisitText(text *Text) interface{}
	VisitBoundText(text *BoundText) interface{}
	VisitTextAttribute(attribute *TextAttribute) interface{}
	VisitBoundAttribute(attribute *BoundAttribute) interface{}
	VisitBoundEvent(event *BoundEvent) interface{}
	VisitVariable(variable *Variable) interface{}
}

// VisitAll visits nodes in order and collects the non-nil results
func VisitAll(visitor Visitor, nodes []Node) []interface{} {
	var result []interface{}
	for _, node := range nodes {
		if r := node.Visit(visitor); r != nil {
			result = append(result, r)
		}
	}
	return result
}

// Text is static text
type Text struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

func NewText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{Value: value, sourceSpan: sourceSpan}
}

func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.sourceSpan }
func (t *Text) Visit(visitor Visitor) interface{}  { return visitor.VisitText(t) }

// BoundText is text containing interpolations. Value holds an Interpolation.
type BoundText struct {
	Value      *expression_parser.ASTWithSource
	sourceSpan *util.ParseSourceSpan
}

func NewBoundText(value *expression_parser.ASTWithSource, sourceSpan *util.ParseSourceSpan) *BoundText {
	return &BoundText{Value: value, sourceSpan: sourceSpan}
}

func (t *BoundText) SourceSpan() *util.ParseSourceSpan { return t.sourceSpan }
func (t *BoundText) Visit(visitor Visitor) interface{}  { return visitor.VisitBoundText(t) }

// TextAttribute is a static attribute, `name="value"`
type TextAttribute struct {
	Name       string
	Value      string
	sourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

func NewTextAttribute(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *TextAttribute {
	return &TextAttribute{Name: name, Value: value, sourceSpan: sourceSpan, KeySpan: keySpan, ValueSpan: valueSpan}
}

func (a *TextAttribute) SourceSpan() *util.ParseSourceSpan { return a.sourceSpan }
func (a *TextAttribute) Visit(visitor Visitor) interface{}  { return visitor.VisitTextAttribute(a) }

// BoundAttribute is a property or attribute binding resolved against its element
type BoundAttribute struct {
	Name       string
	Type       expression_parser.BindingType
	Value      *expression_parser.ASTWithSource
	Unit       string
	sourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

// BoundAttributeFromProperty wraps a resolved element property
func BoundAttributeFromProperty(prop *expression_parser.BoundElementProperty) *BoundAttribute {
	return &BoundAttribute{
		Name:       prop.Name,
		Type:       prop.Type,
		Value:      prop.Value,
		Unit:       prop.Unit,
		sourceSpan: prop.SourceSpan,
		KeySpan:    prop.KeySpan,
		ValueSpan:  prop.ValueSpan,
	}
}

func (a *BoundAttribute) SourceSpan() *util.ParseSourceSpan { return a.sourceSpan }
func (a *BoundAttribute) Visit(visitor Visitor) interface{}  { return visitor.VisitBoundAttribute(a) }

// BoundEvent is an event listener. Target is empty unless the event was
// written as `target:event`.
type BoundEvent struct {
	Name        string
	Type        expression_parser.ParsedEventType
	Handler     *expression_parser.ASTWithSource
	Target      string
	sourceSpan  *util.ParseSourceSpan
	HandlerSpan *util.ParseSourceSpan
	KeySpan     *util.ParseSourceSpan
}

// BoundEventFromParsedEvent converts a parsed event into a template node
func BoundEventFromParsedEvent(event *expression_parser.ParsedEvent) *BoundEvent {
	return &BoundEvent{
		Name:        event.Name,
		Type:        event.Type,
		Handler:     event.Handler,
		Target:      event.TargetOrPhase,
		sourceSpan:  event.SourceSpan,
		HandlerSpan: event.HandlerSpan,
		KeySpan:     event.KeySpan,
	}
}

func (e *BoundEvent) SourceSpan() *util.ParseSourceSpan { return e.sourceSpan }
func (e *BoundEvent) Visit(visitor Visitor) interface{}  { return visitor.VisitBoundEvent(e) }

// Element is a regular DOM element
type Element struct {
	Name            string
	Attributes      []*TextAttribute
	Inputs          []*BoundAttribute
	Outputs         []*BoundEvent
	Children        []Node
	sourceSpan      *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.sourceSpan }
func (e *Element) Visit(visitor Visitor) interface{}  { return visitor.VisitElement(e) }

// Template is an embedded view: either an explicit <ng-template> or the
// wrapper created for an element carrying a `*directive` attribute. For the
// latter, TemplateAttrs holds the microsyntax bindings and the static
// attributes, inputs and outputs are copies of the wrapped element's.
type Template struct {
	TagName         string
	Attributes      []*TextAttribute
	Inputs          []*BoundAttribute
	Outputs         []*BoundEvent
	TemplateAttrs   []Node
	Children        []Node
	Variables       []*Variable
	sourceSpan      *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

func (t *Template) SourceSpan() *util.ParseSourceSpan { return t.sourceSpan }
func (t *Template) Visit(visitor Visitor) interface{}  { return visitor.VisitTemplate(t) }

// Variable is a template variable such as `let-item` or `let i = index`
type Variable struct {
	Name       string
	Value      string
	sourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

func NewVariable(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Variable {
	return &Variable{Name: name, Value: value, sourceSpan: sourceSpan, KeySpan: keySpan, ValueSpan: valueSpan}
}

func (v *Variable) SourceSpan() *util.ParseSourceSpan { return v.sourceSpan }
func (v *Variable) Visit(visitor Visitor) interface{}  { return visitor.VisitVariable(v) }
