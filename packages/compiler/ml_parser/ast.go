package ml_parser

import "ngc-linker/packages/compiler/util"

// Node is a node of the HTML tree
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	Visit(visitor Visitor, context interface{}) interface{}
}

// Text is character data, with entities already decoded
type Text struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

func NewText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{Value: value, sourceSpan: sourceSpan}
}

func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.sourceSpan }

func (t *Text) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitText(t, context)
}

// Attribute is `name="value"` on an element. ValueSpan is nil for an
// attribute without value.
type Attribute struct {
	Name       string
	Value      string
	sourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

func NewAttribute(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Attribute {
	return &Attribute{Name: name, Value: value, sourceSpan: sourceSpan, KeySpan: keySpan, ValueSpan: valueSpan}
}

func (a *Attribute) SourceSpan() *util.ParseSourceSpan { return a.sourceSpan }

func (a *Attribute) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitAttribute(a, context)
}

// Element is a start tag with its children. EndSourceSpan is nil for void
// elements and for elements closed implicitly.
type Element struct {
	Name            string
	Attrs           []*Attribute
	Children        []Node
	sourceSpan      *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

func NewElement(name string, attrs []*Attribute, children []Node, sourceSpan, startSourceSpan, endSourceSpan *util.ParseSourceSpan) *Element {
	return &Element{
		Name:            name,
		Attrs:           attrs,
		Children:        children,
		sourceSpan:      sourceSpan,
		StartSourceSpan: startSourceSpan,
		EndSourceSpan:   endSourceSpan,
	}
}

func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.sourceSpan }

func (e *Element) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitElement(e, context)
}

type Comment struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

func NewComment(value string, sourceSpan *util.ParseSourceSpan) *Comment {
	return &Comment{Value: value, sourceSpan: sourceSpan}
}

func (c *Comment) SourceSpan() *util.ParseSourceSpan { return c.sourceSpan }

func (c *Comment) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitComment(c, context)
}

// Visitor visits HTML nodes
type Visitor interface {
	VisitElement(element *Element, context interface{}) interface{}
	VisitAttribute(attribute *Attribute, context interface{}) interface{}
	VisitText(text *Text, context interface{}) interface{}
	VisitComment(comment *Comment, context interface{}) interface{}
}

// VisitAll visits every node and collects the non-nil results
func VisitAll(visitor Visitor, nodes []Node, context interface{}) []interface{} {
	var result []interface{}
	for _, node := range nodes {
		if r := node.Visit(visitor, context); r != nil {
			result = append(result, r)
		}
	}
	return result
}
