package ml_parser

import (
	"regexp"
	"strings"
)

// PreserveWsAttrName keeps whitespace inside the element carrying it
const PreserveWsAttrName = "ngPreserveWhitespaces"

var skipWsTrimTags = map[string]bool{
	"pre":      true,
	"template": true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// \s without the non-breaking space
const wsChars = " \f\n\r\t\v\u1680\u180e\u2000-\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

var (
	noWsRegexp      = regexp.MustCompile(`[^` + wsChars + `]`)
	wsReplaceRegexp = regexp.MustCompile(`[` + wsChars + `]{2,}`)
)

// ReplaceNgsp turns the &ngsp; pseudo-entity into a plain space
func ReplaceNgsp(value string) string {
	return strings.ReplaceAll(value, NGSPUnicode, " ")
}

func hasPreserveWhitespacesAttr(attrs []*Attribute) bool {
	for _, attr := range attrs {
		if attr.Name == PreserveWsAttrName {
			return true
		}
	}
	return false
}

// whitespaceVisitor drops whitespace-only text nodes and collapses runs of
// whitespace to a single space. It rebuilds elements instead of mutating them.
type whitespaceVisitor struct{}

func (w whitespaceVisitor) VisitElement(element *Element, context interface{}) interface{} {
	if skipWsTrimTags[element.Name] || hasPreserveWhitespacesAttr(element.Attrs) {
		// keep the children, but strip the marker attribute
		return NewElement(element.Name, visitAttributes(w, element.Attrs), element.Children,
			element.sourceSpan, element.StartSourceSpan, element.EndSourceSpan)
	}
	return NewElement(element.Name, element.Attrs, visitNodes(w, element.Children),
		element.sourceSpan, element.StartSourceSpan, element.EndSourceSpan)
}

func (whitespaceVisitor) VisitAttribute(attribute *Attribute, _ interface{}) interface{} {
	if attribute.Name == PreserveWsAttrName {
		return nil
	}
	return attribute
}

func (whitespaceVisitor) VisitText(text *Text, _ interface{}) interface{} {
	if !noWsRegexp.MatchString(text.Value) {
		return nil
	}
	value := wsReplaceRegexp.ReplaceAllString(ReplaceNgsp(text.Value), " ")
	return NewText(value, text.sourceSpan)
}

func (whitespaceVisitor) VisitComment(comment *Comment, _ interface{}) interface{} {
	return comment
}

// RemoveWhitespaces applies whitespace collapsing to a parsed template
func RemoveWhitespaces(result *ParseTreeResult) *ParseTreeResult {
	return &ParseTreeResult{
		RootNodes: visitNodes(whitespaceVisitor{}, result.RootNodes),
		Errors:    result.Errors,
	}
}

func visitNodes(v Visitor, nodes []Node) []Node {
	var out []Node
	for _, r := range VisitAll(v, nodes, nil) {
		out = append(out, r.(Node))
	}
	return out
}

func visitAttributes(v Visitor, attrs []*Attribute) []*Attribute {
	var out []*Attribute
	for _, attr := range attrs {
		if r := attr.Visit(v, nil); r != nil {
			out = append(out, r.(*Attribute))
		}
	}
	return out
}
