package view

import (
	"regexp"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/css"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
)

// unsafeObjectKeyName matches keys that must be quoted in an object literal
var unsafeObjectKeyName = regexp.MustCompile(`[-.]`)

const (
	// TemporaryName is the temporary used while refreshing queries
	TemporaryName = "_t"
	// ContextName is the context parameter of template functions
	ContextName = "ctx"
	// RenderFlags is the render flags parameter of template functions
	RenderFlags = "rf"
	// ImplicitReference is the name of the implicit template context value
	ImplicitReference = "$implicit"
	// NonBindableAttr disables binding inside an element
	NonBindableAttr = "ngNonBindable"
	// EventParamName is the listener parameter holding the event
	EventParamName = "$event"
)

// TemporaryAllocator returns a function handing out the `_t` temporary. The
// declaration is pushed through pushStatement on first use.
func TemporaryAllocator(pushStatement func(output.OutputStatement), name string) func() *output.ReadVarExpr {
	var temp *output.ReadVarExpr
	return func() *output.ReadVarExpr {
		if temp == nil {
			pushStatement(output.NewDeclareVarStmt(name, nil, output.DynamicType, output.StmtModifierNone, nil))
			temp = output.Variable(name)
		}
		return temp
	}
}

// AsLiteral converts strings, ints, bools, nil and nested []interface{} into
// literal expressions
func AsLiteral(value interface{}) output.OutputExpression {
	switch v := value.(type) {
	case []interface{}:
		entries := make([]output.OutputExpression, len(v))
		for i, e := range v {
			entries[i] = AsLiteral(e)
		}
		return output.LiteralArr(entries...)
	case core.R3CssSelector:
		return AsLiteral([]interface{}(v))
	case core.SelectorFlags:
		return output.NewLiteralExpr(int(v), output.InferredType, nil)
	case core.AttributeMarker:
		return output.NewLiteralExpr(int(v), output.InferredType, nil)
	}
	return output.NewLiteralExpr(value, output.InferredType, nil)
}

// selectorsLiteral renders `[["my-comp"], ["", "dir", ""]]`
func selectorsLiteral(selectors core.R3CssSelectorList) output.OutputExpression {
	entries := make([]output.OutputExpression, len(selectors))
	for i, sel := range selectors {
		entries[i] = AsLiteral(sel)
	}
	return output.LiteralArr(entries...)
}

// inputsLiteral serializes directive inputs. Inputs whose public name differs
// from the class property keep the declared name as the second array entry so
// that ngOnChanges can report it.
func inputsLiteral(inputs []R3InputMetadata) output.OutputExpression {
	if len(inputs) == 0 {
		return nil
	}
	entries := make([]*output.LiteralMapEntry, len(inputs))
	for i, input := range inputs {
		var value output.OutputExpression = AsLiteral(input.BindingPropertyName)
		if input.BindingPropertyName != input.ClassPropertyName {
			value = output.LiteralArr(AsLiteral(input.BindingPropertyName), AsLiteral(input.ClassPropertyName))
		}
		entries[i] = output.NewLiteralMapEntry(input.ClassPropertyName, value, unsafeObjectKeyName.MatchString(input.ClassPropertyName))
	}
	return output.LiteralMap(entries...)
}

func outputsLiteral(outputs []R3OutputMetadata) output.OutputExpression {
	if len(outputs) == 0 {
		return nil
	}
	entries := make([]*output.LiteralMapEntry, len(outputs))
	for i, out := range outputs {
		entries[i] = output.NewLiteralMapEntry(out.ClassPropertyName, AsLiteral(out.BindingPropertyName), unsafeObjectKeyName.MatchString(out.ClassPropertyName))
	}
	return output.LiteralMap(entries...)
}

// DefinitionMapEntry is one field of a definition object
type DefinitionMapEntry struct {
	Key    string
	Quoted bool
	Value  output.OutputExpression
}

// DefinitionMap builds a definition object literal, keeping insertion order
type DefinitionMap struct {
	Values []DefinitionMapEntry
}

// NewDefinitionMap creates an empty DefinitionMap
func NewDefinitionMap() *DefinitionMap {
	return &DefinitionMap{}
}

// Set adds or replaces key. A nil value is ignored.
func (dm *DefinitionMap) Set(key string, value output.OutputExpression) {
	if value == nil {
		return
	}
	for i := range dm.Values {
		if dm.Values[i].Key == key {
			dm.Values[i].Value = value
			return
		}
	}
	dm.Values = append(dm.Values, DefinitionMapEntry{Key: key, Value: value})
}

// ToLiteralMap converts the map into an object literal
func (dm *DefinitionMap) ToLiteralMap() *output.LiteralMapExpr {
	entries := make([]*output.LiteralMapEntry, len(dm.Values))
	for i, entry := range dm.Values {
		entries[i] = output.NewLiteralMapEntry(entry.Key, entry.Value, entry.Quoted)
	}
	return output.LiteralMap(entries...)
}

// CreateCssSelectorFromNode describes an element or template for directive
// matching
func CreateCssSelectorFromNode(node render3.Node) *css.CssSelector {
	elementName := ""
	switch n := node.(type) {
	case *render3.Element:
		elementName = n.Name
	case *render3.Template:
		elementName = render3.NgTemplateTagName
	}
	return css.CreateElementSelector(elementName, GetAttrsForDirectiveMatching(node))
}

// GetAttrsForDirectiveMatching lists the name/value pairs a directive selector
// can match on. A template created from a `*` attribute only exposes its
// microsyntax bindings; the wrapped element is matched separately.
// Bound inputs and outputs match with an empty value.
func GetAttrsForDirectiveMatching(node render3.Node) [][2]string {
	attrs := &orderedAttrs{index: map[string]int{}}
	switch n := node.(type) {
	case *render3.Template:
		if n.TagName != render3.NgTemplateTagName {
			for _, a := range n.TemplateAttrs {
				switch attr := a.(type) {
				case *render3.TextAttribute:
					attrs.set(attr.Name, "")
				case *render3.BoundAttribute:
					attrs.set(attr.Name, "")
				}
			}
			return attrs.pairs
		}
		attrs.collect(n.Attributes, n.Inputs, n.Outputs)
	case *render3.Element:
		attrs.collect(n.Attributes, n.Inputs, n.Outputs)
	}
	return attrs.pairs
}

type orderedAttrs struct {
	pairs [][2]string
	index map[string]int
}

func (o *orderedAttrs) set(name, value string) {
	if i, ok := o.index[name]; ok {
		o.pairs[i][1] = value
		return
	}
	o.index[name] = len(o.pairs)
	o.pairs = append(o.pairs, [2]string{name, value})
}

func (o *orderedAttrs) collect(attributes []*render3.TextAttribute, inputs []*render3.BoundAttribute, outputs []*render3.BoundEvent) {
	for _, a := range attributes {
		o.set(a.Name, a.Value)
	}
	for _, i := range inputs {
		o.set(i.Name, "")
	}
	for _, e := range outputs {
		o.set(e.Name, "")
	}
}

// renderFlagCheckIfStmt creates `if (rf & flags) { ... }`
func renderFlagCheckIfStmt(flags core.RenderFlags, statements []output.OutputStatement) *output.IfStmt {
	condition := output.Binary(output.BinaryOperatorBitwiseAnd, output.Variable(RenderFlags), output.Literal(int(flags)))
	return output.If(condition, statements...)
}

// invokeInstruction calls a runtime instruction
func invokeInstruction(ref *output.ExternalReference, args ...output.OutputExpression) *output.InvokeFunctionExpr {
	return output.CallFn(output.ImportExpr(ref), args...)
}

// trimTrailingNulls drops trailing null literals from instruction parameters
func trimTrailingNulls(params []output.OutputExpression) []output.OutputExpression {
	for len(params) > 0 {
		lit, ok := params[len(params)-1].(*output.LiteralExpr)
		if !ok || lit.Value != nil {
			break
		}
		params = params[:len(params)-1]
	}
	return params
}
