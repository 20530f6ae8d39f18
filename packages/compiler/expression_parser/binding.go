package expression_parser

import "ngc-linker/packages/compiler/util"

// ParsedPropertyType distinguishes how a property binding was written
type ParsedPropertyType int

const (
	ParsedPropertyTypeDefault ParsedPropertyType = iota
	ParsedPropertyTypeLiteralAttr
	ParsedPropertyTypeAnimation
)

// ParsedProperty is a property binding before it is resolved against the
// element it sits on, e.g. `[value]="x"` or a literal `value="x"` on an
// inline template.
type ParsedProperty struct {
	Name       string
	Expression *ASTWithSource
	Type       ParsedPropertyType
	SourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

// IsLiteral reports whether the property came from a plain attribute
func (p *ParsedProperty) IsLiteral() bool {
	return p.Type == ParsedPropertyTypeLiteralAttr
}

// ParsedEventType distinguishes regular from animation events
type ParsedEventType int

const (
	ParsedEventTypeRegular ParsedEventType = iota
	ParsedEventTypeAnimation
)

// ParsedEvent is `(name)="handler"` or a host listener. TargetOrPhase holds
// the global target of `window:resize` style names.
type ParsedEvent struct {
	Name          string
	TargetOrPhase string
	Type          ParsedEventType
	Handler       *ASTWithSource
	SourceSpan    *util.ParseSourceSpan
	HandlerSpan   *util.ParseSourceSpan
	KeySpan       *util.ParseSourceSpan
}

// ParsedVariable is a template variable, `let-item="value"` or a
// microsyntax `let` binding.
type ParsedVariable struct {
	Name       string
	Value      string
	SourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

// BindingType is what a resolved property binding writes to
type BindingType int

const (
	// BindingTypeProperty binds to a DOM property or directive input
	BindingTypeProperty BindingType = iota
	// BindingTypeAttribute binds to an attribute (`[attr.x]`)
	BindingTypeAttribute
	// BindingTypeClass binds to a class (`[class.x]`)
	BindingTypeClass
	// BindingTypeStyle binds to a style (`[style.x]`)
	BindingTypeStyle
	// BindingTypeAnimation binds an animation trigger (`[@x]`)
	BindingTypeAnimation
)

// BoundElementProperty is a ParsedProperty resolved to its binding type
type BoundElementProperty struct {
	Name       string
	Type       BindingType
	Value      *ASTWithSource
	Unit       string
	SourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}
