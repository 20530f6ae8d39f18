package ast

import (
	"ngc-linker/packages/compiler/output"
)

// AstObject gives typed access to the properties of an object literal.
// Every property read through the getters is required; a missing property is
// a FatalLinkerError located at the object expression.
type AstObject[TExpression any] struct {
	expr TExpression
	obj  *OrderedMap[TExpression]
	host AstHost[TExpression]
}

// ParseAstObject parses expr as an object literal
func ParseAstObject[TExpression any](expr TExpression, host AstHost[TExpression]) (*AstObject[TExpression], error) {
	obj, err := host.ParseObjectLiteral(expr)
	if err != nil {
		return nil, err
	}
	return &AstObject[TExpression]{expr: expr, obj: obj, host: host}, nil
}

// Expression is the object literal itself
func (o *AstObject[TExpression]) Expression() TExpression {
	return o.expr
}

// Has reports whether propertyName is present. Declaration fields are read
// through the required getters; Has is for callers probing a literal.
func (o *AstObject[TExpression]) Has(propertyName string) bool {
	return o.obj.Has(propertyName)
}

func (o *AstObject[TExpression]) GetNumber(propertyName string) (float64, error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return 0, err
	}
	return o.host.ParseNumericLiteral(node)
}

func (o *AstObject[TExpression]) GetString(propertyName string) (string, error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return "", err
	}
	return o.host.ParseStringLiteral(node)
}

func (o *AstObject[TExpression]) GetBoolean(propertyName string) (bool, error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return false, err
	}
	return o.host.ParseBooleanLiteral(node)
}

// GetObject parses the property as a nested object literal
func (o *AstObject[TExpression]) GetObject(propertyName string) (*AstObject[TExpression], error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return nil, err
	}
	return ParseAstObject(node, o.host)
}

// GetArray parses the property as an array literal
func (o *AstObject[TExpression]) GetArray(propertyName string) ([]*AstValue[TExpression], error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return nil, err
	}
	return parseAstValues(node, o.host)
}

// GetOpaque wraps the property value for the compiler without interpreting
// it. The translator writes the node back unchanged.
func (o *AstObject[TExpression]) GetOpaque(propertyName string) (*output.WrappedNodeExpr, error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return nil, err
	}
	return output.NewWrappedNodeExpr(node, nil, nil), nil
}

func (o *AstObject[TExpression]) GetNode(propertyName string) (TExpression, error) {
	return o.getRequiredProperty(propertyName)
}

func (o *AstObject[TExpression]) GetValue(propertyName string) (*AstValue[TExpression], error) {
	node, err := o.getRequiredProperty(propertyName)
	if err != nil {
		return nil, err
	}
	return NewAstValue(node, o.host), nil
}

// Entry is one converted property of an object literal
type Entry[T any] struct {
	Key   string
	Value T
}

// ToLiteral converts every property with mapper, keeping source order. The
// first mapper error is returned.
func ToLiteral[TExpression, T any](o *AstObject[TExpression], mapper func(value *AstValue[TExpression]) (T, error)) ([]Entry[T], error) {
	result := make([]Entry[T], 0, o.obj.Len())
	for _, key := range o.obj.Keys() {
		node, _ := o.obj.Get(key)
		value, err := mapper(NewAstValue(node, o.host))
		if err != nil {
			return nil, err
		}
		result = append(result, Entry[T]{Key: key, Value: value})
	}
	return result, nil
}

func (o *AstObject[TExpression]) getRequiredProperty(propertyName string) (TExpression, error) {
	node, ok := o.obj.Get(propertyName)
	if !ok {
		var zero TExpression
		return zero, NewFatalLinkerError(o.expr, "Expected property '%s' to be present.", propertyName)
	}
	return node, nil
}

// AstValue wraps a single expression, such as an array element or an object
// property value.
type AstValue[TExpression any] struct {
	value TExpression
	host  AstHost[TExpression]
}

func NewAstValue[TExpression any](value TExpression, host AstHost[TExpression]) *AstValue[TExpression] {
	return &AstValue[TExpression]{value: value, host: host}
}

func parseAstValues[TExpression any](node TExpression, host AstHost[TExpression]) ([]*AstValue[TExpression], error) {
	elements, err := host.ParseArrayLiteral(node)
	if err != nil {
		return nil, err
	}
	values := make([]*AstValue[TExpression], len(elements))
	for i, element := range elements {
		values[i] = NewAstValue(element, host)
	}
	return values, nil
}

// GetSymbolName resolves an identifier or the rightmost name of a property
// access
func (v *AstValue[TExpression]) GetSymbolName() (string, bool) {
	return v.host.GetSymbolName(v.value)
}

func (v *AstValue[TExpression]) IsNumber() bool {
	return v.host.IsNumericLiteral(v.value)
}

func (v *AstValue[TExpression]) GetNumber() (float64, error) {
	return v.host.ParseNumericLiteral(v.value)
}

func (v *AstValue[TExpression]) IsString() bool {
	return v.host.IsStringLiteral(v.value)
}

func (v *AstValue[TExpression]) GetString() (string, error) {
	return v.host.ParseStringLiteral(v.value)
}

func (v *AstValue[TExpression]) IsBoolean() bool {
	return v.host.IsBooleanLiteral(v.value)
}

func (v *AstValue[TExpression]) GetBoolean() (bool, error) {
	return v.host.ParseBooleanLiteral(v.value)
}

func (v *AstValue[TExpression]) IsObject() bool {
	return v.host.IsObjectLiteral(v.value)
}

func (v *AstValue[TExpression]) GetObject() (*AstObject[TExpression], error) {
	return ParseAstObject(v.value, v.host)
}

func (v *AstValue[TExpression]) IsArray() bool {
	return v.host.IsArrayLiteral(v.value)
}

func (v *AstValue[TExpression]) GetArray() ([]*AstValue[TExpression], error) {
	return parseAstValues(v.value, v.host)
}

func (v *AstValue[TExpression]) IsFunction() bool {
	return v.host.IsFunctionExpression(v.value)
}

func (v *AstValue[TExpression]) GetOpaque() *output.WrappedNodeExpr {
	return output.NewWrappedNodeExpr(v.value, nil, nil)
}

// Node is the wrapped expression
func (v *AstValue[TExpression]) Node() TExpression {
	return v.value
}

func (v *AstValue[TExpression]) GetRange() (Range, error) {
	return v.host.GetRange(v.value)
}
