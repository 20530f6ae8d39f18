// Package ast reads declaration metadata out of a host AST without knowing
// the concrete node types. A host adapter implements AstHost; AstObject and
// AstValue wrap its nodes with typed, located accessors.
package ast

import "fmt"

// Range locates a node in its source file. Positions are 0-based byte
// offsets; lines and columns are 0-based as well.
type Range struct {
	StartPos  int
	StartLine int
	StartCol  int
	EndPos    int
}

// AstHost inspects the expressions of a host AST. The Parse* methods return a
// *FatalLinkerError when the node has a different shape.
type AstHost[TExpression any] interface {
	// GetSymbolName returns the name of an identifier, or the property name
	// of a property access such as `ng.ɵɵngDeclareComponent`
	GetSymbolName(node TExpression) (string, bool)

	IsStringLiteral(node TExpression) bool
	ParseStringLiteral(str TExpression) (string, error)

	IsNumericLiteral(node TExpression) bool
	ParseNumericLiteral(num TExpression) (float64, error)

	IsBooleanLiteral(node TExpression) bool
	ParseBooleanLiteral(b TExpression) (bool, error)

	IsArrayLiteral(node TExpression) bool
	ParseArrayLiteral(array TExpression) ([]TExpression, error)

	IsObjectLiteral(node TExpression) bool
	// ParseObjectLiteral keeps the source order of the properties
	ParseObjectLiteral(obj TExpression) (*OrderedMap[TExpression], error)

	IsFunctionExpression(node TExpression) bool
	IsCallExpression(node TExpression) bool

	GetRange(node TExpression) (Range, error)
}

// FatalLinkerError is raised when a declaration cannot be linked. Node is the
// host expression the problem was found at.
type FatalLinkerError struct {
	Node    interface{}
	Message string
}

func (e *FatalLinkerError) Error() string {
	return e.Message
}

// NewFatalLinkerError creates a FatalLinkerError located at node
func NewFatalLinkerError(node interface{}, format string, args ...interface{}) *FatalLinkerError {
	if len(args) == 0 {
		return &FatalLinkerError{Node: node, Message: format}
	}
	return &FatalLinkerError{Node: node, Message: fmt.Sprintf(format, args...)}
}

// OrderedMap is a string keyed map that remembers insertion order
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap creates an empty OrderedMap
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: map[string]V{}}
}

// Set adds or replaces key. A replaced key keeps its first position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}
