package jsast

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
)

// Host reads declaration metadata from jsast expressions
type Host struct{}

var _ ast.AstHost[Expression] = Host{}

func (Host) GetSymbolName(node Expression) (string, bool) {
	return extractRightMostName(node)
}

// extractRightMostName resolves `a` and `a.b.c` to `a` and `c`
func extractRightMostName(node Expression) (string, bool) {
	switch n := node.(type) {
	case *Identifier:
		return n.Name, true
	case *MemberExpression:
		if id, ok := n.Property.(*Identifier); ok && !n.Computed {
			return id.Name, true
		}
	case *ParenthesizedExpression:
		return extractRightMostName(n.Expression)
	}
	return "", false
}

func (Host) IsStringLiteral(node Expression) bool {
	_, ok := node.(*StringLiteral)
	return ok
}

func (Host) ParseStringLiteral(node Expression) (string, error) {
	str, ok := node.(*StringLiteral)
	if !ok {
		return "", unsupportedSyntax(node, "a string literal")
	}
	return str.Value, nil
}

func (Host) IsNumericLiteral(node Expression) bool {
	_, ok := node.(*NumericLiteral)
	return ok
}

func (Host) ParseNumericLiteral(node Expression) (float64, error) {
	num, ok := node.(*NumericLiteral)
	if !ok {
		return 0, unsupportedSyntax(node, "a number literal")
	}
	return num.Value, nil
}

func (Host) IsBooleanLiteral(node Expression) bool {
	_, ok := node.(*BooleanLiteral)
	return ok
}

func (Host) ParseBooleanLiteral(node Expression) (bool, error) {
	b, ok := node.(*BooleanLiteral)
	if !ok {
		return false, unsupportedSyntax(node, "a boolean literal")
	}
	return b.Value, nil
}

func (Host) IsArrayLiteral(node Expression) bool {
	_, ok := node.(*ArrayExpression)
	return ok
}

// ParseArrayLiteral skips holes and spread elements
func (Host) ParseArrayLiteral(node Expression) ([]Expression, error) {
	array, ok := node.(*ArrayExpression)
	if !ok {
		return nil, unsupportedSyntax(node, "an array literal")
	}
	elements := make([]Expression, 0, len(array.Elements))
	for _, element := range array.Elements {
		if element == nil {
			continue
		}
		if _, spread := element.(*SpreadElement); spread {
			continue
		}
		elements = append(elements, element)
	}
	return elements, nil
}

func (Host) IsObjectLiteral(node Expression) bool {
	_, ok := node.(*ObjectExpression)
	return ok
}

func (Host) ParseObjectLiteral(node Expression) (*ast.OrderedMap[Expression], error) {
	obj, ok := node.(*ObjectExpression)
	if !ok {
		return nil, unsupportedSyntax(node, "an object literal")
	}
	result := ast.NewOrderedMap[Expression]()
	for _, property := range obj.Properties {
		if property.Value == nil {
			return nil, unsupportedSyntax(property.Key, "a property assignment")
		}
		if _, spread := property.Value.(*SpreadElement); spread {
			return nil, unsupportedSyntax(property.Value, "a property assignment")
		}
		var key string
		switch k := property.Key.(type) {
		case *Identifier:
			if property.Computed {
				return nil, ast.NewFatalLinkerError(property.Key, "Unsupported syntax, expected a property name.")
			}
			key = k.Name
		case *StringLiteral:
			key = k.Value
		default:
			return nil, ast.NewFatalLinkerError(property.Key, "Unsupported syntax, expected a property name.")
		}
		result.Set(key, property.Value)
	}
	return result, nil
}

func (Host) IsFunctionExpression(node Expression) bool {
	_, ok := node.(*FunctionExpression)
	return ok
}

func (Host) IsCallExpression(node Expression) bool {
	_, ok := node.(*CallExpression)
	return ok
}

// GetRange fails for nodes that were built rather than parsed
func (Host) GetRange(node Expression) (ast.Range, error) {
	if node == nil || node.Location().Range == nil {
		return ast.Range{}, ast.NewFatalLinkerError(node, "Unable to read range for node - it is missing location information.")
	}
	return *node.Location().Range, nil
}

func unsupportedSyntax(node Expression, expected string) *ast.FatalLinkerError {
	return ast.NewFatalLinkerError(node, "Unsupported syntax, expected %s.", expected)
}
