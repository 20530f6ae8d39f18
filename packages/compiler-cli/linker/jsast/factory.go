package jsast

import (
	"fmt"

	"ngc-linker/packages/compiler-cli/translator"
	"ngc-linker/packages/compiler/output"
)

// Factory builds jsast nodes for the translator
type Factory struct{}

var _ translator.AstFactory[Statement, Expression] = Factory{}

func (Factory) CreateIdentifier(name string) Expression {
	return &Identifier{Name: name}
}

func (Factory) CreatePropertyAccess(expression Expression, propertyName string) Expression {
	return &MemberExpression{Object: expression, Property: &Identifier{Name: propertyName}}
}

func (Factory) CreateElementAccess(expression, element Expression) Expression {
	return &MemberExpression{Object: expression, Property: element, Computed: true}
}

func (Factory) CreateAssignment(target, value Expression) Expression {
	return &AssignmentExpression{Left: target, Right: value}
}

func (Factory) CreateConditional(condition, thenExpression, elseExpression Expression) Expression {
	return &ConditionalExpression{Test: condition, Consequent: thenExpression, Alternate: elseExpression}
}

func (Factory) CreateParenthesizedExpression(expression Expression) Expression {
	return &ParenthesizedExpression{Expression: expression}
}

func (Factory) CreateUnaryExpression(operator translator.UnaryOperator, operand Expression) Expression {
	return &UnaryExpression{Operator: string(operator), Argument: operand}
}

func (Factory) CreateBinaryExpression(leftOperand Expression, operator translator.BinaryOperator, rightOperand Expression) Expression {
	return &BinaryExpression{Left: leftOperand, Operator: string(operator), Right: rightOperand}
}

func (Factory) CreateCallExpression(callee Expression, args []Expression, pure bool) Expression {
	return &CallExpression{Callee: callee, Arguments: args, Pure: pure}
}

func (Factory) CreateNewExpression(expression Expression, args []Expression) Expression {
	return &NewExpression{Callee: expression, Arguments: args}
}

func (Factory) CreateTypeOfExpression(expression Expression) Expression {
	return &UnaryExpression{Operator: "typeof", Argument: expression}
}

func (Factory) CreateLiteral(value interface{}) Expression {
	switch v := value.(type) {
	case nil:
		return &NullLiteral{}
	case string:
		return &StringLiteral{Value: v}
	case bool:
		return &BooleanLiteral{Value: v}
	case int:
		return &NumericLiteral{Value: float64(v)}
	case float64:
		return &NumericLiteral{Value: v}
	}
	if value == output.Undefined {
		return &Identifier{Name: "undefined"}
	}
	panic(fmt.Sprintf("invalid literal: %v (%T)", value, value))
}

func (Factory) CreateArrayLiteral(elements []Expression) Expression {
	return &ArrayExpression{Elements: elements}
}

func (Factory) CreateObjectLiteral(properties []translator.ObjectLiteralProperty[Expression]) Expression {
	obj := &ObjectExpression{Properties: make([]*Property, len(properties))}
	for i, prop := range properties {
		var key Expression = &Identifier{Name: prop.PropertyName}
		if prop.Quoted {
			key = &StringLiteral{Value: prop.PropertyName}
		}
		obj.Properties[i] = &Property{Key: key, Value: prop.Value}
	}
	return obj
}

func (Factory) CreateVariableDeclaration(variableName string, initializer Expression, kind translator.VariableDeclarationType) Statement {
	return &VariableDeclaration{Kind: kind, Name: variableName, Init: initializer}
}

func (Factory) CreateFunctionExpression(functionName string, parameters []string, body Statement) Expression {
	return &FunctionExpression{Name: functionName, Params: parameters, Body: asBlock(body)}
}

func (Factory) CreateFunctionDeclaration(functionName string, parameters []string, body Statement) Statement {
	return &FunctionDeclaration{Name: functionName, Params: parameters, Body: asBlock(body)}
}

func (Factory) CreateExpressionStatement(expression Expression) Statement {
	return &ExpressionStatement{Expression: expression}
}

func (Factory) CreateIfStatement(condition Expression, thenStatement, elseStatement Statement) Statement {
	return &IfStatement{Test: condition, Consequent: thenStatement, Alternate: elseStatement}
}

func (Factory) CreateReturnStatement(expression Expression) Statement {
	return &ReturnStatement{Argument: expression}
}

func (Factory) CreateBlock(body []Statement) Statement {
	return &BlockStatement{Body: body}
}

func (Factory) CreateThrowStatement(expression Expression) Statement {
	return &ThrowStatement{Argument: expression}
}

func (Factory) CreateCommentStatement(commentText string, multiline bool) Statement {
	return &CommentStatement{Text: commentText, Multiline: multiline}
}

func (Factory) SetSourceMapRange(node interface{}, sourceMapRange translator.SourceMapRange) {
	n, ok := node.(Node)
	if !ok {
		return
	}
	r := sourceMapRange
	n.Location().SourceMap = &r
}

// asBlock wraps a single statement body in a block
func asBlock(body Statement) *BlockStatement {
	if block, ok := body.(*BlockStatement); ok {
		return block
	}
	if body == nil {
		return &BlockStatement{}
	}
	return &BlockStatement{Body: []Statement{body}}
}
