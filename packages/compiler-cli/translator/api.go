// Package translator converts the compiler output IR into the nodes of a host
// AST. The host supplies an AstFactory; the translator never inspects the
// nodes it creates.
package translator

// SourceMapLocation is a 0-based position in a source file
type SourceMapLocation struct {
	Offset int
	Line   int
	Column int
}

// SourceMapRange points a generated node back at the code it came from
type SourceMapRange struct {
	URL     string
	Content string
	Start   SourceMapLocation
	End     SourceMapLocation
}

// ObjectLiteralProperty is one `name: value` entry of an object literal
type ObjectLiteralProperty[TExpression any] struct {
	PropertyName string
	Value        TExpression
	// Quoted keys are emitted as string literals
	Quoted bool
}

// UnaryOperator is the JavaScript spelling of a prefix operator
type UnaryOperator string

const (
	UnaryOperatorNot   UnaryOperator = "!"
	UnaryOperatorMinus UnaryOperator = "-"
	UnaryOperatorPlus  UnaryOperator = "+"
)

// BinaryOperator is the JavaScript spelling of a binary operator
type BinaryOperator string

// VariableDeclarationType is the keyword of a variable declaration
type VariableDeclarationType string

const (
	VariableDeclarationConst VariableDeclarationType = "const"
	VariableDeclarationLet   VariableDeclarationType = "let"
	VariableDeclarationVar   VariableDeclarationType = "var"
)

// AstFactory builds host AST nodes. Optional operands are passed as the zero
// TExpression or TStatement.
type AstFactory[TStatement, TExpression any] interface {
	CreateIdentifier(name string) TExpression
	CreatePropertyAccess(expression TExpression, propertyName string) TExpression
	CreateElementAccess(expression, element TExpression) TExpression
	CreateAssignment(target, value TExpression) TExpression
	CreateConditional(condition, thenExpression, elseExpression TExpression) TExpression
	CreateParenthesizedExpression(expression TExpression) TExpression
	CreateUnaryExpression(operator UnaryOperator, operand TExpression) TExpression
	CreateBinaryExpression(leftOperand TExpression, operator BinaryOperator, rightOperand TExpression) TExpression
	// pure marks calls that may be dropped when their result is unused
	CreateCallExpression(callee TExpression, args []TExpression, pure bool) TExpression
	CreateNewExpression(expression TExpression, args []TExpression) TExpression
	CreateTypeOfExpression(expression TExpression) TExpression
	// CreateLiteral accepts string, float64, int, bool, nil for null and
	// output.Undefined
	CreateLiteral(value interface{}) TExpression
	CreateArrayLiteral(elements []TExpression) TExpression
	CreateObjectLiteral(properties []ObjectLiteralProperty[TExpression]) TExpression

	CreateVariableDeclaration(variableName string, initializer TExpression, kind VariableDeclarationType) TStatement
	// an empty functionName creates an anonymous function
	CreateFunctionExpression(functionName string, parameters []string, body TStatement) TExpression
	CreateFunctionDeclaration(functionName string, parameters []string, body TStatement) TStatement
	CreateExpressionStatement(expression TExpression) TStatement
	CreateIfStatement(condition TExpression, thenStatement, elseStatement TStatement) TStatement
	CreateReturnStatement(expression TExpression) TStatement
	CreateBlock(body []TStatement) TStatement
	CreateThrowStatement(expression TExpression) TStatement
	CreateCommentStatement(commentText string, multiline bool) TStatement

	// SetSourceMapRange annotates an already built expression or statement
	SetSourceMapRange(node interface{}, sourceMapRange SourceMapRange)
}
