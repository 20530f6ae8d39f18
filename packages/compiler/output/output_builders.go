package output

// Shorthand constructors used by code generators. They mirror the fluent
// helpers of the compiler IR and never carry a type or source span.

// Variable reads a variable by name
func Variable(name string) *ReadVarExpr {
	return NewReadVarExpr(name, nil, nil)
}

// Literal creates a primitive literal
func Literal(value interface{}) *LiteralExpr {
	return NewLiteralExpr(value, nil, nil)
}

// NullExpr is the `null` literal
func NullExpr() *LiteralExpr {
	return NewLiteralExpr(nil, nil, nil)
}

// LiteralArr creates an array literal
func LiteralArr(values ...OutputExpression) *LiteralArrayExpr {
	if values == nil {
		values = []OutputExpression{}
	}
	return NewLiteralArrayExpr(values, nil, nil)
}

// LiteralStrings creates an array literal of string literals
func LiteralStrings(values []string) *LiteralArrayExpr {
	entries := make([]OutputExpression, len(values))
	for i, v := range values {
		entries[i] = Literal(v)
	}
	return LiteralArr(entries...)
}

// LiteralMap creates an object literal
func LiteralMap(entries ...*LiteralMapEntry) *LiteralMapExpr {
	if entries == nil {
		entries = []*LiteralMapEntry{}
	}
	return NewLiteralMapExpr(entries, nil, nil)
}

// ImportExpr references an external symbol
func ImportExpr(ref *ExternalReference) *ExternalExpr {
	return NewExternalExpr(ref, nil, nil)
}

// Fn creates an anonymous or named function expression
func Fn(params []*FnParam, body []OutputStatement, name string) *FunctionExpr {
	var namePtr *string
	if name != "" {
		namePtr = &name
	}
	return NewFunctionExpr(params, body, nil, nil, namePtr)
}

// Params creates untyped function parameters
func Params(names ...string) []*FnParam {
	params := make([]*FnParam, len(names))
	for i, name := range names {
		params[i] = NewFnParam(name, DynamicType)
	}
	return params
}

// Prop reads a property of receiver
func Prop(receiver OutputExpression, name string) *ReadPropExpr {
	return NewReadPropExpr(receiver, name, nil, nil)
}

// Key reads receiver[index]
func Key(receiver, index OutputExpression) *ReadKeyExpr {
	return NewReadKeyExpr(receiver, index, nil, nil)
}

// CallFn invokes fn with args
func CallFn(fn OutputExpression, args ...OutputExpression) *InvokeFunctionExpr {
	if args == nil {
		args = []OutputExpression{}
	}
	return NewInvokeFunctionExpr(fn, args, nil, nil, false)
}

// CallMethod invokes receiver.name with args
func CallMethod(receiver OutputExpression, name string, args ...OutputExpression) *InvokeMethodExpr {
	if args == nil {
		args = []OutputExpression{}
	}
	return NewInvokeMethodExpr(receiver, name, args, nil, nil)
}

// Binary combines lhs and rhs with operator
func Binary(operator BinaryOperator, lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(operator, lhs, rhs, nil, nil)
}

// Conditional creates `condition ? trueCase : falseCase`
func Conditional(condition, trueCase, falseCase OutputExpression) *ConditionalExpr {
	return NewConditionalExpr(condition, trueCase, falseCase, nil, nil)
}

// Not negates condition
func Not(condition OutputExpression) *NotExpr {
	return NewNotExpr(condition, nil)
}

// Stmt turns an expression into a statement
func Stmt(expr OutputExpression) *ExpressionStatement {
	return NewExpressionStatement(expr, nil)
}

// Return creates a return statement
func Return(value OutputExpression) *ReturnStatement {
	return NewReturnStatement(value, nil)
}

// If creates an if statement without an else branch
func If(condition OutputExpression, body ...OutputStatement) *IfStmt {
	return NewIfStmt(condition, body, nil, nil)
}

// DeclareConst creates a final variable declaration
func DeclareConst(name string, value OutputExpression) *DeclareVarStmt {
	return NewDeclareVarStmt(name, value, InferredType, StmtModifierFinal, nil)
}
