package translator

import (
	"errors"
	"fmt"

	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

var (
	// ErrNotImplemented is wrapped by errors for IR kinds the linker never emits
	ErrNotImplemented = errors.New("not implemented")
	// ErrUnsupported is wrapped by errors for IR values outside the supported subset
	ErrUnsupported = errors.New("unsupported")
)

// Error reports an IR construct that cannot be expressed in the host AST. It
// points at a compiler defect rather than at the declaration being linked.
type Error struct {
	Message string
	err     error
}

func (e *Error) Error() string {
	return "translator error: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func notImplemented(kind string) *Error {
	return &Error{Message: kind + ": " + ErrNotImplemented.Error(), err: ErrNotImplemented}
}

func unsupported(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), err: ErrUnsupported}
}

// Context tracks whether the node being translated sits in statement
// position. Assignments in expression position are parenthesized.
type Context struct {
	IsStatement bool
}

// WithExpressionMode returns the context for a sub-expression
func (c Context) WithExpressionMode() Context {
	return Context{IsStatement: false}
}

// WithStatementMode returns the context for a statement
func (c Context) WithStatementMode() Context {
	return Context{IsStatement: true}
}

var binaryOperators = map[output.BinaryOperator]BinaryOperator{
	output.BinaryOperatorAnd:          "&&",
	output.BinaryOperatorBigger:       ">",
	output.BinaryOperatorBiggerEquals: ">=",
	output.BinaryOperatorBitwiseAnd:   "&",
	output.BinaryOperatorDivide:       "/",
	output.BinaryOperatorEquals:       "==",
	output.BinaryOperatorIdentical:    "===",
	output.BinaryOperatorLower:        "<",
	output.BinaryOperatorLowerEquals:  "<=",
	output.BinaryOperatorMinus:        "-",
	output.BinaryOperatorModulo:       "%",
	output.BinaryOperatorMultiply:     "*",
	output.BinaryOperatorNotEquals:    "!=",
	output.BinaryOperatorNotIdentical: "!==",
	output.BinaryOperatorOr:           "||",
	output.BinaryOperatorPlus:         "+",
}

// TranslateExpression converts expression into a host expression. References
// to the framework core module resolve against ngImport.
func TranslateExpression[TStatement, TExpression any](
	expression output.OutputExpression,
	factory AstFactory[TStatement, TExpression],
	ngImport TExpression,
) (result TExpression, err error) {
	defer recoverTranslatorError(&err)
	v := &translatorVisitor[TStatement, TExpression]{factory: factory, ngImport: ngImport}
	return v.expression(expression, Context{}), nil
}

// TranslateStatement converts statement into a host statement
func TranslateStatement[TStatement, TExpression any](
	statement output.OutputStatement,
	factory AstFactory[TStatement, TExpression],
	ngImport TExpression,
) (result TStatement, err error) {
	defer recoverTranslatorError(&err)
	v := &translatorVisitor[TStatement, TExpression]{factory: factory, ngImport: ngImport}
	return v.statement(statement, Context{}), nil
}

// TranslateStatements converts statements in order, stopping at the first error
func TranslateStatements[TStatement, TExpression any](
	statements []output.OutputStatement,
	factory AstFactory[TStatement, TExpression],
	ngImport TExpression,
) ([]TStatement, error) {
	out := make([]TStatement, 0, len(statements))
	for _, stmt := range statements {
		translated, err := TranslateStatement(stmt, factory, ngImport)
		if err != nil {
			return nil, err
		}
		out = append(out, translated)
	}
	return out, nil
}

// The visitor interfaces return interface{}, so failures unwind as panics
// carrying *Error and are turned back into errors here.
func recoverTranslatorError(err *error) {
	if r := recover(); r != nil {
		translatorErr, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		*err = translatorErr
	}
}

type translatorVisitor[TStatement, TExpression any] struct {
	factory  AstFactory[TStatement, TExpression]
	ngImport TExpression
}

func (v *translatorVisitor[TStatement, TExpression]) expression(expr output.OutputExpression, ctx Context) TExpression {
	return expr.VisitExpression(v, ctx).(TExpression)
}

func (v *translatorVisitor[TStatement, TExpression]) expressions(exprs []output.OutputExpression, ctx Context) []TExpression {
	out := make([]TExpression, len(exprs))
	for i, expr := range exprs {
		out[i] = v.expression(expr, ctx)
	}
	return out
}

func (v *translatorVisitor[TStatement, TExpression]) statement(stmt output.OutputStatement, ctx Context) TStatement {
	return stmt.VisitStatement(v, ctx).(TStatement)
}

func (v *translatorVisitor[TStatement, TExpression]) block(stmts []output.OutputStatement, ctx Context) TStatement {
	out := make([]TStatement, len(stmts))
	for i, stmt := range stmts {
		out[i] = v.statement(stmt, ctx.WithStatementMode())
	}
	return v.factory.CreateBlock(out)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitDeclareVarStmt(stmt *output.DeclareVarStmt, context interface{}) interface{} {
	var initializer TExpression
	if stmt.Value != nil {
		initializer = v.expression(stmt.Value, context.(Context).WithExpressionMode())
	}
	return v.factory.CreateVariableDeclaration(stmt.Name, initializer, VariableDeclarationVar)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitDeclareFunctionStmt(stmt *output.DeclareFunctionStmt, context interface{}) interface{} {
	return v.factory.CreateFunctionDeclaration(stmt.Name, paramNames(stmt.Params), v.block(stmt.Statements, context.(Context)))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitExpressionStmt(stmt *output.ExpressionStatement, context interface{}) interface{} {
	return v.factory.CreateExpressionStatement(v.expression(stmt.Expr, context.(Context).WithStatementMode()))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitReturnStmt(stmt *output.ReturnStatement, context interface{}) interface{} {
	var value TExpression
	if stmt.Value != nil {
		value = v.expression(stmt.Value, context.(Context).WithExpressionMode())
	}
	return v.factory.CreateReturnStatement(value)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitDeclareClassStmt(*output.ClassStmt, interface{}) interface{} {
	panic(notImplemented("class declaration"))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitIfStmt(stmt *output.IfStmt, context interface{}) interface{} {
	ctx := context.(Context)
	var elseStatement TStatement
	if len(stmt.FalseCase) > 0 {
		elseStatement = v.block(stmt.FalseCase, ctx)
	}
	return v.factory.CreateIfStatement(v.expression(stmt.Condition, ctx.WithExpressionMode()), v.block(stmt.TrueCase, ctx), elseStatement)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitTryCatchStmt(*output.TryCatchStmt, interface{}) interface{} {
	panic(notImplemented("try/catch statement"))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitThrowStmt(stmt *output.ThrowStmt, context interface{}) interface{} {
	return v.factory.CreateThrowStatement(v.expression(stmt.Error, context.(Context).WithExpressionMode()))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitCommentStmt(stmt *output.CommentStmt, _ interface{}) interface{} {
	return v.factory.CreateCommentStatement(stmt.Comment, stmt.Multiline)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitJSDocCommentStmt(stmt *output.JSDocCommentStmt, _ interface{}) interface{} {
	return v.factory.CreateCommentStatement(stmt.String(), true)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitReadVarExpr(ast *output.ReadVarExpr, _ interface{}) interface{} {
	identifier := v.factory.CreateIdentifier(ast.Name)
	v.setSourceMapRange(identifier, ast)
	return identifier
}

func (v *translatorVisitor[TStatement, TExpression]) assignment(target, value TExpression, ctx Context) TExpression {
	assignment := v.factory.CreateAssignment(target, value)
	if ctx.IsStatement {
		return assignment
	}
	return v.factory.CreateParenthesizedExpression(assignment)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitWriteVarExpr(expr *output.WriteVarExpr, context interface{}) interface{} {
	ctx := context.(Context)
	return v.assignment(v.factory.CreateIdentifier(expr.Name), v.expression(expr.Value, ctx), ctx)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitWriteKeyExpr(expr *output.WriteKeyExpr, context interface{}) interface{} {
	ctx := context.(Context)
	exprCtx := ctx.WithExpressionMode()
	target := v.factory.CreateElementAccess(v.expression(expr.Receiver, exprCtx), v.expression(expr.Index, exprCtx))
	return v.assignment(target, v.expression(expr.Value, exprCtx), ctx)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitWritePropExpr(expr *output.WritePropExpr, context interface{}) interface{} {
	ctx := context.(Context)
	exprCtx := ctx.WithExpressionMode()
	target := v.factory.CreatePropertyAccess(v.expression(expr.Receiver, exprCtx), expr.Name)
	return v.assignment(target, v.expression(expr.Value, exprCtx), ctx)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitInvokeMethodExpr(ast *output.InvokeMethodExpr, context interface{}) interface{} {
	ctx := context.(Context)
	callee := v.factory.CreatePropertyAccess(v.expression(ast.Receiver, ctx), ast.Name)
	call := v.factory.CreateCallExpression(callee, v.expressions(ast.Args, ctx), false)
	v.setSourceMapRange(call, ast)
	return call
}

func (v *translatorVisitor[TStatement, TExpression]) VisitInvokeFunctionExpr(ast *output.InvokeFunctionExpr, context interface{}) interface{} {
	ctx := context.(Context)
	call := v.factory.CreateCallExpression(v.expression(ast.Fn, ctx), v.expressions(ast.Args, ctx), ast.Pure)
	v.setSourceMapRange(call, ast)
	return call
}

func (v *translatorVisitor[TStatement, TExpression]) VisitInstantiateExpr(ast *output.InstantiateExpr, context interface{}) interface{} {
	ctx := context.(Context)
	return v.factory.CreateNewExpression(v.expression(ast.ClassExpr, ctx), v.expressions(ast.Args, ctx))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitLiteralExpr(ast *output.LiteralExpr, _ interface{}) interface{} {
	expr := v.factory.CreateLiteral(ast.Value)
	v.setSourceMapRange(expr, ast)
	return expr
}

func (v *translatorVisitor[TStatement, TExpression]) VisitLocalizedString(*output.LocalizedString, interface{}) interface{} {
	panic(notImplemented("localized string"))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitExternalExpr(ast *output.ExternalExpr, _ interface{}) interface{} {
	if ast.Value.ModuleName == nil || *ast.Value.ModuleName != r3_identifiers.CORE {
		module := "<none>"
		if ast.Value.ModuleName != nil {
			module = *ast.Value.ModuleName
		}
		panic(unsupported("unable to import from %q, only %q is available", module, r3_identifiers.CORE))
	}
	if ast.Value.Name == nil {
		return v.ngImport
	}
	return v.factory.CreatePropertyAccess(v.ngImport, *ast.Value.Name)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitConditionalExpr(ast *output.ConditionalExpr, context interface{}) interface{} {
	ctx := context.(Context)
	cond := v.expression(ast.Condition, ctx)
	// The conditional operator is right-associative, so a conditional used
	// as the condition of another one needs parentheses:
	//   (a == null ? null : a.b) ? c : d
	if _, ok := ast.Condition.(*output.ConditionalExpr); ok {
		cond = v.factory.CreateParenthesizedExpression(cond)
	}
	var falseCase TExpression
	if ast.FalseCase != nil {
		falseCase = v.expression(ast.FalseCase, ctx)
	} else {
		falseCase = v.factory.CreateLiteral(nil)
	}
	return v.factory.CreateConditional(cond, v.expression(ast.TrueCase, ctx), falseCase)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitNotExpr(ast *output.NotExpr, context interface{}) interface{} {
	return v.factory.CreateUnaryExpression(UnaryOperatorNot, v.expression(ast.Condition, context.(Context)))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitAssertNotNullExpr(ast *output.AssertNotNullExpr, context interface{}) interface{} {
	return v.expression(ast.Condition, context.(Context))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitCastExpr(ast *output.CastExpr, context interface{}) interface{} {
	return v.expression(ast.Value, context.(Context))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitFunctionExpr(ast *output.FunctionExpr, context interface{}) interface{} {
	name := ""
	if ast.Name != nil {
		name = *ast.Name
	}
	return v.factory.CreateFunctionExpression(name, paramNames(ast.Params), v.block(ast.Statements, context.(Context)))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitUnaryOperatorExpr(ast *output.UnaryOperatorExpr, context interface{}) interface{} {
	operator := UnaryOperatorPlus
	if ast.Operator == output.UnaryOperatorMinus {
		operator = UnaryOperatorMinus
	}
	expr := v.factory.CreateUnaryExpression(operator, v.expression(ast.Expr, context.(Context)))
	if ast.Parens {
		return v.factory.CreateParenthesizedExpression(expr)
	}
	return expr
}

func (v *translatorVisitor[TStatement, TExpression]) VisitBinaryOperatorExpr(ast *output.BinaryOperatorExpr, context interface{}) interface{} {
	operator, ok := binaryOperators[ast.Operator]
	if !ok {
		panic(unsupported("unknown binary operator %d", ast.Operator))
	}
	ctx := context.(Context)
	return v.factory.CreateBinaryExpression(v.expression(ast.Lhs, ctx), operator, v.expression(ast.Rhs, ctx))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitReadPropExpr(ast *output.ReadPropExpr, context interface{}) interface{} {
	return v.factory.CreatePropertyAccess(v.expression(ast.Receiver, context.(Context)), ast.Name)
}

func (v *translatorVisitor[TStatement, TExpression]) VisitReadKeyExpr(ast *output.ReadKeyExpr, context interface{}) interface{} {
	ctx := context.(Context)
	return v.factory.CreateElementAccess(v.expression(ast.Receiver, ctx), v.expression(ast.Index, ctx))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitLiteralArrayExpr(ast *output.LiteralArrayExpr, context interface{}) interface{} {
	expr := v.factory.CreateArrayLiteral(v.expressions(ast.Entries, context.(Context)))
	v.setSourceMapRange(expr, ast)
	return expr
}

func (v *translatorVisitor[TStatement, TExpression]) VisitLiteralMapExpr(ast *output.LiteralMapExpr, context interface{}) interface{} {
	ctx := context.(Context)
	properties := make([]ObjectLiteralProperty[TExpression], len(ast.Entries))
	for i, entry := range ast.Entries {
		properties[i] = ObjectLiteralProperty[TExpression]{
			PropertyName: entry.Key,
			Value:        v.expression(entry.Value, ctx),
			Quoted:       entry.Quoted,
		}
	}
	expr := v.factory.CreateObjectLiteral(properties)
	v.setSourceMapRange(expr, ast)
	return expr
}

func (v *translatorVisitor[TStatement, TExpression]) VisitCommaExpr(*output.CommaExpr, interface{}) interface{} {
	panic(notImplemented("comma expression"))
}

func (v *translatorVisitor[TStatement, TExpression]) VisitWrappedNodeExpr(ast *output.WrappedNodeExpr, _ interface{}) interface{} {
	node, ok := ast.Node.(TExpression)
	if !ok {
		panic(unsupported("wrapped node of type %T is not a host expression", ast.Node))
	}
	return node
}

func (v *translatorVisitor[TStatement, TExpression]) VisitTypeofExpr(ast *output.TypeofExpr, context interface{}) interface{} {
	return v.factory.CreateTypeOfExpression(v.expression(ast.Expr, context.(Context)))
}

func (v *translatorVisitor[TStatement, TExpression]) setSourceMapRange(node TExpression, ast output.OutputExpression) {
	span := ast.GetSourceSpan()
	if span == nil || span.Start == nil || span.End == nil || span.Start.File == nil {
		return
	}
	file := span.Start.File
	if file.URL == "" || span.Start.Offset < 0 {
		return
	}
	v.factory.SetSourceMapRange(node, SourceMapRange{
		URL:     file.URL,
		Content: file.Content,
		Start:   SourceMapLocation{Offset: span.Start.Offset, Line: span.Start.Line, Column: span.Start.Col},
		End:     SourceMapLocation{Offset: span.End.Offset, Line: span.End.Line, Column: span.End.Col},
	})
}

func paramNames(params []*output.FnParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
