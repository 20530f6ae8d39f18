package expression_parser

import (
	"ngc-linker/packages/compiler/util"
)

// ParseSpan is a span relative to the start of the expression source
type ParseSpan struct {
	Start int
	End   int
}

// ToAbsolute converts the span into an absolute span
func (p ParseSpan) ToAbsolute(absoluteOffset int) AbsoluteSourceSpan {
	return AbsoluteSourceSpan{Start: absoluteOffset + p.Start, End: absoluteOffset + p.End}
}

// AbsoluteSourceSpan is a span relative to the start of the template file
type AbsoluteSourceSpan struct {
	Start int
	End   int
}

// AST is an expression node
type AST interface {
	Span() ParseSpan
	SourceSpan() AbsoluteSourceSpan
	Visit(visitor AstVisitor, context interface{}) interface{}
}

// AstVisitor visits every expression node kind
type AstVisitor interface {
	VisitEmptyExpr(ast *EmptyExpr, context interface{}) interface{}
	VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{}
	VisitChain(ast *Chain, context interface{}) interface{}
	VisitConditional(ast *Conditional, context interface{}) interface{}
	VisitPropertyRead(ast *PropertyRead, context interface{}) interface{}
	VisitPropertyWrite(ast *PropertyWrite, context interface{}) interface{}
	VisitSafePropertyRead(ast *SafePropertyRead, context interface{}) interface{}
	VisitKeyedRead(ast *KeyedRead, context interface{}) interface{}
	VisitKeyedWrite(ast *KeyedWrite, context interface{}) interface{}
	VisitPipe(ast *BindingPipe, context interface{}) interface{}
	VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{}
	VisitLiteralArray(ast *LiteralArray, context interface{}) interface{}
	VisitLiteralMap(ast *LiteralMap, context interface{}) interface{}
	VisitInterpolation(ast *Interpolation, context interface{}) interface{}
	VisitBinary(ast *Binary, context interface{}) interface{}
	VisitUnary(ast *Unary, context interface{}) interface{}
	VisitPrefixNot(ast *PrefixNot, context interface{}) interface{}
	VisitTypeofExpression(ast *TypeofExpression, context interface{}) interface{}
	VisitNonNullAssert(ast *NonNullAssert, context interface{}) interface{}
	VisitCall(ast *Call, context interface{}) interface{}
	VisitSafeCall(ast *SafeCall, context interface{}) interface{}
}

type astBase struct {
	span       ParseSpan
	sourceSpan AbsoluteSourceSpan
}

func (a *astBase) Span() ParseSpan                { return a.span }
func (a *astBase) SourceSpan() AbsoluteSourceSpan { return a.sourceSpan }

func newBase(span ParseSpan, sourceSpan AbsoluteSourceSpan) astBase {
	return astBase{span: span, sourceSpan: sourceSpan}
}

// EmptyExpr is produced for empty input or after an unrecoverable error
type EmptyExpr struct{ astBase }

func NewEmptyExpr(span ParseSpan, sourceSpan AbsoluteSourceSpan) *EmptyExpr {
	return &EmptyExpr{newBase(span, sourceSpan)}
}

func (e *EmptyExpr) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitEmptyExpr(e, ctx) }

// ImplicitReceiver is the component context; ThisReceiver marks an explicit `this`.
type ImplicitReceiver struct {
	astBase
	ThisReceiver bool
}

func NewImplicitReceiver(span ParseSpan, sourceSpan AbsoluteSourceSpan, this bool) *ImplicitReceiver {
	return &ImplicitReceiver{astBase: newBase(span, sourceSpan), ThisReceiver: this}
}

func (i *ImplicitReceiver) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitImplicitReceiver(i, ctx)
}

// Chain is a `;` separated list of actions
type Chain struct {
	astBase
	Expressions []AST
}

func NewChain(span ParseSpan, sourceSpan AbsoluteSourceSpan, expressions []AST) *Chain {
	return &Chain{astBase: newBase(span, sourceSpan), Expressions: expressions}
}

func (c *Chain) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitChain(c, ctx) }

type Conditional struct {
	astBase
	Condition AST
	TrueExp   AST
	FalseExp  AST
}

func NewConditional(span ParseSpan, sourceSpan AbsoluteSourceSpan, condition, trueExp, falseExp AST) *Conditional {
	return &Conditional{astBase: newBase(span, sourceSpan), Condition: condition, TrueExp: trueExp, FalseExp: falseExp}
}

func (c *Conditional) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitConditional(c, ctx)
}

type PropertyRead struct {
	astBase
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
}

func NewPropertyRead(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string) *PropertyRead {
	return &PropertyRead{astBase: newBase(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name}
}

func (p *PropertyRead) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitPropertyRead(p, ctx)
}

type PropertyWrite struct {
	astBase
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
	Value    AST
}

func NewPropertyWrite(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string, value AST) *PropertyWrite {
	return &PropertyWrite{astBase: newBase(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name, Value: value}
}

func (p *PropertyWrite) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitPropertyWrite(p, ctx)
}

type SafePropertyRead struct {
	astBase
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
}

func NewSafePropertyRead(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string) *SafePropertyRead {
	return &SafePropertyRead{astBase: newBase(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name}
}

func (p *SafePropertyRead) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitSafePropertyRead(p, ctx)
}

type KeyedRead struct {
	astBase
	Receiver AST
	Key      AST
}

func NewKeyedRead(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver, key AST) *KeyedRead {
	return &KeyedRead{astBase: newBase(span, sourceSpan), Receiver: receiver, Key: key}
}

func (k *KeyedRead) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitKeyedRead(k, ctx) }

type KeyedWrite struct {
	astBase
	Receiver AST
	Key      AST
	Value    AST
}

func NewKeyedWrite(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver, key, value AST) *KeyedWrite {
	return &KeyedWrite{astBase: newBase(span, sourceSpan), Receiver: receiver, Key: key, Value: value}
}

func (k *KeyedWrite) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitKeyedWrite(k, ctx) }

// BindingPipe is `exp | name:arg1:arg2`
type BindingPipe struct {
	astBase
	Exp      AST
	Name     string
	Args     []AST
	NameSpan AbsoluteSourceSpan
}

func NewBindingPipe(span ParseSpan, sourceSpan AbsoluteSourceSpan, exp AST, name string, args []AST, nameSpan AbsoluteSourceSpan) *BindingPipe {
	return &BindingPipe{astBase: newBase(span, sourceSpan), Exp: exp, Name: name, Args: args, NameSpan: nameSpan}
}

func (b *BindingPipe) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitPipe(b, ctx) }

// LiteralPrimitive holds a string, float64, bool, nil (null) or Undefined
type LiteralPrimitive struct {
	astBase
	Value interface{}
}

// undefinedLiteral marks the `undefined` keyword
type undefinedLiteral struct{}

// Undefined is the LiteralPrimitive value of the `undefined` keyword
var Undefined = undefinedLiteral{}

func NewLiteralPrimitive(span ParseSpan, sourceSpan AbsoluteSourceSpan, value interface{}) *LiteralPrimitive {
	return &LiteralPrimitive{astBase: newBase(span, sourceSpan), Value: value}
}

func (l *LiteralPrimitive) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitLiteralPrimitive(l, ctx)
}

type LiteralArray struct {
	astBase
	Expressions []AST
}

func NewLiteralArray(span ParseSpan, sourceSpan AbsoluteSourceSpan, expressions []AST) *LiteralArray {
	return &LiteralArray{astBase: newBase(span, sourceSpan), Expressions: expressions}
}

func (l *LiteralArray) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitLiteralArray(l, ctx)
}

type LiteralMapKey struct {
	Key    string
	Quoted bool
}

type LiteralMap struct {
	astBase
	Keys   []LiteralMapKey
	Values []AST
}

func NewLiteralMap(span ParseSpan, sourceSpan AbsoluteSourceSpan, keys []LiteralMapKey, values []AST) *LiteralMap {
	return &LiteralMap{astBase: newBase(span, sourceSpan), Keys: keys, Values: values}
}

func (l *LiteralMap) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitLiteralMap(l, ctx) }

// Interpolation alternates Strings and Expressions; len(Strings) == len(Expressions)+1
type Interpolation struct {
	astBase
	Strings     []string
	Expressions []AST
}

func NewInterpolation(span ParseSpan, sourceSpan AbsoluteSourceSpan, strs []string, expressions []AST) *Interpolation {
	return &Interpolation{astBase: newBase(span, sourceSpan), Strings: strs, Expressions: expressions}
}

func (i *Interpolation) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitInterpolation(i, ctx)
}

type Binary struct {
	astBase
	Operation string
	Left      AST
	Right     AST
}

func NewBinary(span ParseSpan, sourceSpan AbsoluteSourceSpan, operation string, left, right AST) *Binary {
	return &Binary{astBase: newBase(span, sourceSpan), Operation: operation, Left: left, Right: right}
}

func (b *Binary) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitBinary(b, ctx) }

// Unary is a prefix `-` or `+`
type Unary struct {
	astBase
	Operator string
	Expr     AST
}

func NewUnary(span ParseSpan, sourceSpan AbsoluteSourceSpan, operator string, expr AST) *Unary {
	return &Unary{astBase: newBase(span, sourceSpan), Operator: operator, Expr: expr}
}

func (u *Unary) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitUnary(u, ctx) }

type PrefixNot struct {
	astBase
	Expression AST
}

func NewPrefixNot(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *PrefixNot {
	return &PrefixNot{astBase: newBase(span, sourceSpan), Expression: expression}
}

func (p *PrefixNot) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitPrefixNot(p, ctx) }

type TypeofExpression struct {
	astBase
	Expression AST
}

func NewTypeofExpression(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *TypeofExpression {
	return &TypeofExpression{astBase: newBase(span, sourceSpan), Expression: expression}
}

func (t *TypeofExpression) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitTypeofExpression(t, ctx)
}

type NonNullAssert struct {
	astBase
	Expression AST
}

func NewNonNullAssert(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *NonNullAssert {
	return &NonNullAssert{astBase: newBase(span, sourceSpan), Expression: expression}
}

func (n *NonNullAssert) Visit(v AstVisitor, ctx interface{}) interface{} {
	return v.VisitNonNullAssert(n, ctx)
}

type Call struct {
	astBase
	Receiver AST
	Args     []AST
}

func NewCall(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver AST, args []AST) *Call {
	return &Call{astBase: newBase(span, sourceSpan), Receiver: receiver, Args: args}
}

func (c *Call) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitCall(c, ctx) }

type SafeCall struct {
	astBase
	Receiver AST
	Args     []AST
}

func NewSafeCall(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver AST, args []AST) *SafeCall {
	return &SafeCall{astBase: newBase(span, sourceSpan), Receiver: receiver, Args: args}
}

func (c *SafeCall) Visit(v AstVisitor, ctx interface{}) interface{} { return v.VisitSafeCall(c, ctx) }

// ASTWithSource is the root of every parse; Errors collects recoverable parse errors.
type ASTWithSource struct {
	AST            AST
	Source         string
	Location       string
	AbsoluteOffset int
	Errors         []*util.ParseError
}

func NewASTWithSource(ast AST, source, location string, absoluteOffset int, errors []*util.ParseError) *ASTWithSource {
	return &ASTWithSource{AST: ast, Source: source, Location: location, AbsoluteOffset: absoluteOffset, Errors: errors}
}

func (a *ASTWithSource) Span() ParseSpan                { return a.AST.Span() }
func (a *ASTWithSource) SourceSpan() AbsoluteSourceSpan { return a.AST.SourceSpan() }

func (a *ASTWithSource) Visit(v AstVisitor, ctx interface{}) interface{} {
	return a.AST.Visit(v, ctx)
}

// TemplateBindingIdentifier is a key or variable name in microsyntax
type TemplateBindingIdentifier struct {
	Source string
	Span   AbsoluteSourceSpan
}

// TemplateBinding is one entry of `*dir="..."` microsyntax
type TemplateBinding interface {
	GetKey() *TemplateBindingIdentifier
	GetSourceSpan() AbsoluteSourceSpan
}

// VariableBinding is `let item = $implicit` or `index as i`. Value is nil for
// a bare `let item`.
type VariableBinding struct {
	SourceSpan AbsoluteSourceSpan
	Key        *TemplateBindingIdentifier
	Value      *TemplateBindingIdentifier
}

func (v *VariableBinding) GetKey() *TemplateBindingIdentifier  { return v.Key }
func (v *VariableBinding) GetSourceSpan() AbsoluteSourceSpan { return v.SourceSpan }

// ExpressionBinding binds an expression to a directive input. Value is nil
// for a key without expression.
type ExpressionBinding struct {
	SourceSpan AbsoluteSourceSpan
	Key        *TemplateBindingIdentifier
	Value      *ASTWithSource
}

func (e *ExpressionBinding) GetKey() *TemplateBindingIdentifier  { return e.Key }
func (e *ExpressionBinding) GetSourceSpan() AbsoluteSourceSpan { return e.SourceSpan }

// Inspect traverses ast in depth-first order, calling fn for each node. If fn
// returns false the children of that node are skipped.
func Inspect(ast AST, fn func(AST) bool) {
	if ast == nil || !fn(ast) {
		return
	}
	children := func(nodes ...AST) {
		for _, node := range nodes {
			Inspect(node, fn)
		}
	}
	switch n := ast.(type) {
	case *ASTWithSource:
		children(n.AST)
	case *Chain:
		children(n.Expressions...)
	case *Conditional:
		children(n.Condition, n.TrueExp, n.FalseExp)
	case *PropertyRead:
		children(n.Receiver)
	case *PropertyWrite:
		children(n.Receiver, n.Value)
	case *SafePropertyRead:
		children(n.Receiver)
	case *KeyedRead:
		children(n.Receiver, n.Key)
	case *KeyedWrite:
		children(n.Receiver, n.Key, n.Value)
	case *BindingPipe:
		children(n.Exp)
		children(n.Args...)
	case *LiteralArray:
		children(n.Expressions...)
	case *LiteralMap:
		children(n.Values...)
	case *Interpolation:
		children(n.Expressions...)
	case *Binary:
		children(n.Left, n.Right)
	case *Unary:
		children(n.Expr)
	case *PrefixNot:
		children(n.Expression)
	case *TypeofExpression:
		children(n.Expression)
	case *NonNullAssert:
		children(n.Expression)
	case *Call:
		children(n.Receiver)
		children(n.Args...)
	case *SafeCall:
		children(n.Receiver)
		children(n.Args...)
	}
}
