package output

import (
	"ngc-linker/packages/compiler/util"
)

// TypeModifier represents type modifiers
type TypeModifier int

const (
	TypeModifierNone  TypeModifier = 0
	TypeModifierConst TypeModifier = 1 << 0
)

// Type is the base interface for all output types. Types are carried for
// fidelity with the compiler but never printed by the linker.
type Type interface {
	HasModifier(modifier TypeModifier) bool
}

// BuiltinTypeName represents builtin type names
type BuiltinTypeName int

const (
	BuiltinTypeNameDynamic BuiltinTypeName = iota
	BuiltinTypeNameBool
	BuiltinTypeNameString
	BuiltinTypeNameNumber
	BuiltinTypeNameInferred
)

// BuiltinType is one of the predefined types
type BuiltinType struct {
	Name      BuiltinTypeName
	Modifiers TypeModifier
}

// NewBuiltinType creates a new BuiltinType
func NewBuiltinType(name BuiltinTypeName, modifiers TypeModifier) *BuiltinType {
	return &BuiltinType{Name: name, Modifiers: modifiers}
}

// HasModifier implements Type
func (b *BuiltinType) HasModifier(modifier TypeModifier) bool {
	return b.Modifiers&modifier != 0
}

var (
	DynamicType  = NewBuiltinType(BuiltinTypeNameDynamic, TypeModifierNone)
	InferredType = NewBuiltinType(BuiltinTypeNameInferred, TypeModifierNone)
	BoolType     = NewBuiltinType(BuiltinTypeNameBool, TypeModifierNone)
	NumberType   = NewBuiltinType(BuiltinTypeNameNumber, TypeModifierNone)
	StringType   = NewBuiltinType(BuiltinTypeNameString, TypeModifierNone)
)

// UnaryOperator represents unary operators
type UnaryOperator int

const (
	UnaryOperatorMinus UnaryOperator = iota
	UnaryOperatorPlus
)

// BinaryOperator represents binary operators
type BinaryOperator int

const (
	BinaryOperatorEquals BinaryOperator = iota
	BinaryOperatorNotEquals
	BinaryOperatorIdentical
	BinaryOperatorNotIdentical
	BinaryOperatorMinus
	BinaryOperatorPlus
	BinaryOperatorDivide
	BinaryOperatorMultiply
	BinaryOperatorModulo
	BinaryOperatorAnd
	BinaryOperatorOr
	BinaryOperatorBitwiseAnd
	BinaryOperatorLower
	BinaryOperatorLowerEquals
	BinaryOperatorBigger
	BinaryOperatorBiggerEquals
	BinaryOperatorNullishCoalesce
)

// undefinedValue marks the JavaScript `undefined` literal
type undefinedValue struct{}

// Undefined is the LiteralExpr value for `undefined`; nil means `null`.
var Undefined = undefinedValue{}

// OutputExpression represents an expression in the output AST
type OutputExpression interface {
	GetType() Type
	GetSourceSpan() *util.ParseSourceSpan
	VisitExpression(visitor ExpressionVisitor, context interface{}) interface{}
	IsEquivalent(e OutputExpression) bool
	IsConstant() bool
}

// ExpressionVisitor is the interface for visiting expressions
type ExpressionVisitor interface {
	VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{}
	VisitWriteVarExpr(ast *WriteVarExpr, context interface{}) interface{}
	VisitWriteKeyExpr(ast *WriteKeyExpr, context interface{}) interface{}
	VisitWritePropExpr(ast *WritePropExpr, context interface{}) interface{}
	VisitInvokeMethodExpr(ast *InvokeMethodExpr, context interface{}) interface{}
	VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{}
	VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{}
	VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{}
	VisitLocalizedString(ast *LocalizedString, context interface{}) interface{}
	VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{}
	VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{}
	VisitNotExpr(ast *NotExpr, context interface{}) interface{}
	VisitAssertNotNullExpr(ast *AssertNotNullExpr, context interface{}) interface{}
	VisitCastExpr(ast *CastExpr, context interface{}) interface{}
	VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{}
	VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{}
	VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{}
	VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{}
	VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{}
	VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{}
	VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{}
	VisitCommaExpr(ast *CommaExpr, context interface{}) interface{}
	VisitWrappedNodeExpr(ast *WrappedNodeExpr, context interface{}) interface{}
	VisitTypeofExpr(ast *TypeofExpr, context interface{}) interface{}
}

// ExpressionBase is the base struct for all expressions
type ExpressionBase struct {
	Type       Type
	SourceSpan *util.ParseSourceSpan
}

// GetType returns the type of the expression
func (e *ExpressionBase) GetType() Type {
	return e.Type
}

// GetSourceSpan returns the source span
func (e *ExpressionBase) GetSourceSpan() *util.ParseSourceSpan {
	return e.SourceSpan
}

// ReadVarExpr represents a variable read expression
type ReadVarExpr struct {
	ExpressionBase
	Name string
}

// NewReadVarExpr creates a new ReadVarExpr
func NewReadVarExpr(name string, typ Type, sourceSpan *util.ParseSourceSpan) *ReadVarExpr {
	return &ReadVarExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Name:           name,
	}
}

// VisitExpression implements OutputExpression interface
func (r *ReadVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadVarExpr(r, context)
}

// IsEquivalent implements OutputExpression interface
func (r *ReadVarExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadVarExpr)
	return ok && r.Name == other.Name
}

// IsConstant implements OutputExpression interface
func (r *ReadVarExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this variable
func (r *ReadVarExpr) Set(value OutputExpression) *WriteVarExpr {
	return NewWriteVarExpr(r.Name, value, nil, r.SourceSpan)
}

// WriteVarExpr represents `name = value`
type WriteVarExpr struct {
	ExpressionBase
	Name  string
	Value OutputExpression
}

// NewWriteVarExpr creates a new WriteVarExpr
func NewWriteVarExpr(name string, value OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *WriteVarExpr {
	if typ == nil {
		typ = value.GetType()
	}
	return &WriteVarExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Name:           name,
		Value:          value,
	}
}

func (w *WriteVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitWriteVarExpr(w, context)
}

func (w *WriteVarExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*WriteVarExpr)
	return ok && w.Name == other.Name && w.Value.IsEquivalent(other.Value)
}

func (w *WriteVarExpr) IsConstant() bool {
	return false
}

// ToDeclStmt converts the write into a variable declaration
func (w *WriteVarExpr) ToDeclStmt(typ Type, modifiers StmtModifier) *DeclareVarStmt {
	return NewDeclareVarStmt(w.Name, w.Value, typ, modifiers, w.SourceSpan)
}

// WriteKeyExpr represents `receiver[index] = value`
type WriteKeyExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Index    OutputExpression
	Value    OutputExpression
}

// NewWriteKeyExpr creates a new WriteKeyExpr
func NewWriteKeyExpr(receiver, index, value OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *WriteKeyExpr {
	if typ == nil {
		typ = value.GetType()
	}
	return &WriteKeyExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Index:          index,
		Value:          value,
	}
}

func (w *WriteKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitWriteKeyExpr(w, context)
}

func (w *WriteKeyExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*WriteKeyExpr)
	return ok && w.Receiver.IsEquivalent(other.Receiver) && w.Index.IsEquivalent(other.Index) &&
		w.Value.IsEquivalent(other.Value)
}

func (w *WriteKeyExpr) IsConstant() bool {
	return false
}

// WritePropExpr represents `receiver.name = value`
type WritePropExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
	Value    OutputExpression
}

// NewWritePropExpr creates a new WritePropExpr
func NewWritePropExpr(receiver OutputExpression, name string, value OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *WritePropExpr {
	if typ == nil {
		typ = value.GetType()
	}
	return &WritePropExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Name:           name,
		Value:          value,
	}
}

func (w *WritePropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitWritePropExpr(w, context)
}

func (w *WritePropExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*WritePropExpr)
	return ok && w.Receiver.IsEquivalent(other.Receiver) && w.Name == other.Name &&
		w.Value.IsEquivalent(other.Value)
}

func (w *WritePropExpr) IsConstant() bool {
	return false
}

// InvokeMethodExpr represents `receiver.name(args)`
type InvokeMethodExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
	Args     []OutputExpression
}

// NewInvokeMethodExpr creates a new InvokeMethodExpr
func NewInvokeMethodExpr(receiver OutputExpression, name string, args []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *InvokeMethodExpr {
	return &InvokeMethodExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Name:           name,
		Args:           args,
	}
}

func (i *InvokeMethodExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeMethodExpr(i, context)
}

func (i *InvokeMethodExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*InvokeMethodExpr)
	return ok && i.Receiver.IsEquivalent(other.Receiver) && i.Name == other.Name &&
		areAllEquivalent(i.Args, other.Args)
}

func (i *InvokeMethodExpr) IsConstant() bool {
	return false
}

// InvokeFunctionExpr represents `fn(args)`. Pure marks calls that may be
// dropped by tree-shakers when their result is unused.
type InvokeFunctionExpr struct {
	ExpressionBase
	Fn   OutputExpression
	Args []OutputExpression
	Pure bool
}

// NewInvokeFunctionExpr creates a new InvokeFunctionExpr
func NewInvokeFunctionExpr(fn OutputExpression, args []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan, pure bool) *InvokeFunctionExpr {
	return &InvokeFunctionExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Fn:             fn,
		Args:           args,
		Pure:           pure,
	}
}

func (i *InvokeFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeFunctionExpr(i, context)
}

func (i *InvokeFunctionExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*InvokeFunctionExpr)
	return ok && i.Fn.IsEquivalent(other.Fn) && areAllEquivalent(i.Args, other.Args) && i.Pure == other.Pure
}

func (i *InvokeFunctionExpr) IsConstant() bool {
	return false
}

// InstantiateExpr represents `new classExpr(args)`
type InstantiateExpr struct {
	ExpressionBase
	ClassExpr OutputExpression
	Args      []OutputExpression
}

// NewInstantiateExpr creates a new InstantiateExpr
func NewInstantiateExpr(classExpr OutputExpression, args []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *InstantiateExpr {
	return &InstantiateExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		ClassExpr:      classExpr,
		Args:           args,
	}
}

func (i *InstantiateExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInstantiateExpr(i, context)
}

func (i *InstantiateExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*InstantiateExpr)
	return ok && i.ClassExpr.IsEquivalent(other.ClassExpr) && areAllEquivalent(i.Args, other.Args)
}

func (i *InstantiateExpr) IsConstant() bool {
	return false
}

// LiteralExpr is a primitive literal: string, float64, int, bool, nil (null)
// or Undefined. Value may be patched after creation by code generators that
// only know a number once a whole template has been processed.
type LiteralExpr struct {
	ExpressionBase
	Value interface{}
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralExpr {
	return &LiteralExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Value:          value,
	}
}

func (l *LiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralExpr(l, context)
}

func (l *LiteralExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralExpr)
	return ok && l.Value == other.Value
}

func (l *LiteralExpr) IsConstant() bool {
	return true
}

// LocalizedString is a `$localize` tagged template. The linker does not
// translate it; it exists so that i18n output fails loudly.
type LocalizedString struct {
	ExpressionBase
	MessageParts []string
	Expressions  []OutputExpression
}

// NewLocalizedString creates a new LocalizedString
func NewLocalizedString(messageParts []string, expressions []OutputExpression, sourceSpan *util.ParseSourceSpan) *LocalizedString {
	return &LocalizedString{
		ExpressionBase: ExpressionBase{Type: StringType, SourceSpan: sourceSpan},
		MessageParts:   messageParts,
		Expressions:    expressions,
	}
}

func (l *LocalizedString) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLocalizedString(l, context)
}

func (l *LocalizedString) IsEquivalent(e OutputExpression) bool {
	// Localized strings are never shared.
	return false
}

func (l *LocalizedString) IsConstant() bool {
	return false
}

// ExternalReference names a symbol exported from another module
type ExternalReference struct {
	ModuleName *string
	Name       *string
}

// NewExternalReference creates a new ExternalReference
func NewExternalReference(moduleName, name *string) *ExternalReference {
	return &ExternalReference{ModuleName: moduleName, Name: name}
}

// ExternalExpr references an ExternalReference
type ExternalExpr struct {
	ExpressionBase
	Value *ExternalReference
}

// NewExternalExpr creates a new ExternalExpr
func NewExternalExpr(value *ExternalReference, typ Type, sourceSpan *util.ParseSourceSpan) *ExternalExpr {
	return &ExternalExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Value:          value,
	}
}

func (e *ExternalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitExternalExpr(e, context)
}

func (e *ExternalExpr) IsEquivalent(other OutputExpression) bool {
	o, ok := other.(*ExternalExpr)
	return ok && equalStringPtr(e.Value.ModuleName, o.Value.ModuleName) && equalStringPtr(e.Value.Name, o.Value.Name)
}

func (e *ExternalExpr) IsConstant() bool {
	return false
}

// ConditionalExpr represents `condition ? trueCase : falseCase`
type ConditionalExpr struct {
	ExpressionBase
	Condition OutputExpression
	TrueCase  OutputExpression
	FalseCase OutputExpression
}

// NewConditionalExpr creates a new ConditionalExpr. A nil falseCase prints as `null`.
func NewConditionalExpr(condition, trueCase, falseCase OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *ConditionalExpr {
	if typ == nil {
		typ = trueCase.GetType()
	}
	return &ConditionalExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Condition:      condition,
		TrueCase:       trueCase,
		FalseCase:      falseCase,
	}
}

func (c *ConditionalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitConditionalExpr(c, context)
}

func (c *ConditionalExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ConditionalExpr)
	return ok && c.Condition.IsEquivalent(other.Condition) && c.TrueCase.IsEquivalent(other.TrueCase) &&
		nullSafeIsEquivalent(c.FalseCase, other.FalseCase)
}

func (c *ConditionalExpr) IsConstant() bool {
	return false
}

// NotExpr represents `!condition`
type NotExpr struct {
	ExpressionBase
	Condition OutputExpression
}

// NewNotExpr creates a new NotExpr
func NewNotExpr(condition OutputExpression, sourceSpan *util.ParseSourceSpan) *NotExpr {
	return &NotExpr{
		ExpressionBase: ExpressionBase{Type: BoolType, SourceSpan: sourceSpan},
		Condition:      condition,
	}
}

func (n *NotExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitNotExpr(n, context)
}

func (n *NotExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*NotExpr)
	return ok && n.Condition.IsEquivalent(other.Condition)
}

func (n *NotExpr) IsConstant() bool {
	return false
}

// AssertNotNullExpr is a non-null assertion; it has no runtime representation
type AssertNotNullExpr struct {
	ExpressionBase
	Condition OutputExpression
}

// NewAssertNotNullExpr creates a new AssertNotNullExpr
func NewAssertNotNullExpr(condition OutputExpression, sourceSpan *util.ParseSourceSpan) *AssertNotNullExpr {
	return &AssertNotNullExpr{
		ExpressionBase: ExpressionBase{Type: condition.GetType(), SourceSpan: sourceSpan},
		Condition:      condition,
	}
}

func (a *AssertNotNullExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitAssertNotNullExpr(a, context)
}

func (a *AssertNotNullExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*AssertNotNullExpr)
	return ok && a.Condition.IsEquivalent(other.Condition)
}

func (a *AssertNotNullExpr) IsConstant() bool {
	return false
}

// CastExpr is a type cast; it has no runtime representation
type CastExpr struct {
	ExpressionBase
	Value OutputExpression
}

// NewCastExpr creates a new CastExpr
func NewCastExpr(value OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *CastExpr {
	return &CastExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Value:          value,
	}
}

func (c *CastExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitCastExpr(c, context)
}

func (c *CastExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*CastExpr)
	return ok && c.Value.IsEquivalent(other.Value)
}

func (c *CastExpr) IsConstant() bool {
	return false
}

// FnParam is a function parameter
type FnParam struct {
	Name string
	Type Type
}

// NewFnParam creates a new FnParam
func NewFnParam(name string, typ Type) *FnParam {
	return &FnParam{Name: name, Type: typ}
}

// FunctionExpr represents `function name(params) { statements }`
type FunctionExpr struct {
	ExpressionBase
	Params     []*FnParam
	Statements []OutputStatement
	Name       *string
}

// NewFunctionExpr creates a new FunctionExpr
func NewFunctionExpr(params []*FnParam, statements []OutputStatement, typ Type, sourceSpan *util.ParseSourceSpan, name *string) *FunctionExpr {
	return &FunctionExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Params:         params,
		Statements:     statements,
		Name:           name,
	}
}

func (f *FunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitFunctionExpr(f, context)
}

func (f *FunctionExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*FunctionExpr)
	return ok && areAllParamsEquivalent(f.Params, other.Params) && areAllStatementsEquivalent(f.Statements, other.Statements)
}

func (f *FunctionExpr) IsConstant() bool {
	return false
}

// ToDeclStmt converts the function expression into a named function declaration
func (f *FunctionExpr) ToDeclStmt(name string, modifiers StmtModifier) *DeclareFunctionStmt {
	return NewDeclareFunctionStmt(name, f.Params, f.Statements, f.Type, modifiers, f.SourceSpan)
}

// UnaryOperatorExpr represents `-expr` or `+expr`
type UnaryOperatorExpr struct {
	ExpressionBase
	Operator UnaryOperator
	Expr     OutputExpression
	Parens   bool
}

// NewUnaryOperatorExpr creates a new UnaryOperatorExpr
func NewUnaryOperatorExpr(operator UnaryOperator, expr OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan, parens bool) *UnaryOperatorExpr {
	if typ == nil {
		typ = NumberType
	}
	return &UnaryOperatorExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Operator:       operator,
		Expr:           expr,
		Parens:         parens,
	}
}

func (u *UnaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUnaryOperatorExpr(u, context)
}

func (u *UnaryOperatorExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*UnaryOperatorExpr)
	return ok && u.Operator == other.Operator && u.Expr.IsEquivalent(other.Expr)
}

func (u *UnaryOperatorExpr) IsConstant() bool {
	return false
}

// BinaryOperatorExpr represents `lhs op rhs`
type BinaryOperatorExpr struct {
	ExpressionBase
	Operator BinaryOperator
	Lhs      OutputExpression
	Rhs      OutputExpression
	Parens   bool
}

// NewBinaryOperatorExpr creates a new BinaryOperatorExpr
func NewBinaryOperatorExpr(operator BinaryOperator, lhs, rhs OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *BinaryOperatorExpr {
	if typ == nil {
		typ = lhs.GetType()
	}
	return &BinaryOperatorExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Operator:       operator,
		Lhs:            lhs,
		Rhs:            rhs,
		Parens:         true,
	}
}

func (b *BinaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitBinaryOperatorExpr(b, context)
}

func (b *BinaryOperatorExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*BinaryOperatorExpr)
	return ok && b.Operator == other.Operator && b.Lhs.IsEquivalent(other.Lhs) && b.Rhs.IsEquivalent(other.Rhs)
}

func (b *BinaryOperatorExpr) IsConstant() bool {
	return false
}

// ReadPropExpr represents `receiver.name`
type ReadPropExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
}

// NewReadPropExpr creates a new ReadPropExpr
func NewReadPropExpr(receiver OutputExpression, name string, typ Type, sourceSpan *util.ParseSourceSpan) *ReadPropExpr {
	return &ReadPropExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Name:           name,
	}
}

func (r *ReadPropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadPropExpr(r, context)
}

func (r *ReadPropExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadPropExpr)
	return ok && r.Receiver.IsEquivalent(other.Receiver) && r.Name == other.Name
}

func (r *ReadPropExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this property
func (r *ReadPropExpr) Set(value OutputExpression) *WritePropExpr {
	return NewWritePropExpr(r.Receiver, r.Name, value, nil, r.SourceSpan)
}

// ReadKeyExpr represents `receiver[index]`
type ReadKeyExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Index    OutputExpression
}

// NewReadKeyExpr creates a new ReadKeyExpr
func NewReadKeyExpr(receiver, index OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *ReadKeyExpr {
	return &ReadKeyExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Index:          index,
	}
}

func (r *ReadKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadKeyExpr(r, context)
}

func (r *ReadKeyExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadKeyExpr)
	return ok && r.Receiver.IsEquivalent(other.Receiver) && r.Index.IsEquivalent(other.Index)
}

func (r *ReadKeyExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this key
func (r *ReadKeyExpr) Set(value OutputExpression) *WriteKeyExpr {
	return NewWriteKeyExpr(r.Receiver, r.Index, value, nil, r.SourceSpan)
}

// LiteralArrayExpr represents `[entries]`
type LiteralArrayExpr struct {
	ExpressionBase
	Entries []OutputExpression
}

// NewLiteralArrayExpr creates a new LiteralArrayExpr
func NewLiteralArrayExpr(entries []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralArrayExpr {
	return &LiteralArrayExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Entries:        entries,
	}
}

func (l *LiteralArrayExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArrayExpr(l, context)
}

func (l *LiteralArrayExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralArrayExpr)
	return ok && areAllEquivalent(l.Entries, other.Entries)
}

func (l *LiteralArrayExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.IsConstant() {
			return false
		}
	}
	return true
}

// LiteralMapEntry is one `key: value` pair of a LiteralMapExpr
type LiteralMapEntry struct {
	Key    string
	Value  OutputExpression
	Quoted bool
}

// NewLiteralMapEntry creates a new LiteralMapEntry
func NewLiteralMapEntry(key string, value OutputExpression, quoted bool) *LiteralMapEntry {
	return &LiteralMapEntry{Key: key, Value: value, Quoted: quoted}
}

// IsEquivalent reports whether two entries have the same key and value
func (l *LiteralMapEntry) IsEquivalent(e *LiteralMapEntry) bool {
	return l.Key == e.Key && l.Value.IsEquivalent(e.Value)
}

// LiteralMapExpr represents `{key: value, ...}`
type LiteralMapExpr struct {
	ExpressionBase
	Entries []*LiteralMapEntry
}

// NewLiteralMapExpr creates a new LiteralMapExpr
func NewLiteralMapExpr(entries []*LiteralMapEntry, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralMapExpr {
	return &LiteralMapExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Entries:        entries,
	}
}

func (l *LiteralMapExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMapExpr(l, context)
}

func (l *LiteralMapExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralMapExpr)
	if !ok || len(l.Entries) != len(other.Entries) {
		return false
	}
	for i, entry := range l.Entries {
		if !entry.IsEquivalent(other.Entries[i]) {
			return false
		}
	}
	return true
}

func (l *LiteralMapExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.Value.IsConstant() {
			return false
		}
	}
	return true
}

// CommaExpr represents `(a, b, c)`
type CommaExpr struct {
	ExpressionBase
	Parts []OutputExpression
}

// NewCommaExpr creates a new CommaExpr
func NewCommaExpr(parts []OutputExpression, sourceSpan *util.ParseSourceSpan) *CommaExpr {
	return &CommaExpr{
		ExpressionBase: ExpressionBase{Type: parts[len(parts)-1].GetType(), SourceSpan: sourceSpan},
		Parts:          parts,
	}
}

func (c *CommaExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitCommaExpr(c, context)
}

func (c *CommaExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*CommaExpr)
	return ok && areAllEquivalent(c.Parts, other.Parts)
}

func (c *CommaExpr) IsConstant() bool {
	return false
}

// WrappedNodeExpr carries a host AST node through the IR untouched
type WrappedNodeExpr struct {
	ExpressionBase
	Node interface{}
}

// NewWrappedNodeExpr creates a new WrappedNodeExpr
func NewWrappedNodeExpr(node interface{}, typ Type, sourceSpan *util.ParseSourceSpan) *WrappedNodeExpr {
	return &WrappedNodeExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Node:           node,
	}
}

func (w *WrappedNodeExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitWrappedNodeExpr(w, context)
}

func (w *WrappedNodeExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*WrappedNodeExpr)
	return ok && w.Node == other.Node
}

func (w *WrappedNodeExpr) IsConstant() bool {
	return false
}

// TypeofExpr represents `typeof expr`
type TypeofExpr struct {
	ExpressionBase
	Expr OutputExpression
}

// NewTypeofExpr creates a new TypeofExpr
func NewTypeofExpr(expr OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *TypeofExpr {
	return &TypeofExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Expr:           expr,
	}
}

func (t *TypeofExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitTypeofExpr(t, context)
}

func (t *TypeofExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*TypeofExpr)
	return ok && t.Expr.IsEquivalent(other.Expr)
}

func (t *TypeofExpr) IsConstant() bool {
	return t.Expr.IsConstant()
}

func nullSafeIsEquivalent(base, other OutputExpression) bool {
	if base == nil || other == nil {
		return base == other
	}
	return base.IsEquivalent(other)
}

func areAllEquivalent(base, other []OutputExpression) bool {
	if len(base) != len(other) {
		return false
	}
	for i := range base {
		if !base[i].IsEquivalent(other[i]) {
			return false
		}
	}
	return true
}

func areAllParamsEquivalent(base, other []*FnParam) bool {
	if len(base) != len(other) {
		return false
	}
	for i := range base {
		if base[i].Name != other[i].Name {
			return false
		}
	}
	return true
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
