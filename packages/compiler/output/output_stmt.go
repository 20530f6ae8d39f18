package output

import (
	"strings"

	"ngc-linker/packages/compiler/util"
)

// StmtModifier represents statement modifiers
type StmtModifier int

const (
	StmtModifierNone     StmtModifier = 0
	StmtModifierFinal    StmtModifier = 1 << 0
	StmtModifierPrivate  StmtModifier = 1 << 1
	StmtModifierExported StmtModifier = 1 << 2
	StmtModifierStatic   StmtModifier = 1 << 3
)

// StatementVisitor is the interface for visiting statements
type StatementVisitor interface {
	VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{}
	VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{}
	VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{}
	VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{}
	VisitDeclareClassStmt(stmt *ClassStmt, context interface{}) interface{}
	VisitIfStmt(stmt *IfStmt, context interface{}) interface{}
	VisitTryCatchStmt(stmt *TryCatchStmt, context interface{}) interface{}
	VisitThrowStmt(stmt *ThrowStmt, context interface{}) interface{}
	VisitCommentStmt(stmt *CommentStmt, context interface{}) interface{}
	VisitJSDocCommentStmt(stmt *JSDocCommentStmt, context interface{}) interface{}
}

// OutputStatement represents a statement in the output AST
type OutputStatement interface {
	GetModifiers() StmtModifier
	GetSourceSpan() *util.ParseSourceSpan
	VisitStatement(visitor StatementVisitor, context interface{}) interface{}
	IsEquivalent(stmt OutputStatement) bool
}

// StatementBase is the base struct for all statements
type StatementBase struct {
	Modifiers  StmtModifier
	SourceSpan *util.ParseSourceSpan
}

// GetModifiers returns the modifiers
func (s *StatementBase) GetModifiers() StmtModifier {
	return s.Modifiers
}

// HasModifier reports whether the statement carries modifier
func (s *StatementBase) HasModifier(modifier StmtModifier) bool {
	return s.Modifiers&modifier != 0
}

// GetSourceSpan returns the source span
func (s *StatementBase) GetSourceSpan() *util.ParseSourceSpan {
	return s.SourceSpan
}

// DeclareVarStmt represents a variable declaration. Value may be nil.
type DeclareVarStmt struct {
	StatementBase
	Name  string
	Value OutputExpression
	Type  Type
}

// NewDeclareVarStmt creates a new DeclareVarStmt
func NewDeclareVarStmt(name string, value OutputExpression, typ Type, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *DeclareVarStmt {
	if typ == nil && value != nil {
		typ = value.GetType()
	}
	return &DeclareVarStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Value:         value,
		Type:          typ,
	}
}

func (d *DeclareVarStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareVarStmt(d, context)
}

func (d *DeclareVarStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*DeclareVarStmt)
	return ok && d.Name == other.Name && nullSafeIsEquivalent(d.Value, other.Value)
}

// DeclareFunctionStmt represents a named function declaration
type DeclareFunctionStmt struct {
	StatementBase
	Name       string
	Params     []*FnParam
	Statements []OutputStatement
	Type       Type
}

// NewDeclareFunctionStmt creates a new DeclareFunctionStmt
func NewDeclareFunctionStmt(name string, params []*FnParam, statements []OutputStatement, typ Type, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *DeclareFunctionStmt {
	return &DeclareFunctionStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Params:        params,
		Statements:    statements,
		Type:          typ,
	}
}

func (d *DeclareFunctionStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareFunctionStmt(d, context)
}

func (d *DeclareFunctionStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*DeclareFunctionStmt)
	return ok && areAllParamsEquivalent(d.Params, other.Params) && areAllStatementsEquivalent(d.Statements, other.Statements)
}

// ExpressionStatement represents an expression evaluated for its side effects
type ExpressionStatement struct {
	StatementBase
	Expr OutputExpression
}

// NewExpressionStatement creates a new ExpressionStatement
func NewExpressionStatement(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *ExpressionStatement {
	return &ExpressionStatement{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Expr:          expr,
	}
}

func (e *ExpressionStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionStmt(e, context)
}

func (e *ExpressionStatement) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ExpressionStatement)
	return ok && e.Expr.IsEquivalent(other.Expr)
}

// ReturnStatement represents `return value;`
type ReturnStatement struct {
	StatementBase
	Value OutputExpression
}

// NewReturnStatement creates a new ReturnStatement
func NewReturnStatement(value OutputExpression, sourceSpan *util.ParseSourceSpan) *ReturnStatement {
	return &ReturnStatement{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Value:         value,
	}
}

func (r *ReturnStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitReturnStmt(r, context)
}

func (r *ReturnStatement) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ReturnStatement)
	return ok && r.Value.IsEquivalent(other.Value)
}

// ClassStmt is a class declaration. Only the shape needed to reject it is kept.
type ClassStmt struct {
	StatementBase
	Name   string
	Parent OutputExpression
}

// NewClassStmt creates a new ClassStmt
func NewClassStmt(name string, parent OutputExpression, sourceSpan *util.ParseSourceSpan) *ClassStmt {
	return &ClassStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Name:          name,
		Parent:        parent,
	}
}

func (c *ClassStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareClassStmt(c, context)
}

func (c *ClassStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ClassStmt)
	return ok && c.Name == other.Name
}

// IfStmt represents `if (condition) { trueCase } else { falseCase }`
type IfStmt struct {
	StatementBase
	Condition OutputExpression
	TrueCase  []OutputStatement
	FalseCase []OutputStatement
}

// NewIfStmt creates a new IfStmt
func NewIfStmt(condition OutputExpression, trueCase, falseCase []OutputStatement, sourceSpan *util.ParseSourceSpan) *IfStmt {
	return &IfStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Condition:     condition,
		TrueCase:      trueCase,
		FalseCase:     falseCase,
	}
}

func (i *IfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitIfStmt(i, context)
}

func (i *IfStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*IfStmt)
	return ok && i.Condition.IsEquivalent(other.Condition) &&
		areAllStatementsEquivalent(i.TrueCase, other.TrueCase) &&
		areAllStatementsEquivalent(i.FalseCase, other.FalseCase)
}

// TryCatchStmt represents `try { body } catch (error) { catch }`
type TryCatchStmt struct {
	StatementBase
	BodyStmts  []OutputStatement
	CatchStmts []OutputStatement
}

// NewTryCatchStmt creates a new TryCatchStmt
func NewTryCatchStmt(bodyStmts, catchStmts []OutputStatement, sourceSpan *util.ParseSourceSpan) *TryCatchStmt {
	return &TryCatchStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		BodyStmts:     bodyStmts,
		CatchStmts:    catchStmts,
	}
}

func (t *TryCatchStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitTryCatchStmt(t, context)
}

func (t *TryCatchStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*TryCatchStmt)
	return ok && areAllStatementsEquivalent(t.BodyStmts, other.BodyStmts) &&
		areAllStatementsEquivalent(t.CatchStmts, other.CatchStmts)
}

// ThrowStmt represents `throw error;`
type ThrowStmt struct {
	StatementBase
	Error OutputExpression
}

// NewThrowStmt creates a new ThrowStmt
func NewThrowStmt(err OutputExpression, sourceSpan *util.ParseSourceSpan) *ThrowStmt {
	return &ThrowStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Error:         err,
	}
}

func (t *ThrowStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitThrowStmt(t, context)
}

func (t *ThrowStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ThrowStmt)
	return ok && t.Error.IsEquivalent(other.Error)
}

// CommentStmt is a free-standing comment
type CommentStmt struct {
	StatementBase
	Comment   string
	Multiline bool
}

// NewCommentStmt creates a new CommentStmt
func NewCommentStmt(comment string, multiline bool, sourceSpan *util.ParseSourceSpan) *CommentStmt {
	return &CommentStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Comment:       comment,
		Multiline:     multiline,
	}
}

func (c *CommentStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitCommentStmt(c, context)
}

func (c *CommentStmt) IsEquivalent(stmt OutputStatement) bool {
	_, ok := stmt.(*CommentStmt)
	return ok
}

// JSDocTagName represents JSDoc tag names
type JSDocTagName string

const (
	JSDocTagNameDesc     JSDocTagName = "desc"
	JSDocTagNameID       JSDocTagName = "id"
	JSDocTagNameMeaning  JSDocTagName = "meaning"
	JSDocTagNameSuppress JSDocTagName = "suppress"
)

// JSDocTag represents a JSDoc tag; either field may be empty
type JSDocTag struct {
	TagName JSDocTagName
	Text    string
}

// JSDocCommentStmt is a `/** ... */` comment block
type JSDocCommentStmt struct {
	StatementBase
	Tags []JSDocTag
}

// NewJSDocCommentStmt creates a new JSDocCommentStmt
func NewJSDocCommentStmt(tags []JSDocTag) *JSDocCommentStmt {
	return &JSDocCommentStmt{Tags: tags}
}

func (j *JSDocCommentStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitJSDocCommentStmt(j, context)
}

func (j *JSDocCommentStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*JSDocCommentStmt)
	return ok && j.String() == other.String()
}

// String renders the comment body without the enclosing `/*` and `*/`, so
// that a host can emit it as a multi-line comment.
func (j *JSDocCommentStmt) String() string {
	if len(j.Tags) == 0 {
		return ""
	}
	if len(j.Tags) == 1 && j.Tags[0].TagName == "" && !strings.Contains(j.Tags[0].Text, "\n") {
		return "* " + escapeJSDocText(j.Tags[0].Text) + " "
	}
	var sb strings.Builder
	sb.WriteString("*\n")
	for _, tag := range j.Tags {
		sb.WriteString(" *")
		if tag.TagName != "" {
			sb.WriteString(" @" + string(tag.TagName))
		}
		if tag.Text != "" {
			sb.WriteString(" " + strings.ReplaceAll(escapeJSDocText(tag.Text), "\n", "\n * "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(" ")
	return sb.String()
}

func escapeJSDocText(text string) string {
	return strings.ReplaceAll(text, "@", "\\@")
}

func areAllStatementsEquivalent(base, other []OutputStatement) bool {
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
