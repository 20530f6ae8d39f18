// Package jsast is a small JavaScript syntax tree used as a linker host. It
// implements both the ast.AstHost reader and the translator.AstFactory
// builder, and prints trees back to source text.
package jsast

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/translator"
)

// Loc carries where a node came from. Range is set for nodes read from a
// source file, SourceMap for nodes built by the translator.
type Loc struct {
	Range     *ast.Range
	SourceMap *translator.SourceMapRange
	// Source is the original text of a parsed node. The printer writes it
	// back verbatim, so borrowed input nodes keep their formatting.
	Source string
}

// Node is any expression or statement
type Node interface {
	Location() *Loc
}

// Expression is a node that produces a value
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node in a statement list
type Statement interface {
	Node
	statementNode()
}

type base struct {
	loc Loc
}

func (b *base) Location() *Loc { return &b.loc }

type expr struct{ base }

func (expr) expressionNode() {}

type stmt struct{ base }

func (stmt) statementNode() {}

type Identifier struct {
	expr
	Name string
}

type StringLiteral struct {
	expr
	Value string
}

type NumericLiteral struct {
	expr
	Value float64
}

type BooleanLiteral struct {
	expr
	Value bool
}

type NullLiteral struct {
	expr
}

// ArrayExpression elements may be nil for holes
type ArrayExpression struct {
	expr
	Elements []Expression
}

// SpreadElement is `...argument` inside an array or object literal
type SpreadElement struct {
	expr
	Argument Expression
}

// Property is one member of an object literal. Key is an *Identifier or a
// *StringLiteral for plain properties; computed keys, methods and spreads
// keep their original text in Key and set Computed.
type Property struct {
	Key      Expression
	Computed bool
	Value    Expression
}

type ObjectExpression struct {
	expr
	Properties []*Property
}

// MemberExpression is `object.property` or, when Computed, `object[property]`
type MemberExpression struct {
	expr
	Object   Expression
	Property Expression
	Computed bool
}

type AssignmentExpression struct {
	expr
	Left  Expression
	Right Expression
}

type ConditionalExpression struct {
	expr
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type ParenthesizedExpression struct {
	expr
	Expression Expression
}

// UnaryExpression covers the prefix operators `!`, `-`, `+` and `typeof`
type UnaryExpression struct {
	expr
	Operator string
	Argument Expression
}

type BinaryExpression struct {
	expr
	Left     Expression
	Operator string
	Right    Expression
}

type CallExpression struct {
	expr
	Callee    Expression
	Arguments []Expression
	// Pure calls are annotated for minifiers
	Pure bool
}

type NewExpression struct {
	expr
	Callee    Expression
	Arguments []Expression
}

type FunctionExpression struct {
	expr
	// Name is empty for anonymous functions
	Name   string
	Params []string
	Body   *BlockStatement
}

// Raw is an expression only known by its source text, such as an arrow
// function the linker passes through untouched
type Raw struct {
	expr
	Text string
	// Primary marks text that never needs parentheses, like a call or an
	// identifier
	Primary bool
}

type VariableDeclaration struct {
	stmt
	Kind translator.VariableDeclarationType
	Name string
	// Init is nil for `var x;`
	Init Expression
}

type FunctionDeclaration struct {
	stmt
	Name   string
	Params []string
	Body   *BlockStatement
}

type ExpressionStatement struct {
	stmt
	Expression Expression
}

type IfStatement struct {
	stmt
	Test       Expression
	Consequent Statement
	// Alternate is nil without an else branch
	Alternate Statement
}

type ReturnStatement struct {
	stmt
	// Argument is nil for a bare `return;`
	Argument Expression
}

type ThrowStatement struct {
	stmt
	Argument Expression
}

type BlockStatement struct {
	stmt
	Body []Statement
}

type CommentStatement struct {
	stmt
	Text      string
	Multiline bool
}

// RawStatement is a statement only known by its source text, such as an
// import declaration or a class
type RawStatement struct {
	stmt
	Text string
}

// Program is a whole source file
type Program struct {
	base
	Body []Statement
}

// WithRange sets the source range of a parsed node and returns it
func WithRange[N Node](node N, r ast.Range, source string) N {
	loc := node.Location()
	loc.Range = &r
	loc.Source = source
	return node
}
