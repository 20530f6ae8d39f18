// Package pool collects the statements shared by every definition compiled
// in one file: literal factories, hoisted constants and nested template
// functions.
package pool

import (
	"fmt"
	"strconv"
	"strings"

	"ngc-linker/packages/compiler/output"
)

const (
	constantPrefix = "_c"
	// PoolInclusionLengthThresholdForStrings is the length from which string
	// literals are hoisted into the pool instead of being inlined.
	PoolInclusionLengthThresholdForStrings = 50
)

// unknownValueKey stands in for dynamic entries when keying a literal factory.
// A variable is used rather than `null` so that it cannot collide with a real
// constant.
var unknownValueKey = output.NewReadVarExpr("<unknown>", nil, nil)

// FixupExpression is a placeholder that starts out as the literal itself and
// is switched to a variable reference once the literal is seen twice.
type FixupExpression struct {
	output.ExpressionBase
	original output.OutputExpression
	resolved output.OutputExpression
	shared   bool
}

// NewFixupExpression creates a new FixupExpression
func NewFixupExpression(resolved output.OutputExpression) *FixupExpression {
	return &FixupExpression{
		ExpressionBase: output.ExpressionBase{
			Type:       resolved.GetType(),
			SourceSpan: resolved.GetSourceSpan(),
		},
		original: resolved,
		resolved: resolved,
	}
}

func (f *FixupExpression) VisitExpression(visitor output.ExpressionVisitor, context interface{}) interface{} {
	return f.resolved.VisitExpression(visitor, context)
}

func (f *FixupExpression) IsEquivalent(e output.OutputExpression) bool {
	if other, ok := e.(*FixupExpression); ok {
		return f.resolved.IsEquivalent(other.resolved)
	}
	return false
}

func (f *FixupExpression) IsConstant() bool {
	return true
}

// Resolved returns the expression the placeholder currently stands for
func (f *FixupExpression) Resolved() output.OutputExpression {
	return f.resolved
}

// Fixup replaces the referenced expression
func (f *FixupExpression) Fixup(expression output.OutputExpression) {
	f.resolved = expression
	f.shared = true
}

// ConstantPool is the per-file pool of hoisted declarations. A pool is not
// safe for concurrent use; each FileLinker owns one.
type ConstantPool struct {
	statements       []output.OutputStatement
	literals         map[string]*FixupExpression
	literalFactories map[string]output.OutputExpression
	claimedNames     map[string]int
}

// NewConstantPool creates a new ConstantPool
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		statements:       []output.OutputStatement{},
		literals:         make(map[string]*FixupExpression),
		literalFactories: make(map[string]output.OutputExpression),
		claimedNames:     make(map[string]int),
	}
}

// GetConstLiteral returns literal, or a reference to a pooled declaration of
// it once it has been requested more than once (or immediately when
// forceShared is set).
func (cp *ConstantPool) GetConstLiteral(literal output.OutputExpression, forceShared bool) output.OutputExpression {
	if (isLiteralExpr(literal) && !isLongStringLiteral(literal)) || isFixupExpression(literal) {
		return literal
	}
	key := KeyOf(literal)
	fixup, exists := cp.literals[key]
	if !exists {
		fixup = NewFixupExpression(literal)
		cp.literals[key] = fixup
	}

	if (exists && !fixup.shared) || (!exists && forceShared) {
		name := cp.freshName()
		cp.statements = append(cp.statements, output.DeclareConst(name, literal))
		fixup.Fixup(output.Variable(name))
	}

	return fixup
}

// GetLiteralFactory hoists a pure function building the given array or map
// literal. It returns a reference to the factory plus the dynamic entries
// that must be passed to it, in order.
func (cp *ConstantPool) GetLiteralFactory(literal output.OutputExpression) (output.OutputExpression, []output.OutputExpression, error) {
	switch lit := literal.(type) {
	case *output.LiteralArrayExpr:
		keyEntries := make([]output.OutputExpression, len(lit.Entries))
		for i, e := range lit.Entries {
			if e.IsConstant() {
				keyEntries[i] = e
			} else {
				keyEntries[i] = unknownValueKey
			}
		}
		key := KeyOf(output.LiteralArr(keyEntries...))
		ref, args := cp.getLiteralFactory(key, lit.Entries, func(entries []output.OutputExpression) output.OutputExpression {
			return output.LiteralArr(entries...)
		})
		return ref, args, nil
	case *output.LiteralMapExpr:
		keyEntries := make([]*output.LiteralMapEntry, len(lit.Entries))
		values := make([]output.OutputExpression, len(lit.Entries))
		for i, e := range lit.Entries {
			value := e.Value
			if !value.IsConstant() {
				value = unknownValueKey
			}
			keyEntries[i] = output.NewLiteralMapEntry(e.Key, value, e.Quoted)
			values[i] = e.Value
		}
		key := KeyOf(output.LiteralMap(keyEntries...))
		ref, args := cp.getLiteralFactory(key, values, func(entries []output.OutputExpression) output.OutputExpression {
			mapEntries := make([]*output.LiteralMapEntry, len(entries))
			for i, value := range entries {
				mapEntries[i] = output.NewLiteralMapEntry(lit.Entries[i].Key, value, lit.Entries[i].Quoted)
			}
			return output.LiteralMap(mapEntries...)
		})
		return ref, args, nil
	}
	return nil, nil, fmt.Errorf("literal factories support only array and map literals, got %T", literal)
}

func (cp *ConstantPool) getLiteralFactory(
	key string,
	values []output.OutputExpression,
	resultMap func([]output.OutputExpression) output.OutputExpression,
) (output.OutputExpression, []output.OutputExpression) {
	args := make([]output.OutputExpression, 0, len(values))
	for _, e := range values {
		if !e.IsConstant() {
			args = append(args, e)
		}
	}
	if factory, exists := cp.literalFactories[key]; exists {
		return factory, args
	}

	results := make([]output.OutputExpression, len(values))
	params := make([]*output.FnParam, 0, len(args))
	for i, e := range values {
		if e.IsConstant() {
			results[i] = cp.GetConstLiteral(e, true)
			continue
		}
		name := "a" + strconv.Itoa(i)
		results[i] = output.Variable(name)
		params = append(params, output.NewFnParam(name, output.DynamicType))
	}

	name := cp.freshName()
	body := []output.OutputStatement{output.Return(resultMap(results))}
	cp.statements = append(cp.statements, output.DeclareConst(name, output.Fn(params, body, "")))
	factory := output.Variable(name)
	cp.literalFactories[key] = factory
	return factory, args
}

// GetSharedFunctionReference reuses an equivalent function already declared
// in the pool, or declares fn under a unique name derived from prefix.
func (cp *ConstantPool) GetSharedFunctionReference(fn *output.FunctionExpr, prefix string) output.OutputExpression {
	for _, current := range cp.statements {
		declared, ok := current.(*output.DeclareFunctionStmt)
		if !ok {
			continue
		}
		if output.Fn(declared.Params, declared.Statements, "").IsEquivalent(fn) {
			return output.Variable(declared.Name)
		}
	}
	name := cp.UniqueName(prefix, false)
	cp.statements = append(cp.statements, fn.ToDeclStmt(name, output.StmtModifierFinal))
	return output.Variable(name)
}

// UniqueName produces a name unique within this pool. The prefix must not end
// in a digit or suffixed names of different prefixes could collide.
func (cp *ConstantPool) UniqueName(name string, alwaysIncludeSuffix bool) string {
	count := cp.claimedNames[name]
	cp.claimedNames[name] = count + 1
	if count == 0 && !alwaysIncludeSuffix {
		return name
	}
	return name + strconv.Itoa(count)
}

func (cp *ConstantPool) freshName() string {
	return cp.UniqueName(constantPrefix, true)
}

// GetStatements returns the pooled statements in declaration order
func (cp *ConstantPool) GetStatements() []output.OutputStatement {
	return cp.statements
}

// AddStatement appends a statement to the pool
func (cp *ConstantPool) AddStatement(stmt output.OutputStatement) {
	cp.statements = append(cp.statements, stmt)
}

// KeyOf renders a structural key for a constant expression. Expressions
// that cannot be keyed render as `<type>` so they never collide with
// literals.
func KeyOf(expr output.OutputExpression) string {
	switch e := expr.(type) {
	case *output.LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return strconv.Quote(v)
		case nil:
			return "null"
		}
		if e.Value == output.Undefined {
			return "undefined"
		}
		return fmt.Sprintf("%v", e.Value)
	case *output.LiteralArrayExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			entries[i] = KeyOf(entry)
		}
		return "[" + strings.Join(entries, ",") + "]"
	case *output.LiteralMapExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			key := entry.Key
			if entry.Quoted {
				key = strconv.Quote(key)
			}
			entries[i] = key + ":" + KeyOf(entry.Value)
		}
		return "{" + strings.Join(entries, ",") + "}"
	case *output.ExternalExpr:
		moduleName, name := "null", "null"
		if e.Value.ModuleName != nil {
			moduleName = strconv.Quote(*e.Value.ModuleName)
		}
		if e.Value.Name != nil {
			name = strconv.Quote(*e.Value.Name)
		}
		return "import(" + moduleName + ", " + name + ")"
	case *output.ReadVarExpr:
		return "read(" + e.Name + ")"
	case *output.TypeofExpr:
		return "typeof(" + KeyOf(e.Expr) + ")"
	case *FixupExpression:
		return KeyOf(e.original)
	}
	return fmt.Sprintf("<%T>", expr)
}

func isLongStringLiteral(expr output.OutputExpression) bool {
	if lit, ok := expr.(*output.LiteralExpr); ok {
		if str, ok := lit.Value.(string); ok {
			return len(str) >= PoolInclusionLengthThresholdForStrings
		}
	}
	return false
}

func isLiteralExpr(expr output.OutputExpression) bool {
	_, ok := expr.(*output.LiteralExpr)
	return ok
}

func isFixupExpression(expr output.OutputExpression) bool {
	_, ok := expr.(*FixupExpression)
	return ok
}
