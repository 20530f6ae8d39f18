package view

import (
	"fmt"
	"sort"
	"strconv"

	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

const (
	referencePrefix  = "_r"
	sharedContextKey = "$$shared_ctx$$"
)

// declarationPriority orders variable declarations that live at the same
// retrieval level: shared contexts first, then context variables.
type declarationPriority int

const (
	declarationPriorityDefault declarationPriority = iota
	declarationPriorityContext
	declarationPrioritySharedContext
)

// declareLocalVarFunc produces the declaration of a scoped variable.
// relativeLevel is the number of views to walk up from the previous
// declaration.
type declareLocalVarFunc func(scope *BindingScope, relativeLevel int) []output.OutputStatement

type bindingData struct {
	retrievalLevel int
	lhs            output.OutputExpression
	declareLocal   declareLocalVarFunc
	declare        bool
	priority       declarationPriority
}

// localResolver resolves names used by template expressions
type localResolver interface {
	getLocal(name string) output.OutputExpression
	notifyImplicitReceiverUse()
}

// BindingScope maps template names to the expressions reading them. Each
// embedded view gets a nested scope; listeners get a scope nested at the
// level of the view they are declared in.
type BindingScope struct {
	bindingLevel        int
	parent              *BindingScope
	names               []string
	entries             map[string]*bindingData
	referenceNameIndex  int
	restoreViewVariable *output.ReadVarExpr
}

// NewRootBindingScope creates the scope above the component template
func NewRootBindingScope() *BindingScope {
	return newBindingScope(0, nil, nil)
}

func newBindingScope(level int, parent *BindingScope, globals []string) *BindingScope {
	s := &BindingScope{bindingLevel: level, parent: parent, entries: map[string]*bindingData{}}
	for _, name := range globals {
		s.set(0, name, output.Variable(name), declarationPriorityDefault, nil)
	}
	return s
}

func (s *BindingScope) getLocal(name string) output.OutputExpression {
	return s.get(name)
}

// get looks name up through the enclosing scopes. Values found in a parent
// are copied into this scope so that their declaration is emitted here. At
// level 0 an unknown name yields nil and is read from `ctx`.
func (s *BindingScope) get(name string) output.OutputExpression {
	for current := s; current != nil; current = current.parent {
		value, ok := current.entries[name]
		if !ok {
			continue
		}
		if current != s {
			value = &bindingData{
				retrievalLevel: value.retrievalLevel,
				lhs:            value.lhs,
				declareLocal:   value.declareLocal,
				priority:       value.priority,
			}
			s.put(name, value)
			s.maybeGenerateSharedContextVar(value)
			s.maybeRestoreView(value.retrievalLevel)
		}
		if value.declareLocal != nil && !value.declare {
			value.declare = true
		}
		return value.lhs
	}
	if s.bindingLevel == 0 {
		return nil
	}
	return s.getComponentProperty(name)
}

func (s *BindingScope) set(retrievalLevel int, name string, lhs output.OutputExpression, priority declarationPriority, declareLocal declareLocalVarFunc) {
	if _, exists := s.entries[name]; exists {
		panic(fmt.Sprintf("the name %s is already defined in scope", name))
	}
	s.put(name, &bindingData{retrievalLevel: retrievalLevel, lhs: lhs, declareLocal: declareLocal, priority: priority})
}

func (s *BindingScope) put(name string, value *bindingData) {
	if _, exists := s.entries[name]; !exists {
		s.names = append(s.names, name)
	}
	s.entries[name] = value
}

func (s *BindingScope) notifyImplicitReceiverUse() {
	if s.bindingLevel != 0 {
		s.entries[sharedContextKey+"0"].declare = true
	}
}

func (s *BindingScope) nestedScope(level int, globals ...string) *BindingScope {
	scope := newBindingScope(level, s, globals)
	if level > 0 {
		scope.generateSharedContextVar(0)
	}
	return scope
}

// getSharedContextName returns the variable holding the context of the view
// at retrievalLevel, if one is declared in this scope
func (s *BindingScope) getSharedContextName(retrievalLevel int) output.OutputExpression {
	if shared, ok := s.entries[sharedContextKey+strconv.Itoa(retrievalLevel)]; ok && shared.declare {
		return shared.lhs
	}
	return nil
}

func (s *BindingScope) maybeGenerateSharedContextVar(value *bindingData) {
	if value.priority != declarationPriorityContext || value.retrievalLevel >= s.bindingLevel {
		return
	}
	if shared, ok := s.entries[sharedContextKey+strconv.Itoa(value.retrievalLevel)]; ok {
		shared.declare = true
		return
	}
	s.generateSharedContextVar(value.retrievalLevel)
}

func (s *BindingScope) generateSharedContextVar(retrievalLevel int) {
	lhs := output.Variable(ContextName + s.freshReferenceName())
	s.put(sharedContextKey+strconv.Itoa(retrievalLevel), &bindingData{
		retrievalLevel: retrievalLevel,
		lhs:            lhs,
		declareLocal: func(_ *BindingScope, relativeLevel int) []output.OutputStatement {
			// const ctx_r0 = ɵɵnextContext(2);
			return []output.OutputStatement{output.DeclareConst(lhs.Name, nextContextExpr(relativeLevel))}
		},
		priority: declarationPrioritySharedContext,
	})
}

// getOrCreateSharedContextVar returns the variable holding the context of the
// view at retrievalLevel, creating it if needed
func (s *BindingScope) getOrCreateSharedContextVar(retrievalLevel int) *output.ReadVarExpr {
	key := sharedContextKey + strconv.Itoa(retrievalLevel)
	if _, ok := s.entries[key]; !ok {
		s.generateSharedContextVar(retrievalLevel)
	}
	return s.entries[key].lhs.(*output.ReadVarExpr)
}

func (s *BindingScope) getComponentProperty(name string) output.OutputExpression {
	component := s.entries[sharedContextKey+"0"]
	component.declare = true
	s.maybeRestoreView(0)
	return output.Prop(component.lhs, name)
}

// maybeRestoreView makes a listener restore its view before reading a value
// that lives in a parent view
func (s *BindingScope) maybeRestoreView(retrievalLevel int) {
	if !s.isListenerScope() || retrievalLevel >= s.bindingLevel {
		return
	}
	if s.parent.restoreViewVariable == nil {
		s.parent.restoreViewVariable = output.Variable(s.parent.freshReferenceName())
	}
	s.restoreViewVariable = s.parent.restoreViewVariable
}

// restoreViewStatement is `ɵɵrestoreView(_r1);` when the listener needs it
func (s *BindingScope) restoreViewStatement() []output.OutputStatement {
	if s.restoreViewVariable == nil {
		return nil
	}
	return []output.OutputStatement{output.Stmt(invokeInstruction(r3_identifiers.RestoreView, s.restoreViewVariable))}
}

// viewSnapshotStatements is `const _r1 = ɵɵgetCurrentView();` when a listener
// of this view restores it
func (s *BindingScope) viewSnapshotStatements() []output.OutputStatement {
	if s.restoreViewVariable == nil {
		return nil
	}
	return []output.OutputStatement{output.DeclareConst(s.restoreViewVariable.Name, invokeInstruction(r3_identifiers.GetCurrentView))}
}

func (s *BindingScope) isListenerScope() bool {
	return s.parent != nil && s.parent.bindingLevel == s.bindingLevel
}

// variableDeclarations emits the declarations of every variable used in this
// scope, outermost views first, so that each `ɵɵnextContext` call walks up
// from the previous one.
func (s *BindingScope) variableDeclarations() []output.OutputStatement {
	var declared []*bindingData
	for _, name := range s.names {
		if value := s.entries[name]; value.declare {
			declared = append(declared, value)
		}
	}
	sort.SliceStable(declared, func(i, j int) bool {
		if declared[i].retrievalLevel != declared[j].retrievalLevel {
			return declared[i].retrievalLevel > declared[j].retrievalLevel
		}
		return declared[i].priority > declared[j].priority
	})

	var statements []output.OutputStatement
	currentContextLevel := 0
	for _, value := range declared {
		levelDiff := s.bindingLevel - value.retrievalLevel
		statements = append(statements, value.declareLocal(s, levelDiff-currentContextLevel)...)
		currentContextLevel = levelDiff
	}
	return statements
}

// freshReferenceName hands out `_r0`, `_r1`, ... unique across the template
func (s *BindingScope) freshReferenceName() string {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	name := referencePrefix + strconv.Itoa(root.referenceNameIndex)
	root.referenceNameIndex++
	return name
}

// nextContextExpr is `ɵɵnextContext(n)`, with the argument omitted for 1
func nextContextExpr(relativeLevel int) output.OutputExpression {
	if relativeLevel > 1 {
		return invokeInstruction(r3_identifiers.NextContext, output.Literal(relativeLevel))
	}
	return invokeInstruction(r3_identifiers.NextContext)
}
