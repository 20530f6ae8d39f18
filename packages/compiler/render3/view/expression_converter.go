package view

import (
	"fmt"

	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// pipeBinding replaces a pipe once its slots are allocated. varOffset is
// relative to the binding slots until the template has been fully visited.
type pipeBinding struct {
	*ep.BindingPipe
	slot      int
	varOffset int
	args      []ep.AST
}

// literalBuiltin replaces an array or object literal. It becomes a pure
// function call when converted, at which point its slots are allocated.
type literalBuiltin struct {
	ep.AST
	keys   []ep.LiteralMapKey
	isMap  bool
	values []ep.AST
	build  func(values []output.OutputExpression) (output.OutputExpression, error)
}

// valueConverter rewrites pipes and literals of a binding expression into
// their runtime builtins during the first pass over a template
type valueConverter struct {
	constantPool              *pool.ConstantPool
	allocateSlot              func() int
	allocatePureFunctionSlots func(numSlots int) int
	definePipe                func(name string, slot int)
	pipeBindings              []*pipeBinding
}

// updatePipeSlotOffsets moves the pure function slots of pipes after the
// binding slots, once their number is known
func (vc *valueConverter) updatePipeSlotOffsets(bindingSlots int) {
	for _, pipe := range vc.pipeBindings {
		pipe.varOffset += bindingSlots
	}
}

func (vc *valueConverter) visitAll(asts []ep.AST) []ep.AST {
	out := make([]ep.AST, len(asts))
	for i, a := range asts {
		out[i] = vc.visit(a)
	}
	return out
}

func (vc *valueConverter) visit(ast ep.AST) ep.AST {
	switch n := ast.(type) {
	case nil:
		return nil
	case *ep.ASTWithSource:
		return vc.visit(n.AST)
	case *ep.BindingPipe:
		return vc.visitPipe(n)
	case *ep.LiteralArray:
		return &literalBuiltin{AST: n, values: vc.visitAll(n.Expressions), build: vc.literalFactory(func(values []output.OutputExpression) output.OutputExpression {
			return output.LiteralArr(values...)
		})}
	case *ep.LiteralMap:
		keys := n.Keys
		return &literalBuiltin{AST: n, keys: keys, isMap: true, values: vc.visitAll(n.Values), build: vc.literalFactory(func(values []output.OutputExpression) output.OutputExpression {
			return literalMapOf(keys, values)
		})}
	case *ep.Interpolation:
		c := *n
		c.Expressions = vc.visitAll(n.Expressions)
		return &c
	case *ep.Chain:
		c := *n
		c.Expressions = vc.visitAll(n.Expressions)
		return &c
	case *ep.Conditional:
		c := *n
		c.Condition, c.TrueExp, c.FalseExp = vc.visit(n.Condition), vc.visit(n.TrueExp), vc.visit(n.FalseExp)
		return &c
	case *ep.PropertyRead:
		c := *n
		c.Receiver = vc.visit(n.Receiver)
		return &c
	case *ep.SafePropertyRead:
		c := *n
		c.Receiver = vc.visit(n.Receiver)
		return &c
	case *ep.PropertyWrite:
		c := *n
		c.Receiver, c.Value = vc.visit(n.Receiver), vc.visit(n.Value)
		return &c
	case *ep.KeyedRead:
		c := *n
		c.Receiver, c.Key = vc.visit(n.Receiver), vc.visit(n.Key)
		return &c
	case *ep.KeyedWrite:
		c := *n
		c.Receiver, c.Key, c.Value = vc.visit(n.Receiver), vc.visit(n.Key), vc.visit(n.Value)
		return &c
	case *ep.Binary:
		c := *n
		c.Left, c.Right = vc.visit(n.Left), vc.visit(n.Right)
		return &c
	case *ep.Unary:
		c := *n
		c.Expr = vc.visit(n.Expr)
		return &c
	case *ep.PrefixNot:
		c := *n
		c.Expression = vc.visit(n.Expression)
		return &c
	case *ep.TypeofExpression:
		c := *n
		c.Expression = vc.visit(n.Expression)
		return &c
	case *ep.NonNullAssert:
		c := *n
		c.Expression = vc.visit(n.Expression)
		return &c
	case *ep.Call:
		c := *n
		c.Receiver, c.Args = vc.visit(n.Receiver), vc.visitAll(n.Args)
		return &c
	case *ep.SafeCall:
		c := *n
		c.Receiver, c.Args = vc.visit(n.Receiver), vc.visitAll(n.Args)
		return &c
	}
	return ast
}

func (vc *valueConverter) visitPipe(pipe *ep.BindingPipe) ep.AST {
	slot := vc.allocateSlot()
	// one slot for the result plus one per argument
	varOffset := vc.allocatePureFunctionSlots(2 + len(pipe.Args))
	vc.definePipe(pipe.Name, slot)

	args := append([]ep.AST{pipe.Exp}, pipe.Args...)
	if _, variadic := r3_identifiers.PipeBindFor(len(args)); variadic {
		args = []ep.AST{vc.visit(ep.NewLiteralArray(pipe.Span(), pipe.SourceSpan(), args))}
	} else {
		args = vc.visitAll(args)
	}
	binding := &pipeBinding{BindingPipe: pipe, slot: slot, varOffset: varOffset, args: args}
	vc.pipeBindings = append(vc.pipeBindings, binding)
	return binding
}

// literalFactory hoists the literal into a pooled factory and calls it
// through `ɵɵpureFunctionN(slot, factory, ...args)`
func (vc *valueConverter) literalFactory(literal func([]output.OutputExpression) output.OutputExpression) func([]output.OutputExpression) (output.OutputExpression, error) {
	return func(values []output.OutputExpression) (output.OutputExpression, error) {
		factory, args, err := vc.constantPool.GetLiteralFactory(literal(values))
		if err != nil {
			return nil, err
		}
		// one slot for the result plus one per argument
		startSlot := vc.allocatePureFunctionSlots(1 + len(args))
		instruction, variadic := r3_identifiers.PureFunctionFor(len(args))
		params := []output.OutputExpression{output.Literal(startSlot), factory}
		if variadic {
			params = append(params, output.LiteralArr(args...))
		} else {
			params = append(params, args...)
		}
		return invokeInstruction(instruction, params...), nil
	}
}

func literalMapOf(keys []ep.LiteralMapKey, values []output.OutputExpression) *output.LiteralMapExpr {
	entries := make([]*output.LiteralMapEntry, len(keys))
	for i, k := range keys {
		entries[i] = output.NewLiteralMapEntry(k.Key, values[i], k.Quoted)
	}
	return output.LiteralMap(entries...)
}

// defaultLocalResolver is used where no template scope exists, such as host
// bindings. Only `$event` resolves.
type defaultLocalResolver struct{}

func (defaultLocalResolver) getLocal(name string) output.OutputExpression {
	if name == EventParamName {
		return output.Variable(EventParamName)
	}
	return nil
}

func (defaultLocalResolver) notifyImplicitReceiverUse() {}

var binaryOperators = map[string]output.BinaryOperator{
	"==":  output.BinaryOperatorEquals,
	"!=":  output.BinaryOperatorNotEquals,
	"===": output.BinaryOperatorIdentical,
	"!==": output.BinaryOperatorNotIdentical,
	"-":   output.BinaryOperatorMinus,
	"+":   output.BinaryOperatorPlus,
	"/":   output.BinaryOperatorDivide,
	"*":   output.BinaryOperatorMultiply,
	"%":   output.BinaryOperatorModulo,
	"&&":  output.BinaryOperatorAnd,
	"||":  output.BinaryOperatorOr,
	"<":   output.BinaryOperatorLower,
	"<=":  output.BinaryOperatorLowerEquals,
	">":   output.BinaryOperatorBigger,
	">=":  output.BinaryOperatorBiggerEquals,
}

// astConverter lowers binding expressions into output expressions. Names read
// from the implicit receiver are first looked up in the local resolver.
type astConverter struct {
	resolver         localResolver
	implicitReceiver output.OutputExpression
	// action is set for event handlers, where literals stay plain and pipes
	// are rejected
	action                   bool
	usesImplicitReceiver     bool
	implicitReceiverAccesses map[string]bool
	err                      error
}

func newAstConverter(resolver localResolver, implicitReceiver output.OutputExpression) *astConverter {
	if resolver == nil {
		resolver = defaultLocalResolver{}
	}
	return &astConverter{resolver: resolver, implicitReceiver: implicitReceiver, implicitReceiverAccesses: map[string]bool{}}
}

func (c *astConverter) fail(format string, args ...interface{}) output.OutputExpression {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
	return output.NullExpr()
}

func (c *astConverter) finish() {
	if c.usesImplicitReceiver {
		c.resolver.notifyImplicitReceiverUse()
	}
}

// convertPropertyBinding converts the value of a property binding
func convertPropertyBinding(resolver localResolver, implicitReceiver output.OutputExpression, ast ep.AST) (output.OutputExpression, error) {
	c := newAstConverter(resolver, implicitReceiver)
	if _, ok := unwrap(ast).(*ep.Interpolation); ok {
		return nil, fmt.Errorf("unexpected interpolation")
	}
	expr := c.convert(ast)
	c.finish()
	return expr, c.err
}

// convertUpdateArguments converts an interpolation into the arguments of an
// interpolation instruction: `"a", ctx.b, "c"`. A lone expression without
// surrounding text reduces to the expression; from 19 arguments on they are
// passed as one array.
func convertUpdateArguments(resolver localResolver, implicitReceiver output.OutputExpression, interpolation *ep.Interpolation) ([]output.OutputExpression, error) {
	c := newAstConverter(resolver, implicitReceiver)
	var args []output.OutputExpression
	for i := 0; i < len(interpolation.Strings)-1; i++ {
		args = append(args, output.Literal(interpolation.Strings[i]), c.convert(interpolation.Expressions[i]))
	}
	args = append(args, output.Literal(interpolation.Strings[len(interpolation.Strings)-1]))
	c.finish()
	if c.err != nil {
		return nil, c.err
	}
	switch {
	case len(args) == 3 && isEmptyString(args[0]) && isEmptyString(args[2]):
		return args[1:2], nil
	case len(args) >= 19:
		return []output.OutputExpression{output.LiteralArr(args...)}, nil
	}
	return args, nil
}

func isEmptyString(expr output.OutputExpression) bool {
	lit, ok := expr.(*output.LiteralExpr)
	return ok && lit.Value == ""
}

// interpolationArgsLength is the number of arguments an interpolation passes
// to its instruction, 1 for a lone expression without surrounding text
func interpolationArgsLength(interpolation *ep.Interpolation) int {
	if len(interpolation.Expressions) == 1 && len(interpolation.Strings) == 2 &&
		interpolation.Strings[0] == "" && interpolation.Strings[1] == "" {
		return 1
	}
	return len(interpolation.Expressions) + len(interpolation.Strings)
}

// convertActionBinding converts an event handler into statements. The value
// of the last expression is returned so that `false` prevents the default
// action. accesses records the names resolved through the local resolver.
func convertActionBinding(resolver localResolver, implicitReceiver output.OutputExpression, ast ep.AST, accesses map[string]bool) ([]output.OutputStatement, error) {
	c := newAstConverter(resolver, implicitReceiver)
	c.action = true
	if accesses != nil {
		c.implicitReceiverAccesses = accesses
	}
	var expressions []ep.AST
	if chain, ok := unwrap(ast).(*ep.Chain); ok {
		expressions = chain.Expressions
	} else {
		expressions = []ep.AST{ast}
	}
	var statements []output.OutputStatement
	for _, e := range expressions {
		if _, empty := unwrap(e).(*ep.EmptyExpr); empty {
			continue
		}
		statements = append(statements, output.Stmt(c.convert(e)))
	}
	c.finish()
	if c.err != nil {
		return nil, c.err
	}
	if last := len(statements) - 1; last >= 0 {
		statements[last] = output.Return(statements[last].(*output.ExpressionStatement).Expr)
	}
	return statements, nil
}

func unwrap(ast ep.AST) ep.AST {
	if w, ok := ast.(*ep.ASTWithSource); ok {
		return w.AST
	}
	return ast
}

func (c *astConverter) convertAll(asts []ep.AST) []output.OutputExpression {
	out := make([]output.OutputExpression, len(asts))
	for i, a := range asts {
		out[i] = c.convert(a)
	}
	return out
}

func (c *astConverter) convert(ast ep.AST) output.OutputExpression {
	if safe := leftMostSafeNode(ast); safe != nil {
		return c.convertSafeAccess(ast, safe)
	}
	switch n := ast.(type) {
	case *ep.ASTWithSource:
		return c.convert(n.AST)
	case *ep.EmptyExpr:
		return output.NullExpr()
	case *ep.ImplicitReceiver:
		c.usesImplicitReceiver = true
		return c.implicitReceiver
	case *ep.LiteralPrimitive:
		if n.Value == ep.Undefined {
			return output.Literal(output.Undefined)
		}
		return output.Literal(n.Value)
	case *ep.LiteralArray:
		if !c.action {
			return c.fail("literal arrays must be converted into pure functions")
		}
		return output.LiteralArr(c.convertAll(n.Expressions)...)
	case *ep.LiteralMap:
		if !c.action {
			return c.fail("literal maps must be converted into pure functions")
		}
		return literalMapOf(n.Keys, c.convertAll(n.Values))
	case *literalBuiltin:
		expr, err := n.build(c.convertAll(n.values))
		if err != nil {
			return c.fail("%v", err)
		}
		return expr
	case *ep.BindingPipe:
		return c.fail("cannot have a pipe in an action expression: %s", n.Name)
	case *pipeBinding:
		instruction, _ := r3_identifiers.PipeBindFor(len(n.BindingPipe.Args) + 1)
		params := []output.OutputExpression{output.Literal(n.slot), output.Literal(n.varOffset)}
		return invokeInstruction(instruction, append(params, c.convertAll(n.args)...)...)
	case *ep.Interpolation:
		return c.fail("unexpected interpolation")
	case *ep.Conditional:
		return output.Conditional(c.convert(n.Condition), c.convert(n.TrueExp), c.convert(n.FalseExp))
	case *ep.Binary:
		if n.Operation == "??" {
			// `a ?? b` reads `a` twice; template expressions have no side effects
			left := c.convert(n.Left)
			return output.Conditional(output.Binary(output.BinaryOperatorNotEquals, left, output.NullExpr()), left, c.convert(n.Right))
		}
		op, ok := binaryOperators[n.Operation]
		if !ok {
			return c.fail("unsupported operation %s", n.Operation)
		}
		return output.Binary(op, c.convert(n.Left), c.convert(n.Right))
	case *ep.Unary:
		op := output.UnaryOperatorPlus
		if n.Operator == "-" {
			op = output.UnaryOperatorMinus
		}
		return output.NewUnaryOperatorExpr(op, c.convert(n.Expr), nil, nil, false)
	case *ep.PrefixNot:
		return output.Not(c.convert(n.Expression))
	case *ep.TypeofExpression:
		return output.NewTypeofExpr(c.convert(n.Expression), nil, nil)
	case *ep.NonNullAssert:
		return output.NewAssertNotNullExpr(c.convert(n.Expression), nil)
	case *ep.PropertyRead:
		return c.convertPropertyRead(n.Receiver, n.Name)
	case *ep.PropertyWrite:
		return c.convertPropertyWrite(n)
	case *ep.KeyedRead:
		return output.Key(c.convert(n.Receiver), c.convert(n.Key))
	case *ep.KeyedWrite:
		return output.Key(c.convert(n.Receiver), c.convert(n.Key)).Set(c.convert(n.Value))
	case *ep.Call:
		return c.convertCall(n.Receiver, n.Args)
	}
	return c.fail("unsupported expression %T", ast)
}

func (c *astConverter) convertPropertyRead(receiverAst ep.AST, name string) output.OutputExpression {
	prevUsesImplicitReceiver := c.usesImplicitReceiver
	receiver := c.convert(receiverAst)
	if local := c.localFor(receiverAst, receiver, name); local != nil {
		c.usesImplicitReceiver = prevUsesImplicitReceiver
		c.implicitReceiverAccesses[name] = true
		return local
	}
	return output.Prop(receiver, name)
}

// localFor resolves name when it is read from the implicit receiver. Reads
// through an explicit `this` skip template variables.
func (c *astConverter) localFor(receiverAst ep.AST, receiver output.OutputExpression, name string) output.OutputExpression {
	implicit, ok := receiverAst.(*ep.ImplicitReceiver)
	if !ok || receiver != c.implicitReceiver || implicit.ThisReceiver {
		return nil
	}
	return c.resolver.getLocal(name)
}

func (c *astConverter) convertPropertyWrite(n *ep.PropertyWrite) output.OutputExpression {
	prevUsesImplicitReceiver := c.usesImplicitReceiver
	receiver := c.convert(n.Receiver)
	target := output.Prop(receiver, n.Name)
	if local := c.localFor(n.Receiver, receiver, n.Name); local != nil {
		prop, ok := local.(*output.ReadPropExpr)
		if !ok {
			value := ""
			if read, isRead := n.Value.(*ep.PropertyRead); isRead {
				value = read.Name
			}
			return c.fail("cannot assign value %q to template variable %q, template variables are read-only", value, n.Name)
		}
		c.usesImplicitReceiver = prevUsesImplicitReceiver
		c.implicitReceiverAccesses[n.Name] = true
		target = prop
	}
	return target.Set(c.convert(n.Value))
}

// convertCall keeps `receiver.method(args)` as a method call and calls
// resolved locals as functions
func (c *astConverter) convertCall(receiverAst ep.AST, argAsts []ep.AST) output.OutputExpression {
	read, ok := receiverAst.(*ep.PropertyRead)
	if !ok {
		return output.CallFn(c.convert(receiverAst), c.convertAll(argAsts)...)
	}
	prevUsesImplicitReceiver := c.usesImplicitReceiver
	receiver := c.convert(read.Receiver)
	args := c.convertAll(argAsts)
	if local := c.localFor(read.Receiver, receiver, read.Name); local != nil {
		c.usesImplicitReceiver = prevUsesImplicitReceiver
		c.implicitReceiverAccesses[read.Name] = true
		return output.CallFn(local, args...)
	}
	return output.CallMethod(receiver, read.Name, args...)
}

// convertSafeAccess turns `a?.b.c` into `a == null ? null : a.b.c`
func (c *astConverter) convertSafeAccess(ast ep.AST, safe ep.AST) output.OutputExpression {
	var guarded ep.AST
	switch s := safe.(type) {
	case *ep.SafePropertyRead:
		guarded = s.Receiver
	case *ep.SafeCall:
		guarded = s.Receiver
	}
	condition := output.Binary(output.BinaryOperatorEquals, c.convert(guarded), output.NullExpr())
	return output.Conditional(condition, output.NullExpr(), c.convert(replaceSafeNode(ast, safe)))
}

// leftMostSafeNode finds the first safe access along the receiver chain of
// ast, so that the whole chain is guarded by it
func leftMostSafeNode(ast ep.AST) ep.AST {
	for ast != nil {
		switch n := ast.(type) {
		case *ep.SafePropertyRead, *ep.SafeCall:
			if inner := leftMostSafeNode(receiverOf(n)); inner != nil {
				return inner
			}
			return n
		case *ep.PropertyRead, *ep.KeyedRead, *ep.Call, *ep.NonNullAssert:
			ast = receiverOf(n)
		default:
			return nil
		}
	}
	return nil
}

func receiverOf(ast ep.AST) ep.AST {
	switch n := ast.(type) {
	case *ep.SafePropertyRead:
		return n.Receiver
	case *ep.SafeCall:
		return n.Receiver
	case *ep.PropertyRead:
		return n.Receiver
	case *ep.KeyedRead:
		return n.Receiver
	case *ep.Call:
		return n.Receiver
	case *ep.NonNullAssert:
		return n.Expression
	}
	return nil
}

// replaceSafeNode copies the receiver chain of ast with safe replaced by its
// plain counterpart
func replaceSafeNode(ast ep.AST, safe ep.AST) ep.AST {
	if ast == safe {
		switch s := safe.(type) {
		case *ep.SafePropertyRead:
			return ep.NewPropertyRead(s.Span(), s.SourceSpan(), s.NameSpan, s.Receiver, s.Name)
		case *ep.SafeCall:
			return ep.NewCall(s.Span(), s.SourceSpan(), s.Receiver, s.Args)
		}
	}
	switch n := ast.(type) {
	case *ep.PropertyRead:
		cp := *n
		cp.Receiver = replaceSafeNode(n.Receiver, safe)
		return &cp
	case *ep.SafePropertyRead:
		cp := *n
		cp.Receiver = replaceSafeNode(n.Receiver, safe)
		return &cp
	case *ep.KeyedRead:
		cp := *n
		cp.Receiver = replaceSafeNode(n.Receiver, safe)
		return &cp
	case *ep.Call:
		cp := *n
		cp.Receiver = replaceSafeNode(n.Receiver, safe)
		return &cp
	case *ep.SafeCall:
		cp := *n
		cp.Receiver = replaceSafeNode(n.Receiver, safe)
		return &cp
	case *ep.NonNullAssert:
		cp := *n
		cp.Expression = replaceSafeNode(n.Expression, safe)
		return &cp
	}
	return ast
}
