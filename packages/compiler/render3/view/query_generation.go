package view

import (
	"strings"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

const dirIndexParam = "dirIndex"

// toQueryFlags packs the query options into the runtime flag bits
func toQueryFlags(query R3QueryMetadata) int {
	flags := core.QueryFlagsNone
	if query.Descendants {
		flags |= core.QueryFlagsDescendants
	}
	if query.Static {
		flags |= core.QueryFlagsIsStatic
	}
	if query.EmitDistinctChangesOnly {
		flags |= core.QueryFlagsEmitDistinctChangesOnly
	}
	return int(flags)
}

// queryPredicate renders the predicate. Reference names may be comma
// separated (`'a, b'`); each becomes its own entry of a pooled array.
func queryPredicate(query R3QueryMetadata, constantPool *pool.ConstantPool) output.OutputExpression {
	if names, ok := query.Predicate.([]string); ok {
		var predicate []output.OutputExpression
		for _, selector := range names {
			for _, part := range strings.Split(selector, ",") {
				predicate = append(predicate, output.Literal(strings.TrimSpace(part)))
			}
		}
		return constantPool.GetConstLiteral(output.LiteralArr(predicate...), true)
	}
	if expr, ok := query.Predicate.(output.OutputExpression); ok {
		return expr
	}
	return output.NullExpr()
}

// queryCreateCall builds `ɵɵviewQuery(predicate, flags, read?)` and its
// content query counterpart
func queryCreateCall(query R3QueryMetadata, constantPool *pool.ConstantPool, instruction *output.ExternalReference, prepend ...output.OutputExpression) *output.InvokeFunctionExpr {
	params := append([]output.OutputExpression{}, prepend...)
	params = append(params, queryPredicate(query, constantPool), output.Literal(toQueryFlags(query)))
	if query.Read != nil {
		params = append(params, query.Read)
	}
	return invokeInstruction(instruction, params...)
}

// queryRefreshStatement builds
// `ɵɵqueryRefresh(_t = ɵɵloadQuery()) && (ctx.prop = _t.first)`
func queryRefreshStatement(query R3QueryMetadata, temporary *output.ReadVarExpr) output.OutputStatement {
	refresh := invokeInstruction(r3_identifiers.QueryRefresh, temporary.Set(invokeInstruction(r3_identifiers.LoadQuery)))
	var value output.OutputExpression = temporary
	if query.First {
		value = output.Prop(temporary, "first")
	}
	update := output.Prop(output.Variable(ContextName), query.PropertyName).Set(value)
	return output.Stmt(output.Binary(output.BinaryOperatorAnd, refresh, update))
}

func queriesFunction(
	queries []R3QueryMetadata,
	constantPool *pool.ConstantPool,
	fnName string,
	instruction *output.ExternalReference,
	params []*output.FnParam,
	prepend ...output.OutputExpression,
) output.OutputExpression {
	var createStatements, updateStatements []output.OutputStatement
	temporary := TemporaryAllocator(func(st output.OutputStatement) {
		updateStatements = append(updateStatements, st)
	}, TemporaryName)

	for _, query := range queries {
		createStatements = append(createStatements, output.Stmt(queryCreateCall(query, constantPool, instruction, prepend...)))
		tmp := temporary()
		updateStatements = append(updateStatements, queryRefreshStatement(query, tmp))
	}

	return output.Fn(params, []output.OutputStatement{
		renderFlagCheckIfStmt(core.RenderFlagsCreate, createStatements),
		renderFlagCheckIfStmt(core.RenderFlagsUpdate, updateStatements),
	}, fnName)
}

// createContentQueriesFunction defines and refreshes content queries:
// `function Comp_ContentQueries(rf, ctx, dirIndex) { ... }`
func createContentQueriesFunction(queries []R3QueryMetadata, constantPool *pool.ConstantPool, name string) output.OutputExpression {
	fnName := ""
	if name != "" {
		fnName = name + "_ContentQueries"
	}
	return queriesFunction(queries, constantPool, fnName, r3_identifiers.ContentQuery,
		output.Params(RenderFlags, ContextName, dirIndexParam), output.Variable(dirIndexParam))
}

// createViewQueriesFunction defines and refreshes view queries:
// `function Comp_Query(rf, ctx) { ... }`
func createViewQueriesFunction(queries []R3QueryMetadata, constantPool *pool.ConstantPool, name string) output.OutputExpression {
	fnName := ""
	if name != "" {
		fnName = name + "_Query"
	}
	return queriesFunction(queries, constantPool, fnName, r3_identifiers.ViewQuery,
		output.Params(RenderFlags, ContextName))
}
