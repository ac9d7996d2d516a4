// Package planner holds the expression passes run by the query planner:
// type analysis, canonicalization, negation push down, the expression
// equivalence oracle and IN-list narrowing over known value domains.
package planner

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// SymbolTypes maps input symbol names to their types
type SymbolTypes map[string]types.Type

// ExpressionTypes maps every node of an analyzed tree to its type. Keys are
// node identities, not structural values.
type ExpressionTypes map[ir.Expression]types.Type

// TypeOf returns the analyzed type of e, falling back to the type the node
// derives itself for nodes created after the analysis.
func (t ExpressionTypes) TypeOf(e ir.Expression) types.Type {
	if typ, ok := t[e]; ok {
		return typ
	}
	return e.DataType()
}

// TypeAnalyzer assigns a type to every node of an expression tree.
type TypeAnalyzer struct {
	catalog catalog.Catalog
}

// NewTypeAnalyzer creates an analyzer resolving operators through cat
func NewTypeAnalyzer(cat catalog.Catalog) *TypeAnalyzer {
	return &TypeAnalyzer{catalog: cat}
}

// GetTypes analyzes each expression and returns the types of all their
// nodes. It fails with IllegalState for an unbound reference or an invalid
// subscript and with UnsupportedOperation for a node outside the IR.
func (a *TypeAnalyzer) GetTypes(symbols SymbolTypes, exprs ...ir.Expression) (result ExpressionTypes, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Recover(r)
		}
	}()
	v := &typeVisitor{catalog: a.catalog, symbols: symbols, types: make(ExpressionTypes)}
	for _, e := range exprs {
		v.process(e, analysisContext{})
	}
	return v.types, nil
}

// GetType returns the type of the root of e
func (a *TypeAnalyzer) GetType(symbols SymbolTypes, e ir.Expression) (types.Type, error) {
	result, err := a.GetTypes(symbols, e)
	if err != nil {
		return nil, err
	}
	return result[e], nil
}

// analysisContext carries lambda argument bindings. functionInputTypes holds
// the argument types the enclosing call expects of the lambda being visited.
type analysisContext struct {
	bindings           map[string]types.Type
	functionInputTypes []types.Type
}

func (c analysisContext) bind(names []string, ts []types.Type) analysisContext {
	bindings := make(map[string]types.Type, len(c.bindings)+len(names))
	for k, v := range c.bindings {
		bindings[k] = v
	}
	for i, name := range names {
		bindings[name] = ts[i]
	}
	return analysisContext{bindings: bindings}
}

func (c analysisContext) expecting(ts []types.Type) analysisContext {
	return analysisContext{bindings: c.bindings, functionInputTypes: ts}
}

type typeVisitor struct {
	catalog catalog.Catalog
	symbols SymbolTypes
	types   ExpressionTypes
}

func (v *typeVisitor) process(e ir.Expression, ctx analysisContext) types.Type {
	if t, ok := v.types[e]; ok {
		return t
	}
	t := v.visit(e, ctx)
	v.types[e] = t
	return t
}

func (v *typeVisitor) processAll(es []ir.Expression, ctx analysisContext) []types.Type {
	out := make([]types.Type, len(es))
	for i, e := range es {
		out[i] = v.process(e, ctx)
	}
	return out
}

func (v *typeVisitor) visit(e ir.Expression, ctx analysisContext) types.Type {
	switch n := e.(type) {
	case *ir.Constant:
		return n.Type

	case *ir.Reference:
		if t, ok := ctx.bindings[n.Name]; ok {
			return t
		}
		if t, ok := v.symbols[n.Name]; ok {
			return t
		}
		panic(errors.IllegalStatef("type of symbol %s is missing", n.Name).WithRoutine("TypeAnalyzer"))

	case *ir.Comparison, *ir.IsNull, *ir.Between, *ir.In, *ir.Logical, *ir.Not:
		v.processAll(e.Children(), ctx)
		return types.Boolean

	case *ir.Arithmetic:
		left := v.process(n.Left, ctx)
		right := v.process(n.Right, ctx)
		fn, err := v.catalog.ResolveOperator(n.Operator.OperatorType(), []types.Type{left, right})
		if err != nil {
			panic(err)
		}
		return fn.ReturnType()

	case *ir.Cast:
		v.process(n.Value, ctx)
		return n.Type

	case *ir.SearchedCase:
		var results []types.Type
		for _, c := range n.WhenClauses {
			v.process(c.Operand, ctx)
			results = append(results, v.process(c.Result, ctx))
		}
		if n.Default != nil {
			results = append(results, v.process(n.Default, ctx))
		}
		return requireSameTypes(results, "case results")

	case *ir.SimpleCase:
		operand := v.process(n.Operand, ctx)
		var results []types.Type
		for _, c := range n.WhenClauses {
			when := v.process(c.Operand, ctx)
			errors.Assertf(types.Equal(operand, when), "case operand type %s does not match when operand type %s", operand, when)
			results = append(results, v.process(c.Result, ctx))
		}
		if n.Default != nil {
			results = append(results, v.process(n.Default, ctx))
		}
		return requireSameTypes(results, "case results")

	case *ir.Coalesce:
		return requireSameTypes(v.processAll(n.Operands, ctx), "coalesce operands")

	case *ir.NullIf:
		first := v.process(n.First, ctx)
		v.process(n.Second, ctx)
		return first

	case *ir.Row:
		return types.Row(v.processAll(n.Items, ctx)...)

	case *ir.Subscript:
		return v.visitSubscript(n, ctx)

	case *ir.Call:
		declared := n.Function.ArgumentTypes()
		for i, arg := range n.Arguments {
			argCtx := ctx
			if fn, ok := declared[i].(types.FunctionType); ok {
				argCtx = ctx.expecting(fn.Arguments)
			}
			v.process(arg, argCtx)
		}
		return n.Function.ReturnType()

	case *ir.Lambda:
		inputs := ctx.functionInputTypes
		errors.Assertf(len(inputs) == len(n.Arguments),
			"lambda with %d arguments bound to %d input types", len(n.Arguments), len(inputs))
		body := v.process(n.Body, ctx.bind(n.Arguments, inputs))
		return types.Function(inputs, body)

	case *ir.Bind:
		captured := v.processAll(n.Values, analysisContext{bindings: ctx.bindings})
		inputs := append(append([]types.Type(nil), captured...), ctx.functionInputTypes...)
		fn := v.process(n.Function, ctx.expecting(inputs)).(types.FunctionType)
		return types.Function(ctx.functionInputTypes, fn.Return)
	}
	panic(errors.UnsupportedOperationf("unsupported expression %T", e).WithRoutine("TypeAnalyzer"))
}

func (v *typeVisitor) visitSubscript(n *ir.Subscript, ctx analysisContext) types.Type {
	base := v.process(n.Base, ctx)
	v.process(n.Index, ctx)
	switch base := base.(type) {
	case types.RowType:
		c, ok := n.Index.(*ir.Constant)
		if !ok {
			panic(errors.IllegalStatef("row subscript must be a constant"))
		}
		idx, ok := c.Value.(int64)
		if !ok || idx < 1 || int(idx) > len(base.Fields) {
			panic(errors.IllegalStatef("row subscript %v out of range for %s", c.Value, base))
		}
		return base.Fields[idx-1].Type
	case types.ArrayType:
		return base.Element
	case types.MapType:
		return base.Value
	}
	panic(errors.IllegalStatef("cannot subscript type %s", base).WithRoutine("TypeAnalyzer"))
}

func requireSameTypes(ts []types.Type, what string) types.Type {
	for _, t := range ts[1:] {
		errors.Assertf(types.Equal(ts[0], t), "%s must share one type, got %s and %s", what, ts[0], t)
	}
	return ts[0]
}
