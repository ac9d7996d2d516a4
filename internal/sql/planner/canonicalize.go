package planner

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// Canonicalizer moves constants to the right of comparisons and commutative
// arithmetic, and turns date(x) over timestamps and strings into a cast.
type Canonicalizer struct {
	catalog  catalog.Catalog
	analyzer *TypeAnalyzer
}

// NewCanonicalizer creates a canonicalizer resolving operators through cat
func NewCanonicalizer(cat catalog.Catalog) *Canonicalizer {
	return &Canonicalizer{catalog: cat, analyzer: NewTypeAnalyzer(cat)}
}

// Canonicalize rewrites e into canonical form. The result of a second
// application is structurally equal to the first.
func (c *Canonicalizer) Canonicalize(symbols SymbolTypes, e ir.Expression) (result ir.Expression, err error) {
	exprTypes, err := c.analyzer.GetTypes(symbols, e)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Recover(r)
		}
	}()
	return c.rewriter().Rewrite(e, exprTypes), nil
}

func (c *Canonicalizer) rewriter() *ir.TreeRewriter[ExpressionTypes] {
	return ir.NewTreeRewriter(ir.Rules[ExpressionTypes]{
		Comparison: c.rewriteComparison,
		Arithmetic: c.rewriteArithmetic,
		Call:       c.rewriteCall,
	})
}

func (c *Canonicalizer) rewriteComparison(node *ir.Comparison, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	rewritten := tr.DefaultRewrite(node, ctx).(*ir.Comparison)
	if ir.IsConstant(rewritten.Left) && !ir.IsConstant(rewritten.Right) {
		return ir.NewComparison(rewritten.Operator.Flip(), rewritten.Right, rewritten.Left)
	}
	return rewritten
}

func (c *Canonicalizer) rewriteArithmetic(node *ir.Arithmetic, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	rewritten := tr.DefaultRewrite(node, ctx).(*ir.Arithmetic)
	if !rewritten.Operator.IsCommutative() {
		return rewritten
	}
	if !ir.IsConstant(rewritten.Left) || ir.IsConstant(rewritten.Right) {
		return rewritten
	}
	swapped := []types.Type{ctx.TypeOf(rewritten.Right), ctx.TypeOf(rewritten.Left)}
	fn, err := c.catalog.ResolveOperator(rewritten.Operator.OperatorType(), swapped)
	if err != nil {
		return rewritten
	}
	return ir.NewArithmetic(fn, rewritten.Operator, rewritten.Right, rewritten.Left)
}

func (c *Canonicalizer) rewriteCall(node *ir.Call, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	if node.Function.Name() != "date" || len(node.Arguments) != 1 {
		return nil
	}
	argType := ctx.TypeOf(node.Arguments[0])
	if !types.IsTimestamp(argType) && !types.IsStringLike(argType) {
		return nil
	}
	return ir.NewCast(tr.Rewrite(node.Arguments[0], ctx), types.Date, false)
}
