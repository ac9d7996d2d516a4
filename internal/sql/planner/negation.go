package planner

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// NegationPusher moves NOT towards the leaves of a predicate
type NegationPusher struct {
	analyzer *TypeAnalyzer
}

// NewNegationPusher creates a negation pusher
func NewNegationPusher(cat catalog.Catalog) *NegationPusher {
	return &NegationPusher{analyzer: NewTypeAnalyzer(cat)}
}

// PushDownNegations applies De Morgan's laws, removes double negation and
// negates comparison operators. NOT over an ordering comparison whose
// operands can hold NaN is kept, since NOT (a < b) and a >= b disagree when
// either side is NaN. The rewrite runs once; it is not iterated to a fixed
// point.
func (p *NegationPusher) PushDownNegations(symbols SymbolTypes, e ir.Expression) (result ir.Expression, err error) {
	exprTypes, err := p.analyzer.GetTypes(symbols, e)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Recover(r)
		}
	}()
	return ir.Rewrite(ir.Rules[ExpressionTypes]{Not: pushNot}, e, exprTypes), nil
}

func pushNot(node *ir.Not, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	switch child := node.Value.(type) {
	case *ir.Logical:
		terms := make([]ir.Expression, len(child.Terms))
		for i, t := range child.Terms {
			terms[i] = tr.Rewrite(ir.NewNot(t), ctx)
		}
		return ir.NewLogical(child.Operator.Flip(), terms...)

	case *ir.Comparison:
		if child.Operator == ir.OpIsDistinctFrom {
			return nil
		}
		left := tr.Rewrite(child.Left, ctx)
		right := tr.Rewrite(child.Right, ctx)
		nanCapable := types.CanHoldNaN(ctx.TypeOf(child.Left)) || types.CanHoldNaN(ctx.TypeOf(child.Right))
		if nanCapable && child.Operator.IsOrdering() {
			if left == child.Left && right == child.Right {
				return node
			}
			return ir.NewNot(ir.NewComparison(child.Operator, left, right))
		}
		return ir.NewComparison(child.Operator.Negate(), left, right)

	case *ir.Not:
		return tr.Rewrite(child.Value, ctx)
	}
	return nil
}
