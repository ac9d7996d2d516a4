package planner

import (
	"slices"
	"strings"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// ExpressionEquivalence decides whether two expressions are the same up to
// operand order of commutative operators and the direction of comparisons.
// A true answer is always sound. A false answer may miss equivalences that
// need more than reordering to prove.
type ExpressionEquivalence struct {
	catalog  catalog.Catalog
	analyzer *TypeAnalyzer
}

// NewExpressionEquivalence creates an equivalence oracle
func NewExpressionEquivalence(cat catalog.Catalog) *ExpressionEquivalence {
	return &ExpressionEquivalence{catalog: cat, analyzer: NewTypeAnalyzer(cat)}
}

// AreExpressionsEquivalent reports whether a and b have the same canonical
// form. Both must type check against symbols.
func (q *ExpressionEquivalence) AreExpressionsEquivalent(symbols SymbolTypes, a, b ir.Expression) (bool, error) {
	exprTypes, err := q.analyzer.GetTypes(symbols, a, b)
	if err != nil {
		return false, err
	}
	tr := q.rewriter()
	return ir.Equal(tr.Rewrite(a, exprTypes), tr.Rewrite(b, exprTypes)), nil
}

func (q *ExpressionEquivalence) rewriter() *ir.TreeRewriter[ExpressionTypes] {
	return ir.NewTreeRewriter(ir.Rules[ExpressionTypes]{
		Logical:    q.canonicalLogical,
		Comparison: q.canonicalComparison,
		Arithmetic: q.canonicalArithmetic,
	})
}

func (q *ExpressionEquivalence) canonicalLogical(node *ir.Logical, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	seen := ir.NewExpressionSet()
	var terms []ir.Expression
	for _, t := range ir.ExtractPredicates(node.Operator, node) {
		// a rewritten term may itself be a logical of the same operator
		for _, c := range ir.ExtractPredicates(node.Operator, tr.Rewrite(t, ctx)) {
			if ir.IsDeterministic(c) && !seen.Add(c) {
				continue
			}
			terms = append(terms, c)
		}
	}
	slices.SortStableFunc(terms, compareExpressions)
	if len(terms) == 1 {
		return terms[0]
	}
	return ir.NewLogical(node.Operator, terms...)
}

func (q *ExpressionEquivalence) canonicalComparison(node *ir.Comparison, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	op := node.Operator
	left := tr.Rewrite(node.Left, ctx)
	right := tr.Rewrite(node.Right, ctx)

	switch op {
	case ir.OpGreaterThan, ir.OpGreaterThanOrEqual:
		flipped := op.Flip()
		operator := catalog.OperatorLessThan
		if flipped == ir.OpLessThanOrEqual {
			operator = catalog.OperatorLessThanOrEqual
		}
		if _, err := q.catalog.ResolveOperator(operator, []types.Type{ctx.TypeOf(right), ctx.TypeOf(left)}); err == nil {
			op, left, right = flipped, right, left
		}
	case ir.OpEqual, ir.OpNotEqual, ir.OpIsDistinctFrom:
		if compareExpressions(left, right) > 0 {
			left, right = right, left
		}
	}
	if op == node.Operator && left == node.Left && right == node.Right {
		return node
	}
	return ir.NewComparison(op, left, right)
}

func (q *ExpressionEquivalence) canonicalArithmetic(node *ir.Arithmetic, ctx ExpressionTypes, tr *ir.TreeRewriter[ExpressionTypes]) ir.Expression {
	rewritten := tr.DefaultRewrite(node, ctx).(*ir.Arithmetic)
	if !rewritten.Operator.IsCommutative() {
		return rewritten
	}
	// operands of different types may bind a different function when swapped
	if !types.Equal(ctx.TypeOf(rewritten.Left), ctx.TypeOf(rewritten.Right)) {
		return rewritten
	}
	if compareExpressions(rewritten.Left, rewritten.Right) > 0 {
		return ir.NewArithmetic(rewritten.Function, rewritten.Operator, rewritten.Right, rewritten.Left)
	}
	return rewritten
}

// compareExpressions is a total order over canonical expressions: by
// rendering, then by structural hash.
func compareExpressions(a, b ir.Expression) int {
	if c := strings.Compare(a.String(), b.String()); c != 0 {
		return c
	}
	ha, hb := ir.Hash(a), ir.Hash(b)
	switch {
	case ha < hb:
		return -1
	case ha > hb:
		return 1
	}
	return 0
}
