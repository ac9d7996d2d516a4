// Package exprgen generates random well typed predicates for property tests.
package exprgen

import (
	"math"
	"math/rand"

	"github.com/leanovate/gopter"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// Symbols are the input symbols generated expressions refer to
var Symbols = map[string]types.Type{
	"x": types.Bigint,
	"y": types.Bigint,
	"d": types.Double,
	"e": types.Double,
	"s": types.UnboundedVarchar,
	"b": types.Boolean,
}

var (
	bigintSymbols  = []string{"x", "y"}
	doubleSymbols  = []string{"d", "e"}
	stringValues   = []string{"", "a", "abc", "b"}
	scalarTypes    = []types.Type{types.Bigint, types.Double, types.UnboundedVarchar}
	comparisonOps  = []ir.ComparisonOperator{ir.OpEqual, ir.OpNotEqual, ir.OpLessThan, ir.OpLessThanOrEqual, ir.OpGreaterThan, ir.OpGreaterThanOrEqual, ir.OpIsDistinctFrom}
	arithmeticOps  = []ir.ArithmeticOperator{ir.OpAdd, ir.OpSubtract, ir.OpMultiply}
	logicalOps     = []ir.LogicalOperator{ir.OpAnd, ir.OpOr}
	defaultDepth   = 3
	maxLogicalArgs = 3
)

// Generator builds random predicates over Symbols
type Generator struct {
	catalog  catalog.Catalog
	rng      *rand.Rand
	maxDepth int
}

// New creates a generator drawing from rng
func New(cat catalog.Catalog, rng *rand.Rand) *Generator {
	return &Generator{catalog: cat, rng: rng, maxDepth: defaultDepth}
}

// WithMaxDepth limits the nesting of logical operators and arithmetic
func (g *Generator) WithMaxDepth(depth int) *Generator {
	g.maxDepth = depth
	return g
}

// Predicate returns a boolean expression
func (g *Generator) Predicate() ir.Expression {
	return g.predicate(g.maxDepth)
}

// Leaf returns a boolean expression that is neither AND, OR nor NOT
func (g *Generator) Leaf() ir.Expression {
	switch g.rng.Intn(6) {
	case 0:
		return ir.NewReference(types.Boolean, "b")
	case 1:
		return ir.NewIsNull(g.scalar(g.scalarType(), 1))
	case 2:
		t := g.scalarType()
		return ir.NewBetween(g.scalar(t, 1), g.scalar(t, 0), g.scalar(t, 0))
	case 3:
		t := g.scalarType()
		list := make([]ir.Expression, 1+g.rng.Intn(3))
		for i := range list {
			list[i] = g.constant(t)
		}
		return ir.NewIn(g.scalar(t, 1), list...)
	default:
		t := g.scalarType()
		op := comparisonOps[g.rng.Intn(len(comparisonOps))]
		return ir.NewComparison(op, g.scalar(t, 1), g.scalar(t, 1))
	}
}

func (g *Generator) predicate(depth int) ir.Expression {
	if depth <= 0 {
		return g.Leaf()
	}
	switch g.rng.Intn(4) {
	case 0:
		return ir.NewNot(g.predicate(depth - 1))
	case 1:
		terms := make([]ir.Expression, 2+g.rng.Intn(maxLogicalArgs-1))
		for i := range terms {
			terms[i] = g.predicate(depth - 1)
		}
		return ir.NewLogical(logicalOps[g.rng.Intn(len(logicalOps))], terms...)
	default:
		return g.Leaf()
	}
}

func (g *Generator) scalarType() types.Type {
	return scalarTypes[g.rng.Intn(len(scalarTypes))]
}

// scalar returns an expression of type t. Numeric expressions may nest
// arithmetic up to depth levels.
func (g *Generator) scalar(t types.Type, depth int) ir.Expression {
	switch g.rng.Intn(3) {
	case 0:
		return g.constant(t)
	case 1:
		if depth > 0 && types.IsNumeric(t) {
			return g.arithmetic(t, depth)
		}
	}
	return g.reference(t)
}

func (g *Generator) reference(t types.Type) ir.Expression {
	switch t.Kind() {
	case types.KindBigint:
		return ir.NewReference(t, bigintSymbols[g.rng.Intn(len(bigintSymbols))])
	case types.KindDouble:
		return ir.NewReference(t, doubleSymbols[g.rng.Intn(len(doubleSymbols))])
	}
	return ir.NewReference(t, "s")
}

func (g *Generator) constant(t types.Type) *ir.Constant {
	if g.rng.Intn(10) == 0 {
		return ir.Null(t)
	}
	switch t.Kind() {
	case types.KindBigint:
		return ir.NewConstant(t, g.rng.Int63n(21)-10)
	case types.KindDouble:
		if g.rng.Intn(10) == 0 {
			return ir.NewConstant(t, math.NaN())
		}
		return ir.NewConstant(t, float64(g.rng.Intn(41)-20)/4)
	}
	return ir.NewConstant(t, stringValues[g.rng.Intn(len(stringValues))])
}

func (g *Generator) arithmetic(t types.Type, depth int) ir.Expression {
	op := arithmeticOps[g.rng.Intn(len(arithmeticOps))]
	left, right := g.scalar(t, depth-1), g.scalar(t, depth-1)
	// a double sum may mix in a bigint operand
	if t.Kind() == types.KindDouble && g.rng.Intn(3) == 0 {
		right = g.scalar(types.Bigint, depth-1)
	}
	fn, err := g.catalog.ResolveOperator(op.OperatorType(), []types.Type{left.DataType(), right.DataType()})
	if err != nil {
		panic(err)
	}
	return ir.NewArithmetic(fn, op, left, right)
}

// Predicates generates predicates with gopter
func Predicates(cat catalog.Catalog) gopter.Gen {
	return func(params *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(New(cat, params.Rng).Predicate(), gopter.NoShrinker)
	}
}

// Leaves generates predicates that are neither AND, OR nor NOT
func Leaves(cat catalog.Catalog) gopter.Gen {
	return func(params *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(New(cat, params.Rng).Leaf(), gopter.NoShrinker)
	}
}
