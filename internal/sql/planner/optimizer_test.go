package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

func TestOptimizer(t *testing.T) {
	o := NewOptimizer(cat, interpreter.New(nil), nil)

	tests := []struct {
		name string
		expr ir.Expression
		want string
	}{
		{"negation and canonical order", ir.NewNot(cmp(ir.OpGreaterThan, lit(5), ref("x"))), "(x >= 5)"},
		{"constant folding", cmp(ir.OpLessThan, ref("x"), arith(ir.OpAdd, lit(1), lit(2))), "(x < 3)"},
		{"folded conjunct removed", ir.NewLogical(ir.OpAnd, cmp(ir.OpLessThan, lit(1), lit(2)), ref("b")), "b"},
		{"folded false conjunct", ir.NewLogical(ir.OpAnd, cmp(ir.OpLessThan, lit(2), lit(1)), ref("b")), "FALSE"},
		{"duplicates removed", ir.NewLogical(ir.OpOr, ref("b"), ir.NewLogical(ir.OpOr, ref("b"), ir.NewIsNull(ref("x")))), "(b OR (x IS NULL))"},
		{"failing constant kept", cmp(ir.OpEqual, ref("x"), arith(ir.OpDivide, lit(1), lit(0))), "(x = (1 / 0))"},
		{"cast folded", cmp(ir.OpEqual, ref("x"), ir.NewCast(str("42"), types.Bigint, false)), "(x = 42)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.Optimize(symbols, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestOptimizerWithDomains(t *testing.T) {
	o := NewOptimizerWithRules(nil,
		&NarrowInPredicatesRule{Domains: map[string]ValueDomain{
			"x": {Type: types.Bigint, Values: []any{int64(1), int64(2)}},
		}},
		&SimplifyPredicates{},
	)
	got, err := o.Optimize(symbols, ir.NewLogical(ir.OpOr, ref("b"), ir.NewIn(ref("x"), lit(3), lit(4))))
	require.NoError(t, err)
	assert.Equal(t, "b", got.String())
}

func TestOptimizerError(t *testing.T) {
	o := NewOptimizer(cat, interpreter.New(nil), nil)
	_, err := o.Optimize(symbols, ir.NewNot(ir.NewReference(types.Boolean, "unknown")))
	assert.True(t, errors.IsIllegalState(err))
}
