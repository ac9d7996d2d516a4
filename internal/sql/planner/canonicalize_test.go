package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

func TestCanonicalize(t *testing.T) {
	c := NewCanonicalizer(cat)

	tests := []struct {
		name string
		expr ir.Expression
		want string
	}{
		{"constant moves right", cmp(ir.OpLessThan, lit(5), ref("x")), "(x > 5)"},
		{"already canonical", cmp(ir.OpLessThan, ref("x"), lit(5)), "(x < 5)"},
		{"equality", cmp(ir.OpEqual, lit(5), ref("x")), "(x = 5)"},
		{"constant expression counts as constant", cmp(ir.OpGreaterThanOrEqual, arith(ir.OpAdd, lit(1), lit(2)), ref("x")), "(x <= (1 + 2))"},
		{"both constant", cmp(ir.OpLessThan, lit(1), lit(2)), "(1 < 2)"},
		{"both symbols", cmp(ir.OpLessThan, ref("y"), ref("x")), "(y < x)"},
		{"commutative arithmetic", arith(ir.OpAdd, lit(1), ref("x")), "(x + 1)"},
		{"multiply", arith(ir.OpMultiply, lit(2), ref("x")), "(x * 2)"},
		{"subtract is kept", arith(ir.OpSubtract, lit(1), ref("x")), "(1 - x)"},
		{"nested", ir.NewLogical(ir.OpAnd,
			cmp(ir.OpEqual, lit(1), ref("x")),
			ir.NewNot(cmp(ir.OpLessThan, lit(2), arith(ir.OpAdd, lit(3), ref("y"))))),
			"((x = 1) AND (NOT ((y + 3) > 2)))"},
		{"date of timestamp", call("date", ref("ts")), "CAST(ts AS date)"},
		{"date of string", call("date", ref("s")), "CAST(s AS date)"},
		{"random is not constant", cmp(ir.OpLessThan, call("random"), ref("d")), "(random() < d)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Canonicalize(symbols, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())

			again, err := c.Canonicalize(symbols, got)
			require.NoError(t, err)
			assert.True(t, ir.Equal(got, again), "not idempotent: %s", again)
		})
	}
}

func TestCanonicalizeKeepsIdentity(t *testing.T) {
	c := NewCanonicalizer(cat)
	expr := ir.NewLogical(ir.OpOr, cmp(ir.OpEqual, ref("x"), lit(1)), ir.NewIsNull(ref("s")))
	got, err := c.Canonicalize(symbols, expr)
	require.NoError(t, err)
	assert.Same(t, expr, got)
}

func TestCanonicalizeRebindsSwappedOperator(t *testing.T) {
	c := NewCanonicalizer(cat)
	one := ir.NewConstant(types.Integer, int64(1))
	got, err := c.Canonicalize(symbols, arith(ir.OpAdd, one, ref("x")))
	require.NoError(t, err)

	sum, ok := got.(*ir.Arithmetic)
	require.True(t, ok)
	assert.Equal(t, "x", sum.Left.String())
	assert.Same(t, one, sum.Right)
	assert.True(t, types.Equal(types.Bigint, sum.Function.ArgumentTypes()[0]))
	assert.True(t, types.Equal(types.Integer, sum.Function.ArgumentTypes()[1]))
}

func TestCanonicalizeDateOfDateIsKept(t *testing.T) {
	c := NewCanonicalizer(cat)
	expr := call("date", ir.NewConstant(types.Date, int64(0)))
	got, err := c.Canonicalize(symbols, expr)
	require.NoError(t, err)
	assert.Same(t, expr, got)
}

func TestCanonicalizeUnknownSymbol(t *testing.T) {
	c := NewCanonicalizer(cat)
	_, err := c.Canonicalize(symbols, cmp(ir.OpEqual, lit(1), ir.NewReference(types.Bigint, "nope")))
	assert.True(t, errors.IsIllegalState(err))
}
