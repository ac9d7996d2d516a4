package interpreter

import (
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

var cat = catalog.NewMemoryCatalog()

func lit(v int64) *ir.Constant { return ir.NewConstant(types.Bigint, v) }

func dbl(v float64) *ir.Constant { return ir.NewConstant(types.Double, v) }

func str(v string) *ir.Constant { return ir.NewConstant(types.UnboundedVarchar, v) }

func dec(s string, p, sc int) *ir.Constant {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return ir.NewConstant(types.Decimal(p, sc), d)
}

func arith(op ir.ArithmeticOperator, l, r ir.Expression) *ir.Arithmetic {
	fn, err := cat.ResolveOperator(op.OperatorType(), []types.Type{l.DataType(), r.DataType()})
	if err != nil {
		panic(err)
	}
	return ir.NewArithmetic(fn, op, l, r)
}

func call(name string, args ...ir.Expression) *ir.Call {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.DataType()
	}
	fn, err := cat.ResolveFunction(name, argTypes)
	if err != nil {
		panic(err)
	}
	return ir.NewCall(fn, args...)
}

func TestEvaluateConstant(t *testing.T) {
	in := New(nil)
	null := ir.Null(types.Bigint)
	nullBool := ir.Null(types.Boolean)
	nan := dbl(math.NaN())

	tests := []struct {
		name string
		expr ir.Expression
		want any
	}{
		{"add", arith(ir.OpAdd, lit(2), lit(3)), int64(5)},
		{"null propagates", arith(ir.OpMultiply, lit(2), null), nil},
		{"integer division truncates", arith(ir.OpDivide, lit(-7), lit(2)), int64(-3)},
		{"modulus", arith(ir.OpModulus, lit(7), lit(3)), int64(1)},
		{"double promotion", arith(ir.OpAdd, lit(1), dbl(0.5)), 1.5},
		{"comparison", ir.NewComparison(ir.OpLessThan, lit(1), lit(2)), true},
		{"mixed numeric comparison", ir.NewComparison(ir.OpEqual, lit(1), dbl(1.0)), true},
		{"null comparison", ir.NewComparison(ir.OpEqual, lit(1), null), nil},
		{"nan is not equal to itself", ir.NewComparison(ir.OpEqual, nan, nan), false},
		{"nan is not ordered", ir.NewComparison(ir.OpLessThan, nan, dbl(1)), false},
		{"nan not equal", ir.NewComparison(ir.OpNotEqual, nan, dbl(1)), true},
		{"nan not distinct from nan", ir.NewComparison(ir.OpIsDistinctFrom, nan, nan), false},
		{"null not distinct from null", ir.NewComparison(ir.OpIsDistinctFrom, null, null), false},
		{"null distinct from value", ir.NewComparison(ir.OpIsDistinctFrom, lit(1), null), true},
		{"and with false", ir.NewLogical(ir.OpAnd, nullBool, ir.False), false},
		{"and with null", ir.NewLogical(ir.OpAnd, nullBool, ir.True), nil},
		{"or with true", ir.NewLogical(ir.OpOr, nullBool, ir.True), true},
		{"or with null", ir.NewLogical(ir.OpOr, nullBool, ir.False), nil},
		{"not null", ir.NewNot(nullBool), nil},
		{"is null", ir.NewIsNull(null), true},
		{"between", ir.NewBetween(lit(3), lit(1), lit(5)), true},
		{"between outside", ir.NewBetween(lit(7), lit(1), lit(5)), false},
		{"in", ir.NewIn(lit(2), lit(1), lit(2)), true},
		{"in miss with null", ir.NewIn(lit(3), lit(1), null), nil},
		{"in miss", ir.NewIn(lit(3), lit(1), lit(2)), false},
		{"cast", ir.NewCast(str("42"), types.Integer, false), int64(42)},
		{"safe cast failure", ir.NewCast(str("abc"), types.Integer, true), nil},
		{"searched case", ir.NewSearchedCase([]ir.WhenClause{
			ir.NewWhenClause(nullBool, lit(1)),
			ir.NewWhenClause(ir.True, lit(2)),
		}, lit(3)), int64(2)},
		{"searched case default", ir.NewSearchedCase([]ir.WhenClause{ir.NewWhenClause(ir.False, lit(1))}, nil), nil},
		{"simple case", ir.NewSimpleCase(lit(2), []ir.WhenClause{
			ir.NewWhenClause(lit(1), str("a")),
			ir.NewWhenClause(lit(2), str("b")),
		}, str("z")), "b"},
		{"coalesce", ir.NewCoalesce(null, lit(4), lit(5)), int64(4)},
		{"nullif equal", ir.NewNullIf(lit(1), lit(1)), nil},
		{"nullif different", ir.NewNullIf(lit(1), lit(2)), int64(1)},
		{"row subscript", ir.NewSubscript(ir.NewRow(lit(1), str("x")), lit(2)), "x"},
		{"abs", call("abs", lit(-3)), int64(3)},
		{"length", call("length", str("héllo")), int64(5)},
		{"upper", call("upper", str("abc")), "ABC"},
		{"concat", call("concat", str("a"), str("b")), "ab"},
		{"concat null", call("concat", str("a"), ir.Null(types.UnboundedVarchar)), nil},
		{"date of string", call("date", str("2024-12-20")), int64(20077)},
		{"year", call("year", ir.NewConstant(types.Date, int64(20077))), int64(2024)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.EvaluateConstant(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateDecimal(t *testing.T) {
	in := New(nil)
	got, err := in.EvaluateConstant(arith(ir.OpAdd, dec("1.25", 5, 2), dec("2.5", 3, 1)))
	require.NoError(t, err)
	assert.Equal(t, "3.75", got.(*apd.Decimal).String())

	got, err = in.EvaluateConstant(arith(ir.OpDivide, dec("10.00", 4, 2), dec("3.00", 3, 2)))
	require.NoError(t, err)
	assert.Equal(t, "3.33", got.(*apd.Decimal).String())

	_, err = in.EvaluateConstant(arith(ir.OpDivide, dec("1.00", 3, 2), dec("0.00", 3, 2)))
	assert.True(t, errors.IsError(err, errors.DivisionByZero))
}

func TestEvaluateErrors(t *testing.T) {
	in := New(nil)
	x := ir.NewReference(types.Bigint, "x")

	tests := []struct {
		name  string
		expr  ir.Expression
		check func(error) bool
	}{
		{"reference", arith(ir.OpAdd, x, lit(1)), func(err error) bool { return errors.Is(err, ErrNotConstant) }},
		{"random", call("random"), func(err error) bool { return errors.Is(err, ErrNotConstant) }},
		{"division by zero", arith(ir.OpDivide, lit(1), lit(0)), func(err error) bool { return errors.IsError(err, errors.DivisionByZero) }},
		{"overflow", arith(ir.OpAdd, lit(math.MaxInt64), lit(1)), func(err error) bool { return errors.IsError(err, errors.NumericValueOutOfRange) }},
		{"bad cast", ir.NewCast(str("abc"), types.Integer, false), func(err error) bool { return errors.IsError(err, errors.InvalidTextRepresentation) }},
		{"cast out of range", ir.NewCast(lit(300), types.Tinyint, false), func(err error) bool { return errors.IsError(err, errors.NumericValueOutOfRange) }},
		{"array subscript", ir.NewSubscript(ir.NewConstant(types.Array(types.Bigint), []any{int64(1)}), lit(2)), func(err error) bool { return errors.IsError(err, errors.ArraySubscriptError) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.EvaluateConstant(tt.expr)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestIsEffectivelyLiteral(t *testing.T) {
	in := New(nil)
	assert.True(t, in.IsEffectivelyLiteral(lit(1)))
	assert.True(t, in.IsEffectivelyLiteral(ir.NewCast(str("1"), types.Bigint, false)))
	assert.False(t, in.IsEffectivelyLiteral(ir.NewCast(str("x"), types.Bigint, false)))
	assert.False(t, in.IsEffectivelyLiteral(ir.NewReference(types.Bigint, "x")))
	assert.False(t, in.IsEffectivelyLiteral(call("random")))

	folded, ok := in.Fold(ir.NewCast(str("7"), types.Bigint, false))
	require.True(t, ok)
	assert.Equal(t, "7", folded.String())
}

func TestCompare(t *testing.T) {
	c, ok := Compare(int64(1), types.Bigint, 1.5, types.Double)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	_, ok = Compare(math.NaN(), types.Double, 1.0, types.Double)
	assert.False(t, ok)

	c, ok = Compare(int64(1), types.Date, int64(0), types.Timestamp)
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = Compare("ab  ", types.Char(4), "ab", types.UnboundedVarchar)
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = Compare("a", types.UnboundedVarchar, int64(1), types.Bigint)
	assert.False(t, ok)
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		v    any
		t    types.Type
		want float64
		ok   bool
	}{
		{int64(3), types.Bigint, 3, true},
		{int64(20077), types.Date, 20077, true},
		{2.5, types.Double, 2.5, true},
		{apd.New(125, -2), types.Decimal(3, 2), 1.25, true},
		{true, types.Boolean, 1, true},
		{"x", types.UnboundedVarchar, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.v, tt.t)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}
