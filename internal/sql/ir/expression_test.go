package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

func requireInvalidArgument(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.IsInvalidArgument(err), "unexpected error %v", err)
	}()
	f()
}

func TestConstructorValidation(t *testing.T) {
	x := ref("x")
	tests := []struct {
		name string
		f    func()
	}{
		{"logical with one term", func() { NewLogical(OpAnd, x) }},
		{"logical with no terms", func() { NewLogical(OpOr) }},
		{"logical with nil term", func() { NewLogical(OpAnd, x, nil) }},
		{"empty in list", func() { NewIn(x) }},
		{"nil in value", func() { NewIn(nil, lit(1)) }},
		{"nil comparison operand", func() { NewComparison(OpEqual, x, nil) }},
		{"nil not", func() { NewNot(nil) }},
		{"nil cast type", func() { NewCast(x, nil, false) }},
		{"case without clauses", func() { NewSearchedCase(nil, nil) }},
		{"coalesce with one operand", func() { NewCoalesce(x) }},
		{"empty reference name", func() { NewReference(types.Bigint, "") }},
		{"call arity", func() { NewCall(call("abs", x).Function) }},
		{"bind too many values", func() { NewBind([]Expression{x, x}, NewLambda([]string{"a"}, x)) }},
		{"lambda without argument name", func() { NewLambda([]string{""}, x) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireInvalidArgument(t, tt.f)
		})
	}
}

func TestConstructorsCopyLists(t *testing.T) {
	terms := []Expression{ref("a"), ref("b")}
	l := NewLogical(OpAnd, terms...)
	terms[0] = ref("c")
	assert.Equal(t, "a", l.Terms[0].(*Reference).Name)
}

func TestDataTypes(t *testing.T) {
	x := ref("x")
	row := NewRow(x, str("s"))

	tests := []struct {
		name string
		expr Expression
		want types.Type
	}{
		{"comparison", cmp(OpEqual, x, lit(1)), types.Boolean},
		{"logical", NewLogical(OpOr, cmp(OpEqual, x, lit(1)), True), types.Boolean},
		{"in", NewIn(x, lit(1)), types.Boolean},
		{"cast", NewCast(x, types.Double, false), types.Double},
		{"arithmetic", add(x, lit(1)), types.Bigint},
		{"call", call("length", str("abc")), types.Bigint},
		{"row", row, types.Row(types.Bigint, types.UnboundedVarchar)},
		{"row subscript", NewSubscript(row, lit(2)), types.UnboundedVarchar},
		{"row subscript out of range", NewSubscript(row, lit(3)), types.Unknown},
		{"array subscript", NewSubscript(NewReference(types.Array(types.Date), "a"), lit(1)), types.Date},
		{"coalesce", NewCoalesce(x, lit(0)), types.Bigint},
		{"nullif", NewNullIf(x, lit(0)), types.Bigint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, types.Equal(tt.want, tt.expr.DataType()), "got %s", tt.expr.DataType())
		})
	}
}

func TestChildrenOrder(t *testing.T) {
	x, a, b, c, d := ref("x"), lit(1), lit(2), str("a"), str("b")
	def := str("z")

	simple := NewSimpleCase(x, []WhenClause{NewWhenClause(a, c), NewWhenClause(b, d)}, def)
	assert.Equal(t, []Expression{x, a, c, b, d, def}, simple.Children())

	searched := NewSearchedCase([]WhenClause{NewWhenClause(True, c)}, nil)
	assert.Equal(t, []Expression{True, c}, searched.Children())

	in := NewIn(x, a, b)
	assert.Equal(t, []Expression{x, a, b}, in.Children())

	lambda := NewLambda([]string{"p", "q"}, add(ref("p"), ref("q")))
	bind := NewBind([]Expression{x}, lambda)
	assert.Equal(t, []Expression{x, lambda}, bind.Children())

	assert.Empty(t, x.Children())
	assert.Empty(t, a.Children())
}

func TestWithChildren(t *testing.T) {
	x, y := ref("x"), ref("y")

	t.Run("rebuilds same variant", func(t *testing.T) {
		c := cmp(OpLessThan, x, lit(1))
		got := c.WithChildren([]Expression{y, lit(2)})
		require.IsType(t, &Comparison{}, got)
		assert.Equal(t, OpLessThan, got.(*Comparison).Operator)
		assert.Same(t, y, got.(*Comparison).Left)
		assert.Equal(t, "x", c.Left.(*Reference).Name)
	})

	t.Run("case keeps default presence", func(t *testing.T) {
		sc := NewSimpleCase(x, []WhenClause{NewWhenClause(lit(1), str("a"))}, str("b"))
		got := sc.WithChildren([]Expression{y, lit(2), str("c"), str("d")}).(*SimpleCase)
		assert.Same(t, y, got.Operand)
		assert.Equal(t, "d", got.Default.(*Constant).Value)
		requireInvalidArgument(t, func() { sc.WithChildren([]Expression{y, lit(2), str("c")}) })
	})

	t.Run("arity mismatch", func(t *testing.T) {
		requireInvalidArgument(t, func() { NewNot(x).WithChildren(nil) })
		requireInvalidArgument(t, func() { NewBetween(x, lit(1), lit(2)).WithChildren([]Expression{x}) })
	})

	t.Run("bind requires lambda", func(t *testing.T) {
		b := NewBind([]Expression{x}, NewLambda([]string{"p"}, ref("p")))
		requireInvalidArgument(t, func() { b.WithChildren([]Expression{x, y}) })
	})
}

func TestLiteralHelpers(t *testing.T) {
	assert.True(t, IsBoolLiteral(True, true))
	assert.True(t, IsBoolLiteral(Bool(false), false))
	assert.False(t, IsBoolLiteral(Null(types.Boolean), false))
	assert.True(t, IsNullLiteral(Null(types.Bigint)))
	assert.False(t, IsNullLiteral(lit(0)))
}

func TestOperators(t *testing.T) {
	for _, op := range []ComparisonOperator{OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual} {
		assert.Equal(t, op, op.Negate().Negate(), op.String())
		assert.Equal(t, op, op.Flip().Flip(), op.String())
	}
	assert.Equal(t, OpGreaterThan, OpLessThan.Flip())
	assert.Equal(t, OpGreaterThanOrEqual, OpLessThan.Negate())
	assert.Equal(t, OpIsDistinctFrom, OpIsDistinctFrom.Flip())
	assert.Panics(t, func() { OpIsDistinctFrom.Negate() })

	assert.True(t, OpAdd.IsCommutative())
	assert.False(t, OpSubtract.IsCommutative())
	assert.Equal(t, OpOr, OpAnd.Flip())
}
