package ir

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"

	"github.com/dshills/QuantaIR/internal/sql/types"
)

func TestFormat(t *testing.T) {
	x, y := ref("x"), ref("y")
	tests := []struct {
		expr Expression
		want string
	}{
		{cmp(OpLessThan, x, lit(3)), "(x < 3)"},
		{NewLogical(OpAnd, cmp(OpEqual, x, y), NewIsNull(y)), "((x = y) AND (y IS NULL))"},
		{NewNot(NewBetween(x, lit(1), lit(5))), "(NOT (x BETWEEN 1 AND 5))"},
		{NewIn(x, lit(1), lit(2)), "(x IN (1, 2))"},
		{cmp(OpIsDistinctFrom, x, Null(types.Bigint)), "(x IS DISTINCT FROM NULL)"},
		{NewCast(x, types.Double, false), "CAST(x AS double)"},
		{NewCast(str("2024-01-01"), types.Date, true), "TRY_CAST('2024-01-01' AS date)"},
		{str("it's"), "'it''s'"},
		{NewReference(types.Bigint, "Order"), `"Order"`},
		{NewConstant(types.Decimal(4, 2), apd.New(1234, -2)), "DECIMAL '12.34'"},
		{NewConstant(types.Date, int64(20077)), "DATE '2024-12-20'"},
		{NewConstant(types.Double, 1.5), "DOUBLE '1.5'"},
		{NewConstant(types.Integer, int64(7)), "integer '7'"},
		{True, "TRUE"},
		{add(x, lit(1)), "(x + 1)"},
		{call("abs", x), "abs(x)"},
		{NewSimpleCase(x, []WhenClause{NewWhenClause(lit(1), str("a"))}, str("b")), "CASE x WHEN 1 THEN 'a' ELSE 'b' END"},
		{NewSearchedCase([]WhenClause{NewWhenClause(NewIsNull(x), lit(0))}, nil), "CASE WHEN (x IS NULL) THEN 0 END"},
		{NewCoalesce(x, y, lit(0)), "COALESCE(x, y, 0)"},
		{NewNullIf(x, lit(0)), "NULLIF(x, 0)"},
		{NewSubscript(NewRow(x, y), lit(1)), "ROW(x, y)[1]"},
		{NewLambda([]string{"a"}, add(ref("a"), lit(1))), "(a) -> (a + 1)"},
		{NewBind([]Expression{x}, NewLambda([]string{"a", "b"}, add(ref("a"), ref("b")))), "BIND(x, (a, b) -> (a + b))"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestFormatRedaction(t *testing.T) {
	e := NewLogical(OpAnd, cmp(OpEqual, ref("name"), str("secret")), NewIsNull(ref("x")))
	assert.Equal(t, "((name = ‹×›) AND (x IS NULL))", string(Format(e).Redact()))
	assert.Equal(t, "((name = 'secret') AND (x IS NULL))", Format(e).StripMarkers())
}
