package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/config"
	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/planner"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

var cat = catalog.NewMemoryCatalog()

var symbols = planner.SymbolTypes{
	"x": types.Double,
	"y": types.Double,
	"i": types.Bigint,
	"s": types.UnboundedVarchar,
	"b": types.Boolean,
}

var (
	inf    = math.Inf(1)
	nan    = math.NaN()
	approx = cmp.Options{cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateNaNs()}
)

// input is 1000 rows with
// x in [-10, 10], 40 distinct values, a quarter null
// y in [0, 5], 20 distinct values, half null
func input() PlanNodeStatsEstimate {
	return NewPlanNodeStats(1000, map[string]SymbolStatsEstimate{
		"x": {LowValue: -10, HighValue: 10, DistinctValuesCount: 40, NullsFraction: 0.25, AverageRowSize: 8},
		"y": {LowValue: 0, HighValue: 5, DistinctValuesCount: 20, NullsFraction: 0.5, AverageRowSize: 8},
		"i": {LowValue: 0, HighValue: 100, DistinctValuesCount: 50, NullsFraction: 0, AverageRowSize: 8},
		"s": {LowValue: -inf, HighValue: inf, DistinctValuesCount: 10, NullsFraction: 0.1, AverageRowSize: 12},
		"b": {LowValue: 0, HighValue: 1, DistinctValuesCount: 2, NullsFraction: 0, AverageRowSize: 1},
	})
}

func ref(name string) *ir.Reference { return ir.NewReference(symbols[name], name) }

func lit(v int64) *ir.Constant { return ir.NewConstant(types.Bigint, v) }

func dbl(v float64) *ir.Constant { return ir.NewConstant(types.Double, v) }

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

func calculator(factor float64) *FilterStatsCalculator {
	cfg := *config.DefaultPlannerConfig()
	cfg.FilterConjunctionIndependenceFactor = factor
	return NewFilterStatsCalculator(interpreter.New(nil), cfg, log.NewTextLogger(log.ParseLevel("error")))
}

func assertSymbolStats(t *testing.T, want, got SymbolStatsEstimate) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("symbol stats mismatch (-want +got):\n%s", diff)
	}
}

func assertRows(t *testing.T, want float64, got PlanNodeStatsEstimate) {
	t.Helper()
	if diff := cmp.Diff(want, got.OutputRowCount(), approx); diff != "" {
		t.Errorf("row count mismatch (-want +got):\n%s", diff)
	}
}
