package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/config"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/feature"
	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/planner"
	"github.com/dshills/QuantaIR/internal/sql/stats"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

var symbols = planner.SymbolTypes{
	"x": types.Bigint,
	"d": types.Double,
	"e": types.Double,
	"s": types.UnboundedVarchar,
	"b": types.Boolean,
}

func ref(name string) *ir.Reference { return ir.NewReference(symbols[name], name) }

func lit(v int64) *ir.Constant { return ir.NewConstant(types.Bigint, v) }

func dbl(v float64) *ir.Constant { return ir.NewConstant(types.Double, v) }

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	opts = append([]Option{WithLogger(log.NewTextLogger(slog.LevelError))}, opts...)
	return New(*cfg, catalog.NewMemoryCatalog(), opts...)
}

func TestEnginePasses(t *testing.T) {
	e := newEngine(t)

	expr := ir.NewNot(ir.NewComparison(ir.OpGreaterThan, lit(5), ref("x")))

	pushed, err := e.PushDownNegations(symbols, expr)
	require.NoError(t, err)
	assert.Equal(t, "(5 <= x)", pushed.String())

	canonical, err := e.Canonicalize(symbols, pushed)
	require.NoError(t, err)
	assert.Equal(t, "(x >= 5)", canonical.String())

	equivalent, err := e.AreEquivalent(symbols, pushed, canonical)
	require.NoError(t, err)
	assert.True(t, equivalent)

	optimized, err := e.Optimize(symbols, expr)
	require.NoError(t, err)
	assert.Equal(t, "(x >= 5)", optimized.String())

	typesOf, err := e.GetTypes(symbols, expr)
	require.NoError(t, err)
	assert.Equal(t, types.Boolean, typesOf.TypeOf(expr))
	assert.Equal(t, types.Bigint, typesOf.TypeOf(ref("x")))
}

func TestEngineErrors(t *testing.T) {
	e := newEngine(t)
	unbound := ir.NewNot(ir.NewReference(types.Boolean, "missing"))

	_, err := e.GetTypes(symbols, unbound)
	assert.True(t, errors.IsIllegalState(err))

	_, err = e.Optimize(symbols, unbound)
	assert.True(t, errors.IsIllegalState(err))
}

func TestEngineCombineConjuncts(t *testing.T) {
	e := newEngine(t)
	isNull := ir.NewIsNull(ref("x"))

	got, err := e.CombineConjuncts(ref("b"), ir.True, ir.NewLogical(ir.OpAnd, isNull, ref("b")))
	require.NoError(t, err)
	assert.Equal(t, "(b AND (x IS NULL))", got.String())

	got, err = e.CombineConjuncts()
	require.NoError(t, err)
	assert.True(t, ir.IsBoolLiteral(got, true))
}

func TestEngineOptimizeWithDomains(t *testing.T) {
	e := newEngine(t, WithDomains(map[string]planner.ValueDomain{
		"x": {Type: types.Bigint, Values: []any{int64(1), int64(2)}},
	}))

	got, err := e.Optimize(symbols, ir.NewIn(ref("x"), lit(2), lit(3)))
	require.NoError(t, err)
	assert.Equal(t, "(x = 2)", got.String())

	got, err = e.Optimize(symbols, ir.NewLogical(ir.OpOr, ref("b"), ir.NewIn(ref("x"), lit(3), lit(4))))
	require.NoError(t, err)
	assert.Equal(t, "b", got.String())
}

func TestEngineFeatureFlags(t *testing.T) {
	features := feature.NewManager()
	e := newEngine(t, WithFeatures(features))

	sum, err := e.Catalog().ResolveOperator(ir.OpAdd.OperatorType(), []types.Type{types.Bigint, types.Bigint})
	require.NoError(t, err)
	expr := ir.NewComparison(ir.OpLessThan, ref("x"), ir.NewArithmetic(sum, ir.OpAdd, lit(1), lit(2)))

	features.Disable(feature.ConstantFolding)
	got, err := e.Optimize(symbols, expr)
	require.NoError(t, err)
	assert.Equal(t, "(x < (1 + 2))", got.String())

	features.Enable(feature.ConstantFolding)
	got, err = e.Optimize(symbols, expr)
	require.NoError(t, err)
	assert.Equal(t, "(x < 3)", got.String())
}

func TestEngineFilterStats(t *testing.T) {
	e := newEngine(t)
	input := stats.NewPlanNodeStats(1000, map[string]stats.SymbolStatsEstimate{
		"d": {LowValue: -10, HighValue: 10, DistinctValuesCount: 40, NullsFraction: 0.25, AverageRowSize: 8},
	})

	got, err := e.FilterStats(input, ir.NewComparison(ir.OpLessThan, ref("d"), dbl(3)), symbols)
	require.NoError(t, err)
	assert.InDelta(t, 487.5, got.OutputRowCount(), 1e-9)
	assert.Equal(t, 3.0, got.SymbolStatistics("d").HighValue)

	got, err = e.FilterStats(input, ir.NewIsNull(ref("d")), symbols)
	require.NoError(t, err)
	assert.InDelta(t, 250, got.OutputRowCount(), 1e-9)
}

func TestEngineDefaultFilterFactor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Planner.DefaultFilterFactorEnabled = true
	e := New(*cfg, catalog.NewMemoryCatalog(), WithLogger(log.NewTextLogger(slog.LevelError)))

	got, err := e.FilterStats(stats.NewPlanNodeStats(1000, nil), ir.NewComparison(ir.OpLessThan, ref("d"), ref("e")), symbols)
	require.NoError(t, err)
	assert.InDelta(t, 900, got.OutputRowCount(), 1e-9)
}

func TestEngineCollectors(t *testing.T) {
	e := newEngine(t)

	got, err := e.Optimize(symbols, ir.NewComparison(ir.OpEqual, ref("x"),
		ir.NewCast(ir.NewConstant(types.UnboundedVarchar, "42"), types.Bigint, false)))
	require.NoError(t, err)
	assert.Equal(t, "(x = 42)", got.String())

	collectors := e.Collectors()
	require.Len(t, collectors, 1)
	assert.Equal(t, 3, promtestutil.CollectAndCount(collectors[0]))
	assert.Positive(t, e.Interpreter().Cache().Len())
}

func TestEngineLogsAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newEngine(t, WithLogger(logger))

	_, err := e.Optimize(symbols, ir.NewNot(ir.NewComparison(ir.OpGreaterThan, lit(5), ref("x"))))
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "engine created"))
	assert.True(t, strings.Contains(buf.String(), "rule applied"))
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newEngine(t)
	expr := ir.NewComparison(ir.OpEqual, ref("x"),
		ir.NewCast(ir.NewConstant(types.UnboundedVarchar, "7"), types.Bigint, false))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := e.Optimize(symbols, expr)
			if err == nil {
				results[i] = got.String()
			}
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, "(x = 7)", r)
	}
}
