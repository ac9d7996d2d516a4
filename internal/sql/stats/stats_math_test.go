package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubtractSubsetStats(t *testing.T) {
	superset := NewPlanNodeStats(100, map[string]SymbolStatsEstimate{
		"x": {LowValue: 0, HighValue: 10, NullsFraction: 0.1, AverageRowSize: 8, DistinctValuesCount: 10},
	})
	subset := NewPlanNodeStats(30, map[string]SymbolStatsEstimate{
		"x": {LowValue: 0, HighValue: 5, NullsFraction: 0, AverageRowSize: 8, DistinctValuesCount: 5},
	})

	got := SubtractSubsetStats(superset, subset)
	assertRows(t, 70, got)
	assertSymbolStats(t, SymbolStatsEstimate{
		LowValue: 0, HighValue: 10, NullsFraction: 10.0 / 70, AverageRowSize: 8, DistinctValuesCount: 10,
	}, got.SymbolStatistics("x"))

	empty := SubtractSubsetStats(superset, superset)
	assertRows(t, 0, empty)
	assert.True(t, empty.SymbolStatistics("x").Equal(ZeroSymbolStats()))

	assert.True(t, SubtractSubsetStats(superset, UnknownStats()).IsUnknown())
}

func TestCapStats(t *testing.T) {
	stats := NewPlanNodeStats(200, map[string]SymbolStatsEstimate{
		"x": {LowValue: -5, HighValue: 20, NullsFraction: 0.5, AverageRowSize: 8, DistinctValuesCount: 30},
	})
	limit := NewPlanNodeStats(100, map[string]SymbolStatsEstimate{
		"x": {LowValue: 0, HighValue: 10, NullsFraction: 0.2, AverageRowSize: 8, DistinctValuesCount: 10},
	})

	got := CapStats(stats, limit)
	assertRows(t, 100, got)
	assertSymbolStats(t, SymbolStatsEstimate{
		LowValue: 0, HighValue: 10, NullsFraction: 0.2, AverageRowSize: 8, DistinctValuesCount: 10,
	}, got.SymbolStatistics("x"))

	assert.True(t, CapStats(UnknownStats(), limit).IsUnknown())
}

func TestAddStats(t *testing.T) {
	left := NewPlanNodeStats(10, map[string]SymbolStatsEstimate{
		"x": {LowValue: 0, HighValue: 1, NullsFraction: 0, AverageRowSize: 4, DistinctValuesCount: 2},
	})
	right := NewPlanNodeStats(30, map[string]SymbolStatsEstimate{
		"x": {LowValue: 5, HighValue: 6, NullsFraction: 0.5, AverageRowSize: 8, DistinctValuesCount: 3},
	})

	got := AddStatsAndSumDistinctValues(left, right)
	assertRows(t, 40, got)
	assertSymbolStats(t, SymbolStatsEstimate{
		LowValue: 0, HighValue: 6, NullsFraction: 0.375, AverageRowSize: 6.4, DistinctValuesCount: 5,
	}, got.SymbolStatistics("x"))

	assert.Equal(t, 3.0, AddStatsAndMaxDistinctValues(left, right).SymbolStatistics("x").DistinctValuesCount)
	assert.True(t, AddStatsAndSumDistinctValues(left, UnknownStats()).IsUnknown())

	empty := AddStatsAndSumDistinctValues(zeroStats(left), zeroStats(right))
	assertRows(t, 0, empty)
	assert.True(t, empty.SymbolStatistics("x").Equal(ZeroSymbolStats()))
}
