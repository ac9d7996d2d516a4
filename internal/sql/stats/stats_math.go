package stats

import "math"

// SubtractSubsetStats estimates the rows of superset that are not in subset
func SubtractSubsetStats(superset, subset PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	if superset.IsOutputRowCountUnknown() || subset.IsOutputRowCountUnknown() {
		return UnknownStats()
	}

	supersetRows := superset.OutputRowCount()
	subsetRows := subset.OutputRowCount()
	outputRows := math.Max(supersetRows-subsetRows, 0)
	if outputRows == 0 {
		return zeroStats(superset)
	}

	result := NewBuilder().SetOutputRowCount(outputRows)
	for _, symbol := range superset.SymbolsWithKnownStatistics() {
		sup := superset.SymbolStatistics(symbol)
		sub := subset.SymbolStatistics(symbol)

		supNulls := sup.NullsFraction * supersetRows
		subNulls := sub.NullsFraction * subsetRows
		nulls := math.Max(supNulls-subNulls, 0)

		var distinct float64
		switch {
		case math.IsNaN(sup.DistinctValuesCount) || math.IsNaN(sub.DistinctValuesCount):
			distinct = math.NaN()
		case sup.DistinctValuesCount == 0:
			distinct = 0
		case sub.DistinctValuesCount == 0:
			distinct = sup.DistinctValuesCount
		default:
			supPerValue := (supersetRows - supNulls) / sup.DistinctValuesCount
			subPerValue := (subsetRows - subNulls) / sub.DistinctValuesCount
			if supPerValue <= subPerValue {
				distinct = math.Max(sup.DistinctValuesCount-sub.DistinctValuesCount, 0)
			} else {
				distinct = sup.DistinctValuesCount
			}
		}

		result.AddSymbolStatistics(symbol, SymbolStatsEstimate{
			LowValue:            sup.LowValue,
			HighValue:           sup.HighValue,
			NullsFraction:       math.Min(nulls, outputRows) / outputRows,
			AverageRowSize:      sup.AverageRowSize,
			DistinctValuesCount: distinct,
		})
	}
	return result.Build()
}

// CapStats bounds the row count, ranges, distinct and null counts of stats
// by those of limit
func CapStats(stats, limit PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	if stats.IsOutputRowCountUnknown() || limit.IsOutputRowCountUnknown() {
		return UnknownStats()
	}

	rows := math.Min(stats.OutputRowCount(), limit.OutputRowCount())
	result := NewBuilder().SetOutputRowCount(rows)
	for _, symbol := range stats.SymbolsWithKnownStatistics() {
		s := stats.SymbolStatistics(symbol)
		c := limit.SymbolStatistics(symbol)

		nulls := math.Min(stats.OutputRowCount()*s.NullsFraction, limit.OutputRowCount()*c.NullsFraction)
		nullsFraction := 1.0
		if rows != 0 {
			nullsFraction = nulls / rows
		}
		result.AddSymbolStatistics(symbol, SymbolStatsEstimate{
			LowValue:            math.Max(s.LowValue, c.LowValue),
			HighValue:           math.Min(s.HighValue, c.HighValue),
			NullsFraction:       nullsFraction,
			AverageRowSize:      s.AverageRowSize,
			DistinctValuesCount: math.Min(s.DistinctValuesCount, c.DistinctValuesCount),
		})
	}
	return result.Build()
}

// AddStatsAndSumDistinctValues estimates the union of two disjoint row sets
func AddStatsAndSumDistinctValues(left, right PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	return addStats(left, right, StatisticRange.AddAndSumDistinctValues)
}

// AddStatsAndMaxDistinctValues estimates the union of two row sets drawn
// from the same values
func AddStatsAndMaxDistinctValues(left, right PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	return addStats(left, right, StatisticRange.AddAndMaxDistinctValues)
}

// AddStatsAndCollapseDistinctValues estimates the union of two row sets
// whose overlapping ranges share values
func AddStatsAndCollapseDistinctValues(left, right PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	return addStats(left, right, StatisticRange.AddAndCollapseDistinctValues)
}

func addStats(left, right PlanNodeStatsEstimate, add func(StatisticRange, StatisticRange) StatisticRange) PlanNodeStatsEstimate {
	if left.IsOutputRowCountUnknown() || right.IsOutputRowCountUnknown() {
		return UnknownStats()
	}

	rows := left.OutputRowCount() + right.OutputRowCount()
	result := NewBuilder().SetOutputRowCount(rows)
	seen := make(map[string]bool)
	for _, symbol := range append(left.SymbolsWithKnownStatistics(), right.SymbolsWithKnownStatistics()...) {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		s := ZeroSymbolStats()
		if rows > 0 {
			s = addColumnStats(left.SymbolStatistics(symbol), left.OutputRowCount(),
				right.SymbolStatistics(symbol), right.OutputRowCount(), rows, add)
		}
		result.AddSymbolStatistics(symbol, s)
	}
	return result.Build()
}

func addColumnStats(left SymbolStatsEstimate, leftRows float64, right SymbolStatsEstimate, rightRows, rows float64,
	add func(StatisticRange, StatisticRange) StatisticRange) SymbolStatsEstimate {
	sum := add(left.StatisticRange(), right.StatisticRange())

	leftNulls := left.NullsFraction * leftRows
	rightNulls := right.NullsFraction * rightRows
	leftSize := (leftRows - leftNulls) * left.AverageRowSize
	rightSize := (rightRows - rightNulls) * right.AverageRowSize
	nullsFraction := (leftNulls + rightNulls) / rows
	nonNulls := rows * (1 - nullsFraction)

	averageRowSize := 0.0
	if nonNulls != 0 {
		averageRowSize = (leftSize + rightSize) / nonNulls
	}
	return SymbolStatsEstimate{
		NullsFraction:  nullsFraction,
		AverageRowSize: averageRowSize,
	}.WithRange(sum)
}

// zeroStats has no rows and every known symbol zeroed
func zeroStats(e PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	result := NewBuilder().SetOutputRowCount(0)
	for _, symbol := range e.SymbolsWithKnownStatistics() {
		result.AddSymbolStatistics(symbol, ZeroSymbolStats())
	}
	return result.Build()
}
