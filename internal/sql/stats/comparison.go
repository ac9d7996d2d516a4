package stats

import (
	"math"

	"github.com/dshills/QuantaIR/internal/sql/ir"
)

// EstimateExpressionToLiteralComparison estimates `expr op literal` where
// the expression has stats exprStats. symbol names the expression when it
// is a plain reference and is empty otherwise. A NaN literal means the
// literal has no numeric representation.
func EstimateExpressionToLiteralComparison(input PlanNodeStatsEstimate, exprStats SymbolStatsEstimate, symbol string,
	literal float64, op ir.ComparisonOperator) PlanNodeStatsEstimate {
	switch op {
	case ir.OpEqual:
		return estimateFilterRange(input, exprStats, symbol, literalRange(literal))
	case ir.OpNotEqual:
		return estimateNotEqualToLiteral(input, exprStats, symbol, literal)
	case ir.OpLessThan, ir.OpLessThanOrEqual:
		high := literal
		if math.IsNaN(high) {
			high = math.Inf(1)
		}
		return estimateFilterRange(input, exprStats, symbol, StatisticRange{Low: math.Inf(-1), High: high, DistinctValues: math.NaN()})
	case ir.OpGreaterThan, ir.OpGreaterThanOrEqual:
		low := literal
		if math.IsNaN(low) {
			low = math.Inf(-1)
		}
		return estimateFilterRange(input, exprStats, symbol, StatisticRange{Low: low, High: math.Inf(1), DistinctValues: math.NaN()})
	}
	return UnknownStats()
}

func literalRange(literal float64) StatisticRange {
	if math.IsNaN(literal) {
		return StatisticRange{Low: math.Inf(-1), High: math.Inf(1), DistinctValues: 1}
	}
	return StatisticRange{Low: literal, High: literal, DistinctValues: 1}
}

// estimateFilterRange keeps the rows whose value lies in filter, assuming
// values are spread uniformly over the expression's range
func estimateFilterRange(input PlanNodeStatsEstimate, exprStats SymbolStatsEstimate, symbol string, filter StatisticRange) PlanNodeStatsEstimate {
	exprRange := exprStats.StatisticRange()
	intersect := exprRange.Intersect(filter)
	filterFactor := exprRange.OverlapPercentWith(intersect)

	estimate := input.MapOutputRowCount(func(rows float64) float64 {
		return filterFactor * (1 - exprStats.NullsFraction) * rows
	})
	if symbol != "" {
		estimate = estimate.MapSymbolStatistics(symbol, func(SymbolStatsEstimate) SymbolStatsEstimate {
			return SymbolStatsEstimate{
				NullsFraction:  0,
				AverageRowSize: exprStats.AverageRowSize,
			}.WithRange(intersect)
		})
	}
	return estimate
}

func estimateNotEqualToLiteral(input PlanNodeStatsEstimate, exprStats SymbolStatsEstimate, symbol string, literal float64) PlanNodeStatsEstimate {
	exprRange := exprStats.StatisticRange()
	intersect := exprRange.Intersect(literalRange(literal))
	filterFactor := 1 - exprRange.OverlapPercentWith(intersect)

	estimate := input.MapOutputRowCount(func(rows float64) float64 {
		return filterFactor * (1 - exprStats.NullsFraction) * rows
	})
	if symbol != "" {
		estimate = estimate.MapSymbolStatistics(symbol, func(SymbolStatsEstimate) SymbolStatsEstimate {
			return exprStats.
				WithNullsFraction(0).
				WithDistinctValuesCount(math.Max(exprStats.DistinctValuesCount-1, 0))
		})
	}
	return estimate
}

// EstimateExpressionToExpressionComparison estimates `left op right` for
// two non constant expressions. Only = and <> are estimated.
func EstimateExpressionToExpressionComparison(input PlanNodeStatsEstimate, leftStats SymbolStatsEstimate, leftSymbol string,
	rightStats SymbolStatsEstimate, rightSymbol string, op ir.ComparisonOperator) PlanNodeStatsEstimate {
	switch op {
	case ir.OpEqual:
		return estimateEqualToExpression(input, leftStats, leftSymbol, rightStats, rightSymbol)
	case ir.OpNotEqual:
		return estimateNotEqualToExpression(input, leftStats, leftSymbol, rightStats, rightSymbol)
	}
	return UnknownStats()
}

func estimateEqualToExpression(input PlanNodeStatsEstimate, leftStats SymbolStatsEstimate, leftSymbol string,
	rightStats SymbolStatsEstimate, rightSymbol string) PlanNodeStatsEstimate {
	if math.IsNaN(leftStats.DistinctValuesCount) || math.IsNaN(rightStats.DistinctValuesCount) {
		return UnknownStats()
	}

	leftRange := leftStats.StatisticRange()
	rightRange := rightStats.StatisticRange()
	intersect := leftRange.Intersect(rightRange)

	nullsFilterFactor := (1 - leftStats.NullsFraction) * (1 - rightStats.NullsFraction)
	filterFactor := 1 / math.Max(leftRange.DistinctValues, rightRange.DistinctValues)
	retained := math.Min(leftRange.DistinctValues, rightRange.DistinctValues)

	estimate := BuildFrom(input).SetOutputRowCount(input.OutputRowCount() * nullsFilterFactor * filterFactor)
	equality := SymbolStatsEstimate{
		AverageRowSize: averageExcludingNaNs(leftStats.AverageRowSize, rightStats.AverageRowSize),
		NullsFraction:  0,
	}.WithRange(intersect).WithDistinctValuesCount(retained)

	if leftSymbol != "" {
		estimate.AddSymbolStatistics(leftSymbol, equality)
	}
	if rightSymbol != "" {
		estimate.AddSymbolStatistics(rightSymbol, equality)
	}
	return estimate.Build()
}

func estimateNotEqualToExpression(input PlanNodeStatsEstimate, leftStats SymbolStatsEstimate, leftSymbol string,
	rightStats SymbolStatsEstimate, rightSymbol string) PlanNodeStatsEstimate {
	nullsFilterFactor := (1 - leftStats.NullsFraction) * (1 - rightStats.NullsFraction)
	nonNull := input.MapOutputRowCount(func(rows float64) float64 { return rows * nullsFilterFactor })
	leftNonNull := leftStats.WithNullsFraction(0)
	rightNonNull := rightStats.WithNullsFraction(0)

	equality := estimateEqualToExpression(nonNull, leftNonNull, leftSymbol, rightNonNull, rightSymbol)
	if equality.IsOutputRowCountUnknown() {
		return UnknownStats()
	}

	equalityFactor := equality.OutputRowCount() / nonNull.OutputRowCount()
	if !isFinite(equalityFactor) {
		equalityFactor = 0
	}
	result := BuildFrom(nonNull).SetOutputRowCount(nonNull.OutputRowCount() * (1 - equalityFactor))
	if leftSymbol != "" {
		result.AddSymbolStatistics(leftSymbol, leftNonNull)
	}
	if rightSymbol != "" {
		result.AddSymbolStatistics(rightSymbol, rightNonNull)
	}
	return result.Build()
}

func averageExcludingNaNs(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return (a + b) / 2
}
