package stats

import (
	"math"

	"github.com/dshills/QuantaIR/internal/sql/planner"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// StatsNormalizer makes symbol statistics consistent with the row count:
// distinct counts never exceed the rows, the non-null rows or the number
// of values a discrete range can hold.
type StatsNormalizer struct{}

// Normalize returns a consistent copy of e. Symbols whose stats become
// unknown are dropped.
func (StatsNormalizer) Normalize(e PlanNodeStatsEstimate, symbols planner.SymbolTypes) PlanNodeStatsEstimate {
	if e.IsOutputRowCountUnknown() {
		return UnknownStats()
	}

	normalized := BuildFrom(e)
	for _, symbol := range e.SymbolsWithKnownStatistics() {
		s := e.SymbolStatistics(symbol)
		var n SymbolStatsEstimate
		if e.OutputRowCount() == 0 {
			n = ZeroSymbolStats()
		} else {
			n = normalizeSymbolStats(s, symbols[symbol], e.OutputRowCount())
		}
		if n.IsUnknown() {
			normalized.RemoveSymbolStatistics(symbol)
			continue
		}
		if !n.Equal(s) {
			normalized.AddSymbolStatistics(symbol, n)
		}
	}
	return normalized.Build()
}

func normalizeSymbolStats(s SymbolStatsEstimate, t types.Type, rows float64) SymbolStatsEstimate {
	if s.IsUnknown() {
		return s
	}

	distinct := s.DistinctValuesCount
	nullsFraction := s.NullsFraction
	if !math.IsNaN(distinct) {
		if byRange := maxDistinctValuesByLowHigh(s, t); distinct > byRange {
			distinct = byRange
		}
		if distinct > rows {
			distinct = rows
		}
		nonNulls := rows * (1 - nullsFraction)
		if distinct > nonNulls {
			difference := distinct - nonNulls
			distinct -= difference / 2
			nonNulls += difference / 2
			nullsFraction = 1 - nonNulls/rows
		}
	}
	if distinct == 0 {
		return ZeroSymbolStats()
	}

	s.DistinctValuesCount = distinct
	s.NullsFraction = nullsFraction
	return s
}

func maxDistinctValuesByLowHigh(s SymbolStatsEstimate, t types.Type) float64 {
	if s.StatisticRange().Length() == 0 {
		return 1
	}
	if t == nil || !isDiscrete(t) {
		return math.NaN()
	}
	length := s.HighValue - s.LowValue
	if math.IsNaN(length) {
		return math.NaN()
	}
	if d, ok := t.(types.DecimalType); ok {
		length *= math.Pow10(d.Scale)
	}
	return math.Floor(length + 1)
}

func isDiscrete(t types.Type) bool {
	switch t.Kind() {
	case types.KindTinyint, types.KindSmallint, types.KindInteger, types.KindBigint,
		types.KindBoolean, types.KindDate, types.KindDecimal:
		return true
	}
	return false
}
