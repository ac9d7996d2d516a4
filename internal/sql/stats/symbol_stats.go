// Package stats estimates how filter predicates change the row count and
// per symbol statistics of their input.
package stats

import (
	"fmt"
	"math"
)

// SymbolStatsEstimate holds the statistics of one symbol. Any field may be
// NaN, meaning unknown. Low and high may be infinite.
type SymbolStatsEstimate struct {
	LowValue            float64
	HighValue           float64
	NullsFraction       float64
	AverageRowSize      float64
	DistinctValuesCount float64
}

// UnknownSymbolStats returns stats that carry no information
func UnknownSymbolStats() SymbolStatsEstimate {
	return SymbolStatsEstimate{
		LowValue:            math.Inf(-1),
		HighValue:           math.Inf(1),
		NullsFraction:       math.NaN(),
		AverageRowSize:      math.NaN(),
		DistinctValuesCount: math.NaN(),
	}
}

// ZeroSymbolStats returns stats of a symbol that is null on every row
func ZeroSymbolStats() SymbolStatsEstimate {
	return SymbolStatsEstimate{
		LowValue:            math.NaN(),
		HighValue:           math.NaN(),
		NullsFraction:       1,
		AverageRowSize:      0,
		DistinctValuesCount: 0,
	}
}

// nullStats describes a NULL constant
func nullStats() SymbolStatsEstimate {
	s := UnknownSymbolStats()
	s.NullsFraction = 1
	s.DistinctValuesCount = 0
	return s
}

// sameFloat treats two NaNs as equal
func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Equal compares field by field, NaN equal to NaN
func (s SymbolStatsEstimate) Equal(other SymbolStatsEstimate) bool {
	return sameFloat(s.LowValue, other.LowValue) &&
		sameFloat(s.HighValue, other.HighValue) &&
		sameFloat(s.NullsFraction, other.NullsFraction) &&
		sameFloat(s.AverageRowSize, other.AverageRowSize) &&
		sameFloat(s.DistinctValuesCount, other.DistinctValuesCount)
}

// IsUnknown reports whether s carries no information
func (s SymbolStatsEstimate) IsUnknown() bool {
	return s.Equal(UnknownSymbolStats())
}

// IsSingleValue reports whether s describes exactly one finite value
func (s SymbolStatsEstimate) IsSingleValue() bool {
	return s.DistinctValuesCount == 1 && sameFloat(s.LowValue, s.HighValue) && !math.IsInf(s.LowValue, 0)
}

// ValuesFraction is the fraction of non-null rows
func (s SymbolStatsEstimate) ValuesFraction() float64 {
	return 1 - s.NullsFraction
}

// StatisticRange returns the value range of s
func (s SymbolStatsEstimate) StatisticRange() StatisticRange {
	return StatisticRange{Low: s.LowValue, High: s.HighValue, DistinctValues: s.DistinctValuesCount}
}

// WithRange replaces low, high and distinct count by those of r
func (s SymbolStatsEstimate) WithRange(r StatisticRange) SymbolStatsEstimate {
	s.LowValue, s.HighValue, s.DistinctValuesCount = r.Low, r.High, r.DistinctValues
	return s
}

// WithNullsFraction returns a copy of s with the given nulls fraction
func (s SymbolStatsEstimate) WithNullsFraction(f float64) SymbolStatsEstimate {
	s.NullsFraction = f
	return s
}

// WithDistinctValuesCount returns a copy of s with the given distinct count
func (s SymbolStatsEstimate) WithDistinctValuesCount(n float64) SymbolStatsEstimate {
	s.DistinctValuesCount = n
	return s
}

func (s SymbolStatsEstimate) String() string {
	return fmt.Sprintf("[%v-%v, nulls=%v, ndv=%v, rowSize=%v]",
		s.LowValue, s.HighValue, s.NullsFraction, s.DistinctValuesCount, s.AverageRowSize)
}
