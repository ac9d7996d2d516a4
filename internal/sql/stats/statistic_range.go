package stats

import "math"

const (
	// overlap assumed between an infinite range and a finite one
	infiniteToFiniteRangeIntersectOverlapFactor = 0.25
	// overlap assumed between two infinite ranges
	infiniteToInfiniteRangeIntersectOverlapFactor = 0.5
)

// StatisticRange is a value interval with the number of distinct values it
// holds, assuming a uniform distribution. Low and High are both NaN for the
// empty range.
type StatisticRange struct {
	Low            float64
	High           float64
	DistinctValues float64
}

// EmptyRange holds no values
func EmptyRange() StatisticRange {
	return StatisticRange{Low: math.NaN(), High: math.NaN(), DistinctValues: 0}
}

func (r StatisticRange) Length() float64 { return r.High - r.Low }

func (r StatisticRange) IsEmpty() bool {
	return math.IsNaN(r.Low) && math.IsNaN(r.High)
}

func (r StatisticRange) equal(other StatisticRange) bool {
	return sameFloat(r.Low, other.Low) && sameFloat(r.High, other.High) && sameFloat(r.DistinctValues, other.DistinctValues)
}

// OverlapPercentWith returns the fraction of r covered by other
func (r StatisticRange) OverlapPercentWith(other StatisticRange) float64 {
	// zero rather than NaN keeps row counts well defined
	if r.IsEmpty() || other.IsEmpty() || r.DistinctValues == 0 || other.DistinctValues == 0 {
		return 0
	}
	if r.equal(other) && !math.IsInf(r.Length(), 0) {
		return 1
	}

	lengthOfIntersect := math.Min(r.High, other.High) - math.Max(r.Low, other.Low)
	if math.IsInf(lengthOfIntersect, 0) {
		if isFinite(r.DistinctValues) && isFinite(other.DistinctValues) {
			return math.Min(other.DistinctValues/r.DistinctValues, 1)
		}
		return infiniteToInfiniteRangeIntersectOverlapFactor
	}
	if lengthOfIntersect == 0 {
		return 1 / math.Max(r.DistinctValues, 1)
	}
	if lengthOfIntersect < 0 {
		return 0
	}
	if math.IsInf(r.Length(), 0) {
		return infiniteToFiniteRangeIntersectOverlapFactor
	}
	if lengthOfIntersect > 0 {
		return lengthOfIntersect / r.Length()
	}
	return math.NaN()
}

func (r StatisticRange) overlappingDistinctValues(other StatisticRange) float64 {
	overlapLeft := r.OverlapPercentWith(other) * r.DistinctValues
	overlapRight := other.OverlapPercentWith(r) * other.DistinctValues
	minInput := minExcludeNaN(r.DistinctValues, other.DistinctValues)
	return minExcludeNaN(minInput, maxExcludeNaN(overlapLeft, overlapRight))
}

// Intersect returns the common part of both ranges
func (r StatisticRange) Intersect(other StatisticRange) StatisticRange {
	low := math.Max(r.Low, other.Low)
	high := math.Min(r.High, other.High)
	if low <= high {
		return StatisticRange{Low: low, High: high, DistinctValues: r.overlappingDistinctValues(other)}
	}
	return EmptyRange()
}

// AddAndSumDistinctValues spans both ranges, summing distinct counts
func (r StatisticRange) AddAndSumDistinctValues(other StatisticRange) StatisticRange {
	return r.expandWith(r.DistinctValues+other.DistinctValues, other)
}

// AddAndMaxDistinctValues spans both ranges, keeping the larger count
func (r StatisticRange) AddAndMaxDistinctValues(other StatisticRange) StatisticRange {
	return r.expandWith(math.Max(r.DistinctValues, other.DistinctValues), other)
}

// AddAndCollapseDistinctValues spans both ranges, counting the values of
// the overlapping part once
func (r StatisticRange) AddAndCollapseDistinctValues(other StatisticRange) StatisticRange {
	overlapThis := r.OverlapPercentWith(other)
	overlapOther := other.OverlapPercentWith(r)
	maxOverlapping := math.Max(overlapThis*r.DistinctValues, overlapOther*other.DistinctValues)
	distinct := maxOverlapping + (1-overlapThis)*r.DistinctValues + (1-overlapOther)*other.DistinctValues
	return r.expandWith(distinct, other)
}

func (r StatisticRange) expandWith(distinct float64, other StatisticRange) StatisticRange {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return StatisticRange{
		Low:            math.Min(r.Low, other.Low),
		High:           math.Max(r.High, other.High),
		DistinctValues: distinct,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func minExcludeNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Min(a, b)
}

func maxExcludeNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}
