package stats

import (
	"math"
	"slices"
)

// Selectivity estimates the fraction of input rows that match a predicate.
type Selectivity float64

// SelectivityOf returns the fraction of input rows kept by output. It is
// NaN when either row count is unknown and 0 for an empty input.
func SelectivityOf(input, output PlanNodeStatsEstimate) Selectivity {
	if input.OutputRowCount() == 0 {
		return 0
	}
	return Selectivity(output.OutputRowCount() / input.OutputRowCount())
}

// CombineConjunctSelectivity combines the selectivities of the conjuncts
// of an AND. The most selective conjunct applies in full; each further
// selectivity s contributes s^independenceFactor, so a factor of 1 treats
// the conjuncts as independent and 0 as fully correlated. NaN entries are
// skipped; the result is NaN when nothing is left.
func CombineConjunctSelectivity(independenceFactor float64, selectivities ...Selectivity) Selectivity {
	known := make([]Selectivity, 0, len(selectivities))
	for _, s := range selectivities {
		if math.IsNaN(float64(s)) {
			continue
		}
		if s == 0 {
			return 0
		}
		known = append(known, s)
	}
	if len(known) == 0 {
		return Selectivity(math.NaN())
	}

	slices.Sort(known)
	result := known[0]
	for _, s := range known[1:] {
		result *= Selectivity(math.Pow(float64(s), independenceFactor))
	}
	return result
}
