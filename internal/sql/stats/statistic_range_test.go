package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func rng(low, high, distinct float64) StatisticRange {
	return StatisticRange{Low: low, High: high, DistinctValues: distinct}
}

func TestOverlapPercentWith(t *testing.T) {
	tests := []struct {
		name  string
		r     StatisticRange
		other StatisticRange
		want  float64
	}{
		{"empty", rng(0, 10, 10), EmptyRange(), 0},
		{"same finite range", rng(0, 10, 10), rng(0, 10, 10), 1},
		{"half", rng(0, 10, 10), rng(5, 15, 10), 0.5},
		{"finite inside infinite", rng(0, 10, 10), rng(-inf, inf, nan), 1},
		{"infinite over finite", rng(-inf, inf, nan), rng(0, 10, 10), 0.25},
		{"infinite unknown distinct", rng(-inf, inf, nan), rng(-inf, inf, nan), 0.5},
		{"infinite known distinct", rng(-inf, inf, 10), rng(-inf, inf, 2), 0.2},
		{"single point", rng(0, 10, 10), rng(5, 5, 1), 0.1},
		{"disjoint", rng(0, 1, 2), rng(5, 6, 3), 0},
		{"no distinct values", rng(0, 10, 0), rng(0, 10, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.r.OverlapPercentWith(tt.other), 1e-9)
		})
	}
}

func TestStatisticRangeIntersect(t *testing.T) {
	got := rng(0, 10, 10).Intersect(rng(5, 15, 10))
	if diff := cmp.Diff(rng(5, 10, 5), got, approx); diff != "" {
		t.Errorf("intersect mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, rng(0, 1, 2).Intersect(rng(5, 6, 3)).IsEmpty())
}

func TestStatisticRangeAdd(t *testing.T) {
	tests := []struct {
		name string
		got  StatisticRange
		want StatisticRange
	}{
		{"sum", rng(0, 1, 2).AddAndSumDistinctValues(rng(5, 6, 3)), rng(0, 6, 5)},
		{"max", rng(0, 1, 2).AddAndMaxDistinctValues(rng(5, 6, 3)), rng(0, 6, 3)},
		{"collapse", rng(0, 10, 10).AddAndCollapseDistinctValues(rng(5, 15, 10)), rng(0, 15, 15)},
		{"empty left", EmptyRange().AddAndSumDistinctValues(rng(5, 6, 3)), rng(5, 6, 3)},
		{"empty right", rng(0, 1, 2).AddAndSumDistinctValues(EmptyRange()), rng(0, 1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got, approx); diff != "" {
				t.Errorf("range mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
