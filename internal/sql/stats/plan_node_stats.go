package stats

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// PlanNodeStatsEstimate is the output row count of a plan node together
// with the statistics of its symbols. It is never mutated; every operation
// builds a new estimate.
type PlanNodeStatsEstimate struct {
	outputRowCount float64
	symbols        map[string]SymbolStatsEstimate
}

// NewPlanNodeStats creates an estimate. The map is copied.
func NewPlanNodeStats(outputRowCount float64, symbols map[string]SymbolStatsEstimate) PlanNodeStatsEstimate {
	return PlanNodeStatsEstimate{outputRowCount: outputRowCount, symbols: maps.Clone(symbols)}
}

// UnknownStats returns an estimate with unknown row count and no symbols
func UnknownStats() PlanNodeStatsEstimate {
	return PlanNodeStatsEstimate{outputRowCount: math.NaN()}
}

// OutputRowCount is NaN when unknown
func (e PlanNodeStatsEstimate) OutputRowCount() float64 { return e.outputRowCount }

// IsOutputRowCountUnknown reports whether the row count is NaN
func (e PlanNodeStatsEstimate) IsOutputRowCountUnknown() bool {
	return math.IsNaN(e.outputRowCount)
}

// IsUnknown reports whether e carries no information at all
func (e PlanNodeStatsEstimate) IsUnknown() bool {
	return e.IsOutputRowCountUnknown() && len(e.symbols) == 0
}

// SymbolStatistics returns the stats of symbol, unknown when absent
func (e PlanNodeStatsEstimate) SymbolStatistics(symbol string) SymbolStatsEstimate {
	if s, ok := e.symbols[symbol]; ok {
		return s
	}
	return UnknownSymbolStats()
}

// SymbolsWithKnownStatistics returns the symbol names in sorted order
func (e PlanNodeStatsEstimate) SymbolsWithKnownStatistics() []string {
	return slices.Sorted(maps.Keys(e.symbols))
}

// MapOutputRowCount returns e with its row count replaced by f(rowCount)
func (e PlanNodeStatsEstimate) MapOutputRowCount(f func(float64) float64) PlanNodeStatsEstimate {
	return BuildFrom(e).SetOutputRowCount(f(e.outputRowCount)).Build()
}

// MapSymbolStatistics returns e with the stats of symbol replaced by f(stats)
func (e PlanNodeStatsEstimate) MapSymbolStatistics(symbol string, f func(SymbolStatsEstimate) SymbolStatsEstimate) PlanNodeStatsEstimate {
	return BuildFrom(e).AddSymbolStatistics(symbol, f(e.SymbolStatistics(symbol))).Build()
}

// Equal compares row counts and symbol stats, NaN equal to NaN
func (e PlanNodeStatsEstimate) Equal(other PlanNodeStatsEstimate) bool {
	if !sameFloat(e.outputRowCount, other.outputRowCount) || len(e.symbols) != len(other.symbols) {
		return false
	}
	for k, v := range e.symbols {
		o, ok := other.symbols[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

func (e PlanNodeStatsEstimate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%v", e.outputRowCount)
	for _, name := range e.SymbolsWithKnownStatistics() {
		fmt.Fprintf(&b, " %s=%s", name, e.symbols[name])
	}
	return b.String()
}

// Builder assembles a PlanNodeStatsEstimate
type Builder struct {
	outputRowCount float64
	symbols        map[string]SymbolStatsEstimate
}

// NewBuilder starts from an unknown row count and no symbols
func NewBuilder() *Builder {
	return &Builder{outputRowCount: math.NaN(), symbols: make(map[string]SymbolStatsEstimate)}
}

// BuildFrom starts from a copy of e
func BuildFrom(e PlanNodeStatsEstimate) *Builder {
	symbols := maps.Clone(e.symbols)
	if symbols == nil {
		symbols = make(map[string]SymbolStatsEstimate)
	}
	return &Builder{outputRowCount: e.outputRowCount, symbols: symbols}
}

func (b *Builder) SetOutputRowCount(rows float64) *Builder {
	b.outputRowCount = rows
	return b
}

func (b *Builder) AddSymbolStatistics(symbol string, s SymbolStatsEstimate) *Builder {
	b.symbols[symbol] = s
	return b
}

func (b *Builder) RemoveSymbolStatistics(symbol string) *Builder {
	delete(b.symbols, symbol)
	return b
}

func (b *Builder) Build() PlanNodeStatsEstimate {
	return PlanNodeStatsEstimate{outputRowCount: b.outputRowCount, symbols: maps.Clone(b.symbols)}
}
