package stats

import (
	"log/slog"
	"math"

	"github.com/dshills/QuantaIR/internal/config"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/planner"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// FilterStatsCalculator estimates the statistics of the rows of an input
// that satisfy a predicate.
type FilterStatsCalculator struct {
	interpreter *interpreter.Interpreter
	scalar      *ScalarStatsCalculator
	normalizer  StatsNormalizer
	simplifier  *planner.Optimizer
	config      config.PlannerConfig
	logger      log.Logger
}

// NewFilterStatsCalculator creates a calculator. A nil logger uses the
// default logger.
func NewFilterStatsCalculator(in *interpreter.Interpreter, cfg config.PlannerConfig, logger log.Logger) *FilterStatsCalculator {
	logger = log.OrDefault(logger)
	return &FilterStatsCalculator{
		interpreter: in,
		scalar:      NewScalarStatsCalculator(in),
		simplifier:  planner.NewOptimizerWithRules(logger, planner.NewConstantFolding(in), &planner.SimplifyPredicates{}),
		config:      cfg,
		logger:      logger,
	}
}

// FilterStats returns the estimated statistics of the rows of input that
// satisfy predicate. Predicates it cannot estimate yield unknown stats, or
// the unknown filter coefficient when the default filter factor is
// enabled. Errors only come from malformed predicates.
func (c *FilterStatsCalculator) FilterStats(input PlanNodeStatsEstimate, predicate ir.Expression, symbols planner.SymbolTypes) (result PlanNodeStatsEstimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = UnknownStats(), errors.Recover(r)
		}
	}()

	simplified, err := c.simplifier.Optimize(symbols, predicate)
	if err != nil {
		return UnknownStats(), err
	}
	v := &filterVisitor{calc: c, input: input, symbols: symbols}
	result = v.process(simplified)
	if result.IsOutputRowCountUnknown() && c.config.DefaultFilterFactorEnabled {
		result = c.FilterStatsForUnknownExpression(input)
	}

	if c.logger.Enabled(slog.LevelDebug) {
		c.logger.Debug("filter stats",
			log.Redactable("predicate", predicate),
			log.Float64("input_rows", input.OutputRowCount()),
			log.Float64("output_rows", result.OutputRowCount()))
	}
	return result, nil
}

// FilterStatsForUnknownExpression scales the input by the unknown filter
// coefficient when the default filter factor is enabled, and is unknown
// otherwise.
func (c *FilterStatsCalculator) FilterStatsForUnknownExpression(input PlanNodeStatsEstimate) PlanNodeStatsEstimate {
	if !c.config.DefaultFilterFactorEnabled {
		return UnknownStats()
	}
	return input.MapOutputRowCount(func(rows float64) float64 {
		return rows * c.config.UnknownFilterCoefficient
	})
}

type filterVisitor struct {
	calc    *FilterStatsCalculator
	input   PlanNodeStatsEstimate
	symbols planner.SymbolTypes
}

func (v *filterVisitor) over(input PlanNodeStatsEstimate) *filterVisitor {
	return &filterVisitor{calc: v.calc, input: input, symbols: v.symbols}
}

func (v *filterVisitor) process(e ir.Expression) PlanNodeStatsEstimate {
	output := v.input
	if v.input.OutputRowCount() != 0 && !v.input.IsOutputRowCountUnknown() {
		output = v.visit(e)
	}
	return v.calc.normalizer.Normalize(output, v.symbols)
}

func (v *filterVisitor) visit(e ir.Expression) PlanNodeStatsEstimate {
	switch n := e.(type) {
	case *ir.Constant:
		if ir.IsBoolLiteral(n, true) {
			return v.input
		}
		if n.Value == nil || ir.IsBoolLiteral(n, false) {
			return zeroStats(v.input)
		}
	case *ir.Reference:
		if n.Type.Kind() == types.KindBoolean {
			return v.process(ir.NewComparison(ir.OpEqual, n, ir.True))
		}
	case *ir.Not:
		return v.not(n)
	case *ir.Logical:
		if n.Operator == ir.OpAnd {
			return v.and(n.Terms)
		}
		return v.or(n.Terms)
	case *ir.IsNull:
		return v.isNull(n)
	case *ir.Between:
		return v.between(n)
	case *ir.In:
		return v.in(n)
	case *ir.Comparison:
		return v.comparison(n)
	}
	return UnknownStats()
}

func (v *filterVisitor) expressionStats(e ir.Expression) (SymbolStatsEstimate, string) {
	if ref, ok := e.(*ir.Reference); ok {
		return v.input.SymbolStatistics(ref.Name), ref.Name
	}
	return v.calc.scalar.Calculate(e, v.input), ""
}

func (v *filterVisitor) not(n *ir.Not) PlanNodeStatsEstimate {
	if isNull, ok := n.Value.(*ir.IsNull); ok {
		if ref, ok := isNull.Value.(*ir.Reference); ok {
			s := v.input.SymbolStatistics(ref.Name)
			return BuildFrom(v.input).
				SetOutputRowCount(v.input.OutputRowCount() * (1 - s.NullsFraction)).
				AddSymbolStatistics(ref.Name, s.WithNullsFraction(0)).
				Build()
		}
	}
	return SubtractSubsetStats(v.input, v.process(n.Value))
}

func (v *filterVisitor) isNull(n *ir.IsNull) PlanNodeStatsEstimate {
	s, symbol := v.expressionStats(n.Value)
	if math.IsNaN(s.NullsFraction) {
		return UnknownStats()
	}
	result := BuildFrom(v.input).SetOutputRowCount(v.input.OutputRowCount() * s.NullsFraction)
	if symbol != "" {
		result.AddSymbolStatistics(symbol, ZeroSymbolStats())
	}
	return result.Build()
}

func (v *filterVisitor) between(n *ir.Between) PlanNodeStatsEstimate {
	valueStats, symbol := v.expressionStats(n.Value)
	if valueStats.IsUnknown() {
		return UnknownStats()
	}
	minStats, _ := v.expressionStats(n.Min)
	maxStats, _ := v.expressionStats(n.Max)
	if !minStats.IsSingleValue() || !maxStats.IsSingleValue() {
		return UnknownStats()
	}
	filter := StatisticRange{Low: minStats.LowValue, High: maxStats.LowValue, DistinctValues: math.NaN()}
	return estimateFilterRange(v.input, valueStats, symbol, filter)
}

func (v *filterVisitor) in(n *ir.In) PlanNodeStatsEstimate {
	ref, ok := n.Value.(*ir.Reference)
	if !ok {
		return UnknownStats()
	}
	valueStats := v.input.SymbolStatistics(ref.Name)
	if valueStats.IsUnknown() {
		return UnknownStats()
	}

	var in PlanNodeStatsEstimate
	seen := ir.NewExpressionSet()
	for i, candidate := range n.ValueList {
		if !seen.Add(candidate) {
			continue
		}
		equal := v.process(ir.NewComparison(ir.OpEqual, ref, candidate))
		if equal.IsOutputRowCountUnknown() {
			return UnknownStats()
		}
		if i == 0 {
			in = equal
		} else {
			in = AddStatsAndSumDistinctValues(in, equal)
		}
	}

	nonNullsBefore := v.input.OutputRowCount() * (1 - valueStats.NullsFraction)
	symbolStats := in.SymbolStatistics(ref.Name)
	return BuildFrom(v.input).
		SetOutputRowCount(math.Min(in.OutputRowCount(), nonNullsBefore)).
		AddSymbolStatistics(ref.Name, symbolStats.WithDistinctValuesCount(
			math.Min(symbolStats.DistinctValuesCount, valueStats.DistinctValuesCount))).
		Build()
}

func (v *filterVisitor) comparison(n *ir.Comparison) PlanNodeStatsEstimate {
	op, left, right := n.Operator, n.Left, n.Right
	leftLiteral := v.calc.interpreter.IsEffectivelyLiteral(left)
	rightLiteral := v.calc.interpreter.IsEffectivelyLiteral(right)
	if leftLiteral && rightLiteral {
		return UnknownStats()
	}

	_, leftIsRef := left.(*ir.Reference)
	_, rightIsRef := right.(*ir.Reference)
	// symbols and literals go to the right
	if (!leftIsRef && rightIsRef) || leftLiteral {
		return v.process(ir.NewComparison(op.Flip(), right, left))
	}

	if leftIsRef && ir.Equal(left, right) {
		switch op {
		case ir.OpEqual, ir.OpLessThanOrEqual, ir.OpGreaterThanOrEqual:
			return v.process(ir.NewNot(ir.NewIsNull(left)))
		}
		return zeroStats(v.input)
	}

	leftStats, leftSymbol := v.expressionStats(left)
	if rightLiteral {
		value, err := v.calc.interpreter.EvaluateConstant(right)
		if err != nil {
			return UnknownStats()
		}
		if value == nil {
			return v.input.MapOutputRowCount(func(float64) float64 { return 0 })
		}
		literal, ok := interpreter.ToFloat64(value, right.DataType())
		if !ok {
			literal = math.NaN()
		} else if math.IsNaN(literal) && op != ir.OpNotEqual && op != ir.OpIsDistinctFrom {
			// nothing compares equal or ordered to NaN
			return zeroStats(v.input)
		}
		return EstimateExpressionToLiteralComparison(v.input, leftStats, leftSymbol, literal, op)
	}

	rightStats, rightSymbol := v.expressionStats(right)
	if rightStats.IsSingleValue() {
		return EstimateExpressionToLiteralComparison(v.input, leftStats, leftSymbol, rightStats.LowValue, op)
	}
	return EstimateExpressionToExpressionComparison(v.input, leftStats, leftSymbol, rightStats, rightSymbol, op)
}

func (v *filterVisitor) or(terms []ir.Expression) PlanNodeStatsEstimate {
	var result PlanNodeStatsEstimate
	seen := ir.NewExpressionSet()
	first := true
	for _, term := range terms {
		if ir.IsDeterministic(term) && !seen.Add(term) {
			continue
		}
		current := v.process(term)
		if current.IsOutputRowCountUnknown() {
			return UnknownStats()
		}
		if first {
			result, first = current, false
			continue
		}
		result = CapStats(AddStatsAndSumDistinctValues(result, current), v.input)
	}
	return result
}

func (v *filterVisitor) and(terms []ir.Expression) PlanNodeStatsEstimate {
	factor := v.calc.config.FilterConjunctionIndependenceFactor
	groups := correlatedGroups(terms, factor)

	estimates := make([]PlanNodeStatsEstimate, len(groups))
	selectivities := make([]Selectivity, len(groups))
	for i, group := range groups {
		// terms of a group apply one after the other; a term that cannot
		// be estimated leaves the running stats as they are
		combined := UnknownStats()
		for _, term := range group {
			var estimate PlanNodeStatsEstimate
			if combined.IsOutputRowCountUnknown() {
				estimate = v.process(term)
			} else {
				estimate = v.over(combined).process(term)
			}
			if !estimate.IsOutputRowCountUnknown() {
				combined = estimate
			}
		}
		estimates[i] = combined
		selectivities[i] = SelectivityOf(v.input, combined)
	}

	selectivity := CombineConjunctSelectivity(factor, selectivities...)
	if math.IsNaN(float64(selectivity)) {
		return UnknownStats()
	}
	rows := v.input.OutputRowCount() * float64(selectivity)
	if len(groups) == 1 {
		return BuildFrom(estimates[0]).SetOutputRowCount(rows).Build()
	}

	result := BuildFrom(v.input).SetOutputRowCount(rows)
	for i, group := range groups {
		if estimates[i].IsOutputRowCountUnknown() {
			continue
		}
		for _, term := range group {
			for _, name := range ir.ReferenceNames(term) {
				if s, ok := estimates[i].symbols[name]; ok {
					result.AddSymbolStatistics(name, s)
				} else {
					result.RemoveSymbolStatistics(name)
				}
			}
		}
	}
	return result.Build()
}

// correlatedGroups partitions terms so that terms sharing a symbol, directly
// or through other terms, end up in the same group. Terms without symbols
// form a group of their own. A factor of 1 keeps all terms together.
func correlatedGroups(terms []ir.Expression, factor float64) [][]ir.Expression {
	if factor == 1 {
		return [][]ir.Expression{terms}
	}

	parent := make(map[string]string)
	var find func(string) string
	find = func(s string) string {
		p, ok := parent[s]
		if !ok {
			parent[s] = s
			return s
		}
		if p == s {
			return s
		}
		root := find(p)
		parent[s] = root
		return root
	}

	names := make([][]string, len(terms))
	for i, term := range terms {
		names[i] = ir.ReferenceNames(term)
		if len(names[i]) == 0 {
			continue
		}
		root := find(names[i][0])
		for _, name := range names[i][1:] {
			if r := find(name); r != root {
				parent[r] = root
			}
		}
	}

	var groups [][]ir.Expression
	var constants []ir.Expression
	index := make(map[string]int)
	for i, term := range terms {
		if len(names[i]) == 0 {
			constants = append(constants, term)
			continue
		}
		root := find(names[i][0])
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], term)
	}
	if len(constants) > 0 {
		groups = append(groups, constants)
	}
	return groups
}
