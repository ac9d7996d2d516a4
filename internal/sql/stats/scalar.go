package stats

import (
	"math"

	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// ScalarStatsCalculator estimates the statistics of a scalar expression
// from the statistics of the symbols it reads.
type ScalarStatsCalculator struct {
	interpreter *interpreter.Interpreter
}

// NewScalarStatsCalculator creates a calculator evaluating constants with in
func NewScalarStatsCalculator(in *interpreter.Interpreter) *ScalarStatsCalculator {
	return &ScalarStatsCalculator{interpreter: in}
}

// Calculate returns the estimated stats of e over input. Expressions it
// cannot reason about have unknown stats.
func (c *ScalarStatsCalculator) Calculate(e ir.Expression, input PlanNodeStatsEstimate) SymbolStatsEstimate {
	switch n := e.(type) {
	case *ir.Reference:
		return input.SymbolStatistics(n.Name)
	case *ir.Constant:
		return constantStats(n.Value, n.Type)
	case *ir.Call:
		if !ir.IsConstant(n) {
			return UnknownSymbolStats()
		}
		v, err := c.interpreter.EvaluateConstant(n)
		if err != nil {
			return UnknownSymbolStats()
		}
		return constantStats(v, n.DataType())
	case *ir.Cast:
		return c.cast(n, input)
	case *ir.Arithmetic:
		return c.arithmetic(n, input)
	case *ir.Coalesce:
		result := c.Calculate(n.Operands[0], input)
		for _, operand := range n.Operands[1:] {
			result = coalesceStats(result, c.Calculate(operand, input), input.OutputRowCount())
		}
		return result
	}
	return UnknownSymbolStats()
}

func constantStats(v any, t types.Type) SymbolStatsEstimate {
	if v == nil {
		return nullStats()
	}
	s := UnknownSymbolStats()
	s.NullsFraction = 0
	s.DistinctValuesCount = 1
	if f, ok := interpreter.ToFloat64(v, t); ok {
		s.LowValue, s.HighValue = f, f
	}
	return s
}

func (c *ScalarStatsCalculator) cast(n *ir.Cast, input PlanNodeStatsEstimate) SymbolStatsEstimate {
	source := c.Calculate(n.Value, input)
	distinct, low, high := source.DistinctValuesCount, source.LowValue, source.HighValue

	if types.IsIntegral(n.Type) {
		if isFinite(low) {
			low = math.Round(low)
		}
		if isFinite(high) {
			high = math.Round(high)
		}
		if isFinite(low) && isFinite(high) {
			if inRange := high - low + 1; !math.IsNaN(distinct) && distinct > inRange {
				distinct = inRange
			}
		}
	}

	return SymbolStatsEstimate{
		LowValue:            low,
		HighValue:           high,
		NullsFraction:       source.NullsFraction,
		AverageRowSize:      math.NaN(),
		DistinctValuesCount: distinct,
	}
}

func (c *ScalarStatsCalculator) arithmetic(n *ir.Arithmetic, input PlanNodeStatsEstimate) SymbolStatsEstimate {
	left := c.Calculate(n.Left, input)
	right := c.Calculate(n.Right, input)
	if left.IsUnknown() || right.IsUnknown() {
		return UnknownSymbolStats()
	}

	result := SymbolStatsEstimate{
		AverageRowSize:      math.Max(left.AverageRowSize, right.AverageRowSize),
		NullsFraction:       left.NullsFraction + right.NullsFraction - left.NullsFraction*right.NullsFraction,
		DistinctValuesCount: math.Min(left.DistinctValuesCount*right.DistinctValuesCount, input.OutputRowCount()),
	}

	leftLow, leftHigh := left.LowValue, left.HighValue
	rightLow, rightHigh := right.LowValue, right.HighValue
	switch {
	case math.IsNaN(leftLow) || math.IsNaN(leftHigh) || math.IsNaN(rightLow) || math.IsNaN(rightHigh):
		result.LowValue, result.HighValue = math.NaN(), math.NaN()
	case n.Operator == ir.OpDivide && rightLow < 0 && rightHigh > 0:
		result.LowValue, result.HighValue = math.Inf(-1), math.Inf(1)
	case n.Operator == ir.OpModulus:
		maxDivisor := math.Max(math.Abs(rightLow), math.Abs(rightHigh))
		switch {
		case leftHigh <= 0:
			result.LowValue, result.HighValue = math.Max(-maxDivisor, leftLow), 0
		case leftLow >= 0:
			result.LowValue, result.HighValue = 0, math.Min(maxDivisor, leftHigh)
		default:
			result.LowValue, result.HighValue = math.Max(-maxDivisor, leftLow), math.Min(maxDivisor, leftHigh)
		}
	default:
		v1 := operate(n.Operator, leftLow, rightLow)
		v2 := operate(n.Operator, leftLow, rightHigh)
		v3 := operate(n.Operator, leftHigh, rightLow)
		v4 := operate(n.Operator, leftHigh, rightHigh)
		result.LowValue = min(v1, v2, v3, v4)
		result.HighValue = max(v1, v2, v3, v4)
	}
	return result
}

func operate(op ir.ArithmeticOperator, a, b float64) float64 {
	switch op {
	case ir.OpAdd:
		return a + b
	case ir.OpSubtract:
		return a - b
	case ir.OpMultiply:
		return a * b
	case ir.OpDivide:
		return a / b
	}
	return math.NaN()
}

func coalesceStats(left, right SymbolStatsEstimate, rows float64) SymbolStatsEstimate {
	switch left.NullsFraction {
	case 0:
		return left
	case 1:
		return right
	}
	return SymbolStatsEstimate{
		LowValue:            math.Min(left.LowValue, right.LowValue),
		HighValue:           math.Max(left.HighValue, right.HighValue),
		DistinctValuesCount: left.DistinctValuesCount + math.Min(right.DistinctValuesCount, rows*left.NullsFraction),
		NullsFraction:       left.NullsFraction * right.NullsFraction,
		AverageRowSize:      math.Max(left.AverageRowSize, right.AverageRowSize),
	}
}
