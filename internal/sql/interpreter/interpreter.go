// Package interpreter evaluates constant IR expressions to values under SQL
// three-valued logic. It backs constant folding decisions such as whether a
// cast of a literal is safe to treat as a literal.
package interpreter

import (
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// ErrNotConstant is returned for expressions that depend on input symbols,
// lambdas or non-deterministic functions.
var ErrNotConstant = errors.Errorf("expression is not constant")

// Interpreter evaluates constant expressions. It is safe for concurrent use.
type Interpreter struct {
	cache *CoercionCache
}

// New creates an interpreter. A nil cache gets a private default-sized one.
func New(cache *CoercionCache) *Interpreter {
	if cache == nil {
		cache = NewCoercionCache(DefaultCoercionCacheSize, nil)
	}
	return &Interpreter{cache: cache}
}

// Cache returns the coercion cache used for casts
func (in *Interpreter) Cache() *CoercionCache { return in.cache }

// EvaluateConstant evaluates e. NULL evaluates to nil.
func (in *Interpreter) EvaluateConstant(e ir.Expression) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, errors.Recover(r)
		}
	}()
	return in.eval(e)
}

// IsEffectivelyLiteral reports whether e is a literal, or a constant
// expression that evaluates without error.
func (in *Interpreter) IsEffectivelyLiteral(e ir.Expression) bool {
	if _, ok := e.(*ir.Constant); ok {
		return true
	}
	if !ir.IsConstant(e) {
		return false
	}
	_, err := in.EvaluateConstant(e)
	return err == nil
}

// Fold replaces e by a literal of its type when it is effectively literal
func (in *Interpreter) Fold(e ir.Expression) (ir.Expression, bool) {
	if c, ok := e.(*ir.Constant); ok {
		return c, true
	}
	if !ir.IsConstant(e) {
		return e, false
	}
	v, err := in.EvaluateConstant(e)
	if err != nil {
		return e, false
	}
	return ir.NewConstant(e.DataType(), v), true
}

// Cast converts value from one type to another through the coercion cache
func (in *Interpreter) Cast(value any, from, to types.Type) (any, error) {
	coercion, err := in.cache.Get(from, to)
	if err != nil {
		return nil, err
	}
	return coercion(value)
}

func (in *Interpreter) eval(e ir.Expression) (any, error) {
	switch n := e.(type) {
	case *ir.Constant:
		return n.Value, nil
	case *ir.Reference, *ir.Lambda, *ir.Bind:
		return nil, ErrNotConstant
	case *ir.Call:
		return in.evalCall(n)
	case *ir.Arithmetic:
		return in.evalArithmetic(n)
	case *ir.Comparison:
		return in.evalComparison(n)
	case *ir.Logical:
		return in.evalLogical(n)
	case *ir.Not:
		v, err := in.eval(n.Value)
		if err != nil || v == nil {
			return nil, err
		}
		return !v.(bool), nil
	case *ir.IsNull:
		v, err := in.eval(n.Value)
		if err != nil {
			return nil, err
		}
		return v == nil, nil
	case *ir.Between:
		return in.evalBetween(n)
	case *ir.In:
		return in.evalIn(n)
	case *ir.Cast:
		v, err := in.eval(n.Value)
		if err != nil {
			return nil, err
		}
		out, err := in.Cast(v, n.Value.DataType(), n.Type)
		if err != nil && n.Safe {
			return nil, nil
		}
		return out, err
	case *ir.Row:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			v, err := in.eval(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *ir.Subscript:
		return in.evalSubscript(n)
	case *ir.SearchedCase:
		for _, c := range n.WhenClauses {
			cond, err := in.eval(c.Operand)
			if err != nil {
				return nil, err
			}
			if cond == true {
				return in.eval(c.Result)
			}
		}
		return in.evalDefault(n.Default)
	case *ir.SimpleCase:
		operand, err := in.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		for _, c := range n.WhenClauses {
			v, err := in.eval(c.Operand)
			if err != nil {
				return nil, err
			}
			if eq, known := equalValues(operand, n.Operand.DataType(), v, c.Operand.DataType()); known && eq {
				return in.eval(c.Result)
			}
		}
		return in.evalDefault(n.Default)
	case *ir.Coalesce:
		for _, operand := range n.Operands {
			v, err := in.eval(operand)
			if err != nil || v != nil {
				return v, err
			}
		}
		return nil, nil
	case *ir.NullIf:
		first, err := in.eval(n.First)
		if err != nil {
			return nil, err
		}
		second, err := in.eval(n.Second)
		if err != nil {
			return nil, err
		}
		if eq, known := equalValues(first, n.First.DataType(), second, n.Second.DataType()); known && eq {
			return nil, nil
		}
		return first, nil
	default:
		panic(errors.UnsupportedOperationf("cannot evaluate %T", e))
	}
}

func (in *Interpreter) evalDefault(def ir.Expression) (any, error) {
	if def == nil {
		return nil, nil
	}
	return in.eval(def)
}

// equalValues compares for equality; known is false when either side is NULL
// or the values are unordered.
func equalValues(a any, at types.Type, b any, bt types.Type) (eq, known bool) {
	if a == nil || b == nil {
		return false, false
	}
	c, ok := Compare(a, at, b, bt)
	if !ok {
		if types.IsFloatingPoint(at) || types.IsFloatingPoint(bt) {
			// NaN is not equal to anything
			return false, true
		}
		return false, false
	}
	return c == 0, true
}

func (in *Interpreter) evalComparison(n *ir.Comparison) (any, error) {
	l, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}
	lt, rt := n.Left.DataType(), n.Right.DataType()

	if n.Operator == ir.OpIsDistinctFrom {
		if l == nil || r == nil {
			return (l == nil) != (r == nil), nil
		}
		if lf, ok := l.(float64); ok && math.IsNaN(lf) {
			if rf, ok := r.(float64); ok && math.IsNaN(rf) {
				return false, nil
			}
		}
		eq, _ := equalValues(l, lt, r, rt)
		return !eq, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	c, ok := Compare(l, lt, r, rt)
	if !ok {
		if types.IsFloatingPoint(lt) || types.IsFloatingPoint(rt) {
			return n.Operator == ir.OpNotEqual, nil
		}
		return nil, errors.Newf(errors.DatatypeMismatch, "cannot compare %s with %s", lt, rt)
	}
	switch n.Operator {
	case ir.OpEqual:
		return c == 0, nil
	case ir.OpNotEqual:
		return c != 0, nil
	case ir.OpLessThan:
		return c < 0, nil
	case ir.OpLessThanOrEqual:
		return c <= 0, nil
	case ir.OpGreaterThan:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func (in *Interpreter) evalLogical(n *ir.Logical) (any, error) {
	// AND is decided by FALSE and OR by TRUE
	decisive := n.Operator == ir.OpOr
	sawNull := false
	for _, t := range n.Terms {
		v, err := in.eval(t)
		if err != nil {
			return nil, err
		}
		if v == nil {
			sawNull = true
			continue
		}
		if v.(bool) == decisive {
			return decisive, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return !decisive, nil
}

func (in *Interpreter) evalBetween(n *ir.Between) (any, error) {
	ge := ir.NewComparison(ir.OpGreaterThanOrEqual, n.Value, n.Min)
	le := ir.NewComparison(ir.OpLessThanOrEqual, n.Value, n.Max)
	return in.evalLogical(ir.NewLogical(ir.OpAnd, ge, le))
}

func (in *Interpreter) evalIn(n *ir.In) (any, error) {
	v, err := in.eval(n.Value)
	if err != nil || v == nil {
		return nil, err
	}
	sawNull := false
	for _, candidate := range n.ValueList {
		c, err := in.eval(candidate)
		if err != nil {
			return nil, err
		}
		eq, known := equalValues(v, n.Value.DataType(), c, candidate.DataType())
		if !known {
			sawNull = true
			continue
		}
		if eq {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return false, nil
}

func (in *Interpreter) evalSubscript(n *ir.Subscript) (any, error) {
	base, err := in.eval(n.Base)
	if err != nil || base == nil {
		return nil, err
	}
	index, err := in.eval(n.Index)
	if err != nil || index == nil {
		return nil, err
	}
	switch n.Base.DataType().Kind() {
	case types.KindRow, types.KindArray:
		items := base.([]any)
		i, ok := index.(int64)
		if !ok || i < 1 || i > int64(len(items)) {
			return nil, errors.Newf(errors.ArraySubscriptError, "subscript %v out of bounds", index)
		}
		return items[i-1], nil
	}
	return nil, ErrNotConstant
}

func (in *Interpreter) evalArithmetic(n *ir.Arithmetic) (any, error) {
	l, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}
	if l == nil || r == nil {
		return nil, nil
	}
	ret := n.DataType()
	switch {
	case types.IsIntegral(ret):
		v, err := integerArithmetic(n.Operator, l.(int64), r.(int64))
		if err != nil {
			return nil, err
		}
		lo, hi := types.IntegralRange(ret)
		if v < lo || v > hi {
			return nil, errors.NumericValueOutOfRangeError(ret.Name())
		}
		return v, nil
	case types.IsFloatingPoint(ret):
		a, _ := ToFloat64(l, n.Left.DataType())
		b, _ := ToFloat64(r, n.Right.DataType())
		v := floatArithmetic(n.Operator, a, b)
		if ret.Kind() == types.KindReal {
			v = float64(float32(v))
		}
		return v, nil
	case ret.Kind() == types.KindDecimal:
		v, err := decimalArithmetic(n.Operator, toDecimal(l), toDecimal(r))
		if err != nil {
			return nil, err
		}
		return quantize(v, ret.(types.DecimalType))
	}
	return nil, errors.UnsupportedOperationf("arithmetic on %s", ret)
}

func integerArithmetic(op ir.ArithmeticOperator, a, b int64) (int64, error) {
	overflow := errors.NumericValueOutOfRangeError("bigint")
	switch op {
	case ir.OpAdd:
		s := a + b
		if (s > a) != (b > 0) {
			return 0, overflow
		}
		return s, nil
	case ir.OpSubtract:
		d := a - b
		if (d < a) != (b > 0) {
			return 0, overflow
		}
		return d, nil
	case ir.OpMultiply:
		if a == 0 || b == 0 {
			return 0, nil
		}
		p := a * b
		if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, overflow
		}
		return p, nil
	case ir.OpDivide:
		if b == 0 {
			return 0, errors.DivisionByZeroError()
		}
		if a == math.MinInt64 && b == -1 {
			return 0, overflow
		}
		return a / b, nil
	default:
		if b == 0 {
			return 0, errors.DivisionByZeroError()
		}
		if b == -1 {
			return 0, nil
		}
		return a % b, nil
	}
}

func floatArithmetic(op ir.ArithmeticOperator, a, b float64) float64 {
	switch op {
	case ir.OpAdd:
		return a + b
	case ir.OpSubtract:
		return a - b
	case ir.OpMultiply:
		return a * b
	case ir.OpDivide:
		return a / b
	default:
		return math.Mod(a, b)
	}
}

func decimalArithmetic(op ir.ArithmeticOperator, a, b *apd.Decimal) (*apd.Decimal, error) {
	res := new(apd.Decimal)
	var err error
	switch op {
	case ir.OpAdd:
		_, err = decimalContext.Add(res, a, b)
	case ir.OpSubtract:
		_, err = decimalContext.Sub(res, a, b)
	case ir.OpMultiply:
		_, err = decimalContext.Mul(res, a, b)
	case ir.OpDivide:
		if b.IsZero() {
			return nil, errors.DivisionByZeroError()
		}
		_, err = decimalContext.Quo(res, a, b)
	default:
		if b.IsZero() {
			return nil, errors.DivisionByZeroError()
		}
		_, err = decimalContext.Rem(res, a, b)
	}
	if err != nil {
		return nil, errors.NumericValueOutOfRangeError("decimal")
	}
	return res, nil
}
