package interpreter

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
	"github.com/dshills/QuantaIR/internal/util/timeutil"
)

// scalarFunc evaluates a builtin on non-null arguments
type scalarFunc func(args []any, argTypes []types.Type) (any, error)

var scalarFuncs = map[string]scalarFunc{
	"abs":         evalAbs,
	"length":      func(args []any, _ []types.Type) (any, error) { return int64(utf8.RuneCountInString(args[0].(string))), nil },
	"lower":       func(args []any, _ []types.Type) (any, error) { return strings.ToLower(args[0].(string)), nil },
	"upper":       func(args []any, _ []types.Type) (any, error) { return strings.ToUpper(args[0].(string)), nil },
	"concat":      evalConcat,
	"date":        evalDate,
	"year":        evalYear,
	"cardinality": func(args []any, _ []types.Type) (any, error) { return int64(len(args[0].([]any))), nil },
}

func (in *Interpreter) evalCall(n *ir.Call) (any, error) {
	if !n.Function.Deterministic {
		return nil, ErrNotConstant
	}
	f, ok := scalarFuncs[n.Function.Name()]
	if !ok {
		return nil, ErrNotConstant
	}
	args := make([]any, len(n.Arguments))
	argTypes := make([]types.Type, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		args[i] = v
		argTypes[i] = a.DataType()
	}
	return f(args, argTypes)
}

func evalAbs(args []any, _ []types.Type) (any, error) {
	switch v := args[0].(type) {
	case int64:
		if v == math.MinInt64 {
			return nil, errors.NumericValueOutOfRangeError("bigint")
		}
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float64:
		return math.Abs(v), nil
	case *apd.Decimal:
		return new(apd.Decimal).Abs(v), nil
	}
	return nil, errors.InvalidArgumentf("abs of %T", args[0])
}

func evalConcat(args []any, _ []types.Type) (any, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.(string))
	}
	return b.String(), nil
}

func evalDate(args []any, argTypes []types.Type) (any, error) {
	switch t := argTypes[0]; {
	case t.Kind() == types.KindDate:
		return args[0], nil
	case types.IsTimestamp(t):
		return timeutil.MicrosToDays(args[0].(int64)), nil
	default:
		days, err := timeutil.ParseDate(args[0].(string))
		if err != nil {
			return nil, errors.Newf(errors.InvalidDatetimeFormat, "%v", err)
		}
		return days, nil
	}
}

func evalYear(args []any, argTypes []types.Type) (any, error) {
	days := args[0].(int64)
	if types.IsTimestamp(argTypes[0]) {
		days = timeutil.MicrosToDays(days)
	}
	return timeutil.Year(days), nil
}
