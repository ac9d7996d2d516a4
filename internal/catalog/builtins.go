package catalog

import (
	"github.com/dshills/QuantaIR/internal/sql/types"
)

func builtinFunctions() []FunctionDefinition {
	return []FunctionDefinition{
		{Name: "random", Deterministic: false, Bind: exact(types.Double)},
		{Name: "random", Deterministic: false, Bind: unaryIntegral},
		{Name: "rand", Deterministic: false, Bind: exact(types.Double)},
		{Name: "abs", Deterministic: true, Bind: unaryNumeric},
		{Name: "length", Deterministic: true, Bind: unary(types.IsStringLike, fixed(types.Bigint))},
		{Name: "lower", Deterministic: true, Bind: unary(isVarchar, same)},
		{Name: "upper", Deterministic: true, Bind: unary(isVarchar, same)},
		{Name: "concat", Deterministic: true, Bind: concat},
		{Name: "date", Deterministic: true, Bind: unary(dateSource, fixed(types.Date))},
		{Name: "year", Deterministic: true, Bind: unary(temporal, fixed(types.Bigint))},
		{Name: "cardinality", Deterministic: true, Bind: unary(collection, fixed(types.Bigint))},
		{Name: "transform", Deterministic: true, Bind: transform},
		{Name: "filter", Deterministic: true, Bind: filter},
	}
}

func exact(ret types.Type) BindFunc {
	return func(args []types.Type) ([]types.Type, types.Type, bool) {
		if len(args) != 0 {
			return nil, nil, false
		}
		return nil, ret, true
	}
}

func unary(accept func(types.Type) bool, ret func(types.Type) types.Type) BindFunc {
	return func(args []types.Type) ([]types.Type, types.Type, bool) {
		if len(args) != 1 || !accept(args[0]) {
			return nil, nil, false
		}
		return []types.Type{args[0]}, ret(args[0]), true
	}
}

func fixed(t types.Type) func(types.Type) types.Type {
	return func(types.Type) types.Type { return t }
}

func same(t types.Type) types.Type { return t }

var (
	unaryIntegral = unary(types.IsIntegral, same)
	unaryNumeric  = unary(types.IsNumeric, same)
)

func isVarchar(t types.Type) bool { return t.Kind() == types.KindVarchar }

func dateSource(t types.Type) bool {
	return types.IsTimestamp(t) || types.IsStringLike(t) || t.Kind() == types.KindDate
}

func temporal(t types.Type) bool {
	return types.IsTimestamp(t) || t.Kind() == types.KindDate
}

func collection(t types.Type) bool {
	return t.Kind() == types.KindArray || t.Kind() == types.KindMap
}

func concat(args []types.Type) ([]types.Type, types.Type, bool) {
	if len(args) < 2 {
		return nil, nil, false
	}
	for _, a := range args {
		if !types.IsStringLike(a) {
			return nil, nil, false
		}
	}
	return append([]types.Type(nil), args...), types.UnboundedVarchar, true
}

// transform(array(T), function(T, U)) -> array(U)
func transform(args []types.Type) ([]types.Type, types.Type, bool) {
	element, fn, ok := arrayAndLambda(args)
	if !ok {
		return nil, nil, false
	}
	return []types.Type{types.Array(element), fn}, types.Array(fn.Return), true
}

// filter(array(T), function(T, boolean)) -> array(T)
func filter(args []types.Type) ([]types.Type, types.Type, bool) {
	element, fn, ok := arrayAndLambda(args)
	if !ok || fn.Return.Kind() != types.KindBoolean {
		return nil, nil, false
	}
	return []types.Type{types.Array(element), fn}, types.Array(element), true
}

func arrayAndLambda(args []types.Type) (types.Type, types.FunctionType, bool) {
	if len(args) != 2 {
		return nil, types.FunctionType{}, false
	}
	array, ok := args[0].(types.ArrayType)
	if !ok {
		return nil, types.FunctionType{}, false
	}
	fn, ok := args[1].(types.FunctionType)
	if !ok || len(fn.Arguments) != 1 || !types.Equal(fn.Arguments[0], array.Element) {
		return nil, types.FunctionType{}, false
	}
	return array.Element, fn, true
}
