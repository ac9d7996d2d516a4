package planner

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

var cat = catalog.NewMemoryCatalog()

var symbols = SymbolTypes{
	"x":  types.Bigint,
	"y":  types.Bigint,
	"d":  types.Double,
	"e":  types.Double,
	"s":  types.UnboundedVarchar,
	"ts": types.Timestamp,
	"b":  types.Boolean,
	"r":  types.Row(types.Bigint, types.UnboundedVarchar),
	"a":  types.Array(types.Bigint),
	"m":  types.Map(types.UnboundedVarchar, types.Double),
}

func ref(name string) *ir.Reference { return ir.NewReference(symbols[name], name) }

func lit(v int64) *ir.Constant { return ir.NewConstant(types.Bigint, v) }

func dbl(v float64) *ir.Constant { return ir.NewConstant(types.Double, v) }

func str(v string) *ir.Constant { return ir.NewConstant(types.UnboundedVarchar, v) }

func cmp(op ir.ComparisonOperator, l, r ir.Expression) *ir.Comparison {
	return ir.NewComparison(op, l, r)
}

func arith(op ir.ArithmeticOperator, l, r ir.Expression) *ir.Arithmetic {
	fn, err := cat.ResolveOperator(op.OperatorType(), []types.Type{l.DataType(), r.DataType()})
	if err != nil {
		panic(err)
	}
	return ir.NewArithmetic(fn, op, l, r)
}

func call(name string, args ...ir.Expression) *ir.Call {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.DataType()
	}
	fn, err := cat.ResolveFunction(name, argTypes)
	if err != nil {
		panic(err)
	}
	return ir.NewCall(fn, args...)
}

// callWith binds name to explicit argument types, for lambda arguments whose
// own type carries no argument types
func callWith(name string, argTypes []types.Type, args ...ir.Expression) *ir.Call {
	fn, err := cat.ResolveFunction(name, argTypes)
	if err != nil {
		panic(err)
	}
	return ir.NewCall(fn, args...)
}

type foreign struct{ *ir.Constant }
