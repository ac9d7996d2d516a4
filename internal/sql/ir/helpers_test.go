package ir

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

var cat = catalog.NewMemoryCatalog()

func ref(name string) *Reference { return NewReference(types.Bigint, name) }

func dref(name string) *Reference { return NewReference(types.Double, name) }

func lit(v int64) *Constant { return NewConstant(types.Bigint, v) }

func str(v string) *Constant { return NewConstant(types.UnboundedVarchar, v) }

func cmp(op ComparisonOperator, l, r Expression) *Comparison { return NewComparison(op, l, r) }

func add(l, r Expression) *Arithmetic {
	fn, err := cat.ResolveOperator(catalog.OperatorAdd, []types.Type{l.DataType(), r.DataType()})
	if err != nil {
		panic(err)
	}
	return NewArithmetic(fn, OpAdd, l, r)
}

func call(name string, args ...Expression) *Call {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.DataType()
	}
	fn, err := cat.ResolveFunction(name, argTypes)
	if err != nil {
		panic(err)
	}
	return NewCall(fn, args...)
}
