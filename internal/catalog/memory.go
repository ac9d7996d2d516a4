package catalog

import (
	"strings"
	"sync"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// BindFunc checks argument types and returns the declared argument and
// return types, or false when the arguments do not match.
type BindFunc func(args []types.Type) (declared []types.Type, ret types.Type, ok bool)

// FunctionDefinition is a registered scalar function overload
type FunctionDefinition struct {
	Name          string
	Deterministic bool
	Bind          BindFunc
}

// MemoryCatalog is an in-memory implementation of the Catalog interface
// holding the builtin operators and functions.
type MemoryCatalog struct {
	mu        sync.RWMutex
	functions map[string][]FunctionDefinition
}

// NewMemoryCatalog creates a catalog populated with the builtin functions.
func NewMemoryCatalog() *MemoryCatalog {
	c := &MemoryCatalog{
		functions: make(map[string][]FunctionDefinition),
	}
	for _, def := range builtinFunctions() {
		c.Register(def)
	}
	return c
}

// Register adds a function overload. Overloads are tried in registration order.
func (c *MemoryCatalog) Register(def FunctionDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := strings.ToLower(def.Name)
	c.functions[name] = append(c.functions[name], def)
}

// ResolveFunction implements Catalog.
func (c *MemoryCatalog) ResolveFunction(name string, argumentTypes []types.Type) (*ResolvedFunction, error) {
	c.mu.RLock()
	defs := c.functions[strings.ToLower(name)]
	c.mu.RUnlock()

	for _, def := range defs {
		declared, ret, ok := def.Bind(argumentTypes)
		if !ok {
			continue
		}
		return &ResolvedFunction{
			Signature: Signature{
				Name:          strings.ToLower(def.Name),
				ArgumentTypes: declared,
				ReturnType:    ret,
			},
			Deterministic: def.Deterministic,
		}, nil
	}
	return nil, errors.FunctionNotFoundError(name, typeNames(argumentTypes))
}

// ResolveOperator implements Catalog.
func (c *MemoryCatalog) ResolveOperator(op OperatorType, argumentTypes []types.Type) (*ResolvedFunction, error) {
	if len(argumentTypes) != 2 {
		return nil, errors.FunctionNotFoundError(op.String(), typeNames(argumentTypes))
	}
	left, right := argumentTypes[0], argumentTypes[1]

	var ret types.Type
	var ok bool
	switch op {
	case OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide, OperatorModulus:
		ret, ok = arithmeticReturnType(op, left, right)
	case OperatorEqual, OperatorIsDistinctFrom:
		_, ok = types.CommonSuperType(left, right)
		ok = ok && left.Comparable() && right.Comparable()
		ret = types.Boolean
	case OperatorLessThan, OperatorLessThanOrEqual:
		_, ok = types.CommonSuperType(left, right)
		ok = ok && left.Orderable() && right.Orderable()
		ret = types.Boolean
	}
	if !ok {
		return nil, errors.FunctionNotFoundError(op.String(), typeNames(argumentTypes))
	}

	return &ResolvedFunction{
		Signature: Signature{
			Name:          op.String(),
			ArgumentTypes: []types.Type{left, right},
			ReturnType:    ret,
		},
		Deterministic: true,
	}, nil
}

// arithmeticReturnType applies numeric promotion. Decimal precision and
// scale follow the usual SQL rules, capped at 38 digits.
func arithmeticReturnType(op OperatorType, left, right types.Type) (types.Type, bool) {
	if !types.IsNumeric(left) || !types.IsNumeric(right) {
		return nil, false
	}
	if types.IsIntegral(left) && types.IsIntegral(right) || types.IsFloatingPoint(left) || types.IsFloatingPoint(right) {
		return types.CommonSuperType(left, right)
	}

	a, _ := types.AsDecimal(left)
	b, _ := types.AsDecimal(right)
	var precision, scale int
	switch op {
	case OperatorAdd, OperatorSubtract:
		scale = max(a.Scale, b.Scale)
		precision = 1 + scale + max(a.Precision-a.Scale, b.Precision-b.Scale)
	case OperatorMultiply:
		scale = a.Scale + b.Scale
		precision = a.Precision + b.Precision
	case OperatorDivide:
		scale = max(a.Scale, b.Scale)
		precision = a.Precision + b.Scale + max(b.Scale-a.Scale, 0)
	case OperatorModulus:
		scale = max(a.Scale, b.Scale)
		precision = min(b.Precision-b.Scale, a.Precision-a.Scale) + scale
	}
	if scale > types.MaxDecimalPrecision {
		return nil, false
	}
	return types.Decimal(min(precision, types.MaxDecimalPrecision), scale), true
}

func typeNames(ts []types.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name()
	}
	return names
}
