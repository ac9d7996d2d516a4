package catalog

import (
	"strings"

	"github.com/dshills/QuantaIR/internal/sql/types"
)

// OperatorType names an operator that resolves to a function
type OperatorType int

const (
	OperatorAdd OperatorType = iota + 1
	OperatorSubtract
	OperatorMultiply
	OperatorDivide
	OperatorModulus
	OperatorEqual
	OperatorLessThan
	OperatorLessThanOrEqual
	OperatorIsDistinctFrom
)

// String returns the mangled function name of the operator
func (op OperatorType) String() string {
	switch op {
	case OperatorAdd:
		return "$operator$add"
	case OperatorSubtract:
		return "$operator$subtract"
	case OperatorMultiply:
		return "$operator$multiply"
	case OperatorDivide:
		return "$operator$divide"
	case OperatorModulus:
		return "$operator$modulus"
	case OperatorEqual:
		return "$operator$equal"
	case OperatorLessThan:
		return "$operator$less_than"
	case OperatorLessThanOrEqual:
		return "$operator$less_than_or_equal"
	case OperatorIsDistinctFrom:
		return "$operator$is_distinct_from"
	default:
		return "$operator$unknown"
	}
}

// Signature is the bound argument and return types of a function
type Signature struct {
	Name          string
	ArgumentTypes []types.Type
	ReturnType    types.Type
}

func (s Signature) String() string {
	args := make([]string, len(s.ArgumentTypes))
	for i, t := range s.ArgumentTypes {
		args[i] = t.Name()
	}
	return s.Name + "(" + strings.Join(args, ", ") + "):" + s.ReturnType.Name()
}

// ResolvedFunction is a function bound to concrete argument types
type ResolvedFunction struct {
	Signature     Signature
	Deterministic bool
}

// Name returns the function name
func (f *ResolvedFunction) Name() string { return f.Signature.Name }

// ReturnType returns the declared return type
func (f *ResolvedFunction) ReturnType() types.Type { return f.Signature.ReturnType }

// ArgumentTypes returns the declared argument types
func (f *ResolvedFunction) ArgumentTypes() []types.Type { return f.Signature.ArgumentTypes }

// Equal reports whether both resolve to the same function instance
func (f *ResolvedFunction) Equal(other *ResolvedFunction) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	return f.Deterministic == other.Deterministic && f.Signature.String() == other.Signature.String()
}

func (f *ResolvedFunction) String() string { return f.Signature.String() }

// Catalog resolves operators and functions against argument types.
type Catalog interface {
	// ResolveOperator binds an operator to the given operand types
	ResolveOperator(op OperatorType, argumentTypes []types.Type) (*ResolvedFunction, error)

	// ResolveFunction binds a named scalar function to the given argument types
	ResolveFunction(name string, argumentTypes []types.Type) (*ResolvedFunction, error)
}
