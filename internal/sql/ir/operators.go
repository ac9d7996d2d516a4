package ir

import (
	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
)

// ComparisonOperator is the operator of a Comparison node
type ComparisonOperator int

const (
	OpEqual ComparisonOperator = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpIsDistinctFrom
)

var comparisonSymbols = [...]string{
	OpEqual:              "=",
	OpNotEqual:           "<>",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpIsDistinctFrom:     "IS DISTINCT FROM",
}

// String returns the SQL spelling of the operator
func (op ComparisonOperator) String() string {
	if int(op) < len(comparisonSymbols) {
		return comparisonSymbols[op]
	}
	return "?"
}

// Flip returns the operator to use when the operands are swapped:
// a < b is b > a.
func (op ComparisonOperator) Flip() ComparisonOperator {
	switch op {
	case OpLessThan:
		return OpGreaterThan
	case OpLessThanOrEqual:
		return OpGreaterThanOrEqual
	case OpGreaterThan:
		return OpLessThan
	case OpGreaterThanOrEqual:
		return OpLessThanOrEqual
	default:
		return op
	}
}

// Negate returns the operator of NOT (a op b) for non-null operands.
// IS DISTINCT FROM has no negated form and panics with IllegalState.
func (op ComparisonOperator) Negate() ComparisonOperator {
	switch op {
	case OpEqual:
		return OpNotEqual
	case OpNotEqual:
		return OpEqual
	case OpLessThan:
		return OpGreaterThanOrEqual
	case OpLessThanOrEqual:
		return OpGreaterThan
	case OpGreaterThan:
		return OpLessThanOrEqual
	case OpGreaterThanOrEqual:
		return OpLessThan
	default:
		panic(errors.IllegalStatef("comparison operator %s cannot be negated", op))
	}
}

// IsOrdering reports whether op is one of <, <=, >, >=
func (op ComparisonOperator) IsOrdering() bool {
	switch op {
	case OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual:
		return true
	}
	return false
}

// ArithmeticOperator is the operator of an Arithmetic node
type ArithmeticOperator int

const (
	OpAdd ArithmeticOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
)

var arithmeticSymbols = [...]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpModulus:  "%",
}

func (op ArithmeticOperator) String() string {
	if int(op) < len(arithmeticSymbols) {
		return arithmeticSymbols[op]
	}
	return "?"
}

// IsCommutative reports whether a op b equals b op a
func (op ArithmeticOperator) IsCommutative() bool {
	return op == OpAdd || op == OpMultiply
}

// OperatorType returns the catalog operator implementing op
func (op ArithmeticOperator) OperatorType() catalog.OperatorType {
	switch op {
	case OpAdd:
		return catalog.OperatorAdd
	case OpSubtract:
		return catalog.OperatorSubtract
	case OpMultiply:
		return catalog.OperatorMultiply
	case OpDivide:
		return catalog.OperatorDivide
	default:
		return catalog.OperatorModulus
	}
}

// LogicalOperator is the operator of a Logical node
type LogicalOperator int

const (
	OpAnd LogicalOperator = iota
	OpOr
)

func (op LogicalOperator) String() string {
	if op == OpAnd {
		return "AND"
	}
	return "OR"
}

// Flip returns the dual operator used by De Morgan's law
func (op LogicalOperator) Flip() LogicalOperator {
	if op == OpAnd {
		return OpOr
	}
	return OpAnd
}
