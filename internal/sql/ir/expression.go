// Package ir defines the planner's intermediate representation of scalar
// expressions: an immutable tree with a closed set of node types, plus the
// traversal, equality, hashing and rewriting utilities built on it.
//
// Nodes are treated as values. Fields are exported for reading and pattern
// matching, but a node must never be modified after construction; every edit
// allocates a new node. Use the New* constructors, which validate their
// arguments and panic with an InvalidArgument error on malformed input.
package ir

import (
	"github.com/cockroachdb/redact"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// Expression is a node of the IR tree.
type Expression interface {
	// DataType returns the result type of the expression
	DataType() types.Type

	// Children returns the direct subexpressions in a fixed order
	Children() []Expression

	// WithChildren returns a node of the same kind and local fields with
	// its children replaced. The slice must match Children() in length.
	WithChildren(children []Expression) Expression

	redact.SafeFormatter
	String() string

	expression()
}

// Constant is a typed literal. Value is nil for NULL, otherwise one of
// bool, int64, float64, *apd.Decimal, string, []byte or []any.
// Dates are days since the epoch and timestamps microseconds since the epoch,
// both as int64.
type Constant struct {
	Type  types.Type
	Value any
}

// Reference is a free variable: an input symbol or a lambda argument.
type Reference struct {
	Type types.Type
	Name string
}

// Call invokes a resolved scalar function.
type Call struct {
	Function  *catalog.ResolvedFunction
	Arguments []Expression
}

// Arithmetic is a binary arithmetic operation bound to its resolved operator function.
type Arithmetic struct {
	Function *catalog.ResolvedFunction
	Operator ArithmeticOperator
	Left     Expression
	Right    Expression
}

// Comparison compares two operands.
type Comparison struct {
	Operator ComparisonOperator
	Left     Expression
	Right    Expression
}

// Logical is an AND or OR over two or more terms.
type Logical struct {
	Operator LogicalOperator
	Terms    []Expression
}

// Not is boolean negation.
type Not struct {
	Value Expression
}

// IsNull tests its operand for NULL.
type IsNull struct {
	Value Expression
}

// Between is value >= Min AND value <= Max.
type Between struct {
	Value Expression
	Min   Expression
	Max   Expression
}

// In tests membership of Value in a non-empty list of candidates.
type In struct {
	Value     Expression
	ValueList []Expression
}

// Cast converts Value to Type. A safe cast yields NULL instead of failing.
type Cast struct {
	Value Expression
	Type  types.Type
	Safe  bool
}

// Row builds an anonymous row value.
type Row struct {
	Items []Expression
}

// Subscript indexes a row (1-based constant index), an array or a map.
type Subscript struct {
	Base  Expression
	Index Expression
}

// WhenClause is one WHEN operand THEN result arm of a CASE.
type WhenClause struct {
	Operand Expression
	Result  Expression
}

// SearchedCase is CASE WHEN cond THEN result ... [ELSE default] END.
// Default is nil when there is no ELSE.
type SearchedCase struct {
	WhenClauses []WhenClause
	Default     Expression
}

// SimpleCase is CASE operand WHEN value THEN result ... [ELSE default] END.
// Default is nil when there is no ELSE.
type SimpleCase struct {
	Operand     Expression
	WhenClauses []WhenClause
	Default     Expression
}

// Coalesce returns its first non-null operand.
type Coalesce struct {
	Operands []Expression
}

// NullIf returns NULL when First equals Second, otherwise First.
type NullIf struct {
	First  Expression
	Second Expression
}

// Lambda is an anonymous function. Argument types are supplied by the
// function the lambda is passed to.
type Lambda struct {
	Arguments []string
	Body      Expression
}

// Bind partially applies Function to captured Values, which fill the leading
// lambda arguments.
type Bind struct {
	Values   []Expression
	Function *Lambda
}

func (*Constant) expression()     {}
func (*Reference) expression()    {}
func (*Call) expression()         {}
func (*Arithmetic) expression()   {}
func (*Comparison) expression()   {}
func (*Logical) expression()      {}
func (*Not) expression()          {}
func (*IsNull) expression()       {}
func (*Between) expression()      {}
func (*In) expression()           {}
func (*Cast) expression()         {}
func (*Row) expression()          {}
func (*Subscript) expression()    {}
func (*SearchedCase) expression() {}
func (*SimpleCase) expression()   {}
func (*Coalesce) expression()     {}
func (*NullIf) expression()       {}
func (*Lambda) expression()       {}
func (*Bind) expression()         {}

// Constructors

func requireNonNil(e Expression, what string) {
	if e == nil {
		panic(errors.InvalidArgumentf("%s is nil", what))
	}
}

func requireAllNonNil(es []Expression, what string) {
	for i, e := range es {
		if e == nil {
			panic(errors.InvalidArgumentf("%s[%d] is nil", what, i))
		}
	}
}

// NewConstant creates a literal of the given type
func NewConstant(t types.Type, value any) *Constant {
	if t == nil {
		panic(errors.InvalidArgumentf("constant type is nil"))
	}
	return &Constant{Type: t, Value: value}
}

// NewReference creates a reference to a named symbol
func NewReference(t types.Type, name string) *Reference {
	if t == nil {
		panic(errors.InvalidArgumentf("reference type is nil"))
	}
	if name == "" {
		panic(errors.InvalidArgumentf("reference name is empty"))
	}
	return &Reference{Type: t, Name: name}
}

// NewCall creates a function call
func NewCall(function *catalog.ResolvedFunction, arguments ...Expression) *Call {
	if function == nil {
		panic(errors.InvalidArgumentf("call function is nil"))
	}
	requireAllNonNil(arguments, "call argument")
	if len(arguments) != len(function.ArgumentTypes()) {
		panic(errors.InvalidArgumentf("function %s expects %d arguments, got %d",
			function.Name(), len(function.ArgumentTypes()), len(arguments)))
	}
	return &Call{Function: function, Arguments: append([]Expression(nil), arguments...)}
}

// NewArithmetic creates a binary arithmetic operation
func NewArithmetic(function *catalog.ResolvedFunction, op ArithmeticOperator, left, right Expression) *Arithmetic {
	if function == nil {
		panic(errors.InvalidArgumentf("arithmetic function is nil"))
	}
	requireNonNil(left, "arithmetic left")
	requireNonNil(right, "arithmetic right")
	return &Arithmetic{Function: function, Operator: op, Left: left, Right: right}
}

// NewComparison creates a comparison
func NewComparison(op ComparisonOperator, left, right Expression) *Comparison {
	requireNonNil(left, "comparison left")
	requireNonNil(right, "comparison right")
	return &Comparison{Operator: op, Left: left, Right: right}
}

// NewLogical creates an AND or OR node. It requires at least two terms;
// use And/Or to fold shorter lists.
func NewLogical(op LogicalOperator, terms ...Expression) *Logical {
	if len(terms) < 2 {
		panic(errors.InvalidArgumentf("logical %s requires at least 2 terms, got %d", op, len(terms)))
	}
	requireAllNonNil(terms, "logical term")
	return &Logical{Operator: op, Terms: append([]Expression(nil), terms...)}
}

// NewNot creates a negation
func NewNot(value Expression) *Not {
	requireNonNil(value, "not value")
	return &Not{Value: value}
}

// NewIsNull creates an IS NULL test
func NewIsNull(value Expression) *IsNull {
	requireNonNil(value, "is null value")
	return &IsNull{Value: value}
}

// NewBetween creates a BETWEEN predicate
func NewBetween(value, min, max Expression) *Between {
	requireNonNil(value, "between value")
	requireNonNil(min, "between min")
	requireNonNil(max, "between max")
	return &Between{Value: value, Min: min, Max: max}
}

// NewIn creates an IN predicate. The candidate list must not be empty.
func NewIn(value Expression, valueList ...Expression) *In {
	requireNonNil(value, "in value")
	if len(valueList) == 0 {
		panic(errors.InvalidArgumentf("in value list is empty"))
	}
	requireAllNonNil(valueList, "in candidate")
	return &In{Value: value, ValueList: append([]Expression(nil), valueList...)}
}

// NewCast creates a cast
func NewCast(value Expression, t types.Type, safe bool) *Cast {
	requireNonNil(value, "cast value")
	if t == nil {
		panic(errors.InvalidArgumentf("cast type is nil"))
	}
	return &Cast{Value: value, Type: t, Safe: safe}
}

// NewRow creates a row constructor
func NewRow(items ...Expression) *Row {
	requireAllNonNil(items, "row item")
	return &Row{Items: append([]Expression(nil), items...)}
}

// NewSubscript creates a subscript
func NewSubscript(base, index Expression) *Subscript {
	requireNonNil(base, "subscript base")
	requireNonNil(index, "subscript index")
	return &Subscript{Base: base, Index: index}
}

// NewWhenClause creates a WHEN ... THEN arm
func NewWhenClause(operand, result Expression) WhenClause {
	requireNonNil(operand, "when operand")
	requireNonNil(result, "when result")
	return WhenClause{Operand: operand, Result: result}
}

func requireWhenClauses(clauses []WhenClause) {
	if len(clauses) == 0 {
		panic(errors.InvalidArgumentf("case requires at least one when clause"))
	}
	for i, c := range clauses {
		if c.Operand == nil || c.Result == nil {
			panic(errors.InvalidArgumentf("when clause %d is incomplete", i))
		}
	}
}

// NewSearchedCase creates a searched CASE. defaultValue may be nil.
func NewSearchedCase(whenClauses []WhenClause, defaultValue Expression) *SearchedCase {
	requireWhenClauses(whenClauses)
	return &SearchedCase{WhenClauses: append([]WhenClause(nil), whenClauses...), Default: defaultValue}
}

// NewSimpleCase creates a simple CASE. defaultValue may be nil.
func NewSimpleCase(operand Expression, whenClauses []WhenClause, defaultValue Expression) *SimpleCase {
	requireNonNil(operand, "case operand")
	requireWhenClauses(whenClauses)
	return &SimpleCase{Operand: operand, WhenClauses: append([]WhenClause(nil), whenClauses...), Default: defaultValue}
}

// NewCoalesce creates a COALESCE over at least two operands
func NewCoalesce(operands ...Expression) *Coalesce {
	if len(operands) < 2 {
		panic(errors.InvalidArgumentf("coalesce requires at least 2 operands, got %d", len(operands)))
	}
	requireAllNonNil(operands, "coalesce operand")
	return &Coalesce{Operands: append([]Expression(nil), operands...)}
}

// NewNullIf creates a NULLIF
func NewNullIf(first, second Expression) *NullIf {
	requireNonNil(first, "nullif first")
	requireNonNil(second, "nullif second")
	return &NullIf{First: first, Second: second}
}

// NewLambda creates a lambda
func NewLambda(arguments []string, body Expression) *Lambda {
	requireNonNil(body, "lambda body")
	for i, a := range arguments {
		if a == "" {
			panic(errors.InvalidArgumentf("lambda argument %d has no name", i))
		}
	}
	return &Lambda{Arguments: append([]string(nil), arguments...), Body: body}
}

// NewBind creates a partial application of function to values
func NewBind(values []Expression, function *Lambda) *Bind {
	if function == nil {
		panic(errors.InvalidArgumentf("bind function is nil"))
	}
	requireAllNonNil(values, "bind value")
	if len(values) > len(function.Arguments) {
		panic(errors.InvalidArgumentf("bind captures %d values but lambda takes %d arguments",
			len(values), len(function.Arguments)))
	}
	return &Bind{Values: append([]Expression(nil), values...), Function: function}
}

// Literal helpers

var (
	// True is the boolean TRUE literal
	True = &Constant{Type: types.Boolean, Value: true}
	// False is the boolean FALSE literal
	False = &Constant{Type: types.Boolean, Value: false}
)

// Null returns a NULL literal of type t
func Null(t types.Type) *Constant {
	return NewConstant(t, nil)
}

// Bool returns the boolean literal for v
func Bool(v bool) *Constant {
	if v {
		return True
	}
	return False
}

// IsNullLiteral reports whether e is a NULL constant
func IsNullLiteral(e Expression) bool {
	c, ok := e.(*Constant)
	return ok && c.Value == nil
}

// IsBoolLiteral reports whether e is the boolean literal v
func IsBoolLiteral(e Expression, v bool) bool {
	c, ok := e.(*Constant)
	if !ok || c.Type.Kind() != types.KindBoolean {
		return false
	}
	b, ok := c.Value.(bool)
	return ok && b == v
}
