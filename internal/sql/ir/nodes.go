package ir

import (
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

func (e *Constant) DataType() types.Type   { return e.Type }
func (e *Reference) DataType() types.Type  { return e.Type }
func (e *Call) DataType() types.Type       { return e.Function.ReturnType() }
func (e *Arithmetic) DataType() types.Type { return e.Function.ReturnType() }
func (e *Comparison) DataType() types.Type { return types.Boolean }
func (e *Logical) DataType() types.Type    { return types.Boolean }
func (e *Not) DataType() types.Type        { return types.Boolean }
func (e *IsNull) DataType() types.Type     { return types.Boolean }
func (e *Between) DataType() types.Type    { return types.Boolean }
func (e *In) DataType() types.Type         { return types.Boolean }
func (e *Cast) DataType() types.Type       { return e.Type }
func (e *NullIf) DataType() types.Type     { return e.First.DataType() }

func (e *Row) DataType() types.Type {
	fields := make([]types.Type, len(e.Items))
	for i, item := range e.Items {
		fields[i] = item.DataType()
	}
	return types.Row(fields...)
}

// DataType derives the element type from the base. It returns Unknown for an
// invalid subscript; the type analyzer reports those as errors.
func (e *Subscript) DataType() types.Type {
	switch base := e.Base.DataType().(type) {
	case types.RowType:
		c, ok := e.Index.(*Constant)
		if !ok {
			return types.Unknown
		}
		idx, ok := c.Value.(int64)
		if !ok || idx < 1 || int(idx) > len(base.Fields) {
			return types.Unknown
		}
		return base.Fields[idx-1].Type
	case types.ArrayType:
		return base.Element
	case types.MapType:
		return base.Value
	}
	return types.Unknown
}

func (e *SearchedCase) DataType() types.Type { return e.WhenClauses[0].Result.DataType() }
func (e *SimpleCase) DataType() types.Type   { return e.WhenClauses[0].Result.DataType() }
func (e *Coalesce) DataType() types.Type     { return e.Operands[0].DataType() }

// DataType of an unbound lambda has unknown argument types.
func (e *Lambda) DataType() types.Type {
	args := make([]types.Type, len(e.Arguments))
	for i := range args {
		args[i] = types.Unknown
	}
	return types.Function(args, e.Body.DataType())
}

func (e *Bind) DataType() types.Type {
	remaining := len(e.Function.Arguments) - len(e.Values)
	args := make([]types.Type, remaining)
	for i := range args {
		args[i] = types.Unknown
	}
	return types.Function(args, e.Function.Body.DataType())
}

// Children

func (e *Constant) Children() []Expression   { return nil }
func (e *Reference) Children() []Expression  { return nil }
func (e *Call) Children() []Expression       { return e.Arguments }
func (e *Arithmetic) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *Comparison) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *Logical) Children() []Expression    { return e.Terms }
func (e *Not) Children() []Expression        { return []Expression{e.Value} }
func (e *IsNull) Children() []Expression     { return []Expression{e.Value} }
func (e *Between) Children() []Expression    { return []Expression{e.Value, e.Min, e.Max} }
func (e *Cast) Children() []Expression       { return []Expression{e.Value} }
func (e *Row) Children() []Expression        { return e.Items }
func (e *Subscript) Children() []Expression  { return []Expression{e.Base, e.Index} }
func (e *Coalesce) Children() []Expression   { return e.Operands }
func (e *NullIf) Children() []Expression     { return []Expression{e.First, e.Second} }
func (e *Lambda) Children() []Expression     { return []Expression{e.Body} }

func (e *In) Children() []Expression {
	return append([]Expression{e.Value}, e.ValueList...)
}

func (e *SearchedCase) Children() []Expression {
	return whenChildren(nil, e.WhenClauses, e.Default)
}

func (e *SimpleCase) Children() []Expression {
	return whenChildren([]Expression{e.Operand}, e.WhenClauses, e.Default)
}

// whenChildren appends operand and result of each clause, interleaved,
// followed by the default when present.
func whenChildren(prefix []Expression, clauses []WhenClause, def Expression) []Expression {
	out := make([]Expression, 0, len(prefix)+2*len(clauses)+1)
	out = append(out, prefix...)
	for _, c := range clauses {
		out = append(out, c.Operand, c.Result)
	}
	if def != nil {
		out = append(out, def)
	}
	return out
}

func (e *Bind) Children() []Expression {
	out := make([]Expression, 0, len(e.Values)+1)
	out = append(out, e.Values...)
	return append(out, e.Function)
}

// WithChildren

func requireArity(e Expression, children []Expression, n int) {
	if len(children) != n {
		panic(errors.InvalidArgumentf("%T expects %d children, got %d", e, n, len(children)))
	}
}

func (e *Constant) WithChildren(children []Expression) Expression {
	requireArity(e, children, 0)
	return e
}

func (e *Reference) WithChildren(children []Expression) Expression {
	requireArity(e, children, 0)
	return e
}

func (e *Call) WithChildren(children []Expression) Expression {
	return NewCall(e.Function, children...)
}

func (e *Arithmetic) WithChildren(children []Expression) Expression {
	requireArity(e, children, 2)
	return NewArithmetic(e.Function, e.Operator, children[0], children[1])
}

func (e *Comparison) WithChildren(children []Expression) Expression {
	requireArity(e, children, 2)
	return NewComparison(e.Operator, children[0], children[1])
}

func (e *Logical) WithChildren(children []Expression) Expression {
	return NewLogical(e.Operator, children...)
}

func (e *Not) WithChildren(children []Expression) Expression {
	requireArity(e, children, 1)
	return NewNot(children[0])
}

func (e *IsNull) WithChildren(children []Expression) Expression {
	requireArity(e, children, 1)
	return NewIsNull(children[0])
}

func (e *Between) WithChildren(children []Expression) Expression {
	requireArity(e, children, 3)
	return NewBetween(children[0], children[1], children[2])
}

func (e *In) WithChildren(children []Expression) Expression {
	if len(children) < 2 {
		panic(errors.InvalidArgumentf("in expects at least 2 children, got %d", len(children)))
	}
	return NewIn(children[0], children[1:]...)
}

func (e *Cast) WithChildren(children []Expression) Expression {
	requireArity(e, children, 1)
	return NewCast(children[0], e.Type, e.Safe)
}

func (e *Row) WithChildren(children []Expression) Expression {
	requireArity(e, children, len(e.Items))
	return NewRow(children...)
}

func (e *Subscript) WithChildren(children []Expression) Expression {
	requireArity(e, children, 2)
	return NewSubscript(children[0], children[1])
}

func (e *SearchedCase) WithChildren(children []Expression) Expression {
	clauses, def := rebuildWhen(e, children, e.WhenClauses, e.Default != nil)
	return NewSearchedCase(clauses, def)
}

func (e *SimpleCase) WithChildren(children []Expression) Expression {
	if len(children) == 0 {
		panic(errors.InvalidArgumentf("simple case expects an operand"))
	}
	clauses, def := rebuildWhen(e, children[1:], e.WhenClauses, e.Default != nil)
	return NewSimpleCase(children[0], clauses, def)
}

func rebuildWhen(e Expression, children []Expression, old []WhenClause, hasDefault bool) ([]WhenClause, Expression) {
	n := 2 * len(old)
	if hasDefault {
		n++
	}
	if len(children) != n {
		panic(errors.InvalidArgumentf("%T expects %d clause children, got %d", e, n, len(children)))
	}
	clauses := make([]WhenClause, len(old))
	for i := range old {
		clauses[i] = NewWhenClause(children[2*i], children[2*i+1])
	}
	var def Expression
	if hasDefault {
		def = children[n-1]
	}
	return clauses, def
}

func (e *Coalesce) WithChildren(children []Expression) Expression {
	return NewCoalesce(children...)
}

func (e *NullIf) WithChildren(children []Expression) Expression {
	requireArity(e, children, 2)
	return NewNullIf(children[0], children[1])
}

func (e *Lambda) WithChildren(children []Expression) Expression {
	requireArity(e, children, 1)
	return NewLambda(e.Arguments, children[0])
}

func (e *Bind) WithChildren(children []Expression) Expression {
	requireArity(e, children, len(e.Values)+1)
	fn, ok := children[len(children)-1].(*Lambda)
	if !ok {
		panic(errors.InvalidArgumentf("bind function must be a lambda, got %T", children[len(children)-1]))
	}
	return NewBind(children[:len(children)-1], fn)
}
