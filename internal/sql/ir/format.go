package ir

import (
	"encoding/hex"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/redact"
	"github.com/lib/pq"

	"github.com/dshills/QuantaIR/internal/sql/types"
	"github.com/dshills/QuantaIR/internal/util/timeutil"
)

// Operators, type names and symbol names are safe to log; constant values are not.

func (ComparisonOperator) SafeValue() {}
func (ArithmeticOperator) SafeValue() {}
func (LogicalOperator) SafeValue()    {}

// Format renders e as a redactable string in which constant values are
// marked as unsafe.
func Format(e Expression) redact.RedactableString {
	return redact.Sprint(e)
}

func stringOf(e Expression) string {
	return redact.Sprint(e).StripMarkers()
}

func typeName(t types.Type) redact.SafeString {
	return redact.SafeString(t.Name())
}

func (e *Constant) String() string     { return stringOf(e) }
func (e *Reference) String() string    { return stringOf(e) }
func (e *Call) String() string         { return stringOf(e) }
func (e *Arithmetic) String() string   { return stringOf(e) }
func (e *Comparison) String() string   { return stringOf(e) }
func (e *Logical) String() string      { return stringOf(e) }
func (e *Not) String() string          { return stringOf(e) }
func (e *IsNull) String() string       { return stringOf(e) }
func (e *Between) String() string      { return stringOf(e) }
func (e *In) String() string           { return stringOf(e) }
func (e *Cast) String() string         { return stringOf(e) }
func (e *Row) String() string          { return stringOf(e) }
func (e *Subscript) String() string    { return stringOf(e) }
func (e *SearchedCase) String() string { return stringOf(e) }
func (e *SimpleCase) String() string   { return stringOf(e) }
func (e *Coalesce) String() string     { return stringOf(e) }
func (e *NullIf) String() string       { return stringOf(e) }
func (e *Lambda) String() string       { return stringOf(e) }
func (e *Bind) String() string         { return stringOf(e) }

func (e *Constant) SafeFormat(w redact.SafePrinter, _ rune) {
	if e.Value == nil {
		w.SafeString("NULL")
		return
	}
	formatValue(w, e.Type, e.Value)
}

func formatValue(w redact.SafePrinter, t types.Type, v any) {
	switch v := v.(type) {
	case nil:
		w.SafeString("NULL")
	case bool:
		if v {
			w.SafeString("TRUE")
		} else {
			w.SafeString("FALSE")
		}
	case int64:
		switch t.Kind() {
		case types.KindDate:
			w.Printf("DATE %s", pq.QuoteLiteral(timeutil.FormatDate(v)))
		case types.KindTimestamp, types.KindTimestampTZ:
			w.Printf("TIMESTAMP %s", pq.QuoteLiteral(timeutil.FormatTimestamp(v, t.(types.TimestampType).Precision)))
		case types.KindBigint:
			w.Print(strconv.FormatInt(v, 10))
		default:
			w.Printf("%s %s", typeName(t), pq.QuoteLiteral(strconv.FormatInt(v, 10)))
		}
	case float64:
		if t.Kind() == types.KindDouble {
			w.Printf("DOUBLE %s", pq.QuoteLiteral(strconv.FormatFloat(v, 'g', -1, 64)))
		} else {
			w.Printf("%s %s", typeName(t), pq.QuoteLiteral(strconv.FormatFloat(v, 'g', -1, 32)))
		}
	case *apd.Decimal:
		w.Printf("DECIMAL %s", pq.QuoteLiteral(v.String()))
	case string:
		if t.Kind() == types.KindChar {
			w.Printf("CHAR %s", pq.QuoteLiteral(v))
		} else {
			w.Print(pq.QuoteLiteral(v))
		}
	case []byte:
		w.Printf("X%s", pq.QuoteLiteral(hex.EncodeToString(v)))
	case []any:
		switch t := t.(type) {
		case types.RowType:
			w.SafeString("ROW(")
			for i, item := range v {
				if i > 0 {
					w.SafeString(", ")
				}
				var ft types.Type = types.Unknown
				if i < len(t.Fields) {
					ft = t.Fields[i].Type
				}
				formatValue(w, ft, item)
			}
			w.SafeRune(')')
		case types.ArrayType:
			w.SafeString("ARRAY[")
			for i, item := range v {
				if i > 0 {
					w.SafeString(", ")
				}
				formatValue(w, t.Element, item)
			}
			w.SafeRune(']')
		default:
			w.Printf("%v", v)
		}
	default:
		w.Printf("%v", v)
	}
}

func (e *Reference) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(quoteIdentifier(e.Name)))
}

// quoteIdentifier leaves simple lower case identifiers bare.
func quoteIdentifier(name string) string {
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return pq.QuoteIdentifier(name)
		}
	}
	return name
}

func formatList(w redact.SafePrinter, es []Expression) {
	for i, e := range es {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(e)
	}
}

func (e *Call) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(e.Function.Name()))
	w.SafeRune('(')
	formatList(w, e.Arguments)
	w.SafeRune(')')
}

func (e *Arithmetic) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%v %v %v)", e.Left, e.Operator, e.Right)
}

func (e *Comparison) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%v %v %v)", e.Left, e.Operator, e.Right)
}

func (e *Logical) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('(')
	for i, t := range e.Terms {
		if i > 0 {
			w.Printf(" %v ", e.Operator)
		}
		w.Print(t)
	}
	w.SafeRune(')')
}

func (e *Not) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(NOT %v)", e.Value)
}

func (e *IsNull) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%v IS NULL)", e.Value)
}

func (e *Between) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%v BETWEEN %v AND %v)", e.Value, e.Min, e.Max)
}

func (e *In) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%v IN (", e.Value)
	formatList(w, e.ValueList)
	w.SafeString("))")
}

func (e *Cast) SafeFormat(w redact.SafePrinter, _ rune) {
	if e.Safe {
		w.SafeString("TRY_CAST(")
	} else {
		w.SafeString("CAST(")
	}
	w.Printf("%v AS %v)", e.Value, typeName(e.Type))
}

func (e *Row) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("ROW(")
	formatList(w, e.Items)
	w.SafeRune(')')
}

func (e *Subscript) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%v[%v]", e.Base, e.Index)
}

func formatWhen(w redact.SafePrinter, clauses []WhenClause, def Expression) {
	for _, c := range clauses {
		w.Printf(" WHEN %v THEN %v", c.Operand, c.Result)
	}
	if def != nil {
		w.Printf(" ELSE %v", def)
	}
	w.SafeString(" END")
}

func (e *SearchedCase) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("CASE")
	formatWhen(w, e.WhenClauses, e.Default)
}

func (e *SimpleCase) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("CASE %v", e.Operand)
	formatWhen(w, e.WhenClauses, e.Default)
}

func (e *Coalesce) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("COALESCE(")
	formatList(w, e.Operands)
	w.SafeRune(')')
}

func (e *NullIf) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("NULLIF(%v, %v)", e.First, e.Second)
}

func (e *Lambda) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('(')
	for i, a := range e.Arguments {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(redact.SafeString(quoteIdentifier(a)))
	}
	w.Printf(") -> %v", e.Body)
}

func (e *Bind) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("BIND(")
	for _, v := range e.Values {
		w.Printf("%v, ", v)
	}
	w.Printf("%v)", e.Function)
}
