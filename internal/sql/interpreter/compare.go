package interpreter

import (
	"bytes"
	"cmp"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/dshills/QuantaIR/internal/sql/types"
	"github.com/dshills/QuantaIR/internal/util/timeutil"
)

// Compare orders two non-null values of types at and bt. ok is false when the
// values are unordered, which happens for NaN and for incompatible types.
func Compare(a any, at types.Type, b any, bt types.Type) (c int, ok bool) {
	switch {
	case types.IsNumeric(at) && types.IsNumeric(bt):
		return compareNumeric(a, at, b, bt)
	case types.IsStringLike(at) && types.IsStringLike(bt):
		as, bs := a.(string), b.(string)
		if at.Kind() == types.KindChar || bt.Kind() == types.KindChar {
			as, bs = strings.TrimRight(as, " "), strings.TrimRight(bs, " ")
		}
		return strings.Compare(as, bs), true
	case at.Kind() == types.KindBoolean && bt.Kind() == types.KindBoolean:
		return cmp.Compare(boolInt(a.(bool)), boolInt(b.(bool))), true
	case isTemporal(at) && isTemporal(bt):
		return cmp.Compare(temporalMicros(a, at), temporalMicros(b, bt)), true
	case at.Kind() == types.KindVarbinary && bt.Kind() == types.KindVarbinary:
		return bytes.Compare(a.([]byte), b.([]byte)), true
	case at.Kind() == types.KindArray && bt.Kind() == types.KindArray:
		return compareSequences(a.([]any), elementTypes(at, len(a.([]any))), b.([]any), elementTypes(bt, len(b.([]any))))
	case at.Kind() == types.KindRow && bt.Kind() == types.KindRow:
		return compareSequences(a.([]any), elementTypes(at, len(a.([]any))), b.([]any), elementTypes(bt, len(b.([]any))))
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isTemporal(t types.Type) bool {
	return t.Kind() == types.KindDate || types.IsTimestamp(t)
}

func temporalMicros(v any, t types.Type) int64 {
	if t.Kind() == types.KindDate {
		return v.(int64) * timeutil.MicrosPerDay
	}
	return v.(int64)
}

func elementTypes(t types.Type, n int) []types.Type {
	out := make([]types.Type, n)
	for i := range out {
		switch t := t.(type) {
		case types.ArrayType:
			out[i] = t.Element
		case types.RowType:
			if i < len(t.Fields) {
				out[i] = t.Fields[i].Type
			} else {
				out[i] = types.Unknown
			}
		}
	}
	return out
}

// compareSequences orders element-wise; a NULL element makes the result unknown
func compareSequences(a []any, at []types.Type, b []any, bt []types.Type) (int, bool) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == nil || b[i] == nil {
			return 0, false
		}
		c, ok := Compare(a[i], at[i], b[i], bt[i])
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmp.Compare(len(a), len(b)), true
}

func compareNumeric(a any, at types.Type, b any, bt types.Type) (int, bool) {
	switch {
	case types.IsFloatingPoint(at) || types.IsFloatingPoint(bt):
		af, _ := ToFloat64(a, at)
		bf, _ := ToFloat64(b, bt)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		return cmp.Compare(af, bf), true
	case at.Kind() == types.KindDecimal || bt.Kind() == types.KindDecimal:
		return toDecimal(a).Cmp(toDecimal(b)), true
	default:
		return cmp.Compare(a.(int64), b.(int64)), true
	}
}

func toDecimal(v any) *apd.Decimal {
	switch v := v.(type) {
	case *apd.Decimal:
		return v
	case int64:
		return apd.New(v, 0)
	case float64:
		d := new(apd.Decimal)
		_, _ = d.SetFloat64(v)
		return d
	}
	return new(apd.Decimal)
}

// ToFloat64 converts a non-null value to the double used to represent it in
// statistics. Dates are days and timestamps microseconds since the epoch;
// booleans are 0 and 1. ok is false for types without such a representation.
func ToFloat64(v any, t types.Type) (f float64, ok bool) {
	switch v := v.(type) {
	case int64:
		switch {
		case types.IsIntegral(t), t.Kind() == types.KindDate, types.IsTimestamp(t):
			return float64(v), true
		}
	case float64:
		return v, true
	case *apd.Decimal:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		return float64(boolInt(v)), true
	}
	return 0, false
}
