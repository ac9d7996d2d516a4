package interpreter

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/sql/types"
	"github.com/dshills/QuantaIR/internal/util/timeutil"
)

// Coercion converts a non-null value of one type to another. NULL is passed
// through unchanged.
type Coercion func(value any) (any, error)

// decimalContext is used for all decimal arithmetic and rounding.
var decimalContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(types.MaxDecimalPrecision)
	c.Rounding = apd.RoundHalfUp
	return c
}()

func nullSafe(f func(any) (any, error)) Coercion {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return f(v)
	}
}

func identity(v any) (any, error) { return v, nil }

// buildCoercion returns the conversion from one type to another, or a
// CannotCoerce error when no cast exists.
func buildCoercion(from, to types.Type) (Coercion, error) {
	if types.Equal(from, to) || from.Kind() == types.KindUnknown {
		return nullSafe(identity), nil
	}
	cannot := func() (Coercion, error) {
		return nil, errors.InvalidCastError(from.Name(), to.Name())
	}

	switch to.Kind() {
	case types.KindBoolean:
		switch {
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) { return parseBoolean(v.(string)) }), nil
		case types.IsIntegral(from):
			return nullSafe(func(v any) (any, error) { return v.(int64) != 0, nil }), nil
		case types.IsFloatingPoint(from):
			return nullSafe(func(v any) (any, error) { return v.(float64) != 0, nil }), nil
		case from.Kind() == types.KindDecimal:
			return nullSafe(func(v any) (any, error) { return !v.(*apd.Decimal).IsZero(), nil }), nil
		}

	case types.KindTinyint, types.KindSmallint, types.KindInteger, types.KindBigint:
		lo, hi := types.IntegralRange(to)
		check := func(n int64) (any, error) {
			if n < lo || n > hi {
				return nil, errors.NumericValueOutOfRangeError(to.Name())
			}
			return n, nil
		}
		switch {
		case types.IsIntegral(from):
			return nullSafe(func(v any) (any, error) { return check(v.(int64)) }), nil
		case types.IsFloatingPoint(from):
			return nullSafe(func(v any) (any, error) {
				f := math.Round(v.(float64))
				if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				return check(int64(f))
			}), nil
		case from.Kind() == types.KindDecimal:
			return nullSafe(func(v any) (any, error) {
				var r apd.Decimal
				if _, err := decimalContext.RoundToIntegralValue(&r, v.(*apd.Decimal)); err != nil {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				n, err := r.Int64()
				if err != nil {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				return check(n)
			}), nil
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) {
				n, err := strconv.ParseInt(strings.TrimSpace(v.(string)), 10, 64)
				if err != nil {
					return nil, errors.InvalidTextRepresentationError(to.Name(), v.(string))
				}
				return check(n)
			}), nil
		case from.Kind() == types.KindBoolean:
			return nullSafe(func(v any) (any, error) {
				if v.(bool) {
					return int64(1), nil
				}
				return int64(0), nil
			}), nil
		}

	case types.KindReal, types.KindDouble:
		narrow := func(f float64) float64 {
			if to.Kind() == types.KindReal {
				return float64(float32(f))
			}
			return f
		}
		switch {
		case types.IsIntegral(from):
			return nullSafe(func(v any) (any, error) { return narrow(float64(v.(int64))), nil }), nil
		case types.IsFloatingPoint(from):
			return nullSafe(func(v any) (any, error) { return narrow(v.(float64)), nil }), nil
		case from.Kind() == types.KindDecimal:
			return nullSafe(func(v any) (any, error) {
				f, err := v.(*apd.Decimal).Float64()
				if err != nil {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				return narrow(f), nil
			}), nil
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) {
				f, err := strconv.ParseFloat(strings.TrimSpace(v.(string)), 64)
				if err != nil {
					return nil, errors.InvalidTextRepresentationError(to.Name(), v.(string))
				}
				return narrow(f), nil
			}), nil
		case from.Kind() == types.KindBoolean:
			return nullSafe(func(v any) (any, error) {
				if v.(bool) {
					return 1.0, nil
				}
				return 0.0, nil
			}), nil
		}

	case types.KindDecimal:
		target := to.(types.DecimalType)
		fit := func(d *apd.Decimal) (any, error) { return quantize(d, target) }
		switch {
		case types.IsIntegral(from):
			return nullSafe(func(v any) (any, error) { return fit(apd.New(v.(int64), 0)) }), nil
		case types.IsFloatingPoint(from):
			return nullSafe(func(v any) (any, error) {
				f := v.(float64)
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				d := new(apd.Decimal)
				if _, err := d.SetFloat64(f); err != nil {
					return nil, errors.NumericValueOutOfRangeError(to.Name())
				}
				return fit(d)
			}), nil
		case from.Kind() == types.KindDecimal:
			return nullSafe(func(v any) (any, error) { return fit(v.(*apd.Decimal)) }), nil
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) {
				d, _, err := apd.NewFromString(strings.TrimSpace(v.(string)))
				if err != nil || d.Form != apd.Finite {
					return nil, errors.InvalidTextRepresentationError(to.Name(), v.(string))
				}
				return fit(d)
			}), nil
		}

	case types.KindVarchar:
		length := to.(types.VarcharType).Length
		if types.IsStringLike(from) {
			return nullSafe(func(v any) (any, error) { return truncate(v.(string), length), nil }), nil
		}
		format, ok := formatter(from)
		if !ok {
			return cannot()
		}
		return nullSafe(func(v any) (any, error) {
			s := format(v)
			if length >= 0 && utf8.RuneCountInString(s) > length {
				return nil, errors.Newf(errors.StringDataRightTruncation,
					"value %s cannot be represented as %s", s, to.Name())
			}
			return s, nil
		}), nil

	case types.KindChar:
		length := to.(types.CharType).Length
		format, ok := formatter(from)
		if types.IsStringLike(from) {
			format, ok = func(v any) string { return v.(string) }, true
		}
		if !ok {
			return cannot()
		}
		return nullSafe(func(v any) (any, error) {
			s := truncate(format(v), length)
			if n := utf8.RuneCountInString(s); n < length {
				s += strings.Repeat(" ", length-n)
			}
			return s, nil
		}), nil

	case types.KindVarbinary:
		if types.IsStringLike(from) {
			return nullSafe(func(v any) (any, error) { return []byte(v.(string)), nil }), nil
		}

	case types.KindDate:
		switch {
		case types.IsTimestamp(from):
			return nullSafe(func(v any) (any, error) { return timeutil.MicrosToDays(v.(int64)), nil }), nil
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) {
				days, err := timeutil.ParseDate(v.(string))
				if err != nil {
					return nil, errors.Newf(errors.InvalidDatetimeFormat, "%v", err)
				}
				return days, nil
			}), nil
		}

	case types.KindTimestamp, types.KindTimestampTZ:
		precision := to.(types.TimestampType).Precision
		switch {
		case from.Kind() == types.KindDate:
			return nullSafe(func(v any) (any, error) { return v.(int64) * timeutil.MicrosPerDay, nil }), nil
		case types.IsTimestamp(from):
			return nullSafe(func(v any) (any, error) { return roundMicros(v.(int64), precision), nil }), nil
		case types.IsStringLike(from):
			return nullSafe(func(v any) (any, error) {
				micros, err := timeutil.ParseTimestamp(v.(string))
				if err != nil {
					return nil, errors.Newf(errors.InvalidDatetimeFormat, "%v", err)
				}
				return roundMicros(micros, precision), nil
			}), nil
		}

	case types.KindArray:
		src, ok := from.(types.ArrayType)
		if !ok {
			return cannot()
		}
		element, err := buildCoercion(src.Element, to.(types.ArrayType).Element)
		if err != nil {
			return cannot()
		}
		return nullSafe(func(v any) (any, error) {
			items := v.([]any)
			out := make([]any, len(items))
			for i, item := range items {
				c, err := element(item)
				if err != nil {
					return nil, err
				}
				out[i] = c
			}
			return out, nil
		}), nil

	case types.KindRow:
		src, ok := from.(types.RowType)
		dst := to.(types.RowType)
		if !ok || len(src.Fields) != len(dst.Fields) {
			return cannot()
		}
		fields := make([]Coercion, len(dst.Fields))
		for i := range dst.Fields {
			f, err := buildCoercion(src.Fields[i].Type, dst.Fields[i].Type)
			if err != nil {
				return cannot()
			}
			fields[i] = f
		}
		return nullSafe(func(v any) (any, error) {
			items := v.([]any)
			out := make([]any, len(items))
			for i, item := range items {
				c, err := fields[i](item)
				if err != nil {
					return nil, err
				}
				out[i] = c
			}
			return out, nil
		}), nil
	}
	return cannot()
}

func parseBoolean(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}
	return nil, errors.InvalidTextRepresentationError("boolean", s)
}

// quantize rounds d to the scale of t and checks that it fits its precision
func quantize(d *apd.Decimal, t types.DecimalType) (any, error) {
	r := new(apd.Decimal)
	if _, err := decimalContext.Quantize(r, d, -int32(t.Scale)); err != nil {
		return nil, errors.NumericValueOutOfRangeError(t.Name())
	}
	if r.NumDigits() > int64(t.Precision) {
		return nil, errors.NumericValueOutOfRangeError(t.Name())
	}
	return r, nil
}

func truncate(s string, length int) string {
	if length < 0 || utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length])
}

// roundMicros rounds a timestamp to the given number of fractional digits
func roundMicros(micros int64, precision int) int64 {
	if precision >= 6 {
		return micros
	}
	unit := int64(math.Pow10(6 - max(precision, 0)))
	return timeutil.FloorDiv(micros+unit/2, unit) * unit
}

// formatter renders values of t as text for casts to varchar and char
func formatter(t types.Type) (func(any) string, bool) {
	switch {
	case t.Kind() == types.KindBoolean:
		return func(v any) string { return strconv.FormatBool(v.(bool)) }, true
	case types.IsIntegral(t):
		return func(v any) string { return strconv.FormatInt(v.(int64), 10) }, true
	case t.Kind() == types.KindDouble:
		return func(v any) string { return strconv.FormatFloat(v.(float64), 'g', -1, 64) }, true
	case t.Kind() == types.KindReal:
		return func(v any) string { return strconv.FormatFloat(v.(float64), 'g', -1, 32) }, true
	case t.Kind() == types.KindDecimal:
		return func(v any) string { return v.(*apd.Decimal).Text('f') }, true
	case t.Kind() == types.KindDate:
		return func(v any) string { return timeutil.FormatDate(v.(int64)) }, true
	case types.IsTimestamp(t):
		precision := t.(types.TimestampType).Precision
		return func(v any) string { return timeutil.FormatTimestamp(v.(int64), precision) }, true
	}
	return nil, false
}
