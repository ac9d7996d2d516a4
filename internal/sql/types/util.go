package types

import "math"

// Equal reports whether two types are the same type, parameters included.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.Name() == b.Name()
}

// IsIntegral reports whether t is tinyint, smallint, integer or bigint
func IsIntegral(t Type) bool {
	switch t.Kind() {
	case KindTinyint, KindSmallint, KindInteger, KindBigint:
		return true
	}
	return false
}

// IsFloatingPoint reports whether t is real or double.
func IsFloatingPoint(t Type) bool {
	k := t.Kind()
	return k == KindReal || k == KindDouble
}

// CanHoldNaN reports whether values of t may be NaN. Ordering comparisons
// over such types are not negatable.
func CanHoldNaN(t Type) bool {
	return IsFloatingPoint(t)
}

// IsNumeric reports whether t is an integral, floating point or decimal type
func IsNumeric(t Type) bool {
	return IsIntegral(t) || IsFloatingPoint(t) || t.Kind() == KindDecimal
}

// IsStringLike reports whether t is varchar or char
func IsStringLike(t Type) bool {
	k := t.Kind()
	return k == KindVarchar || k == KindChar
}

// IsTimestamp reports whether t is a timestamp with or without time zone
func IsTimestamp(t Type) bool {
	k := t.Kind()
	return k == KindTimestamp || k == KindTimestampTZ
}

// IntegralRange returns the inclusive value range of an integral type.
func IntegralRange(t Type) (lo, hi int64) {
	switch t.Kind() {
	case KindTinyint:
		return math.MinInt8, math.MaxInt8
	case KindSmallint:
		return math.MinInt16, math.MaxInt16
	case KindInteger:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// integralAsDecimal returns the decimal type able to hold every value of t.
func integralAsDecimal(t Type) DecimalType {
	switch t.Kind() {
	case KindTinyint:
		return DecimalType{Precision: 3}
	case KindSmallint:
		return DecimalType{Precision: 5}
	case KindInteger:
		return DecimalType{Precision: 10}
	default:
		return DecimalType{Precision: 19}
	}
}

// AsDecimal returns t as a decimal type when t is decimal or integral.
func AsDecimal(t Type) (DecimalType, bool) {
	if d, ok := t.(DecimalType); ok {
		return d, true
	}
	if IsIntegral(t) {
		return integralAsDecimal(t), true
	}
	return DecimalType{}, false
}

// CommonSuperType returns the narrowest type both a and b implicitly coerce to.
func CommonSuperType(a, b Type) (Type, bool) {
	if Equal(a, b) {
		return a, true
	}
	if a.Kind() == KindUnknown {
		return b, true
	}
	if b.Kind() == KindUnknown {
		return a, true
	}

	switch {
	case IsIntegral(a) && IsIntegral(b):
		if a.Kind() > b.Kind() {
			return a, true
		}
		return b, true
	case IsFloatingPoint(a) && IsNumeric(b), IsNumeric(a) && IsFloatingPoint(b):
		if a.Kind() == KindDouble || b.Kind() == KindDouble {
			return Double, true
		}
		return Real, true
	case IsNumeric(a) && IsNumeric(b):
		da, _ := AsDecimal(a)
		db, _ := AsDecimal(b)
		scale := max(da.Scale, db.Scale)
		precision := min(MaxDecimalPrecision, max(da.Precision-da.Scale, db.Precision-db.Scale)+scale)
		return DecimalType{Precision: precision, Scale: scale}, true
	case IsStringLike(a) && IsStringLike(b):
		if a.Kind() == KindChar && b.Kind() == KindChar {
			return CharType{Length: max(a.(CharType).Length, b.(CharType).Length)}, true
		}
		la, lb := stringLength(a), stringLength(b)
		if la < 0 || lb < 0 {
			return UnboundedVarchar, true
		}
		return VarcharType{Length: max(la, lb)}, true
	case IsTimestamp(a) && IsTimestamp(b):
		ta, tb := a.(TimestampType), b.(TimestampType)
		if ta.WithTimeZone != tb.WithTimeZone {
			return nil, false
		}
		return TimestampType{Precision: max(ta.Precision, tb.Precision), WithTimeZone: ta.WithTimeZone}, true
	case a.Kind() == KindDate && IsTimestamp(b):
		return b, true
	case IsTimestamp(a) && b.Kind() == KindDate:
		return a, true
	case a.Kind() == KindArray && b.Kind() == KindArray:
		element, ok := CommonSuperType(a.(ArrayType).Element, b.(ArrayType).Element)
		if !ok {
			return nil, false
		}
		return ArrayType{Element: element}, true
	}
	return nil, false
}

func stringLength(t Type) int {
	switch v := t.(type) {
	case VarcharType:
		return v.Length
	case CharType:
		return v.Length
	}
	return -1
}
