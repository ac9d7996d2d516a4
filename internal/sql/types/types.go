package types

import (
	"fmt"
	"strings"
)

// Kind identifies the family of a Type.
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindTinyint
	KindSmallint
	KindInteger
	KindBigint
	KindReal
	KindDouble
	KindDecimal
	KindVarchar
	KindChar
	KindVarbinary
	KindDate
	KindTimestamp
	KindTimestampTZ
	KindArray
	KindMap
	KindRow
	KindFunction
)

// Type represents an IR data type
type Type interface {
	// Kind returns the type family
	Kind() Kind

	// Name returns the SQL name of the type including its parameters (e.g., "decimal(10,2)")
	Name() string

	// Comparable reports whether values of this type support = and <>
	Comparable() bool

	// Orderable reports whether values of this type support < and >
	Orderable() bool

	String() string
}

// Scalar type singletons
var (
	Unknown   Type = scalarType{kind: KindUnknown, name: "unknown"}
	Boolean   Type = scalarType{kind: KindBoolean, name: "boolean"}
	Tinyint   Type = scalarType{kind: KindTinyint, name: "tinyint"}
	Smallint  Type = scalarType{kind: KindSmallint, name: "smallint"}
	Integer   Type = scalarType{kind: KindInteger, name: "integer"}
	Bigint    Type = scalarType{kind: KindBigint, name: "bigint"}
	Real      Type = scalarType{kind: KindReal, name: "real"}
	Double    Type = scalarType{kind: KindDouble, name: "double"}
	Varbinary Type = scalarType{kind: KindVarbinary, name: "varbinary"}
	Date      Type = scalarType{kind: KindDate, name: "date"}

	// UnboundedVarchar is varchar without a length limit
	UnboundedVarchar Type = VarcharType{Length: -1}

	// Timestamp is timestamp(3), the default precision
	Timestamp Type = TimestampType{Precision: 3}

	// TimestampTZ is timestamp(3) with time zone
	TimestampTZ Type = TimestampType{Precision: 3, WithTimeZone: true}
)

type scalarType struct {
	kind Kind
	name string
}

func (t scalarType) Kind() Kind       { return t.kind }
func (t scalarType) Name() string     { return t.name }
func (t scalarType) String() string   { return t.name }
func (t scalarType) Comparable() bool { return true }

func (t scalarType) Orderable() bool {
	return t.kind != KindUnknown
}

// DecimalType is an exact numeric type with fixed precision and scale
type DecimalType struct {
	Precision int
	Scale     int
}

// MaxDecimalPrecision is the largest precision a decimal may declare
const MaxDecimalPrecision = 38

// Decimal returns DECIMAL(precision, scale)
func Decimal(precision, scale int) Type {
	return DecimalType{Precision: precision, Scale: scale}
}

func (t DecimalType) Kind() Kind       { return KindDecimal }
func (t DecimalType) Name() string     { return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale) }
func (t DecimalType) String() string   { return t.Name() }
func (t DecimalType) Comparable() bool { return true }
func (t DecimalType) Orderable() bool  { return true }

// VarcharType is a variable length string. A negative Length means unbounded.
type VarcharType struct {
	Length int
}

// Varchar returns VARCHAR(length)
func Varchar(length int) Type {
	return VarcharType{Length: length}
}

func (t VarcharType) Kind() Kind { return KindVarchar }

func (t VarcharType) Name() string {
	if t.Unbounded() {
		return "varchar"
	}
	return fmt.Sprintf("varchar(%d)", t.Length)
}

func (t VarcharType) String() string   { return t.Name() }
func (t VarcharType) Comparable() bool { return true }
func (t VarcharType) Orderable() bool  { return true }

// Unbounded reports whether the varchar has no length limit
func (t VarcharType) Unbounded() bool { return t.Length < 0 }

// CharType is a fixed length, space padded string
type CharType struct {
	Length int
}

// Char returns CHAR(length)
func Char(length int) Type {
	return CharType{Length: length}
}

func (t CharType) Kind() Kind       { return KindChar }
func (t CharType) Name() string     { return fmt.Sprintf("char(%d)", t.Length) }
func (t CharType) String() string   { return t.Name() }
func (t CharType) Comparable() bool { return true }
func (t CharType) Orderable() bool  { return true }

// TimestampType is a point in time with fractional second precision.
// Values are carried as microseconds since the epoch.
type TimestampType struct {
	Precision    int
	WithTimeZone bool
}

func (t TimestampType) Kind() Kind {
	if t.WithTimeZone {
		return KindTimestampTZ
	}
	return KindTimestamp
}

func (t TimestampType) Name() string {
	if t.WithTimeZone {
		return fmt.Sprintf("timestamp(%d) with time zone", t.Precision)
	}
	return fmt.Sprintf("timestamp(%d)", t.Precision)
}

func (t TimestampType) String() string   { return t.Name() }
func (t TimestampType) Comparable() bool { return true }
func (t TimestampType) Orderable() bool  { return true }

// ArrayType is an ordered collection of elements of one type
type ArrayType struct {
	Element Type
}

// Array returns ARRAY(element)
func Array(element Type) Type {
	return ArrayType{Element: element}
}

func (t ArrayType) Kind() Kind       { return KindArray }
func (t ArrayType) Name() string     { return "array(" + t.Element.Name() + ")" }
func (t ArrayType) String() string   { return t.Name() }
func (t ArrayType) Comparable() bool { return t.Element.Comparable() }
func (t ArrayType) Orderable() bool  { return t.Element.Orderable() }

// MapType associates keys with values
type MapType struct {
	Key   Type
	Value Type
}

// Map returns MAP(key, value)
func Map(key, value Type) Type {
	return MapType{Key: key, Value: value}
}

func (t MapType) Kind() Kind       { return KindMap }
func (t MapType) Name() string     { return "map(" + t.Key.Name() + ", " + t.Value.Name() + ")" }
func (t MapType) String() string   { return t.Name() }
func (t MapType) Comparable() bool { return t.Key.Comparable() && t.Value.Comparable() }
func (t MapType) Orderable() bool  { return false }

// RowField is a single, optionally named, field of a row type
type RowField struct {
	Name string
	Type Type
}

// RowType is a structured type made of ordered fields
type RowType struct {
	Fields []RowField
}

// Row returns an anonymous row type with the given field types
func Row(fieldTypes ...Type) Type {
	fields := make([]RowField, len(fieldTypes))
	for i, t := range fieldTypes {
		fields[i] = RowField{Type: t}
	}
	return RowType{Fields: fields}
}

// NamedRow returns a row type with named fields
func NamedRow(fields ...RowField) Type {
	return RowType{Fields: append([]RowField(nil), fields...)}
}

func (t RowType) Kind() Kind { return KindRow }

func (t RowType) Name() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name != "" {
			parts[i] = f.Name + " " + f.Type.Name()
		} else {
			parts[i] = f.Type.Name()
		}
	}
	return "row(" + strings.Join(parts, ", ") + ")"
}

func (t RowType) String() string { return t.Name() }

func (t RowType) Comparable() bool {
	for _, f := range t.Fields {
		if !f.Type.Comparable() {
			return false
		}
	}
	return true
}

func (t RowType) Orderable() bool {
	for _, f := range t.Fields {
		if !f.Type.Orderable() {
			return false
		}
	}
	return true
}

// FunctionType is the type of a lambda expression
type FunctionType struct {
	Arguments []Type
	Return    Type
}

// Function returns FUNCTION(arguments..., return)
func Function(arguments []Type, ret Type) Type {
	return FunctionType{Arguments: append([]Type(nil), arguments...), Return: ret}
}

func (t FunctionType) Kind() Kind { return KindFunction }

func (t FunctionType) Name() string {
	parts := make([]string, 0, len(t.Arguments)+1)
	for _, a := range t.Arguments {
		parts = append(parts, a.Name())
	}
	parts = append(parts, t.Return.Name())
	return "function(" + strings.Join(parts, ", ") + ")"
}

func (t FunctionType) String() string   { return t.Name() }
func (t FunctionType) Comparable() bool { return false }
func (t FunctionType) Orderable() bool  { return false }
