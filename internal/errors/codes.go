package errors

// SQLSTATE codes raised by the expression engine.
// Based on PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 0A - Feature Not Supported
const (
	FeatureNotSupported = "0A000"
)

// Class 22 - Data Exception
const (
	DataException             = "22000"
	ArraySubscriptError       = "2202E"
	DivisionByZero            = "22012"
	InvalidDatetimeFormat     = "22007"
	InvalidParameterValue     = "22023"
	NumericValueOutOfRange    = "22003"
	StringDataRightTruncation = "22001"
	InvalidTextRepresentation = "22P02"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	CannotCoerce          = "42846"
	DatatypeMismatch      = "42804"
	IndeterminateDatatype = "42P18"
	UndefinedColumn       = "42703"
	UndefinedFunction     = "42883"
)

// Class XX - Internal Error
const (
	InternalError = "XX000"
)

// Aliases naming the engine's error taxonomy.
const (
	// InvalidArgument marks a malformed expression node.
	InvalidArgument = InvalidParameterValue
	// IllegalState marks a broken precondition left behind by an earlier pass.
	IllegalState = InternalError
	// UnsupportedOperation marks a tree shape the engine does not handle.
	UnsupportedOperation = FeatureNotSupported
)
