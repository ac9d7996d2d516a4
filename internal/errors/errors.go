package errors

import (
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
)

// Error represents a SQLSTATE-coded engine error
type Error struct {
	Code       string // SQLSTATE code
	Message    string // Primary error message
	Detail     string // Optional detailed error message
	Hint       string // Optional hint message
	Expression string // Rendered expression the error refers to, if any
	DataType   string // Data type name if applicable
	Routine    string // Engine routine that raised the error
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := ""
	if e.Routine != "" {
		prefix = e.Routine + ": "
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s%s (SQLSTATE %s) DETAIL: %s", prefix, e.Message, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s%s (SQLSTATE %s)", prefix, e.Message, e.Code)
}

// New creates a new Error with the given code and message
func New(code string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail adds detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithDetailf adds formatted detail to the error
func (e *Error) WithDetailf(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint adds a hint to the error
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithExpression records the expression the error is about
func (e *Error) WithExpression(expr fmt.Stringer) *Error {
	e.Expression = expr.String()
	return e
}

// WithDataType sets the data type name
func (e *Error) WithDataType(dataType string) *Error {
	e.DataType = dataType
	return e
}

// WithRoutine sets the routine that raised the error
func (e *Error) WithRoutine(routine string) *Error {
	e.Routine = routine
	return e
}

// InvalidArgumentf creates a construction error for a malformed node
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return Newf(InvalidArgument, format, args...)
}

// IllegalStatef creates an error for a violated precondition, such as a
// reference with no bound type
func IllegalStatef(format string, args ...interface{}) *Error {
	return Newf(IllegalState, format, args...)
}

// UnsupportedOperationf creates an error for an unhandled tree shape
func UnsupportedOperationf(format string, args ...interface{}) *Error {
	return Newf(UnsupportedOperation, format, args...)
}

// DivisionByZeroError creates a division by zero error
func DivisionByZeroError() *Error {
	return New(DivisionByZero, "division by zero")
}

// InvalidTextRepresentationError creates an invalid text representation error
func InvalidTextRepresentationError(dataType, value string) *Error {
	return Newf(InvalidTextRepresentation, "invalid input syntax for type %s: \"%s\"", dataType, value).
		WithDataType(dataType)
}

// NumericValueOutOfRangeError creates a numeric value out of range error
func NumericValueOutOfRangeError(dataType string) *Error {
	return Newf(NumericValueOutOfRange, "value out of range for type %s", dataType).
		WithDataType(dataType)
}

// InvalidCastError creates a cannot coerce error
func InvalidCastError(fromType, toType string) *Error {
	return Newf(CannotCoerce, "cannot cast type %s to %s", fromType, toType).
		WithDataType(toType)
}

// FunctionNotFoundError creates an undefined function error
func FunctionNotFoundError(funcName string, argTypes []string) *Error {
	if len(argTypes) > 0 {
		return Newf(UndefinedFunction, "function %s(%v) does not exist", funcName, argTypes)
	}
	return Newf(UndefinedFunction, "function %s() does not exist", funcName)
}

// IsError checks if err is, or wraps, an Error with a specific code
func IsError(err error, code string) bool {
	qErr := GetError(err)
	return qErr != nil && qErr.Code == code
}

// IsInvalidArgument reports whether err is a construction error
func IsInvalidArgument(err error) bool { return IsError(err, InvalidArgument) }

// IsIllegalState reports whether err is an illegal state error
func IsIllegalState(err error) bool { return IsError(err, IllegalState) }

// IsUnsupportedOperation reports whether err is an unsupported shape error
func IsUnsupportedOperation(err error) bool { return IsError(err, UnsupportedOperation) }

// GetError extracts the Error from err's chain, or nil when there is none
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	var qErr *Error
	if crdberrors.As(err, &qErr) {
		return qErr
	}
	return nil
}
