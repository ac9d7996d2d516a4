package errors

import (
	"runtime"

	crdberrors "github.com/cockroachdb/errors"
)

// Recover converts a value recovered from a panic into an error. Engine
// passes raise *Error values by panicking; public entry points defer a
// recover and hand the value to Recover:
//
//	defer func() {
//		if r := recover(); r != nil {
//			err = errors.Recover(r)
//		}
//	}()
//
// *Error panics are returned as is. Runtime errors (nil dereference, index
// out of range) become assertion failures. Anything else is re-panicked.
func Recover(r any) error {
	err, ok := r.(error)
	if !ok {
		panic(r)
	}
	if qErr := GetError(err); qErr != nil {
		return err
	}
	if crdberrors.HasInterface(err, (*runtime.Error)(nil)) {
		return crdberrors.HandleAsAssertionFailure(err)
	}
	panic(r)
}

// IsAssertionFailure reports whether err came from a recovered runtime error
func IsAssertionFailure(err error) bool {
	return crdberrors.IsAssertionFailure(err)
}

// Wrapf annotates err with a formatted message, keeping its SQLSTATE code
// reachable through GetError
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return crdberrors.Wrapf(err, format, args...)
}

// Errorf formats a plain error that carries no SQLSTATE code
func Errorf(format string, args ...interface{}) error {
	return crdberrors.Newf(format, args...)
}

// Must panics with err when err is non-nil
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Assertf panics with an IllegalState error when cond is false
func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(IllegalStatef(format, args...))
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return crdberrors.Is(err, target)
}
