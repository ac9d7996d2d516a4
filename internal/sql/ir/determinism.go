package ir

// DeterminismOracle reports whether evaluating an expression twice on the
// same input always yields the same value.
type DeterminismOracle interface {
	IsDeterministic(e Expression) bool
}

// DeterminismFunc adapts a function to DeterminismOracle
type DeterminismFunc func(e Expression) bool

func (f DeterminismFunc) IsDeterministic(e Expression) bool { return f(e) }

// DefaultDeterminism trusts the determinism flag of resolved functions.
var DefaultDeterminism DeterminismOracle = DeterminismFunc(IsDeterministic)

// IsDeterministic reports whether every function invoked by e is deterministic
func IsDeterministic(e Expression) bool {
	for node := range PreOrder(e) {
		switch n := node.(type) {
		case *Call:
			if !n.Function.Deterministic {
				return false
			}
		case *Arithmetic:
			if !n.Function.Deterministic {
				return false
			}
		}
	}
	return true
}

// IsConstant reports whether e is a deterministic expression without
// references or lambdas, so it evaluates to the same value on every row.
func IsConstant(e Expression) bool {
	if _, ok := e.(*Constant); ok {
		return true
	}
	for node := range PreOrder(e) {
		switch n := node.(type) {
		case *Reference, *Lambda, *Bind:
			return false
		case *Call:
			if !n.Function.Deterministic {
				return false
			}
		}
	}
	return true
}
