package ir

// ExtractConjuncts flattens nested ANDs into their terms, left to right
func ExtractConjuncts(e Expression) []Expression {
	return ExtractPredicates(OpAnd, e)
}

// ExtractDisjuncts flattens nested ORs into their terms, left to right
func ExtractDisjuncts(e Expression) []Expression {
	return ExtractPredicates(OpOr, e)
}

// ExtractPredicates flattens nested Logical nodes with operator op. Logical
// nodes with the other operator are returned as leaves.
func ExtractPredicates(op LogicalOperator, e Expression) []Expression {
	var out []Expression
	var walk func(Expression)
	walk = func(e Expression) {
		if l, ok := e.(*Logical); ok && l.Operator == op {
			for _, t := range l.Terms {
				walk(t)
			}
			return
		}
		out = append(out, e)
	}
	walk(e)
	return out
}

// And joins terms with AND. No terms yields TRUE and a single term is
// returned as is.
func And(terms ...Expression) Expression {
	return Logicals(OpAnd, terms)
}

// Or joins terms with OR. No terms yields FALSE and a single term is
// returned as is.
func Or(terms ...Expression) Expression {
	return Logicals(OpOr, terms)
}

// Logicals joins terms with op without any simplification
func Logicals(op LogicalOperator, terms []Expression) Expression {
	switch len(terms) {
	case 0:
		return identity(op)
	case 1:
		return terms[0]
	}
	return NewLogical(op, terms...)
}

func identity(op LogicalOperator) *Constant {
	return Bool(op == OpAnd)
}

// CombineConjuncts joins es with AND after flattening, dropping TRUE and
// removing duplicate deterministic terms. A FALSE term makes the result
// FALSE.
func CombineConjuncts(es ...Expression) Expression {
	return CombinePredicates(OpAnd, DefaultDeterminism, es)
}

// CombineDisjuncts joins es with OR after flattening, dropping FALSE and
// removing duplicate deterministic terms. A TRUE term makes the result TRUE.
func CombineDisjuncts(es ...Expression) Expression {
	return CombinePredicates(OpOr, DefaultDeterminism, es)
}

// CombinePredicates is the general form of CombineConjuncts and
// CombineDisjuncts. Non-deterministic terms are never deduplicated since
// each occurrence may evaluate differently.
func CombinePredicates(op LogicalOperator, oracle DeterminismOracle, es []Expression) Expression {
	if oracle == nil {
		oracle = DefaultDeterminism
	}
	id := identity(op)
	absorbing := Bool(op != OpAnd)

	seen := NewExpressionSet()
	var terms []Expression
	for _, e := range es {
		for _, t := range ExtractPredicates(op, e) {
			if Equal(t, id) {
				continue
			}
			if Equal(t, absorbing) {
				return absorbing
			}
			if oracle.IsDeterministic(t) && !seen.Add(t) {
				continue
			}
			terms = append(terms, t)
		}
	}
	return Logicals(op, terms)
}
