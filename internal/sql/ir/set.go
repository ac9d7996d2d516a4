package ir

// ExpressionSet is an insertion-ordered set of expressions under structural
// equality.
type ExpressionSet struct {
	buckets map[uint64][]Expression
	items   []Expression
}

// NewExpressionSet returns a set holding the given expressions
func NewExpressionSet(es ...Expression) *ExpressionSet {
	s := &ExpressionSet{buckets: make(map[uint64][]Expression)}
	for _, e := range es {
		s.Add(e)
	}
	return s
}

// Add inserts e and reports whether it was not already present
func (s *ExpressionSet) Add(e Expression) bool {
	if s.buckets == nil {
		s.buckets = make(map[uint64][]Expression)
	}
	h := Hash(e)
	for _, existing := range s.buckets[h] {
		if Equal(existing, e) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], e)
	s.items = append(s.items, e)
	return true
}

// Contains reports whether an expression structurally equal to e is present
func (s *ExpressionSet) Contains(e Expression) bool {
	for _, existing := range s.buckets[Hash(e)] {
		if Equal(existing, e) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct expressions
func (s *ExpressionSet) Len() int { return len(s.items) }

// Items returns the expressions in insertion order
func (s *ExpressionSet) Items() []Expression {
	return append([]Expression(nil), s.items...)
}
