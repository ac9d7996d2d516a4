package planner

import (
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/types"
)

// ValueDomain is the known set of values a symbol can take
type ValueDomain struct {
	Type        types.Type
	Values      []any
	NullAllowed bool
}

// Contains reports whether v, of type t, is one of the domain values
func (d ValueDomain) Contains(v any, t types.Type) bool {
	for _, candidate := range d.Values {
		if c, ok := interpreter.Compare(v, t, candidate, d.Type); ok && c == 0 {
			return true
		}
	}
	return false
}

// NarrowInPredicates drops IN candidates that are constants outside the
// domain of the tested symbol. A list left empty becomes FALSE and a single
// candidate becomes an equality. Predicates over symbols without a domain are
// returned unchanged.
func NarrowInPredicates(e ir.Expression, domains map[string]ValueDomain) ir.Expression {
	if len(domains) == 0 {
		return e
	}
	return ir.RewriteWith(ir.Rules[struct{}]{
		In: func(node *ir.In, _ struct{}, _ *ir.TreeRewriter[struct{}]) ir.Expression {
			ref, ok := node.Value.(*ir.Reference)
			if !ok {
				return node
			}
			domain, ok := domains[ref.Name]
			if !ok {
				return node
			}
			kept := make([]ir.Expression, 0, len(node.ValueList))
			for _, candidate := range node.ValueList {
				c, ok := candidate.(*ir.Constant)
				if ok && c.Value != nil && !domain.Contains(c.Value, c.Type) {
					continue
				}
				kept = append(kept, candidate)
			}
			switch {
			case len(kept) == len(node.ValueList):
				return node
			case len(kept) == 0:
				return ir.False
			case len(kept) == 1:
				return ir.NewComparison(ir.OpEqual, node.Value, kept[0])
			}
			return ir.NewIn(node.Value, kept...)
		},
	}, e)
}
