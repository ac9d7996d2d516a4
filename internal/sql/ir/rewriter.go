package ir

import (
	"github.com/dshills/QuantaIR/internal/errors"
)

// RewriteFunc overrides the rewrite of one node variant. It receives the
// original node and must call tr.Rewrite on the children it wants rewritten.
// Returning nil selects the default rewrite.
type RewriteFunc[N Expression, C any] func(node N, ctx C, tr *TreeRewriter[C]) Expression

// Rules holds the per-variant overrides of a rewrite pass. A nil field falls
// back to Expression, and a nil Expression to the default rewrite.
type Rules[C any] struct {
	Expression   RewriteFunc[Expression, C]
	Constant     RewriteFunc[*Constant, C]
	Reference    RewriteFunc[*Reference, C]
	Call         RewriteFunc[*Call, C]
	Arithmetic   RewriteFunc[*Arithmetic, C]
	Comparison   RewriteFunc[*Comparison, C]
	Logical      RewriteFunc[*Logical, C]
	Not          RewriteFunc[*Not, C]
	IsNull       RewriteFunc[*IsNull, C]
	Between      RewriteFunc[*Between, C]
	In           RewriteFunc[*In, C]
	Cast         RewriteFunc[*Cast, C]
	Row          RewriteFunc[*Row, C]
	Subscript    RewriteFunc[*Subscript, C]
	SearchedCase RewriteFunc[*SearchedCase, C]
	SimpleCase   RewriteFunc[*SimpleCase, C]
	Coalesce     RewriteFunc[*Coalesce, C]
	NullIf       RewriteFunc[*NullIf, C]
	Lambda       RewriteFunc[*Lambda, C]
	Bind         RewriteFunc[*Bind, C]
}

// TreeRewriter applies Rules bottom-up. Nodes whose children did not change
// are returned as is, so an unmodified tree keeps its identity.
type TreeRewriter[C any] struct {
	rules Rules[C]
}

// NewTreeRewriter creates a rewriter for the given rules
func NewTreeRewriter[C any](rules Rules[C]) *TreeRewriter[C] {
	return &TreeRewriter[C]{rules: rules}
}

// Rewrite rewrites e and everything below it. It panics with an
// UnsupportedOperation error on a node outside the IR.
func (tr *TreeRewriter[C]) Rewrite(e Expression, ctx C) Expression {
	if result := tr.dispatch(e, ctx); result != nil {
		return result
	}
	return tr.DefaultRewrite(e, ctx)
}

// DefaultRewrite rewrites the children of e and rebuilds e around them,
// skipping the override for e itself.
func (tr *TreeRewriter[C]) DefaultRewrite(e Expression, ctx C) Expression {
	children := e.Children()
	if len(children) == 0 {
		return e
	}
	var rewritten []Expression
	for i, child := range children {
		r := tr.Rewrite(child, ctx)
		if rewritten == nil && r != child {
			rewritten = make([]Expression, len(children))
			copy(rewritten, children[:i])
		}
		if rewritten != nil {
			rewritten[i] = r
		}
	}
	if rewritten == nil {
		return e
	}
	return e.WithChildren(rewritten)
}

// RewriteAll rewrites each expression of es
func (tr *TreeRewriter[C]) RewriteAll(es []Expression, ctx C) []Expression {
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = tr.Rewrite(e, ctx)
	}
	return out
}

func apply[N Expression, C any](f RewriteFunc[N, C], node N, ctx C, tr *TreeRewriter[C]) Expression {
	if f != nil {
		return f(node, ctx, tr)
	}
	if tr.rules.Expression != nil {
		return tr.rules.Expression(node, ctx, tr)
	}
	return nil
}

func (tr *TreeRewriter[C]) dispatch(e Expression, ctx C) Expression {
	r := &tr.rules
	switch n := e.(type) {
	case *Constant:
		return apply(r.Constant, n, ctx, tr)
	case *Reference:
		return apply(r.Reference, n, ctx, tr)
	case *Call:
		return apply(r.Call, n, ctx, tr)
	case *Arithmetic:
		return apply(r.Arithmetic, n, ctx, tr)
	case *Comparison:
		return apply(r.Comparison, n, ctx, tr)
	case *Logical:
		return apply(r.Logical, n, ctx, tr)
	case *Not:
		return apply(r.Not, n, ctx, tr)
	case *IsNull:
		return apply(r.IsNull, n, ctx, tr)
	case *Between:
		return apply(r.Between, n, ctx, tr)
	case *In:
		return apply(r.In, n, ctx, tr)
	case *Cast:
		return apply(r.Cast, n, ctx, tr)
	case *Row:
		return apply(r.Row, n, ctx, tr)
	case *Subscript:
		return apply(r.Subscript, n, ctx, tr)
	case *SearchedCase:
		return apply(r.SearchedCase, n, ctx, tr)
	case *SimpleCase:
		return apply(r.SimpleCase, n, ctx, tr)
	case *Coalesce:
		return apply(r.Coalesce, n, ctx, tr)
	case *NullIf:
		return apply(r.NullIf, n, ctx, tr)
	case *Lambda:
		return apply(r.Lambda, n, ctx, tr)
	case *Bind:
		return apply(r.Bind, n, ctx, tr)
	default:
		panic(errors.UnsupportedOperationf("unsupported expression %T", e))
	}
}

// Rewrite applies rules to e with context ctx
func Rewrite[C any](rules Rules[C], e Expression, ctx C) Expression {
	return NewTreeRewriter(rules).Rewrite(e, ctx)
}

// RewriteWith applies a context-free rewrite to e
func RewriteWith(rules Rules[struct{}], e Expression) Expression {
	return NewTreeRewriter(rules).Rewrite(e, struct{}{})
}
