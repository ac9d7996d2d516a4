package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/QuantaIR/internal/errors"
)

func TestRewriteDefaultKeepsIdentity(t *testing.T) {
	e := NewLogical(OpAnd, cmp(OpEqual, ref("x"), lit(1)), NewIsNull(ref("y")))
	got := RewriteWith(Rules[struct{}]{}, e)
	assert.Same(t, e, got)
}

func TestRewriteOverride(t *testing.T) {
	rename := Rules[string]{
		Reference: func(r *Reference, suffix string, _ *TreeRewriter[string]) Expression {
			return NewReference(r.Type, r.Name+suffix)
		},
	}
	e := NewLogical(OpAnd, cmp(OpEqual, ref("x"), lit(1)), NewIsNull(ref("y")))
	got := Rewrite(rename, e, "_1")
	assert.Equal(t, "((x_1 = 1) AND (y_1 IS NULL))", got.String())
	// untouched subtrees are shared
	assert.Same(t, e.Terms[0].(*Comparison).Right, got.(*Logical).Terms[0].(*Comparison).Right)
}

func TestRewriteOverrideControlsRecursion(t *testing.T) {
	var visited []string
	rules := Rules[struct{}]{
		Reference: func(r *Reference, _ struct{}, _ *TreeRewriter[struct{}]) Expression {
			visited = append(visited, r.Name)
			return nil
		},
		// skip the operand of IS NULL entirely
		IsNull: func(n *IsNull, _ struct{}, _ *TreeRewriter[struct{}]) Expression {
			return n
		},
		// rewrite NOT(e) as e AND e, rewriting the child twice
		Not: func(n *Not, ctx struct{}, tr *TreeRewriter[struct{}]) Expression {
			return NewLogical(OpAnd, tr.Rewrite(n.Value, ctx), tr.Rewrite(n.Value, ctx))
		},
	}
	e := NewLogical(OpOr, NewIsNull(ref("a")), NewNot(cmp(OpEqual, ref("b"), lit(1))))
	got := RewriteWith(rules, e)
	assert.Equal(t, []string{"b", "b"}, visited)
	assert.Equal(t, "((a IS NULL) OR ((b = 1) AND (b = 1)))", got.String())
}

func TestRewriteFallback(t *testing.T) {
	count := 0
	rules := Rules[struct{}]{
		Expression: func(Expression, struct{}, *TreeRewriter[struct{}]) Expression {
			count++
			return nil
		},
		Constant: func(c *Constant, _ struct{}, _ *TreeRewriter[struct{}]) Expression {
			if v, ok := c.Value.(int64); ok {
				return lit(v + 1)
			}
			return nil
		},
	}
	got := RewriteWith(rules, add(ref("x"), lit(1)))
	assert.Equal(t, "(x + 2)", got.String())
	// arithmetic and reference hit the fallback, the constant does not
	assert.Equal(t, 2, count)
}

func TestDefaultRewrite(t *testing.T) {
	tr := NewTreeRewriter(Rules[int]{
		Comparison: func(c *Comparison, depth int, tr *TreeRewriter[int]) Expression {
			rebuilt := tr.DefaultRewrite(c, depth+1)
			return NewNot(rebuilt)
		},
		Constant: func(c *Constant, depth int, _ *TreeRewriter[int]) Expression {
			return lit(int64(depth))
		},
	})
	got := tr.Rewrite(cmp(OpEqual, ref("x"), lit(0)), 0)
	assert.Equal(t, "(NOT (x = 1))", got.String())

	all := tr.RewriteAll([]Expression{lit(5), ref("y")}, 3)
	assert.Equal(t, "3", all[0].String())
	assert.Equal(t, "y", all[1].String())
}

type foreign struct{ *Constant }

func TestRewriteUnsupported(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, errors.IsUnsupportedOperation(r.(error)))
	}()
	RewriteWith(Rules[struct{}]{}, foreign{True})
}
