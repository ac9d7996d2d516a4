package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := IllegalStatef("missing type for %s", "x").WithRoutine("TypeAnalyzer")
	assert.Equal(t, "TypeAnalyzer: missing type for x (SQLSTATE XX000)", err.Error())

	err = InvalidArgumentf("empty list").WithDetail("IN needs a candidate")
	assert.Equal(t, "empty list (SQLSTATE 22023) DETAIL: IN needs a candidate", err.Error())
}

func TestTaxonomyPredicates(t *testing.T) {
	assert.True(t, IsInvalidArgument(InvalidArgumentf("x")))
	assert.True(t, IsIllegalState(IllegalStatef("x")))
	assert.True(t, IsUnsupportedOperation(UnsupportedOperationf("x")))
	assert.False(t, IsIllegalState(UnsupportedOperationf("x")))
	assert.False(t, IsIllegalState(nil))

	wrapped := Wrapf(IllegalStatef("inner"), "while analyzing")
	assert.True(t, IsIllegalState(wrapped))
	assert.Contains(t, wrapped.Error(), "while analyzing")
	assert.Nil(t, GetError(Errorf("plain")))
}

func TestRecover(t *testing.T) {
	run := func(f func()) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = Recover(r)
			}
		}()
		f()
		return nil
	}

	t.Run("engine error", func(t *testing.T) {
		err := run(func() { panic(UnsupportedOperationf("bad shape")) })
		require.Error(t, err)
		assert.True(t, IsUnsupportedOperation(err))
	})

	t.Run("runtime error", func(t *testing.T) {
		err := run(func() {
			var s []int
			_ = s[3]
		})
		require.Error(t, err)
		assert.True(t, IsAssertionFailure(err))
	})

	t.Run("foreign panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = run(func() { panic("boom") })
		})
	})

	t.Run("no panic", func(t *testing.T) {
		assert.NoError(t, run(func() {}))
	})
}

func TestAssertf(t *testing.T) {
	assert.NotPanics(t, func() { Assertf(true, "fine") })
	assert.PanicsWithError(t, "broken 1 (SQLSTATE XX000)", func() { Assertf(false, "broken %d", 1) })
}

func TestIs(t *testing.T) {
	sentinel := Errorf("sentinel")
	assert.True(t, Is(Wrapf(sentinel, "context"), sentinel))
	assert.False(t, Is(Errorf("other"), sentinel))
}
