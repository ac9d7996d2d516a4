package testutil

import (
	"fmt"
	"math/rand"
)

// NewRand returns a deterministic random source for seeded generators.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// SymbolNames returns n distinct symbol names: a, b, ..., z, s26, s27, ...
func SymbolNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		if i < 26 {
			names[i] = string(rune('a' + i))
		} else {
			names[i] = fmt.Sprintf("s%d", i)
		}
	}
	return names
}
