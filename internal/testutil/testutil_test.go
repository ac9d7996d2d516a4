package testutil

import (
	"math"
	"os"
	"testing"
)

func TestTempDir(t *testing.T) {
	dir, cleanup := TempDir(t)
	defer cleanup()

	// Check directory exists
	info, err := os.Stat(dir)
	AssertNoError(t, err)
	AssertTrue(t, info.IsDir(), "expected directory")

	// Create a file in the directory
	testFile := dir + "/test.txt"
	err = os.WriteFile(testFile, []byte("test"), 0644)
	AssertNoError(t, err)

	// Verify file exists
	_, err = os.Stat(testFile)
	AssertNoError(t, err)
}

func TestAssertions(t *testing.T) {
	// Test AssertEqual
	AssertEqual(t, 42, 42)
	AssertEqual(t, "hello", "hello")
	AssertEqual(t, []int{1, 2, 3}, []int{1, 2, 3})

	// Test AssertNoError
	AssertNoError(t, nil)

	// Test AssertTrue/False
	AssertTrue(t, true, "should be true")
	AssertFalse(t, false, "should be false")
}

func TestFloatAssertions(t *testing.T) {
	AssertFloatEqual(t, 487.5, 487.5000001, 1e-6)
	AssertFloatEqual(t, math.NaN(), math.NaN(), 0)
	AssertFloatEqual(t, math.Inf(-1), math.Inf(-1), 0)
}

func TestDataGeneration(t *testing.T) {
	names := SymbolNames(28)
	AssertEqual(t, "a", names[0])
	AssertEqual(t, "z", names[25])
	AssertEqual(t, "s27", names[27])

	r1, r2 := NewRand(7), NewRand(7)
	for i := 0; i < 5; i++ {
		AssertEqual(t, r1.Int63(), r2.Int63())
	}
}
