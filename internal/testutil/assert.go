package testutil

import (
	"math"
	"reflect"
	"testing"
)

// AssertEqual checks if two values are equal.
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertNoError checks that error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError checks that error is not nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertTrue checks that condition is true
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse checks that condition is false
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertFloatEqual checks that two floats are within delta of each other.
// Two NaN values are considered equal.
func AssertFloatEqual(t *testing.T, expected, actual, delta float64) {
	t.Helper()
	if math.IsNaN(expected) && math.IsNaN(actual) {
		return
	}
	if math.IsInf(expected, 0) || math.IsInf(actual, 0) {
		if expected != actual {
			t.Errorf("expected %v, got %v", expected, actual)
		}
		return
	}
	if math.Abs(expected-actual) > delta {
		t.Errorf("expected %v, got %v (delta %v)", expected, actual, delta)
	}
}
