package util

import (
	"math"
	"math/rand"
	"testing"
)

func TestRemapRange_Endpoints(t *testing.T) {
	cases := []struct {
		inMin, inMax, outMin, outMax float64
	}{
		{0, 20, 0, 3},
		{-5, 5, 10, -10},
		{1, 2, 0, 1},
	}
	for _, c := range cases {
		if got := RemapRange(c.inMin, c.inMin, c.inMax, c.outMin, c.outMax); math.Abs(got-c.outMin) > 1e-9 {
			t.Errorf("RemapRange(inMin) = %v, expected %v", got, c.outMin)
		}
		if got := RemapRange(c.inMax, c.inMin, c.inMax, c.outMin, c.outMax); math.Abs(got-c.outMax) > 1e-9 {
			t.Errorf("RemapRange(inMax) = %v, expected %v", got, c.outMax)
		}
	}
}

func TestRemapRange_Unclamped(t *testing.T) {
	if got := RemapRange(40, 0, 20, 0, 1); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
	if got := RemapRange(-20, 0, 20, 0, 1); got != -1 {
		t.Errorf("Expected -1, got %v", got)
	}
}

func TestRemapRange_DegenerateInput(t *testing.T) {
	if got := RemapRange(3, 1, 1, 7, 9); got != 7 {
		t.Errorf("Expected outMin 7, got %v", got)
	}
}

func TestRandomIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := RandomIndex(rng, 0); got != -1 {
		t.Errorf("Expected -1 for empty range, got %d", got)
	}
	for i := 0; i < 100; i++ {
		if got := RandomIndex(rng, 3); got < 0 || got >= 3 {
			t.Fatalf("index %d out of range", got)
		}
	}
}

func TestRandomElement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	if _, _, ok := RandomElement[int](rng, nil); ok {
		t.Error("Expected ok=false for empty slice")
	}
	items := []string{"a", "b", "c"}
	v, idx, ok := RandomElement(rng, items)
	if !ok || items[idx] != v {
		t.Errorf("RandomElement returned %q at %d (ok=%v)", v, idx, ok)
	}
}
