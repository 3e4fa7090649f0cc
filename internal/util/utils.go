package util

import (
	"math/rand"
)

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// RemapRange maps value from [inMin, inMax] onto [outMin, outMax].
// The mapping is affine and unclamped: values outside the input range land
// outside the output range. A degenerate input range (inMin == inMax) yields outMin.
func RemapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (value-inMin)*(outMax-outMin)/(inMax-inMin)
}

// RandomIndex picks a uniformly distributed index in [0, n).
// Returns -1 for an empty collection.
func RandomIndex(rng *rand.Rand, n int) int {
	if n <= 0 {
		return -1
	}
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}

// RandomElement returns a random element from the slice and its index.
// ok is false when the slice is empty.
func RandomElement[T any](rng *rand.Rand, slice []T) (elem T, index int, ok bool) {
	index = RandomIndex(rng, len(slice))
	if index < 0 {
		return elem, -1, false
	}
	return slice[index], index, true
}
