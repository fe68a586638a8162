package features

import "math"

// Degenerate arithmetic resolves here, in one place. Downstream code
// never sees NaN or Inf.

// SafeDiv returns num/den, or fallback when the division is undefined
// or non-finite.
func SafeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return Finite(num/den, fallback)
}

// ZScore returns (x-mean)/std. A flat window (std == 0) is exactly 0.
func ZScore(x, mean, std float64) float64 {
	if std <= 0 {
		return 0
	}
	return Finite((x-mean)/std, 0)
}

// Clip bounds x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 bounds x to [0, 1].
func Clamp01(x float64) float64 {
	return Clip(x, 0, 1)
}

// Finite returns x, or fallback when x is NaN or infinite.
func Finite(x, fallback float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallback
	}
	return x
}
