package score

import "math"

const probEpsilon = 1e-6

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Sigmoid is the numerically stable logistic function. The exponent is
// branched on sign so neither branch can overflow.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		ez := math.Exp(-z)
		return 1.0 / (1.0 + ez)
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// Logit is the inverse sigmoid, with p clamped away from 0 and 1.
func Logit(p float64) float64 {
	p = Clamp(p, probEpsilon, 1-probEpsilon)
	return math.Log(p / (1 - p))
}

// WilsonCI returns the Wilson score interval for a binomial proportion.
// Robust for small n; n<=0 yields the vacuous interval [0,1].
func WilsonCI(p float64, n int, z float64) (lo, hi float64) {
	if n <= 0 {
		return 0.0, 1.0
	}
	p = Clamp(p, probEpsilon, 1-probEpsilon)
	fn := float64(n)
	denom := 1.0 + (z*z)/fn
	center := (p + (z*z)/(2*fn)) / denom
	margin := (z / denom) * math.Sqrt((p*(1-p)/fn)+(z*z)/(4*fn*fn))
	return Clamp(center-margin, 0, 1), Clamp(center+margin, 0, 1)
}

// ConfidenceFromCI maps an interval to a confidence score: tight
// intervals approach 1, vacuous intervals approach 0.
func ConfidenceFromCI(lo, hi float64) float64 {
	width := Clamp(hi-lo, 0, 1)
	return Clamp(1.0-width, 0, 1)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
