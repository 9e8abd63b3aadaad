package trueskill

import "math"

// denominatorFloor is the smallest cumulative probability treated as
// non-zero; below it the correction functions switch to their limit forms.
const denominatorFloor = 2.222758749e-162

// pdf is the standard normal density.
func pdf(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// cdf is the standard normal cumulative distribution.
func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// ppf is the standard normal quantile function (inverse of cdf).
func ppf(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// drawMargin converts a draw probability into the performance margin
// epsilon inside which two one-member teams tie.
func drawMargin(beta, drawProbability float64) float64 {
	if drawProbability <= 0 {
		return 0
	}
	return ppf((drawProbability+1)/2) * math.Sqrt2 * beta
}

// vExceeds is the additive mean correction for a win observed at scaled
// performance difference t with scaled draw margin e.
func vExceeds(t, e float64) float64 {
	denom := cdf(t - e)
	if denom < denominatorFloor {
		return -t + e
	}
	return pdf(t-e) / denom
}

// wExceeds is the multiplicative variance correction for a win.
func wExceeds(t, e float64) float64 {
	denom := cdf(t - e)
	if denom < denominatorFloor {
		if t < 0 {
			return 1
		}
		return 0
	}
	v := pdf(t-e) / denom
	return v * (v + t - e)
}

// vWithin is the additive mean correction for a draw. As e approaches 0 the
// expression tends to -t, which the guard returns directly.
func vWithin(t, e float64) float64 {
	denom := cdf(e-t) - cdf(-e-t)
	if denom < denominatorFloor {
		return -t
	}
	return (pdf(-e-t) - pdf(e-t)) / denom
}

// wWithin is the multiplicative variance correction for a draw; its e->0
// limit is 1.
func wWithin(t, e float64) float64 {
	denom := cdf(e-t) - cdf(-e-t)
	if denom < denominatorFloor {
		return 1
	}
	v := (pdf(-e-t) - pdf(e-t)) / denom
	return v*v + ((e-t)*pdf(e-t)+(e+t)*pdf(e+t))/denom
}
