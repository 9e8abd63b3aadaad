// Package trueskill implements the Bayesian skill update for multi-player
// games with ties, following the TrueSkill model by Herbrich, Minka and
// Graepel (https://www.microsoft.com/en-us/research/publication/trueskill-a-bayesian-skill-rating-system/).
//
// Naming follows the paper's conventions:
//   - Mu: the player's skill mean.
//   - Sigma: the player's skill uncertainty (standard deviation).
//   - Beta: the class width; performance variance attributed to chance.
//   - Tau: the additive dynamics factor that keeps sigma from collapsing
//     over a long history.
//   - Epsilon: the draw margin derived from the configured draw probability.
//   - V, W: the truncated-Gaussian correction functions for the mean and
//     the variance.
//
// Each participant is treated as a one-member team. For every ordered pair
// of participants the update computes a performance-difference factor and
// accumulates the resulting corrections; the posterior is applied once per
// participant. The computation is pure and deterministic: identical inputs
// and parameters always produce bit-identical outputs.
package trueskill

import (
	"fmt"
	"math"
)

// Belief is a competitor's skill estimate as a Gaussian.
type Belief struct {
	Mu    float64
	Sigma float64
}

// Params holds the rating environment.
type Params struct {
	InitialMu       float64
	InitialSigma    float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

// sigmaSquareFloor bounds the posterior variance away from zero so a long
// streak of lopsided results cannot produce a degenerate belief.
const sigmaSquareFloor = 1e-4

// DefaultParams returns the reference environment: mu 25, sigma 25/3,
// beta 25/6, tau 25/300, no draw margin.
func DefaultParams() Params {
	return Params{
		InitialMu:       25.0,
		InitialSigma:    25.0 / 3.0,
		Beta:            25.0 / 6.0,
		Tau:             25.0 / 300.0,
		DrawProbability: 0.0,
	}
}

// NewBelief returns the default prior for an unseen competitor.
func (p Params) NewBelief() Belief {
	return Belief{Mu: p.InitialMu, Sigma: p.InitialSigma}
}

// ConservativeRating is the lower-confidence-bound ranking score mu - 3*sigma.
func (b Belief) ConservativeRating() float64 {
	return b.Mu - 3*b.Sigma
}

// Rate computes posterior beliefs for a group of participants given their
// priors and a parallel rank slice (rank 0 is best, equal ranks are ties,
// values need not be contiguous). The returned slice is ordered like the
// input. The priors are not modified.
//
// Rate fails with ErrInvalidInput when the slices differ in length, the
// group is empty, or any prior sigma is not positive.
func Rate(priors []Belief, ranks []int, params Params) ([]Belief, error) {
	if len(priors) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidInput)
	}
	if len(priors) != len(ranks) {
		return nil, fmt.Errorf("%w: %d beliefs but %d ranks", ErrInvalidInput, len(priors), len(ranks))
	}
	for i, b := range priors {
		if b.Sigma <= 0 {
			return nil, fmt.Errorf("%w: sigma must be positive (participant %d has %g)", ErrInvalidInput, i, b.Sigma)
		}
	}

	epsilon := drawMargin(params.Beta, params.DrawProbability)

	// Dynamics: inflate every prior variance by tau^2 before the update.
	sigmaSquare := make([]float64, len(priors))
	for i, b := range priors {
		sigmaSquare[i] = b.Sigma*b.Sigma + params.Tau*params.Tau
	}

	posteriors := make([]Belief, len(priors))
	for i := range priors {
		var omega, delta float64
		for j := range priors {
			if j == i {
				continue
			}
			cSquare := 2*params.Beta*params.Beta + sigmaSquare[i] + sigmaSquare[j]
			c := math.Sqrt(cSquare)

			var v, w float64
			switch {
			case ranks[i] < ranks[j]: // i beat j
				t := (priors[i].Mu - priors[j].Mu) / c
				v = vExceeds(t, epsilon/c)
				w = wExceeds(t, epsilon/c)
			case ranks[i] > ranks[j]: // j beat i
				t := (priors[j].Mu - priors[i].Mu) / c
				v = -vExceeds(t, epsilon/c)
				w = wExceeds(t, epsilon/c)
			default: // tie
				t := (priors[i].Mu - priors[j].Mu) / c
				v = vWithin(t, epsilon/c)
				w = wWithin(t, epsilon/c)
			}

			omega += sigmaSquare[i] / c * v
			delta += sigmaSquare[i] / cSquare * w
		}

		posteriors[i] = Belief{
			Mu:    priors[i].Mu + omega,
			Sigma: math.Sqrt(sigmaSquare[i] * math.Max(1-delta, sigmaSquareFloor)),
		}
	}
	return posteriors, nil
}
