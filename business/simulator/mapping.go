package simulator

import (
	"math"

	"rehabDose/domain"
)

// MaxMAL is the upper bound of the Motor Activity Log score.
const MaxMAL = 5.0

// distance kept from the MAL bounds before taking the logit
const outcomeEpsilon = 1e-6

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func logit(p float64) float64 {
	return math.Log(p) - math.Log(1-p)
}

// clampOutcome forces y into [0, MaxMAL]; NaN maps to 0.
func clampOutcome(y float64) float64 {
	switch {
	case math.IsNaN(y), y < 0:
		return 0
	case y > MaxMAL:
		return MaxMAL
	}
	return y
}

// interiorOutcome forces y into the open interval (0, MaxMAL).
func interiorOutcome(y float64) float64 {
	switch {
	case math.IsNaN(y), y < outcomeEpsilon:
		return outcomeEpsilon
	case y > MaxMAL-outcomeEpsilon:
		return MaxMAL - outcomeEpsilon
	}
	return y
}

func sigSlope(p domain.ModelParameters) float64 {
	if p.SigSlope == 0 || math.IsNaN(p.SigSlope) || math.IsInf(p.SigSlope, 0) {
		return domain.DefaultParamSigSlope
	}
	return p.SigSlope
}

// OutcomeToState maps a MAL score to the latent transition state.
func OutcomeToState(y float64, p domain.ModelParameters) float64 {
	y = interiorOutcome(y)
	return (logit(y/MaxMAL) - p.SigOffset) / sigSlope(p)
}

// StateToOutcome maps a latent transition state back to a MAL score.
func StateToOutcome(x float64, p domain.ModelParameters) float64 {
	return MaxMAL * sigmoid(sigSlope(p)*x+p.SigOffset)
}
