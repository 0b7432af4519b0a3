package simulator

import (
	"math"
	"math/rand"

	"rehabDose/domain"
)

// step advances one period and returns the next latent state and clamped outcome.
func step(p domain.ModelParameters, state, dose, prevOutcome, noise float64) (float64, float64) {
	next := p.A*state + p.B*dose + p.C*prevOutcome + noise
	y := clampOutcome(StateToOutcome(next, p))
	if math.IsNaN(next) || math.IsInf(next, 0) {
		next = OutcomeToState(y, p)
	}
	return next, y
}

// rollout iterates the recurrence over doses starting from yInit.
// A nil rng gives the zero-noise point estimate.
func (s *Simulator) rollout(yInit float64, doses []float64, p domain.ModelParameters, rng *rand.Rand) []float64 {
	out := make([]float64, len(doses))

	y0 := clampOutcome(yInit)
	state := OutcomeToState(y0, p)
	prev := y0

	for i, dose := range doses {
		noise := 0.0
		if rng != nil && p.NoiseScale > 0 {
			noise = rng.NormFloat64() * p.NoiseScale
		}

		var y float64
		state, y = step(p, state, dose, prev, noise)
		out[i] = y

		if s.cfg.PreviousOutcome == PreviousOutcomeRolling {
			prev = y
		}
	}

	return out
}
