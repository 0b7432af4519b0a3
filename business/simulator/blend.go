package simulator

import (
	"math"
	"math/rand"

	"rehabDose/domain"
)

// blendBoundary pulls the first predicted period of a manual schedule toward the
// last observed outcome and carries the shift into later periods with exponential
// decay. The stronger pull applies when the manual schedule starts below the
// recommended first dose.
func (b BlendConfig) blendBoundary(pred *domain.ManualPrediction, yInit, manualFirst, recommendedFirst float64, rng *rand.Rand) {
	if len(pred.Median) == 0 {
		return
	}

	alpha, scale, decay := b.AlphaDefault, b.ScaleDefault, b.DecayDefault
	if manualFirst < recommendedFirst {
		alpha, scale, decay = b.AlphaUndershoot, b.ScaleUndershoot, b.DecayUndershoot
	}

	y0 := clampOutcome(yInit)
	shift := func(series []float64, jitter float64) {
		original := series[0]
		blended := alpha*y0 + (1-alpha)*original
		diff := (blended - original) * scale

		series[0] = blended * jitter
		for i := 1; i < len(series); i++ {
			series[i] += diff * math.Exp(-decay*float64(i))
		}
	}

	shift(pred.Median, 1)
	shift(pred.Lower, 1-b.BoundJitter*rng.Float64())
	shift(pred.Upper, 1+b.BoundJitter*rng.Float64())

	for i := range pred.Median {
		m := clampOutcome(pred.Median[i])
		pred.Median[i] = m
		pred.Lower[i] = math.Min(clampOutcome(pred.Lower[i]), m)
		pred.Upper[i] = math.Max(clampOutcome(pred.Upper[i]), m)
	}
}
