// Package simulator projects MAL recovery trajectories from a dosing schedule.
//
// The model is a latent linear recurrence
//
//	x[t+1] = a*x[t] + b*dose[t] + c*y[t] + noise
//
// observed through y = MaxMAL * sigmoid(sig_slope*x + sig_offset). Uncertainty comes
// from ensembles of noisy rollouts. The package does no I/O and keeps no state
// between calls.
package simulator

import (
	"context"
	"math/rand"
	"time"

	"rehabDose/domain"
)

type Simulator struct {
	cfg  Config
	seed func() int64
}

type Option func(*Simulator)

// WithSeed makes every call draw from the same seed, for reproducible output.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.seed = func() int64 { return seed }
	}
}

// WithSeedFunc sets the per-call seed source.
func WithSeedFunc(fn func() int64) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.seed = fn
		}
	}
}

func New(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:  cfg.withDefaults(),
		seed: func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Config() Config {
	return s.cfg
}

func (s *Simulator) newRand() *rand.Rand {
	return rand.New(rand.NewSource(s.seed()))
}

// PredictRecommended projects the auto-allocated (front-loaded) schedule over horizon
// periods, at most MaxHorizon. The only error returned is the context's.
func (s *Simulator) PredictRecommended(
	ctx context.Context,
	yInit, budget float64,
	horizon int,
	maxDose float64,
	params domain.ModelParameters,
) (domain.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Prediction{}, err
	}
	if horizon <= 0 {
		return emptyPrediction(), nil
	}
	horizon = min(horizon, s.cfg.MaxHorizon)

	return s.analyticEnsemble(ctx, yInit, budget, horizon, maxDose, params, s.newRand())
}

// PredictManual evaluates a caller-supplied schedule. When recommended is given and
// futureDoses equals its dosage the recommended arrays are returned as they are;
// otherwise the percentile ensemble is run and, with a recommended prediction to
// compare against, the first period is blended toward yInit. Schedules longer
// than MaxHorizon are truncated.
func (s *Simulator) PredictManual(
	ctx context.Context,
	yInit float64,
	futureDoses []float64,
	params []domain.ModelParameters,
	recommended *domain.Prediction,
) (domain.ManualPrediction, error) {
	if err := ctx.Err(); err != nil {
		return domain.ManualPrediction{}, err
	}

	if recommended != nil && len(futureDoses) > 0 && sameDoses(futureDoses, recommended.Dosage) {
		ShortCircuitTotal.Inc()
		return domain.ManualPrediction{
			Median: recommended.Mean,
			Lower:  recommended.Lower,
			Upper:  recommended.Upper,
			Dosage: recommended.Dosage,
		}, nil
	}

	if len(futureDoses) > s.cfg.MaxHorizon {
		futureDoses = futureDoses[:s.cfg.MaxHorizon]
	}
	doses := sanitizeDoses(futureDoses)
	if len(doses) == 0 {
		return emptyManualPrediction(), nil
	}
	if len(params) == 0 {
		params = []domain.ModelParameters{domain.DefaultModelParameters()}
	}

	rng := s.newRand()
	pred, err := s.percentileEnsemble(ctx, yInit, doses, params, rng)
	if err != nil {
		return domain.ManualPrediction{}, err
	}

	if recommended != nil && len(recommended.Dosage) > 0 {
		s.cfg.Blend.blendBoundary(&pred, yInit, doses[0], recommended.Dosage[0], rng)
	}

	return pred, nil
}

// Trajectory is the deterministic zero-noise point estimate for doses.
func (s *Simulator) Trajectory(yInit float64, doses []float64, params domain.ModelParameters) []float64 {
	return s.rollout(yInit, sanitizeDoses(doses), params, nil)
}

func sameDoses(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func emptyPrediction() domain.Prediction {
	return domain.Prediction{
		Mean:   []float64{},
		Lower:  []float64{},
		Upper:  []float64{},
		Dosage: []float64{},
	}
}

func emptyManualPrediction() domain.ManualPrediction {
	return domain.ManualPrediction{
		Median: []float64{},
		Lower:  []float64{},
		Upper:  []float64{},
		Dosage: []float64{},
	}
}
