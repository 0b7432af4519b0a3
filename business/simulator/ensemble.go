package simulator

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"rehabDose/domain"
)

// rolloutFunc runs rollout k with its own random source and returns
// the outcome trajectory and the doses it applied.
type rolloutFunc func(k int, rng *rand.Rand) (outcomes, doses []float64)

// runEnsemble executes n independent rollouts on a bounded worker pool.
// Seeds are drawn from rng up front so the result does not depend on scheduling.
func (s *Simulator) runEnsemble(ctx context.Context, n int, rng *rand.Rand, run rolloutFunc) ([][]float64, [][]float64, error) {
	seeds := make([]int64, n)
	for k := range seeds {
		seeds[k] = rng.Int63()
	}

	outcomes := make([][]float64, n)
	doses := make([][]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for k := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[k], doses[k] = run(k, rand.New(rand.NewSource(seeds[k])))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return outcomes, doses, nil
}

// analyticEnsemble is the recommended-schedule mode: auto max allocation,
// cross-ensemble mean, fixed-offset bounds and one rollout's doses.
func (s *Simulator) analyticEnsemble(
	ctx context.Context,
	yInit, budget float64,
	horizon int,
	maxDose float64,
	params domain.ModelParameters,
	rng *rand.Rand,
) (domain.Prediction, error) {
	n := s.cfg.RecommendedRollouts

	outcomes, doses, err := s.runEnsemble(ctx, n, rng, func(_ int, r *rand.Rand) ([]float64, []float64) {
		d := MaxAllocation(horizon, budget, maxDose)
		return s.rollout(yInit, d, params, r), d
	})
	if err != nil {
		return domain.Prediction{}, err
	}

	pred := domain.Prediction{
		Mean:  make([]float64, horizon),
		Lower: make([]float64, horizon),
		Upper: make([]float64, horizon),
	}
	for i := range horizon {
		m := mean(column(outcomes, i))
		pred.Mean[i] = m
		pred.Lower[i] = clampOutcome(m - (s.cfg.FixedMargin + rng.Float64()*s.cfg.MarginJitter))
		pred.Upper[i] = clampOutcome(m + (s.cfg.FixedMargin + rng.Float64()*s.cfg.MarginJitter))
	}

	chosen := doses[rng.Intn(n)]
	pred.Dosage = make([]float64, len(chosen))
	copy(pred.Dosage, chosen)

	RolloutsTotal.WithLabelValues(domain.ScheduleRecommended).Add(float64(n))

	return pred, nil
}

// percentileEnsemble is the manual-schedule mode: the same doses in every rollout,
// parameter sets assigned round-robin, percentile point estimate and bounds.
func (s *Simulator) percentileEnsemble(
	ctx context.Context,
	yInit float64,
	doses []float64,
	params []domain.ModelParameters,
	rng *rand.Rand,
) (domain.ManualPrediction, error) {
	n := s.cfg.PercentileRollouts

	outcomes, _, err := s.runEnsemble(ctx, n, rng, func(k int, r *rand.Rand) ([]float64, []float64) {
		return s.rollout(yInit, doses, params[k%len(params)], r), doses
	})
	if err != nil {
		return domain.ManualPrediction{}, err
	}

	horizon := len(doses)
	pred := domain.ManualPrediction{
		Median: make([]float64, horizon),
		Lower:  make([]float64, horizon),
		Upper:  make([]float64, horizon),
		Dosage: make([]float64, horizon),
	}
	copy(pred.Dosage, doses)

	for i := range horizon {
		q := percentiles(column(outcomes, i), s.cfg.LowerPercentile, s.cfg.MedianPercentile, s.cfg.UpperPercentile)
		pred.Lower[i], pred.Median[i], pred.Upper[i] = q[0], q[1], q[2]
	}

	RolloutsTotal.WithLabelValues(domain.ScheduleManual).Add(float64(n))

	return pred, nil
}
