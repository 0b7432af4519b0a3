package simulator

import "runtime"

// PreviousOutcomeMode selects which outcome feeds the c-term of the recurrence.
type PreviousOutcomeMode string

const (
	// PreviousOutcomeRolling uses the outcome of the preceding period.
	PreviousOutcomeRolling PreviousOutcomeMode = "rolling"
	// PreviousOutcomeInitial always uses the initial observed outcome.
	PreviousOutcomeInitial PreviousOutcomeMode = "initial"
)

// BlendConfig holds the constants of the manual-vs-recommended boundary blend.
type BlendConfig struct {
	AlphaUndershoot float64
	AlphaDefault    float64
	ScaleUndershoot float64
	ScaleDefault    float64
	DecayUndershoot float64
	DecayDefault    float64

	// multiplicative jitter applied to the bounds at the first period
	BoundJitter float64
}

type Config struct {
	RecommendedRollouts int
	PercentileRollouts  int

	// analytic-ensemble bound offset: mean ± (FixedMargin + U(0, MarginJitter))
	FixedMargin  float64
	MarginJitter float64

	LowerPercentile  float64
	MedianPercentile float64
	UpperPercentile  float64

	// max rollouts in flight; 0 means GOMAXPROCS
	Workers int

	// longer horizons and manual schedules are truncated to MaxHorizon periods
	MaxHorizon int

	PreviousOutcome PreviousOutcomeMode

	Blend BlendConfig
}

const (
	defaultRecommendedRollouts = 10
	defaultPercentileRollouts  = 100
	defaultFixedMargin         = 0.25
	defaultMarginJitter        = 0.075
	defaultLowerPercentile     = 2.5
	defaultMedianPercentile    = 50
	defaultUpperPercentile     = 97.5
	defaultMaxHorizon          = 520

	defaultAlphaUndershoot = 1.8
	defaultAlphaDefault    = 0.5
	defaultScaleUndershoot = 1.2
	defaultScaleDefault    = 1.0
	defaultDecayUndershoot = 0.1
	defaultDecayDefault    = 0.05
	defaultBoundJitter     = 0.1
)

func DefaultBlendConfig() BlendConfig {
	return BlendConfig{
		AlphaUndershoot: defaultAlphaUndershoot,
		AlphaDefault:    defaultAlphaDefault,
		ScaleUndershoot: defaultScaleUndershoot,
		ScaleDefault:    defaultScaleDefault,
		DecayUndershoot: defaultDecayUndershoot,
		DecayDefault:    defaultDecayDefault,
		BoundJitter:     defaultBoundJitter,
	}
}

func DefaultConfig() Config {
	return Config{
		RecommendedRollouts: defaultRecommendedRollouts,
		PercentileRollouts:  defaultPercentileRollouts,
		FixedMargin:         defaultFixedMargin,
		MarginJitter:        defaultMarginJitter,
		LowerPercentile:     defaultLowerPercentile,
		MedianPercentile:    defaultMedianPercentile,
		UpperPercentile:     defaultUpperPercentile,
		MaxHorizon:          defaultMaxHorizon,
		PreviousOutcome:     PreviousOutcomeRolling,
		Blend:               DefaultBlendConfig(),
	}
}

// withDefaults fills unset or out-of-range fields from DefaultConfig. A zero
// Config is DefaultConfig. Otherwise margins and individual blend constants are
// taken as given, since zero is a legitimate tuning value; only an all-zero
// BlendConfig is replaced.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c == (Config{}) {
		c = def
	}
	if c.Blend == (BlendConfig{}) {
		c.Blend = def.Blend
	}

	if c.RecommendedRollouts <= 0 {
		c.RecommendedRollouts = def.RecommendedRollouts
	}
	if c.PercentileRollouts <= 0 {
		c.PercentileRollouts = def.PercentileRollouts
	}
	if c.FixedMargin < 0 {
		c.FixedMargin = def.FixedMargin
	}
	if c.MarginJitter < 0 {
		c.MarginJitter = def.MarginJitter
	}
	if !validPercentile(c.LowerPercentile) || !validPercentile(c.MedianPercentile) || !validPercentile(c.UpperPercentile) ||
		c.LowerPercentile > c.MedianPercentile || c.MedianPercentile > c.UpperPercentile {
		c.LowerPercentile = def.LowerPercentile
		c.MedianPercentile = def.MedianPercentile
		c.UpperPercentile = def.UpperPercentile
	}
	if c.MaxHorizon <= 0 {
		c.MaxHorizon = def.MaxHorizon
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.PreviousOutcome != PreviousOutcomeInitial {
		c.PreviousOutcome = PreviousOutcomeRolling
	}

	return c
}

func validPercentile(p float64) bool {
	return p >= 0 && p <= 100
}
