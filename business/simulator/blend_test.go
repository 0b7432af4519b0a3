//go:build !integration

package simulator

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"rehabDose/domain"
)

func runManualPair(t *testing.T, doses []float64, recommended *domain.Prediction) (blended, raw domain.ManualPrediction) {
	t.Helper()
	params := []domain.ModelParameters{zeroNoiseParams()}

	var err error
	blended, err = New(DefaultConfig(), WithSeed(21)).PredictManual(context.Background(), 2.5, doses, params, recommended)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	raw, err = New(DefaultConfig(), WithSeed(21)).PredictManual(context.Background(), 2.5, doses, params, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return blended, raw
}

func TestBlend_UndershootPullsHarder(t *testing.T) {
	recommended := &domain.Prediction{
		Mean:   []float64{3, 3, 3},
		Lower:  []float64{2.7, 2.7, 2.7},
		Upper:  []float64{3.3, 3.3, 3.3},
		Dosage: []float64{5, 5, 0},
	}
	blended, raw := runManualPair(t, []float64{1, 1, 1}, recommended)

	b := DefaultBlendConfig()
	want0 := b.AlphaUndershoot*2.5 + (1-b.AlphaUndershoot)*raw.Median[0]
	if math.Abs(blended.Median[0]-clampOutcome(want0)) > 1e-9 {
		t.Errorf("median[0]: expected %v, got %v", want0, blended.Median[0])
	}

	diff := (want0 - raw.Median[0]) * b.ScaleUndershoot
	for i := 1; i < len(raw.Median); i++ {
		want := clampOutcome(raw.Median[i] + diff*math.Exp(-b.DecayUndershoot*float64(i)))
		if math.Abs(blended.Median[i]-want) > 1e-9 {
			t.Errorf("median[%d]: expected %v, got %v", i, want, blended.Median[i])
		}
	}
}

func TestBlend_DefaultPull(t *testing.T) {
	recommended := &domain.Prediction{
		Mean:   []float64{3, 3},
		Lower:  []float64{2.7, 2.7},
		Upper:  []float64{3.3, 3.3},
		Dosage: []float64{2, 2},
	}
	blended, raw := runManualPair(t, []float64{4, 0}, recommended)

	b := DefaultBlendConfig()
	want0 := b.AlphaDefault*2.5 + (1-b.AlphaDefault)*raw.Median[0]
	if math.Abs(blended.Median[0]-want0) > 1e-9 {
		t.Errorf("median[0]: expected %v, got %v", want0, blended.Median[0])
	}

	diff := (want0 - raw.Median[0]) * b.ScaleDefault
	want1 := clampOutcome(raw.Median[1] + diff*math.Exp(-b.DecayDefault))
	if math.Abs(blended.Median[1]-want1) > 1e-9 {
		t.Errorf("median[1]: expected %v, got %v", want1, blended.Median[1])
	}
}

func TestBlend_KeepsBoundsOrdered(t *testing.T) {
	recommended := &domain.Prediction{
		Mean:   []float64{4, 4, 4, 4},
		Lower:  []float64{3.5, 3.5, 3.5, 3.5},
		Upper:  []float64{4.5, 4.5, 4.5, 4.5},
		Dosage: []float64{5, 5, 5, 5},
	}
	params := []domain.ModelParameters{
		domain.DefaultModelParameters(),
		{A: 0.75, B: 0.3, C: 1.6, NoiseScale: 1.2, SigSlope: 0.2, SigOffset: -3},
	}

	for seed := int64(0); seed < 20; seed++ {
		pred, err := New(DefaultConfig(), WithSeed(seed)).PredictManual(context.Background(), 4.8, []float64{0, 1, 0, 1}, params, recommended)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for i := range pred.Median {
			if !(pred.Lower[i] <= pred.Median[i] && pred.Median[i] <= pred.Upper[i]) {
				t.Fatalf("seed %d period %d: ordering violated %v/%v/%v", seed, i, pred.Lower[i], pred.Median[i], pred.Upper[i])
			}
		}
		assertInBounds(t, "median", pred.Median)
		assertInBounds(t, "lower", pred.Lower)
		assertInBounds(t, "upper", pred.Upper)
	}
}

func TestBlend_BoundsJitterAndDecay(t *testing.T) {
	b := DefaultBlendConfig()
	const yInit = 2.5

	for seed := int64(0); seed < 10; seed++ {
		pred := domain.ManualPrediction{
			Median: []float64{2.4, 2.4, 2.4, 2.4},
			Lower:  []float64{2.0, 2.0, 2.0, 2.0},
			Upper:  []float64{2.8, 2.8, 2.8, 2.8},
		}
		// manual first dose above the recommended one: default pull
		b.blendBoundary(&pred, yInit, 3, 2, rand.New(rand.NewSource(seed)))

		replay := rand.New(rand.NewSource(seed))
		lowerJitter := 1 - b.BoundJitter*replay.Float64()
		upperJitter := 1 + b.BoundJitter*replay.Float64()

		blendedLower := b.AlphaDefault*yInit + (1-b.AlphaDefault)*2.0
		blendedUpper := b.AlphaDefault*yInit + (1-b.AlphaDefault)*2.8

		if pred.Lower[0] < blendedLower*(1-b.BoundJitter)-1e-12 || pred.Lower[0] > blendedLower+1e-12 {
			t.Errorf("seed %d: lower[0]=%v outside [%v, %v]", seed, pred.Lower[0], blendedLower*(1-b.BoundJitter), blendedLower)
		}
		if pred.Upper[0] < blendedUpper-1e-12 || pred.Upper[0] > blendedUpper*(1+b.BoundJitter)+1e-12 {
			t.Errorf("seed %d: upper[0]=%v outside [%v, %v]", seed, pred.Upper[0], blendedUpper, blendedUpper*(1+b.BoundJitter))
		}
		if math.Abs(pred.Lower[0]-blendedLower*lowerJitter) > 1e-12 {
			t.Errorf("seed %d: lower[0] expected %v, got %v", seed, blendedLower*lowerJitter, pred.Lower[0])
		}
		if math.Abs(pred.Upper[0]-blendedUpper*upperJitter) > 1e-12 {
			t.Errorf("seed %d: upper[0] expected %v, got %v", seed, blendedUpper*upperJitter, pred.Upper[0])
		}

		lowerDiff := (blendedLower - 2.0) * b.ScaleDefault
		upperDiff := (blendedUpper - 2.8) * b.ScaleDefault
		for i := 1; i < len(pred.Lower); i++ {
			decay := math.Exp(-b.DecayDefault * float64(i))
			if want := 2.0 + lowerDiff*decay; math.Abs(pred.Lower[i]-want) > 1e-12 {
				t.Errorf("seed %d: lower[%d] expected %v, got %v", seed, i, want, pred.Lower[i])
			}
			if want := 2.8 + upperDiff*decay; math.Abs(pred.Upper[i]-want) > 1e-12 {
				t.Errorf("seed %d: upper[%d] expected %v, got %v", seed, i, want, pred.Upper[i])
			}
		}
	}
}

func TestBlend_UndershootDecayOnBounds(t *testing.T) {
	b := DefaultBlendConfig()
	const yInit = 1.0

	pred := domain.ManualPrediction{
		Median: []float64{1.5, 1.5, 1.5},
		Lower:  []float64{1.3, 1.3, 1.3},
		Upper:  []float64{1.7, 1.7, 1.7},
	}
	b.blendBoundary(&pred, yInit, 0, 5, rand.New(rand.NewSource(1)))

	medianDiff := (b.AlphaUndershoot*yInit + (1-b.AlphaUndershoot)*1.5 - 1.5) * b.ScaleUndershoot
	lowerDiff := (b.AlphaUndershoot*yInit + (1-b.AlphaUndershoot)*1.3 - 1.3) * b.ScaleUndershoot
	upperDiff := (b.AlphaUndershoot*yInit + (1-b.AlphaUndershoot)*1.7 - 1.7) * b.ScaleUndershoot

	for i := 1; i < len(pred.Median); i++ {
		decay := math.Exp(-b.DecayUndershoot * float64(i))
		m := 1.5 + medianDiff*decay
		if want := math.Min(1.3+lowerDiff*decay, m); math.Abs(pred.Lower[i]-want) > 1e-12 {
			t.Errorf("lower[%d] expected %v, got %v", i, want, pred.Lower[i])
		}
		if want := math.Max(1.7+upperDiff*decay, m); math.Abs(pred.Upper[i]-want) > 1e-12 {
			t.Errorf("upper[%d] expected %v, got %v", i, want, pred.Upper[i])
		}
	}
}
