//go:build !integration

package simulator

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestMaxAllocation_FrontLoads(t *testing.T) {
	got := MaxAllocation(3, 10, 5)
	want := []float64{5, 5, 0}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMaxAllocation_DegenerateHorizon(t *testing.T) {
	for _, h := range []int{0, -3} {
		got := MaxAllocation(h, 10, 5)
		if got == nil || len(got) != 0 {
			t.Errorf("horizon %d: expected empty non-nil slice, got %#v", h, got)
		}
	}
}

func TestAllocateDoses(t *testing.T) {
	tests := []struct {
		name      string
		requested []float64
		budget    float64
		maxDose   float64
		want      []float64
	}{
		{"within limits", []float64{1, 2, 3}, 10, 5, []float64{1, 2, 3}},
		{"capped by max dose", []float64{8, 1}, 20, 5, []float64{5, 1}},
		{"capped by remaining budget", []float64{3, 8, 4}, 10, 5, []float64{3, 5, 2}},
		{"negative request", []float64{-1, 2}, 10, 5, []float64{0, 2}},
		{"nan request", []float64{math.NaN(), 2}, 10, 5, []float64{0, 2}},
		{"negative budget", []float64{1, 2}, -4, 5, []float64{0, 0}},
		{"empty", []float64{}, 10, 5, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllocateDoses(tt.requested, tt.budget, tt.maxDose)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAllocateDoses_BudgetInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(20)
		requested := make([]float64, n)
		for i := range requested {
			requested[i] = rng.Float64()*12 - 2
		}
		budget := rng.Float64() * 40
		maxDose := rng.Float64() * 6

		got := AllocateDoses(requested, budget, maxDose)

		sum := 0.0
		for i, d := range got {
			if d < 0 || d > maxDose {
				t.Fatalf("trial %d: dose[%d]=%v outside [0, %v]", trial, i, d, maxDose)
			}
			sum += d
		}
		if sum > budget+1e-9 {
			t.Fatalf("trial %d: sum %v exceeds budget %v", trial, sum, budget)
		}
	}
}
