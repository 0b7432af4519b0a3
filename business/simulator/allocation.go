package simulator

import "math"

// AllocateDoses caps each requested dose by maxDose and by what is left of budget,
// in period order. Negative or non-finite requests allocate nothing.
func AllocateDoses(requested []float64, budget, maxDose float64) []float64 {
	remaining := nonNegative(budget)
	maxDose = nonNegative(maxDose)

	out := make([]float64, len(requested))
	for i, r := range requested {
		d := math.Min(math.Min(nonNegative(r), maxDose), remaining)
		out[i] = d
		remaining -= d
	}
	return out
}

// MaxAllocation front-loads the budget: every period gets min(maxDose, remaining).
func MaxAllocation(horizon int, budget, maxDose float64) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	requested := make([]float64, horizon)
	for i := range requested {
		requested[i] = math.Inf(1)
	}
	return AllocateDoses(requested, budget, maxDose)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// sanitizeDoses replaces negative and NaN doses with 0 and +Inf with 0.
func sanitizeDoses(doses []float64) []float64 {
	out := make([]float64, len(doses))
	for i, d := range doses {
		if math.IsInf(d, 0) {
			continue
		}
		out[i] = nonNegative(d)
	}
	return out
}
