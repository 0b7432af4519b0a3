package simulator

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RolloutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_rollouts_total",
			Help: "Count of stochastic trajectory rollouts by ensemble mode.",
		},
		[]string{"mode"},
	)

	ShortCircuitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_manual_short_circuit_total",
			Help: "Manual evaluations answered from the cached recommended prediction.",
		},
	)
)

func init() {
	prometheus.MustRegister(RolloutsTotal, ShortCircuitTotal)
}
