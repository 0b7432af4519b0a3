package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the prediction HTTP handlers, by schedule type
	PredictionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_latency_seconds",
		Help:    "Latency of prediction handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"schedule"})

	// Total number of predictions served, by schedule type and outcome
	PredictionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_requests_total",
		Help: "Total number of prediction requests",
	}, []string{"schedule", "status"})
)

func Init() {
	prometheus.MustRegister(
		PredictionLatency,
		PredictionRequests,
	)
}
