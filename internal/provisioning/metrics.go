package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	stageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llsctl",
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Total number of stage executions by outcome",
		},
		[]string{"operation", "stage", "outcome"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llsctl",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of stage executions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5min
		},
		[]string{"operation", "stage"},
	)

	runTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llsctl",
			Subsystem: "pipeline",
			Name:      "run_total",
			Help:      "Total number of lifecycle runs by result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	prometheus.MustRegister(stageTotal, stageDuration, runTotal)
}

func recordStage(operation Operation, res StageResult) {
	stageTotal.WithLabelValues(string(operation), res.Stage, string(res.Outcome)).Inc()
	if res.Outcome != OutcomeSkipped {
		stageDuration.WithLabelValues(string(operation), res.Stage).Observe(res.Elapsed.Seconds())
	}
}

func recordRun(operation Operation, succeeded bool) {
	result := "failure"
	if succeeded {
		result = "success"
	}
	runTotal.WithLabelValues(string(operation), result).Inc()
}
