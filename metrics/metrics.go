// Package metrics exposes prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StagesRun = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redraft_stages_run_total",
			Help: "Total number of stage executions",
		},
		[]string{"stage"},
	)

	StageDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redraft_stage_degraded_total",
			Help: "Stage executions that absorbed an upstream failure and fell back",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redraft_stage_duration_seconds",
			Help:    "Duration of a single stage's external call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	PipelinesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redraft_pipelines_completed_total",
			Help: "Total number of pipeline runs that produced a final answer",
		},
	)
)
