package interpreter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmdspec_runs_total",
			Help: "Total spec runs by final status",
		},
		[]string{"status"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmdspec_steps_total",
			Help: "Total executed steps by operation type and status",
		},
		[]string{"type", "status"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cmdspec_step_duration_seconds",
			Help:    "Duration of step execution by operation type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)
