package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nlq_queries_total",
		Help: "Total number of questions answered by the query pipeline",
	}, []string{"strategy", "intent", "outcome"})

	QueryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nlq_query_failures_total",
		Help: "Total number of pipeline runs that ended in the failed state",
	}, []string{"strategy", "kind"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nlq_query_duration_seconds",
		Help:    "End-to-end duration of a pipeline run",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms .. ~33s
	}, []string{"strategy"})

	ValidationIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nlq_validation_issues_total",
		Help: "Total number of advisory issues raised by the SQL validator",
	}, []string{"code"})

	BenchmarkRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nlq_benchmark_runs_total",
		Help: "Total number of benchmark battery runs",
	})

	BenchmarkSuccessRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nlq_benchmark_success_ratio",
		Help: "Share of successful questions in the most recent benchmark run",
	})
)
