// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	WorkflowsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_started_total",
			Help: "Total number of customer service workflows started",
		},
		[]string{"channel"},
	)

	WorkflowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_completed_total",
			Help: "Total number of customer service workflows completed by final status",
		},
		[]string{"status"},
	)

	WorkflowStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "workflow_stage_duration_seconds",
			Help: "Duration of each workflow stage in seconds",
		},
		[]string{"stage"},
	)
)
