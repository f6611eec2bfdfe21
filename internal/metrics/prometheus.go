package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsSubmitted counts uploads accepted into the pipeline.
	JobsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csvflag_jobs_submitted_total",
			Help: "Total number of uploads accepted for processing",
		},
	)

	// SubmitRejected counts uploads rejected before a job was created, by reason.
	SubmitRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvflag_submit_rejected_total",
			Help: "Total number of uploads rejected at submission",
		},
		[]string{"reason"},
	)

	// JobsFinished counts jobs reaching a terminal state.
	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvflag_jobs_finished_total",
			Help: "Total number of jobs that reached a terminal state",
		},
		[]string{"state"},
	)

	// ProcessingDuration tracks how long a file transformation takes.
	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "csvflag_processing_duration_seconds",
			Help:    "Duration of file transformations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		},
		[]string{"state"},
	)

	// RowsProcessed counts data rows written to artifacts.
	RowsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csvflag_rows_processed_total",
			Help: "Total number of data rows written to artifacts",
		},
	)

	// WorkersActive tracks the number of workers currently transforming a file.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "csvflag_workers_active",
			Help: "Number of worker goroutines currently processing a job",
		},
	)

	// QueueDepth tracks tasks waiting for a free worker.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "csvflag_queue_depth",
			Help: "Number of tasks waiting in the worker queue",
		},
	)

	// SweptFiles counts retention sweep outcomes per file.
	SweptFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvflag_swept_files_total",
			Help: "Files handled by the retention sweeper",
		},
		[]string{"result"},
	)

	// EventPublishFailures counts job events that could not be published.
	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csvflag_event_publish_failures_total",
			Help: "Total number of job events that failed to publish",
		},
	)
)
