package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Posting metrics
var (
	PostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lukey_posts_total",
			Help: "Total number of post attempts by pool and outcome",
		},
		[]string{"pool", "outcome"},
	)

	PostDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lukey_post_duration_seconds",
			Help:    "End to end duration of one post in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"pool"},
	)

	DownloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lukey_download_bytes",
			Help:    "Size of downloaded media in bytes",
			Buckets: prometheus.ExponentialBuckets(256*1024, 2, 10),
		},
	)
)

// Re-encode metrics
var (
	TranscodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lukey_transcodes_total",
			Help: "Total number of re-encode runs by result",
		},
		[]string{"result"},
	)

	TranscodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lukey_transcode_attempts",
			Help:    "Attempts used per re-encode run",
			Buckets: []float64{1, 2, 3, 4, 5, 6},
		},
	)
)

// Command and scheduler metrics
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lukey_commands_total",
			Help: "Total number of commands received",
		},
		[]string{"command", "status"},
	)

	ScheduledRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lukey_scheduled_runs_total",
			Help: "Total number of scheduled task runs",
		},
		[]string{"task", "status"},
	)

	TempFilesCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lukey_temp_files_cleaned_total",
			Help: "Temporary files removed by shutdown cleanup or stale sweeps",
		},
	)
)
