package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsSubmittedTotal, jobsProcessedTotal, jobProcessingSeconds) }

var jobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "video_jobs_submitted_total",
		Help: "Total number of video jobs accepted for processing, labeled by kind.",
	},
	[]string{"kind"}, // 'SCRIPTED', 'TIMELINE'
)

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "video_jobs_processed_total",
		Help: "Total number of video jobs the worker finished, labeled by terminal status.",
	},
	[]string{"status"}, // 'DONE', 'FAILED', 'SKIPPED'
)

var jobProcessingSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "video_job_processing_seconds",
		Help:    "Wall-clock duration of a single job from dequeue to terminal status.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	},
)

// IncJobSubmitted records an accepted submission.
func IncJobSubmitted(kind string) {
	jobsSubmittedTotal.WithLabelValues(norm(kind)).Inc()
}

// IncJobProcessed records a finished (or skipped) job.
func IncJobProcessed(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

// ObserveJobDuration records how long a job took to process.
func ObserveJobDuration(d time.Duration) {
	jobProcessingSeconds.Observe(d.Seconds())
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
