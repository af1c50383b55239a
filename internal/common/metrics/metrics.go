// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_client_documents_uploaded_total",
			Help: "Total number of documents uploaded",
		},
		[]string{"doc_type"},
	)

	UploadsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "claims_client_uploads_failed_total",
			Help: "Total number of upload requests that failed",
		},
	)

	JobsTracked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "claims_client_jobs_tracked_total",
			Help: "Total number of processing jobs added to the tracker",
		},
	)

	JobsTerminal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_client_jobs_terminal_total",
			Help: "Total number of tracked jobs that reached a terminal status",
		},
		[]string{"status"},
	)

	PollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "claims_client_poll_errors_total",
			Help: "Total number of swallowed status-poll failures",
		},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "claims_client_poll_duration_seconds",
			Help: "Duration of one full poll tick in seconds",
		},
	)

	ClaimSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_client_claim_submissions_total",
			Help: "Total number of claim submissions by outcome",
		},
		[]string{"outcome"},
	)

	ClaimSubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "claims_client_claim_submit_duration_seconds",
			Help: "Duration of claim submission requests in seconds",
		},
	)
)
