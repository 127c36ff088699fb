package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verification pipeline.
type Metrics struct {
	SubmissionsCreated  prometheus.Counter
	EndUsersCreated     prometheus.Counter
	UploadsValidated    prometheus.Counter
	UploadsRejected     *prometheus.CounterVec
	Extractions         *prometheus.CounterVec
	FaceMatches         *prometheus.CounterVec
	IsolationViolations prometheus.Counter
	StageDuration       *prometheus.HistogramVec
}

// New creates and registers all pipeline metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_submissions_created_total",
			Help: "Total number of verification submissions created.",
		}),
		EndUsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_end_users_created_total",
			Help: "Total number of end users auto-created on first session initiation.",
		}),
		UploadsValidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_uploads_validated_total",
			Help: "Total number of document uploads accepted by the validator.",
		}),
		UploadsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_uploads_rejected_total",
			Help: "Document uploads rejected by the validator, by reason.",
		}, []string{"reason"}),
		Extractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_extractions_total",
			Help: "Text extraction attempts, by document type and outcome.",
		}, []string{"document_type", "outcome"}),
		FaceMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_face_matches_total",
			Help: "Face match attempts, by outcome.",
		}, []string{"outcome"}),
		IsolationViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_isolation_violations_total",
			Help: "Cross-tenant access attempts rejected by isolation checks.",
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_pipeline_stage_duration_seconds",
			Help:    "Latency of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}
