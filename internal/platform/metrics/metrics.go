package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VerificationsSubmitted prometheus.Counter
	VerificationsCompleted *prometheus.CounterVec
	CredentialsIssued      prometheus.Counter
	CredentialsRevoked     prometheus.Counter
	ConsentsGranted        prometheus.Counter
	ConsentsRevoked        prometheus.Counter
	ActivitiesLogged       *prometheus.CounterVec
	UsersFlagged           prometheus.Counter
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		VerificationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_verifications_submitted_total",
			Help: "Total number of identity verification submissions",
		}),
		VerificationsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_verifications_completed_total",
			Help: "Total number of completed verifications by outcome",
		}, []string{"outcome"}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		ConsentsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_consents_granted_total",
			Help: "Total number of consent grants",
		}),
		ConsentsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_consents_revoked_total",
			Help: "Total number of consent revocations",
		}),
		ActivitiesLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_activities_logged_total",
			Help: "Total number of risk activities logged by resulting level",
		}, []string{"level"}),
		UsersFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fides_users_flagged_total",
			Help: "Total number of users flagged for elevated fraud risk",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fides_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
