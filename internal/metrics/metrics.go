package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Domain metrics
	LoginsTotal      *prometheus.CounterVec
	ReportsGenerated *prometheus.CounterVec
	InvitesSent      *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	JobRuns          *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rescuetrack_http_request_duration_seconds",
				Help:    "Duration of HTTP request processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "rescuetrack_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),

		ReportsGenerated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_reports_generated_total",
				Help: "Reports generated by kind",
			},
			[]string{"kind"},
		),

		InvitesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_invite_emails_total",
				Help: "Invite e-mails processed by result",
			},
			[]string{"result"},
		),

		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),

		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),

		JobRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rescuetrack_job_runs_total",
				Help: "Background job runs by job and result",
			},
			[]string{"job", "result"},
		),
	}
}

// NewNop returns metrics registered against a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
