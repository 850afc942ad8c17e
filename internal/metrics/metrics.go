package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

var (
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtt_provider_requests_total",
		Help: "Outbound OAuth provider requests by outcome",
	}, []string{"provider", "operation", "outcome"})
	ProviderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dtt_provider_request_duration_seconds",
		Help:    "Outbound OAuth provider request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})
	LinkCompletions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dtt_link_completions_total",
		Help: "Completed account link flows by provider and outcome",
	}, []string{"provider", "outcome"})
	ProfileFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dtt_profile_fetch_failures_total",
		Help: "Best-effort profile fetches that failed after a successful link",
	})
)

func init() {
	prometheus.MustRegister(ProviderRequests, ProviderDuration, LinkCompletions, ProfileFetchFailures)
}

// ObserveProvider records one outbound provider call.
func ObserveProvider(provider, operation, outcome string, start time.Time) {
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	ProviderDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

func IncLink(provider, outcome string) { LinkCompletions.WithLabelValues(provider, outcome).Inc() }

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
