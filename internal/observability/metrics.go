package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the fetcher. Counters cover the
// E-utilities client; histograms cover whole pipeline invocations.
type Metrics struct {
	// RequestsTotal counts E-utilities HTTP requests, labeled by endpoint
	// (esearch, efetch).
	RequestsTotal *prometheus.CounterVec

	// RequestsFailed counts failed E-utilities HTTP requests, labeled by
	// endpoint.
	RequestsFailed *prometheus.CounterVec

	// RetriesTotal counts efetch retry attempts.
	RetriesTotal prometheus.Counter

	// SearchPasses observes the number of amplification passes per search.
	SearchPasses prometheus.Histogram

	// ArticlesReturned observes the post-filter article count per search.
	ArticlesReturned prometheus.Histogram

	// SearchDuration observes end-to-end search duration in seconds.
	SearchDuration prometheus.Histogram
}

// NewMetrics creates a Metrics instance registered with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ophtha",
			Name:      "eutils_requests_total",
			Help:      "Total E-utilities HTTP requests by endpoint",
		}, []string{"endpoint"}),
		RequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ophtha",
			Name:      "eutils_requests_failed_total",
			Help:      "Failed E-utilities HTTP requests by endpoint",
		}, []string{"endpoint"}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ophtha",
			Name:      "eutils_retries_total",
			Help:      "Total efetch retry attempts",
		}),
		SearchPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ophtha",
			Name:      "search_passes",
			Help:      "Amplification passes per search",
			Buckets:   []float64{1, 2, 3},
		}),
		ArticlesReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ophtha",
			Name:      "articles_returned",
			Help:      "Post-filter articles per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ophtha",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

// IncRequest records one request to an endpoint. Nil-safe.
func (m *Metrics) IncRequest(endpoint string) {
	if m != nil {
		m.RequestsTotal.WithLabelValues(endpoint).Inc()
	}
}

// IncRequestFailed records one failed request to an endpoint. Nil-safe.
func (m *Metrics) IncRequestFailed(endpoint string) {
	if m != nil {
		m.RequestsFailed.WithLabelValues(endpoint).Inc()
	}
}

// IncRetry records one efetch retry attempt. Nil-safe.
func (m *Metrics) IncRetry() {
	if m != nil {
		m.RetriesTotal.Inc()
	}
}

// ObserveSearch records whole-search observations. Nil-safe.
func (m *Metrics) ObserveSearch(passes, articles int, seconds float64) {
	if m != nil {
		m.SearchPasses.Observe(float64(passes))
		m.ArticlesReturned.Observe(float64(articles))
		m.SearchDuration.Observe(seconds)
	}
}
