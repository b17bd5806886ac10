package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	gridMutations       *prometheus.CounterVec
	searchQueries       prometheus.Counter
	searchResults       prometheus.Histogram
	sessionSweeps       prometheus.Counter
	sessionsExpired     prometheus.Counter
}

// New creates a fresh Metrics registry with HTTP, map and session metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by core-go",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wayfinder",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by core-go",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	gridMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Name:      "grid_mutations_total",
		Help:      "Rasterize and resize operations applied to floor grids",
	}, []string{"op", "result"})

	searchQueries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Name:      "search_queries_total",
		Help:      "Total number of node search queries ranked",
	})

	searchResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wayfinder",
		Name:      "search_results",
		Help:      "Number of results returned per search query",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	sessionSweeps := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Name:      "session_sweeps_total",
		Help:      "Total number of edit-session cleanup passes",
	})

	sessionsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Name:      "sessions_expired_total",
		Help:      "Edit sessions removed after expiring",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		gridMutations,
		searchQueries,
		searchResults,
		sessionSweeps,
		sessionsExpired,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		gridMutations:       gridMutations,
		searchQueries:       searchQueries,
		searchResults:       searchResults,
		sessionSweeps:       sessionSweeps,
		sessionsExpired:     sessionsExpired,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveGridMutation counts one rasterize or resize call; err decides the result label.
func (m *Metrics) ObserveGridMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gridMutations.With(prometheus.Labels{"op": op, "result": result}).Inc()
}

func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.searchQueries.Inc()
	m.searchResults.Observe(float64(results))
}

// ObserveSessionSweep records one cleanup pass and the sessions it removed.
func (m *Metrics) ObserveSessionSweep(removed int) {
	if m == nil {
		return
	}
	m.sessionSweeps.Inc()
	if removed > 0 {
		m.sessionsExpired.Add(float64(removed))
	}
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
