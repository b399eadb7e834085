// v0
// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the Prometheus instruments exported by the service.
// All methods are nil-safe so wiring stays optional in tests.
type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	runDuration       *prometheus.HistogramVec
	regionsScored     prometheus.Counter
	regionsSkipped    prometheus.Counter
	storeDuration     prometheus.Histogram
	storeErrors       prometheus.Counter
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	cbState           *prometheus.GaugeVec
}

// New registers every instrument against the default registry.
func New() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanmiya_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tanmiya_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tanmiya_run_duration_seconds",
			Help:    "Histogram of scoring and forecast run durations.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
		regionsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanmiya_regions_scored_total",
			Help: "Total regions successfully scored across all runs.",
		}),
		regionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanmiya_regions_skipped_total",
			Help: "Total regions skipped for missing input data.",
		}),
		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tanmiya_store_http_duration_seconds",
			Help:    "Histogram of record store HTTP request durations.",
			Buckets: prometheus.DefBuckets,
		}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanmiya_store_http_errors_total",
			Help: "Total record store HTTP errors encountered.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanmiya_cache_hits_total",
			Help: "Total cache hits observed.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanmiya_cache_misses_total",
			Help: "Total cache misses observed.",
		}),
		cbState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tanmiya_cb_state",
			Help: "Circuit breaker state gauge (0 closed, 1 open, 2 half-open).",
		}, []string{"target"}),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.runDuration,
		m.regionsScored,
		m.regionsSkipped,
		m.storeDuration,
		m.storeErrors,
		m.cacheHits,
		m.cacheMisses,
		m.cbState,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler instruments a route with request counting and latency.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records the duration of a completed run.
func (m *Metrics) ObserveRun(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// AddRegionsScored counts successfully scored regions.
func (m *Metrics) AddRegionsScored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.regionsScored.Add(float64(n))
}

// AddRegionsSkipped counts regions skipped for missing data.
func (m *Metrics) AddRegionsSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.regionsSkipped.Add(float64(n))
}

// StoreRequest records the latency and outcome of one store call.
func (m *Metrics) StoreRequest(d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.storeDuration.Observe(d.Seconds())
	if !success {
		m.storeErrors.Inc()
	}
}

// CacheHit satisfies cache.Observer.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss satisfies cache.Observer.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// SetBreakerState exports a breaker transition.
func (m *Metrics) SetBreakerState(target string, state float64) {
	if m == nil {
		return
	}
	m.cbState.WithLabelValues(target).Set(state)
}
