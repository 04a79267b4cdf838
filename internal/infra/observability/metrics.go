package observability

import (
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the marketplace.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	missionEvents   *prometheus.CounterVec
	feesCollected   prometheus.Counter
	xpAwarded       prometheus.Counter
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "market_request_duration_seconds",
				Help:    "Duration of store and gateway operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		missionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_mission_events_total",
				Help: "Mission lifecycle events by kind.",
			},
			[]string{"event"},
		),
		feesCollected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_fees_collected_total",
				Help: "Cumulative service fees debited on mission completion.",
			},
		),
		xpAwarded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_xp_awarded_total",
				Help: "Cumulative experience points awarded.",
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrMissionEvent counts a mission lifecycle event
// (created, accepted, completed).
func (m *Metrics) IncrMissionEvent(event string) {
	m.missionEvents.WithLabelValues(event).Inc()
}

// AddFee records a service fee debit.
func (m *Metrics) AddFee(amount float64) {
	m.feesCollected.Add(amount)
}

// AddXP records awarded experience points.
func (m *Metrics) AddXP(points int) {
	m.xpAwarded.Add(float64(points))
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetMarketSnapshot returns a snapshot of marketplace metrics suitable for
// the GET /v1/stats endpoint.
func (m *Metrics) GetMarketSnapshot() *domain.MarketStats {
	// Prometheus counters expose cumulative values.
	created := getCounterValue(m.missionEvents, "created")
	accepted := getCounterValue(m.missionEvents, "accepted")
	completed := getCounterValue(m.missionEvents, "completed")
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "feed")
	cacheMisses := getCounterValue(m.cacheMisses, "feed")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.MarketStats{
		MissionsCreated:   int64(created),
		MissionsAccepted:  int64(accepted),
		MissionsCompleted: int64(completed),
		FeesCollected:     counterValue(m.feesCollected),
		XPAwarded:         int64(counterValue(m.xpAwarded)),
		RequestsTotal:     int64(totalRequests),
		ErrorRate:         errorRate,
		CacheHitRate:      cacheHitRate,
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
