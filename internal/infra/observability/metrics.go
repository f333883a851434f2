package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the platform core.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	domainResolutions *prometheus.CounterVec
	verifyResults     *prometheus.CounterVec
	scopedQueries     *prometheus.CounterVec
	scopedDenials     *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	taskRuns          *prometheus.CounterVec
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
				Name:    "vendix_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		domainResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_domain_resolutions_total",
				Help: "Hostname-to-tenant resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		verifyResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_domain_verifications_total",
				Help: "Domain verification attempts by result.",
			},
			[]string{"result"},
		),
		scopedQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_scoped_queries_total",
				Help: "Operations routed through the scoped data access layer.",
			},
			[]string{"entity", "op"},
		),
		scopedDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_scoped_denials_total",
				Help: "Scoped operations refused for missing context or scope.",
			},
			[]string{"reason"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		taskRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendix_background_tasks_total",
				Help: "Background task runs by task name and status.",
			},
			[]string{"task", "status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrDomainResolution counts a hostname resolution with outcome "hit" or "miss".
func (m *Metrics) IncrDomainResolution(outcome string) {
	m.domainResolutions.WithLabelValues(outcome).Inc()
}

// IncrVerification counts a verification attempt with result "passed" or "failed".
func (m *Metrics) IncrVerification(result string) {
	m.verifyResults.WithLabelValues(result).Inc()
}

// IncrScopedQuery counts a scoped-layer operation.
func (m *Metrics) IncrScopedQuery(entity, op string) {
	m.scopedQueries.WithLabelValues(entity, op).Inc()
}

// IncrScopedDenial counts a refused scoped operation
// (reason "unauthorized" or "forbidden").
func (m *Metrics) IncrScopedDenial(reason string) {
	m.scopedDenials.WithLabelValues(reason).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrTaskRun counts a background task run with status "ok" or "failed".
func (m *Metrics) IncrTaskRun(task, status string) {
	m.taskRuns.WithLabelValues(task, status).Inc()
}

// ResolutionSnapshot is a point-in-time summary of resolution and
// verification counters, served alongside domain stats.
type ResolutionSnapshot struct {
	ResolutionHits      int64   `json:"resolution_hits"`
	ResolutionMisses    int64   `json:"resolution_misses"`
	ResolutionHitRate   float64 `json:"resolution_hit_rate"`
	VerificationsPassed int64   `json:"verifications_passed"`
	VerificationsFailed int64   `json:"verifications_failed"`
	SettingsCacheHits   int64   `json:"settings_cache_hits"`
	SettingsCacheMisses int64   `json:"settings_cache_misses"`
}

// GetResolutionSnapshot reads current counter values for the stats endpoint.
func (m *Metrics) GetResolutionSnapshot() *ResolutionSnapshot {
	hits := getCounterValue(m.domainResolutions, "hit")
	misses := getCounterValue(m.domainResolutions, "miss")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &ResolutionSnapshot{
		ResolutionHits:      int64(hits),
		ResolutionMisses:    int64(misses),
		ResolutionHitRate:   hitRate,
		VerificationsPassed: int64(getCounterValue(m.verifyResults, "passed")),
		VerificationsFailed: int64(getCounterValue(m.verifyResults, "failed")),
		SettingsCacheHits:   int64(getCounterValue(m.cacheHits, "settings")),
		SettingsCacheMisses: int64(getCounterValue(m.cacheMisses, "settings")),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
