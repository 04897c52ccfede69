package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	httpDuration *prometheus.HistogramVec

	resolverHits   *prometheus.CounterVec
	resolverMisses *prometheus.CounterVec
	resolverLoads  *prometheus.CounterVec
	resolverErrors *prometheus.CounterVec

	domainVerifications *prometheus.CounterVec
}

// New registers the application instruments on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the application instruments on the provided registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vanity_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		resolverHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanity_resolver_cache_hits_total",
			Help: "Branding resolver cache hits by keyspace.",
		}, []string{"keyspace"}),
		resolverMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanity_resolver_cache_misses_total",
			Help: "Branding resolver cache misses by keyspace.",
		}, []string{"keyspace"}),
		resolverLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanity_resolver_loads_total",
			Help: "Branding store loads triggered by cache misses.",
		}, []string{"keyspace"}),
		resolverErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanity_resolver_errors_total",
			Help: "Branding store load failures swallowed by the resolver.",
		}, []string{"keyspace"}),
		domainVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vanity_domain_verifications_total",
			Help: "Domain verification attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.httpDuration,
		m.resolverHits,
		m.resolverMisses,
		m.resolverLoads,
		m.resolverErrors,
		m.domainVerifications,
	)

	return m
}

// RecordResolverHit increments cache hit counts for the keyspace (domain|tenant).
func (m *Metrics) RecordResolverHit(keyspace string) {
	if m == nil {
		return
	}
	m.resolverHits.WithLabelValues(keyspace).Inc()
}

// RecordResolverMiss increments cache miss counts for the keyspace.
func (m *Metrics) RecordResolverMiss(keyspace string) {
	if m == nil {
		return
	}
	m.resolverMisses.WithLabelValues(keyspace).Inc()
}

// RecordResolverLoad increments store load counts for the keyspace.
func (m *Metrics) RecordResolverLoad(keyspace string) {
	if m == nil {
		return
	}
	m.resolverLoads.WithLabelValues(keyspace).Inc()
}

// RecordResolverError increments swallowed load failure counts.
func (m *Metrics) RecordResolverError(keyspace string) {
	if m == nil {
		return
	}
	m.resolverErrors.WithLabelValues(keyspace).Inc()
}

// RecordDomainVerification increments verification attempt counts by outcome.
func (m *Metrics) RecordDomainVerification(outcome string) {
	if m == nil {
		return
	}
	m.domainVerifications.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// GinMiddleware records per-request duration by route and status.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
