package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestResolverCounters(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.RecordResolverHit("domain")
	m.RecordResolverHit("domain")
	m.RecordResolverMiss("tenant")
	m.RecordResolverLoad("domain")
	m.RecordResolverError("tenant")

	require.Equal(t, float64(2), testutil.ToFloat64(m.resolverHits.WithLabelValues("domain")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.resolverMisses.WithLabelValues("tenant")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.resolverLoads.WithLabelValues("domain")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.resolverErrors.WithLabelValues("tenant")))
}

func TestDomainVerificationCounter(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.RecordDomainVerification("active")
	m.RecordDomainVerification("pending")
	m.RecordDomainVerification("active")

	require.Equal(t, float64(2), testutil.ToFloat64(m.domainVerifications.WithLabelValues("active")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.domainVerifications.WithLabelValues("pending")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordResolverHit("domain")
		m.RecordResolverMiss("domain")
		m.RecordResolverLoad("domain")
		m.RecordResolverError("domain")
		m.RecordDomainVerification("failed")
	})
}
