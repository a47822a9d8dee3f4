package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Read("seller", 3)
	m.Read("seller", 2)
	m.Skipped("product")
	m.Wrote("request")
	m.IOError("product", "read")
	m.Mutation("delete_product")
	m.Exported("seller", "xml")
	m.Since("load", time.Now())
	m.Request("/api/top", 200)

	require.Equal(t, 5.0, testutil.ToFloat64(m.RecordsRead.WithLabelValues("seller")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("product")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FileWrites.WithLabelValues("request")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.IOErrors.WithLabelValues("product", "read")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("delete_product")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotExports.WithLabelValues("seller", "xml")))
	require.Equal(t, 1, testutil.CollectAndCount(m.OpDuration))
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/top", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Read("seller", 1)
		m.Skipped("seller")
		m.Wrote("seller")
		m.IOError("seller", "write")
		m.Mutation("x")
		m.Exported("seller", "yaml")
		m.Since("x", time.Now())
		m.Request("/health", 200)
	})
}
