package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Attempt("sign_round")
	m.Attempt("sign_round")
	m.Failure("sign_round", "conflict")
	m.Duration("sign_round", 20*time.Millisecond)
	m.Finalized()
	m.Degraded()
	m.HoleEntry()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("sign_round")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("sign_round", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.finalizations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entries))

	n, err := testutil.GatherAndCount(reg, "juniortour_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
