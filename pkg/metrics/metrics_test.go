package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics("medops_client", reg)

	m.ObserveRequest("login", OutcomeSuccess, 20*time.Millisecond)
	m.ObserveRequest("login", OutcomeRejected, 10*time.Millisecond)
	m.ObserveRequest("login", OutcomeRejected, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("login", OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("login", OutcomeSuccess, time.Second)
		m.ObserveSession("save", "ok")
	})
}
