package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveSend(10, 5*time.Millisecond)
	m.ObserveSend(3, time.Millisecond)
	m.ObserveOverflow()
	m.ObserveSendFailure(time.Millisecond)
	m.SetState(1)
	m.SetBatchSize(10)

	assert.Equal(t, 13.0, testutil.ToFloat64(m.EventsSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverflowFlushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.State))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.BatchSize))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSend(1, time.Millisecond)
		m.ObserveSendFailure(time.Millisecond)
		m.ObserveOverflow()
		m.SetState(2)
		m.SetBatchSize(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSend(4, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "claimstream_events_sent_total 4")
}
