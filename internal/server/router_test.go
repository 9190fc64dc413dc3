package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/claimstream/internal/metrics"
	"github.com/vanshika/claimstream/internal/publisher"
	"github.com/vanshika/claimstream/internal/transport"
	"github.com/vanshika/claimstream/internal/transport/memory"
)

type stubStatus struct {
	state publisher.State
	sent  int64
	plan  publisher.Plan
}

func (s stubStatus) State() publisher.State { return s.state }
func (s stubStatus) Sent() int64            { return s.sent }
func (s stubStatus) Plan() publisher.Plan   { return s.plan }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		transport  transport.Transport
		wantStatus int
		wantBody   string
	}{
		{"healthy", memory.New(transport.Limits{}), http.StatusOK, "ok"},
		{"probe fails", memory.New(transport.Limits{}).WithProbeError(errors.New("hub unreachable")), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(testLogger(), RouterDependencies{
				Health: TransportHealthService{Transport: tt.transport},
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decode(t, rec)["status"])
		})
	}
}

type noProbe struct{ transport.Transport }

func TestTransportHealthService_WithoutProber(t *testing.T) {
	svc := TransportHealthService{Transport: noProbe{}}
	assert.NoError(t, svc.Probe(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestStatus(t *testing.T) {
	router := NewRouter(testLogger(), RouterDependencies{
		Status: stubStatus{
			state: publisher.StateDraining,
			sent:  1200,
			plan:  publisher.Plan{Rate: 100, BatchSize: 10, Interval: 100 * time.Millisecond},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "draining", body["state"])
	assert.Equal(t, float64(1200), body["sent"])
	assert.Equal(t, float64(10), body["batch_size"])
	assert.Equal(t, float64(100), body["interval_ms"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	m.ObserveSend(10, time.Millisecond)

	router := NewRouter(testLogger(), RouterDependencies{Metrics: m.Handler()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "claimstream_events_sent_total 10"))
}

func TestUnwiredRoutesAreNotFound(t *testing.T) {
	router := NewRouter(testLogger(), RouterDependencies{})
	for _, path := range []string{"/status", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
