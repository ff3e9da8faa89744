package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudresh69/SIH2025/internal/adapter/httpapi"
	"github.com/rudresh69/SIH2025/internal/sim"
)

type mockStreamer struct {
	readyErr   error
	triggerErr error

	gotKind     sim.HazardKind
	gotDuration time.Duration

	frames chan sim.Frame
}

func (m *mockStreamer) Subscribe() (<-chan sim.Frame, func()) {
	return m.frames, func() {}
}

func (m *mockStreamer) TriggerHazard(_ context.Context, kind sim.HazardKind, duration time.Duration) error {
	m.gotKind = kind
	m.gotDuration = duration
	return m.triggerErr
}

func (m *mockStreamer) CheckReadiness(_ context.Context) error { return m.readyErr }

func newTestServer(streamer *mockStreamer) *httpapi.Server {
	return httpapi.NewServer(":0", streamer, slog.New(slog.DiscardHandler))
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockStreamer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockStreamer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockStreamer{readyErr: fmt.Errorf("loop not running")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "loop not running", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockStreamer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestTriggerAcceptsValidHazard(t *testing.T) {
	streamer := &mockStreamer{}
	srv := newTestServer(streamer)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trigger/rockfall",
		strings.NewReader(`{"duration_seconds": 45}`))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, sim.HazardRockfall, streamer.gotKind)
	assert.Equal(t, 45*time.Second, streamer.gotDuration)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "triggered", body["status"])
	assert.Equal(t, "rockfall", body["kind"])
}

func TestTriggerDefaultsDurationWhenBodyEmpty(t *testing.T) {
	streamer := &mockStreamer{}
	srv := newTestServer(streamer)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trigger/landslide", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, sim.HazardLandslide, streamer.gotKind)
	assert.Equal(t, 60*time.Second, streamer.gotDuration)
}

func TestTriggerRejectsUnknownKind(t *testing.T) {
	streamer := &mockStreamer{
		triggerErr: fmt.Errorf("trigger hazard %q: %w", "meteor", sim.ErrInvalidHazardKind),
	}
	srv := newTestServer(streamer)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trigger/meteor", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerRejectsNonPositiveDuration(t *testing.T) {
	streamer := &mockStreamer{
		triggerErr: fmt.Errorf("trigger hazard rockfall: %w", sim.ErrInvalidDuration),
	}
	srv := newTestServer(streamer)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trigger/rockfall",
		strings.NewReader(`{"duration_seconds": -5}`))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(&mockStreamer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trigger/rockfall",
		strings.NewReader(`{"duration_seconds": `))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerRequiresPost(t *testing.T) {
	srv := newTestServer(&mockStreamer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trigger/rockfall", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLiveStreamDeliversFrames(t *testing.T) {
	streamer := &mockStreamer{frames: make(chan sim.Frame, 4)}
	srv := newTestServer(streamer)

	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer close(streamer.frames)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	want := sim.Frame{
		Timestamp: time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
		Label:     1,
		Phase:     sim.PhaseWarning,
	}
	streamer.frames <- want

	var got sim.Frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, want.Label, got.Label)
	assert.Equal(t, want.Phase, got.Phase)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
}
