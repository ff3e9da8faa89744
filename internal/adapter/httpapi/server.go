package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rudresh69/SIH2025/internal/sim"
)

// defaultHazardSeconds applies when a trigger request omits duration_seconds.
const defaultHazardSeconds = 60

// FrameStreamer is the broadcast surface the server consumes: live frame
// subscriptions, hazard triggers and readiness.
type FrameStreamer interface {
	Subscribe() (<-chan sim.Frame, func())
	TriggerHazard(ctx context.Context, kind sim.HazardKind, duration time.Duration) error
	CheckReadiness(ctx context.Context) error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The simulator serves lab dashboards on arbitrary origins.
		return true
	},
}

// Server exposes the simulator over HTTP: health, readiness and metrics
// endpoints, hazard triggering, and a WebSocket live frame stream.
type Server struct {
	httpServer *http.Server
	streamer   FrameStreamer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, streamer FrameStreamer, logger *slog.Logger) *Server {
	s := &Server{
		streamer: streamer,
		logger:   logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/live", s.handleLive).Methods(http.MethodGet)
	r.HandleFunc("/api/trigger/{kind}", s.handleTrigger).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.streamer.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type triggerRequest struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

type triggerResponse struct {
	Status          string  `json:"status"`
	Kind            string  `json:"kind"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	kind := sim.HazardKind(mux.Vars(r)["kind"])

	req := triggerRequest{DurationSeconds: defaultHazardSeconds}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}
	}

	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	err := s.streamer.TriggerHazard(r.Context(), kind, duration)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, triggerResponse{
			Status:          "triggered",
			Kind:            string(kind),
			DurationSeconds: req.DurationSeconds,
		})
	case errors.Is(err, sim.ErrInvalidHazardKind), errors.Is(err, sim.ErrInvalidDuration):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("trigger failed", "kind", kind, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "trigger failed"})
	}
}

// handleLive upgrades to a WebSocket and streams frames as JSON until the
// client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	frames, unsubscribe := s.streamer.Subscribe()
	defer unsubscribe()

	s.logger.Info("live stream connected", "remote", r.RemoteAddr)

	// Drain client messages so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				unsubscribe()
				return
			}
		}
	}()

	for frame := range frames {
		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Info("live stream disconnected", "remote", r.RemoteAddr)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
