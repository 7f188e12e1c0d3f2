// Package httpapi exposes the travel planner over HTTP: one endpoint
// to step a conversation, read-only endpoints for stored conversations
// and their histories, a health check, and Prometheus metrics for the
// request path.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mansiraturi/travelbot/pkg/travelbot"
	"github.com/mansiraturi/travelbot/pkg/travelbot/checkpoint"
	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
)

// Orchestrator is the planner surface the HTTP adapter drives.
// *travelbot.Orchestrator implements it.
type Orchestrator interface {
	Step(ctx context.Context, conversationID, message string) (*travelbot.StepResult, error)
	Conversations(ctx context.Context) ([]checkpoint.Info, error)
	History(ctx context.Context, conversationID string) ([]travelbot.Message, error)
}

// Server adapts an orchestrator to HTTP.
type Server struct {
	orch   Orchestrator
	logger *slog.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an HTTP adapter over the orchestrator. Metrics are
// registered on a private registry, exposed at /metrics.
func NewServer(orch Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:     orch,
		logger:   slog.Default(),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travelbot_http_requests_total",
				Help: "HTTP requests served, by method, route, and status code.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "travelbot_http_request_duration_seconds",
				Help: "HTTP request latency by method and route.",
			},
			[]string{"method", "route"},
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.requests, s.duration)
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/conversations", s.handleConversations)
	r.Get("/conversations/{conversationID}/history", s.handleHistory)
	r.Post("/conversations/{conversationID}/messages", s.handleMessage)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// messageRequest is the body of a conversation step.
type messageRequest struct {
	Message string `json:"message"`
}

// messageResponse mirrors StepResult for the wire.
type messageResponse struct {
	ConversationID string               `json:"conversation_id"`
	Stage          string               `json:"stage"`
	Prompt         string               `json:"prompt,omitempty"`
	Done           bool                 `json:"done"`
	Itinerary      *travelbot.Itinerary `json:"itinerary,omitempty"`
}

// conversationInfo is one stored conversation in a listing.
type conversationInfo struct {
	ConversationID string    `json:"conversation_id"`
	Stage          string    `json:"stage"`
	Sequence       int       `json:"sequence"`
	UpdatedAt      time.Time `json:"updated_at"`
	SizeBytes      int64     `json:"size_bytes"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("message: invalid request body", "error", err)
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	res, err := s.orch.Step(r.Context(), conversationID, body.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, "step failed: "+err.Error(), status)
		s.logger.Error("step failed", "conversation_id", conversationID, "error", err)
		return
	}

	writeJSON(w, s.logger, messageResponse{
		ConversationID: res.ConversationID,
		Stage:          string(res.Stage),
		Prompt:         res.Prompt,
		Done:           res.Done,
		Itinerary:      res.Itinerary,
	})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	infos, err := s.orch.Conversations(r.Context())
	if err != nil {
		http.Error(w, "list failed: "+err.Error(), http.StatusInternalServerError)
		s.logger.Error("conversation listing failed", "error", err)
		return
	}

	out := make([]conversationInfo, len(infos))
	for i, info := range infos {
		out[i] = conversationInfo{
			ConversationID: info.ConversationID,
			Stage:          info.Stage,
			Sequence:       info.Sequence,
			UpdatedAt:      info.UpdatedAt,
			SizeBytes:      info.Size,
		}
	}
	writeJSON(w, s.logger, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	history, err := s.orch.History(r.Context(), conversationID)
	if err != nil {
		http.Error(w, "history failed: "+err.Error(), http.StatusInternalServerError)
		s.logger.Error("history lookup failed", "conversation_id", conversationID, "error", err)
		return
	}
	if history == nil {
		history = []travelbot.Message{}
	}
	writeJSON(w, s.logger, history)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// instrument records a counter and a latency observation per request,
// labeled by the matched chi route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		elapsed := observability.TimedOperation()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ms := elapsed()
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		s.duration.WithLabelValues(r.Method, route).Observe(ms / 1000)
		s.logger.Info("http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", ms,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
