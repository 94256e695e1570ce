package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"stocksim/internal/infrastructure"
)

// HubStatus reports websocket hub counters on the health endpoint.
type HubStatus interface {
	Metrics() map[string]interface{}
}

// HealthHandler handles GET /api/health.
type HealthHandler struct {
	hub     HubStatus
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler. hub may be nil.
func NewHealthHandler(hub HubStatus, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		hub:     hub,
		started: time.Now(),
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"service": infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
		"uptime":  time.Since(h.started).String(),
	}
	if h.hub != nil {
		resp["websocket"] = h.hub.Metrics()
	}
	render.JSON(w, r, resp)
}
