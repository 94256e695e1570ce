package http

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stocksim/internal/errors"
	"stocksim/internal/store"
)

// SimulationStore is the read side of the persistence layer the results
// endpoints serve from.
type SimulationStore interface {
	List() ([]store.Entry, error)
	LoadReport(simulationID string) ([]byte, error)
}

// ResultsHandler serves persisted simulation artifacts.
type ResultsHandler struct {
	store  SimulationStore
	logger *slog.Logger
}

// NewResultsHandler creates the handler.
func NewResultsHandler(st SimulationStore, logger *slog.Logger) *ResultsHandler {
	if st == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandler{
		store:  st,
		logger: logger.With(slog.String("handler", "results")),
	}
}

// Routes mounts the results endpoints on the router.
func (h *ResultsHandler) Routes(r chi.Router) {
	r.Get("/simulations", h.List)
	r.Get("/simulations/{id}/report", h.Report)
}

// List handles GET /api/simulations.
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "listing simulations failed", slog.String("error", err.Error()))
		render.Render(w, r, errors.NewErrorResponse(errors.ErrInternalServer))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"simulations": entries,
		"count":       len(entries),
	})
}

// Report handles GET /api/simulations/{id}/report. The persisted document
// is returned verbatim.
func (h *ResultsHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := h.store.LoadReport(id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			render.Render(w, r, errors.NewErrorResponse(errors.ErrSimulationNotFound))
			return
		}
		h.logger.ErrorContext(r.Context(), "loading report failed",
			slog.String("simulation_id", id),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, errors.NewErrorResponse(errors.ErrInternalServer))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
