// Package http contains the HTTP handlers for the simulation API.
package http

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/errors"
	"stocksim/internal/history"
	"stocksim/internal/simulation"
)

// SimulationHandler exposes the orchestrator over HTTP.
type SimulationHandler struct {
	engine   *engine.Engine
	validate *validator.Validate
	limits   config.SimulationConfig
	logger   *slog.Logger
}

// NewSimulationHandler creates the handler.
func NewSimulationHandler(eng *engine.Engine, limits config.SimulationConfig, logger *slog.Logger) *SimulationHandler {
	if eng == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationHandler{
		engine:   eng,
		validate: validator.New(),
		limits:   limits,
		logger:   logger.With(slog.String("handler", "simulation")),
	}
}

// Routes mounts the simulation endpoints on the router.
func (h *SimulationHandler) Routes(r chi.Router) {
	r.Post("/simulate", h.Simulate)
	r.Post("/simulate/batch", h.SimulateBatch)
	r.Post("/simulations/{id}/stop", h.Stop)
}

// SimulateRequest is the body of POST /api/simulate.
type SimulateRequest struct {
	engine.Request
}

// BatchRequest is the body of POST /api/simulate/batch. The simulation
// parameters apply to every ticker.
type BatchRequest struct {
	Tickers      []string             `json:"tickers" validate:"required,min=1,dive,required"`
	ModelType    string               `json:"model_type" validate:"required,oneof=gbm jump hybrid combined"`
	Paths        int                  `json:"paths" validate:"required,gt=0"`
	Steps        int                  `json:"steps" validate:"required,gt=0"`
	Dt           float64              `json:"dt" validate:"gte=0"`
	Calibrate    bool                 `json:"calibrate"`
	Lookback     string               `json:"lookback_period"`
	InitialPrice float64              `json:"initial_price" validate:"gte=0"`
	Overrides    simulation.Overrides `json:"overrides"`
	Concurrency  int                  `json:"concurrency" validate:"gte=0"`
}

func (b *BatchRequest) toEngineRequest() engine.Request {
	return engine.Request{
		ModelType:    b.ModelType,
		Paths:        b.Paths,
		Steps:        b.Steps,
		Dt:           b.Dt,
		Calibrate:    b.Calibrate,
		Lookback:     b.Lookback,
		InitialPrice: b.InitialPrice,
		Overrides:    b.Overrides,
	}
}

// Simulate handles POST /api/simulate. The simulation runs synchronously;
// progress streams over the websocket hub in the meantime.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, errors.NewErrorResponse(errors.InvalidRequestWithError(err)))
		return
	}
	if apiErr := h.validateRequest(&req.Request); apiErr != nil {
		render.Render(w, r, errors.NewErrorResponse(apiErr))
		return
	}
	if req.SimulationID == "" {
		req.SimulationID = uuid.New().String()
	}
	if req.Lookback == "" {
		req.Lookback = h.limits.DefaultLookback
	}

	result, err := h.engine.Run(r.Context(), req.Request)
	if err != nil {
		h.respondRunError(w, r, req.Ticker, err)
		return
	}
	render.JSON(w, r, result)
}

// SimulateBatch handles POST /api/simulate/batch. Per-ticker failures are
// reported inside the batch result, not as an HTTP error.
func (h *SimulationHandler) SimulateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, errors.NewErrorResponse(errors.InvalidRequestWithError(err)))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		render.Render(w, r, errors.NewErrorResponse(validationError(err)))
		return
	}
	if apiErr := h.checkLimits(req.Paths, req.Steps); apiErr != nil {
		render.Render(w, r, errors.NewErrorResponse(apiErr))
		return
	}

	engineReq := req.toEngineRequest()
	engineReq.SimulationID = uuid.New().String()
	if engineReq.Lookback == "" {
		engineReq.Lookback = h.limits.DefaultLookback
	}
	concurrency := req.Concurrency
	if concurrency == 0 {
		concurrency = h.limits.BatchConcurrency
	}

	batch := h.engine.RunBatch(r.Context(), req.Tickers, engineReq, concurrency)
	render.JSON(w, r, batch)
}

// Stop handles POST /api/simulations/{id}/stop. The stop takes effect at
// the next phase boundary of the running simulation.
func (h *SimulationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.engine.Stops().Known(id) {
		render.Render(w, r, errors.NewErrorResponse(errors.ErrSimulationNotFound))
		return
	}
	h.engine.RequestStop(id)
	h.logger.InfoContext(r.Context(), "stop requested", slog.String("simulation_id", id))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"success":       true,
		"simulation_id": id,
		"status":        "stop_requested",
	})
}

func (h *SimulationHandler) validateRequest(req *engine.Request) *errors.APIError {
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	return h.checkLimits(req.Paths, req.Steps)
}

func (h *SimulationHandler) checkLimits(paths, steps int) *errors.APIError {
	if h.limits.MaxPaths > 0 && paths > h.limits.MaxPaths {
		return errors.ErrValidation("paths", "exceeds configured maximum")
	}
	if h.limits.MaxSteps > 0 && steps > h.limits.MaxSteps {
		return errors.ErrValidation("steps", "exceeds configured maximum")
	}
	return nil
}

func (h *SimulationHandler) respondRunError(w http.ResponseWriter, r *http.Request, ticker string, err error) {
	ctx := r.Context()
	switch {
	case stderrors.Is(err, engine.ErrInterrupted):
		render.Render(w, r, errors.NewErrorResponse(errors.NewWithDetails(
			http.StatusConflict, "SIMULATION_STOPPED", "Simulation stopped by request", err.Error(),
		)))
	case stderrors.Is(err, history.ErrNoData):
		render.Render(w, r, errors.NewErrorResponse(errors.NoHistoryError(ticker)))
	case stderrors.Is(err, engine.ErrInvalidInitialPrice):
		render.Render(w, r, errors.NewErrorResponse(errors.ErrValidation("initial_price", err.Error())))
	default:
		h.logger.ErrorContext(ctx, "simulation failed",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, errors.NewErrorResponse(errors.SimulationError(err)))
	}
}

// validationError converts validator errors into the field-level API shape.
func validationError(err error) *errors.APIError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]errors.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, errors.ValidationError{
				Field:   fe.Field(),
				Message: "failed on rule: " + fe.Tag(),
			})
		}
		return errors.NewValidationErrors(fields)
	}
	return errors.InvalidRequestWithError(err)
}
