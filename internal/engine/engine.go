package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stocksim/internal/history"
	"stocksim/internal/simulation"
	"stocksim/internal/stats"
)

// defaultDt is one trading day in years.
const defaultDt = 1.0 / simulation.TradingDaysPerYear

// Engine drives simulations. Construct with NewEngine; the zero value is
// not usable.
type Engine struct {
	provider    history.Provider
	calibrator  *simulation.Calibrator
	statsEngine *stats.Engine
	store       Store
	exporter    Exporter
	broadcaster Broadcaster
	stops       *StopRegistry
	logger      *slog.Logger
	metrics     *engineMetrics
}

// EngineOption configures optional collaborators.
type EngineOption func(*Engine)

// WithStore attaches a persistence backend.
func WithStore(store Store) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithExporter attaches a report exporter.
func WithExporter(exporter Exporter) EngineOption {
	return func(e *Engine) { e.exporter = exporter }
}

// WithBroadcaster attaches a progress event sink.
func WithBroadcaster(b Broadcaster) EngineOption {
	return func(e *Engine) { e.broadcaster = b }
}

// WithStatsEngine replaces the default statistics engine.
func WithStatsEngine(se *stats.Engine) EngineOption {
	return func(e *Engine) { e.statsEngine = se }
}

// NewEngine creates an orchestrator around a historical-data provider.
// Provider may be nil when every request supplies Calibrate=false and an
// explicit initial price.
func NewEngine(provider history.Provider, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		provider:    provider,
		calibrator:  simulation.NewCalibrator(logger),
		statsEngine: stats.NewEngine(logger),
		stops:       NewStopRegistry(),
		logger:      logger,
		metrics:     newEngineMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stops exposes the cancellation registry so transports can route stop
// requests.
func (e *Engine) Stops() *StopRegistry {
	return e.stops
}

// RequestStop flags the simulation for cancellation at the next phase
// boundary.
func (e *Engine) RequestStop(simulationID string) bool {
	return e.stops.RequestStop(simulationID)
}

// IsStopRequested reports whether a stop is pending for the simulation.
func (e *Engine) IsStopRequested(simulationID string) bool {
	return e.stops.IsStopRequested(simulationID)
}

// Run executes one simulation through all phases. It returns ErrInterrupted
// when a stop request is observed at a phase boundary; any partial
// artifacts persisted before the interruption remain on disk.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	// The token may already exist when a batch shares its id with every
	// ticker; only the creator discards it.
	owned := !e.stops.Known(req.SimulationID)
	if owned {
		e.stops.Register(req.SimulationID)
		defer e.stops.Discard(req.SimulationID)
	}

	result, err := e.run(ctx, req)
	elapsed := time.Since(start)
	e.metrics.recordRun(ctx, req.ModelType, elapsed, err)

	if err != nil {
		e.publish(Event{
			Type:         EventSimulationError,
			SimulationID: req.SimulationID,
			Ticker:       req.Ticker,
			Message:      err.Error(),
			Timestamp:    time.Now(),
		})
		return nil, err
	}

	result.Elapsed = elapsed
	e.publish(Event{
		Type:         EventSimulationComplete,
		SimulationID: req.SimulationID,
		Ticker:       req.Ticker,
		Timestamp:    time.Now(),
	})
	return result, nil
}

func (e *Engine) run(ctx context.Context, req Request) (*Result, error) {
	modelType, err := simulation.ParseModelType(req.ModelType)
	if err != nil {
		return nil, err
	}
	dt := req.Dt
	if dt <= 0 {
		dt = defaultDt
	}

	params, initialPrice, degraded, err := e.resolveParameters(ctx, req)
	if err != nil {
		return nil, err
	}
	if initialPrice <= 0 {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidInitialPrice, req.Ticker, initialPrice)
	}
	if err := e.checkStop(req, PhaseCalibration); err != nil {
		return nil, err
	}

	model, err := simulation.NewModel(modelType, initialPrice, params)
	if err != nil {
		return nil, fmt.Errorf("build %s model for %s: %w", modelType, req.Ticker, err)
	}

	e.logger.InfoContext(ctx, "running simulation",
		"simulation_id", req.SimulationID,
		"ticker", req.Ticker,
		"model", modelType.String(),
		"paths", req.Paths,
		"steps", req.Steps,
		"calibrated", req.Calibrate,
		"degraded", degraded,
	)

	matrix, err := model.Simulate(req.Paths, req.Steps, dt)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", req.Ticker, err)
	}
	if err := e.checkStop(req, PhaseGeneration); err != nil {
		return nil, err
	}
	e.progress(req, PhaseGeneration)

	report, err := e.statsEngine.Calculate(matrix, initialPrice)
	if err != nil {
		return nil, fmt.Errorf("statistics for %s: %w", req.Ticker, err)
	}
	if err := e.checkStop(req, PhaseStatistics); err != nil {
		return nil, err
	}
	e.progress(req, PhaseStatistics)

	result := &Result{
		SimulationID: req.SimulationID,
		Ticker:       req.Ticker,
		ModelType:    modelType,
		Parameters:   model.Parameters(),
		InitialPrice: initialPrice,
		Degraded:     degraded,
		Matrix:       matrix,
		Report:       report,
	}

	if e.store != nil {
		dataPath, err := e.store.SaveSimulation(result)
		if err != nil {
			return nil, fmt.Errorf("persist %s: %w", req.Ticker, err)
		}
		result.DataPath = dataPath
	}
	if err := e.checkStop(req, PhasePersistence); err != nil {
		return nil, err
	}
	e.progress(req, PhasePersistence)

	if e.exporter != nil {
		reportPath, err := e.exporter.ExportReport(result)
		if err != nil {
			// Export failure degrades the result, it does not void it.
			e.logger.WarnContext(ctx, "report export failed",
				"ticker", req.Ticker,
				"error", err,
			)
		} else {
			result.ReportPath = reportPath
		}
	}
	if err := e.checkStop(req, PhaseExport); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveParameters produces the model parameter set and initial price for
// a request: calibration from history when requested, defaults otherwise,
// explicit overrides winning field-by-field in all cases.
func (e *Engine) resolveParameters(ctx context.Context, req Request) (simulation.ModelParameters, float64, bool, error) {
	params := simulation.DefaultParameters()
	initialPrice := req.InitialPrice
	degraded := false

	needHistory := req.Calibrate || initialPrice <= 0
	if needHistory {
		if e.provider == nil {
			return params, 0, false, fmt.Errorf("no historical data provider configured for %s", req.Ticker)
		}
		series, err := e.provider.Fetch(ctx, req.Ticker, req.Lookback)
		switch {
		case err == nil:
			if initialPrice <= 0 {
				last, lastErr := series.LastClose()
				if lastErr != nil {
					return params, 0, false, fmt.Errorf("%w for %s: %v", ErrInvalidInitialPrice, req.Ticker, lastErr)
				}
				initialPrice = last
			}
			if req.Calibrate {
				params, degraded = e.calibrator.Calibrate(series.Closes())
			}
		case errors.Is(err, history.ErrNoData) && initialPrice > 0:
			// Calibration input is missing but the caller pinned the initial
			// price; fall back to documented defaults and continue degraded.
			e.logger.WarnContext(ctx, "no historical data, using default parameters",
				"ticker", req.Ticker,
				"error", err,
			)
			degraded = true
		default:
			return params, 0, false, fmt.Errorf("fetch history for %s: %w", req.Ticker, err)
		}
	}

	params = req.Overrides.Apply(params)
	return params, initialPrice, degraded, nil
}

// checkStop enforces the phase-boundary cancellation contract.
func (e *Engine) checkStop(req Request, phase string) error {
	if e.stops.IsStopRequested(req.SimulationID) {
		e.logger.Info("simulation stopped by request",
			"simulation_id", req.SimulationID,
			"ticker", req.Ticker,
			"phase", phase,
		)
		return fmt.Errorf("%w: %s stopped after %s", ErrInterrupted, req.Ticker, phase)
	}
	return nil
}

func (e *Engine) progress(req Request, phase string) {
	e.publish(Event{
		Type:         EventSimulationProgress,
		SimulationID: req.SimulationID,
		Ticker:       req.Ticker,
		Phase:        phase,
		Timestamp:    time.Now(),
	})
}

func (e *Engine) publish(event Event) {
	if e.broadcaster != nil {
		e.broadcaster.Publish(event)
	}
}
