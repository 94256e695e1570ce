package engine

import (
	"errors"
	"time"

	"stocksim/internal/simulation"
	"stocksim/internal/stats"
)

// Simulation phases, in execution order. The stop flag is checked at the
// boundary after each phase completes.
const (
	PhaseCalibration = "calibration"
	PhaseGeneration  = "generation"
	PhaseStatistics  = "statistics"
	PhasePersistence = "persistence"
	PhaseExport      = "export"
)

// Event types pushed to the progress broadcaster.
const (
	EventSimulationStatus   = "simulation:status"
	EventSimulationProgress = "simulation:progress"
	EventSimulationComplete = "simulation:complete"
	EventSimulationError    = "simulation:error"
)

var (
	// ErrInterrupted is the control signal raised when a stop request is
	// observed at a phase boundary. It is not a computational failure.
	ErrInterrupted = errors.New("simulation interrupted")

	// ErrInvalidInitialPrice aborts a simulation before path generation.
	ErrInvalidInitialPrice = errors.New("invalid initial price")
)

// Request describes one simulation run.
type Request struct {
	Ticker    string `json:"ticker" validate:"required"`
	ModelType string `json:"model_type" validate:"required,oneof=gbm jump hybrid combined"`
	Paths     int    `json:"paths" validate:"required,gt=0"`
	Steps     int    `json:"steps" validate:"required,gt=0"`
	Dt        float64 `json:"dt" validate:"gte=0"` // zero defaults to 1/252

	Calibrate bool   `json:"calibrate"`
	Lookback  string `json:"lookback_period"`

	// InitialPrice overrides the last historical close. Required when
	// calibration is skipped and no history is available.
	InitialPrice float64 `json:"initial_price" validate:"gte=0"`

	Overrides simulation.Overrides `json:"overrides"`

	// SimulationID keys the cancellation token. Assigned by the caller;
	// the HTTP layer generates a UUID when absent.
	SimulationID string `json:"simulation_id"`
}

// Result is the outcome of a single completed simulation.
type Result struct {
	SimulationID string                     `json:"simulation_id"`
	Ticker       string                     `json:"ticker"`
	ModelType    simulation.ModelType       `json:"model_type"`
	Parameters   simulation.ModelParameters `json:"parameters"`
	InitialPrice float64                    `json:"initial_price"`
	Degraded     bool                       `json:"calibration_degraded"`
	Matrix       simulation.PathMatrix      `json:"-"`
	Report       *stats.Report              `json:"report"`
	DataPath     string                     `json:"data_path,omitempty"`
	ReportPath   string                     `json:"report_path,omitempty"`
	Elapsed      time.Duration              `json:"elapsed"`
}

// TickerFailure records why one ticker of a batch failed.
type TickerFailure struct {
	Ticker  string `json:"ticker"`
	Message string `json:"message"`
}

// BatchResult aggregates a multi-ticker run. Completed results survive an
// interruption; failures are per-ticker and never abort the batch.
type BatchResult struct {
	SimulationID string             `json:"simulation_id"`
	Results      map[string]*Result `json:"results"`
	Failures     []TickerFailure    `json:"failures"`
	Succeeded    int                `json:"succeeded"`
	Failed       int                `json:"failed"`
	Interrupted  bool               `json:"interrupted"`
	ReportPath   string             `json:"report_path,omitempty"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// Event is a progress notification pushed to subscribers.
type Event struct {
	Type         string    `json:"type"`
	SimulationID string    `json:"simulation_id"`
	Ticker       string    `json:"ticker,omitempty"`
	Phase        string    `json:"phase,omitempty"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Broadcaster pushes progress events to interested subscribers. A nil
// broadcaster disables progress reporting.
type Broadcaster interface {
	Publish(event Event)
}

// Store persists a completed simulation's raw paths and report.
type Store interface {
	SaveSimulation(result *Result) (dataPath string, err error)
}

// Exporter renders a completed simulation's report for human consumption.
type Exporter interface {
	ExportReport(result *Result) (reportPath string, err error)
}

// BatchExporter is an optional Exporter extension that writes a summary
// across all tickers of a batch.
type BatchExporter interface {
	ExportBatchSummary(batch *BatchResult) (reportPath string, err error)
}
