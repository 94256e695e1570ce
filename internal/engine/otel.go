package engine

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "stocksim.engine"

// engineMetrics holds the orchestrator's OpenTelemetry instruments. All
// instruments come from the global meter provider; when none is installed
// they are no-ops, so the engine never depends on observability being wired.
type engineMetrics struct {
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
}

func newEngineMetrics() *engineMetrics {
	meter := otel.Meter(meterName)

	runsTotal, err := meter.Int64Counter("simulation_runs_total",
		metric.WithDescription("Completed simulation runs by model and outcome"),
	)
	if err != nil {
		runsTotal = nil
	}
	runDuration, err := meter.Float64Histogram("simulation_run_duration_seconds",
		metric.WithDescription("Wall-clock duration of simulation runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		runDuration = nil
	}
	return &engineMetrics{runsTotal: runsTotal, runDuration: runDuration}
}

func (m *engineMetrics) recordRun(ctx context.Context, modelType string, elapsed time.Duration, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, ErrInterrupted):
		outcome = "interrupted"
	case err != nil:
		outcome = "failure"
	}

	attrs := metric.WithAttributes(
		attribute.String("model", modelType),
		attribute.String("outcome", outcome),
	)
	if m.runsTotal != nil {
		m.runsTotal.Add(ctx, 1, attrs)
	}
	if m.runDuration != nil {
		m.runDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
