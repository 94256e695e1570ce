package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel ticker simulations in a batch.
const DefaultBatchConcurrency = 4

// RunBatch fans the simulation pipeline out across tickers. Workers share
// only the stop registry; each owns its parameters, matrix and report. A
// single ticker's failure is recorded, never fatal. When the shared stop
// flag fires, in-flight tickers finish with ErrInterrupted, completed
// results are preserved and the batch is marked interrupted.
func (e *Engine) RunBatch(ctx context.Context, tickers []string, req Request, concurrency int) *BatchResult {
	start := time.Now()
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	e.stops.Register(req.SimulationID)
	defer e.stops.Discard(req.SimulationID)

	batch := &BatchResult{
		SimulationID: req.SimulationID,
		Results:      make(map[string]*Result, len(tickers)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, ticker := range tickers {
		if e.stops.IsStopRequested(req.SimulationID) {
			break
		}

		g.Go(func() error {
			tickerReq := req
			tickerReq.Ticker = ticker

			result, err := e.Run(gctx, tickerReq)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				batch.Results[ticker] = result
				batch.Succeeded++
			case errors.Is(err, ErrInterrupted):
				batch.Interrupted = true
			default:
				batch.Failed++
				batch.Failures = append(batch.Failures, TickerFailure{
					Ticker:  ticker,
					Message: err.Error(),
				})
				e.logger.Warn("batch ticker failed",
					"simulation_id", req.SimulationID,
					"ticker", ticker,
					"error", err,
				)
			}
			// Failures never abort the group; siblings keep running.
			return nil
		})
	}

	_ = g.Wait()
	if e.stops.IsStopRequested(req.SimulationID) {
		batch.Interrupted = true
	}

	if be, ok := e.exporter.(BatchExporter); ok && batch.Succeeded > 0 {
		path, err := be.ExportBatchSummary(batch)
		if err != nil {
			// Same contract as the per-run export: degrade, never void.
			e.logger.Warn("batch summary export failed",
				"simulation_id", req.SimulationID,
				"error", err,
			)
		} else {
			batch.ReportPath = path
		}
	}

	batch.Elapsed = time.Since(start)
	e.logger.Info("batch simulation finished",
		"simulation_id", req.SimulationID,
		"tickers", len(tickers),
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"interrupted", batch.Interrupted,
	)
	return batch
}
