// Command simulator runs simulations from the command line without the
// HTTP service. It shares the configuration, engine and artifact layout
// with the web command.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/exporter"
	"stocksim/internal/history"
	"stocksim/internal/infrastructure"
	"stocksim/internal/stats"
	"stocksim/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "path to YAML configuration file")
		tickers     = flag.String("tickers", "", "comma separated tickers to simulate (required)")
		model       = flag.String("model", "gbm", "price model: gbm, jump or hybrid")
		paths       = flag.Int("paths", 10000, "number of simulated paths")
		steps       = flag.Int("steps", 252, "number of steps per path")
		dt          = flag.Float64("dt", 0, "time step in years (0 uses the default)")
		calibrate   = flag.Bool("calibrate", true, "calibrate parameters from historical data")
		price       = flag.Float64("price", 0, "initial price override, required when history is unavailable")
		lookback    = flag.String("lookback", "", "calibration lookback window, e.g. 1y or 6m")
		concurrency = flag.Int("concurrency", 0, "parallel tickers for batch runs (0 uses the configured value)")
		noPersist   = flag.Bool("no-persist", false, "skip writing path and report artifacts")
		noExport    = flag.Bool("no-export", false, "skip the report export")
	)
	flag.Parse()

	list := splitTickers(*tickers)
	if len(list) == 0 {
		flag.Usage()
		return fmt.Errorf("at least one ticker is required")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	opts := []engine.EngineOption{
		engine.WithStatsEngine(stats.NewEngine(logger,
			stats.WithAdvancedStats(cfg.Simulation.AdvancedStats))),
	}
	if !*noPersist {
		opts = append(opts, engine.WithStore(store.New(cfg.Paths.DataDir, logger)))
	}
	if !*noExport {
		format, err := exporter.ParseFormat(cfg.Simulation.ExportFormat)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithExporter(exporter.New(cfg.Paths.ReportsDir, format, logger)))
	}

	provider := history.NewCSVProvider(cfg.Paths.HistoryDir, logger)
	eng := engine.NewEngine(provider, logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := engine.Request{
		SimulationID: uuid.New().String(),
		ModelType:    *model,
		Paths:        *paths,
		Steps:        *steps,
		Dt:           *dt,
		Calibrate:    *calibrate,
		InitialPrice: *price,
		Lookback:     *lookback,
	}
	if req.Lookback == "" {
		req.Lookback = cfg.Simulation.DefaultLookback
	}

	if len(list) == 1 {
		req.Ticker = list[0]
		result, err := eng.Run(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	workers := *concurrency
	if workers == 0 {
		workers = cfg.Simulation.BatchConcurrency
	}
	batch := eng.RunBatch(ctx, list, req, workers)
	if err := printJSON(batch); err != nil {
		return err
	}
	if batch.Failed > 0 {
		return fmt.Errorf("%d of %d simulations failed", batch.Failed, len(list))
	}
	return nil
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, strings.ToUpper(t))
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
