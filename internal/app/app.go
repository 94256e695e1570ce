package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/exporter"
	"stocksim/internal/history"
	"stocksim/internal/infrastructure"
	"stocksim/internal/middleware"
	"stocksim/internal/stats"
	"stocksim/internal/store"
	httptransport "stocksim/internal/transport/http"
	"stocksim/internal/websocket"
)

// Application holds the assembled service and its lifecycle state.
type Application struct {
	config    *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders

	hub    *websocket.Hub
	engine *engine.Engine
	store  *store.Store
	router *chi.Mux
	server *http.Server
}

// NewApplication loads configuration from configFile (may be empty to use
// the default lookup) and wires every component of the service.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	app := &Application{
		config:    cfg,
		logger:    logger,
		providers: providers,
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()

	logger.Info("application initialized",
		slog.Int("port", cfg.Server.Port),
		slog.String("history_dir", cfg.Paths.HistoryDir),
		slog.String("export_format", cfg.Simulation.ExportFormat),
	)
	return app, nil
}

func (a *Application) initServices() error {
	format, err := exporter.ParseFormat(a.config.Simulation.ExportFormat)
	if err != nil {
		return fmt.Errorf("failed to configure exporter: %w", err)
	}

	provider := history.NewCSVProvider(a.config.Paths.HistoryDir, a.logger)
	a.store = store.New(a.config.Paths.DataDir, a.logger)
	exp := exporter.New(a.config.Paths.ReportsDir, format, a.logger)

	a.hub = websocket.NewHub(a.logger)

	statsEngine := stats.NewEngine(a.logger,
		stats.WithAdvancedStats(a.config.Simulation.AdvancedStats))

	a.engine = engine.NewEngine(provider, a.logger,
		engine.WithStore(a.store),
		engine.WithExporter(exp),
		engine.WithBroadcaster(a.hub),
		engine.WithStatsEngine(statsEngine),
	)
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))

	// The websocket upgrade and the metrics scrape stay outside the rate
	// limited group: both are long lived or high frequency by nature.
	wsHandler := websocket.NewHandler(a.hub, a.config.WebSocket, a.logger)
	r.Handle("/ws", wsHandler)
	if a.providers != nil && a.providers.PrometheusHTTP != nil {
		r.Handle("/metrics", a.providers.PrometheusHTTP)
	}

	simHandler := httptransport.NewSimulationHandler(a.engine, a.config.Simulation, a.logger)
	resultsHandler := httptransport.NewResultsHandler(a.store, a.logger)
	healthHandler := httptransport.NewHealthHandler(a.hub, a.logger)

	r.Group(func(r chi.Router) {
		if a.config.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(a.config.RateLimit.RPS, a.config.RateLimit.Burst, a.logger)
			r.Use(limiter.Handler)
		}
		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Get("/health", healthHandler.HealthCheck)
			simHandler.Routes(r)
			resultsHandler.Routes(r)
		})
	})

	a.router = r
}

func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:           a.config.ListenAddr(),
		Handler:        a.router,
		ReadTimeout:    a.config.Server.ReadTimeout,
		WriteTimeout:   a.config.Server.WriteTimeout,
		IdleTimeout:    a.config.Server.IdleTimeout,
		MaxHeaderBytes: a.config.Server.MaxHeaderBytes,
	}
}

// Router exposes the assembled handler, mainly for tests.
func (a *Application) Router() http.Handler {
	return a.router
}

// Engine exposes the simulation engine, mainly for tests.
func (a *Application) Engine() *engine.Engine {
	return a.engine
}

// Start launches the websocket hub and the HTTP server. It returns once
// the listener is up; server errors cancel the returned context.
func (a *Application) Start(ctx context.Context) (context.Context, error) {
	a.hub.Start()

	serverCtx, cancel := context.WithCancelCause(ctx)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("http server failed", slog.String("error", err.Error()))
			cancel(err)
			return
		}
		cancel(nil)
	}()
	return serverCtx, nil
}

// Stop shuts the application down: the HTTP server drains within the
// configured timeout, then the hub and telemetry close.
func (a *Application) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		firstErr = err
	}

	a.hub.Stop()

	if a.providers != nil {
		if err := a.providers.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Run starts the application and blocks until an interrupt signal or a
// server failure, then performs a graceful shutdown.
func (a *Application) Run(ctx context.Context) error {
	serverCtx, err := a.Start(ctx)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-serverCtx.Done():
		if cause := context.Cause(serverCtx); cause != nil && cause != context.Canceled {
			a.logger.Error("server stopped unexpectedly", slog.String("error", cause.Error()))
			_ = a.Stop()
			return cause
		}
	}

	start := time.Now()
	if err := a.Stop(); err != nil {
		return err
	}
	a.logger.Info("shutdown complete", slog.Duration("took", time.Since(start)))
	return nil
}
