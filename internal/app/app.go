// v0
// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/Salmankotakuth/ai-tanmiya/internal/breaker"
	"github.com/Salmankotakuth/ai-tanmiya/internal/cache"
	"github.com/Salmankotakuth/ai-tanmiya/internal/config"
	"github.com/Salmankotakuth/ai-tanmiya/internal/events"
	"github.com/Salmankotakuth/ai-tanmiya/internal/forecast"
	"github.com/Salmankotakuth/ai-tanmiya/internal/httpapi"
	"github.com/Salmankotakuth/ai-tanmiya/internal/meetings"
	"github.com/Salmankotakuth/ai-tanmiya/internal/metrics"
	"github.com/Salmankotakuth/ai-tanmiya/internal/nlp"
	"github.com/Salmankotakuth/ai-tanmiya/internal/region"
	"github.com/Salmankotakuth/ai-tanmiya/internal/report"
	"github.com/Salmankotakuth/ai-tanmiya/internal/score"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

const shutdownTimeout = 15 * time.Second

// Application wires configuration, logging, the pipeline components, and the
// HTTP server with graceful shutdown.
type Application struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	logFile *os.File
	server  *http.Server
	health  *httpapi.HealthState
	bus     *events.Publisher
}

// New prepares a fully wired service instance from the supplied
// configuration.
func New(cfg *config.AppConfig) (*Application, error) {
	var logFile *os.File
	if cfg.LogFile != "" {
		logPath := filepath.Clean(cfg.LogFile)
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logFile = f
	}
	logger := newLogger(logFile)

	met := metrics.New()
	health := httpapi.NewHealthState()
	catalog := region.NewCatalog()

	brkCfg := breaker.Config{
		MaxFailures:  cfg.BreakerMaxFailures,
		ResetTimeout: cfg.BreakerResetTimeout,
	}
	onState := func(name string, s breaker.State) {
		met.SetBreakerState(name, float64(s))
	}
	newSupervised := func(name string) *breaker.HTTPClient {
		return breaker.NewHTTPClient(name, brkCfg, logger.With(slog.String("component", "breaker")), onState, nil)
	}

	storeClient := store.NewClient(cfg.StoreBaseURL, cfg.StoreToken,
		logger.With(slog.String("component", "store")), newSupervised("store"), met)
	engine := store.NewEngine(storeClient, logger.With(slog.String("component", "reconcile")))

	backend := meetings.NewClient(cfg.BackendBaseURL, cfg.BackendToken,
		logger.With(slog.String("component", "backend")), newSupervised("backend"))

	translator := nlp.NewTranslator(cfg.TranslatorURL, "ar",
		logger.With(slog.String("component", "translator")), newSupervised("translator"))
	reranker := nlp.NewReranker(cfg.RerankerURL,
		logger.With(slog.String("component", "reranker")), newSupervised("reranker"))
	generator := nlp.NewGenerator(cfg.GeneratorURL,
		logger.With(slog.String("component", "generator")), newSupervised("generator"))

	minutes := score.NewMinutesScorer(translator, reranker, cfg.RerankTopK,
		logger.With(slog.String("component", "minutes")))
	scoreRunner := score.NewRunner(catalog, backend, minutes, engine,
		logger.With(slog.String("component", "score")), met)
	forecaster := forecast.NewForecaster(catalog, storeClient, engine,
		logger.With(slog.String("component", "forecast")), met, cfg.ForecastSeed)
	collector := meetings.NewCollector(catalog, backend, storeClient,
		logger.With(slog.String("component", "collect")), met)
	reporter := report.NewWriter(storeClient, generator, storeClient,
		logger.With(slog.String("component", "report")), met)

	bus := events.NewPublisher(cfg.KafkaBrokers, cfg.RunEventsTopic, logger)

	server := httpapi.NewServer(httpapi.Deps{
		Log:             logger.With(slog.String("component", "http")),
		Health:          health,
		Metrics:         met,
		Scores:          scoreRunner,
		Forecasts:       forecaster,
		Collector:       collector,
		Reports:         reporter,
		Reader:          storeClient,
		Bus:             bus,
		SnapshotCache:   cache.New[[]store.SnapshotRecord](cfg.CacheTTL, met),
		PredictionCache: cache.New[[]store.PredictionRecord](cfg.CacheTTL, met),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPBind,
		Handler:           server.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Application{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		server:  httpServer,
		health:  health,
		bus:     bus,
	}, nil
}

// Logger exposes the configured logger for main.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Run blocks until the context is cancelled or the HTTP server terminates
// unexpectedly, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	httpCh := make(chan error, 1)
	go func() {
		a.health.SetReady(true)
		a.logger.Info("http_server_listen", slog.String("address", a.cfg.HTTPBind))
		httpCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-httpCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http_server_error", slog.Any("err", err))
			return err
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("shutdown_signal")
		a.health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server_shutdown_failed", slog.Any("err", err))
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-httpCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		a.logger.Info("shutdown_complete")
		return nil
	}
}

// Close flushes and closes resources owned by the application instance.
func (a *Application) Close() error {
	if err := a.bus.Close(); err != nil {
		a.logger.Error("event_bus_close_failed", slog.Any("err", err))
	}
	if a.logFile == nil {
		return nil
	}
	if err := a.logFile.Close(); err != nil {
		return err
	}
	a.logFile = nil
	return nil
}
