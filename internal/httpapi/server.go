// v0
// internal/httpapi/server.go
package httpapi

import (
	"context"
	"net/http"
	"os"
	"sync"

	"log/slog"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Salmankotakuth/ai-tanmiya/internal/cache"
	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/events"
	"github.com/Salmankotakuth/ai-tanmiya/internal/metrics"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

// ScoreRunner runs one scoring pass for a reporting period.
type ScoreRunner interface {
	Run(ctx context.Context, period domain.Period) ([]domain.RegionScore, domain.RunSummary, error)
}

// ForecastRunner trains on history and reconciles next-period predictions.
type ForecastRunner interface {
	Run(ctx context.Context) ([]domain.RegionPrediction, domain.RunSummary, error)
}

// CollectRunner mirrors backend meeting records into the store.
type CollectRunner interface {
	Run(ctx context.Context, period domain.Period) (domain.RunSummary, error)
}

// ReportRunner writes narrative summaries for the current snapshot.
type ReportRunner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// StoreReader lists the snapshot and prediction collections for the
// read-through endpoints.
type StoreReader interface {
	ListSnapshots(ctx context.Context, collection string) ([]store.SnapshotRecord, error)
	ListPredictions(ctx context.Context, collection string) ([]store.PredictionRecord, error)
}

// HealthState tracks readiness. Liveness holds while the process runs;
// readiness toggles around startup and shutdown.
type HealthState struct {
	mu    sync.RWMutex
	ready bool
}

func NewHealthState() *HealthState { return &HealthState{} }

func (h *HealthState) SetReady(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = value
}

func (h *HealthState) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Server binds the pipeline runners and store readers to the HTTP surface.
type Server struct {
	log    *slog.Logger
	health *HealthState
	met    *metrics.Metrics

	scores    ScoreRunner
	forecasts ForecastRunner
	collector CollectRunner
	reports   ReportRunner
	reader    StoreReader
	bus       *events.Publisher

	snapCache *cache.Cache[[]store.SnapshotRecord]
	predCache *cache.Cache[[]store.PredictionRecord]
}

// Deps collects everything the server needs. bus may be nil; met may be nil
// in tests.
type Deps struct {
	Log       *slog.Logger
	Health    *HealthState
	Metrics   *metrics.Metrics
	Scores    ScoreRunner
	Forecasts ForecastRunner
	Collector CollectRunner
	Reports   ReportRunner
	Reader    StoreReader
	Bus       *events.Publisher

	SnapshotCache   *cache.Cache[[]store.SnapshotRecord]
	PredictionCache *cache.Cache[[]store.PredictionRecord]
}

func NewServer(d Deps) *Server {
	return &Server{
		log:       d.Log,
		health:    d.Health,
		met:       d.Metrics,
		scores:    d.Scores,
		forecasts: d.Forecasts,
		collector: d.Collector,
		reports:   d.Reports,
		reader:    d.Reader,
		bus:       d.Bus,
		snapCache: d.SnapshotCache,
		predCache: d.PredictionCache,
	}
}

// NewRouter wires every route with metrics instrumentation, request logging,
// and permissive CORS for the dashboard frontends.
func (s *Server) NewRouter() http.Handler {
	r := mux.NewRouter()

	r.Handle("/scores/run", s.instrument("/scores/run", http.HandlerFunc(s.handleScoreRun))).Methods(http.MethodPost)
	r.Handle("/scores/latest", s.instrument("/scores/latest", http.HandlerFunc(s.handleScoresLatest))).Methods(http.MethodGet)
	r.Handle("/predictions/run", s.instrument("/predictions/run", http.HandlerFunc(s.handlePredictionRun))).Methods(http.MethodPost)
	r.Handle("/predictions", s.instrument("/predictions", http.HandlerFunc(s.handlePredictions))).Methods(http.MethodGet)
	r.Handle("/meetings/collect", s.instrument("/meetings/collect", http.HandlerFunc(s.handleCollect))).Methods(http.MethodPost)
	r.Handle("/reports/run", s.instrument("/reports/run", http.HandlerFunc(s.handleReportRun))).Methods(http.MethodPost)

	r.HandleFunc("/health", s.handleHealthLive).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleHealthLive).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleHealthReady).Methods(http.MethodGet)
	if s.met != nil {
		r.Handle("/metrics", s.met.Handler()).Methods(http.MethodGet)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(r))
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	if s.met == nil {
		return next
	}
	return s.met.WrapHandler(route, next)
}
