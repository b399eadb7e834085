// v0
// internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

const (
	snapshotCacheKey   = "scores/latest"
	predictionCacheKey = "predictions"
)

type runResponse struct {
	Summary domain.RunSummary `json:"summary"`
	Scores  any               `json:"scores,omitempty"`
}

// periodFromQuery resolves month/year query parameters, defaulting to the
// current UTC month when both are absent.
func periodFromQuery(r *http.Request) (domain.Period, error) {
	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if monthStr == "" && yearStr == "" {
		now := time.Now().UTC()
		return domain.NewPeriod(int(now.Month()), now.Year())
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return domain.Period{}, domain.ErrBadPeriod
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return domain.Period{}, domain.ErrBadPeriod
	}
	return domain.NewPeriod(month, year)
}

func (s *Server) handleScoreRun(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	scores, summary, err := s.scores.Run(r.Context(), period)
	if err != nil {
		s.log.Error("score_run_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.snapCache.Invalidate(snapshotCacheKey)
	s.bus.PublishRun(r.Context(), "score", period.Label(), summary)
	writeJSON(w, http.StatusOK, runResponse{Summary: summary, Scores: scores})
}

func (s *Server) handleScoresLatest(w http.ResponseWriter, r *http.Request) {
	if rows, ok := s.snapCache.Get(snapshotCacheKey); ok {
		writeJSON(w, http.StatusOK, map[string]any{"data": rows})
		return
	}
	rows, err := s.reader.ListSnapshots(r.Context(), store.CollectionSnapshot)
	if err != nil {
		s.log.Error("snapshot_read_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.snapCache.Set(snapshotCacheKey, rows)
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handlePredictionRun(w http.ResponseWriter, r *http.Request) {
	preds, summary, err := s.forecasts.Run(r.Context())
	if err != nil {
		s.log.Error("forecast_run_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.predCache.Invalidate(predictionCacheKey)
	s.bus.PublishRun(r.Context(), "forecast", "", summary)
	writeJSON(w, http.StatusOK, runResponse{Summary: summary, Scores: preds})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if rows, ok := s.predCache.Get(predictionCacheKey); ok {
		writeJSON(w, http.StatusOK, map[string]any{"data": rows})
		return
	}
	rows, err := s.reader.ListPredictions(r.Context(), store.CollectionPredictions)
	if err != nil {
		s.log.Error("prediction_read_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.predCache.Set(predictionCacheKey, rows)
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.collector.Run(r.Context(), period)
	if err != nil {
		s.log.Error("collect_run_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.bus.PublishRun(r.Context(), "collect", period.Label(), summary)
	writeJSON(w, http.StatusOK, runResponse{Summary: summary})
}

func (s *Server) handleReportRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Run(r.Context())
	if err != nil {
		s.log.Error("report_run_failed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.bus.PublishRun(r.Context(), "report", "", summary)
	writeJSON(w, http.StatusOK, runResponse{Summary: summary})
}

func (s *Server) handleHealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, _ *http.Request) {
	if !s.health.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
