// v0
// internal/forecast/forecaster.go
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/region"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

// ErrInsufficientHistory marks a region without enough history rows to train
// on. The forecast run skips such regions instead of failing.
var ErrInsufficientHistory = errors.New("insufficient history for forecast")

// minHistory is the smallest sequence that yields at least one training pair.
const minHistory = 2

// featureCount covers meeting score, participants score, total score, total
// topics, and transferred topics, in that column order.
const featureCount = 5

// HistorySource lists a collection's accumulated snapshot rows.
type HistorySource interface {
	ListSnapshots(ctx context.Context, collection string) ([]store.SnapshotRecord, error)
}

// PredictionSink reconciles a ranked prediction batch into the store.
type PredictionSink interface {
	UpsertPredictions(ctx context.Context, collection string, recs []store.PredictionRecord) (store.BatchResult, error)
}

// RunObserver receives per-run counters; satisfied by the metrics layer.
type RunObserver interface {
	AddRegionsScored(n int)
	AddRegionsSkipped(n int)
	ObserveRun(kind string, d time.Duration)
}

// Forecaster trains one small recurrent network per region on that region's
// score history and predicts the next period's metrics.
type Forecaster struct {
	catalog *region.Catalog
	source  HistorySource
	sink    PredictionSink
	log     *slog.Logger
	obs     RunObserver
	seed    int64
}

// NewForecaster wires the forecast pipeline. obs may be nil. seed fixes the
// network initialization; pass 0 for the default.
func NewForecaster(catalog *region.Catalog, source HistorySource, sink PredictionSink, log *slog.Logger, obs RunObserver, seed int64) *Forecaster {
	if seed == 0 {
		seed = 1
	}
	return &Forecaster{
		catalog: catalog,
		source:  source,
		sink:    sink,
		log:     log,
		obs:     obs,
		seed:    seed,
	}
}

// Run reads the full history collection, groups it per region, trains, and
// reconciles ranked predictions into the predictions collection. A failed
// history read is fatal for the whole run; per-region training problems are
// captured in the summary.
func (f *Forecaster) Run(ctx context.Context) ([]domain.RegionPrediction, domain.RunSummary, error) {
	start := time.Now()
	summary := domain.RunSummary{RunID: uuid.NewString()}
	log := f.log.With(slog.String("run_id", summary.RunID))
	log.Info("forecast_run_started")

	history, err := f.source.ListSnapshots(ctx, store.CollectionHistory)
	if err != nil {
		log.Error("history_read_failed", slog.Any("err", err))
		return nil, summary, fmt.Errorf("read history: %w", err)
	}

	grouped := groupByRegion(history)
	preds := make([]domain.RegionPrediction, 0, f.catalog.Len())
	for _, entry := range f.catalog.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}
		rows := grouped[entry.ID]
		pred, err := f.forecastRegion(entry, rows)
		if err != nil {
			if errors.Is(err, ErrInsufficientHistory) {
				log.Info("region_skipped_short_history",
					slog.Int("region_id", entry.ID),
					slog.Int("points", len(rows)),
				)
				summary.Skipped++
				continue
			}
			log.Error("region_forecast_failed",
				slog.Int("region_id", entry.ID),
				slog.Any("err", err),
			)
			summary.AddError(entry.Name, err)
			continue
		}
		preds = append(preds, pred)
		summary.Succeeded++
	}

	domain.RankPredictions(preds)

	if len(preds) > 0 {
		batch := PredictionRecords(preds, summary.RunID)
		res, err := f.sink.UpsertPredictions(ctx, store.CollectionPredictions, batch)
		if err != nil {
			log.Error("prediction_batch_failed", slog.Any("err", err))
			summary.AddError(store.CollectionPredictions, err)
		} else {
			summary.Errors = append(summary.Errors, res.Errors...)
		}
	}

	if f.obs != nil {
		f.obs.AddRegionsScored(summary.Succeeded)
		f.obs.AddRegionsSkipped(summary.Skipped)
		f.obs.ObserveRun("forecast", time.Since(start))
	}
	log.Info("forecast_run_complete",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errors", len(summary.Errors)),
		slog.String("duration", time.Since(start).String()),
	)
	return preds, summary, nil
}

// forecastRegion trains on one region's chronological history and returns the
// next-period prediction in natural units.
func (f *Forecaster) forecastRegion(entry region.Entry, rows []store.SnapshotRecord) (domain.RegionPrediction, error) {
	if len(rows) < minHistory {
		return domain.RegionPrediction{}, ErrInsufficientHistory
	}

	features := make([][]float64, len(rows))
	for i, r := range rows {
		features[i] = []float64{
			r.MeetingScore,
			r.ParticipantsScore,
			r.TotalScore,
			float64(r.TotalTopics),
			float64(r.TransferredTopics),
		}
	}

	scaler := fitScaler(features)
	scaled := scaler.transform(features)

	cfg := defaultModelConfig(featureCount)
	cfg.Seed = f.seed + int64(entry.ID)
	model := newRecurrentModel(cfg)
	model.fit(scaled)
	next := scaler.inverse(model.predictNext(scaled))

	return domain.RegionPrediction{
		RegionID:          entry.ID,
		RegionName:        entry.Name,
		MeetingScore:      round4(next[0]),
		ParticipantsScore: round4(next[1]),
		TotalScore:        round4(next[2]),
		TotalTopics:       int(next[3]),
		TransferredTopics: int(next[4]),
	}, nil
}

// groupByRegion buckets history rows per region in chronological order.
// Rows whose month label does not parse sort before parseable ones and a
// stable sort keeps their relative store order.
func groupByRegion(rows []store.SnapshotRecord) map[int][]store.SnapshotRecord {
	grouped := make(map[int][]store.SnapshotRecord)
	for _, r := range rows {
		grouped[r.RegionID] = append(grouped[r.RegionID], r)
	}
	for id, rs := range grouped {
		sort.SliceStable(rs, func(i, j int) bool {
			pi, errI := domain.ParsePeriodLabel(rs[i].Month)
			pj, errJ := domain.ParsePeriodLabel(rs[j].Month)
			if errI != nil || errJ != nil {
				return errI != nil && errJ == nil
			}
			return pi.Before(pj)
		})
		grouped[id] = rs
	}
	return grouped
}

// PredictionRecords converts ranked predictions to their wire shape.
func PredictionRecords(preds []domain.RegionPrediction, runID string) []store.PredictionRecord {
	out := make([]store.PredictionRecord, 0, len(preds))
	for _, p := range preds {
		out = append(out, store.PredictionRecord{
			Region:            p.RegionName,
			RegionID:          p.RegionID,
			MeetingScore:      p.MeetingScore,
			ParticipantsScore: p.ParticipantsScore,
			TotalScore:        p.TotalScore,
			TotalTopics:       p.TotalTopics,
			TransferredTopics: p.TransferredTopics,
			Rank:              p.Rank,
			RunID:             runID,
		})
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
