// v0
// internal/score/run.go
package score

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/region"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

// Aggregation weights for the overall regional score. They sum to 1.0 and
// are a deployment constant.
const (
	participantWeight = 0.4
	meetingWeight     = 0.4
	topicWeight       = 0.2
)

// MeetingSource delivers a region's raw records for one period.
type MeetingSource interface {
	FetchRegion(ctx context.Context, period domain.Period, regionID int) ([]domain.PeriodRecord, error)
}

// Upserter is the slice of the reconciliation engine the runner uses.
type Upserter interface {
	UpsertSnapshots(ctx context.Context, collection string, recs []store.SnapshotRecord) (store.BatchResult, error)
	AppendHistory(ctx context.Context, collection string, recs []store.SnapshotRecord) store.BatchResult
}

// RunObserver receives per-run counters; satisfied by the metrics layer.
type RunObserver interface {
	AddRegionsScored(n int)
	AddRegionsSkipped(n int)
	ObserveRun(kind string, d time.Duration)
}

// Runner drives one scoring run: fetch raw data per region, score, rank, and
// reconcile the results into the snapshot and history collections. Regions
// are processed sequentially; total latency is additive across their network
// round trips.
type Runner struct {
	catalog *region.Catalog
	source  MeetingSource
	minutes *MinutesScorer
	engine  Upserter
	log     *slog.Logger
	obs     RunObserver
}

// NewRunner wires the scoring pipeline. obs may be nil.
func NewRunner(catalog *region.Catalog, source MeetingSource, minutes *MinutesScorer, engine Upserter, log *slog.Logger, obs RunObserver) *Runner {
	return &Runner{
		catalog: catalog,
		source:  source,
		minutes: minutes,
		engine:  engine,
		log:     log,
		obs:     obs,
	}
}

// Run executes the scoring pipeline for one period. The returned slice is
// ranked; the summary captures skipped regions and per-region failures. A
// region with no usable raw records is skipped entirely, not assigned a zero
// row.
func (r *Runner) Run(ctx context.Context, period domain.Period) ([]domain.RegionScore, domain.RunSummary, error) {
	start := time.Now()
	summary := domain.RunSummary{RunID: uuid.NewString()}
	log := r.log.With(slog.String("run_id", summary.RunID), slog.String("period", period.Label()))
	log.Info("score_run_started", slog.Int("regions", r.catalog.Len()))

	scores := make([]domain.RegionScore, 0, r.catalog.Len())
	for _, entry := range r.catalog.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		records, err := r.source.FetchRegion(ctx, period, entry.ID)
		if err != nil {
			log.Error("region_fetch_failed",
				slog.Int("region_id", entry.ID),
				slog.Any("err", err),
			)
			summary.AddError(entry.Name, err)
			continue
		}
		if len(records) == 0 {
			log.Info("region_skipped_no_data", slog.Int("region_id", entry.ID))
			summary.Skipped++
			continue
		}

		scores = append(scores, r.scoreRegion(ctx, entry, period, records))
		summary.Succeeded++
	}

	domain.RankScores(scores)

	r.reconcile(ctx, scores, &summary, log)

	if r.obs != nil {
		r.obs.AddRegionsScored(summary.Succeeded)
		r.obs.AddRegionsSkipped(summary.Skipped)
		r.obs.ObserveRun("score", time.Since(start))
	}
	log.Info("score_run_complete",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errors", len(summary.Errors)),
		slog.String("duration", time.Since(start).String()),
	)
	return scores, summary, nil
}

// scoreRegion aggregates one region's raw records into a single RegionScore.
// Topic counts sum across records; participant and meeting scores average
// across records, with per-record meeting scores averaging their items.
func (r *Runner) scoreRegion(ctx context.Context, entry region.Entry, period domain.Period, records []domain.PeriodRecord) domain.RegionScore {
	var totalTopics, transferredTopics int
	var participantSum, meetingSum float64
	for _, rec := range records {
		totalTopics += rec.TotalTopics
		transferredTopics += rec.TransferredTopics
		participantSum += ParticipantsScore(rec.Participants)
		meetingSum += r.minutes.ScoreMeetings(ctx, rec.Meetings)
	}

	n := float64(len(records))
	participantsScore := participantSum / n
	meetingScore := meetingSum / n
	topicScore := TopicCompletionScore(totalTopics, transferredTopics)
	overall := participantsScore*participantWeight + meetingScore*meetingWeight + topicScore*topicWeight

	return domain.RegionScore{
		RegionID:          entry.ID,
		RegionName:        entry.Name,
		Period:            period,
		MeetingScore:      round4(meetingScore),
		ParticipantsScore: round4(participantsScore),
		TotalScore:        round4(overall),
		TotalTopics:       totalTopics,
		TransferredTopics: transferredTopics,
	}
}

// reconcile pushes the ranked batch into the snapshot and history
// collections. A failed full fetch is fatal for that collection's batch and
// recorded against the run; individual record failures are already captured
// inside the batch results.
func (r *Runner) reconcile(ctx context.Context, scores []domain.RegionScore, summary *domain.RunSummary, log *slog.Logger) {
	if len(scores) == 0 {
		return
	}
	batch := SnapshotRecords(scores, summary.RunID)

	snapRes, err := r.engine.UpsertSnapshots(ctx, store.CollectionSnapshot, batch)
	if err != nil {
		log.Error("snapshot_batch_failed", slog.Any("err", err))
		summary.AddError(store.CollectionSnapshot, err)
	} else {
		summary.Errors = append(summary.Errors, snapRes.Errors...)
	}

	histRes := r.engine.AppendHistory(ctx, store.CollectionHistory, batch)
	summary.Errors = append(summary.Errors, histRes.Errors...)
}

// SnapshotRecords converts ranked scores to their wire shape.
func SnapshotRecords(scores []domain.RegionScore, runID string) []store.SnapshotRecord {
	out := make([]store.SnapshotRecord, 0, len(scores))
	for _, s := range scores {
		out = append(out, store.SnapshotRecord{
			Region:            s.RegionName,
			RegionID:          s.RegionID,
			Month:             s.Period.Label(),
			MeetingScore:      s.MeetingScore,
			ParticipantsScore: s.ParticipantsScore,
			TotalScore:        s.TotalScore,
			TotalTopics:       s.TotalTopics,
			TransferredTopics: s.TransferredTopics,
			Rank:              s.Rank,
			RunID:             runID,
		})
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
