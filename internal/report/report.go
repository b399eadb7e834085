// v0
// internal/report/report.go
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

// Generator is the slice of the text generation client the writer uses.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SnapshotSource lists the current snapshot collection.
type SnapshotSource interface {
	ListSnapshots(ctx context.Context, collection string) ([]store.SnapshotRecord, error)
}

// Creator posts finished report rows.
type Creator interface {
	Create(ctx context.Context, collection string, payload any) error
}

// RunObserver receives per-run counters; satisfied by the metrics layer.
type RunObserver interface {
	AddRegionsScored(n int)
	AddRegionsSkipped(n int)
	ObserveRun(kind string, d time.Duration)
}

const (
	systemPromptEN = "You write short monthly performance summaries for regional council meetings. Plain factual prose, three to five sentences, no headings."
	systemPromptAR = "You write short monthly performance summaries for regional council meetings, in Modern Standard Arabic. Plain factual prose, three to five sentences, no headings."
)

// Writer produces English and Arabic narrative summaries of the current
// snapshot and posts them to the report collection.
type Writer struct {
	source SnapshotSource
	gen    Generator
	sink   Creator
	log    *slog.Logger
	obs    RunObserver
}

// NewWriter wires the report pipeline. obs may be nil.
func NewWriter(source SnapshotSource, gen Generator, sink Creator, log *slog.Logger, obs RunObserver) *Writer {
	return &Writer{source: source, gen: gen, sink: sink, log: log, obs: obs}
}

// Run reads the current snapshot and writes one report row per region. The
// snapshot read is fatal; generation and post failures are captured per
// region and the run continues.
func (w *Writer) Run(ctx context.Context) (domain.RunSummary, error) {
	start := time.Now()
	summary := domain.RunSummary{RunID: uuid.NewString()}
	log := w.log.With(slog.String("run_id", summary.RunID))
	log.Info("report_run_started")

	rows, err := w.source.ListSnapshots(ctx, store.CollectionSnapshot)
	if err != nil {
		log.Error("snapshot_read_failed", slog.Any("err", err))
		return summary, fmt.Errorf("read snapshot: %w", err)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, err := w.writeRegion(ctx, row, summary.RunID)
		if err != nil {
			log.Error("region_report_failed",
				slog.Int("region_id", row.RegionID),
				slog.Any("err", err),
			)
			summary.AddError(row.Region, err)
			continue
		}
		if err := w.sink.Create(ctx, store.CollectionReports, rec); err != nil {
			log.Error("report_post_failed",
				slog.Int("region_id", row.RegionID),
				slog.Any("err", err),
			)
			summary.AddError(row.Region, fmt.Errorf("post report: %w", err))
			continue
		}
		summary.Succeeded++
	}

	if w.obs != nil {
		w.obs.AddRegionsScored(summary.Succeeded)
		w.obs.ObserveRun("report", time.Since(start))
	}
	log.Info("report_run_complete",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("errors", len(summary.Errors)),
		slog.String("duration", time.Since(start).String()),
	)
	return summary, nil
}

func (w *Writer) writeRegion(ctx context.Context, row store.SnapshotRecord, runID string) (store.ReportRecord, error) {
	prompt := regionPrompt(row)

	english, err := w.gen.Generate(ctx, systemPromptEN, prompt)
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("generate english: %w", err)
	}
	arabic, err := w.gen.Generate(ctx, systemPromptAR, prompt)
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("generate arabic: %w", err)
	}

	return store.ReportRecord{
		Region:   row.Region,
		RegionID: row.RegionID,
		Month:    row.Month,
		Report:   english,
		ReportAr: arabic,
		RunID:    runID,
	}, nil
}

// regionPrompt renders the metric sheet the generator narrates from.
func regionPrompt(row store.SnapshotRecord) string {
	return fmt.Sprintf(
		"Region: %s\nPeriod: %s\nOverall rank: %d\nTotal score: %.4f\nMeeting relevance score: %.4f\nParticipation score: %.4f\nTopics raised: %d\nTopics carried over: %d\n",
		row.Region, row.Month, row.Rank,
		row.TotalScore, row.MeetingScore, row.ParticipantsScore,
		row.TotalTopics, row.TransferredTopics,
	)
}
