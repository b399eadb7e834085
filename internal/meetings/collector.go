// v0
// internal/meetings/collector.go
package meetings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/region"
)

// Creator is the slice of the store client the collector posts through.
type Creator interface {
	Create(ctx context.Context, collection string, payload any) error
}

// RunObserver receives per-run counters; satisfied by the metrics layer.
type RunObserver interface {
	AddRegionsScored(n int)
	AddRegionsSkipped(n int)
	ObserveRun(kind string, d time.Duration)
}

// Collector mirrors raw backend meeting records into the store, one
// collection per region keyed by the region's backend key. Collected rows
// keep their sanitized plain-text form.
type Collector struct {
	catalog *region.Catalog
	client  *Client
	store   Creator
	log     *slog.Logger
	obs     RunObserver
}

// NewCollector wires the collection pipeline. obs may be nil.
func NewCollector(catalog *region.Catalog, client *Client, store Creator, log *slog.Logger, obs RunObserver) *Collector {
	return &Collector{
		catalog: catalog,
		client:  client,
		store:   store,
		log:     log,
		obs:     obs,
	}
}

// collectedRecord is the wire shape of one mirrored row. The month label ties
// the row to its reporting period inside the per-region collection.
type collectedRecord struct {
	Month             string               `json:"month"`
	Date              string               `json:"date,omitempty"`
	Participants      domain.Participants  `json:"participants"`
	Meetings          []domain.MeetingItem `json:"meeting"`
	TotalTopics       int                  `json:"number_of_topic"`
	TransferredTopics int                  `json:"transferred_topic"`
}

// Run fetches every region's records for the period and posts them into that
// region's store collection. Fetch failures and per-row post failures are
// captured in the summary; the run continues past both.
func (c *Collector) Run(ctx context.Context, period domain.Period) (domain.RunSummary, error) {
	start := time.Now()
	summary := domain.RunSummary{RunID: uuid.NewString()}
	log := c.log.With(slog.String("run_id", summary.RunID), slog.String("period", period.Label()))
	log.Info("collect_run_started", slog.Int("regions", c.catalog.Len()))

	for _, entry := range c.catalog.Entries() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		records, err := c.client.FetchRegion(ctx, period, entry.ID)
		if err != nil {
			log.Error("collect_fetch_failed",
				slog.Int("region_id", entry.ID),
				slog.Any("err", err),
			)
			summary.AddError(entry.Name, err)
			continue
		}
		if len(records) == 0 {
			log.Info("collect_region_empty", slog.Int("region_id", entry.ID))
			summary.Skipped++
			continue
		}

		posted := 0
		for _, rec := range records {
			row := collectedRecord{
				Month:             period.Label(),
				Participants:      rec.Participants,
				Meetings:          rec.Meetings,
				TotalTopics:       rec.TotalTopics,
				TransferredTopics: rec.TransferredTopics,
			}
			if !rec.Date.IsZero() {
				row.Date = rec.Date.Format("2006-01-02")
			}
			if err := c.store.Create(ctx, entry.Key, row); err != nil {
				log.Error("collect_post_failed",
					slog.Int("region_id", entry.ID),
					slog.Any("err", err),
				)
				summary.AddError(entry.Name, fmt.Errorf("post record: %w", err))
				continue
			}
			posted++
		}
		if posted > 0 {
			summary.Succeeded++
		}
		log.Info("collect_region_done",
			slog.Int("region_id", entry.ID),
			slog.Int("posted", posted),
			slog.Int("records", len(records)),
		)
	}

	if c.obs != nil {
		c.obs.AddRegionsScored(summary.Succeeded)
		c.obs.AddRegionsSkipped(summary.Skipped)
		c.obs.ObserveRun("collect", time.Since(start))
	}
	log.Info("collect_run_complete",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errors", len(summary.Errors)),
		slog.String("duration", time.Since(start).String()),
	)
	return summary, nil
}
