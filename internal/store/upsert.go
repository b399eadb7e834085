// v0
// internal/store/upsert.go
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
)

// Engine reconciles computed batches into the remote collections. The store
// has no native upsert, no transactions, and no uniqueness constraints, so
// the engine enforces "at most one live record per region" itself via
// fetch-all, match-by-region, patch-or-create. The read-then-write sequence
// is vulnerable to a concurrent writer between the read and the write; that
// is accepted because expected write concurrency is one run at a time.
type Engine struct {
	c   *Client
	log *slog.Logger
}

// NewEngine builds the reconciliation engine.
func NewEngine(c *Client, log *slog.Logger) *Engine {
	return &Engine{c: c, log: log}
}

// BatchResult summarizes one collection batch. Per-record failures are
// captured rather than aborting the remaining records.
type BatchResult struct {
	Created int
	Updated int
	Errors  []domain.RegionError
}

func (r *BatchResult) addError(region string, err error) {
	r.Errors = append(r.Errors, domain.RegionError{Region: region, Err: err.Error()})
}

// UpsertSnapshots merges a batch into a snapshot-semantics collection: an
// existing record with a matching region id is patched by its remote id,
// otherwise the record is created. The full-collection fetch preceding the
// decision is fatal for the batch when it fails, since create-vs-update
// cannot be chosen safely without it.
func (e *Engine) UpsertSnapshots(ctx context.Context, collection string, recs []SnapshotRecord) (BatchResult, error) {
	var res BatchResult

	existing, err := e.c.ListSnapshots(ctx, collection)
	if err != nil {
		return res, fmt.Errorf("upsert %s: fetch existing: %w", collection, err)
	}

	byRegion := make(map[int]RemoteID, len(existing))
	for _, rec := range existing {
		if _, seen := byRegion[rec.RegionID]; !seen {
			byRegion[rec.RegionID] = rec.ID
		}
	}

	for _, rec := range recs {
		rec.ID = ""
		remoteID, found := byRegion[rec.RegionID]
		if found && remoteID != "" {
			if err := e.c.Update(ctx, collection, remoteID, rec); err != nil {
				e.log.Error("snapshot_update_failed",
					slog.String("collection", collection),
					slog.Int("region_id", rec.RegionID),
					slog.Any("err", err),
				)
				res.addError(rec.Region, err)
				continue
			}
			res.Updated++
			continue
		}
		if err := e.c.Create(ctx, collection, rec); err != nil {
			e.log.Error("snapshot_create_failed",
				slog.String("collection", collection),
				slog.Int("region_id", rec.RegionID),
				slog.Any("err", err),
			)
			res.addError(rec.Region, err)
			continue
		}
		res.Created++
	}

	e.log.Info("snapshot_batch_reconciled",
		slog.String("collection", collection),
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated),
		slog.Int("failed", len(res.Errors)),
	)
	return res, nil
}

// AppendHistory always creates, never updates: the history collection is
// append-only by design. Re-running the same batch therefore duplicates
// history rows; each record carries the run id so duplicates stay
// attributable.
func (e *Engine) AppendHistory(ctx context.Context, collection string, recs []SnapshotRecord) BatchResult {
	var res BatchResult
	for _, rec := range recs {
		rec.ID = ""
		if err := e.c.Create(ctx, collection, rec); err != nil {
			e.log.Error("history_append_failed",
				slog.String("collection", collection),
				slog.Int("region_id", rec.RegionID),
				slog.Any("err", err),
			)
			res.addError(rec.Region, err)
			continue
		}
		res.Created++
	}
	e.log.Info("history_batch_appended",
		slog.String("collection", collection),
		slog.Int("created", res.Created),
		slog.Int("failed", len(res.Errors)),
	)
	return res
}

// UpsertPredictions applies snapshot semantics to the predictions collection.
func (e *Engine) UpsertPredictions(ctx context.Context, collection string, recs []PredictionRecord) (BatchResult, error) {
	var res BatchResult

	existing, err := e.c.ListPredictions(ctx, collection)
	if err != nil {
		return res, fmt.Errorf("upsert %s: fetch existing: %w", collection, err)
	}

	byRegion := make(map[int]RemoteID, len(existing))
	for _, rec := range existing {
		if _, seen := byRegion[rec.RegionID]; !seen {
			byRegion[rec.RegionID] = rec.ID
		}
	}

	for _, rec := range recs {
		rec.ID = ""
		remoteID, found := byRegion[rec.RegionID]
		if found && remoteID != "" {
			if err := e.c.Update(ctx, collection, remoteID, rec); err != nil {
				e.log.Error("prediction_update_failed",
					slog.Int("region_id", rec.RegionID),
					slog.Any("err", err),
				)
				res.addError(rec.Region, err)
				continue
			}
			res.Updated++
			continue
		}
		if err := e.c.Create(ctx, collection, rec); err != nil {
			e.log.Error("prediction_create_failed",
				slog.Int("region_id", rec.RegionID),
				slog.Any("err", err),
			)
			res.addError(rec.Region, err)
			continue
		}
		res.Created++
	}

	e.log.Info("prediction_batch_reconciled",
		slog.String("collection", collection),
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated),
		slog.Int("failed", len(res.Errors)),
	)
	return res, nil
}
