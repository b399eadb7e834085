// v0
// internal/store/client.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Salmankotakuth/ai-tanmiya/internal/breaker"
)

// Collection names used by the engine. The per-region raw meeting
// collections are named by region key and resolved through the catalog.
const (
	CollectionSnapshot    = "Leaderboard"
	CollectionHistory     = "Leaderboard_all"
	CollectionPredictions = "Leaderboard_predict"
	CollectionReports     = "report"
)

// RequestObserver receives latency/outcome for every store call so metrics
// stay decoupled from the client.
type RequestObserver interface {
	StoreRequest(d time.Duration, success bool)
}

// Client talks to the generic collection store: list full collection, create
// record, patch record by remote id. No filtered queries are pushed down; the
// reconciliation engine filters client-side, isolated behind this type so a
// server-side filter could replace it without touching callers.
type Client struct {
	base  string
	token string
	log   *slog.Logger
	h     *breaker.HTTPClient
	obs   RequestObserver
}

// NewClient wires the store client. obs may be nil.
func NewClient(baseURL, token string, log *slog.Logger, h *breaker.HTTPClient, obs RequestObserver) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		log:   log,
		h:     h,
		obs:   obs,
	}
}

type envelope struct {
	Data []json.RawMessage `json:"data"`
}

// List fetches the full contents of a collection as raw records.
func (c *Client) List(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = 500
	}
	endpoint := fmt.Sprintf("%s/items/%s?limit=%d", c.base, collection, limit)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("store list %s: decode envelope: %w", collection, err)
	}
	return env.Data, nil
}

// ListSnapshots fetches and parse-validates a snapshot-shaped collection.
// A single malformed record fails the whole read with a typed error.
func (c *Client) ListSnapshots(ctx context.Context, collection string) ([]SnapshotRecord, error) {
	raws, err := c.List(ctx, collection, 0)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := parseSnapshot(raw)
		if err != nil {
			return nil, fmt.Errorf("store list %s: record %d: %w", collection, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListPredictions fetches and parse-validates the predictions collection.
func (c *Client) ListPredictions(ctx context.Context, collection string) ([]PredictionRecord, error) {
	raws, err := c.List(ctx, collection, 0)
	if err != nil {
		return nil, err
	}
	out := make([]PredictionRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := parsePrediction(raw)
		if err != nil {
			return nil, fmt.Errorf("store list %s: record %d: %w", collection, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Create inserts a new record into a collection.
func (c *Client) Create(ctx context.Context, collection string, payload any) error {
	endpoint := fmt.Sprintf("%s/items/%s", c.base, collection)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("store create %s: encode: %w", collection, err)
	}
	if _, err := c.do(ctx, http.MethodPost, endpoint, body); err != nil {
		return fmt.Errorf("store create %s: %w", collection, err)
	}
	return nil
}

// Update patches an existing record addressed by its remote identifier.
func (c *Client) Update(ctx context.Context, collection string, id RemoteID, partial any) error {
	if id == "" {
		return fmt.Errorf("store update %s: empty remote id", collection)
	}
	endpoint := fmt.Sprintf("%s/items/%s/%s", c.base, collection, string(id))
	body, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("store update %s: encode: %w", collection, err)
	}
	if _, err := c.do(ctx, http.MethodPatch, endpoint, body); err != nil {
		return fmt.Errorf("store update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.h.Do(req)
	if err != nil {
		c.observe(start, false)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(start, false)
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	out, err := io.ReadAll(resp.Body)
	c.observe(start, err == nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) observe(start time.Time, success bool) {
	if c.obs != nil {
		c.obs.StoreRequest(time.Since(start), success)
	}
}
