// v0
// internal/nlp/reranker.go
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Salmankotakuth/ai-tanmiya/internal/breaker"
)

// RankResult is one relevance sub-score returned by the model.
type RankResult struct {
	Score float64 `json:"score"`
}

// Reranker calls the external text-similarity model: query plus document in,
// top-K relevance scores out.
type Reranker struct {
	url     string
	log     *slog.Logger
	h       *breaker.HTTPClient
	timeout time.Duration
}

// NewReranker wires the relevance model client.
func NewReranker(url string, log *slog.Logger, h *breaker.HTTPClient) *Reranker {
	return &Reranker{url: url, log: log, h: h, timeout: 30 * time.Second}
}

type rankRequest struct {
	Query    string `json:"query"`
	Document string `json:"document"`
	TopK     int    `json:"top_k"`
}

type rankResponse struct {
	Results []RankResult `json:"results"`
}

// Rank scores how well document matches query, returning at most topK
// sub-results. An empty result list is a valid outcome, not an error.
func (r *Reranker) Rank(ctx context.Context, query, document string, topK int) ([]RankResult, error) {
	if topK <= 0 {
		topK = 4
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(rankRequest{Query: query, Document: document, TopK: topK})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rank: http %d: %s", resp.StatusCode, string(b))
	}

	var out rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("rank: decode: %w", err)
	}
	return out.Results, nil
}
