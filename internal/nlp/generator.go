// v0
// internal/nlp/generator.go
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

// Generator calls the external text-generation endpoint used for narrative
// reports.
type Generator struct {
	url     string
	log     *slog.Logger
	h       *breaker.HTTPClient
	timeout time.Duration
}

// NewGenerator wires the generation client. Report prompts can take a while,
// so the ceiling is higher than the other collaborators'.
func NewGenerator(url string, log *slog.Logger, h *breaker.HTTPClient) *Generator {
	return &Generator{url: url, log: log, h: h, timeout: 120 * time.Second}
}

type generateRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate produces text from a system/user prompt pair.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.h.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generate: http %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("generate: decode: %w", err)
	}
	return out.Text, nil
}
