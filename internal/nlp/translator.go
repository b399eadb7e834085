// v0
// internal/nlp/translator.go
package nlp

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

// Translator calls the external translation endpoint. Empty input maps to
// empty output without a remote call.
type Translator struct {
	url     string
	source  string
	log     *slog.Logger
	h       *breaker.HTTPClient
	timeout time.Duration
}

// NewTranslator wires the translation client. sourceLang defaults to "ar".
func NewTranslator(url, sourceLang string, log *slog.Logger, h *breaker.HTTPClient) *Translator {
	if strings.TrimSpace(sourceLang) == "" {
		sourceLang = "ar"
	}
	return &Translator{
		url:     url,
		source:  sourceLang,
		log:     log,
		h:       h,
		timeout: 30 * time.Second,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate converts text to the target language. Callers treat failures as
// recoverable per-item conditions; this method only reports them.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	payload, err := json.Marshal(translateRequest{
		Q:      text,
		Source: t.source,
		Target: targetLang,
		Format: "text",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.h.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translate: http %d: %s", resp.StatusCode, string(b))
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translate: decode: %w", err)
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		// Some deployments echo the input when no translation applies.
		return text, nil
	}
	return out.TranslatedText, nil
}
