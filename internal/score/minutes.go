// v0
// internal/score/minutes.go
package score

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/nlp"
)

// Translator is the slice of the translation client the minutes scorer needs.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Ranker is the slice of the relevance model client the minutes scorer needs.
type Ranker interface {
	Rank(ctx context.Context, query, document string, topK int) ([]nlp.RankResult, error)
}

// Working language and the number of top-ranked sub-results requested from
// the relevance model.
const (
	workingLanguage = "en"
	defaultTopK     = 4
)

// MinutesScorer scores how well the recorded discussion of a meeting item
// matches its stated topic. Collaborator failures degrade the affected item
// to a 0.0 contribution and never abort the scoring run.
type MinutesScorer struct {
	translator Translator
	ranker     Ranker
	topK       int
	log        *slog.Logger
}

// NewMinutesScorer wires the scorer. topK values <= 0 fall back to the
// default of 4.
func NewMinutesScorer(translator Translator, ranker Ranker, topK int, log *slog.Logger) *MinutesScorer {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &MinutesScorer{translator: translator, ranker: ranker, topK: topK, log: log}
}

// ScoreItem computes the relevance score for one meeting item. Empty topic or
// discussion returns 0.0 immediately without any remote call.
func (m *MinutesScorer) ScoreItem(ctx context.Context, topic string, discussions []string) float64 {
	topic = strings.TrimSpace(topic)
	joined := strings.TrimSpace(strings.Join(discussions, " "))
	if topic == "" || joined == "" {
		return 0.0
	}

	translatedTopic, err := m.translator.Translate(ctx, topic, workingLanguage)
	if err != nil {
		m.log.Warn("minutes_translate_failed",
			slog.String("what", "topic"),
			slog.Any("err", err),
		)
		return 0.0
	}
	translatedDiscussion, err := m.translator.Translate(ctx, joined, workingLanguage)
	if err != nil {
		m.log.Warn("minutes_translate_failed",
			slog.String("what", "discussion"),
			slog.Any("err", err),
		)
		return 0.0
	}

	results, err := m.ranker.Rank(ctx, translatedTopic, translatedDiscussion, m.topK)
	if err != nil {
		m.log.Warn("minutes_rank_failed", slog.Any("err", err))
		return 0.0
	}
	if len(results) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

// ScoreMeetings averages the per-item scores of one period record. A record
// with zero meeting items contributes 0.0.
func (m *MinutesScorer) ScoreMeetings(ctx context.Context, items []domain.MeetingItem) float64 {
	if len(items) == 0 {
		return 0.0
	}
	var sum float64
	for _, it := range items {
		sum += m.ScoreItem(ctx, it.Topic, it.Discussion)
	}
	return sum / float64(len(items))
}
