// v0
// internal/score/minutes_test.go
package score

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/nlp"
)

type fakeTranslator struct {
	calls int
	fail  bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("translator down")
	}
	return text, nil
}

type fakeRanker struct {
	calls  int
	fail   bool
	scores []float64
}

func (f *fakeRanker) Rank(_ context.Context, _, _ string, topK int) ([]nlp.RankResult, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("model down")
	}
	out := make([]nlp.RankResult, 0, len(f.scores))
	for i, s := range f.scores {
		if i >= topK {
			break
		}
		out = append(out, nlp.RankResult{Score: s})
	}
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMinutesScorerEmptyInputsNoRemoteCalls(t *testing.T) {
	tr := &fakeTranslator{}
	rk := &fakeRanker{scores: []float64{0.9}}
	m := NewMinutesScorer(tr, rk, 4, quietLogger())

	if got := m.ScoreItem(context.Background(), "", []string{"something"}); got != 0.0 {
		t.Fatalf("empty topic should score 0.0, got %v", got)
	}
	if got := m.ScoreItem(context.Background(), "topic", nil); got != 0.0 {
		t.Fatalf("empty discussion should score 0.0, got %v", got)
	}
	if got := m.ScoreItem(context.Background(), "topic", []string{"  "}); got != 0.0 {
		t.Fatalf("blank discussion should score 0.0, got %v", got)
	}
	if tr.calls != 0 || rk.calls != 0 {
		t.Fatalf("expected no remote calls, got translate=%d rank=%d", tr.calls, rk.calls)
	}
}

func TestMinutesScorerAveragesSubResults(t *testing.T) {
	m := NewMinutesScorer(&fakeTranslator{}, &fakeRanker{scores: []float64{0.8, 0.6, 0.4}}, 4, quietLogger())
	got := m.ScoreItem(context.Background(), "roads", []string{"road maintenance discussed"})
	want := (0.8 + 0.6 + 0.4) / 3
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMinutesScorerTranslationFailureDegrades(t *testing.T) {
	rk := &fakeRanker{scores: []float64{0.9}}
	m := NewMinutesScorer(&fakeTranslator{fail: true}, rk, 4, quietLogger())
	if got := m.ScoreItem(context.Background(), "roads", []string{"text"}); got != 0.0 {
		t.Fatalf("expected degraded 0.0, got %v", got)
	}
	if rk.calls != 0 {
		t.Fatal("ranker should not be called after translation failure")
	}
}

func TestMinutesScorerModelFailureDegrades(t *testing.T) {
	m := NewMinutesScorer(&fakeTranslator{}, &fakeRanker{fail: true}, 4, quietLogger())
	if got := m.ScoreItem(context.Background(), "roads", []string{"text"}); got != 0.0 {
		t.Fatalf("expected degraded 0.0, got %v", got)
	}
}

func TestMinutesScorerNoResultsScoresZero(t *testing.T) {
	m := NewMinutesScorer(&fakeTranslator{}, &fakeRanker{}, 4, quietLogger())
	if got := m.ScoreItem(context.Background(), "roads", []string{"text"}); got != 0.0 {
		t.Fatalf("expected 0.0 on empty model output, got %v", got)
	}
}

func TestMinutesScorerMeetingsAverage(t *testing.T) {
	m := NewMinutesScorer(&fakeTranslator{}, &fakeRanker{scores: []float64{0.6}}, 4, quietLogger())
	items := []domain.MeetingItem{
		{Topic: "roads", Discussion: []string{"road work"}},
		{Topic: "", Discussion: []string{"ignored"}}, // degrades to 0.0
	}
	got := m.ScoreMeetings(context.Background(), items)
	if got < 0.2999 || got > 0.3001 {
		t.Fatalf("expected 0.3 average, got %v", got)
	}

	if got := m.ScoreMeetings(context.Background(), nil); got != 0.0 {
		t.Fatalf("no meeting items should contribute 0.0, got %v", got)
	}
}
