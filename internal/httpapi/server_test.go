// v0
// internal/httpapi/server_test.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Salmankotakuth/ai-tanmiya/internal/cache"
	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

type fakeScores struct {
	period domain.Period
	err    error
}

func (f *fakeScores) Run(_ context.Context, period domain.Period) ([]domain.RegionScore, domain.RunSummary, error) {
	f.period = period
	if f.err != nil {
		return nil, domain.RunSummary{}, f.err
	}
	return []domain.RegionScore{{RegionID: 1, RegionName: "Muscat", TotalScore: 0.66, Rank: 1}},
		domain.RunSummary{RunID: "run-1", Succeeded: 1}, nil
}

type fakeForecasts struct{ err error }

func (f *fakeForecasts) Run(_ context.Context) ([]domain.RegionPrediction, domain.RunSummary, error) {
	if f.err != nil {
		return nil, domain.RunSummary{}, f.err
	}
	return []domain.RegionPrediction{{RegionID: 1, TotalScore: 0.7, Rank: 1}},
		domain.RunSummary{RunID: "run-2", Succeeded: 1}, nil
}

type fakeCollector struct{ calls int }

func (f *fakeCollector) Run(_ context.Context, _ domain.Period) (domain.RunSummary, error) {
	f.calls++
	return domain.RunSummary{RunID: "run-3", Succeeded: 11}, nil
}

type fakeReports struct{}

func (f *fakeReports) Run(_ context.Context) (domain.RunSummary, error) {
	return domain.RunSummary{RunID: "run-4", Succeeded: 11}, nil
}

type fakeReader struct {
	snapCalls int
	predCalls int
	err       error
}

func (f *fakeReader) ListSnapshots(_ context.Context, _ string) ([]store.SnapshotRecord, error) {
	f.snapCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []store.SnapshotRecord{{RegionID: 1, Region: "Muscat", Month: "5/2026"}}, nil
}

func (f *fakeReader) ListPredictions(_ context.Context, _ string) ([]store.PredictionRecord, error) {
	f.predCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []store.PredictionRecord{{RegionID: 1, Region: "Muscat"}}, nil
}

type testEnv struct {
	srv       *httptest.Server
	scores    *fakeScores
	collector *fakeCollector
	reader    *fakeReader
	health    *HealthState
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		scores:    &fakeScores{},
		collector: &fakeCollector{},
		reader:    &fakeReader{},
		health:    NewHealthState(),
	}
	s := NewServer(Deps{
		Log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Health:          env.health,
		Scores:          env.scores,
		Forecasts:       &fakeForecasts{},
		Collector:       env.collector,
		Reports:         &fakeReports{},
		Reader:          env.reader,
		SnapshotCache:   cache.New[[]store.SnapshotRecord](time.Minute, nil),
		PredictionCache: cache.New[[]store.PredictionRecord](time.Minute, nil),
	})
	env.srv = httptest.NewServer(s.NewRouter())
	t.Cleanup(env.srv.Close)
	return env
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestScoreRunEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/scores/run?month=5&year=2026", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Summary domain.RunSummary `json:"summary"`
	}
	decodeBody(t, resp, &body)
	if body.Summary.RunID != "run-1" {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
	if env.scores.period.Month != 5 || env.scores.period.Year != 2026 {
		t.Fatalf("period not parsed: %+v", env.scores.period)
	}
}

func TestScoreRunBadPeriodRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/scores/run?month=13&year=2026", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for month 13, got %d", resp.StatusCode)
	}
}

func TestScoreRunUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.scores.err = errors.New("backend down")
	resp, err := http.Post(env.srv.URL+"/scores/run?month=5&year=2026", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestLatestScoresServedThroughCache(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(env.srv.URL + "/scores/latest")
		if err != nil {
			t.Fatal(err)
		}
		var body struct {
			Data []store.SnapshotRecord `json:"data"`
		}
		decodeBody(t, resp, &body)
		if len(body.Data) != 1 || body.Data[0].Region != "Muscat" {
			t.Fatalf("unexpected payload: %+v", body.Data)
		}
	}
	if env.reader.snapCalls != 1 {
		t.Fatalf("expected single store read behind cache, got %d", env.reader.snapCalls)
	}
}

func TestScoreRunInvalidatesLatestCache(t *testing.T) {
	env := newTestEnv(t)
	if _, err := http.Get(env.srv.URL + "/scores/latest"); err != nil {
		t.Fatal(err)
	}
	if _, err := http.Post(env.srv.URL+"/scores/run?month=5&year=2026", "application/json", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := http.Get(env.srv.URL + "/scores/latest"); err != nil {
		t.Fatal(err)
	}
	if env.reader.snapCalls != 2 {
		t.Fatalf("run should invalidate the cache, reads=%d", env.reader.snapCalls)
	}
}

func TestPredictionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/predictions/run", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(env.srv.URL + "/predictions")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Data []store.PredictionRecord `json:"data"`
	}
	decodeBody(t, resp, &body)
	if len(body.Data) != 1 {
		t.Fatalf("unexpected predictions payload: %+v", body.Data)
	}
}

func TestCollectEndpointDefaultsToCurrentPeriod(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/meetings/collect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.collector.calls != 1 {
		t.Fatalf("collector not invoked: %d", env.collector.calls)
	}
}

func TestReportRunEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/reports/run", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Summary domain.RunSummary `json:"summary"`
	}
	decodeBody(t, resp, &body)
	if body.Summary.RunID != "run-4" {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("liveness should always be 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(env.srv.URL + "/health/ready")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before ready, got %d", resp.StatusCode)
	}

	env.health.SetReady(true)
	resp, err = http.Get(env.srv.URL + "/health/ready")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 once ready, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/scores/run")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on run endpoint, got %d", resp.StatusCode)
	}
}
