// v0
// internal/score/run_test.go
package score

import (
	"context"
	"errors"
	"testing"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
	"github.com/Salmankotakuth/ai-tanmiya/internal/region"
	"github.com/Salmankotakuth/ai-tanmiya/internal/store"
)

type fakeSource struct {
	byRegion map[int][]domain.PeriodRecord
	failFor  map[int]error
}

func (f *fakeSource) FetchRegion(_ context.Context, _ domain.Period, regionID int) ([]domain.PeriodRecord, error) {
	if err, ok := f.failFor[regionID]; ok {
		return nil, err
	}
	return f.byRegion[regionID], nil
}

type fakeEngine struct {
	snapshots [][]store.SnapshotRecord
	history   [][]store.SnapshotRecord
	fetchErr  error
}

func (f *fakeEngine) UpsertSnapshots(_ context.Context, _ string, recs []store.SnapshotRecord) (store.BatchResult, error) {
	if f.fetchErr != nil {
		return store.BatchResult{}, f.fetchErr
	}
	f.snapshots = append(f.snapshots, recs)
	return store.BatchResult{Created: len(recs)}, nil
}

func (f *fakeEngine) AppendHistory(_ context.Context, _ string, recs []store.SnapshotRecord) store.BatchResult {
	f.history = append(f.history, recs)
	return store.BatchResult{Created: len(recs)}
}

// fullAttendance yields a participants score of exactly 0.8 in every
// category.
func fullAttendance() domain.Participants {
	return domain.Participants{
		TotalAdministrators: 10, PresentAdministrators: 8,
		TotalSubAdmins: 10, PresentSubAdmins: 8,
		TotalCoordinators: 10, PresentCoordinators: 8,
		TotalMembers: 10, PresentMembers: 8,
		TotalGuests: 10, PresentGuests: 8,
	}
}

func testRunner(source *fakeSource, engine *fakeEngine, rankScore float64) *Runner {
	minutes := NewMinutesScorer(&fakeTranslator{}, &fakeRanker{scores: []float64{rankScore}}, 4, quietLogger())
	return NewRunner(region.NewCatalog(), source, minutes, engine, quietLogger(), nil)
}

func TestRunAggregatesWithFixedWeights(t *testing.T) {
	// participants=0.8, meeting=0.6, topic=0.5 => 0.8*0.4+0.6*0.4+0.5*0.2 = 0.66
	source := &fakeSource{byRegion: map[int][]domain.PeriodRecord{
		1: {{
			Participants:      fullAttendance(),
			Meetings:          []domain.MeetingItem{{Topic: "roads", Discussion: []string{"road work"}}},
			TotalTopics:       10,
			TransferredTopics: 5,
		}},
	}}
	engine := &fakeEngine{}
	runner := testRunner(source, engine, 0.6)

	scores, summary, err := runner.Run(context.Background(), domain.Period{Month: 5, Year: 2026})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one scored region, got %d", len(scores))
	}
	s := scores[0]
	if s.TotalScore != 0.66 {
		t.Fatalf("expected total score 0.66, got %v", s.TotalScore)
	}
	if s.ParticipantsScore != 0.8 || s.MeetingScore != 0.6 {
		t.Fatalf("unexpected component scores: %+v", s)
	}
	if s.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", s.Rank)
	}
	if s.RegionName != "Muscat" {
		t.Fatalf("expected catalog name Muscat, got %s", s.RegionName)
	}
	if summary.Succeeded != 1 || summary.Skipped != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunSkipsEmptyRegionsEntirely(t *testing.T) {
	source := &fakeSource{byRegion: map[int][]domain.PeriodRecord{}}
	engine := &fakeEngine{}
	runner := testRunner(source, engine, 0.5)

	scores, summary, err := runner.Run(context.Background(), domain.Period{Month: 1, Year: 2026})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected no zero rows for empty regions, got %d", len(scores))
	}
	if summary.Skipped != 11 || summary.Succeeded != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(engine.snapshots) != 0 || len(engine.history) != 0 {
		t.Fatal("empty run must not touch the store")
	}
}

func TestRunRegionFailureIsIsolated(t *testing.T) {
	rec := domain.PeriodRecord{
		Participants: fullAttendance(),
		TotalTopics:  4,
	}
	source := &fakeSource{
		byRegion: map[int][]domain.PeriodRecord{2: {rec}, 3: {rec}},
		failFor:  map[int]error{1: errors.New("backend timeout")},
	}
	engine := &fakeEngine{}
	runner := testRunner(source, engine, 0.5)

	scores, summary, err := runner.Run(context.Background(), domain.Period{Month: 2, Year: 2026})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected two scored regions despite one failure, got %d", len(scores))
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Region != "Muscat" {
		t.Fatalf("expected one captured error for Muscat, got %+v", summary.Errors)
	}
}

func TestRunRanksDescendingWithDiscoveryOrderTies(t *testing.T) {
	strong := domain.PeriodRecord{Participants: fullAttendance(), TotalTopics: 10}
	weak := domain.PeriodRecord{TotalTopics: 10, TransferredTopics: 10}
	source := &fakeSource{byRegion: map[int][]domain.PeriodRecord{
		1: {weak},   // Muscat: ties with region 2
		2: {weak},   // Al Batinah North
		3: {strong}, // Musandam: clear leader
	}}
	engine := &fakeEngine{}
	runner := testRunner(source, engine, 0.0)

	scores, _, err := runner.Run(context.Background(), domain.Period{Month: 3, Year: 2026})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected three regions, got %d", len(scores))
	}
	if scores[0].RegionName != "Musandam" || scores[0].Rank != 1 {
		t.Fatalf("expected Musandam first, got %+v", scores[0])
	}
	// Tie broken by discovery order: Muscat before Al Batinah North.
	if scores[1].RegionName != "Muscat" || scores[1].Rank != 2 {
		t.Fatalf("expected Muscat second, got %+v", scores[1])
	}
	if scores[2].RegionName != "Al Batinah North" || scores[2].Rank != 3 {
		t.Fatalf("expected Al Batinah North third, got %+v", scores[2])
	}
}

func TestRunReconcilesSnapshotAndHistory(t *testing.T) {
	rec := domain.PeriodRecord{Participants: fullAttendance(), TotalTopics: 5, TransferredTopics: 1}
	source := &fakeSource{byRegion: map[int][]domain.PeriodRecord{1: {rec}}}
	engine := &fakeEngine{}
	runner := testRunner(source, engine, 0.4)

	_, summary, err := runner.Run(context.Background(), domain.Period{Month: 4, Year: 2026})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(engine.snapshots) != 1 || len(engine.history) != 1 {
		t.Fatalf("expected one snapshot and one history batch, got %d/%d",
			len(engine.snapshots), len(engine.history))
	}
	recs := engine.snapshots[0]
	if recs[0].Month != "4/2026" || recs[0].RegionID != 1 || recs[0].RunID != summary.RunID {
		t.Fatalf("unexpected wire record: %+v", recs[0])
	}
}

func TestRunSnapshotFetchFailureRecordedNotFatal(t *testing.T) {
	rec := domain.PeriodRecord{Participants: fullAttendance(), TotalTopics: 5}
	source := &fakeSource{byRegion: map[int][]domain.PeriodRecord{1: {rec}}}
	engine := &fakeEngine{fetchErr: errors.New("store unreachable")}
	runner := testRunner(source, engine, 0.4)

	scores, summary, err := runner.Run(context.Background(), domain.Period{Month: 4, Year: 2026})
	if err != nil {
		t.Fatalf("run should still report partial success: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("scores should survive store failure, got %d", len(scores))
	}
	found := false
	for _, e := range summary.Errors {
		if e.Region == store.CollectionSnapshot {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected batch failure in summary, got %+v", summary.Errors)
	}
	// History append still attempted.
	if len(engine.history) != 1 {
		t.Fatal("history append should proceed after snapshot batch failure")
	}
}
