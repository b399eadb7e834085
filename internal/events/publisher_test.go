// v0
// internal/events/publisher_test.go
package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
)

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	// Must not panic and must not block.
	p.PublishRun(context.Background(), "score", "5/2026", domain.RunSummary{RunID: "r"})
	if err := p.Close(); err != nil {
		t.Fatalf("nil close should be a no-op, got %v", err)
	}
}

func TestNewPublisherWithoutBrokersIsDisabled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if p := NewPublisher(nil, "tanmiya.runs", log); p != nil {
		t.Fatal("expected nil publisher when no brokers configured")
	}
}
