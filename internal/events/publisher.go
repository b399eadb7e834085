// v0
// internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
)

// RunEvent announces a completed pipeline run on the bus so downstream
// consumers (dashboards, notification workers) can react without polling.
type RunEvent struct {
	Kind      string               `json:"kind"`
	RunID     string               `json:"run_id"`
	Period    string               `json:"period,omitempty"`
	Succeeded int                  `json:"succeeded_count"`
	Skipped   int                  `json:"skipped_count"`
	Errors    []domain.RegionError `json:"errors,omitempty"`
	At        time.Time            `json:"at"`
}

// Publisher emits run events to a Kafka topic. A nil Publisher is valid and
// publishes nothing, which is how deployments without brokers run.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewPublisher builds a publisher for the given brokers and topic. Returns
// nil when no brokers are configured.
func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		log: log.With(slog.String("component", "events")),
	}
}

// PublishRun emits one run event keyed by run id. Publish failures are logged
// and swallowed; the bus is advisory and never fails a run.
func (p *Publisher) PublishRun(ctx context.Context, kind, period string, summary domain.RunSummary) {
	if p == nil {
		return
	}
	ev := RunEvent{
		Kind:      kind,
		RunID:     summary.RunID,
		Period:    period,
		Succeeded: summary.Succeeded,
		Skipped:   summary.Skipped,
		Errors:    summary.Errors,
		At:        time.Now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event_marshal_failed", slog.Any("err", err))
		return
	}
	msg := kafka.Message{Key: []byte(summary.RunID), Value: body}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event_publish_failed",
			slog.String("kind", kind),
			slog.Any("err", err),
		)
		return
	}
	p.log.Info("event_published",
		slog.String("kind", kind),
		slog.String("run_id", summary.RunID),
	)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
