// v0
// internal/app/logger.go
package app

import (
	"context"
	"log/slog"
	"os"
)

// newLogger always writes to stdout; when a log file is supplied, entries are
// mirrored into it as well.
func newLogger(file *os.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	sinks := fanout{slog.NewTextHandler(os.Stdout, opts)}
	if file != nil {
		sinks = append(sinks, slog.NewTextHandler(file, opts))
	}
	if len(sinks) == 1 {
		return slog.New(sinks[0])
	}
	return slog.New(sinks)
}

// fanout duplicates every record to each wrapped handler. Handle keeps going
// past a failing sink and reports the first error it saw.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f {
		if err := h.Handle(ctx, record); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
