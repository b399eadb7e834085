// v0
// internal/breaker/breaker.go
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State enumerates the breaker's lifecycle phases.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrOpen is returned when the breaker fast-fails a call.
var ErrOpen = errors.New("circuit breaker is open; fast-fail")

// Config carries the breaker tunables.
type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// DefaultConfig returns conservative defaults suited to the outbound HTTP
// collaborators this service talks to.
func DefaultConfig() Config {
	return Config{MaxFailures: 5, ResetTimeout: 30 * time.Second}
}

// Breaker guards an unreliable dependency with closed/open/half-open
// transitions. After ResetTimeout in the open state a single probe call is
// admitted; its outcome decides whether the breaker closes again.
type Breaker struct {
	name    string
	cfg     Config
	log     *slog.Logger
	onState func(name string, s State)

	mu          sync.Mutex
	state       State
	recentFails int
	openedAt    time.Time
	probing     bool
}

// New builds a breaker. onState may be nil; when set it is invoked on every
// state transition so callers can export a state gauge.
func New(name string, cfg Config, log *slog.Logger, onState func(name string, s State)) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultConfig().MaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig().ResetTimeout
	}
	b := &Breaker{name: name, cfg: cfg, log: log, onState: onState, state: Closed}
	b.notify(Closed)
	return b
}

// Execute runs op under breaker supervision.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	switch b.state {
	case Open:
		sinceOpen := time.Since(b.openedAt)
		if sinceOpen < b.cfg.ResetTimeout {
			b.mu.Unlock()
			if b.log != nil {
				b.log.Warn("breaker_fast_fail",
					slog.String("name", b.name),
					slog.String("since_open", sinceOpen.String()),
				)
			}
			return ErrOpen
		}
		b.state = HalfOpen
		b.probing = true
		b.mu.Unlock()
		if b.log != nil {
			b.log.Info("breaker_transition",
				slog.String("name", b.name),
				slog.String("state", HalfOpen.String()),
			)
		}
		b.notify(HalfOpen)
	case HalfOpen:
		// The probe slot is exclusive; everyone else fast-fails until
		// the in-flight call resolves.
		if b.probing {
			b.mu.Unlock()
			if b.log != nil {
				b.log.Warn("breaker_fast_fail", slog.String("name", b.name))
			}
			return ErrOpen
		}
		b.probing = true
		b.mu.Unlock()
	default:
		b.mu.Unlock()
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

// State reports the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	prev := b.state
	b.state = Closed
	b.recentFails = 0
	b.probing = false
	b.mu.Unlock()
	if prev != Closed {
		if b.log != nil {
			b.log.Info("breaker_closed", slog.String("name", b.name))
		}
		b.notify(Closed)
	}
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	b.recentFails++
	b.probing = false
	trip := b.state == HalfOpen || b.recentFails >= b.cfg.MaxFailures
	if trip {
		b.state = Open
		b.openedAt = time.Now()
		b.recentFails = 0
	}
	b.mu.Unlock()
	if trip {
		if b.log != nil {
			b.log.Warn("breaker_opened",
				slog.String("name", b.name),
				slog.Any("err", err),
			)
		}
		b.notify(Open)
	}
}

func (b *Breaker) notify(s State) {
	if b.onState != nil {
		b.onState(b.name, s)
	}
}
