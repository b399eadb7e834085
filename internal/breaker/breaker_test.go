// v0
// internal/breaker/breaker_test.go
package breaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Hour}, nil, nil)
	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }

	if err := b.Execute(context.Background(), fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("expected closed after first failure, got %s", b.State())
	}
	if err := b.Execute(context.Background(), fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.State() != Open {
		t.Fatalf("expected open after %d failures, got %s", 2, b.State())
	}

	if err := b.Execute(context.Background(), fail); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected fast-fail, got %v", err)
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Millisecond}, nil, nil)
	boom := errors.New("boom")

	_ = b.Execute(context.Background(), func(context.Context) error { return boom })
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	time.Sleep(5 * time.Millisecond)

	if err := b.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestBreakerHalfOpenReopensOnFailure(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Millisecond}, nil, nil)
	boom := errors.New("boom")

	_ = b.Execute(context.Background(), func(context.Context) error { return boom })
	time.Sleep(5 * time.Millisecond)

	if err := b.Execute(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.State() != Open {
		t.Fatalf("expected reopen after failed probe, got %s", b.State())
	}
}

func TestBreakerAdmitsOnlyOneProbe(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Millisecond}, nil, nil)

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("boom") })
	time.Sleep(5 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := b.Execute(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected fast-fail while half-open call in flight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error from admitted call: %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("expected closed after successful recovery, got %s", b.State())
	}
}

func TestBreakerNotifiesStateChanges(t *testing.T) {
	var states []State
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Hour}, nil, func(_ string, s State) {
		states = append(states, s)
	})

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("x") })

	if len(states) != 2 || states[0] != Closed || states[1] != Open {
		t.Fatalf("unexpected transition sequence: %v", states)
	}
}
