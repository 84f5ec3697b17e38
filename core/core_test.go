package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRoster_Validate(t *testing.T) {
	if err := (Roster{}).Validate(); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}

	dup := Roster{{Key: "a", Label: "A"}, {Key: "a", Label: "A2"}}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate key error")
	}

	ok := Roster{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, found := ok.Find("b"); !found || got.Label != "B" {
		t.Fatalf("Find(b) = %+v, %v", got, found)
	}
	if _, found := ok.Find("c"); found {
		t.Fatal("Find(c) should miss")
	}
}

func TestStreamEvent_IsTerminal(t *testing.T) {
	if IsTerminal(Delta{Text: "hi"}) {
		t.Error("Delta must not be terminal")
	}
	if !IsTerminal(Done{}) {
		t.Error("Done must be terminal")
	}
	if !IsTerminal(Failed{Cause: errors.New("x")}) {
		t.Error("Failed must be terminal")
	}
}

func TestTimeoutError_MatchesDeadlineExceeded(t *testing.T) {
	err := &TimeoutError{Limit: time.Second}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should match context.DeadlineExceeded")
	}
}

func TestSessionLimiter_Ceiling(t *testing.T) {
	l := NewSessionLimiter(2)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if l.InFlight() != 2 {
		t.Fatalf("in flight = %d, want 2", l.InFlight())
	}

	// Third acquire must block until a slot is released.
	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(blocked); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while at ceiling, got %v", err)
	}

	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	l.Release()
	l.Release()
	if l.InFlight() != 0 {
		t.Fatalf("in flight = %d after releases, want 0", l.InFlight())
	}
}

func TestSessionLimiter_Unlimited(t *testing.T) {
	l := NewSessionLimiter(0)
	for i := 0; i < 10; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if l.Max() != 0 {
		t.Fatalf("Max = %d, want 0 (unlimited)", l.Max())
	}
}
