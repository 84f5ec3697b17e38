package core

import (
	"context"
	"sync"
)

// SessionLimiter enforces a maximum number of concurrently streaming
// sessions. The dispatcher sizes it to the roster by default, so with a
// small fixed panel it acts as a ceiling rather than admission control.
type SessionLimiter struct {
	slots    chan struct{}
	inFlight int
	mu       sync.Mutex
}

// NewSessionLimiter creates a new limiter with a max number of concurrent
// sessions. If max <= 0, concurrency is unlimited.
func NewSessionLimiter(max int) *SessionLimiter {
	l := &SessionLimiter{}
	if max > 0 {
		l.slots = make(chan struct{}, max)
	}
	return l
}

// Acquire blocks until a slot is available or ctx is cancelled. On success
// the caller must Release the slot when its session reaches a terminal state.
func (l *SessionLimiter) Acquire(ctx context.Context) error {
	if l.slots != nil {
		select {
		case l.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.mu.Lock()
	l.inFlight++
	l.mu.Unlock()
	return nil
}

// Release returns a previously acquired slot.
func (l *SessionLimiter) Release() {
	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
	if l.slots != nil {
		<-l.slots
	}
}

// InFlight returns the number of sessions currently holding a slot.
func (l *SessionLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Max returns the configured ceiling, or 0 if unlimited.
func (l *SessionLimiter) Max() int {
	if l.slots == nil {
		return 0
	}
	return cap(l.slots)
}
