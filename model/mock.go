package model

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Ouuuuuuuuuuu/poli/core"
)

// Script describes the canned stream a MockModel plays back for one match.
type Script struct {
	// Deltas are emitted in order before the terminal event.
	Deltas []string
	// Err, when set, ends the stream with Failed instead of Done.
	Err error
	// ConnectDelay is waited before the first event, modeling connection
	// establishment latency.
	ConnectDelay time.Duration
	// DeltaDelay is waited before each delta, modeling token arrival pacing.
	DeltaDelay time.Duration
}

// MockModel is a lightweight in-memory Model useful for tests. Scripts are
// selected by substring match against the request's system message, which in
// a panel carries each agent's persona, so one mock can serve a whole roster
// with distinct behavior per agent.
type MockModel struct {
	mu       sync.Mutex
	scripts  map[string]Script
	fallback Script
	requests []Request
}

// NewMockModel constructs a MockModel with an empty default script.
func NewMockModel() *MockModel {
	return &MockModel{scripts: make(map[string]Script)}
}

// AddScript registers a canned stream played back when the request's system
// message contains match.
func (m *MockModel) AddScript(match string, s Script) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[match] = s
}

// SetDefault sets the script used when no registered match applies.
func (m *MockModel) SetDefault(s Script) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = s
}

// Requests returns a copy of every request seen, in arrival order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

func (m *MockModel) pick(req Request) Script {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	system := ""
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system = msg.Content
		}
	}
	for match, s := range m.scripts {
		if strings.Contains(system, match) {
			return s
		}
	}
	return m.fallback
}

// StreamReply implements Model; plays back the selected script with its
// configured delays, honoring ctx cancellation between events.
func (m *MockModel) StreamReply(ctx context.Context, req Request) <-chan core.StreamEvent {
	out := make(chan core.StreamEvent, 16)
	script := m.pick(req)

	go func() {
		defer close(out)
		if !sleep(ctx, script.ConnectDelay) {
			out <- core.Failed{Cause: ctx.Err()}
			return
		}
		for _, text := range script.Deltas {
			if !sleep(ctx, script.DeltaDelay) {
				out <- core.Failed{Cause: ctx.Err()}
				return
			}
			select {
			case out <- core.Delta{Text: text}:
			case <-ctx.Done():
				out <- core.Failed{Cause: ctx.Err()}
				return
			}
		}
		if script.Err != nil {
			out <- core.Failed{Cause: script.Err}
			return
		}
		out <- core.Done{}
	}()
	return out
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return Info{Name: "mock", Provider: "mock"} }

// sleep waits for d or until ctx is cancelled, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
