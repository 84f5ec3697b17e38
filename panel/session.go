package panel

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/history"
	"github.com/Ouuuuuuuuuuu/poli/logging"
	"github.com/Ouuuuuuuuuuu/poli/model"
)

// SessionState tracks one session through its lifecycle.
type SessionState int32

const (
	// StatePending means the session is constructed but not yet sent.
	StatePending SessionState = iota
	// StateConnecting means the request was issued and no event has arrived yet.
	StateConnecting
	// StateStreaming means at least one delta has been received.
	StateStreaming
	// StateCompleted is the terminal state after a clean Done.
	StateCompleted
	// StateFailed is the terminal state after a terminal error.
	StateFailed
	// StateCancelled is the terminal state after a best-effort Cancel.
	StateCancelled
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DefaultSessionTimeout bounds one full streaming exchange when no explicit
// timeout is configured.
const DefaultSessionTimeout = 60 * time.Second

// turnInstruction is appended after the rendered transcript so the model
// contributes one utterance instead of continuing the whole conversation.
const turnInstruction = "It is now your turn to speak. Reply with your next contribution to the discussion, in character, and nothing else."

// Session owns one outbound streaming request for one agent and one
// conversation snapshot. The event sequence is consumable exactly once, in
// order, and always ends with exactly one terminal event.
type Session struct {
	agent   core.Agent
	mdl     model.Model
	rules   string
	timeout time.Duration
	logger  logging.Logger

	state     atomic.Int32
	started   atomic.Bool
	cancelled atomic.Bool
	cancel    context.CancelFunc
	events    chan core.StreamEvent
}

// NewSession constructs a session in StatePending. The single fixed timeout
// bounds the entire exchange once Start is called.
func NewSession(agent core.Agent, mdl model.Model, rules string, timeout time.Duration, logger logging.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Session{
		agent:   agent,
		mdl:     mdl,
		rules:   rules,
		timeout: timeout,
		logger:  logger,
		events:  make(chan core.StreamEvent, 16),
	}
}

// Agent returns the agent this session speaks for.
func (s *Session) Agent() core.Agent { return s.agent }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// Events returns the session's event sequence. The channel is closed after
// the terminal event has been delivered.
func (s *Session) Events() <-chan core.StreamEvent { return s.events }

// Start issues the outbound streaming call against the given history
// snapshot. It may be called at most once; the returned error reports a
// repeated call, never a stream failure (those arrive as Failed events).
func (s *Session) Start(ctx context.Context, snapshot []core.Turn) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("session already started")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.state.Store(int32(StateConnecting))
	go s.run(ctx, snapshot)
	return nil
}

// Cancel stops consuming further bytes and releases the underlying
// connection, best effort. Events delivered before the cancellation are not
// retracted; the stream terminates with a Failed event.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) run(ctx context.Context, snapshot []core.Turn) {
	defer close(s.events)
	defer s.cancel()

	started := time.Now()
	deltas := 0
	in := s.mdl.StreamReply(ctx, buildRequest(s.rules, s.agent, snapshot))

	for ev := range in {
		switch e := ev.(type) {
		case core.Delta:
			s.state.Store(int32(StateStreaming))
			deltas++
			s.events <- e
		case core.Done:
			s.state.Store(int32(StateCompleted))
			s.events <- e
			s.logger.Debug("session completed", "agent", s.agent.Key, "deltas", deltas, "duration", time.Since(started))
			return
		case core.Failed:
			cause := s.classify(e.Cause)
			s.events <- core.Failed{Cause: cause}
			s.logger.Debug("session failed", "agent", s.agent.Key, "state", s.State().String(), "error", cause, "duration", time.Since(started))
			return
		}
	}
	// The backend closed its stream without a terminal event; treat the
	// closure as a clean end, same as an abrupt peer close on the wire.
	s.state.Store(int32(StateCompleted))
	s.events <- core.Done{}
}

// classify normalizes a terminal cause and records the matching state:
// deadline expiry becomes a TimeoutError, a requested Cancel is reported as
// cancelled, everything else fails as-is.
func (s *Session) classify(cause error) error {
	switch {
	case s.cancelled.Load():
		s.state.Store(int32(StateCancelled))
		return context.Canceled
	case errors.Is(cause, context.DeadlineExceeded):
		s.state.Store(int32(StateFailed))
		return &core.TimeoutError{Limit: s.timeout}
	default:
		s.state.Store(int32(StateFailed))
		return cause
	}
}

// buildRequest assembles the role-tagged messages for one session: the
// global discussion rules and the agent's persona as the system message, the
// rendered snapshot transcript plus the turn-taking instruction as the user
// message.
func buildRequest(rules string, agent core.Agent, snapshot []core.Turn) model.Request {
	system := rules
	if system != "" && agent.Persona != "" {
		system += "\n\n"
	}
	system += agent.Persona

	user := history.RenderTranscript(snapshot)
	if user != "" {
		user += "\n\n"
	}
	user += turnInstruction

	return model.Request{Messages: []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: user},
	}}
}
