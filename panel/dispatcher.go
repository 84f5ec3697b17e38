package panel

import (
	"context"
	"sync"
	"time"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/logging"
	"github.com/Ouuuuuuuuuuu/poli/model"
)

// AgentEvent pairs one decoded stream event with the agent that produced it.
type AgentEvent struct {
	AgentKey string
	Event    core.StreamEvent
}

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// Rules is the global discussion directive shared by every session.
	Rules string
	// SessionTimeout bounds each session independently, starting at dispatch.
	SessionTimeout time.Duration
	// Limiter caps concurrently streaming sessions. Defaults to a limiter
	// sized to the roster, making it a ceiling rather than admission control.
	Limiter *core.SessionLimiter
	// EventBufferSize sets the merged channel's buffering.
	EventBufferSize int
	// Logger receives per-session diagnostics.
	Logger logging.Logger
}

// Dispatcher fans a roster out into concurrent sessions against one frozen
// history snapshot and merges their event streams.
//
// Merge contract (fine-grained interleave): events from a single agent
// preserve that agent's emission order; events from different agents
// interleave in arrival order. Whichever session has a ready event next is
// surfaced next, independent of launch order and without draining any
// session to completion first, so the caller can render live token output
// for several agents at once.
type Dispatcher struct {
	mdl  model.Model
	opts DispatcherOptions
}

// NewDispatcher creates a dispatcher that speaks through the given model
// backend.
func NewDispatcher(mdl model.Model, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		SessionTimeout:  DefaultSessionTimeout,
		EventBufferSize: 16,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{mdl: mdl, opts: opts}
}

// Run launches one session per roster agent concurrently and returns the
// merged, arrival-ordered event channel. The channel closes once every
// session has produced its terminal event; one session failing never
// cancels its siblings.
func (d *Dispatcher) Run(ctx context.Context, roster core.Roster, snapshot []core.Turn) <-chan AgentEvent {
	merged := make(chan AgentEvent, d.opts.EventBufferSize)

	limiter := d.opts.Limiter
	if limiter == nil {
		limiter = core.NewSessionLimiter(len(roster))
	}

	var wg sync.WaitGroup
	for _, agent := range roster {
		wg.Add(1)
		go func(agent core.Agent) {
			defer wg.Done()

			if err := limiter.Acquire(ctx); err != nil {
				merged <- AgentEvent{AgentKey: agent.Key, Event: core.Failed{Cause: err}}
				return
			}
			defer limiter.Release()

			sess := NewSession(agent, d.mdl, d.opts.Rules, d.opts.SessionTimeout, d.opts.Logger)
			if err := sess.Start(ctx, snapshot); err != nil {
				merged <- AgentEvent{AgentKey: agent.Key, Event: core.Failed{Cause: err}}
				return
			}
			for ev := range sess.Events() {
				merged <- AgentEvent{AgentKey: agent.Key, Event: ev}
			}
		}(agent)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}
