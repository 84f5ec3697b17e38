package panel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/history"
	"github.com/Ouuuuuuuuuuu/poli/logging"
)

// RoundResult summarizes one completed round. The round itself has no
// failure state: it always completes once every session is terminal, with
// per-agent failures reported inline.
type RoundResult struct {
	RoundID  string
	UserTurn core.Turn
	// Replies holds the appended agent turns in completion order, which is
	// also their order in the history.
	Replies []core.Turn
	// Failures maps agent keys to their terminal error; no turn exists for
	// these agents.
	Failures map[string]error
}

// CoordinatorOptions configure a Coordinator.
type CoordinatorOptions struct {
	Sink   Sink
	Logger logging.Logger
}

// Coordinator drives rounds against the shared history. Rounds are strictly
// sequential: a new round does not start until the prior one has returned.
// The coordinator is the single writer to the history; sessions only ever
// see the snapshot taken at round start.
type Coordinator struct {
	roster core.Roster
	hist   *history.History
	disp   *Dispatcher
	sink   Sink
	logger logging.Logger

	mu sync.Mutex // serializes rounds
}

// NewCoordinator validates the roster and wires the round driver. An invalid
// roster is a fatal precondition, reported here rather than per round.
func NewCoordinator(roster core.Roster, hist *history.History, disp *Dispatcher, optFns ...func(o *CoordinatorOptions)) (*Coordinator, error) {
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	opts := CoordinatorOptions{
		Sink:   NoOpSink{},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{
		roster: roster,
		hist:   hist,
		disp:   disp,
		sink:   opts.Sink,
		logger: opts.Logger,
	}, nil
}

// History returns the shared conversation store.
func (c *Coordinator) History() *history.History { return c.hist }

// RunRound executes one full round: it appends the user's turn as the atomic
// first step, freezes the round input snapshot, dispatches every agent
// concurrently and consumes the merged stream until all sessions are
// terminal. Completed replies are appended in completion order, never roster
// order; failed agents get no turn and surface in RoundResult.Failures.
func (c *Coordinator) RunRound(ctx context.Context, userMessage string) (*RoundResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := time.Now()
	res := &RoundResult{
		RoundID:  core.NewID(),
		Failures: make(map[string]error),
	}

	res.UserTurn = c.hist.Append(core.NewUserTurn(userMessage))
	// Round input is frozen here: appends made below, by faster-finishing
	// agents, are invisible to sessions already in flight.
	snapshot := c.hist.Snapshot()

	builders := make(map[string]*strings.Builder, len(c.roster))
	for ev := range c.disp.Run(ctx, c.roster, snapshot) {
		switch e := ev.Event.(type) {
		case core.Delta:
			b := builders[ev.AgentKey]
			if b == nil {
				b = &strings.Builder{}
				builders[ev.AgentKey] = b
			}
			b.WriteString(e.Text)
			c.sink.OnDelta(ev.AgentKey, e.Text)
		case core.Done:
			var text string
			if b := builders[ev.AgentKey]; b != nil {
				text = b.String()
			}
			agent, _ := c.roster.Find(ev.AgentKey)
			res.Replies = append(res.Replies, c.hist.Append(core.NewAgentTurn(agent, text)))
			c.sink.OnDone(ev.AgentKey, text)
		case core.Failed:
			res.Failures[ev.AgentKey] = e.Cause
			c.sink.OnFailed(ev.AgentKey, e.Cause)
			c.logger.Error("agent reply failed", "agent", ev.AgentKey, "error", e.Cause)
		}
	}

	c.logger.Info("round completed",
		"round_id", res.RoundID,
		"agents", len(c.roster),
		"replies", len(res.Replies),
		"failures", len(res.Failures),
		"duration", time.Since(started))
	return res, nil
}
