package panel

// Sink is the presentation boundary: it receives each agent's ordered delta
// text and terminal status as they arrive. The presentation layer owns how
// and when to paint; the orchestrator only guarantees per-agent ordering and
// that exactly one of OnDone / OnFailed is called per agent per round.
//
// Sink methods are invoked from the coordinator's single consumer goroutine,
// so implementations need no locking of their own.
type Sink interface {
	// OnDelta delivers one incremental reply fragment.
	OnDelta(agentKey, text string)
	// OnDone delivers an agent's complete reply after its clean end of stream.
	OnDone(agentKey, fullText string)
	// OnFailed reports an agent's terminal failure; no turn is recorded for it.
	OnFailed(agentKey string, err error)
}

// NoOpSink discards all presentation callbacks. Useful for tests or callers
// that only consume the RoundResult.
type NoOpSink struct{}

// OnDelta discards the fragment.
func (NoOpSink) OnDelta(string, string) {}

// OnDone discards the completed reply.
func (NoOpSink) OnDone(string, string) {}

// OnFailed discards the failure.
func (NoOpSink) OnFailed(string, error) {}
