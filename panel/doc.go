// Package panel implements the concurrent multi-stream response
// orchestrator: one Session per agent per round, a Dispatcher that fans the
// roster out and merges every reply stream into a single arrival-ordered
// channel, and a Coordinator that drives one round at a time against the
// shared history.
//
// The merge contract is fine-grained interleave: an event is surfaced to the
// consumer as soon as any session has it available, independent of the order
// agents were launched and without waiting for any session to finish.
package panel
