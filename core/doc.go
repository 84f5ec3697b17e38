// Package core provides the foundational domain types used by poli. It
// defines the core abstractions for:
//
//   - Agents (the fixed panel roster and each speaker's persona)
//   - Turns (immutable, sequence-numbered conversation entries)
//   - StreamEvents (the tagged union carried by every reply stream)
//   - The session error taxonomy (connection, protocol, timeout, upstream)
//   - SessionLimiter (the per-round concurrency ceiling)
//
// The package intentionally keeps implementation concerns (transports, the
// history store, round orchestration) out of scope, exposing small value
// types so the streaming and coordination layers stay decoupled.
package core
