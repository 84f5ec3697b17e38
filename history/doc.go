// Package history implements the append-only conversation store shared by
// rounds. Sequence numbers are assigned at append time and past turns are
// never reordered or mutated; concurrent readers work from snapshots taken
// once at round start.
package history
