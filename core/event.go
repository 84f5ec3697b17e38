package core

// StreamEvent is one element of a session's decoded reply stream. Concrete
// event types implement the unexported isStreamEvent marker enabling a
// closed set: Delta (an incremental text fragment), Done (clean end of
// stream) and Failed (terminal error).
//
// Contract: events for a given session are strictly ordered and contain
// exactly one terminal event (Done or Failed), always last.
type StreamEvent interface{ isStreamEvent() }

// Delta carries an incremental text fragment to append to the in-progress
// reply accumulator.
type Delta struct {
	Text string
}

// isStreamEvent implements the StreamEvent interface for Delta.
func (Delta) isStreamEvent() {}

// Done marks the clean end of a reply stream. The decoder does not
// distinguish a polite end-marker from an abrupt clean closure; both
// terminate the sequence with Done.
type Done struct{}

// isStreamEvent implements the StreamEvent interface for Done.
func (Done) isStreamEvent() {}

// Failed marks the terminal failure of a reply stream. Deltas already
// delivered before the failure are not retracted.
type Failed struct {
	Cause error
}

// isStreamEvent implements the StreamEvent interface for Failed.
func (Failed) isStreamEvent() {}

// IsTerminal reports whether ev ends a session's event sequence.
func IsTerminal(ev StreamEvent) bool {
	switch ev.(type) {
	case Done, Failed:
		return true
	}
	return false
}
