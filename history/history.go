package history

import (
	"strings"
	"sync"

	"github.com/Ouuuuuuuuuuu/poli/core"
)

// History is the append-only ordered store of conversation turns: the single
// source of truth consumed by the dispatcher to build each round's context
// and by the presentation layer for rendering. It is safe for concurrent
// access, but the orchestration design keeps writes on a single goroutine
// (the coordinator) with readers working from Snapshot copies.
//
// Contract:
//   - Sequence numbers are strictly increasing and equal to 1 + the count of
//     prior appends
//   - Turns are immutable once appended; no edit or delete operation exists
//   - Snapshot returns a defensive copy so in-flight sessions never observe
//     appends made after the snapshot was taken
type History struct {
	mu    sync.RWMutex
	turns []core.Turn
}

// New constructs an empty history.
func New() *History {
	return &History{}
}

// Append stores the turn, assigns its sequence number and returns the stored
// value. The input turn's Seq field is ignored.
func (h *History) Append(t core.Turn) core.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	t.Seq = len(h.turns) + 1
	h.turns = append(h.turns, t)
	return t
}

// Len returns the number of appended turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Last returns the most recently appended turn, if any.
func (h *History) Last() (core.Turn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.turns) == 0 {
		return core.Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// Snapshot returns a defensive copy of all turns in append order. Round
// input is frozen at round start: sessions read the copy taken then, never
// a live view.
func (h *History) Snapshot() []core.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	turns := make([]core.Turn, len(h.turns))
	copy(turns, h.turns)
	return turns
}

// Render returns the whole history as a text transcript.
func (h *History) Render() string {
	return RenderTranscript(h.Snapshot())
}

// RenderTranscript renders turns as a transcript with one "[label]: text"
// line per turn, user and agent turns interleaved in original order.
func RenderTranscript(turns []core.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[")
		b.WriteString(t.Label)
		b.WriteString("]: ")
		b.WriteString(t.Text)
	}
	return b.String()
}
