package history

import (
	"testing"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/stretchr/testify/assert"
)

func TestHistory_AppendAssignsIncreasingSeq(t *testing.T) {
	h := New()

	first := h.Append(core.NewUserTurn("hello"))
	second := h.Append(core.NewAgentTurn(core.Agent{Key: "a", Label: "Ada"}, "hi"))
	third := h.Append(core.NewUserTurn("again"))

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, 3, third.Seq)
	assert.Equal(t, 3, h.Len())

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, third.ID, last.ID)
}

func TestHistory_SeqIgnoresCallerValue(t *testing.T) {
	h := New()
	turn := core.NewUserTurn("x")
	turn.Seq = 99
	stored := h.Append(turn)
	assert.Equal(t, 1, stored.Seq)
}

func TestHistory_SnapshotIsFrozen(t *testing.T) {
	h := New()
	h.Append(core.NewUserTurn("question"))

	snap := h.Snapshot()
	assert.Len(t, snap, 1)

	// Appends after the snapshot must not be visible in the copy.
	h.Append(core.NewAgentTurn(core.Agent{Key: "fast", Label: "Fast"}, "answer"))
	assert.Len(t, snap, 1)
	assert.Equal(t, 2, h.Len())

	// Mutating the copy must not leak back into the store.
	snap[0].Text = "tampered"
	assert.Equal(t, "question", h.Snapshot()[0].Text)
}

func TestRenderTranscript(t *testing.T) {
	h := New()
	h.Append(core.NewUserTurn("what do you all think?"))
	h.Append(core.NewAgentTurn(core.Agent{Key: "ada", Label: "Ada"}, "I am in favor."))
	h.Append(core.NewAgentTurn(core.Agent{Key: "ben", Label: "Ben"}, "I disagree."))

	want := "[User]: what do you all think?\n[Ada]: I am in favor.\n[Ben]: I disagree."
	assert.Equal(t, want, h.Render())
}

func TestRenderTranscript_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTranscript(nil))
}
