package sse

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Ouuuuuuuuuuu/poli/core"
)

// drain consumes the decoder until exhaustion, returning every event.
func drain(t *testing.T, d *Decoder) []core.StreamEvent {
	t.Helper()
	var events []core.StreamEvent
	for {
		ev, ok := d.Next()
		if !ok {
			return events
		}
		events = append(events, ev)
		if len(events) > 100 {
			t.Fatal("decoder did not terminate")
		}
	}
}

func chunk(text string) string {
	return `data: {"choices":[{"delta":{"content":"` + text + `"}}]}` + "\n\n"
}

func TestDecoder_DeltasThenEndMarker(t *testing.T) {
	stream := chunk("hi") + chunk(" there") + "data: [DONE]\n\n"
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if d, ok := events[0].(core.Delta); !ok || d.Text != "hi" {
		t.Fatalf("event 0 = %+v, want Delta(hi)", events[0])
	}
	if d, ok := events[1].(core.Delta); !ok || d.Text != " there" {
		t.Fatalf("event 1 = %+v, want Delta( there)", events[1])
	}
	if _, ok := events[2].(core.Done); !ok {
		t.Fatalf("event 2 = %+v, want Done", events[2])
	}
}

func TestDecoder_EndMarkerNotEmittedAsDelta(t *testing.T) {
	events := drain(t, NewDecoder(strings.NewReader("data: [DONE]\n")))
	if len(events) != 1 {
		t.Fatalf("expected only the terminal event, got %+v", events)
	}
	if _, ok := events[0].(core.Done); !ok {
		t.Fatalf("expected Done, got %+v", events[0])
	}
}

// One unparsable record between two valid ones yields exactly the two valid
// deltas, in order, with no terminal failure.
func TestDecoder_MalformedRecordTolerance(t *testing.T) {
	stream := chunk("a") + "data: {not json at all\n\n" + chunk("b") + "data: [DONE]\n\n"
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if d := events[0].(core.Delta); d.Text != "a" {
		t.Fatalf("first delta = %q", d.Text)
	}
	if d := events[1].(core.Delta); d.Text != "b" {
		t.Fatalf("second delta = %q", d.Text)
	}
	if _, ok := events[2].(core.Done); !ok {
		t.Fatalf("expected Done terminal, got %+v", events[2])
	}
}

func TestDecoder_EOFWithoutEndMarkerIsDone(t *testing.T) {
	// Peer closed the connection after valid records, no [DONE] seen.
	stream := chunk("partial")
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 2 {
		t.Fatalf("expected delta + done, got %+v", events)
	}
	if _, ok := events[1].(core.Done); !ok {
		t.Fatalf("expected Done after clean EOF, got %+v", events[1])
	}
}

func TestDecoder_TrailingRecordWithoutNewline(t *testing.T) {
	// The final record arrives without a line terminator before EOF.
	stream := chunk("x") + `data: {"choices":[{"delta":{"content":"y"}}]}`
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 3 {
		t.Fatalf("expected 2 deltas + done, got %+v", events)
	}
	if d := events[1].(core.Delta); d.Text != "y" {
		t.Fatalf("trailing delta = %q", d.Text)
	}
	if _, ok := events[2].(core.Done); !ok {
		t.Fatalf("expected trailing Done, got %+v", events[2])
	}
}

func TestDecoder_NonDataLinesDiscarded(t *testing.T) {
	stream := ": keep-alive comment\n" +
		"event: message\n" +
		chunk("ok") +
		"\n\n" +
		"data: [DONE]\n"
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 2 {
		t.Fatalf("expected delta + done, got %+v", events)
	}
}

func TestDecoder_EmptyContentChunksSkipped(t *testing.T) {
	// Role preludes and finish chunks carry no content fragment.
	stream := `data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n\n" +
		chunk("text") +
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}` + "\n\n" +
		"data: [DONE]\n"
	events := drain(t, NewDecoder(strings.NewReader(stream)))

	if len(events) != 2 {
		t.Fatalf("expected delta + done, got %+v", events)
	}
	if d := events[0].(core.Delta); d.Text != "text" {
		t.Fatalf("delta = %q", d.Text)
	}
}

// failingReader yields some bytes then a transport error.
type failingReader struct {
	data string
	err  error
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		n := copy(p, r.data)
		return n, nil
	}
	return 0, r.err
}

func TestDecoder_TransportErrorIsFailed(t *testing.T) {
	cause := errors.New("connection reset by peer")
	d := NewDecoder(&failingReader{data: chunk("before"), err: cause})
	events := drain(t, d)

	if len(events) != 2 {
		t.Fatalf("expected delta + failed, got %+v", events)
	}
	failed, ok := events[1].(core.Failed)
	if !ok {
		t.Fatalf("expected Failed terminal, got %+v", events[1])
	}
	var connErr *core.ConnectionError
	if !errors.As(failed.Cause, &connErr) {
		t.Fatalf("cause = %v, want ConnectionError", failed.Cause)
	}
	if !errors.Is(failed.Cause, cause) {
		t.Fatalf("cause should wrap the transport error, got %v", failed.Cause)
	}
}

func TestDecoder_ExactlyOneTerminal(t *testing.T) {
	d := NewDecoder(strings.NewReader(chunk("a") + "data: [DONE]\n"))
	events := drain(t, d)

	terminals := 0
	for i, ev := range events {
		if core.IsTerminal(ev) {
			terminals++
			if i != len(events)-1 {
				t.Fatalf("terminal event at index %d is not last", i)
			}
		}
	}
	if terminals != 1 {
		t.Fatalf("expected exactly one terminal event, got %d", terminals)
	}

	// Exhausted decoders stay exhausted.
	if ev, ok := d.Next(); ok {
		t.Fatalf("Next after terminal returned %+v", ev)
	}
}

var _ io.Reader = (*failingReader)(nil)
