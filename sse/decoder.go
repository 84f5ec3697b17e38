package sse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/logging"
)

const (
	// dataPrefix frames one event record on the wire.
	dataPrefix = "data:"
	// endMarker is the literal payload that ends a stream politely.
	endMarker = "[DONE]"
	// deltaPath is the fixed JSON path of the incremental content fragment
	// inside a chat-completion chunk.
	deltaPath = "choices.0.delta.content"
)

// Decoder turns a raw chunked byte stream framed as server-sent-event
// records into an ordered, finite sequence of core.StreamEvent values.
//
// Tolerance rules:
//   - lines that do not match the "data:" envelope are silently discarded
//   - a payload that is not valid JSON is skipped (logged, not fatal) and
//     decoding continues
//   - chunks whose content fragment is absent or empty (role preludes,
//     finish chunks) are skipped silently
//
// Termination rules:
//   - the literal end-marker payload terminates with Done, not a Delta
//   - EOF without the end-marker also terminates with Done; the decoder does
//     not distinguish polite from abrupt clean closure
//   - any other transport error terminates with Failed
type Decoder struct {
	r       *bufio.Reader
	logger  logging.Logger
	done    bool
	pending core.StreamEvent // terminal event held back behind a final delta
}

// DecoderOptions configure a Decoder.
type DecoderOptions struct {
	Logger logging.Logger
}

// NewDecoder wraps the byte source, typically a streaming HTTP response body.
func NewDecoder(r io.Reader, optFns ...func(o *DecoderOptions)) *Decoder {
	opts := DecoderOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Decoder{r: bufio.NewReader(r), logger: opts.Logger}
}

// Next returns the next event in the sequence. After a terminal event has
// been returned the second result is false and no further events are
// produced. The terminal event itself is returned with ok == true.
func (d *Decoder) Next() (core.StreamEvent, bool) {
	if d.done {
		return nil, false
	}
	if d.pending != nil {
		ev := d.pending
		d.pending = nil
		d.done = true
		return ev, true
	}
	for {
		line, err := d.r.ReadString('\n')
		// A partial last line can still carry a full record.
		if ev, ok := d.decodeLine(line); ok {
			if core.IsTerminal(ev) {
				d.done = true
				return ev, true
			}
			if err != nil {
				// Deliver the fragment now; its terminal follows on the next call.
				if errors.Is(err, io.EOF) {
					d.pending = core.Done{}
				} else {
					d.pending = core.Failed{Cause: &core.ConnectionError{Err: err}}
				}
			}
			return ev, true
		}
		if err != nil {
			d.done = true
			if errors.Is(err, io.EOF) {
				return core.Done{}, true
			}
			return core.Failed{Cause: &core.ConnectionError{Err: err}}, true
		}
	}
}

// decodeLine decodes one raw line into an event. ok is false when the line
// carries nothing to surface (blank line, comment, skipped record).
func (d *Decoder) decodeLine(line string) (core.StreamEvent, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" {
		return nil, false
	}
	if payload == endMarker {
		return core.Done{}, true
	}
	if !gjson.Valid(payload) {
		perr := &core.ProtocolError{Record: payload, Err: fmt.Errorf("invalid JSON payload")}
		d.logger.Warn("skipping malformed stream record", "error", perr.Error())
		return nil, false
	}
	content := gjson.Get(payload, deltaPath)
	if !content.Exists() || content.String() == "" {
		return nil, false
	}
	return core.Delta{Text: content.String()}, true
}
