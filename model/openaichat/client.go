// Package openaichat streams chat completions from any OpenAI-compatible
// endpoint using the raw wire protocol: one streaming HTTP POST per reply,
// decoded record by record with the sse package. It is the default backend
// because it works against hosted APIs and local inference servers alike.
package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/logging"
	"github.com/Ouuuuuuuuuuu/poli/model"
	"github.com/Ouuuuuuuuuuu/poli/sse"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	completionPath = "/chat/completions"

	// maxErrorBody caps how much of a non-success response body is carried
	// into the surfaced UpstreamError.
	maxErrorBody = 2048
)

// Options configure the raw OpenAI-compatible client.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int64
	HTTPClient  *http.Client
	Logger      logging.Logger
}

// Client implements model.Model over the raw streaming wire protocol.
type Client struct {
	opts Options
}

// New creates a client with the given overrides applied to sane defaults.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:     defaultBaseURL,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1024,
		HTTPClient:  &http.Client{},
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{opts: opts}
}

// requestBody is the wire shape of one streaming completion request.
type requestBody struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int64           `json:"max_tokens"`
	Stream      bool            `json:"stream"`
}

// StreamReply implements model.Model. It issues the POST, verifies the
// status and then forwards decoder events until the terminal one. Exactly
// one terminal event is emitted in every path, including connection failure
// before any byte arrives.
func (c *Client) StreamReply(ctx context.Context, req model.Request) <-chan core.StreamEvent {
	out := make(chan core.StreamEvent, 16)

	go func() {
		defer close(out)
		started := time.Now()

		resp, err := c.connect(ctx, req)
		if err != nil {
			out <- core.Failed{Cause: err}
			return
		}
		defer resp.Body.Close()

		dec := sse.NewDecoder(resp.Body, func(o *sse.DecoderOptions) { o.Logger = c.opts.Logger })
		deltas := 0
		for {
			ev, ok := dec.Next()
			if !ok {
				return
			}
			if _, isDelta := ev.(core.Delta); isDelta {
				deltas++
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				out <- core.Failed{Cause: &core.ConnectionError{Err: ctx.Err()}}
				return
			}
			if core.IsTerminal(ev) {
				c.opts.Logger.Debug("stream finished", "model", c.opts.Model, "deltas", deltas, "duration", time.Since(started))
				return
			}
		}
	}()
	return out
}

// connect issues the streaming POST and validates the response status.
func (c *Client) connect(ctx context.Context, req model.Request) (*http.Response, error) {
	body, err := json.Marshal(requestBody{
		Model:       c.opts.Model,
		Messages:    req.Messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+completionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.opts.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &core.ConnectionError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &core.UpstreamError{Status: resp.StatusCode, Body: string(snippet)}
	}
	return resp, nil
}

// Info returns metadata describing this backend.
func (c *Client) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "openai-compatible"}
}
