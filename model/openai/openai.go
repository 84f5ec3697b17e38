// Package openai provides a model backend using the official OpenAI SDK
// (Chat Completions with streaming). It adapts poli's normalized Request
// into the SDK's message format and the SDK's chunk stream back into
// core.StreamEvent values. Prefer the openaichat package when targeting
// self-hosted OpenAI-compatible servers; this adapter exists for users who
// already configure the official client (proxies, custom middlewares,
// organization settings).
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Model wraps the OpenAI Chat Completions API behind the model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// StreamReply implements model.Model by adapting the SDK's streaming chunks
// into ordered Delta events followed by one terminal event.
func (m *Model) StreamReply(ctx context.Context, req model.Request) <-chan core.StreamEvent {
	out := make(chan core.StreamEvent, 16)

	go func() {
		defer close(out)

		params := openai.ChatCompletionNewParams{
			Messages:            buildMessages(req),
			Model:               m.opts.Model,
			Temperature:         openai.Float(m.opts.Temperature),
			MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
		}

		stream := m.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content == "" {
					continue
				}
				select {
				case out <- core.Delta{Text: ch.Delta.Content}:
				case <-ctx.Done():
					out <- core.Failed{Cause: ctx.Err()}
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			out <- core.Failed{Cause: fmt.Errorf("openai streaming error: %w", err)}
			return
		}
		out <- core.Done{}
	}()
	return out
}

// buildMessages converts normalized messages into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case model.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
