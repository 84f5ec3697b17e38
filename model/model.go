package model

import (
	"context"

	"github.com/Ouuuuuuuuuuu/poli/core"
)

// Roles used in generation requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a generation request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request captures the normalized model input built for one session: the
// discussion rules and persona as the system message, the rendered
// transcript plus turn-taking instruction as the user message.
type Request struct {
	Messages []Message `json:"messages"`
}

// System returns the concatenated system message content, if any.
func (r Request) System() string {
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			return m.Content
		}
	}
	return ""
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai-compatible", "openai", "anthropic", "mock"
}

// Model is the minimal interface a panel session needs to stream one reply.
type Model interface {
	// StreamReply issues one generation call and returns the ordered event
	// sequence for it. The channel carries zero or more Delta events followed
	// by exactly one terminal event (Done or Failed) and is then closed.
	// Implementations must honor ctx cancellation by terminating the stream.
	StreamReply(ctx context.Context, req Request) <-chan core.StreamEvent

	// Info returns information about the model implementation.
	Info() Info
}
