package core

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies the kind of speaker that produced a turn.
type Author string

const (
	// AuthorUser marks a turn typed by the human user.
	AuthorUser Author = "user"
	// AuthorAgent marks a turn produced by a panel agent.
	AuthorAgent Author = "agent"
)

// UserLabel is the display label used for user turns in rendered transcripts.
const UserLabel = "User"

// Turn is one utterance in the conversation. Turns are immutable once
// appended to a history; Seq is assigned at append time and is strictly
// increasing (1 + count of prior appends).
type Turn struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Author    Author    `json:"author"`
	AgentKey  string    `json:"agent_key,omitempty"` // set for agent turns only
	Label     string    `json:"label"`               // display label of the speaker
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn creates an unappended user turn. Seq is zero until the turn is
// appended to a history.
func NewUserTurn(text string) Turn {
	return Turn{
		ID:        NewID(),
		Author:    AuthorUser,
		Label:     UserLabel,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentTurn creates an unappended agent turn authored by the given agent.
func NewAgentTurn(agent Agent, text string) Turn {
	return Turn{
		ID:        NewID(),
		Author:    AuthorAgent,
		AgentKey:  agent.Key,
		Label:     agent.Label,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for turns, sessions and rounds.
func NewID() string { return uuid.NewString() }
