// Package poli provides a high-level façade over the panel orchestrator:
// a fixed roster of speaker agents each stream a reply to the shared
// conversation, rendered in whichever order the agents actually produce
// output. Most applications interact with this package by:
//  1. Creating a Poli via New() with a config and a model backend
//  2. Calling RunRound for each user message
//  3. Observing live output through the panel.Sink callback
//
// The façade delegates orchestration to panel.Coordinator while keeping
// setup ergonomics concise. Defaults are safe for local development; supply
// a structured logger and tuned timeouts for real deployments.
package poli

import (
	"context"

	"github.com/Ouuuuuuuuuuu/poli/config"
	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/history"
	"github.com/Ouuuuuuuuuuu/poli/logging"
	"github.com/Ouuuuuuuuuuu/poli/model"
	"github.com/Ouuuuuuuuuuu/poli/panel"
)

// Options configures the Poli instance.
type Options struct {
	// Sink receives live per-agent output. Defaults to panel.NoOpSink.
	Sink panel.Sink
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// History lets callers resume an existing in-memory conversation.
	History *history.History
}

// Poli is the high-level façade aggregating the round coordinator and the
// shared conversation history.
type Poli struct {
	coordinator *panel.Coordinator
	roster      core.Roster
}

// New wires a panel from a validated config and a model backend.
func New(cfg *config.Config, mdl model.Model, optFns ...func(o *Options)) (*Poli, error) {
	opts := Options{
		Sink:    panel.NoOpSink{},
		Logger:  logging.NoOpLogger{},
		History: history.New(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	roster := cfg.Roster()
	dispatcher := panel.NewDispatcher(mdl, func(o *panel.DispatcherOptions) {
		o.Rules = cfg.Rules
		o.SessionTimeout = cfg.Model.Timeout()
		o.Logger = opts.Logger
	})
	coordinator, err := panel.NewCoordinator(roster, opts.History, dispatcher, func(o *panel.CoordinatorOptions) {
		o.Sink = opts.Sink
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}
	return &Poli{coordinator: coordinator, roster: roster}, nil
}

// RunRound appends the user message and drives one full round to completion.
func (p *Poli) RunRound(ctx context.Context, userMessage string) (*panel.RoundResult, error) {
	return p.coordinator.RunRound(ctx, userMessage)
}

// Roster returns the fixed panel roster.
func (p *Poli) Roster() core.Roster { return p.roster }

// History returns the shared conversation store.
func (p *Poli) History() *history.History { return p.coordinator.History() }
