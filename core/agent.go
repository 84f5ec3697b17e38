package core

import "fmt"

// Agent describes one panel speaker: a stable key used for identity, a
// display label used when rendering transcripts, and an opaque persona
// directive passed verbatim to the generation request. Agents are immutable
// after registration; the roster is fixed at process start.
type Agent struct {
	Key     string `yaml:"key" json:"key"`
	Label   string `yaml:"label" json:"label"`
	Persona string `yaml:"persona" json:"persona"`
}

// Roster is the fixed, ordered set of configured agents for a panel.
// Ordering matters only for launch order and display; reply ordering within
// a round follows stream arrival, never roster position.
type Roster []Agent

// Find returns the agent with the given key and whether it exists.
func (r Roster) Find(key string) (Agent, bool) {
	for _, a := range r {
		if a.Key == key {
			return a, true
		}
	}
	return Agent{}, false
}

// Keys returns the agent keys in roster order.
func (r Roster) Keys() []string {
	keys := make([]string, len(r))
	for i, a := range r {
		keys[i] = a.Key
	}
	return keys
}

// Validate checks the roster invariants: at least one agent, non-empty keys
// and no duplicate keys. It is a fatal precondition failure for a round to
// start with an invalid roster.
func (r Roster) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]bool, len(r))
	for i, a := range r {
		if a.Key == "" {
			return fmt.Errorf("roster entry %d: empty agent key", i)
		}
		if seen[a.Key] {
			return fmt.Errorf("duplicate agent key %q", a.Key)
		}
		seen[a.Key] = true
	}
	return nil
}
