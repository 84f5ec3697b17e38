// Command poli runs an interactive panel discussion in the terminal: each
// line you type starts one round, and every panelist's reply streams to the
// screen in whichever order the agents produce output.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/Ouuuuuuuuuuu/poli"
	"github.com/Ouuuuuuuuuuu/poli/config"
	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/logging"
	"github.com/Ouuuuuuuuuuu/poli/model"
	"github.com/Ouuuuuuuuuuu/poli/model/anthropic"
	"github.com/Ouuuuuuuuuuu/poli/model/openai"
	"github.com/Ouuuuuuuuuuu/poli/model/openaichat"
)

func main() {
	configPath := flag.String("config", "", "path to panel config YAML (built-in demo panel when empty)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "poli:", err)
		os.Exit(1)
	}
}

func run(configPath string, verbose bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Missing credential is fatal before any round starts.
	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	mdl, err := buildModel(cfg, apiKey)
	if err != nil {
		return err
	}

	roster := cfg.Roster()
	sink := newConsoleSink(roster)
	p, err := poli.New(cfg, mdl, func(o *poli.Options) {
		o.Sink = sink
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	fmt.Printf("panel: %s (model %s via %s)\n", strings.Join(labels(roster), ", "), cfg.Model.Name, mdl.Info().Provider)
	fmt.Println("type a message to start a round, ctrl-d to leave")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nyou> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res, err := p.RunRound(context.Background(), line)
		if err != nil {
			return err
		}
		sink.endRound()
		for key, cause := range res.Failures {
			agent, _ := roster.Find(key)
			fmt.Printf("[%s] (no reply: %v)\n", agent.Label, cause)
		}
	}
}

// buildModel selects the backend for the configured provider.
func buildModel(cfg *config.Config, apiKey string) (model.Model, error) {
	switch cfg.Model.Provider {
	case config.ProviderOpenAICompatible:
		return openaichat.New(func(o *openaichat.Options) {
			if cfg.Model.BaseURL != "" {
				o.BaseURL = cfg.Model.BaseURL
			}
			o.APIKey = apiKey
			o.Model = cfg.Model.Name
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = cfg.Model.MaxTokens
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Model.Name
			o.Temperature = cfg.Model.Temperature
			o.MaxCompletionTokens = cfg.Model.MaxTokens
			o.APIKey = apiKey
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model.Name)
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = cfg.Model.MaxTokens
			o.APIKey = apiKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Model.Provider)
	}
}

func labels(roster core.Roster) []string {
	out := make([]string, len(roster))
	for i, a := range roster {
		out[i] = a.Label
	}
	return out
}

// consoleSink paints interleaved agent output, printing a speaker header
// whenever the streaming agent changes.
type consoleSink struct {
	roster  core.Roster
	current string
}

func newConsoleSink(roster core.Roster) *consoleSink {
	return &consoleSink{roster: roster}
}

func (s *consoleSink) OnDelta(agentKey, text string) {
	if s.current != agentKey {
		agent, _ := s.roster.Find(agentKey)
		fmt.Printf("\n[%s] ", agent.Label)
		s.current = agentKey
	}
	fmt.Print(text)
}

func (s *consoleSink) OnDone(agentKey, fullText string) {
	if s.current == agentKey {
		fmt.Println()
		s.current = ""
	}
}

func (s *consoleSink) OnFailed(agentKey string, err error) {
	if s.current == agentKey {
		fmt.Println()
		s.current = ""
	}
}

// endRound resets the speaker tracking between rounds.
func (s *consoleSink) endRound() { s.current = "" }
