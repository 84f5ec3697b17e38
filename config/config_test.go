package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
rules: Be curt.
agents:
  - key: ada
    label: Ada
    persona: You are Ada.
  - key: ben
    persona: You are Ben.
model:
  provider: openai-compatible
  name: test-model
  base_url: http://localhost:8080/v1
  temperature: 0.5
  max_tokens: 256
  timeout_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Be curt.", cfg.Rules)
	roster := cfg.Roster()
	require.Len(t, roster, 2)
	assert.Equal(t, "Ada", roster[0].Label)
	// Label falls back to the key when omitted.
	assert.Equal(t, "ben", roster[1].Label)
	assert.Equal(t, "http://localhost:8080/v1", cfg.Model.BaseURL)
	assert.Equal(t, 30, cfg.Model.TimeoutSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EmptyRosterRejected(t *testing.T) {
	path := writeConfig(t, `
agents: []
model:
  provider: openai
  name: m
  timeout_seconds: 30
`)
	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrEmptyRoster)
}

func TestLoad_UnknownProviderRejected(t *testing.T) {
	path := writeConfig(t, `
agents:
  - key: a
model:
  provider: telepathy
  name: m
  timeout_seconds: 30
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Roster())
}

func TestAPIKey(t *testing.T) {
	cfg := Default()

	t.Setenv(EnvAPIKey, "")
	t.Setenv("OPENAI_API_KEY", "")
	_, err := cfg.APIKey()
	require.True(t, errors.Is(err, core.ErrMissingAPIKey), "got %v", err)

	t.Setenv("OPENAI_API_KEY", "fallback-key")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", key)

	t.Setenv(EnvAPIKey, "primary-key")
	key, err = cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "primary-key", key)
}
