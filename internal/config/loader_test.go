package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 18990, cfg.Gateway.Port)
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Bind)
	assert.Equal(t, "local", cfg.Gateway.Auth.Owner)
	assert.Equal(t, "claude", cfg.LLM.DefaultModel)
	assert.Equal(t, "claude-3-5-sonnet-20240620", cfg.LLM.AnthropicModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.GroqModel)
	assert.Equal(t, []string{"gemini-1.5-flash-001", "gemini-1.5-pro", "gemini-1.5-flash"}, cfg.Transcribe.Models)
	assert.Equal(t, 8000, cfg.Scrape.MaxContentChars)
	assert.Equal(t, 20, cfg.Chat.HistoryWindow)
	assert.Equal(t, 3, cfg.Chat.MaxScrapedURLs)
	assert.Equal(t, DefaultURLPattern, cfg.Chat.URLPattern)
	assert.Equal(t, 2048, cfg.Chat.MaxTokens)
	assert.NotEmpty(t, cfg.Chat.FallbackPrompt)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 9001
llm:
  defaultModel: grok
chat:
  historyWindow: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Gateway.Port)
	assert.Equal(t, "grok", cfg.LLM.DefaultModel)
	assert.Equal(t, 5, cfg.Chat.HistoryWindow)
	// Untouched fields still defaulted.
	assert.Equal(t, 3, cfg.Chat.MaxScrapedURLs)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "gateway: [not a map")

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ExpandsEnvRefsInCredentials(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-from-env")
	path := writeConfig(t, `
llm:
  anthropicApiKey: ${TEST_ANTHROPIC_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.LLM.AnthropicAPIKey)
}

func TestLoad_UnsetEnvRefLeftVerbatim(t *testing.T) {
	path := writeConfig(t, `
llm:
  groqApiKey: ${DEFINITELY_NOT_SET_VAR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_VAR}", cfg.LLM.GroqAPIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DAYNOTE_GATEWAY_PORT", "7777")
	t.Setenv("DAYNOTE_GATEWAY_TOKEN", "tok-env")
	t.Setenv("DAYNOTE_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Gateway.Port)
	assert.Equal(t, "tok-env", cfg.Gateway.Auth.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ProviderEnvKeysAreFallbacks(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")
	path := writeConfig(t, `
llm:
  anthropicApiKey: sk-config
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-config", cfg.LLM.AnthropicAPIKey, "config value wins over env fallback")

	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.AnthropicAPIKey, "env fills the gap when config is silent")
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYNOTE_HOME", dir)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, dir, paths.Base)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(dir, "daynote.db"), paths.DB)
	assert.Equal(t, filepath.Join(dir, "blobs"), paths.Blobs)

	require.NoError(t, paths.EnsureDirs())
	info, err := os.Stat(paths.Blobs)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
