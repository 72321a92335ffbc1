package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8585, cfg.HTTP.Port)
	require.Equal(t, ":8585", cfg.Address())
	require.False(t, cfg.IsProduction())
	require.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, float32(0.5), cfg.LLM.Temperature)
	require.Equal(t, 8, cfg.Chat.MaxToolRounds)
	require.Equal(t, 20, cfg.Chat.HistoryWindow)
	require.Equal(t, "Europe/Istanbul", cfg.Chat.Timezone)
	require.NotEmpty(t, cfg.Chat.SystemPrompt)
	require.Equal(t, "/natal/basic", cfg.Engine.Path)
	require.Equal(t, AuthSchemeHeader, cfg.Engine.AuthScheme)
	require.Equal(t, 10*time.Second, cfg.Engine.Timeout)
	require.Equal(t, 60*time.Second, cfg.Webhook.Timeout)
	require.Equal(t, 24*time.Hour, cfg.History.TTL)
	require.Equal(t, 50, cfg.History.MaxTurns)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("CHAT_MAX_TOOL_ROUNDS", "4")
	t.Setenv("CALC_ENGINE_URL", "https://engine.internal")
	t.Setenv("CALC_ENGINE_PATH", "/natal")
	t.Setenv("CALC_ENGINE_AUTH_SCHEME", "BEARER")
	t.Setenv("CALC_ENGINE_TIMEOUT", "15s")
	t.Setenv("N8N_WEBHOOK_URL", "https://n8n.internal/webhook/xyz")
	t.Setenv("HISTORY_VALKEY_ENABLED", "true")
	t.Setenv("HISTORY_VALKEY_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.HTTP.Port)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, float32(0.2), cfg.LLM.Temperature)
	require.Equal(t, 4, cfg.Chat.MaxToolRounds)
	require.Equal(t, "https://engine.internal", cfg.Engine.BaseURL)
	require.Equal(t, "/natal", cfg.Engine.Path)
	require.Equal(t, AuthSchemeBearer, cfg.Engine.AuthScheme)
	require.Equal(t, 15*time.Second, cfg.Engine.Timeout)
	require.Equal(t, "https://n8n.internal/webhook/xyz", cfg.Webhook.URL)
	require.True(t, cfg.History.ValkeyEnabled)
	require.Equal(t, "localhost:6379", cfg.History.ValkeyAddr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7070
  environment: staging
llm:
  model: gpt-4o
engine:
  baseUrl: https://engine.staging.internal
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.HTTP.Port)
	require.Equal(t, "staging", cfg.HTTP.Environment)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "https://engine.staging.internal", cfg.Engine.BaseURL)
	// untouched sections keep their defaults
	require.Equal(t, 8, cfg.Chat.MaxToolRounds)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7070
  environment: development
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9001")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.HTTP.Port)
}

func TestLoadProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "llm.apiKey")

	t.Setenv("LLM_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.HTTP.Port = 0 }},
		{"empty model", func(c *Config) { c.LLM.Model = "" }},
		{"zero tool rounds", func(c *Config) { c.Chat.MaxToolRounds = 0 }},
		{"empty timezone", func(c *Config) { c.Chat.Timezone = "" }},
		{"empty engine url", func(c *Config) { c.Engine.BaseURL = "" }},
		{"relative engine path", func(c *Config) { c.Engine.Path = "natal" }},
		{"unknown auth scheme", func(c *Config) { c.Engine.AuthScheme = "basic" }},
		{"valkey enabled without addr", func(c *Config) { c.History.ValkeyEnabled = true }},
		{"rate limit without rpm", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.HTTP.Environment = "development"
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
