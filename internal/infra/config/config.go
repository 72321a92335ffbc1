package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Chat    ChatConfig    `yaml:"chat"`
	Engine  EngineConfig  `yaml:"engine"`
	Webhook WebhookConfig `yaml:"webhook"`
	History HistoryConfig `yaml:"history"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Port         int             `yaml:"port"`
	Environment  string          `yaml:"environment"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains settings for the OpenAI-compatible completion service.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// ChatConfig tunes the dispatcher behavior.
type ChatConfig struct {
	SystemPrompt  string `yaml:"systemPrompt"`
	MaxToolRounds int    `yaml:"maxToolRounds"`
	HistoryWindow int    `yaml:"historyWindow"`
	Timezone      string `yaml:"timezone"`
}

// EngineConfig points at the external natal calculation engine.
type EngineConfig struct {
	BaseURL    string        `yaml:"baseUrl"`
	Path       string        `yaml:"path"`
	APIKey     string        `yaml:"apiKey"`
	AuthScheme string        `yaml:"authScheme"`
	Timeout    time.Duration `yaml:"timeout"`
}

// WebhookConfig points at the n8n report workflow. The URL doubles as the
// access credential, so it is treated as a secret.
type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig controls the optional session memory store.
type HistoryConfig struct {
	ValkeyEnabled bool          `yaml:"valkeyEnabled"`
	ValkeyAddr    string        `yaml:"valkeyAddr"`
	TTL           time.Duration `yaml:"ttl"`
	MaxTurns      int           `yaml:"maxTurns"`
}

// Auth schemes accepted for the calculation engine key. The upstream API
// has shipped both across revisions, so the scheme stays configurable.
const (
	AuthSchemeHeader = "header"
	AuthSchemeBearer = "bearer"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = parsed
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.HTTP.Environment = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("CHAT_SYSTEM_PROMPT"); v != "" {
		cfg.Chat.SystemPrompt = v
	}
	if v := os.Getenv("CHAT_MAX_TOOL_ROUNDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxToolRounds = parsed
		}
	}
	if v := os.Getenv("CHAT_HISTORY_WINDOW"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.HistoryWindow = parsed
		}
	}
	if v := os.Getenv("CHAT_TIMEZONE"); v != "" {
		cfg.Chat.Timezone = v
	}
	if v := os.Getenv("CALC_ENGINE_URL"); v != "" {
		cfg.Engine.BaseURL = v
	}
	if v := os.Getenv("CALC_ENGINE_PATH"); v != "" {
		cfg.Engine.Path = v
	}
	if v := os.Getenv("CALC_ENGINE_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("CALC_ENGINE_AUTH_SCHEME"); v != "" {
		cfg.Engine.AuthScheme = strings.ToLower(v)
	}
	if v := os.Getenv("CALC_ENGINE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Engine.Timeout = parsed
		}
	}
	if v := os.Getenv("N8N_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("N8N_WEBHOOK_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Webhook.Timeout = parsed
		}
	}
	if v := os.Getenv("HISTORY_VALKEY_ENABLED"); v != "" {
		cfg.History.ValkeyEnabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HISTORY_VALKEY_ADDR"); v != "" {
		cfg.History.ValkeyAddr = v
	}
	if v := os.Getenv("HISTORY_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.History.TTL = parsed
		}
	}
	if v := os.Getenv("HISTORY_MAX_TURNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxTurns = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:         8585,
			Environment:  "production",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			CORSOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.5,
		},
		Chat: ChatConfig{
			SystemPrompt:  defaultSystemPrompt,
			MaxToolRounds: 8,
			HistoryWindow: 20,
			Timezone:      "Europe/Istanbul",
		},
		Engine: EngineConfig{
			BaseURL:    "https://calc.yourdomain.com",
			Path:       "/natal/basic",
			AuthScheme: AuthSchemeHeader,
			Timeout:    10 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout: 60 * time.Second,
		},
		History: HistoryConfig{
			TTL:      24 * time.Hour,
			MaxTurns: 50,
		},
	}
}

const defaultSystemPrompt = "Sen AstraCalc AI, empatik ve bilgili bir astroloji danışmanısın. " +
	"Kullanıcılara astroloji konularında yardımcı olursun, açık ve anlaşılır açıklamalar yaparsın. " +
	"Doğum bilgileri verildiğinde güneş burcu hesaplamak veya tam doğum haritası raporu hazırlamak " +
	"için sana tanımlı araçları kullan. Araç bir hata bildirirse kullanıcıdan nazikçe düzeltilmiş bilgi iste."

// Validate ensures the configuration is safe to use. Secrets required in
// production fail loudly here instead of at first request.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.New("http.port must be in (0, 65535]")
	}
	if strings.TrimSpace(c.HTTP.Environment) == "" {
		return errors.New("http.environment cannot be empty")
	}
	if c.IsProduction() && strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey is required in production")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Chat.MaxToolRounds <= 0 {
		return errors.New("chat.maxToolRounds must be positive")
	}
	if c.Chat.HistoryWindow < 0 {
		return errors.New("chat.historyWindow cannot be negative")
	}
	if strings.TrimSpace(c.Chat.Timezone) == "" {
		return errors.New("chat.timezone cannot be empty")
	}
	if strings.TrimSpace(c.Engine.BaseURL) == "" {
		return errors.New("engine.baseUrl cannot be empty")
	}
	if !strings.HasPrefix(c.Engine.Path, "/") {
		return errors.New("engine.path must start with /")
	}
	if c.Engine.AuthScheme != AuthSchemeHeader && c.Engine.AuthScheme != AuthSchemeBearer {
		return fmt.Errorf("engine.authScheme must be %q or %q", AuthSchemeHeader, AuthSchemeBearer)
	}
	if c.Engine.Timeout <= 0 {
		return errors.New("engine.timeout must be positive")
	}
	if c.Webhook.Timeout <= 0 {
		return errors.New("webhook.timeout must be positive")
	}
	if c.History.ValkeyEnabled && strings.TrimSpace(c.History.ValkeyAddr) == "" {
		return errors.New("history.valkeyAddr cannot be empty when the valkey store is enabled")
	}
	if c.History.MaxTurns <= 0 {
		return errors.New("history.maxTurns must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.HTTP.Environment), "production")
}

// Address renders the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}
