package config

import (
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Gateway.Auth.Token = expandEnvVars(cfg.Gateway.Auth.Token)
	cfg.LLM.AnthropicAPIKey = expandEnvVars(cfg.LLM.AnthropicAPIKey)
	cfg.LLM.GroqAPIKey = expandEnvVars(cfg.LLM.GroqAPIKey)
	cfg.Transcribe.GeminiAPIKey = expandEnvVars(cfg.Transcribe.GeminiAPIKey)
	cfg.Scrape.FirecrawlAPIKey = expandEnvVars(cfg.Scrape.FirecrawlAPIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18990
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "127.0.0.1"
	}
	if cfg.Gateway.Auth.Owner == "" {
		cfg.Gateway.Auth.Owner = "local"
	}
	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = "claude"
	}
	if cfg.LLM.AnthropicModel == "" {
		cfg.LLM.AnthropicModel = "claude-3-5-sonnet-20240620"
	}
	if cfg.LLM.GroqModel == "" {
		cfg.LLM.GroqModel = "llama-3.3-70b-versatile"
	}
	if len(cfg.Transcribe.Models) == 0 {
		cfg.Transcribe.Models = []string{"gemini-1.5-flash-001", "gemini-1.5-pro", "gemini-1.5-flash"}
	}
	if cfg.Scrape.Endpoint == "" {
		cfg.Scrape.Endpoint = "https://api.firecrawl.dev/v0/scrape"
	}
	if cfg.Scrape.MaxContentChars == 0 {
		cfg.Scrape.MaxContentChars = 8000
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = "Mozilla/5.0 (compatible; daynote-bot/1.0)"
	}
	if cfg.Chat.HistoryWindow == 0 {
		cfg.Chat.HistoryWindow = 20
	}
	if cfg.Chat.MaxScrapedURLs == 0 {
		cfg.Chat.MaxScrapedURLs = 3
	}
	if cfg.Chat.URLPattern == "" {
		cfg.Chat.URLPattern = DefaultURLPattern
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 2048
	}
	if cfg.Chat.FallbackPrompt == "" {
		cfg.Chat.FallbackPrompt = defaultFallbackPrompt
	}
	if cfg.Chat.PromptStyle == "" {
		cfg.Chat.PromptStyle = defaultPromptStyle
	}
	if cfg.Chat.PromptContext == "" {
		cfg.Chat.PromptContext = defaultPromptContext
	}
	if cfg.Chat.PromptRules == "" {
		cfg.Chat.PromptRules = defaultPromptRules
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads DAYNOTE_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DAYNOTE_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("DAYNOTE_GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Auth.Token = v
	}
	if v := os.Getenv("DAYNOTE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.LLM.AnthropicAPIKey == "" {
		cfg.LLM.AnthropicAPIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" && cfg.LLM.GroqAPIKey == "" {
		cfg.LLM.GroqAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.Transcribe.GeminiAPIKey == "" {
		cfg.Transcribe.GeminiAPIKey = v
	}
	if v := os.Getenv("FIRECRAWL_API_KEY"); v != "" && cfg.Scrape.FirecrawlAPIKey == "" {
		cfg.Scrape.FirecrawlAPIKey = v
	}
}
