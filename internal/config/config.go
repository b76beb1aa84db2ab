package config

// DefaultURLPattern matches bare http(s) URLs in free text for
// auto-detected link scraping.
const DefaultURLPattern = "https?://[^\\s<>\"{}|\\\\^`\\[\\]]+"

// ConfigError indicates a malformed or unusable configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Message
}

// Defaults returns a Config with all tunables at their default values.
// Credentials default to empty, which routes the scraper to its degraded
// path and makes the backends fail fast with a configuration error.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}
