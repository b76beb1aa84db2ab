package config

// Config is the root configuration for daynote.
// Credential fields drive fallback branches by presence or absence; their
// values are never validated beyond "present or not".
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway,omitempty"`
	Store      StoreConfig      `yaml:"store,omitempty"`
	Blobs      BlobConfig       `yaml:"blobs,omitempty"`
	LLM        LLMConfig        `yaml:"llm,omitempty"`
	Transcribe TranscribeConfig `yaml:"transcribe,omitempty"`
	Scrape     ScrapeConfig     `yaml:"scrape,omitempty"`
	Chat       ChatConfig       `yaml:"chat,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// GatewayConfig controls the inbound HTTP/WebSocket server.
type GatewayConfig struct {
	Port int         `yaml:"port,omitempty"`
	Bind string      `yaml:"bind,omitempty"`
	Auth GatewayAuth `yaml:"auth,omitempty"`
}

// GatewayAuth configures gateway authentication. The token owner is the
// identity all sessions and notes are scoped to.
type GatewayAuth struct {
	Token string `yaml:"token,omitempty"`
	Owner string `yaml:"owner,omitempty"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// BlobConfig locates the filesystem blob store.
type BlobConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"` // prefix for resolved blob URLs
}

// LLMConfig configures the two chat backends.
type LLMConfig struct {
	DefaultModel    string `yaml:"defaultModel,omitempty"` // "claude" | "grok"
	AnthropicAPIKey string `yaml:"anthropicApiKey,omitempty"`
	AnthropicModel  string `yaml:"anthropicModel,omitempty"`
	GroqAPIKey      string `yaml:"groqApiKey,omitempty"`
	GroqModel       string `yaml:"groqModel,omitempty"`
}

// TranscribeConfig configures the audio transcription backend.
// Models is the tiered fallback order; later entries are tried only after a
// "model not found" response from the prior one.
type TranscribeConfig struct {
	GeminiAPIKey string   `yaml:"geminiApiKey,omitempty"`
	Models       []string `yaml:"models,omitempty"`
}

// ScrapeConfig configures the content scraper.
type ScrapeConfig struct {
	FirecrawlAPIKey string `yaml:"firecrawlApiKey,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	MaxContentChars int    `yaml:"maxContentChars,omitempty"`
	UserAgent       string `yaml:"userAgent,omitempty"`
}

// ChatConfig tunes context assembly and prompt construction.
type ChatConfig struct {
	HistoryWindow  int    `yaml:"historyWindow,omitempty"`
	MaxScrapedURLs int    `yaml:"maxScrapedUrls,omitempty"`
	URLPattern     string `yaml:"urlPattern,omitempty"`
	MaxTokens      int    `yaml:"maxTokens,omitempty"`
	PromptStyle    string `yaml:"promptStyle,omitempty"`
	PromptContext  string `yaml:"promptContext,omitempty"`
	PromptRules    string `yaml:"promptRules,omitempty"`
	FallbackPrompt string `yaml:"fallbackPrompt,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
