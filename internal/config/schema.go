// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for contextd.
package config

// Config is the top-level configuration structure.
type Config struct {
	// Buffer tunes per-conversation context buffers.
	Buffer BufferConfig `yaml:"buffer"`

	// Sweep tunes the background idle-eviction job.
	Sweep SweepConfig `yaml:"sweep"`

	// Gateway configures the admin HTTP surface.
	Gateway GatewayConfig `yaml:"gateway"`

	// Summarizer configures the LLM endpoint used to fold older messages.
	// When absent, summarization degrades to placeholder digests.
	Summarizer *SummarizerConfig `yaml:"summarizer,omitempty"`

	// Store configures the persisted-message store used for resume.
	// When absent, resume operations are unavailable.
	Store *StoreConfig `yaml:"store,omitempty"`

	// Telemetry configures OTLP trace export.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BufferConfig tunes conversation buffers.
type BufferConfig struct {
	// MaxTokens is the summarization-trigger budget for new buffers.
	MaxTokens int `yaml:"max_tokens"`

	// SummarizeTimeout bounds each summarizer call (Go duration string).
	SummarizeTimeout string `yaml:"summarize_timeout"`
}

// SweepConfig tunes the idle-eviction sweep.
type SweepConfig struct {
	// Interval between sweep passes (Go duration string).
	Interval string `yaml:"interval"`

	// IdleTTL is the idle age past which a buffer is evicted.
	IdleTTL string `yaml:"idle_ttl"`
}

// GatewayConfig configures the admin HTTP server.
type GatewayConfig struct {
	// Listen is the bind address, e.g. ":8420".
	Listen string `yaml:"listen"`

	// BearerToken protects the admin endpoints. Empty disables them
	// (health and metrics stay public).
	BearerToken string `yaml:"bearer_token"`

	// StatsInterval is the push period for the WebSocket stats stream.
	StatsInterval string `yaml:"stats_interval"`

	// EnableMCP mounts the MCP tool surface under /mcp.
	EnableMCP bool `yaml:"enable_mcp"`
}

// SummarizerConfig configures the OpenAI-compatible summarization endpoint.
type SummarizerConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// StoreConfig configures the SQLite-backed persisted-message store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}
