package config

import "time"

// Settings are the resolved flowcanvasd server settings.
type Settings struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// StorePath is the SQLite database path, or ":memory:".
	StorePath string

	// LLMEndpoint is the completion endpoint URL.
	LLMEndpoint string

	// LLMAPIKey is the bearer token for the completion endpoint.
	LLMAPIKey string

	// LLMTimeout bounds each completion call.
	LLMTimeout time.Duration

	// DefaultModel is used for nodes with no model configured.
	DefaultModel string

	// HistoryLimit caps the undo stack per session.
	HistoryLimit int
}

// Default settings.
const (
	DefaultListenAddr   = ":8080"
	DefaultStorePath    = "./workflows.db"
	DefaultLLMTimeout   = 2 * time.Minute
	DefaultHistoryLimit = 50
)

// Load resolves settings from a Config, applying defaults for
// missing keys. Environment-variable overrides are the caller's
// concern (flowcanvasd applies them after loading).
func Load(c Config) Settings {
	return Settings{
		ListenAddr:   c.String("listen_addr", DefaultListenAddr),
		StorePath:    c.String("store_path", DefaultStorePath),
		LLMEndpoint:  c.String("llm_endpoint", ""),
		LLMAPIKey:    c.String("llm_api_key", ""),
		LLMTimeout:   c.Duration("llm_timeout", DefaultLLMTimeout),
		DefaultModel: c.String("default_model", ""),
		HistoryLimit: c.Int("history_limit", DefaultHistoryLimit),
	}
}
