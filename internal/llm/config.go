package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderNone       = "none"
	ProviderMock       = "mock"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// providerDefaults lists the hosted providers in discovery order with the
// standard key variable each SDK documents and the default model.
var providerDefaults = []struct {
	name    string
	keyEnv  string
	model   string
	baseURL string
}{
	{ProviderGemini, "GEMINI_API_KEY", "gemini-2.0-flash", ""},
	{ProviderOpenAI, "OPENAI_API_KEY", "gpt-4o-mini", ""},
	{ProviderAnthropic, "ANTHROPIC_API_KEY", "claude-haiku-4-5-20251001", ""},
	{ProviderOpenRouter, "OPENROUTER_API_KEY", "google/gemini-2.0-flash-001", "https://openrouter.ai/api/v1"},
}

// Config selects and configures the single active provider.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string
	APIKey   string

	// Model and BaseURL default per provider when empty.
	Model   string
	BaseURL string

	Retry RetryConfig

	// Timeout bounds one call including retries.
	Timeout time.Duration
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration

	// OnRetry, when set, observes each failure that is about to be retried.
	OnRetry func(kind Kind)
}

// DefaultConfig disables the LLM. Calls sit on the request path, so the
// retry budget is small.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderNone,
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 250 * time.Millisecond,
			MaxWait:     2 * time.Second,
		},
		Timeout: 10 * time.Second,
	}
}

const envPrefix = "NEUROSCREEN_LLM_"

// ResolveConfig reads NEUROSCREEN_LLM_PROVIDER, _API_KEY, _MODEL, _BASE_URL
// and _TIMEOUT. Without an explicit provider the first standard key
// variable found (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OPENROUTER_API_KEY) selects one.
func ResolveConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv(envPrefix + "PROVIDER"); v != "" {
		cfg.Provider = v
		cfg.APIKey = os.Getenv(envPrefix + "API_KEY")
		for _, d := range providerDefaults {
			if d.name == v && cfg.APIKey == "" {
				cfg.APIKey = os.Getenv(d.keyEnv)
			}
		}
	} else {
		for _, d := range providerDefaults {
			if k := os.Getenv(d.keyEnv); k != "" {
				cfg.Provider, cfg.APIKey = d.name, k
				break
			}
		}
	}
	cfg.Model = os.Getenv(envPrefix + "MODEL")
	cfg.BaseURL = os.Getenv(envPrefix + "BASE_URL")
	if d, err := time.ParseDuration(os.Getenv(envPrefix + "TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	for _, d := range providerDefaults {
		if d.name != c.Provider {
			continue
		}
		if c.Model == "" {
			c.Model = d.model
		}
		if c.BaseURL == "" {
			c.BaseURL = d.baseURL
		}
	}
	return c
}

// Validate checks the provider name and that hosted providers have a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderNone, ProviderMock:
		return nil
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("%sAPI_KEY is required for the %s provider", envPrefix, c.Provider)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider %q", c.Provider)
}
