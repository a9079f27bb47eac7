package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds a single completion including retries.
	Timeout time.Duration `yaml:"timeout"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "claude-haiku"
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "gemini-flash"
	BaseURL string `yaml:"base_url"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.5-flash"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     90 * time.Second,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// ApplyEnv overlays QUIZFORGE_* environment variables onto c. It reports
// whether the provider was chosen explicitly.
func (c *Config) ApplyEnv() bool {
	explicit := false
	if p := os.Getenv("QUIZFORGE_LLM_PROVIDER"); p != "" {
		c.Provider = p
		explicit = true
	}

	setString(&c.Anthropic.APIKey, "QUIZFORGE_ANTHROPIC_API_KEY")
	setString(&c.Anthropic.Model, "QUIZFORGE_ANTHROPIC_MODEL")
	setString(&c.OpenAI.APIKey, "QUIZFORGE_OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "QUIZFORGE_OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "QUIZFORGE_OPENAI_BASE_URL")
	setString(&c.Gemini.APIKey, "QUIZFORGE_GEMINI_API_KEY")
	setString(&c.Gemini.Model, "QUIZFORGE_GEMINI_MODEL")
	setString(&c.OpenRouter.APIKey, "QUIZFORGE_OPENROUTER_API_KEY")
	setString(&c.OpenRouter.Model, "QUIZFORGE_OPENROUTER_MODEL")

	if v := os.Getenv("QUIZFORGE_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("QUIZFORGE_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv("QUIZFORGE_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}

	// Standard key variables fill in for an explicitly chosen provider.
	setIfEmpty(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setIfEmpty(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&c.OpenRouter.APIKey, "OPENROUTER_API_KEY")

	return explicit
}

// Discover selects the first provider with a key already present, probing
// in priority order Gemini, OpenAI, Anthropic, OpenRouter. It reports
// whether one was found.
func (c *Config) Discover() bool {
	switch {
	case c.Gemini.APIKey != "":
		c.Provider = "gemini"
	case c.OpenAI.APIKey != "":
		c.Provider = "openai"
	case c.Anthropic.APIKey != "":
		c.Provider = "anthropic"
	case c.OpenRouter.APIKey != "":
		c.Provider = "openrouter"
	default:
		return false
	}
	return true
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_OPENAI_API_KEY or OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_GEMINI_API_KEY or GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_OPENROUTER_API_KEY or OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		setString(dst, key)
	}
}
