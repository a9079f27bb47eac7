// Package config assembles runtime configuration from an optional .env
// file, an optional YAML file and QUIZFORGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
)

// Config is the complete runtime configuration.
type Config struct {
	LLM        llm.Config           `yaml:"llm"`
	Generation quiz.GeneratorConfig `yaml:"generation"`
	Grading    GradingConfig        `yaml:"grading"`
	Store      StoreConfig          `yaml:"store"`
	Notify     NotifyConfig         `yaml:"notify"`
	Log        LogConfig            `yaml:"log"`
}

// GradingConfig bounds a grading run.
type GradingConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig locates the SQLite database. An empty Path means the
// default XDG location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig selects the notification sink. Without a Redis URL
// notifications are only logged.
type NotifyConfig struct {
	RedisURL      string `yaml:"redis_url"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// LogConfig selects the logger mode: "dev" or "prod".
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:        llm.DefaultConfig(),
		Generation: quiz.DefaultGeneratorConfig(),
		Grading:    GradingConfig{Timeout: 3 * time.Minute},
		Notify:     NotifyConfig{ChannelPrefix: "quizforge:user:"},
		Log:        LogConfig{Mode: "dev"},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// QUIZFORGE_CONFIG is consulted, and without either only defaults and the
// environment apply. Values from the environment win over the file.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()
	defaultProvider := cfg.LLM.Provider
	cfg.LLM.Provider = ""

	if path == "" {
		path = os.Getenv("QUIZFORGE_CONFIG")
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	explicit := cfg.LLM.Provider != ""
	if cfg.LLM.ApplyEnv() {
		explicit = true
	}
	if !explicit && !cfg.LLM.Discover() {
		cfg.LLM.Provider = defaultProvider
	}

	if v := os.Getenv("QUIZFORGE_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("QUIZFORGE_REDIS_URL"); v != "" {
		cfg.Notify.RedisURL = v
	}
	if v := os.Getenv("QUIZFORGE_DB"); v != "" {
		cfg.Store.Path = v
	}
	if cfg.Generation.RefineConcurrency < 1 {
		cfg.Generation.RefineConcurrency = quiz.DefaultGeneratorConfig().RefineConcurrency
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the parts needed to talk to a completion service.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}
	switch c.Log.Mode {
	case "dev", "development", "prod", "production":
	default:
		errs = append(errs, fmt.Errorf("log.mode: unknown mode %q", c.Log.Mode))
	}
	return errors.Join(errs...)
}
