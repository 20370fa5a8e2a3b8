// Package config provides configuration loading and validation for the
// interview engine and its CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-agent/internal/llm"
)

// Config is the engine configuration. Values can come from a JSON file,
// the environment, or both; the environment wins.
type Config struct {
	// Gemini (primary remote backend)
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty"`

	// Groq (fast remote backend), skipped when no key is set
	GroqAPIKey  string `json:"groq_api_key,omitempty"`
	GroqBaseURL string `json:"groq_base_url,omitempty" validate:"omitempty,url"`
	GroqModel   string `json:"groq_model,omitempty"`

	// Local LM Studio backend, tried first when enabled
	UseLocalLLM  bool   `json:"use_local_llm,omitempty"`
	LocalBaseURL string `json:"local_base_url,omitempty" validate:"omitempty,url"`
	LocalModel   string `json:"local_model,omitempty"`

	// CacheTTLMinutes controls plan and question memoization lifetime.
	CacheTTLMinutes int `json:"cache_ttl_minutes,omitempty" validate:"gte=0"`

	// Logging
	JSONLogs bool `json:"json_logs,omitempty"`
	Debug    bool `json:"debug,omitempty"`
}

var validate = validator.New()

// Load reads the optional JSON config file, overlays environment variables,
// fills defaults, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns an unvalidated configuration built from the environment
// and defaults only. Used for offline runs where no backend is required.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func loadFile(path string) (*Config, error) {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks field formats and that at least one backend is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.GeminiAPIKey == "" && c.GroqAPIKey == "" && !c.UseLocalLLM {
		return fmt.Errorf("config error: no backend configured; set GEMINI_API_KEY, GROQ_API_KEY, or USE_LOCAL_LLM=true")
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	setString(&c.GroqAPIKey, "GROQ_API_KEY")
	setString(&c.GroqBaseURL, "GROQ_BASE_URL")
	setString(&c.GroqModel, "GROQ_MODEL")
	setBool(&c.UseLocalLLM, "USE_LOCAL_LLM")
	setString(&c.LocalBaseURL, "LOCAL_LLM_BASE_URL")
	setString(&c.LocalModel, "LOCAL_LLM_MODEL")
	setInt(&c.CacheTTLMinutes, "CACHE_TTL_MINUTES")
	setBool(&c.JSONLogs, "JSON_LOGS")
	setBool(&c.Debug, "DEBUG")
}

func (c *Config) applyDefaults() {
	defaults := llm.DefaultConfig()
	if c.GeminiModel == "" {
		c.GeminiModel = defaults.GeminiModel
	}
	if c.GroqBaseURL == "" {
		c.GroqBaseURL = defaults.GroqBaseURL
	}
	if c.GroqModel == "" {
		c.GroqModel = defaults.GroqModel
	}
	if c.LocalBaseURL == "" {
		c.LocalBaseURL = defaults.LocalBaseURL
	}
	if c.LocalModel == "" {
		c.LocalModel = defaults.LocalModel
	}
	if c.CacheTTLMinutes == 0 {
		c.CacheTTLMinutes = 60
	}
}

// CacheTTL returns the memoization lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// LLMConfig converts the engine configuration into the backend settings
// consumed by the dispatcher constructors.
func (c *Config) LLMConfig() *llm.Config {
	return &llm.Config{
		GeminiAPIKey: c.GeminiAPIKey,
		GeminiModel:  c.GeminiModel,
		GroqAPIKey:   c.GroqAPIKey,
		GroqBaseURL:  c.GroqBaseURL,
		GroqModel:    c.GroqModel,
		UseLocalLLM:  c.UseLocalLLM,
		LocalBaseURL: c.LocalBaseURL,
		LocalModel:   c.LocalModel,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}
