package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Config is the JSON configuration file, after environment overrides.
type Config struct {
	ServerAddr            string        `json:"server_addr,omitempty"`
	BackendURL            string        `json:"backend_url,omitempty"`
	RequestTimeoutSeconds int           `json:"request_timeout_seconds,omitempty"`
	LLM                   *LLMConfig    `json:"llm,omitempty"`
	Search                SearchConfig  `json:"search"`
	Checker               CheckerConfig `json:"checker"`
	Redis                 RedisConfig   `json:"redis"`
}

// LLMConfig selects the chat model used by the checker.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// SearchConfig configures Brave Search. An empty key disables search.
type SearchConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// CheckerConfig tunes the pipeline. Zero timeouts take the checker's defaults.
type CheckerConfig struct {
	MaxClaims             int `json:"max_claims,omitempty"`
	Parallel              int `json:"parallel,omitempty"`
	ExtractTimeoutSeconds int `json:"extract_timeout_seconds,omitempty"`
	VerifyTimeoutSeconds  int `json:"verify_timeout_seconds,omitempty"`
	ReportTimeoutSeconds  int `json:"report_timeout_seconds,omitempty"`
}

// RedisConfig enables the Redis report cache when Addr is set.
type RedisConfig struct {
	Addr       string `json:"addr,omitempty"`
	Password   string `json:"password,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

const (
	DefaultServerAddr     = ":8080"
	DefaultRequestTimeout = 300
	// DefaultOpenAIModel is used when OPENAI_API_KEY turns on openai
	// without a model in the file.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerAddr:            DefaultServerAddr,
		RequestTimeoutSeconds: DefaultRequestTimeout,
		LLM:                   &LLMConfig{Provider: "mock"},
	}
}

// LoadConfig reads JSON config from disk. A missing file yields the
// defaults; environment variables are applied on top either way.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = DefaultRequestTimeout
	}
	if cfg.LLM == nil {
		cfg.LLM = &LLMConfig{Provider: "mock"}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if c.LLM == nil {
		c.LLM = &LLMConfig{}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && (c.LLM.Provider == "" || c.LLM.Provider == "openai" || c.LLM.Provider == "mock") {
		c.LLM.APIKey = v
		c.LLM.Provider = "openai"
		if c.LLM.Model == "" {
			c.LLM.Model = DefaultOpenAIModel
		}
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" && c.LLM.Provider == "deepseek" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("FACTCHECK_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ServerAddr = ":" + v
	}
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.LLM != nil {
		switch c.LLM.Provider {
		case "", "mock", "openai", "deepseek":
		default:
			return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
		}
	}
	if c.RequestTimeoutSeconds < 0 {
		return errors.New("request_timeout_seconds must not be negative")
	}
	if c.Checker.MaxClaims < 0 || c.Checker.Parallel < 0 {
		return errors.New("checker.max_claims and checker.parallel must not be negative")
	}
	if c.Checker.ExtractTimeoutSeconds < 0 || c.Checker.VerifyTimeoutSeconds < 0 || c.Checker.ReportTimeoutSeconds < 0 {
		return errors.New("checker timeouts must not be negative")
	}
	if c.Search.Count < 0 {
		return errors.New("search.count must not be negative")
	}
	if c.Redis.TTLSeconds < 0 {
		return errors.New("redis.ttl_seconds must not be negative")
	}
	return nil
}

// RequestTimeout is the page controller's per-request limit.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL is how long a finished report stays cached.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// StageTimeouts returns the extract, verify and report limits.
func (c CheckerConfig) StageTimeouts() (extract, verify, report time.Duration) {
	return time.Duration(c.ExtractTimeoutSeconds) * time.Second,
		time.Duration(c.VerifyTimeoutSeconds) * time.Second,
		time.Duration(c.ReportTimeoutSeconds) * time.Second
}
