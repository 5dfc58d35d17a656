// Package config loads ereuna's configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for ereuna.
type Config struct {
	Model            string         `mapstructure:"model"`
	MaxRetries       int            `mapstructure:"max_retries"`
	Timeout          string         `mapstructure:"timeout"`
	DeepResearch     bool           `mapstructure:"deep_research"`
	WordCount        int            `mapstructure:"word_count"`
	SummaryWordCount int            `mapstructure:"summary_word_count"`
	Providers        ProvidersConfig `mapstructure:"providers"`
	PromptsDir       string         `mapstructure:"prompts_dir"`
	TemplatesDir     string         `mapstructure:"templates_dir"`
	OutputDir        string         `mapstructure:"output_dir"`
	Search           SearchConfig   `mapstructure:"search"`
	CacheDir         string         `mapstructure:"cache_dir"`
	CacheTTL         string         `mapstructure:"cache_ttl"`
	NoCache          bool           `mapstructure:"no_cache"`
	Serve            ServeConfig    `mapstructure:"serve"`
	LogLevel         string         `mapstructure:"log_level"`
}

// ProvidersConfig groups the per-family provider settings.
type ProvidersConfig struct {
	Gemini ProviderConfig `mapstructure:"gemini"`
	GPT    ProviderConfig `mapstructure:"gpt"`
	Claude ProviderConfig `mapstructure:"claude"`
}

// ProviderConfig holds per-provider-family settings.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// SearchConfig holds web search settings for the chat fallback.
type SearchConfig struct {
	Results   int     `mapstructure:"results"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("max_retries", 3)
	v.SetDefault("timeout", "60s")
	v.SetDefault("deep_research", false)
	v.SetDefault("word_count", 0)
	v.SetDefault("summary_word_count", 300)
	v.SetDefault("providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("providers.gpt.base_url", "https://api.openai.com/v1")
	v.SetDefault("providers.claude.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("output_dir", "reports")
	v.SetDefault("search.results", 5)
	v.SetDefault("search.rate_limit", 1.0)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("no_cache", false)
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ereuna")
	}

	// Environment variables
	v.SetEnvPrefix("EREUNA")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("providers.gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("providers.gemini.base_url", "EREUNA_GEMINI_BASE_URL")
	_ = v.BindEnv("providers.gpt.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.gpt.base_url", "EREUNA_GPT_BASE_URL")
	_ = v.BindEnv("providers.claude.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("providers.claude.base_url", "EREUNA_CLAUDE_BASE_URL")
	_ = v.BindEnv("model", "EREUNA_MODEL")
	_ = v.BindEnv("log_level", "EREUNA_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if !filepath.IsAbs(cfg.OutputDir) {
		abs, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("resolving output dir: %w", err)
		}
		cfg.OutputDir = abs
	}

	return &cfg, nil
}

// APIKeys returns the configured credentials keyed by provider family,
// omitting families with no key set.
func (c *Config) APIKeys() map[string]string {
	keys := make(map[string]string)
	for family, pc := range c.providerConfigs() {
		if pc.APIKey != "" {
			keys[family] = pc.APIKey
		}
	}
	return keys
}

// BaseURLs returns provider API base URL overrides keyed by family.
func (c *Config) BaseURLs() map[string]string {
	urls := make(map[string]string)
	for family, pc := range c.providerConfigs() {
		if pc.BaseURL != "" {
			urls[family] = pc.BaseURL
		}
	}
	return urls
}

func (c *Config) providerConfigs() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"gemini": c.Providers.Gemini,
		"gpt":    c.Providers.GPT,
		"claude": c.Providers.Claude,
	}
}

// RequestTimeout parses the configured per-attempt timeout, falling
// back to 60 seconds on a bad value.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// PageCacheTTL parses the configured cache TTL, falling back to 1 hour.
func (c *Config) PageCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// Models maps supported model identifiers to display names, for the
// models listing.
func Models() map[string]string {
	return map[string]string{
		"gemini-2.5-flash":         "Gemini 2.5 Flash",
		"gemini-2.5-pro":           "Gemini 2.5 Pro",
		"gpt-4o":                   "GPT-4o",
		"gpt-4o-mini":              "GPT-4o Mini",
		"claude-sonnet-4-20250514": "Claude Sonnet 4",
		"claude-3-5-haiku-latest":  "Claude 3.5 Haiku",
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ereuna-cache")
	}
	return filepath.Join(home, ".cache", "ereuna")
}
