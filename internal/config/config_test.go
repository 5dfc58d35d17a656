package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
	if cfg.SummaryWordCount != 300 {
		t.Errorf("SummaryWordCount = %d", cfg.SummaryWordCount)
	}
	if cfg.Search.Results != 5 {
		t.Errorf("Search.Results = %d", cfg.Search.Results)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Providers.Gemini.BaseURL == "" || cfg.Providers.Claude.BaseURL == "" {
		t.Error("provider base URL defaults missing")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
model: claude-sonnet-4-20250514
max_retries: 5
timeout: 30s
providers:
  claude:
    api_key: secret-key
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
	if cfg.Providers.Claude.APIKey != "secret-key" {
		t.Errorf("Claude.APIKey = %q", cfg.Providers.Claude.APIKey)
	}
}

func TestAPIKeysFiltersEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
providers:
  gemini:
    api_key: g-key
  gpt:
    api_key: ""
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	keys := cfg.APIKeys()
	if len(keys) != 1 {
		t.Fatalf("APIKeys() = %v, want only the gemini key", keys)
	}
	if keys["gemini"] != "g-key" {
		t.Errorf("keys[gemini] = %q", keys["gemini"])
	}
}

func TestEnvBindings(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("EREUNA_MODEL", "gpt-4o")

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Providers.Gemini.APIKey != "env-gemini-key" {
		t.Errorf("Gemini.APIKey = %q, want env value", cfg.Providers.Gemini.APIKey)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want env override", cfg.Model)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg, err := Load(writeConfig(t, "timeout: nonsense\ncache_ttl: bogus\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("RequestTimeout() = %v, want 60s fallback", cfg.RequestTimeout())
	}
	if cfg.PageCacheTTL() != time.Hour {
		t.Errorf("PageCacheTTL() = %v, want 1h fallback", cfg.PageCacheTTL())
	}
}

func TestModelsIncludesDefault(t *testing.T) {
	if _, ok := Models()["gemini-2.5-flash"]; !ok {
		t.Error("default model missing from Models()")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
