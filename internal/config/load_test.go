package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONNECTU_CONFIG", "LOG_MODE", "CONNECTU_API_BASE_URL", "CONNECTU_API_TIMEOUT",
		"CONNECTU_STORAGE_BACKEND", "CONNECTU_STORAGE_PATH", "CONNECTU_STORAGE_PASSPHRASE",
		"REDIS_ADDR", "CONNECTU_POLL_INTERVAL", "CONNECTU_CHAT_PAGE_SIZE",
		"CONNECTU_EMAIL_SUFFIX", "CONNECTU_METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Fatalf("base url=%q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout.Duration != 15*time.Second {
		t.Fatalf("timeout=%v", cfg.API.Timeout.Duration)
	}
	if cfg.Chat.PollInterval.Duration != 3*time.Second {
		t.Fatalf("poll=%v", cfg.Chat.PollInterval.Duration)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Path == "" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.Auth.EmailSuffix != ".edu.pe" {
		t.Fatalf("suffix=%q", cfg.Auth.EmailSuffix)
	}
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "connectu.yaml")
	body := `
env: production
api:
  base_url: https://api.connectu.pe/api/
  timeout: 10s
storage:
  backend: sqlite
  path: /tmp/connectu.db
chat:
  poll_interval: 5000000000
`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONNECTU_CONFIG", p)
	t.Setenv("CONNECTU_API_TIMEOUT", "20s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://api.connectu.pe/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout.Duration != 20*time.Second {
		t.Fatalf("env override lost: %v", cfg.API.Timeout.Duration)
	}
	if cfg.Chat.PollInterval.Duration != 5*time.Second {
		t.Fatalf("int nanoseconds: %v", cfg.Chat.PollInterval.Duration)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Env != "production" {
		t.Fatalf("file values lost: %+v", cfg)
	}
}

func TestLoadJSONFile(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "connectu.json")
	body := `{"api":{"base_url":"http://127.0.0.1:9999/api","timeout":"2s"},"storage":{"backend":"memory"}}`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONNECTU_CONFIG", p)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Timeout.Duration != 2*time.Second || cfg.Storage.Backend != "memory" {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"relative url":  func(c *Config) { c.API.BaseURL = "/api" },
		"bad backend":   func(c *Config) { c.Storage.Backend = "keychain" },
		"redis no addr": func(c *Config) { c.Storage.Backend = "redis"; c.Storage.RedisAddr = "" },
		"file no path":  func(c *Config) { c.Storage.Backend = "file"; c.Storage.Path = "" },
	}
	for name, mutate := range cases {
		c := defaultConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
