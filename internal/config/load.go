package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/envutil"
)

const (
	DefaultBaseURL      = "http://localhost:3000/api"
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 3 * time.Second
	DefaultPageSize     = 50
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   Duration{Duration: DefaultTimeout},
			UserAgent: "connectu-go/1.0",
		},
		Storage: StorageConfig{
			Backend:     "file",
			Path:        defaultStoragePath(),
			RedisPrefix: "connectu:",
		},
		Chat: ChatConfig{
			PollInterval: Duration{Duration: DefaultPollInterval},
			PageSize:     DefaultPageSize,
		},
		Auth:      AuthConfig{EmailSuffix: ".edu.pe"},
		Telemetry: TelemetryConfig{ServiceName: "connectu-client"},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "connectu", "credentials.sealed")
	}
	return filepath.Join(home, ".connectu", "credentials.sealed")
}

// Load reads defaults, then the optional file named by CONNECTU_CONFIG
// (JSON or YAML by extension), then environment overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if p := strings.TrimSpace(os.Getenv("CONNECTU_CONFIG")); p != "" {
		if err := loadFile(p, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.API.BaseURL = envutil.String("CONNECTU_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout.Duration = envutil.Duration("CONNECTU_API_TIMEOUT", cfg.API.Timeout.Duration)
	cfg.Storage.Backend = envutil.String("CONNECTU_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = envutil.String("CONNECTU_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.Passphrase = envutil.String("CONNECTU_STORAGE_PASSPHRASE", cfg.Storage.Passphrase)
	cfg.Storage.RedisAddr = envutil.String("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Chat.PollInterval.Duration = envutil.Duration("CONNECTU_POLL_INTERVAL", cfg.Chat.PollInterval.Duration)
	cfg.Chat.PageSize = envutil.Int("CONNECTU_CHAT_PAGE_SIZE", cfg.Chat.PageSize)
	cfg.Auth.EmailSuffix = envutil.String("CONNECTU_EMAIL_SUFFIX", cfg.Auth.EmailSuffix)
	cfg.Telemetry.MetricsAddr = envutil.String("CONNECTU_METRICS_ADDR", cfg.Telemetry.MetricsAddr)
}

// Validate normalizes values in place and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Env == "" {
		c.Env = "development"
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute http(s) url", c.API.BaseURL)
	}
	if c.API.Timeout.Duration <= 0 {
		c.API.Timeout.Duration = DefaultTimeout
	}
	if c.Chat.PollInterval.Duration <= 0 {
		c.Chat.PollInterval.Duration = DefaultPollInterval
	}
	if c.Chat.PageSize <= 0 {
		c.Chat.PageSize = DefaultPageSize
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "", "memory":
		c.Storage.Backend = "memory"
	case "file", "sqlite":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case "redis":
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for backend \"redis\"")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}
	if c.Auth.EmailSuffix == "" {
		c.Auth.EmailSuffix = ".edu.pe"
	}
	return nil
}
