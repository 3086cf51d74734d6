package config

import "time"

type Duration struct {
	Duration time.Duration
}

type APIConfig struct {
	BaseURL   string   `json:"base_url" yaml:"base_url"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	UserAgent string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

type StorageConfig struct {
	// Backend is one of memory, file, sqlite, redis.
	Backend     string `json:"backend" yaml:"backend"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Passphrase  string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty"`
}

type ChatConfig struct {
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval"`
	PageSize     int      `json:"page_size" yaml:"page_size"`
}

type AuthConfig struct {
	// EmailSuffix is the institutional domain suffix required to request a code.
	EmailSuffix string `json:"email_suffix" yaml:"email_suffix"`
}

type TelemetryConfig struct {
	ServiceName string `json:"service_name" yaml:"service_name"`
	// MetricsAddr, when set, exposes Prometheus metrics for long-running commands.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

type Config struct {
	Env       string          `json:"env" yaml:"env"`
	API       APIConfig       `json:"api" yaml:"api"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}
