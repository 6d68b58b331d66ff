// Package config loads the optional YAML configuration file consumed by
// the mailprobe CLI. Every field has a default; the file only overrides.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the CLI-facing settings.
type Config struct {
	Verify  VerifyConfig  `koanf:"verify"`
	Logging LoggingConfig `koanf:"logging"`
}

// VerifyConfig mirrors the verification options.
type VerifyConfig struct {
	DNSTimeoutMS  int    `koanf:"dns_timeout_ms"`  // DNS lookup timeout
	SMTPTimeoutMS int    `koanf:"smtp_timeout_ms"` // per SMTP operation timeout
	SMTPCheck     bool   `koanf:"smtp_check"`      // probe mailboxes over SMTP
	CatchAllCheck bool   `koanf:"catchall_check"`  // run the synthetic-address probe
	SenderEmail   string `koanf:"sender_email"`    // MAIL FROM address
	SMTPPort      int    `koanf:"smtp_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
	Output string `koanf:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Verify: VerifyConfig{
			DNSTimeoutMS:  5000,
			SMTPTimeoutMS: 10000,
			SMTPCheck:     true,
			CatchAllCheck: true,
			SenderEmail:   "test@example.com",
			SMTPPort:      25,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
