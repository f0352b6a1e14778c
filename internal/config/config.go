// Package config loads the process configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config captures environment driven configuration for the rehearsal service.
type Config struct {
	HTTPAddr  string `env:"BANDAPP_HTTP_ADDR" envDefault:":8080"`
	SQLiteDSN string `env:"BANDAPP_SQLITE_DSN" envDefault:"file:bandapp.db?_pragma=foreign_keys(1)"`

	// JWTSecret signs bearer tokens and has no safe default.
	JWTSecret     string `env:"BANDAPP_JWT_SECRET"`
	TokenTTLHours int    `env:"BANDAPP_TOKEN_TTL_HOURS" envDefault:"1"`

	AppURL     string `env:"BANDAPP_APP_URL" envDefault:"http://localhost:3000"`
	CORSOrigin string `env:"BANDAPP_CORS_ORIGIN" envDefault:"http://localhost:3000"`

	SMTPHost     string `env:"BANDAPP_SMTP_HOST"`
	SMTPPort     int    `env:"BANDAPP_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"BANDAPP_SMTP_USERNAME"`
	SMTPPassword string `env:"BANDAPP_SMTP_PASSWORD"`
	SMTPFrom     string `env:"BANDAPP_SMTP_FROM"`

	// DigestCron is a standard five field cron expression, Monday 08:00 by default.
	DigestCron string `env:"BANDAPP_DIGEST_CRON" envDefault:"0 8 * * 1"`

	SeedAdminUsername string `env:"BANDAPP_SEED_ADMIN_USERNAME" envDefault:"admin"`
	SeedAdminEmail    string `env:"BANDAPP_SEED_ADMIN_EMAIL" envDefault:"admin@localhost"`
	SeedAdminPassword string `env:"BANDAPP_SEED_ADMIN_PASSWORD"`
}

// Load parses configuration from the current process environment.
//
// Optional fields fall back to defaults; required values are validated so the
// process fails fast at startup instead of at first use.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var problems []string

	if strings.TrimSpace(c.JWTSecret) == "" {
		problems = append(problems, "BANDAPP_JWT_SECRET is required")
	}
	if c.TokenTTLHours <= 0 {
		problems = append(problems, "BANDAPP_TOKEN_TTL_HOURS must be positive")
	}
	if c.SMTPPort <= 0 {
		problems = append(problems, "BANDAPP_SMTP_PORT must be positive")
	}
	if strings.TrimSpace(c.DigestCron) == "" {
		problems = append(problems, "BANDAPP_DIGEST_CRON must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MailEnabled reports whether an SMTP endpoint is configured. Without one the
// service runs with email delivery disabled.
func (c Config) MailEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}
