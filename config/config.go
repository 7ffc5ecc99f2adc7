package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Execution names of the site's webflow pages.
const (
	ExecutionStart       = "e2s1"
	ExecutionCertificate = "e2s4"
	ExecutionDeclaration = "e2s5"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host          string `envconfig:"HOST" default:"127.0.0.1"`
	Port          int    `envconfig:"PORT" default:"5002"`
	APIToken      string `envconfig:"API_TOKEN"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN"`
}

// SiteConfig describes the external site and how to talk to it.
type SiteConfig struct {
	UserAgent    string `envconfig:"USER_AGENT" default:"perform-check/1.0 (+https://example.com)"`
	TimeoutMS    int    `envconfig:"TIMEOUT_MS" default:"15000"`
	MaxRedirects int    `envconfig:"MAX_REDIRECTS" default:"10"`
	TargetE2S1   string `envconfig:"TARGET_E2S1" default:"https://secure.crbonline.gov.uk/crsc/check?execution=e2s1"`
	TargetE2S4   string `envconfig:"TARGET_E2S4" default:"https://secure.crbonline.gov.uk/crsc/check?execution=e2s4"`
	TargetE2S5   string `envconfig:"TARGET_E2S5" default:"https://secure.crbonline.gov.uk/crsc/check?execution=e2s5"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig limits check requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"1"`
	Burst             int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// DatabaseConfig enables the audit log when URL is set.
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL"`
}

// NotifyConfig enables Discord and email notifications of completed checks.
type NotifyConfig struct {
	DiscordToken     string `envconfig:"DISCORD_TOKEN"`
	DiscordChannelID string `envconfig:"DISCORD_CHANNEL_ID"`
	ResendAPIKey     string `envconfig:"RESEND_API_KEY"`
	EmailFrom        string `envconfig:"EMAIL_FROM"`
	EmailFromName    string `envconfig:"EMAIL_FROM_NAME" default:"Status Check"`
	EmailTo          string `envconfig:"NOTIFY_EMAIL_TO"`
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the checker cannot run with.
func (c *Config) Validate() error {
	if c.Site.TimeoutMS <= 0 {
		return fmt.Errorf("config: TIMEOUT_MS must be positive, got %d", c.Site.TimeoutMS)
	}
	if c.Site.MaxRedirects <= 0 {
		return fmt.Errorf("config: MAX_REDIRECTS must be positive, got %d", c.Site.MaxRedirects)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Server.Port)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	for name, target := range c.Targets() {
		u, err := url.ParseRequestURI(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: invalid %s target %q", name, target)
		}
	}
	return nil
}

// Timeout is the per-hop deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Site.TimeoutMS) * time.Millisecond
}

// Targets maps execution names to their URLs.
func (c *Config) Targets() map[string]string {
	return map[string]string{
		ExecutionStart:       c.Site.TargetE2S1,
		ExecutionCertificate: c.Site.TargetE2S4,
		ExecutionDeclaration: c.Site.TargetE2S5,
	}
}

// Addr is the API listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// DiscordEnabled reports whether Discord notifications are configured.
func (c *Config) DiscordEnabled() bool {
	return c.Notify.DiscordToken != "" && c.Notify.DiscordChannelID != ""
}

// EmailEnabled reports whether email notifications are configured.
func (c *Config) EmailEnabled() bool {
	return c.Notify.ResendAPIKey != "" && c.Notify.EmailFrom != "" && c.Notify.EmailTo != ""
}
