// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the greenroom
// service.
//
// Configuration is loaded from a single YAML file specified by the
// GREENROOM_CONFIG environment variable or the --config flag. There
// are no fallbacks or automatic discovery: the file is the single
// source of truth, which keeps deployments deterministic and
// auditable. The only expansion performed is ${VAR} substitution in
// path fields for portability.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/greenroom-project/greenroom/lib/ref"
)

// Config is the master configuration for greenroom.
type Config struct {
	// API configures the platform REST endpoint.
	API APIConfig `yaml:"api"`

	// Gateway configures the platform event-stream connection.
	Gateway GatewayConfig `yaml:"gateway"`

	// TokenFile is the path to the bot token file ("-" for stdin).
	TokenFile string `yaml:"token_file"`

	// GuildID is the community space to serve. Presence and command
	// events from any other space are ignored.
	GuildID string `yaml:"guild_id"`

	// LobbyChannelID is the entry voice channel. A member joining it
	// triggers room creation.
	LobbyChannelID string `yaml:"lobby_channel_id"`

	// CategoryID optionally overrides the parent category for created
	// channels. Empty means inherit the lobby's parent.
	CategoryID string `yaml:"category_id"`

	// Panel configures control panel delivery.
	Panel PanelConfig `yaml:"panel"`

	// Metrics configures the Prometheus exposition endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// APIConfig configures the platform REST endpoint.
type APIConfig struct {
	// BaseURL is the REST API base (e.g. "https://discord.com/api/v10").
	BaseURL string `yaml:"base_url"`
}

// GatewayConfig configures the event-stream connection.
type GatewayConfig struct {
	// URL is the websocket gateway endpoint (e.g. "wss://gateway.discord.gg").
	URL string `yaml:"url"`

	// ReconnectBackoff is the wait between reconnect attempts after
	// the gateway connection drops.
	ReconnectBackoff Duration `yaml:"reconnect_backoff"`
}

// PanelConfig configures delivery of the room control panel.
type PanelConfig struct {
	// PostDelay is the deliberate wait between room creation and the
	// first panel post. It compensates for the platform's permission
	// propagation lag: a post issued immediately after channel
	// creation can be rejected even though the overwrites were
	// accepted.
	PostDelay Duration `yaml:"post_delay"`

	// Attempts is the delivery retry budget.
	Attempts int `yaml:"attempts"`

	// Backoff is the wait between delivery attempts.
	Backoff Duration `yaml:"backoff"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for /metrics. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the default configuration. Defaults exist so every
// field has a sensible zero state; the config file is still required
// for the identifiers that have no meaningful default.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://discord.com/api/v10",
		},
		Gateway: GatewayConfig{
			URL:              "wss://gateway.discord.gg/?v=10&encoding=json",
			ReconnectBackoff: Duration(5 * time.Second),
		},
		TokenFile: "/etc/greenroom/token",
		Panel: PanelConfig{
			PostDelay: Duration(2 * time.Second),
			Attempts:  3,
			Backoff:   Duration(800 * time.Millisecond),
		},
		Metrics: MetricsConfig{
			Listen: "",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the GREENROOM_CONFIG environment
// variable. Fails if the variable is unset; there is no fallback.
func Load() (*Config, error) {
	path := os.Getenv("GREENROOM_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("GREENROOM_CONFIG environment variable not set; " +
			"set it to the path of your greenroom.yaml, or use the --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, applying
// defaults for absent fields and expanding ${VAR} patterns in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.TokenFile = expandVars(cfg.TokenFile)
	return cfg, nil
}

// Validate checks the configuration for errors. All problems are
// reported together rather than one at a time.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url is required"))
	}
	if c.Gateway.URL == "" {
		errs = append(errs, fmt.Errorf("gateway.url is required"))
	}
	if c.TokenFile == "" {
		errs = append(errs, fmt.Errorf("token_file is required"))
	}
	if _, err := ref.ParseGuildID(c.GuildID); err != nil {
		errs = append(errs, fmt.Errorf("guild_id: %w", err))
	}
	if _, err := ref.ParseChannelID(c.LobbyChannelID); err != nil {
		errs = append(errs, fmt.Errorf("lobby_channel_id: %w", err))
	}
	if c.CategoryID != "" {
		if _, err := ref.ParseChannelID(c.CategoryID); err != nil {
			errs = append(errs, fmt.Errorf("category_id: %w", err))
		}
	}
	if c.Panel.Attempts < 1 {
		errs = append(errs, fmt.Errorf("panel.attempts must be at least 1"))
	}
	if c.Panel.PostDelay < 0 || c.Panel.Backoff < 0 {
		errs = append(errs, fmt.Errorf("panel delays must not be negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// environment.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
