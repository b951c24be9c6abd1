// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greenroom.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
guild_id: "123456789012345678"
lobby_channel_id: "223456789012345678"
token_file: /tmp/token
panel:
  post_delay: 3s
  attempts: 5
  backoff: 1s
metrics:
  listen: ":9472"
`

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.GuildID != "123456789012345678" {
		t.Errorf("unexpected guild_id: %s", cfg.GuildID)
	}
	if cfg.Panel.PostDelay.Std() != 3*time.Second {
		t.Errorf("unexpected post_delay: %v", cfg.Panel.PostDelay.Std())
	}
	if cfg.Panel.Attempts != 5 {
		t.Errorf("unexpected attempts: %d", cfg.Panel.Attempts)
	}
	// Fields absent from the file keep their defaults.
	if cfg.API.BaseURL != "https://discord.com/api/v10" {
		t.Errorf("default base_url not applied: %s", cfg.API.BaseURL)
	}
	if cfg.Gateway.ReconnectBackoff.Std() != 5*time.Second {
		t.Errorf("default reconnect_backoff not applied: %v", cfg.Gateway.ReconnectBackoff.Std())
	}
}

func TestLoadRequiresEnvVar(t *testing.T) {
	t.Setenv("GREENROOM_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Error("Load without GREENROOM_CONFIG unexpectedly succeeded")
	}
}

func TestValidateRejectsBadIdentifiers(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
guild_id: "not-a-snowflake"
lobby_channel_id: ""
token_file: /tmp/token
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate unexpectedly succeeded")
	}
	// Both problems are reported together.
	message := err.Error()
	if !strings.Contains(message, "guild_id") || !strings.Contains(message, "lobby_channel_id") {
		t.Errorf("joined error missing a field: %v", err)
	}
}

func TestValidateRejectsZeroAttempts(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	cfg.Panel.Attempts = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate with zero attempts unexpectedly succeeded")
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("GREENROOM_TEST_HOME", "/srv/greenroom")
	cfg, err := LoadFile(writeConfig(t, `
guild_id: "123456789012345678"
lobby_channel_id: "223456789012345678"
token_file: ${GREENROOM_TEST_HOME}/token
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.TokenFile != "/srv/greenroom/token" {
		t.Errorf("variable not expanded: %s", cfg.TokenFile)
	}
}

func TestInvalidDuration(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
guild_id: "123456789012345678"
lobby_channel_id: "223456789012345678"
panel:
  post_delay: banana
`))
	if err == nil {
		t.Error("LoadFile with invalid duration unexpectedly succeeded")
	}
}
