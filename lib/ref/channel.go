// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// ChannelID identifies a channel (voice or text) on the platform.
//
// Channel IDs are server-assigned snowflakes. They arrive in API
// responses (channel creation), gateway frames (voice state updates,
// interactions), and configuration (the lobby channel), and are parsed
// into this type at the boundary.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw channel ID string.
func ParseChannelID(raw string) (ChannelID, error) {
	if err := validateSnowflake("channel ID", raw); err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: raw}, nil
}

// String returns the decimal channel ID string.
func (c ChannelID) String() string { return c.id }

// IsZero reports whether the ChannelID is the zero value (uninitialized).
func (c ChannelID) IsZero() bool { return c.id == "" }

// MarshalJSON encodes the channel ID as a JSON string.
func (c ChannelID) MarshalJSON() ([]byte, error) {
	return marshalID(c.id)
}

// UnmarshalJSON decodes and validates a channel ID from a JSON string.
// A JSON null leaves the ID zero; the platform uses null channel IDs
// to mean "no channel" in voice state payloads.
func (c *ChannelID) UnmarshalJSON(data []byte) error {
	raw, null, err := unmarshalID(data)
	if err != nil {
		return fmt.Errorf("channel ID: %w", err)
	}
	if null {
		*c = ChannelID{}
		return nil
	}
	parsed, err := ParseChannelID(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
