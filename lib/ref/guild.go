// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// GuildID identifies the community space a room belongs to.
//
// GuildID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type GuildID struct {
	id string
}

// ParseGuildID validates and wraps a raw guild ID string.
func ParseGuildID(raw string) (GuildID, error) {
	if err := validateSnowflake("guild ID", raw); err != nil {
		return GuildID{}, err
	}
	return GuildID{id: raw}, nil
}

// String returns the decimal guild ID string.
func (g GuildID) String() string { return g.id }

// IsZero reports whether the GuildID is the zero value (uninitialized).
func (g GuildID) IsZero() bool { return g.id == "" }

// MarshalJSON encodes the guild ID as a JSON string.
func (g GuildID) MarshalJSON() ([]byte, error) {
	return marshalID(g.id)
}

// UnmarshalJSON decodes and validates a guild ID from a JSON string.
func (g *GuildID) UnmarshalJSON(data []byte) error {
	raw, null, err := unmarshalID(data)
	if err != nil {
		return fmt.Errorf("guild ID: %w", err)
	}
	if null {
		*g = GuildID{}
		return nil
	}
	parsed, err := ParseGuildID(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
