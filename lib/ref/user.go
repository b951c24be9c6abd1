// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// UserID identifies a member account on the platform, human or bot.
//
// UserID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw user ID string.
func ParseUserID(raw string) (UserID, error) {
	if err := validateSnowflake("user ID", raw); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// String returns the decimal user ID string.
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// Mention returns the platform's inline mention syntax for the user.
func (u UserID) Mention() string { return "<@" + u.id + ">" }

// MarshalJSON encodes the user ID as a JSON string.
func (u UserID) MarshalJSON() ([]byte, error) {
	return marshalID(u.id)
}

// UnmarshalJSON decodes and validates a user ID from a JSON string.
func (u *UserID) UnmarshalJSON(data []byte) error {
	raw, null, err := unmarshalID(data)
	if err != nil {
		return fmt.Errorf("user ID: %w", err)
	}
	if null {
		*u = UserID{}
		return nil
	}
	parsed, err := ParseUserID(raw)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
