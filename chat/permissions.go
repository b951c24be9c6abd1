// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Permissions is a bitmask of platform permissions. The API carries
// permission sets as decimal strings (the full mask no longer fits in
// a JSON-safe integer), so the type marshals to and from strings.
type Permissions uint64

// Permission bits used by Greenroom. Values follow the platform's
// published bit assignments.
const (
	PermManageChannels         Permissions = 1 << 4
	PermViewChannel            Permissions = 1 << 10
	PermSendMessages           Permissions = 1 << 11
	PermEmbedLinks             Permissions = 1 << 14
	PermReadMessageHistory     Permissions = 1 << 16
	PermConnect                Permissions = 1 << 20
	PermSpeak                  Permissions = 1 << 21
	PermMuteMembers            Permissions = 1 << 22
	PermDeafenMembers          Permissions = 1 << 23
	PermMoveMembers            Permissions = 1 << 24
	PermUseApplicationCommands Permissions = 1 << 31
)

// Has reports whether every bit of p is set in the mask.
func (m Permissions) Has(p Permissions) bool { return m&p == p }

// MarshalJSON encodes the mask as a decimal string.
func (m Permissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(m), 10))
}

// UnmarshalJSON decodes a decimal string mask.
func (m *Permissions) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}
	if raw == "" {
		*m = 0
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("permissions: invalid mask %q: %w", raw, err)
	}
	*m = Permissions(value)
	return nil
}
