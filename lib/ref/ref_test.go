// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"testing"
)

func TestParseChannelID(t *testing.T) {
	valid := []string{
		"123456789012345678",
		"1",
		"98765432109876543210", // 20 digits, the decimal width of uint64

	}
	for _, raw := range valid {
		id, err := ParseChannelID(raw)
		if err != nil {
			t.Errorf("ParseChannelID(%q) failed: %v", raw, err)
			continue
		}
		if id.String() != raw {
			t.Errorf("round trip mismatch: %q != %q", id.String(), raw)
		}
		if id.IsZero() {
			t.Errorf("parsed ID %q reports IsZero", raw)
		}
	}

	invalid := []string{
		"",
		"0123",
		"12a45",
		"123456789012345678901", // 21 digits
		"-5",
		"!abc:server",
	}
	for _, raw := range invalid {
		if _, err := ParseChannelID(raw); err == nil {
			t.Errorf("ParseChannelID(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestZeroValues(t *testing.T) {
	if !(ChannelID{}).IsZero() {
		t.Error("zero ChannelID is not IsZero")
	}
	if !(UserID{}).IsZero() {
		t.Error("zero UserID is not IsZero")
	}
	if !(GuildID{}).IsZero() {
		t.Error("zero GuildID is not IsZero")
	}
}

func TestUserIDMention(t *testing.T) {
	id, err := ParseUserID("42424242424242")
	if err != nil {
		t.Fatalf("ParseUserID failed: %v", err)
	}
	if id.Mention() != "<@42424242424242>" {
		t.Errorf("unexpected mention: %s", id.Mention())
	}
}

func TestChannelIDJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		id, err := ParseChannelID("123456789012345678")
		if err != nil {
			t.Fatalf("ParseChannelID failed: %v", err)
		}
		data, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != `"123456789012345678"` {
			t.Errorf("unexpected JSON: %s", data)
		}
		var decoded ChannelID
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if decoded != id {
			t.Errorf("round trip mismatch: %v != %v", decoded, id)
		}
	})

	t.Run("null means no channel", func(t *testing.T) {
		var id ChannelID
		if err := json.Unmarshal([]byte("null"), &id); err != nil {
			t.Fatalf("Unmarshal null failed: %v", err)
		}
		if !id.IsZero() {
			t.Error("null did not decode to zero ChannelID")
		}
	})

	t.Run("zero marshals to null", func(t *testing.T) {
		data, err := json.Marshal(ChannelID{})
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != "null" {
			t.Errorf("zero ChannelID marshalled to %s, want null", data)
		}
	})

	t.Run("invalid snowflake rejected", func(t *testing.T) {
		var id ChannelID
		if err := json.Unmarshal([]byte(`"not-a-snowflake"`), &id); err == nil {
			t.Error("invalid snowflake unexpectedly accepted")
		}
	})
}

func TestIDsAsMapKeys(t *testing.T) {
	// The registry indexes rooms by these types; equality must follow
	// the underlying string.
	a, _ := ParseUserID("111111111111111111")
	b, _ := ParseUserID("111111111111111111")
	m := map[UserID]int{a: 1}
	if m[b] != 1 {
		t.Error("equal UserIDs do not collide as map keys")
	}
}
