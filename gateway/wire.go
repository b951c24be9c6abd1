// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/ref"
)

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// Event intents. The session subscribes to guild metadata and voice
// state movement; interactions arrive regardless of intents.
const (
	intentGuilds           = 1 << 0
	intentGuildVoiceStates = 1 << 7
)

// Dispatch event names the session acts on.
const (
	eventReady            = "READY"
	eventGuildCreate      = "GUILD_CREATE"
	eventVoiceStateUpdate = "VOICE_STATE_UPDATE"
	eventInteraction      = "INTERACTION_CREATE"
)

// interactionComponent is the interaction type for button presses.
const interactionComponent = 3

// payload is the envelope every gateway frame uses. S and T are only
// set on dispatch frames.
type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  int64           `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// helloData announces the heartbeat cadence, in milliseconds.
type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// identifyData opens an authenticated session.
type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// readyData is the subset of the READY dispatch the session logs.
type readyData struct {
	SessionID string    `json:"session_id"`
	User      chat.User `json:"user"`
}

// guildCreateData carries the voice states current at session start.
// Entries inside it omit guild_id; the guild's own ID applies.
type guildCreateData struct {
	ID          ref.GuildID      `json:"id"`
	VoiceStates []voiceStateData `json:"voice_states"`
}

// voiceStateData reports one member's current voice channel. A null
// channel_id means the member disconnected from voice.
type voiceStateData struct {
	GuildID   ref.GuildID   `json:"guild_id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	UserID    ref.UserID    `json:"user_id"`
	Member    struct {
		User chat.User `json:"user"`
	} `json:"member"`
}

// interactionData is the subset of an interaction dispatch the
// session needs to route a button press and answer it.
type interactionData struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	Type      int           `json:"type"`
	GuildID   ref.GuildID   `json:"guild_id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	Member    chat.Member   `json:"member"`
	Data      struct {
		CustomID string `json:"custom_id"`
	} `json:"data"`
}
