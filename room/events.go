// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import "github.com/greenroom-project/greenroom/lib/ref"

// PresenceEvent reports one member's voice movement: the channel they
// were in and the channel they are in now. A zero Previous means they
// were not in voice; a zero Current means they disconnected. The
// gateway derives Previous from its voice-state view, since the wire
// frame only carries the new channel.
type PresenceEvent struct {
	GuildID     ref.GuildID
	MemberID    ref.UserID
	IsAutomated bool
	Previous    ref.ChannelID
	Current     ref.ChannelID
}

// Action is a control panel action identifier.
type Action string

// The eight owner actions.
const (
	ActionMuteAll   Action = "mute_all"
	ActionUnmuteAll Action = "unmute_all"
	ActionLock      Action = "lock"
	ActionUnlock    Action = "unlock"
	ActionHide      Action = "hide"
	ActionShow      Action = "show"
	ActionKickAll   Action = "kick_all"
	ActionClose     Action = "close"
)

// CommandEvent is an owner control action as received from the
// gateway: who pressed which button, in which channel.
type CommandEvent struct {
	InvokerID ref.UserID
	ChannelID ref.ChannelID
	Action    Action
}

// OutcomeStatus classifies a command result.
type OutcomeStatus string

const (
	// StatusOK means the action took effect.
	StatusOK OutcomeStatus = "ok"
	// StatusDenied means the invoker is not the room's owner.
	StatusDenied OutcomeStatus = "denied"
	// StatusNotFound means the command referenced a room or channel
	// that no longer exists.
	StatusNotFound OutcomeStatus = "not_found"
)

// Outcome is the single response every command produces. Text is what
// the invoker sees, delivered ephemerally on the channel the command
// arrived on.
type Outcome struct {
	Status OutcomeStatus
	Text   string
}
