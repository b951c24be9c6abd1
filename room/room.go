// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import "github.com/greenroom-project/greenroom/lib/ref"

// Room is one member's pair of provisioned channels. Rooms are value
// records: the registry stores and returns them by value, and nothing
// about a Room changes after creation. Moderation state (locked,
// hidden, mutes) lives exclusively in the platform's permission state
// and is never mirrored here.
type Room struct {
	// OwnerID is the member whose lobby entry created the room. At
	// most one active Room exists per owner.
	OwnerID ref.UserID

	// PrimaryID is the voice channel members occupy.
	PrimaryID ref.ChannelID

	// SecondaryID is the companion text channel carrying the control
	// panel.
	SecondaryID ref.ChannelID

	// GuildID is the community space the room belongs to.
	GuildID ref.GuildID
}
