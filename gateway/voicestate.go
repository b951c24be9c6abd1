// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"sync"

	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/room"
)

// VoiceStateView tracks who is in which voice channel, built from the
// gateway's voice state dispatches. The wire frame only carries a
// member's new channel; the view supplies the previous one, and it
// answers occupancy queries for the room engine. Automated members
// are tracked for transition purposes but never reported as
// occupants.
type VoiceStateView struct {
	mu       sync.RWMutex
	channels map[ref.UserID]ref.ChannelID
	bots     map[ref.UserID]bool
}

var _ room.OccupancyView = (*VoiceStateView)(nil)

// NewVoiceStateView returns an empty view.
func NewVoiceStateView() *VoiceStateView {
	return &VoiceStateView{
		channels: make(map[ref.UserID]ref.ChannelID),
		bots:     make(map[ref.UserID]bool),
	}
}

// Apply records one voice state update and returns the channel the
// member was in before it, zero if they were not in voice.
func (v *VoiceStateView) Apply(userID ref.UserID, channelID ref.ChannelID, automated bool) (previous ref.ChannelID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	previous = v.channels[userID]
	if channelID.IsZero() {
		delete(v.channels, userID)
		delete(v.bots, userID)
	} else {
		v.channels[userID] = channelID
		v.bots[userID] = automated
	}
	return previous
}

// Occupants returns the non-automated members currently in channelID.
func (v *VoiceStateView) Occupants(channelID ref.ChannelID) []ref.UserID {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var members []ref.UserID
	for userID, current := range v.channels {
		if current == channelID && !v.bots[userID] {
			members = append(members, userID)
		}
	}
	return members
}

// Reset drops all tracked state. Called when a session is
// re-identified, since the new session replays current voice states.
func (v *VoiceStateView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.channels)
	clear(v.bots)
}
