// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/ref"
)

// Provisioner is the slice of the platform API the lifecycle engine
// needs: channel provisioning, permission edits, and member voice
// state. *chat.BotSession implements it; tests substitute a fake.
// Calls may be slow and may fail; none are cancellable once issued
// beyond their context.
type Provisioner interface {
	CreateChannel(ctx context.Context, guildID ref.GuildID, request chat.CreateChannelRequest) (*chat.Channel, error)
	GetChannel(ctx context.Context, channelID ref.ChannelID) (*chat.Channel, error)
	DeleteChannel(ctx context.Context, channelID ref.ChannelID) error
	EditChannelPermissions(ctx context.Context, channelID ref.ChannelID, subjectID string, kind int, allow, deny chat.Permissions) error
	MoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, channelID ref.ChannelID) error
	SetMemberMute(ctx context.Context, guildID ref.GuildID, userID ref.UserID, muted bool) error
	DisconnectMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) error
	GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*chat.Member, error)
}

// Messenger delivers messages into channels. Split from Provisioner
// because the Notifier needs nothing else.
type Messenger interface {
	SendMessage(ctx context.Context, channelID ref.ChannelID, content chat.MessageContent) (*chat.Message, error)
	GetChannel(ctx context.Context, channelID ref.ChannelID) (*chat.Channel, error)
}

// Compile-time checks: the real session satisfies both interfaces.
var (
	_ Provisioner = (*chat.BotSession)(nil)
	_ Messenger   = (*chat.BotSession)(nil)
)

// OccupancyView answers who is currently in a voice channel. The
// gateway's voice-state view implements it. Implementations must
// already exclude automated members; occupancy and moderation target
// lists never include bots.
type OccupancyView interface {
	Occupants(channelID ref.ChannelID) []ref.UserID
}
