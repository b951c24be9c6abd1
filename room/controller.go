// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/clock"
	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/metrics"
)

// ControllerConfig carries the collaborators and tunables for a
// Controller.
type ControllerConfig struct {
	// GuildID is the single guild this instance serves. Presence
	// events for other guilds are ignored.
	GuildID ref.GuildID

	// LobbyID is the entry voice channel. Joining it triggers room
	// creation.
	LobbyID ref.ChannelID

	// CategoryID, when set, is the parent category for created
	// channels. Zero means inherit the lobby channel's parent.
	CategoryID ref.ChannelID

	// SelfID is the service identity's own user ID, granted
	// management permissions on every channel it creates.
	SelfID ref.UserID

	// PanelDelay is how long after creation the control panel post is
	// scheduled. The delay absorbs the platform's permission-commit
	// propagation lag on freshly created channels.
	PanelDelay time.Duration

	Provisioner Provisioner
	Notifier    *Notifier
	Occupancy   OccupancyView
	Registry    *Registry
	Clock       clock.Clock
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Controller drives the room lifecycle: creation on lobby entry,
// teardown when the primary channel empties, and owner-initiated
// close. All transitions for one owner are serialized by an
// owner-keyed lock; different owners proceed independently.
type Controller struct {
	cfg   ControllerConfig
	locks *ownerLocks
	log   *slog.Logger
}

var _ Closer = (*Controller)(nil)

// NewController builds a Controller. Clock, Logger, and Metrics
// default when nil; the other collaborators are required.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Controller{
		cfg:   cfg,
		locks: newOwnerLocks(),
		log:   cfg.Logger.With("component", "controller"),
	}
}

// HandlePresence reacts to one member's voice movement. Automated
// members never trigger creation and never count toward occupancy, so
// their movements only matter as departures from tracked channels
// (which they are excluded from by the occupancy view anyway).
func (c *Controller) HandlePresence(ctx context.Context, event PresenceEvent) {
	if event.GuildID != c.cfg.GuildID {
		return
	}

	if event.Current == c.cfg.LobbyID && event.Previous != c.cfg.LobbyID {
		if !event.IsAutomated {
			if err := c.handleLobbyJoin(ctx, event.MemberID); err != nil {
				c.log.Error("room creation failed",
					"member", event.MemberID,
					"error", err)
			}
		}
		// Entering the lobby straight out of a tracked room leaves
		// that room behind, so it still gets the emptiness check. The
		// member's own room is exempt: the re-entry guard just moved
		// them back into it.
		if !event.Previous.IsZero() {
			tracked, ok := c.cfg.Registry.ByPrimary(event.Previous)
			if !ok || tracked.OwnerID != event.MemberID {
				c.handleChannelLeave(ctx, event.Previous)
			}
		}
		return
	}

	if !event.Previous.IsZero() && event.Previous != event.Current {
		c.handleChannelLeave(ctx, event.Previous)
	}
}

// handleLobbyJoin creates a room for the member, or moves them into
// their existing one.
func (c *Controller) handleLobbyJoin(ctx context.Context, memberID ref.UserID) error {
	release := c.locks.acquire(memberID)
	defer release()

	// Re-entry guard: a member who already owns a room is redirected
	// into it instead of getting a second one.
	if existing, ok := c.cfg.Registry.ByOwner(memberID); ok {
		if err := c.cfg.Provisioner.MoveMember(ctx, c.cfg.GuildID, memberID, existing.PrimaryID); err != nil {
			c.log.Warn("redirect to existing room failed",
				"member", memberID,
				"channel", existing.PrimaryID,
				"error", err)
		}
		return nil
	}

	created, err := c.createRoom(ctx, memberID)
	if err != nil {
		c.cfg.Metrics.CreateFailures.Inc()
		return err
	}

	if err := c.cfg.Registry.Put(created); err != nil {
		// Unreachable while the owner lock is held; tear the channels
		// down rather than leak them.
		c.deleteChannels(ctx, created)
		return fmt.Errorf("registering room for %s: %w", memberID, err)
	}
	c.cfg.Metrics.RoomsCreated.Inc()
	c.cfg.Metrics.RoomsActive.Set(float64(c.cfg.Registry.Len()))

	if err := c.cfg.Provisioner.MoveMember(ctx, c.cfg.GuildID, memberID, created.PrimaryID); err != nil {
		c.log.Warn("moving owner into new room failed",
			"member", memberID,
			"channel", created.PrimaryID,
			"error", err)
	}

	c.log.Info("room created",
		"owner", memberID,
		"primary", created.PrimaryID,
		"secondary", created.SecondaryID)

	c.schedulePanel(created)
	return nil
}

// createRoom provisions the channel pair. If the secondary create
// fails the primary is deleted before returning, so no partial room
// ever reaches the registry.
func (c *Controller) createRoom(ctx context.Context, ownerID ref.UserID) (Room, error) {
	member, err := c.cfg.Provisioner.GetGuildMember(ctx, c.cfg.GuildID, ownerID)
	if err != nil {
		return Room{}, fmt.Errorf("resolving member %s: %w", ownerID, err)
	}

	parentID := c.cfg.CategoryID
	if parentID.IsZero() {
		lobby, err := c.cfg.Provisioner.GetChannel(ctx, c.cfg.LobbyID)
		if err != nil {
			return Room{}, fmt.Errorf("resolving lobby channel: %w", err)
		}
		parentID = lobby.ParentID
	}

	display := member.DisplayName()

	primary, err := c.cfg.Provisioner.CreateChannel(ctx, c.cfg.GuildID, chat.CreateChannelRequest{
		Name:                 fmt.Sprintf("🔊・%s's room", display),
		Type:                 chat.ChannelTypeVoice,
		ParentID:             parentID,
		PermissionOverwrites: c.primaryOverwrites(ownerID),
	})
	if err != nil {
		return Room{}, fmt.Errorf("creating voice channel: %w", err)
	}

	secondary, err := c.cfg.Provisioner.CreateChannel(ctx, c.cfg.GuildID, chat.CreateChannelRequest{
		Name:                 fmt.Sprintf("💬・%s's room", display),
		Type:                 chat.ChannelTypeText,
		ParentID:             parentID,
		PermissionOverwrites: c.secondaryOverwrites(ownerID),
	})
	if err != nil {
		if derr := c.cfg.Provisioner.DeleteChannel(ctx, primary.ID); derr != nil {
			c.log.Warn("rollback of voice channel failed",
				"channel", primary.ID,
				"error", derr)
		}
		return Room{}, fmt.Errorf("creating text channel: %w", err)
	}

	return Room{
		OwnerID:     ownerID,
		PrimaryID:   primary.ID,
		SecondaryID: secondary.ID,
		GuildID:     c.cfg.GuildID,
	}, nil
}

// primaryOverwrites builds the voice channel's initial ACL: @everyone
// may view, connect, and speak; the owner and the service identity
// additionally moderate.
func (c *Controller) primaryOverwrites(ownerID ref.UserID) []chat.PermissionOverwrite {
	open := chat.PermViewChannel | chat.PermConnect | chat.PermSpeak
	moderate := open | chat.PermMuteMembers | chat.PermDeafenMembers |
		chat.PermMoveMembers | chat.PermManageChannels
	return []chat.PermissionOverwrite{
		{SubjectID: c.cfg.GuildID.String(), Type: chat.OverwriteRole, Allow: open},
		{SubjectID: ownerID.String(), Type: chat.OverwriteMember, Allow: moderate},
		{SubjectID: c.cfg.SelfID.String(), Type: chat.OverwriteMember,
			Allow: moderate | chat.PermUseApplicationCommands},
	}
}

// secondaryOverwrites builds the text channel's initial ACL: hidden
// from @everyone, readable and writable for the owner, and writable
// plus manageable for the service identity so the control panel can
// always be posted.
func (c *Controller) secondaryOverwrites(ownerID ref.UserID) []chat.PermissionOverwrite {
	return []chat.PermissionOverwrite{
		{SubjectID: c.cfg.GuildID.String(), Type: chat.OverwriteRole,
			Deny: chat.PermViewChannel},
		{SubjectID: ownerID.String(), Type: chat.OverwriteMember,
			Allow: chat.PermViewChannel | chat.PermSendMessages | chat.PermReadMessageHistory},
		{SubjectID: c.cfg.SelfID.String(), Type: chat.OverwriteMember,
			Allow: chat.PermViewChannel | chat.PermSendMessages | chat.PermEmbedLinks |
				chat.PermReadMessageHistory | chat.PermManageChannels |
				chat.PermUseApplicationCommands},
	}
}

// schedulePanel arms the delayed control panel post. The post runs on
// its own context: the presence event that created the room is long
// finished by the time the timer fires, and panel delivery must not
// inherit its cancellation.
func (c *Controller) schedulePanel(created Room) {
	c.cfg.Clock.AfterFunc(c.cfg.PanelDelay, func() {
		// The room may have been torn down during the delay, or torn
		// down and replaced by a newer one for the same owner. Only
		// the exact room that armed this timer gets its panel.
		if current, ok := c.cfg.Registry.ByOwner(created.OwnerID); !ok || current != created {
			return
		}
		c.cfg.Notifier.Post(context.Background(), created)
	})
}

// handleChannelLeave tears the room down when its primary channel has
// no occupants left. Channels outside the registry are stale noise.
func (c *Controller) handleChannelLeave(ctx context.Context, channelID ref.ChannelID) {
	tracked, ok := c.cfg.Registry.ByPrimary(channelID)
	if !ok {
		return
	}

	release := c.locks.acquire(tracked.OwnerID)
	defer release()

	// Re-check under the lock: a concurrent trigger may have deleted
	// the room already, or the member may have rejoined.
	current, ok := c.cfg.Registry.ByPrimary(channelID)
	if !ok || current.OwnerID != tracked.OwnerID {
		return
	}
	if len(c.cfg.Occupancy.Occupants(channelID)) > 0 {
		return
	}

	c.deleteRoomLocked(ctx, current)
}

// Close tears down the room owned by ownerID, if any. It reports
// whether a room existed. Used by the dispatcher's close action.
func (c *Controller) Close(ctx context.Context, ownerID ref.UserID) bool {
	release := c.locks.acquire(ownerID)
	defer release()

	current, ok := c.cfg.Registry.ByOwner(ownerID)
	if !ok {
		return false
	}
	c.deleteRoomLocked(ctx, current)
	return true
}

// deleteRoomLocked deletes both channels best-effort and removes the
// registry entry unconditionally. The caller holds the owner lock.
func (c *Controller) deleteRoomLocked(ctx context.Context, target Room) {
	c.deleteChannels(ctx, target)
	c.cfg.Registry.RemoveByOwner(target.OwnerID)
	c.cfg.Metrics.RoomsDeleted.Inc()
	c.cfg.Metrics.RoomsActive.Set(float64(c.cfg.Registry.Len()))
	c.log.Info("room deleted",
		"owner", target.OwnerID,
		"primary", target.PrimaryID,
		"secondary", target.SecondaryID)
}

func (c *Controller) deleteChannels(ctx context.Context, target Room) {
	for _, channelID := range []ref.ChannelID{target.PrimaryID, target.SecondaryID} {
		err := c.cfg.Provisioner.DeleteChannel(ctx, channelID)
		switch {
		case err == nil:
		case chat.IsUnknownChannel(err):
			// Already gone externally, which is the outcome we want.
			c.log.Debug("channel already deleted", "channel", channelID)
		default:
			c.log.Warn("channel delete failed",
				"channel", channelID,
				"error", err)
		}
	}
}
