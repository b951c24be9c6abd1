// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"log/slog"

	"github.com/greenroom-project/greenroom/chat"
	"github.com/greenroom-project/greenroom/lib/ref"
	"github.com/greenroom-project/greenroom/metrics"
)

// Closer tears down a room by owner. The Controller implements it;
// the indirection keeps the Dispatcher testable without a full
// lifecycle stack.
type Closer interface {
	Close(ctx context.Context, ownerID ref.UserID) bool
}

// DispatcherConfig carries a Dispatcher's collaborators.
type DispatcherConfig struct {
	Registry    *Registry
	Provisioner Provisioner
	Occupancy   OccupancyView
	Closer      Closer
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Dispatcher executes owner control actions. Every command produces
// exactly one Outcome; only close touches the registry, through the
// Closer.
type Dispatcher struct {
	cfg DispatcherConfig
	log *slog.Logger
}

// NewDispatcher builds a Dispatcher. Logger and Metrics default when
// nil.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Dispatcher{cfg: cfg, log: cfg.Logger.With("component", "dispatcher")}
}

// HandleCommand resolves, authorizes, and executes one command.
func (d *Dispatcher) HandleCommand(ctx context.Context, event CommandEvent) Outcome {
	outcome := d.handle(ctx, event)
	d.cfg.Metrics.Commands.WithLabelValues(string(event.Action), string(outcome.Status)).Inc()
	return outcome
}

func (d *Dispatcher) handle(ctx context.Context, event CommandEvent) Outcome {
	target, ok := d.cfg.Registry.BySecondary(event.ChannelID)
	if !ok {
		return Outcome{Status: StatusNotFound, Text: "❌ This panel's room no longer exists."}
	}

	// Authorization comes before any provisioner call: a non-owner
	// press has no side effect at all.
	if event.InvokerID != target.OwnerID {
		return Outcome{Status: StatusDenied, Text: "❌ Only the room owner can use this panel."}
	}

	primary, err := d.cfg.Provisioner.GetChannel(ctx, target.PrimaryID)
	if err != nil {
		if !chat.IsUnknownChannel(err) {
			d.log.Warn("primary channel check failed",
				"channel", target.PrimaryID,
				"error", err)
		}
		return Outcome{Status: StatusNotFound, Text: "❌ The voice room no longer exists."}
	}

	switch event.Action {
	case ActionMuteAll:
		d.eachOccupant(ctx, target, func(memberID ref.UserID) error {
			return d.cfg.Provisioner.SetMemberMute(ctx, target.GuildID, memberID, true)
		})
		return Outcome{Status: StatusOK, Text: "🔇 Muted everyone."}

	case ActionUnmuteAll:
		d.eachOccupant(ctx, target, func(memberID ref.UserID) error {
			return d.cfg.Provisioner.SetMemberMute(ctx, target.GuildID, memberID, false)
		})
		return Outcome{Status: StatusOK, Text: "🔊 Unmuted everyone."}

	case ActionKickAll:
		d.eachOccupant(ctx, target, func(memberID ref.UserID) error {
			return d.cfg.Provisioner.DisconnectMember(ctx, target.GuildID, memberID)
		})
		return Outcome{Status: StatusOK, Text: "🚫 Kicked everyone."}

	case ActionLock:
		return d.editEveryone(ctx, target, primary, chat.PermConnect, false,
			"🔒 Room locked.")

	case ActionUnlock:
		return d.editEveryone(ctx, target, primary, chat.PermConnect, true,
			"🔓 Room unlocked.")

	case ActionHide:
		return d.editEveryone(ctx, target, primary, chat.PermViewChannel, false,
			"👁️ Room hidden.")

	case ActionShow:
		return d.editEveryone(ctx, target, primary, chat.PermViewChannel, true,
			"💬 Room visible.")

	case ActionClose:
		// The room can vanish between the lookup above and the close,
		// if the last occupant's departure won the race.
		if !d.cfg.Closer.Close(ctx, target.OwnerID) {
			return Outcome{Status: StatusNotFound, Text: "❌ This panel's room no longer exists."}
		}
		return Outcome{Status: StatusOK, Text: "❌ Room closed."}
	}

	return Outcome{Status: StatusNotFound, Text: "❌ Unknown action."}
}

// eachOccupant applies f to every current occupant of the primary
// channel except the owner. Per-member failures are logged and do not
// stop the sweep.
func (d *Dispatcher) eachOccupant(ctx context.Context, target Room, f func(ref.UserID) error) {
	for _, memberID := range d.cfg.Occupancy.Occupants(target.PrimaryID) {
		if memberID == target.OwnerID {
			continue
		}
		if err := f(memberID); err != nil {
			d.log.Warn("member action failed",
				"member", memberID,
				"channel", target.PrimaryID,
				"error", err)
		}
	}
}

// editEveryone flips one permission bit on the primary channel's
// @everyone overwrite. The edit is a full replacement on the wire, so
// the current overwrite is read first and only the requested bit
// changes; locking a hidden room does not unhide it.
func (d *Dispatcher) editEveryone(ctx context.Context, target Room, primary *chat.Channel, bit chat.Permissions, grant bool, text string) Outcome {
	var allow, deny chat.Permissions
	for _, ow := range primary.PermissionOverwrites {
		if ow.Type == chat.OverwriteRole && ow.SubjectID == target.GuildID.String() {
			allow, deny = ow.Allow, ow.Deny
			break
		}
	}
	if grant {
		allow |= bit
		deny &^= bit
	} else {
		allow &^= bit
		deny |= bit
	}

	err := d.cfg.Provisioner.EditChannelPermissions(ctx, target.PrimaryID,
		target.GuildID.String(), chat.OverwriteRole, allow, deny)
	if err != nil {
		if chat.IsUnknownChannel(err) {
			return Outcome{Status: StatusNotFound, Text: "❌ The voice room no longer exists."}
		}
		d.log.Warn("permission edit failed",
			"channel", target.PrimaryID,
			"error", err)
		return Outcome{Status: StatusNotFound, Text: "❌ The action could not be applied."}
	}
	return Outcome{Status: StatusOK, Text: text}
}
