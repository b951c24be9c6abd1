// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package room implements the room lifecycle engine: the registry of
// active rooms, the controller that creates and destroys them in
// reaction to presence events, the owner-gated command dispatcher, and
// the control panel notifier.
//
// A [Room] is one member's pair of provisioned channels: a voice
// channel (primary) and a companion text channel (secondary). The
// [Registry] indexes active rooms by owner, by primary channel, and
// by secondary channel, and guarantees the indices never disagree and
// no owner ever holds two rooms.
//
// The [Controller] is the only component that creates or destroys
// rooms. It reacts to [PresenceEvent] values from the gateway: a
// member entering the lobby gets a room (or is moved back into the one
// they already own), and a primary channel whose last non-bot occupant
// leaves is torn down. All transitions for one owner are serialized by
// an owner-keyed lock, so a creation and a deletion for the same owner
// can never interleave; work for different owners is fully parallel.
//
// The [Dispatcher] executes owner-issued control actions arriving as
// [CommandEvent] values. Authorization is strict identity equality
// with the room's owner; everything else yields a denied or not-found
// [Outcome] and touches nothing.
//
// A room's moderation state (locked, hidden, mutes) has no local
// representation. The platform's permission state is the single source
// of truth; the registry records only room identity.
package room
