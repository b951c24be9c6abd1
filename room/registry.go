// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"errors"
	"sync"

	"github.com/greenroom-project/greenroom/lib/ref"
)

// ErrOwnerHasRoom is returned by Put when the owner already has an
// active room. The controller's re-entry guard resolves this before
// insertion, so seeing the error indicates a lifecycle bug rather than
// a normal race.
var ErrOwnerHasRoom = errors.New("owner already has an active room")

// Registry is the authoritative in-memory store of active rooms,
// indexed by owner, by primary channel, and by secondary channel. All
// three indices are maintained atomically under one mutex: a room is
// either fully present in all of them or absent from all of them.
//
// The registry is pure bookkeeping. It never talks to the platform;
// creating and destroying the external channels is the controller's
// job.
type Registry struct {
	mu          sync.RWMutex
	byOwner     map[ref.UserID]Room
	byPrimary   map[ref.ChannelID]Room
	bySecondary map[ref.ChannelID]Room
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byOwner:     make(map[ref.UserID]Room),
		byPrimary:   make(map[ref.ChannelID]Room),
		bySecondary: make(map[ref.ChannelID]Room),
	}
}

// Put inserts a room, establishing all three index entries. Returns
// ErrOwnerHasRoom without touching any index if the owner already has
// a room.
func (r *Registry) Put(room Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOwner[room.OwnerID]; exists {
		return ErrOwnerHasRoom
	}
	r.byOwner[room.OwnerID] = room
	r.byPrimary[room.PrimaryID] = room
	r.bySecondary[room.SecondaryID] = room
	return nil
}

// ByOwner looks up a room by its owner.
func (r *Registry) ByOwner(ownerID ref.UserID) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byOwner[ownerID]
	return room, ok
}

// ByPrimary looks up a room by its voice channel.
func (r *Registry) ByPrimary(channelID ref.ChannelID) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byPrimary[channelID]
	return room, ok
}

// BySecondary looks up a room by its text channel.
func (r *Registry) BySecondary(channelID ref.ChannelID) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.bySecondary[channelID]
	return room, ok
}

// RemoveByOwner deletes the owner's room from all three indices.
// Returns the removed room, or false if the owner had none.
func (r *Registry) RemoveByOwner(ownerID ref.UserID) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byOwner[ownerID]
	if !ok {
		return Room{}, false
	}
	r.removeLocked(room)
	return room, true
}

// RemoveByPrimary deletes the room owning the given voice channel from
// all three indices.
func (r *Registry) RemoveByPrimary(channelID ref.ChannelID) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPrimary[channelID]
	if !ok {
		return Room{}, false
	}
	r.removeLocked(room)
	return room, true
}

// RemoveBySecondary deletes the room owning the given text channel
// from all three indices.
func (r *Registry) RemoveBySecondary(channelID ref.ChannelID) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.bySecondary[channelID]
	if !ok {
		return Room{}, false
	}
	r.removeLocked(room)
	return room, true
}

func (r *Registry) removeLocked(room Room) {
	delete(r.byOwner, room.OwnerID)
	delete(r.byPrimary, room.PrimaryID)
	delete(r.bySecondary, room.SecondaryID)
}

// Len returns the number of active rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOwner)
}

// Snapshot returns a copy of all active rooms, in no particular order.
func (r *Registry) Snapshot() []Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]Room, 0, len(r.byOwner))
	for _, room := range r.byOwner {
		rooms = append(rooms, room)
	}
	return rooms
}
