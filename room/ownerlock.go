// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"sync"

	"github.com/greenroom-project/greenroom/lib/ref"
)

// ownerLocks serializes lifecycle work per owner. Acquiring the lock
// for one owner blocks other work for the same owner; different owners
// never contend. Lock entries are reference-counted and removed when
// the last holder releases, so the map does not grow with the set of
// members ever seen.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[ref.UserID]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[ref.UserID]*ownerLock)}
}

// acquire blocks until the owner's lock is held and returns the
// release function.
func (l *ownerLocks) acquire(ownerID ref.UserID) (release func()) {
	l.mu.Lock()
	entry, ok := l.locks[ownerID]
	if !ok {
		entry = &ownerLock{}
		l.locks[ownerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}
