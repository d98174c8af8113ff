// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package dispatch

import "sync"

// keyedMutex provides one mutex per client identifier. Entries are never
// removed, matching the store's never-delete record lifecycle; a mutex is a
// few dozen bytes per client ever seen.
type keyedMutex struct {
	mus sync.Map // string -> *sync.Mutex
}

// Lock acquires the mutex for key, creating it on first use, and returns it
// for the caller to unlock.
func (k *keyedMutex) Lock(key string) *sync.Mutex {
	m, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu
}
