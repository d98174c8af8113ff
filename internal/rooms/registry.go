// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package rooms

import (
	"errors"
	"sync"
)

// AdminsRoom is the room every administrator connection joins.
const AdminsRoom = "admins"

// Role identifies what kind of peer a connection represents.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// ErrMissingClientID is returned when a client-role registration carries no
// client identifier. The connection is not admitted to any room.
var ErrMissingClientID = errors.New("client registration requires a client_id")

// ErrUnknownRole is returned for roles other than client or admin.
var ErrUnknownRole = errors.New("role must be client or admin")

// RoomAssignment describes the room a connection was admitted to.
type RoomAssignment struct {
	ConnID   string
	Role     Role
	ClientID string
	Room     string
}

type connEntry struct {
	role     Role
	clientID string
	room     string
}

// Registry is the single authority for connection-to-room membership.
//
// All operations are O(1) map manipulations under a registry-wide RWMutex;
// the lock is never held across broadcasts or any other part of the event
// path. Reconnection under the same client identifier creates a fresh entry
// in the same room without touching prior connections still believed live.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]connEntry
	rooms map[string]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]connEntry),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register admits a connection to its room: "admins" for the admin role, the
// room named by clientID for the client role. A client registration without a
// clientID fails with ErrMissingClientID and joins nothing. Re-registering a
// live connID moves it to the newly requested room.
func (r *Registry) Register(connID string, role Role, clientID string) (RoomAssignment, error) {
	var room string
	switch role {
	case RoleAdmin:
		room = AdminsRoom
		clientID = ""
	case RoleClient:
		if clientID == "" {
			return RoomAssignment{}, ErrMissingClientID
		}
		room = clientID
	default:
		return RoomAssignment{}, ErrUnknownRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[connID]; ok {
		r.removeFromRoom(connID, prev.room)
	}

	r.conns[connID] = connEntry{role: role, clientID: clientID, room: room}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[connID] = struct{}{}

	return RoomAssignment{ConnID: connID, Role: role, ClientID: clientID, Room: room}, nil
}

// Unregister removes a connection from its room. Unregistering a connection
// that is not registered is a no-op: transport-level disconnects and explicit
// unregister calls may race.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)
	r.removeFromRoom(connID, entry.room)
}

// removeFromRoom deletes connID from the room's member set, dropping the room
// entirely when it empties. Caller holds mu.
func (r *Registry) removeFromRoom(connID, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns the connection IDs currently joined to roomID.
// The returned slice is a copy.
func (r *Registry) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RoomOf resolves the room for a client identifier. The second return is
// false when the client has no live connection, in which case callers drop
// the message (best-effort delivery).
func (r *Registry) RoomOf(clientID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[clientID]
	return clientID, ok && len(members) > 0
}

// Assignment returns the current assignment for a connection, if registered.
func (r *Registry) Assignment(connID string) (RoomAssignment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.conns[connID]
	if !ok {
		return RoomAssignment{}, false
	}
	return RoomAssignment{ConnID: connID, Role: entry.role, ClientID: entry.clientID, Room: entry.room}, true
}

// ConnCount returns the number of registered connections.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
