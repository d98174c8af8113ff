// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package rooms tracks which live connections belong to which logical room.
//
// There are two kinds of rooms: the shared "admins" room, and a per-client
// room named by the client identifier. A connection belongs to exactly one
// room from registration until it is unregistered. Rooms have no independent
// lifetime: a room exists exactly as long as it has at least one member.
package rooms
