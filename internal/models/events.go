// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package models

import "time"

// Server-to-client websocket event payloads. Field names are part of the wire
// contract with the admin console and device clients.

// LocationUpdate is broadcast to the admins room after every accepted report.
type LocationUpdate struct {
	ClientID  string    `json:"client_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	LastSeen  time.Time `json:"last_seen"`
}

// ImageCaptured is broadcast to the admins room after a capture is stored.
type ImageCaptured struct {
	ClientID  string    `json:"client_id"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamFrame relays a live camera frame to the admins room. Frames are
// best-effort and never persisted.
type StreamFrame struct {
	ClientID string `json:"client_id"`
	Frame    string `json:"frame"`
}

// Notification is delivered to the targeted client's room.
type Notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationSent acknowledges a delivered notification to the admins room.
type NotificationSent struct {
	ClientID  string    `json:"client_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Registered confirms (or refuses) a connection's room registration.
type Registered struct {
	OK       bool   `json:"ok"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Room     string `json:"room,omitempty"`
	Error    string `json:"error,omitempty"`
}
