// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package models

import "time"

// Coordinate is a latitude/longitude pair in decimal degrees.
// Zero values are valid coordinates (the equator/prime meridian intersection
// is a real place); only non-finite values are rejected upstream.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PathPoint is one entry in a client's location history.
type PathPoint struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Time      time.Time `json:"time"`
}

// Consent records a client's most recent sharing decision.
type Consent struct {
	ShareLocation      bool      `json:"share_location"`
	ShareCamera        bool      `json:"share_camera"`
	ShareNotifications bool      `json:"share_notifications"`
	Timestamp          time.Time `json:"timestamp"`
}

// ImageRef points at the most recently captured image for a client.
// The image bytes live in the external sink, not in memory.
type ImageRef struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientRecord is the authoritative in-memory state for one client identifier.
//
// Records are created lazily on the first report, consent, or capture for an
// unseen identifier and are never deleted while the process runs. Path grows
// without bound for the process lifetime; bounding it is an explicit non-goal
// (see DESIGN.md).
type ClientRecord struct {
	ClientID  string      `json:"client_id"`
	Location  *Coordinate `json:"location,omitempty"`
	LastSeen  time.Time   `json:"last_seen"`
	Consent   *Consent    `json:"consent,omitempty"`
	Path      []PathPoint `json:"path"`
	LastImage *ImageRef   `json:"last_image,omitempty"`
}

// Clone returns a deep copy of the record. The path slice is copied so the
// caller can hold the result without observing later mutations.
func (r *ClientRecord) Clone() ClientRecord {
	out := ClientRecord{
		ClientID: r.ClientID,
		LastSeen: r.LastSeen,
	}
	if r.Location != nil {
		loc := *r.Location
		out.Location = &loc
	}
	if r.Consent != nil {
		c := *r.Consent
		out.Consent = &c
	}
	if r.LastImage != nil {
		img := *r.LastImage
		out.LastImage = &img
	}
	if r.Path != nil {
		out.Path = make([]PathPoint, len(r.Path))
		copy(out.Path, r.Path)
	}
	return out
}
