// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package api

// ReportRequest is the body of POST /api/v1/report. Coordinates are plain
// floats; only non-finite values are rejected, downstream in the store.
type ReportRequest struct {
	ClientID  string  `json:"client_id" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ConsentRequest is the body of POST /api/v1/consent.
type ConsentRequest struct {
	ClientID           string `json:"client_id" validate:"required"`
	ShareLocation      bool   `json:"share_location"`
	ShareCamera        bool   `json:"share_camera"`
	ShareNotifications bool   `json:"share_notifications"`
}

// CaptureRequest is the body of POST /api/v1/capture. Image carries a base64
// data URL ("data:image/png;base64,...").
type CaptureRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Image    string `json:"image" validate:"required"`
}
