// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package models

import "time"

// APIResponse is the standardized envelope for all HTTP API responses.
type APIResponse struct {
	// Status is "ok" for successful requests and "error" otherwise.
	Status string `json:"status"`

	// Data contains the response payload (omitted on error).
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (omitted on success).
	Error *APIError `json:"error,omitempty"`

	// Metadata carries timing and tracing information.
	Metadata Metadata `json:"metadata"`
}

// APIError describes a failed request.
type APIError struct {
	// Code is a machine-readable error code such as INVALID_INPUT.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries structured validation errors when available.
	Details interface{} `json:"details,omitempty"`
}

// Metadata is attached to every API response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// CaptureResult is returned by the capture endpoint.
type CaptureResult struct {
	Filename string `json:"filename"`
}
