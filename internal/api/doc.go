// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package api provides the HTTP ingress surface: telemetry endpoints, admin
// read endpoints, health probes, and the websocket upgrade. Routing uses the
// Chi router with go-chi/cors and go-chi/httprate middleware.
package api
