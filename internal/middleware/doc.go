// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package middleware provides HTTP middleware shared by the API surface:
// request ID propagation and Prometheus request instrumentation.
package middleware
