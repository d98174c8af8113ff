// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package models defines the shared data structures for Beacon: the
// authoritative per-client record, the websocket event payloads, and the
// standardized API response envelope.
//
// The types here are plain data carriers with no behavior beyond copying.
// Concurrency control lives in the packages that own the data (internal/store,
// internal/rooms); models values handed across package boundaries are always
// snapshots the receiver may keep.
package models
