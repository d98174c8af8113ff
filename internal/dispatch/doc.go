// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package dispatch connects the ingest surfaces to the client store and the
// websocket hub. Every inbound event runs through one Dispatcher method that
// validates, mutates state, and queues the resulting broadcasts.
//
// Mutation and broadcast enqueue happen under a per-client key lock, so
// events for one client are observed by watchers in the order they were
// accepted. Events for different clients never contend.
package dispatch
