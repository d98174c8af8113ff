// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package supervisor builds the suture supervision tree for the relay.
//
// The tree has two layers under the root: messaging (websocket hub, MQTT
// ingest) and api (HTTP server). A crash in the messaging layer restarts
// with backoff without taking the HTTP listener down.
package supervisor
