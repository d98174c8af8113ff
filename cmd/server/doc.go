// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Command server runs the Beacon relay: HTTP telemetry ingest, the
// websocket hub for live watchers, and the optional MQTT ingest path,
// all under a suture supervision tree.
package main
