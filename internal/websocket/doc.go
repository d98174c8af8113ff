// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package websocket implements the realtime transport of the relay.
//
// A single Hub owns all live connections and routes outbound messages to
// rooms resolved through the room registry. Each connection is served by a
// Client running the standard gorilla read/write pump pair; inbound events
// are decoded here and handed to an EventHandler, which supplies the routing
// policy. All fan-out flows through one FIFO channel into the hub's run
// loop, so messages enqueued in order are delivered in order.
package websocket
