// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package ingest provides the optional MQTT telemetry path. Device fleets
// that cannot hold HTTP connections publish location reports to a broker
// topic; the subscriber feeds them into the same dispatch pipeline as the
// HTTP endpoint, so watchers see no difference in the events they receive.
package ingest
