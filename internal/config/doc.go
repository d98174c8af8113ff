// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package config loads the relay configuration with koanf: built-in
// defaults, then an optional YAML file, then environment variables.
package config
