// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package store holds the authoritative in-memory client records.
//
// The store is keyed by caller-supplied opaque client identifiers. Records are
// created lazily on the first mutation for an unseen identifier and live for
// the process lifetime; there is no eviction. Mutations on the same identifier
// serialize on a per-record mutex, while different identifiers never block
// each other. Every operation returns a deep-copied snapshot, so callers can
// hold results without racing later writes.
package store
