// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package api

import (
	"net/http"
	"time"
)

// Health handles GET /api/v1/health with a summary of the relay state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]interface{}{
		"status":          "healthy",
		"uptime":          time.Since(h.startTime).Seconds(),
		"tracked_clients": h.store.Len(),
		"ws_connections":  h.hub.GetClientCount(),
	})
}

// HealthLive handles the liveness probe: 200 whenever the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles the readiness probe. The relay has no external
// dependencies on the serving path, so readiness follows liveness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]interface{}{
		"ready": true,
	})
}
