// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package api

import (
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/trailsense/beacon/internal/config"
	"github.com/trailsense/beacon/internal/dispatch"
	"github.com/trailsense/beacon/internal/logging"
	"github.com/trailsense/beacon/internal/store"
	"github.com/trailsense/beacon/internal/websocket"
)

// Handler holds the dependencies of every HTTP endpoint.
type Handler struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	hub        *websocket.Hub
	config     *config.Config
	startTime  time.Time
}

// NewHandler creates a Handler over the relay core.
func NewHandler(st *store.Store, dispatcher *dispatch.Dispatcher, hub *websocket.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:      st,
		dispatcher: dispatcher,
		hub:        hub,
		config:     cfg,
		startTime:  time.Now(),
	}
}

// getUpgrader creates a websocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() gorilla.Upgrader {
	return gorilla.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates websocket connection origins against the
// configured CORS origins. Connections without an Origin header are allowed:
// device clients are not browsers and never send one.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and hands it to the hub. Room membership
// is established later by an explicit register event on the socket.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
