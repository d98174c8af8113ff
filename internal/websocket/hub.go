// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/trailsense/beacon/internal/logging"
	"github.com/trailsense/beacon/internal/metrics"
	"github.com/trailsense/beacon/internal/rooms"
)

// Websocket event types. Inbound types arrive from peers, outbound types are
// emitted by the relay; ping/pong flow both ways.
const (
	EventRegister         = "register"
	EventStreamFrame      = "stream_frame"
	EventAdminNotify      = "admin_send_notification"
	EventPing             = "ping"
	EventPong             = "pong"
	EventRegistered       = "registered"
	EventClientsSnapshot  = "clients_snapshot"
	EventLocationUpdate   = "location_update"
	EventImageCaptured    = "image_captured"
	EventNotification     = "notification"
	EventNotificationSent = "notification_sent"
)

// Message is the websocket wire envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EventHandler receives decoded inbound events from client connections.
// The Dispatcher implements this interface; the indirection keeps the
// transport layer free of routing policy.
type EventHandler interface {
	HandleRegister(c *Client, req RegisterRequest)
	HandleStreamFrame(c *Client, req StreamFramePayload)
	HandleNotify(c *Client, req NotifyRequest)
}

// envelope is the hub-internal routing instruction for one outbound message.
// Exactly one of room or targetConnID is set.
type envelope struct {
	room         string
	exceptConnID string
	targetConnID string
	msg          Message
}

// Hub owns the set of live websocket connections and delivers room-targeted
// messages to them. Lifecycle events and broadcasts flow through channels into
// a single run loop, so fan-out order matches enqueue order end to end.
type Hub struct {
	registry *rooms.Registry

	clients map[*Client]bool
	byConn  map[string]*Client

	broadcast  chan envelope
	Register   chan *Client
	Unregister chan *Client

	mu      sync.RWMutex
	handler EventHandler
}

// defaultBroadcastBuffer sizes the hub's broadcast channel when no explicit
// value is configured.
const defaultBroadcastBuffer = 256

// NewHub creates a new Hub backed by the given room registry. broadcastBuffer
// sizes the fan-out channel; values <= 0 fall back to the default.
func NewHub(registry *rooms.Registry, broadcastBuffer int) *Hub {
	if broadcastBuffer <= 0 {
		broadcastBuffer = defaultBroadcastBuffer
	}
	return &Hub{
		registry:   registry,
		clients:    make(map[*Client]bool),
		byConn:     make(map[string]*Client),
		broadcast:  make(chan envelope, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetHandler wires the inbound event handler. Must be called before the hub
// starts serving connections.
func (h *Hub) SetHandler(handler EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

func (h *Hub) eventHandler() EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// RunWithContext runs the hub until the context is canceled, then closes all
// clients and returns ctx.Err(). Designed for suture supervision.
//
// Selection is priority-ordered: shutdown first, then connection lifecycle,
// then broadcasts. This keeps membership consistent before any fan-out when
// multiple channels are ready at once.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.byConn[c.connID] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Str("conn_id", c.connID).Int("total_connections", total).Msg("websocket connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		delete(h.byConn, c.connID)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	// Transport disconnect drives room cleanup; Unregister is idempotent so
	// racing an explicit leave is harmless.
	h.registry.Unregister(c.connID)
	metrics.WSConnections.Set(float64(total))
	logging.Info().Str("conn_id", c.connID).Int("total_connections", total).Msg("websocket disconnected")
}

// deliver fans an envelope out to its targets. Clients are visited in stable
// id order so delivery order is deterministic within one envelope.
func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	var targets []*Client
	if env.targetConnID != "" {
		if c, ok := h.byConn[env.targetConnID]; ok {
			targets = []*Client{c}
		}
	} else {
		for _, connID := range h.registry.MembersOf(env.room) {
			if connID == env.exceptConnID {
				continue
			}
			if c, ok := h.byConn[connID]; ok {
				targets = append(targets, c)
			}
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- env.msg:
			metrics.WSEventsTotal.WithLabelValues(env.msg.Type).Inc()
		default:
			// Full buffer: drop and keep going. Best-effort delivery; a stuck
			// connection is torn down by its own write pump.
			metrics.WSDroppedTotal.WithLabelValues(env.msg.Type).Inc()
			logging.Warn().Str("conn_id", c.connID).Str("type", env.msg.Type).Msg("client buffer full, dropping event")
		}
	}
}

// BroadcastToRoom queues a message for every connection in the room.
// Delivery is best-effort: success means the message was handed to the hub,
// not that any peer received it.
func (h *Hub) BroadcastToRoom(room, eventType string, data interface{}) {
	h.enqueue(envelope{room: room, msg: Message{Type: eventType, Data: data}})
}

// BroadcastToRoomExcept queues a message for the room, skipping one
// connection (typically the sender of the event being relayed).
func (h *Hub) BroadcastToRoomExcept(room, exceptConnID, eventType string, data interface{}) {
	h.enqueue(envelope{room: room, exceptConnID: exceptConnID, msg: Message{Type: eventType, Data: data}})
}

// SendToConn queues a message for a single connection.
func (h *Hub) SendToConn(connID, eventType string, data interface{}) {
	h.enqueue(envelope{targetConnID: connID, msg: Message{Type: eventType, Data: data}})
}

func (h *Hub) enqueue(env envelope) {
	select {
	case h.broadcast <- env:
	default:
		metrics.WSDroppedTotal.WithLabelValues(env.msg.Type).Inc()
		logging.Warn().Str("type", env.msg.Type).Msg("broadcast channel full, dropping event")
	}
}

// GetClientCount returns the number of live connections.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// shutdown closes every client in stable order and logs the reason.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closing := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		closing = append(closing, c)
	}
	sort.Slice(closing, func(i, j int) bool { return closing[i].id < closing[j].id })
	for _, c := range closing {
		close(c.send)
		delete(h.clients, c)
		delete(h.byConn, c.connID)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(closing)).
		Msg("websocket hub stopped")
}
