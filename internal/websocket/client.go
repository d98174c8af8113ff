// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package websocket

import (
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/trailsense/beacon/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2 * 1024 * 1024 // 2 MB, stream frames are data URLs
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// Clients are sorted by this id during fan-out, eliminating non-deterministic
// map iteration order.
var clientIDCounter atomic.Uint64

// inboundMessage is the wire envelope as received; Data stays raw until the
// event type selects a payload shape.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RegisterRequest is the payload of a register event.
type RegisterRequest struct {
	Role     string `json:"role"`
	ClientID string `json:"client_id"`
}

// StreamFramePayload is the payload of a stream_frame event.
type StreamFramePayload struct {
	ClientID string `json:"client_id"`
	Frame    string `json:"frame"`
}

// NotifyRequest is the payload of an admin_send_notification event.
type NotifyRequest struct {
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	// id is a unique identifier for this client, used for deterministic ordering.
	id uint64
	// connID is the stable public identity of this connection; the room
	// registry tracks membership by it.
	connID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
}

// NewClient creates a new Client with a unique deterministic ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		connID: uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, 256),
	}
}

// ID returns the client's unique identifier for deterministic ordering.
func (c *Client) ID() uint64 {
	return c.id
}

// ConnID returns the connection identity used for room membership.
func (c *Client) ConnID() string {
	return c.connID
}

// readPump pumps messages from the websocket connection to the event handler.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("conn_id", c.connID).Msg("unexpected websocket close error")
			}
			break
		}
		c.handleInbound(raw)
	}
}

// handleInbound decodes one inbound frame and routes it. Malformed frames are
// logged and skipped; a bad message must not take the connection down.
func (c *Client) handleInbound(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logging.Warn().Err(err).Str("conn_id", c.connID).Msg("malformed websocket message")
		return
	}

	if msg.Type == EventPing {
		select {
		case c.send <- Message{Type: EventPong}:
		default:
		}
		return
	}

	handler := c.hub.eventHandler()
	if handler == nil {
		logging.Warn().Str("conn_id", c.connID).Str("type", msg.Type).Msg("no event handler wired, dropping message")
		return
	}

	switch msg.Type {
	case EventRegister:
		var req RegisterRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logging.Warn().Err(err).Str("conn_id", c.connID).Msg("malformed register payload")
			return
		}
		handler.HandleRegister(c, req)

	case EventStreamFrame:
		var req StreamFramePayload
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logging.Warn().Err(err).Str("conn_id", c.connID).Msg("malformed stream_frame payload")
			return
		}
		handler.HandleStreamFrame(c, req)

	case EventAdminNotify:
		var req NotifyRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logging.Warn().Err(err).Str("conn_id", c.connID).Msg("malformed notification payload")
			return
		}
		handler.HandleNotify(c, req)

	default:
		logging.Debug().Str("conn_id", c.connID).Str("type", msg.Type).Msg("unknown websocket event type")
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
