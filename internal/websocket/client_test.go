// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trailsense/beacon/internal/rooms"
)

// setupWebSocketServer creates a test server whose handler drives the peer
// side of the connection.
func setupWebSocketServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn)
	}))
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	return conn
}

// recordingHandler captures events routed off the read pump.
type recordingHandler struct {
	registers chan RegisterRequest
	frames    chan StreamFramePayload
	notifies  chan NotifyRequest
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		registers: make(chan RegisterRequest, 4),
		frames:    make(chan StreamFramePayload, 4),
		notifies:  make(chan NotifyRequest, 4),
	}
}

func (h *recordingHandler) HandleRegister(_ *Client, req RegisterRequest) { h.registers <- req }
func (h *recordingHandler) HandleStreamFrame(_ *Client, req StreamFramePayload) {
	h.frames <- req
}
func (h *recordingHandler) HandleNotify(_ *Client, req NotifyRequest) { h.notifies <- req }

func TestNewClient(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	if client.connID == "" {
		t.Error("connID not assigned")
	}
	if client.send == nil || cap(client.send) != 256 {
		t.Errorf("send channel capacity = %d, want 256", cap(client.send))
	}

	other := NewClient(hub, conn)
	if other.id <= client.id {
		t.Error("client ids not monotonically increasing")
	}
	if other.connID == client.connID {
		t.Error("connIDs must be unique")
	}
}

func TestClientPingPong(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)
	startHub(t, hub)

	receivedPong := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		if err := conn.WriteJSON(Message{Type: EventPing}); err != nil {
			t.Errorf("failed to write ping: %v", err)
			return
		}
		var pong Message
		if err := conn.ReadJSON(&pong); err != nil {
			t.Errorf("failed to read pong: %v", err)
			return
		}
		if pong.Type == EventPong {
			receivedPong <- true
		}
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	select {
	case <-receivedPong:
	case <-time.After(time.Second):
		t.Error("pong not received")
	}
}

func TestClientRoutesRegisterEvent(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)
	handler := newRecordingHandler()
	hub.SetHandler(handler)
	startHub(t, hub)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		msg := map[string]interface{}{
			"type": EventRegister,
			"data": map[string]string{"role": "admin", "client_id": ""},
		}
		if err := conn.WriteJSON(msg); err != nil {
			t.Errorf("write: %v", err)
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	select {
	case req := <-handler.registers:
		if req.Role != "admin" {
			t.Errorf("role = %q, want admin", req.Role)
		}
	case <-time.After(time.Second):
		t.Error("register event not routed to handler")
	}
}

func TestClientRoutesStreamFrameAndNotify(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)
	handler := newRecordingHandler()
	hub.SetHandler(handler)
	startHub(t, hub)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		frame := map[string]interface{}{
			"type": EventStreamFrame,
			"data": map[string]string{"client_id": "dev1", "frame": "data:image/jpeg;base64,AA=="},
		}
		notify := map[string]interface{}{
			"type": EventAdminNotify,
			"data": map[string]string{"client_id": "dev1", "message": "hello"},
		}
		if err := conn.WriteJSON(frame); err != nil {
			t.Errorf("write frame: %v", err)
		}
		if err := conn.WriteJSON(notify); err != nil {
			t.Errorf("write notify: %v", err)
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	select {
	case req := <-handler.frames:
		if req.ClientID != "dev1" {
			t.Errorf("frame client_id = %q", req.ClientID)
		}
	case <-time.After(time.Second):
		t.Error("stream_frame not routed")
	}

	select {
	case req := <-handler.notifies:
		if req.Message != "hello" {
			t.Errorf("notify message = %q", req.Message)
		}
	case <-time.After(time.Second):
		t.Error("notification not routed")
	}
}

func TestClientSkipsMalformedMessage(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)
	handler := newRecordingHandler()
	hub.SetHandler(handler)
	startHub(t, hub)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		// Garbage first; the connection must survive and process the next frame.
		if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
			t.Errorf("write garbage: %v", err)
		}
		msg := map[string]interface{}{
			"type": EventRegister,
			"data": map[string]string{"role": "admin"},
		}
		if err := conn.WriteJSON(msg); err != nil {
			t.Errorf("write register: %v", err)
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	select {
	case <-handler.registers:
	case <-time.After(time.Second):
		t.Error("connection did not survive malformed message")
	}
}

func TestClientUnregistersOnClose(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)
	startHub(t, hub)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		conn.Close()
	})
	defer server.Close()

	conn := dialWebSocket(t, server)

	client := NewClient(hub, conn)
	hub.Register <- client
	waitForCount(t, hub, 1)

	client.Start()
	waitForCount(t, hub, 0)
}

func TestClientWritePumpSendsMessage(t *testing.T) {
	hub := NewHub(rooms.NewRegistry(), 0)

	received := make(chan Message, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("read: %v", err)
			return
		}
		received <- msg
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	go client.writePump()

	client.send <- Message{Type: EventNotification, Data: map[string]string{"message": "hi"}}

	select {
	case msg := <-received:
		if msg.Type != EventNotification {
			t.Errorf("type = %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Error("message not received")
	}
}
