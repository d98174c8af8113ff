// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/trailsense/beacon/internal/logging"
	"github.com/trailsense/beacon/internal/metrics"
	"github.com/trailsense/beacon/internal/models"
	"github.com/trailsense/beacon/internal/rooms"
	"github.com/trailsense/beacon/internal/storage"
	"github.com/trailsense/beacon/internal/store"
	"github.com/trailsense/beacon/internal/websocket"
)

// ErrInvalidInput marks telemetry rejected before any state changed.
var ErrInvalidInput = errors.New("invalid input")

// ErrSinkWrite marks a capture whose image bytes could not be stored. The
// client record is left untouched.
var ErrSinkWrite = errors.New("image sink write failed")

// Broadcaster is the subset of the hub the dispatcher fans out through.
type Broadcaster interface {
	BroadcastToRoom(room, eventType string, data interface{})
	BroadcastToRoomExcept(room, exceptConnID, eventType string, data interface{})
	SendToConn(connID, eventType string, data interface{})
}

// Dispatcher routes every inbound event: it updates the client store, writes
// captures to the image sink, and queues the broadcasts watchers see.
//
// Implements websocket.EventHandler for the socket-borne events; the HTTP
// handlers call Report, Consent, and Capture directly.
type Dispatcher struct {
	store    *store.Store
	registry *rooms.Registry
	sink     storage.ImageSink
	hub      Broadcaster
	locks    keyedMutex
	now      func() time.Time
}

// NewDispatcher wires a dispatcher over the given store, registry, sink and hub.
func NewDispatcher(st *store.Store, registry *rooms.Registry, sink storage.ImageSink, hub Broadcaster) *Dispatcher {
	return &Dispatcher{
		store:    st,
		registry: registry,
		sink:     sink,
		hub:      hub,
		now:      time.Now,
	}
}

// Report records a location report and notifies the admins room.
func (d *Dispatcher) Report(clientID string, lat, lon float64) (models.ClientRecord, error) {
	if clientID == "" {
		metrics.ReportsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.ClientRecord{}, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}

	mu := d.locks.Lock(clientID)
	defer mu.Unlock()

	rec, err := d.store.UpsertLocation(clientID, lat, lon, d.now())
	if err != nil {
		metrics.ReportsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.ClientRecord{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	d.hub.BroadcastToRoom(rooms.AdminsRoom, websocket.EventLocationUpdate, models.LocationUpdate{
		ClientID:  clientID,
		Latitude:  lat,
		Longitude: lon,
		LastSeen:  rec.LastSeen,
	})

	metrics.ReportsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.TrackedClients.Set(float64(d.store.Len()))
	logging.Debug().Str("client_id", clientID).Float64("lat", lat).Float64("lon", lon).Msg("location report accepted")
	return rec, nil
}

// Consent records a client's consent decision. Consent changes are private;
// nothing is broadcast.
func (d *Dispatcher) Consent(clientID string, consent models.Consent) (models.ClientRecord, error) {
	if clientID == "" {
		return models.ClientRecord{}, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}

	mu := d.locks.Lock(clientID)
	defer mu.Unlock()

	rec := d.store.UpsertConsent(clientID, consent, d.now())
	metrics.TrackedClients.Set(float64(d.store.Len()))
	logging.Info().Str("client_id", clientID).
		Bool("share_location", consent.ShareLocation).
		Bool("share_camera", consent.ShareCamera).
		Msg("consent updated")
	return rec, nil
}

// Capture stores an image carried as a base64 data URL, records the reference,
// and notifies the admins room. The sink write happens before the record
// update: a failed write leaves no dangling reference.
func (d *Dispatcher) Capture(clientID, dataURL string) (string, error) {
	if clientID == "" {
		metrics.CapturesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return "", fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}

	data, ext, err := parseImageDataURL(dataURL)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return "", err
	}

	mu := d.locks.Lock(clientID)
	defer mu.Unlock()

	filename, err := d.sink.Write(clientID, data, ext)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues(metrics.OutcomeSinkError).Inc()
		logging.Error().Err(err).Str("client_id", clientID).Msg("image sink write failed")
		return "", fmt.Errorf("%w: %s", ErrSinkWrite, err)
	}

	rec := d.store.UpsertImage(clientID, filename, d.now())

	d.hub.BroadcastToRoom(rooms.AdminsRoom, websocket.EventImageCaptured, models.ImageCaptured{
		ClientID:  clientID,
		Filename:  filename,
		Timestamp: rec.LastImage.Timestamp,
	})

	metrics.CapturesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.TrackedClients.Set(float64(d.store.Len()))
	return filename, nil
}

// HandleRegister admits a connection to its room and acknowledges the result
// on that connection only. A refused registration leaves the socket open; the
// peer may retry with corrected credentials.
func (d *Dispatcher) HandleRegister(c *websocket.Client, req websocket.RegisterRequest) {
	assignment, err := d.registry.Register(c.ConnID(), rooms.Role(req.Role), req.ClientID)
	if err != nil {
		logging.Warn().Err(err).Str("conn_id", c.ConnID()).Str("role", req.Role).Msg("registration refused")
		d.hub.SendToConn(c.ConnID(), websocket.EventRegistered, models.Registered{OK: false, Error: err.Error()})
		return
	}

	d.hub.SendToConn(c.ConnID(), websocket.EventRegistered, models.Registered{
		OK:       true,
		Role:     string(assignment.Role),
		ClientID: assignment.ClientID,
		Room:     assignment.Room,
	})

	// Admin consoles bootstrap from a full snapshot; only the requesting
	// connection receives it.
	if assignment.Role == rooms.RoleAdmin {
		d.hub.SendToConn(c.ConnID(), websocket.EventClientsSnapshot, d.store.SnapshotAll())
	}

	logging.Info().Str("conn_id", c.ConnID()).Str("role", string(assignment.Role)).Str("room", assignment.Room).Msg("connection registered")
}

// HandleStreamFrame relays a live camera frame to the admins room, excluding
// the sender. Frames are transient; nothing is stored.
func (d *Dispatcher) HandleStreamFrame(c *websocket.Client, req websocket.StreamFramePayload) {
	if req.ClientID == "" || req.Frame == "" {
		logging.Debug().Str("conn_id", c.ConnID()).Msg("stream frame missing client_id or frame, dropping")
		return
	}

	d.hub.BroadcastToRoomExcept(rooms.AdminsRoom, c.ConnID(), websocket.EventStreamFrame, models.StreamFrame{
		ClientID: req.ClientID,
		Frame:    req.Frame,
	})
}

// HandleNotify delivers an admin notification to the target client's room and
// acknowledges delivery to the admins room. A target with no live connection
// is dropped silently: delivery is best-effort and the sender learns nothing
// beyond the missing ack.
func (d *Dispatcher) HandleNotify(c *websocket.Client, req websocket.NotifyRequest) {
	if req.ClientID == "" || req.Message == "" {
		logging.Debug().Str("conn_id", c.ConnID()).Msg("notification missing client_id or message, dropping")
		metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeDropped).Inc()
		return
	}

	room, ok := d.registry.RoomOf(req.ClientID)
	if !ok {
		logging.Debug().Str("client_id", req.ClientID).Msg("notification target offline, dropping")
		metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeDropped).Inc()
		return
	}

	now := d.now()
	d.hub.BroadcastToRoom(room, websocket.EventNotification, models.Notification{
		Message:   req.Message,
		Timestamp: now,
	})
	d.hub.BroadcastToRoom(rooms.AdminsRoom, websocket.EventNotificationSent, models.NotificationSent{
		ClientID:  req.ClientID,
		Message:   req.Message,
		Timestamp: now,
	})

	metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()
	logging.Info().Str("client_id", req.ClientID).Msg("notification delivered")
}
