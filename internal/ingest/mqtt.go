// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package ingest

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"

	"github.com/trailsense/beacon/internal/config"
	"github.com/trailsense/beacon/internal/logging"
	"github.com/trailsense/beacon/internal/models"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds, passed to paho Disconnect
)

// Reporter accepts a location report. Satisfied by *dispatch.Dispatcher.
type Reporter interface {
	Report(clientID string, lat, lon float64) (models.ClientRecord, error)
}

// reportPayload is the JSON body expected on the broker topic. It mirrors
// the HTTP report request so devices can switch transports without changing
// their payloads.
type reportPayload struct {
	ClientID  string  `json:"client_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Subscriber consumes location reports from an MQTT broker topic and feeds
// them to a Reporter. Malformed or rejected payloads are logged and skipped;
// the subscription stays up.
type Subscriber struct {
	cfg      config.MQTTConfig
	reporter Reporter

	// newClient is swappable for tests.
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

// NewSubscriber creates a subscriber for the configured broker and topic.
func NewSubscriber(cfg config.MQTTConfig, reporter Reporter) *Subscriber {
	return &Subscriber{
		cfg:       cfg,
		reporter:  reporter,
		newClient: mqtt.NewClient,
	}
}

// RunWithContext connects, subscribes, and blocks until the context is
// canceled. Designed to run under suture supervision: a connect or subscribe
// failure returns an error and the supervisor restarts with backoff.
func (s *Subscriber) RunWithContext(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(true)

	client := s.newClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect to %s timed out", s.cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.BrokerURL, err)
	}

	subToken := client.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg)
	})
	if !subToken.WaitTimeout(connectTimeout) {
		client.Disconnect(disconnectQuiesce)
		return fmt.Errorf("mqtt subscribe to %s timed out", s.cfg.Topic)
	}
	if err := subToken.Error(); err != nil {
		client.Disconnect(disconnectQuiesce)
		return fmt.Errorf("mqtt subscribe to %s: %w", s.cfg.Topic, err)
	}

	logging.Info().
		Str("broker", s.cfg.BrokerURL).
		Str("topic", s.cfg.Topic).
		Uint8("qos", s.cfg.QoS).
		Msg("mqtt ingest subscribed")

	<-ctx.Done()

	client.Unsubscribe(s.cfg.Topic)
	client.Disconnect(disconnectQuiesce)
	logging.Info().Str("topic", s.cfg.Topic).Msg("mqtt ingest stopped")
	return ctx.Err()
}

// handleMessage decodes one broker message and hands it to the reporter.
func (s *Subscriber) handleMessage(msg mqtt.Message) {
	var payload reportPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		logging.Warn().Err(err).Str("topic", msg.Topic()).Msg("malformed mqtt report, skipping")
		return
	}

	if _, err := s.reporter.Report(payload.ClientID, payload.Latitude, payload.Longitude); err != nil {
		logging.Warn().Err(err).Str("client_id", payload.ClientID).Msg("mqtt report rejected")
	}
}
