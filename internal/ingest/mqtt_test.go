// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package ingest

import (
	"errors"
	"sync"
	"testing"

	"github.com/trailsense/beacon/internal/config"
	"github.com/trailsense/beacon/internal/models"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type reportCall struct {
	clientID string
	lat, lon float64
}

type fakeReporter struct {
	mu    sync.Mutex
	calls []reportCall
	err   error
}

func (r *fakeReporter) Report(clientID string, lat, lon float64) (models.ClientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reportCall{clientID, lat, lon})
	if r.err != nil {
		return models.ClientRecord{}, r.err
	}
	return models.ClientRecord{ClientID: clientID}, nil
}

func (r *fakeReporter) snapshot() []reportCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reportCall(nil), r.calls...)
}

func newTestSubscriber(reporter Reporter) *Subscriber {
	return NewSubscriber(config.MQTTConfig{
		BrokerURL: "tcp://localhost:1883",
		Topic:     "beacon/reports",
		ClientID:  "beacon-test",
		QoS:       1,
	}, reporter)
}

func TestHandleMessageFeedsReporter(t *testing.T) {
	reporter := &fakeReporter{}
	sub := newTestSubscriber(reporter)

	sub.handleMessage(&fakeMessage{
		topic:   "beacon/reports",
		payload: []byte(`{"client_id":"dev1","latitude":48.85,"longitude":2.35}`),
	})

	calls := reporter.snapshot()
	if len(calls) != 1 {
		t.Fatalf("reporter calls = %d, want 1", len(calls))
	}
	if calls[0].clientID != "dev1" || calls[0].lat != 48.85 || calls[0].lon != 2.35 {
		t.Errorf("call = %+v", calls[0])
	}
}

func TestHandleMessageSkipsMalformedPayload(t *testing.T) {
	reporter := &fakeReporter{}
	sub := newTestSubscriber(reporter)

	sub.handleMessage(&fakeMessage{topic: "beacon/reports", payload: []byte("not json")})

	if len(reporter.snapshot()) != 0 {
		t.Error("malformed payload reached the reporter")
	}
}

func TestHandleMessageSurvivesRejectedReport(t *testing.T) {
	reporter := &fakeReporter{err: errors.New("invalid input")}
	sub := newTestSubscriber(reporter)

	sub.handleMessage(&fakeMessage{
		topic:   "beacon/reports",
		payload: []byte(`{"client_id":"","latitude":1,"longitude":2}`),
	})
	sub.handleMessage(&fakeMessage{
		topic:   "beacon/reports",
		payload: []byte(`{"client_id":"dev1","latitude":1,"longitude":2}`),
	})

	if len(reporter.snapshot()) != 2 {
		t.Error("rejected report stopped message handling")
	}
}
