// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package services

import (
	"context"
	"errors"
	"testing"
)

type fakeRunner struct {
	err    error
	called bool
}

func (f *fakeRunner) RunWithContext(ctx context.Context) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerServiceDelegates(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	svc := NewHubService(runner)

	err := svc.Serve(context.Background())
	if !runner.called {
		t.Error("Serve did not call RunWithContext")
	}
	if !errors.Is(err, runner.err) {
		t.Errorf("Serve returned %v", err)
	}
}

func TestRunnerServiceReturnsOnCancel(t *testing.T) {
	svc := NewIngestService(&fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

func TestRunnerServiceNames(t *testing.T) {
	if got := NewHubService(&fakeRunner{}).String(); got != "websocket-hub" {
		t.Errorf("hub service name = %q", got)
	}
	if got := NewIngestService(&fakeRunner{}).String(); got != "mqtt-ingest" {
		t.Errorf("ingest service name = %q", got)
	}
}
