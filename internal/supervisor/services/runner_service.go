// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package services

import (
	"context"
)

// ContextRunner matches the RunWithContext method implemented by both
// *websocket.Hub and *ingest.Subscriber. Keeping the interface here avoids
// importing those packages.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService adapts a ContextRunner to suture.Service. RunWithContext
// already has the right shape: it blocks, returns ctx.Err() on shutdown, and
// returns a real error on failure so suture restarts it with backoff.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewHubService wraps the websocket hub for supervision.
func NewHubService(hub ContextRunner) *RunnerService {
	return &RunnerService{runner: hub, name: "websocket-hub"}
}

// NewIngestService wraps the MQTT ingest subscriber for supervision.
func NewIngestService(sub ContextRunner) *RunnerService {
	return &RunnerService{runner: sub, name: "mqtt-ingest"}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *RunnerService) String() string {
	return s.name
}
