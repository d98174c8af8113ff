// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package metrics provides Prometheus instrumentation for the relay:
// API request latency and throughput, websocket connection lifecycle,
// broadcast delivery, and telemetry ingest counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beacon_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Websocket metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_ws_connections",
			Help: "Number of live websocket connections",
		},
	)

	WSEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_ws_events_total",
			Help: "Total websocket events delivered, by event type",
		},
		[]string{"type"},
	)

	WSDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_ws_dropped_total",
			Help: "Websocket events dropped due to full client buffers, by event type",
		},
		[]string{"type"},
	)

	// Telemetry ingest metrics
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_reports_total",
			Help: "Total location reports processed, by outcome",
		},
		[]string{"outcome"},
	)

	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_captures_total",
			Help: "Total image captures processed, by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_notifications_total",
			Help: "Total admin notifications, by outcome (delivered or dropped)",
		},
		[]string{"outcome"},
	)

	TrackedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_tracked_clients",
			Help: "Number of client records held in memory",
		},
	)
)

// Outcome label values used across the ingest counters.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeSinkError = "sink_error"
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
