// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailsense/beacon/internal/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil))

	if captured == "" {
		t.Fatal("request ID not set in context")
	}
	if rr.Header().Get("X-Request-ID") != captured {
		t.Error("header and context request IDs differ")
	}
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	var captured string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")

	rr := httptest.NewRecorder()
	handler(rr, req)

	if captured != "upstream-id" {
		t.Errorf("request ID = %q, want upstream-id", captured)
	}
}

func TestRequestIDPopulatesLoggingContext(t *testing.T) {
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		if logging.RequestIDFromContext(r.Context()) == "" {
			t.Error("logging request ID missing")
		}
		if logging.CorrelationIDFromContext(r.Context()) == "" {
			t.Error("correlation ID missing")
		}
	})

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestPrometheusMetricsCapturesStatus(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodPost, "/api/v1/report", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestPrometheusMetricsDefaultsToOK(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
