// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown is called, like the
// real http.Server.
type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	done        chan struct{}
	shutdowns   int
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{done: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.done
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(_ context.Context) error {
	f.shutdowns++
	close(f.done)
	return f.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if srv.shutdowns != 1 {
		t.Errorf("shutdowns = %d, want 1", srv.shutdowns)
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve returned %v, want listen error", err)
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.shutdownErr = errors.New("shutdown stuck")
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Serve(ctx)
	if err == nil || !errors.Is(err, srv.shutdownErr) {
		t.Errorf("Serve returned %v, want shutdown error", err)
	}
}

func TestHTTPServiceDefaultsTimeout(t *testing.T) {
	svc := NewHTTPServerService(newFakeHTTPServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %s, want 10s", svc.shutdownTimeout)
	}
}

func TestHTTPServiceString(t *testing.T) {
	svc := NewHTTPServerService(newFakeHTTPServer(), time.Second)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
