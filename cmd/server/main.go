// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/trailsense/beacon/internal/api"
	"github.com/trailsense/beacon/internal/config"
	"github.com/trailsense/beacon/internal/dispatch"
	"github.com/trailsense/beacon/internal/ingest"
	"github.com/trailsense/beacon/internal/logging"
	"github.com/trailsense/beacon/internal/rooms"
	"github.com/trailsense/beacon/internal/storage"
	"github.com/trailsense/beacon/internal/store"
	"github.com/trailsense/beacon/internal/supervisor"
	"github.com/trailsense/beacon/internal/supervisor/services"
	ws "github.com/trailsense/beacon/internal/websocket"
)

func main() {
	// A .env file is optional; environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("image_dir", cfg.Storage.ImageDir).
		Bool("mqtt_enabled", cfg.MQTT.Enabled).
		Msg("Starting Beacon relay")

	sink, err := storage.NewFilesystemSink(cfg.Storage.ImageDir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Storage.ImageDir).Msg("Failed to initialize image sink")
	}

	st := store.New()
	registry := rooms.NewRegistry()
	hub := ws.NewHub(registry, cfg.WebSocket.BroadcastBuffer)
	dispatcher := dispatch.NewDispatcher(st, registry, sink, hub)
	hub.SetHandler(dispatcher)

	handler := api.NewHandler(st, dispatcher, hub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	tree.AddMessagingService(services.NewHubService(hub))
	if cfg.MQTT.Enabled {
		tree.AddMessagingService(services.NewIngestService(ingest.NewSubscriber(cfg.MQTT, dispatcher)))
		logging.Info().Str("broker", cfg.MQTT.BrokerURL).Str("topic", cfg.MQTT.Topic).Msg("MQTT ingest service added")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Relay stopped gracefully")
}
