// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package main is the entry point for the Sentinel server.
//
// Sentinel is a headless security panel simulation: sensors can be armed,
// armed sensors randomly trigger their paired alarms, and every
// security-relevant action lands in a persistent audit log. State lives
// in an embedded BadgerDB store as JSON blobs, so a restart resumes the
// panel exactly where it left off.
//
// The server initializes in this order:
//
//  1. Configuration: layered defaults, config.yaml, SENTINEL_* env vars (Koanf v2)
//  2. Store: BadgerDB at database.path, or in-memory when the path is empty
//  3. Accounts: the built-in admin is seeded on first start
//  4. Supervisor: panel watches, audit retention, and the HTTP server run
//     under a suture tree with per-layer restart isolation
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests, cancels
// every pending sensor watch, and closes the store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sentinel/internal/admin"
	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/simulator"
	"github.com/tomtom215/sentinel/internal/store"
	"github.com/tomtom215/sentinel/internal/supervisor"
	"github.com/tomtom215/sentinel/internal/supervisor/services"
)

const retentionSweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting Sentinel")

	kv, err := store.OpenBadger(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()
	if cfg.Database.Path == "" {
		logging.Warn().Msg("No database path configured, state will not survive restarts")
	}

	auditLog := audit.NewService(kv, models.LogSettings{
		MaxEntries:    cfg.Audit.MaxEntries,
		RetentionDays: cfg.Audit.RetentionDays,
		AutoDelete:    cfg.Audit.AutoDelete,
	})

	users := auth.NewRepository(kv)
	sessions, err := auth.NewSessionManager(kv, cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure sessions")
	}
	policy := config.DefaultPasswordPolicy()
	authn := auth.NewAuthenticator(users, sessions, auditLog, policy, cfg.Security)
	if err := authn.EnsureDefaultAdmin(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	panel := simulator.NewPanel(kv, auditLog, cfg.Simulator)
	console := admin.NewConsole(users, sessions, panel, auditLog, policy)

	handlers := api.NewHandlers(authn, sessions, panel, console, auditLog)
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      api.NewRouter(handlers, cfg.Security),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPanelService(services.NewPanelService(panel))
	tree.AddPanelService(services.NewRetentionService(auditLog, retentionSweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

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
		logging.Info().Msg("Shutting down, waiting for services to stop")
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

	logging.Info().Msg("Sentinel stopped")
}
