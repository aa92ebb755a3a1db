// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package api exposes the HTTP surface of the service: authentication,
// panel control, audit log access, and the admin console, all under
// /api/v1 with a uniform JSON envelope.
package api

import (
	"github.com/tomtom215/sentinel/internal/admin"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/simulator"
)

// Handlers bundles the domain services the HTTP layer delegates to.
type Handlers struct {
	auth     *auth.Authenticator
	sessions *auth.SessionManager
	panel    *simulator.Panel
	console  *admin.Console
	audit    *audit.Service
}

// NewHandlers wires the HTTP layer to the domain services.
func NewHandlers(
	authn *auth.Authenticator,
	sessions *auth.SessionManager,
	panel *simulator.Panel,
	console *admin.Console,
	auditLog *audit.Service,
) *Handlers {
	return &Handlers{
		auth:     authn,
		sessions: sessions,
		panel:    panel,
		console:  console,
		audit:    auditLog,
	}
}
