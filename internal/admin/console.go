// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package admin orchestrates privileged operations. Every mutation is
// gated on the acting user's admin flag; refusals surface
// auth.ErrPermissionDenied rather than being silently ignored.
package admin

import (
	"fmt"
	"io"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/simulator"
)

// Console exposes the admin-only operations of the panel.
type Console struct {
	users    *auth.Repository
	sessions *auth.SessionManager
	panel    *simulator.Panel
	audit    *audit.Service
	policy   config.PasswordPolicy
}

// NewConsole wires the console to its collaborators.
func NewConsole(users *auth.Repository, sessions *auth.SessionManager, panel *simulator.Panel, auditLog *audit.Service, policy config.PasswordPolicy) *Console {
	return &Console{
		users:    users,
		sessions: sessions,
		panel:    panel,
		audit:    auditLog,
		policy:   policy,
	}
}

func (c *Console) requireAdmin(actor auth.Actor) error {
	if !actor.IsAdmin {
		return auth.ErrPermissionDenied
	}
	return nil
}

// ListUsers returns every account.
func (c *Console) ListUsers(actor auth.Actor) ([]models.User, error) {
	if err := c.requireAdmin(actor); err != nil {
		return nil, err
	}
	return c.users.All()
}

// UpdateUser renames and/or re-passwords an account. The built-in admin
// account cannot be edited. A new password that violates the policy is
// rejected unless force is set; forcing is allowed but logged, matching
// the explicit-override flow.
func (c *Console) UpdateUser(actor auth.Actor, username, newUsername, newPassword string, force bool) (models.User, error) {
	if err := c.requireAdmin(actor); err != nil {
		return models.User{}, err
	}

	username = models.NormalizeUsername(username)
	if username == models.AdminUsername {
		return models.User{}, auth.ErrPermissionDenied
	}

	user, found, err := c.users.Get(username)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, auth.ErrUserNotFound
	}

	if newUsername == "" {
		newUsername = username
	}
	newUsername = models.NormalizeUsername(newUsername)
	if newUsername == models.AdminUsername {
		return models.User{}, auth.ErrPermissionDenied
	}

	var violations auth.ValidationErrors
	violations = append(violations, c.policy.ValidateUsername(newUsername)...)
	if newPassword != "" {
		violations = append(violations, c.policy.ValidatePassword(newPassword)...)
	}
	if len(violations) > 0 {
		if !force {
			return models.User{}, violations
		}
		logging.Warn().
			Str("username", newUsername).
			Str("actor", actor.Username).
			Msg("Policy violations overridden on user edit")
	}

	updated := user
	updated.Username = newUsername
	if newPassword != "" {
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return models.User{}, err
		}
		updated.PasswordHash = hash
	}

	if err := c.users.Rename(username, updated); err != nil {
		return models.User{}, err
	}
	if err := c.sessions.Touch(username, updated); err != nil {
		return models.User{}, err
	}
	if err := c.audit.Record(actor.Username, "Updated user "+username); err != nil {
		return models.User{}, err
	}
	return updated, nil
}

// DeleteUser removes an account. The built-in admin account and the acting
// admin's own account are protected.
func (c *Console) DeleteUser(actor auth.Actor, username string) error {
	if err := c.requireAdmin(actor); err != nil {
		return err
	}

	username = models.NormalizeUsername(username)
	if username == models.AdminUsername || username == models.NormalizeUsername(actor.Username) {
		return auth.ErrPermissionDenied
	}

	if _, found, err := c.users.Get(username); err != nil {
		return err
	} else if !found {
		return auth.ErrUserNotFound
	}

	if err := c.users.Delete(username); err != nil {
		return err
	}
	return c.audit.Record(actor.Username, "Deleted user "+username)
}

// ToggleAdmin flips an account's admin flag. The built-in admin account
// and the acting admin's own account are protected.
func (c *Console) ToggleAdmin(actor auth.Actor, username string) (models.User, error) {
	if err := c.requireAdmin(actor); err != nil {
		return models.User{}, err
	}

	username = models.NormalizeUsername(username)
	if username == models.AdminUsername || username == models.NormalizeUsername(actor.Username) {
		return models.User{}, auth.ErrPermissionDenied
	}

	user, found, err := c.users.Get(username)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, auth.ErrUserNotFound
	}

	user.IsAdmin = !user.IsAdmin
	if err := c.users.Put(user); err != nil {
		return models.User{}, err
	}
	if err := c.sessions.Touch(username, user); err != nil {
		return models.User{}, err
	}

	action := "Revoked admin from " + username
	if user.IsAdmin {
		action = "Granted admin to " + username
	}
	if err := c.audit.Record(actor.Username, action); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateSensor defines a new custom sensor.
func (c *Console) CreateSensor(actor auth.Actor, name, icon, description string) (models.CustomSensor, error) {
	if err := c.requireAdmin(actor); err != nil {
		return models.CustomSensor{}, err
	}

	created, err := c.panel.CreateCustomSensor(name, icon, description)
	if err != nil {
		return models.CustomSensor{}, err
	}
	if err := c.audit.Record(actor.Username, "Created custom sensor "+created.Name); err != nil {
		return models.CustomSensor{}, err
	}
	return created, nil
}

// DeleteSensor removes a custom sensor and its alarm.
func (c *Console) DeleteSensor(actor auth.Actor, id string) error {
	if err := c.requireAdmin(actor); err != nil {
		return err
	}

	customs, err := c.panel.CustomSensors()
	if err != nil {
		return err
	}
	name := ""
	for _, s := range customs {
		if s.ID == id {
			name = s.Name
			break
		}
	}

	if err := c.panel.DeleteCustomSensor(id); err != nil {
		return err
	}
	return c.audit.Record(actor.Username, "Deleted custom sensor "+name)
}

// LogSettings returns the current retention settings.
func (c *Console) LogSettings(actor auth.Actor) (models.LogSettings, error) {
	if err := c.requireAdmin(actor); err != nil {
		return models.LogSettings{}, err
	}
	return c.audit.Settings()
}

// UpdateLogSettings stores new retention settings and applies them to the
// existing log immediately.
func (c *Console) UpdateLogSettings(actor auth.Actor, settings models.LogSettings) (models.LogSettings, error) {
	if err := c.requireAdmin(actor); err != nil {
		return models.LogSettings{}, err
	}

	if err := c.audit.UpdateSettings(settings); err != nil {
		return models.LogSettings{}, err
	}
	if err := c.audit.Record(actor.Username, "Updated log settings"); err != nil {
		return models.LogSettings{}, err
	}
	if _, err := c.audit.PruneWithSettings(); err != nil {
		return models.LogSettings{}, fmt.Errorf("apply log settings: %w", err)
	}
	return c.audit.Settings()
}

// ClearLogs wipes the audit log, leaving a single entry recording the wipe.
func (c *Console) ClearLogs(actor auth.Actor) error {
	if err := c.requireAdmin(actor); err != nil {
		return err
	}
	return c.audit.Clear(actor.Username)
}

// ExportLogs writes the log as CSV.
func (c *Console) ExportLogs(actor auth.Actor, w io.Writer) error {
	if err := c.requireAdmin(actor); err != nil {
		return err
	}
	return c.audit.WriteCSV(w)
}
