// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/models"
)

type updateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Force    bool   `json:"force"`
}

type createSensorRequest struct {
	Name        string `json:"name" validate:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type logSettingsRequest struct {
	MaxEntries    int  `json:"maxEntries" validate:"min=0"`
	RetentionDays int  `json:"retentionDays" validate:"min=0"`
	AutoDelete    bool `json:"autoDelete"`
}

// ListUsers returns every registered account, admins included.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	users, err := h.console.ListUsers(actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{Username: u.Username, IsAdmin: u.IsAdmin})
	}
	respondJSON(w, http.StatusOK, out)
}

// UpdateUser renames an account and/or replaces its password. A weak
// password is refused unless the request sets force.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.console.UpdateUser(actor, chi.URLParam(r, "username"),
		req.Username, req.Password, req.Force)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Username: updated.Username, IsAdmin: updated.IsAdmin})
}

// DeleteUser removes an account. The built-in admin and the caller's own
// account are protected.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := h.console.DeleteUser(actor, chi.URLParam(r, "username")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// ToggleAdmin flips the admin flag on an account.
func (h *Handlers) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	updated, err := h.console.ToggleAdmin(actor, chi.URLParam(r, "username"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Username: updated.Username, IsAdmin: updated.IsAdmin})
}

// CreateSensor registers a custom sensor type.
func (h *Handlers) CreateSensor(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var req createSensorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sensor, err := h.console.CreateSensor(actor, req.Name, req.Icon, req.Description)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sensor)
}

// DeleteSensor removes a custom sensor and all of its tracked state.
func (h *Handlers) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := h.console.DeleteSensor(actor, chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Sensor deleted"})
}

// LogSettings returns the audit retention settings.
func (h *Handlers) LogSettings(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	settings, err := h.console.LogSettings(actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateLogSettings replaces the audit retention settings and applies
// them immediately.
func (h *Handlers) UpdateLogSettings(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var req logSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.console.UpdateLogSettings(actor, models.LogSettings{
		MaxEntries:    req.MaxEntries,
		RetentionDays: req.RetentionDays,
		AutoDelete:    req.AutoDelete,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
