// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/models"
)

type registerRequest struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse is the outward shape of an account; the password hash never
// leaves the server.
type userResponse struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{Username: u.Username, IsAdmin: u.IsAdmin}
}

// Register creates an account and signs it in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, session, err := h.auth.Register(req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	respondJSON(w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: session.Token})
}

// Login validates credentials and establishes the session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmptyCredentials):
			metrics.RecordLoginAttempt("empty")
		case errors.Is(err, auth.ErrUserNotFound):
			metrics.RecordLoginAttempt("user_not_found")
		case errors.Is(err, auth.ErrInvalidPassword):
			metrics.RecordLoginAttempt("invalid_password")
		}
		// Login failures for unknown users report 401, not 404, to avoid
		// confirming which usernames exist.
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "User not found", nil)
			return
		}
		respondDomainError(w, err)
		return
	}

	metrics.RecordLoginAttempt("success")

	// Sign-out cancelled every watch; restore them for sensors still active.
	if err := h.panel.Rearm(); err != nil {
		logging.Error().Err(err).Msg("Failed to rearm sensor watches after login")
	}

	h.setSessionCookie(w, session)
	respondJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: session.Token})
}

// Logout clears the session and cancels every pending sensor watch timer.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	username, err := h.auth.Logout()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.panel.CancelAll()
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"username": username})
}

// Session returns the current authenticated actor.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, r)
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Username: actor.Username, IsAdmin: actor.IsAdmin})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
