// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package auth provides account management and session handling for the
// panel. Usernames are compared case-insensitively everywhere; stored
// usernames are lowercased at creation.
package auth

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCredentials is returned when username or password is blank.
	ErrEmptyCredentials = errors.New("empty username or password")

	// ErrUserNotFound is returned when no account matches the username.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned when the password hash comparison fails.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrDuplicateUser is returned when registering an existing username.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserCapReached is returned when the regular-account limit is hit.
	ErrUserCapReached = errors.New("maximum number of regular users reached")

	// ErrNotAuthenticated is returned when no session is established.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is returned for admin-only operations attempted
	// by a non-admin actor.
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationErrors accumulates every violated registration rule so the
// caller can report the full list, not just the first.
type ValidationErrors []string

func (e ValidationErrors) Error() string {
	return strings.Join(e, " ")
}

// AsValidationErrors unwraps err into a ValidationErrors list if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
