// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/models"
)

// bcryptCost matches the hashing cost used for every stored password.
const bcryptCost = 10

// Audit actions recorded by the authenticator.
const (
	actionLoginSuccess    = "Sign in: Login successful"
	actionInvalidPassword = "Sign in: Invalid password"
	actionUserNotFound    = "User not found"
	actionEmptyAttempt    = "Empty username or password"
	actionRegistered      = "Registered a new user"
)

// Authenticator handles registration, login, and the default admin account.
type Authenticator struct {
	users    *Repository
	sessions *SessionManager
	audit    *audit.Service
	policy   config.PasswordPolicy

	adminPassword   string
	maxRegularUsers int
}

// NewAuthenticator wires the authenticator to its collaborators. cfg
// supplies the bootstrap admin password and the regular-account cap.
func NewAuthenticator(users *Repository, sessions *SessionManager, auditLog *audit.Service, policy config.PasswordPolicy, cfg config.SecurityConfig) *Authenticator {
	return &Authenticator{
		users:           users,
		sessions:        sessions,
		audit:           auditLog,
		policy:          policy,
		adminPassword:   cfg.AdminPassword,
		maxRegularUsers: cfg.MaxRegularUsers,
	}
}

// EnsureDefaultAdmin creates the built-in admin account if it does not
// exist. Idempotent; must run before any login attempt is evaluated.
func (a *Authenticator) EnsureDefaultAdmin() error {
	_, found, err := a.users.Get(models.AdminUsername)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.adminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     models.AdminUsername,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := a.users.Put(admin); err != nil {
		return err
	}
	logging.Info().Str("username", models.AdminUsername).Msg("Created default admin account")
	return nil
}

// Register creates a new regular account and signs it in. All policy
// violations are returned together as ValidationErrors.
func (a *Authenticator) Register(username, password, confirm string) (models.User, *Session, error) {
	username = models.NormalizeUsername(username)

	var errs ValidationErrors
	errs = append(errs, a.policy.ValidateUsername(username)...)
	errs = append(errs, a.policy.ValidatePassword(password)...)
	if password != confirm {
		errs = append(errs, "Passwords do not match.")
	}
	if len(errs) > 0 {
		return models.User{}, nil, errs
	}

	if _, taken, err := a.users.Get(username); err != nil {
		return models.User{}, nil, err
	} else if taken {
		return models.User{}, nil, ErrDuplicateUser
	}

	if a.maxRegularUsers > 0 {
		n, err := a.users.RegularCount()
		if err != nil {
			return models.User{}, nil, err
		}
		if n >= a.maxRegularUsers {
			return models.User{}, nil, ErrUserCapReached
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      false,
	}
	if err := a.users.Put(user); err != nil {
		return models.User{}, nil, err
	}

	session, err := a.sessions.Establish(user)
	if err != nil {
		return models.User{}, nil, err
	}
	if err := a.audit.Record(username, actionRegistered); err != nil {
		return models.User{}, nil, err
	}
	return user, session, nil
}

// Login validates credentials and establishes a session. Every attempt,
// including each failure mode, leaves an audit entry.
func (a *Authenticator) Login(username, password string) (models.User, *Session, error) {
	normalized := models.NormalizeUsername(username)

	if normalized == "" || password == "" {
		if err := a.audit.Record(normalized, actionEmptyAttempt); err != nil {
			return models.User{}, nil, err
		}
		return models.User{}, nil, ErrEmptyCredentials
	}

	user, found, err := a.users.Get(normalized)
	if err != nil {
		return models.User{}, nil, err
	}
	if !found {
		if err := a.audit.Record(normalized, actionUserNotFound); err != nil {
			return models.User{}, nil, err
		}
		return models.User{}, nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if err := a.audit.Record(normalized, actionInvalidPassword); err != nil {
			return models.User{}, nil, err
		}
		return models.User{}, nil, ErrInvalidPassword
	}

	session, err := a.sessions.Establish(user)
	if err != nil {
		return models.User{}, nil, err
	}
	if err := a.audit.Record(normalized, actionLoginSuccess); err != nil {
		return models.User{}, nil, err
	}
	return user, session, nil
}

// Logout clears the current session and returns the username that was
// signed in, or "" if nobody was.
func (a *Authenticator) Logout() (string, error) {
	session, err := a.sessions.Current()
	if err != nil {
		return "", err
	}
	username := ""
	if session != nil {
		username = session.Username
	}
	if err := a.sessions.Clear(); err != nil {
		return "", err
	}
	return username, nil
}

// HashPassword hashes a password at the standard cost. Used by the admin
// console when resetting passwords.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
