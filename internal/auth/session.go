// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/store"
)

// CookieName is the session cookie set on login and registration.
const CookieName = "sentinel_session"

// Session is the single current-user record. The panel models one signed-in
// user at a time; establishing a new session replaces the previous one.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Actor identifies who is performing a request.
type Actor struct {
	Username string
	IsAdmin  bool
}

// SessionManager persists the current session under the currentUser store
// key. In "jwt" mode tokens are signed HS256 claims instead of opaque
// random strings; the persisted record still backs single-session checks.
type SessionManager struct {
	mu  sync.Mutex
	kv  store.Store
	ttl time.Duration
	jwt *JWTManager
	now func() time.Time
}

// NewSessionManager creates a session manager. cfg.AuthMode selects opaque
// or JWT tokens.
func NewSessionManager(kv store.Store, cfg config.SecurityConfig) (*SessionManager, error) {
	m := &SessionManager{
		kv:  kv,
		ttl: cfg.SessionTTL,
		now: time.Now,
	}
	if cfg.AuthMode == "jwt" {
		jm, err := NewJWTManager(cfg)
		if err != nil {
			return nil, err
		}
		m.jwt = jm
	}
	return m, nil
}

// Establish signs user in, replacing any existing session.
func (m *SessionManager) Establish(user models.User) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	session := &Session{
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if m.jwt != nil {
		token, err := m.jwt.GenerateToken(user.Username, user.IsAdmin, session.ExpiresAt)
		if err != nil {
			return nil, err
		}
		session.Token = token
	} else {
		session.Token = newSessionToken()
	}

	if err := m.kv.Set(store.KeyCurrentUser, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Current returns the persisted session, or nil when nobody is signed in.
// An expired session is cleared and reported as absent.
func (m *SessionManager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current()
}

func (m *SessionManager) current() (*Session, error) {
	var session Session
	found, err := m.kv.Get(store.KeyCurrentUser, &session)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, nil
	}
	if session.IsExpired() {
		if err := m.kv.Delete(store.KeyCurrentUser); err != nil {
			return nil, fmt.Errorf("clear expired session: %w", err)
		}
		return nil, nil
	}
	return &session, nil
}

// Validate checks a presented token against the current session and returns
// the acting user. Returns ErrNotAuthenticated for unknown, stale, or
// expired tokens.
func (m *SessionManager) Validate(token string) (Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" {
		return Actor{}, ErrNotAuthenticated
	}

	session, err := m.current()
	if err != nil {
		return Actor{}, err
	}
	if session == nil {
		return Actor{}, ErrNotAuthenticated
	}

	if m.jwt != nil {
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			return Actor{}, ErrNotAuthenticated
		}
		// A valid signature is not enough: the token must belong to the
		// one live session.
		if claims.Username != session.Username {
			return Actor{}, ErrNotAuthenticated
		}
		return Actor{Username: session.Username, IsAdmin: session.IsAdmin}, nil
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(session.Token)) != 1 {
		return Actor{}, ErrNotAuthenticated
	}
	return Actor{Username: session.Username, IsAdmin: session.IsAdmin}, nil
}

// Clear signs the current user out. Clearing an absent session is not an
// error.
func (m *SessionManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.kv.Delete(store.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Touch propagates user record changes into the live session so a rename
// or admin-toggle takes effect without re-login. No-op when user is not
// the signed-in user.
func (m *SessionManager) Touch(oldUsername string, updated models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.current()
	if err != nil || session == nil {
		return err
	}
	if session.Username != models.NormalizeUsername(oldUsername) {
		return nil
	}
	session.Username = updated.Username
	session.IsAdmin = updated.IsAdmin
	if err := m.kv.Set(store.KeyCurrentUser, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// newSessionToken returns 32 random bytes hex-encoded. rand.Read cannot
// fail on supported platforms; if it ever does, the process has no way to
// mint secrets and must not hand out sessions.
func newSessionToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("session token entropy unavailable: %v", err))
	}
	return hex.EncodeToString(bytes)
}
