// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package auth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/store"
)

// Repository persists the user table as a single JSON object keyed by
// lowercased username.
type Repository struct {
	mu sync.Mutex
	kv store.Store
}

// NewRepository creates a user repository backed by kv.
func NewRepository(kv store.Store) *Repository {
	return &Repository{kv: kv}
}

// All returns every user sorted by username.
func (r *Repository) All() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Get looks up a user by username, normalizing first.
func (r *Repository) Get(username string) (models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return models.User{}, false, err
	}
	u, ok := users[models.NormalizeUsername(username)]
	return u, ok, nil
}

// Put inserts or replaces a user record.
func (r *Repository) Put(u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	u.Username = models.NormalizeUsername(u.Username)
	users[u.Username] = u
	return r.save(users)
}

// Rename moves a user record to a new username, replacing the stored record.
// The caller is responsible for protecting reserved accounts.
func (r *Repository) Rename(oldName string, updated models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}

	oldName = models.NormalizeUsername(oldName)
	updated.Username = models.NormalizeUsername(updated.Username)
	if _, ok := users[oldName]; !ok {
		return ErrUserNotFound
	}
	if updated.Username != oldName {
		if _, taken := users[updated.Username]; taken {
			return ErrDuplicateUser
		}
		delete(users, oldName)
	}
	users[updated.Username] = updated
	return r.save(users)
}

// Delete removes a user record. Deleting an absent user is not an error.
func (r *Repository) Delete(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	delete(users, models.NormalizeUsername(username))
	return r.save(users)
}

// RegularCount returns how many non-admin accounts exist.
func (r *Repository) RegularCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if !u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// load reads the user table and collapses any duplicate records that map
// to the same normalized username, keeping the already-normalized record
// when one exists. The collapsed table is written back.
func (r *Repository) load() (map[string]models.User, error) {
	var raw map[string]models.User
	if _, err := r.kv.Get(store.KeyUsers, &raw); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if raw == nil {
		return make(map[string]models.User), nil
	}

	users := make(map[string]models.User, len(raw))
	dirty := false
	for key, u := range raw {
		norm := models.NormalizeUsername(key)
		u.Username = norm
		if key != norm {
			dirty = true
		}
		if existing, ok := users[norm]; ok {
			dirty = true
			logging.Warn().
				Str("username", norm).
				Msg("Collapsing duplicate user records")
			// Keep the admin-flagged record when the duplicates disagree.
			if existing.IsAdmin {
				continue
			}
		}
		users[norm] = u
	}

	if dirty {
		if err := r.save(users); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *Repository) save(users map[string]models.User) error {
	if err := r.kv.Set(store.KeyUsers, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}
