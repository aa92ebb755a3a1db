// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package audit records user and system actions to the persistent log.
// Entries are plain date/time/user/action records; read paths deduplicate
// and return newest first.
package audit

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/store"
)

// entryTimeLayout parses the human-readable date and time fields back into
// a timestamp for sorting and retention checks.
const entryTimeLayout = "1/2/2006 3:04:05 PM"

// ClearedAction is the entry recorded immediately after the log is wiped.
const ClearedAction = "Cleared all logs"

// Service is the audit log. All methods are safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	kv       store.Store
	now      func() time.Time
	defaults models.LogSettings
}

// NewService creates an audit log backed by kv. defaults supplies the
// retention settings used until an admin stores overrides.
func NewService(kv store.Store, defaults models.LogSettings) *Service {
	return &Service{
		kv:       kv,
		now:      time.Now,
		defaults: defaults,
	}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Record appends an entry for user performing action, stamped with the
// current time.
func (s *Service) Record(user, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(models.NewLogEntry(s.now(), user, action))
}

// Append appends a pre-built entry.
func (s *Service) Append(e models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(e)
}

func (s *Service) append(e models.LogEntry) error {
	logs, err := s.load()
	if err != nil {
		return err
	}
	logs = append(logs, e)
	if err := s.kv.Set(store.KeyLogs, logs); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	metrics.AuditEntriesTotal.Inc()
	return nil
}

// Entries returns the log deduplicated and sorted newest first, and writes
// the cleaned list back so repeated duplicates do not accumulate.
func (s *Service) Entries() ([]models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.load()
	if err != nil {
		return nil, err
	}

	cleaned := dedupe(logs)
	sortNewestFirst(cleaned)

	if len(cleaned) != len(logs) {
		if err := s.kv.Set(store.KeyLogs, cleaned); err != nil {
			return nil, fmt.Errorf("persist deduplicated logs: %w", err)
		}
	}
	return cleaned, nil
}

// Clear wipes the log, then records the wipe itself attributed to
// clearedBy so the action survives its own effect.
func (s *Service) Clear(clearedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(store.KeyLogs, []models.LogEntry{}); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return s.append(models.NewLogEntry(s.now(), clearedBy, ClearedAction))
}

// Prune applies the retention settings: keeps only the newest maxEntries
// (0 means unlimited) and, when autoDelete is on, drops entries older than
// retentionDays. Returns how many entries were removed.
func (s *Service) Prune(maxEntries, retentionDays int, autoDelete bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.load()
	if err != nil {
		return 0, err
	}
	before := len(logs)

	kept := dedupe(logs)
	sortNewestFirst(kept)

	if autoDelete && retentionDays > 0 {
		cutoff := s.now().AddDate(0, 0, -retentionDays)
		filtered := kept[:0]
		for _, e := range kept {
			t, ok := entryTime(e)
			if ok && t.Before(cutoff) {
				continue
			}
			filtered = append(filtered, e)
		}
		kept = filtered
	}

	if maxEntries > 0 && len(kept) > maxEntries {
		kept = kept[:maxEntries]
	}

	removed := before - len(kept)
	if removed != 0 {
		if err := s.kv.Set(store.KeyLogs, kept); err != nil {
			return 0, fmt.Errorf("persist pruned logs: %w", err)
		}
	}
	return removed, nil
}

// PruneWithSettings runs Prune with the currently stored settings.
func (s *Service) PruneWithSettings() (int, error) {
	settings, err := s.Settings()
	if err != nil {
		return 0, err
	}
	return s.Prune(settings.MaxEntries, settings.RetentionDays, settings.AutoDelete)
}

// Settings returns the stored retention settings, falling back to the
// configured defaults for any key that is absent.
func (s *Service) Settings() (models.LogSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.defaults

	var maxEntries int
	if found, err := s.kv.Get(store.KeyLogMaxEntries, &maxEntries); err != nil {
		return models.LogSettings{}, fmt.Errorf("load max entries: %w", err)
	} else if found {
		settings.MaxEntries = maxEntries
	}

	var retentionDays int
	if found, err := s.kv.Get(store.KeyLogRetentionDays, &retentionDays); err != nil {
		return models.LogSettings{}, fmt.Errorf("load retention days: %w", err)
	} else if found {
		settings.RetentionDays = retentionDays
	}

	var autoDelete bool
	if found, err := s.kv.Get(store.KeyLogAutoDelete, &autoDelete); err != nil {
		return models.LogSettings{}, fmt.Errorf("load auto delete: %w", err)
	} else if found {
		settings.AutoDelete = autoDelete
	}

	return settings, nil
}

// UpdateSettings stores new retention settings. Each value lives under its
// own key.
func (s *Service) UpdateSettings(settings models.LogSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.MaxEntries < 0 || settings.RetentionDays < 0 {
		return fmt.Errorf("log settings must not be negative: %+v", settings)
	}
	if err := s.kv.Set(store.KeyLogMaxEntries, settings.MaxEntries); err != nil {
		return fmt.Errorf("store max entries: %w", err)
	}
	if err := s.kv.Set(store.KeyLogRetentionDays, settings.RetentionDays); err != nil {
		return fmt.Errorf("store retention days: %w", err)
	}
	if err := s.kv.Set(store.KeyLogAutoDelete, settings.AutoDelete); err != nil {
		return fmt.Errorf("store auto delete: %w", err)
	}
	return nil
}

func (s *Service) load() ([]models.LogEntry, error) {
	var logs []models.LogEntry
	if _, err := s.kv.Get(store.KeyLogs, &logs); err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	return logs, nil
}

// dedupe keeps the first occurrence of each date/time/user/action
// combination, preserving order.
func dedupe(logs []models.LogEntry) []models.LogEntry {
	seen := make(map[string]struct{}, len(logs))
	out := make([]models.LogEntry, 0, len(logs))
	for _, e := range logs {
		key := e.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// sortNewestFirst orders entries by their parsed timestamp descending.
// Entries that fail to parse sort last, keeping their relative order.
func sortNewestFirst(logs []models.LogEntry) {
	sort.SliceStable(logs, func(i, j int) bool {
		ti, _ := entryTime(logs[i])
		tj, _ := entryTime(logs[j])
		return ti.After(tj)
	})
}

func entryTime(e models.LogEntry) (time.Time, bool) {
	t, err := time.Parse(entryTimeLayout, e.Date+" "+e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
