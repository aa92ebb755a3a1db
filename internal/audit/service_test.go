// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/store"
)

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store.NewMemoryStore(), models.LogSettings{RetentionDays: 30})
	svc.SetClock(clock.Now)
	return svc, clock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRecordAndEntries(t *testing.T) {
	svc, clock := newTestService(t)

	if err := svc.Record("admin", "Sign in: Login successful"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	clock.Advance(time.Second)
	if err := svc.Record("admin", "Activated Fire Sensor"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Action != "Activated Fire Sensor" {
		t.Errorf("Entries()[0].Action = %q, want newest entry first", entries[0].Action)
	}
	if entries[1].User != "admin" || entries[1].Action != "Sign in: Login successful" {
		t.Errorf("Entries()[1] = %+v", entries[1])
	}
}

func TestEntriesDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)

	e := models.NewLogEntry(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC), "admin", "Activated Fire Sensor")
	for i := 0; i < 3; i++ {
		if err := svc.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() len = %d after duplicate appends, want 1", len(entries))
	}

	// The cleaned list is persisted, so a second read stays deduplicated.
	entries, err = svc.Entries()
	if err != nil {
		t.Fatalf("Entries() second read error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() len = %d on reread, want 1", len(entries))
	}
}

func TestClearLeavesSingleClearEntry(t *testing.T) {
	svc, _ := newTestService(t)

	for _, action := range []string{"one", "two", "three"} {
		if err := svc.Record("operator", action); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if err := svc.Clear("admin"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Entries() len = %d after Clear, want 1", len(entries))
	}
	if entries[0].Action != ClearedAction || entries[0].User != "admin" {
		t.Errorf("Entries()[0] = %+v, want clear entry by admin", entries[0])
	}
}

func TestClearWithoutUserRecordsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Clear(""); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if entries[0].User != models.UnknownUser {
		t.Errorf("Entries()[0].User = %q, want %q", entries[0].User, models.UnknownUser)
	}
}

func TestPruneMaxEntries(t *testing.T) {
	svc, clock := newTestService(t)

	for i := 0; i < 5; i++ {
		if err := svc.Record("admin", "action"); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		clock.Advance(time.Second)
	}

	removed, err := svc.Prune(2, 0, false)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune() removed = %d, want 3", removed)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Entries() len = %d after prune, want 2", len(entries))
	}
	// The newest entries survive.
	if entries[0].Time == entries[1].Time {
		t.Errorf("expected distinct surviving entries, got %+v", entries)
	}
}

func TestPruneUnlimitedWhenZero(t *testing.T) {
	svc, clock := newTestService(t)

	for i := 0; i < 4; i++ {
		if err := svc.Record("admin", "action"); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		clock.Advance(time.Second)
	}

	removed, err := svc.Prune(0, 0, false)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune(0, ...) removed = %d, want 0", removed)
	}
}

func TestPruneRetention(t *testing.T) {
	svc, clock := newTestService(t)

	if err := svc.Record("admin", "old action"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	clock.Advance(40 * 24 * time.Hour)
	if err := svc.Record("admin", "recent action"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	removed, err := svc.Prune(0, 30, true)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed = %d, want 1", removed)
	}

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "recent action" {
		t.Errorf("Entries() = %+v, want only the recent entry", entries)
	}
}

func TestPruneRetentionDisabled(t *testing.T) {
	svc, clock := newTestService(t)

	if err := svc.Record("admin", "old action"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	clock.Advance(40 * 24 * time.Hour)

	removed, err := svc.Prune(0, 30, false)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune() with autoDelete off removed = %d, want 0", removed)
	}
}

func TestSettingsDefaultsAndOverrides(t *testing.T) {
	kv := store.NewMemoryStore()
	svc := NewService(kv, models.LogSettings{MaxEntries: 0, RetentionDays: 30, AutoDelete: false})

	settings, err := svc.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.RetentionDays != 30 || settings.AutoDelete {
		t.Errorf("Settings() = %+v, want defaults", settings)
	}

	want := models.LogSettings{MaxEntries: 100, RetentionDays: 7, AutoDelete: true}
	if err := svc.UpdateSettings(want); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	settings, err = svc.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings != want {
		t.Errorf("Settings() = %+v, want %+v", settings, want)
	}

	// Each value lives under its own store key.
	var maxEntries int
	if found, _ := kv.Get(store.KeyLogMaxEntries, &maxEntries); !found || maxEntries != 100 {
		t.Errorf("stored maxEntries = (%v, %d), want (true, 100)", found, maxEntries)
	}
}

func TestUpdateSettingsRejectsNegative(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.UpdateSettings(models.LogSettings{MaxEntries: -1}); err == nil {
		t.Error("UpdateSettings() = nil, want error for negative values")
	}
}

func TestWriteCSV(t *testing.T) {
	svc, clock := newTestService(t)

	if err := svc.Record("admin", "Sign in: Login successful"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	clock.Advance(time.Minute)
	if err := svc.Record("operator", "Activated Fire Sensor"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	var sb strings.Builder
	if err := svc.WriteCSV(&sb); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("WriteCSV() produced %d lines, want 3:\n%s", len(lines), sb.String())
	}
	if lines[0] != "Date,Time,User,Action" {
		t.Errorf("header = %q, want %q", lines[0], "Date,Time,User,Action")
	}
	if !strings.Contains(lines[1], "Sign in: Login successful") {
		t.Errorf("first data row = %q, want oldest entry first", lines[1])
	}
	if !strings.Contains(lines[2], "Activated Fire Sensor") {
		t.Errorf("second data row = %q, want newest entry last", lines[2])
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	if got := ExportFilename(now); got != "system_logs_2026-08-28.csv" {
		t.Errorf("ExportFilename() = %q, want %q", got, "system_logs_2026-08-28.csv")
	}
}
