// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package models defines the core data records shared across Sentinel:
// users, sensors, alarms, and audit log entries. Records are plain data;
// behavior lives in the owning service packages.
package models

import (
	"strings"
	"time"
)

// AdminUsername is the reserved bootstrap administrator account name.
// Exactly one user with this name exists; it can never be deleted and
// its admin flag can never be revoked.
const AdminUsername = "admin"

// NeverTriggered is the sentinel value for sensors and alarms that have
// not yet recorded an activation or trigger time.
const NeverTriggered = "Never"

// UnknownUser is the audit attribution used when no session is active.
const UnknownUser = "Unknown User"

// User is an account record. Usernames are stored lowercased and
// compared case-insensitively everywhere.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	IsAdmin      bool   `json:"isAdmin"`
}

// NormalizeUsername lowercases and trims a username for storage and lookup.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsReservedAdmin reports whether name refers to the bootstrap admin account.
func (u User) IsReservedAdmin() bool {
	return NormalizeUsername(u.Username) == AdminUsername
}

// Sensor is a monitored boolean-state input on the panel. Built-in
// sensors (fire, smoke, security) and administrator-defined custom
// sensors share the same record shape.
type Sensor struct {
	Key             string `json:"key"`
	DisplayName     string `json:"displayName"`
	Icon            string `json:"icon"`
	Description     string `json:"description,omitempty"`
	Custom          bool   `json:"custom"`
	IsActive        bool   `json:"isActive"`
	LastActivatedAt string `json:"lastActivatedAt"`
}

// Alarm is the boolean-state output paired 1:1 with a sensor. An alarm
// can only become active while its paired sensor is active.
type Alarm struct {
	Key             string `json:"key"`
	IsActive        bool   `json:"isActive"`
	LastTriggeredAt string `json:"lastTriggeredAt"`
}

// CustomSensor is the administrator-supplied definition of a runtime
// sensor. The derived sensor/alarm key pair comes from the name.
type CustomSensor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// LogEntry is one immutable audit record. Date and Time are stored as
// separate display strings; the CSV export and the dedupe key both use
// the (Date, Time, User, Action) tuple.
type LogEntry struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	User   string `json:"user"`
	Action string `json:"action"`
}

// Key returns the dedupe identity of a log entry.
func (e LogEntry) Key() string {
	return e.Date + "|" + e.Time + "|" + e.User + "|" + e.Action
}

// NewLogEntry builds an entry stamped with the given wall-clock time,
// attributed to user (or UnknownUser when empty).
func NewLogEntry(now time.Time, user, action string) LogEntry {
	if user == "" {
		user = UnknownUser
	}
	return LogEntry{
		Date:   now.Format("1/2/2006"),
		Time:   now.Format("3:04:05 PM"),
		User:   user,
		Action: action,
	}
}

// LogSettings holds the retention policy for the audit log.
type LogSettings struct {
	// MaxEntries caps the number of retained entries, newest kept.
	// Zero means unlimited.
	MaxEntries int `json:"maxEntries" validate:"min=0"`

	// RetentionDays discards entries older than this many days when
	// AutoDelete is enabled.
	RetentionDays int `json:"retentionDays" validate:"min=0"`

	// AutoDelete enables age-based expiry.
	AutoDelete bool `json:"autoDelete"`
}
