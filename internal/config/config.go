// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package config provides layered configuration loading and validation.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Simulator SimulatorConfig `koanf:"simulator"`
	Audit     AuditConfig     `koanf:"audit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Address returns the host:port string for the HTTP listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig controls the embedded key/value store.
type DatabaseConfig struct {
	// Path is the BadgerDB directory. Empty means in-memory (state lost on
	// restart).
	Path string `koanf:"path"`
}

// SecurityConfig controls authentication and request protection.
type SecurityConfig struct {
	// AuthMode selects the session token scheme: "session" (opaque tokens)
	// or "jwt" (signed HS256 tokens).
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs tokens when AuthMode is "jwt". Required in that mode.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTTL bounds how long a signed-in session stays valid.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// AdminPassword seeds the built-in admin account on first start.
	AdminPassword string `koanf:"admin_password"`

	// MaxRegularUsers caps how many non-admin accounts can register.
	MaxRegularUsers int `koanf:"max_regular_users"`

	// RateLimit is the per-IP request budget per RateLimitWindow. 0 disables.
	RateLimit       int           `koanf:"rate_limit"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// SimulatorConfig controls sensor trigger behavior.
type SimulatorConfig struct {
	// TriggerChance is the probability that an armed sensor fires its alarm
	// when the watch timer elapses. Must be in [0, 1].
	TriggerChance float64 `koanf:"trigger_chance"`

	// MinDelay and MaxDelay bound the random watch timer armed on sensor
	// activation.
	MinDelay time.Duration `koanf:"min_delay"`
	MaxDelay time.Duration `koanf:"max_delay"`
}

// AuditConfig holds the startup defaults for log retention. The live values
// are stored alongside the logs and can be changed at runtime by an admin.
type AuditConfig struct {
	// MaxEntries keeps only the newest N entries. 0 means unlimited.
	MaxEntries int `koanf:"max_entries"`

	// RetentionDays discards entries older than N days when AutoDelete is on.
	RetentionDays int  `koanf:"retention_days"`
	AutoDelete    bool `koanf:"auto_delete"`
}

// LoggingConfig controls diagnostic (not audit) logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	switch c.Security.AuthMode {
	case "session":
	case "jwt":
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwt_secret is required when security.auth_mode is %q", c.Security.AuthMode)
		}
	default:
		return fmt.Errorf("security.auth_mode must be \"session\" or \"jwt\", got %q", c.Security.AuthMode)
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive, got %s", c.Security.SessionTTL)
	}
	if c.Security.MaxRegularUsers < 0 {
		return fmt.Errorf("security.max_regular_users must not be negative, got %d", c.Security.MaxRegularUsers)
	}
	if c.Security.RateLimit < 0 {
		return fmt.Errorf("security.rate_limit must not be negative, got %d", c.Security.RateLimit)
	}

	if c.Simulator.TriggerChance < 0 || c.Simulator.TriggerChance > 1 {
		return fmt.Errorf("simulator.trigger_chance must be between 0 and 1, got %g", c.Simulator.TriggerChance)
	}
	if c.Simulator.MinDelay <= 0 {
		return fmt.Errorf("simulator.min_delay must be positive, got %s", c.Simulator.MinDelay)
	}
	if c.Simulator.MaxDelay < c.Simulator.MinDelay {
		return fmt.Errorf("simulator.max_delay must not be less than simulator.min_delay, got %s < %s",
			c.Simulator.MaxDelay, c.Simulator.MinDelay)
	}

	if c.Audit.MaxEntries < 0 {
		return fmt.Errorf("audit.max_entries must not be negative, got %d", c.Audit.MaxEntries)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative, got %d", c.Audit.RetentionDays)
	}

	return nil
}
