// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "basic" }},
		{"jwt without secret", func(c *Config) { c.Security.AuthMode = "jwt"; c.Security.JWTSecret = "" }},
		{"zero session ttl", func(c *Config) { c.Security.SessionTTL = 0 }},
		{"negative user cap", func(c *Config) { c.Security.MaxRegularUsers = -1 }},
		{"chance above one", func(c *Config) { c.Simulator.TriggerChance = 1.5 }},
		{"negative chance", func(c *Config) { c.Simulator.TriggerChance = -0.1 }},
		{"zero min delay", func(c *Config) { c.Simulator.MinDelay = 0 }},
		{"max below min", func(c *Config) { c.Simulator.MaxDelay = time.Second; c.Simulator.MinDelay = 2 * time.Second }},
		{"negative max entries", func(c *Config) { c.Audit.MaxEntries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateAcceptsJWTWithSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = "0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"SENTINEL_HTTP_PORT", "server.port"},
		{"SENTINEL_ADMIN_PASSWORD", "security.admin_password"},
		{"SENTINEL_TRIGGER_CHANCE", "simulator.trigger_chance"},
		{"SENTINEL_DATABASE_PATH", "database.path"},
		{"SENTINEL_SIMULATOR_MIN_DELAY", "simulator.min_delay"},
		{"SENTINEL_LOGGING_CALLER", "logging.caller"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestServerAddress(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8087}
	if got := c.Address(); got != "127.0.0.1:8087" {
		t.Errorf("Address() = %q, want %q", got, "127.0.0.1:8087")
	}
}

func TestValidatePasswordAccumulatesErrors(t *testing.T) {
	policy := DefaultPasswordPolicy()

	errs := policy.ValidatePassword("short")
	if len(errs) != 4 {
		t.Fatalf("ValidatePassword(%q) returned %d errors, want 4: %v", "short", len(errs), errs)
	}
	for _, want := range []string{"16 characters", "uppercase", "number", "special"} {
		found := false
		for _, e := range errs {
			if strings.Contains(e, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ValidatePassword(%q) missing error about %q: %v", "short", want, errs)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantErrs int
	}{
		{"valid", "Abcdefghijklmno1!", 0},
		{"missing special", "Abcdefghijklmno12", 1},
		{"missing digit", "Abcdefghijklmnop!", 1},
		{"missing upper", "abcdefghijklmno1!", 1},
		{"missing lower", "ABCDEFGHIJKLMNO1!", 1},
		{"special outside allowed set", "Abcdefghijklmno1~", 1},
		{"empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := policy.ValidatePassword(tt.password)
			if len(errs) != tt.wantErrs {
				t.Errorf("ValidatePassword(%q) = %d errors %v, want %d", tt.password, len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	policy := DefaultPasswordPolicy()

	if errs := policy.ValidateUsername("bob"); len(errs) != 1 {
		t.Errorf("ValidateUsername(%q) = %v, want one error", "bob", errs)
	}
	if errs := policy.ValidateUsername("operator"); len(errs) != 0 {
		t.Errorf("ValidateUsername(%q) = %v, want none", "operator", errs)
	}
}
