// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8087,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path: "/data/sentinel",
		},
		Security: SecurityConfig{
			AuthMode:        "session",
			JWTSecret:       "",
			SessionTTL:      12 * time.Hour,
			AdminPassword:   "password",
			MaxRegularUsers: 10,
			RateLimit:       100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Simulator: SimulatorConfig{
			TriggerChance: 0.5,
			MinDelay:      2 * time.Second,
			MaxDelay:      10 * time.Second,
		},
		Audit: AuditConfig{
			MaxEntries:    0,
			RetentionDays: 30,
			AutoDelete:    false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SENTINEL_HTTP_PORT -> server.port, SENTINEL_TRIGGER_CHANCE -> simulator.trigger_chance
	envProvider := env.Provider("SENTINEL_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as env var strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps SENTINEL_* environment variable names to koanf
// config paths. Well-known flat names get explicit mappings; anything else
// falls back to underscore-to-dot on the first separator.
//
// Examples:
//   - SENTINEL_HTTP_PORT -> server.port
//   - SENTINEL_ADMIN_PASSWORD -> security.admin_password
//   - SENTINEL_SIMULATOR_TRIGGER_CHANCE -> simulator.trigger_chance
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SENTINEL_"))

	envMappings := map[string]string{
		"http_host":      "server.host",
		"http_port":      "server.port",
		"http_timeout":   "server.timeout",
		"environment":    "server.environment",
		"database_path":  "database.path",
		"auth_mode":      "security.auth_mode",
		"jwt_secret":     "security.jwt_secret",
		"session_ttl":    "security.session_ttl",
		"admin_password": "security.admin_password",
		"max_users":      "security.max_regular_users",
		"rate_limit":     "security.rate_limit",
		"cors_origins":   "security.cors_origins",
		"trigger_chance": "simulator.trigger_chance",
		"log_level":      "logging.level",
		"log_format":     "logging.format",
	}
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// SIMULATOR_MIN_DELAY -> simulator.min_delay
	if idx := strings.Index(key, "_"); idx > 0 {
		return key[:idx] + "." + key[idx+1:]
	}
	return key
}
