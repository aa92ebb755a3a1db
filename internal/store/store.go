// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package store provides the persistence layer for panel state. All state
// lives under a small set of fixed keys, each holding one JSON document.
package store

import "errors"

// Fixed storage keys. Every piece of panel state is a single JSON document
// under one of these keys; there are no per-record keys or prefixes.
const (
	KeyUsers            = "users"
	KeyCurrentUser      = "currentUser"
	KeyLogs             = "logs"
	KeyActivatedSensors = "activatedSensors"
	KeyActiveAlarms     = "activeAlarms"
	KeyLastTriggered    = "lastTriggeredTimes"
	KeyCustomSensors    = "customSensors"
	KeyLogMaxEntries    = "logMaxEntries"
	KeyLogRetentionDays = "logRetentionDays"
	KeyLogAutoDelete    = "logAutoDelete"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store: closed")

// Store is a durable key/value store of JSON documents.
//
// Get reports found=false when the key is absent. A document that fails to
// unmarshal is treated as absent: the store logs a diagnostic, removes the
// damaged value, and reports found=false so callers fall back to defaults.
type Store interface {
	Get(key string, v any) (found bool, err error)
	Set(key string, v any) error
	Delete(key string) error
	Close() error
}
