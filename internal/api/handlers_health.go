// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports overall service health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "sentinel"})
}

// HealthLive is the liveness probe. It touches no storage so it stays
// cheap enough for aggressive probing.
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "alive", Service: "sentinel"})
}

// HealthReady is the readiness probe: a cheap read proves the store is
// open and answering.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.audit.Settings(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Store is not ready", nil)
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: "ready", Service: "sentinel"})
}
