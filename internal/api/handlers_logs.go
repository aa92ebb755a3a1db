// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/logging"
)

// ListLogs returns the audit log, deduplicated and newest first.
// Admin only, like every other log operation.
func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.Entries()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ExportLogs serves the audit log as a CSV download. Admin only. The CSV
// is buffered so a failure still yields a clean JSON error.
func (h *Handlers) ExportLogs(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var buf bytes.Buffer
	if err := h.console.ExportLogs(actor, &buf); err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", audit.ExportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Error().Err(err).Msg("Failed to write CSV export")
	}
}

// ClearLogs wipes the audit log, leaving one entry recording the wipe.
// Admin only.
func (h *Handlers) ClearLogs(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	if err := h.console.ClearLogs(actor); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cleared": "true"})
}
