// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/auth"
)

// ListSensors returns every sensor with live state.
func (h *Handlers) ListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.panel.Sensors()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sensors)
}

// ActivateSensor turns a sensor on and arms its trigger watch.
func (h *Handlers) ActivateSensor(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	if err := h.panel.Activate(chi.URLParam(r, "key"), actor); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondSensor(w, chi.URLParam(r, "key"))
}

// DeactivateSensor turns a sensor off, cancelling its watch and forcing
// the paired alarm silent.
func (h *Handlers) DeactivateSensor(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	if err := h.panel.Deactivate(chi.URLParam(r, "key"), actor); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondSensor(w, chi.URLParam(r, "key"))
}

func (h *Handlers) respondSensor(w http.ResponseWriter, key string) {
	sensors, err := h.panel.Sensors()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	for _, s := range sensors {
		if s.Key == key {
			respondJSON(w, http.StatusOK, s)
			return
		}
	}
	respondError(w, http.StatusNotFound, "SENSOR_NOT_FOUND", "Sensor not found", nil)
}

// ListAlarms returns the alarm paired with every sensor.
func (h *Handlers) ListAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.panel.Alarms()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alarms)
}

// SilenceAlarm silences an alarm without deactivating its sensor. The
// panel refuses non-admin actors.
func (h *Handlers) SilenceAlarm(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	key := chi.URLParam(r, "key")
	if err := h.panel.SilenceAlarm(key, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	alarms, err := h.panel.Alarms()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	for _, a := range alarms {
		if a.Key == key {
			respondJSON(w, http.StatusOK, a)
			return
		}
	}
	respondError(w, http.StatusNotFound, "ALARM_NOT_FOUND", "Alarm not found", nil)
}
