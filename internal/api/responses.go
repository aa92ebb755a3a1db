// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/simulator"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is the structured error payload.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

var validate = validator.New()

// respondJSON sends a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeEnvelope(w, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// decodeJSON parses and validates a request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]interface{}{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body failed validation", details)
		return false
	}
	return true
}

// respondDomainError maps domain errors onto HTTP status and error codes.
func respondDomainError(w http.ResponseWriter, err error) {
	if ve, ok := auth.AsValidationErrors(err); ok {
		rules := make([]interface{}, 0, len(ve))
		for _, v := range ve {
			rules = append(rules, v)
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "One or more rules were violated",
			map[string]interface{}{"violations": rules})
		return
	}

	switch {
	case errors.Is(err, auth.ErrEmptyCredentials):
		respondError(w, http.StatusBadRequest, "EMPTY_CREDENTIALS", "Please fill in both username and password", nil)
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	case errors.Is(err, auth.ErrInvalidPassword):
		respondError(w, http.StatusUnauthorized, "INVALID_PASSWORD", "Invalid password", nil)
	case errors.Is(err, auth.ErrDuplicateUser):
		respondError(w, http.StatusConflict, "DUPLICATE_USER", "User already exists", nil)
	case errors.Is(err, auth.ErrUserCapReached):
		respondError(w, http.StatusConflict, "USER_LIMIT_REACHED", "Maximum number of regular users has been reached", nil)
	case errors.Is(err, auth.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
	case errors.Is(err, auth.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "Admin privileges required", nil)
	case errors.Is(err, simulator.ErrUnknownSensor):
		respondError(w, http.StatusNotFound, "SENSOR_NOT_FOUND", "Sensor not found", nil)
	case errors.Is(err, simulator.ErrUnknownAlarm):
		respondError(w, http.StatusNotFound, "ALARM_NOT_FOUND", "Alarm not found", nil)
	case errors.Is(err, simulator.ErrDuplicateSensor):
		respondError(w, http.StatusConflict, "DUPLICATE_SENSOR", "An identical sensor already exists", nil)
	default:
		logging.Error().Err(err).Msg("API error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func respondUnauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
}

func respondForbidden(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "Admin privileges required", nil)
}
