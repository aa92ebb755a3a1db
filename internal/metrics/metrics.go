// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package metrics exposes Prometheus instrumentation for the API surface
// and the sensor simulation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Authentication metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"}, // "success", "user_not_found", "invalid_password", "empty"
	)

	// Simulation metrics
	SensorActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_activations_total",
			Help: "Total number of sensor state changes",
		},
		[]string{"sensor", "state"}, // state: "active", "inactive"
	)

	AlarmTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alarm_triggers_total",
			Help: "Total number of alarm triggers fired by the simulation",
		},
		[]string{"alarm"},
	)

	AuditEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit log entries recorded",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLoginAttempt counts a login attempt by outcome.
func RecordLoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordSensorState counts a sensor activation or deactivation.
func RecordSensorState(sensor string, active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	SensorActivationsTotal.WithLabelValues(sensor, state).Inc()
}

// RecordAlarmTrigger counts a simulated alarm trigger.
func RecordAlarmTrigger(alarm string) {
	AlarmTriggersTotal.WithLabelValues(alarm).Inc()
}
