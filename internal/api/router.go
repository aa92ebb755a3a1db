// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/middleware"
)

// Auth endpoints get a fixed strict budget to slow brute forcing,
// independent of the configurable API limit.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// NewRouter assembles the full HTTP surface: public auth endpoints,
// the authenticated panel and log API, the admin console, and the
// Prometheus scrape endpoint.
func NewRouter(h *Handlers, sec config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(corsHandler(sec.CORSOrigins))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// Register and login are the only unauthenticated endpoints.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(httprate.Limit(authRateLimit, authRateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP)))

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.sessions.Authenticate)
			r.Use(auth.RequireAuth(respondUnauthorized))
			r.Post("/logout", h.Logout)
			r.Get("/session", h.Session)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(rateLimit(sec.RateLimit, sec.RateLimitWindow))
		r.Use(h.sessions.Authenticate)
		r.Use(auth.RequireAuth(respondUnauthorized))

		r.Route("/panel", func(r chi.Router) {
			r.Get("/sensors", h.ListSensors)
			r.Post("/sensors/{key}/activate", h.ActivateSensor)
			r.Post("/sensors/{key}/deactivate", h.DeactivateSensor)
			r.Get("/alarms", h.ListAlarms)
			r.Post("/alarms/{key}/silence", h.SilenceAlarm)
		})

		r.Route("/logs", func(r chi.Router) {
			r.Use(auth.RequireAdmin(respondForbidden))
			r.Get("/", h.ListLogs)
			r.Get("/export", h.ExportLogs)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(respondForbidden))

			r.Get("/users", h.ListUsers)
			r.Put("/users/{username}", h.UpdateUser)
			r.Delete("/users/{username}", h.DeleteUser)
			r.Post("/users/{username}/toggle-admin", h.ToggleAdmin)

			r.Post("/sensors", h.CreateSensor)
			r.Delete("/sensors/{id}", h.DeleteSensor)

			r.Get("/logs/settings", h.LogSettings)
			r.Put("/logs/settings", h.UpdateLogSettings)
			r.Post("/logs/clear", h.ClearLogs)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP))
}
