// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/admin"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/simulator"
	"github.com/tomtom215/sentinel/internal/store"
)

const testPassword = "Abcdefghijklmno1!"

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *APIError       `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	kv := store.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })

	sec := config.SecurityConfig{
		AuthMode:        "session",
		SessionTTL:      time.Hour,
		AdminPassword:   "password",
		MaxRegularUsers: 10,
	}
	auditLog := audit.NewService(kv, models.LogSettings{RetentionDays: 30})
	users := auth.NewRepository(kv)
	sessions, err := auth.NewSessionManager(kv, sec)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	policy := config.DefaultPasswordPolicy()
	authn := auth.NewAuthenticator(users, sessions, auditLog, policy, sec)
	if err := authn.EnsureDefaultAdmin(); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}

	// Long delays keep sensor watches from firing mid-test.
	panel := simulator.NewPanel(kv, auditLog, config.SimulatorConfig{
		TriggerChance: 1,
		MinDelay:      time.Hour,
		MaxDelay:      2 * time.Hour,
	})
	console := admin.NewConsole(users, sessions, panel, auditLog, policy)

	return NewRouter(NewHandlers(authn, sessions, panel, console, auditLog), sec)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal envelope from %s %s: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var sess struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return sess.Token
}

func registerUser(t *testing.T, h http.Handler, username string) string {
	t.Helper()

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"username": username, "password": testPassword, "confirmPassword": testPassword})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var sess struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	return sess.Token
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec, env := doRequest(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
			continue
		}
		if env.Status != "success" {
			t.Errorf("GET %s envelope status = %q, want success", path, env.Status)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
		wantCode   string
	}{
		{"wrong password", "admin", "nope", http.StatusUnauthorized, "INVALID_PASSWORD"},
		{"unknown user", "ghost", "whatever", http.StatusUnauthorized, "USER_NOT_FOUND"},
		{"empty credentials", "", "", http.StatusBadRequest, "EMPTY_CREDENTIALS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "",
				map[string]string{"username": tt.username, "password": tt.password})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", env.Error, tt.wantCode)
			}
		})
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "admin", "password": "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Errorf("no %s cookie in login response", auth.CookieName)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	h := newTestRouter(t)

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"username": "charlie", "password": "short", "confirmPassword": "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if env.Error.Details["violations"] == nil {
		t.Error("expected violation details in error payload")
	}
}

func TestDataEndpointsRequireAuth(t *testing.T) {
	h := newTestRouter(t)

	paths := []string{"/api/v1/panel/sensors", "/api/v1/panel/alarms", "/api/v1/logs", "/api/v1/admin/users"}
	for _, path := range paths {
		rec, env := doRequest(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
			continue
		}
		if env.Error == nil || env.Error.Code != "AUTHENTICATION_ERROR" {
			t.Errorf("GET %s error = %+v, want AUTHENTICATION_ERROR", path, env.Error)
		}
	}
}

func TestSessionEndpoint(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin", "password")

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/auth/session", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var user userResponse
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if user.Username != "admin" || !user.IsAdmin {
		t.Errorf("session user = %+v, want admin/true", user)
	}
}

func TestSensorLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin", "password")

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/panel/sensors", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sensors: status %d", rec.Code)
	}
	var sensors []models.Sensor
	if err := json.Unmarshal(env.Data, &sensors); err != nil {
		t.Fatalf("unmarshal sensors: %v", err)
	}
	if len(sensors) != 3 {
		t.Fatalf("got %d sensors, want 3 built-ins", len(sensors))
	}

	rec, env = doRequest(t, h, http.MethodPost, "/api/v1/panel/sensors/fireSensor/activate", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: status %d, body %s", rec.Code, rec.Body.String())
	}
	var sensor models.Sensor
	if err := json.Unmarshal(env.Data, &sensor); err != nil {
		t.Fatalf("unmarshal sensor: %v", err)
	}
	if !sensor.IsActive {
		t.Error("sensor not active after activate")
	}
	if sensor.LastActivatedAt == models.NeverTriggered {
		t.Error("activation timestamp not stamped")
	}

	rec, env = doRequest(t, h, http.MethodPost, "/api/v1/panel/sensors/fireSensor/deactivate", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: status %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &sensor); err != nil {
		t.Fatalf("unmarshal sensor: %v", err)
	}
	if sensor.IsActive {
		t.Error("sensor still active after deactivate")
	}

	rec, env = doRequest(t, h, http.MethodPost, "/api/v1/panel/sensors/bogus/activate", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown sensor: status %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "SENSOR_NOT_FOUND" {
		t.Errorf("error = %+v, want SENSOR_NOT_FOUND", env.Error)
	}
}

func TestSilenceAlarmRequiresAdmin(t *testing.T) {
	h := newTestRouter(t)
	operator := registerUser(t, h, "operator")

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/panel/alarms/fireAlarm/silence", operator, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "AUTHORIZATION_ERROR" {
		t.Errorf("error = %+v, want AUTHORIZATION_ERROR", env.Error)
	}
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	h := newTestRouter(t)
	operator := registerUser(t, h, "operator")

	for _, path := range []string{"/api/v1/admin/users", "/api/v1/logs", "/api/v1/logs/export"} {
		rec, env := doRequest(t, h, http.MethodGet, path, operator, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s status = %d, want 403", path, rec.Code)
			continue
		}
		if env.Error == nil || env.Error.Code != "AUTHORIZATION_ERROR" {
			t.Errorf("GET %s error = %+v, want AUTHORIZATION_ERROR", path, env.Error)
		}
	}
}

func TestAdminUserManagementOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	registerUser(t, h, "operator")
	token := login(t, h, "admin", "password")

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/admin/users", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list users: status %d", rec.Code)
	}
	var users []userResponse
	if err := json.Unmarshal(env.Data, &users); err != nil {
		t.Fatalf("unmarshal users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	rec, env = doRequest(t, h, http.MethodPost, "/api/v1/admin/users/operator/toggle-admin", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle admin: status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated userResponse
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if !updated.IsAdmin {
		t.Error("operator not promoted")
	}

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/v1/admin/users/operator", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user: status %d", rec.Code)
	}

	rec, env = doRequest(t, h, http.MethodDelete, "/api/v1/admin/users/operator", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing user: status %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "USER_NOT_FOUND" {
		t.Errorf("error = %+v, want USER_NOT_FOUND", env.Error)
	}
}

func TestCustomSensorOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin", "password")

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/admin/sensors", token,
		map[string]string{"name": "Gas Leak", "icon": "wind"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sensor: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.CustomSensor
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("unmarshal sensor: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created sensor has no ID")
	}

	rec, env = doRequest(t, h, http.MethodGet, "/api/v1/panel/sensors", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sensors: status %d", rec.Code)
	}
	var sensors []models.Sensor
	if err := json.Unmarshal(env.Data, &sensors); err != nil {
		t.Fatalf("unmarshal sensors: %v", err)
	}
	var found bool
	for _, s := range sensors {
		if s.Key == "gasLeakSensor" && s.Custom {
			found = true
		}
	}
	if !found {
		t.Error("custom sensor missing from panel listing")
	}

	rec, env = doRequest(t, h, http.MethodPost, "/api/v1/admin/sensors", token,
		map[string]string{"icon": "wind"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nameless sensor: status %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/v1/admin/sensors/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete sensor: status %d", rec.Code)
	}
}

func TestLogEndpointsOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin", "password")

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/logs", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list logs: status %d", rec.Code)
	}
	var entries []models.LogEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least the login audit entry")
	}
	if entries[0].Action != "Sign in: Login successful" {
		t.Errorf("newest action = %q, want login entry", entries[0].Action)
	}

	rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/logs/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("export Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "system_logs_") {
		t.Errorf("Content-Disposition = %q, want system_logs_ filename", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date,Time,User,Action") {
		t.Errorf("CSV body missing header: %q", rec.Body.String())
	}

	rec, env = doRequest(t, h, http.MethodPut, "/api/v1/admin/logs/settings", token,
		models.LogSettings{MaxEntries: 500, RetentionDays: 7, AutoDelete: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings: status %d, body %s", rec.Code, rec.Body.String())
	}
	var settings models.LogSettings
	if err := json.Unmarshal(env.Data, &settings); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if settings.MaxEntries != 500 || settings.RetentionDays != 7 || !settings.AutoDelete {
		t.Errorf("settings = %+v, want {500 7 true}", settings)
	}

	rec, _ = doRequest(t, h, http.MethodPost, "/api/v1/admin/logs/clear", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear logs: status %d", rec.Code)
	}

	_, env = doRequest(t, h, http.MethodGet, "/api/v1/logs", token, nil)
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != audit.ClearedAction {
		t.Errorf("after clear entries = %+v, want only the cleared marker", entries)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "admin", "password")

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}

	rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/panel/sensors", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("stale token status = %d, want 401", rec.Code)
	}
}
