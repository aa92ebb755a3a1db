// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package simulator drives the sensor and alarm state machines. Each
// active sensor owns a cancellable single-shot watch timer that fires at a
// random interval and probabilistically triggers the paired alarm.
package simulator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/auth"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/models"
	"github.com/tomtom215/sentinel/internal/store"
)

var (
	// ErrUnknownSensor is returned for operations on a sensor key that does
	// not exist.
	ErrUnknownSensor = errors.New("unknown sensor")

	// ErrUnknownAlarm is returned for operations on an alarm key that does
	// not exist.
	ErrUnknownAlarm = errors.New("unknown alarm")

	// ErrDuplicateSensor is returned when creating a custom sensor whose
	// name, icon, and description all match an existing one.
	ErrDuplicateSensor = errors.New("an identical sensor already exists")
)

// timestampLayout matches the audit log's time-of-day format.
const timestampLayout = "3:04:05 PM"

// SystemUser attributes alarm triggers, which no signed-in user causes.
const SystemUser = "System"

// watch tracks one armed trigger timer. Pointer identity against the
// watches map distinguishes a live timer from a stale callback after
// cancel-and-rearm.
type watch struct {
	timer Timer
}

// Panel owns all sensor and alarm state. Safe for concurrent use; timer
// callbacks and HTTP handlers serialize on the panel lock.
type Panel struct {
	mu      sync.Mutex
	kv      store.Store
	audit   *audit.Service
	cfg     config.SimulatorConfig
	clock   Clock
	rng     RNG
	sched   Scheduler
	watches map[string]*watch
}

// Option customizes a Panel. Tests inject deterministic clock, rng, and
// scheduler.
type Option func(*Panel)

// WithClock overrides the time source.
func WithClock(c Clock) Option { return func(p *Panel) { p.clock = c } }

// WithRNG overrides the random source. The function is only called while
// the panel lock is held.
func WithRNG(r RNG) Option { return func(p *Panel) { p.rng = r } }

// WithScheduler overrides the timer scheduler.
func WithScheduler(s Scheduler) Option { return func(p *Panel) { p.sched = s } }

// NewPanel creates a panel backed by kv, recording actions to auditLog.
func NewPanel(kv store.Store, auditLog *audit.Service, cfg config.SimulatorConfig, opts ...Option) *Panel {
	p := &Panel{
		kv:      kv,
		audit:   auditLog,
		cfg:     cfg,
		clock:   SystemClock(),
		rng:     SystemRNG(),
		sched:   SystemScheduler(),
		watches: make(map[string]*watch),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sensors returns every sensor, built-in and custom, with live state.
func (p *Panel) Sensors() ([]models.Sensor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	active, err := p.loadBoolMap(store.KeyActivatedSensors)
	if err != nil {
		return nil, err
	}
	stamps, err := p.loadStringMap(store.KeyLastTriggered)
	if err != nil {
		return nil, err
	}
	customs, err := p.loadCustoms()
	if err != nil {
		return nil, err
	}

	out := make([]models.Sensor, 0, len(builtinSensors)+len(customs))
	for _, b := range builtinSensors {
		out = append(out, p.decorate(builtinToSensor(b), active, stamps))
	}
	for _, c := range customs {
		out = append(out, p.decorate(customToSensor(c), active, stamps))
	}
	return out, nil
}

func (p *Panel) decorate(s models.Sensor, active map[string]bool, stamps map[string]string) models.Sensor {
	s.IsActive = active[s.Key]
	if stamp, ok := stamps[s.Key]; ok {
		s.LastActivatedAt = stamp
	}
	return s
}

// Alarms returns the alarm paired with every sensor.
func (p *Panel) Alarms() ([]models.Alarm, error) {
	sensors, err := p.Sensors()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	active, err := p.loadBoolMap(store.KeyActiveAlarms)
	if err != nil {
		return nil, err
	}
	stamps, err := p.loadStringMap(store.KeyLastTriggered)
	if err != nil {
		return nil, err
	}

	out := make([]models.Alarm, 0, len(sensors))
	for _, s := range sensors {
		key := AlarmKeyFor(s.Key)
		a := models.Alarm{Key: key, IsActive: active[key], LastTriggeredAt: models.NeverTriggered}
		if stamp, ok := stamps[key]; ok {
			a.LastTriggeredAt = stamp
		}
		out = append(out, a)
	}
	return out, nil
}

// Activate turns a sensor on, stamps its activation time, and arms the
// trigger watch. Activating an already-active sensor leaves its state
// untouched but re-arms the watch if one is not pending; sign-out cancels
// every watch while sensors stay active.
func (p *Panel) Activate(sensorKey string, actor auth.Actor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.sensorName(sensorKey)
	if err != nil {
		return err
	}

	active, err := p.loadBoolMap(store.KeyActivatedSensors)
	if err != nil {
		return err
	}
	if active[sensorKey] {
		if _, armed := p.watches[sensorKey]; !armed {
			p.arm(sensorKey)
		}
		return nil
	}
	active[sensorKey] = true
	if err := p.kv.Set(store.KeyActivatedSensors, active); err != nil {
		return fmt.Errorf("persist sensor state: %w", err)
	}
	if err := p.stamp(sensorKey); err != nil {
		return err
	}

	if err := p.audit.Record(actor.Username, "Activated "+name); err != nil {
		return err
	}

	p.arm(sensorKey)
	metrics.RecordSensorState(sensorKey, true)
	logging.Debug().Str("sensor", sensorKey).Msg("Sensor activated")
	return nil
}

// Deactivate turns a sensor off, cancels its pending watch, and forces the
// paired alarm silent regardless of its current state.
func (p *Panel) Deactivate(sensorKey string, actor auth.Actor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.sensorName(sensorKey)
	if err != nil {
		return err
	}

	p.cancel(sensorKey)

	active, err := p.loadBoolMap(store.KeyActivatedSensors)
	if err != nil {
		return err
	}
	if !active[sensorKey] {
		return nil
	}
	delete(active, sensorKey)
	if err := p.kv.Set(store.KeyActivatedSensors, active); err != nil {
		return fmt.Errorf("persist sensor state: %w", err)
	}

	if err := p.silence(AlarmKeyFor(sensorKey)); err != nil {
		return err
	}

	if err := p.audit.Record(actor.Username, "Deactivated "+name); err != nil {
		return err
	}
	metrics.RecordSensorState(sensorKey, false)
	logging.Debug().Str("sensor", sensorKey).Msg("Sensor deactivated")
	return nil
}

// SilenceAlarm silences an alarm without deactivating its sensor; the
// sensor may re-trigger it later. Admin only.
func (p *Panel) SilenceAlarm(alarmKey string, actor auth.Actor) error {
	if !actor.IsAdmin {
		return auth.ErrPermissionDenied
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sensorKey := strings.TrimSuffix(alarmKey, alarmSuffix) + sensorSuffix
	name, err := p.sensorName(sensorKey)
	if err != nil {
		return ErrUnknownAlarm
	}

	if err := p.silence(alarmKey); err != nil {
		return err
	}
	return p.audit.Record(actor.Username, "Silenced "+alarmNameFor(name))
}

// CancelAll stops every pending watch timer. Called on sign-out and on
// service shutdown; sensor and alarm state is left untouched.
func (p *Panel) CancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, w := range p.watches {
		w.timer.Stop()
		delete(p.watches, key)
	}
}

// Rearm restores watch timers for sensors persisted as active. Called at
// startup and after each login so neither a restart nor a sign-out/sign-in
// cycle orphans active sensors. Idempotent: already-armed sensors keep
// their pending timer.
func (p *Panel) Rearm() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	active, err := p.loadBoolMap(store.KeyActivatedSensors)
	if err != nil {
		return err
	}
	for key, on := range active {
		if !on {
			continue
		}
		if _, armed := p.watches[key]; !armed {
			p.arm(key)
		}
	}
	return nil
}

// CreateCustomSensor defines a new sensor at runtime. The new sensor and
// its alarm start inactive. An identical name/icon/description triple is
// rejected.
func (p *Panel) CreateCustomSensor(name, icon, description string) (models.CustomSensor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CustomSensor{}, fmt.Errorf("sensor name must not be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	customs, err := p.loadCustoms()
	if err != nil {
		return models.CustomSensor{}, err
	}

	key := SensorKeyForName(name)
	if isBuiltinKey(key) {
		return models.CustomSensor{}, ErrDuplicateSensor
	}
	for _, c := range customs {
		if c.Name == name && c.Icon == icon && c.Description == description {
			return models.CustomSensor{}, ErrDuplicateSensor
		}
		if SensorKeyForName(c.Name) == key {
			return models.CustomSensor{}, ErrDuplicateSensor
		}
	}

	created := models.CustomSensor{
		ID:          uuid.NewString(),
		Name:        name,
		Icon:        icon,
		Description: description,
	}
	customs = append(customs, created)
	if err := p.kv.Set(store.KeyCustomSensors, customs); err != nil {
		return models.CustomSensor{}, fmt.Errorf("persist custom sensors: %w", err)
	}
	return created, nil
}

// DeleteCustomSensor removes a custom sensor, its alarm records, and any
// pending watch timer.
func (p *Panel) DeleteCustomSensor(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	customs, err := p.loadCustoms()
	if err != nil {
		return err
	}

	idx := -1
	for i, c := range customs {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownSensor
	}

	key := SensorKeyForName(customs[idx].Name)
	p.cancel(key)

	customs = append(customs[:idx], customs[idx+1:]...)
	if err := p.kv.Set(store.KeyCustomSensors, customs); err != nil {
		return fmt.Errorf("persist custom sensors: %w", err)
	}

	alarmKey := AlarmKeyFor(key)
	if err := p.forget(store.KeyActivatedSensors, key); err != nil {
		return err
	}
	if err := p.forget(store.KeyActiveAlarms, alarmKey); err != nil {
		return err
	}

	stamps, err := p.loadStringMap(store.KeyLastTriggered)
	if err != nil {
		return err
	}
	delete(stamps, key)
	delete(stamps, alarmKey)
	if err := p.kv.Set(store.KeyLastTriggered, stamps); err != nil {
		return fmt.Errorf("persist trigger times: %w", err)
	}
	return nil
}

// CustomSensors returns the custom sensor definitions.
func (p *Panel) CustomSensors() ([]models.CustomSensor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadCustoms()
}

// arm schedules the next trigger check at a random delay within the
// configured bounds. Caller holds the lock.
func (p *Panel) arm(sensorKey string) {
	delay := p.cfg.MinDelay
	if span := p.cfg.MaxDelay - p.cfg.MinDelay; span > 0 {
		delay += time.Duration(p.rng() * float64(span))
	}

	w := &watch{}
	w.timer = p.sched.AfterFunc(delay, func() { p.watchFired(sensorKey, w) })
	p.watches[sensorKey] = w
}

// cancel stops the pending watch for sensorKey, if any. Caller holds the
// lock.
func (p *Panel) cancel(sensorKey string) {
	if w, ok := p.watches[sensorKey]; ok {
		w.timer.Stop()
		delete(p.watches, sensorKey)
	}
}

// watchFired runs when a watch timer elapses. A stale callback, one whose
// watch was cancelled after the timer fired, no longer matches the entry in
// the watches map and is dropped.
func (p *Panel) watchFired(sensorKey string, w *watch) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watches[sensorKey] != w {
		return
	}
	delete(p.watches, sensorKey)

	active, err := p.loadBoolMap(store.KeyActivatedSensors)
	if err != nil {
		logging.Error().Err(err).Str("sensor", sensorKey).Msg("Watch check failed")
		return
	}
	if !active[sensorKey] {
		return
	}

	if p.rng() < p.cfg.TriggerChance {
		if err := p.trigger(sensorKey); err != nil {
			logging.Error().Err(err).Str("sensor", sensorKey).Msg("Alarm trigger failed")
		}
	}

	// Keep watching while the sensor stays active.
	p.arm(sensorKey)
}

// trigger fires the paired alarm. Caller holds the lock.
func (p *Panel) trigger(sensorKey string) error {
	name, err := p.sensorName(sensorKey)
	if err != nil {
		return err
	}
	alarmKey := AlarmKeyFor(sensorKey)

	alarms, err := p.loadBoolMap(store.KeyActiveAlarms)
	if err != nil {
		return err
	}
	alarms[alarmKey] = true
	if err := p.kv.Set(store.KeyActiveAlarms, alarms); err != nil {
		return fmt.Errorf("persist alarm state: %w", err)
	}
	if err := p.stamp(alarmKey); err != nil {
		return err
	}

	metrics.RecordAlarmTrigger(alarmKey)
	logging.Info().Str("alarm", alarmKey).Msg("Alarm triggered")
	return p.audit.Record(SystemUser, alarmNameFor(name)+" triggered")
}

// silence forces an alarm off. Caller holds the lock.
func (p *Panel) silence(alarmKey string) error {
	alarms, err := p.loadBoolMap(store.KeyActiveAlarms)
	if err != nil {
		return err
	}
	if !alarms[alarmKey] {
		return nil
	}
	delete(alarms, alarmKey)
	if err := p.kv.Set(store.KeyActiveAlarms, alarms); err != nil {
		return fmt.Errorf("persist alarm state: %w", err)
	}
	return nil
}

// stamp records the current time-of-day against key in the trigger-time
// map. Caller holds the lock.
func (p *Panel) stamp(key string) error {
	stamps, err := p.loadStringMap(store.KeyLastTriggered)
	if err != nil {
		return err
	}
	stamps[key] = p.clock.Now().Format(timestampLayout)
	if err := p.kv.Set(store.KeyLastTriggered, stamps); err != nil {
		return fmt.Errorf("persist trigger times: %w", err)
	}
	return nil
}

// sensorName resolves a sensor key to its display name. Caller holds the
// lock.
func (p *Panel) sensorName(sensorKey string) (string, error) {
	for _, b := range builtinSensors {
		if b.Key == sensorKey {
			return b.DisplayName, nil
		}
	}
	customs, err := p.loadCustoms()
	if err != nil {
		return "", err
	}
	for _, c := range customs {
		if SensorKeyForName(c.Name) == sensorKey {
			return c.Name, nil
		}
	}
	return "", ErrUnknownSensor
}

func (p *Panel) forget(storeKey, entry string) error {
	m, err := p.loadBoolMap(storeKey)
	if err != nil {
		return err
	}
	delete(m, entry)
	if err := p.kv.Set(storeKey, m); err != nil {
		return fmt.Errorf("persist %s: %w", storeKey, err)
	}
	return nil
}

func (p *Panel) loadBoolMap(key string) (map[string]bool, error) {
	var m map[string]bool
	if _, err := p.kv.Get(key, &m); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if m == nil {
		m = make(map[string]bool)
	}
	return m, nil
}

func (p *Panel) loadStringMap(key string) (map[string]string, error) {
	var m map[string]string
	if _, err := p.kv.Get(key, &m); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if m == nil {
		m = make(map[string]string)
	}
	return m, nil
}

func (p *Panel) loadCustoms() ([]models.CustomSensor, error) {
	var customs []models.CustomSensor
	if _, err := p.kv.Get(store.KeyCustomSensors, &customs); err != nil {
		return nil, fmt.Errorf("load custom sensors: %w", err)
	}
	return customs, nil
}
