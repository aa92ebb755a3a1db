// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package simulator

import "time"

// Timer is a cancellable single-shot timer handle.
type Timer interface {
	// Stop cancels the timer. Reports false when the callback already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler schedules single-shot callbacks. The real implementation wraps
// time.AfterFunc; tests substitute a manual scheduler to fire callbacks
// deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler returns a Scheduler backed by runtime timers.
func SystemScheduler() Scheduler { return realScheduler{} }
