// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package simulator

import (
	"math/rand"
	"time"
)

// Clock supplies the current time. Injected so tests control timestamps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

// RNG yields values in [0, 1). Injected so tests control trigger outcomes.
type RNG func() float64

// SystemRNG returns a seeded pseudo-random source.
func SystemRNG() RNG {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return r.Float64
}
