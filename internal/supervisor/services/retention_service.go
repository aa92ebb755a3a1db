// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sentinel/internal/logging"
)

// LogPruner matches the audit service's retention entry point.
type LogPruner interface {
	PruneWithSettings() (int, error)
}

// RetentionService periodically applies the stored audit retention
// settings. Each sweep re-reads the settings, so admin changes take
// effect without a restart.
type RetentionService struct {
	pruner   LogPruner
	interval time.Duration
	name     string
}

// NewRetentionService builds a retention sweeper. A non-positive interval
// falls back to hourly.
func NewRetentionService(pruner LogPruner, interval time.Duration) *RetentionService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionService{pruner: pruner, interval: interval, name: "audit-retention"}
}

// Serve implements suture.Service. Sweep failures are logged, not fatal;
// a broken store should not put the sweeper into a restart loop.
func (s *RetentionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RetentionService) sweep() {
	removed, err := s.pruner.PruneWithSettings()
	if err != nil {
		logging.Error().Err(err).Msg("Audit retention sweep failed")
		return
	}
	if removed > 0 {
		logging.Info().Int("removed", removed).Msg("Pruned audit log entries")
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *RetentionService) String() string {
	return s.name
}
