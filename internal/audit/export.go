// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// csvHeader is the fixed column order for exports.
var csvHeader = []string{"Date", "Time", "User", "Action"}

// WriteCSV writes the deduplicated log as CSV, oldest entry first. Display
// layers reverse; the export preserves store order.
func (s *Service) WriteCSV(w io.Writer) error {
	s.mu.Lock()
	logs, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	entries := dedupe(logs)
	sortNewestFirst(entries)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date, e.Time, e.User, e.Action}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportFilename returns the download name for a CSV export taken at now,
// e.g. "system_logs_2026-08-28.csv".
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("system_logs_%s.csv", now.UTC().Format("2006-01-02"))
}
