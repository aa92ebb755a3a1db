// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"fmt"
)

// PanelController matches the panel lifecycle the supervisor drives:
// re-arm persisted-active sensors on start, cancel every watch on stop.
type PanelController interface {
	Rearm() error
	CancelAll()
}

// PanelService owns the sensor watch lifecycle as a supervised service.
type PanelService struct {
	panel PanelController
	name  string
}

// NewPanelService wraps a panel for supervision.
func NewPanelService(panel PanelController) *PanelService {
	return &PanelService{panel: panel, name: "panel-watches"}
}

// Serve implements suture.Service. Rearm failures return immediately so
// suture retries with backoff; storage may simply not be ready yet.
func (p *PanelService) Serve(ctx context.Context) error {
	if err := p.panel.Rearm(); err != nil {
		return fmt.Errorf("panel rearm failed: %w", err)
	}

	<-ctx.Done()

	p.panel.CancelAll()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (p *PanelService) String() string {
	return p.name
}
