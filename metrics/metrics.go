// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines Greenroom's Prometheus instrumentation. The
// binary registers the collectors and serves them via promhttp; the
// room engine increments them. Passing a nil registerer to New yields
// working but unregistered collectors, which is what tests use.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all of Greenroom's collectors.
type Metrics struct {
	// RoomsActive tracks the current registry size.
	RoomsActive prometheus.Gauge

	// RoomsCreated counts successful room creations.
	RoomsCreated prometheus.Counter

	// RoomsDeleted counts room teardowns (auto-delete and close).
	RoomsDeleted prometheus.Counter

	// CreateFailures counts provisioning failures during creation.
	CreateFailures prometheus.Counter

	// Commands counts dispatched commands by action and outcome
	// status.
	Commands *prometheus.CounterVec

	// PanelDeliveries counts control panel delivery results
	// ("delivered" or "failed").
	PanelDeliveries *prometheus.CounterVec
}

// New builds the collectors and registers them with reg. A nil reg
// skips registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenroom_rooms_active",
			Help: "Number of rooms currently in the registry.",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenroom_rooms_created_total",
			Help: "Rooms successfully created.",
		}),
		RoomsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenroom_rooms_deleted_total",
			Help: "Rooms torn down, by auto-delete or owner close.",
		}),
		CreateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenroom_room_create_failures_total",
			Help: "Room creations aborted by provisioning failure.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenroom_commands_total",
			Help: "Control panel commands by action and outcome status.",
		}, []string{"action", "status"}),
		PanelDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenroom_panel_deliveries_total",
			Help: "Control panel delivery attempts by final result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RoomsActive,
			m.RoomsCreated,
			m.RoomsDeleted,
			m.CreateFailures,
			m.Commands,
			m.PanelDeliveries,
		)
	}
	return m
}
