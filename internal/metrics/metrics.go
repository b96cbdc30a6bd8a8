// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

// Package metrics exposes prometheus counters and gauges for the actor
// engine, registered against the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActorsCreated counts every child created by Supervisor.CreateActor /
	// CreateSupervisor whose initialization then succeeded.
	ActorsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actorloop_actors_created_total",
		Help: "Total number of actors and child supervisors created.",
	})

	// ActorsShutdown counts actors that have reached SHUTDOWN.
	ActorsShutdown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actorloop_actors_shutdown_total",
		Help: "Total number of actors that completed shutdown.",
	})

	// MessagesDispatched counts every message a locality's dispatch loop
	// pops, internal envelopes included, whether or not a handler matches.
	MessagesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actorloop_messages_dispatched_total",
		Help: "Total number of messages processed by locality dispatch loops.",
	}, []string{"locality"})

	// RequestTimeouts counts Request calls whose timer fired before a
	// reply arrived.
	RequestTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actorloop_request_timeouts_total",
		Help: "Total number of requests that timed out waiting for a reply.",
	})

	// ShutdownFailures counts SHUTDOWN_FAILED occurrences (a child's
	// shutdown timer fired before it acknowledged).
	ShutdownFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actorloop_shutdown_failures_total",
		Help: "Total number of child shutdown requests that timed out.",
	})

	// LocalityRestarts counts dispatch-loop restarts performed by the
	// resilience package's suture supervisor.
	LocalityRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actorloop_locality_restarts_total",
		Help: "Total number of times a locality's dispatch loop was restarted after a panic.",
	})

	// RequestsPending tracks in-flight Request calls awaiting a reply or
	// timeout.
	RequestsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "actorloop_requests_pending",
		Help: "Number of in-flight requests awaiting a reply or timeout.",
	})
)
