// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

// Package resilience wraps a single restartable goroutine (a locality's
// dispatch loop) in a suture.Supervisor, so a panic inside a user handler
// restarts the loop instead of taking the whole process down.
package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Config controls restart behavior for a supervised loop.
type Config struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for the loop to stop.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultConfig returns production-ready defaults, matching suture's own
// built-in defaults per pkg.go.dev documentation.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5.0
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = 30.0
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// LoopSupervisor supervises exactly one suture.Service: the dispatch loop of
// a single locality. Restarting the loop never drops queued messages, since
// the mailbox lives outside the loop goroutine.
type LoopSupervisor struct {
	sup    *suture.Supervisor
	logger *slog.Logger
	config Config
}

// New creates a LoopSupervisor named after its locality's leader.
// onRestart, if non-nil, is called once for every service restart (a
// recovered panic or returned error followed by suture bringing the
// service back up) - callers use it to drive a restart counter.
func New(name string, logger *slog.Logger, config Config, onRestart func()) *LoopSupervisor {
	config = config.withDefaults()

	handler := &sutureslog.Handler{Logger: logger}
	logHook := handler.MustHook()
	spec := suture.Spec{
		EventHook: func(ev suture.Event) {
			logHook(ev)
			if onRestart == nil {
				return
			}
			if _, ok := ev.(suture.EventServiceTerminate); ok {
				onRestart()
			}
		},
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	return &LoopSupervisor{
		sup:    suture.New(name, spec),
		logger: logger,
		config: config,
	}
}

// Add registers the dispatch loop service. Call this once before Serve.
func (l *LoopSupervisor) Add(svc suture.Service) suture.ServiceToken {
	return l.sup.Add(svc)
}

// Serve runs the supervised loop until ctx is canceled.
func (l *LoopSupervisor) Serve(ctx context.Context) error {
	return l.sup.Serve(ctx)
}

// ServeBackground starts the loop in a background goroutine and returns a
// channel that receives the terminal error.
func (l *LoopSupervisor) ServeBackground(ctx context.Context) <-chan error {
	return l.sup.ServeBackground(ctx)
}

// UnstoppedServiceReport reports services that failed to stop within
// ShutdownTimeout, for diagnosing a wedged dispatch loop.
func (l *LoopSupervisor) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return l.sup.UnstoppedServiceReport()
}
