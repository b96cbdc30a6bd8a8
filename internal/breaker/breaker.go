// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

// Package breaker guards repeated actor-creation failures with a
// gobreaker circuit breaker keyed by logical role, so a supervisor under
// policy ESCALATE stops retrying a constructor that is failing every time.
package breaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config tunes a per-role circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive creation failures for
	// a role before the breaker opens.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before allowing a
	// single probe request through (half-open).
	OpenTimeout time.Duration

	// Interval is how often the closed-state failure counts are reset.
	Interval time.Duration
}

// DefaultConfig mirrors the teacher's circuit-breaker defaults used for
// guarding repeated upstream call failures.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
		Interval:         time.Minute,
	}
}

// CreationBreaker tracks one gobreaker.CircuitBreaker per creation role
// (the logical identity of what CreateActor/CreateSupervisor is trying to
// build, e.g. "worker" or "connection-pool"). A single CreationBreaker is
// shared by every supervisor in a tree, which may span several localities
// (separate dispatch-loop goroutines), so access to the role map is
// mutex-guarded rather than assumed single-threaded like the rest of the
// engine's per-locality state.
type CreationBreaker struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

// New creates a CreationBreaker using cfg for every role it sees.
func New(cfg Config) *CreationBreaker {
	return &CreationBreaker{
		cfg:      cfg,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

func (c *CreationBreaker) breakerFor(role string) *gobreaker.CircuitBreaker[struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[role]; ok {
		return b
	}
	settings := gobreaker.Settings{
		Name:        role,
		MaxRequests: 1,
		Interval:    c.cfg.Interval,
		Timeout:     c.cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.cfg.FailureThreshold
		},
	}
	b := gobreaker.NewCircuitBreaker[struct{}](settings)
	c.breakers[role] = b
	return b
}

// Allow reports whether a new creation attempt for role may proceed. It
// must be paired with Record once the outcome of that attempt is known.
// Creation is asynchronous in this engine (the result arrives later, via
// the init-reply envelope), so Allow only consults the breaker's current
// state rather than wrapping the attempt in Execute.
func (c *CreationBreaker) Allow(role string) bool {
	return c.breakerFor(role).State() != gobreaker.StateOpen
}

// Record reports the outcome of a creation attempt previously allowed by
// Allow, updating the role's failure count.
func (c *CreationBreaker) Record(role string, err error) {
	b := c.breakerFor(role)
	_, _ = b.Execute(func() (struct{}, error) { return struct{}{}, err })
}

// State returns the current state name for a role's breaker, mainly for
// logging and tests.
func (c *CreationBreaker) State(role string) string {
	return c.breakerFor(role).State().String()
}
