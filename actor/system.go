// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/actorloop/internal/logging"
)

// SystemContext is the per-process value injected into a root Supervisor.
// It is the only escape hatch for failures that have no parent left to
// handle them: a root's own init timeout, and any SHUTDOWN_FAILED that
// fires along the tree (spec.md §4.6, §6, §7).
//
// A single SystemContext is shared by every Supervisor in a tree, root
// and descendants alike, so shutdown failures deep in a subtree still
// reach one place.
type SystemContext struct {
	onError func(err error)
	limiter *rate.Limiter
}

// NewSystemContext builds a SystemContext that forwards errors to onError
// through a token bucket: up to burst errors at once, refilled at one
// error per window; errors arriving with the bucket empty are dropped.
// A nil onError simply discards everything, which is fine for tests that
// don't care to observe it.
func NewSystemContext(onError func(err error), window time.Duration, burst int) *SystemContext {
	if onError == nil {
		onError = func(error) {}
	}
	if burst <= 0 {
		burst = 1
	}
	return &SystemContext{
		onError: onError,
		limiter: rate.NewLimiter(rate.Every(window), burst),
	}
}

// report delivers err to the callback unless the rate limiter has
// exhausted its budget for the current window, matching SPEC_FULL.md's
// requirement that a subtree with many simultaneously-wedged children
// cannot flood the error callback.
func (c *SystemContext) report(err error) {
	if c == nil || err == nil {
		return
	}
	if !c.limiter.Allow() {
		logging.Warn().Err(err).Msg("system context error callback rate-limited, dropping report")
		return
	}
	c.onError(err)
}
