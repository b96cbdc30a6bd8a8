// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import "errors"

var (
	// ErrRequestTimeout is returned to a Request caller when no reply
	// arrived before the configured timeout fired.
	ErrRequestTimeout = errors.New("actor: request timed out")

	// ErrInitAborted is delivered to an actor's pending init request when
	// a shutdown is requested before its own init completed.
	ErrInitAborted = errors.New("actor: initialization aborted by shutdown")

	// ErrInitFailed wraps a child's on_initialize error when a supervisor
	// aborts its own initialization in response (policy ShutdownSelf).
	ErrInitFailed = errors.New("actor: child initialization failed")

	// ErrShutdownFailed is reported to the system context when a child
	// does not acknowledge a shutdown request within shutdown_timeout.
	ErrShutdownFailed = errors.New("actor: child did not acknowledge shutdown in time")

	// ErrCreationRefused is returned by CreateActor/CreateSupervisor once
	// the supervisor has begun shutting down.
	ErrCreationRefused = errors.New("actor: supervisor is shutting down, creation refused")

	// ErrCreationBreakerOpen is returned when a creation circuit breaker
	// is open for the requested role.
	ErrCreationBreakerOpen = errors.New("actor: creation circuit breaker is open for this role")
)
