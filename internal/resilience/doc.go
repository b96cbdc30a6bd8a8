// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

/*
Package resilience wraps a locality's dispatch-loop goroutine in a suture
supervisor, so a panic inside a user handler restarts the loop rather than
taking the process down.

This is deliberately narrow: it supervises exactly one suture.Service per
locality (the loop that pops messages off the mailbox and invokes handlers),
never the user-level actor/supervisor tree itself, which is modeled
explicitly by the actor package's own parent/child bookkeeping. Restarting
the loop is safe because the mailbox lives outside the loop goroutine: a
crash drops no queued messages, only in-flight state local to the panicking
handler call.

The suture event hook is bridged to the engine's zerolog-backed logger
through an slog.Handler adapter (internal/logging) and sutureslog, so
restart/backoff events land in the same structured log stream as everything
else.
*/
package resilience
