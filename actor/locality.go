// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"

	"github.com/tomtom215/actorloop/internal/metrics"
)

// locality is a group of supervisors sharing one serialized dispatch loop.
// leader is the supervisor that created the locality (the root of the
// subtree running on it); binding is the event loop draining its mailbox.
// Every supervisor and actor created under leader without an explicit
// request for its own locality inherits this one.
type locality struct {
	leader  *Supervisor
	binding Binding
}

// dispatch is the single entry point every enqueued Message passes through.
// Internal plumbing (handler_call wraps, timer fires, subscription commits,
// lifecycle requests and their replies) carries an internalEnvelope payload
// and is delivered directly; everything else is an ordinary user message
// routed to its destination's owning supervisor.
func (l *locality) dispatch(ctx context.Context, msg Message) {
	metrics.MessagesDispatched.WithLabelValues(l.leader.name).Inc()

	if env, ok := msg.payload.(internalEnvelope); ok {
		env.deliver(ctx)
		return
	}

	if msg.dest.IsZero() || msg.dest.sup == nil {
		return
	}
	msg.dest.sup.deliverLocal(ctx, msg)
}
