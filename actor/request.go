// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Send delivers payload to addr with no reply expected. Safe to call from
// any goroutine or locality; routing always happens through addr's own
// owning supervisor, never through the caller's.
func Send[T any](addr Address, payload T) {
	if addr.sup == nil {
		return
	}
	addr.sup.loc.binding.Enqueue(Message{
		dest:    addr,
		tag:     reflect.TypeOf(payload),
		payload: payload,
	})
}

// PendingRequest is the builder returned by Request; call Send to actually
// dispatch it. The zero value is not usable.
type PendingRequest[T any] struct {
	from    *Actor
	dest    Address
	payload interface{}
}

// Request begins a request from a to dest carrying payload, replied to
// with type T. Nothing is sent until Send is called.
func Request[T any](a *Actor, dest Address, payload interface{}) *PendingRequest[T] {
	return &PendingRequest[T]{from: a, dest: dest, payload: payload}
}

// Send dispatches the request with the given timeout and registers
// onReply as its continuation. onReply runs exactly once, on the
// requesting actor's own locality: either with the response payload cast
// to T and a nil error, or with the zero value of T and ErrRequestTimeout
// (spec.md §4.7's "exactly one of (success response, timeout response)"
// guarantee). A reply whose payload is not a T is reported as the zero
// value of T and a type-mismatch error.
func (r *PendingRequest[T]) Send(timeout time.Duration, onReply func(ctx context.Context, payload T, err error)) {
	r.from.owner.sendRequest(r.from.addrVal, r.dest, r.payload, timeout, func(ctx context.Context, payload interface{}, err error) {
		var zero T
		if err != nil {
			onReply(ctx, zero, err)
			return
		}
		typed, ok := payload.(T)
		if !ok {
			onReply(ctx, zero, fmt.Errorf("actor: reply payload %T does not match expected type %T", payload, zero))
			return
		}
		onReply(ctx, typed, nil)
	})
}
