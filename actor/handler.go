// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"reflect"
)

// HandlerFunc is the internal, untyped shape every subscription is reduced
// to before it is stored in a subscription map.
type HandlerFunc func(ctx context.Context, msg Message)

// typedHandler builds the reflect.Type tag for T and a HandlerFunc that
// type-asserts an incoming message's payload before calling fn. Messages
// whose payload does not assert to T are dropped silently: the
// subscription map only ever routes messages whose tag matches, so a
// mismatch here means the tag comparison and the concrete type disagree,
// which should not happen outside of tests that poke internals directly.
func typedHandler[T any](fn func(ctx context.Context, msg Message, payload T)) (reflect.Type, HandlerFunc) {
	tag := reflect.TypeOf((*T)(nil)).Elem()
	h := func(ctx context.Context, msg Message) {
		payload, ok := msg.payload.(T)
		if !ok {
			return
		}
		fn(ctx, msg, payload)
	}
	return tag, h
}

// ReplyTo sends payload back to the sender of req, if req was sent via
// Request. It is a no-op for plain Send messages.
func ReplyTo(req Message, payload interface{}) {
	if req.replyTo.IsZero() || req.replyTo.sup == nil {
		return
	}
	sup := req.replyTo.sup
	env := userReplyEnvelope{sup: sup, reqID: req.reqID, payload: payload}
	sup.loc.binding.Enqueue(Message{dest: req.replyTo, payload: env})
}
