// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

// LifecycleState is the position of an actor or supervisor in its
// lifecycle state machine. States are ordered: comparisons like
// state >= StateShuttingDown are used to reject operations (new
// subscriptions, new children) once shutdown has begun.
type LifecycleState int

const (
	// StateNew is the state of a freshly constructed unit, before its
	// initialize_actor request has been delivered.
	StateNew LifecycleState = iota

	// StateInitializing covers both running a unit's own OnInitialize
	// hook and, for a supervisor, waiting on its children's init replies.
	StateInitializing

	// StateInitialized is reached once OnInitialize (and, for a
	// supervisor, every child's init) has succeeded, immediately before
	// OnStart runs.
	StateInitialized

	// StateOperational is the steady state: the unit accepts ordinary
	// messages and may create children.
	StateOperational

	// StateShuttingDown is entered as soon as a shutdown request is
	// received. New subscriptions and new children are refused from this
	// point on.
	StateShuttingDown

	// StateShutdown is terminal: the unit's mailbox is drained and its
	// reply to its own shutdown request has been sent.
	StateShutdown
)

// String implements fmt.Stringer for log output.
func (s LifecycleState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateOperational:
		return "operational"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// initSubstate refines StateInitializing for a supervisor, which must run
// its own OnInitialize hook and then wait for every child it creates
// during that hook to finish initializing before it reports success
// upstream. A plain Actor goes straight from initSelf to initDone.
type initSubstate int

const (
	initSelf initSubstate = iota
	initWaitingChildren
	initDone
)

// shutdownSubstate refines StateShuttingDown for a supervisor: children are
// asked to shut down first, then the supervisor's own OnShutdown hook runs.
type shutdownSubstate int

const (
	shutdownSelf shutdownSubstate = iota
	shutdownWaitingChildren
	shutdownRunningOwnHook
	shutdownDone
)

// behavior tracks the fine-grained progress of the current lifecycle
// transition. It is meaningless outside of StateInitializing and
// StateShuttingDown.
type behavior struct {
	init     initSubstate
	shutdown shutdownSubstate
}

// pendingRequest is the continuation for an in-flight lifecycle request
// (initialize_actor or shutdown_actor): exactly one of onSuccess/onError is
// called, exactly once, when the request resolves.
type pendingRequest struct {
	onSuccess func()
	onError   func(error)
}

func (p *pendingRequest) replySuccess() {
	if p == nil || p.onSuccess == nil {
		return
	}
	p.onSuccess()
}

func (p *pendingRequest) replyError(err error) {
	if p == nil {
		return
	}
	if p.onError != nil {
		p.onError(err)
		return
	}
	p.replySuccess()
}
