// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/actorloop/internal/logging"
	"github.com/tomtom215/actorloop/internal/metrics"
	"github.com/tomtom215/actorloop/internal/resilience"
)

// Binding is the pluggable event-loop interface a locality runs on: enqueue
// a message, start or cancel a timer, and start or stop the loop itself.
// The engine ships exactly one implementation, LoopBinding, built on a
// goroutine, a buffered wake channel, and time.AfterFunc; other event
// loops (an external reactor, a single-threaded embedder) could implement
// this interface instead, but wiring one is out of scope here.
type Binding interface {
	// Start begins draining msgs into leader's dispatch, returning once the
	// loop has been scheduled (it does not block for the loop's lifetime).
	Start(ctx context.Context, loc *locality) error

	// Shutdown stops the loop, waiting up to its configured timeout.
	Shutdown(ctx context.Context) error

	// Enqueue appends msg to this locality's queue and wakes the loop if
	// it is idle. Safe to call from any goroutine.
	Enqueue(msg Message)

	// StartTimer schedules a timerFired envelope for id to be enqueued
	// after d elapses, attributed to owner.
	StartTimer(d time.Duration, id uint64, owner *Supervisor)

	// CancelTimer stops a previously started timer if it has not yet
	// fired. Canceling an unknown or already-fired id is a no-op.
	CancelTimer(id uint64)
}

// LoopBinding is the default Binding: one goroutine per locality, running
// under a resilience.LoopSupervisor so a panicking handler restarts the
// loop instead of crashing the process.
type LoopBinding struct {
	mbox   *mailbox
	loopUp *resilience.LoopSupervisor
	cfg    resilience.Config

	mu     sync.Mutex
	timers map[uint64]*time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoopBinding creates a LoopBinding. cfg tunes the restart behavior of
// its supervised dispatch loop; the zero value applies resilience's
// defaults.
func NewLoopBinding(cfg resilience.Config) *LoopBinding {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = resilience.DefaultConfig().ShutdownTimeout
	}
	return &LoopBinding{
		mbox:   newMailbox(),
		cfg:    cfg,
		timers: make(map[uint64]*time.Timer),
	}
}

type dispatchLoopService struct {
	loc  *locality
	mbox *mailbox
}

func (d *dispatchLoopService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.mbox.wake:
		}
		for {
			msg, ok := d.mbox.pop()
			if !ok {
				break
			}
			d.loc.dispatch(ctx, msg)
		}
	}
}

func (d *dispatchLoopService) String() string {
	return d.loc.leader.name + "-dispatch-loop"
}

// Start implements Binding.
func (b *LoopBinding) Start(ctx context.Context, loc *locality) error {
	b.loopUp = resilience.New(loc.leader.name+"-locality", logging.NewSlogLogger(), b.cfg, metrics.LocalityRestarts.Inc)
	b.loopUp.Add(&dispatchLoopService{loc: loc, mbox: b.mbox})

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	errCh := b.loopUp.ServeBackground(loopCtx)
	go func() {
		defer close(b.done)
		if err := <-errCh; err != nil && loopCtx.Err() == nil {
			logging.Ctx(ctx).Error().Err(err).Str("locality", loc.leader.name).Msg("dispatch loop terminated unexpectedly")
		}
	}()
	return nil
}

// Shutdown implements Binding.
func (b *LoopBinding) Shutdown(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	select {
	case <-b.done:
	case <-time.After(b.cfg.ShutdownTimeout):
		if report, err := b.loopUp.UnstoppedServiceReport(); err == nil && len(report) > 0 {
			logging.Ctx(ctx).Warn().Int("unstopped_services", len(report)).Msg("dispatch loop did not stop within shutdown timeout")
		}
	}
	return nil
}

// Enqueue implements Binding.
func (b *LoopBinding) Enqueue(msg Message) {
	b.mbox.push(msg)
}

// StartTimer implements Binding.
func (b *LoopBinding) StartTimer(d time.Duration, id uint64, owner *Supervisor) {
	t := time.AfterFunc(d, func() {
		b.mu.Lock()
		delete(b.timers, id)
		b.mu.Unlock()
		b.mbox.push(Message{payload: timerFiredEnvelope{owner: owner, id: id}})
	})
	b.mu.Lock()
	b.timers[id] = t
	b.mu.Unlock()
}

// CancelTimer implements Binding.
func (b *LoopBinding) CancelTimer(id uint64) {
	b.mu.Lock()
	t, ok := b.timers[id]
	if ok {
		delete(b.timers, id)
	}
	b.mu.Unlock()
	if ok {
		t.Stop()
	}
}
