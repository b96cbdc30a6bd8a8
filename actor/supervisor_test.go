// actorloop - hierarchical actor/supervision runtime
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/actorloop

package actor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestRoot(t *testing.T, opts RootOptions) *Supervisor {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	root, err := NewRoot(ctx, "root", Hooks{}, opts)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	return root
}

// TestPingPongScenario exercises spec.md §8 scenario 1: a pinger sends one
// ping, a ponger replies with one pong, and receiving the pong triggers the
// root's own shutdown.
func TestPingPongScenario(t *testing.T) {
	type pingMsg struct{ from Address }
	type pongMsg struct{}

	var pingSent, pingReceived, pongSent, pongReceived int32

	root := newTestRoot(t, RootOptions{ShutdownTimeout: time.Second})

	pongerAddr, err := root.CreateActor(context.Background(), "ponger", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			Subscribe(self, self.Address(), func(ctx context.Context, msg Message, payload pingMsg) {
				atomic.AddInt32(&pingReceived, 1)
				atomic.AddInt32(&pongSent, 1)
				Send(payload.from, pongMsg{})
			})
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(ponger): %v", err)
	}

	_, err = root.CreateActor(context.Background(), "pinger", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			Subscribe(self, self.Address(), func(ctx context.Context, msg Message, payload pongMsg) {
				atomic.AddInt32(&pongReceived, 1)
				root.DoShutdown()
			})
			atomic.AddInt32(&pingSent, 1)
			Send(pongerAddr, pingMsg{from: self.Address()})
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(pinger): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := root.WaitShutdown(ctx); err != nil {
		t.Fatalf("WaitShutdown: %v", err)
	}

	if got := root.State(); got != StateShutdown {
		t.Errorf("root.State() = %v, want StateShutdown", got)
	}
	for name, got := range map[string]int32{
		"pingSent":     atomic.LoadInt32(&pingSent),
		"pingReceived": atomic.LoadInt32(&pingReceived),
		"pongSent":     atomic.LoadInt32(&pongSent),
		"pongReceived": atomic.LoadInt32(&pongReceived),
	} {
		if got != 1 {
			t.Errorf("%s = %d, want 1", name, got)
		}
	}
}

// TestRequestTimeout exercises spec.md §8 scenario 2: a Request against an
// address with no matching subscription resolves with ErrRequestTimeout,
// never hangs.
func TestRequestTimeout(t *testing.T) {
	type reqPayload struct{}
	type replyPayload struct{}

	root := newTestRoot(t, RootOptions{ShutdownTimeout: time.Second})

	bAddr, err := root.CreateActor(context.Background(), "b", Hooks{}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(b): %v", err)
	}

	result := make(chan error, 1)
	_, err = root.CreateActor(context.Background(), "a", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			Request[replyPayload](self, bAddr, reqPayload{}).Send(20*time.Millisecond, func(ctx context.Context, payload replyPayload, err error) {
				result <- err
			})
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(a): %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrRequestTimeout) {
			t.Errorf("request callback err = %v, want ErrRequestTimeout", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the request's timeout callback")
	}
}

// TestCascadedShutdownTiming exercises spec.md §8 scenario 3: one child
// whose OnShutdown never returns does not block a sibling's shutdown or the
// root's own, and is reported once via SystemContext as SHUTDOWN_FAILED.
func TestCascadedShutdownTiming(t *testing.T) {
	reports := make(chan error, 10)
	sysCtx := NewSystemContext(func(err error) { reports <- err }, time.Second, 10)

	root := newTestRoot(t, RootOptions{
		ShutdownTimeout: 50 * time.Millisecond,
		SystemContext:   sysCtx,
	})

	blockForever := make(chan struct{})
	t.Cleanup(func() { close(blockForever) })

	_, err := root.CreateSupervisor(context.Background(), "wedged", Hooks{
		OnShutdown: func(ctx context.Context, self *Actor) {
			<-blockForever
		},
	}, ChildSupervisorOptions{NewLocality: true}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateSupervisor(wedged): %v", err)
	}

	var sawShutdown int32
	_, err = root.CreateActor(context.Background(), "sibling", Hooks{
		OnShutdown: func(ctx context.Context, self *Actor) {
			atomic.StoreInt32(&sawShutdown, 1)
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(sibling): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := root.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if got := root.State(); got != StateShutdown {
		t.Errorf("root.State() = %v, want StateShutdown despite the wedged child", got)
	}
	if atomic.LoadInt32(&sawShutdown) != 1 {
		t.Error("sibling's OnShutdown never ran")
	}

	select {
	case err := <-reports:
		if !errors.Is(err, ErrShutdownFailed) {
			t.Errorf("report = %v, want ErrShutdownFailed", err)
		}
	default:
		t.Fatal("expected one SHUTDOWN_FAILED report for the wedged child")
	}
	select {
	case extra := <-reports:
		t.Errorf("unexpected extra report: %v", extra)
	default:
	}
}

// TestInitFailureShutdownSelf exercises spec.md §8 scenario 4: under policy
// SHUTDOWN_SELF, one child's init failure tears the root down while a
// slower sibling is still blocked in OnInitialize, so that sibling has not
// reached OnStart by the time the root reaches SHUTDOWN.
func TestInitFailureShutdownSelf(t *testing.T) {
	slowInitGate := make(chan struct{})
	var c2Started int32

	rootHooks := Hooks{
		OnInitialize: func(ctx context.Context, self *Actor) error {
			sup := self.Owner()
			_, err := sup.CreateActor(ctx, "fails-fast", Hooks{
				OnInitialize: func(ctx context.Context, self *Actor) error {
					return errors.New("boom")
				},
			}, CreateActorOptions{Timeout: time.Second})
			if err != nil {
				return err
			}

			_, err = sup.CreateSupervisor(ctx, "slow-child", Hooks{
				OnInitialize: func(ctx context.Context, self *Actor) error {
					<-slowInitGate
					return nil
				},
				OnStart: func(ctx context.Context, self *Actor) {
					atomic.StoreInt32(&c2Started, 1)
				},
			}, ChildSupervisorOptions{NewLocality: true}, CreateActorOptions{Timeout: 2 * time.Second})
			return err
		},
	}

	sysCtx := NewSystemContext(nil, time.Second, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	root, err := NewRoot(ctx, "root-with-failing-child", rootHooks, RootOptions{
		Policy:          PolicyShutdownSelf,
		ShutdownTimeout: time.Second,
		SystemContext:   sysCtx,
	})
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer waitCancel()
	if err := root.WaitShutdown(waitCtx); err != nil {
		t.Fatalf("WaitShutdown: %v", err)
	}
	defer close(slowInitGate)

	if got := root.State(); got != StateShutdown {
		t.Errorf("root.State() = %v, want StateShutdown", got)
	}
	if atomic.LoadInt32(&c2Started) != 0 {
		t.Error("slow-child's OnStart ran despite the sibling's init failure")
	}
}

// TestCrossLocalityOrdering exercises spec.md §8 scenario 5: messages sent
// in order to an address owned by a different locality are delivered in
// that same order.
func TestCrossLocalityOrdering(t *testing.T) {
	type seqMsg struct{ n int }

	root := newTestRoot(t, RootOptions{ShutdownTimeout: time.Second})

	var trace orderedInts
	received := make(chan struct{}, 3)

	remoteAddr, err := root.CreateSupervisor(context.Background(), "remote", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			Subscribe(self, self.Address(), func(ctx context.Context, msg Message, payload seqMsg) {
				trace.append(payload.n)
				received <- struct{}{}
			})
		},
	}, ChildSupervisorOptions{NewLocality: true}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateSupervisor(remote): %v", err)
	}

	_, err = root.CreateActor(context.Background(), "sender", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			Send(remoteAddr, seqMsg{n: 1})
			Send(remoteAddr, seqMsg{n: 2})
			Send(remoteAddr, seqMsg{n: 3})
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(sender): %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message #%d", i+1)
		}
	}

	if got := trace.snapshot(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("received order = %v, want [1 2 3]", got)
	}
}

// orderedInts records arrival order across localities through a buffered
// channel, drained into a slice by snapshot, without racing the test
// goroutine that reads it back.
type orderedInts struct {
	vals []int
	ch   chan int
}

func (o *orderedInts) append(n int) {
	if o.ch == nil {
		o.ch = make(chan int, 1024)
	}
	o.ch <- n
}

func (o *orderedInts) snapshot() []int {
	for {
		select {
		case n := <-o.ch:
			o.vals = append(o.vals, n)
		default:
			return o.vals
		}
	}
}

// TestUnsubscribeAllOnShutdown exercises spec.md §8 scenario 6: an actor's
// subscriptions, local and foreign alike, are all torn down by the time its
// shutdown completes.
func TestUnsubscribeAllOnShutdown(t *testing.T) {
	type topicA struct{}
	type topicB struct{}
	type topicC struct{}

	root := newTestRoot(t, RootOptions{ShutdownTimeout: time.Second})

	// sib shares root's locality but owns its own children, so subscribing
	// to one of sib's actors from an actor owned by root is a foreign
	// subscription (spec.md §2 item 4's "local" test is ownership, not
	// locality membership).
	var siblingBAddr, siblingCAddr Address
	sibReady := make(chan struct{})
	sibAddr, err := root.CreateSupervisor(context.Background(), "sib", Hooks{
		OnInitialize: func(ctx context.Context, self *Actor) error {
			sup := self.Owner()
			var err error
			siblingBAddr, err = sup.CreateActor(ctx, "sib-b", Hooks{}, CreateActorOptions{Timeout: time.Second})
			if err != nil {
				return err
			}
			siblingCAddr, err = sup.CreateActor(ctx, "sib-c", Hooks{}, CreateActorOptions{Timeout: time.Second})
			return err
		},
		OnStart: func(ctx context.Context, self *Actor) {
			close(sibReady)
		},
	}, ChildSupervisorOptions{}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateSupervisor(sib): %v", err)
	}

	select {
	case <-sibReady:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sib to finish creating its own children")
	}

	var subscriber *Actor
	ready := make(chan struct{})
	subAddr, err := root.CreateActor(context.Background(), "subscriber", Hooks{
		OnStart: func(ctx context.Context, self *Actor) {
			subscriber = self
			Subscribe(self, self.Address(), func(ctx context.Context, msg Message, payload topicA) {})
			Subscribe(self, siblingBAddr, func(ctx context.Context, msg Message, payload topicB) {})
			Subscribe(self, siblingCAddr, func(ctx context.Context, msg Message, payload topicC) {})
			close(ready)
		},
	}, CreateActorOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CreateActor(subscriber): %v", err)
	}

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber to finish subscribing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := root.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if got := root.State(); got != StateShutdown {
		t.Fatalf("root.State() = %v, want StateShutdown", got)
	}
	if len(subscriber.subs) != 0 {
		t.Errorf("subscriber.subs has %d entries after shutdown, want 0", len(subscriber.subs))
	}
	if !root.subMap.empty() {
		t.Error("root's own subscription map (holding the local subscription) is not empty after shutdown")
	}
	if !sibAddr.sup.subMap.empty() {
		t.Error("sib's subscription map (holding the two foreign subscriptions) is not empty after shutdown")
	}

	_ = subAddr
}
