// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type crash struct{}
type fail struct{ err error }
type quit struct{}

type timeoutError struct{}

func (timeoutError) Error() string { return "timeout" }

// worker is the fixture actor
type worker struct{}

func (worker) PreStart(context.Context) error { return nil }

func (worker) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *crash:
		panic("worker crashed")
	case *fail:
		ctx.Err(msg.err)
	case *quit:
		ctx.Stop()
	}
}

func (worker) PostStop(context.Context) error { return nil }

// flakyWorker fails to start while failures remain
type flakyWorker struct {
	worker
	failures *atomic.Int64
}

func (x flakyWorker) PreStart(context.Context) error {
	if x.failures.Dec() >= 0 {
		return errors.New("dependency not ready")
	}
	return nil
}

func countingProducer(built *atomic.Int64) actor.Producer {
	return func() actor.Actor {
		built.Inc()
		return worker{}
	}
}

func newTestSystem(t *testing.T) *actor.System {
	t.Helper()
	system, err := actor.NewSystem("test", actor.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, system.Stop(context.Background()))
	})
	return system
}

// newParent spawns an actor collecting the escalations it receives
func newParent(t *testing.T, system *actor.System) (*actor.PID, chan *Escalation) {
	t.Helper()
	escalations := make(chan *Escalation, 16)
	pid, err := system.Spawn(context.Background(), "parent", actor.NewFuncActor(func(ctx *actor.ReceiveContext) {
		if escalation, ok := ctx.Message().(*Escalation); ok {
			escalations <- escalation
		}
	}))
	require.NoError(t, err)
	return pid, escalations
}

func awaitEscalation(t *testing.T, escalations chan *Escalation) *Escalation {
	t.Helper()
	select {
	case escalation := <-escalations:
		return escalation
	case <-time.After(3 * time.Second):
		t.Fatal("no escalation received")
		return nil
	}
}

// awaitReplacement waits for the supervised actor to be backed by a new incarnation
func awaitReplacement(t *testing.T, sup *Supervisor, name string, old *actor.PID) *actor.PID {
	t.Helper()
	var replacement *actor.PID
	require.Eventually(t, func() bool {
		pid, err := sup.Actor(context.Background(), name)
		if err != nil || pid.Equals(old) {
			return false
		}
		replacement = pid
		return true
	}, 3*time.Second, 10*time.Millisecond)
	return replacement
}

func TestStrategy(t *testing.T) {
	panicReason := actor.PanicReason(gerrors.NewPanicError(errors.New("boom")))
	failureReason := actor.FailureReason(new(timeoutError))

	t.Run("With defaults", func(t *testing.T) {
		strategy := NewStrategy()
		assert.Equal(t, Permanent, strategy.Mode())
		assert.Equal(t, DefaultMaxRestarts, strategy.MaxRestarts())
		assert.Equal(t, DefaultRestartWindow, strategy.Window())
		assert.Equal(t, 1, strategy.MaxAttempts())
		assert.Equal(t, RestartDirective, strategy.Directive(panicReason))
		assert.Equal(t, RestartDirective, strategy.Directive(failureReason))
		assert.Equal(t, RestartDirective, strategy.Directive(actor.KilledReason()))
		assert.Equal(t, RestartDirective, strategy.Directive(actor.NormalReason()))
	})
	t.Run("With restart modes", func(t *testing.T) {
		transient := NewStrategy(WithRestartMode(Transient))
		assert.Equal(t, StopDirective, transient.Directive(actor.NormalReason()))
		assert.Equal(t, RestartDirective, transient.Directive(failureReason))

		temporary := NewStrategy(WithRestartMode(Temporary))
		assert.Equal(t, StopDirective, temporary.Directive(actor.NormalReason()))
		assert.Equal(t, StopDirective, temporary.Directive(panicReason))
		assert.Equal(t, "Temporary", temporary.Mode().String())
	})
	t.Run("With error directives", func(t *testing.T) {
		strategy := NewStrategy(
			WithDirective(new(timeoutError), EscalateDirective),
			WithDirective(new(gerrors.PanicError), StopDirective))
		assert.Equal(t, EscalateDirective, strategy.Directive(failureReason))
		assert.Equal(t, StopDirective, strategy.Directive(panicReason))
		assert.Equal(t, RestartDirective, strategy.Directive(actor.FailureReason(errors.New("other"))))
	})
	t.Run("With any error directive", func(t *testing.T) {
		strategy := NewStrategy(
			WithDirective(new(timeoutError), RestartDirective),
			WithAnyErrorDirective(EscalateDirective))
		assert.Equal(t, EscalateDirective, strategy.Directive(failureReason))
		assert.Equal(t, EscalateDirective, strategy.Directive(panicReason))
		// normal stops are governed by the mode only
		assert.Equal(t, RestartDirective, strategy.Directive(actor.NormalReason()))
	})
	t.Run("With retry bounds", func(t *testing.T) {
		strategy := NewStrategy(WithRetry(0, 20*time.Millisecond, 10*time.Millisecond))
		assert.Equal(t, 1, strategy.MaxAttempts())
		minBackoff, maxBackoff := strategy.Backoff()
		assert.Equal(t, 20*time.Millisecond, minBackoff)
		assert.Equal(t, 20*time.Millisecond, maxBackoff)
	})
	t.Run("With directive names", func(t *testing.T) {
		assert.Equal(t, "Restart", RestartDirective.String())
		assert.Equal(t, "Stop", StopDirective.String())
		assert.Equal(t, "Escalate", EscalateDirective.String())
	})
}

func TestSupervisor(t *testing.T) {
	ctx := context.Background()

	t.Run("With Supervise and queries", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)
		assert.Equal(t, "sup", sup.Name())

		x, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		y, err := sup.Supervise(ctx, "y", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		assert.Equal(t, "sup/x", x.Name())

		pid, err := sup.Actor(ctx, "x")
		require.NoError(t, err)
		assert.True(t, pid.Equals(x))

		pids, err := sup.Actors(ctx)
		require.NoError(t, err)
		require.Len(t, pids, 2)
		assert.True(t, pids[0].Equals(x))
		assert.True(t, pids[1].Equals(y))

		_, err = sup.Actor(ctx, "z")
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
		_, err = sup.RestartCount(ctx, "z")
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With invalid Supervise requests", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)

		_, err = sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		_, err = sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		assert.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)

		_, err = sup.Supervise(ctx, "", countingProducer(atomic.NewInt64(0)), nil)
		assert.ErrorIs(t, err, gerrors.ErrNameRequired)

		_, err = sup.Supervise(ctx, "nil", nil, nil)
		assert.ErrorIs(t, err, gerrors.ErrSpawnFailure)

		_, err = New(ctx, system, "")
		assert.ErrorIs(t, err, gerrors.ErrNameRequired)
	})
	t.Run("With restart after panic", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)

		built := atomic.NewInt64(0)
		old, err := sup.Supervise(ctx, "x", countingProducer(built), nil)
		require.NoError(t, err)

		require.NoError(t, actor.Tell(ctx, old, new(crash)))
		replacement := awaitReplacement(t, sup, "x", old)

		assert.True(t, replacement.IsRunning())
		assert.Equal(t, actor.Stopped, old.State())
		assert.EqualValues(t, 2, built.Load())

		count, err := sup.RestartCount(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
	t.Run("With restart modes on normal stop", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)

		permanent, err := sup.Supervise(ctx, "permanent", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		transient, err := sup.Supervise(ctx, "transient", countingProducer(atomic.NewInt64(0)),
			NewStrategy(WithRestartMode(Transient)))
		require.NoError(t, err)

		require.NoError(t, actor.Tell(ctx, permanent, new(quit)))
		require.NoError(t, actor.Tell(ctx, transient, new(quit)))

		awaitReplacement(t, sup, "permanent", permanent)
		require.Eventually(t, func() bool {
			_, err := sup.Actor(ctx, "transient")
			return errors.Is(err, gerrors.ErrActorNotFound)
		}, 3*time.Second, 10*time.Millisecond)
	})
	t.Run("With temporary actor never restarted", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)

		built := atomic.NewInt64(0)
		pid, err := sup.Supervise(ctx, "x", countingProducer(built), NewStrategy(WithRestartMode(Temporary)))
		require.NoError(t, err)
		require.NoError(t, actor.Tell(ctx, pid, new(crash)))

		require.Eventually(t, func() bool {
			pids, err := sup.Actors(ctx)
			return err == nil && len(pids) == 0
		}, 3*time.Second, 10*time.Millisecond)
		assert.EqualValues(t, 1, built.Load())
	})
	t.Run("With Escalate directive", func(t *testing.T) {
		system := newTestSystem(t)
		parent, escalations := newParent(t, system)
		sup, err := New(ctx, system, "sup", WithParent(parent),
			WithDefaultStrategy(NewStrategy(WithDirective(new(timeoutError), EscalateDirective))))
		require.NoError(t, err)

		pid, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		require.NoError(t, actor.Tell(ctx, pid, &fail{err: new(timeoutError)}))

		escalation := awaitEscalation(t, escalations)
		assert.Equal(t, "sup", escalation.Supervisor)
		assert.Equal(t, "x", escalation.Name)
		assert.Equal(t, actor.ReasonFailure, escalation.Reason.Kind)
		var timeout *timeoutError
		assert.ErrorAs(t, escalation.Reason.Err, &timeout)

		_, err = sup.Actor(ctx, "x")
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With Stop directive", func(t *testing.T) {
		system := newTestSystem(t)
		parent, escalations := newParent(t, system)
		sup, err := New(ctx, system, "sup", WithParent(parent))
		require.NoError(t, err)

		pid, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)),
			NewStrategy(WithDirective(new(gerrors.PanicError), StopDirective)))
		require.NoError(t, err)
		require.NoError(t, actor.Tell(ctx, pid, new(crash)))

		require.Eventually(t, func() bool {
			_, err := sup.Actor(ctx, "x")
			return errors.Is(err, gerrors.ErrActorNotFound)
		}, 3*time.Second, 10*time.Millisecond)

		select {
		case <-escalations:
			t.Fatal("unexpected escalation")
		case <-time.After(100 * time.Millisecond):
		}
	})
	t.Run("With restart intensity exceeded", func(t *testing.T) {
		system := newTestSystem(t)
		parent, escalations := newParent(t, system)
		sup, err := New(ctx, system, "sup", WithParent(parent),
			WithDefaultStrategy(NewStrategy(WithMaxRestarts(2, time.Minute))))
		require.NoError(t, err)

		pid, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)

		for range 2 {
			require.NoError(t, actor.Tell(ctx, pid, new(crash)))
			pid = awaitReplacement(t, sup, "x", pid)
		}
		require.NoError(t, actor.Tell(ctx, pid, new(crash)))

		escalation := awaitEscalation(t, escalations)
		assert.Equal(t, "x", escalation.Name)
		assert.ErrorIs(t, escalation.Reason.Err, gerrors.ErrRestartIntensityExceeded)
	})
	t.Run("With failure swallowed without parent", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup",
			WithDefaultStrategy(NewStrategy(WithAnyErrorDirective(EscalateDirective))))
		require.NoError(t, err)

		pid, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		require.NoError(t, actor.Tell(ctx, pid, new(crash)))

		require.Eventually(t, func() bool {
			_, err := sup.Actor(ctx, "x")
			return errors.Is(err, gerrors.ErrActorNotFound)
		}, 3*time.Second, 10*time.Millisecond)
		assert.True(t, sup.PID().IsRunning())
	})
	t.Run("With spawn retry", func(t *testing.T) {
		system := newTestSystem(t)
		sup, err := New(ctx, system, "sup")
		require.NoError(t, err)

		failures := atomic.NewInt64(2)
		producer := func() actor.Actor { return flakyWorker{failures: failures} }

		pid, err := sup.Supervise(ctx, "x", producer,
			NewStrategy(WithRetry(3, 10*time.Millisecond, 20*time.Millisecond)))
		require.NoError(t, err)
		assert.True(t, pid.IsRunning())

		_, err = sup.Supervise(ctx, "y", func() actor.Actor { return flakyWorker{failures: atomic.NewInt64(5)} },
			NewStrategy(WithRetry(2, time.Millisecond, time.Millisecond)))
		assert.ErrorIs(t, err, gerrors.ErrSpawnFailure)
	})
	t.Run("With respawn failure escalated", func(t *testing.T) {
		system := newTestSystem(t)
		parent, escalations := newParent(t, system)
		sup, err := New(ctx, system, "sup", WithParent(parent))
		require.NoError(t, err)

		failures := atomic.NewInt64(0)
		pid, err := sup.Supervise(ctx, "x", func() actor.Actor { return flakyWorker{failures: failures} }, nil)
		require.NoError(t, err)

		// the next incarnation cannot start
		failures.Store(10)
		require.NoError(t, actor.Tell(ctx, pid, new(crash)))

		escalation := awaitEscalation(t, escalations)
		assert.ErrorIs(t, escalation.Reason.Err, gerrors.ErrSpawnFailure)
	})
	t.Run("With lifecycle manager", func(t *testing.T) {
		system := newTestSystem(t)
		manager, err := lifecycle.New(ctx, system, time.Second)
		require.NoError(t, err)
		subscriber, err := manager.Subscribe(ctx)
		require.NoError(t, err)

		sup, err := New(ctx, system, "sup", WithLifecycleManager(manager))
		require.NoError(t, err)

		old, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		_, err = manager.MonitoredActor(ctx, old.ID())
		require.NoError(t, err)

		require.NoError(t, actor.Tell(ctx, old, new(crash)))
		replacement := awaitReplacement(t, sup, "x", old)

		var events []lifecycle.Event
		require.Eventually(t, func() bool {
			select {
			case event := <-subscriber.Events():
				events = append(events, event)
			default:
			}
			return len(events) == 3
		}, 3*time.Second, time.Millisecond)

		assert.Equal(t, lifecycle.Started{ActorID: old.ID()}, events[0])
		// the death notification and the respawn reach the manager independently
		assert.Contains(t, events[1:], lifecycle.Started{ActorID: replacement.ID()})
		assert.Contains(t, events[1:], lifecycle.Event(lifecycle.Stopped{
			ActorID: old.ID(),
			Reason:  old.StopReason(),
		}))
	})
	t.Run("With unhealthy incarnation replaced", func(t *testing.T) {
		system := newTestSystem(t)
		var mu sync.Mutex
		sick := ""
		probe := lifecycle.ProbeFunc(func(_ context.Context, pid *actor.PID) actor.HealthStatus {
			mu.Lock()
			defer mu.Unlock()
			if pid.ID() == sick {
				return actor.Unhealthy
			}
			return actor.Healthy
		})

		manager, err := lifecycle.New(ctx, system, 20*time.Millisecond,
			lifecycle.WithTickInterval(20*time.Millisecond),
			lifecycle.WithHealthProbe(probe))
		require.NoError(t, err)

		sup, err := New(ctx, system, "sup", WithLifecycleManager(manager))
		require.NoError(t, err)

		old, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)

		mu.Lock()
		sick = old.ID()
		mu.Unlock()

		replacement := awaitReplacement(t, sup, "x", old)
		assert.Equal(t, actor.Stopped, old.State())
		assert.True(t, replacement.IsRunning())
	})
	t.Run("With heartbeat monitor", func(t *testing.T) {
		system := newTestSystem(t)
		monitor, err := heartbeat.New(ctx, system)
		require.NoError(t, err)

		sup, err := New(ctx, system, "sup", WithHeartbeatMonitor(monitor))
		require.NoError(t, err)

		old, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		ids, err := monitor.Registered(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{old.ID()}, ids)

		require.NoError(t, actor.Tell(ctx, old, new(crash)))
		replacement := awaitReplacement(t, sup, "x", old)

		// every incarnation is registered
		require.Eventually(t, func() bool {
			ids, err := monitor.Registered(ctx)
			return err == nil && len(ids) == 1 && ids[0] == replacement.ID()
		}, 3*time.Second, 10*time.Millisecond)
	})
	t.Run("With Stop", func(t *testing.T) {
		system := newTestSystem(t)
		manager, err := lifecycle.New(ctx, system, time.Second)
		require.NoError(t, err)
		sup, err := New(ctx, system, "sup", WithLifecycleManager(manager))
		require.NoError(t, err)

		x, err := sup.Supervise(ctx, "x", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)
		y, err := sup.Supervise(ctx, "y", countingProducer(atomic.NewInt64(0)), nil)
		require.NoError(t, err)

		require.NoError(t, sup.Stop(ctx))
		assert.Equal(t, actor.Stopped, x.State())
		assert.Equal(t, actor.Stopped, y.State())
		assert.Equal(t, actor.Stopped, sup.PID().State())

		actors, err := manager.MonitoredActors(ctx)
		require.NoError(t, err)
		assert.Empty(t, actors)

		// stopping twice is a no-op
		require.NoError(t, sup.Stop(ctx))
	})
}
