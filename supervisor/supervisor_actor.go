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
	"fmt"
	"slices"
	"time"

	"github.com/flowchartsman/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/eventstream"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/telemetry"
)

// slot owns the successive incarnations of a supervised actor
type slot struct {
	name      string
	producer  actor.Producer
	strategy  *Strategy
	pid       *actor.PID
	restarts  int
	history   []time.Time
	unhealthy bool
}

// allowRestart reports whether one more restart fits in the strategy intensity
func (s *slot) allowRestart(now time.Time) bool {
	limit := s.strategy.MaxRestarts()
	if limit < 0 {
		return true
	}

	window := s.strategy.Window()
	kept := s.history[:0]
	for _, at := range s.history {
		if now.Sub(at) < window {
			kept = append(kept, at)
		}
	}
	s.history = kept
	return len(s.history) < limit
}

type supervisorActor struct {
	name        string
	system      *actor.System
	logger      log.Logger
	parent      *actor.PID
	manager     *lifecycle.Manager
	heartbeat   *heartbeat.Monitor
	strategy    *Strategy
	stopTimeout time.Duration
	subscriber  eventstream.Subscriber[lifecycle.Event]
	metrics     *telemetry.Metrics

	// order keeps the slot names in insertion order
	order []string
	slots map[string]*slot
	// index maps the live incarnation ids to their slot name
	index map[string]string
}

var _ actor.Actor = (*supervisorActor)(nil)

func (x *supervisorActor) PreStart(context.Context) error {
	x.slots = make(map[string]*slot)
	x.index = make(map[string]string)
	return nil
}

func (x *supervisorActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *supervise:
		x.handleSupervise(ctx, msg)
	case *actor.Terminated:
		x.handleTerminated(ctx, msg)
	case *unhealthy:
		x.handleUnhealthy(ctx.Context(), msg)
	case *getActor:
		s, ok := x.slots[msg.name]
		if !ok || s.pid == nil {
			ctx.Response(gerrors.NewErrActorNotFound(msg.name))
			return
		}
		ctx.Response(&supervised{pid: s.pid})
	case *getActors:
		pids := make([]*actor.PID, 0, len(x.order))
		for _, name := range x.order {
			if pid := x.slots[name].pid; pid != nil {
				pids = append(pids, pid)
			}
		}
		ctx.Response(pids)
	case *getRestartCount:
		s, ok := x.slots[msg.name]
		if !ok {
			ctx.Response(gerrors.NewErrActorNotFound(msg.name))
			return
		}
		ctx.Response(&restartCount{count: s.restarts})
	case *stopAll:
		if err := x.stopAll(ctx.Context(), ctx.Self()); err != nil {
			ctx.Response(err)
		} else {
			ctx.Response(new(ack))
		}
		ctx.Stop()
	default:
		x.logger.Warnf("supervisor %s received an unhandled message %T", x.name, msg)
	}
}

func (x *supervisorActor) PostStop(context.Context) error {
	if x.subscriber != nil {
		x.subscriber.Shutdown()
	}
	return nil
}

func (x *supervisorActor) handleSupervise(ctx *actor.ReceiveContext, msg *supervise) {
	if msg.name == "" {
		ctx.Response(gerrors.ErrNameRequired)
		return
	}
	if msg.producer == nil {
		ctx.Response(gerrors.NewSpawnError(msg.name, gerrors.ErrUndefinedActor))
		return
	}
	if _, ok := x.slots[msg.name]; ok {
		ctx.Response(gerrors.NewErrActorAlreadyExists(msg.name))
		return
	}

	strategy := msg.strategy
	if strategy == nil {
		strategy = x.strategy
	}

	s := &slot{name: msg.name, producer: msg.producer, strategy: strategy}
	pid, err := x.spawn(ctx.Context(), ctx.Self(), s)
	if err != nil {
		ctx.Response(err)
		return
	}

	x.slots[s.name] = s
	x.order = append(x.order, s.name)
	ctx.Response(&supervised{pid: pid})
}

// handleTerminated applies the slot strategy to a terminated incarnation
func (x *supervisorActor) handleTerminated(ctx *actor.ReceiveContext, msg *actor.Terminated) {
	name, ok := x.index[msg.ActorID]
	if !ok {
		return
	}
	delete(x.index, msg.ActorID)

	s := x.slots[name]
	s.pid = nil

	reason := msg.Reason
	if s.unhealthy {
		s.unhealthy = false
		reason = actor.FailureReason(gerrors.ErrUnhealthy)
	}

	directive := s.strategy.Directive(reason)
	x.logger.Infof("Supervised actor %s terminated (%s), applying %s", name, reason, directive)

	switch directive {
	case StopDirective:
		x.drop(name)
	case EscalateDirective:
		x.drop(name)
		x.escalate(ctx, name, reason)
	case RestartDirective:
		now := time.Now()
		if !s.allowRestart(now) {
			x.drop(name)
			cause := fmt.Errorf("%w: %d restarts within %s, last termination: %s",
				gerrors.ErrRestartIntensityExceeded, s.strategy.MaxRestarts(), s.strategy.Window(), reason)
			x.escalate(ctx, name, actor.FailureReason(cause))
			return
		}

		if _, err := x.spawn(ctx.Context(), ctx.Self(), s); err != nil {
			x.drop(name)
			x.escalate(ctx, name, actor.FailureReason(err))
			return
		}

		s.history = append(s.history, now)
		s.restarts++
		x.metrics.Restarts.Add(ctx.Context(), 1, metric.WithAttributes(
			attribute.String("supervisor", x.name),
			attribute.String("actor", name)))
	}
}

// handleUnhealthy terminates an Unhealthy incarnation. It restarts per its strategy.
func (x *supervisorActor) handleUnhealthy(ctx context.Context, msg *unhealthy) {
	name, ok := x.index[msg.actorID]
	if !ok {
		return
	}

	s := x.slots[name]
	s.unhealthy = true
	x.logger.Warnf("Supervised actor %s is unhealthy, terminating it", name)

	killCtx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	if err := s.pid.Kill(killCtx); err != nil {
		x.logger.Warnf("Supervised actor %s did not stop within %s: %v", name, x.stopTimeout, err)
	}
}

// spawn starts a new incarnation of the slot, links the supervisor to it and
// registers it for heartbeats
func (x *supervisorActor) spawn(ctx context.Context, self *actor.PID, s *slot) (*actor.PID, error) {
	var pid *actor.PID
	attempt := func(ctx context.Context) error {
		var err error
		pid, err = x.start(ctx, s)
		return err
	}

	var err error
	if s.strategy.MaxAttempts() <= 1 {
		err = attempt(ctx)
	} else {
		minBackoff, maxBackoff := s.strategy.Backoff()
		retrier := retry.NewRetrier(s.strategy.MaxAttempts(), minBackoff, maxBackoff)
		err = retrier.RunContext(ctx, attempt)
	}

	if err != nil {
		x.logger.Errorf("failed to spawn supervised actor %s: %v", s.name, err)
		return nil, err
	}

	if err := self.Watch(pid); err != nil {
		return nil, err
	}

	s.pid = pid
	x.index[pid.ID()] = s.name

	if x.heartbeat != nil {
		if err := x.heartbeat.Register(ctx, pid); err != nil {
			x.logger.Warnf("failed to register %s for heartbeats: %v", s.name, err)
		}
	}
	return pid, nil
}

func (x *supervisorActor) start(ctx context.Context, s *slot) (*actor.PID, error) {
	name := x.actorName(s.name)
	if x.manager != nil {
		return x.manager.StartActor(ctx, name, s.producer())
	}
	return x.system.Spawn(ctx, name, s.producer())
}

func (x *supervisorActor) escalate(ctx *actor.ReceiveContext, name string, reason actor.StopReason) {
	x.metrics.Escalations.Add(ctx.Context(), 1, metric.WithAttributes(attribute.String("supervisor", x.name)))

	if x.parent == nil {
		x.logger.Errorf("Supervisor %s cannot recover %s: %s", x.name, name, reason)
		x.metrics.UnrecoverableFailures.Add(ctx.Context(), 1, metric.WithAttributes(attribute.String("supervisor", x.name)))
		return
	}

	escalation := &Escalation{Supervisor: x.name, Name: name, Reason: reason}
	if err := ctx.Tell(x.parent, escalation); err != nil {
		x.logger.Errorf("Supervisor %s failed to escalate the failure of %s: %v", x.name, name, err)
	}
}

// stopAll stops the supervised actors in reverse insertion order
func (x *supervisorActor) stopAll(ctx context.Context, self *actor.PID) error {
	var err error
	for _, name := range slices.Backward(x.order) {
		s := x.slots[name]
		if s.pid == nil {
			continue
		}

		self.UnWatch(s.pid)
		delete(x.index, s.pid.ID())
		err = multierr.Append(err, x.stopIncarnation(ctx, s.pid))
		s.pid = nil
	}

	x.order = nil
	x.slots = make(map[string]*slot)
	return err
}

func (x *supervisorActor) stopIncarnation(ctx context.Context, pid *actor.PID) error {
	if x.manager != nil {
		err := x.manager.StopActor(ctx, pid.ID(), lifecycle.WithStopTimeout(x.stopTimeout))
		if err == nil || errors.Is(err, gerrors.ErrActorNotFound) {
			return nil
		}
		// the manager is unreachable, the actor is still stopped
		x.logger.Warnf("failed to stop %s through the lifecycle manager: %v", pid.Name(), err)
	}

	killCtx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	return pid.Kill(killCtx)
}

func (x *supervisorActor) drop(name string) {
	delete(x.slots, name)
	x.order = slices.DeleteFunc(x.order, func(existing string) bool {
		return existing == name
	})
}

func (x *supervisorActor) actorName(name string) string {
	return x.name + "/" + name
}
