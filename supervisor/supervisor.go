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

// Package supervisor keeps actors alive: a Supervisor owns one slot per
// supervised actor and replaces a terminated incarnation with a brand-new one
// according to the slot Strategy, escalating what it cannot resolve to its parent.
package supervisor

import (
	"context"
	"time"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/eventstream"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/telemetry"
)

// Supervisor is the handle of a supervisor actor
type Supervisor struct {
	name       string
	system     *actor.System
	pid        *actor.PID
	parent     *actor.PID
	manager    *lifecycle.Manager
	heartbeat  *heartbeat.Monitor
	strategy   *Strategy
	askTimeout time.Duration
}

// New creates and starts a supervisor. The supervised actors are registered
// on the system under the supervisor name followed by their own name.
func New(ctx context.Context, system *actor.System, name string, opts ...Option) (*Supervisor, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	sup := &Supervisor{
		name:       name,
		system:     system,
		strategy:   DefaultStrategy(),
		askTimeout: system.AskTimeout(),
	}

	for _, opt := range opts {
		opt.Apply(sup)
	}

	if sup.askTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	if sup.strategy == nil {
		sup.strategy = DefaultStrategy()
	}

	metrics, err := telemetry.NewMetrics(system.Meter())
	if err != nil {
		return nil, err
	}

	var subscriber eventstream.Subscriber[lifecycle.Event]
	if sup.manager != nil {
		if subscriber, err = sup.manager.Subscribe(ctx); err != nil {
			return nil, err
		}
	}

	handler := &supervisorActor{
		name:        name,
		system:      system,
		logger:      system.Logger().With("supervisor", name),
		parent:      sup.parent,
		manager:     sup.manager,
		heartbeat:   sup.heartbeat,
		strategy:    sup.strategy,
		stopTimeout: system.StopTimeout(),
		subscriber:  subscriber,
		metrics:     metrics,
	}

	pid, err := system.Spawn(ctx, name, handler)
	if err != nil {
		if subscriber != nil {
			subscriber.Shutdown()
		}
		return nil, err
	}
	sup.pid = pid

	if subscriber != nil {
		go forwardUnhealthy(subscriber, pid)
	}
	return sup, nil
}

// Name returns the supervisor name
func (s *Supervisor) Name() string {
	return s.name
}

// PID returns the supervisor actor
func (s *Supervisor) PID() *actor.PID {
	return s.pid
}

// Strategy returns the strategy of the actors supervised without one
func (s *Supervisor) Strategy() *Strategy {
	return s.strategy
}

// Supervise spawns the actor built by producer and keeps it alive according to
// the given strategy, or the supervisor default strategy when nil. Every
// restart calls producer again to build a brand-new instance.
func (s *Supervisor) Supervise(ctx context.Context, name string, producer actor.Producer, strategy *Strategy) (*actor.PID, error) {
	reply, err := s.ask(ctx, &supervise{name: name, producer: producer, strategy: strategy})
	if err != nil {
		return nil, err
	}
	return reply.(*supervised).pid, nil
}

// Actor returns the live incarnation of the given supervised actor
func (s *Supervisor) Actor(ctx context.Context, name string) (*actor.PID, error) {
	reply, err := s.ask(ctx, &getActor{name: name})
	if err != nil {
		return nil, err
	}
	return reply.(*supervised).pid, nil
}

// Actors returns the live incarnations in supervision order
func (s *Supervisor) Actors(ctx context.Context) ([]*actor.PID, error) {
	reply, err := s.ask(ctx, new(getActors))
	if err != nil {
		return nil, err
	}
	return reply.([]*actor.PID), nil
}

// RestartCount returns how many times the given supervised actor has been restarted
func (s *Supervisor) RestartCount(ctx context.Context, name string) (int, error) {
	reply, err := s.ask(ctx, &getRestartCount{name: name})
	if err != nil {
		return 0, err
	}
	return reply.(*restartCount).count, nil
}

// Stop stops every supervised actor then the supervisor itself.
// Supervised actors are not restarted.
func (s *Supervisor) Stop(ctx context.Context) error {
	if !s.pid.IsRunning() {
		return nil
	}

	// stopping many actors can outlast a regular request
	timeout := s.askTimeout + s.system.StopTimeout()
	reply, err := actor.Ask(ctx, s.pid, new(stopAll), timeout)
	if err != nil {
		return err
	}

	select {
	case <-s.pid.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err, ok := reply.(error); ok {
		return err
	}
	return nil
}

func (s *Supervisor) ask(ctx context.Context, message any) (any, error) {
	reply, err := actor.Ask(ctx, s.pid, message, s.askTimeout)
	if err != nil {
		return nil, err
	}
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}

// forwardUnhealthy relays the Unhealthy health changes to the supervisor actor.
// It returns once the subscriber is shut down.
func forwardUnhealthy(subscriber eventstream.Subscriber[lifecycle.Event], pid *actor.PID) {
	for event := range subscriber.Events() {
		changed, ok := event.(lifecycle.HealthChanged)
		if !ok || changed.Status != actor.Unhealthy {
			continue
		}

		if err := actor.Tell(context.Background(), pid, &unhealthy{actorID: changed.ActorID}); err != nil {
			subscriber.Shutdown()
		}
	}
}
