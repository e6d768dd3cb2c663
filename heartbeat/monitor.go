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

// Package heartbeat sends periodic heartbeats to registered actors and turns
// the missed ones into a health status. A Monitor can be wired into a
// lifecycle manager as its health probe.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
)

// Monitor is the handle of a heartbeat monitor actor
type Monitor struct {
	name        string
	system      *actor.System
	pid         *actor.PID
	interval    time.Duration
	maxMissed   int
	askTimeout  time.Duration
	scheduleKey string
}

// New creates and starts a heartbeat monitor
func New(ctx context.Context, system *actor.System, opts ...Option) (*Monitor, error) {
	monitor := &Monitor{
		name:       DefaultName,
		system:     system,
		interval:   DefaultInterval,
		maxMissed:  DefaultMaxMissed,
		askTimeout: system.AskTimeout(),
	}

	for _, opt := range opts {
		opt.Apply(monitor)
	}

	if monitor.interval <= 0 {
		return nil, gerrors.ErrInvalidInterval
	}
	if monitor.askTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	if monitor.maxMissed <= 0 {
		return nil, fmt.Errorf("invalid max missed heartbeats: %d", monitor.maxMissed)
	}

	pid, err := system.Spawn(ctx, monitor.name, &monitorActor{
		logger:    system.Logger().With("component", "heartbeat"),
		maxMissed: monitor.maxMissed,
	})
	if err != nil {
		return nil, err
	}
	monitor.pid = pid

	key, err := system.Schedule(new(pulse), pid, monitor.interval)
	if err != nil {
		_ = pid.Kill(ctx)
		return nil, fmt.Errorf("failed to schedule the heartbeat pulse: %w", err)
	}
	monitor.scheduleKey = key
	return monitor, nil
}

// PID returns the monitor actor
func (m *Monitor) PID() *actor.PID {
	return m.pid
}

// Register starts sending heartbeats to the given actor. Registering the same
// actor twice is a no-op. The actor is unregistered automatically when it stops.
func (m *Monitor) Register(ctx context.Context, pid *actor.PID) error {
	_, err := m.ask(ctx, &register{pid: pid})
	return err
}

// Unregister stops sending heartbeats to the given actor
func (m *Monitor) Unregister(ctx context.Context, actorID string) error {
	_, err := m.ask(ctx, &unregister{actorID: actorID})
	return err
}

// Status returns the health derived from the heartbeats of the given actor and
// the number of consecutive heartbeats it missed.
// It returns ErrActorNotFound when the actor is not registered.
func (m *Monitor) Status(ctx context.Context, actorID string) (actor.HealthStatus, int, error) {
	reply, err := m.ask(ctx, &getStatus{actorID: actorID})
	if err != nil {
		return actor.Unhealthy, 0, err
	}

	result := reply.(*status)
	if !result.registered {
		return actor.Unhealthy, 0, gerrors.NewErrActorNotFound(actorID)
	}
	return result.status, result.missed, nil
}

// Registered returns the ids of the registered actors
func (m *Monitor) Registered(ctx context.Context) ([]string, error) {
	reply, err := m.ask(ctx, new(getRegistered))
	if err != nil {
		return nil, err
	}
	return reply.([]string), nil
}

// Probe returns the heartbeat health of the given actor.
// Actors that are not registered are assumed Healthy and so is every actor
// when the monitor cannot be reached.
func (m *Monitor) Probe(ctx context.Context, pid *actor.PID) actor.HealthStatus {
	reply, err := m.ask(ctx, &getStatus{actorID: pid.ID()})
	if err != nil {
		m.system.Logger().Warnf("heartbeat monitor unreachable while probing %s: %v", pid.Name(), err)
		return actor.Healthy
	}
	return reply.(*status).status
}

// Stop stops the heartbeats and the monitor actor
func (m *Monitor) Stop(ctx context.Context) error {
	if err := m.system.CancelSchedule(m.scheduleKey); err != nil {
		m.system.Logger().Warnf("failed to cancel the heartbeat pulse: %v", err)
	}
	return m.pid.Shutdown(ctx)
}

func (m *Monitor) ask(ctx context.Context, message any) (any, error) {
	reply, err := actor.Ask(ctx, m.pid, message, m.askTimeout)
	if err != nil {
		return nil, err
	}
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}
