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

package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/eventstream"
	"github.com/tochemey/sentinel/telemetry"
)

// MonitoredActor is a point-in-time view of an actor tracked by a Manager
type MonitoredActor struct {
	ActorID string
	Name    string
	// PID is nil once the actor reference has been reclaimed
	PID           *actor.PID
	Status        actor.HealthStatus
	LastCheck     time.Time
	CheckInterval time.Duration
}

// Manager tracks the presence and health of the actors registered with it
// and broadcasts their lifecycle events.
//
// The manager is itself an actor: every operation is a request to it and
// its registry is only mutated from its own message handlers.
type Manager struct {
	name         string
	system       *actor.System
	pid          *actor.PID
	tickInterval time.Duration
	probe        HealthProbe
	probeTimeout time.Duration
	askTimeout   time.Duration
	scheduleKey  string
	registration metric.Registration
}

// New creates and starts a lifecycle manager. healthCheckInterval is the
// default per-actor check interval. The health-check tick fires every second
// unless WithTickInterval is given.
func New(ctx context.Context, system *actor.System, healthCheckInterval time.Duration, opts ...Option) (*Manager, error) {
	if healthCheckInterval <= 0 {
		return nil, gerrors.ErrInvalidInterval
	}

	manager := &Manager{
		name:         DefaultName,
		system:       system,
		tickInterval: DefaultTickInterval,
		probe:        AssumeHealthy{},
		probeTimeout: DefaultProbeTimeout,
		askTimeout:   system.AskTimeout(),
	}

	for _, opt := range opts {
		opt.Apply(manager)
	}

	if manager.tickInterval <= 0 {
		return nil, gerrors.ErrInvalidInterval
	}
	if manager.probeTimeout <= 0 || manager.askTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	metrics, err := telemetry.NewMetrics(system.Meter())
	if err != nil {
		return nil, err
	}

	count := atomic.NewInt64(0)
	handler := &managerActor{
		system:              system,
		logger:              system.Logger().With("component", "lifecycle"),
		healthCheckInterval: healthCheckInterval,
		probe:               manager.probe,
		probeTimeout:        manager.probeTimeout,
		stopTimeout:         system.StopTimeout(),
		events:              eventstream.New[Event](),
		metrics:             metrics,
		count:               count,
	}

	pid, err := system.Spawn(ctx, manager.name, handler)
	if err != nil {
		return nil, err
	}
	manager.pid = pid

	key, err := system.Schedule(new(checkHealth), pid, manager.tickInterval)
	if err != nil {
		_ = pid.Kill(ctx)
		return nil, fmt.Errorf("failed to schedule the health-check tick: %w", err)
	}
	manager.scheduleKey = key

	manager.registration, err = telemetry.MonitoredActorsGauge(system.Meter(), count.Load)
	if err != nil {
		_ = system.CancelSchedule(key)
		_ = pid.Kill(ctx)
		return nil, err
	}

	return manager, nil
}

// PID returns the manager actor
func (m *Manager) PID() *actor.PID {
	return m.pid
}

// Subscribe returns a new independent subscriber receiving every event
// published after this call returns.
func (m *Manager) Subscribe(ctx context.Context) (eventstream.Subscriber[Event], error) {
	reply, err := m.ask(ctx, new(subscribe))
	if err != nil {
		return nil, err
	}
	return reply.(*subscribed).subscriber, nil
}

// Monitor begins tracking the given actor. The manager is linked to it so that
// its death is notified. It fails only when the link cannot be established.
func (m *Manager) Monitor(ctx context.Context, pid *actor.PID, opts ...MonitorOption) error {
	config := newMonitorConfig(opts...)
	_, err := m.ask(ctx, &monitor{pid: pid, checkInterval: config.checkInterval})
	return err
}

// StartActor spawns the actor, monitors it, publishes Started and returns
// the live reference. A returned reference is always monitored.
func (m *Manager) StartActor(ctx context.Context, name string, instance actor.Actor, opts ...MonitorOption) (*actor.PID, error) {
	config := newMonitorConfig(opts...)
	reply, err := m.ask(ctx, &startActor{name: name, actor: instance, checkInterval: config.checkInterval})
	if err != nil {
		return nil, err
	}
	return reply.(*actorStarted).pid, nil
}

// StopActor publishes Stopping, forcibly terminates the actor, stops monitoring
// it and publishes Stopped. It returns ErrActorNotFound when the actor is not monitored.
func (m *Manager) StopActor(ctx context.Context, actorID string, opts ...StopOption) error {
	config := new(stopConfig)
	for _, opt := range opts {
		opt(config)
	}

	timeout := m.askTimeout
	if config.timeout > 0 {
		// the request must outlive the forced termination
		timeout += config.timeout
	} else {
		timeout += m.system.StopTimeout()
	}

	_, err := m.askWithTimeout(ctx, &stopActor{actorID: actorID, timeout: config.timeout}, timeout)
	return err
}

// MonitoredActor returns the view of a monitored actor
func (m *Manager) MonitoredActor(ctx context.Context, actorID string) (*MonitoredActor, error) {
	reply, err := m.ask(ctx, &getMonitoredActor{actorID: actorID})
	if err != nil {
		return nil, err
	}
	return reply.(*MonitoredActor), nil
}

// MonitoredActors returns the view of every monitored actor
func (m *Manager) MonitoredActors(ctx context.Context) ([]*MonitoredActor, error) {
	reply, err := m.ask(ctx, new(getMonitoredActors))
	if err != nil {
		return nil, err
	}
	return reply.([]*MonitoredActor), nil
}

// Stop stops the health-check tick, shuts every subscriber down and stops
// the manager. Monitored actors keep running.
func (m *Manager) Stop(ctx context.Context) error {
	if err := m.system.CancelSchedule(m.scheduleKey); err != nil {
		m.system.Logger().Warnf("failed to cancel the health-check tick: %v", err)
	}

	if m.registration != nil {
		_ = m.registration.Unregister()
	}

	if _, err := m.ask(ctx, new(shutdown)); err != nil {
		return err
	}

	select {
	case <-m.pid.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) ask(ctx context.Context, message any) (any, error) {
	return m.askWithTimeout(ctx, message, m.askTimeout)
}

func (m *Manager) askWithTimeout(ctx context.Context, message any, timeout time.Duration) (any, error) {
	reply, err := actor.Ask(ctx, m.pid, message, timeout)
	if err != nil {
		return nil, err
	}
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}

func newMonitorConfig(opts ...MonitorOption) *monitorConfig {
	config := new(monitorConfig)
	for _, opt := range opts {
		opt(config)
	}
	return config
}

func eventKindAttribute(event Event) attribute.KeyValue {
	return attribute.String("event", event.Kind())
}
