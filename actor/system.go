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

package actor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/internal/xsync"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/telemetry"
)

// System is the actor-spawning substrate: it owns the registry of live actors,
// the message scheduler and the settings shared by the components built on it.
// There is no global system; handles are passed explicitly.
type System struct {
	name        string
	logger      log.Logger
	askTimeout  time.Duration
	stopTimeout time.Duration
	meter       metric.Meter

	actors    *xsync.Map[string, *PID]
	scheduler *scheduler
	stopped   *atomic.Bool
	// cancel releases the scheduler context
	cancel context.CancelFunc
}

// NewSystem creates an actor system and starts its scheduler
func NewSystem(name string, opts ...Option) (*System, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	system := &System{
		name:        name,
		logger:      log.DefaultLogger,
		askTimeout:  DefaultAskTimeout,
		stopTimeout: DefaultStopTimeout,
		meter:       telemetry.New().Meter(),
		actors:      xsync.NewMap[string, *PID](),
		stopped:     atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if system.askTimeout <= 0 || system.stopTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	system.cancel = cancel
	system.scheduler = newScheduler(system.logger, system.stopTimeout)
	system.scheduler.Start(ctx)

	system.logger.Infof("Actor system %s started", name)
	return system, nil
}

// Name returns the actor system name
func (x *System) Name() string {
	return x.name
}

// Logger returns the actor system logger
func (x *System) Logger() log.Logger {
	return x.logger
}

// AskTimeout returns the default ask timeout
func (x *System) AskTimeout() time.Duration {
	return x.askTimeout
}

// StopTimeout returns the time given to an actor to stop
func (x *System) StopTimeout() time.Duration {
	return x.stopTimeout
}

// Meter returns the meter runtime components record their metrics with
func (x *System) Meter() metric.Meter {
	return x.meter
}

// Spawn creates and starts a new actor under the given unique name.
// PreStart runs synchronously; when it fails a SpawnError is returned.
func (x *System) Spawn(ctx context.Context, name string, actor Actor) (*PID, error) {
	if x.stopped.Load() {
		return nil, gerrors.NewSpawnError(name, gerrors.ErrSystemStopped)
	}
	if name == "" {
		return nil, gerrors.NewSpawnError(name, gerrors.ErrNameRequired)
	}
	if actor == nil {
		return nil, gerrors.NewSpawnError(name, gerrors.ErrUndefinedActor)
	}

	pid := newPID(x, name, actor)
	if !x.actors.SetIfAbsent(name, pid) {
		return nil, gerrors.NewSpawnError(name, gerrors.NewErrActorAlreadyExists(name))
	}

	if err := pid.init(ctx); err != nil {
		x.actors.Delete(name)
		return nil, err
	}
	return pid, nil
}

// ActorOf returns the live actor registered under the given name
func (x *System) ActorOf(name string) (*PID, error) {
	pid, ok := x.actors.Get(name)
	if !ok || !pid.IsRunning() {
		return nil, gerrors.NewErrActorNotFound(name)
	}
	return pid, nil
}

// Actors returns the live actors
func (x *System) Actors() []*PID {
	pids := x.actors.Values()
	live := pids[:0]
	for _, pid := range pids {
		if pid.IsRunning() {
			live = append(live, pid)
		}
	}
	return live
}

// Schedule tells the message to the actor at every interval.
// It returns the key to cancel the schedule with.
func (x *System) Schedule(message any, pid *PID, interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", gerrors.ErrInvalidInterval
	}
	return x.scheduler.Schedule(message, pid, interval)
}

// CancelSchedule cancels the schedule with the given key
func (x *System) CancelSchedule(key string) error {
	return x.scheduler.Cancel(key)
}

// Stop kills every live actor and stops the scheduler
func (x *System) Stop(ctx context.Context) error {
	if !x.stopped.CompareAndSwap(false, true) {
		return nil
	}

	x.logger.Infof("Actor system %s is shutting down...", x.name)
	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()

	x.scheduler.Stop(ctx)
	x.cancel()

	var err error
	for _, pid := range x.actors.Values() {
		if e := pid.Kill(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("failed to stop actor %s: %w", pid.Name(), e))
		}
	}

	x.actors.Reset()
	x.logger.Infof("Actor system %s stopped", x.name)
	return err
}

// remove drops the stopped incarnation from the registry
func (x *System) remove(pid *PID) {
	if current, ok := x.actors.Get(pid.Name()); ok && current.Equals(pid) {
		x.actors.Delete(pid.Name())
	}
}
