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
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/internal/queue"
	"github.com/tochemey/sentinel/log"
)

// PID is the location-agnostic handle of a running actor incarnation.
// Every incarnation gets a new PID with a new unique id.
type PID struct {
	id     string
	name   string
	actor  Actor
	system *System
	logger log.Logger

	mailbox *queue.Queue[*envelope]
	state   *atomic.Int32

	// stopLocker guards watchers and the finalization of the actor
	// so that a link is either notified or rejected, never lost.
	stopLocker sync.Mutex
	watchers   mapset.Set[*PID]
	reason     StopReason
	// watchees are the actors this actor is watching
	watchees mapset.Set[*PID]

	startedAt time.Time
	done      chan struct{}
}

func newPID(system *System, name string, actor Actor) *PID {
	id := uuid.NewString()
	return &PID{
		id:       id,
		name:     name,
		actor:    actor,
		system:   system,
		logger:   system.logger.With("actor", name, "actor_id", id),
		mailbox:  queue.New[*envelope](),
		state:    atomic.NewInt32(int32(Initializing)),
		watchers: mapset.NewThreadUnsafeSet[*PID](),
		watchees: mapset.NewSet[*PID](),
		done:     make(chan struct{}),
	}
}

// ID returns the unique identifier of the incarnation
func (pid *PID) ID() string {
	return pid.id
}

// Name returns the actor name
func (pid *PID) Name() string {
	return pid.name
}

// Actor returns the underlying actor
func (pid *PID) Actor() Actor {
	return pid.actor
}

// Equals is a convenient method to compare two PIDs
func (pid *PID) Equals(to *PID) bool {
	if pid == nil || to == nil {
		return pid == to
	}
	return pid.id == to.id
}

// State returns the current lifecycle state
func (pid *PID) State() State {
	return State(pid.state.Load())
}

// IsRunning returns true when the actor is alive ready to process messages
func (pid *PID) IsRunning() bool {
	return pid != nil && pid.State() == Running
}

// Uptime returns the number of seconds since the actor started
func (pid *PID) Uptime() int64 {
	if !pid.IsRunning() {
		return 0
	}
	return int64(time.Since(pid.startedAt).Seconds())
}

// Done returns a channel closed once the actor has stopped and its watchers notified
func (pid *PID) Done() <-chan struct{} {
	return pid.done
}

// StopReason returns why the actor stopped. It is only meaningful once Done is closed.
func (pid *PID) StopReason() StopReason {
	pid.stopLocker.Lock()
	reason := pid.reason
	pid.stopLocker.Unlock()
	return reason
}

// Logger returns the logger sets when creating the PID
func (pid *PID) Logger() log.Logger {
	return pid.logger
}

// System returns the actor system the PID belongs to
func (pid *PID) System() *System {
	return pid.system
}

// Tell sends an asynchronous message to another PID
func (pid *PID) Tell(ctx context.Context, to *PID, message any) error {
	if to == nil {
		return gerrors.NewSendError("", gerrors.ErrDead)
	}
	if !to.enqueue(newEnvelope(ctx, pid, message, false)) {
		return gerrors.NewSendError(to.Name(), gerrors.ErrDead)
	}
	return nil
}

// Ask sends a synchronous message to another actor and expect a response.
// This block until a response is received or timed out.
func (pid *PID) Ask(ctx context.Context, to *PID, message any, timeout time.Duration) (response any, err error) {
	if timeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	if to == nil {
		return nil, gerrors.NewSendError("", gerrors.ErrDead)
	}

	env := newEnvelope(ctx, pid, message, true)
	if !to.enqueue(env) {
		return nil, gerrors.NewSendError(to.Name(), gerrors.ErrDead)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-env.replyTo:
		if result.err != nil {
			return nil, result.err
		}
		return result.message, nil
	case <-ctx.Done():
		return nil, gerrors.NewSendError(to.Name(), multierr.Combine(ctx.Err(), gerrors.ErrRequestTimeout))
	case <-timer.C:
		return nil, gerrors.NewSendError(to.Name(), gerrors.ErrRequestTimeout)
	}
}

// Watch links this actor to the target: when the target stops, for any reason,
// a Terminated message is delivered to this actor.
// It returns a LinkError when the target has already stopped.
func (pid *PID) Watch(target *PID) error {
	if target == nil {
		return gerrors.NewLinkError("", gerrors.ErrDead)
	}

	target.stopLocker.Lock()
	if target.State() == Stopped {
		target.stopLocker.Unlock()
		return gerrors.NewLinkError(target.ID(), gerrors.ErrDead)
	}
	target.watchers.Add(pid)
	target.stopLocker.Unlock()

	pid.watchees.Add(target)
	return nil
}

// UnWatch removes the link to the target. No Terminated message will be
// delivered for the target afterward.
func (pid *PID) UnWatch(target *PID) {
	if target == nil {
		return
	}

	target.stopLocker.Lock()
	target.watchers.Remove(pid)
	target.stopLocker.Unlock()

	pid.watchees.Remove(target)
}

// Kill forcefully terminates the actor: pending messages are discarded and
// pending asks fail. The message being handled, if any, runs to completion.
// Kill blocks until the actor has stopped or the context is done.
func (pid *PID) Kill(ctx context.Context) error {
	if pid.State() == Stopped {
		return nil
	}

	pid.logger.Debugf("Killing Actor %s...", pid.Name())
	pid.state.CompareAndSwap(int32(Running), int32(ShuttingDown))
	pid.discard(pid.mailbox.CloseRemaining())

	select {
	case <-pid.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully stops the actor once the messages already in its
// mailbox have been processed. It blocks until the actor has stopped or the
// context is done.
func (pid *PID) Shutdown(ctx context.Context) error {
	if pid.State() == Stopped {
		pid.logger.Infof("Actor %s is offline. Maybe it has been stopped already", pid.Name())
		return nil
	}

	pid.logger.Infof("Shutdown process has started for Actor (%s)...", pid.Name())
	if !pid.enqueue(newEnvelope(ctx, nil, new(poisonPill), false)) {
		// the mailbox is already closed, the actor is on its way out
		pid.logger.Debugf("Actor %s is already shutting down", pid.Name())
	}

	select {
	case <-pid.done:
		pid.logger.Infof("Actor %s successfully shutdown", pid.Name())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// init runs the PreStart hook and starts processing messages
func (pid *PID) init(ctx context.Context) error {
	pid.logger.Debugf("Initialization process started for Actor %s ...", pid.Name())
	if err := pid.safePreStart(ctx); err != nil {
		pid.logger.Errorf("Failed to initialize Actor %s: %v", pid.Name(), err)
		pid.state.Store(int32(Stopped))
		pid.mailbox.Close()
		close(pid.done)
		return gerrors.NewSpawnError(pid.Name(), err)
	}

	pid.startedAt = time.Now()
	pid.state.Store(int32(Running))
	go pid.process()
	pid.logger.Debugf("Actor %s initialization is successful.", pid.Name())
	return nil
}

func (pid *PID) safePreStart(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()
	return pid.actor.PreStart(ctx)
}

func (pid *PID) enqueue(env *envelope) bool {
	if pid.State() != Running {
		return false
	}
	return pid.mailbox.Push(env)
}

// process extracts every message from the actor mailbox
// and pass it to the actor until the actor stops
func (pid *PID) process() {
	for {
		env, ok := pid.mailbox.Wait()
		if !ok {
			pid.finalize(KilledReason())
			return
		}

		switch msg := env.message.(type) {
		case *poisonPill:
			pid.finalize(NormalReason())
			return
		case *HealthCheck:
			pid.handleHealthCheck(env)
		case *Heartbeat:
			pid.handleHeartbeat(env, msg)
		default:
			if reason, stop := pid.handleReceived(env); stop {
				pid.finalize(reason)
				return
			}
		}
	}
}

// handleReceived passes the message to the actor and reports whether
// the actor must stop
func (pid *PID) handleReceived(env *envelope) (reason StopReason, stop bool) {
	receiveCtx := newReceiveContext(pid, env)
	defer func() {
		if r := recover(); r != nil {
			err := toPanicError(r)
			pid.logger.Errorf("Actor %s panicked: %v", pid.Name(), err)
			env.respond(nil, err)
			reason, stop = PanicReason(err), true
		}
	}()

	pid.actor.Receive(receiveCtx)

	switch {
	case receiveCtx.err != nil:
		env.respond(nil, receiveCtx.err)
		return FailureReason(receiveCtx.err), true
	case receiveCtx.stop:
		return NormalReason(), true
	default:
		return StopReason{}, false
	}
}

func (pid *PID) handleHealthCheck(env *envelope) {
	status := Healthy
	if reporter, ok := pid.actor.(HealthReporter); ok {
		status = pid.safeHealth(env.ctx, reporter)
	}
	env.respond(&HealthCheckResponse{Status: status}, nil)
}

func (pid *PID) safeHealth(ctx context.Context, reporter HealthReporter) (status HealthStatus) {
	defer func() {
		if r := recover(); r != nil {
			pid.logger.Warnf("Actor %s health reporter panicked: %v", pid.Name(), r)
			status = Unhealthy
		}
	}()
	return reporter.Health(ctx)
}

func (pid *PID) handleHeartbeat(env *envelope, heartbeat *Heartbeat) {
	ack := &HeartbeatAck{ActorID: pid.ID(), Seq: heartbeat.Seq}
	if env.replyTo != nil {
		env.respond(ack, nil)
		return
	}
	if env.sender != nil {
		// the sender may be gone already
		_ = pid.Tell(env.ctx, env.sender, ack)
	}
}

// finalize runs the PostStop hook and lets the watchers know the actor is terminated
func (pid *PID) finalize(reason StopReason) {
	pid.state.Store(int32(ShuttingDown))
	pid.discard(pid.mailbox.CloseRemaining())

	ctx, cancel := context.WithTimeout(context.Background(), pid.system.stopTimeout)
	defer cancel()

	if err := pid.safePostStop(ctx); err != nil {
		pid.logger.Errorf("Actor %s PostStop failed: %v", pid.Name(), err)
	}

	pid.stopLocker.Lock()
	pid.reason = reason
	pid.state.Store(int32(Stopped))
	watchers := pid.watchers.ToSlice()
	pid.watchers.Clear()
	pid.stopLocker.Unlock()

	pid.system.remove(pid)
	pid.freeWatchees()
	pid.freeWatchers(ctx, watchers, reason)

	pid.logger.Infof("Actor %s stopped: %s", pid.Name(), reason)
	close(pid.done)
}

func (pid *PID) safePostStop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()
	return pid.actor.PostStop(ctx)
}

// freeWatchers sends the Terminated message to all the actors watching this actor
func (pid *PID) freeWatchers(ctx context.Context, watchers []*PID, reason StopReason) {
	if len(watchers) == 0 {
		pid.logger.Debugf("Actor %s does not have any watchers. Maybe already freed.", pid.Name())
		return
	}

	for _, watcher := range watchers {
		terminated := &Terminated{
			ActorID: pid.ID(),
			Name:    pid.Name(),
			Reason:  reason,
		}
		if err := pid.Tell(ctx, watcher, terminated); err != nil {
			pid.logger.Debugf("Watcher %s of Actor %s is gone", watcher.Name(), pid.Name())
		}
	}
}

// freeWatchees releases all actors that have been watched by this actor
func (pid *PID) freeWatchees() {
	for _, watched := range pid.watchees.ToSlice() {
		pid.UnWatch(watched)
	}
}

// discard fails the pending asks of a closed mailbox
func (pid *PID) discard(pending []*envelope) {
	for _, env := range pending {
		env.respond(nil, gerrors.NewSendError(pid.Name(), gerrors.ErrDead))
	}
}

// toPanicError turns a recovered value into a PanicError enriched with the panic location
func toPanicError(r any) error {
	var pe *gerrors.PanicError
	if err, ok := r.(error); ok && errors.As(err, &pe) {
		return pe
	}

	pc, fn, line, _ := runtime.Caller(3)
	if err, ok := r.(error); ok {
		return gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", err, runtime.FuncForPC(pc).Name(), fn, line))
	}
	return gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
}
