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
	"time"
	"weak"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/eventstream"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/telemetry"
)

// record is the per-actor bookkeeping owned by the manager actor
type record struct {
	pid           weak.Pointer[actor.PID]
	name          string
	status        actor.HealthStatus
	lastCheck     time.Time
	checkInterval time.Duration
	probing       bool
}

// managerActor owns the monitored actors. Its state is only mutated
// from its own message handlers.
type managerActor struct {
	system              *actor.System
	logger              log.Logger
	healthCheckInterval time.Duration
	probe               HealthProbe
	probeTimeout        time.Duration
	stopTimeout         time.Duration

	monitored map[string]*record
	events    *eventstream.Stream[Event]

	metrics *telemetry.Metrics
	// count mirrors len(monitored) for the metric collector
	count *atomic.Int64
}

var _ actor.Actor = (*managerActor)(nil)

func (x *managerActor) PreStart(context.Context) error {
	x.monitored = make(map[string]*record)
	return nil
}

func (x *managerActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *subscribe:
		ctx.Response(&subscribed{subscriber: x.events.AddSubscriber()})
	case *monitor:
		if err := x.monitor(ctx, msg.pid, msg.checkInterval); err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(new(ack))
	case *startActor:
		x.handleStartActor(ctx, msg)
	case *stopActor:
		if err := x.stopActor(ctx.Context(), ctx.Self(), msg.actorID, msg.timeout); err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(new(ack))
	case *getMonitoredActor:
		rec, ok := x.monitored[msg.actorID]
		if !ok {
			ctx.Response(gerrors.NewErrActorNotFound(msg.actorID))
			return
		}
		ctx.Response(snapshot(msg.actorID, rec))
	case *getMonitoredActors:
		snapshots := make([]*MonitoredActor, 0, len(x.monitored))
		for id, rec := range x.monitored {
			snapshots = append(snapshots, snapshot(id, rec))
		}
		ctx.Response(snapshots)
	case *checkHealth:
		x.checkHealth(ctx)
	case *healthReport:
		x.handleHealthReport(ctx.Context(), msg)
	case *actor.Terminated:
		x.handleTerminated(ctx.Context(), msg)
	case *shutdown:
		x.shutdown(ctx.Self())
		ctx.Response(new(ack))
		ctx.Stop()
	default:
		x.logger.Warnf("lifecycle manager received an unhandled message %T", msg)
	}
}

func (x *managerActor) PostStop(context.Context) error {
	x.events.Close()
	return nil
}

// monitor links the manager to the actor and starts tracking its health
func (x *managerActor) monitor(ctx *actor.ReceiveContext, pid *actor.PID, checkInterval time.Duration) error {
	if checkInterval <= 0 {
		checkInterval = x.healthCheckInterval
	}

	if err := ctx.Self().Watch(pid); err != nil {
		return err
	}

	if rec, ok := x.monitored[pid.ID()]; ok {
		rec.checkInterval = checkInterval
		return nil
	}

	x.monitored[pid.ID()] = &record{
		pid:           weak.Make(pid),
		name:          pid.Name(),
		status:        actor.Healthy,
		lastCheck:     time.Now(),
		checkInterval: checkInterval,
	}
	x.count.Store(int64(len(x.monitored)))
	x.logger.Debugf("Actor %s (%s) is now monitored", pid.Name(), pid.ID())
	return nil
}

func (x *managerActor) handleStartActor(ctx *actor.ReceiveContext, msg *startActor) {
	pid, err := x.system.Spawn(ctx.Context(), msg.name, msg.actor)
	if err != nil {
		ctx.Response(err)
		return
	}

	if err := x.monitor(ctx, pid, msg.checkInterval); err != nil {
		// never hand out a reference that is not monitored
		killCtx, cancel := context.WithTimeout(ctx.Context(), x.stopTimeout)
		defer cancel()
		if kerr := pid.Kill(killCtx); kerr != nil {
			x.logger.Warnf("failed to kill unmonitored actor %s: %v", pid.Name(), kerr)
		}
		ctx.Response(err)
		return
	}

	x.publish(ctx.Context(), Started{ActorID: pid.ID()})
	ctx.Response(&actorStarted{pid: pid})
}

func (x *managerActor) stopActor(ctx context.Context, self *actor.PID, actorID string, timeout time.Duration) error {
	rec, ok := x.monitored[actorID]
	if !ok {
		return gerrors.NewErrActorNotFound(actorID)
	}

	if timeout <= 0 {
		timeout = x.stopTimeout
	}

	x.publish(ctx, Stopping{ActorID: actorID})

	if pid := rec.pid.Value(); pid != nil {
		self.UnWatch(pid)
		killCtx, cancel := context.WithTimeout(ctx, timeout)
		if err := pid.Kill(killCtx); err != nil {
			// the mailbox is closed; the actor stops once its current message completes
			x.logger.Warnf("Actor %s did not stop within %s: %v", rec.name, timeout, err)
		}
		cancel()
	}

	x.remove(actorID)
	x.publish(ctx, Stopped{ActorID: actorID, Reason: actor.NormalReason()})
	return nil
}

// handleTerminated removes a dead actor. An id already removed is a no-op.
func (x *managerActor) handleTerminated(ctx context.Context, msg *actor.Terminated) {
	if _, ok := x.monitored[msg.ActorID]; !ok {
		return
	}
	x.remove(msg.ActorID)
	x.publish(ctx, Stopped{ActorID: msg.ActorID, Reason: msg.Reason})
}

// checkHealth probes the actors due for a health check.
// Probing happens off the manager's loop; the outcome comes back as a healthReport.
func (x *managerActor) checkHealth(ctx *actor.ReceiveContext) {
	now := time.Now()
	due := make(map[string]*actor.PID)
	for id, rec := range x.monitored {
		if rec.probing || now.Sub(rec.lastCheck) < rec.checkInterval {
			continue
		}

		pid := rec.pid.Value()
		if pid == nil {
			continue
		}

		rec.lastCheck = now
		rec.probing = true
		due[id] = pid
	}

	if len(due) == 0 {
		return
	}

	self := ctx.Self()
	go func() {
		probeCtx, cancel := context.WithTimeout(context.Background(), x.probeTimeout)
		defer cancel()

		results := make(chan probeResult, len(due))
		eg, egCtx := errgroup.WithContext(probeCtx)
		for id, pid := range due {
			eg.Go(func() error {
				results <- probeResult{actorID: id, status: x.probe.Probe(egCtx, pid)}
				return nil
			})
		}
		_ = eg.Wait()
		close(results)

		report := &healthReport{results: make(map[string]actor.HealthStatus, len(due))}
		for result := range results {
			report.results[result.actorID] = result.status
		}

		if err := actor.Tell(context.Background(), self, report); err != nil {
			x.logger.Debugf("lifecycle manager is gone, dropping health report: %v", err)
		}
	}()
}

func (x *managerActor) handleHealthReport(ctx context.Context, report *healthReport) {
	for id, status := range report.results {
		rec, ok := x.monitored[id]
		if !ok {
			// stopped while being probed
			continue
		}

		rec.probing = false
		if rec.status == status {
			continue
		}

		x.logger.Infof("Actor %s health changed from %s to %s", rec.name, rec.status, status)
		rec.status = status
		x.publish(ctx, HealthChanged{ActorID: id, Status: status})
	}
}

func (x *managerActor) shutdown(self *actor.PID) {
	for id, rec := range x.monitored {
		if pid := rec.pid.Value(); pid != nil {
			self.UnWatch(pid)
		}
		delete(x.monitored, id)
	}
	x.count.Store(0)
	x.events.Close()
}

func (x *managerActor) remove(actorID string) {
	delete(x.monitored, actorID)
	x.count.Store(int64(len(x.monitored)))
}

// publish fans the event out to every subscriber
func (x *managerActor) publish(ctx context.Context, event Event) {
	x.events.Publish(event)
	if x.metrics != nil {
		x.metrics.LifecycleEvents.Add(ctx, 1, metric.WithAttributes(eventKindAttribute(event)))
	}
}

func snapshot(id string, rec *record) *MonitoredActor {
	return &MonitoredActor{
		ActorID:       id,
		Name:          rec.name,
		PID:           rec.pid.Value(),
		Status:        rec.status,
		LastCheck:     rec.lastCheck,
		CheckInterval: rec.checkInterval,
	}
}
