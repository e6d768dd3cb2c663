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

package heartbeat

import (
	"context"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/log"
)

// beat tracks the heartbeats sent to a registered actor
type beat struct {
	pid    *actor.PID
	sent   uint64
	acked  uint64
	missed int
}

type monitorActor struct {
	logger    log.Logger
	maxMissed int
	beats     map[string]*beat
}

var _ actor.Actor = (*monitorActor)(nil)

func (x *monitorActor) PreStart(context.Context) error {
	x.beats = make(map[string]*beat)
	return nil
}

func (x *monitorActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *register:
		if err := x.register(ctx.Self(), msg.pid); err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(new(ack))
	case *unregister:
		x.unregister(ctx.Self(), msg.actorID)
		ctx.Response(new(ack))
	case *getStatus:
		b, ok := x.beats[msg.actorID]
		if !ok {
			ctx.Response(&status{status: actor.Healthy})
			return
		}
		ctx.Response(&status{registered: true, status: x.health(b), missed: b.missed})
	case *getRegistered:
		ids := make([]string, 0, len(x.beats))
		for id := range x.beats {
			ids = append(ids, id)
		}
		ctx.Response(ids)
	case *pulse:
		x.pulse(ctx)
	case *actor.HeartbeatAck:
		x.handleAck(msg)
	case *actor.Terminated:
		if _, ok := x.beats[msg.ActorID]; ok {
			delete(x.beats, msg.ActorID)
			x.logger.Debugf("Actor %s is gone, heartbeats stopped", msg.Name)
		}
	default:
		x.logger.Warnf("heartbeat monitor received an unhandled message %T", msg)
	}
}

func (x *monitorActor) PostStop(context.Context) error {
	return nil
}

func (x *monitorActor) register(self, pid *actor.PID) error {
	if pid == nil {
		return gerrors.ErrUndefinedActor
	}

	if _, ok := x.beats[pid.ID()]; ok {
		return nil
	}

	if err := self.Watch(pid); err != nil {
		return err
	}

	x.beats[pid.ID()] = &beat{pid: pid}
	x.logger.Debugf("Actor %s (%s) registered for heartbeats", pid.Name(), pid.ID())
	return nil
}

func (x *monitorActor) unregister(self *actor.PID, actorID string) {
	b, ok := x.beats[actorID]
	if !ok {
		return
	}
	self.UnWatch(b.pid)
	delete(x.beats, actorID)
}

// pulse accounts for the heartbeat left unanswered since the previous pulse
// and sends the next one
func (x *monitorActor) pulse(ctx *actor.ReceiveContext) {
	for id, b := range x.beats {
		if b.acked < b.sent {
			b.missed++
			if b.missed == x.maxMissed {
				x.logger.Warnf("Actor %s missed %d consecutive heartbeats", b.pid.Name(), b.missed)
			}
		}

		b.sent++
		if err := ctx.Tell(b.pid, &actor.Heartbeat{Seq: b.sent}); err != nil {
			// the death notification is on its way
			x.logger.Debugf("failed to send heartbeat to %s: %v", id, err)
		}
	}
}

func (x *monitorActor) handleAck(msg *actor.HeartbeatAck) {
	b, ok := x.beats[msg.ActorID]
	if !ok || msg.Seq <= b.acked {
		return
	}

	b.acked = msg.Seq
	if b.acked == b.sent {
		if b.missed >= x.maxMissed {
			x.logger.Infof("Actor %s heartbeats resumed", b.pid.Name())
		}
		b.missed = 0
	}
}

func (x *monitorActor) health(b *beat) actor.HealthStatus {
	switch {
	case b.missed == 0:
		return actor.Healthy
	case b.missed < x.maxMissed:
		return actor.Degraded
	default:
		return actor.Unhealthy
	}
}
