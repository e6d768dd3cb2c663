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
	"github.com/tochemey/sentinel/actor"
)

// Event is a lifecycle event published by a Manager.
// Events are immutable values delivered to every subscriber in emission order.
type Event interface {
	// Kind returns the event kind
	Kind() string
	// Actor returns the id of the actor the event is about
	Actor() string
}

// Started is published once a freshly spawned actor is monitored
type Started struct {
	ActorID string
}

// Stopping is published before an actor is forcibly stopped
type Stopping struct {
	ActorID string
}

// Stopped is published exactly once when a monitored actor is gone
type Stopped struct {
	ActorID string
	Reason  actor.StopReason
}

// HealthChanged is published when the observed health of an actor changes
type HealthChanged struct {
	ActorID string
	Status  actor.HealthStatus
}

func (e Started) Kind() string  { return "started" }
func (e Started) Actor() string { return e.ActorID }

func (e Stopping) Kind() string  { return "stopping" }
func (e Stopping) Actor() string { return e.ActorID }

func (e Stopped) Kind() string  { return "stopped" }
func (e Stopped) Actor() string { return e.ActorID }

func (e HealthChanged) Kind() string  { return "health_changed" }
func (e HealthChanged) Actor() string { return e.ActorID }
