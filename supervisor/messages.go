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
	"github.com/tochemey/sentinel/actor"
)

// Escalation is told to the parent of a supervisor when a supervised actor
// terminated and the supervisor could not resolve it: the strategy says
// Escalate, the restart intensity is exceeded or the replacement cannot be spawned.
type Escalation struct {
	// Supervisor is the name of the escalating supervisor
	Supervisor string
	// Name is the name of the supervised actor
	Name string
	// Reason is the cause of the escalation
	Reason actor.StopReason
}

type supervise struct {
	name     string
	producer actor.Producer
	strategy *Strategy
}

type supervised struct {
	pid *actor.PID
}

type getActor struct {
	name string
}

type getActors struct{}

type getRestartCount struct {
	name string
}

type restartCount struct {
	count int
}

type stopAll struct{}

type ack struct{}

// unhealthy is forwarded from the lifecycle events when a supervised incarnation turns Unhealthy
type unhealthy struct {
	actorID string
}
