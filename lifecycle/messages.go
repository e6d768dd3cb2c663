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
	"time"

	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/eventstream"
)

// the requests handled by the manager actor

type subscribe struct{}

type subscribed struct {
	subscriber eventstream.Subscriber[Event]
}

type monitor struct {
	pid           *actor.PID
	checkInterval time.Duration
}

type startActor struct {
	name          string
	actor         actor.Actor
	checkInterval time.Duration
}

type actorStarted struct {
	pid *actor.PID
}

type stopActor struct {
	actorID string
	timeout time.Duration
}

type getMonitoredActor struct {
	actorID string
}

type getMonitoredActors struct{}

type shutdown struct{}

type ack struct{}

// checkHealth is told to the manager actor at every tick
type checkHealth struct{}

// healthReport carries the outcome of a health-check round
type healthReport struct {
	results map[string]actor.HealthStatus
}

type probeResult struct {
	actorID string
	status  actor.HealthStatus
}
