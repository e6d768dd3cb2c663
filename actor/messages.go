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

// Terminated is delivered to every watcher of an actor when the actor stops,
// whatever the cause.
type Terminated struct {
	ActorID string
	Name    string
	Reason  StopReason
}

// HealthCheck asks an actor for its health. The actor runtime answers it
// with a HealthCheckResponse without involving the actor's Receive.
type HealthCheck struct{}

// HealthCheckResponse carries the health reported by an actor
type HealthCheckResponse struct {
	Status HealthStatus
}

// Heartbeat is a liveness ping answered by the actor runtime with a HeartbeatAck.
type Heartbeat struct {
	Seq uint64
}

// HeartbeatAck answers a Heartbeat
type HeartbeatAck struct {
	ActorID string
	Seq     uint64
}

// poisonPill stops an actor once the messages enqueued before it are processed
type poisonPill struct{}
