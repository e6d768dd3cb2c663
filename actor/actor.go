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
)

// Actor defines the core interface for an actor in the runtime.
//
// Actors are isolated units of computation that communicate exclusively
// via message passing. Each actor has its own mailbox and processes messages
// sequentially, one at a time.
//
// The lifecycle of an actor follows three main phases:
//  1. PreStart – Setup logic before message handling begins
//  2. Receive – Core message handling loop
//  3. PostStop – Cleanup logic after the actor is stopped
type Actor interface {
	// PreStart is invoked once before the actor begins processing any messages.
	// If an error is returned, the actor will fail to start and will not process messages.
	PreStart(ctx context.Context) error

	// Receive handles all messages sent to the actor's mailbox.
	//
	// A panic or a call to ReceiveContext.Err terminates the actor abnormally.
	// Long-running or blocking operations should be offloaded to separate goroutines.
	Receive(ctx *ReceiveContext)

	// PostStop is invoked once when the actor terminates, whatever the cause.
	PostStop(ctx context.Context) error
}

// Producer creates brand-new actor instances.
// Supervisors call it on every restart so that no state leaks between incarnations.
type Producer func() Actor

// HealthReporter is implemented by actors that can report their own health.
// Actors that do not implement it are reported Healthy while running.
type HealthReporter interface {
	Health(ctx context.Context) HealthStatus
}
