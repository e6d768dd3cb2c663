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

	"github.com/tochemey/sentinel/actor"
)

// HealthProbe evaluates the health of a monitored actor.
// Implementations must not fail: an actor that cannot be evaluated is reported
// with the status that best reflects it.
type HealthProbe interface {
	Probe(ctx context.Context, pid *actor.PID) actor.HealthStatus
}

// ProbeFunc is a function implementing HealthProbe
type ProbeFunc func(ctx context.Context, pid *actor.PID) actor.HealthStatus

// Probe implements HealthProbe
func (f ProbeFunc) Probe(ctx context.Context, pid *actor.PID) actor.HealthStatus {
	return f(ctx, pid)
}

// AssumeHealthy reports every running actor Healthy.
// It is the probe used when none is configured.
type AssumeHealthy struct{}

var _ HealthProbe = AssumeHealthy{}

// Probe implements HealthProbe
func (AssumeHealthy) Probe(context.Context, *actor.PID) actor.HealthStatus {
	return actor.Healthy
}

// AskProbe asks the actor for its health with an actor.HealthCheck.
// An actor that does not answer in time is Unhealthy.
type AskProbe struct {
	timeout time.Duration
}

var _ HealthProbe = (*AskProbe)(nil)

// NewAskProbe creates an AskProbe bounded by the given timeout
func NewAskProbe(timeout time.Duration) *AskProbe {
	return &AskProbe{timeout: timeout}
}

// Probe implements HealthProbe
func (p *AskProbe) Probe(ctx context.Context, pid *actor.PID) actor.HealthStatus {
	reply, err := actor.Ask(ctx, pid, new(actor.HealthCheck), p.timeout)
	if err != nil {
		return actor.Unhealthy
	}
	response, ok := reply.(*actor.HealthCheckResponse)
	if !ok {
		return actor.Unhealthy
	}
	return response.Status
}
