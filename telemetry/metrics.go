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

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	lifecycleEventsCounterName = "sentinel.lifecycle.events"
	monitoredActorsGaugeName   = "sentinel.lifecycle.monitored_actors"
	restartsCounterName        = "sentinel.supervisor.restarts"
	escalationsCounterName     = "sentinel.tree.escalations"
	unrecoverableCounterName   = "sentinel.tree.unrecoverable_failures"
)

// Metrics defines the instruments recorded by the supervision runtime
type Metrics struct {
	// LifecycleEvents counts the lifecycle events published by a lifecycle manager
	LifecycleEvents metric.Int64Counter
	// Restarts counts the actor restarts performed by supervisors
	Restarts metric.Int64Counter
	// Escalations counts the failures escalated between tree nodes
	Escalations metric.Int64Counter
	// UnrecoverableFailures counts the failures that reached a tree root
	UnrecoverableFailures metric.Int64Counter
}

// NewMetrics creates an instance of Metrics
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	var err error

	if metrics.LifecycleEvents, err = meter.Int64Counter(
		lifecycleEventsCounterName,
		metric.WithDescription("The total number of lifecycle events published"),
	); err != nil {
		return nil, fmt.Errorf("failed to create lifecycle events instrument, %v", err)
	}

	if metrics.Restarts, err = meter.Int64Counter(
		restartsCounterName,
		metric.WithDescription("The total number of actor restarts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create restarts instrument, %v", err)
	}

	if metrics.Escalations, err = meter.Int64Counter(
		escalationsCounterName,
		metric.WithDescription("The total number of escalated failures"),
	); err != nil {
		return nil, fmt.Errorf("failed to create escalations instrument, %v", err)
	}

	if metrics.UnrecoverableFailures, err = meter.Int64Counter(
		unrecoverableCounterName,
		metric.WithDescription("The total number of failures that reached a tree root"),
	); err != nil {
		return nil, fmt.Errorf("failed to create unrecoverable failures instrument, %v", err)
	}

	return metrics, nil
}

// MonitoredActorsGauge registers the observable gauge of monitored actors.
// The callback is invoked at every collection.
func MonitoredActorsGauge(meter metric.Meter, observe func() int64) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		monitoredActorsGaugeName,
		metric.WithDescription("The number of actors monitored by a lifecycle manager"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitored actors instrument, %v", err)
	}

	return meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(gauge, observe())
		return nil
	}, gauge)
}
