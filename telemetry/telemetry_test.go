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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type recorderMeterProvider struct {
	metric.MeterProvider
	meter  metric.Meter
	called []string
}

func (r *recorderMeterProvider) Meter(name string, _ ...metric.MeterOption) metric.Meter {
	r.called = append(r.called, name)
	if r.meter != nil {
		return r.meter
	}
	return r.MeterProvider.Meter(name)
}

func TestNewUsesGlobalProvider(t *testing.T) {
	prevProvider := otel.GetMeterProvider()
	baseProvider := noop.NewMeterProvider()
	baseMeter := baseProvider.Meter("base")

	recorder := &recorderMeterProvider{
		MeterProvider: baseProvider,
		meter:         baseMeter,
	}

	otel.SetMeterProvider(recorder)
	t.Cleanup(func() {
		otel.SetMeterProvider(prevProvider)
	})

	telemetry := New()
	require.NotNil(t, telemetry)
	require.Equal(t, recorder, telemetry.MeterProvider())
	require.Equal(t, baseMeter, telemetry.Meter())
	require.Equal(t, []string{instrumentationName}, recorder.called)
}

func TestWithMeterProvider(t *testing.T) {
	t.Run("With custom provider", func(t *testing.T) {
		customProvider := &recorderMeterProvider{
			MeterProvider: noop.NewMeterProvider(),
			meter:         noop.NewMeterProvider().Meter("custom"),
		}

		telemetry := New(WithMeterProvider(customProvider))
		require.Equal(t, customProvider, telemetry.MeterProvider())
		require.Equal(t, customProvider.meter, telemetry.Meter())
		require.Equal(t, []string{instrumentationName}, customProvider.called)
	})
	t.Run("With nil provider ignored", func(t *testing.T) {
		telemetry := New(WithMeterProvider(nil))
		require.NotNil(t, telemetry.MeterProvider())
		require.NotNil(t, telemetry.Meter())
	})
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	require.NoError(t, err)
	assert.NotNil(t, metrics.LifecycleEvents)
	assert.NotNil(t, metrics.Restarts)
	assert.NotNil(t, metrics.Escalations)
	assert.NotNil(t, metrics.UnrecoverableFailures)

	ctx := context.Background()
	metrics.Restarts.Add(ctx, 1)

	registration, err := MonitoredActorsGauge(meter, func() int64 { return 3 })
	require.NoError(t, err)
	require.NotNil(t, registration)
	require.NoError(t, registration.Unregister())
}
