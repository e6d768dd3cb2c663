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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/sentinel/log"
)

type testPing struct{}
type testPanic struct{}
type testFail struct{ err error }
type testStop struct{}
type testSlow struct{ delay time.Duration }

// exchanger is the fixture actor
type exchanger struct {
	received *atomic.Int64
	stopped  *atomic.Bool
	health   *atomic.Int64
}

var _ Actor = (*exchanger)(nil)
var _ HealthReporter = (*exchanger)(nil)

func newExchanger() *exchanger {
	return &exchanger{
		received: atomic.NewInt64(0),
		stopped:  atomic.NewBool(false),
		health:   atomic.NewInt64(int64(Healthy)),
	}
}

func (x *exchanger) PreStart(context.Context) error {
	return nil
}

func (x *exchanger) Receive(ctx *ReceiveContext) {
	x.received.Inc()
	switch msg := ctx.Message().(type) {
	case *testPing:
		ctx.Response(new(testPing))
	case *testPanic:
		panic("boom")
	case *testFail:
		ctx.Err(msg.err)
	case *testStop:
		ctx.Stop()
	case *testSlow:
		time.Sleep(msg.delay)
	}
}

func (x *exchanger) PostStop(context.Context) error {
	x.stopped.Store(true)
	return nil
}

func (x *exchanger) Health(context.Context) HealthStatus {
	return HealthStatus(x.health.Load())
}

// failingActor fails at start
type failingActor struct{}

func (failingActor) PreStart(context.Context) error { return errors.New("cannot start") }
func (failingActor) Receive(*ReceiveContext)        {}
func (failingActor) PostStop(context.Context) error { return nil }

// newWatcher spawns an actor forwarding the Terminated messages it receives
func newWatcher(t *testing.T, ctx context.Context, system *System, name string) (*PID, chan *Terminated) {
	t.Helper()
	notifications := make(chan *Terminated, 16)
	pid, err := system.Spawn(ctx, name, NewFuncActor(func(rctx *ReceiveContext) {
		if terminated, ok := rctx.Message().(*Terminated); ok {
			notifications <- terminated
		}
	}))
	require.NoError(t, err)
	return pid, notifications
}

func newTestSystem(t *testing.T) *System {
	t.Helper()
	system, err := NewSystem("test", WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, system.Stop(context.Background()))
	})
	return system
}

func awaitTerminated(t *testing.T, notifications chan *Terminated) *Terminated {
	t.Helper()
	select {
	case terminated := <-notifications:
		return terminated
	case <-time.After(3 * time.Second):
		t.Fatal("no Terminated received")
		return nil
	}
}
