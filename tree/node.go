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

// Package tree organizes supervisors into a named hierarchy. Every Node owns a
// Supervisor and an ordered set of child nodes. A failure a node cannot
// resolve is escalated to its parent, which recreates the failed child and,
// depending on its NodeType, some of its siblings. The root records the
// failures nobody could resolve.
package tree

import (
	"context"
	"time"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/heartbeat"
	"github.com/tochemey/sentinel/lifecycle"
	"github.com/tochemey/sentinel/supervisor"
	"github.com/tochemey/sentinel/telemetry"
)

// supervisorName is appended to a node name to name its supervisor
const supervisorName = "$supervisor"

// Node is the handle of a supervision tree node
type Node struct {
	name       string
	localName  string
	nodeType   NodeType
	strategy   *supervisor.Strategy
	system     *actor.System
	pid        *actor.PID
	supervisor *supervisor.Supervisor

	// inherited by the children
	manager     *lifecycle.Manager
	heartbeat   *heartbeat.Monitor
	maxRestarts int
	window      time.Duration
	askTimeout  time.Duration
}

// New creates the root node of a supervision tree. defaultStrategy applies to
// the actors supervised by the node and its children unless overridden.
func New(ctx context.Context, system *actor.System, name string, nodeType NodeType, defaultStrategy *supervisor.Strategy, opts ...Option) (*Node, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	if defaultStrategy == nil {
		defaultStrategy = supervisor.DefaultStrategy()
	}

	config := &Node{
		maxRestarts: DefaultMaxRestarts,
		window:      DefaultRestartWindow,
		askTimeout:  system.AskTimeout(),
	}

	for _, opt := range opts {
		opt.Apply(config)
	}

	if config.askTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	return spawn(ctx, system, name, name, nodeType, defaultStrategy, config)
}

// spawn starts a node actor and its supervisor. inherited carries the settings
// shared along the tree.
func spawn(ctx context.Context, system *actor.System, name, localName string, nodeType NodeType, strategy *supervisor.Strategy, inherited *Node) (*Node, error) {
	node := &Node{
		name:        name,
		localName:   localName,
		nodeType:    nodeType,
		strategy:    strategy,
		system:      system,
		manager:     inherited.manager,
		heartbeat:   inherited.heartbeat,
		maxRestarts: inherited.maxRestarts,
		window:      inherited.window,
		askTimeout:  inherited.askTimeout,
	}

	metrics, err := telemetry.NewMetrics(system.Meter())
	if err != nil {
		return nil, err
	}

	pid, err := system.Spawn(ctx, name, &nodeActor{
		name:      name,
		localName: localName,
		nodeType:  nodeType,
		system:    system,
		logger:    system.Logger().With("node", name),
		metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}
	node.pid = pid

	opts := []supervisor.Option{
		supervisor.WithParent(pid),
		supervisor.WithDefaultStrategy(strategy),
		supervisor.WithAskTimeout(node.askTimeout),
	}
	if node.manager != nil {
		opts = append(opts, supervisor.WithLifecycleManager(node.manager))
	}
	if node.heartbeat != nil {
		opts = append(opts, supervisor.WithHeartbeatMonitor(node.heartbeat))
	}

	sup, err := supervisor.New(ctx, system, name+"/"+supervisorName, opts...)
	if err != nil {
		_ = pid.Kill(ctx)
		return nil, gerrors.NewSpawnError(name, err)
	}
	node.supervisor = sup

	if _, err := node.ask(ctx, &bootstrap{node: node}); err != nil {
		_ = sup.Stop(ctx)
		_ = pid.Kill(ctx)
		return nil, err
	}
	return node, nil
}

// Name returns the full name of the node: its parent name, a slash and its local name
func (n *Node) Name() string {
	return n.name
}

// LocalName returns the name of the node within its parent
func (n *Node) LocalName() string {
	return n.localName
}

// Type returns the node type
func (n *Node) Type() NodeType {
	return n.nodeType
}

// Strategy returns the default strategy of the node
func (n *Node) Strategy() *supervisor.Strategy {
	return n.strategy
}

// PID returns the node actor
func (n *Node) PID() *actor.PID {
	return n.pid
}

// Supervisor returns the node supervisor
func (n *Node) Supervisor() *supervisor.Supervisor {
	return n.supervisor
}

// AddChild creates a child node named after this node, spawns it, tells it its
// parent and records it after the existing children. A nil strategy gives the
// child the default strategy of this node.
func (n *Node) AddChild(ctx context.Context, name string, nodeType NodeType, strategy *supervisor.Strategy) (*Node, error) {
	reply, err := n.askWithTimeout(ctx, &addChild{name: name, nodeType: nodeType, strategy: strategy}, n.spawnTimeout())
	if err != nil {
		return nil, err
	}
	return reply.(*childAdded).node, nil
}

// SuperviseActor supervises the actor built by producer with the node
// supervisor. A nil strategy applies the node default strategy.
func (n *Node) SuperviseActor(ctx context.Context, name string, producer actor.Producer, strategy *supervisor.Strategy) (*actor.PID, error) {
	reply, err := n.askWithTimeout(ctx, &superviseActor{name: name, producer: producer, strategy: strategy}, n.spawnTimeout())
	if err != nil {
		return nil, err
	}
	return reply.(*actorSupervised).pid, nil
}

// EscalateFailure hands a failure over to the parent node. On the root the
// failure is logged as unrecoverable and recorded.
func (n *Node) EscalateFailure(ctx context.Context, reason actor.StopReason) error {
	_, err := n.ask(ctx, &escalate{reason: reason})
	return err
}

// HandleEscalatedFailure applies the node type to the failure of the given
// child. It returns ErrChildNotFound when no child has that name.
func (n *Node) HandleEscalatedFailure(ctx context.Context, child string, reason actor.StopReason) error {
	msg := &escalateFailure{child: child, origin: n.name + "/" + child, reason: reason}
	_, err := n.askWithTimeout(ctx, msg, n.spawnTimeout())
	return err
}

// Child returns the child node with the given local name
func (n *Node) Child(ctx context.Context, name string) (*Node, error) {
	reply, err := n.ask(ctx, &getChild{name: name})
	if err != nil {
		return nil, err
	}
	return reply.(*childAdded).node, nil
}

// Children returns the child nodes in insertion order
func (n *Node) Children(ctx context.Context) ([]*Node, error) {
	reply, err := n.ask(ctx, new(getChildren))
	if err != nil {
		return nil, err
	}
	return reply.([]*Node), nil
}

// Parent returns the parent node, nil for the root
func (n *Node) Parent(ctx context.Context) (*Node, error) {
	reply, err := n.ask(ctx, new(getParent))
	if err != nil {
		return nil, err
	}
	return reply.(*parentNode).node, nil
}

// SupervisedActor returns the live incarnation of an actor supervised by the node
func (n *Node) SupervisedActor(ctx context.Context, name string) (*actor.PID, error) {
	return n.supervisor.Actor(ctx, name)
}

// SupervisedActors returns the live incarnations supervised by the node, in supervision order
func (n *Node) SupervisedActors(ctx context.Context) ([]*actor.PID, error) {
	return n.supervisor.Actors(ctx)
}

// UnrecoverableFailures returns the failures recorded by the node. Only the
// root records failures.
func (n *Node) UnrecoverableFailures(ctx context.Context) ([]Failure, error) {
	reply, err := n.ask(ctx, new(getFailures))
	if err != nil {
		return nil, err
	}
	return reply.([]Failure), nil
}

// Stop stops the subtree: the children, the supervised actors and the node itself
func (n *Node) Stop(ctx context.Context) error {
	if !n.pid.IsRunning() {
		return nil
	}

	reply, err := actor.Ask(ctx, n.pid, new(stopNode), n.spawnTimeout())
	if err != nil {
		return err
	}

	select {
	case <-n.pid.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err, ok := reply.(error); ok {
		return err
	}
	return nil
}

// describe returns the configuration of the subtree
func (n *Node) describe(ctx context.Context) (*nodeSpec, error) {
	reply, err := n.ask(ctx, new(describe))
	if err != nil {
		return nil, err
	}
	return reply.(*nodeSpec), nil
}

func (n *Node) setParent(ctx context.Context, parent *Node) error {
	_, err := n.ask(ctx, &setParent{parent: parent})
	return err
}

// restore supervises the recorded actors and rebuilds the recorded children
func (n *Node) restore(ctx context.Context, spec *nodeSpec) error {
	for _, supervised := range spec.actors {
		if _, err := n.SuperviseActor(ctx, supervised.name, supervised.producer, supervised.strategy); err != nil {
			return err
		}
	}

	for _, childSpec := range spec.children {
		child, err := n.AddChild(ctx, childSpec.localName, childSpec.nodeType, childSpec.strategy)
		if err != nil {
			return err
		}
		if err := child.restore(ctx, childSpec); err != nil {
			return err
		}
	}
	return nil
}

// spawnTimeout bounds the requests that spawn or stop actors
func (n *Node) spawnTimeout() time.Duration {
	return n.askTimeout + n.system.StopTimeout()
}

func (n *Node) ask(ctx context.Context, message any) (any, error) {
	return n.askWithTimeout(ctx, message, n.askTimeout)
}

func (n *Node) askWithTimeout(ctx context.Context, message any, timeout time.Duration) (any, error) {
	reply, err := actor.Ask(ctx, n.pid, message, timeout)
	if err != nil {
		return nil, err
	}
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}
