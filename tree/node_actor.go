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

package tree

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/sentinel/actor"
	gerrors "github.com/tochemey/sentinel/errors"
	"github.com/tochemey/sentinel/log"
	"github.com/tochemey/sentinel/supervisor"
	"github.com/tochemey/sentinel/telemetry"
)

// child is an entry of the ordered child map
type child struct {
	name string
	node *Node
}

// nodeActor owns the state of a tree node. The child map is only mutated from
// its own message handlers.
type nodeActor struct {
	name      string
	localName string
	nodeType  NodeType
	system    *actor.System
	logger    log.Logger
	metrics   *telemetry.Metrics

	self     *Node
	parent   *Node
	children []*child
	actors   []actorSpec
	history  []time.Time
	failures []Failure
}

var _ actor.Actor = (*nodeActor)(nil)

func (x *nodeActor) PreStart(context.Context) error {
	return nil
}

func (x *nodeActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *bootstrap:
		x.self = msg.node
		ctx.Response(new(ack))
	case *setParent:
		if x.parent != nil {
			ctx.Response(gerrors.ErrParentAlreadySet)
			return
		}
		x.parent = msg.parent
		ctx.Response(new(ack))
	case *addChild:
		node, err := x.addChild(ctx.Context(), msg)
		if err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(&childAdded{node: node})
	case *superviseActor:
		pid, err := x.self.supervisor.Supervise(ctx.Context(), msg.name, msg.producer, msg.strategy)
		if err != nil {
			ctx.Response(err)
			return
		}
		x.actors = append(x.actors, actorSpec{name: msg.name, producer: msg.producer, strategy: msg.strategy})
		ctx.Response(&actorSupervised{pid: pid})
	case *escalate:
		if err := x.escalate(ctx, x.name, msg.reason); err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(new(ack))
	case *escalateFailure:
		if err := x.handleEscalatedFailure(ctx, msg); err != nil {
			x.logger.Warnf("Node %s failed to handle the failure of %s: %v", x.name, msg.child, err)
			ctx.Response(err)
			return
		}
		ctx.Response(new(ack))
	case *supervisor.Escalation:
		origin := x.name + "/" + msg.Name
		x.logger.Warnf("Supervisor of %s could not resolve the failure of %s: %s", x.name, msg.Name, msg.Reason)
		if err := x.escalate(ctx, origin, msg.Reason); err != nil {
			x.logger.Errorf("Node %s failed to escalate: %v", x.name, err)
		}
	case *describe:
		spec, err := x.describe(ctx.Context())
		if err != nil {
			ctx.Response(err)
			return
		}
		ctx.Response(spec)
	case *getChild:
		position := x.position(msg.name)
		if position < 0 {
			ctx.Response(gerrors.NewErrChildNotFound(msg.name))
			return
		}
		ctx.Response(&childAdded{node: x.children[position].node})
	case *getChildren:
		nodes := make([]*Node, 0, len(x.children))
		for _, entry := range x.children {
			nodes = append(nodes, entry.node)
		}
		ctx.Response(nodes)
	case *getParent:
		ctx.Response(&parentNode{node: x.parent})
	case *getFailures:
		ctx.Response(slices.Clone(x.failures))
	case *stopNode:
		if err := x.stop(ctx.Context()); err != nil {
			ctx.Response(err)
		} else {
			ctx.Response(new(ack))
		}
		ctx.Stop()
	default:
		x.logger.Warnf("node %s received an unhandled message %T", x.name, msg)
	}
}

func (x *nodeActor) PostStop(context.Context) error {
	return nil
}

func (x *nodeActor) addChild(ctx context.Context, msg *addChild) (*Node, error) {
	if msg.name == "" {
		return nil, gerrors.ErrNameRequired
	}
	if x.position(msg.name) >= 0 {
		return nil, gerrors.NewErrChildAlreadyExists(msg.name)
	}

	strategy := msg.strategy
	if strategy == nil {
		strategy = x.self.strategy
	}

	node, err := x.spawnChild(ctx, msg.name, msg.nodeType, strategy)
	if err != nil {
		return nil, err
	}

	x.children = append(x.children, &child{name: msg.name, node: node})
	x.logger.Debugf("Node %s added child %s (%s)", x.name, node.name, msg.nodeType)
	return node, nil
}

// spawnChild builds a child node inheriting the settings of this node and tells it its parent
func (x *nodeActor) spawnChild(ctx context.Context, name string, nodeType NodeType, strategy *supervisor.Strategy) (*Node, error) {
	node, err := spawn(ctx, x.system, x.name+"/"+name, name, nodeType, strategy, x.self)
	if err != nil {
		return nil, err
	}

	if err := node.setParent(ctx, x.self); err != nil {
		if serr := node.Stop(ctx); serr != nil {
			x.logger.Warnf("failed to stop orphan node %s: %v", node.name, serr)
		}
		return nil, err
	}
	return node, nil
}

// handleEscalatedFailure recreates the failed child and the siblings its node type designates
func (x *nodeActor) handleEscalatedFailure(ctx *actor.ReceiveContext, msg *escalateFailure) error {
	position := x.position(msg.child)
	if position < 0 {
		return gerrors.NewErrChildNotFound(msg.child)
	}

	if msg.childID != "" && msg.childID != x.children[position].node.pid.ID() {
		// the child has already been recreated
		x.logger.Debugf("Node %s ignores a stale escalation from %s", x.name, msg.child)
		return nil
	}

	x.logger.Warnf("Node %s handling the failure of %s (%s): %s", x.name, msg.child, x.nodeType, msg.reason)

	now := time.Now()
	if !x.allowRestart(now) {
		cause := fmt.Errorf("%w: node %s recreated children %d times within %s, last failure: %s",
			gerrors.ErrRestartIntensityExceeded, x.name, x.self.maxRestarts, x.self.window, msg.reason)
		return x.escalate(ctx, msg.origin, actor.FailureReason(cause))
	}

	if err := x.recreate(ctx.Context(), x.nodeType.targets(position, len(x.children))); err != nil {
		x.logger.Errorf("Node %s failed to recreate its children: %v", x.name, err)
		return x.escalate(ctx, msg.origin, actor.FailureReason(err))
	}

	x.history = append(x.history, now)
	x.metrics.Restarts.Add(ctx.Context(), 1, metric.WithAttributes(
		attribute.String("node", x.name),
		attribute.String("strategy", x.nodeType.String())))
	return nil
}

// recreate replaces the children at the given positions with brand-new nodes
// built from their recorded configuration. Positions are preserved.
func (x *nodeActor) recreate(ctx context.Context, positions []int) error {
	specs := make([]*nodeSpec, len(positions))
	olds := make([]*Node, len(positions))
	for i, position := range positions {
		old := x.children[position].node
		olds[i] = old

		spec, err := old.describe(ctx)
		if err != nil {
			// the subtree is unreachable, rebuild the node alone
			x.logger.Warnf("failed to describe %s, recreating it empty: %v", old.name, err)
			spec = &nodeSpec{localName: old.localName, nodeType: old.nodeType, strategy: old.strategy}
		}
		specs[i] = spec
	}

	if err := stopNodes(ctx, olds); err != nil {
		x.logger.Warnf("Node %s failed to stop some children: %v", x.name, err)
	}

	for i, position := range positions {
		spec := specs[i]
		node, err := x.spawnChild(ctx, spec.localName, spec.nodeType, spec.strategy)
		if err != nil {
			x.dropChildren(positions[i:])
			return err
		}

		x.children[position].node = node
		if err := node.restore(ctx, spec); err != nil {
			x.dropChildren(positions[i+1:])
			return err
		}
		x.logger.Infof("Node %s recreated child %s", x.name, node.name)
	}
	return nil
}

// dropChildren forgets the children at the given positions. Their nodes have
// been stopped and could not be recreated.
func (x *nodeActor) dropChildren(positions []int) {
	if len(positions) == 0 {
		return
	}

	dropped := make(map[*child]struct{}, len(positions))
	for _, position := range positions {
		entry := x.children[position]
		dropped[entry] = struct{}{}
		x.logger.Warnf("Node %s lost child %s", x.name, entry.name)
	}

	x.children = slices.DeleteFunc(x.children, func(entry *child) bool {
		_, ok := dropped[entry]
		return ok
	})
}

// escalate hands the failure over to the parent. The root records it.
func (x *nodeActor) escalate(ctx *actor.ReceiveContext, origin string, reason actor.StopReason) error {
	if x.parent == nil {
		x.logger.Errorf("Unrecoverable failure in %s: %s", origin, reason)
		x.failures = append(x.failures, Failure{Node: origin, Reason: reason, Time: time.Now()})
		x.metrics.UnrecoverableFailures.Add(ctx.Context(), 1, metric.WithAttributes(attribute.String("node", origin)))
		return nil
	}

	x.metrics.Escalations.Add(ctx.Context(), 1, metric.WithAttributes(attribute.String("node", x.name)))
	return ctx.Tell(x.parent.pid, &escalateFailure{
		child:   x.localName,
		childID: ctx.Self().ID(),
		origin:  origin,
		reason:  reason,
	})
}

// describe returns the configuration of this node and of its subtree
func (x *nodeActor) describe(ctx context.Context) (*nodeSpec, error) {
	spec := &nodeSpec{
		localName: x.localName,
		nodeType:  x.nodeType,
		strategy:  x.self.strategy,
		actors:    slices.Clone(x.actors),
		children:  make([]*nodeSpec, 0, len(x.children)),
	}

	for _, entry := range x.children {
		childSpec, err := entry.node.describe(ctx)
		if err != nil {
			return nil, err
		}
		spec.children = append(spec.children, childSpec)
	}
	return spec, nil
}

// stop stops the children, then the supervised actors
func (x *nodeActor) stop(ctx context.Context) error {
	nodes := make([]*Node, 0, len(x.children))
	for _, entry := range x.children {
		nodes = append(nodes, entry.node)
	}

	err := multierr.Combine(
		stopNodes(ctx, nodes),
		x.self.supervisor.Stop(ctx),
	)
	x.children = nil
	return err
}

// allowRestart reports whether one more recreation fits in the node intensity
func (x *nodeActor) allowRestart(now time.Time) bool {
	limit := x.self.maxRestarts
	if limit < 0 {
		return true
	}

	kept := x.history[:0]
	for _, at := range x.history {
		if now.Sub(at) < x.self.window {
			kept = append(kept, at)
		}
	}
	x.history = kept
	return len(x.history) < limit
}

func (x *nodeActor) position(name string) int {
	return slices.IndexFunc(x.children, func(entry *child) bool {
		return entry.name == name
	})
}

// stopNodes stops sibling subtrees concurrently
func stopNodes(ctx context.Context, nodes []*Node) error {
	errs := make([]error, len(nodes))
	eg := new(errgroup.Group)
	for i, node := range nodes {
		eg.Go(func() error {
			errs[i] = node.Stop(ctx)
			return nil
		})
	}
	_ = eg.Wait()
	return multierr.Combine(errs...)
}
