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
	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/supervisor"
)

type bootstrap struct {
	node *Node
}

type setParent struct {
	parent *Node
}

type addChild struct {
	name     string
	nodeType NodeType
	strategy *supervisor.Strategy
}

type childAdded struct {
	node *Node
}

type superviseActor struct {
	name     string
	producer actor.Producer
	strategy *supervisor.Strategy
}

type actorSupervised struct {
	pid *actor.PID
}

// escalate asks a node to hand a failure over to its parent
type escalate struct {
	reason actor.StopReason
}

// escalateFailure is sent by a child node to its parent
type escalateFailure struct {
	// child is the local name of the failed child
	child string
	// childID identifies the child incarnation. Empty when the request does not
	// come from the child itself.
	childID string
	// origin is the full name of the node where the failure was raised
	origin string
	reason actor.StopReason
}

type describe struct{}

type getChild struct {
	name string
}

type getChildren struct{}

type getParent struct{}

type parentNode struct {
	node *Node
}

type getFailures struct{}

type stopNode struct{}

type ack struct{}
