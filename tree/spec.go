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
	"time"

	"github.com/tochemey/sentinel/actor"
	"github.com/tochemey/sentinel/supervisor"
)

// Failure is an unresolved failure recorded by the root node
type Failure struct {
	// Node is the full name of the node where the failure was raised
	Node string
	// Reason is the cause of the failure
	Reason actor.StopReason
	// Time is when the root gave up on the failure
	Time time.Time
}

// actorSpec is the recorded configuration of a supervised actor
type actorSpec struct {
	name     string
	producer actor.Producer
	// strategy is nil when the supervisor default applies
	strategy *supervisor.Strategy
}

// nodeSpec is the recorded configuration of a node and its subtree.
// A node is recreated from it.
type nodeSpec struct {
	localName string
	nodeType  NodeType
	strategy  *supervisor.Strategy
	actors    []actorSpec
	children  []*nodeSpec
}
