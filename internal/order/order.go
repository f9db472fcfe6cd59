// Package order computes a reverse-topological (leaf-first) compile order
// over a dependency graph: a DFS-based post-order traversal from the top
// buffer, driven by an outer worklist that discovers peer buffers
// (package imports, interface ports, library defaults) a pure DFS from the
// instance tree would never see.
//
// The worklist repeatedly takes the next undischarged node, runs a post-order
// DFS from it, then rescans the newly ordered buffers from where the DFS
// started, enqueueing each one's peer dependencies so they get their own
// DFS pass in turn. A node's peer dependencies are only enqueued once.
package order

import (
	"github.com/svprune/svprune/internal/depgraph"
	"github.com/svprune/svprune/internal/sv"
	"github.com/svprune/svprune/reporter"
)

// visitStatus tracks a buffer's progress through the post-order DFS.
type visitStatus int

const (
	unvisited visitStatus = iota
	inProgress
	done
)

type nodeState struct {
	visited          visitStatus
	peerDepsEnqueued bool
}

// Sort walks g starting from top and returns the buffers in
// reverse-topological (leaf-first) order: every buffer appears after all
// of its dependencies. A cycle anywhere in the reachable graph is reported
// as reporter.KindCycleDetected, naming the buffer whose back-edge closed
// the cycle.
func Sort(g *depgraph.Graph, top sv.BufferID) ([]sv.BufferID, error) {
	sm := g.SourceManager()
	states := make(map[sv.BufferID]*nodeState)
	for _, id := range sm.AllBuffers() {
		if sm.FullPath(id) == "" {
			continue
		}
		states[id] = &nodeState{}
	}
	if _, ok := states[top]; !ok {
		states[top] = &nodeState{}
	}

	var order []sv.BufferID
	worklist := []sv.BufferID{top}

	for len(worklist) > 0 {
		n := worklist[0]
		worklist = worklist[1:]

		st := states[n]
		if st == nil {
			st = &nodeState{}
			states[n] = st
		}
		if st.peerDepsEnqueued {
			continue
		}

		start := len(order)
		if err := dfsPost(g, states, n, &order); err != nil {
			return nil, err
		}

		cursor := start
		for cursor < len(order) {
			target := order[cursor]
			for _, peer := range g.PeerDependencies(target) {
				worklist = append(worklist, peer)
			}
			cursor++
		}
		st.peerDepsEnqueued = true
	}

	return order, nil
}

// stackFrame is one pending dependency-iteration resumption for the
// explicit-stack post-order walk.
type stackFrame struct {
	node   sv.BufferID
	deps   []sv.BufferID
	depIdx int
}

// dfsPost performs a post-order DFS from v, appending v and everything
// reachable from it (not already done) to *order. It uses an explicit
// stack rather than native recursion so call-stack depth never tracks the
// dependency graph's depth.
func dfsPost(g *depgraph.Graph, states map[sv.BufferID]*nodeState, v sv.BufferID, order *[]sv.BufferID) error {
	st := stateFor(states, v)
	if st.visited == done {
		return nil
	}

	stack := []*stackFrame{{node: v, deps: g.Dependencies(v)}}
	stateFor(states, v).visited = inProgress

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.depIdx >= len(frame.deps) {
			stack = stack[:len(stack)-1]
			*order = append(*order, frame.node)
			stateFor(states, frame.node).visited = done
			continue
		}

		dep := frame.deps[frame.depIdx]
		frame.depIdx++

		depState := stateFor(states, dep)
		switch depState.visited {
		case done:
			continue
		case inProgress:
			return reporter.Errorf(reporter.KindCycleDetected,
				"cycle detected at %s", sv.UnknownSpan(dep))
		default:
			depState.visited = inProgress
			stack = append(stack, &stackFrame{node: dep, deps: g.Dependencies(dep)})
		}
	}
	return nil
}

func stateFor(states map[sv.BufferID]*nodeState, id sv.BufferID) *nodeState {
	st, ok := states[id]
	if !ok {
		st = &nodeState{}
		states[id] = st
	}
	return st
}
