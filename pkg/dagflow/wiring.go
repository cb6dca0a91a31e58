package dagflow

import "fmt"

// SetUpstream wires nodes as direct predecessors of this node.
//
// The single graph the edge belongs to is resolved from this node and
// every argument that already has one: no graph at all is an error, two
// distinct graphs is an error, and the resolved graph adopts every
// unbound side. Edges are appended in both directions; an edge that
// already exists is skipped, so repeated wiring is idempotent.
//
// A failed call may leave the graph partially mutated; callers should
// treat the graph as unspecified-but-not-corrupt and stop building on
// it.
func (n *BaseNode) SetUpstream(nodes ...Node) error {
	return n.setDependency(nodes, true)
}

// SetDownstream wires nodes as direct successors of this node, with
// the same graph-resolution and idempotence rules as SetUpstream.
func (n *BaseNode) SetDownstream(nodes ...Node) error {
	return n.setDependency(nodes, false)
}

// PipeTo implements Node.
func (n *BaseNode) PipeTo(targets ...Node) Node {
	if err := n.SetDownstream(targets...); err != nil {
		panic(err)
	}
	if len(targets) == 0 {
		return n.self
	}
	return targets[len(targets)-1]
}

// PipeFrom implements Node.
func (n *BaseNode) PipeFrom(sources ...Node) Node {
	if err := n.SetUpstream(sources...); err != nil {
		panic(err)
	}
	if len(sources) == 0 {
		return n.self
	}
	return sources[len(sources)-1]
}

func (n *BaseNode) setDependency(nodes []Node, isUpstream bool) error {
	op := "set_downstream"
	if isUpstream {
		op = "set_upstream"
	}
	fail := func(err error) error {
		return &WiringError{NodeID: n.id, Op: op, Err: err}
	}

	for _, m := range nodes {
		if m == nil || m.base() == nil {
			return fail(ErrNilNode)
		}
	}

	// Collect the distinct graphs referenced by self and the already
	// bound arguments.
	var graphs []*Graph
	appendGraph := func(g *Graph) {
		if g == nil {
			return
		}
		for _, seen := range graphs {
			if seen == g {
				return
			}
		}
		graphs = append(graphs, g)
	}
	appendGraph(n.graph)
	for _, m := range nodes {
		appendGraph(m.base().graph)
	}

	if len(graphs) == 0 {
		return fail(ErrNoGraphScope)
	}
	if len(graphs) > 1 {
		return fail(fmt.Errorf("%w: %s and %s", ErrCrossGraph, graphs[0].ID(), graphs[1].ID()))
	}

	g := graphs[0]
	n.graph = g
	if err := g.Add(n.self); err != nil {
		return fail(err)
	}

	for _, m := range nodes {
		mb := m.base()
		mb.graph = g
		if err := g.Add(mb.self); err != nil {
			return fail(err)
		}

		if isUpstream {
			if !containsNode(n.upstream, mb.id) {
				n.upstream = append(n.upstream, mb.self)
			}
			if !containsNode(mb.downstream, n.id) {
				mb.downstream = append(mb.downstream, n.self)
			}
		} else {
			if !containsNode(n.downstream, mb.id) {
				n.downstream = append(n.downstream, mb.self)
			}
			if !containsNode(mb.upstream, n.id) {
				mb.upstream = append(mb.upstream, n.self)
			}
		}
	}
	return nil
}

// containsNode reports whether list holds a node with the given id.
func containsNode(list []Node, id string) bool {
	for _, m := range list {
		if m.base().id == id {
			return true
		}
	}
	return false
}
