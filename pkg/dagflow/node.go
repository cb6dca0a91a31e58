package dagflow

import (
	"context"
)

// Node is a vertex in a graph: identity, optional name, dependency
// edges, graph membership, and the lifecycle hooks a scheduler drives.
//
// Concrete operators embed *BaseNode, which provides the full
// implementation; the unexported method keeps the interface closed to
// other implementations.
type Node interface {
	// ID returns the opaque unique node identifier. Empty until the
	// node is bound to a graph when no explicit id was given.
	ID() string

	// Name returns the optional human-readable name, unique within a
	// graph when present.
	Name() string

	// Graph returns the owning graph, or nil while unbound.
	Graph() *Graph

	// Upstream returns the direct predecessors of the node.
	Upstream() []Node

	// Downstream returns the direct successors of the node.
	Downstream() []Node

	// SetUpstream wires nodes as predecessors of this node.
	SetUpstream(nodes ...Node) error

	// SetDownstream wires nodes as successors of this node.
	SetDownstream(nodes ...Node) error

	// PipeTo wires this node upstream of every target and returns the
	// last target for left-to-right chaining. It panics on wiring
	// misuse; use SetDownstream to handle the error instead.
	PipeTo(targets ...Node) Node

	// PipeFrom wires every source upstream of this node and returns
	// the last source for right-to-left chaining. It panics on wiring
	// misuse; use SetUpstream to handle the error instead.
	PipeFrom(sources ...Node) Node

	// BeforeRun is invoked by the scheduler before the node executes.
	BeforeRun(ctx context.Context) error

	// AfterRun is invoked by the scheduler once the whole graph run
	// ends. Graph.Finish awaits it for every registered node.
	AfterRun(ctx context.Context) error

	base() *BaseNode
}

// Trigger marks a node as an external entry point into a graph. The
// default trigger classification matches nodes implementing it;
// graphs may override the predicate with WithTriggerPredicate.
type Trigger interface {
	Node
	TriggerNode()
}

// TriggerPredicate classifies a node as an external entry point.
type TriggerPredicate func(Node) bool

// IsTrigger is the default trigger predicate: it reports whether the
// node implements the Trigger marker interface.
func IsTrigger(n Node) bool {
	_, ok := n.(Trigger)
	return ok
}

// BaseNode provides the Node implementation that concrete operator
// types embed. The zero value is not usable; construct with
// NewBaseNode.
type BaseNode struct {
	id   string
	name string

	graph      *Graph
	upstream   []Node
	downstream []Node

	app      App
	executor Executor

	// self is the outermost Node, so edge lists and classification
	// see the embedding operator type rather than the BaseNode.
	self Node
}

// nodeConfig collects NewBaseNode options.
type nodeConfig struct {
	graph    *Graph
	scope    *Scope
	ctx      context.Context
	id       string
	name     string
	app      App
	executor Executor
	owner    Node
}

// NodeOption configures node construction.
type NodeOption func(*nodeConfig)

// WithGraph binds the node to g explicitly, bypassing scope lookup.
func WithGraph(g *Graph) NodeOption {
	return func(c *nodeConfig) { c.graph = g }
}

// WithScope resolves the enclosing graph from s instead of the
// Default scope.
func WithScope(s *Scope) NodeOption {
	return func(c *nodeConfig) { c.scope = s }
}

// WithContext resolves the enclosing graph from the scope bound to
// ctx (see ContextWithScope), falling back to the Default scope.
func WithContext(ctx context.Context) NodeOption {
	return func(c *nodeConfig) { c.ctx = ctx }
}

// WithNodeID sets an explicit node identifier. When absent the owning
// graph assigns a fresh uuid at bind time.
func WithNodeID(id string) NodeOption {
	return func(c *nodeConfig) { c.id = id }
}

// WithNodeName sets the human-readable node name. Names are unique
// within a graph.
func WithNodeName(name string) NodeOption {
	return func(c *nodeConfig) { c.name = name }
}

// WithApp overrides the application handle captured from the scope.
func WithApp(app App) NodeOption {
	return func(c *nodeConfig) { c.app = app }
}

// WithExecutor overrides the work-execution pool captured from the
// scope.
func WithExecutor(e Executor) NodeOption {
	return func(c *nodeConfig) { c.executor = e }
}

// WithOwner declares the embedding operator as the node's identity.
// Operator constructors pass their outer value so edges and trigger
// classification see the concrete type.
func WithOwner(owner Node) NodeOption {
	return func(c *nodeConfig) { c.owner = owner }
}

// NewBaseNode constructs a node. Graph binding resolves in order:
// explicit WithGraph, else the current graph of the resolved scope,
// else unbound (bindable later by dependency wiring). When bound
// without an explicit id, a fresh id is requested from the graph.
func NewBaseNode(opts ...NodeOption) *BaseNode {
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	scope := cfg.scope
	if scope == nil && cfg.ctx != nil {
		scope = ScopeFromContext(cfg.ctx)
	}
	if scope == nil {
		scope = Default()
	}

	n := &BaseNode{
		id:       cfg.id,
		name:     cfg.name,
		app:      cfg.app,
		executor: cfg.executor,
	}
	n.self = n
	if cfg.owner != nil {
		n.self = cfg.owner
	}
	if n.app == nil {
		n.app = scope.App()
	}
	if n.executor == nil {
		n.executor = scope.Executor()
	}

	g := cfg.graph
	if g == nil {
		g = scope.Current()
	}
	if g != nil {
		n.graph = g
		if n.id == "" {
			n.id = g.newNodeID()
		}
	}
	return n
}

// ID returns the node identifier.
func (n *BaseNode) ID() string { return n.id }

// Name returns the node name, empty when unnamed.
func (n *BaseNode) Name() string { return n.name }

// Graph returns the owning graph, nil while unbound.
func (n *BaseNode) Graph() *Graph { return n.graph }

// App returns the application handle captured at construction.
func (n *BaseNode) App() App { return n.app }

// Executor returns the work-execution pool captured at construction.
func (n *BaseNode) Executor() Executor { return n.executor }

// Upstream returns a copy of the direct predecessor list.
func (n *BaseNode) Upstream() []Node {
	out := make([]Node, len(n.upstream))
	copy(out, n.upstream)
	return out
}

// Downstream returns a copy of the direct successor list.
func (n *BaseNode) Downstream() []Node {
	out := make([]Node, len(n.downstream))
	copy(out, n.downstream)
	return out
}

// BeforeRun is a no-op by default; operators override it.
func (n *BaseNode) BeforeRun(ctx context.Context) error { return nil }

// AfterRun is a no-op by default; operators override it.
func (n *BaseNode) AfterRun(ctx context.Context) error { return nil }

func (n *BaseNode) base() *BaseNode { return n }
