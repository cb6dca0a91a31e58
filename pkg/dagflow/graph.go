package dagflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskweave/dagflow/pkg/dagflow/observability"
)

// Graph is a container of nodes under construction. It accumulates
// nodes through dependency wiring, classifies them structurally for a
// scheduler, and acts as the resource pushed onto a construction
// scope.
//
// Graph is NOT safe for concurrent construction. Build from a single
// goroutine; once a scheduler starts executing it, treat it as
// immutable.
type Graph struct {
	id    string
	scope *Scope

	trigger TriggerPredicate
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu    sync.RWMutex
	nodes map[string]Node
	names map[string]Node

	// classification caches, nil means invalidated
	roots    []Node
	leaves   []Node
	triggers []Node
}

// GraphOption configures graph creation.
type GraphOption func(*Graph)

// WithTriggerPredicate replaces the default trigger classification
// (the Trigger marker interface) with an external predicate.
func WithTriggerPredicate(p TriggerPredicate) GraphOption {
	return func(g *Graph) {
		if p != nil {
			g.trigger = p
		}
	}
}

// WithGraphScope sets the construction scope Open pushes onto.
// Defaults to the process-wide Default scope.
func WithGraphScope(s *Scope) GraphOption {
	return func(g *Graph) {
		if s != nil {
			g.scope = s
		}
	}
}

// WithGraphLogger sets the structured logger used by lifecycle
// operations. Defaults to slog.Default().
func WithGraphLogger(logger *slog.Logger) GraphOption {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics enables OpenTelemetry metrics for lifecycle operations.
func WithMetrics(m observability.MetricsRecorder) GraphOption {
	return func(g *Graph) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithSpans enables OpenTelemetry tracing for lifecycle operations.
func WithSpans(sm observability.SpanManager) GraphOption {
	return func(g *Graph) {
		if sm != nil {
			g.spans = sm
		}
	}
}

// New creates an empty graph with the given identifier.
func New(id string, opts ...GraphOption) *Graph {
	g := &Graph{
		id:      id,
		scope:   Default(),
		trigger: IsTrigger,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		nodes:   make(map[string]Node),
		names:   make(map[string]Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID returns the graph identifier.
func (g *Graph) ID() string { return g.id }

// newNodeID hands out a fresh unique node identifier.
func (g *Graph) newNodeID() string {
	return uuid.New().String()
}

// Add registers a node. Re-adding a node with an already registered id
// is a no-op; a name collision with a different node is an error. Any
// successful add invalidates the cached classifications.
func (g *Graph) Add(n Node) error {
	if n == nil || n.base() == nil {
		return ErrNilNode
	}
	nb := n.base()

	g.mu.Lock()
	defer g.mu.Unlock()

	if nb.id == "" {
		nb.id = g.newNodeID()
	}
	if _, ok := g.nodes[nb.id]; ok {
		return nil
	}
	if nb.name != "" {
		if other, ok := g.names[nb.name]; ok && other.base().id != nb.id {
			return fmt.Errorf("%w: %q in graph %s", ErrNameConflict, nb.name, g.id)
		}
		g.names[nb.name] = nb.self
	}
	g.nodes[nb.id] = nb.self

	g.roots, g.leaves, g.triggers = nil, nil, nil
	return nil
}

// Node returns the registered node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// NodeByName returns the registered node with the given name.
func (g *Graph) NodeByName(name string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.names[name]
	return n, ok
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// RootNodes returns every node in the graph closure with no upstream
// edge. The result is cached until the next mutation and sorted by id,
// so repeated reads are stable.
func (g *Graph) RootNodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roots == nil {
		g.build()
	}
	return g.roots
}

// LeafNodes returns every node in the graph closure with no downstream
// edge, cached and sorted like RootNodes.
func (g *Graph) LeafNodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.leaves == nil {
		g.build()
	}
	return g.leaves
}

// TriggerNodes returns every node in the graph closure satisfying the
// trigger predicate, cached and sorted like RootNodes.
func (g *Graph) TriggerNodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.triggers == nil {
		g.build()
	}
	return g.triggers
}

// build recomputes the classification caches from the closure of the
// registered nodes. Callers hold g.mu.
func (g *Graph) build() {
	closure := g.closureLocked()

	ids := make([]string, 0, len(closure))
	for id := range closure {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g.roots = make([]Node, 0)
	g.leaves = make([]Node, 0)
	g.triggers = make([]Node, 0)
	for _, id := range ids {
		n := closure[id]
		nb := n.base()
		if len(nb.upstream) == 0 {
			g.roots = append(g.roots, n)
		}
		if len(nb.downstream) == 0 {
			g.leaves = append(g.leaves, n)
		}
		if g.trigger(n) {
			g.triggers = append(g.triggers, n)
		}
	}
}

// closureLocked walks upstream and downstream edges from every
// registered node, collecting nodes wired in transitively even if
// never explicitly registered. The visited set makes the walk safe on
// cyclic wiring. Callers hold g.mu.
func (g *Graph) closureLocked() map[string]Node {
	visited := make(map[string]Node, len(g.nodes))
	var stack []Node
	for _, n := range g.nodes {
		stack = append(stack, n)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nb := n.base()
		if _, ok := visited[nb.id]; ok {
			continue
		}
		visited[nb.id] = nb.self
		stack = append(stack, nb.upstream...)
		stack = append(stack, nb.downstream...)
	}
	return visited
}

// Validate checks the wired structure for dependency cycles using
// Kahn's algorithm over the graph closure. Wiring itself never checks
// for cycles; schedulers should validate before executing.
func (g *Graph) Validate() error {
	g.mu.RLock()
	closure := g.closureLocked()
	g.mu.RUnlock()

	indegree := make(map[string]int, len(closure))
	for id, n := range closure {
		indegree[id] = len(n.base().upstream)
	}

	queue := make([]string, 0, len(closure))
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, d := range closure[id].base().downstream {
			did := d.base().id
			indegree[did]--
			if indegree[did] == 0 {
				queue = append(queue, did)
			}
		}
	}

	if processed != len(closure) {
		return fmt.Errorf("%w: graph %s", ErrCycle, g.id)
	}
	return nil
}

// Open pushes the graph onto its construction scope so node
// constructors inside the block auto-attach to it. The returned close
// func pops the scope exactly once; defer it immediately so the pop
// happens on every exit path, including panics.
//
//	g := dagflow.New("pipeline")
//	defer g.Open()()
func (g *Graph) Open() func() {
	g.scope.Enter(g)
	var once sync.Once
	return func() {
		once.Do(g.scope.Exit)
	}
}

// Finish invokes every registered node's AfterRun hook concurrently
// and waits for all of them. Every hook is attempted even when others
// fail; failures are wrapped in HookError values and joined into the
// returned error. After Finish the graph is considered done for the
// run.
func (g *Graph) Finish(ctx context.Context) error {
	g.mu.RLock()
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	g.mu.RUnlock()

	ctx, span := g.spans.StartFinishSpan(ctx, g.id)
	start := time.Now()
	observability.LogFinishStart(g.logger, g.id, len(nodes))

	var (
		wg   sync.WaitGroup
		errm sync.Mutex
		errs []error
	)
	for _, n := range nodes {
		wg.Add(1)
		go func(n Node) {
			defer wg.Done()
			nodeID := n.base().id

			hctx, hspan := g.spans.StartHookSpan(ctx, nodeID)
			hstart := time.Now()
			err := n.AfterRun(hctx)
			g.metrics.RecordHookRun(hctx, nodeID, time.Since(hstart), err)
			g.spans.EndSpanWithError(hspan, err)

			if err != nil {
				observability.LogHookError(g.logger, g.id, nodeID, err)
				errm.Lock()
				errs = append(errs, &HookError{NodeID: nodeID, Hook: "after_run", Err: err})
				errm.Unlock()
			}
		}(n)
	}
	wg.Wait()

	err := errors.Join(errs...)
	duration := time.Since(start)
	g.metrics.RecordGraphFinish(ctx, err == nil, duration)
	g.spans.EndSpanWithError(span, err)
	if err == nil {
		observability.LogFinishComplete(g.logger, g.id, duration, len(nodes))
	}
	return err
}
