/*
Package dagflow provides the construction and per-run state core of a
DAG workflow engine: declarative assembly of operator graphs, implicit
"current graph" scoping, structural classification for schedulers, and
collision-safe shared state for one execution.

# Overview

Callers open a Graph as a scope, construct nodes inside the scope (the
nodes auto-attach to the enclosing graph), and wire dependency edges
with SetUpstream/SetDownstream or the chaining forms PipeTo/PipeFrom.
The graph then answers the structural queries a scheduler needs —
RootNodes, LeafNodes, TriggerNodes — and carries the per-run state
(task outputs, namespaced shared data) through a RunContext.

dagflow deliberately does not execute graphs: a separate scheduler
walks the structure, drives each node's lifecycle hooks, and populates
the RunContext.

# Basic Usage

Build a graph inside a scope and classify it:

	g := dagflow.New("etl-pipeline")
	defer g.Open()()

	extract := NewExtractOp(dagflow.WithNodeName("extract"))
	transform := NewTransformOp(dagflow.WithNodeName("transform"))
	load := NewLoadOp(dagflow.WithNodeName("load"))

	extract.PipeTo(transform).PipeTo(load)

	roots := g.RootNodes() // [extract]
	leaves := g.LeafNodes() // [load]

Wire fan-in with the variadic forms: load.PipeFrom(a, b) makes both a
and b upstream of load.

# Scopes

Plain sequential construction uses the process-wide Default scope.
Concurrently-scheduled construction routines must each create their
own scope so siblings never observe each other's current graph:

	s := dagflow.NewScope()
	ctx := dagflow.ContextWithScope(ctx, s)
	g := dagflow.New("pipeline", dagflow.WithGraphScope(s))
	defer g.Open()()
	n := dagflow.NewBaseNode(dagflow.WithContext(ctx))

A scope also carries two set-once handles nodes capture at
construction: the application handle and the work-execution pool.

# Run State

A scheduler creates one RunContext per execution:

	rc := g.NewRun()
	rc.SetOutput(extract.ID(), rows)
	out, err := rc.Output("extract")

	// namespaced shared data, collision safe across tasks
	rc.PutTaskShared("extract", "cursor", 42, false)

Writing an existing shared key without overwrite returns
ErrDuplicateKey; reading an unregistered task name returns
ErrUnknownTask rather than a nil result.

# Lifecycle

Finish runs every registered node's AfterRun hook concurrently and
waits for all of them. Hook failures are collected — every hook is
still attempted — and surfaced as a joined error of HookError values:

	if err := g.Finish(ctx); err != nil {
	    var hookErr *dagflow.HookError
	    if errors.As(err, &hookErr) {
	        log.Printf("node %s failed to finish: %v", hookErr.NodeID, hookErr.Err)
	    }
	}

# Thread Safety

  - Scope is safe for concurrent use; construction code sharing one
    scope still observes a single current graph
  - Graph is NOT safe for concurrent construction; build from one
    goroutine, then treat as immutable during execution
  - RunContext supports concurrent reads once a value is written;
    single-writer-per-key is enforced by the duplicate-key contract

# Subpackages

  - config: engine settings (YAML/JSON)
  - observability: logging, metrics, and tracing helpers
  - registry: process-level catalog of assembled graphs
  - runstore: run snapshot persistence (memory, SQLite)
*/
package dagflow
