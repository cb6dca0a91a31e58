package dagflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and dependency wiring.
var (
	// ErrInvalidArgument indicates a required name or key was empty or nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNilNode indicates a dependency-wiring call received a nil node.
	ErrNilNode = errors.New("nil node in dependency wiring")

	// ErrNameConflict indicates a node name is already registered to a
	// different node in the same graph.
	ErrNameConflict = errors.New("node name already exists in graph")

	// ErrNoGraphScope indicates dependency wiring was attempted with no
	// resolvable graph: neither side is bound and no scope was active
	// when the nodes were constructed.
	ErrNoGraphScope = errors.New("dependency wiring requires a graph scope")

	// ErrCrossGraph indicates dependency wiring was attempted between
	// nodes bound to two different graphs.
	ErrCrossGraph = errors.New("nodes belong to different graphs")

	// ErrCycle indicates Validate found a dependency cycle.
	ErrCycle = errors.New("graph contains a cycle")
)

// Sentinel errors for run-context access.
var (
	// ErrUnknownTask indicates a lookup referenced a task name not
	// registered in the graph's name table.
	ErrUnknownTask = errors.New("unknown task name")

	// ErrNoOutput indicates the referenced node has not produced an
	// output yet.
	ErrNoOutput = errors.New("no output recorded for node")

	// ErrDuplicateKey indicates a shared-data write to an existing key
	// without requesting overwrite.
	ErrDuplicateKey = errors.New("shared data key already exists")

	// ErrReservedSeparator indicates a task name or key contains the
	// internal namespacing separator.
	ErrReservedSeparator = errors.New("reserved separator in task name or key")
)

// HookError wraps a lifecycle hook failure with node context.
// Finish collects one HookError per failed node and joins them.
type HookError struct {
	// NodeID is the identifier of the node whose hook failed.
	NodeID string
	// Hook is the hook that failed ("before_run", "after_run").
	Hook string
	// Err is the underlying error from the hook.
	Err error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("node %s: %s hook: %v", e.NodeID, e.Hook, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HookError) Unwrap() error {
	return e.Err
}

// WiringError wraps a dependency-wiring failure with both endpoints.
// A failed wiring call may leave the graph partially mutated; callers
// should not keep building on a graph after a wiring error.
type WiringError struct {
	// NodeID is the node the wiring call was invoked on.
	NodeID string
	// Op is the operation that failed ("set_upstream", "set_downstream").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WiringError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WiringError) Unwrap() error {
	return e.Err
}
