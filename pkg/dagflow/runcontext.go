package dagflow

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// taskKeySep separates the task name from the key in namespaced
// shared-data entries. It must never appear in ordinary task names or
// keys; the accessors reject it.
const taskKeySep = "___$$$$$$___"

// TaskState describes the task a scheduler is currently driving
// through the graph. The scheduler sets it on the run context before
// invoking each node.
type TaskState struct {
	// NodeID is the node being executed.
	NodeID string
	// TaskName is the node's registered name, empty when unnamed.
	TaskName string
	// Output is the value produced so far, if any.
	Output any
}

// RunContext carries the state of one graph execution: each node's
// recorded output and the namespaced shared key-value data nodes
// exchange outside the normal edges.
//
// A scheduler creates one RunContext per execution and discards it
// after Finish. Reads are safe from many concurrent downstream nodes
// once a value is written; the single-writer-per-key rule is enforced
// by the duplicate-key contract, not by exclusion.
type RunContext struct {
	runID     string
	streaming bool

	mu       sync.RWMutex
	outputs  map[string]any
	nameToID map[string]string
	shared   map[string]any
	current  *TaskState
}

// RunContextOption configures run-context creation.
type RunContextOption func(*RunContext)

// WithRunID sets an explicit run identifier. A uuid is generated when
// absent.
func WithRunID(id string) RunContextOption {
	return func(rc *RunContext) {
		if id != "" {
			rc.runID = id
		}
	}
}

// WithStreaming marks the execution as a streaming-style run.
func WithStreaming() RunContextOption {
	return func(rc *RunContext) { rc.streaming = true }
}

// WithTaskNames sets the task-name to node-id table used by Output and
// the task-scoped shared-data accessors.
func WithTaskNames(names map[string]string) RunContextOption {
	return func(rc *RunContext) {
		for name, id := range names {
			rc.nameToID[name] = id
		}
	}
}

// NewRunContext creates the state for one graph execution.
func NewRunContext(opts ...RunContextOption) *RunContext {
	rc := &RunContext{
		runID:    uuid.New().String(),
		outputs:  make(map[string]any),
		nameToID: make(map[string]string),
		shared:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// NewRun creates a RunContext for one execution of the graph, with the
// task-name table derived from the graph's registered named nodes.
func (g *Graph) NewRun(opts ...RunContextOption) *RunContext {
	g.mu.RLock()
	names := make(map[string]string, len(g.names))
	for name, n := range g.names {
		names[name] = n.base().id
	}
	g.mu.RUnlock()

	return NewRunContext(append([]RunContextOption{WithTaskNames(names)}, opts...)...)
}

// RunID returns the unique identifier of this execution.
func (rc *RunContext) RunID() string { return rc.runID }

// Streaming reports whether this is a streaming-style run.
func (rc *RunContext) Streaming() bool { return rc.streaming }

// CurrentTask returns the task state the scheduler last set, or nil.
func (rc *RunContext) CurrentTask() *TaskState {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.current
}

// SetCurrentTask records the task the scheduler is about to drive.
func (rc *RunContext) SetCurrentTask(t *TaskState) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.current = t
}

// SetOutput records a node's produced output. Outputs are written once
// per node id in normal operation; the scheduler owns that discipline.
func (rc *RunContext) SetOutput(nodeID string, output any) error {
	if nodeID == "" {
		return fmt.Errorf("%w: node id is empty", ErrInvalidArgument)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.outputs[nodeID] = output
	return nil
}

// Output returns the recorded output of the task with the given name.
// An unregistered name is an error, as is a task that has not produced
// an output yet.
func (rc *RunContext) Output(name string) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: task name is empty", ErrInvalidArgument)
	}
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	id, ok := rc.nameToID[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	out, ok := rc.outputs[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %q", ErrNoOutput, name)
	}
	return out, nil
}

// Shared returns the run-global shared value for key and whether it
// is present.
func (rc *RunContext) Shared(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.shared[key]
	return v, ok
}

// PutShared stores a run-global shared value. Writing an existing key
// without overwrite is an error.
func (rc *RunContext) PutShared(key string, value any, overwrite bool) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidArgument)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.shared[key]; ok && !overwrite {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	rc.shared[key] = value
	return nil
}

// TaskShared returns the shared value stored under key in the given
// task's namespace.
func (rc *RunContext) TaskShared(taskName, key string) (any, bool, error) {
	full, err := taskKey(taskName, key)
	if err != nil {
		return nil, false, err
	}
	v, ok := rc.Shared(full)
	return v, ok, nil
}

// PutTaskShared stores a shared value under key in the given task's
// namespace, so two tasks using the same short key never collide.
func (rc *RunContext) PutTaskShared(taskName, key string, value any, overwrite bool) error {
	full, err := taskKey(taskName, key)
	if err != nil {
		return err
	}
	return rc.PutShared(full, value, overwrite)
}

// taskKey flattens (taskName, key) into a single namespaced key.
func taskKey(taskName, key string) (string, error) {
	if taskName == "" {
		return "", fmt.Errorf("%w: task name is empty", ErrInvalidArgument)
	}
	if key == "" {
		return "", fmt.Errorf("%w: key is empty", ErrInvalidArgument)
	}
	if strings.Contains(taskName, taskKeySep) || strings.Contains(key, taskKeySep) {
		return "", fmt.Errorf("%w: %q", ErrReservedSeparator, taskKeySep)
	}
	return taskName + taskKeySep + key, nil
}

// Snapshot is the serializable image of a run context, suitable for
// persistence through a runstore.Store.
type Snapshot struct {
	RunID     string            `json:"run_id"`
	Streaming bool              `json:"streaming"`
	TaskNames map[string]string `json:"task_names,omitempty"`
	Outputs   map[string]any    `json:"outputs,omitempty"`
	Shared    map[string]any    `json:"shared,omitempty"`
}

// Snapshot captures the current run state. The maps are copies; later
// mutations of the run context do not affect the snapshot.
func (rc *RunContext) Snapshot() Snapshot {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	snap := Snapshot{
		RunID:     rc.runID,
		Streaming: rc.streaming,
		TaskNames: make(map[string]string, len(rc.nameToID)),
		Outputs:   make(map[string]any, len(rc.outputs)),
		Shared:    make(map[string]any, len(rc.shared)),
	}
	for k, v := range rc.nameToID {
		snap.TaskNames[k] = v
	}
	for k, v := range rc.outputs {
		snap.Outputs[k] = v
	}
	for k, v := range rc.shared {
		snap.Shared[k] = v
	}
	return snap
}

// NewRunContextFromSnapshot rebuilds a run context from a persisted
// snapshot.
func NewRunContextFromSnapshot(snap Snapshot) *RunContext {
	rc := NewRunContext(WithRunID(snap.RunID), WithTaskNames(snap.TaskNames))
	rc.streaming = snap.Streaming
	for k, v := range snap.Outputs {
		rc.outputs[k] = v
	}
	for k, v := range snap.Shared {
		rc.shared[k] = v
	}
	return rc
}
