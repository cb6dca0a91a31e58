package dagflow

import (
	"context"
	"sync"

	"github.com/taskweave/dagflow/pkg/dagflow/config"
)

// Test operator types used across tests

// testOp is a plain operator with default lifecycle hooks.
type testOp struct {
	*BaseNode
}

func newTestOp(opts ...NodeOption) *testOp {
	op := &testOp{}
	op.BaseNode = NewBaseNode(append(opts, WithOwner(op))...)
	return op
}

// triggerOp marks itself as an external entry point.
type triggerOp struct {
	*BaseNode
}

func (t *triggerOp) TriggerNode() {}

func newTriggerOp(opts ...NodeOption) *triggerOp {
	op := &triggerOp{}
	op.BaseNode = NewBaseNode(append(opts, WithOwner(op))...)
	return op
}

// hookOp records lifecycle hook invocations and can fail on demand.
type hookOp struct {
	*BaseNode

	mu        sync.Mutex
	afterErr  error
	afterRan  bool
	beforeRan bool
}

func newHookOp(afterErr error, opts ...NodeOption) *hookOp {
	op := &hookOp{afterErr: afterErr}
	op.BaseNode = NewBaseNode(append(opts, WithOwner(op))...)
	return op
}

func (h *hookOp) BeforeRun(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.beforeRan = true
	return nil
}

func (h *hookOp) AfterRun(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterRan = true
	return h.afterErr
}

func (h *hookOp) ranAfter() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.afterRan
}

// testApp is a minimal application handle.
type testApp struct {
	components map[string]any
}

func (a *testApp) Component(name string) any {
	return a.components[name]
}

// configWithPool returns default settings with the given pool size.
func configWithPool(n int) config.Settings {
	cfg := config.Default()
	cfg.PoolSize = n
	return cfg
}

// nodeIDs extracts the ids from a node slice.
func nodeIDs(nodes []Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID())
	}
	return ids
}
