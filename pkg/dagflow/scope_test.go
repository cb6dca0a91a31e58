package dagflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScope_EnterExitCurrent verifies basic stack behavior.
func TestScope_EnterExitCurrent(t *testing.T) {
	s := NewScope()
	assert.Nil(t, s.Current())

	g1 := New("g1", WithGraphScope(s))
	g2 := New("g2", WithGraphScope(s))

	s.Enter(g1)
	assert.Same(t, g1, s.Current())

	s.Enter(g2)
	assert.Same(t, g2, s.Current())
	assert.Equal(t, 2, s.Depth())

	s.Exit()
	assert.Same(t, g1, s.Current())

	s.Exit()
	assert.Nil(t, s.Current())
}

// TestScope_ExitEmpty verifies that exiting an empty scope is a no-op.
func TestScope_ExitEmpty(t *testing.T) {
	s := NewScope()
	s.Exit()
	assert.Nil(t, s.Current())
	assert.Equal(t, 0, s.Depth())
}

// TestScope_SetAppOnce verifies the application handle is set-once.
func TestScope_SetAppOnce(t *testing.T) {
	s := NewScope()
	first := &testApp{}
	second := &testApp{}

	s.SetApp(first)
	assert.Same(t, first, s.App())

	// Second set is ignored, not fatal.
	s.SetApp(second)
	assert.Same(t, first, s.App())
}

// TestScope_SetExecutorOnce verifies the executor handle is set-once.
func TestScope_SetExecutorOnce(t *testing.T) {
	s := NewScope()
	first := NewWorkerPool(1)
	defer first.Close()
	second := NewWorkerPool(1)
	defer second.Close()

	s.SetExecutor(first)
	assert.Same(t, Executor(first), s.Executor())

	s.SetExecutor(second)
	assert.Same(t, Executor(first), s.Executor())
}

// TestScopeFromContext verifies context binding and the default
// fallback.
func TestScopeFromContext(t *testing.T) {
	assert.Same(t, Default(), ScopeFromContext(context.Background()))
	assert.Same(t, Default(), ScopeFromContext(nil)) //nolint:staticcheck // nil ctx fallback is part of the contract

	s := NewScope()
	ctx := ContextWithScope(context.Background(), s)
	assert.Same(t, s, ScopeFromContext(ctx))
}

// TestScope_ConcurrentConstructionIsolation verifies that two
// concurrently-scheduled constructions with their own scopes never
// observe each other's current graph.
func TestScope_ConcurrentConstructionIsolation(t *testing.T) {
	const rounds = 50

	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)

	build := func(id string) {
		defer wg.Done()

		s := NewScope()
		ctx := ContextWithScope(context.Background(), s)
		g := New(id, WithGraphScope(s))
		defer g.Open()()

		for i := 0; i < 10; i++ {
			observed := ScopeFromContext(ctx).Current()
			if observed != g {
				errs <- assert.AnError
				return
			}
			newTestOp(WithContext(ctx))
		}
	}

	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go build("left")
		go build("right")
	}
	wg.Wait()
	close(errs)

	assert.Empty(t, errs, "a construction observed a sibling's current graph")
}

// TestScope_DefaultSequentialMode verifies plain top-level
// construction through the process-wide default scope.
func TestScope_DefaultSequentialMode(t *testing.T) {
	g := New("sequential")
	closeScope := g.Open()

	n := newTestOp()
	require.Same(t, g, n.Graph())

	closeScope()
	assert.Nil(t, Default().Current())

	// Construction after exit leaves the node unbound.
	unbound := newTestOp()
	assert.Nil(t, unbound.Graph())
}

// TestGraph_OpenSymmetricPopOnPanic verifies the scope is popped even
// when construction code inside the scope panics.
func TestGraph_OpenSymmetricPopOnPanic(t *testing.T) {
	s := NewScope()
	g := New("panicky", WithGraphScope(s))

	func() {
		defer func() { _ = recover() }()
		defer g.Open()()
		panic("construction failed")
	}()

	assert.Nil(t, s.Current())
}

// TestGraph_OpenCloseIdempotent verifies the close func pops at most
// once.
func TestGraph_OpenCloseIdempotent(t *testing.T) {
	s := NewScope()
	outer := New("outer", WithGraphScope(s))
	inner := New("inner", WithGraphScope(s))

	closeOuter := outer.Open()
	closeInner := inner.Open()

	closeInner()
	closeInner() // second call must not pop the outer graph
	assert.Same(t, outer, s.Current())

	closeOuter()
	assert.Nil(t, s.Current())
}

// TestConfigureScope verifies settings are applied to a scope.
func TestConfigureScope(t *testing.T) {
	s := NewScope()
	ConfigureScope(s, configWithPool(2))
	require.NotNil(t, s.Executor())

	// Pool size zero leaves the executor unset.
	s2 := NewScope()
	ConfigureScope(s2, configWithPool(0))
	assert.Nil(t, s2.Executor())
}
