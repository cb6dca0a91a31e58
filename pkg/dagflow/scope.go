package dagflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taskweave/dagflow/pkg/dagflow/config"
)

// App is the process-wide application handle shared with nodes.
// Concrete runtimes implement it; the core only passes it through.
type App interface {
	// Component returns a named runtime component, or nil if absent.
	Component(name string) any
}

// Scope tracks which graph is currently being built.
//
// Plain sequential construction code uses the process-wide Default
// scope. Concurrently-scheduled construction routines must each create
// their own Scope (NewScope) and carry it explicitly or through a
// context (ContextWithScope), so sibling constructions never observe
// each other's current graph.
//
// A Scope also carries two set-once handles that nodes capture at
// construction time: the application handle and the work-execution
// pool used to offload blocking work.
type Scope struct {
	mu       sync.Mutex
	stack    []*Graph
	app      App
	executor Executor
	logger   *slog.Logger
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{logger: slog.Default()}
}

var defaultScope = NewScope()

// Default returns the process-wide scope used when construction code
// does not carry an explicit scope.
func Default() *Scope {
	return defaultScope
}

// Enter pushes g onto the scope stack, making it the current graph.
// Nested enters are allowed; Exit pops in LIFO order.
func (s *Scope) Enter(g *Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, g)
}

// Exit pops the current graph. Exiting an empty scope is a no-op.
func (s *Scope) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.stack); n > 0 {
		s.stack[n-1] = nil
		s.stack = s.stack[:n-1]
	}
}

// Current returns the innermost entered graph, or nil if the scope is
// empty.
func (s *Scope) Current() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.stack); n > 0 {
		return s.stack[n-1]
	}
	return nil
}

// Depth returns the number of graphs currently entered.
func (s *Scope) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// App returns the application handle, or nil if not set.
func (s *Scope) App() App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

// SetApp sets the application handle. The handle can be set at most
// once; later attempts are logged and ignored.
func (s *Scope) SetApp(app App) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.app != nil {
		s.logger.Warn("application handle already set, ignoring")
		return
	}
	s.app = app
}

// Executor returns the work-execution pool, or nil if not set.
func (s *Scope) Executor() Executor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executor
}

// SetExecutor sets the work-execution pool. The pool can be set at
// most once; later attempts are logged and ignored.
func (s *Scope) SetExecutor(e Executor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.executor != nil {
		s.logger.Warn("executor already set, ignoring")
		return
	}
	s.executor = e
}

// ConfigureScope applies engine settings to a scope. Currently this
// builds the scope's worker pool from cfg.PoolSize.
func ConfigureScope(s *Scope, cfg config.Settings) {
	if cfg.PoolSize > 0 {
		s.SetExecutor(NewWorkerPool(cfg.PoolSize))
	}
}

// scopeKey is the context key for a construction scope.
type scopeKey struct{}

// ContextWithScope binds a scope to a context so construction code
// running inside a scheduled task can resolve its own current graph.
func ContextWithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFromContext returns the scope bound to ctx, or the Default
// scope when ctx carries none.
func ScopeFromContext(ctx context.Context) *Scope {
	if ctx != nil {
		if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
			return s
		}
	}
	return Default()
}
