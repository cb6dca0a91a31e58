// Package registry provides a thread-safe catalog of assembled graphs
// keyed by id, so trigger schedulers can discover graphs built
// elsewhere in the process.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Graph is the subset of a graph the catalog needs. dagflow.Graph
// satisfies it.
type Graph interface {
	ID() string
}

// ErrDuplicateID indicates a graph with the same id is already
// registered.
var ErrDuplicateID = errors.New("graph id already registered")

// Catalog is a thread-safe registry of graphs by id.
// It uses sync.RWMutex for read-heavy scheduler lookups.
type Catalog struct {
	mu     sync.RWMutex
	graphs map[string]Graph
}

// New creates a new empty catalog.
func New() *Catalog {
	return &Catalog{
		graphs: make(map[string]Graph),
	}
}

// Register adds a graph to the catalog.
// Registering a second graph under the same id is an error.
func (c *Catalog) Register(g Graph) error {
	if g == nil || g.ID() == "" {
		return errors.New("graph must have an id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.graphs[g.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, g.ID())
	}
	c.graphs[g.ID()] = g
	return nil
}

// Get returns the graph for an id and whether it exists.
func (c *Catalog) Get(id string) (Graph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.graphs[id]
	return g, ok
}

// Deregister removes a graph from the catalog.
func (c *Catalog) Deregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.graphs, id)
}

// IDs returns the registered graph ids, sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.graphs))
	for id := range c.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered graphs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.graphs)
}

// Range iterates over a snapshot of the catalog. If fn returns false,
// iteration stops. Register and Deregister are safe to call during
// iteration.
func (c *Catalog) Range(fn func(Graph) bool) {
	c.mu.RLock()
	snapshot := make([]Graph, 0, len(c.graphs))
	for _, g := range c.graphs {
		snapshot = append(snapshot, g)
	}
	c.mu.RUnlock()

	for _, g := range snapshot {
		if !fn(g) {
			return
		}
	}
}
