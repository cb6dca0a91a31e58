package dagflow

import "github.com/taskweave/dagflow/pkg/dagflow/registry"

// graphs is the process-level catalog trigger schedulers consult to
// find assembled graphs.
var graphs = registry.New()

// RegisterGraph adds a graph to the process-level catalog so external
// schedulers can discover it by id.
func RegisterGraph(g *Graph) error {
	return graphs.Register(g)
}

// LookupGraph returns a graph from the process-level catalog.
func LookupGraph(id string) (*Graph, bool) {
	entry, ok := graphs.Get(id)
	if !ok {
		return nil, false
	}
	g, ok := entry.(*Graph)
	return g, ok
}

// DeregisterGraph removes a graph from the process-level catalog.
func DeregisterGraph(id string) {
	graphs.Deregister(id)
}

// RegisteredGraphIDs returns the ids in the process-level catalog,
// sorted.
func RegisteredGraphIDs() []string {
	return graphs.IDs()
}
