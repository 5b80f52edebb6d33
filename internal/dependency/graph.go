// internal/dependency/graph.go
package dependency

// NodeID is the unique identifier for a node inside a dependency graph. For
// recipes it is the declared package name.
type NodeID string

// Node represents a recipe together with the names it depends on at build or
// run time.
//
// DependsOn may mention packages that are not part of the graph (python,
// compilers, anything provided by a channel). Those edges are ignored when the
// graph is ordered.
type Node struct {
	ID           NodeID
	FriendlyName string
	DependsOn    []NodeID
}

// Graph is a very small helper to answer dependency queries.  It is *not*
// thread-safe by itself; callers must synchronise if they write concurrently.
type Graph struct {
	nodes map[NodeID]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	copied := n
	copied.DependsOn = append([]NodeID(nil), n.DependsOn...)
	g.nodes[n.ID] = &copied
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// InSetDependencies returns the immediate dependencies of id that are nodes of
// this graph, de-duplicated, in declaration order. A node never depends on
// itself through this view.
func (g *Graph) InSetDependencies(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	seen := make(map[NodeID]bool, len(n.DependsOn))
	var res []NodeID
	for _, dep := range n.DependsOn {
		if dep == id || seen[dep] {
			continue
		}
		if _, member := g.nodes[dep]; !member {
			continue
		}
		seen[dep] = true
		res = append(res, dep)
	}
	return res
}

// TopologicalSort orders the graph so every node comes after all of its
// in-set dependencies. Ties are broken by name, so the result is
// deterministic.
func (g *Graph) TopologicalSort() ([]NodeID, error) {
	deps := make(map[string][]string, len(g.nodes))
	for id := range g.nodes {
		var names []string
		for _, dep := range g.InSetDependencies(id) {
			names = append(names, string(dep))
		}
		deps[string(id)] = names
	}
	order, err := Resolve(deps)
	if err != nil {
		return nil, err
	}
	ids := make([]NodeID, len(order))
	for i, name := range order {
		ids[i] = NodeID(name)
	}
	return ids, nil
}
