// Package dependency orders recipes so that every package is built after the
// packages it depends on.
//
// # Core Concepts
//
// Graph: a small directed graph keyed by package name. Edges point from a
// recipe to the names it lists under its build and run requirements.
//
// Node: one recipe with:
//   - ID: the declared package name
//   - FriendlyName: usually the recipe directory
//   - DependsOn: every requirement name, whether or not it is in the graph
//
// # Ordering Rules
//
//  1. Only dependencies that are members of the graph constrain the order
//  2. A package always appears after all of its in-set dependencies
//  3. Ties are broken alphabetically, so the order is reproducible
//  4. A cycle is reported with the packages that could not be placed
//
// # Usage Example
//
//	graph := dependency.New()
//	graph.AddNode(dependency.Node{ID: "a", DependsOn: []dependency.NodeID{"b", "python"}})
//	graph.AddNode(dependency.Node{ID: "b"})
//
//	order, err := graph.TopologicalSort()
//	// order: ["b", "a"]
//
// The lower level Resolve works on a plain mapping and insists that every
// dependency is itself a key:
//
//	order, err := dependency.Resolve(map[string][]string{
//	    "a": {"b", "c"}, "b": {"c"}, "c": {"d"}, "d": {},
//	})
//	// order: ["d", "c", "b", "a"]
//
// # Error Handling
//
// Resolve returns *UnknownDependencyError, *CyclicDependencyError or
// *OrderingFailedError; all of them can be matched with errors.As.
package dependency
