// Package dag provides a small directed graph used to order project tasks by
// their dependencies.
//
// # Overview
//
// A [DAG] stores nodes and edges in insertion order. Edges point from a
// predecessor to its successor: an edge a → b means "b depends on a", so a
// must be ordered before b.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "design"})
//	g.AddNode(dag.Node{ID: "build"})
//	g.AddEdge(dag.Edge{From: "design", To: "build"})
//
//	order, err := dag.TopoSort(g)
//	if errors.Is(err, dag.ErrGraphHasCycle) {
//	    // no usable order exists
//	}
//
// # Ordering
//
// [TopoSort] implements Kahn's algorithm. When several nodes become ready at
// the same time they are emitted in the order they were discovered: the
// initial frontier follows node insertion order, and successors are visited in
// edge insertion order. The result is therefore reproducible across runs and
// platforms, independent of Go's map iteration order.
//
// # Concurrency
//
// DAG is not safe for concurrent mutation. Concurrent readers are fine once
// the graph is fully built.
package dag
