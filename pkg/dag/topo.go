package dag

// TopoSort returns the node IDs of g in topological order using Kahn's
// algorithm: every predecessor precedes all of its successors.
//
// Ties between nodes that are ready at the same time are broken by discovery
// order. The initial queue follows node insertion order; nodes released by a
// predecessor are appended in that predecessor's edge insertion order. The
// same graph always yields the same order.
//
// If the graph contains a cycle, the nodes on (or behind) the cycle never
// reach zero in-degree and TopoSort returns ErrGraphHasCycle with a nil
// order.
//
// Time complexity is O(V + E).
func TopoSort(g *DAG) ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	queue := make([]string, 0, len(g.order))

	for _, id := range g.order {
		degree := len(g.incoming[id])
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, succ := range g.outgoing[curr] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, ErrGraphHasCycle
	}
	return order, nil
}
