package project

import (
	"fmt"

	"github.com/matzehuels/leveler/pkg/dag"
)

// BuildGraph builds the dependency graph of tasks. Nodes are added in task
// order and edges in DependsOn order, which fixes the tie-breaking of
// [dag.TopoSort]. Call [Validate] first: an unknown dependency surfaces here
// only as a wrapped [dag.ErrUnknownSourceNode].
func BuildGraph(tasks []Task) (*dag.DAG, error) {
	g := dag.New()
	for _, t := range tasks {
		if err := g.AddNode(dag.Node{ID: t.ID, Label: t.Name}); err != nil {
			return nil, fmt.Errorf("add task %q: %w", t.ID, err)
		}
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if err := g.AddEdge(dag.Edge{From: dep, To: t.ID}); err != nil {
				return nil, fmt.Errorf("add dependency %q → %q: %w", dep, t.ID, err)
			}
		}
	}
	return g, nil
}
