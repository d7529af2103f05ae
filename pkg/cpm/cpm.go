// Package cpm implements the Critical Path Method over a project's task
// dependency graph.
//
// [Analyze] orders the tasks with [dag.TopoSort], runs a forward pass to get
// earliest start/finish times and the project duration, then a backward pass
// in reverse order to get latest start/finish times. Slack is LS - ES; a task
// is critical when its slack is zero. All arithmetic is on whole days.
package cpm

import (
	"errors"

	"github.com/matzehuels/leveler/pkg/dag"
	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
)

// Analyze performs critical path analysis on tasks.
//
// Tasks are validated first (see [project.Validate]); a cyclic dependency
// graph fails with code CYCLE_DETECTED and no partial result.
func Analyze(tasks []project.Task) (*Result, error) {
	if err := project.Validate(tasks, project.ValidateOptions{}); err != nil {
		return nil, err
	}

	g, err := project.BuildGraph(tasks)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build dependency graph")
	}

	order, err := dag.TopoSort(g)
	if err != nil {
		if errors.Is(err, dag.ErrGraphHasCycle) {
			return nil, errs.Wrap(errs.ErrCodeCycleDetected, err, "dependency graph is not acyclic")
		}
		return nil, err
	}

	durations := make(map[string]int, len(tasks))
	for _, t := range tasks {
		durations[t.ID] = t.DurationDays
	}

	timing := make(map[string]TaskTiming, len(tasks))

	// Forward pass: ES = max(EF of predecessors), EF = ES + duration
	total := 0
	for _, id := range order {
		es := 0
		for _, pred := range g.Predecessors(id) {
			if ef := timing[pred].EarliestFinish; ef > es {
				es = ef
			}
		}
		ef := es + durations[id]
		timing[id] = TaskTiming{EarliestStart: es, EarliestFinish: ef}
		if ef > total {
			total = ef
		}
	}

	// Backward pass: LF = min(LS of successors), or total for sinks
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		lf := total
		for _, succ := range g.Successors(id) {
			if ls := timing[succ].LatestStart; ls < lf {
				lf = ls
			}
		}

		ts := timing[id]
		ts.LatestFinish = lf
		ts.LatestStart = lf - durations[id]
		ts.Slack = ts.LatestStart - ts.EarliestStart
		ts.Critical = ts.Slack == 0
		timing[id] = ts
	}

	result := &Result{
		Duration: total,
		Timing:   timing,
		Order:    order,
	}
	for _, id := range order {
		if timing[id].Critical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}
	return result, nil
}

// ComputeCriticalPath returns the project duration and the timing of every
// task, keyed by task ID.
func ComputeCriticalPath(tasks []project.Task) (int, map[string]TaskTiming, error) {
	res, err := Analyze(tasks)
	if err != nil {
		return 0, nil, err
	}
	return res.Duration, res.Timing, nil
}
