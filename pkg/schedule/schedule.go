package schedule

import (
	"slices"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/cpm"
	"github.com/matzehuels/leveler/pkg/project"
)

// Level computes the CPM timing of p and places every task at its earliest
// conflict-free slot. The returned tasks are in placement order: ascending
// earliest start, ties in input order.
//
// Errors from CPM (CYCLE_DETECTED, UNKNOWN_DEPENDENCY, INVALID_DURATION,
// DUPLICATE_TASK) are returned unchanged and no schedule is produced.
func Level(p project.Project) ([]ScheduledTask, error) {
	res, err := cpm.Analyze(p.Tasks)
	if err != nil {
		return nil, err
	}
	return Place(p, res.Timing), nil
}

// Place levels p's tasks using precomputed CPM timing. timing must contain an
// entry for every task in p.
func Place(p project.Project, timing map[string]cpm.TaskTiming) []ScheduledTask {
	cal := calendar.New(p.StartDate, p.SkipWeekends)

	order := make([]int, len(p.Tasks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return timing[p.Tasks[a].ID].EarliestStart - timing[p.Tasks[b].ID].EarliestStart
	})

	usage := newOccupancy()
	out := make([]ScheduledTask, 0, len(p.Tasks))
	for _, i := range order {
		task := p.Tasks[i].Clone()
		ts := timing[task.ID]
		resources := uniqueResources(task.RequiredResources)

		start := ts.EarliestStart
		for !usage.free(resources, start, task.DurationDays) {
			start = usage.nextCandidate(resources, start, task.DurationDays)
		}
		usage.book(resources, start, task.DurationDays)

		end := start + task.DurationDays
		out = append(out, ScheduledTask{
			Task:       task,
			TaskTiming: ts,
			StartSlot:  start,
			EndSlot:    end,
			StartDate:  cal.DateAt(start),
			EndDate:    cal.DateAt(end),
		})
	}
	return out
}

func uniqueResources(rs []string) []string {
	if len(rs) < 2 {
		return rs
	}
	out := slices.Clone(rs)
	slices.Sort(out)
	return slices.Compact(out)
}

// Makespan returns the largest EndSlot of tasks, or 0 when tasks is empty.
// Under resource contention it can exceed the CPM project duration.
func Makespan(tasks []ScheduledTask) int {
	span := 0
	for _, t := range tasks {
		span = max(span, t.EndSlot)
	}
	return span
}

// Conflicts returns every pair of tasks that hold the same resource during
// an overlapping window, reporting the first shared slot. A schedule produced
// by Level has no conflicts.
func Conflicts(tasks []ScheduledTask) []Conflict {
	byResource := make(map[string][]int)
	var resources []string
	for i, t := range tasks {
		for _, r := range uniqueResources(t.RequiredResources) {
			if _, ok := byResource[r]; !ok {
				resources = append(resources, r)
			}
			byResource[r] = append(byResource[r], i)
		}
	}

	var out []Conflict
	for _, r := range resources {
		idx := byResource[r]
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				x, y := tasks[idx[a]], tasks[idx[b]]
				lo, hi := max(x.StartSlot, y.StartSlot), min(x.EndSlot, y.EndSlot)
				if lo < hi {
					out = append(out, Conflict{Resource: r, Slot: lo, First: x.ID, Second: y.ID})
				}
			}
		}
	}
	return out
}
