package project

import (
	"slices"
	"time"
)

// Task is one unit of work in a project.
type Task struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	DurationDays      int      `json:"durationDays"`
	DependsOn         []string `json:"dependsOn,omitempty"`
	RequiredResources []string `json:"requiredResources,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.DependsOn = slices.Clone(t.DependsOn)
	t.RequiredResources = slices.Clone(t.RequiredResources)
	return t
}

// Project is the input of a scheduling run.
//
// Resources is advisory: it documents the resources a project expects but is
// only enforced when [ValidateOptions.StrictResources] is set.
type Project struct {
	StartDate    time.Time
	Resources    []string
	SkipWeekends bool
	Tasks        []Task
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.Resources = slices.Clone(p.Resources)
	out.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// TaskIndex maps each task ID to its position in tasks.
// If an ID occurs more than once, the first position wins.
func TaskIndex(tasks []Task) map[string]int {
	idx := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, ok := idx[t.ID]; !ok {
			idx[t.ID] = i
		}
	}
	return idx
}

// ResourcesInUse returns the sorted, de-duplicated union of the resources
// required by tasks.
func ResourcesInUse(tasks []Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.RequiredResources...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// WithStartDate returns p with its start date set to day when p has none.
func (p Project) WithStartDate(day time.Time) Project {
	if p.StartDate.IsZero() {
		p.StartDate = day
	}
	return p
}
