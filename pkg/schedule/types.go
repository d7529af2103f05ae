package schedule

import (
	"time"

	"github.com/matzehuels/leveler/pkg/cpm"
	"github.com/matzehuels/leveler/pkg/project"
)

// ScheduledTask is a task with its CPM timing and its leveled placement.
// EndSlot is exclusive: the task occupies [StartSlot, EndSlot).
type ScheduledTask struct {
	project.Task
	cpm.TaskTiming

	StartSlot int
	EndSlot   int
	StartDate time.Time
	EndDate   time.Time
}

// Delay returns how many slots resource contention pushed the task past its
// earliest start.
func (s ScheduledTask) Delay() int { return s.StartSlot - s.EarliestStart }

// Occupies reports whether the task holds its resources during slot.
func (s ScheduledTask) Occupies(slot int) bool {
	return slot >= s.StartSlot && slot < s.EndSlot
}

// Conflict describes two tasks holding the same resource in the same slot.
type Conflict struct {
	Resource string
	Slot     int
	First    string
	Second   string
}
