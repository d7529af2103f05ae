package schedule

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/cpm"
	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
)

// friday is 2025-01-03.
var friday = time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

func byID(tasks []ScheduledTask) map[string]ScheduledTask {
	m := make(map[string]ScheduledTask, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestLevel_NoContention(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "A", DurationDays: 3, RequiredResources: []string{"DS"}},
			{ID: "B", DurationDays: 2, DependsOn: []string{"A"}, RequiredResources: []string{"BE"}},
			{ID: "C", DurationDays: 4, DependsOn: []string{"A"}, RequiredResources: []string{"FE"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)
	require.Len(t, out, 3)

	got := byID(out)
	assert.Equal(t, 0, got["A"].StartSlot)
	assert.Equal(t, 3, got["B"].StartSlot)
	assert.Equal(t, 3, got["C"].StartSlot)
	assert.Equal(t, 2, got["B"].Slack)
	assert.True(t, got["C"].Critical)
	assert.Equal(t, 7, Makespan(out))
	assert.Equal(t, []string{"A", "B", "C"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestLevel_ContentionDelaysSecondTask(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "D", DurationDays: 3, RequiredResources: []string{"FE"}},
			{ID: "E", DurationDays: 3, RequiredResources: []string{"FE"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, 0, got["D"].StartSlot)
	assert.Equal(t, 3, got["E"].StartSlot)
	assert.Equal(t, 6, got["E"].EndSlot)
	assert.Equal(t, 3, got["E"].Delay())
	assert.Empty(t, Conflicts(out))
}

func TestLevel_WeekendMapping(t *testing.T) {
	p := project.Project{
		StartDate:    friday,
		SkipWeekends: true,
		Tasks:        []project.Task{{ID: "A", DurationDays: 3}},
	}

	out, err := Level(p)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "2025-01-03", calendar.FormatDate(out[0].StartDate))
	assert.Equal(t, "2025-01-08", calendar.FormatDate(out[0].EndDate))
	assert.Equal(t, time.Wednesday, out[0].EndDate.Weekday())
}

func TestLevel_CalendarDays(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks:     []project.Task{{ID: "A", DurationDays: 3}},
	}

	out, err := Level(p)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", calendar.FormatDate(out[0].EndDate))
}

func TestLevel_PlacementUsesCPMEarliestStart(t *testing.T) {
	// B is pushed behind A on FE. C depends on B but is placed from its CPM
	// earliest start; a resource delay is not propagated to successors.
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "A", DurationDays: 4, RequiredResources: []string{"FE"}},
			{ID: "B", DurationDays: 2, RequiredResources: []string{"FE", "BE"}},
			{ID: "C", DurationDays: 1, DependsOn: []string{"B"}, RequiredResources: []string{"BE"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, 0, got["A"].StartSlot)
	assert.Equal(t, 4, got["B"].StartSlot)
	// C's CPM earliest start is 2; BE is held by B during [4,6).
	assert.Equal(t, 2, got["C"].EarliestStart)
	assert.Equal(t, 2, got["C"].StartSlot)
	assert.Empty(t, Conflicts(out))
}

func TestLevel_FitsIntoGap(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "early", DurationDays: 2, RequiredResources: []string{"R"}},
			{ID: "gate", DurationDays: 5},
			{ID: "late", DurationDays: 2, DependsOn: []string{"gate"}, RequiredResources: []string{"R"}},
			{ID: "small", DurationDays: 3, RequiredResources: []string{"R"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, 0, got["early"].StartSlot)
	// small (ES 0) is placed before late (ES 5) and takes [2,5).
	assert.Equal(t, 2, got["small"].StartSlot)
	assert.Equal(t, 5, got["late"].StartSlot)
	assert.Empty(t, Conflicts(out))
}

func TestLevel_ZeroDurationMilestone(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "work", DurationDays: 3, RequiredResources: []string{"FE"}},
			{ID: "kickoff", DurationDays: 0, RequiredResources: []string{"FE"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, 0, got["kickoff"].StartSlot)
	assert.Equal(t, 0, got["kickoff"].EndSlot)
	assert.True(t, got["kickoff"].StartDate.Equal(got["kickoff"].EndDate))
	assert.Equal(t, 0, got["work"].StartSlot)
}

func TestLevel_TieBreakKeepsInputOrder(t *testing.T) {
	tasks := []project.Task{
		{ID: "z", DurationDays: 1, RequiredResources: []string{"R"}},
		{ID: "a", DurationDays: 1, RequiredResources: []string{"R"}},
		{ID: "m", DurationDays: 1, RequiredResources: []string{"R"}},
	}

	for i := 0; i < 10; i++ {
		out, err := Level(project.Project{StartDate: friday, Tasks: tasks})
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a", "m"}, []string{out[0].ID, out[1].ID, out[2].ID})
		assert.Equal(t, []int{0, 1, 2}, []int{out[0].StartSlot, out[1].StartSlot, out[2].StartSlot})
	}
}

func TestLevel_DuplicateResourceEntry(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "a", DurationDays: 2, RequiredResources: []string{"R", "R"}},
			{ID: "b", DurationDays: 2, RequiredResources: []string{"R"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)
	assert.Equal(t, 2, byID(out)["b"].StartSlot)
}

func TestLevel_Errors(t *testing.T) {
	tests := []struct {
		name  string
		tasks []project.Task
		code  errs.Code
	}{
		{
			name: "cycle",
			tasks: []project.Task{
				{ID: "A", DurationDays: 1, DependsOn: []string{"B"}},
				{ID: "B", DurationDays: 1, DependsOn: []string{"A"}},
			},
			code: errs.ErrCodeCycleDetected,
		},
		{
			name:  "unknown dependency",
			tasks: []project.Task{{ID: "A", DependsOn: []string{"nope"}}},
			code:  errs.ErrCodeUnknownDependency,
		},
		{
			name:  "negative duration",
			tasks: []project.Task{{ID: "A", DurationDays: -1}},
			code:  errs.ErrCodeInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Level(project.Project{StartDate: friday, Tasks: tt.tasks})
			assert.True(t, errs.Is(err, tt.code), "got %v", err)
			assert.Nil(t, out)
		})
	}
}

func TestLevel_Empty(t *testing.T) {
	out, err := Level(project.Project{StartDate: friday})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, Makespan(out))
}

func TestLevel_DoesNotMutateInput(t *testing.T) {
	p := project.Project{
		StartDate: friday,
		Tasks: []project.Task{
			{ID: "a", DurationDays: 1, RequiredResources: []string{"R"}},
		},
	}

	out, err := Level(p)
	require.NoError(t, err)
	out[0].RequiredResources[0] = "X"
	assert.Equal(t, "R", p.Tasks[0].RequiredResources[0])
}

func TestLevel_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	resources := []string{"FE", "BE", "DS", "QA"}

	for i := 0; i < 60; i++ {
		p := project.Project{
			StartDate:    friday.AddDate(0, 0, rng.IntN(7)),
			SkipWeekends: rng.IntN(2) == 0,
			Tasks:        randomTasks(rng, 1+rng.IntN(20), resources),
		}

		out, err := Level(p)
		require.NoError(t, err, "case %d", i)
		require.Len(t, out, len(p.Tasks))

		assert.Empty(t, Conflicts(out), "case %d", i)

		got := byID(out)
		for _, st := range out {
			assert.GreaterOrEqual(t, st.StartSlot, st.EarliestStart, "case %d task %s", i, st.ID)
			assert.Equal(t, st.StartSlot+st.DurationDays, st.EndSlot, "case %d task %s", i, st.ID)
			if p.SkipWeekends {
				assert.False(t, calendar.IsWeekend(st.StartDate), "case %d task %s start on weekend", i, st.ID)
				assert.False(t, calendar.IsWeekend(st.EndDate), "case %d task %s end on weekend", i, st.ID)
			}
			assert.Contains(t, got, st.ID)
		}

		for k := 1; k < len(out); k++ {
			assert.LessOrEqual(t, out[k-1].EarliestStart, out[k].EarliestStart, "case %d placement order", i)
		}

		assert.Equal(t, naivePlacement(t, p), startSlots(out), "case %d", i)
	}
}

// naivePlacement re-runs the leveling loop advancing one slot at a time over
// a dense slot×resource table.
func naivePlacement(t *testing.T, p project.Project) map[string]int {
	t.Helper()
	res, err := cpm.Analyze(p.Tasks)
	require.NoError(t, err)

	order := make([]project.Task, len(p.Tasks))
	copy(order, p.Tasks)
	// insertion sort keeps ties stable
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && res.Timing[order[j].ID].EarliestStart < res.Timing[order[j-1].ID].EarliestStart; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	used := map[int]map[string]bool{}
	out := map[string]int{}
	for _, task := range order {
		start := res.Timing[task.ID].EarliestStart
		for {
			ok := true
			for d := start; d < start+task.DurationDays && ok; d++ {
				for _, r := range task.RequiredResources {
					if used[d][r] {
						ok = false
						break
					}
				}
			}
			if ok {
				break
			}
			start++
		}
		for d := start; d < start+task.DurationDays; d++ {
			if used[d] == nil {
				used[d] = map[string]bool{}
			}
			for _, r := range task.RequiredResources {
				used[d][r] = true
			}
		}
		out[task.ID] = start
	}
	return out
}

func startSlots(tasks []ScheduledTask) map[string]int {
	out := make(map[string]int, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t.StartSlot
	}
	return out
}

func randomTasks(rng *rand.Rand, n int, resources []string) []project.Task {
	tasks := make([]project.Task, n)
	for i := range tasks {
		tasks[i] = project.Task{ID: fmt.Sprintf("t%02d", i), DurationDays: rng.IntN(5)}
		for j := 0; j < i; j++ {
			if rng.IntN(5) == 0 {
				tasks[i].DependsOn = append(tasks[i].DependsOn, tasks[j].ID)
			}
		}
		for _, r := range resources {
			if rng.IntN(3) == 0 {
				tasks[i].RequiredResources = append(tasks[i].RequiredResources, r)
			}
		}
	}
	return tasks
}

func TestConflicts_DetectsOverlap(t *testing.T) {
	tasks := []ScheduledTask{
		{Task: project.Task{ID: "a", RequiredResources: []string{"R"}}, StartSlot: 0, EndSlot: 3},
		{Task: project.Task{ID: "b", RequiredResources: []string{"R"}}, StartSlot: 2, EndSlot: 4},
		{Task: project.Task{ID: "c", RequiredResources: []string{"R"}}, StartSlot: 4, EndSlot: 5},
	}

	got := Conflicts(tasks)
	require.Len(t, got, 1)
	assert.Equal(t, Conflict{Resource: "R", Slot: 2, First: "a", Second: "b"}, got[0])
}

func TestOccupies(t *testing.T) {
	st := ScheduledTask{StartSlot: 2, EndSlot: 4}
	assert.False(t, st.Occupies(1))
	assert.True(t, st.Occupies(2))
	assert.True(t, st.Occupies(3))
	assert.False(t, st.Occupies(4))
}
