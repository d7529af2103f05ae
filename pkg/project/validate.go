package project

import (
	errs "github.com/matzehuels/leveler/pkg/errors"
)

// Duration limits keep slot arithmetic far from integer overflow and keep
// every schedule within a few thousand years of its start date.
const (
	// MaxDurationDays is the longest single task.
	MaxDurationDays = 100_000

	// MaxTotalDurationDays bounds the sum of all durations, which is also
	// the largest makespan leveling can produce.
	MaxTotalDurationDays = 1_000_000
)

// ValidateOptions tunes [Validate].
type ValidateOptions struct {
	// StrictResources rejects tasks whose RequiredResources name a resource
	// missing from the declared set.
	StrictResources bool

	// Resources is the declared resource set used when StrictResources is on.
	Resources []string
}

// Validate checks tasks in input order and returns the first problem found.
// It never mutates tasks.
func Validate(tasks []Task, opts ValidateOptions) error {
	seen := make(map[string]struct{}, len(tasks))
	total := 0
	for _, t := range tasks {
		if err := errs.ValidateTaskID(t.ID); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return errs.New(errs.ErrCodeDuplicateTask, "task %q is defined more than once", t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.DurationDays < 0 {
			return errs.New(errs.ErrCodeInvalidDuration, "task %q has negative duration %d", t.ID, t.DurationDays)
		}
		if t.DurationDays > MaxDurationDays {
			return errs.New(errs.ErrCodeInvalidDuration, "task %q lasts %d days, more than the limit of %d",
				t.ID, t.DurationDays, MaxDurationDays)
		}
		if total += t.DurationDays; total > MaxTotalDurationDays {
			return errs.New(errs.ErrCodeInvalidDuration, "project durations add up to more than %d days at task %q",
				MaxTotalDurationDays, t.ID)
		}
	}

	var declared map[string]struct{}
	if opts.StrictResources {
		declared = make(map[string]struct{}, len(opts.Resources))
		for _, r := range opts.Resources {
			declared[r] = struct{}{}
		}
	}

	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := seen[dep]; !ok {
				return errs.New(errs.ErrCodeUnknownDependency, "task %q depends on unknown task %q", t.ID, dep)
			}
		}
		for _, r := range t.RequiredResources {
			if err := errs.ValidateResourceName(r); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "task %q", t.ID)
			}
			if declared == nil {
				continue
			}
			if _, ok := declared[r]; !ok {
				return errs.New(errs.ErrCodeUnknownResource, "task %q requires undeclared resource %q", t.ID, r)
			}
		}
	}
	return nil
}

// ValidateProject validates p's tasks, enforcing declared resources when
// strict is true.
func ValidateProject(p Project, strict bool) error {
	if p.StartDate.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "project start date is required")
	}
	return Validate(p.Tasks, ValidateOptions{StrictResources: strict, Resources: p.Resources})
}
