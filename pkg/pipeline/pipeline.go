// Package pipeline runs the validate → analyze → level pipeline shared by
// the CLI and the API server.
//
// A [Runner] wraps the pure scheduling packages with caching, logging and
// observability hooks. Results are keyed by a hash of the project's
// canonical encoding, so repeated runs on an unchanged project are served
// from the cache.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, p, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	svg, _, err := runner.Render(ctx, result, pipeline.FormatSVG)
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/leveler/pkg/cpm"
	errs "github.com/matzehuels/leveler/pkg/errors"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/schedule"
)

// Artifact formats produced by Runner.Render.
const (
	FormatSVG   = "svg"
	FormatPDF   = "pdf"
	FormatPNG   = "png"
	FormatDOT   = "dot"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatGantt = "gantt"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPDF:   true,
	FormatPNG:   true,
	FormatDOT:   true,
	FormatJSON:  true,
	FormatCSV:   true,
	FormatGantt: true,
}

// ValidateFormat returns an INVALID_FORMAT error if format is not supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported output format %q", format)
	}
	return nil
}

// ValidateFormats returns an error if any format is not supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	// StrictResources rejects tasks that require resources the project does
	// not declare.
	StrictResources bool `json:"strict_resources,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Stats describes a pipeline run.
type Stats struct {
	TaskCount     int           `json:"task_count"`
	ResourceCount int           `json:"resource_count"`
	DelayedTasks  int           `json:"delayed_tasks"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Result is the output of Runner.Execute.
type Result struct {
	Project      project.Project          `json:"-"`
	Schedule     []schedule.ScheduledTask `json:"-"`
	Duration     int                      `json:"projectDuration"`
	Makespan     int                      `json:"makespan"`
	CriticalPath []string                 `json:"criticalPath"`
	ProjectHash  string                   `json:"projectHash"`
	Stats        Stats                    `json:"stats"`
	CacheHit     bool                     `json:"cacheHit"`
}

// Timing returns the CPM timing of every scheduled task.
func (r *Result) Timing() map[string]cpm.TaskTiming {
	out := make(map[string]cpm.TaskTiming, len(r.Schedule))
	for _, t := range r.Schedule {
		out[t.ID] = t.TaskTiming
	}
	return out
}

// Delayed returns the IDs of tasks that leveling moved past their earliest
// start, in placement order.
func (r *Result) Delayed() []string {
	var ids []string
	for _, t := range r.Schedule {
		if t.Delay() > 0 {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Task returns the scheduled task with id.
func (r *Result) Task(id string) (schedule.ScheduledTask, bool) {
	i := slices.IndexFunc(r.Schedule, func(t schedule.ScheduledTask) bool { return t.ID == id })
	if i < 0 {
		return schedule.ScheduledTask{}, false
	}
	return r.Schedule[i], true
}
