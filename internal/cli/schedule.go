package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/render/gantt"

	pkgio "github.com/matzehuels/leveler/pkg/io"
)

// scheduleOpts holds the flags of the schedule command.
type scheduleOpts struct {
	projectFlags
	output    string
	showGantt bool
	noCache   bool
	refresh   bool
}

// scheduleCommand creates the schedule command.
func (c *CLI) scheduleCommand() *cobra.Command {
	var opts scheduleOpts

	cmd := &cobra.Command{
		Use:   "schedule [project]",
		Short: "Level a project's resources and map it onto calendar dates",
		Long: `Level a project's resources and map it onto calendar dates.

Tasks are placed in order of their earliest start. Each task starts at the
first day from its earliest start on which all of its resources are free for
its whole duration. With -o the schedule is exported as JSON or CSV (chosen by
extension); otherwise a table is printed.

Results are cached locally, keyed by the project contents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSchedule(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "export the schedule to a .json or .csv file")
	cmd.Flags().BoolVar(&opts.showGantt, "gantt", false, "print a Gantt timeline")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached schedule exists")

	return cmd
}

func (c *CLI) runSchedule(ctx context.Context, input string, opts scheduleOpts) error {
	p, err := opts.load(input, time.Now())
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	runOpts := opts.options(c.Logger)
	runOpts.Refresh = opts.refresh
	result, err := runner.Execute(ctx, p, runOpts)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := pkgio.ExportSchedule(opts.output, result.Schedule); err != nil {
			return fmt.Errorf("write output %s: %w", opts.output, err)
		}
	}

	c.printSuccess("Schedule leveled")
	if opts.output != "" {
		c.printFile(opts.output)
	}
	c.printStats(result.Stats.TaskCount, result.Stats.ResourceCount, result.CacheHit)
	c.printKeyValue("Duration", fmt.Sprintf("%d days (critical path)", result.Duration))
	c.printKeyValue("Makespan", fmt.Sprintf("%d days", result.Makespan))
	if len(result.Schedule) > 0 {
		c.printKeyValue("Finish", calendar.FormatDate(finishDate(result)))
	}
	for _, id := range result.Delayed() {
		t, _ := result.Task(id)
		c.printWarning("%s delayed %d days by resource contention", id, t.Delay())
	}

	if opts.output == "" {
		c.printNewline()
		fmt.Fprintln(c.Out, gantt.Table(result.Schedule))
	}
	if opts.showGantt {
		c.printNewline()
		fmt.Fprintln(c.Out, gantt.Gantt(result.Schedule, gantt.Options{ShowDates: true}))
	}

	c.printNewline()
	c.printNextStep("Render", appName+" render "+input)
	return nil
}

// finishDate returns the latest end date of the schedule.
func finishDate(result *pipeline.Result) time.Time {
	var last time.Time
	for _, t := range result.Schedule {
		if t.EndDate.After(last) {
			last = t.EndDate
		}
	}
	return last
}
