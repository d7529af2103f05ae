package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/render/gantt"
)

// cpmCommand creates the cpm command, which prints critical path timing
// without leveling.
func (c *CLI) cpmCommand() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "cpm [project]",
		Short: "Compute the critical path of a project",
		Long: `Compute the critical path of a project.

Prints the minimum project duration, the zero-slack tasks in dependency
order, and the earliest/latest start and finish of every task. Resources are
ignored; use 'schedule' to level them.

The project may be JSON, YAML, TOML or CSV (chosen by file extension).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCPM(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runCPM(ctx context.Context, input string, flags projectFlags) error {
	p, err := flags.load(input, time.Now())
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	res, err := runner.Analyze(ctx, p, flags.options(c.Logger))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d tasks", len(p.Tasks)))

	c.printSuccess("Critical path computed")
	c.printKeyValue("Duration", fmt.Sprintf("%d days", res.Duration))
	c.printKeyValue("Critical", StyleCritical.Render(strings.Join(res.CriticalPath, " "+iconArrow+" ")))
	c.printNewline()
	fmt.Fprintln(c.Out, gantt.TimingTable(p.Tasks, res.Timing))
	c.printNewline()
	c.printNextStep("Level resources", appName+" schedule "+input)
	return nil
}
