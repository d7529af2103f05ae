// Package cli implements the leveler command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/buildinfo"
	"github.com/matzehuels/leveler/pkg/cache"
	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/project"

	errs "github.com/matzehuels/leveler/pkg/errors"
	pkgio "github.com/matzehuels/leveler/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "leveler"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Logs go to the logger's writer.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Leveler schedules projects under resource constraints",
		Long: `Leveler computes the critical path of a task graph and levels the schedule
so that no resource is booked twice on the same day, then maps the result
onto calendar dates.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.cpmCommand())
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/leveler/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Project Loading
// =============================================================================

// projectFlags are the calendar overrides shared by commands that read a
// project file.
type projectFlags struct {
	start        string
	skipWeekends bool
	strict       bool
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start date YYYY-MM-DD (default: file value, else today)")
	cmd.Flags().BoolVar(&f.skipWeekends, "skip-weekends", false, "do not schedule work on Saturdays and Sundays; a weekend start moves to the next Monday")
	cmd.Flags().BoolVar(&f.strict, "strict-resources", false, "reject tasks that require undeclared resources")
}

// load reads the project at path and applies the flag overrides.
func (f *projectFlags) load(path string, today time.Time) (project.Project, error) {
	p, err := pkgio.ReadProjectFile(path)
	if err != nil {
		return project.Project{}, fmt.Errorf("load project %s: %w", path, err)
	}
	if f.start != "" {
		day, err := calendar.ParseDate(f.start)
		if err != nil {
			return project.Project{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "--start %q is not YYYY-MM-DD", f.start)
		}
		p.StartDate = day
	}
	if f.skipWeekends {
		p.SkipWeekends = true
	}
	return p.WithStartDate(calendar.Truncate(today)), nil
}

func (f *projectFlags) options(logger *log.Logger) pipeline.Options {
	return pipeline.Options{StrictResources: f.strict, Logger: logger}
}
