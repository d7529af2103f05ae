package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	projectFlags
	output   string // output file, "-" for stdout
	format   string // overrides the format implied by output
	detailed bool   // show timing in graph nodes
	scale    float64
	noCache  bool
}

// renderCommand creates the render command for drawing a schedule.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{detailed: true, scale: 2}

	cmd := &cobra.Command{
		Use:   "render [project]",
		Short: "Render the dependency graph or timeline of a schedule",
		Long: `Render the dependency graph or timeline of a schedule.

The format follows the output extension: .svg, .pdf, .png and .dot draw the
dependency graph with the critical path highlighted; .json and .csv export
the schedule; .txt writes the Gantt timeline. Without -o an SVG is written
next to the project file.

Rendered artifacts are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(opts.output, opts.format)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], format, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <project>.svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, pdf, png, dot, json, csv, gantt")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", opts.detailed, "show durations and slack in graph nodes")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// outputFormat picks the artifact format from an explicit flag or the
// output extension.
func outputFormat(output, explicit string) (string, error) {
	format := explicit
	if format == "" {
		switch ext := strings.TrimPrefix(filepath.Ext(output), "."); ext {
		case "":
			format = pipeline.FormatSVG
		case "txt":
			format = pipeline.FormatGantt
		default:
			format = strings.ToLower(ext)
		}
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// outputPath derives the output file from the input when none is given.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	ext := format
	if format == pipeline.FormatGantt {
		ext = "txt"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
}

func (c *CLI) runRender(ctx context.Context, input, format string, opts renderOpts) error {
	p, err := opts.load(input, time.Now())
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, p, opts.options(c.Logger))
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	data, cacheHit, err := runner.RenderWithOptions(ctx, result, format, pipeline.RenderOptions{
		Detailed: opts.detailed,
		Scale:    opts.scale,
	})
	spinner.Stop()
	if err != nil {
		c.printError("Render failed")
		return fmt.Errorf("render %s: %w", format, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(opts.output, input, format)
	if err := writeOutput(c.Out, path, data); err != nil {
		return err
	}
	if path == "-" {
		return nil
	}

	c.printSuccess("Rendered %s", format)
	c.printFile(path)
	c.printStats(result.Stats.TaskCount, result.Stats.ResourceCount, cacheHit)
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
