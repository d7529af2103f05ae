package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/leveler/pkg/cpm"
	"github.com/matzehuels/leveler/pkg/project"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds duration, earliest/latest start and slack to labels.
	Detailed bool

	// LeftToRight lays dependencies out horizontally instead of top-down.
	LeftToRight bool
}

const (
	criticalColor = "#c0392b"
	criticalFill  = "#fdecea"
)

// ToDOT converts tasks to Graphviz DOT. timing may be nil, in which case
// nothing is highlighted and Detailed only adds durations.
func ToDOT(tasks []project.Task, timing map[string]cpm.TaskTiming, opts Options) string {
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, t := range tasks {
		ts, ok := timing[t.ID]
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(t, ts, ok, opts.Detailed))}
		if ok && ts.Critical {
			attrs = append(attrs, fmt.Sprintf("color=%q", criticalColor), fmt.Sprintf("fillcolor=%q", criticalFill), "penwidth=2")
		}
		if t.DurationDays == 0 {
			attrs = append(attrs, "shape=diamond", "style=filled")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", t.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if isCriticalEdge(timing, dep, t.ID) {
				fmt.Fprintf(&buf, "  %q -> %q [color=%q, penwidth=2];\n", dep, t.ID, criticalColor)
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", dep, t.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// isCriticalEdge reports whether from -> to lies on a critical path: both
// ends are critical and to starts as soon as from finishes.
func isCriticalEdge(timing map[string]cpm.TaskTiming, from, to string) bool {
	a, ok := timing[from]
	if !ok || !a.Critical {
		return false
	}
	b, ok := timing[to]
	return ok && b.Critical && a.EarliestFinish == b.EarliestStart
}

func fmtLabel(t project.Task, ts cpm.TaskTiming, hasTiming, detailed bool) string {
	label := t.ID
	if t.Name != "" && t.Name != t.ID {
		label += "\n" + t.Name
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("%dd", t.DurationDays)}
	if hasTiming {
		parts = append(parts,
			fmt.Sprintf("ES %d  LS %d", ts.EarliestStart, ts.LatestStart),
			fmt.Sprintf("slack %d", ts.Slack))
	}
	if len(t.RequiredResources) > 0 {
		parts = append(parts, strings.Join(t.RequiredResources, ", "))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
