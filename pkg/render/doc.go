// Package render turns analyzed projects into pictures.
//
// Subpackages:
//   - [nodelink] draws the task dependency graph with Graphviz, highlighting
//     the critical path.
//   - [gantt] draws leveled schedules as terminal timelines and tables.
//
// This package holds the format conversion shared by the renderers: [ToPDF]
// and [ToPNG] convert SVG output with the external rsvg-convert tool.
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/leveler/pkg/render/nodelink
// [gantt]: github.com/matzehuels/leveler/pkg/render/gantt
package render
