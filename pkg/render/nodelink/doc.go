// Package nodelink renders a project's task dependency graph as a node-link
// diagram.
//
// [ToDOT] emits Graphviz DOT with one box per task and one arrow per
// dependency. When CPM timing is supplied, critical tasks and the edges
// between them are drawn in red and labels can carry duration and slack.
// [RenderSVG] lays the graph out in-process with
// [github.com/goccy/go-graphviz].
//
//	res, _ := cpm.Analyze(p.Tasks)
//	dot := nodelink.ToDOT(p.Tasks, res.Timing, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
