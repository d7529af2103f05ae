package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/leveler/pkg/cache"
	pkgio "github.com/matzehuels/leveler/pkg/io"
	"github.com/matzehuels/leveler/pkg/observability"
	"github.com/matzehuels/leveler/pkg/render"
	"github.com/matzehuels/leveler/pkg/render/gantt"
	"github.com/matzehuels/leveler/pkg/render/nodelink"
)

// RenderOptions tunes Render.
type RenderOptions struct {
	// Detailed adds timing to graph labels.
	Detailed bool
	// Scale is the PNG resolution multiplier.
	Scale float64
}

// Render produces an artifact for result in format. Graph artifacts (SVG,
// PDF, PNG) are cached by the content of the schedule; the boolean reports
// a cache hit.
func (r *Runner) Render(ctx context.Context, result *Result, format string) ([]byte, bool, error) {
	return r.RenderWithOptions(ctx, result, format, RenderOptions{Detailed: true, Scale: 2})
}

// RenderWithOptions is Render with explicit options.
func (r *Runner) RenderWithOptions(ctx context.Context, result *Result, format string, opts RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}

	cacheable := format == FormatSVG || format == FormatPDF || format == FormatPNG
	var key string
	if cacheable {
		var buf bytes.Buffer
		if err := pkgio.WriteScheduleJSON(&buf, result.Schedule); err != nil {
			return nil, false, err
		}
		key = r.Keyer.ArtifactKey(cache.Hash(buf.Bytes()), cache.ArtifactKeyOpts{Format: format})
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := renderArtifact(ctx, result, format, opts)
	hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.Logger.Debug("rendered artifact", "format", format, "bytes", len(data), "duration", time.Since(start))

	if cacheable {
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return data, false, nil
}

func renderArtifact(ctx context.Context, result *Result, format string, opts RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		err := pkgio.WriteScheduleJSON(&buf, result.Schedule)
		return buf.Bytes(), err
	case FormatCSV:
		err := pkgio.WriteScheduleCSV(&buf, result.Schedule)
		return buf.Bytes(), err
	case FormatGantt:
		return []byte(gantt.Gantt(result.Schedule, gantt.Options{ShowDates: true})), nil
	}

	dot := nodelink.ToDOT(result.Project.Tasks, result.Timing(), nodelink.Options{Detailed: opts.Detailed})
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	default:
		return svg, nil
	}
}
