package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/leveler/pkg/cache"
	"github.com/matzehuels/leveler/pkg/cpm"
	errs "github.com/matzehuels/leveler/pkg/errors"
	pkgio "github.com/matzehuels/leveler/pkg/io"
	"github.com/matzehuels/leveler/pkg/observability"
	"github.com/matzehuels/leveler/pkg/project"
	"github.com/matzehuels/leveler/pkg/schedule"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL of cached schedules. Zero means cache.TTLSchedule.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedSchedule is the cache encoding of a leveled schedule.
type cachedSchedule struct {
	Duration     int                    `json:"duration"`
	CriticalPath []string               `json:"critical_path"`
	Tasks        []pkgio.ScheduleRecord `json:"tasks"`
}

// Execute validates p, runs CPM and resource leveling, and returns the
// schedule. Input errors carry pkg/errors codes and are returned unwrapped.
func (r *Runner) Execute(ctx context.Context, p project.Project, opts Options) (*Result, error) {
	logger := r.logger(opts)
	start := time.Now()

	if err := project.ValidateProject(p, opts.StrictResources); err != nil {
		return nil, err
	}

	canonical, err := pkgio.CanonicalJSON(p)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Project:     p.Clone(),
		ProjectHash: cache.Hash(canonical),
	}
	key := r.Keyer.ScheduleKey(result.ProjectHash, cache.ScheduleKeyOpts{StrictResources: opts.StrictResources})

	if !opts.Refresh {
		if hit := r.loadCached(ctx, key, result); hit {
			observability.Cache().OnCacheHit(ctx, "schedule")
			r.finish(result, start)
			logger.Debug("schedule cache hit", "hash", short(result.ProjectHash))
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, "schedule")
	}

	hooks := observability.Pipeline()
	hooks.OnScheduleStart(ctx, len(p.Tasks))

	res, err := cpm.Analyze(p.Tasks)
	if err != nil {
		hooks.OnScheduleComplete(ctx, len(p.Tasks), 0, time.Since(start), err)
		return nil, err
	}
	logger.Debug("computed critical path",
		"tasks", len(p.Tasks),
		"duration", res.Duration,
		"critical", len(res.CriticalPath))

	result.Schedule = schedule.Place(p, res.Timing)
	if c := schedule.Conflicts(result.Schedule); len(c) > 0 {
		err := errs.New(errs.ErrCodeInternal, "resource %s double-booked by %s and %s at slot %d",
			c[0].Resource, c[0].First, c[0].Second, c[0].Slot)
		hooks.OnScheduleComplete(ctx, len(p.Tasks), 0, time.Since(start), err)
		return nil, err
	}
	result.Duration = res.Duration
	result.CriticalPath = res.CriticalPath
	r.finish(result, start)
	hooks.OnScheduleComplete(ctx, len(p.Tasks), result.Makespan, result.Stats.Elapsed, nil)

	logger.Info("leveled schedule",
		"tasks", result.Stats.TaskCount,
		"duration", result.Duration,
		"makespan", result.Makespan,
		"delayed", result.Stats.DelayedTasks,
		"elapsed", result.Stats.Elapsed)

	entry := cachedSchedule{
		Duration:     result.Duration,
		CriticalPath: result.CriticalPath,
		Tasks:        pkgio.NewScheduleRecords(result.Schedule),
	}
	if err := cache.SetJSON(ctx, r.Cache, key, entry, r.ttl()); err != nil {
		logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "schedule", len(entry.Tasks))
	}

	return result, nil
}

// loadCached fills result from the cache entry under key.
func (r *Runner) loadCached(ctx context.Context, key string, result *Result) bool {
	var entry cachedSchedule
	if err := cache.GetJSON(ctx, r.Cache, key, &entry); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.Logger.Warn("cache read failed", "err", err)
		}
		return false
	}

	tasks := make([]schedule.ScheduledTask, len(entry.Tasks))
	for i, rec := range entry.Tasks {
		st, err := rec.ScheduledTask()
		if err != nil {
			_ = r.Cache.Delete(ctx, key)
			return false
		}
		tasks[i] = st
	}
	if len(tasks) != len(result.Project.Tasks) || len(schedule.Conflicts(tasks)) > 0 {
		r.Logger.Warn("discarding inconsistent cache entry", "key", key)
		_ = r.Cache.Delete(ctx, key)
		return false
	}
	result.Schedule = tasks
	result.Duration = entry.Duration
	result.CriticalPath = entry.CriticalPath
	result.CacheHit = true
	return true
}

func (r *Runner) finish(result *Result, start time.Time) {
	result.Makespan = schedule.Makespan(result.Schedule)
	result.Stats = Stats{
		TaskCount:     len(result.Schedule),
		ResourceCount: len(project.ResourcesInUse(result.Project.Tasks)),
		DelayedTasks:  len(result.Delayed()),
		Elapsed:       time.Since(start),
	}
}

// Analyze runs CPM only. It is not cached: CPM is linear in the project
// size and callers use it for quick inspection.
func (r *Runner) Analyze(ctx context.Context, p project.Project, opts Options) (*cpm.Result, error) {
	if err := project.Validate(p.Tasks, project.ValidateOptions{
		StrictResources: opts.StrictResources,
		Resources:       p.Resources,
	}); err != nil {
		return nil, err
	}
	res, err := cpm.Analyze(p.Tasks)
	if err != nil {
		return nil, err
	}
	r.logger(opts).Debug("computed critical path", "tasks", len(p.Tasks), "duration", res.Duration)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLSchedule
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
