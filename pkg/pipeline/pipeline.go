// Package pipeline orchestrates the load → solve → export flow.
//
// The Runner centralizes caching and logging so the CLI (and any future
// automation entry point) behaves identically: a manifest is loaded, the
// solved schedule is fetched from cache or computed, and the requested report
// formats are written next to each other.
//
//	runner := pipeline.NewRunner(fileCache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: "format.toml",
//	    Formats:      []string{pipeline.FormatExcel},
//	})
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/framepack/framepack/pkg/cache"
	"github.com/framepack/framepack/pkg/manifest"
	"github.com/framepack/framepack/pkg/packer"
	"github.com/framepack/framepack/pkg/report"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:  true,
	FormatCSV:   true,
	FormatExcel: true,
}

// DefaultOutBase is the base name for report files when none is given.
const DefaultOutBase = "packer_out"

// DefaultCacheTTL is how long solved schedules stay cached. Format sheets
// change rarely; a week keeps repeat CI runs cheap without hoarding stale
// results forever.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Options configures one pipeline execution.
type Options struct {
	// ManifestPath is the TOML manifest to load. Required.
	ManifestPath string
	// Formats lists the report formats to write. Defaults to json.
	Formats []string
	// OutBase is the base path of the written reports; the format extension
	// is appended. Defaults to DefaultOutBase.
	OutBase string
	// Refresh bypasses the cache and re-solves.
	Refresh bool
	// CacheTTL overrides DefaultCacheTTL when positive.
	CacheTTL time.Duration
	// TimeLimit, when non-zero, overrides the manifest's solver time limit.
	TimeLimit time.Duration
}

func (o *Options) validateAndSetDefaults() error {
	if o.ManifestPath == "" {
		return fmt.Errorf("manifest path is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return fmt.Errorf("unsupported format %q", f)
		}
	}
	if o.OutBase == "" {
		o.OutBase = DefaultOutBase
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// Stats carries per-stage wall-clock timings.
type Stats struct {
	LoadTime   time.Duration
	SolveTime  time.Duration
	ExportTime time.Duration
}

// Result is the outcome of one Execute call.
type Result struct {
	// RunID uniquely identifies this execution in logs and reports.
	RunID string
	// Schedule is the solved (or cache-restored) schedule.
	Schedule *packer.Schedule
	// Outputs lists the report files written.
	Outputs []string
	// CacheHit reports whether the schedule came from cache.
	CacheHit bool
	// Stats carries per-stage timings.
	Stats Stats
}

// Runner executes pipelines with shared cache and logger. It holds no
// per-run state; one Runner may serve concurrent Execute calls.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// falls back to the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete load → solve → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID)

	loadStart := time.Now()
	entries, cfg, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	if opts.TimeLimit != 0 {
		cfg.Solver.TimeLimit = opts.TimeLimit
	}
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Info("loaded manifest",
		"path", opts.ManifestPath,
		"entries", len(entries),
		"duration", result.Stats.LoadTime)

	solveStart := time.Now()
	sched, hit, err := r.solve(ctx, entries, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.Schedule = sched
	result.CacheHit = hit
	result.Stats.SolveTime = time.Since(solveStart)
	logger.Info("solved schedule",
		"status", sched.Status.String(),
		"utilization", sched.TotalUtilization,
		"max_end", sched.MaxEnd,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	exportStart := time.Now()
	rep := report.New(sched)
	for _, format := range opts.Formats {
		path := opts.OutBase + "." + format
		var err error
		switch format {
		case FormatJSON:
			err = rep.ExportJSON(path)
		case FormatCSV:
			err = rep.ExportCSV(path)
		case FormatExcel:
			err = rep.ExportExcel(path)
		}
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		result.Outputs = append(result.Outputs, path)
	}
	result.Stats.ExportTime = time.Since(exportStart)
	logger.Info("wrote reports",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// solve returns the schedule for the given inputs, consulting the cache
// first. Cached schedules are stored as JSON keyed by a digest of the
// entries and configuration.
func (r *Runner) solve(ctx context.Context, entries []packer.Entry, cfg packer.Config, opts Options) (*packer.Schedule, bool, error) {
	key := cache.ScheduleKey(cfg, entries)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var sched packer.Schedule
			if err := json.Unmarshal(data, &sched); err == nil {
				return &sched, true, nil
			}
			// Corrupt entry: fall through and re-solve.
		}
	}

	sched, err := packer.Pack(ctx, entries, cfg)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(sched); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}
	return sched, false, nil
}
