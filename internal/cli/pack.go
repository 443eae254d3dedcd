package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/framepack/framepack/pkg/cache"
	"github.com/framepack/framepack/pkg/pipeline"
)

// newPackCmd creates the pack command: solve a manifest and write reports.
func newPackCmd() *cobra.Command {
	var (
		formats   []string
		outBase   string
		refresh   bool
		noCache   bool
		redisAddr string
		timeLimit time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pack <manifest.toml>",
		Short: "Solve a format manifest and write schedule reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			c, err := buildCache(cmd, noCache, redisAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			runner := pipeline.NewRunner(c, logger)
			result, err := runner.Execute(ctx, pipeline.Options{
				ManifestPath: args[0],
				Formats:      formats,
				OutBase:      outBase,
				Refresh:      refresh,
				TimeLimit:    timeLimit,
			})
			if err != nil {
				printError("%s", err)
				return err
			}

			sched := result.Schedule
			printSuccess("packed %s objects, status %s",
				highlight(len(sched.Placements)), highlight(sched.Status.String()))
			printDetail("total utilization: %d bits", sched.TotalUtilization)
			printDetail("max end: %d of %d bits", sched.MaxEnd, sched.FrameCapacity)
			if result.CacheHit {
				printDetail("schedule restored from cache")
			}
			for _, out := range result.Outputs {
				printDetail("wrote %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{pipeline.FormatExcel},
		"output formats: json, csv, xlsx")
	cmd.Flags().StringVarP(&outBase, "out", "o", pipeline.DefaultOutBase,
		"base path for report files (extension appended)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and re-solve")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the schedule cache")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "use a shared Redis cache at this address")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0,
		"override the manifest's per-stage solver time limit (e.g. 60s)")

	return cmd
}

// buildCache selects the cache backend from the flags: disabled, shared
// Redis, or the per-user file cache.
func buildCache(cmd *cobra.Command, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		c, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{Addr: redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return c, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open file cache: %w", err)
	}
	return c, nil
}
