package packer

import (
	"context"

	apperrors "github.com/framepack/framepack/pkg/errors"
	"github.com/framepack/framepack/pkg/sat"
)

// Pack validates entries, builds the constraint model, runs the two-stage
// lexicographic optimization, and returns the extracted schedule.
//
// Stage 1 maximizes total utilization; stage 2 re-solves a fresh model with
// the stage-1 optimum frozen, minimizing the maximum occupied offset. A
// schedule is returned only when both stages end OPTIMAL or FEASIBLE; every
// other outcome is a typed error and no partial schedule is produced.
func Pack(ctx context.Context, entries []Entry, cfg Config) (*Schedule, error) {
	prob, err := prepare(entries, cfg)
	if err != nil {
		return nil, err
	}
	cfg = prob.cfg
	if len(prob.items) == 0 {
		// Nothing to place: trivially optimal.
		return &Schedule{
			Status:        sat.StatusOptimal,
			FrameCapacity: cfg.FrameCapacity,
			NumFrames:     cfg.NumFrames,
		}, nil
	}

	solver := sat.NewSolver(sat.Params{
		Seed:      cfg.Solver.Seed,
		Workers:   cfg.Solver.Workers,
		TimeLimit: cfg.Solver.TimeLimit,
	})

	// Stage 1: maximize total utilization.
	stage1 := prob.buildModel(nil)
	sol1 := solver.Solve(ctx, stage1.model, sat.Maximize(stage1.util))
	if err := stageError(1, sol1); err != nil {
		return nil, err
	}
	bestUtil := sol1.ObjectiveValue

	// Stage 2: freeze utilization at its optimum and minimize the furthest
	// occupied offset. Built as a fresh model plus one constraint, seeded
	// with the stage-1 solution as hints.
	stage2 := prob.buildModel(&bestUtil)
	copyHints(stage2, stage1, sol1)
	sol2 := solver.Solve(ctx, stage2.model, sat.Minimize(stage2.maxEnd))
	if err := stageError(2, sol2); err != nil {
		return nil, err
	}

	sched := prob.extract(stage2, sol2)
	if err := prob.verify(sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Validate checks entries and configuration without solving. It surfaces the
// same input-validation errors Pack would, which lets callers vet a format
// sheet before committing solver time to it.
func Validate(entries []Entry, cfg Config) error {
	_, err := prepare(entries, cfg)
	return err
}

// prepare applies defaults, validates the configuration, and normalizes the
// entries into a solvable problem.
func prepare(entries []Entry, cfg Config) (*problem, error) {
	cfg = cfg.withDefaults()
	if cfg.FrameCapacity < 1 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "frame capacity must be positive, got %d", cfg.FrameCapacity)
	}
	if cfg.NumFrames < 1 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "number of frames must be positive, got %d", cfg.NumFrames)
	}
	return normalize(entries, cfg)
}

// stageError maps a non-extractable solver status to the error taxonomy.
// OPTIMAL and FEASIBLE yield no error; FEASIBLE is preserved in the schedule
// status rather than reported as a failure.
func stageError(stage int, sol sat.Solution) error {
	switch sol.Status {
	case sat.StatusOptimal, sat.StatusFeasible:
		return nil
	case sat.StatusInfeasible:
		return apperrors.New(apperrors.ErrCodeInfeasible,
			"stage %d: no packing satisfies the given constraints", stage)
	case sat.StatusModelInvalid:
		return apperrors.Wrap(apperrors.ErrCodeModelInvalid, sol.Err,
			"stage %d: constraint model failed validation", stage)
	default:
		return apperrors.New(apperrors.ErrCodeUnknown,
			"stage %d: solver stopped before finding a solution; retry with a larger time limit", stage)
	}
}
