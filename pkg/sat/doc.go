// Package sat implements the constraint-solving engine behind the frame packer.
//
// The package exposes a small CP-style modeling API (bounded integer variables,
// boolean variables, exactly-one constraints, linear equalities, per-group
// no-overlap over optional intervals, and max-equality) together with a solver
// that optimizes a single integer objective by branch-and-bound over a
// propagate-and-branch search.
//
// # Modeling
//
// Build a model, then hand it to a solver:
//
//	m := sat.NewModel()
//	a := m.NewIntVar(0, 7, "a")
//	b := m.NewIntVar(0, 7, "b")
//	m.AddNoOverlap([]sat.Interval{
//	    {Start: a, Size: 4, Presence: sat.NoVar},
//	    {Start: b, Size: 4, Presence: sat.NoVar},
//	})
//
//	solver := sat.NewSolver(sat.Params{})
//	sol := solver.Solve(ctx, m, sat.Minimize(b))
//	if sol.Status == sat.StatusOptimal {
//	    fmt.Println(sol.Value(b))
//	}
//
// Models are cheap to build and are not mutated by the solver, so two
// sequential solves over related models (e.g. lexicographic stages) should
// each build their own model rather than mutating a shared one.
//
// # Terminal statuses
//
// Solve classifies every outcome as one of five statuses: StatusOptimal and
// StatusFeasible carry an extractable solution; StatusInfeasible means the
// constraints were proved unsatisfiable; StatusModelInvalid means the model
// failed structural validation before any search (the Solution's Err carries
// the detail); StatusUnknown means the time limit or context expired before a
// solution was found.
//
// # Determinism
//
// The search is sequential and visits variables and values in a fixed order,
// so repeated solves of an identical model yield identical solutions. Callers
// should still treat exact variable assignments as best-effort reproducible
// and rely only on objective values across environments.
package sat
