package sat_test

import (
	"context"
	"fmt"

	"github.com/framepack/framepack/pkg/sat"
)

func Example() {
	// Pack two intervals of size 3 and 2 on a line of length 8 and minimize
	// the largest end.
	m := sat.NewModel()
	a := m.NewIntVar(0, 5, "a")
	b := m.NewIntVar(0, 6, "b")
	m.AddNoOverlap([]sat.Interval{
		{Start: a, Size: 3, Presence: sat.NoVar},
		{Start: b, Size: 2, Presence: sat.NoVar},
	})

	endA := m.NewIntVar(0, 8, "end_a")
	endB := m.NewIntVar(0, 8, "end_b")
	m.AddEquality([]sat.Term{{Var: endA, Coef: 1}, {Var: a, Coef: -1}}, 3)
	m.AddEquality([]sat.Term{{Var: endB, Coef: 1}, {Var: b, Coef: -1}}, 2)
	maxEnd := m.NewIntVar(0, 8, "max_end")
	m.AddMaxEquality(maxEnd, []sat.IntVar{endA, endB})

	solver := sat.NewSolver(sat.Params{Seed: 42})
	sol := solver.Solve(context.Background(), m, sat.Minimize(maxEnd))

	fmt.Println("status:", sol.Status)
	fmt.Println("max end:", sol.ObjectiveValue)
	// Output:
	// status: OPTIMAL
	// max end: 5
}
