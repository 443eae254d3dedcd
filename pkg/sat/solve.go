package sat

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Params configures a Solver.
//
// The engine is deterministic by construction: the search is sequential and
// visits variables and values in a fixed order, so there is nothing for a
// seed to randomize and no worker pool to size. Seed and Workers are still
// part of the recorded solve configuration; a portfolio search would consume
// them, and callers pin them today so reruns are comparable.
type Params struct {
	// Seed is the random seed recorded for the solve. The current search
	// never draws random numbers, so Seed does not change results.
	Seed int64
	// Workers is the requested search parallelism. Only 1 is supported;
	// larger values are treated as 1.
	Workers int
	// TimeLimit bounds the wall-clock time of one Solve call. Zero means no
	// limit. On expiry Solve returns the best solution found (StatusFeasible)
	// or StatusUnknown if none was found.
	TimeLimit time.Duration
}

// Objective selects what a Solve call optimizes. Use Feasibility, Minimize,
// or Maximize to construct one.
type Objective struct {
	v        IntVar
	maximize bool
}

// Feasibility returns an objective that only asks for any solution.
func Feasibility() Objective { return Objective{v: NoVar} }

// Minimize returns an objective that minimizes v.
func Minimize(v IntVar) Objective { return Objective{v: v} }

// Maximize returns an objective that maximizes v.
func Maximize(v IntVar) Objective { return Objective{v: v, maximize: true} }

// Solution is the outcome of one Solve call. Variable values are only
// meaningful when Status.HasSolution() is true.
type Solution struct {
	// Status classifies the outcome.
	Status Status
	// Err carries detail for StatusModelInvalid.
	Err error
	// ObjectiveValue is the achieved objective, when one was requested and a
	// solution exists.
	ObjectiveValue int

	values []int
}

// Value returns the solved value of v, or 0 if no solution exists.
func (s Solution) Value(v IntVar) int {
	if s.values == nil || v < 0 || int(v) >= len(s.values) {
		return 0
	}
	return s.values[v]
}

// BoolValue returns the solved value of a boolean variable.
func (s Solution) BoolValue(v IntVar) bool { return s.Value(v) == 1 }

// Solver runs searches over models. A Solver holds no per-solve state and may
// be reused; each Solve works on private copies of the model's domains.
type Solver struct {
	Params Params
}

// NewSolver creates a solver with the given parameters.
func NewSolver(p Params) *Solver {
	return &Solver{Params: p}
}

// Solve searches m for an assignment optimizing obj. It never mutates m.
//
// The search honors ctx cancellation and Params.TimeLimit; whichever expires
// first stops the search with the best solution found so far.
func (s *Solver) Solve(ctx context.Context, m *Model, obj Objective) Solution {
	if err := m.validate(); err != nil {
		return Solution{Status: StatusModelInvalid, Err: err}
	}
	if obj.v != NoVar && !m.validVar(obj.v) {
		return Solution{Status: StatusModelInvalid, Err: fmt.Errorf("objective references unknown variable %d", obj.v)}
	}

	srch := &search{m: m, ctx: ctx}
	if s.Params.TimeLimit > 0 {
		srch.deadline = time.Now().Add(s.Params.TimeLimit)
	}
	srch.hintVal = make([]int, m.NumVars())
	for i := range srch.hintVal {
		srch.hintVal[i] = math.MinInt
	}
	for _, h := range m.hints {
		srch.hintVal[h.v] = h.value
	}

	// A feasibility objective, or one over a fixed variable, needs a single
	// search: the first solution is optimal by definition.
	if obj.v == NoVar || m.lo[obj.v] == m.hi[obj.v] {
		found, vals := srch.run(m, obj, nil)
		switch {
		case found:
			return solutionFrom(vals, obj)
		case srch.stopped:
			return Solution{Status: StatusUnknown}
		default:
			return Solution{Status: StatusInfeasible}
		}
	}

	// Branch-and-bound: repeatedly re-search with the objective bounded past
	// the incumbent until the bounded model is proved infeasible.
	var best []int
	for {
		var bound *int
		if best != nil {
			b := best[obj.v]
			if obj.maximize {
				b++
			} else {
				b--
			}
			bound = &b
		}
		found, vals := srch.run(m, obj, bound)
		if found {
			best = vals
			// Seed the next round with the incumbent so the search descends
			// directly to a nearby improving solution.
			copy(srch.hintVal, vals)
			continue
		}
		if srch.stopped {
			if best != nil {
				return feasibleFrom(best, obj)
			}
			return Solution{Status: StatusUnknown}
		}
		if best != nil {
			return solutionFrom(best, obj)
		}
		return Solution{Status: StatusInfeasible}
	}
}

func solutionFrom(vals []int, obj Objective) Solution {
	sol := Solution{Status: StatusOptimal, values: vals}
	if obj.v != NoVar {
		sol.ObjectiveValue = vals[obj.v]
	}
	return sol
}

func feasibleFrom(vals []int, obj Objective) Solution {
	sol := solutionFrom(vals, obj)
	sol.Status = StatusFeasible
	return sol
}

// search carries the mutable state of one Solve call: deadline bookkeeping
// and value hints shared across branch-and-bound rounds.
type search struct {
	m        *Model
	ctx      context.Context
	deadline time.Time
	hintVal  []int

	nodes   int
	stopped bool
}

// run performs one depth-first search over fresh domains. bound, when set,
// tightens the objective variable's domain to exclude the incumbent.
func (s *search) run(m *Model, obj Objective, bound *int) (bool, []int) {
	lo := make([]int, len(m.lo))
	hi := make([]int, len(m.hi))
	copy(lo, m.lo)
	copy(hi, m.hi)
	if bound != nil {
		if obj.maximize {
			if *bound > lo[obj.v] {
				lo[obj.v] = *bound
			}
		} else {
			if *bound < hi[obj.v] {
				hi[obj.v] = *bound
			}
		}
		if lo[obj.v] > hi[obj.v] {
			// Incumbent already sits on the domain boundary; nothing better exists.
			return false, nil
		}
	}
	return s.dfs(lo, hi)
}

// expired checks the cancellation context and the deadline at every node.
func (s *search) expired() bool {
	if s.stopped {
		return true
	}
	s.nodes++
	if s.ctx != nil && s.ctx.Err() != nil {
		s.stopped = true
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stopped = true
		return true
	}
	return false
}

func (s *search) dfs(lo, hi []int) (bool, []int) {
	if s.expired() {
		return false, nil
	}
	if !s.propagate(lo, hi) {
		return false, nil
	}
	v := s.pickVar(lo, hi)
	if v == NoVar {
		vals := make([]int, len(lo))
		copy(vals, lo)
		return true, vals
	}

	try := func(val int) (bool, []int) {
		nlo := make([]int, len(lo))
		nhi := make([]int, len(hi))
		copy(nlo, lo)
		copy(nhi, hi)
		nlo[v] = val
		nhi[v] = val
		return s.dfs(nlo, nhi)
	}

	hinted := math.MinInt
	if h := s.hintVal[v]; h >= lo[v] && h <= hi[v] {
		hinted = h
		if found, vals := try(h); found {
			return true, vals
		}
		if s.stopped {
			return false, nil
		}
	}

	if s.m.isBool[v] {
		// Booleans gate presence and phase choice; trying true first commits
		// to a phase and lets propagation do the rest.
		for _, val := range [...]int{1, 0} {
			if val < lo[v] || val > hi[v] || val == hinted {
				continue
			}
			if found, vals := try(val); found {
				return true, vals
			}
			if s.stopped {
				return false, nil
			}
		}
		return false, nil
	}

	for val := lo[v]; val <= hi[v]; val++ {
		if val == hinted {
			continue
		}
		if found, vals := try(val); found {
			return true, vals
		}
		if s.stopped {
			return false, nil
		}
	}
	return false, nil
}

// pickVar returns the next branching variable: booleans first (phase and
// presence decisions unlock interval propagation), then integers, each in
// declaration order. Returns NoVar when everything is assigned.
func (s *search) pickVar(lo, hi []int) IntVar {
	for i := range lo {
		if s.m.isBool[i] && lo[i] < hi[i] {
			return IntVar(i)
		}
	}
	for i := range lo {
		if lo[i] < hi[i] {
			return IntVar(i)
		}
	}
	return NoVar
}

// propagate runs bounds propagation to a fixpoint. Returns false on conflict.
func (s *search) propagate(lo, hi []int) bool {
	for {
		changed := false

		for _, eq := range s.m.eqs {
			ch, ok := propagateEquality(eq, lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}

		for _, one := range s.m.ones {
			ch, ok := propagateExactlyOne(one, lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}

		for _, mx := range s.m.maxes {
			ch, ok := propagateMax(mx, lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}

		for _, group := range s.m.overlaps {
			ch, ok := propagateNoOverlap(group, lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}

		if !changed {
			return true
		}
	}
}

func termBounds(t Term, lo, hi []int) (int, int) {
	if t.Coef >= 0 {
		return t.Coef * lo[t.Var], t.Coef * hi[t.Var]
	}
	return t.Coef * hi[t.Var], t.Coef * lo[t.Var]
}

func propagateEquality(eq linearEq, lo, hi []int) (bool, bool) {
	sumLo, sumHi := 0, 0
	for _, t := range eq.terms {
		tl, th := termBounds(t, lo, hi)
		sumLo += tl
		sumHi += th
	}
	if eq.rhs < sumLo || eq.rhs > sumHi {
		return false, false
	}

	changed := false
	for _, t := range eq.terms {
		tl, th := termBounds(t, lo, hi)
		restLo := sumLo - tl
		restHi := sumHi - th
		// t.Coef * v must lie in [rhs-restHi, rhs-restLo].
		a := eq.rhs - restHi
		b := eq.rhs - restLo
		var newLo, newHi int
		if t.Coef > 0 {
			newLo = divCeil(a, t.Coef)
			newHi = divFloor(b, t.Coef)
		} else {
			newLo = divCeil(b, t.Coef)
			newHi = divFloor(a, t.Coef)
		}
		if newLo > lo[t.Var] {
			lo[t.Var] = newLo
			changed = true
		}
		if newHi < hi[t.Var] {
			hi[t.Var] = newHi
			changed = true
		}
		if lo[t.Var] > hi[t.Var] {
			return changed, false
		}
	}
	return changed, true
}

func propagateExactlyOne(vars []IntVar, lo, hi []int) (bool, bool) {
	trueCount, freeCount := 0, 0
	lastFree := NoVar
	for _, v := range vars {
		switch {
		case lo[v] == 1:
			trueCount++
		case hi[v] == 1:
			freeCount++
			lastFree = v
		}
	}
	if trueCount > 1 {
		return false, false
	}

	changed := false
	if trueCount == 1 {
		for _, v := range vars {
			if lo[v] != 1 && hi[v] == 1 {
				hi[v] = 0
				changed = true
			}
		}
		return changed, true
	}
	if freeCount == 0 {
		return false, false
	}
	if freeCount == 1 {
		lo[lastFree] = 1
		return true, true
	}
	return false, true
}

func propagateMax(mx maxEq, lo, hi []int) (bool, bool) {
	maxLo, maxHi := math.MinInt, math.MinInt
	for _, v := range mx.vars {
		maxLo = max(maxLo, lo[v])
		maxHi = max(maxHi, hi[v])
	}

	changed := false
	if maxLo > lo[mx.target] {
		lo[mx.target] = maxLo
		changed = true
	}
	if maxHi < hi[mx.target] {
		hi[mx.target] = maxHi
		changed = true
	}
	if lo[mx.target] > hi[mx.target] {
		return changed, false
	}
	for _, v := range mx.vars {
		if hi[mx.target] < hi[v] {
			hi[v] = hi[mx.target]
			changed = true
		}
		if lo[v] > hi[v] {
			return changed, false
		}
	}
	return changed, true
}

func propagateNoOverlap(group []Interval, lo, hi []int) (bool, bool) {
	// Only intervals whose presence is decided true participate; undecided
	// intervals are handled once their presence boolean is branched on.
	present := make([]Interval, 0, len(group))
	for _, iv := range group {
		if iv.Presence == NoVar || lo[iv.Presence] == 1 {
			present = append(present, iv)
		}
	}

	changed := false
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			a, b := present[i], present[j]
			canAB := lo[a.Start]+a.Size <= hi[b.Start]
			canBA := lo[b.Start]+b.Size <= hi[a.Start]
			if !canAB && !canBA {
				return changed, false
			}
			if !canBA {
				// a must precede b.
				if lo[a.Start]+a.Size > lo[b.Start] {
					lo[b.Start] = lo[a.Start] + a.Size
					changed = true
				}
				if hi[b.Start]-a.Size < hi[a.Start] {
					hi[a.Start] = hi[b.Start] - a.Size
					changed = true
				}
				if lo[a.Start] > hi[a.Start] || lo[b.Start] > hi[b.Start] {
					return changed, false
				}
			} else if !canAB {
				// b must precede a.
				if lo[b.Start]+b.Size > lo[a.Start] {
					lo[a.Start] = lo[b.Start] + b.Size
					changed = true
				}
				if hi[a.Start]-b.Size < hi[b.Start] {
					hi[b.Start] = hi[a.Start] - b.Size
					changed = true
				}
				if lo[a.Start] > hi[a.Start] || lo[b.Start] > hi[b.Start] {
					return changed, false
				}
			}
		}
	}
	return changed, true
}

func divFloor(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func divCeil(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
