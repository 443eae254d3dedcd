package sat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyExactlyOne is returned by model validation when an exactly-one
	// constraint covers no variables. Such a constraint can never hold.
	ErrEmptyExactlyOne = errors.New("exactly-one over no variables")

	// ErrEmptyMax is returned by model validation when a max-equality
	// constraint has no operands to take the maximum of.
	ErrEmptyMax = errors.New("max-equality over no variables")
)

// IntVar is a handle to an integer variable inside a Model. Handles are only
// meaningful for the model that created them.
type IntVar int

// NoVar marks the absence of a variable, e.g. an Interval that is always
// present or an objective that is pure feasibility.
const NoVar IntVar = -1

// Term is one addend of a linear constraint: Coef multiplied by Var.
type Term struct {
	Var  IntVar
	Coef int
}

// Interval is a fixed-size occupancy [Start, Start+Size) used by no-overlap
// constraints. If Presence is a boolean variable the interval only occupies
// space when that variable is true; with Presence == NoVar it always does.
type Interval struct {
	Start    IntVar
	Size     int
	Presence IntVar
}

type linearEq struct {
	terms []Term
	rhs   int
}

type maxEq struct {
	target IntVar
	vars   []IntVar
}

type hint struct {
	v     IntVar
	value int
}

// Model holds variables and constraints for one solve. The zero value is not
// usable; create models with NewModel. A Model is not safe for concurrent
// mutation, but a fully built model may be solved from multiple goroutines
// since the solver never writes to it.
type Model struct {
	lo     []int
	hi     []int
	names  []string
	isBool []bool

	eqs      []linearEq
	ones     [][]IntVar
	overlaps [][]Interval
	maxes    []maxEq
	hints    []hint
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewIntVar declares an integer variable with inclusive domain [lo, hi].
// A domain with lo > hi is legal to declare but fails validation at solve
// time, mirroring how structural problems surface as StatusModelInvalid
// rather than panics.
func (m *Model) NewIntVar(lo, hi int, name string) IntVar {
	m.lo = append(m.lo, lo)
	m.hi = append(m.hi, hi)
	m.names = append(m.names, name)
	m.isBool = append(m.isBool, false)
	return IntVar(len(m.lo) - 1)
}

// NewBoolVar declares a boolean variable (domain {0, 1}).
func (m *Model) NewBoolVar(name string) IntVar {
	v := m.NewIntVar(0, 1, name)
	m.isBool[v] = true
	return v
}

// NewConstant declares a variable fixed to value. Constants participate in
// constraints and objectives like any other variable.
func (m *Model) NewConstant(value int, name string) IntVar {
	return m.NewIntVar(value, value, name)
}

// AddEquality adds the linear constraint sum(terms) == rhs.
func (m *Model) AddEquality(terms []Term, rhs int) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.eqs = append(m.eqs, linearEq{terms: cp, rhs: rhs})
}

// AddVarEquality constrains a == b.
func (m *Model) AddVarEquality(a, b IntVar) {
	m.AddEquality([]Term{{Var: a, Coef: 1}, {Var: b, Coef: -1}}, 0)
}

// AddFixed constrains v == value.
func (m *Model) AddFixed(v IntVar, value int) {
	m.AddEquality([]Term{{Var: v, Coef: 1}}, value)
}

// AddExactlyOne constrains exactly one of the boolean variables to be true.
func (m *Model) AddExactlyOne(vars ...IntVar) {
	cp := make([]IntVar, len(vars))
	copy(cp, vars)
	m.ones = append(m.ones, cp)
}

// AddNoOverlap constrains the present intervals in the group to be pairwise
// non-overlapping. Each call declares an independent group; intervals from
// different groups may overlap freely.
func (m *Model) AddNoOverlap(intervals []Interval) {
	cp := make([]Interval, len(intervals))
	copy(cp, intervals)
	m.overlaps = append(m.overlaps, cp)
}

// AddMaxEquality constrains target == max(vars...).
func (m *Model) AddMaxEquality(target IntVar, vars []IntVar) {
	cp := make([]IntVar, len(vars))
	copy(cp, vars)
	m.maxes = append(m.maxes, maxEq{target: target, vars: cp})
}

// AddHint suggests a value for v. The solver tries hinted values first, which
// lets a previous solution seed a related solve. Hints never constrain the
// model; an unsatisfiable hint is simply skipped during search.
func (m *Model) AddHint(v IntVar, value int) {
	m.hints = append(m.hints, hint{v: v, value: value})
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.lo) }

// Name returns the declared name of v, or "" if v is out of range.
func (m *Model) Name(v IntVar) string {
	if v < 0 || int(v) >= len(m.names) {
		return ""
	}
	return m.names[v]
}

func (m *Model) validVar(v IntVar) bool {
	return v >= 0 && int(v) < len(m.lo)
}

// validate checks the structural integrity of the model. Any failure here
// surfaces as StatusModelInvalid from Solve with this error as detail.
func (m *Model) validate() error {
	for i := range m.lo {
		if m.lo[i] > m.hi[i] {
			return fmt.Errorf("variable %q has empty domain [%d, %d]", m.names[i], m.lo[i], m.hi[i])
		}
	}
	for _, eq := range m.eqs {
		for _, t := range eq.terms {
			if !m.validVar(t.Var) {
				return fmt.Errorf("equality references unknown variable %d", t.Var)
			}
			if t.Coef == 0 {
				return fmt.Errorf("equality has zero coefficient on %q", m.names[t.Var])
			}
		}
	}
	for _, one := range m.ones {
		if len(one) == 0 {
			return ErrEmptyExactlyOne
		}
		for _, v := range one {
			if !m.validVar(v) {
				return fmt.Errorf("exactly-one references unknown variable %d", v)
			}
			if !m.isBool[v] {
				return fmt.Errorf("exactly-one over non-boolean variable %q", m.names[v])
			}
		}
	}
	for _, group := range m.overlaps {
		for _, iv := range group {
			if !m.validVar(iv.Start) {
				return fmt.Errorf("interval references unknown start variable %d", iv.Start)
			}
			if iv.Size < 0 {
				return fmt.Errorf("interval on %q has negative size %d", m.names[iv.Start], iv.Size)
			}
			if iv.Presence != NoVar {
				if !m.validVar(iv.Presence) {
					return fmt.Errorf("interval references unknown presence variable %d", iv.Presence)
				}
				if !m.isBool[iv.Presence] {
					return fmt.Errorf("interval presence %q is not boolean", m.names[iv.Presence])
				}
			}
		}
	}
	for _, mx := range m.maxes {
		if !m.validVar(mx.target) {
			return fmt.Errorf("max-equality references unknown target %d", mx.target)
		}
		if len(mx.vars) == 0 {
			return ErrEmptyMax
		}
		for _, v := range mx.vars {
			if !m.validVar(v) {
				return fmt.Errorf("max-equality references unknown variable %d", v)
			}
		}
	}
	for _, h := range m.hints {
		if !m.validVar(h.v) {
			return fmt.Errorf("hint references unknown variable %d", h.v)
		}
	}
	return nil
}
