package packer

import (
	"fmt"

	"github.com/framepack/framepack/pkg/sat"
)

// builtModel bundles one solver model with the variable handles the packer
// needs back out. Each optimization stage builds its own instance; models are
// never mutated between stages.
type builtModel struct {
	model  *sat.Model
	starts []sat.IntVar
	phases [][]sat.IntVar
	util   sat.IntVar
	maxEnd sat.IntVar
}

// buildModel declares all variables and constraints for the problem, in
// scaled units. When freezeUtil is non-nil the total-utilization constant is
// additionally pinned to it, which is how stage 2 inherits stage 1's optimum.
func (p *problem) buildModel(freezeUtil *int) *builtModel {
	m := sat.NewModel()
	bm := &builtModel{
		model:  m,
		starts: make([]sat.IntVar, len(p.items)),
		phases: make([][]sat.IntVar, len(p.items)),
	}

	for i, it := range p.items {
		obj := it.obj
		sz := p.sizeUnits(i)

		bm.starts[i] = m.NewIntVar(0, p.capUnits-sz, fmt.Sprintf("start_%s", obj.Name))

		// One phase indicator per candidate residue class, exactly one chosen.
		phases := make([]sat.IntVar, obj.Period)
		for s := range phases {
			phases[s] = m.NewBoolVar(fmt.Sprintf("phase_%s_%d", obj.Name, s))
		}
		m.AddExactlyOne(phases...)
		bm.phases[i] = phases

		if off := obj.Offset; off != nil {
			m.AddFixed(bm.starts[i], *off/p.unit)
		}
		if sf := obj.StartFrame; sf != nil {
			m.AddFixed(phases[*sf%obj.Period], 1)
		}
	}

	// Group cohesion: identical phase pattern and back-to-back placement for
	// every consecutive member pair.
	for _, group := range p.groups {
		for k := 0; k+1 < len(group); k++ {
			prev, next := group[k], group[k+1]
			for s := range bm.phases[prev] {
				m.AddVarEquality(bm.phases[next][s], bm.phases[prev][s])
			}
			m.AddEquality([]sat.Term{
				{Var: bm.starts[next], Coef: 1},
				{Var: bm.starts[prev], Coef: -1},
			}, p.sizeUnits(prev))
		}
	}

	// Per-frame occupancy: every frame collects one optional interval per
	// object, gated by the phase indicator matching that frame, and the frame's
	// intervals must not overlap. This is how periodic recurrence is expressed:
	// all occurrences of an object share one start variable but are gated
	// independently per concrete frame.
	for f := 0; f < p.cfg.NumFrames; f++ {
		intervals := make([]sat.Interval, len(p.items))
		for i, it := range p.items {
			intervals[i] = sat.Interval{
				Start:    bm.starts[i],
				Size:     p.sizeUnits(i),
				Presence: bm.phases[i][f%it.obj.Period],
			}
		}
		m.AddNoOverlap(intervals)
	}

	// Total utilization is a fixed linear function of sizes and periods:
	// dropping objects is not permitted, so it is a constant kept as an
	// explicit objective for the lexicographic machinery.
	total := 0
	for _, it := range p.items {
		total += it.obj.Size * (p.cfg.NumFrames / it.obj.Period)
	}
	bm.util = m.NewConstant(total, "total_util")
	if freezeUtil != nil {
		m.AddFixed(bm.util, *freezeUtil)
	}

	// max_end = max over objects of start + size, the compactness objective.
	ends := make([]sat.IntVar, len(p.items))
	for i, it := range p.items {
		ends[i] = m.NewIntVar(0, p.capUnits, fmt.Sprintf("end_%s", it.obj.Name))
		m.AddEquality([]sat.Term{
			{Var: ends[i], Coef: 1},
			{Var: bm.starts[i], Coef: -1},
		}, p.sizeUnits(i))
	}
	bm.maxEnd = m.NewIntVar(0, p.capUnits, "max_end")
	m.AddMaxEquality(bm.maxEnd, ends)

	return bm
}

// copyHints seeds dst with src's solved values so stage 2 starts from the
// stage-1 placement. Both models are built by buildModel over the same
// problem, so variable handles correspond positionally.
func copyHints(dst, src *builtModel, sol sat.Solution) {
	for i := range src.starts {
		dst.model.AddHint(dst.starts[i], sol.Value(src.starts[i]))
		for s := range src.phases[i] {
			dst.model.AddHint(dst.phases[i][s], sol.Value(src.phases[i][s]))
		}
	}
}
