package packer

import (
	apperrors "github.com/framepack/framepack/pkg/errors"
	"github.com/framepack/framepack/pkg/sat"
)

// extract reads the solved values back out of the model, rescales them to
// physical bits, and assembles the schedule. Solver-bound variables do not
// outlive this call.
func (p *problem) extract(bm *builtModel, sol sat.Solution) *Schedule {
	sched := &Schedule{
		Status:           sol.Status,
		FrameCapacity:    p.cfg.FrameCapacity,
		NumFrames:        p.cfg.NumFrames,
		Unit:             p.unit,
		TotalUtilization: sol.Value(bm.util),
		MaxEnd:           sol.Value(bm.maxEnd) * p.unit,
		Placements:       make([]Placement, len(p.items)),
	}
	for i, it := range p.items {
		phase := 0
		for s, pv := range bm.phases[i] {
			if sol.BoolValue(pv) {
				phase = s
				break
			}
		}
		start := sol.Value(bm.starts[i]) * p.unit
		sched.Placements[i] = Placement{
			Name:   it.obj.Name,
			Size:   it.obj.Size,
			Period: it.obj.Period,
			Phase:  phase,
			Start:  start,
			End:    start + it.obj.Size,
			Group:  it.group,
		}
	}
	return sched
}

// verify re-checks the schedule's invariants as a defensive postcondition:
// capacity bounds, group cohesion, and pairwise per-frame non-overlap. A
// violation here means a solver or modeling bug and must never be exported
// silently.
func (p *problem) verify(s *Schedule) error {
	internal := func(format string, args ...any) error {
		return apperrors.New(apperrors.ErrCodeInternal, format, args...)
	}

	for _, pl := range s.Placements {
		if pl.Start < 0 || pl.End != pl.Start+pl.Size || pl.End > s.FrameCapacity {
			return internal("object %q placed at invalid range [%d, %d)", pl.Name, pl.Start, pl.End)
		}
		if pl.Phase < 0 || pl.Phase >= pl.Period {
			return internal("object %q assigned phase %d outside [0, %d)", pl.Name, pl.Phase, pl.Period)
		}
	}

	for _, group := range p.groups {
		for k := 0; k+1 < len(group); k++ {
			prev, next := s.Placements[group[k]], s.Placements[group[k+1]]
			if prev.Phase != next.Phase {
				return internal("group members %q and %q diverge in phase", prev.Name, next.Name)
			}
			if next.Start != prev.Start+prev.Size {
				return internal("group member %q not contiguous after %q", next.Name, prev.Name)
			}
		}
	}

	for f := 0; f < s.NumFrames; f++ {
		inFrame := s.Frame(f)
		for k := 0; k+1 < len(inFrame); k++ {
			if inFrame[k].End > inFrame[k+1].Start {
				return internal("objects %q and %q overlap in frame %d", inFrame[k].Name, inFrame[k+1].Name, f)
			}
		}
	}

	return nil
}
