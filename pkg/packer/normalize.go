package packer

import (
	apperrors "github.com/framepack/framepack/pkg/errors"
)

// item is one flattened PointObject with its group membership resolved.
// Group members inherit the group's period and start frame; only the first
// member carries the group's offset, the rest follow by contiguity.
type item struct {
	obj     PointObject
	group   string
	ordinal int
}

// problem is a fully validated, unit-rescaled packing instance.
type problem struct {
	cfg    Config
	items  []item
	groups [][]int // indices into items, one slice per group, in member order

	unit     int // gcd of sizes, fixed offsets, and frame capacity
	capUnits int // frame capacity in units
}

// normalize flattens entries into items, enforces the group anchoring rule,
// validates every range eagerly, and computes the unit rescaling. Malformed
// input never reaches the solver.
func normalize(entries []Entry, cfg Config) (*problem, error) {
	p := &problem{cfg: cfg}

	for _, e := range entries {
		switch v := e.(type) {
		case PointObject:
			p.items = append(p.items, item{obj: v})
		case Group:
			members, err := flattenGroup(v)
			if err != nil {
				return nil, err
			}
			indices := make([]int, len(members))
			for i, m := range members {
				indices[i] = len(p.items)
				p.items = append(p.items, item{obj: m, group: v.Name, ordinal: i})
			}
			p.groups = append(p.groups, indices)
		default:
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "unsupported entry type %T", e)
		}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	p.rescale()
	return p, nil
}

// flattenGroup resolves a group into standalone members. The group owns
// period, start frame, and offset; members declaring their own are rejected.
func flattenGroup(g Group) ([]PointObject, error) {
	if len(g.Members) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidGroup, "group %q has no members", g.Name)
	}
	members := make([]PointObject, len(g.Members))
	for i, m := range g.Members {
		if m.Period != 0 || m.StartFrame != nil || m.Offset != nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidGroup,
				"group %q member %q must not carry its own period, start frame, or offset", g.Name, m.Name)
		}
		m.Period = g.Period
		m.StartFrame = g.StartFrame
		if i == 0 {
			m.Offset = g.Offset
		}
		members[i] = m
	}
	return members, nil
}

func (p *problem) validate() error {
	seen := make(map[string]bool, len(p.items))
	for _, it := range p.items {
		obj := it.obj
		if obj.Name == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "object with empty name")
		}
		if seen[obj.Name] {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "duplicate object name %q", obj.Name)
		}
		seen[obj.Name] = true

		if obj.Size < 1 || obj.Size > p.cfg.FrameCapacity {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"object %q size %d must be between 1 and the frame capacity %d", obj.Name, obj.Size, p.cfg.FrameCapacity)
		}
		if obj.Period < 1 || obj.Period > p.cfg.NumFrames {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"object %q period %d must be between 1 and %d", obj.Name, obj.Period, p.cfg.NumFrames)
		}
		if sf := obj.StartFrame; sf != nil && (*sf < 0 || *sf >= p.cfg.NumFrames) {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"object %q start frame %d must be between 0 and %d", obj.Name, *sf, p.cfg.NumFrames-1)
		}
		if off := obj.Offset; off != nil && (*off < 0 || *off+obj.Size > p.cfg.FrameCapacity) {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"object %q (size %d) at offset %d would overflow a %d-bit frame", obj.Name, obj.Size, *off, p.cfg.FrameCapacity)
		}
	}
	return nil
}

// rescale computes the common unit and the per-frame capacity in units.
// Fixed offsets join the gcd so pinned positions stay integral after scaling.
func (p *problem) rescale() {
	unit := 0
	for _, it := range p.items {
		unit = gcd(unit, it.obj.Size)
		if off := it.obj.Offset; off != nil && *off > 0 {
			unit = gcd(unit, *off)
		}
	}
	if unit == 0 {
		// No objects: nothing to scale, the schedule is trivially empty.
		p.unit = 0
		p.capUnits = 0
		return
	}
	unit = gcd(unit, p.cfg.FrameCapacity)
	p.unit = unit
	p.capUnits = p.cfg.FrameCapacity / unit
}

func (p *problem) sizeUnits(i int) int { return p.items[i].obj.Size / p.unit }

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
