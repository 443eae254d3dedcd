package packer

import (
	"sort"
	"time"

	"github.com/framepack/framepack/pkg/sat"
)

// Defaults for Config fields left at their zero value.
const (
	// DefaultNumFrames is the length of the repeating schedule.
	DefaultNumFrames = 32

	// DefaultSeed pins the solver's random seed for reproducible packings.
	DefaultSeed = 42

	// DefaultWorkers pins the solver to a single search worker. Parallel
	// search trades determinism for speed; the packer prefers determinism.
	DefaultWorkers = 1

	// DefaultTimeLimit bounds each solver stage.
	DefaultTimeLimit = 30 * time.Second

	// NoTimeLimit disables the per-stage time limit.
	NoTimeLimit = -1 * time.Second
)

// Entry is an input to Pack: either a single PointObject or a Group.
type Entry interface {
	entry()
}

// PointObject is one recurring item to place. It occupies Size bits of every
// frame whose index is congruent to its chosen phase modulo Period.
//
// PointObjects are immutable inputs; solver-assigned results are returned in
// the Schedule, never written back.
type PointObject struct {
	// Name uniquely identifies the object across the whole input.
	Name string
	// Size is the object's length in bits, 1 ≤ Size ≤ FrameCapacity.
	Size int
	// Period is the number of frames between successive occurrences,
	// 1 ≤ Period ≤ NumFrames.
	Period int
	// StartFrame, if set, fixes the first frame the object appears in; the
	// chosen phase becomes StartFrame mod Period.
	StartFrame *int
	// Offset, if set, fixes the object's bit position within its frames.
	Offset *int
}

func (PointObject) entry() {}

// Group is an ordered sequence of PointObjects that move together: all
// members appear in exactly the same frames, and each member starts where the
// previous one ends (back-to-back, no gap, no reordering).
//
// The group owns the authoritative Period, StartFrame, and Offset; members
// must leave those fields unset. StartFrame and Offset, when given, anchor
// the first member and the rest follow by contiguity.
type Group struct {
	Name       string
	Period     int
	StartFrame *int
	Offset     *int
	Members    []PointObject
}

func (Group) entry() {}

// SolverConfig carries the engine parameters the packer pins for
// reproducibility. See the package documentation of sat for what each knob
// does; reproducibility is best-effort and only objective values are
// contractual across reruns.
type SolverConfig struct {
	Seed      int64
	Workers   int
	// TimeLimit bounds each of the two solver stages. Zero selects
	// DefaultTimeLimit; NoTimeLimit disables the bound.
	TimeLimit time.Duration
}

// Config holds the process-wide scheduling parameters.
type Config struct {
	// FrameCapacity is the number of bits in every frame. Required.
	FrameCapacity int
	// NumFrames is the length of the repeating schedule. Defaults to
	// DefaultNumFrames. Every object's period must be ≤ NumFrames.
	NumFrames int
	// Solver configures the constraint engine.
	Solver SolverConfig
}

func (c Config) withDefaults() Config {
	if c.NumFrames == 0 {
		c.NumFrames = DefaultNumFrames
	}
	if c.Solver.Seed == 0 {
		c.Solver.Seed = DefaultSeed
	}
	if c.Solver.Workers == 0 {
		c.Solver.Workers = DefaultWorkers
	}
	switch {
	case c.Solver.TimeLimit == 0:
		c.Solver.TimeLimit = DefaultTimeLimit
	case c.Solver.TimeLimit < 0:
		c.Solver.TimeLimit = 0
	}
	return c
}

// Placement is one object's resolved position in a solved schedule, in
// physical bits.
type Placement struct {
	Name   string
	Size   int
	Period int
	// Phase is the residue class of frame indices the object occupies:
	// the object appears in every frame f with f mod Period == Phase.
	Phase int
	// Start and End delimit the occupied bit range [Start, End) within each
	// occupied frame.
	Start int
	End   int
	// Group names the group the object belongs to, or "" if ungrouped.
	Group string
}

// OccursIn reports whether the placement occupies frame f.
func (p Placement) OccursIn(f int) bool {
	return f%p.Period == p.Phase
}

// Schedule is the output of a successful Pack call.
type Schedule struct {
	// Status is the solver's terminal status for the compactness stage:
	// StatusOptimal, or StatusFeasible when the time limit stopped the solver
	// before compactness was certified optimal.
	Status sat.Status
	// FrameCapacity and NumFrames echo the solved configuration.
	FrameCapacity int
	NumFrames     int
	// Unit is the gcd all positions were scaled by during the solve. All
	// Start/End values are exact multiples of Unit.
	Unit int
	// TotalUtilization is the total number of bits carried across the whole
	// schedule: Σ size·(NumFrames div period) over all objects.
	TotalUtilization int
	// MaxEnd is the furthest occupied bit position across all frames.
	MaxEnd int
	// Placements lists every object in input order.
	Placements []Placement
}

// Placement returns the placement of the named object.
func (s *Schedule) Placement(name string) (Placement, bool) {
	for _, p := range s.Placements {
		if p.Name == name {
			return p, true
		}
	}
	return Placement{}, false
}

// Frame returns the placements occupying frame f, sorted by start position.
func (s *Schedule) Frame(f int) []Placement {
	var out []Placement
	for _, p := range s.Placements {
		if p.OccursIn(f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
