package packer

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/framepack/framepack/pkg/errors"
	"github.com/framepack/framepack/pkg/sat"
)

func intPtr(v int) *int { return &v }

func testConfig(capacity, frames int) Config {
	return Config{FrameCapacity: capacity, NumFrames: frames}
}

func mustPack(t *testing.T, entries []Entry, cfg Config) *Schedule {
	t.Helper()
	s, err := Pack(context.Background(), entries, cfg)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	return s
}

func TestPackTwoObjectsFillOneFrame(t *testing.T) {
	// Two 400-bit objects with period 1 exactly fill an 800-bit frame.
	entries := []Entry{
		PointObject{Name: "a", Size: 400, Period: 1},
		PointObject{Name: "b", Size: 400, Period: 1},
	}
	s := mustPack(t, entries, testConfig(800, 1))

	if s.Status != sat.StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", s.Status)
	}
	if s.TotalUtilization != 800 {
		t.Errorf("utilization = %d, want 800", s.TotalUtilization)
	}
	if s.MaxEnd != 800 {
		t.Errorf("max end = %d, want 800", s.MaxEnd)
	}
	if s.Unit != 400 {
		t.Errorf("unit = %d, want 400", s.Unit)
	}

	a, _ := s.Placement("a")
	b, _ := s.Placement("b")
	starts := map[int]bool{a.Start: true, b.Start: true}
	if !starts[0] || !starts[400] {
		t.Errorf("starts = {%d, %d}, want {0, 400}", a.Start, b.Start)
	}
}

func TestPackOversizedObjectRejected(t *testing.T) {
	// A 900-bit object can never fit an 800-bit frame; the input is rejected
	// before any solving happens.
	entries := []Entry{
		PointObject{Name: "big", Size: 900, Period: 1, Offset: intPtr(0)},
	}
	_, err := Pack(context.Background(), entries, testConfig(800, 1))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestPackInfeasible(t *testing.T) {
	// A fixed object covering the whole frame leaves no room for the group.
	entries := []Entry{
		PointObject{Name: "wall", Size: 800, Period: 1, Offset: intPtr(0)},
		Group{Name: "g", Period: 1, Members: []PointObject{
			{Name: "g1", Size: 300},
			{Name: "g2", Size: 300},
		}},
	}
	_, err := Pack(context.Background(), entries, testConfig(800, 1))
	if !apperrors.Is(err, apperrors.ErrCodeInfeasible) {
		t.Fatalf("expected SOLVER_INFEASIBLE, got %v", err)
	}
}

func TestPackUnitRescaling(t *testing.T) {
	// Sizes 100 and 200, a fixed offset of 300, and capacity 800 share a
	// 100-bit unit; every solved position must be a multiple of it.
	entries := []Entry{
		PointObject{Name: "a", Size: 100, Period: 1, Offset: intPtr(300)},
		PointObject{Name: "b", Size: 200, Period: 1},
	}
	s := mustPack(t, entries, testConfig(800, 2))

	if s.Unit != 100 {
		t.Fatalf("unit = %d, want 100", s.Unit)
	}
	for _, p := range s.Placements {
		if p.Start%s.Unit != 0 {
			t.Errorf("object %q starts at %d, not a multiple of %d", p.Name, p.Start, s.Unit)
		}
	}
	a, _ := s.Placement("a")
	if a.Start != 300 {
		t.Errorf("fixed object start = %d, want 300", a.Start)
	}
}

func TestPackStartFramePinsPhase(t *testing.T) {
	// Fixing the first frame to 6 with period 4 pins phase 6 mod 4 = 2.
	entries := []Entry{
		PointObject{Name: "pinned", Size: 100, Period: 4, StartFrame: intPtr(6)},
	}
	s := mustPack(t, entries, testConfig(800, 8))

	p, ok := s.Placement("pinned")
	if !ok {
		t.Fatal("placement missing")
	}
	if p.Phase != 2 {
		t.Fatalf("phase = %d, want 2", p.Phase)
	}
	for f := 0; f < 8; f++ {
		want := f%4 == 2
		if got := p.OccursIn(f); got != want {
			t.Errorf("OccursIn(%d) = %v, want %v", f, got, want)
		}
	}
}

func TestPackGroupCohesion(t *testing.T) {
	entries := []Entry{
		Group{Name: "g", Period: 4, Members: []PointObject{
			{Name: "g1", Size: 100},
			{Name: "g2", Size: 200},
			{Name: "g3", Size: 100},
		}},
		PointObject{Name: "solo", Size: 300, Period: 1},
	}
	s := mustPack(t, entries, testConfig(1000, 8))

	g1, _ := s.Placement("g1")
	g2, _ := s.Placement("g2")
	g3, _ := s.Placement("g3")
	if g1.Phase != g2.Phase || g2.Phase != g3.Phase {
		t.Errorf("group phases diverge: %d, %d, %d", g1.Phase, g2.Phase, g3.Phase)
	}
	if g2.Start != g1.End || g3.Start != g2.End {
		t.Errorf("group not contiguous: [%d,%d) [%d,%d) [%d,%d)",
			g1.Start, g1.End, g2.Start, g2.End, g3.Start, g3.End)
	}
	for _, p := range []Placement{g1, g2, g3} {
		if p.Group != "g" {
			t.Errorf("object %q group = %q, want %q", p.Name, p.Group, "g")
		}
	}
	if solo, _ := s.Placement("solo"); solo.Group != "" {
		t.Errorf("ungrouped object carries group %q", solo.Group)
	}
}

func TestPackGroupAnchors(t *testing.T) {
	// The group's start frame and offset anchor its first member; the rest
	// follow by contiguity.
	entries := []Entry{
		Group{Name: "g", Period: 2, StartFrame: intPtr(3), Offset: intPtr(200), Members: []PointObject{
			{Name: "g1", Size: 100},
			{Name: "g2", Size: 100},
		}},
	}
	s := mustPack(t, entries, testConfig(800, 4))

	g1, _ := s.Placement("g1")
	g2, _ := s.Placement("g2")
	if g1.Phase != 1 { // 3 mod 2
		t.Errorf("phase = %d, want 1", g1.Phase)
	}
	if g1.Start != 200 || g2.Start != 300 {
		t.Errorf("starts = %d, %d, want 200, 300", g1.Start, g2.Start)
	}
}

func TestPackUtilizationMixedPeriods(t *testing.T) {
	// With 8 frames: period 1 contributes 8 occurrences, period 4 two, and
	// period 8 one. Utilization is occurrence-weighted size, independent of
	// where anything lands.
	entries := []Entry{
		PointObject{Name: "fast", Size: 100, Period: 1},
		PointObject{Name: "mid", Size: 200, Period: 4},
		PointObject{Name: "slow", Size: 300, Period: 8},
	}
	s := mustPack(t, entries, testConfig(1000, 8))

	want := 100*8 + 200*2 + 300*1
	if s.TotalUtilization != want {
		t.Errorf("utilization = %d, want %d", s.TotalUtilization, want)
	}
	// mid and slow can dodge each other by phase, so only the always-present
	// object stacks under them.
	if s.MaxEnd != 400 {
		t.Errorf("max end = %d, want 400", s.MaxEnd)
	}
}

func TestPackDeterminism(t *testing.T) {
	entries := []Entry{
		PointObject{Name: "a", Size: 100, Period: 2},
		PointObject{Name: "b", Size: 200, Period: 4},
		PointObject{Name: "c", Size: 100, Period: 1},
	}
	cfg := testConfig(600, 4)

	s1 := mustPack(t, entries, cfg)
	s2 := mustPack(t, entries, cfg)

	if s1.TotalUtilization != s2.TotalUtilization || s1.MaxEnd != s2.MaxEnd {
		t.Fatalf("objectives differ across reruns: (%d, %d) vs (%d, %d)",
			s1.TotalUtilization, s1.MaxEnd, s2.TotalUtilization, s2.MaxEnd)
	}
	for i := range s1.Placements {
		if s1.Placements[i] != s2.Placements[i] {
			t.Errorf("placement %d differs: %+v vs %+v", i, s1.Placements[i], s2.Placements[i])
		}
	}
}

func TestPackEmptyInput(t *testing.T) {
	s := mustPack(t, nil, testConfig(800, 4))
	if s.Status != sat.StatusOptimal {
		t.Errorf("status = %v, want OPTIMAL", s.Status)
	}
	if len(s.Placements) != 0 || s.TotalUtilization != 0 || s.MaxEnd != 0 {
		t.Errorf("empty input should produce an empty schedule, got %+v", s)
	}
}

func TestPackNoOverlapAcrossFrames(t *testing.T) {
	// Saturate a small schedule and re-check every frame for overlaps.
	entries := []Entry{
		PointObject{Name: "a", Size: 200, Period: 1},
		PointObject{Name: "b", Size: 200, Period: 2},
		PointObject{Name: "c", Size: 200, Period: 2},
		PointObject{Name: "d", Size: 100, Period: 4},
	}
	s := mustPack(t, entries, testConfig(600, 4))

	for f := 0; f < s.NumFrames; f++ {
		placed := s.Frame(f)
		for k := 0; k+1 < len(placed); k++ {
			if placed[k].End > placed[k+1].Start {
				t.Errorf("frame %d: %q [%d,%d) overlaps %q [%d,%d)", f,
					placed[k].Name, placed[k].Start, placed[k].End,
					placed[k+1].Name, placed[k+1].Start, placed[k+1].End)
			}
		}
	}
}

func TestPackFeasibleWithinTimeLimit(t *testing.T) {
	// Twelve 7-bit objects in a 4000-bit frame: a compact packing is found
	// immediately, but certifying its compactness optimal needs more search
	// than the budget allows. The schedule is still returned, marked FEASIBLE
	// rather than OPTIMAL, with the best placement found.
	entries := make([]Entry, 12)
	for i := range entries {
		entries[i] = PointObject{Name: fmt.Sprintf("obj%d", i), Size: 7, Period: 1}
	}
	cfg := testConfig(4000, 1)
	cfg.Solver.TimeLimit = 2 * time.Millisecond

	s := mustPack(t, entries, cfg)
	if s.Status != sat.StatusFeasible {
		t.Fatalf("status = %v, want FEASIBLE", s.Status)
	}
	if s.TotalUtilization != 12*7 {
		t.Errorf("utilization = %d, want %d", s.TotalUtilization, 12*7)
	}
	if s.MaxEnd != 12*7 {
		t.Errorf("max end = %d, want %d", s.MaxEnd, 12*7)
	}

	placed := s.Frame(0)
	if len(placed) != 12 {
		t.Fatalf("frame 0 carries %d objects, want 12", len(placed))
	}
	for k := 0; k+1 < len(placed); k++ {
		if placed[k].End > placed[k+1].Start {
			t.Errorf("%q [%d,%d) overlaps %q [%d,%d)",
				placed[k].Name, placed[k].Start, placed[k].End,
				placed[k+1].Name, placed[k+1].Start, placed[k+1].End)
		}
	}
}

func TestPackCanceledContext(t *testing.T) {
	entries := []Entry{
		PointObject{Name: "a", Size: 100, Period: 1},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Pack(ctx, entries, testConfig(800, 4))
	if !apperrors.Is(err, apperrors.ErrCodeUnknown) {
		t.Fatalf("expected SOLVER_UNKNOWN, got %v", err)
	}
}

func TestValidateInput(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		cfg     Config
		code    apperrors.Code
	}{
		{
			name:    "valid",
			entries: []Entry{PointObject{Name: "a", Size: 100, Period: 1}},
			cfg:     testConfig(800, 4),
		},
		{
			name:    "zero capacity",
			entries: []Entry{PointObject{Name: "a", Size: 100, Period: 1}},
			cfg:     Config{},
			code:    apperrors.ErrCodeInvalidConfig,
		},
		{
			name:    "negative frames",
			entries: []Entry{PointObject{Name: "a", Size: 100, Period: 1}},
			cfg:     Config{FrameCapacity: 800, NumFrames: -1},
			code:    apperrors.ErrCodeInvalidConfig,
		},
		{
			name:    "empty name",
			entries: []Entry{PointObject{Size: 100, Period: 1}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidInput,
		},
		{
			name: "duplicate name",
			entries: []Entry{
				PointObject{Name: "a", Size: 100, Period: 1},
				PointObject{Name: "a", Size: 100, Period: 1},
			},
			cfg:  testConfig(800, 4),
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "zero size",
			entries: []Entry{PointObject{Name: "a", Period: 1}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "period exceeds frames",
			entries: []Entry{PointObject{Name: "a", Size: 100, Period: 5}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "start frame out of range",
			entries: []Entry{PointObject{Name: "a", Size: 100, Period: 1, StartFrame: intPtr(4)}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "offset overflows frame",
			entries: []Entry{PointObject{Name: "a", Size: 200, Period: 1, Offset: intPtr(700)}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "empty group",
			entries: []Entry{Group{Name: "g", Period: 1}},
			cfg:     testConfig(800, 4),
			code:    apperrors.ErrCodeInvalidGroup,
		},
		{
			name: "member with own period",
			entries: []Entry{Group{Name: "g", Period: 1, Members: []PointObject{
				{Name: "g1", Size: 100, Period: 2},
			}}},
			cfg:  testConfig(800, 4),
			code: apperrors.ErrCodeInvalidGroup,
		},
		{
			name: "member with own offset",
			entries: []Entry{Group{Name: "g", Period: 1, Members: []PointObject{
				{Name: "g1", Size: 100, Offset: intPtr(0)},
			}}},
			cfg:  testConfig(800, 4),
			code: apperrors.ErrCodeInvalidGroup,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.entries, tc.cfg)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("Validate error: %v", err)
				}
				return
			}
			if !apperrors.Is(err, tc.code) {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{FrameCapacity: 800}.withDefaults()
	if cfg.NumFrames != DefaultNumFrames {
		t.Errorf("NumFrames = %d, want %d", cfg.NumFrames, DefaultNumFrames)
	}
	if cfg.Solver.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", cfg.Solver.Seed, DefaultSeed)
	}
	if cfg.Solver.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Solver.Workers, DefaultWorkers)
	}
	if cfg.Solver.TimeLimit != DefaultTimeLimit {
		t.Errorf("TimeLimit = %v, want %v", cfg.Solver.TimeLimit, DefaultTimeLimit)
	}

	unlimited := Config{FrameCapacity: 800, Solver: SolverConfig{TimeLimit: NoTimeLimit}}.withDefaults()
	if unlimited.Solver.TimeLimit != 0 {
		t.Errorf("NoTimeLimit should map to 0, got %v", unlimited.Solver.TimeLimit)
	}
}

func TestScheduleFrame(t *testing.T) {
	s := &Schedule{
		NumFrames: 4,
		Placements: []Placement{
			{Name: "late", Size: 100, Period: 1, Phase: 0, Start: 400, End: 500},
			{Name: "early", Size: 100, Period: 2, Phase: 0, Start: 0, End: 100},
			{Name: "odd", Size: 100, Period: 2, Phase: 1, Start: 0, End: 100},
		},
	}

	frame0 := s.Frame(0)
	if len(frame0) != 2 || frame0[0].Name != "early" || frame0[1].Name != "late" {
		t.Errorf("Frame(0) = %+v, want early then late", frame0)
	}
	frame1 := s.Frame(1)
	if len(frame1) != 2 || frame1[0].Name != "odd" {
		t.Errorf("Frame(1) = %+v, want odd then late", frame1)
	}

	if _, ok := s.Placement("missing"); ok {
		t.Error("Placement should miss for unknown names")
	}
}

func TestRescaleGCD(t *testing.T) {
	cases := []struct {
		name  string
		sizes []int
		cap   int
		want  int
	}{
		{"common hundreds", []int{100, 200}, 800, 100},
		{"coprime", []int{3, 5}, 16, 1},
		{"single object", []int{64}, 512, 64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &problem{cfg: testConfig(tc.cap, 4)}
			for i, sz := range tc.sizes {
				p.items = append(p.items, item{obj: PointObject{Name: string(rune('a' + i)), Size: sz, Period: 1}})
			}
			p.rescale()
			if p.unit != tc.want {
				t.Errorf("unit = %d, want %d", p.unit, tc.want)
			}
			if p.capUnits != tc.cap/tc.want {
				t.Errorf("capUnits = %d, want %d", p.capUnits, tc.cap/tc.want)
			}
		})
	}
}
