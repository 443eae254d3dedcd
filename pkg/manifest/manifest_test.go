package manifest

import (
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/framepack/framepack/pkg/errors"
	"github.com/framepack/framepack/pkg/packer"
)

func TestLoadValid(t *testing.T) {
	entries, cfg, err := Load(filepath.Join("testdata", "valid.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// frame_size is bytes; the core works in bits.
	if cfg.FrameCapacity != 800 {
		t.Errorf("FrameCapacity = %d, want 800", cfg.FrameCapacity)
	}
	if cfg.NumFrames != 8 {
		t.Errorf("NumFrames = %d, want 8", cfg.NumFrames)
	}
	if cfg.Solver.Seed != 7 || cfg.Solver.Workers != 1 {
		t.Errorf("solver config = %+v", cfg.Solver)
	}
	if cfg.Solver.TimeLimit != 10*time.Second {
		t.Errorf("TimeLimit = %v, want 10s", cfg.Solver.TimeLimit)
	}

	// Ungrouped objects precede groups.
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	nav, ok := entries[0].(packer.PointObject)
	if !ok {
		t.Fatalf("entry 0 is %T, want PointObject", entries[0])
	}
	if nav.Name != "nav" || nav.Size != 32 || nav.Period != 4 {
		t.Errorf("nav = %+v", nav)
	}
	if nav.StartFrame == nil || *nav.StartFrame != 2 {
		t.Errorf("nav.StartFrame = %v, want 2", nav.StartFrame)
	}

	att := entries[1].(packer.PointObject)
	if att.Offset == nil || *att.Offset != 8 {
		// offset = 1 byte converts to 8 bits.
		t.Errorf("att.Offset = %v, want 8", att.Offset)
	}

	cmd, ok := entries[2].(packer.Group)
	if !ok {
		t.Fatalf("entry 2 is %T, want Group", entries[2])
	}
	if cmd.Name != "cmd" || cmd.Period != 2 || len(cmd.Members) != 2 {
		t.Errorf("cmd = %+v", cmd)
	}
	if cmd.Members[1].Name != "cmd_body" || cmd.Members[1].Size != 48 {
		t.Errorf("cmd member 1 = %+v", cmd.Members[1])
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
	}{
		{"missing file", "missing.toml"},
		{"malformed toml", "not_toml.toml"},
		{"bad duration", "bad_duration.toml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(filepath.Join("testdata", tc.file))
			if !apperrors.Is(err, apperrors.ErrCodeManifest) {
				t.Fatalf("expected INVALID_MANIFEST, got %v", err)
			}
		})
	}
}

func TestConvertTimeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit string
		want  time.Duration
	}{
		{"default when empty", "", 0},
		{"none disables the limit", "none", packer.NoTimeLimit},
		{"explicit duration", "90s", 90 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := File{FrameSize: 100, Solver: SolverSection{TimeLimit: tc.limit}}
			_, cfg, err := f.Convert()
			if err != nil {
				t.Fatalf("Convert error: %v", err)
			}
			if cfg.Solver.TimeLimit != tc.want {
				t.Errorf("TimeLimit = %v, want %v", cfg.Solver.TimeLimit, tc.want)
			}
		})
	}
}

func TestConvertRejectsBadFrameSize(t *testing.T) {
	for _, size := range []int{0, -4} {
		f := File{FrameSize: size}
		if _, _, err := f.Convert(); !apperrors.Is(err, apperrors.ErrCodeManifest) {
			t.Errorf("frame_size %d: expected INVALID_MANIFEST, got %v", size, err)
		}
	}
}

func TestConvertOffsetUnits(t *testing.T) {
	off := 3
	f := File{
		FrameSize: 100,
		Objects:   []Object{{Name: "a", Size: 8, Period: 1, Offset: &off}},
		Groups:    []Group{{Name: "g", Period: 1, Offset: &off, Members: []Member{{Name: "m", Size: 8}}}},
	}
	entries, _, err := f.Convert()
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	obj := entries[0].(packer.PointObject)
	if obj.Offset == nil || *obj.Offset != 24 {
		t.Errorf("object offset = %v, want 24 bits", obj.Offset)
	}
	grp := entries[1].(packer.Group)
	if grp.Offset == nil || *grp.Offset != 24 {
		t.Errorf("group offset = %v, want 24 bits", grp.Offset)
	}
	// The original pointer must not be aliased.
	if obj.Offset == &off {
		t.Error("converted offset aliases the manifest value")
	}
}

func TestLoadRoundTripsThroughPacker(t *testing.T) {
	// The manifest fixture should be solvable end to end.
	entries, cfg, err := Load(filepath.Join("testdata", "valid.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := packer.Validate(entries, cfg); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}
