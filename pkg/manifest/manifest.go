// Package manifest loads packing inputs from TOML manifest files.
//
// A manifest describes the schedule parameters, solver configuration, and the
// objects and groups to place. Units follow the conventions of the hardware
// format sheets this tool ingests: frame size and offsets are given in bytes,
// object sizes in bits. The conversion to the bit-based core happens here.
//
//	frame_size = 1000  # bytes per frame
//	num_frames = 32
//
//	[solver]
//	seed = 42
//	workers = 1
//	time_limit = "30s"  # or "none"
//
//	[[object]]
//	name = "A"
//	size = 32          # bits
//	period = 32
//	start_frame = 4    # optional
//	offset = 1         # optional, bytes
//
//	[[group]]
//	name = "nav"
//	period = 8
//
//	  [[group.member]]
//	  name = "nav_x"
//	  size = 16
//
// Ungrouped objects come before groups in the flattened entry order.
package manifest

import (
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/framepack/framepack/pkg/errors"
	"github.com/framepack/framepack/pkg/packer"
)

// File is the top-level TOML document.
type File struct {
	FrameSize int           `toml:"frame_size"`
	NumFrames int           `toml:"num_frames"`
	Solver    SolverSection `toml:"solver"`
	Objects   []Object      `toml:"object"`
	Groups    []Group       `toml:"group"`
}

// SolverSection configures the constraint engine.
type SolverSection struct {
	Seed      int64  `toml:"seed"`
	Workers   int    `toml:"workers"`
	TimeLimit string `toml:"time_limit"`
}

// Object is one standalone point object.
type Object struct {
	Name       string `toml:"name"`
	Size       int    `toml:"size"`
	Period     int    `toml:"period"`
	StartFrame *int   `toml:"start_frame"`
	Offset     *int   `toml:"offset"`
}

// Group is an ordered set of members that pack back-to-back in shared frames.
type Group struct {
	Name       string   `toml:"name"`
	Period     int      `toml:"period"`
	StartFrame *int     `toml:"start_frame"`
	Offset     *int     `toml:"offset"`
	Members    []Member `toml:"member"`
}

// Member is one object inside a group; period, start frame, and offset are
// owned by the group.
type Member struct {
	Name string `toml:"name"`
	Size int    `toml:"size"`
}

// Load reads and converts a manifest file into packer inputs.
func Load(path string) ([]packer.Entry, packer.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, packer.Config{}, apperrors.Wrap(apperrors.ErrCodeManifest, err, "load %s", path)
	}
	return f.Convert()
}

// Convert turns the decoded document into packer entries and configuration,
// applying the byte-to-bit conversions.
func (f *File) Convert() ([]packer.Entry, packer.Config, error) {
	if f.FrameSize < 1 {
		return nil, packer.Config{}, apperrors.New(apperrors.ErrCodeManifest, "frame_size must be a positive byte count, got %d", f.FrameSize)
	}

	cfg := packer.Config{
		FrameCapacity: f.FrameSize * 8,
		NumFrames:     f.NumFrames,
		Solver: packer.SolverConfig{
			Seed:    f.Solver.Seed,
			Workers: f.Solver.Workers,
		},
	}
	switch f.Solver.TimeLimit {
	case "":
		// Keep the packer default.
	case "none":
		cfg.Solver.TimeLimit = packer.NoTimeLimit
	default:
		d, err := time.ParseDuration(f.Solver.TimeLimit)
		if err != nil {
			return nil, packer.Config{}, apperrors.Wrap(apperrors.ErrCodeManifest, err, "parse solver time_limit %q", f.Solver.TimeLimit)
		}
		cfg.Solver.TimeLimit = d
	}

	entries := make([]packer.Entry, 0, len(f.Objects)+len(f.Groups))
	for _, o := range f.Objects {
		entries = append(entries, packer.PointObject{
			Name:       o.Name,
			Size:       o.Size,
			Period:     o.Period,
			StartFrame: o.StartFrame,
			Offset:     bytesToBits(o.Offset),
		})
	}
	for _, g := range f.Groups {
		members := make([]packer.PointObject, len(g.Members))
		for i, m := range g.Members {
			members[i] = packer.PointObject{Name: m.Name, Size: m.Size}
		}
		entries = append(entries, packer.Group{
			Name:       g.Name,
			Period:     g.Period,
			StartFrame: g.StartFrame,
			Offset:     bytesToBits(g.Offset),
			Members:    members,
		})
	}
	return entries, cfg, nil
}

func bytesToBits(b *int) *int {
	if b == nil {
		return nil
	}
	bits := *b * 8
	return &bits
}
