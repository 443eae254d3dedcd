// Package packer assigns periodically-recurring objects to fixed-capacity,
// repeating frames in a TDM schedule, proving the placement optimal.
//
// Each object recurs every Period frames and occupies Size bits of every
// frame it appears in. The packer chooses, for every object, a phase (which
// residue class of frames it occupies) and a bit offset inside the frame so
// that no two objects ever overlap, fixed placements are honored, and grouped
// objects stay contiguous and synchronized. Optimality is lexicographic: first
// total utilization (no object is ever dropped), then compactness (the
// furthest occupied bit is as low as possible).
//
// # Usage
//
//	sched, err := packer.Pack(ctx, []packer.Entry{
//	    packer.PointObject{Name: "nav", Size: 32, Period: 4},
//	    packer.PointObject{Name: "sys", Size: 16, Period: 1},
//	}, packer.Config{FrameCapacity: 8000})
//	if err != nil {
//	    return err
//	}
//	for _, p := range sched.Placements {
//	    fmt.Printf("%s: phase %d bits [%d, %d)\n", p.Name, p.Phase, p.Start, p.End)
//	}
//
// Pack is a pure function of its inputs: it performs no I/O, keeps no state
// across calls, and independent calls may run concurrently.
//
// The search itself is delegated to the engine in
// github.com/framepack/framepack/pkg/sat; failure outcomes map onto the codes
// of github.com/framepack/framepack/pkg/errors (invalid input, infeasible,
// model-invalid, unknown/time-limit), all raised as distinct catchable errors
// and never as partial schedules.
package packer
