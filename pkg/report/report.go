// Package report renders solved schedules into tabular views and exports.
//
// Four views are derived from a schedule, mirroring the sheets format
// engineers review:
//
//   - Objects: one row per object with its solved phase and bit range
//   - Presence: object × frame grid marking which frames each object occupies
//   - Frame order: per frame, the objects it carries in start-bit order
//   - Frame summary: object × frame grid of start bits, rows ordered by
//     first occupied bit
//
// Exporters produce JSON, CSV, and an Excel workbook with the views as
// separate sheets.
package report

import (
	"sort"
	"strconv"

	"github.com/framepack/framepack/pkg/packer"
)

// ObjectRow is one object's solved placement.
type ObjectRow struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Period int    `json:"period"`
	Phase  int    `json:"phase"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Group  string `json:"group,omitempty"`
}

// Report holds a schedule and lazily derives its tabular views.
type Report struct {
	Schedule *packer.Schedule
}

// New wraps a solved schedule for rendering.
func New(s *packer.Schedule) *Report {
	return &Report{Schedule: s}
}

// Objects returns one row per placement, in input order.
func (r *Report) Objects() []ObjectRow {
	rows := make([]ObjectRow, len(r.Schedule.Placements))
	for i, p := range r.Schedule.Placements {
		rows[i] = ObjectRow{
			Name:   p.Name,
			Size:   p.Size,
			Period: p.Period,
			Phase:  p.Phase,
			Start:  p.Start,
			End:    p.End,
			Group:  p.Group,
		}
	}
	return rows
}

// Presence returns the object × frame occupancy grid. Cell [i][f] holds the
// object's name when placement i occupies frame f, otherwise "".
func (r *Report) Presence() [][]string {
	s := r.Schedule
	grid := make([][]string, len(s.Placements))
	for i, p := range s.Placements {
		row := make([]string, s.NumFrames)
		for f := 0; f < s.NumFrames; f++ {
			if p.OccursIn(f) {
				row[f] = p.Name
			}
		}
		grid[i] = row
	}
	return grid
}

// MemoryMap returns the bit × frame layout: cell [b][f] names the object
// occupying bit b of frame f, or "" for unused bits.
func (r *Report) MemoryMap() [][]string {
	s := r.Schedule
	grid := make([][]string, s.FrameCapacity)
	for b := range grid {
		grid[b] = make([]string, s.NumFrames)
	}
	for _, p := range s.Placements {
		for f := 0; f < s.NumFrames; f++ {
			if !p.OccursIn(f) {
				continue
			}
			for b := p.Start; b < p.End; b++ {
				grid[b][f] = p.Name
			}
		}
	}
	return grid
}

// FrameOrder returns, per frame, the names of its objects in start-bit order.
func (r *Report) FrameOrder() [][]string {
	s := r.Schedule
	out := make([][]string, s.NumFrames)
	for f := 0; f < s.NumFrames; f++ {
		placements := s.Frame(f)
		names := make([]string, len(placements))
		for i, p := range placements {
			names[i] = p.Name
		}
		out[f] = names
	}
	return out
}

// SummaryRow is one line of the frame summary: an object and its start bit in
// each frame it occupies (nil where absent).
type SummaryRow struct {
	Name   string
	Starts []*int
}

// FrameSummary returns per-object start bits per frame, rows ordered by first
// occupied bit (ties keep input order).
func (r *Report) FrameSummary() []SummaryRow {
	s := r.Schedule
	order := make([]int, len(s.Placements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Placements[order[a]].Start < s.Placements[order[b]].Start
	})

	rows := make([]SummaryRow, len(order))
	for k, i := range order {
		p := s.Placements[i]
		starts := make([]*int, s.NumFrames)
		for f := 0; f < s.NumFrames; f++ {
			if p.OccursIn(f) {
				start := p.Start
				starts[f] = &start
			}
		}
		rows[k] = SummaryRow{Name: p.Name, Starts: starts}
	}
	return rows
}

func frameHeaders(numFrames int) []string {
	headers := make([]string, numFrames)
	for f := range headers {
		headers[f] = strconv.Itoa(f)
	}
	return headers
}
