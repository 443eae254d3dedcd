package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type document struct {
	Status           string      `json:"status"`
	FrameCapacity    int         `json:"frame_capacity"`
	NumFrames        int         `json:"num_frames"`
	Unit             int         `json:"unit"`
	TotalUtilization int         `json:"total_utilization"`
	MaxEnd           int         `json:"max_end"`
	Objects          []ObjectRow `json:"objects"`
}

// WriteJSON encodes the schedule and its object rows as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	s := r.Schedule
	doc := document{
		Status:           s.Status.String(),
		FrameCapacity:    s.FrameCapacity,
		NumFrames:        s.NumFrames,
		Unit:             s.Unit,
		TotalUtilization: s.TotalUtilization,
		MaxEnd:           s.MaxEnd,
		Objects:          r.Objects(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the JSON report to a file at path.
func (r *Report) ExportJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return r.WriteJSON(f)
}
