package driver

import (
	"encoding/json"
	"io"

	"mirbuild/internal/observ"
)

// TimingPayload is the machine-readable form of Result.Timing.
type TimingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// NewTimingPayload describes res for the file at path.
func NewTimingPayload(path string, res *Result) TimingPayload {
	return TimingPayload{
		Kind:    "lower",
		Path:    path,
		Cached:  res.Cached,
		TotalMS: res.Timing.TotalMS,
		Phases:  res.Timing.Phases,
	}
}

// WriteTimingsJSON writes p as one JSON line.
func WriteTimingsJSON(w io.Writer, p TimingPayload) error {
	if p.Phases == nil {
		p.Phases = []observ.PhaseReport{}
	}
	return json.NewEncoder(w).Encode(p)
}
