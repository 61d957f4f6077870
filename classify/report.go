package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// FrameDetail is the per-frame visibility record derived from one
// mask, computed once per run and immutable
type FrameDetail struct {
	BodyPixels  int     `json:"body_pixels"`
	TotalPixels int     `json:"total_pixels"`
	BodyRatio   float64 `json:"body_ratio"`
	HasBody     bool    `json:"has_body"`
}

// FrameRange is the minimum and maximum frame index observed
type FrameRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RatioSummary describes the distribution of per-frame subject ratios
// across the run
type RatioSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Statistics are the aggregate figures for a classification run
type Statistics struct {
	TotalFrames       int          `json:"total_frames"`
	FramesWithBody    int          `json:"frames_with_body"`
	FramesWithoutBody int          `json:"frames_without_body"`
	BodyPresenceRatio float64      `json:"body_presence_ratio"`
	ThresholdUsed     float64      `json:"threshold_used"`
	FrameRange        FrameRange   `json:"frame_range"`
	RatioSummary      RatioSummary `json:"ratio_summary"`
}

// Report is the visibility report for one classification run.  Frame
// index lists are in ascending order.
type Report struct {
	FramesWithBody    []int               `json:"frames_with_body"`
	FramesWithoutBody []int               `json:"frames_without_body"`
	FrameDetails      map[int]FrameDetail `json:"frame_details"`
	Statistics        Statistics          `json:"statistics"`
}

// Save writes the report as an indented JSON document
func (r *Report) Save(path string) error {

	data, err := json.MarshalIndent(r, "", "  ")

	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// Load reads a previously saved report
func Load(path string) (*Report, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var r Report

	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}

	return &r, nil
}
