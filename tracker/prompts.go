// Package tracker holds the seed annotations given to the external
// video object tracker and the interfaces the pipeline drives it
// through.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
)

// Prompt modes.  Points mode seeds the tracker with clicked points
// per object, boxes mode with one axis aligned box per object.
const (
	ModePoints = "points"
	ModeBoxes  = "boxes"
)

// Object ids assigned to the two tracked hands
const (
	ObjectRight = 1
	ObjectLeft  = 2
)

// Point is a single seed coordinate on the labeled frame
type Point struct {
	X float64
	Y float64
}

// Box is an axis aligned box in [xmin, ymin, xmax, ymax] order
type Box struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// PromptSet is the user supplied seed annotation for one tracking
// run, created once by labeling and consumed once by the tracking
// stage
type PromptSet struct {
	// Mode declares how Right and Left are encoded, ModePoints or
	// ModeBoxes
	Mode string
	// FrameIdx is the frame the annotations were made on
	FrameIdx int
	// Points per object, used in ModePoints
	RightPoints []Point
	LeftPoints  []Point
	// Boxes per object, used in ModeBoxes.  nil means the object was
	// not annotated.
	RightBox *Box
	LeftBox  *Box
}

// promptJSON is the wire form, where right/left hold either a list of
// [x,y] pairs or a single [xmin,ymin,xmax,ymax] box depending on mode
type promptJSON struct {
	Mode     string          `json:"mode,omitempty"`
	Right    json.RawMessage `json:"right"`
	Left     json.RawMessage `json:"left"`
	FrameIdx int             `json:"frame_idx"`
}

// LoadPromptSet reads a prompt JSON file.  Files without a mode field
// predate box support and default to points mode.
func LoadPromptSet(path string) (*PromptSet, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading prompt file: %w", err)
	}

	var raw promptJSON

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding prompt file: %w", err)
	}

	if raw.Mode == "" {
		raw.Mode = ModePoints
	}

	ps := &PromptSet{
		Mode:     raw.Mode,
		FrameIdx: raw.FrameIdx,
	}

	switch raw.Mode {

	case ModePoints:
		if ps.RightPoints, err = decodePoints(raw.Right); err != nil {
			return nil, fmt.Errorf("right points: %w", err)
		}
		if ps.LeftPoints, err = decodePoints(raw.Left); err != nil {
			return nil, fmt.Errorf("left points: %w", err)
		}

	case ModeBoxes:
		if ps.RightBox, err = decodeBox(raw.Right); err != nil {
			return nil, fmt.Errorf("right box: %w", err)
		}
		if ps.LeftBox, err = decodeBox(raw.Left); err != nil {
			return nil, fmt.Errorf("left box: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown prompt mode %q", raw.Mode)
	}

	return ps, nil
}

// Save writes the prompt set as an indented JSON document
func (ps *PromptSet) Save(path string) error {

	raw := promptJSON{
		Mode:     ps.Mode,
		FrameIdx: ps.FrameIdx,
	}

	var err error

	switch ps.Mode {

	case ModePoints:
		if raw.Right, err = encodePoints(ps.RightPoints); err != nil {
			return err
		}
		if raw.Left, err = encodePoints(ps.LeftPoints); err != nil {
			return err
		}

	case ModeBoxes:
		if raw.Right, err = encodeBox(ps.RightBox); err != nil {
			return err
		}
		if raw.Left, err = encodeBox(ps.LeftBox); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown prompt mode %q", ps.Mode)
	}

	data, err := json.MarshalIndent(raw, "", "  ")

	if err != nil {
		return fmt.Errorf("encoding prompt file: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing prompt file: %w", err)
	}

	return nil
}

func decodePoints(raw json.RawMessage) ([]Point, error) {

	if len(raw) == 0 {
		return nil, nil
	}

	var pairs [][]float64

	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(pairs))

	for _, pair := range pairs {

		if len(pair) != 2 {
			return nil, fmt.Errorf("point has %d coordinates, want 2", len(pair))
		}

		points = append(points, Point{X: pair[0], Y: pair[1]})
	}

	return points, nil
}

func encodePoints(points []Point) (json.RawMessage, error) {

	pairs := make([][]float64, 0, len(points))

	for _, pt := range points {
		pairs = append(pairs, []float64{pt.X, pt.Y})
	}

	return json.Marshal(pairs)
}

func decodeBox(raw json.RawMessage) (*Box, error) {

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var coords []float64

	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, err
	}

	if len(coords) == 0 {
		return nil, nil
	}

	if len(coords) != 4 {
		return nil, fmt.Errorf("box has %d coordinates, want 4", len(coords))
	}

	return &Box{
		XMin: coords[0],
		YMin: coords[1],
		XMax: coords[2],
		YMax: coords[3],
	}, nil
}

func encodeBox(box *Box) (json.RawMessage, error) {

	if box == nil {
		return json.RawMessage("[]"), nil
	}

	return json.Marshal([]float64{box.XMin, box.YMin, box.XMax, box.YMax})
}
