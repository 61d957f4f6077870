package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/tracker"
)

// HandsConfig configures one hand tracking run
type HandsConfig struct {
	// FramesDir is the directory of source frame JPGs
	FramesDir string
	// OutputDir receives the tracker's per-frame mask PNGs
	OutputDir string
	// Prompts seed the tracker on its first staged frame
	Prompts *tracker.PromptSet
	// Tracker is the external video object tracking model
	Tracker tracker.VideoTracker
	// StartFrame is the first frame index to process
	StartFrame int
	// MaxFrames limits the number of frames processed, 0 means all
	MaxFrames int
	// EndFrame stops before this frame index when positive
	EndFrame int
	// TempDir stages the selected frame range for the tracker, it is
	// created and removed by the run
	TempDir string
}

// TrackHands stages the selected frame range into a temporary
// directory, seeds the video tracker with the hand prompts on the
// first staged frame, propagates the labels across the range and
// exports the per-frame masks.  Right hand is object 1, left hand is
// object 2.
func TrackHands(cfg HandsConfig) error {

	if cfg.Prompts == nil {
		return fmt.Errorf("no prompt set provided")
	}

	frames, err := vidmask.ScanIndexed(cfg.FramesDir, ".jpg")

	if err != nil {
		return err
	}

	selected := selectRange(frames, cfg.StartFrame, cfg.MaxFrames, cfg.EndFrame)

	if len(selected) == 0 {
		return fmt.Errorf("%w: no frames at index %d or later",
			vidmask.ErrNoInput, cfg.StartFrame)
	}

	log.Printf("Processing frames %d to %d (%d total)",
		selected[0].Index, selected[len(selected)-1].Index, len(selected))

	// the tracker consumes a directory, stage the selected range so
	// it only ever sees the frames being processed
	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}

	defer os.RemoveAll(cfg.TempDir)

	for _, frame := range selected {
		if err := copyFile(frame.Path, filepath.Join(cfg.TempDir, filepath.Base(frame.Path))); err != nil {
			return fmt.Errorf("staging frame %d: %w", frame.Index, err)
		}
	}

	if err := cfg.Tracker.SetVideo(cfg.TempDir); err != nil {
		return fmt.Errorf("setting tracker video: %w", err)
	}

	if err := seedPrompts(cfg.Tracker, cfg.Prompts); err != nil {
		return err
	}

	log.Printf("Propagating masks through video...")

	if err := cfg.Tracker.Propagate(); err != nil {
		return fmt.Errorf("propagating labels: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := cfg.Tracker.SaveMasks(cfg.OutputDir); err != nil {
		return fmt.Errorf("saving masks: %w", err)
	}

	if err := cfg.Tracker.Close(); err != nil {
		return fmt.Errorf("closing tracker: %w", err)
	}

	log.Printf("Masks saved to %s", cfg.OutputDir)

	return nil
}

// seedPrompts adds the prompt set's annotations to the tracker, on
// frame 0 of the staged range
func seedPrompts(vt tracker.VideoTracker, ps *tracker.PromptSet) error {

	type object struct {
		id     int
		name   string
		points []tracker.Point
		box    *tracker.Box
	}

	objects := []object{
		{tracker.ObjectRight, "right", ps.RightPoints, ps.RightBox},
		{tracker.ObjectLeft, "left", ps.LeftPoints, ps.LeftBox},
	}

	for _, obj := range objects {

		switch ps.Mode {

		case tracker.ModePoints:
			if len(obj.points) == 0 {
				continue
			}

			log.Printf("Adding %s hand prompts (%d points)", obj.name, len(obj.points))

			if err := vt.AddPoints(obj.id, 0, obj.points); err != nil {
				return fmt.Errorf("adding %s hand points: %w", obj.name, err)
			}

		case tracker.ModeBoxes:
			if obj.box == nil {
				continue
			}

			log.Printf("Adding %s hand prompt (box)", obj.name)

			if err := vt.AddBox(obj.id, 0, *obj.box); err != nil {
				return fmt.Errorf("adding %s hand box: %w", obj.name, err)
			}

		default:
			return fmt.Errorf("unknown prompt mode %q", ps.Mode)
		}
	}

	return nil
}

// copyFile copies a frame file byte for byte
func copyFile(src, dst string) error {

	data, err := os.ReadFile(src)

	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0644)
}
