package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/project"
	"github.com/seqvision/vidmask/tracker"
	"gocv.io/x/gocv"
)

// BodyConfig configures one body tracking run
type BodyConfig struct {
	// FramesDir is the directory of source frame JPGs
	FramesDir string
	// OutputDir receives one binary 0/255 mask PNG per frame
	OutputDir string
	// StartFrame is the first frame index to process
	StartFrame int
	// MaxFrames limits the number of frames processed, 0 means all
	MaxFrames int
	// Estimator is the external body pose model
	Estimator tracker.BodyEstimator
	// Projector converts estimator output to occupancy masks
	Projector *project.Projector
}

// BodyStats summarises a body tracking run
type BodyStats struct {
	Processed  int
	Successful int
	Failed     int
}

// TrackBody runs the body estimator over the selected frame range and
// writes one mask file per frame.  Frames where the model detects no
// body, or where it fails outright, get an all zero mask so the
// sequence has no gaps, such failures are counted but never abort the
// batch.
func TrackBody(cfg BodyConfig) (*BodyStats, error) {

	frames, err := vidmask.ScanIndexed(cfg.FramesDir, ".jpg")

	if err != nil {
		return nil, err
	}

	selected := selectRange(frames, cfg.StartFrame, cfg.MaxFrames, 0)

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no frames at index %d or later",
			vidmask.ErrNoInput, cfg.StartFrame)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	log.Printf("Processing %d frames...", len(selected))

	stats := &BodyStats{}

	for i, frame := range selected {

		img := gocv.IMRead(frame.Path, gocv.IMReadColor)

		if img.Empty() {
			log.Printf("Frame %d: failed to load %s", frame.Index, frame.Path)
			stats.Failed++
			continue
		}

		width, height := img.Cols(), img.Rows()

		mask := processBodyFrame(cfg, &img, frame.Index)
		img.Close()

		if mask != nil {
			stats.Successful++
		} else {
			mask = vidmask.NewMask(width, height)
			stats.Failed++
		}

		outPath := filepath.Join(cfg.OutputDir, vidmask.MaskFileName(frame.Index))

		// write 0/1 occupancy as a visible 0/255 binary PNG
		if err := mask.Scaled(255).Save(outPath); err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame.Index, err)
		}

		stats.Processed++

		if (i+1)%10 == 0 {
			log.Printf("Processed %d/%d frames (Success: %d, Failed: %d)",
				i+1, len(selected), stats.Successful, stats.Failed)
		}
	}

	log.Printf("Tracking complete: %d processed, %d successful, %d failed",
		stats.Processed, stats.Successful, stats.Failed)

	return stats, nil
}

// processBodyFrame runs the estimator and projector for one frame,
// absorbing model errors into a nil mask so the batch continues
func processBodyFrame(cfg BodyConfig, img *gocv.Mat, frameIdx int) *vidmask.Mask {

	out, err := cfg.Estimator.ProcessFrame(frameIdx, img)

	if err != nil {
		log.Printf("Frame %d: processing error - %v", frameIdx, err)
		return nil
	}

	mask := cfg.Projector.Project(out, img.Rows(), img.Cols())

	if mask == nil {
		log.Printf("Frame %d: no body detected", frameIdx)
	}

	return mask
}

// selectRange picks the frames with index >= start, keeping at most
// max entries (0 means no limit) and stopping at index end when end
// is positive
func selectRange(frames []vidmask.IndexedFile, start, max, end int) []vidmask.IndexedFile {

	var selected []vidmask.IndexedFile

	for _, f := range frames {

		if f.Index < start {
			continue
		}

		if end > 0 && f.Index >= end {
			break
		}

		selected = append(selected, f)

		if max > 0 && len(selected) == max {
			break
		}
	}

	return selected
}
