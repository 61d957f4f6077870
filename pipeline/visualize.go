package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/render"
	"gocv.io/x/gocv"
)

// VisConfig configures one visualization run
type VisConfig struct {
	// FramesDir is the directory of source frame JPGs
	FramesDir string
	// MasksDir is the directory of per-frame mask PNGs
	MasksDir string
	// OutputDir receives one overlay JPG per mask
	OutputDir string
	// StartFrame is the offset added to each mask index to find its
	// source frame, for mask directories numbered from zero over a
	// frame range that starts later
	StartFrame int
	// Palette maps mask object ids to overlay colors, defaults to
	// the hand palette
	Palette render.Palette
	// Alpha is the blend ratio in [0,1].  0 is a valid setting and
	// reproduces the source frame, callers wanting the usual half
	// blend pass 0.5.
	Alpha float32
}

// VisStats summarises a visualization run
type VisStats struct {
	Written int
	// DegradedPixels counts pixels whose object id had no palette
	// entry and rendered as background
	DegradedPixels int
}

// Visualize overlays every mask onto its source frame and writes the
// blended images.  Masks are matched to frames by explicit frame
// index plus the start offset, a mask without a matching frame fails
// the run rather than silently pairing by position.
func Visualize(cfg VisConfig) (*VisStats, error) {

	if cfg.Palette == nil {
		cfg.Palette = render.HandPalette()
	}

	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		return nil, fmt.Errorf("alpha %v out of range, want 0 <= a <= 1", cfg.Alpha)
	}

	masks, err := vidmask.ScanIndexed(cfg.MasksDir, ".png")

	if err != nil {
		return nil, err
	}

	frames, err := vidmask.ScanIndexed(cfg.FramesDir, ".jpg")

	if err != nil {
		return nil, err
	}

	pairs, err := vidmask.PairByIndex(masks, frames, cfg.StartFrame)

	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	log.Printf("Visualizing %d masks...", len(pairs))

	stats := &VisStats{}

	for i, pair := range pairs {

		frame := gocv.IMRead(pair.Frame.Path, gocv.IMReadColor)

		if frame.Empty() {
			return stats, fmt.Errorf("error reading frame from: %s", pair.Frame.Path)
		}

		mask, err := vidmask.LoadMask(pair.Mask.Path)

		if err != nil {
			frame.Close()
			return stats, err
		}

		outPath := filepath.Join(cfg.OutputDir, vidmask.VisFileName(pair.Index))

		degraded, err := render.WriteOverlay(outPath, &frame, mask,
			cfg.Palette, cfg.Alpha)

		frame.Close()

		if err != nil {
			return stats, fmt.Errorf("frame %d: %w", pair.Index, err)
		}

		stats.Written++
		stats.DegradedPixels += degraded

		if (i+1)%10 == 0 {
			log.Printf("Processed %d/%d", i+1, len(pairs))
		}
	}

	// degradation is permissive but reported once per run, never
	// silently per pixel
	if stats.DegradedPixels > 0 {
		log.Printf("%d pixels had object ids outside the palette and rendered as background",
			stats.DegradedPixels)
	}

	log.Printf("Saved %d visualizations to %s", stats.Written, cfg.OutputDir)

	return stats, nil
}
