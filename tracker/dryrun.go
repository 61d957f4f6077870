package tracker

import (
	"fmt"
	"path/filepath"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/project"
	"gocv.io/x/gocv"
)

// DryRunTracker is a VideoTracker backend that performs no model
// inference.  It accepts the prompts and writes an all zero mask per
// staged frame, used to validate prompt files and pipeline wiring
// before committing to a full tracking run.
type DryRunTracker struct {
	framesDir string
	prompted  int
}

// NewDryRunTracker returns a DryRunTracker instance
func NewDryRunTracker() *DryRunTracker {
	return &DryRunTracker{}
}

func (d *DryRunTracker) SetVideo(framesDir string) error {
	d.framesDir = framesDir
	return nil
}

func (d *DryRunTracker) AddPoints(objID, frameIdx int, points []Point) error {
	d.prompted++
	return nil
}

func (d *DryRunTracker) AddBox(objID, frameIdx int, box Box) error {
	d.prompted++
	return nil
}

func (d *DryRunTracker) Propagate() error {

	if d.prompted == 0 {
		return fmt.Errorf("no prompts added before propagation")
	}

	return nil
}

// SaveMasks writes one empty mask per staged frame, numbered from
// zero like the real tracker's export
func (d *DryRunTracker) SaveMasks(outDir string) error {

	frames, err := vidmask.ScanIndexed(d.framesDir, ".jpg")

	if err != nil {
		return err
	}

	for i, frame := range frames {

		img := gocv.IMRead(frame.Path, gocv.IMReadColor)

		if img.Empty() {
			return fmt.Errorf("error reading frame from: %s", frame.Path)
		}

		mask := vidmask.NewMask(img.Cols(), img.Rows())
		img.Close()

		if err := mask.Save(filepath.Join(outDir, vidmask.MaskFileName(i))); err != nil {
			return err
		}
	}

	return nil
}

func (d *DryRunTracker) Close() error {
	return nil
}

// DryRunEstimator is a BodyEstimator backend that performs no model
// inference, reporting no detection for every frame so the pipeline
// writes an all zero mask per frame.  Used to validate wiring and
// output layout before committing to a full pose run.
type DryRunEstimator struct{}

// NewDryRunEstimator returns a DryRunEstimator instance
func NewDryRunEstimator() *DryRunEstimator {
	return &DryRunEstimator{}
}

func (d *DryRunEstimator) ProcessFrame(frameIdx int, img *gocv.Mat) (*project.Output, error) {
	return nil, nil
}
