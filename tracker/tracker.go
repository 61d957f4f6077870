package tracker

import (
	"github.com/seqvision/vidmask/project"
	"gocv.io/x/gocv"
)

// VideoTracker is the external video object tracking model.  The
// pipeline drives it synchronously: load the frame sequence, seed it
// with prompts for each object on the labeled frame, propagate the
// labels across all frames and export the per-frame masks.  Failures
// are reported to the user but not retried.
type VideoTracker interface {
	// SetVideo points the tracker at a directory of frame images
	SetVideo(framesDir string) error
	// AddPoints seeds the tracker with point prompts for an object
	// on the given frame
	AddPoints(objID, frameIdx int, points []Point) error
	// AddBox seeds the tracker with a box prompt for an object on
	// the given frame
	AddBox(objID, frameIdx int, box Box) error
	// Propagate extends the initial frame labeling across all frames
	Propagate() error
	// SaveMasks exports one PNG mask per frame to the directory,
	// pixel value 0 background and 1..N object id
	SaveMasks(outDir string) error
	// Close releases the tracker session
	Close() error
}

// BodyEstimator is the external 3D body pose model, invoked once per
// frame.  The returned output carries whichever 2D representations
// the model produced, a nil output with nil error means no body was
// detected in the frame.
type BodyEstimator interface {
	ProcessFrame(frameIdx int, img *gocv.Mat) (*project.Output, error)
}
