package project

import (
	"image"
	"image/color"

	clipper "github.com/ctessum/go.clipper"
	"github.com/seqvision/vidmask"
	"gocv.io/x/gocv"
)

// Keypoint is a single 2D body keypoint with its detection confidence
// in the range [0,1]
type Keypoint struct {
	X          float32
	Y          float32
	Confidence float32
}

// Output is the raw result of running the pose estimator on one
// frame.  Either representation may be absent, a nil Output means the
// model detected nothing at all.
type Output struct {
	// Keypoints are the 2D projected body keypoints, preferred over
	// the probability map when enough confident points are present
	Keypoints []Keypoint
	// ProbMap is the model's rendered probability mask, used as the
	// fallback representation
	ProbMap *ProbMap
}

// Params defines the configuration parameters used for projecting
// model output to an occupancy mask
type Params struct {
	// ConfidenceThreshold is the minimum confidence a keypoint must
	// exceed to contribute to the hull, and the cutoff applied
	// element-wise to probability maps
	ConfidenceThreshold float32
}

// DefaultParams returns an instance of Params configured with
// default values featuring:
// - Confidence Threshold: 0.5
func DefaultParams() Params {
	return Params{
		ConfidenceThreshold: 0.5,
	}
}

// Projector converts one frame's raw pose model output into a binary
// occupancy mask of the frame's dimensions
type Projector struct {
	// Params are the projection configuration parameters
	Params Params
}

// NewProjector returns an instance of the Projector
func NewProjector(p Params) *Projector {
	return &Projector{
		Params: p,
	}
}

// Project turns the model output for a single frame into a binary 0/1
// occupancy mask of the given dimensions.  Representations are tried
// in a fixed priority order: keypoints first, the probability map as
// fallback.  A keypoint set with fewer than three confident points
// cannot form a hull and does not suppress a valid probability map.
// Returns nil when no usable representation exists, callers must
// substitute an all zero mask so the frame sequence has no gaps.
func (p *Projector) Project(out *Output, height, width int) *vidmask.Mask {

	if out == nil {
		return nil
	}

	if len(out.Keypoints) > 0 {

		valid := make([]image.Point, 0, len(out.Keypoints))

		for _, kp := range out.Keypoints {
			if kp.Confidence > p.Params.ConfidenceThreshold {
				valid = append(valid, image.Pt(int(kp.X), int(kp.Y)))
			}
		}

		// a hull needs at least 3 points, otherwise fall through to
		// the probability map
		if len(valid) >= 3 {
			return rasterizeHull(valid, height, width)
		}
	}

	if out.ProbMap != nil {
		return out.ProbMap.ResizeTo(width, height).
			Threshold(p.Params.ConfidenceThreshold)
	}

	return nil
}

// rasterizeHull computes the convex hull of the given points, clips it
// to the frame rectangle and rasterizes the filled polygon into a zero
// initialized mask, writing value 1 inside the hull inclusive of the
// boundary
func rasterizeHull(points []image.Point, height, width int) *vidmask.Mask {

	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()

	hullMat := gocv.NewMat()
	defer hullMat.Close()

	gocv.ConvexHull(pv, &hullMat, false, true)

	hull := make([]image.Point, hullMat.Rows())

	for i := 0; i < hullMat.Rows(); i++ {
		v := hullMat.GetVeciAt(i, 0)
		hull[i] = image.Pt(int(v[0]), int(v[1]))
	}

	// clip the hull to the frame rectangle so keypoints projected
	// outside the frame cannot place polygon vertices out of bounds
	clipped := clipToFrame(hull, height, width)

	mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	defer mask.Close()

	if len(clipped) > 0 {
		ptsVector := gocv.NewPointsVectorFromPoints(clipped)
		defer ptsVector.Close()

		gocv.FillPoly(&mask, ptsVector, color.RGBA{R: 1, G: 1, B: 1, A: 0})
	}

	data := mask.ToBytes()
	buf := make([]uint8, len(data))
	copy(buf, data)

	out, _ := vidmask.MaskFromBytes(width, height, buf)

	return out
}

// clipToFrame intersects the hull polygon with the frame rectangle
func clipToFrame(hull []image.Point, height, width int) [][]image.Point {

	var subject clipper.Path

	for _, pt := range hull {
		subject = append(subject, &clipper.IntPoint{
			X: clipper.CInt(pt.X),
			Y: clipper.CInt(pt.Y),
		})
	}

	frame := clipper.Path{
		&clipper.IntPoint{X: 0, Y: 0},
		&clipper.IntPoint{X: clipper.CInt(width - 1), Y: 0},
		&clipper.IntPoint{X: clipper.CInt(width - 1), Y: clipper.CInt(height - 1)},
		&clipper.IntPoint{X: 0, Y: clipper.CInt(height - 1)},
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(subject, clipper.PtSubject, true)
	c.AddPath(frame, clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection,
		clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return nil
	}

	polys := make([][]image.Point, 0, len(solution))

	for _, path := range solution {

		poly := make([]image.Point, 0, len(path))

		for _, pt := range path {
			poly = append(poly, image.Pt(int(pt.X), int(pt.Y)))
		}

		if len(poly) >= 3 {
			polys = append(polys, poly)
		}
	}

	return polys
}
