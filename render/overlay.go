// Package render produces human viewable overlay images by blending
// palette colored mask renderings onto the source frames.
package render

import (
	"fmt"

	"github.com/seqvision/vidmask"
	"gocv.io/x/gocv"
)

// Overlay blends the palette colored rendering of the mask onto the
// image in place at the given alpha, out = frame*(1-alpha) +
// color*alpha per channel rounded to the nearest byte.  The blend
// formula is applied at every
// pixel including background so the output is exactly the weighted
// sum of the frame and the colored mask.  Returns the number of
// pixels whose object id had no palette entry and degraded to the
// background color, so callers can log the degradation once per run
// instead of failing the batch.
//
// The caller must ensure img is an 8 bit 3 channel Mat and that the
// mask has one value per image pixel, Composite performs these checks.
func Overlay(img *gocv.Mat, mask []uint8, palette Palette, alpha float32) int {

	// get dimensions
	width := img.Cols()
	height := img.Rows()

	// it is too slow to manipulate pixel by pixel using GoCV due to
	// slowness over CGO.  So we copy the bytes from the source image
	// and manipulate the bytes directly before copying back to a Mat.
	imgData := img.ToBytes()

	degraded := 0

	// iterate over each pixel in the mask
	for j := 0; j < height; j++ {
		for k := 0; k < width; k++ {

			idx := j*width + k

			clr, known := palette.lookup(mask[idx])

			if !known {
				degraded++
			}

			// calculate position in the byte slice
			pixelPos := j*width*3 + k*3

			// get original pixel colors directly from the byte slice
			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			// calculate blended colors based on alpha transparency,
			// rounded to the nearest value
			imgData[pixelPos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha + 0.5)
			imgData[pixelPos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha + 0.5)
			imgData[pixelPos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha + 0.5)
		}
	}

	// copy back to the original mat
	tmpImg, _ := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)
	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return degraded
}

// Composite overlays the mask onto a copy of the frame and returns
// the blended image along with the degraded pixel count.  The output
// has the same dimensions and channel depth as the input frame.
// Frame and mask dimensions must match.
func Composite(frame *gocv.Mat, mask *vidmask.Mask, palette Palette,
	alpha float32) (gocv.Mat, int, error) {

	if frame.Cols() != mask.Width || frame.Rows() != mask.Height {
		return gocv.Mat{}, 0, fmt.Errorf(
			"frame is %dx%d but mask is %dx%d",
			frame.Cols(), frame.Rows(), mask.Width, mask.Height)
	}

	if frame.Type() != gocv.MatTypeCV8UC3 {
		return gocv.Mat{}, 0, fmt.Errorf("frame must be an 8 bit 3 channel image")
	}

	out := frame.Clone()
	degraded := Overlay(&out, mask.Data, palette, alpha)

	return out, degraded, nil
}

// WriteOverlay composites the mask onto the frame and writes the
// result to an image file
func WriteOverlay(filename string, frame *gocv.Mat, mask *vidmask.Mask,
	palette Palette, alpha float32) (int, error) {

	out, degraded, err := Composite(frame, mask, palette, alpha)

	if err != nil {
		return 0, err
	}

	defer out.Close()

	if !gocv.IMWrite(filename, out) {
		return degraded, fmt.Errorf("failed to write overlay to: %s", filename)
	}

	return degraded, nil
}
