package project

import (
	"fmt"
	"image"

	"github.com/seqvision/vidmask"
	"github.com/x448/float16"
	xdraw "golang.org/x/image/draw"
)

// ProbMap is a per-pixel probability raster produced by the pose
// model, at the model's own resolution which may be lower than the
// frame resolution.  Values are expected in the range [0,1].
type ProbMap struct {
	Width  int
	Height int
	// Data holds probabilities in row-major order, len Width*Height
	Data []float32
}

// ProbMapFromFloat32 wraps a row-major float32 probability buffer
func ProbMapFromFloat32(width, height int, data []float32) (*ProbMap, error) {

	if len(data) != width*height {
		return nil, fmt.Errorf("probability buffer has %d values, want %dx%d=%d",
			len(data), width, height, width*height)
	}

	return &ProbMap{Width: width, Height: height, Data: data}, nil
}

// ProbMapFromFloat16 converts a raw float16 probability buffer to
// float32 as Go does not have a native float16 type.  Models commonly
// emit their mask head output as a packed float16 tensor.
func ProbMapFromFloat16(width, height int, bits []uint16) (*ProbMap, error) {

	if len(bits) != width*height {
		return nil, fmt.Errorf("probability buffer has %d values, want %dx%d=%d",
			len(bits), width, height, width*height)
	}

	data := make([]float32, len(bits))

	for i, val := range bits {
		f16 := float16.Frombits(val)
		data[i] = f16.Float32()
	}

	return &ProbMap{Width: width, Height: height, Data: data}, nil
}

// ProbMapFromGray converts an 8 bit grayscale probability raster,
// such as a probability PNG, to float32 with byte value 255 mapping
// to probability 1.0
func ProbMapFromGray(width, height int, data []uint8) (*ProbMap, error) {

	if len(data) != width*height {
		return nil, fmt.Errorf("probability buffer has %d values, want %dx%d=%d",
			len(data), width, height, width*height)
	}

	out := make([]float32, len(data))

	for i, v := range data {
		out[i] = float32(v) / 255
	}

	return &ProbMap{Width: width, Height: height, Data: out}, nil
}

// ResizeTo scales the probability map to the given dimensions using
// nearest neighbour sampling.  Returns the receiver unchanged when the
// dimensions already match.
func (pm *ProbMap) ResizeTo(width, height int) *ProbMap {

	if pm.Width == width && pm.Height == height {
		return pm
	}

	src := image.NewGray16(image.Rect(0, 0, pm.Width, pm.Height))

	for i, v := range pm.Data {
		// clamp into [0,1] before quantising
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}

		g := uint16(v * 65535)
		src.Pix[i*2] = uint8(g >> 8)
		src.Pix[i*2+1] = uint8(g)
	}

	dst := image.NewGray16(image.Rect(0, 0, width, height))

	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(),
		xdraw.Src, nil)

	data := make([]float32, width*height)

	for i := range data {
		g := uint16(dst.Pix[i*2])<<8 | uint16(dst.Pix[i*2+1])
		data[i] = float32(g) / 65535
	}

	return &ProbMap{Width: width, Height: height, Data: data}
}

// Threshold converts the probability map to a binary 0/1 occupancy
// mask.  A pixel is occupied when its probability is strictly greater
// than the threshold.
func (pm *ProbMap) Threshold(threshold float32) *vidmask.Mask {

	mask := vidmask.NewMask(pm.Width, pm.Height)

	for i, v := range pm.Data {
		if v > threshold {
			mask.Data[i] = 1
		}
	}

	return mask
}
