package vidmask

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Mask is a single channel raster the same size as its source frame.
// Pixel value 0 is background, any positive value is an object
// identifier (1 = first tracked object, 2 = second tracked object, or
// simply >0 meaning subject present for binary masks).
type Mask struct {
	Width  int
	Height int
	// Data holds pixel values in row-major order, len Width*Height
	Data []uint8
}

// NewMask returns a zero initialized mask of the given dimensions
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
}

// MaskFromBytes wraps an existing row-major pixel buffer as a Mask
func MaskFromBytes(width, height int, data []uint8) (*Mask, error) {

	if len(data) != width*height {
		return nil, fmt.Errorf("mask buffer has %d pixels, want %dx%d=%d",
			len(data), width, height, width*height)
	}

	return &Mask{Width: width, Height: height, Data: data}, nil
}

// At returns the pixel value at the given coordinate
func (m *Mask) At(x, y int) uint8 {
	return m.Data[y*m.Width+x]
}

// Set writes the pixel value at the given coordinate
func (m *Mask) Set(x, y int, v uint8) {
	m.Data[y*m.Width+x] = v
}

// CountPositive returns the number of pixels with a value greater
// than zero
func (m *Mask) CountPositive() int {

	count := 0

	for _, v := range m.Data {
		if v > 0 {
			count++
		}
	}

	return count
}

// Ratio returns the fraction of pixels belonging to the subject.  A
// degenerate mask with zero total pixels has ratio 0.0 rather than
// dividing by zero.
func (m *Mask) Ratio() float64 {

	total := len(m.Data)

	if total == 0 {
		return 0.0
	}

	return float64(m.CountPositive()) / float64(total)
}

// Scaled returns a copy of the mask with every positive pixel
// multiplied by the given factor, used to write 0/1 occupancy masks
// out as visible 0/255 binary PNG files
func (m *Mask) Scaled(factor uint8) *Mask {

	out := NewMask(m.Width, m.Height)

	for i, v := range m.Data {
		out.Data[i] = v * factor
	}

	return out
}

// LoadMask reads a mask PNG file from disk as a single channel 8 bit
// raster.  Multi channel input is converted to grayscale.
func LoadMask(path string) (*Mask, error) {

	img := gocv.IMRead(path, gocv.IMReadGrayScale)

	if img.Empty() {
		return nil, fmt.Errorf("error reading mask from: %s", path)
	}

	defer img.Close()

	data := img.ToBytes()
	buf := make([]uint8, len(data))
	copy(buf, data)

	return &Mask{
		Width:  img.Cols(),
		Height: img.Rows(),
		Data:   buf,
	}, nil
}

// Save writes the mask to disk as a single channel 8 bit PNG
func (m *Mask) Save(path string) error {

	img, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, m.Data)

	if err != nil {
		return fmt.Errorf("error creating mask Mat: %w", err)
	}

	defer img.Close()

	if !gocv.IMWrite(path, img) {
		return fmt.Errorf("failed to write mask to: %s", path)
	}

	return nil
}
