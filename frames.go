package vidmask

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNoInput indicates a required input directory is missing or
	// contains no usable files
	ErrNoInput = errors.New("no input files")

	// ErrUnmatchedFrame indicates a mask index has no corresponding
	// source frame
	ErrUnmatchedFrame = errors.New("no frame for mask index")
)

// IndexedFile is a file on disk keyed by the integer frame index
// encoded in its filename
type IndexedFile struct {
	Index int
	Path  string
}

// FramePair is a mask matched to its source frame by frame index
type FramePair struct {
	// Index is the mask's own frame index
	Index int
	Mask  IndexedFile
	Frame IndexedFile
}

// ParseFrameIndex extracts the integer frame index from a frame or
// mask filename.  The index is the filename stem, either plain decimal
// with optional zero padding ("0042.png", "9.jpg") or the long form
// "frame_0000000042.jpg" produced by some frame extractors.
func ParseFrameIndex(name string) (int, error) {

	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.TrimPrefix(stem, "frame_")

	idx, err := strconv.Atoi(stem)

	if err != nil {
		return 0, fmt.Errorf("no frame index in filename %q: %w", name, err)
	}

	if idx < 0 {
		return 0, fmt.Errorf("negative frame index in filename %q", name)
	}

	return idx, nil
}

// MaskFileName returns the canonical mask filename for a frame index
func MaskFileName(idx int) string {
	return fmt.Sprintf("%04d.png", idx)
}

// VisFileName returns the canonical overlay filename for a frame index
func VisFileName(idx int) string {
	return fmt.Sprintf("vis_%04d.jpg", idx)
}

// ScanIndexed lists all files in dir with the given extension (".png",
// ".jpg") whose names carry a frame index, sorted by the numeric value
// of the index so 10 sorts after 9, never lexically.  Files without a
// parsable index are skipped.  A missing directory or a directory with
// zero matching files returns an error wrapping ErrNoInput.
func ScanIndexed(dir, ext string) ([]IndexedFile, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %v", ErrNoInput, dir, err)
	}

	var files []IndexedFile

	for _, entry := range entries {

		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}

		idx, err := ParseFrameIndex(name)

		if err != nil {
			continue
		}

		files = append(files, IndexedFile{
			Index: idx,
			Path:  filepath.Join(dir, name),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoInput, ext, dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Index < files[j].Index
	})

	return files, nil
}

// PairByIndex matches each mask to the frame whose index equals the
// mask index plus offset.  Pairing is by explicit frame index, never
// by list position, so gaps or differing start offsets between the two
// directories cannot silently misalign a batch.  Any mask without a
// matching frame fails with an error wrapping ErrUnmatchedFrame.
func PairByIndex(masks, frames []IndexedFile, offset int) ([]FramePair, error) {

	frameByIdx := make(map[int]IndexedFile, len(frames))

	for _, f := range frames {
		frameByIdx[f.Index] = f
	}

	pairs := make([]FramePair, 0, len(masks))

	for _, m := range masks {

		want := m.Index + offset
		frame, ok := frameByIdx[want]

		if !ok {
			return nil, fmt.Errorf("%w: mask %d needs frame %d",
				ErrUnmatchedFrame, m.Index, want)
		}

		pairs = append(pairs, FramePair{
			Index: m.Index,
			Mask:  m,
			Frame: frame,
		})
	}

	return pairs, nil
}
