package tracker

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/project"
	"gocv.io/x/gocv"
)

// FileEstimator adapts a directory of pose model output files to the
// BodyEstimator interface.  The external model runs out of process
// and dumps one JSON document per frame, named by zero padded frame
// index, so the mask pipeline can run without the model loaded.
//
// Each document carries the 2D keypoints as [x, y, confidence]
// triples and, optionally, a rendered probability map next to the
// JSON, either a raw packed float16 file or an 8 bit grayscale PNG:
//
//	{
//	  "keypoints": [[412.0, 200.5, 0.98], ...],
//	  "prob_map": {"width": 256, "height": 256, "file": "0001.f16"}
//	}
//
// A frame with no output file is a frame where the model detected
// nothing.
type FileEstimator struct {
	dir string
}

// NewFileEstimator returns a FileEstimator reading pose outputs from
// the given directory
func NewFileEstimator(dir string) (*FileEstimator, error) {

	info, err := os.Stat(dir)

	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: pose output directory %s", vidmask.ErrNoInput, dir)
	}

	return &FileEstimator{dir: dir}, nil
}

// poseFile is the on disk form of one frame's pose output
type poseFile struct {
	Keypoints [][]float64 `json:"keypoints"`
	ProbMap   *struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		File   string `json:"file"`
	} `json:"prob_map"`
}

// ProcessFrame loads the pose output for the given frame index
func (e *FileEstimator) ProcessFrame(frameIdx int, img *gocv.Mat) (*project.Output, error) {

	path := filepath.Join(e.dir, fmt.Sprintf("%04d.json", frameIdx))

	data, err := os.ReadFile(path)

	if os.IsNotExist(err) {
		// no output file means no detection this frame
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading pose output: %w", err)
	}

	var pf poseFile

	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decoding pose output %s: %w", path, err)
	}

	out := &project.Output{}

	for _, kp := range pf.Keypoints {

		if len(kp) != 3 {
			return nil, fmt.Errorf("keypoint in %s has %d values, want 3", path, len(kp))
		}

		out.Keypoints = append(out.Keypoints, project.Keypoint{
			X:          float32(kp[0]),
			Y:          float32(kp[1]),
			Confidence: float32(kp[2]),
		})
	}

	if pf.ProbMap != nil {

		pm, err := e.loadProbMap(pf.ProbMap.File, pf.ProbMap.Width, pf.ProbMap.Height)

		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", frameIdx, err)
		}

		out.ProbMap = pm
	}

	if len(out.Keypoints) == 0 && out.ProbMap == nil {
		return nil, nil
	}

	return out, nil
}

// loadProbMap reads a probability buffer, an 8 bit grayscale PNG or a
// raw little endian packed float16 file depending on extension
func (e *FileEstimator) loadProbMap(name string, width, height int) (*project.ProbMap, error) {

	if strings.EqualFold(filepath.Ext(name), ".png") {

		m, err := vidmask.LoadMask(filepath.Join(e.dir, name))

		if err != nil {
			return nil, fmt.Errorf("reading probability map: %w", err)
		}

		if m.Width != width || m.Height != height {
			return nil, fmt.Errorf("probability map %s is %dx%d, want %dx%d",
				name, m.Width, m.Height, width, height)
		}

		return project.ProbMapFromGray(m.Width, m.Height, m.Data)
	}

	raw, err := os.ReadFile(filepath.Join(e.dir, name))

	if err != nil {
		return nil, fmt.Errorf("reading probability map: %w", err)
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("probability map %s has odd byte length", name)
	}

	bits := make([]uint16, len(raw)/2)

	for i := range bits {
		bits[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return project.ProbMapFromFloat16(width, height, bits)
}
