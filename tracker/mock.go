package tracker

import (
	"github.com/seqvision/vidmask/project"
	"gocv.io/x/gocv"
)

// MockVideoTracker is a test implementation of the VideoTracker
// interface.  It records the calls made against it and lets tests
// control the masks written by SaveMasks.
type MockVideoTracker struct {
	FramesDir string
	Points    map[int][]Point
	Boxes     map[int]Box
	// SaveFunc writes the per-frame masks when SaveMasks is called
	SaveFunc func(outDir string) error
	// Err is returned by every call when set
	Err error

	Propagated bool
	Closed     bool
}

// NewMockVideoTracker creates a new MockVideoTracker instance
func NewMockVideoTracker() *MockVideoTracker {
	return &MockVideoTracker{
		Points: make(map[int][]Point),
		Boxes:  make(map[int]Box),
	}
}

func (m *MockVideoTracker) SetVideo(framesDir string) error {
	if m.Err != nil {
		return m.Err
	}
	m.FramesDir = framesDir
	return nil
}

func (m *MockVideoTracker) AddPoints(objID, frameIdx int, points []Point) error {
	if m.Err != nil {
		return m.Err
	}
	m.Points[objID] = append(m.Points[objID], points...)
	return nil
}

func (m *MockVideoTracker) AddBox(objID, frameIdx int, box Box) error {
	if m.Err != nil {
		return m.Err
	}
	m.Boxes[objID] = box
	return nil
}

func (m *MockVideoTracker) Propagate() error {
	if m.Err != nil {
		return m.Err
	}
	m.Propagated = true
	return nil
}

func (m *MockVideoTracker) SaveMasks(outDir string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.SaveFunc != nil {
		return m.SaveFunc(outDir)
	}
	return nil
}

func (m *MockVideoTracker) Close() error {
	m.Closed = true
	return nil
}

// MockBodyEstimator is a test implementation of the BodyEstimator
// interface.  Outputs are returned in call order, a nil entry stands
// for a frame with no detected body.
type MockBodyEstimator struct {
	Outputs []*project.Output
	// Errs holds a per-call error, nil entries succeed
	Errs []error

	calls int
}

// NewMockBodyEstimator creates a new MockBodyEstimator instance
func NewMockBodyEstimator() *MockBodyEstimator {
	return &MockBodyEstimator{}
}

// ProcessFrame returns the next pre-configured output or error
func (m *MockBodyEstimator) ProcessFrame(frameIdx int, img *gocv.Mat) (*project.Output, error) {

	call := m.calls
	m.calls++

	if call < len(m.Errs) && m.Errs[call] != nil {
		return nil, m.Errs[call]
	}

	if call < len(m.Outputs) {
		return m.Outputs[call], nil
	}

	return nil, nil
}

// Calls returns the number of frames processed so far
func (m *MockBodyEstimator) Calls() int {
	return m.calls
}
