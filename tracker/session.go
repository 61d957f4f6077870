package tracker

import "errors"

// ErrNoPoints indicates a labeling session was finalized without any
// points captured
var ErrNoPoints = errors.New("no points captured")

// Session accumulates the points clicked during an interactive
// labeling run.  It replaces the process wide mutable state such a
// tool would otherwise keep, the UI layer calls AddPoint and
// SwitchObject from its event handlers and Finalize when labeling is
// done.
type Session struct {
	right  []Point
	left   []Point
	active int
}

// NewSession returns a labeling session with the right hand active
func NewSession() *Session {
	return &Session{
		active: ObjectRight,
	}
}

// ActiveObject returns the object id points are currently added to
func (s *Session) ActiveObject() int {
	return s.active
}

// SwitchObject toggles the active object between right and left
func (s *Session) SwitchObject() int {

	if s.active == ObjectRight {
		s.active = ObjectLeft
	} else {
		s.active = ObjectRight
	}

	return s.active
}

// AddPoint records a clicked point against the active object
func (s *Session) AddPoint(x, y float64) {

	pt := Point{X: x, Y: y}

	if s.active == ObjectRight {
		s.right = append(s.right, pt)
	} else {
		s.left = append(s.left, pt)
	}
}

// Count returns the number of points captured for the given object
func (s *Session) Count(object int) int {

	if object == ObjectRight {
		return len(s.right)
	}

	return len(s.left)
}

// Finalize converts the captured points into a points mode PromptSet
// for the given frame index.  A session with no points at all fails
// with ErrNoPoints.
func (s *Session) Finalize(frameIdx int) (*PromptSet, error) {

	if len(s.right) == 0 && len(s.left) == 0 {
		return nil, ErrNoPoints
	}

	return &PromptSet{
		Mode:        ModePoints,
		FrameIdx:    frameIdx,
		RightPoints: append([]Point(nil), s.right...),
		LeftPoints:  append([]Point(nil), s.left...),
	}, nil
}
