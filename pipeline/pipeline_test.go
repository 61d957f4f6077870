package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqvision/vidmask"
	"github.com/seqvision/vidmask/project"
	"github.com/seqvision/vidmask/tracker"
	"gocv.io/x/gocv"
)

// writeFrame writes a width x height JPG frame named by index
func writeFrame(t *testing.T, dir string, idx, width, height int) {
	t.Helper()

	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer img.Close()

	path := filepath.Join(dir, fmt.Sprintf("%04d.jpg", idx))

	if !gocv.IMWrite(path, img) {
		t.Fatalf("writing frame %d", idx)
	}
}

func TestTrackBody(t *testing.T) {

	framesDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "body_masks")

	for idx := 0; idx < 3; idx++ {
		writeFrame(t, framesDir, idx, 20, 20)
	}

	estimator := tracker.NewMockBodyEstimator()

	// frame 0 detects a body, frame 1 has no detection, frame 2
	// fails outright
	estimator.Outputs = []*project.Output{
		{
			Keypoints: []project.Keypoint{
				{X: 2, Y: 2, Confidence: 1.0},
				{X: 15, Y: 2, Confidence: 1.0},
				{X: 15, Y: 15, Confidence: 1.0},
				{X: 2, Y: 15, Confidence: 1.0},
			},
		},
		nil,
		nil,
	}
	estimator.Errs = []error{nil, nil, errors.New("model exploded")}

	stats, err := TrackBody(BodyConfig{
		FramesDir: framesDir,
		OutputDir: outDir,
		Estimator: estimator,
		Projector: project.NewProjector(project.DefaultParams()),
	})

	if err != nil {
		t.Fatalf("TrackBody: %v", err)
	}

	if stats.Processed != 3 || stats.Successful != 1 || stats.Failed != 2 {
		t.Errorf("stats = %+v, want 3 processed, 1 successful, 2 failed", stats)
	}

	// every frame has a mask file even on failure
	for idx := 0; idx < 3; idx++ {

		mask, err := vidmask.LoadMask(filepath.Join(outDir, vidmask.MaskFileName(idx)))

		if err != nil {
			t.Fatalf("mask %d missing: %v", idx, err)
		}

		if mask.Width != 20 || mask.Height != 20 {
			t.Errorf("mask %d is %dx%d, want 20x20", idx, mask.Width, mask.Height)
		}

		if idx == 0 && mask.CountPositive() == 0 {
			t.Error("mask 0 is empty, want projected hull")
		}

		if idx > 0 && mask.CountPositive() != 0 {
			t.Errorf("mask %d has %d positive pixels, want all zero",
				idx, mask.CountPositive())
		}
	}
}

func TestTrackBodyFrameRange(t *testing.T) {

	framesDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "body_masks")

	for idx := 0; idx < 5; idx++ {
		writeFrame(t, framesDir, idx, 10, 10)
	}

	estimator := tracker.NewMockBodyEstimator()

	stats, err := TrackBody(BodyConfig{
		FramesDir:  framesDir,
		OutputDir:  outDir,
		StartFrame: 2,
		MaxFrames:  2,
		Estimator:  estimator,
		Projector:  project.NewProjector(project.DefaultParams()),
	})

	if err != nil {
		t.Fatalf("TrackBody: %v", err)
	}

	if stats.Processed != 2 {
		t.Errorf("processed %d frames, want 2", stats.Processed)
	}

	if estimator.Calls() != 2 {
		t.Errorf("estimator invoked %d times, want 2", estimator.Calls())
	}

	// masks keyed by absolute frame index
	for _, idx := range []int{2, 3} {
		if _, err := os.Stat(filepath.Join(outDir, vidmask.MaskFileName(idx))); err != nil {
			t.Errorf("mask %d missing: %v", idx, err)
		}
	}

	if _, err := os.Stat(filepath.Join(outDir, vidmask.MaskFileName(0))); err == nil {
		t.Error("mask 0 written outside the selected range")
	}
}

// the dry run backend produces a complete all zero mask sequence
// without any model output
func TestTrackBodyDryRun(t *testing.T) {

	framesDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "body_masks")

	for idx := 0; idx < 2; idx++ {
		writeFrame(t, framesDir, idx, 10, 10)
	}

	stats, err := TrackBody(BodyConfig{
		FramesDir: framesDir,
		OutputDir: outDir,
		Estimator: tracker.NewDryRunEstimator(),
		Projector: project.NewProjector(project.DefaultParams()),
	})

	if err != nil {
		t.Fatalf("TrackBody: %v", err)
	}

	if stats.Processed != 2 || stats.Successful != 0 {
		t.Errorf("stats = %+v, want 2 processed, 0 successful", stats)
	}

	for idx := 0; idx < 2; idx++ {

		mask, err := vidmask.LoadMask(filepath.Join(outDir, vidmask.MaskFileName(idx)))

		if err != nil {
			t.Fatalf("mask %d missing: %v", idx, err)
		}

		if mask.CountPositive() != 0 {
			t.Errorf("mask %d has %d positive pixels, want all zero",
				idx, mask.CountPositive())
		}
	}
}

func TestTrackBodyNoInput(t *testing.T) {

	_, err := TrackBody(BodyConfig{
		FramesDir: filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
		Estimator: tracker.NewMockBodyEstimator(),
		Projector: project.NewProjector(project.DefaultParams()),
	})

	if !errors.Is(err, vidmask.ErrNoInput) {
		t.Errorf("got %v, want ErrNoInput", err)
	}
}

func TestTrackHands(t *testing.T) {

	framesDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "masks")
	tempDir := filepath.Join(t.TempDir(), "frames_temp")

	for idx := 0; idx < 4; idx++ {
		writeFrame(t, framesDir, idx, 10, 10)
	}

	mock := tracker.NewMockVideoTracker()
	saved := false
	mock.SaveFunc = func(dir string) error {
		saved = true
		// tracker sees only the staged range
		entries, err := os.ReadDir(mock.FramesDir)
		if err != nil {
			return err
		}
		if len(entries) != 2 {
			return fmt.Errorf("staged %d frames, want 2", len(entries))
		}
		return nil
	}

	prompts := &tracker.PromptSet{
		Mode:        tracker.ModePoints,
		RightPoints: []tracker.Point{{X: 1, Y: 2}},
		LeftPoints:  []tracker.Point{{X: 3, Y: 4}, {X: 5, Y: 6}},
	}

	err := TrackHands(HandsConfig{
		FramesDir:  framesDir,
		OutputDir:  outDir,
		Prompts:    prompts,
		Tracker:    mock,
		StartFrame: 1,
		MaxFrames:  2,
		TempDir:    tempDir,
	})

	if err != nil {
		t.Fatalf("TrackHands: %v", err)
	}

	if !saved || !mock.Propagated || !mock.Closed {
		t.Errorf("saved=%v propagated=%v closed=%v, want all true",
			saved, mock.Propagated, mock.Closed)
	}

	if len(mock.Points[tracker.ObjectRight]) != 1 ||
		len(mock.Points[tracker.ObjectLeft]) != 2 {
		t.Errorf("seeded points = %v", mock.Points)
	}

	// staging directory cleaned up
	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Error("temp directory left behind")
	}
}

func TestTrackHandsBoxMode(t *testing.T) {

	framesDir := t.TempDir()
	writeFrame(t, framesDir, 0, 10, 10)

	mock := tracker.NewMockVideoTracker()

	prompts := &tracker.PromptSet{
		Mode:     tracker.ModeBoxes,
		RightBox: &tracker.Box{XMin: 1, YMin: 2, XMax: 3, YMax: 4},
	}

	err := TrackHands(HandsConfig{
		FramesDir: framesDir,
		OutputDir: filepath.Join(t.TempDir(), "masks"),
		Prompts:   prompts,
		Tracker:   mock,
		TempDir:   filepath.Join(t.TempDir(), "tmp"),
	})

	if err != nil {
		t.Fatalf("TrackHands: %v", err)
	}

	box, ok := mock.Boxes[tracker.ObjectRight]

	if !ok || box != *prompts.RightBox {
		t.Errorf("seeded boxes = %v", mock.Boxes)
	}

	if _, ok := mock.Boxes[tracker.ObjectLeft]; ok {
		t.Error("unannotated left hand must not be seeded")
	}
}

func TestVisualize(t *testing.T) {

	framesDir := t.TempDir()
	masksDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "vis")

	// masks numbered from 0, frames from 5
	for _, idx := range []int{5, 6} {
		writeFrame(t, framesDir, idx, 8, 8)
	}

	for _, idx := range []int{0, 1} {

		m := vidmask.NewMask(8, 8)
		m.Set(0, 0, 1)
		m.Set(1, 0, 9) // no palette entry, degrades to background

		if err := m.Save(filepath.Join(masksDir, vidmask.MaskFileName(idx))); err != nil {
			t.Fatalf("writing mask %d: %v", idx, err)
		}
	}

	stats, err := Visualize(VisConfig{
		FramesDir:  framesDir,
		MasksDir:   masksDir,
		OutputDir:  outDir,
		StartFrame: 5,
		Alpha:      0.5,
	})

	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}

	if stats.Written != 2 {
		t.Errorf("wrote %d overlays, want 2", stats.Written)
	}

	if stats.DegradedPixels != 2 {
		t.Errorf("degraded pixels = %d, want 2", stats.DegradedPixels)
	}

	for _, idx := range []int{0, 1} {
		if _, err := os.Stat(filepath.Join(outDir, vidmask.VisFileName(idx))); err != nil {
			t.Errorf("overlay %d missing: %v", idx, err)
		}
	}
}

// a mask without a matching frame fails the run instead of silently
// pairing by list position
func TestVisualizeUnmatchedFrame(t *testing.T) {

	framesDir := t.TempDir()
	masksDir := t.TempDir()

	writeFrame(t, framesDir, 0, 8, 8)

	m := vidmask.NewMask(8, 8)

	if err := m.Save(filepath.Join(masksDir, vidmask.MaskFileName(3))); err != nil {
		t.Fatalf("writing mask: %v", err)
	}

	_, err := Visualize(VisConfig{
		FramesDir: framesDir,
		MasksDir:  masksDir,
		OutputDir: filepath.Join(t.TempDir(), "vis"),
		Alpha:     0.5,
	})

	if !errors.Is(err, vidmask.ErrUnmatchedFrame) {
		t.Errorf("got %v, want ErrUnmatchedFrame", err)
	}
}

// alpha 0 is a valid setting, out of range values are rejected
func TestVisualizeAlphaRange(t *testing.T) {

	framesDir := t.TempDir()
	masksDir := t.TempDir()

	writeFrame(t, framesDir, 0, 8, 8)

	if err := vidmask.NewMask(8, 8).Save(filepath.Join(masksDir, vidmask.MaskFileName(0))); err != nil {
		t.Fatalf("writing mask: %v", err)
	}

	stats, err := Visualize(VisConfig{
		FramesDir: framesDir,
		MasksDir:  masksDir,
		OutputDir: filepath.Join(t.TempDir(), "vis"),
		Alpha:     0,
	})

	if err != nil {
		t.Fatalf("Visualize with alpha 0: %v", err)
	}

	if stats.Written != 1 {
		t.Errorf("wrote %d overlays, want 1", stats.Written)
	}

	for _, alpha := range []float32{-0.1, 1.5} {

		_, err := Visualize(VisConfig{
			FramesDir: framesDir,
			MasksDir:  masksDir,
			OutputDir: filepath.Join(t.TempDir(), "vis"),
			Alpha:     alpha,
		})

		if err == nil {
			t.Errorf("alpha %v accepted, want error", alpha)
		}
	}
}

func TestGuard(t *testing.T) {

	// missing directory proceeds
	proceed, err := Guard(filepath.Join(t.TempDir(), "new"), ".png", nil)

	if err != nil || !proceed {
		t.Errorf("missing dir: proceed=%v err=%v, want proceed", proceed, err)
	}

	// populated directory with nil confirm skips
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "0000.png"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	proceed, err = Guard(dir, ".png", nil)

	if err != nil || proceed {
		t.Errorf("non-interactive: proceed=%v err=%v, want skip", proceed, err)
	}

	// declined confirmation skips and keeps the files
	proceed, _ = Guard(dir, ".png", func(n int) bool {
		if n != 1 {
			t.Errorf("confirm called with %d, want 1", n)
		}
		return false
	})

	if proceed {
		t.Error("declined confirmation must skip")
	}

	if _, err := os.Stat(filepath.Join(dir, "0000.png")); err != nil {
		t.Error("declined confirmation must keep existing files")
	}

	// accepted confirmation deletes and proceeds
	proceed, err = Guard(dir, ".png", func(n int) bool { return true })

	if err != nil || !proceed {
		t.Errorf("accepted: proceed=%v err=%v, want proceed", proceed, err)
	}

	if _, err := os.Stat(filepath.Join(dir, "0000.png")); !os.IsNotExist(err) {
		t.Error("accepted confirmation must delete existing files")
	}

	// other extensions are untouched
	dir2 := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir2, "report.json"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	proceed, err = Guard(dir2, ".png", nil)

	if err != nil || !proceed {
		t.Errorf("unrelated files: proceed=%v err=%v, want proceed", proceed, err)
	}
}
