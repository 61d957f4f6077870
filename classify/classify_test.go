package classify

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/seqvision/vidmask"
)

// writeMask writes a width x height mask PNG with the first n pixels
// set positive
func writeMask(t *testing.T, dir string, idx, width, height, positive int) {
	t.Helper()

	m := vidmask.NewMask(width, height)

	for i := 0; i < positive; i++ {
		m.Data[i] = 1
	}

	path := filepath.Join(dir, vidmask.MaskFileName(idx))

	if err := m.Save(path); err != nil {
		t.Fatalf("writing mask %d: %v", idx, err)
	}
}

func TestClassifyScenario(t *testing.T) {

	dir := t.TempDir()

	// 100x100 masks with ratios 0.0, 0.005, 0.01, 0.02, 1.0
	positives := []int{0, 50, 100, 200, 10000}

	for idx, n := range positives {
		writeMask(t, dir, idx, 100, 100, n)
	}

	report, err := Classify(dir, 0.01)

	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if want := []int{2, 3, 4}; !reflect.DeepEqual(report.FramesWithBody, want) {
		t.Errorf("frames_with_body = %v, want %v", report.FramesWithBody, want)
	}

	if want := []int{0, 1}; !reflect.DeepEqual(report.FramesWithoutBody, want) {
		t.Errorf("frames_without_body = %v, want %v", report.FramesWithoutBody, want)
	}

	stats := report.Statistics

	if stats.TotalFrames != 5 {
		t.Errorf("total_frames = %d, want 5", stats.TotalFrames)
	}

	if math.Abs(stats.BodyPresenceRatio-0.6) > 1e-9 {
		t.Errorf("body_presence_ratio = %v, want 0.6", stats.BodyPresenceRatio)
	}

	if stats.FrameRange.Start != 0 || stats.FrameRange.End != 4 {
		t.Errorf("frame_range = %+v, want 0-4", stats.FrameRange)
	}

	// frame 2 sits exactly on the threshold and classifies visible
	detail := report.FrameDetails[2]

	if !detail.HasBody {
		t.Error("ratio equal to threshold must classify as visible")
	}

	if detail.BodyPixels != 100 || detail.TotalPixels != 10000 {
		t.Errorf("frame 2 detail = %+v", detail)
	}
}

func TestClassifyNumericFrameOrder(t *testing.T) {

	dir := t.TempDir()

	// lexical order would report 10, 2, 9
	for _, idx := range []int{9, 10, 2} {
		m := vidmask.NewMask(10, 10)
		m.Data[0] = 1 // ratio 0.01

		if err := m.Save(filepath.Join(dir, vidmask.MaskFileName(idx))); err != nil {
			t.Fatalf("writing mask %d: %v", idx, err)
		}
	}

	report, err := Classify(dir, 0.005)

	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if want := []int{2, 9, 10}; !reflect.DeepEqual(report.FramesWithBody, want) {
		t.Errorf("frames reported in order %v, want numeric order %v",
			report.FramesWithBody, want)
	}

	if report.Statistics.FrameRange.Start != 2 || report.Statistics.FrameRange.End != 10 {
		t.Errorf("frame_range = %+v, want 2-10", report.Statistics.FrameRange)
	}
}

func TestClassifyNoInput(t *testing.T) {

	_, err := Classify(filepath.Join(t.TempDir(), "missing"), 0.01)

	if !errors.Is(err, vidmask.ErrNoInput) {
		t.Errorf("missing dir: got %v, want ErrNoInput", err)
	}

	_, err = Classify(t.TempDir(), 0.01)

	if !errors.Is(err, vidmask.ErrNoInput) {
		t.Errorf("empty dir: got %v, want ErrNoInput", err)
	}
}

func TestClassifyThresholdRange(t *testing.T) {

	for _, threshold := range []float64{0, 1, -0.5, 1.5} {
		if _, err := Classify(t.TempDir(), threshold); err == nil {
			t.Errorf("threshold %v accepted, want error", threshold)
		}
	}
}

func TestClassifyRatioSummary(t *testing.T) {

	dir := t.TempDir()

	// ratios 0.1, 0.2, 0.3 over 10x10 masks
	for idx, n := range []int{10, 20, 30} {
		writeMask(t, dir, idx, 10, 10, n)
	}

	report, err := Classify(dir, 0.05)

	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	summary := report.Statistics.RatioSummary

	if math.Abs(summary.Mean-0.2) > 1e-9 {
		t.Errorf("ratio mean = %v, want 0.2", summary.Mean)
	}

	if summary.StdDev <= 0 {
		t.Errorf("ratio std dev = %v, want > 0", summary.StdDev)
	}

	if math.Abs(summary.Median-0.2) > 1e-9 {
		t.Errorf("ratio median = %v, want 0.2", summary.Median)
	}
}

func TestReportSaveLoadRoundTrip(t *testing.T) {

	dir := t.TempDir()
	writeMask(t, dir, 0, 10, 10, 10)

	report, err := Classify(dir, 0.01)

	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	path := filepath.Join(t.TempDir(), "body_frames.json")

	if err := report.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)

	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(got, report) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, report)
	}
}
