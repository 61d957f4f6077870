// Package classify scans a directory of per-frame subject masks and
// classifies each frame as subject visible or not visible using a
// pixel ratio threshold.
package classify

import (
	"fmt"
	"sort"

	"github.com/seqvision/vidmask"
	"gonum.org/v1/gonum/stat"
)

// Classify discovers all mask files in maskDir, classifies each frame
// by its subject pixel ratio and aggregates the results into a
// Report.  A frame is visible when its ratio is greater than or equal
// to the threshold.  The report is deterministic for identical
// directory contents.
func Classify(maskDir string, threshold float64) (*Report, error) {

	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v out of range, want 0 < t < 1", threshold)
	}

	masks, err := vidmask.ScanIndexed(maskDir, ".png")

	if err != nil {
		return nil, err
	}

	report := &Report{
		FramesWithBody:    []int{},
		FramesWithoutBody: []int{},
		FrameDetails:      make(map[int]FrameDetail, len(masks)),
	}

	ratios := make([]float64, 0, len(masks))

	// masks arrive in ascending frame index order so the report lists
	// are built already sorted
	for _, mf := range masks {

		mask, err := vidmask.LoadMask(mf.Path)

		if err != nil {
			return nil, fmt.Errorf("loading mask for frame %d: %w", mf.Index, err)
		}

		// degenerate zero pixel masks classify as not visible with
		// ratio 0.0 rather than raising
		ratio := mask.Ratio()
		hasBody := ratio >= threshold

		report.FrameDetails[mf.Index] = FrameDetail{
			BodyPixels:  mask.CountPositive(),
			TotalPixels: len(mask.Data),
			BodyRatio:   ratio,
			HasBody:     hasBody,
		}

		if hasBody {
			report.FramesWithBody = append(report.FramesWithBody, mf.Index)
		} else {
			report.FramesWithoutBody = append(report.FramesWithoutBody, mf.Index)
		}

		ratios = append(ratios, ratio)
	}

	total := len(masks)

	report.Statistics = Statistics{
		TotalFrames:       total,
		FramesWithBody:    len(report.FramesWithBody),
		FramesWithoutBody: len(report.FramesWithoutBody),
		BodyPresenceRatio: float64(len(report.FramesWithBody)) / float64(total),
		ThresholdUsed:     threshold,
		FrameRange: FrameRange{
			Start: masks[0].Index,
			End:   masks[total-1].Index,
		},
		RatioSummary: summarize(ratios),
	}

	return report, nil
}

// summarize computes distribution statistics over the per-frame
// subject ratios
func summarize(ratios []float64) RatioSummary {

	sorted := make([]float64, len(ratios))
	copy(sorted, ratios)
	sort.Float64s(sorted)

	// sample standard deviation needs two samples, report 0 for a
	// single frame run so the value stays JSON encodable
	stdDev := 0.0

	if len(ratios) > 1 {
		stdDev = stat.StdDev(ratios, nil)
	}

	return RatioSummary{
		Mean:   stat.Mean(ratios, nil),
		StdDev: stdDev,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}
