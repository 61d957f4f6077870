/*
Analyze a directory of body masks and report which frames show a
visible body, writing the per-frame details and aggregate statistics
to a JSON document.
*/
package main

import (
	"flag"
	"log"

	"github.com/seqvision/vidmask/classify"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	masksDir := flag.String("masks", "output/body_masks", "Directory containing body masks")
	output := flag.String("o", "body_frames.json", "Output JSON report file")
	threshold := flag.Float64("threshold", 0.01, "Minimum body pixel ratio to count as visible")

	flag.Parse()

	log.Printf("Masks directory: %s", *masksDir)
	log.Printf("Visibility threshold: %.1f%%", *threshold*100)

	report, err := classify.Classify(*masksDir, *threshold)

	if err != nil {
		log.Fatal("Error analyzing masks: ", err)
	}

	if err := report.Save(*output); err != nil {
		log.Fatal("Error saving report: ", err)
	}

	stats := report.Statistics
	total := float64(stats.TotalFrames)

	log.Printf("Total frames analyzed: %d", stats.TotalFrames)
	log.Printf("Frames with body: %d (%.1f%%)",
		stats.FramesWithBody, float64(stats.FramesWithBody)/total*100)
	log.Printf("Frames without body: %d (%.1f%%)",
		stats.FramesWithoutBody, float64(stats.FramesWithoutBody)/total*100)
	log.Printf("Frame range: %d - %d", stats.FrameRange.Start, stats.FrameRange.End)
	log.Printf("Results saved to: %s", *output)

	if len(report.FramesWithBody) > 0 {
		log.Printf("First frames with body: %v", head(report.FramesWithBody, 10))
	}

	if len(report.FramesWithoutBody) > 0 {
		log.Printf("First frames without body: %v", head(report.FramesWithoutBody, 10))
	}
}

// head returns at most the first n entries of the list
func head(list []int, n int) []int {

	if len(list) < n {
		return list
	}

	return list[:n]
}
