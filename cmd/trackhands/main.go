/*
Track hands through a range of video frames.  Seed prompts come from
a coordinate JSON file produced by labeling, the selected frame range
is staged and handed to the video tracker backend, and the propagated
per-frame masks are exported as PNGs.

The external tracking model is driven through the tracker.VideoTracker
interface.  The built in "dry" backend validates prompts and wiring by
writing empty masks without running a model, real backends are
selected with -backend.
*/
package main

import (
	"flag"
	"log"

	"github.com/seqvision/vidmask/pipeline"
	"github.com/seqvision/vidmask/tracker"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	framesDir := flag.String("frames", "../frames_preview", "Directory containing video frames")
	coordsFile := flag.String("coords", "hand_coords.json", "JSON file with hand coordinates")
	outputDir := flag.String("o", "output/masks", "Output directory for masks")
	startFrame := flag.Int("start", 0, "Starting frame index")
	maxFrames := flag.Int("max", 1000, "Maximum number of frames to process")
	endFrame := flag.Int("end", 0, "Ending frame index, 0 = start+max")
	tempDir := flag.String("tmp", "frames_temp", "Temporary directory for frame copies")
	backend := flag.String("backend", "dry", "Video tracker backend [dry]")

	flag.Parse()

	var vt tracker.VideoTracker

	switch *backend {
	case "dry":
		vt = tracker.NewDryRunTracker()
	default:
		log.Fatalf("Unknown tracker backend %q", *backend)
	}

	prompts, err := tracker.LoadPromptSet(*coordsFile)

	if err != nil {
		log.Fatal("Error loading coordinates: ", err)
	}

	if prompts.Mode == tracker.ModeBoxes {
		log.Printf("Right hand: box=%v", prompts.RightBox != nil)
		log.Printf("Left hand: box=%v", prompts.LeftBox != nil)
	} else {
		log.Printf("Right hand: %d points", len(prompts.RightPoints))
		log.Printf("Left hand: %d points", len(prompts.LeftPoints))
	}

	proceed, err := pipeline.Guard(*outputDir, ".png", pipeline.ConfirmStdin("masks"))

	if err != nil {
		log.Fatal("Error checking output directory: ", err)
	}

	if !proceed {
		log.Print("Skipping tracking. Keeping existing masks.")
		return
	}

	err = pipeline.TrackHands(pipeline.HandsConfig{
		FramesDir:  *framesDir,
		OutputDir:  *outputDir,
		Prompts:    prompts,
		Tracker:    vt,
		StartFrame: *startFrame,
		MaxFrames:  *maxFrames,
		EndFrame:   *endFrame,
		TempDir:    *tempDir,
	})

	if err != nil {
		log.Fatal("Error tracking hands: ", err)
	}
}
