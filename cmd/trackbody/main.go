/*
Project per-frame body pose model output to binary body masks, one
0/255 PNG per frame.  The pose model runs out of process and dumps
its per-frame output files to a directory, see tracker.FileEstimator
for the format.

Estimator backends are selected with -backend.  The default "file"
backend reads the dumped pose output files, the "dry" backend writes
empty masks without reading any model output to validate wiring.
*/
package main

import (
	"flag"
	"log"

	"github.com/seqvision/vidmask/pipeline"
	"github.com/seqvision/vidmask/project"
	"github.com/seqvision/vidmask/tracker"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	framesDir := flag.String("frames", "../frames_preview", "Directory containing video frames")
	poseDir := flag.String("pose", "output/pose", "Directory containing per-frame pose model output files")
	outputDir := flag.String("o", "output/body_masks", "Output directory for masks")
	startFrame := flag.Int("start", 0, "Starting frame index")
	maxFrames := flag.Int("max", 1000, "Maximum number of frames to process")
	threshold := flag.Float64("threshold", 0.5, "Confidence threshold for mask projection")
	backend := flag.String("backend", "file", "Pose estimator backend [file, dry]")

	flag.Parse()

	proceed, err := pipeline.Guard(*outputDir, ".png", pipeline.ConfirmStdin("masks"))

	if err != nil {
		log.Fatal("Error checking output directory: ", err)
	}

	if !proceed {
		log.Print("Skipping tracking. Keeping existing masks.")
		return
	}

	var estimator tracker.BodyEstimator

	switch *backend {
	case "file":
		estimator, err = tracker.NewFileEstimator(*poseDir)

		if err != nil {
			log.Fatal("Error initializing pose estimator: ", err)
		}

	case "dry":
		estimator = tracker.NewDryRunEstimator()

	default:
		log.Fatalf("Unknown estimator backend %q", *backend)
	}

	projector := project.NewProjector(project.Params{
		ConfidenceThreshold: float32(*threshold),
	})

	log.Printf("Frames: %d to %d", *startFrame, *startFrame+*maxFrames-1)
	log.Printf("Output: %s", *outputDir)

	stats, err := pipeline.TrackBody(pipeline.BodyConfig{
		FramesDir:  *framesDir,
		OutputDir:  *outputDir,
		StartFrame: *startFrame,
		MaxFrames:  *maxFrames,
		Estimator:  estimator,
		Projector:  projector,
	})

	if err != nil {
		log.Fatal("Error tracking bodies: ", err)
	}

	log.Printf("Success rate: %.1f%%",
		float64(stats.Successful)/float64(stats.Processed)*100)
}
