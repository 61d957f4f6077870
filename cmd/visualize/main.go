/*
Overlay tracked masks on their source frames for visual inspection.
The default hands palette renders the right hand green and the left
hand red, the body palette renders 0/255 binary body masks green.
*/
package main

import (
	"flag"
	"log"

	"github.com/seqvision/vidmask/pipeline"
	"github.com/seqvision/vidmask/render"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	framesDir := flag.String("frames", "../frames_preview", "Directory containing video frames")
	masksDir := flag.String("masks", "output/masks", "Directory containing masks")
	outputDir := flag.String("o", "output/visualizations", "Output directory for visualizations")
	startFrame := flag.Int("start", 0, "Frame index the mask sequence starts at")
	alpha := flag.Float64("alpha", 0.5, "Overlay blend ratio")
	paletteName := flag.String("palette", "hands", "Mask palette [hands, body]")

	flag.Parse()

	var palette render.Palette

	switch *paletteName {
	case "hands":
		palette = render.HandPalette()
	case "body":
		palette = render.BodyPalette()
	default:
		log.Fatalf("Unknown palette %q", *paletteName)
	}

	proceed, err := pipeline.Guard(*outputDir, ".jpg",
		pipeline.ConfirmStdin("visualizations"))

	if err != nil {
		log.Fatal("Error checking output directory: ", err)
	}

	if !proceed {
		log.Print("Skipping visualization. Keeping existing files.")
		return
	}

	stats, err := pipeline.Visualize(pipeline.VisConfig{
		FramesDir:  *framesDir,
		MasksDir:   *masksDir,
		OutputDir:  *outputDir,
		StartFrame: *startFrame,
		Palette:    palette,
		Alpha:      float32(*alpha),
	})

	if err != nil {
		log.Fatal("Error visualizing masks: ", err)
	}

	log.Printf("Total files: %d", stats.Written)
}
