/*
vidmask provides tooling for producing, classifying and visualizing
per-frame subject masks over a video frame sequence.

A frame sequence is a directory of JPG images named by integer frame
index.  External segmentation and pose models produce per-frame masks
which are written as single channel PNG files keyed by the same index.
The packages in this module project raw model output into binary masks
(project), classify mask directories by subject visibility (classify),
and overlay palette colored masks onto the source frames for visual
inspection (render).  Batch drivers that glue the stages together over
directories live in pipeline, with one CLI per stage under cmd.

See example usage in the cmd subdirectory.
*/
package vidmask
