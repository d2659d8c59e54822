package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-yolov5/images"
)

// Remap converts results from letterboxed coordinates into original image
// coordinates in place.
//
// Both corners go through lb.Inverse, then every coordinate is clamped to be
// non-negative. With clampToFrame set, X is also capped at the original width
// and Y at the original height.
//
// Arguments:
//   - results: The detections of a single image.
//   - lb: The letterbox that produced that image's model input.
//   - clampToFrame: Whether to cap coordinates at the original frame size.
func Remap(results []Result, lb images.Letterbox, clampToFrame bool) {
	maxX := float32(lb.OriginalWidth)
	maxY := float32(lb.OriginalHeight)

	for i := range results {
		box := lb.InverseRect(results[i].Box)

		box.X1 = math32.Max(0, box.X1)
		box.Y1 = math32.Max(0, box.Y1)
		box.X2 = math32.Max(0, box.X2)
		box.Y2 = math32.Max(0, box.Y2)

		if clampToFrame {
			box.X1 = math32.Min(box.X1, maxX)
			box.Y1 = math32.Min(box.Y1, maxY)
			box.X2 = math32.Min(box.X2, maxX)
			box.Y2 = math32.Min(box.Y2, maxY)
		}

		results[i].Box = box
	}
}
