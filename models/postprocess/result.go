// Package postprocess - Postprocessing utilities for models.
package postprocess

import "github.com/nvr-ai/go-yolov5/images"

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result.
	Box images.Rect `json:"box" yaml:"box"`
	// The confidence score of the result (class score x objectness).
	Score float32 `json:"score" yaml:"score"`
	// The predicted class index of the result.
	Class int `json:"class" yaml:"class"`
}

// XYWH returns the box as integer left, top, width and height, truncating
// fractional pixels.
func (r Result) XYWH() (x, y, w, h int) {
	return int(r.Box.X1), int(r.Box.Y1), int(r.Box.Width()), int(r.Box.Height())
}

// HasDetections reports whether any image in the batch has at least one result.
func HasDetections(batch [][]Result) bool {
	for _, results := range batch {
		if len(results) > 0 {
			return true
		}
	}
	return false
}
