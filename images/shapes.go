// Package images - Image geometry and letterbox utilities.
package images

import "github.com/chewxy/math32"

// Rect is a lightweight bounding box in pixel space.
//
// X1,Y1 is the top-left corner (left, top) and X2,Y2 the bottom-right corner
// (right, bottom).
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the box, or 0 for an inverted box.
func (r Rect) Width() float32 {
	return math32.Max(0, r.X2-r.X1)
}

// Height returns the vertical extent of the box, or 0 for an inverted box.
func (r Rect) Height() float32 {
	return math32.Max(0, r.Y2-r.Y1)
}

// Area returns the area of the box.
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// Translate returns the box shifted by dx, dy.
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// RectFromCenter converts a center-x, center-y, width, height box into a
// left, top, right, bottom one.
//
// Arguments:
//   - cx, cy: The box center.
//   - w, h: The box width and height.
//
// Returns:
//   - Rect: The corner representation of the box.
func RectFromCenter(cx, cy, w, h float32) Rect {
	return Rect{
		X1: cx - w/2,
		Y1: cy - h/2,
		X2: cx + w/2,
		Y2: cy + h/2,
	}
}

// CalculateIoU measures the overlap of two boxes as Intersection over Union.
//
// The intersection is bounded by the maximum of the top-left corners and the
// minimum of the bottom-right corners. When that region has no width or height
// the boxes do not overlap and 0 is returned. The union follows the principle
// of inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	b := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iou := CalculateIoU(a, b) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
