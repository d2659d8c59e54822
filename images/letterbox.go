package images

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrInvalidDimension is returned when an original or target size is not positive.
var ErrInvalidDimension = errors.New("invalid dimension")

// Letterbox describes an aspect-preserving resize of an image into a fixed
// model input, plus the symmetric padding that fills the remainder.
//
// Exactly one axis is padded: when the source is relatively wider than the
// target the width is fitted and BorderY pads the top (the bottom receives the
// remaining TargetHeight-ScaledHeight-BorderY rows); otherwise the height is
// fitted and BorderX pads the left side.
type Letterbox struct {
	OriginalWidth  int `json:"original_width"  yaml:"original_width"`
	OriginalHeight int `json:"original_height" yaml:"original_height"`
	TargetWidth    int `json:"target_width"    yaml:"target_width"`
	TargetHeight   int `json:"target_height"   yaml:"target_height"`
	ScaledWidth    int `json:"scaled_width"    yaml:"scaled_width"`
	ScaledHeight   int `json:"scaled_height"   yaml:"scaled_height"`
	BorderX        int `json:"border_x"        yaml:"border_x"`
	BorderY        int `json:"border_y"        yaml:"border_y"`
}

// NewLetterbox computes the letterbox geometry for fitting an image of the
// original size into a target of targetHeight x targetWidth.
//
// Arguments:
//   - originalWidth, originalHeight: Source image dimensions in pixels.
//   - targetHeight, targetWidth: Model input dimensions in pixels.
//
// Returns:
//   - Letterbox: The immutable transform.
//   - error: ErrInvalidDimension if any dimension is not positive.
//
// Example:
//
// ```go
//
//	lb, _ := NewLetterbox(1920, 1080, 640, 640)
//	// lb.ScaledWidth == 640, lb.ScaledHeight == 360, lb.BorderY == 140
//
// ```
func NewLetterbox(originalWidth, originalHeight, targetHeight, targetWidth int) (Letterbox, error) {
	if originalWidth <= 0 || originalHeight <= 0 {
		return Letterbox{}, errors.Wrapf(ErrInvalidDimension,
			"original size %dx%d", originalWidth, originalHeight)
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return Letterbox{}, errors.Wrapf(ErrInvalidDimension,
			"target size %dx%d", targetWidth, targetHeight)
	}

	ow, oh := float32(originalWidth), float32(originalHeight)
	tw, th := float32(targetWidth), float32(targetHeight)

	lb := Letterbox{
		OriginalWidth:  originalWidth,
		OriginalHeight: originalHeight,
		TargetWidth:    targetWidth,
		TargetHeight:   targetHeight,
	}

	if ow/oh > tw/th {
		lb.ScaledWidth = targetWidth
		lb.ScaledHeight = clampInt(int(math32.Round(tw/ow*oh)), 1, targetHeight)
		lb.BorderY = (targetHeight - lb.ScaledHeight) / 2
	} else {
		lb.ScaledHeight = targetHeight
		lb.ScaledWidth = clampInt(int(math32.Round(th/oh*ow)), 1, targetWidth)
		lb.BorderX = (targetWidth - lb.ScaledWidth) / 2
	}

	return lb, nil
}

// LetterboxFor computes the letterbox geometry for img.
func LetterboxFor(img image.Image, targetHeight, targetWidth int) (Letterbox, error) {
	b := img.Bounds()
	return NewLetterbox(b.Dx(), b.Dy(), targetHeight, targetWidth)
}

// WidthConstrained reports whether the width was fitted to the target, which
// means the padding sits on the vertical axis.
func (l Letterbox) WidthConstrained() bool {
	if l.OriginalHeight <= 0 || l.TargetHeight <= 0 {
		return false
	}
	return float32(l.OriginalWidth)/float32(l.OriginalHeight) >
		float32(l.TargetWidth)/float32(l.TargetHeight)
}

// Padding returns the number of padded pixels on each side.
func (l Letterbox) Padding() (top, bottom, left, right int) {
	top = l.BorderY
	bottom = l.TargetHeight - l.ScaledHeight - l.BorderY
	left = l.BorderX
	right = l.TargetWidth - l.ScaledWidth - l.BorderX
	return top, bottom, left, right
}

// Forward maps a point from original image space into letterboxed space.
func (l Letterbox) Forward(x, y float32) (float32, float32) {
	fx := x*float32(l.ScaledWidth)/float32(l.OriginalWidth) + float32(l.BorderX)
	fy := y*float32(l.ScaledHeight)/float32(l.OriginalHeight) + float32(l.BorderY)
	return fx, fy
}

// Inverse maps a point from letterboxed space back into original image space.
// The border is removed first, then each axis is scaled by original/scaled.
func (l Letterbox) Inverse(x, y float32) (float32, float32) {
	ix := (x - float32(l.BorderX)) * float32(l.OriginalWidth) / float32(l.ScaledWidth)
	iy := (y - float32(l.BorderY)) * float32(l.OriginalHeight) / float32(l.ScaledHeight)
	return ix, iy
}

// ForwardRect maps a box from original image space into letterboxed space.
func (l Letterbox) ForwardRect(r Rect) Rect {
	x1, y1 := l.Forward(r.X1, r.Y1)
	x2, y2 := l.Forward(r.X2, r.Y2)
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// InverseRect maps a box from letterboxed space back into original image space.
func (l Letterbox) InverseRect(r Rect) Rect {
	x1, y1 := l.Inverse(r.X1, r.Y1)
	x2, y2 := l.Inverse(r.X2, r.Y2)
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Apply resizes img to the scaled size with bilinear interpolation and pastes
// it onto a black canvas of the target size at the border offset.
//
// Arguments:
//   - img: The source image. Its size should match the original dimensions.
//
// Returns:
//   - *image.NRGBA: The letterboxed image of exactly TargetWidth x TargetHeight.
func (l Letterbox) Apply(img image.Image) *image.NRGBA {
	canvas := imaging.New(l.TargetWidth, l.TargetHeight, color.Black)

	var scaled image.Image = img
	b := img.Bounds()
	if b.Dx() != l.ScaledWidth || b.Dy() != l.ScaledHeight {
		scaled = resize.Resize(uint(l.ScaledWidth), uint(l.ScaledHeight), img, resize.Bilinear)
	}

	return imaging.Paste(canvas, scaled, image.Pt(l.BorderX, l.BorderY))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
