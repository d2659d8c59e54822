package images

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrInvalidBuffer is returned when a Buffer's layout does not describe its pixels.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// Buffer is a raw interleaved 8-bit pixel buffer, as produced by cameras,
// decoders and OpenCV matrices.
//
// Supported layouts by channel count:
//   - 1: gray
//   - 2: gray + alpha
//   - 3: RGB, or BGR when BGR is set
//   - 4: RGBA, or BGRA when BGR is set
//
// Buffer implements image.Image. At always returns an opaque color, so alpha
// is dropped and every layout is read as three color channels.
type Buffer struct {
	Width    int    `json:"width"    yaml:"width"`
	Height   int    `json:"height"   yaml:"height"`
	Channels int    `json:"channels" yaml:"channels"`
	BGR      bool   `json:"bgr"      yaml:"bgr"`
	Pix      []byte `json:"-"        yaml:"-"`
}

// NewBuffer wraps pix in a Buffer and validates its layout.
func NewBuffer(width, height, channels int, bgr bool, pix []byte) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Channels: channels, BGR: bgr, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the dimensions, the channel count and the pixel slice length.
func (b *Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return errors.Wrapf(ErrInvalidDimension, "buffer size %dx%d", b.Width, b.Height)
	}
	if b.Channels < 1 || b.Channels > 4 {
		return errors.Wrapf(ErrInvalidBuffer, "unsupported channel count %d", b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) < want {
		return errors.Wrapf(ErrInvalidBuffer, "have %d bytes, need %d", len(b.Pix), want)
	}
	return nil
}

// Stride is the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	r, g, bl := b.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

// RGBAt returns the red, green and blue components at x, y. Points outside
// the buffer are black.
func (b *Buffer) RGBAt(x, y int) (uint8, uint8, uint8) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0, 0, 0
	}
	i := y*b.Stride() + x*b.Channels
	if i+b.Channels > len(b.Pix) {
		return 0, 0, 0
	}

	switch b.Channels {
	case 1, 2:
		v := b.Pix[i]
		return v, v, v
	default:
		if b.BGR {
			return b.Pix[i+2], b.Pix[i+1], b.Pix[i]
		}
		return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
	}
}
