// Package preprocess - Pixel layout conversion for model input tensors.
package preprocess

import (
	"image"
	"strings"

	"github.com/pkg/errors"
)

// ColorMode defines the channel order a model expects.
type ColorMode string

const (
	// ColorModeRGB is standard RGB color mode.
	ColorModeRGB ColorMode = "rgb"
	// ColorModeBGR is BGR color mode (common for OpenCV models).
	ColorModeBGR ColorMode = "bgr"
)

// ParseColorMode converts a case-insensitive name into a ColorMode. An empty
// name selects RGB.
func ParseColorMode(name string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(name)) {
	case "", ColorModeRGB:
		return ColorModeRGB, nil
	case ColorModeBGR:
		return ColorModeBGR, nil
	default:
		return "", errors.Errorf("unsupported color mode %q", name)
	}
}

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne NormalizationType = iota
	// NormalizeNone keeps pixel values as 0-255.
	NormalizeNone
	// NormalizeMinusOneToOne scales pixel values to [-1, 1].
	NormalizeMinusOneToOne
)

// ErrShortTensor is returned when the destination cannot hold three planes.
var ErrShortTensor = errors.New("destination tensor too small")

// ToCHW writes img into dst as three planar channels (channel, row, column).
//
// Arguments:
//   - dst: Destination of at least 3*width*height floats, usually one image
//     slot of a batched [B, 3, H, W] backing slice.
//   - img: The source pixels, already letterboxed to the model input size.
//   - mode: Channel order of the planes.
//   - norm: Pixel value scaling.
//
// Returns:
//   - error: ErrShortTensor if dst is too small.
//
// Example:
//
// ```go
//
//	slot := backing[i*3*h*w : (i+1)*3*h*w]
//	err := preprocess.ToCHW(slot, letterboxed, preprocess.ColorModeRGB, preprocess.NormalizeZeroToOne)
//
// ```
func ToCHW(dst []float32, img *image.NRGBA, mode ColorMode, norm NormalizationType) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	plane := width * height
	if len(dst) < 3*plane {
		return errors.Wrapf(ErrShortTensor, "have %d floats, need %d", len(dst), 3*plane)
	}

	c0, c2 := dst[0:plane], dst[2*plane:3*plane]
	if mode == ColorModeBGR {
		c0, c2 = c2, c0
	}
	c1 := dst[plane : 2*plane]

	scale, shift := normalization(norm)

	i := 0
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+3]
			c0[i] = float32(p[0])*scale + shift
			c1[i] = float32(p[1])*scale + shift
			c2[i] = float32(p[2])*scale + shift
			i++
		}
	}

	return nil
}

func normalization(norm NormalizationType) (scale, shift float32) {
	switch norm {
	case NormalizeNone:
		return 1, 0
	case NormalizeMinusOneToOne:
		return 1 / 127.5, -1
	default:
		return 1.0 / 255.0, 0
	}
}
