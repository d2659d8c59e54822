package images

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// ErrUnsupportedFormat is returned for extensions and formats that cannot be encoded.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFromPath infers the image format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", filepath.Ext(path))
	}
}

// Decode decodes the image data. EXIF orientation is applied for JPEGs.
func (i Image) Decode() (image.Image, error) {
	if len(i.Data) == 0 {
		return nil, errors.Wrap(ErrInvalidDimension, "empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(i.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", i.Format)
	}
	return img, nil
}

// Encode encodes img in the given format.
//
// Arguments:
//   - img: The image to encode.
//   - format: One of FormatJPEG, FormatPNG or FormatWebP.
//
// Returns:
//   - Image: The encoded payload with its dimensions.
//   - error: ErrUnsupportedFormat or an encoder error.
func Encode(img image.Image, format ImageFormat) (Image, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatJPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90))
	case FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: 90})
	default:
		return Image{}, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	if err != nil {
		return Image{}, errors.Wrapf(err, "encode %s", format)
	}

	b := img.Bounds()
	return Image{Format: format, Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
