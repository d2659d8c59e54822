package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []ImageFormat{FormatJPEG, FormatPNG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			encoded, err := Encode(getTestImage(), format)
			require.NoError(t, err)
			assert.Equal(t, format, encoded.Format)
			assert.Equal(t, 40, encoded.Width)
			assert.Equal(t, 30, encoded.Height)
			assert.NotEmpty(t, encoded.Data)

			decoded, err := encoded.Decode()
			require.NoError(t, err)
			assert.Equal(t, 40, decoded.Bounds().Dx())
			assert.Equal(t, 30, decoded.Bounds().Dy())
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(getTestImage(), ImageFormat("tiff"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Image{Format: FormatJPEG}.Decode()
	assert.Error(t, err)

	_, err = Image{Format: FormatJPEG, Data: []byte("not a jpeg")}.Decode()
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]ImageFormat{
		"a.jpg":         FormatJPEG,
		"dir/b.JPEG":    FormatJPEG,
		"c.png":         FormatPNG,
		"/tmp/out.webp": FormatWebP,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
