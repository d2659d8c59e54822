package cv

import (
	"image/color"
	"testing"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// solidMat returns a BGR matrix filled with the given BGR color.
func solidMat(t *testing.T, w, h int, b, g, r float64) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(b, g, r, 0))
	return mat
}

func TestToBuffer(t *testing.T) {
	mat := solidMat(t, 8, 4, 10, 20, 200)
	defer mat.Close()

	buf, err := ToBuffer(mat)
	require.NoError(t, err)
	assert.Equal(t, 8, buf.Width)
	assert.Equal(t, 4, buf.Height)
	assert.Equal(t, 3, buf.Channels)
	assert.True(t, buf.BGR)

	r, g, b := buf.RGBAt(3, 2)
	assert.Equal(t, []uint8{200, 20, 10}, []uint8{r, g, b})

	gray := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer gray.Close()
	buf, err = ToBuffer(gray)
	require.NoError(t, err)
	assert.False(t, buf.BGR)

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = ToBuffer(empty)
	assert.ErrorIs(t, err, ErrUnsupportedMat)

	float := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32FC3)
	defer float.Close()
	_, err = ToBuffer(float)
	assert.ErrorIs(t, err, ErrUnsupportedMat)
}

func TestLetterbox(t *testing.T) {
	src := solidMat(t, 100, 50, 0, 0, 255)
	defer src.Close()

	dst, lb, err := LetterboxFor(src, 64, 64)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, 32, lb.ScaledHeight)
	assert.Equal(t, 16, lb.BorderY)
	assert.Equal(t, 64, dst.Rows())
	assert.Equal(t, 64, dst.Cols())

	assert.Equal(t, []uint8{0, 0, 0}, vec(dst, 0, 0), "top border")
	assert.Equal(t, []uint8{0, 0, 0}, vec(dst, 63, 63), "bottom border")
	assert.Equal(t, []uint8{0, 0, 255}, vec(dst, 32, 32), "content")

	again, err := Letterbox(src, lb)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, Checksum(dst), Checksum(again))

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Equal(t, "empty", Checksum(empty))

	other, err := images.NewLetterbox(10, 10, 64, 64)
	require.NoError(t, err)
	bad, err := Letterbox(src, other)
	defer bad.Close()
	assert.ErrorIs(t, err, images.ErrInvalidDimension)
}

func TestDrawResults(t *testing.T) {
	img := solidMat(t, 64, 64, 0, 0, 0)
	defer img.Close()

	DrawResults(&img, []postprocess.Result{{
		Box:   images.Rect{X1: 10, Y1: 20, X2: 40, Y2: 50},
		Score: 0.9,
	}}, DrawOptions{
		Color:     func(int) color.Color { return color.RGBA{R: 255, A: 255} },
		Thickness: 1,
	})

	assert.Equal(t, []uint8{0, 0, 255}, vec(img, 20, 25), "top edge is red in BGR")
	assert.Equal(t, []uint8{0, 0, 0}, vec(img, 35, 25), "inside untouched")
}

func vec(m gocv.Mat, row, col int) []uint8 {
	v := m.GetVecbAt(row, col)
	return []uint8{v[0], v[1], v[2]}
}
