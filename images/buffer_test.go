package images

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_Validate(t *testing.T) {
	tests := []struct {
		name    string
		buf     Buffer
		wantErr error
	}{
		{"valid rgb", Buffer{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 12)}, nil},
		{"valid gray", Buffer{Width: 2, Height: 1, Channels: 1, Pix: make([]byte, 2)}, nil},
		{"zero width", Buffer{Width: 0, Height: 2, Channels: 3}, ErrInvalidDimension},
		{"five channels", Buffer{Width: 1, Height: 1, Channels: 5, Pix: make([]byte, 5)}, ErrInvalidBuffer},
		{"short pixels", Buffer{Width: 2, Height: 2, Channels: 4, Pix: make([]byte, 15)}, ErrInvalidBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestBuffer_At validates channel order handling and alpha removal for every layout.
func TestBuffer_At(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		bgr      bool
		pix      []byte
		want     color.RGBA
	}{
		{"gray", 1, false, []byte{7}, color.RGBA{7, 7, 7, 255}},
		{"gray alpha", 2, false, []byte{9, 0}, color.RGBA{9, 9, 9, 255}},
		{"rgb", 3, false, []byte{1, 2, 3}, color.RGBA{1, 2, 3, 255}},
		{"bgr", 3, true, []byte{1, 2, 3}, color.RGBA{3, 2, 1, 255}},
		{"rgba drops alpha", 4, false, []byte{1, 2, 3, 0}, color.RGBA{1, 2, 3, 255}},
		{"bgra drops alpha", 4, true, []byte{1, 2, 3, 4}, color.RGBA{3, 2, 1, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuffer(1, 1, tt.channels, tt.bgr, tt.pix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.At(0, 0))
		})
	}
}

func TestBuffer_AtOutOfBounds(t *testing.T) {
	b, err := NewBuffer(2, 1, 3, false, []byte{10, 20, 30, 40, 50, 60})
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{40, 50, 60, 255}, b.At(1, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, b.At(2, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, b.At(0, -1))
	assert.Equal(t, 2, b.Bounds().Dx())
	assert.Equal(t, 6, b.Stride())
}

// TestBuffer_Letterbox checks that a raw buffer letterboxes like any image.Image.
func TestBuffer_Letterbox(t *testing.T) {
	pix := make([]byte, 4*2*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = 0, 0, 200 // BGR blue
	}
	b, err := NewBuffer(4, 2, 3, true, pix)
	require.NoError(t, err)

	lb, err := LetterboxFor(b, 8, 8)
	require.NoError(t, err)

	out := lb.Apply(b)
	c := out.NRGBAAt(4, 4)
	assert.InDelta(t, 200, int(c.R), 2)
	assert.InDelta(t, 0, int(c.B), 2)
	assert.Equal(t, uint8(0), out.NRGBAAt(4, 0).R)
}
