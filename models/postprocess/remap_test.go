package postprocess

import (
	"testing"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemap_1080p(t *testing.T) {
	lb, err := images.NewLetterbox(1920, 1080, 640, 640)
	require.NoError(t, err)

	results := []Result{{Box: images.Rect{X1: 100, Y1: 150, X2: 200, Y2: 250}, Score: 0.9, Class: 2}}
	Remap(results, lb, true)

	box := results[0].Box
	assert.InDelta(t, 300, box.X1, 1e-3)
	assert.InDelta(t, 30, box.Y1, 1e-3)
	assert.InDelta(t, 600, box.X2, 1e-3)
	assert.InDelta(t, 330, box.Y2, 1e-3)
	assert.Equal(t, float32(0.9), results[0].Score)
	assert.Equal(t, 2, results[0].Class)
}

func TestRemap_Clamping(t *testing.T) {
	lb, err := images.NewLetterbox(1920, 1080, 640, 640)
	require.NoError(t, err)

	// Reaches into the top padding and past the right and bottom edges.
	in := images.Rect{X1: -10, Y1: 100, X2: 700, Y2: 600}

	tests := []struct {
		name         string
		clampToFrame bool
		want         images.Rect
	}{
		{"negative only", false, images.Rect{X1: 0, Y1: 0, X2: 2100, Y2: 1380}},
		{"frame", true, images.Rect{X1: 0, Y1: 0, X2: 1920, Y2: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []Result{{Box: in}}
			Remap(results, lb, tt.clampToFrame)

			got := results[0].Box
			assert.InDelta(t, tt.want.X1, got.X1, 1e-3)
			assert.InDelta(t, tt.want.Y1, got.Y1, 1e-3)
			assert.InDelta(t, tt.want.X2, got.X2, 1e-3)
			assert.InDelta(t, tt.want.Y2, got.Y2, 1e-3)
			assert.LessOrEqual(t, got.X1, got.X2)
			assert.LessOrEqual(t, got.Y1, got.Y2)
		})
	}
}

func TestRemap_Identity(t *testing.T) {
	lb, err := images.NewLetterbox(640, 640, 640, 640)
	require.NoError(t, err)

	box := images.Rect{X1: 1, Y1: 2, X2: 300, Y2: 400}
	results := []Result{{Box: box}}
	Remap(results, lb, true)
	assert.Equal(t, box, results[0].Box)

	Remap(nil, lb, true)
}
